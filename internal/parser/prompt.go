package parser

// BuildMaintenancePrompt returns the interpretation prompt for a raw OCR
// extraction of a vehicle-maintenance invoice.
func BuildMaintenancePrompt(rawExtractionJSON string) string {
	return `You are a vehicle-maintenance invoice interpreter. Below is the raw OCR extraction of a scanned maintenance invoice. Normalize the header fields, classify every line item, and extract part numbers where present.

IMPORTANT INSTRUCTIONS:
- Classify EVERY line item into exactly one of: Part, Labor, Fee, Tax, Other.
- Strip label noise from header values (e.g. "RO# 4512" becomes "4512").
- Odometer must be a plain string of digits with no separators.
- Only set part_number when a genuine manufacturer part number appears; never guess. Dates, phone numbers, and prices are not part numbers.
- Confidence values are floats between 0.0 and 1.0.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation — just the raw JSON object:
{
  "vehicle_id": "",
  "invoice_number": "",
  "invoice_date": "",
  "odometer": "",
  "total_cost": 0,
  "parts_cost": 0,
  "labor_cost": 0,
  "description": "short standardized maintenance summary",
  "line_items": [
    {
      "line_number": 1,
      "description": "",
      "classification": "Part",
      "unit_cost": 0, "quantity": 0, "total_cost": 0,
      "confidence": 0.0,
      "part_number": ""
    }
  ],
  "confidence": 0.0,
  "processing_notes": []
}

Raw OCR extraction:
` + rawExtractionJSON
}
