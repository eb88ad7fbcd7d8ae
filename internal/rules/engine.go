// Package rules implements the deterministic fallback path for invoice
// understanding: keyword classification, header normalization, part number
// extraction, and summary derivation, driven entirely by the stored
// dictionaries. It makes no network calls.
package rules

import (
	"fmt"
	"math"

	"garagebook/internal/domain"
)

// Engine classifies and normalizes a raw extraction using dictionary rules
// only. It is stateless; the rule snapshot is injected per call so the engine
// stays pure and trivially parallelizable across invoices.
type Engine struct{}

// NewEngine creates a rule engine.
func NewEngine() *Engine {
	return &Engine{}
}

// ClassifyAndNormalize produces a complete ProcessingResult from a raw
// extraction and a rule snapshot. It is deterministic and never panics:
// malformed input yields Other-classified lines, never a crash.
func (e *Engine) ClassifyAndNormalize(raw *domain.RawExtraction, snap *domain.RuleSnapshot) *domain.ProcessingResult {
	result := &domain.ProcessingResult{
		Success: true,
		Method:  domain.MethodRuleFallback,
	}
	if raw == nil {
		result.AddNote("raw extraction missing; produced empty result")
		return result
	}
	var keywordRules []domain.KeywordRule
	var mappingRules []domain.FieldMappingRule
	if snap != nil {
		keywordRules = snap.KeywordRules
		mappingRules = snap.FieldMappingRules
	}
	if len(keywordRules) == 0 {
		result.AddNote("no active keyword rules; line items default to Other")
	}

	e.normalizeHeader(raw, mappingRules, result)

	matches := make([]LineMatch, 0, len(raw.LineItems))
	confSum := 0
	for i, line := range raw.LineItems {
		m := ClassifyDescription(line.Description, keywordRules)
		matches = append(matches, m)

		item := domain.ProcessedLineItem{
			LineNumber:     i + 1,
			Description:    line.Description,
			UnitCost:       line.UnitCost,
			Quantity:       line.Quantity,
			TotalCost:      line.LineTotal,
			Classification: m.Classification,
			Confidence:     m.Confidence,
		}
		// ExtractionMethod stays empty unless a part number was actually
		// pulled out of the line.
		if m.Classification == domain.ClassPart {
			if pn, method, ok := ExtractPartNumber(line.Description, line.PartNumberHint); ok {
				item.PartNumber = pn
				item.ExtractionMethod = method
			}
		}
		result.LineItems = append(result.LineItems, item)
		confSum += m.Confidence
	}

	if len(result.LineItems) > 0 {
		result.Confidence = confSum / len(result.LineItems)
	}
	result.Description = Summarize(matches)

	e.validateTotals(result)
	return result
}

// normalizeHeader fills the result header from the raw extraction, trimming
// label noise from values and normalizing the odometer reading.
func (e *Engine) normalizeHeader(raw *domain.RawExtraction, mappingRules []domain.FieldMappingRule, result *domain.ProcessingResult) {
	result.VehicleID = CleanHeaderValue(raw.VehicleID)
	result.InvoiceNumber = CleanHeaderValue(raw.InvoiceNumber)
	result.InvoiceDate = CleanHeaderValue(raw.InvoiceDate)
	result.TotalCost = raw.TotalCost
	result.PartsCost = raw.PartsCost
	result.LaborCost = raw.LaborCost

	if odo, ok := NormalizeInteger(raw.Odometer); ok {
		result.Odometer = odo
	} else if raw.Odometer != "" {
		result.AddNote(fmt.Sprintf("odometer value %q could not be normalized", raw.Odometer))
	}

	e.relabelHeaderFields(raw, mappingRules, result)
}

// relabelHeaderFields applies the field mapping dictionary across the header.
// OCR merges column labels into adjacent values, so a field can arrive
// carrying another field's content, e.g. vehicle_id delivering "RO# 4512".
// A value whose embedded label resolves to a different canonical field is
// moved there when that slot is still empty; occupied slots are never
// overwritten.
func (e *Engine) relabelHeaderFields(raw *domain.RawExtraction, mappingRules []domain.FieldMappingRule, result *domain.ProcessingResult) {
	sources := []struct {
		field string
		value string
		slot  *string
	}{
		{FieldVehicleID, raw.VehicleID, &result.VehicleID},
		{FieldInvoiceNumber, raw.InvoiceNumber, &result.InvoiceNumber},
		{FieldInvoiceDate, raw.InvoiceDate, &result.InvoiceDate},
	}

	for _, src := range sources {
		if src.value == "" {
			continue
		}
		target := ResolveFieldLabel(src.value, mappingRules)
		if target == src.field || target == src.value {
			continue
		}

		cleaned := CleanHeaderValue(src.value)
		moved := false
		switch target {
		case FieldVehicleID:
			if result.VehicleID == "" {
				result.VehicleID = cleaned
				moved = true
			}
		case FieldInvoiceNumber:
			if result.InvoiceNumber == "" {
				result.InvoiceNumber = cleaned
				moved = true
			}
		case FieldInvoiceDate:
			if result.InvoiceDate == "" {
				result.InvoiceDate = cleaned
				moved = true
			}
		case FieldOdometer:
			if result.Odometer == 0 {
				if odo, ok := NormalizeInteger(cleaned); ok {
					result.Odometer = odo
					moved = true
				}
			}
		}
		if moved {
			*src.slot = ""
			result.AddNote(fmt.Sprintf("%s value reassigned to %s by field mapping rule", src.field, target))
		}
	}
}

// validateTotals checks that the header parts/labor costs are derivable as
// sums over classified lines. Violations are recorded as notes, never
// treated as fatal.
func (e *Engine) validateTotals(result *domain.ProcessingResult) {
	var partsSum, laborSum float64
	for _, item := range result.LineItems {
		switch item.Classification {
		case domain.ClassPart:
			partsSum += item.TotalCost
		case domain.ClassLabor:
			laborSum += item.TotalCost
		}
	}
	const tolerance = 0.01
	if result.PartsCost > 0 && math.Abs(result.PartsCost-partsSum) > tolerance {
		result.AddNote(fmt.Sprintf("header parts cost %.2f differs from classified Part line sum %.2f", result.PartsCost, partsSum))
	}
	if result.LaborCost > 0 && math.Abs(result.LaborCost-laborSum) > tolerance {
		result.AddNote(fmt.Sprintf("header labor cost %.2f differs from classified Labor line sum %.2f", result.LaborCost, laborSum))
	}
}
