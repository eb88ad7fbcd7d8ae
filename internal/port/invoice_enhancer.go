package port

import (
	"context"

	"garagebook/internal/domain"
)

// ParsedLine is one line item as interpreted by the AI endpoint.
// Confidence is already scaled to 0-100.
type ParsedLine struct {
	LineNumber     int     `json:"line_number"`
	Description    string  `json:"description"`
	Classification string  `json:"classification"`
	UnitCost       float64 `json:"unit_cost"`
	Quantity       float64 `json:"quantity"`
	TotalCost      float64 `json:"total_cost"`
	Confidence     int     `json:"confidence"`
	PartNumber     string  `json:"part_number,omitempty"`
}

// ParsedInvoice is the AI interpretation of a raw extraction. Header fields the
// model omitted are empty/zero; the orchestrator fills them from the raw
// extraction. Confidence values are scaled to 0-100.
type ParsedInvoice struct {
	VehicleID     string       `json:"vehicle_id"`
	InvoiceNumber string       `json:"invoice_number"`
	InvoiceDate   string       `json:"invoice_date"`
	Odometer      string       `json:"odometer"`
	TotalCost     float64      `json:"total_cost"`
	PartsCost     float64      `json:"parts_cost"`
	LaborCost     float64      `json:"labor_cost"`
	Description   string       `json:"description"`
	LineItems     []ParsedLine `json:"line_items"`
	Confidence    int          `json:"confidence"`
	Notes         []string     `json:"processing_notes"`
}

// EnhanceResult is the typed outcome of one AI enhancement attempt. It is a
// tagged union: Success=true carries Invoice; Success=false carries the
// failure classification. Errors never cross this boundary as Go errors.
type EnhanceResult struct {
	Success              bool
	Invoice              *ParsedInvoice
	Failure              domain.FailureKind
	ErrorMessage         string
	RateLimitEncountered bool
}

// InvoiceEnhancer abstracts the external LLM invoice interpretation call.
type InvoiceEnhancer interface {
	Enhance(ctx context.Context, raw *domain.RawExtraction) *EnhanceResult
}
