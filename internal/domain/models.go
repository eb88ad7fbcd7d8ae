package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RawExtraction is the structured output of the upstream OCR collaborator for
// one scanned maintenance invoice. It is created once per upload and never
// mutated; missing fields are legitimately absent, not errors.
type RawExtraction struct {
	VehicleID     string       `json:"vehicle_id"`
	InvoiceNumber string       `json:"invoice_number"`
	InvoiceDate   string       `json:"invoice_date"`
	Odometer      string       `json:"odometer"`
	TotalCost     float64      `json:"total_cost"`
	PartsCost     float64      `json:"parts_cost"`
	LaborCost     float64      `json:"labor_cost"`
	LineItems     []RawLineItem `json:"line_items"`
}

// RawLineItem is one OCR-extracted invoice line before classification.
type RawLineItem struct {
	Description string  `json:"description"`
	UnitCost    float64 `json:"unit_cost"`
	Quantity    float64 `json:"quantity"`
	LineTotal   float64 `json:"line_total"`
	// PartNumberHint carries a structured table-column value when the OCR
	// service recognized a dedicated part number column.
	PartNumberHint string `json:"part_number_hint,omitempty"`
}

// ProcessedLineItem is a classified invoice line.
type ProcessedLineItem struct {
	LineNumber       int              `db:"line_number" json:"line_number"`
	Description      string           `db:"description" json:"description"`
	UnitCost         float64          `db:"unit_cost" json:"unit_cost"`
	Quantity         float64          `db:"quantity" json:"quantity"`
	TotalCost        float64          `db:"total_cost" json:"total_cost"`
	Classification   Classification   `db:"classification" json:"classification"`
	Confidence       int              `db:"confidence" json:"confidence"` // 0-100
	PartNumber       string           `db:"part_number" json:"part_number,omitempty"`
	ExtractionMethod ExtractionMethod `db:"extraction_method" json:"extraction_method"`
}

// ProcessingResult is the one uniform output of invoice processing,
// whichever path produced it.
type ProcessingResult struct {
	Success          bool                `json:"success"`
	Method           ProcessingMethod    `json:"processing_method"`
	VehicleID        string              `json:"vehicle_id"`
	InvoiceNumber    string              `json:"invoice_number"`
	InvoiceDate      string              `json:"invoice_date"`
	Odometer         int64               `json:"odometer"`
	TotalCost        float64             `json:"total_cost"`
	PartsCost        float64             `json:"parts_cost"`
	LaborCost        float64             `json:"labor_cost"`
	Description      string              `json:"description"`
	LineItems        []ProcessedLineItem `json:"line_items"`
	Confidence       int                 `json:"confidence"` // 0-100
	Notes            NoteList            `json:"processing_notes"`
	Failure          FailureKind         `json:"failure,omitempty"`
	FailureMessage   string              `json:"failure_message,omitempty"`
}

// AddNote appends a processing note to the audit trail.
func (r *ProcessingResult) AddNote(note string) {
	r.Notes = append(r.Notes, note)
}

// KeywordRule maps a description keyword onto a classification.
// Rules are externally managed reference data, read per invocation.
type KeywordRule struct {
	ID             int64          `db:"id" json:"id"`
	Keyword        string         `db:"keyword" json:"keyword"`
	Classification Classification `db:"classification" json:"classification"`
	MatchType      MatchType      `db:"match_type" json:"match_type"`
	Weight         int            `db:"weight" json:"weight"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// FieldMappingRule maps a noisy header label variant onto a canonical field name.
type FieldMappingRule struct {
	ID          int64     `db:"id" json:"id"`
	TargetField string    `db:"target_field" json:"target_field"`
	LabelVariant string   `db:"label_variant" json:"label_variant"`
	MatchType   MatchType `db:"match_type" json:"match_type"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RuleSnapshot is the read-only dictionary set injected into the fallback
// engine for one invocation.
type RuleSnapshot struct {
	KeywordRules      []KeywordRule
	FieldMappingRules []FieldMappingRule
}

// Invoice is the persisted header record for a processed invoice.
type Invoice struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	VehicleID     string           `db:"vehicle_id" json:"vehicle_id"`
	InvoiceNumber string           `db:"invoice_number" json:"invoice_number"`
	InvoiceDate   string           `db:"invoice_date" json:"invoice_date"`
	Odometer      int64            `db:"odometer" json:"odometer"`
	TotalCost     float64          `db:"total_cost" json:"total_cost"`
	PartsCost     float64          `db:"parts_cost" json:"parts_cost"`
	LaborCost     float64          `db:"labor_cost" json:"labor_cost"`
	Description   string           `db:"description" json:"description"`
	Method        ProcessingMethod `db:"processing_method" json:"processing_method"`
	Confidence    int              `db:"confidence" json:"confidence"`
	Notes         NoteList         `db:"processing_notes" json:"processing_notes"`
	FileKey       string           `db:"file_key" json:"file_key,omitempty"`
	Approved      *bool            `db:"approved" json:"approved"`
	ApprovedBy    string           `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt    *time.Time       `db:"approved_at" json:"approved_at,omitempty"`
	ReviewerNotes string           `db:"reviewer_notes" json:"reviewer_notes,omitempty"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

// InvoiceLine is the persisted record for one classified line item.
type InvoiceLine struct {
	ID        uuid.UUID `db:"id" json:"id"`
	InvoiceID uuid.UUID `db:"invoice_id" json:"invoice_id"`
	ProcessedLineItem
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Upload tracks a scanned invoice file awaiting processing by the queue
// worker. Processing is all-or-nothing: no invoice rows are written until a
// ProcessingResult exists.
type Upload struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	FileName     string       `db:"file_name" json:"file_name"`
	FileKey      string       `db:"file_key" json:"file_key"`
	ContentType  string       `db:"content_type" json:"content_type"`
	SizeBytes    int64        `db:"size_bytes" json:"size_bytes"`
	Status       UploadStatus `db:"status" json:"status"`
	Attempts     int          `db:"attempts" json:"attempts"`
	ErrorMessage string       `db:"error_message" json:"error_message,omitempty"`
	InvoiceID    *uuid.UUID   `db:"invoice_id" json:"invoice_id,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
