package rules

import (
	"strings"

	"garagebook/internal/domain"
)

// Canonical header field names used by FieldMappingRule.TargetField.
const (
	FieldVehicleID     = "vehicle_id"
	FieldInvoiceNumber = "invoice_number"
	FieldInvoiceDate   = "invoice_date"
	FieldOdometer      = "odometer"
)

// noisePrefixes are label fragments commonly glued onto OCR header values.
// They are trimmed before field mapping rules are applied.
var noisePrefixes = []string{
	"inv:", "inv#", "inv #", "invoice:", "invoice #", "invoice#",
	"ro#", "ro #", "ro:", "r.o.#", "r.o.",
	"vehicle #", "vehicle#", "vehicle:", "veh:", "veh #",
	"unit #", "unit:", "odo:", "odometer:", "mileage:",
}

// ResolveFieldLabel maps a noisy header label onto its canonical target field
// using the field mapping dictionary. Matching is case-insensitive with
// exact, then partial, then contains precedence. Unmatched labels pass
// through unchanged.
func ResolveFieldLabel(label string, mappingRules []domain.FieldMappingRule) string {
	norm := strings.ToLower(strings.TrimSpace(label))
	if norm == "" {
		return label
	}

	for _, mt := range []domain.MatchType{domain.MatchExact, domain.MatchPartial, domain.MatchContains} {
		for i := range mappingRules {
			rule := &mappingRules[i]
			if !rule.IsActive || rule.MatchType != mt {
				continue
			}
			variant := strings.ToLower(strings.TrimSpace(rule.LabelVariant))
			if variant == "" {
				continue
			}
			switch mt {
			case domain.MatchExact:
				if norm == variant {
					return rule.TargetField
				}
			case domain.MatchPartial:
				if strings.Contains(norm, variant) {
					return rule.TargetField
				}
			case domain.MatchContains:
				for _, tok := range strings.FieldsFunc(norm, isTokenSeparator) {
					if tok == variant {
						return rule.TargetField
					}
				}
			}
		}
	}
	return label
}

// CleanHeaderValue strips leading label noise ("INV:", "RO#", "Vehicle #")
// from an OCR header value. The comparison is case-insensitive; the remaining
// value keeps its original casing.
func CleanHeaderValue(value string) string {
	v := strings.TrimSpace(value)
	lower := strings.ToLower(v)
	for _, prefix := range noisePrefixes {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(v[len(prefix):])
		}
	}
	return v
}
