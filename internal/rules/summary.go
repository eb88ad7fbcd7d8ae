package rules

import "garagebook/internal/domain"

// Summary phrases, ordered by priority in Summarize.
const (
	SummaryBrakeRepair  = "Brake System Repair"
	SummaryDiagnostics  = "Engine Diagnostics"
	SummaryOilChange    = "Oil Change Service"
	SummaryTireService  = "Tire Service"
	SummaryTransmission = "Transmission Service"
	SummaryRoutine      = "Routine Maintenance"
)

// keyword themes recognized by the summary table. The inputs are keywords the
// classifier matched, so the summary stays a pure function of classified
// lines rather than re-reading description text.
var (
	brakeTerms = map[string]bool{
		"brake": true, "brakes": true, "brake pad": true, "brake pads": true,
		"rotor": true, "rotors": true, "caliper": true, "brake fluid": true,
	}
	diagnosticTerms = map[string]bool{
		"diagnostic": true, "diagnostics": true, "diagnosis": true,
		"scan": true, "inspection": true, "troubleshoot": true,
	}
	oilTerms = map[string]bool{
		"oil": true, "oil change": true, "oil filter": true, "filter": true,
		"lube": true, "synthetic oil": true,
	}
	tireTerms = map[string]bool{
		"tire": true, "tires": true, "rotation": true, "balance": true,
		"alignment": true, "mount": true,
	}
	transmissionTerms = map[string]bool{
		"transmission": true, "trans fluid": true, "clutch": true, "cvt": true,
	}
)

// Summarize derives a short standardized maintenance phrase from the
// classified line set. It is deterministic: the first theme in the fixed
// priority table with a qualifying match wins.
func Summarize(matches []LineMatch) string {
	var (
		laborCount, classified int
		hasBrake, hasDiag      bool
		hasOil, hasTire        bool
		hasTrans               bool
	)

	for _, m := range matches {
		if m.Classification != domain.ClassOther {
			classified++
		}
		if m.Classification == domain.ClassLabor {
			laborCount++
		}
		switch m.Classification {
		case domain.ClassPart, domain.ClassLabor:
			kw := m.MatchedKeyword
			if brakeTerms[kw] {
				hasBrake = true
			}
			if diagnosticTerms[kw] {
				hasDiag = true
			}
			if oilTerms[kw] {
				hasOil = true
			}
			if tireTerms[kw] {
				hasTire = true
			}
			if transmissionTerms[kw] {
				hasTrans = true
			}
		}
	}

	switch {
	case hasBrake:
		return SummaryBrakeRepair
	case hasDiag && laborCount > 0 && laborCount*2 >= classified:
		return SummaryDiagnostics
	case hasOil && laborCount > 0:
		// A lone oil filter on a parts list is stock movement, not a
		// service; the oil theme needs labor behind it.
		return SummaryOilChange
	case hasTire:
		return SummaryTireService
	case hasTrans:
		return SummaryTransmission
	default:
		return SummaryRoutine
	}
}
