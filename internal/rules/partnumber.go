package rules

import (
	"regexp"
	"strings"

	"garagebook/internal/domain"
)

// The cascade is order-sensitive: each pattern is tried in sequence and the
// first candidate that survives validation wins. Reordering silently changes
// extraction behavior.
var partNumberCascade = []struct {
	re       *regexp.Regexp
	group    int
	method   domain.ExtractionMethod
	validate func(string) bool
}{
	// Hyphenated alphanumeric OEM formats: "15208-65F0A", "04152-YZZA1".
	{
		re:       regexp.MustCompile(`\b([A-Z0-9]{2,6}-[A-Z0-9]{2,6}(?:-[A-Z0-9]{1,5})?)\b`),
		group:    1,
		method:   domain.ExtractDescriptionParsed,
		validate: validPartCandidate,
	},
	// Generic letter-prefixed codes: "PF63E", "FL-910S", "WIX57060".
	{
		re:       regexp.MustCompile(`\b([A-Z]{2,4}-?\d{3,8}[A-Z]?)\b`),
		group:    1,
		method:   domain.ExtractDescriptionParsed,
		validate: validPartCandidate,
	},
	// Codes following a recognized brand token: "BOSCH 3323", "FRAM PH7317".
	{
		re:       regexp.MustCompile(`\b(?:ACDELCO|AC DELCO|MOTORCRAFT|BOSCH|DENSO|NGK|FRAM|WIX|MOPAR|MANN|MAHLE|KYB|MONROE|GATES|DAYCO|MOOG|TIMKEN)\s+([A-Z0-9][A-Z0-9-]{2,14})\b`),
		group:    1,
		method:   domain.ExtractRegexFallback,
		validate: validPartCandidate,
	},
}

var (
	dateShapeRe  = regexp.MustCompile(`^(?:\d{1,2}[-/]\d{1,2}[-/]\d{2,4}|\d{4}[-/]\d{1,2}[-/]\d{1,2})$`)
	phoneShapeRe = regexp.MustCompile(`^(?:\(\d{3}\)\s?|\d{3}[-.])\d{3}[-.]\d{4}$`)
	pureDigitsRe = regexp.MustCompile(`^\d+$`)
)

// minNumericPartLen is the shortest pure-numeric string accepted as a part
// number; anything shorter is more likely a quantity or a price.
const minNumericPartLen = 5

// ExtractPartNumber locates a part number for a Part-classified line. The
// structured table-column hint wins when the OCR extraction carried one;
// otherwise the regex cascade runs over the description. Candidates that look
// like dates, phone numbers, or short pure numerics are rejected, and when
// nothing validates the part number stays unset rather than guessed.
func ExtractPartNumber(description, tableHint string) (string, domain.ExtractionMethod, bool) {
	if hint := strings.TrimSpace(tableHint); hint != "" && validPartCandidate(strings.ToUpper(hint)) {
		return hint, domain.ExtractTableColumn, true
	}

	upper := strings.ToUpper(description)
	for _, stage := range partNumberCascade {
		for _, m := range stage.re.FindAllStringSubmatch(upper, -1) {
			candidate := m[stage.group]
			if stage.validate(candidate) {
				return candidate, stage.method, true
			}
		}
	}
	return "", "", false
}

// validPartCandidate rejects shapes that regex patterns pick up but that are
// never part numbers.
func validPartCandidate(c string) bool {
	c = strings.TrimSpace(c)
	if len(c) < 3 {
		return false
	}
	if dateShapeRe.MatchString(c) {
		return false
	}
	if phoneShapeRe.MatchString(c) {
		return false
	}
	if pureDigitsRe.MatchString(c) && len(c) < minNumericPartLen {
		return false
	}
	return true
}
