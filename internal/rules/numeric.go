package rules

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	commaGroupedRe = regexp.MustCompile(`\d{1,3}(,\d{3})+`)
	digitRunRe     = regexp.MustCompile(`\d{3,}`)
	decimalRe      = regexp.MustCompile(`\d{1,3}(,\d{3})+(\.\d+)?|\d+(\.\d+)?`)
)

// NormalizeInteger parses odometer-style strings that may carry thousands
// separators. Comma-grouped digits are matched first and the separators
// stripped; otherwise the first run of three or more digits is taken as a
// plain integer. Returns false when neither form is present.
func NormalizeInteger(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if m := commaGroupedRe.FindString(s); m != "" {
		n, err := strconv.ParseInt(strings.ReplaceAll(m, ",", ""), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	if m := digitRunRe.FindString(s); m != "" {
		n, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}

	return 0, false
}

// NormalizeAmount parses currency-style strings ("$1,234.56", "1,234", "45.00")
// into a decimal value. Returns false when no numeric content is present.
func NormalizeAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	m := decimalRe.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
