package rules

import (
	"strings"

	"garagebook/internal/domain"
)

// exact matches earn a confidence bonus over partial/contains matches of the
// same weight.
const exactMatchBonus = 10

// LineMatch is the outcome of classifying one description against the keyword
// dictionary. MatchedKeyword is empty when no rule matched and the line
// defaulted to Other.
type LineMatch struct {
	Classification domain.Classification
	Confidence     int // 0-100
	MatchedKeyword string
}

// ClassifyDescription evaluates every active keyword rule against a free-text
// description. Among all matching rules the highest weight wins; ties break by
// lowest rule ID so the outcome is stable across invocations. Descriptions
// matching no rule classify as Other.
func ClassifyDescription(description string, keywordRules []domain.KeywordRule) LineMatch {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return LineMatch{Classification: domain.ClassOther, Confidence: 0}
	}

	var (
		best      *domain.KeywordRule
		bestScore int
	)
	for i := range keywordRules {
		rule := &keywordRules[i]
		if !rule.IsActive || !rule.Classification.Valid() {
			continue
		}
		if !ruleMatches(desc, rule) {
			continue
		}
		switch {
		case best == nil,
			rule.Weight > best.Weight,
			rule.Weight == best.Weight && rule.ID < best.ID:
			best = rule
			bestScore = matchConfidence(rule)
		}
	}

	if best == nil {
		return LineMatch{Classification: domain.ClassOther, Confidence: 0}
	}
	return LineMatch{
		Classification: best.Classification,
		Confidence:     bestScore,
		MatchedKeyword: best.Keyword,
	}
}

func ruleMatches(desc string, rule *domain.KeywordRule) bool {
	kw := strings.ToLower(strings.TrimSpace(rule.Keyword))
	if kw == "" {
		return false
	}
	switch rule.MatchType {
	case domain.MatchExact:
		return desc == kw
	case domain.MatchPartial:
		return strings.Contains(desc, kw)
	case domain.MatchContains:
		for _, tok := range strings.FieldsFunc(desc, isTokenSeparator) {
			if tok == kw {
				return true
			}
		}
		return false
	}
	return false
}

func isTokenSeparator(r rune) bool {
	switch r {
	case ' ', '\t', ',', ';', ':', '/', '(', ')', '-':
		return true
	}
	return false
}

// matchConfidence scales a rule weight into the 0-100 confidence range.
func matchConfidence(rule *domain.KeywordRule) int {
	conf := rule.Weight
	if rule.MatchType == domain.MatchExact {
		conf += exactMatchBonus
	}
	if conf > 100 {
		conf = 100
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}
