package port

import (
	"context"

	"garagebook/internal/domain"
)

// RuleRepository reads the externally managed classification dictionaries.
// Only active rules are returned, ordered by ID so tie-breaking between
// equally weighted keyword matches stays deterministic.
type RuleRepository interface {
	ListKeywordRules(ctx context.Context) ([]domain.KeywordRule, error)
	ListFieldMappingRules(ctx context.Context) ([]domain.FieldMappingRule, error)
}
