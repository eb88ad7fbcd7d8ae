package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"garagebook/internal/domain"
	"garagebook/internal/port"
)

type ruleRepo struct {
	db *sqlx.DB
}

// NewRuleRepo creates a new PostgreSQL-backed RuleRepository.
func NewRuleRepo(db *sqlx.DB) port.RuleRepository {
	return &ruleRepo{db: db}
}

func (r *ruleRepo) ListKeywordRules(ctx context.Context) ([]domain.KeywordRule, error) {
	var rules []domain.KeywordRule
	err := r.db.SelectContext(ctx, &rules,
		`SELECT id, keyword, classification, match_type, weight, is_active, created_at
		 FROM keyword_rules WHERE is_active = TRUE ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ruleRepo.ListKeywordRules: %w", err)
	}
	return rules, nil
}

func (r *ruleRepo) ListFieldMappingRules(ctx context.Context) ([]domain.FieldMappingRule, error) {
	var rules []domain.FieldMappingRule
	err := r.db.SelectContext(ctx, &rules,
		`SELECT id, target_field, label_variant, match_type, is_active, created_at
		 FROM field_mapping_rules WHERE is_active = TRUE ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ruleRepo.ListFieldMappingRules: %w", err)
	}
	return rules, nil
}
