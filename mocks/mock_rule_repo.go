package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"garagebook/internal/domain"
)

// MockRuleRepo is a mock implementation of port.RuleRepository.
type MockRuleRepo struct {
	mock.Mock
}

func (m *MockRuleRepo) ListKeywordRules(ctx context.Context) ([]domain.KeywordRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KeywordRule), args.Error(1)
}

func (m *MockRuleRepo) ListFieldMappingRules(ctx context.Context) ([]domain.FieldMappingRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FieldMappingRule), args.Error(1)
}
