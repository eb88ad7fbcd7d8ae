package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"garagebook/internal/domain"
	"garagebook/internal/port"
)

// MockInvoiceEnhancer is a mock implementation of port.InvoiceEnhancer.
type MockInvoiceEnhancer struct {
	mock.Mock
}

func (m *MockInvoiceEnhancer) Enhance(ctx context.Context, raw *domain.RawExtraction) *port.EnhanceResult {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*port.EnhanceResult)
}
