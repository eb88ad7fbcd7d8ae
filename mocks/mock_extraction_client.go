package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"garagebook/internal/domain"
)

// MockExtractionClient is a mock implementation of port.ExtractionClient.
type MockExtractionClient struct {
	mock.Mock
}

func (m *MockExtractionClient) Extract(ctx context.Context, fileURL, contentType string) (*domain.RawExtraction, error) {
	args := m.Called(ctx, fileURL, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RawExtraction), args.Error(1)
}
