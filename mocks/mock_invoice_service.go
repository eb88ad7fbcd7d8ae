package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"garagebook/internal/domain"
	"garagebook/internal/service"
)

// MockInvoiceService is a mock implementation of service.InvoiceService.
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) ProcessExtraction(ctx context.Context, raw *domain.RawExtraction, fileKey string) (*domain.Invoice, *domain.ProcessingResult, error) {
	args := m.Called(ctx, raw, fileKey)
	var inv *domain.Invoice
	if args.Get(0) != nil {
		inv = args.Get(0).(*domain.Invoice)
	}
	var result *domain.ProcessingResult
	if args.Get(1) != nil {
		result = args.Get(1).(*domain.ProcessingResult)
	}
	return inv, result, args.Error(2)
}

func (m *MockInvoiceService) UploadInvoice(ctx context.Context, input *service.UploadInvoiceInput) (*domain.Upload, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Upload), args.Error(1)
}

func (m *MockInvoiceService) ProcessUpload(ctx context.Context, up *domain.Upload) error {
	args := m.Called(ctx, up)
	return args.Error(0)
}

func (m *MockInvoiceService) GetUpload(ctx context.Context, id uuid.UUID) (*domain.Upload, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Upload), args.Error(1)
}

func (m *MockInvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, []domain.InvoiceLine, error) {
	args := m.Called(ctx, id)
	var inv *domain.Invoice
	if args.Get(0) != nil {
		inv = args.Get(0).(*domain.Invoice)
	}
	var lines []domain.InvoiceLine
	if args.Get(1) != nil {
		lines = args.Get(1).([]domain.InvoiceLine)
	}
	return inv, lines, args.Error(2)
}

func (m *MockInvoiceService) List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceService) SetApproval(ctx context.Context, input *service.ApprovalInput) (*domain.Invoice, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}
