package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"garagebook/internal/config"
	"garagebook/internal/domain"
	"garagebook/internal/port"
)

// UploadInvoiceInput is the DTO for accepting a scanned invoice file.
type UploadInvoiceInput struct {
	FileName    string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
}

// ApprovalInput is the DTO for recording an approval decision.
type ApprovalInput struct {
	InvoiceID     uuid.UUID
	Approved      bool
	ApprovedBy    string
	ReviewerNotes string
}

// InvoiceService defines the invoice processing and review contract.
type InvoiceService interface {
	// ProcessExtraction runs the understanding pipeline over a raw extraction
	// delivered directly by the OCR collaborator and persists the outcome.
	ProcessExtraction(ctx context.Context, raw *domain.RawExtraction, fileKey string) (*domain.Invoice, *domain.ProcessingResult, error)
	// UploadInvoice stores a scanned file and queues it for processing.
	UploadInvoice(ctx context.Context, input *UploadInvoiceInput) (*domain.Upload, error)
	// ProcessUpload runs OCR + understanding for one claimed upload.
	ProcessUpload(ctx context.Context, up *domain.Upload) error
	GetUpload(ctx context.Context, id uuid.UUID) (*domain.Upload, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, []domain.InvoiceLine, error)
	List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error)
	SetApproval(ctx context.Context, input *ApprovalInput) (*domain.Invoice, error)
}

type invoiceService struct {
	processor   *Processor
	invoiceRepo port.InvoiceRepository
	uploadRepo  port.UploadRepository
	storage     port.ObjectStorage
	ocr         port.ExtractionClient
	s3cfg       *config.S3Config
}

// NewInvoiceService creates an InvoiceService implementation.
func NewInvoiceService(
	processor *Processor,
	invoiceRepo port.InvoiceRepository,
	uploadRepo port.UploadRepository,
	storage port.ObjectStorage,
	ocr port.ExtractionClient,
	s3cfg *config.S3Config,
) InvoiceService {
	return &invoiceService{
		processor:   processor,
		invoiceRepo: invoiceRepo,
		uploadRepo:  uploadRepo,
		storage:     storage,
		ocr:         ocr,
		s3cfg:       s3cfg,
	}
}

func (s *invoiceService) ProcessExtraction(ctx context.Context, raw *domain.RawExtraction, fileKey string) (*domain.Invoice, *domain.ProcessingResult, error) {
	result := s.processor.ProcessInvoice(ctx, raw)
	if !result.Success {
		return nil, result, fmt.Errorf("%w: %s", domain.ErrRulesUnavailable, result.FailureMessage)
	}

	// All-or-nothing: a canceled caller gets no partial persistence.
	if err := ctx.Err(); err != nil {
		return nil, result, err
	}

	inv, lines := resultToRecords(result, fileKey)
	if err := s.invoiceRepo.Create(ctx, inv, lines); err != nil {
		return nil, result, fmt.Errorf("persisting invoice: %w", err)
	}

	log.Printf("service.InvoiceService: processed invoice %s method=%s confidence=%d lines=%d",
		inv.ID, result.Method, result.Confidence, len(lines))
	return inv, result, nil
}

func (s *invoiceService) UploadInvoice(ctx context.Context, input *UploadInvoiceInput) (*domain.Upload, error) {
	if _, ok := domain.AllowedContentTypes[input.ContentType]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if max := s.s3cfg.MaxFileSizeMB * 1024 * 1024; max > 0 && input.SizeBytes > max {
		return nil, domain.ErrFileTooLarge
	}

	id := uuid.New()
	key := fmt.Sprintf("invoices/%s/%s%s", time.Now().UTC().Format("2006/01"), id, strings.ToLower(filepath.Ext(input.FileName)))

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        input.Body,
		ContentType: input.ContentType,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	up := &domain.Upload{
		ID:          id,
		FileName:    input.FileName,
		FileKey:     key,
		ContentType: input.ContentType,
		SizeBytes:   input.SizeBytes,
		Status:      domain.UploadStatusPending,
	}
	if err := s.uploadRepo.Create(ctx, up); err != nil {
		return nil, fmt.Errorf("recording upload: %w", err)
	}
	return up, nil
}

func (s *invoiceService) ProcessUpload(ctx context.Context, up *domain.Upload) error {
	url, err := s.storage.GetPresignedURL(ctx, s.s3cfg.Bucket, up.FileKey, s.s3cfg.PresignExpiry)
	if err != nil {
		s.failUpload(ctx, up.ID, fmt.Sprintf("presigning file: %v", err))
		return fmt.Errorf("presigning file: %w", err)
	}

	raw, err := s.ocr.Extract(ctx, url, up.ContentType)
	if err != nil {
		s.failUpload(ctx, up.ID, fmt.Sprintf("ocr extraction: %v", err))
		return fmt.Errorf("ocr extraction: %w", err)
	}

	inv, _, err := s.ProcessExtraction(ctx, raw, up.FileKey)
	if err != nil {
		s.failUpload(ctx, up.ID, err.Error())
		return err
	}

	if err := s.uploadRepo.MarkDone(ctx, up.ID, inv.ID); err != nil {
		return fmt.Errorf("marking upload done: %w", err)
	}
	return nil
}

func (s *invoiceService) failUpload(ctx context.Context, id uuid.UUID, msg string) {
	if err := s.uploadRepo.MarkFailed(ctx, id, msg); err != nil {
		log.Printf("service.InvoiceService: MarkFailed %s: %v", id, err)
	}
}

func (s *invoiceService) GetUpload(ctx context.Context, id uuid.UUID) (*domain.Upload, error) {
	return s.uploadRepo.GetByID(ctx, id)
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, []domain.InvoiceLine, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	lines, err := s.invoiceRepo.ListLines(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return inv, lines, nil
}

func (s *invoiceService) List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	return s.invoiceRepo.List(ctx, offset, limit)
}

func (s *invoiceService) SetApproval(ctx context.Context, input *ApprovalInput) (*domain.Invoice, error) {
	return s.invoiceRepo.SetApproval(ctx, input.InvoiceID, port.ApprovalUpdate{
		Approved:      input.Approved,
		ApprovedBy:    input.ApprovedBy,
		ApprovedAt:    time.Now().UTC(),
		ReviewerNotes: input.ReviewerNotes,
	})
}

// resultToRecords converts a ProcessingResult into persistence records.
func resultToRecords(result *domain.ProcessingResult, fileKey string) (*domain.Invoice, []domain.InvoiceLine) {
	inv := &domain.Invoice{
		ID:            uuid.New(),
		VehicleID:     result.VehicleID,
		InvoiceNumber: result.InvoiceNumber,
		InvoiceDate:   result.InvoiceDate,
		Odometer:      result.Odometer,
		TotalCost:     result.TotalCost,
		PartsCost:     result.PartsCost,
		LaborCost:     result.LaborCost,
		Description:   result.Description,
		Method:        result.Method,
		Confidence:    result.Confidence,
		Notes:         result.Notes,
		FileKey:       fileKey,
	}
	lines := make([]domain.InvoiceLine, 0, len(result.LineItems))
	for _, li := range result.LineItems {
		lines = append(lines, domain.InvoiceLine{
			ID:                uuid.New(),
			InvoiceID:         inv.ID,
			ProcessedLineItem: li,
		})
	}
	return inv, lines
}
