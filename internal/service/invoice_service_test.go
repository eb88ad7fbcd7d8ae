package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"garagebook/internal/config"
	"garagebook/internal/domain"
	"garagebook/internal/port"
	"garagebook/internal/rules"
	"garagebook/internal/service"
	"garagebook/mocks"
)

type serviceMocks struct {
	enhancer    *mocks.MockInvoiceEnhancer
	ruleRepo    *mocks.MockRuleRepo
	invoiceRepo *mocks.MockInvoiceRepo
	uploadRepo  *mocks.MockUploadRepo
	storage     *mocks.MockObjectStorage
	ocr         *mocks.MockExtractionClient
}

func newInvoiceService() (service.InvoiceService, *serviceMocks) {
	m := &serviceMocks{
		enhancer:    new(mocks.MockInvoiceEnhancer),
		ruleRepo:    new(mocks.MockRuleRepo),
		invoiceRepo: new(mocks.MockInvoiceRepo),
		uploadRepo:  new(mocks.MockUploadRepo),
		storage:     new(mocks.MockObjectStorage),
		ocr:         new(mocks.MockExtractionClient),
	}
	processor := service.NewProcessor(m.enhancer, rules.NewEngine(), m.ruleRepo)
	s3cfg := &config.S3Config{Bucket: "garagebook-invoices", MaxFileSizeMB: 10, PresignExpiry: 900}
	svc := service.NewInvoiceService(processor, m.invoiceRepo, m.uploadRepo, m.storage, m.ocr, s3cfg)
	return svc, m
}

func aiSuccessResult() *port.EnhanceResult {
	return &port.EnhanceResult{
		Success: true,
		Invoice: &port.ParsedInvoice{
			VehicleID:     "TRUCK-07",
			InvoiceNumber: "4512",
			InvoiceDate:   "2024-06-15",
			Odometer:      "45210",
			TotalCost:     74.93,
			Description:   "Oil change service",
			Confidence:    85,
			LineItems: []port.ParsedLine{
				{LineNumber: 1, Description: "Oil filter PH7317", Classification: "Part", TotalCost: 8.99, Confidence: 90, PartNumber: "PH7317"},
				{LineNumber: 2, Description: "Labor - oil change", Classification: "Labor", TotalCost: 45.00, Confidence: 88},
			},
		},
	}
}

func TestProcessExtraction_PersistsInvoiceAndLines(t *testing.T) {
	svc, m := newInvoiceService()
	m.enhancer.On("Enhance", mock.Anything, mock.Anything).Return(aiSuccessResult())

	var gotInv *domain.Invoice
	var gotLines []domain.InvoiceLine
	m.invoiceRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotInv = args.Get(1).(*domain.Invoice)
			gotLines = args.Get(2).([]domain.InvoiceLine)
		}).
		Return(nil)

	inv, result, err := svc.ProcessExtraction(context.Background(), testRawExtraction(), "invoices/2024/06/abc.pdf")
	require.NoError(t, err)
	require.NotNil(t, inv)
	require.NotNil(t, result)

	assert.Equal(t, domain.MethodAIEnhanced, result.Method)
	assert.Equal(t, gotInv, inv)
	assert.NotEqual(t, uuid.Nil, gotInv.ID)
	assert.Equal(t, "TRUCK-07", gotInv.VehicleID)
	assert.Equal(t, "4512", gotInv.InvoiceNumber)
	assert.Equal(t, int64(45210), gotInv.Odometer)
	assert.Equal(t, domain.MethodAIEnhanced, gotInv.Method)
	assert.Equal(t, "invoices/2024/06/abc.pdf", gotInv.FileKey)

	require.Len(t, gotLines, 2)
	for _, line := range gotLines {
		assert.Equal(t, gotInv.ID, line.InvoiceID)
		assert.NotEqual(t, uuid.Nil, line.ID)
	}
	assert.Equal(t, "PH7317", gotLines[0].PartNumber)
}

func TestProcessExtraction_FailedResultNotPersisted(t *testing.T) {
	svc, m := newInvoiceService()
	m.enhancer.On("Enhance", mock.Anything, mock.Anything).Return(&port.EnhanceResult{
		Success: false,
		Failure: domain.FailureGeneric,
	})
	m.ruleRepo.On("ListKeywordRules", mock.Anything).Return(nil, errors.New("db down"))

	inv, result, err := svc.ProcessExtraction(context.Background(), testRawExtraction(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRulesUnavailable)
	assert.Nil(t, inv)
	require.NotNil(t, result)
	assert.False(t, result.Success)

	m.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessExtraction_CanceledContextNotPersisted(t *testing.T) {
	svc, m := newInvoiceService()
	m.enhancer.On("Enhance", mock.Anything, mock.Anything).Return(aiSuccessResult())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inv, result, err := svc.ProcessExtraction(ctx, testRawExtraction(), "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, inv)
	assert.NotNil(t, result)

	m.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadInvoice_RejectsUnsupportedContentType(t *testing.T) {
	svc, m := newInvoiceService()

	_, err := svc.UploadInvoice(context.Background(), &service.UploadInvoiceInput{
		FileName:    "notes.txt",
		ContentType: "text/plain",
		SizeBytes:   100,
		Body:        strings.NewReader("hello"),
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)

	m.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestUploadInvoice_RejectsOversizedFile(t *testing.T) {
	svc, m := newInvoiceService()

	_, err := svc.UploadInvoice(context.Background(), &service.UploadInvoiceInput{
		FileName:    "scan.pdf",
		ContentType: "application/pdf",
		SizeBytes:   11 * 1024 * 1024,
		Body:        strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)

	m.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestUploadInvoice_StoresFileAndQueuesUpload(t *testing.T) {
	svc, m := newInvoiceService()

	var gotUpload port.UploadInput
	m.storage.On("Upload", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotUpload = args.Get(1).(port.UploadInput)
		}).
		Return(&port.UploadOutput{Location: "https://example/garagebook-invoices/key"}, nil)

	var gotRecord *domain.Upload
	m.uploadRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotRecord = args.Get(1).(*domain.Upload)
		}).
		Return(nil)

	up, err := svc.UploadInvoice(context.Background(), &service.UploadInvoiceInput{
		FileName:    "Scan_June.PDF",
		ContentType: "application/pdf",
		SizeBytes:   2048,
		Body:        strings.NewReader("%PDF-1.4"),
	})
	require.NoError(t, err)
	require.NotNil(t, up)

	assert.Equal(t, "garagebook-invoices", gotUpload.Bucket)
	assert.Equal(t, "application/pdf", gotUpload.ContentType)
	assert.True(t, strings.HasPrefix(gotUpload.Key, "invoices/"), "key %q", gotUpload.Key)
	assert.True(t, strings.HasSuffix(gotUpload.Key, ".pdf"), "extension must be lowercased: %q", gotUpload.Key)

	assert.Equal(t, up, gotRecord)
	assert.Equal(t, domain.UploadStatusPending, up.Status)
	assert.Equal(t, "Scan_June.PDF", up.FileName)
	assert.Equal(t, gotUpload.Key, up.FileKey)
	assert.Equal(t, int64(2048), up.SizeBytes)
}

func TestUploadInvoice_StorageFailure(t *testing.T) {
	svc, m := newInvoiceService()

	m.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("bucket gone"))

	_, err := svc.UploadInvoice(context.Background(), &service.UploadInvoiceInput{
		FileName:    "scan.pdf",
		ContentType: "application/pdf",
		SizeBytes:   2048,
		Body:        strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)

	m.uploadRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProcessUpload_HappyPath(t *testing.T) {
	svc, m := newInvoiceService()

	up := &domain.Upload{
		ID:          uuid.New(),
		FileKey:     "invoices/2024/06/abc.pdf",
		ContentType: "application/pdf",
		Status:      domain.UploadStatusProcessing,
	}

	m.storage.On("GetPresignedURL", mock.Anything, "garagebook-invoices", up.FileKey, int64(900)).
		Return("https://signed.example/abc.pdf", nil)
	m.ocr.On("Extract", mock.Anything, "https://signed.example/abc.pdf", "application/pdf").
		Return(testRawExtraction(), nil)
	m.enhancer.On("Enhance", mock.Anything, mock.Anything).Return(aiSuccessResult())
	m.invoiceRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.uploadRepo.On("MarkDone", mock.Anything, up.ID, mock.Anything).Return(nil)

	err := svc.ProcessUpload(context.Background(), up)
	require.NoError(t, err)

	m.uploadRepo.AssertCalled(t, "MarkDone", mock.Anything, up.ID, mock.Anything)
	m.uploadRepo.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessUpload_OCRFailureMarksFailed(t *testing.T) {
	svc, m := newInvoiceService()

	up := &domain.Upload{ID: uuid.New(), FileKey: "invoices/2024/06/abc.pdf", ContentType: "application/pdf"}

	m.storage.On("GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("https://signed.example/abc.pdf", nil)
	m.ocr.On("Extract", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("service unavailable"))
	m.uploadRepo.On("MarkFailed", mock.Anything, up.ID, mock.Anything).Return(nil)

	err := svc.ProcessUpload(context.Background(), up)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ocr extraction")

	m.uploadRepo.AssertCalled(t, "MarkFailed", mock.Anything, up.ID, mock.Anything)
	m.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessUpload_PresignFailureMarksFailed(t *testing.T) {
	svc, m := newInvoiceService()

	up := &domain.Upload{ID: uuid.New(), FileKey: "invoices/2024/06/abc.pdf", ContentType: "application/pdf"}

	m.storage.On("GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("credentials expired"))
	m.uploadRepo.On("MarkFailed", mock.Anything, up.ID, mock.Anything).Return(nil)

	err := svc.ProcessUpload(context.Background(), up)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "presigning file")

	m.ocr.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetByID_LoadsInvoiceWithLines(t *testing.T) {
	svc, m := newInvoiceService()

	id := uuid.New()
	inv := &domain.Invoice{ID: id, InvoiceNumber: "4512"}
	lines := []domain.InvoiceLine{{ID: uuid.New(), InvoiceID: id}}

	m.invoiceRepo.On("GetByID", mock.Anything, id).Return(inv, nil)
	m.invoiceRepo.On("ListLines", mock.Anything, id).Return(lines, nil)

	gotInv, gotLines, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, inv, gotInv)
	assert.Equal(t, lines, gotLines)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, m := newInvoiceService()

	id := uuid.New()
	m.invoiceRepo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrInvoiceNotFound)

	_, _, err := svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
	m.invoiceRepo.AssertNotCalled(t, "ListLines", mock.Anything, mock.Anything)
}

func TestSetApproval_RecordsDecisionWithTimestamp(t *testing.T) {
	svc, m := newInvoiceService()

	id := uuid.New()
	var gotUpd port.ApprovalUpdate
	m.invoiceRepo.On("SetApproval", mock.Anything, id, mock.Anything).
		Run(func(args mock.Arguments) {
			gotUpd = args.Get(2).(port.ApprovalUpdate)
		}).
		Return(&domain.Invoice{ID: id}, nil)

	_, err := svc.SetApproval(context.Background(), &service.ApprovalInput{
		InvoiceID:     id,
		Approved:      true,
		ApprovedBy:    "fleet-manager",
		ReviewerNotes: "totals verified",
	})
	require.NoError(t, err)

	assert.True(t, gotUpd.Approved)
	assert.Equal(t, "fleet-manager", gotUpd.ApprovedBy)
	assert.Equal(t, "totals verified", gotUpd.ReviewerNotes)
	assert.False(t, gotUpd.ApprovedAt.IsZero())
}
