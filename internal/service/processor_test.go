package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"garagebook/internal/domain"
	"garagebook/internal/port"
	"garagebook/internal/rules"
	"garagebook/internal/service"
	"garagebook/mocks"
)

func testKeywordRules() []domain.KeywordRule {
	return []domain.KeywordRule{
		{ID: 1, Keyword: "oil filter", Classification: domain.ClassPart, MatchType: domain.MatchPartial, Weight: 80, IsActive: true},
		{ID: 2, Keyword: "labor", Classification: domain.ClassLabor, MatchType: domain.MatchContains, Weight: 90, IsActive: true},
		{ID: 3, Keyword: "shop supplies", Classification: domain.ClassFee, MatchType: domain.MatchPartial, Weight: 90, IsActive: true},
		{ID: 4, Keyword: "sales tax", Classification: domain.ClassTax, MatchType: domain.MatchPartial, Weight: 95, IsActive: true},
	}
}

func testRawExtraction() *domain.RawExtraction {
	return &domain.RawExtraction{
		VehicleID:     "TRUCK-07",
		InvoiceNumber: "4512",
		InvoiceDate:   "2024-06-15",
		Odometer:      "45,210",
		TotalCost:     74.93,
		LineItems: []domain.RawLineItem{
			{Description: "Oil filter PH7317", LineTotal: 8.99},
			{Description: "Labor - oil change", LineTotal: 45.00},
			{Description: "Sales tax", LineTotal: 4.94},
		},
	}
}

func newProcessor(enhancer *mocks.MockInvoiceEnhancer, ruleRepo *mocks.MockRuleRepo) *service.Processor {
	return service.NewProcessor(enhancer, rules.NewEngine(), ruleRepo)
}

func TestProcessInvoice_AISuccess(t *testing.T) {
	enhancer := new(mocks.MockInvoiceEnhancer)
	ruleRepo := new(mocks.MockRuleRepo)

	enhancer.On("Enhance", mock.Anything, mock.Anything).Return(&port.EnhanceResult{
		Success: true,
		Invoice: &port.ParsedInvoice{
			VehicleID:     "TRUCK-07",
			InvoiceNumber: "4512",
			InvoiceDate:   "2024-06-15",
			Odometer:      "45,210",
			TotalCost:     74.93,
			Description:   "Oil change service",
			Confidence:    85,
			LineItems: []port.ParsedLine{
				{LineNumber: 1, Description: "Oil filter PH7317", Classification: "Part", TotalCost: 8.99, Confidence: 90, PartNumber: "PH7317"},
				{LineNumber: 2, Description: "Labor - oil change", Classification: "Labor", TotalCost: 45.00, Confidence: 88},
			},
		},
	})

	p := newProcessor(enhancer, ruleRepo)
	result := p.ProcessInvoice(context.Background(), testRawExtraction())

	require.True(t, result.Success)
	assert.Equal(t, domain.MethodAIEnhanced, result.Method)
	assert.Equal(t, "TRUCK-07", result.VehicleID)
	assert.Equal(t, int64(45210), result.Odometer)
	assert.Equal(t, 85, result.Confidence)
	require.Len(t, result.LineItems, 2)
	assert.Equal(t, domain.ClassPart, result.LineItems[0].Classification)
	assert.Equal(t, domain.ExtractAIInferred, result.LineItems[0].ExtractionMethod)
	assert.Equal(t, "PH7317", result.LineItems[0].PartNumber)

	// AI succeeded; the rule dictionaries must not be touched.
	ruleRepo.AssertNotCalled(t, "ListKeywordRules", mock.Anything)
}

func TestProcessInvoice_AISuccessFillsMissingHeaderFields(t *testing.T) {
	enhancer := new(mocks.MockInvoiceEnhancer)
	ruleRepo := new(mocks.MockRuleRepo)

	enhancer.On("Enhance", mock.Anything, mock.Anything).Return(&port.EnhanceResult{
		Success: true,
		Invoice: &port.ParsedInvoice{
			Description: "Oil change service",
			Confidence:  80,
			LineItems: []port.ParsedLine{
				{LineNumber: 1, Description: "Oil filter", Classification: "Part", Confidence: 90},
			},
		},
	})

	p := newProcessor(enhancer, ruleRepo)
	result := p.ProcessInvoice(context.Background(), testRawExtraction())

	require.True(t, result.Success)
	assert.Equal(t, "TRUCK-07", result.VehicleID)
	assert.Equal(t, "4512", result.InvoiceNumber)
	assert.Equal(t, "2024-06-15", result.InvoiceDate)
	assert.Equal(t, int64(45210), result.Odometer)
	assert.Equal(t, 74.93, result.TotalCost)

	assert.Contains(t, result.Notes, "field vehicle_id filled from raw extraction")
	assert.Contains(t, result.Notes, "field invoice_number filled from raw extraction")
	assert.Contains(t, result.Notes, "field odometer filled from raw extraction")
	assert.Contains(t, result.Notes, "field total_cost filled from raw extraction")
}

func TestProcessInvoice_AIUnknownClassificationMapsToOther(t *testing.T) {
	enhancer := new(mocks.MockInvoiceEnhancer)
	ruleRepo := new(mocks.MockRuleRepo)

	enhancer.On("Enhance", mock.Anything, mock.Anything).Return(&port.EnhanceResult{
		Success: true,
		Invoice: &port.ParsedInvoice{
			Confidence: 75,
			LineItems: []port.ParsedLine{
				{LineNumber: 1, Description: "Coolant flush", Classification: "Consumable", Confidence: 60},
			},
		},
	})

	p := newProcessor(enhancer, ruleRepo)
	result := p.ProcessInvoice(context.Background(), testRawExtraction())

	require.True(t, result.Success)
	require.Len(t, result.LineItems, 1)
	assert.Equal(t, domain.ClassOther, result.LineItems[0].Classification)
	assert.Contains(t, result.Notes, `line 1: unknown classification "Consumable" mapped to Other`)
}

func TestProcessInvoice_AIEmptyLinesDelegatesClassification(t *testing.T) {
	enhancer := new(mocks.MockInvoiceEnhancer)
	ruleRepo := new(mocks.MockRuleRepo)

	enhancer.On("Enhance", mock.Anything, mock.Anything).Return(&port.EnhanceResult{
		Success: true,
		Invoice: &port.ParsedInvoice{
			VehicleID:     "TRUCK-07",
			InvoiceNumber: "4512",
			Confidence:    70,
		},
	})
	ruleRepo.On("ListKeywordRules", mock.Anything).Return(testKeywordRules(), nil)
	ruleRepo.On("ListFieldMappingRules", mock.Anything).Return([]domain.FieldMappingRule{}, nil)

	p := newProcessor(enhancer, ruleRepo)
	result := p.ProcessInvoice(context.Background(), testRawExtraction())

	require.True(t, result.Success)
	// Header values stay AI-authoritative even though lines came from rules.
	assert.Equal(t, domain.MethodAIEnhanced, result.Method)
	assert.Equal(t, "TRUCK-07", result.VehicleID)
	require.Len(t, result.LineItems, 3)
	assert.Equal(t, domain.ClassPart, result.LineItems[0].Classification)
	assert.Equal(t, domain.ClassLabor, result.LineItems[1].Classification)
	assert.Equal(t, domain.ClassTax, result.LineItems[2].Classification)
	assert.Contains(t, result.Notes, "AI returned no line items; 3 line items classified by rule engine")
}

func TestProcessInvoice_RateLimitFallsBack(t *testing.T) {
	enhancer := new(mocks.MockInvoiceEnhancer)
	ruleRepo := new(mocks.MockRuleRepo)

	enhancer.On("Enhance", mock.Anything, mock.Anything).Return(&port.EnhanceResult{
		Success:              false,
		Failure:              domain.FailureRateLimited,
		ErrorMessage:         "AI endpoint rate limited (status 429)",
		RateLimitEncountered: true,
	})
	ruleRepo.On("ListKeywordRules", mock.Anything).Return(testKeywordRules(), nil)
	ruleRepo.On("ListFieldMappingRules", mock.Anything).Return([]domain.FieldMappingRule{}, nil)

	p := newProcessor(enhancer, ruleRepo)
	result := p.ProcessInvoice(context.Background(), testRawExtraction())

	require.True(t, result.Success)
	assert.Equal(t, domain.MethodRuleFallback, result.Method)
	require.NotEmpty(t, result.Notes)
	assert.Equal(t, "Rate limit encountered, used fallback", result.Notes[0])

	require.Len(t, result.LineItems, 3)
	assert.Equal(t, domain.ClassPart, result.LineItems[0].Classification)
	assert.Equal(t, domain.ClassLabor, result.LineItems[1].Classification)
	assert.Equal(t, domain.ClassTax, result.LineItems[2].Classification)
}

func TestProcessInvoice_GenericFailureFallsBackWithReason(t *testing.T) {
	enhancer := new(mocks.MockInvoiceEnhancer)
	ruleRepo := new(mocks.MockRuleRepo)

	enhancer.On("Enhance", mock.Anything, mock.Anything).Return(&port.EnhanceResult{
		Success:      false,
		Failure:      domain.FailureGeneric,
		ErrorMessage: "calling AI endpoint: connection refused",
	})
	ruleRepo.On("ListKeywordRules", mock.Anything).Return(testKeywordRules(), nil)
	ruleRepo.On("ListFieldMappingRules", mock.Anything).Return([]domain.FieldMappingRule{}, nil)

	p := newProcessor(enhancer, ruleRepo)
	result := p.ProcessInvoice(context.Background(), testRawExtraction())

	require.True(t, result.Success)
	assert.Equal(t, domain.MethodRuleFallback, result.Method)
	require.NotEmpty(t, result.Notes)
	assert.Equal(t, "AI processing failed: calling AI endpoint: connection refused", result.Notes[0])
}

func TestProcessInvoice_BothPathsUnavailable(t *testing.T) {
	enhancer := new(mocks.MockInvoiceEnhancer)
	ruleRepo := new(mocks.MockRuleRepo)

	enhancer.On("Enhance", mock.Anything, mock.Anything).Return(&port.EnhanceResult{
		Success:      false,
		Failure:      domain.FailureGeneric,
		ErrorMessage: "calling AI endpoint: connection refused",
	})
	ruleRepo.On("ListKeywordRules", mock.Anything).Return(nil, errors.New("db down"))

	p := newProcessor(enhancer, ruleRepo)
	result := p.ProcessInvoice(context.Background(), testRawExtraction())

	assert.False(t, result.Success)
	assert.Equal(t, domain.MethodRuleFallback, result.Method)
	assert.Equal(t, domain.FailureFallbackError, result.Failure)
	assert.Contains(t, result.FailureMessage, "loading rule dictionaries")
	assert.Contains(t, result.FailureMessage, "db down")
}

func TestProcessInvoice_AverageConfidenceWhenAIOmitsIt(t *testing.T) {
	enhancer := new(mocks.MockInvoiceEnhancer)
	ruleRepo := new(mocks.MockRuleRepo)

	enhancer.On("Enhance", mock.Anything, mock.Anything).Return(&port.EnhanceResult{
		Success: true,
		Invoice: &port.ParsedInvoice{
			LineItems: []port.ParsedLine{
				{LineNumber: 1, Description: "a", Classification: "Part", Confidence: 80},
				{LineNumber: 2, Description: "b", Classification: "Labor", Confidence: 60},
			},
		},
	})

	p := newProcessor(enhancer, ruleRepo)
	result := p.ProcessInvoice(context.Background(), testRawExtraction())

	require.True(t, result.Success)
	assert.Equal(t, 70, result.Confidence)
}
