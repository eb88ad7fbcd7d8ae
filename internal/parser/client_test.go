package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garagebook/internal/config"
	"garagebook/internal/domain"
)

func testEnhancerConfig() *config.EnhancerConfig {
	return &config.EnhancerConfig{
		APIKey:      "test-key",
		Model:       "gpt-4o",
		TimeoutSecs: 5,
	}
}

func sampleRaw() *domain.RawExtraction {
	return &domain.RawExtraction{
		VehicleID:     "TRUCK-07",
		InvoiceNumber: "4512",
		TotalCost:     74.93,
		LineItems: []domain.RawLineItem{
			{Description: "Oil filter PH7317", LineTotal: 8.99},
			{Description: "Labor - oil change", LineTotal: 45.00},
		},
	}
}

// chatBody wraps model output content in a chat-completions response envelope.
func chatBody(content, finishReason string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message":       map[string]string{"content": content},
				"finish_reason": finishReason,
			},
		},
	})
	return string(b)
}

func TestEnhance_Success(t *testing.T) {
	invoiceJSON := `{
		"vehicle_id": "TRUCK-07",
		"invoice_number": "4512",
		"invoice_date": "2024-06-15",
		"odometer": "45210",
		"total_cost": 74.93,
		"parts_cost": 8.99,
		"labor_cost": 45.00,
		"description": "Oil change service",
		"confidence": 0.85,
		"line_items": [
			{"line_number": 1, "description": "Oil filter PH7317", "classification": "Part", "total_cost": 8.99, "confidence": 0.9, "part_number": "PH7317"},
			{"description": "Labor - oil change", "classification": "Labor", "total_cost": 45.00, "confidence": 0.7}
		],
		"processing_notes": ["odometer read from handwritten field"]
	}`

	var gotAuth string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		fmt.Fprint(w, chatBody("```json\n"+invoiceJSON+"\n```", "stop"))
	}))
	defer server.Close()

	client := NewClientWithEndpoint(testEnhancerConfig(), server.URL)
	result := client.Enhance(context.Background(), sampleRaw())

	require.True(t, result.Success, "expected success, got failure: %s", result.ErrorMessage)
	require.NotNil(t, result.Invoice)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "gpt-4o", gotBody["model"])

	inv := result.Invoice
	assert.Equal(t, "TRUCK-07", inv.VehicleID)
	assert.Equal(t, "4512", inv.InvoiceNumber)
	assert.Equal(t, "2024-06-15", inv.InvoiceDate)
	assert.Equal(t, 74.93, inv.TotalCost)
	assert.Equal(t, 85, inv.Confidence)
	assert.Equal(t, []string{"odometer read from handwritten field"}, inv.Notes)

	require.Len(t, inv.LineItems, 2)
	assert.Equal(t, 1, inv.LineItems[0].LineNumber)
	assert.Equal(t, "Part", inv.LineItems[0].Classification)
	assert.Equal(t, "PH7317", inv.LineItems[0].PartNumber)
	assert.Equal(t, 90, inv.LineItems[0].Confidence)
	// Missing line numbers default to position order.
	assert.Equal(t, 2, inv.LineItems[1].LineNumber)
	assert.Equal(t, 70, inv.LineItems[1].Confidence)
}

func TestEnhance_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "Rate limit reached"}}`)
	}))
	defer server.Close()

	client := NewClientWithEndpoint(testEnhancerConfig(), server.URL)
	result := client.Enhance(context.Background(), sampleRaw())

	assert.False(t, result.Success)
	assert.Equal(t, domain.FailureRateLimited, result.Failure)
	assert.True(t, result.RateLimitEncountered)
	assert.Contains(t, result.ErrorMessage, "rate limited")
	assert.Contains(t, result.ErrorMessage, "(retry after 30s)")
}

func TestEnhance_StatusClassification(t *testing.T) {
	tests := []struct {
		status      int
		wantFailure domain.FailureKind
		wantMessage string
	}{
		{http.StatusUnauthorized, domain.FailureAuthError, "rejected credentials"},
		{http.StatusPaymentRequired, domain.FailureQuotaExceeded, "quota exceeded"},
		{http.StatusRequestEntityTooLarge, domain.FailurePayloadTooLarge, "payload too large"},
		{http.StatusInternalServerError, domain.FailureGeneric, "endpoint error"},
		{http.StatusBadGateway, domain.FailureGeneric, "endpoint error"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, "upstream error detail")
			}))
			defer server.Close()

			client := NewClientWithEndpoint(testEnhancerConfig(), server.URL)
			result := client.Enhance(context.Background(), sampleRaw())

			assert.False(t, result.Success)
			assert.Equal(t, tt.wantFailure, result.Failure)
			assert.False(t, result.RateLimitEncountered)
			assert.Contains(t, result.ErrorMessage, tt.wantMessage)
			assert.Contains(t, result.ErrorMessage, "upstream error detail")
		})
	}
}

func TestEnhance_LongErrorBodyTruncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, strings.Repeat("x", 1000))
	}))
	defer server.Close()

	client := NewClientWithEndpoint(testEnhancerConfig(), server.URL)
	result := client.Enhance(context.Background(), sampleRaw())

	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "...")
	assert.Less(t, len(result.ErrorMessage), 400)
}

func TestEnhance_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	}))
	defer server.Close()

	client := NewClientWithEndpoint(testEnhancerConfig(), server.URL)
	result := client.Enhance(context.Background(), sampleRaw())

	assert.False(t, result.Success)
	assert.Equal(t, domain.FailureJSONError, result.Failure)
	assert.Contains(t, result.ErrorMessage, "no choices")
}

func TestEnhance_TruncatedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatBody(`{"invoice_number": "45`, "length"))
	}))
	defer server.Close()

	client := NewClientWithEndpoint(testEnhancerConfig(), server.URL)
	result := client.Enhance(context.Background(), sampleRaw())

	assert.False(t, result.Success)
	assert.Equal(t, domain.FailureJSONError, result.Failure)
	assert.Contains(t, result.ErrorMessage, "truncated")
}

func TestEnhance_NoJSONInContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatBody("I could not read this invoice.", "stop"))
	}))
	defer server.Close()

	client := NewClientWithEndpoint(testEnhancerConfig(), server.URL)
	result := client.Enhance(context.Background(), sampleRaw())

	assert.False(t, result.Success)
	assert.Equal(t, domain.FailureJSONError, result.Failure)
	assert.Contains(t, result.ErrorMessage, "extracting JSON")
}

func TestEnhance_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClientWithEndpoint(testEnhancerConfig(), server.URL)
	result := client.Enhance(context.Background(), sampleRaw())

	assert.False(t, result.Success)
	assert.Equal(t, domain.FailureGeneric, result.Failure)
	assert.Contains(t, result.ErrorMessage, "calling AI endpoint")
}

func TestScaleConfidence(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0.85, 85},
		{1.0, 100},
		{0, 0},
		{0.004, 0},
		{0.995, 100},
		{85, 85},   // already scaled
		{150, 100}, // clamped
		{-0.5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, scaleConfidence(tt.in), "scaleConfidence(%v)", tt.in)
	}
}
