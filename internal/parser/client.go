// Package parser implements the AI enhancement client: a single
// chat-completions call against the configured LLM endpoint, with typed
// failure classification and tolerant extraction of the JSON payload from the
// model's free-text reply.
package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"garagebook/internal/config"
	"garagebook/internal/domain"
	"garagebook/internal/port"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements port.InvoiceEnhancer using a chat-completions style API.
// No retries are attempted here; retry policy belongs to the caller.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewClient creates an enhancement client from config.
func NewClient(cfg *config.EnhancerConfig) *Client {
	return newClient(cfg, apiURL)
}

// NewClientWithEndpoint creates a client pointing at a custom API endpoint (for testing).
func NewClientWithEndpoint(cfg *config.EnhancerConfig, endpoint string) *Client {
	return newClient(cfg, endpoint)
}

func newClient(cfg *config.EnhancerConfig, endpoint string) *Client {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enhance sends the raw extraction for interpretation and returns a typed
// outcome. Failures are classified, never raised: the caller branches on the
// result, not on an error.
func (c *Client) Enhance(ctx context.Context, raw *domain.RawExtraction) *port.EnhanceResult {
	rawJSON, err := json.Marshal(raw)
	if err != nil {
		return failure(domain.FailureGeneric, fmt.Sprintf("encoding raw extraction: %v", err), false)
	}

	reqBody := map[string]interface{}{
		"model":                 c.model,
		"max_completion_tokens": 8192,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": BuildMaintenancePrompt(string(rawJSON)),
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return failure(domain.FailureGeneric, fmt.Sprintf("marshaling request: %v", err), false)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return failure(domain.FailureGeneric, fmt.Sprintf("creating request: %v", err), false)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		// Timeouts and transport errors are generic failures; the caller
		// falls back to the rule engine.
		return failure(domain.FailureGeneric, fmt.Sprintf("calling AI endpoint: %v", err), false)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(domain.FailureGeneric, fmt.Sprintf("reading response: %v", err), false)
	}

	if resp.StatusCode != http.StatusOK {
		kind := classifyStatus(resp.StatusCode)
		msg := failureMessage(resp.StatusCode, string(respBody))
		if kind == domain.FailureRateLimited {
			if secs := ParseRetryAfterHeader(resp.Header.Get("Retry-After")); secs > 0 {
				msg = fmt.Sprintf("%s (retry after %ds)", msg, secs)
			}
			return failure(kind, msg, true)
		}
		return failure(kind, msg, false)
	}

	return c.parseResponse(respBody)
}

// chatResponse models the chat-completions API response envelope.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// aiInvoice is the wire shape the model is asked to return. Confidence values
// arrive in [0,1] and are scaled to 0-100 during conversion.
type aiInvoice struct {
	VehicleID     string  `json:"vehicle_id"`
	InvoiceNumber string  `json:"invoice_number"`
	InvoiceDate   string  `json:"invoice_date"`
	Odometer      string  `json:"odometer"`
	TotalCost     float64 `json:"total_cost"`
	PartsCost     float64 `json:"parts_cost"`
	LaborCost     float64 `json:"labor_cost"`
	Description   string  `json:"description"`
	LineItems     []struct {
		LineNumber     int     `json:"line_number"`
		Description    string  `json:"description"`
		Classification string  `json:"classification"`
		UnitCost       float64 `json:"unit_cost"`
		Quantity       float64 `json:"quantity"`
		TotalCost      float64 `json:"total_cost"`
		Confidence     float64 `json:"confidence"`
		PartNumber     string  `json:"part_number"`
	} `json:"line_items"`
	Confidence      float64  `json:"confidence"`
	ProcessingNotes []string `json:"processing_notes"`
}

func (c *Client) parseResponse(body []byte) *port.EnhanceResult {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return failure(domain.FailureJSONError, fmt.Sprintf("unmarshaling response envelope: %v", err), false)
	}
	if len(resp.Choices) == 0 {
		return failure(domain.FailureJSONError, "empty response from API: no choices", false)
	}
	if resp.Choices[0].FinishReason == "length" {
		return failure(domain.FailureJSONError, "output truncated (finish_reason: length)", false)
	}

	content := resp.Choices[0].Message.Content
	rawObj, err := ExtractJSON(content)
	if err != nil {
		log.Printf("parser.Client: JSON extraction failed: %v", err)
		return failure(domain.FailureJSONError, fmt.Sprintf("extracting JSON from model output: %v", err), false)
	}

	var inv aiInvoice
	if err := json.Unmarshal(rawObj, &inv); err != nil {
		return failure(domain.FailureJSONError, fmt.Sprintf("decoding invoice JSON: %v", err), false)
	}

	return &port.EnhanceResult{
		Success: true,
		Invoice: toParsedInvoice(&inv),
	}
}

func toParsedInvoice(inv *aiInvoice) *port.ParsedInvoice {
	out := &port.ParsedInvoice{
		VehicleID:     inv.VehicleID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		Odometer:      inv.Odometer,
		TotalCost:     inv.TotalCost,
		PartsCost:     inv.PartsCost,
		LaborCost:     inv.LaborCost,
		Description:   inv.Description,
		Confidence:    scaleConfidence(inv.Confidence),
		Notes:         inv.ProcessingNotes,
	}
	for i, li := range inv.LineItems {
		lineNumber := li.LineNumber
		if lineNumber == 0 {
			lineNumber = i + 1
		}
		out.LineItems = append(out.LineItems, port.ParsedLine{
			LineNumber:     lineNumber,
			Description:    li.Description,
			Classification: li.Classification,
			UnitCost:       li.UnitCost,
			Quantity:       li.Quantity,
			TotalCost:      li.TotalCost,
			Confidence:     scaleConfidence(li.Confidence),
			PartNumber:     li.PartNumber,
		})
	}
	return out
}

// scaleConfidence converts a model confidence in [0,1] to the 0-100 scale
// used everywhere else. Values already above 1 are assumed pre-scaled.
func scaleConfidence(v float64) int {
	if v <= 1.0 {
		v *= 100
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}

func failure(kind domain.FailureKind, msg string, rateLimited bool) *port.EnhanceResult {
	return &port.EnhanceResult{
		Success:              false,
		Failure:              kind,
		ErrorMessage:         msg,
		RateLimitEncountered: rateLimited,
	}
}
