// Package ocrclient implements the HTTP adapter for the upstream OCR
// extraction service.
package ocrclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"garagebook/internal/domain"
)

const defaultTimeout = 60 * time.Second

// Client calls the OCR extraction service over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates an OCR extraction client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type extractRequest struct {
	FileURL     string `json:"file_url"`
	ContentType string `json:"content_type"`
}

// Extract submits a scanned invoice file by URL and returns the raw
// field and line-item structure the service recognized.
func (c *Client) Extract(ctx context.Context, fileURL, contentType string) (*domain.RawExtraction, error) {
	body, err := json.Marshal(extractRequest{FileURL: fileURL, ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("ocrclient.Extract: marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/extract", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ocrclient.Extract: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ocrclient.Extract: sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ocrclient.Extract: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocrclient.Extract: service returned status %d: %s", resp.StatusCode, truncate(respBody, 300))
	}

	var raw domain.RawExtraction
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("ocrclient.Extract: decoding response: %w", err)
	}
	return &raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
