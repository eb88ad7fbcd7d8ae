package parser

import (
	"fmt"
	"net/http"
	"strconv"

	"garagebook/internal/domain"
)

// classifyStatus maps an LLM endpoint HTTP status onto the failure taxonomy.
func classifyStatus(status int) domain.FailureKind {
	switch status {
	case http.StatusTooManyRequests:
		return domain.FailureRateLimited
	case http.StatusUnauthorized:
		return domain.FailureAuthError
	case http.StatusPaymentRequired:
		return domain.FailureQuotaExceeded
	case http.StatusRequestEntityTooLarge:
		return domain.FailurePayloadTooLarge
	default:
		return domain.FailureGeneric
	}
}

// failureMessage builds the human-readable error message stored on a failed
// enhancement result.
func failureMessage(status int, body string) string {
	const maxBody = 300
	if len(body) > maxBody {
		body = body[:maxBody] + "..."
	}
	switch classifyStatus(status) {
	case domain.FailureRateLimited:
		return fmt.Sprintf("AI endpoint rate limited (status %d): %s", status, body)
	case domain.FailureAuthError:
		return fmt.Sprintf("AI endpoint rejected credentials (status %d): %s", status, body)
	case domain.FailureQuotaExceeded:
		return fmt.Sprintf("AI endpoint quota exceeded (status %d): %s", status, body)
	case domain.FailurePayloadTooLarge:
		return fmt.Sprintf("AI request payload too large (status %d): %s", status, body)
	default:
		return fmt.Sprintf("AI endpoint error (status %d): %s", status, body)
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
