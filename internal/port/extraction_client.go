package port

import (
	"context"

	"garagebook/internal/domain"
)

// ExtractionClient abstracts the upstream OCR collaborator. The service is a
// black box: it receives a link to the scanned file and returns the raw
// field/line-item structure. Missing fields in the result are legitimately
// absent, not errors.
type ExtractionClient interface {
	Extract(ctx context.Context, fileURL, contentType string) (*domain.RawExtraction, error)
}
