package port

import (
	"context"

	"github.com/google/uuid"

	"garagebook/internal/domain"
)

// UploadRepository defines the contract for scanned-upload persistence.
// ClaimPending atomically moves up to limit pending uploads into the
// processing state so concurrent workers never claim the same row.
type UploadRepository interface {
	Create(ctx context.Context, up *domain.Upload) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error)
	ClaimPending(ctx context.Context, limit int) ([]domain.Upload, error)
	MarkDone(ctx context.Context, id, invoiceID uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
}
