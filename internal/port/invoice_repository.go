package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"garagebook/internal/domain"
)

// ApprovalUpdate carries an approval decision with its audit fields.
type ApprovalUpdate struct {
	Approved      bool
	ApprovedBy    string
	ApprovedAt    time.Time
	ReviewerNotes string
}

// InvoiceRepository defines the contract for processed-invoice persistence.
// Header and line records are written together in one transaction.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice, lines []domain.InvoiceLine) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	ListLines(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceLine, error)
	List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error)
	SetApproval(ctx context.Context, id uuid.UUID, upd ApprovalUpdate) (*domain.Invoice, error)
}
