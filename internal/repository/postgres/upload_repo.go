package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"garagebook/internal/domain"
	"garagebook/internal/port"
)

type uploadRepo struct {
	db *sqlx.DB
}

// NewUploadRepo creates a new PostgreSQL-backed UploadRepository.
func NewUploadRepo(db *sqlx.DB) port.UploadRepository {
	return &uploadRepo{db: db}
}

func (r *uploadRepo) Create(ctx context.Context, up *domain.Upload) error {
	now := time.Now().UTC()
	up.CreatedAt = now
	up.UpdatedAt = now

	query := `INSERT INTO uploads (
		id, file_name, file_key, content_type, size_bytes,
		status, attempts, error_message, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10
	)`
	_, err := r.db.ExecContext(ctx, query,
		up.ID, up.FileName, up.FileKey, up.ContentType, up.SizeBytes,
		up.Status, up.Attempts, up.ErrorMessage, up.CreatedAt, up.UpdatedAt)
	if err != nil {
		return fmt.Errorf("uploadRepo.Create: %w", err)
	}
	return nil
}

func (r *uploadRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Upload, error) {
	var up domain.Upload
	err := r.db.GetContext(ctx, &up, "SELECT * FROM uploads WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("uploadRepo.GetByID: %w", err)
	}
	return &up, nil
}

// ClaimPending flips up to limit pending rows to processing in one statement.
// SKIP LOCKED keeps concurrent workers from claiming the same row.
func (r *uploadRepo) ClaimPending(ctx context.Context, limit int) ([]domain.Upload, error) {
	var uploads []domain.Upload
	err := r.db.SelectContext(ctx, &uploads,
		`UPDATE uploads
		 SET status = 'processing', attempts = attempts + 1, updated_at = NOW()
		 WHERE id IN (
		   SELECT id FROM uploads
		   WHERE status = 'pending'
		   ORDER BY created_at
		   LIMIT $1
		   FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`, limit)
	if err != nil {
		return nil, fmt.Errorf("uploadRepo.ClaimPending: %w", err)
	}
	return uploads, nil
}

func (r *uploadRepo) MarkDone(ctx context.Context, id, invoiceID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE uploads
		 SET status = 'done', invoice_id = $2, error_message = '', updated_at = NOW()
		 WHERE id = $1`, id, invoiceID)
	if err != nil {
		return fmt.Errorf("uploadRepo.MarkDone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *uploadRepo) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE uploads
		 SET status = 'failed', error_message = $2, updated_at = NOW()
		 WHERE id = $1`, id, errMsg)
	if err != nil {
		return fmt.Errorf("uploadRepo.MarkFailed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
