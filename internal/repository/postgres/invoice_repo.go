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

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice, lines []domain.InvoiceLine) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create begin: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO invoices (
		id, vehicle_id, invoice_number, invoice_date, odometer,
		total_cost, parts_cost, labor_cost, description,
		processing_method, confidence, processing_notes, file_key,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12, $13,
		$14, $15
	)`
	_, err = tx.ExecContext(ctx, query,
		inv.ID, inv.VehicleID, inv.InvoiceNumber, inv.InvoiceDate, inv.Odometer,
		inv.TotalCost, inv.PartsCost, inv.LaborCost, inv.Description,
		inv.Method, inv.Confidence, inv.Notes, inv.FileKey,
		inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create header: %w", err)
	}

	lineQuery := `INSERT INTO invoice_lines (
		id, invoice_id, line_number, description, unit_cost, quantity,
		total_cost, classification, confidence, part_number, extraction_method,
		created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9, $10, $11,
		$12
	)`
	for i := range lines {
		lines[i].CreatedAt = now
		li := &lines[i]
		_, err = tx.ExecContext(ctx, lineQuery,
			li.ID, li.InvoiceID, li.LineNumber, li.Description, li.UnitCost, li.Quantity,
			li.TotalCost, li.Classification, li.Confidence, li.PartNumber, li.ExtractionMethod,
			li.CreatedAt)
		if err != nil {
			return fmt.Errorf("invoiceRepo.Create line %d: %w", li.LineNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("invoiceRepo.Create commit: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, "SELECT * FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) ListLines(ctx context.Context, invoiceID uuid.UUID) ([]domain.InvoiceLine, error) {
	var lines []domain.InvoiceLine
	err := r.db.SelectContext(ctx, &lines,
		"SELECT * FROM invoice_lines WHERE invoice_id = $1 ORDER BY line_number", invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListLines: %w", err)
	}
	return lines, nil
}

func (r *invoiceRepo) List(ctx context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM invoices")
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	var invoices []domain.Invoice
	err = r.db.SelectContext(ctx, &invoices,
		"SELECT * FROM invoices ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) SetApproval(ctx context.Context, id uuid.UUID, upd port.ApprovalUpdate) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv,
		`UPDATE invoices
		 SET approved = $2, approved_by = $3, approved_at = $4, reviewer_notes = $5, updated_at = $6
		 WHERE id = $1
		 RETURNING *`,
		id, upd.Approved, upd.ApprovedBy, upd.ApprovedAt, upd.ReviewerNotes, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.SetApproval: %w", err)
	}
	return &inv, nil
}
