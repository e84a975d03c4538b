package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
)

// InvoiceRepository handles database operations for invoices
type InvoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(conn *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: conn}
}

var _ InvoiceRepositoryInterface = (*InvoiceRepository)(nil)

// Create inserts an invoice with its lines atomically
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	billTo, err := json.Marshal(invoice.BillTo)
	if err != nil {
		return fmt.Errorf("failed to encode bill-to: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (id, number, issued_at, due_at, currency, bill_to, notes, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, invoice.ID, invoice.Number, invoice.IssuedAt, invoice.DueAt, invoice.Currency, string(billTo), invoice.Notes, nullTime(invoice.PaidAt))
	if err != nil {
		logging.Errorf("❌ Error inserting invoice %s: %v", invoice.Number, err)
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	for i, line := range invoice.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO invoice_lines (invoice_id, position, description, quantity, unit_price, vat_percent)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, invoice.ID, i, line.Description, line.Quantity, line.UnitPrice, line.VATPercent)
		if err != nil {
			return fmt.Errorf("failed to insert invoice line %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invoice: %w", err)
	}
	logging.Infof("✅ Created invoice %s with %d lines", invoice.Number, len(invoice.Lines))
	return nil
}

// GetByID retrieves an invoice with its lines
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, `
		SELECT id, number, issued_at, due_at, currency, bill_to, notes, paid_at
		FROM invoices WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT description, quantity, unit_price, vat_percent
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice lines: %w", err)
	}
	defer rows.Close()

	inv.Lines = []models.InvoiceLine{}
	for rows.Next() {
		var l models.InvoiceLine
		if err := rows.Scan(&l.Description, &l.Quantity, &l.UnitPrice, &l.VATPercent); err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}
		inv.Lines = append(inv.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoice lines: %w", err)
	}
	return inv, nil
}

// List returns the latest invoices without their lines
func (r *InvoiceRepository) List(ctx context.Context, limit int) ([]models.Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, number, issued_at, due_at, currency, bill_to, notes, paid_at
		FROM invoices ORDER BY issued_at DESC, number DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	out := []models.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		out = append(out, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", err)
	}
	return out, nil
}

// MarkPaid sets the paid timestamp that the PDF renders as a stamp
func (r *InvoiceRepository) MarkPaid(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE invoices SET paid_at = $1 WHERE id = $2`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark invoice paid: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("invoice %s: %w", id, ErrNotFound)
	}
	logging.Infof("💰 Invoice %s marked paid", id)
	return nil
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	var inv models.Invoice
	var billTo string
	var paidAt sql.NullTime
	if err := row.Scan(&inv.ID, &inv.Number, &inv.IssuedAt, &inv.DueAt, &inv.Currency, &billTo, &inv.Notes, &paidAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(billTo), &inv.BillTo); err != nil {
		return nil, fmt.Errorf("invalid bill_to: %w", err)
	}
	if paidAt.Valid {
		t := paidAt.Time
		inv.PaidAt = &t
	}
	return &inv, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
