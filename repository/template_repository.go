package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"trykkeri-admin/models"
)

// TemplateRepository stores named pricing snapshots
type TemplateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(conn *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: conn}
}

var _ TemplateRepositoryInterface = (*TemplateRepository)(nil)

// Save inserts a snapshot, or overwrites the data of the one with the same id
func (r *TemplateRepository) Save(ctx context.Context, snapshot *models.TemplateSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO template_bank (id, name, product_id, data, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, data = excluded.data
	`, snapshot.ID, snapshot.Name, snapshot.ProductID, string(snapshot.Data), snapshot.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

// List returns snapshots, newest first. A non-empty productID narrows to that product.
func (r *TemplateRepository) List(ctx context.Context, productID string) ([]models.TemplateSnapshot, error) {
	query := `SELECT id, name, product_id, data, created_at FROM template_bank`
	var args []any
	if productID != "" {
		query += ` WHERE product_id = $1`
		args = append(args, productID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	out := []models.TemplateSnapshot{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate templates: %w", err)
	}
	return out, nil
}

// GetByID retrieves a snapshot
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.TemplateSnapshot, error) {
	t, err := scanTemplate(r.db.QueryRowContext(ctx,
		`SELECT id, name, product_id, data, created_at FROM template_bank WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

// Delete removes a snapshot
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM template_bank WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanTemplate(row rowScanner) (*models.TemplateSnapshot, error) {
	var t models.TemplateSnapshot
	var data string
	if err := row.Scan(&t.ID, &t.Name, &t.ProductID, &data, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Data = json.RawMessage(data)
	return &t, nil
}
