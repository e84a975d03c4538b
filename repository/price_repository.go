package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
)

// PriceRepository handles the published generated_prices rows
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository
func NewPriceRepository(conn *sql.DB) *PriceRepository {
	return &PriceRepository{db: conn}
}

var _ PriceRepositoryInterface = (*PriceRepository)(nil)

// ListByProduct returns the published rows of a product
func (r *PriceRepository) ListByProduct(ctx context.Context, productID string) ([]models.GeneratedPrice, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, variant_name, variant_value, quantity, price, extra_data
		FROM generated_prices
		WHERE product_id = $1
		ORDER BY variant_name, variant_value, quantity
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list generated prices: %w", err)
	}
	defer rows.Close()

	prices := []models.GeneratedPrice{}
	for rows.Next() {
		var p models.GeneratedPrice
		var extra sql.NullString
		if err := rows.Scan(&p.ProductID, &p.VariantName, &p.VariantValue, &p.Quantity, &p.Price, &extra); err != nil {
			return nil, fmt.Errorf("failed to scan generated price: %w", err)
		}
		if extra.Valid && extra.String != "" {
			p.ExtraData = json.RawMessage(extra.String)
		}
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate generated prices: %w", err)
	}
	return prices, nil
}

// Replace upserts rows on (product_id, variant_name, variant_value, quantity) and then drops the
// product's rows that this publish did not touch. Both happen in one transaction.
func (r *PriceRepository) Replace(ctx context.Context, productID string, rows []models.GeneratedPrice, at time.Time) (int, error) {
	logging.Infof("📤 Publishing %d price rows for product %s", len(rows), productID)
	at = at.UTC().Truncate(time.Microsecond)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO generated_prices (product_id, variant_name, variant_value, quantity, price, extra_data, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_id, variant_name, variant_value, quantity) DO UPDATE SET
			price = excluded.price,
			extra_data = excluded.extra_data,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if row.ProductID != productID {
			return 0, fmt.Errorf("row for product %s in publish of %s", row.ProductID, productID)
		}
		if _, err := stmt.ExecContext(ctx,
			row.ProductID, row.VariantName, row.VariantValue, row.Quantity, row.Price, nullJSON(row.ExtraData), at,
		); err != nil {
			logging.Errorf("❌ Upsert failed for %s/%s/%d: %v", row.VariantName, row.VariantValue, row.Quantity, err)
			return 0, fmt.Errorf("failed to upsert generated price: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM generated_prices WHERE product_id = $1 AND updated_at < $2`, productID, at)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale prices: %w", err)
	}
	stale, _ := result.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit publish: %w", err)
	}
	logging.Infof("✅ Published %d rows for product %s (%d stale rows removed)", len(rows), productID, stale)
	return len(rows), nil
}
