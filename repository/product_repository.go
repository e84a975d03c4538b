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

// ProductRepository handles database operations for products
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(conn *sql.DB) *ProductRepository {
	return &ProductRepository{db: conn}
}

var _ ProductRepositoryInterface = (*ProductRepository)(nil)

// Create inserts a product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	product.CreatedAt, product.UpdatedAt = now, now

	query := `
		INSERT INTO products (id, name, slug, image_url, pricing_structure, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Slug, product.ImageURL, nullJSON(product.PricingStructure), now, now,
	); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	logging.Infof("💾 Created product %s (%s)", product.Slug, product.ID)
	return nil
}

// GetByID retrieves a product by its ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `
		SELECT id, name, slug, image_url, pricing_structure, created_at, updated_at
		FROM products WHERE id = $1
	`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// List returns all products by name
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, slug, image_url, pricing_structure, created_at, updated_at
		FROM products ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// SavePricingStructure stores the matrix layout of a product
func (r *ProductRepository) SavePricingStructure(ctx context.Context, id string, structure json.RawMessage) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET pricing_structure = $1, updated_at = $2 WHERE id = $3`,
		nullJSON(structure), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to save pricing structure: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	logging.Infof("💾 Saved pricing structure of product %s (%d bytes)", id, len(structure))
	return nil
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var structure sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.ImageURL, &structure, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if structure.Valid && structure.String != "" {
		p.PricingStructure = json.RawMessage(structure.String)
	}
	return &p, nil
}

func nullJSON(raw json.RawMessage) sql.NullString {
	return sql.NullString{String: string(raw), Valid: len(raw) > 0}
}
