package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
)

// AttributeRepository handles attribute groups and their values
type AttributeRepository struct {
	db *sql.DB
}

// NewAttributeRepository creates a new AttributeRepository
func NewAttributeRepository(conn *sql.DB) *AttributeRepository {
	return &AttributeRepository{db: conn}
}

var _ AttributeRepositoryInterface = (*AttributeRepository)(nil)

// ListGroups returns the groups of a product with their values, both in sort order
func (r *AttributeRepository) ListGroups(ctx context.Context, productID string) ([]models.AttributeGroup, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, name, kind, ui_mode, sort_order
		FROM attribute_groups
		WHERE product_id = $1
		ORDER BY sort_order, name
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attribute groups: %w", err)
	}
	defer rows.Close()

	groups := []models.AttributeGroup{}
	index := map[string]int{}
	for rows.Next() {
		var g models.AttributeGroup
		var kind, mode string
		if err := rows.Scan(&g.ID, &g.ProductID, &g.Name, &kind, &mode, &g.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan attribute group: %w", err)
		}
		g.Kind = models.GroupKind(kind)
		g.UIMode = models.UIMode(mode)
		g.Values = []models.AttributeValue{}
		index[g.ID] = len(groups)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attribute groups: %w", err)
	}
	if len(groups) == 0 {
		return groups, nil
	}

	valueRows, err := r.db.QueryContext(ctx, `
		SELECT v.id, v.group_id, v.name, v.enabled, v.width_mm, v.height_mm, v.meta, v.sort_order
		FROM attribute_values v
		JOIN attribute_groups g ON g.id = v.group_id
		WHERE g.product_id = $1
		ORDER BY v.sort_order, v.name
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attribute values: %w", err)
	}
	defer valueRows.Close()

	for valueRows.Next() {
		var v models.AttributeValue
		var width, height sql.NullFloat64
		var meta string
		if err := valueRows.Scan(&v.ID, &v.GroupID, &v.Name, &v.Enabled, &width, &height, &meta, &v.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan attribute value: %w", err)
		}
		if width.Valid {
			v.WidthMM = &width.Float64
		}
		if height.Valid {
			v.HeightMM = &height.Float64
		}
		if meta != "" && meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &v.Meta); err != nil {
				logging.Warnf("⚠️  Ignoring invalid meta on attribute value %s: %v", v.ID, err)
			}
		}
		if i, ok := index[v.GroupID]; ok {
			groups[i].Values = append(groups[i].Values, v)
		}
	}
	if err := valueRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attribute values: %w", err)
	}
	return groups, nil
}

// CreateGroup inserts a group without values
func (r *AttributeRepository) CreateGroup(ctx context.Context, group *models.AttributeGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.UIMode == "" {
		group.UIMode = models.UIModeButtons
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attribute_groups (id, product_id, name, kind, ui_mode, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, group.ID, group.ProductID, group.Name, string(group.Kind), string(group.UIMode), group.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to insert attribute group: %w", err)
	}
	if group.Values == nil {
		group.Values = []models.AttributeValue{}
	}
	logging.Infof("💾 Created attribute group %s (%s) on product %s", group.Name, group.Kind, group.ProductID)
	return nil
}

// DeleteGroup removes a group and, by cascade, its values
func (r *AttributeRepository) DeleteGroup(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "attribute_groups", id)
}

// UpsertValue inserts a value or overwrites the one with the same id
func (r *AttributeRepository) UpsertValue(ctx context.Context, value *models.AttributeValue) error {
	if value.ID == "" {
		value.ID = uuid.NewString()
	}
	meta := "{}"
	if len(value.Meta) > 0 {
		b, err := json.Marshal(value.Meta)
		if err != nil {
			return fmt.Errorf("failed to encode meta: %w", err)
		}
		meta = string(b)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attribute_values (id, group_id, name, enabled, width_mm, height_mm, meta, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			enabled = excluded.enabled,
			width_mm = excluded.width_mm,
			height_mm = excluded.height_mm,
			meta = excluded.meta,
			sort_order = excluded.sort_order
	`, value.ID, value.GroupID, value.Name, value.Enabled, nullFloat(value.WidthMM), nullFloat(value.HeightMM), meta, value.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to upsert attribute value: %w", err)
	}
	return nil
}

// DeleteValue removes a value
func (r *AttributeRepository) DeleteValue(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "attribute_values", id)
}

func (r *AttributeRepository) deleteByID(ctx context.Context, table, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
