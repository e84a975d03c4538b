package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
)

// DesignAssetRepository handles database operations for design assets
// Implements DesignAssetRepositoryInterface
type DesignAssetRepository struct {
	db *sql.DB
}

// NewDesignAssetRepository creates a new DesignAssetRepository
func NewDesignAssetRepository(conn *sql.DB) *DesignAssetRepository {
	return &DesignAssetRepository{db: conn}
}

// Ensure DesignAssetRepository implements DesignAssetRepositoryInterface
var _ DesignAssetRepositoryInterface = (*DesignAssetRepository)(nil)

const designAssetColumns = `
	id, kind, name, description, COALESCE(drive_file_id, ''), image_url, thumb_url,
	tags, status, is_active, created_at, updated_at`

// ExistsByDriveFileID checks if a design asset exists by drive_file_id
func (r *DesignAssetRepository) ExistsByDriveFileID(ctx context.Context, driveFileID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM design_assets WHERE drive_file_id = $1)`
	if err := r.db.QueryRowContext(ctx, query, driveFileID).Scan(&exists); err != nil {
		logging.Errorf("❌ Error checking existence for drive_file_id %s: %v", driveFileID, err)
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

// Insert stores a new asset. An asset whose drive_file_id is already known is skipped and
// Insert reports false.
func (r *DesignAssetRepository) Insert(ctx context.Context, asset *models.DesignAsset) (bool, error) {
	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if asset.Status == "" {
		asset.Status = models.AssetStatusPending
	}
	now := time.Now().UTC()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = now
	}
	asset.UpdatedAt = now

	tags, err := json.Marshal(nonNilTags(asset.Tags))
	if err != nil {
		return false, fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		INSERT INTO design_assets (
			id, kind, name, description, drive_file_id, image_url, thumb_url,
			tags, status, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (drive_file_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		asset.ID,
		string(asset.Kind),
		asset.Name,
		asset.Description,
		nullString(asset.DriveFileID),
		asset.ImageURL,
		asset.ThumbURL,
		string(tags),
		asset.Status,
		asset.IsActive,
		asset.CreatedAt,
		asset.UpdatedAt,
	)
	if err != nil {
		logging.Errorf("❌ Database INSERT error for asset %s: %v", asset.Name, err)
		return false, fmt.Errorf("failed to insert design asset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		logging.Warnf("⚠️  Could not get rows affected: %v", err)
		return true, nil
	}
	if rowsAffected == 0 {
		logging.Infof("⚠️  No rows inserted (drive_file_id %s already known)", asset.DriveFileID)
		return false, nil
	}
	logging.Infof("💾 Inserted design asset %s (%s)", asset.ID, asset.Kind)
	return true, nil
}

// GetByID retrieves a design asset by its ID
func (r *DesignAssetRepository) GetByID(ctx context.Context, id string) (*models.DesignAsset, error) {
	query := `SELECT ` + designAssetColumns + ` FROM design_assets WHERE id = $1`
	asset, err := scanDesignAsset(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("design asset %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get design asset: %w", err)
	}
	return asset, nil
}

// Update overwrites the editable fields of an asset
func (r *DesignAssetRepository) Update(ctx context.Context, id string, req models.DesignAssetUpdateRequest) (*models.DesignAsset, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		current.Name = req.Name
	}
	current.Description = req.Description
	if req.Tags != nil {
		current.Tags = req.Tags
	}
	if req.Status != "" {
		current.Status = req.Status
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	current.UpdatedAt = time.Now().UTC()

	tags, err := json.Marshal(nonNilTags(current.Tags))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	query := `
		UPDATE design_assets
		SET name = $1, description = $2, tags = $3, status = $4, is_active = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		current.Name, current.Description, string(tags), current.Status, current.IsActive, current.UpdatedAt, id)
	if err != nil {
		logging.Errorf("❌ Error updating design asset %s: %v", id, err)
		return nil, fmt.Errorf("failed to update design asset: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("design asset %s: %w", id, ErrNotFound)
	}

	logging.Infof("✅ Updated design asset %s", id)
	return current, nil
}

// Filter lists assets matching the optional filters, newest first
func (r *DesignAssetRepository) Filter(ctx context.Context, filter models.DesignAssetFilter) ([]models.DesignAsset, error) {
	var conditions []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Kind != nil {
		add("kind = $%d", string(*filter.Kind))
	}
	if filter.Status != nil && *filter.Status != "" {
		add("status = $%d", *filter.Status)
	}
	if filter.Active != nil {
		add("is_active = $%d", *filter.Active)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		add("LOWER(name) LIKE $%d", "%"+strings.ToLower(s)+"%")
	}

	query := `SELECT ` + designAssetColumns + ` FROM design_assets`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logging.Errorf("❌ Error filtering design assets: %v", err)
		return nil, fmt.Errorf("failed to filter design assets: %w", err)
	}
	defer rows.Close()

	assets := []models.DesignAsset{}
	for rows.Next() {
		asset, err := scanDesignAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan design asset: %w", err)
		}
		assets = append(assets, *asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate design assets: %w", err)
	}

	logging.Debugf("✓ Filtered %d design assets with %d conditions", len(assets), len(conditions))
	return assets, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDesignAsset(row rowScanner) (*models.DesignAsset, error) {
	var asset models.DesignAsset
	var kind, tags string
	if err := row.Scan(
		&asset.ID,
		&kind,
		&asset.Name,
		&asset.Description,
		&asset.DriveFileID,
		&asset.ImageURL,
		&asset.ThumbURL,
		&tags,
		&asset.Status,
		&asset.IsActive,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	); err != nil {
		return nil, err
	}
	asset.Kind = models.AssetKind(kind)
	if err := json.Unmarshal([]byte(tags), &asset.Tags); err != nil {
		asset.Tags = nil
	}
	asset.Tags = nonNilTags(asset.Tags)
	return &asset, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
