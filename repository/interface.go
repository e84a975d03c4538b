package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"trykkeri-admin/models"
)

// ErrNotFound is returned when a row addressed by id does not exist
var ErrNotFound = errors.New("not found")

// DesignAssetRepositoryInterface defines the contract for design asset repository operations
type DesignAssetRepositoryInterface interface {
	ExistsByDriveFileID(ctx context.Context, driveFileID string) (bool, error)
	Insert(ctx context.Context, asset *models.DesignAsset) (bool, error)
	GetByID(ctx context.Context, id string) (*models.DesignAsset, error)
	Update(ctx context.Context, id string, req models.DesignAssetUpdateRequest) (*models.DesignAsset, error)
	Filter(ctx context.Context, filter models.DesignAssetFilter) ([]models.DesignAsset, error)
}

// ProductRepositoryInterface defines the contract for products and their saved layout
type ProductRepositoryInterface interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	SavePricingStructure(ctx context.Context, id string, structure json.RawMessage) error
}

// AttributeRepositoryInterface defines the contract for attribute groups and values
type AttributeRepositoryInterface interface {
	ListGroups(ctx context.Context, productID string) ([]models.AttributeGroup, error)
	CreateGroup(ctx context.Context, group *models.AttributeGroup) error
	DeleteGroup(ctx context.Context, id string) error
	UpsertValue(ctx context.Context, value *models.AttributeValue) error
	DeleteValue(ctx context.Context, id string) error
}

// PriceRepositoryInterface defines the contract for published price rows
type PriceRepositoryInterface interface {
	ListByProduct(ctx context.Context, productID string) ([]models.GeneratedPrice, error)
	Replace(ctx context.Context, productID string, rows []models.GeneratedPrice, at time.Time) (int, error)
}

// TemplateRepositoryInterface defines the contract for the template bank
type TemplateRepositoryInterface interface {
	Save(ctx context.Context, snapshot *models.TemplateSnapshot) error
	List(ctx context.Context, productID string) ([]models.TemplateSnapshot, error)
	GetByID(ctx context.Context, id string) (*models.TemplateSnapshot, error)
	Delete(ctx context.Context, id string) error
}

// InvoiceRepositoryInterface defines the contract for invoices and their lines
type InvoiceRepositoryInterface interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	List(ctx context.Context, limit int) ([]models.Invoice, error)
	MarkPaid(ctx context.Context, id string, at time.Time) error
}
