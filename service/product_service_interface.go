package service

import (
	"context"

	"trykkeri-admin/models"
)

// ProductServiceInterface defines the contract for products and their attribute groups
type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, name, slug, imageURL string) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)

	ListGroups(ctx context.Context, productID string) ([]models.AttributeGroup, error)
	CreateGroup(ctx context.Context, productID string, req models.CreateAttributeGroupRequest) (*models.AttributeGroup, error)
	DeleteGroup(ctx context.Context, groupID string) error
	// UpsertValue creates a value when valueID is empty, otherwise replaces it
	UpsertValue(ctx context.Context, groupID, valueID string, req models.UpsertAttributeValueRequest) (*models.AttributeValue, error)
	DeleteValue(ctx context.Context, valueID string) error
}
