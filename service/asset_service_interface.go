package service

import (
	"context"

	"trykkeri-admin/models"
)

// UploadAssetInput is a new library image with its metadata
type UploadAssetInput struct {
	Kind        string
	Name        string
	Description string
	Tags        []string
	FileName    string
	MimeType    string
	Data        []byte
}

// AssetServiceInterface defines the contract for the design asset library
type AssetServiceInterface interface {
	Upload(ctx context.Context, in UploadAssetInput) (*models.DesignAsset, error)
	List(ctx context.Context, filter models.DesignAssetFilter) ([]models.DesignAsset, error)
	Get(ctx context.Context, id string) (*models.DesignAsset, error)
	Update(ctx context.Context, id string, req models.DesignAssetUpdateRequest) (*models.DesignAsset, error)
	Deactivate(ctx context.Context, id string) (*models.DesignAsset, error)
	// Image returns an optimized rendition of the asset image as JPEG
	Image(ctx context.Context, id string, size ImageSize) ([]byte, error)
}
