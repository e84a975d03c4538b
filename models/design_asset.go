package models

import (
	"fmt"
	"strings"
	"time"
)

// AssetKind groups the entries of the design asset library
type AssetKind string

const (
	AssetKindTemplate AssetKind = "template"
	AssetKindMaterial AssetKind = "material"
	AssetKindFinish   AssetKind = "finish"
	AssetKindProduct  AssetKind = "product"
	AssetKindIcon     AssetKind = "icon"
)

// ParseAssetKind normalizes and validates an asset kind
func ParseAssetKind(s string) (AssetKind, error) {
	switch AssetKind(strings.ToLower(strings.TrimSpace(s))) {
	case AssetKindTemplate:
		return AssetKindTemplate, nil
	case AssetKindMaterial:
		return AssetKindMaterial, nil
	case AssetKindFinish:
		return AssetKindFinish, nil
	case AssetKindProduct:
		return AssetKindProduct, nil
	case AssetKindIcon:
		return AssetKindIcon, nil
	}
	return "", fmt.Errorf("invalid asset kind: %q", s)
}

// Asset statuses
const (
	AssetStatusPending = "pending"
	AssetStatusReady   = "ready"
)

// DesignAsset is one entry of the asset library, the blob itself lives in object storage
type DesignAsset struct {
	ID          string    `json:"id"`
	Kind        AssetKind `json:"kind"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	DriveFileID string    `json:"driveFileId"`
	ImageURL    string    `json:"imageUrl"`
	ThumbURL    string    `json:"thumbUrl"`
	Tags        []string  `json:"tags"`
	Status      string    `json:"status"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StoredFile describes a blob as listed by object storage
type StoredFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	URL      string `json:"url"`
}

// DesignAssetUpdateRequest represents the request body for updating a design asset
// Example: {"name": "Soft touch", "description": "Mat laminat", "tags": ["laminat"], "status": "ready"}
type DesignAssetUpdateRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Status      string   `json:"status"`
	IsActive    *bool    `json:"isActive,omitempty"`
}

// DesignAssetFilter holds optional filters for listing assets
type DesignAssetFilter struct {
	Kind   *AssetKind
	Status *string
	Search string
	Active *bool
}
