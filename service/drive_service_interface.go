package service

import (
	"context"

	"trykkeri-admin/models"
)

// DriveServiceInterface defines the contract for the object storage holding asset blobs
type DriveServiceInterface interface {
	// ListFiles lists the image files of a folder
	ListFiles(ctx context.Context, folderID string) ([]models.StoredFile, error)
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
	// UploadFile stores a blob readable by anyone with the link
	UploadFile(ctx context.Context, folderID, name, mimeType string, data []byte) (*models.StoredFile, error)
	PublicURL(fileID string) string
}
