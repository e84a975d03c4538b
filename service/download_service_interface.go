package service

import (
	"context"

	"trykkeri-admin/models"
)

// DownloadResult counts what a library download did
type DownloadResult struct {
	Total      int      `json:"total"`
	Downloaded int      `json:"downloaded"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors,omitempty"`
}

// DownloadServiceInterface defines the contract for image download operations
type DownloadServiceInterface interface {
	// DownloadLibrary saves medium renditions of the matching assets into dir
	DownloadLibrary(ctx context.Context, filter models.DesignAssetFilter, dir string) (*DownloadResult, error)
}
