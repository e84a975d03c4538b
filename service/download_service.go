package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
	"trykkeri-admin/repository"
)

// DownloadService handles downloading and optimizing library images from Google Drive
// Implements DownloadServiceInterface
type DownloadService struct {
	driveService DriveServiceInterface
	repository   repository.DesignAssetRepositoryInterface
}

// NewDownloadService creates a new DownloadService instance
func NewDownloadService(driveService DriveServiceInterface, repo repository.DesignAssetRepositoryInterface) *DownloadService {
	return &DownloadService{
		driveService: driveService,
		repository:   repo,
	}
}

// Ensure DownloadService implements DownloadServiceInterface
var _ DownloadServiceInterface = (*DownloadService)(nil)

// localFileName builds "<kind>_<name>.jpg" with spaces folded to dashes
func localFileName(asset models.DesignAsset) string {
	name := strings.Join(strings.Fields(strings.ToLower(asset.Name)), "-")
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '-'
		}
		return r
	}, name)
	return fmt.Sprintf("%s_%s.jpg", asset.Kind, name)
}

// DownloadLibrary downloads the images of the matching assets, optimizes them and saves them locally.
// Files already on disk are kept.
func (ds *DownloadService) DownloadLibrary(ctx context.Context, filter models.DesignAssetFilter, dir string) (*DownloadResult, error) {
	if ds.driveService == nil {
		return nil, ErrStorageDisabled
	}
	logging.Infof("📥 Starting download process into: %s", dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	assets, err := ds.repository.Filter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list design assets: %w", err)
	}

	result := &DownloadResult{}
	used := make(map[string]bool)
	for _, asset := range assets {
		if asset.DriveFileID == "" {
			continue
		}
		result.Total++

		fileName := localFileName(asset)
		filePath := filepath.Join(dir, fileName)
		if _, err := os.Stat(filePath); err == nil || used[fileName] {
			logging.Debugf("⏭️  Skipping %s (already exists)", fileName)
			result.Skipped++
			continue
		}
		used[fileName] = true

		raw, err := ds.driveService.DownloadFile(ctx, asset.DriveFileID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to download %s (%s): %v", fileName, asset.DriveFileID, err))
			continue
		}
		optimized, err := OptimizeImage(raw, SizeMedium)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to optimize %s (%s): %v", fileName, asset.DriveFileID, err))
			continue
		}
		if err := os.WriteFile(filePath, optimized, 0o644); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to save %s: %v", fileName, err))
			continue
		}
		result.Downloaded++
	}

	for _, msg := range result.Errors {
		logging.Errorf("❌ %s", msg)
	}
	logging.Infof("🎉 Download completed: %d downloaded, %d skipped, %d failed out of %d",
		result.Downloaded, result.Skipped, len(result.Errors), result.Total)
	return result, nil
}
