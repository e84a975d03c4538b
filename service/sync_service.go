package service

import (
	"context"
	"fmt"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
	"trykkeri-admin/repository"
	"trykkeri-admin/utils"
)

// SyncService handles synchronization between Google Drive and the asset library
// Implements SyncServiceInterface
type SyncService struct {
	driveService DriveServiceInterface
	repository   repository.DesignAssetRepositoryInterface
}

// NewSyncService creates a new SyncService
func NewSyncService(driveService DriveServiceInterface, repo repository.DesignAssetRepositoryInterface) *SyncService {
	return &SyncService{
		driveService: driveService,
		repository:   repo,
	}
}

// Ensure SyncService implements SyncServiceInterface
var _ SyncServiceInterface = (*SyncService)(nil)

// SyncLibrary synchronizes design assets from a Google Drive folder into the database
func (s *SyncService) SyncLibrary(ctx context.Context, folderID string, status string) (*SyncResult, error) {
	logging.Infof("🔄 Starting synchronization process for folder: %s, status: %s", folderID, status)

	if status == "" {
		status = models.AssetStatusPending
	}
	if status != models.AssetStatusPending && status != models.AssetStatusReady {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}

	if s.driveService == nil {
		return nil, ErrStorageDisabled
	}
	files, err := s.driveService.ListFiles(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list design assets from Drive: %w", err)
	}

	result := &SyncResult{Total: len(files)}
	logging.Infof("📦 Processing %d design assets from Google Drive", len(files))

	for _, file := range files {
		exists, err := s.repository.ExistsByDriveFileID(ctx, file.ID)
		if err != nil {
			logging.Errorf("❌ Error checking existence for drive_file_id: %s: %v", file.ID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.Name, err))
			continue
		}
		if exists {
			logging.Debugf("⏭️  Skipping drive_file_id: %s (already exists in database)", file.ID)
			result.Skipped++
			continue
		}

		parsed, err := utils.ParseFileName(file.Name)
		if err != nil {
			logging.Warnf("⚠️  Skipping %s: %v", file.Name, err)
			result.Invalid++
			continue
		}

		asset := &models.DesignAsset{
			Kind:        parsed.Kind,
			Name:        parsed.Name,
			DriveFileID: file.ID,
			ImageURL:    file.URL,
			Status:      status,
			IsActive:    true,
		}
		inserted, err := s.repository.Insert(ctx, asset)
		if err != nil {
			logging.Errorf("❌ Error inserting drive_file_id %s into database: %v", file.ID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", file.Name, err))
			continue
		}
		if !inserted {
			// another sync got there first
			result.Skipped++
			continue
		}

		logging.Infof("✅ Successfully processed (drive_file_id: %s)", file.ID)
		result.Inserted++
	}

	logging.Infof("🎉 Synchronization completed: %d inserted, %d skipped, %d invalid, %d total",
		result.Inserted, result.Skipped, result.Invalid, result.Total)
	return result, nil
}
