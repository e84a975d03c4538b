package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
	"trykkeri-admin/repository"
	"trykkeri-admin/utils"
)

// AssetService manages the design asset library
// Implements AssetServiceInterface
type AssetService struct {
	repository   repository.DesignAssetRepositoryInterface
	driveService DriveServiceInterface
	assetFolder  string
	thumbFolder  string
	cache        *ImageCache
}

// NewAssetService creates a new AssetService.
// driveService and cache may be nil, uploads and renditions then fail with ErrStorageDisabled.
func NewAssetService(
	repo repository.DesignAssetRepositoryInterface,
	driveService DriveServiceInterface,
	assetFolder, thumbFolder string,
	cache *ImageCache,
) *AssetService {
	if thumbFolder == "" {
		thumbFolder = assetFolder
	}
	return &AssetService{
		repository:   repo,
		driveService: driveService,
		assetFolder:  assetFolder,
		thumbFolder:  thumbFolder,
		cache:        cache,
	}
}

var _ AssetServiceInterface = (*AssetService)(nil)

// Upload optimizes a thumbnail, stores original and thumbnail, then records the asset
func (s *AssetService) Upload(ctx context.Context, in UploadAssetInput) (*models.DesignAsset, error) {
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrValidation)
	}

	kind, name, err := resolveAssetIdentity(in)
	if err != nil {
		return nil, err
	}
	if s.driveService == nil {
		return nil, ErrStorageDisabled
	}

	thumb, err := OptimizeImage(in.Data, SizeThumb)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	mimeType := in.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	original, err := s.driveService.UploadFile(ctx, s.assetFolder, in.FileName, mimeType, in.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store original: %w", err)
	}
	base := strings.TrimSuffix(in.FileName, filepath.Ext(in.FileName))
	thumbFile, err := s.driveService.UploadFile(ctx, s.thumbFolder, "thumb_"+base+".jpg", "image/jpeg", thumb)
	if err != nil {
		return nil, fmt.Errorf("failed to store thumbnail: %w", err)
	}

	asset := &models.DesignAsset{
		Kind:        kind,
		Name:        name,
		Description: in.Description,
		DriveFileID: original.ID,
		ImageURL:    original.URL,
		ThumbURL:    thumbFile.URL,
		Tags:        in.Tags,
		Status:      models.AssetStatusReady,
		IsActive:    true,
	}
	inserted, err := s.repository.Insert(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("failed to save design asset: %w", err)
	}
	if !inserted {
		return nil, fmt.Errorf("drive file %s is already in the library", original.ID)
	}

	logging.Infof("✅ Uploaded %s asset %q (%s)", kind, name, asset.ID)
	return asset, nil
}

// resolveAssetIdentity takes kind and name from the request, falling back to the file name
func resolveAssetIdentity(in UploadAssetInput) (models.AssetKind, string, error) {
	parsed, parseErr := utils.ParseFileName(in.FileName)

	var kind models.AssetKind
	switch {
	case in.Kind != "":
		k, err := models.ParseAssetKind(in.Kind)
		if err != nil {
			return "", "", fmt.Errorf("%w: %v", ErrValidation, err)
		}
		kind = k
	case parseErr == nil:
		kind = parsed.Kind
	default:
		return "", "", fmt.Errorf("%w: kind is required (%v)", ErrValidation, parseErr)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" && parseErr == nil {
		name = parsed.Name
	}
	if name == "" {
		name = strings.TrimSuffix(in.FileName, filepath.Ext(in.FileName))
	}
	if name == "" {
		return "", "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	return kind, name, nil
}

// List lists assets matching the filter
func (s *AssetService) List(ctx context.Context, filter models.DesignAssetFilter) ([]models.DesignAsset, error) {
	return s.repository.Filter(ctx, filter)
}

// Get retrieves one asset
func (s *AssetService) Get(ctx context.Context, id string) (*models.DesignAsset, error) {
	return s.repository.GetByID(ctx, id)
}

// Update changes the editable metadata of an asset
func (s *AssetService) Update(ctx context.Context, id string, req models.DesignAssetUpdateRequest) (*models.DesignAsset, error) {
	if req.Status != "" && req.Status != models.AssetStatusPending && req.Status != models.AssetStatusReady {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, req.Status)
	}
	return s.repository.Update(ctx, id, req)
}

// Deactivate hides an asset from pickers without deleting the stored file
func (s *AssetService) Deactivate(ctx context.Context, id string) (*models.DesignAsset, error) {
	current, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	inactive := false
	return s.repository.Update(ctx, id, models.DesignAssetUpdateRequest{
		Description: current.Description,
		IsActive:    &inactive,
	})
}

// Image serves a cached rendition or builds one from the stored original
func (s *AssetService) Image(ctx context.Context, id string, size ImageSize) ([]byte, error) {
	if s.cache != nil {
		if data, ok := s.cache.Read(id, size); ok {
			return data, nil
		}
	}

	asset, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset.DriveFileID == "" {
		return nil, fmt.Errorf("%w: asset %s has no stored image", ErrValidation, id)
	}
	if s.driveService == nil {
		return nil, ErrStorageDisabled
	}

	raw, err := s.driveService.DownloadFile(ctx, asset.DriveFileID)
	if err != nil {
		return nil, err
	}
	data, err := OptimizeImage(raw, size)
	if err != nil {
		return nil, fmt.Errorf("failed to optimize image: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Write(id, size, data); err != nil {
			logging.Warnf("⚠️  %v", err)
		}
	}
	return data, nil
}
