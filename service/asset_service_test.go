package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"trykkeri-admin/models"
	"trykkeri-admin/repository"
)

func TestSyncLibrary(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDesignAssetRepository(newTestDB(t))
	drive := newFakeDrive()
	drive.listing = []models.StoredFile{
		{ID: "d1", Name: "finish_soft-touch.png", URL: "https://blobs.test/d1"},
		{ID: "d2", Name: "banner.png", URL: "https://blobs.test/d2"},
		{ID: "d3", Name: "material_silk-135g.jpg", URL: "https://blobs.test/d3"},
	}
	if _, err := repo.Insert(ctx, &models.DesignAsset{Kind: models.AssetKindMaterial, Name: "Silk", DriveFileID: "d3"}); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}

	svc := NewSyncService(drive, repo)
	result, err := svc.SyncLibrary(ctx, "folder", "")
	if err != nil {
		t.Fatalf("SyncLibrary returned error: %v", err)
	}
	if result.Inserted != 1 || result.Skipped != 1 || result.Invalid != 1 || result.Total != 3 {
		t.Fatalf("SyncLibrary = %+v, want 1 inserted, 1 skipped, 1 invalid of 3", result)
	}

	finish := models.AssetKindFinish
	assets, err := repo.Filter(ctx, models.DesignAssetFilter{Kind: &finish})
	if err != nil || len(assets) != 1 {
		t.Fatalf("Filter = %+v, %v", assets, err)
	}
	if assets[0].Name != "soft touch" || assets[0].Status != models.AssetStatusPending || assets[0].ImageURL != "https://blobs.test/d1" {
		t.Fatalf("synced asset = %+v", assets[0])
	}

	again, err := svc.SyncLibrary(ctx, "folder", models.AssetStatusReady)
	if err != nil {
		t.Fatalf("second SyncLibrary returned error: %v", err)
	}
	if again.Inserted != 0 || again.Skipped != 2 {
		t.Fatalf("second SyncLibrary = %+v", again)
	}

	if _, err := svc.SyncLibrary(ctx, "folder", "archived"); !errors.Is(err, ErrValidation) {
		t.Fatalf("SyncLibrary with bad status error = %v", err)
	}
}

func TestAssetUploadAndRendition(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDesignAssetRepository(newTestDB(t))
	drive := newFakeDrive()
	cache, err := NewImageCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewImageCache returned error: %v", err)
	}
	svc := NewAssetService(repo, drive, "assets", "thumbs", cache)

	asset, err := svc.Upload(ctx, UploadAssetInput{
		FileName:    "finish_soft-touch.png",
		MimeType:    "image/png",
		Description: "Mat laminat",
		Data:        testPNG(t, 1200, 600),
	})
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if asset.Kind != models.AssetKindFinish || asset.Name != "soft touch" || asset.Status != models.AssetStatusReady {
		t.Fatalf("uploaded asset = %+v", asset)
	}
	if len(drive.uploads) != 2 || drive.uploads[1].Name != "thumb_finish_soft-touch.jpg" || drive.uploads[1].MimeType != "image/jpeg" {
		t.Fatalf("uploads = %+v", drive.uploads)
	}
	if asset.ThumbURL != drive.uploads[1].URL || asset.DriveFileID != drive.uploads[0].ID {
		t.Fatalf("asset urls = %+v", asset)
	}

	thumb, err := svc.Image(ctx, asset.ID, SizeThumb)
	if err != nil {
		t.Fatalf("Image returned error: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("thumb is not an image: %v", err)
	}
	if format != "jpeg" || cfg.Width != 300 || cfg.Height != 150 {
		t.Fatalf("thumb = %s %dx%d, want jpeg 300x150", format, cfg.Width, cfg.Height)
	}
	if _, err := os.Stat(filepath.Join(cache.dir, "design_asset_"+asset.ID+"_thumb.jpg")); err != nil {
		t.Fatalf("thumb not cached: %v", err)
	}

	// served from cache once the original is gone
	delete(drive.files, asset.DriveFileID)
	if _, err := svc.Image(ctx, asset.ID, SizeThumb); err != nil {
		t.Fatalf("cached Image returned error: %v", err)
	}
	if _, err := svc.Image(ctx, asset.ID, SizeMedium); err == nil {
		t.Fatalf("Image(medium) without original should fail")
	}

	hidden, err := svc.Deactivate(ctx, asset.ID)
	if err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}
	if hidden.IsActive || hidden.Description != "Mat laminat" {
		t.Fatalf("deactivated asset = %+v", hidden)
	}
}

func TestAssetUploadValidation(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDesignAssetRepository(newTestDB(t))
	png := testPNG(t, 10, 10)

	svc := NewAssetService(repo, newFakeDrive(), "assets", "", nil)
	tests := []struct {
		name string
		in   UploadAssetInput
	}{
		{"empty file", UploadAssetInput{FileName: "icon_x.png"}},
		{"unknown kind", UploadAssetInput{Kind: "banner", FileName: "x.png", Data: png}},
		{"no kind in file name", UploadAssetInput{FileName: "x.png", Data: png}},
		{"not an image", UploadAssetInput{Kind: "icon", FileName: "x.png", Data: []byte("nope")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Upload(ctx, tt.in); !errors.Is(err, ErrValidation) {
				t.Fatalf("Upload error = %v, want ErrValidation", err)
			}
		})
	}

	offline := NewAssetService(repo, nil, "", "", nil)
	if _, err := offline.Upload(ctx, UploadAssetInput{Kind: "icon", FileName: "x.png", Data: png}); !errors.Is(err, ErrStorageDisabled) {
		t.Fatalf("Upload without storage error = %v", err)
	}
	if _, err := svc.Update(ctx, "missing", models.DesignAssetUpdateRequest{Status: "archived"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("Update with bad status error = %v", err)
	}
	if _, err := svc.Update(ctx, "missing", models.DesignAssetUpdateRequest{}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("Update(missing) error = %v", err)
	}
}

func TestDownloadLibrary(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewDesignAssetRepository(newTestDB(t))
	drive := newFakeDrive()
	stored, _ := drive.UploadFile(ctx, "", "finish_spot-uv.png", "image/png", testPNG(t, 1000, 500))

	for _, a := range []*models.DesignAsset{
		{Kind: models.AssetKindFinish, Name: "Spot UV", DriveFileID: stored.ID, IsActive: true},
		{Kind: models.AssetKindFinish, Name: "Broken", DriveFileID: "gone", IsActive: true},
		{Kind: models.AssetKindIcon, Name: "No file", IsActive: true},
	} {
		if _, err := repo.Insert(ctx, a); err != nil {
			t.Fatalf("Insert returned error: %v", err)
		}
	}

	dir := t.TempDir()
	svc := NewDownloadService(drive, repo)
	result, err := svc.DownloadLibrary(ctx, models.DesignAssetFilter{}, dir)
	if err != nil {
		t.Fatalf("DownloadLibrary returned error: %v", err)
	}
	if result.Total != 2 || result.Downloaded != 1 || len(result.Errors) != 1 {
		t.Fatalf("DownloadLibrary = %+v", result)
	}
	if _, err := os.Stat(filepath.Join(dir, "finish_spot-uv.jpg")); err != nil {
		t.Fatalf("rendition not written: %v", err)
	}

	again, err := svc.DownloadLibrary(ctx, models.DesignAssetFilter{}, dir)
	if err != nil || again.Skipped != 1 || again.Downloaded != 0 {
		t.Fatalf("second DownloadLibrary = %+v, %v", again, err)
	}
}
