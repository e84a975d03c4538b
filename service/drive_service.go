package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
)

var imageMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
}

// DriveService handles Google Drive API operations
type DriveService struct {
	client *drive.Service
}

var _ DriveServiceInterface = (*DriveService)(nil)

// NewDriveService creates a new DriveService instance.
// credentialsJSON wins over credentialsPath so containers can pass the key inline.
func NewDriveService(ctx context.Context, credentialsPath, credentialsJSON string) (*DriveService, error) {
	var opt option.ClientOption
	switch {
	case credentialsJSON != "":
		opt = option.WithCredentialsJSON([]byte(credentialsJSON))
	case credentialsPath != "":
		opt = option.WithCredentialsFile(credentialsPath)
	default:
		return nil, fmt.Errorf("no Google service account credentials configured")
	}

	client, err := drive.NewService(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveService{client: client}, nil
}

// ListFiles lists all image files in a Google Drive folder
func (ds *DriveService) ListFiles(ctx context.Context, folderID string) ([]models.StoredFile, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", folderID)

	var files []models.StoredFile
	pageToken := ""
	for {
		call := ds.client.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}

		for _, f := range r.Files {
			if !imageMimeTypes[strings.ToLower(f.MimeType)] {
				continue
			}
			files = append(files, models.StoredFile{
				ID:       f.Id,
				Name:     f.Name,
				MimeType: f.MimeType,
				URL:      ds.PublicURL(f.Id),
			})
		}

		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}

	logging.Infof("📂 Found %d image files in Drive folder %s", len(files), folderID)
	return files, nil
}

// DownloadFile fetches the raw bytes of a file
func (ds *DriveService) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := ds.client.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return data, nil
}

// UploadFile creates the file in the folder and shares it with anyone holding the link
func (ds *DriveService) UploadFile(ctx context.Context, folderID, name, mimeType string, data []byte) (*models.StoredFile, error) {
	meta := &drive.File{Name: name, MimeType: mimeType}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}

	created, err := ds.client.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields("id, name, mimeType").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to upload file %s: %w", name, err)
	}

	_, err = ds.client.Permissions.Create(created.Id, &drive.Permission{Type: "anyone", Role: "reader"}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to share file %s: %w", created.Id, err)
	}

	logging.Infof("📤 Uploaded %s to Drive (id: %s, %d bytes)", name, created.Id, len(data))
	return &models.StoredFile{
		ID:       created.Id,
		Name:     created.Name,
		MimeType: created.MimeType,
		URL:      ds.PublicURL(created.Id),
	}, nil
}

// PublicURL builds the direct view link of a shared file
func (ds *DriveService) PublicURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/uc?id=%s", fileID)
}
