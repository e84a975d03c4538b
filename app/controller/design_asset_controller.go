package controller

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
	"trykkeri-admin/service"
)

// DesignAssetController handles HTTP requests for the design asset library
type DesignAssetController struct {
	syncService  service.SyncServiceInterface
	assetService service.AssetServiceInterface
	folderID     string
}

// NewDesignAssetController creates a new DesignAssetController.
// folderID is the Drive folder a sync reads from.
func NewDesignAssetController(syncService service.SyncServiceInterface, assetService service.AssetServiceInterface, folderID string) *DesignAssetController {
	return &DesignAssetController{
		syncService:  syncService,
		assetService: assetService,
		folderID:     folderID,
	}
}

// Sync handles POST /admin/design-assets/sync?status=pending
// Imports new images of the Drive folder into the library
func (c *DesignAssetController) Sync(w http.ResponseWriter, r *http.Request) {
	if c.syncService == nil || c.folderID == "" {
		writeError(w, "SyncDesignAssets", "Failed to sync design assets", service.ErrStorageDisabled)
		return
	}
	result, err := c.syncService.SyncLibrary(r.Context(), c.folderID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, "SyncDesignAssets", "Failed to sync design assets", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// List handles GET /admin/design-assets?kind=finish&status=ready&active=true&q=soft
func (c *DesignAssetController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter models.DesignAssetFilter

	if v := q.Get("kind"); v != "" {
		kind, err := models.ParseAssetKind(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Kind = &kind
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v := q.Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "active must be true or false", http.StatusBadRequest)
			return
		}
		filter.Active = &active
	}
	filter.Search = strings.TrimSpace(q.Get("q"))

	assets, err := c.assetService.List(r.Context(), filter)
	if err != nil {
		writeError(w, "ListDesignAssets", "Failed to list design assets", err)
		return
	}
	writeJSON(w, http.StatusOK, assets)
}

// Upload handles POST /admin/design-assets (multipart: file, kind, name, description, tags)
// Tags are comma separated
func (c *DesignAssetController) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		http.Error(w, "Invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	var tags []string
	for _, tag := range strings.Split(r.FormValue("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	logging.Infof("📥 UploadDesignAsset: %s (%d bytes)", header.Filename, len(data))
	asset, err := c.assetService.Upload(r.Context(), service.UploadAssetInput{
		Kind:        r.FormValue("kind"),
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Tags:        tags,
		FileName:    header.Filename,
		MimeType:    header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeError(w, "UploadDesignAsset", "Failed to upload design asset", err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

// Get handles GET /admin/design-assets/{id}
func (c *DesignAssetController) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := c.assetService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "GetDesignAsset", "Failed to get design asset", err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// Update handles PUT /admin/design-assets/{id}
// Example request:
// {"name": "Soft touch", "description": "Mat laminat", "tags": ["laminat"], "status": "ready"}
func (c *DesignAssetController) Update(w http.ResponseWriter, r *http.Request) {
	var req models.DesignAssetUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "UpdateDesignAsset", "Invalid request", err)
		return
	}
	asset, err := c.assetService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "UpdateDesignAsset", "Failed to update design asset", err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// Deactivate handles DELETE /admin/design-assets/{id}
// The stored file is kept, the asset disappears from pickers
func (c *DesignAssetController) Deactivate(w http.ResponseWriter, r *http.Request) {
	asset, err := c.assetService.Deactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "DeactivateDesignAsset", "Failed to deactivate design asset", err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

// GetOptimizedImage handles GET /admin/design-assets/{id}/image?size=thumb|medium
func (c *DesignAssetController) GetOptimizedImage(w http.ResponseWriter, r *http.Request) {
	size, err := service.ParseImageSize(r.URL.Query().Get("size"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := c.assetService.Image(r.Context(), chi.URLParam(r, "id"), size)
	if err != nil {
		writeError(w, "GetOptimizedImage", "Failed to get image", err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Errorf("❌ GetOptimizedImage: Error writing response: %v", err)
	}
}
