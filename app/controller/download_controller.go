package controller

import (
	"net/http"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
	"trykkeri-admin/service"
)

// DownloadController handles backups of the asset library to local disk
type DownloadController struct {
	downloadService service.DownloadServiceInterface
	dir             string
}

// NewDownloadController creates a new DownloadController writing into dir
func NewDownloadController(downloadService service.DownloadServiceInterface, dir string) *DownloadController {
	return &DownloadController{
		downloadService: downloadService,
		dir:             dir,
	}
}

// DownloadImages handles POST /admin/design-assets/download?kind=finish
// Downloads the active library images, optimizes them, and saves them locally
func (c *DownloadController) DownloadImages(w http.ResponseWriter, r *http.Request) {
	active := true
	filter := models.DesignAssetFilter{Active: &active}
	if v := r.URL.Query().Get("kind"); v != "" {
		kind, err := models.ParseAssetKind(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Kind = &kind
	}

	logging.Infof("📥 Download request received, target: %s", c.dir)
	result, err := c.downloadService.DownloadLibrary(r.Context(), filter, c.dir)
	if err != nil {
		writeError(w, "DownloadImages", "Failed to download images", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
	logging.Infof("✅ Download request completed: %d/%d images downloaded", result.Downloaded, result.Total)
}
