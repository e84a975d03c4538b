package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"trykkeri-admin/pricing"
	"trykkeri-admin/service"
)

// TemplateController handles the template bank of saved matrix setups
type TemplateController struct {
	pricingService service.PricingServiceInterface
}

// NewTemplateController creates a new TemplateController
func NewTemplateController(pricingService service.PricingServiceInterface) *TemplateController {
	return &TemplateController{
		pricingService: pricingService,
	}
}

// SaveTemplateRequest represents the request body for saving a template
// Example: {"name": "Standard flyer", "state": {...}}
type SaveTemplateRequest struct {
	Name  string         `json:"name"`
	State *pricing.State `json:"state,omitempty"`
}

// List handles GET /admin/templates?productId=...
// Without productId every template is listed
func (c *TemplateController) List(w http.ResponseWriter, r *http.Request) {
	templates, err := c.pricingService.ListTemplates(r.Context(), r.URL.Query().Get("productId"))
	if err != nil {
		writeError(w, "ListTemplates", "Failed to list templates", err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// Save handles POST /admin/products/{productID}/templates
func (c *TemplateController) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "SaveTemplate", "Invalid request", err)
		return
	}
	state, err := resolveState(r, c.pricingService, chi.URLParam(r, "productID"), req.State)
	if err != nil {
		writeError(w, "SaveTemplate", "Failed to load pricing state", err)
		return
	}
	snap, err := c.pricingService.SaveTemplate(r.Context(), req.Name, state)
	if err != nil {
		writeError(w, "SaveTemplate", "Failed to save template", err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// Apply handles POST /admin/products/{productID}/templates/{templateID}/apply
// Returns the new editing state. Nothing is stored until publish.
func (c *TemplateController) Apply(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, "ApplyTemplate", "Invalid request", err)
		return
	}
	state, err := resolveState(r, c.pricingService, chi.URLParam(r, "productID"), req.State)
	if err != nil {
		writeError(w, "ApplyTemplate", "Failed to load pricing state", err)
		return
	}
	next, err := c.pricingService.ApplyTemplate(r.Context(), chi.URLParam(r, "templateID"), state)
	if err != nil {
		writeError(w, "ApplyTemplate", "Failed to apply template", err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

// Delete handles DELETE /admin/templates/{templateID}
func (c *TemplateController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.pricingService.DeleteTemplate(r.Context(), chi.URLParam(r, "templateID")); err != nil {
		writeError(w, "DeleteTemplate", "Failed to delete template", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
