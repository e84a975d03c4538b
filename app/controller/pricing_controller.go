package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trykkeri-admin/logging"
	"trykkeri-admin/pricing"
	"trykkeri-admin/service"
)

// PricingController handles the price matrix editor: state, actions, preview, CSV and publish
type PricingController struct {
	pricingService service.PricingServiceInterface
}

// NewPricingController creates a new PricingController
func NewPricingController(pricingService service.PricingServiceInterface) *PricingController {
	return &PricingController{
		pricingService: pricingService,
	}
}

// StateRequest carries the editing state the client holds.
// Without a state the stored one is loaded.
type StateRequest struct {
	State *pricing.State `json:"state,omitempty"`
}

// ApplyActionsRequest represents the request body for applying editor actions
// Example:
//
//	{
//	  "state": {...},
//	  "actions": [
//	    {"type": "set_anchor_price", "context": {"formatId": "...", "materialId": "..."}, "quantity": 100, "price": 45},
//	    {"type": "set_master_markup", "percent": 20}
//	  ]
//	}
type ApplyActionsRequest struct {
	State   *pricing.State    `json:"state,omitempty"`
	Actions []json.RawMessage `json:"actions"`
}

// QuoteRequest asks for one cell of the matrix
// Example: {"context": {"formatId": "...", "materialId": "..."}, "quantity": 300}
type QuoteRequest struct {
	State    *pricing.State  `json:"state,omitempty"`
	Context  pricing.Context `json:"context"`
	Quantity int             `json:"quantity"`
}

// InterpolateRequest is an offline interpolation over loose anchors
// Example: {"target": 300, "anchors": [{"quantity": 100, "price": 45}, {"quantity": 500, "price": 40}]}
type InterpolateRequest struct {
	Target  int              `json:"target"`
	Anchors []pricing.Anchor `json:"anchors"`
}

// ImportResponse is the state after an import together with the import report
type ImportResponse struct {
	State  pricing.State         `json:"state"`
	Result *pricing.ImportResult `json:"result"`
}

// resolveState returns the client's state bound to the product of the URL, or the stored state
func resolveState(r *http.Request, svc service.PricingServiceInterface, productID string, state *pricing.State) (pricing.State, error) {
	if state == nil {
		return svc.LoadState(r.Context(), productID)
	}
	s := *state
	s.ProductID = productID
	if s.ProductMarkups == nil {
		s.ProductMarkups = pricing.ProductMarkups{}
	}
	if s.Rounding == 0 {
		s.Rounding = pricing.RoundToOne
	}
	s.Structure.Quantities = pricing.NormalizeQuantities(s.Structure.Quantities)
	return s, nil
}

// decodeOptionalJSON is decodeJSON that accepts an empty body. A truncated body is still an error.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.ContentLength == 0 {
		return nil
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: invalid request body: %v", service.ErrValidation, err)
	}
	return nil
}

// GetState handles GET /admin/products/{productID}/pricing
// Returns the stored layout with anchors rebuilt from the published prices
func (c *PricingController) GetState(w http.ResponseWriter, r *http.Request) {
	state, err := c.pricingService.LoadState(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, "GetPricingState", "Failed to load pricing state", err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// ApplyActions handles POST /admin/products/{productID}/pricing/actions
// Actions apply in order. If one fails none of them apply.
func (c *PricingController) ApplyActions(w http.ResponseWriter, r *http.Request) {
	var req ApplyActionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "ApplyPricingActions", "Invalid request", err)
		return
	}
	state, err := resolveState(r, c.pricingService, chi.URLParam(r, "productID"), req.State)
	if err != nil {
		writeError(w, "ApplyPricingActions", "Failed to load pricing state", err)
		return
	}
	next, err := c.pricingService.Apply(state, req.Actions)
	if err != nil {
		writeError(w, "ApplyPricingActions", "Failed to apply actions", err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}

// Preview handles POST /admin/products/{productID}/pricing/preview
// Response: one row per context with a price point per quantity
func (c *PricingController) Preview(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, "PreviewPricing", "Invalid request", err)
		return
	}
	state, err := resolveState(r, c.pricingService, chi.URLParam(r, "productID"), req.State)
	if err != nil {
		writeError(w, "PreviewPricing", "Failed to load pricing state", err)
		return
	}
	rows, err := c.pricingService.Preview(r.Context(), state)
	if err != nil {
		writeError(w, "PreviewPricing", "Failed to build preview", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Quote handles POST /admin/products/{productID}/pricing/quote
func (c *PricingController) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "QuotePrice", "Invalid request", err)
		return
	}
	if req.Quantity <= 0 {
		http.Error(w, "quantity must be positive", http.StatusBadRequest)
		return
	}
	state, err := resolveState(r, c.pricingService, chi.URLParam(r, "productID"), req.State)
	if err != nil {
		writeError(w, "QuotePrice", "Failed to load pricing state", err)
		return
	}
	writeJSON(w, http.StatusOK, c.pricingService.Quote(state, req.Context, req.Quantity))
}

// Import handles POST /admin/products/{productID}/pricing/import (multipart: file, state, replace)
// Every price in the sheet becomes a locked anchor. Nothing is stored until publish.
func (c *PricingController) Import(w http.ResponseWriter, r *http.Request) {
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

	var clientState *pricing.State
	if raw := r.FormValue("state"); raw != "" {
		clientState = &pricing.State{}
		if err := json.Unmarshal([]byte(raw), clientState); err != nil {
			http.Error(w, "Invalid state: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	replace, _ := strconv.ParseBool(r.FormValue("replace"))

	productID := chi.URLParam(r, "productID")
	state, err := resolveState(r, c.pricingService, productID, clientState)
	if err != nil {
		writeError(w, "ImportPricing", "Failed to load pricing state", err)
		return
	}

	logging.Infof("📥 ImportPricing: %s for product %s (replace=%t)", header.Filename, productID, replace)
	next, result, err := c.pricingService.Import(r.Context(), state, file, replace)
	if err != nil {
		writeError(w, "ImportPricing", "Failed to import price sheet", err)
		return
	}
	writeJSON(w, http.StatusOK, ImportResponse{State: next, Result: result})
}

// Export handles GET and POST /admin/products/{productID}/pricing/export?mode=anchors|final&delimiter=;
// GET exports the stored state, POST the state in the body
func (c *PricingController) Export(w http.ResponseWriter, r *http.Request) {
	opts, err := exportOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req StateRequest
	if r.Method == http.MethodPost {
		if err := decodeOptionalJSON(w, r, &req); err != nil {
			writeError(w, "ExportPricing", "Invalid request", err)
			return
		}
	}
	productID := chi.URLParam(r, "productID")
	state, err := resolveState(r, c.pricingService, productID, req.State)
	if err != nil {
		writeError(w, "ExportPricing", "Failed to load pricing state", err)
		return
	}

	var buf bytes.Buffer
	if err := c.pricingService.Export(r.Context(), state, &buf, opts); err != nil {
		writeError(w, "ExportPricing", "Failed to export price sheet", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"prices-%s.csv\"", productID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logging.Errorf("❌ ExportPricing: Error writing response: %v", err)
	}
}

func exportOptions(r *http.Request) (pricing.ExportOptions, error) {
	q := r.URL.Query()
	var opts pricing.ExportOptions
	switch mode := pricing.ExportMode(q.Get("mode")); mode {
	case "", pricing.ExportAnchors, pricing.ExportFinal:
		opts.Mode = mode
	default:
		return opts, fmt.Errorf("mode must be anchors or final")
	}
	switch d := q.Get("delimiter"); d {
	case "", ";":
		opts.Delimiter = ';'
	case ",":
		opts.Delimiter = ','
	default:
		return opts, fmt.Errorf("delimiter must be ; or ,")
	}
	opts.NoMeta, _ = strconv.ParseBool(q.Get("noMeta"))
	return opts, nil
}

// Publish handles POST /admin/products/{productID}/pricing/publish
// Writes every computed price and saves the layout
func (c *PricingController) Publish(w http.ResponseWriter, r *http.Request) {
	var req StateRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, "PublishPricing", "Invalid request", err)
		return
	}
	state, err := resolveState(r, c.pricingService, chi.URLParam(r, "productID"), req.State)
	if err != nil {
		writeError(w, "PublishPricing", "Failed to load pricing state", err)
		return
	}
	result, err := c.pricingService.Publish(r.Context(), state)
	if err != nil {
		writeError(w, "PublishPricing", "Failed to publish prices", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Interpolate handles POST /admin/pricing/interpolate
// Response: {"target": 300, "price": 42.5}
func (c *PricingController) Interpolate(w http.ResponseWriter, r *http.Request) {
	var req InterpolateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Interpolate", "Invalid request", err)
		return
	}
	if req.Target <= 0 {
		http.Error(w, "target must be positive", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"target": req.Target,
		"price":  pricing.Interpolate(req.Target, req.Anchors),
	})
}
