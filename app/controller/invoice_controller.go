package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
	"trykkeri-admin/service"
)

const defaultInvoiceListLimit = 50

// InvoiceController handles invoices and their PDF output
type InvoiceController struct {
	invoiceService service.InvoiceServiceInterface
}

// NewInvoiceController creates a new InvoiceController
func NewInvoiceController(invoiceService service.InvoiceServiceInterface) *InvoiceController {
	return &InvoiceController{
		invoiceService: invoiceService,
	}
}

// MarkPaidRequest represents the optional body of a paid marking
// Example: {"paidAt": "2026-05-07T12:00:00Z"}
type MarkPaidRequest struct {
	PaidAt *time.Time `json:"paidAt,omitempty"`
}

// Create handles POST /admin/invoices
// Example request:
//
//	{
//	  "number": "2026-0042",
//	  "billTo": {"name": "Jens Hansen", "address": "Nørregade 1", "zip": "8000", "city": "Aarhus"},
//	  "lines": [{"description": "Flyers A5", "quantity": 500, "unitPrice": 0.9}]
//	}
//
// A line without vatPercent gets the default VAT rate, "vatPercent": 0 is VAT exempt
func (c *InvoiceController) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateInvoiceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "CreateInvoice", "Invalid request", err)
		return
	}
	invoice, err := c.invoiceService.Create(r.Context(), req)
	if err != nil {
		writeError(w, "CreateInvoice", "Failed to create invoice", err)
		return
	}
	writeJSON(w, http.StatusCreated, invoice)
}

// List handles GET /admin/invoices?limit=50
func (c *InvoiceController) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultInvoiceListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	invoices, err := c.invoiceService.List(r.Context(), limit)
	if err != nil {
		writeError(w, "ListInvoices", "Failed to list invoices", err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// Get handles GET /admin/invoices/{id}
func (c *InvoiceController) Get(w http.ResponseWriter, r *http.Request) {
	invoice, err := c.invoiceService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "GetInvoice", "Failed to get invoice", err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

// MarkPaid handles POST /admin/invoices/{id}/paid
// Without paidAt the current time is used
func (c *InvoiceController) MarkPaid(w http.ResponseWriter, r *http.Request) {
	var req MarkPaidRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, "MarkInvoicePaid", "Invalid request", err)
		return
	}
	var at time.Time
	if req.PaidAt != nil {
		at = *req.PaidAt
	}
	invoice, err := c.invoiceService.MarkPaid(r.Context(), chi.URLParam(r, "id"), at)
	if err != nil {
		writeError(w, "MarkInvoicePaid", "Failed to mark invoice paid", err)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

// RenderHTML handles GET /admin/invoices/{id}/html
// Returns the printable page the PDF is made from
func (c *InvoiceController) RenderHTML(w http.ResponseWriter, r *http.Request) {
	html, err := c.invoiceService.RenderHTML(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "RenderInvoiceHTML", "Failed to render invoice", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		logging.Errorf("❌ RenderInvoiceHTML: Error writing response: %v", err)
	}
}

// GeneratePDF handles GET /admin/invoices/{id}/pdf
func (c *InvoiceController) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	invoice, err := c.invoiceService.Get(r.Context(), id)
	if err != nil {
		writeError(w, "GenerateInvoicePDF", "Failed to get invoice", err)
		return
	}
	pdf, err := c.invoiceService.GeneratePDF(r.Context(), id)
	if err != nil {
		writeError(w, "GenerateInvoicePDF", "Failed to generate PDF", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"faktura-%s.pdf\"", invoice.Number))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logging.Errorf("❌ GenerateInvoicePDF: Error writing response: %v", err)
		return
	}
	logging.Infof("🧾 Invoice %s PDF sent (%d bytes)", invoice.Number, len(pdf))
}
