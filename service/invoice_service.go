package service

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
	"trykkeri-admin/repository"
	"trykkeri-admin/utils"
)

//go:embed templates/invoice.html
var invoiceTemplateHTML string

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": utils.FormatAmount,
	"date":  func(t time.Time) string { return t.Format("02-01-2006") },
	"percent": func(d decimal.Decimal) string {
		return strings.Replace(d.String(), ".", ",", 1) + " %"
	},
}).Parse(invoiceTemplateHTML))

// Rows available for line items. The first page also carries the header and bill-to block,
// the last page the totals, bank details and notes.
const (
	firstPageRows = 14
	pageRows      = 26
	totalsRows    = 5
)

// InvoiceSettings is the seller side of every invoice
type InvoiceSettings struct {
	Name       string
	Address    string
	VATNo      string
	Bank       models.BankDetails
	Currency   string
	VATPercent float64
	DueDays    int
}

// LayoutLine is a line item with its computed amounts
type LayoutLine struct {
	Position    int
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	VATPercent  decimal.Decimal
	Amount      decimal.Decimal
	VAT         decimal.Decimal
}

// LayoutPage is one printed page
type LayoutPage struct {
	Number int
	Count  int
	First  bool
	Last   bool
	Lines  []LayoutLine
}

// InvoiceLayout is everything the template needs
type InvoiceLayout struct {
	Invoice  models.Invoice
	Seller   InvoiceSettings
	Pages    []LayoutPage
	Subtotal decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
	Paid     bool
	PaidAt   time.Time
}

// LayoutInvoice computes line amounts and totals and splits the lines into pages
func LayoutInvoice(inv models.Invoice, seller InvoiceSettings) InvoiceLayout {
	hundred := decimal.NewFromInt(100)
	out := InvoiceLayout{Invoice: inv, Seller: seller}

	lines := make([]LayoutLine, 0, len(inv.Lines))
	for i, l := range inv.Lines {
		unit := decimal.NewFromFloat(l.UnitPrice)
		rate := decimal.NewFromFloat(l.VATPercent)
		amount := unit.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
		vat := amount.Mul(rate).Div(hundred).Round(2)
		lines = append(lines, LayoutLine{
			Position:    i + 1,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   unit,
			VATPercent:  rate,
			Amount:      amount,
			VAT:         vat,
		})
		out.Subtotal = out.Subtotal.Add(amount)
		out.VAT = out.VAT.Add(vat)
	}
	out.Total = out.Subtotal.Add(out.VAT)

	if inv.PaidAt != nil {
		out.Paid = true
		out.PaidAt = *inv.PaidAt
	}

	chunks := paginateLines(lines)
	for i, chunk := range chunks {
		out.Pages = append(out.Pages, LayoutPage{
			Number: i + 1,
			Count:  len(chunks),
			First:  i == 0,
			Last:   i == len(chunks)-1,
			Lines:  chunk,
		})
	}
	return out
}

// paginateLines fills pages in order. When the remaining lines fit a page but the totals block
// does not, the totals move to a page of their own.
func paginateLines(lines []LayoutLine) [][]LayoutLine {
	var pages [][]LayoutLine
	rest := lines
	for {
		capacity := pageRows
		if len(pages) == 0 {
			capacity = firstPageRows
		}
		switch {
		case len(rest) <= capacity-totalsRows:
			return append(pages, rest)
		case len(rest) <= capacity:
			return append(pages, rest, nil)
		}
		pages = append(pages, rest[:capacity])
		rest = rest[capacity:]
	}
}

// InvoiceService creates invoices and renders them
// Implements InvoiceServiceInterface
type InvoiceService struct {
	repository repository.InvoiceRepositoryInterface
	renderer   PDFRendererInterface
	seller     InvoiceSettings
	now        func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(repo repository.InvoiceRepositoryInterface, renderer PDFRendererInterface, seller InvoiceSettings) *InvoiceService {
	if seller.Currency == "" {
		seller.Currency = "DKK"
	}
	if seller.DueDays <= 0 {
		seller.DueDays = 14
	}
	return &InvoiceService{repository: repo, renderer: renderer, seller: seller, now: time.Now}
}

var _ InvoiceServiceInterface = (*InvoiceService)(nil)

// Create validates the request, fills defaults and stores the invoice.
// Lines without a VAT rate get the configured rate.
func (s *InvoiceService) Create(ctx context.Context, req models.CreateInvoiceRequest) (*models.Invoice, error) {
	if strings.TrimSpace(req.BillTo.Name) == "" {
		return nil, fmt.Errorf("%w: bill-to name is required", ErrValidation)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: an invoice needs at least one line", ErrValidation)
	}

	lines := make([]models.InvoiceLine, len(req.Lines))
	for i, l := range req.Lines {
		if strings.TrimSpace(l.Description) == "" {
			return nil, fmt.Errorf("%w: line %d has no description", ErrValidation, i+1)
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %d quantity must be positive", ErrValidation, i+1)
		}
		vat := s.seller.VATPercent
		if l.VATPercent != nil {
			vat = *l.VATPercent
		}
		if l.UnitPrice < 0 || vat < 0 {
			return nil, fmt.Errorf("%w: line %d has a negative amount", ErrValidation, i+1)
		}
		lines[i] = models.InvoiceLine{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			VATPercent:  vat,
		}
	}

	issued := s.now().UTC().Truncate(24 * time.Hour)
	if req.IssuedAt != nil {
		issued = req.IssuedAt.UTC()
	}
	dueDays := req.DueDays
	if dueDays <= 0 {
		dueDays = s.seller.DueDays
	}
	currency := req.Currency
	if currency == "" {
		currency = s.seller.Currency
	}
	number := strings.TrimSpace(req.Number)
	if number == "" {
		number = issued.Format("20060102") + "-" + strings.ToUpper(uuid.NewString()[:4])
	}

	inv := &models.Invoice{
		Number:   number,
		IssuedAt: issued,
		DueAt:    issued.AddDate(0, 0, dueDays),
		Currency: currency,
		BillTo:   req.BillTo,
		Lines:    lines,
		Notes:    req.Notes,
		Bank:     s.seller.Bank,
	}
	if err := s.repository.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Get retrieves an invoice with the seller's bank details
func (s *InvoiceService) Get(ctx context.Context, id string) (*models.Invoice, error) {
	inv, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Bank = s.seller.Bank
	return inv, nil
}

// List lists the latest invoices
func (s *InvoiceService) List(ctx context.Context, limit int) ([]models.Invoice, error) {
	return s.repository.List(ctx, limit)
}

// MarkPaid records the payment date shown by the paid stamp
func (s *InvoiceService) MarkPaid(ctx context.Context, id string, at time.Time) (*models.Invoice, error) {
	if at.IsZero() {
		at = s.now()
	}
	if err := s.repository.MarkPaid(ctx, id, at); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// RenderHTML lays out the invoice as a printable document
func (s *InvoiceService) RenderHTML(ctx context.Context, id string) (string, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return renderInvoice(LayoutInvoice(*inv, s.seller))
}

func renderInvoice(layout InvoiceLayout) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, layout); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// GeneratePDF renders the invoice and prints it
func (s *InvoiceService) GeneratePDF(ctx context.Context, id string) ([]byte, error) {
	html, err := s.RenderHTML(ctx, id)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.RenderPDF(ctx, html)
	if err != nil {
		return nil, err
	}
	logging.Infof("🧾 Generated PDF for invoice %s", id)
	return pdf, nil
}
