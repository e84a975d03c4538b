package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"trykkeri-admin/models"
	"trykkeri-admin/repository"
)

func invoiceLines(n int) []LayoutLine {
	lines := make([]LayoutLine, n)
	for i := range lines {
		lines[i].Position = i + 1
	}
	return lines
}

func TestPaginateLines(t *testing.T) {
	tests := []struct {
		lines int
		pages []int
	}{
		{1, []int{1}},
		{9, []int{9}},
		// rows fit the first page, the totals do not
		{12, []int{12, 0}},
		{20, []int{14, 6}},
		{35, []int{14, 21}},
		{40, []int{14, 26, 0}},
	}
	for _, tt := range tests {
		got := paginateLines(invoiceLines(tt.lines))
		if len(got) != len(tt.pages) {
			t.Fatalf("paginateLines(%d) = %d pages, want %d", tt.lines, len(got), len(tt.pages))
		}
		for i, want := range tt.pages {
			if len(got[i]) != want {
				t.Fatalf("paginateLines(%d) page %d has %d lines, want %d", tt.lines, i+1, len(got[i]), want)
			}
		}
	}
}

func TestLayoutInvoiceTotals(t *testing.T) {
	inv := models.Invoice{
		Lines: []models.InvoiceLine{
			{Description: "Flyers A5", Quantity: 500, UnitPrice: 0.9, VATPercent: 25},
			{Description: "Levering", Quantity: 1, UnitPrice: 49, VATPercent: 25},
			{Description: "Korrektur", Quantity: 3, UnitPrice: 33.333, VATPercent: 25},
		},
	}
	layout := LayoutInvoice(inv, InvoiceSettings{})

	if got := layout.Subtotal.StringFixed(2); got != "599.00" {
		t.Fatalf("Subtotal = %s, want 599.00", got)
	}
	// 112.50 + 12.25 + 25.00
	if got := layout.VAT.StringFixed(2); got != "149.75" {
		t.Fatalf("VAT = %s, want 149.75", got)
	}
	if got := layout.Total.StringFixed(2); got != "748.75" {
		t.Fatalf("Total = %s, want 748.75", got)
	}
	if len(layout.Pages) != 1 || !layout.Pages[0].First || !layout.Pages[0].Last || layout.Paid {
		t.Fatalf("layout pages = %+v", layout.Pages)
	}
}

func TestInvoiceCreateAndPDF(t *testing.T) {
	ctx := context.Background()
	renderer := &fakeRenderer{}
	svc := NewInvoiceService(repository.NewInvoiceRepository(newTestDB(t)), renderer, InvoiceSettings{
		Name:       "Trykkeriet ApS",
		VATNo:      "12345678",
		Bank:       models.BankDetails{BankName: "Danske Bank", RegNo: "1234", Account: "0012345678"},
		VATPercent: 25,
	})

	issued := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	inv, err := svc.Create(ctx, models.CreateInvoiceRequest{
		Number:   "2026-0042",
		IssuedAt: &issued,
		BillTo:   models.BillTo{Name: "Jens Hansen", Address: "Nørregade 1", Zip: "8000", City: "Aarhus"},
		Lines: []models.CreateInvoiceLine{
			{Description: "Flyers A5", Quantity: 500, UnitPrice: 0.9},
			{Description: "Levering", Quantity: 1, UnitPrice: 49},
		},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if inv.Currency != "DKK" || !inv.DueAt.Equal(issued.AddDate(0, 0, 14)) || inv.Lines[0].VATPercent != 25 {
		t.Fatalf("created invoice = %+v", inv)
	}

	if _, err := svc.MarkPaid(ctx, inv.ID, time.Date(2026, 5, 7, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("MarkPaid returned error: %v", err)
	}
	pdf, err := svc.GeneratePDF(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GeneratePDF returned error: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Fatalf("GeneratePDF returned %q", pdf)
	}
	for _, want := range []string{"2026-0042", "Jens Hansen", "623,75 DKK", "BETALT 07-05-2026", "Danske Bank", "Side 1 af 1", "18-05-2026"} {
		if !strings.Contains(renderer.html, want) {
			t.Fatalf("rendered invoice is missing %q", want)
		}
	}
}

func TestInvoiceCreateValidation(t *testing.T) {
	svc := NewInvoiceService(repository.NewInvoiceRepository(newTestDB(t)), &fakeRenderer{}, InvoiceSettings{VATPercent: 25})
	bill := models.BillTo{Name: "Jens Hansen"}
	tests := []struct {
		name string
		req  models.CreateInvoiceRequest
	}{
		{"no bill-to", models.CreateInvoiceRequest{Lines: []models.CreateInvoiceLine{{Description: "x", Quantity: 1}}}},
		{"no lines", models.CreateInvoiceRequest{BillTo: bill}},
		{"zero quantity", models.CreateInvoiceRequest{BillTo: bill, Lines: []models.CreateInvoiceLine{{Description: "x"}}}},
		{"negative price", models.CreateInvoiceRequest{BillTo: bill, Lines: []models.CreateInvoiceLine{{Description: "x", Quantity: 1, UnitPrice: -1}}}},
		{"negative vat", models.CreateInvoiceRequest{BillTo: bill, Lines: []models.CreateInvoiceLine{{Description: "x", Quantity: 1, VATPercent: vatRate(-5)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tt.req); !errors.Is(err, ErrValidation) {
				t.Fatalf("Create error = %v, want ErrValidation", err)
			}
		})
	}

	if _, err := svc.GeneratePDF(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("GeneratePDF(missing) error = %v", err)
	}
}

func vatRate(p float64) *float64 { return &p }

func TestInvoiceCreateExemptLine(t *testing.T) {
	svc := NewInvoiceService(repository.NewInvoiceRepository(newTestDB(t)), &fakeRenderer{}, InvoiceSettings{VATPercent: 25})
	inv, err := svc.Create(context.Background(), models.CreateInvoiceRequest{
		BillTo: models.BillTo{Name: "Jens Hansen"},
		Lines: []models.CreateInvoiceLine{
			{Description: "Flyers A5", Quantity: 100, UnitPrice: 1},
			{Description: "Porto", Quantity: 1, UnitPrice: 50, VATPercent: vatRate(0)},
		},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if inv.Lines[0].VATPercent != 25 || inv.Lines[1].VATPercent != 0 {
		t.Fatalf("line rates = %v, %v, want 25 and 0", inv.Lines[0].VATPercent, inv.Lines[1].VATPercent)
	}

	layout := LayoutInvoice(*inv, InvoiceSettings{})
	if got := layout.VAT.StringFixed(2); got != "25.00" {
		t.Fatalf("VAT = %s, want 25.00", got)
	}
	if got := layout.Total.StringFixed(2); got != "175.00" {
		t.Fatalf("Total = %s, want 175.00", got)
	}
}
