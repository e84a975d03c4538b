package service

import (
	"context"
	"time"

	"trykkeri-admin/models"
)

// InvoiceServiceInterface defines the contract for invoices and their PDF output
type InvoiceServiceInterface interface {
	Create(ctx context.Context, req models.CreateInvoiceRequest) (*models.Invoice, error)
	Get(ctx context.Context, id string) (*models.Invoice, error)
	List(ctx context.Context, limit int) ([]models.Invoice, error)
	MarkPaid(ctx context.Context, id string, at time.Time) (*models.Invoice, error)
	RenderHTML(ctx context.Context, id string) (string, error)
	GeneratePDF(ctx context.Context, id string) ([]byte, error)
}
