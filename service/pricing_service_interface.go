package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"trykkeri-admin/models"
	"trykkeri-admin/pricing"
)

// PublishResult reports a publish
type PublishResult struct {
	ProductID   string    `json:"productId"`
	Rows        int       `json:"rows"`
	PublishedAt time.Time `json:"publishedAt"`
}

// TemplateData is what the template bank stores: the layout with its generator settings and the anchors
type TemplateData struct {
	Structure pricing.PricingStructure `json:"structure"`
	Anchors   pricing.AnchorStore      `json:"anchors"`
}

// PricingServiceInterface defines the contract for editing and publishing price matrices.
// States travel with the request; nothing is stored until Publish.
type PricingServiceInterface interface {
	LoadState(ctx context.Context, productID string) (pricing.State, error)
	Apply(s pricing.State, actions []json.RawMessage) (pricing.State, error)
	Preview(ctx context.Context, s pricing.State) ([]pricing.MatrixRow, error)
	Quote(s pricing.State, ctx pricing.Context, quantity int) pricing.PricePoint

	Import(ctx context.Context, s pricing.State, r io.Reader, replace bool) (pricing.State, *pricing.ImportResult, error)
	Export(ctx context.Context, s pricing.State, w io.Writer, opts pricing.ExportOptions) error
	Publish(ctx context.Context, s pricing.State) (*PublishResult, error)

	SaveTemplate(ctx context.Context, name string, s pricing.State) (*models.TemplateSnapshot, error)
	ListTemplates(ctx context.Context, productID string) ([]models.TemplateSnapshot, error)
	ApplyTemplate(ctx context.Context, templateID string, s pricing.State) (pricing.State, error)
	DeleteTemplate(ctx context.Context, templateID string) error
}
