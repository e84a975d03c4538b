package models

import (
	"encoding/json"
	"time"
)

// Product is a sellable print product with its persisted matrix layout
type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	ImageURL         string          `json:"imageUrl"`
	PricingStructure json.RawMessage `json:"pricingStructure,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// GeneratedPrice is one published price row.
// Rows are unique on (ProductID, VariantName, VariantValue, Quantity).
type GeneratedPrice struct {
	ProductID    string          `json:"productId"`
	VariantName  string          `json:"variantName"`
	VariantValue string          `json:"variantValue"`
	Quantity     int             `json:"quantity"`
	Price        float64         `json:"price"`
	ExtraData    json.RawMessage `json:"extraData,omitempty"`
}

// TemplateSnapshot is a named entry of the template bank
type TemplateSnapshot struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	ProductID string          `json:"productId,omitempty"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
}
