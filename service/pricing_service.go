package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
	"trykkeri-admin/pricing"
	"trykkeri-admin/repository"
)

// PricingDefaults apply to products that never saved generator settings
type PricingDefaults struct {
	Rounding     int
	MasterMarkup float64
}

// PricingService loads, edits, imports, exports and publishes price matrices
// Implements PricingServiceInterface
type PricingService struct {
	products   repository.ProductRepositoryInterface
	attributes repository.AttributeRepositoryInterface
	prices     repository.PriceRepositoryInterface
	templates  repository.TemplateRepositoryInterface
	classifier pricing.Classifier
	defaults   PricingDefaults
	now        func() time.Time
}

// NewPricingService creates a new PricingService
func NewPricingService(
	products repository.ProductRepositoryInterface,
	attributes repository.AttributeRepositoryInterface,
	prices repository.PriceRepositoryInterface,
	templates repository.TemplateRepositoryInterface,
	defaults PricingDefaults,
) *PricingService {
	return &PricingService{
		products:   products,
		attributes: attributes,
		prices:     prices,
		templates:  templates,
		classifier: pricing.NewClassifier(nil),
		defaults:   defaults,
		now:        time.Now,
	}
}

var _ PricingServiceInterface = (*PricingService)(nil)

// LoadState builds the editing state from the saved layout and the published rows
func (s *PricingService) LoadState(ctx context.Context, productID string) (pricing.State, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return pricing.State{}, err
	}

	var structure pricing.PricingStructure
	if len(product.PricingStructure) > 0 {
		if err := json.Unmarshal(product.PricingStructure, &structure); err != nil {
			return pricing.State{}, fmt.Errorf("failed to decode pricing structure of product %s: %w", productID, err)
		}
	}

	state := pricing.NewState(productID, structure)
	if structure.Generator == nil {
		state.MasterMarkup = s.defaults.MasterMarkup
		if unit, err := pricing.ParseRoundingUnit(s.defaults.Rounding); err == nil {
			state.Rounding = unit
		}
	}

	rows, err := s.prices.ListByProduct(ctx, productID)
	if err != nil {
		return pricing.State{}, err
	}
	anchors, quantities := state.AnchorsFromPublished(rows)
	state.Anchors = pricing.NewAnchorStore(anchors)
	if len(state.Structure.Quantities) == 0 {
		state.Structure.Quantities = pricing.NormalizeQuantities(quantities)
	}

	logging.Infof("🔍 Loaded pricing state for %s: %d anchors, %d quantities", product.Slug, state.Anchors.Len(), len(state.Structure.Quantities))
	return state, nil
}

// Apply runs the actions in order. On the first failure the input state is returned unchanged.
func (s *PricingService) Apply(state pricing.State, actions []json.RawMessage) (pricing.State, error) {
	next := state
	for i, raw := range actions {
		action, err := pricing.DecodeAction(raw)
		if err != nil {
			return state, fmt.Errorf("%w: action %d: %w", ErrValidation, i, err)
		}
		next, err = pricing.Reduce(next, action)
		if err != nil {
			return state, fmt.Errorf("%w: action %d (%s): %w", ErrValidation, i, action.ActionType(), err)
		}
	}
	return next, nil
}

// Preview computes every row of the matrix
func (s *PricingService) Preview(ctx context.Context, state pricing.State) ([]pricing.MatrixRow, error) {
	groups, err := s.attributes.ListGroups(ctx, state.ProductID)
	if err != nil {
		return nil, err
	}
	return pricing.BuildMatrix(state, groups), nil
}

// Quote computes one cell, the quantity does not have to be in the quantity set
func (s *PricingService) Quote(state pricing.State, c pricing.Context, quantity int) pricing.PricePoint {
	return state.PriceAt(c, quantity)
}

// Import reads a price sheet into the state. A product without a layout adopts the layout
// carried by the sheet's meta line.
func (s *PricingService) Import(ctx context.Context, state pricing.State, r io.Reader, replace bool) (pricing.State, *pricing.ImportResult, error) {
	groups, err := s.attributes.ListGroups(ctx, state.ProductID)
	if err != nil {
		return state, nil, err
	}

	result, err := pricing.ImportCSV(r, groups, s.classifier)
	if err != nil {
		if errors.Is(err, pricing.ErrEmptyCSV) {
			return state, nil, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return state, nil, fmt.Errorf("failed to import csv: %w", err)
	}

	next := state
	if result.Structure != nil && next.Structure.VerticalAxis.GroupID == "" {
		if err := result.Structure.Validate(groups); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("layout in sheet ignored: %v", err))
		} else {
			adopted := pricing.NewState(state.ProductID, *result.Structure)
			adopted.Anchors = state.Anchors
			next = adopted
		}
	}

	next, err = pricing.Reduce(next, result.Action(replace))
	if err != nil {
		return state, nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	for _, w := range result.Warnings {
		logging.Warnf("⚠️  import %s: %s", state.ProductID, w)
	}
	logging.Infof("📥 Imported %d anchors from %d rows (%d skipped) into %s", len(result.Anchors), result.Rows, result.Skipped, state.ProductID)
	return next, result, nil
}

// Export writes the state as a price sheet
func (s *PricingService) Export(ctx context.Context, state pricing.State, w io.Writer, opts pricing.ExportOptions) error {
	groups, err := s.attributes.ListGroups(ctx, state.ProductID)
	if err != nil {
		return err
	}
	if err := pricing.ExportCSV(w, state, groups, opts); err != nil {
		return fmt.Errorf("failed to export csv: %w", err)
	}
	return nil
}

// Publish upserts every computed price, drops rows the matrix no longer produces and saves the
// layout. Concurrent publishes of one product resolve as last write wins.
func (s *PricingService) Publish(ctx context.Context, state pricing.State) (*PublishResult, error) {
	groups, err := s.attributes.ListGroups(ctx, state.ProductID)
	if err != nil {
		return nil, err
	}
	if err := state.Structure.Validate(groups); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	rows, err := pricing.PublishRows(state, groups)
	if err != nil {
		return nil, fmt.Errorf("failed to build price rows: %w", err)
	}

	at := s.now().UTC()
	n, err := s.prices.Replace(ctx, state.ProductID, rows, at)
	if err != nil {
		return nil, err
	}

	structure, err := json.Marshal(state.PersistedStructure())
	if err != nil {
		return nil, fmt.Errorf("failed to encode pricing structure: %w", err)
	}
	if err := s.products.SavePricingStructure(ctx, state.ProductID, structure); err != nil {
		return nil, err
	}

	logging.Infof("📤 Published %d prices for %s", n, state.ProductID)
	return &PublishResult{ProductID: state.ProductID, Rows: n, PublishedAt: at}, nil
}

// SaveTemplate stores the layout, generator settings and anchors under a name
func (s *PricingService) SaveTemplate(ctx context.Context, name string, state pricing.State) (*models.TemplateSnapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: template name is required", ErrValidation)
	}
	data, err := json.Marshal(TemplateData{Structure: state.PersistedStructure(), Anchors: state.Anchors})
	if err != nil {
		return nil, fmt.Errorf("failed to encode template: %w", err)
	}

	snapshot := &models.TemplateSnapshot{Name: name, ProductID: state.ProductID, Data: data}
	if err := s.templates.Save(ctx, snapshot); err != nil {
		return nil, err
	}
	logging.Infof("💾 Saved template %q (%d anchors)", name, state.Anchors.Len())
	return snapshot, nil
}

// ListTemplates lists the template bank, optionally narrowed to one product
func (s *PricingService) ListTemplates(ctx context.Context, productID string) ([]models.TemplateSnapshot, error) {
	return s.templates.List(ctx, productID)
}

// ApplyTemplate replaces the state with a template's content. When the template's layout does
// not fit the product's groups the current layout is kept and only the generator settings,
// quantities and anchors are taken over.
func (s *PricingService) ApplyTemplate(ctx context.Context, templateID string, state pricing.State) (pricing.State, error) {
	snapshot, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return state, err
	}
	var data TemplateData
	if err := json.Unmarshal(snapshot.Data, &data); err != nil {
		return state, fmt.Errorf("failed to decode template %s: %w", templateID, err)
	}

	groups, err := s.attributes.ListGroups(ctx, state.ProductID)
	if err != nil {
		return state, err
	}

	structure := data.Structure
	if err := structure.Validate(groups); err != nil {
		logging.Warnf("⚠️  Template %s layout does not fit product %s, keeping current layout: %v", templateID, state.ProductID, err)
		kept := state.Structure
		kept.Quantities = structure.Quantities
		kept.Generator = structure.Generator
		structure = kept
	}

	next := pricing.NewState(state.ProductID, structure)
	next.Anchors = data.Anchors
	logging.Infof("✅ Applied template %q to %s", snapshot.Name, state.ProductID)
	return next, nil
}

// DeleteTemplate removes a template from the bank
func (s *PricingService) DeleteTemplate(ctx context.Context, templateID string) error {
	return s.templates.Delete(ctx, templateID)
}
