package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"trykkeri-admin/logging"
	"trykkeri-admin/models"
	"trykkeri-admin/repository"
)

// ProductService manages products and the attribute groups their matrices are built from
// Implements ProductServiceInterface
type ProductService struct {
	products   repository.ProductRepositoryInterface
	attributes repository.AttributeRepositoryInterface
}

// NewProductService creates a new ProductService
func NewProductService(products repository.ProductRepositoryInterface, attributes repository.AttributeRepositoryInterface) *ProductService {
	return &ProductService{products: products, attributes: attributes}
}

var _ ProductServiceInterface = (*ProductService)(nil)

var slugLower = cases.Lower(language.Danish)

// Slugify turns "Visitkort Premium" into "visitkort-premium"; æ, ø and å are spelled out
func Slugify(name string) string {
	s := slugLower.String(strings.TrimSpace(name))
	s = strings.NewReplacer("æ", "ae", "ø", "oe", "å", "aa").Replace(s)

	var b strings.Builder
	dash := false
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// CreateProduct creates a product, the slug defaults to the slugified name
func (s *ProductService) CreateProduct(ctx context.Context, name, slug, imageURL string) (*models.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: slug is required", ErrValidation)
	}

	p := &models.Product{Name: name, Slug: slug, ImageURL: imageURL}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProduct retrieves a product
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.products.GetByID(ctx, id)
}

// ListProducts lists every product
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.products.List(ctx)
}

// ListGroups returns the product's groups with their values
func (s *ProductService) ListGroups(ctx context.Context, productID string) ([]models.AttributeGroup, error) {
	return s.attributes.ListGroups(ctx, productID)
}

// CreateGroup validates kind and ui mode and creates an empty group
func (s *ProductService) CreateGroup(ctx context.Context, productID string, req models.CreateAttributeGroupRequest) (*models.AttributeGroup, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrValidation)
	}
	kind, err := models.ParseGroupKind(req.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	mode, err := models.ParseUIMode(req.UIMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	g := &models.AttributeGroup{
		ProductID: productID,
		Name:      name,
		Kind:      kind,
		UIMode:    mode,
		SortOrder: req.SortOrder,
		Values:    []models.AttributeValue{},
	}
	if err := s.attributes.CreateGroup(ctx, g); err != nil {
		return nil, err
	}
	logging.Infof("✅ Created %s group %q for product %s", kind, name, productID)
	return g, nil
}

// DeleteGroup deletes a group and its values
func (s *ProductService) DeleteGroup(ctx context.Context, groupID string) error {
	return s.attributes.DeleteGroup(ctx, groupID)
}

// UpsertValue creates or replaces a value, enabled defaults to true
func (s *ProductService) UpsertValue(ctx context.Context, groupID, valueID string, req models.UpsertAttributeValueRequest) (*models.AttributeValue, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: value name is required", ErrValidation)
	}
	for _, dim := range []*float64{req.WidthMM, req.HeightMM} {
		if dim != nil && *dim <= 0 {
			return nil, fmt.Errorf("%w: dimensions must be positive", ErrValidation)
		}
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	v := &models.AttributeValue{
		ID:        valueID,
		GroupID:   groupID,
		Name:      name,
		Enabled:   enabled,
		WidthMM:   req.WidthMM,
		HeightMM:  req.HeightMM,
		Meta:      req.Meta,
		SortOrder: req.SortOrder,
	}
	if err := s.attributes.UpsertValue(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// DeleteValue deletes a value
func (s *ProductService) DeleteValue(ctx context.Context, valueID string) error {
	return s.attributes.DeleteValue(ctx, valueID)
}
