package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"trykkeri-admin/models"
	"trykkeri-admin/service"
)

// ProductController handles products and their attribute groups and values
type ProductController struct {
	productService service.ProductServiceInterface
}

// NewProductController creates a new ProductController
func NewProductController(productService service.ProductServiceInterface) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

// CreateProductRequest represents the request body for creating a product
type CreateProductRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ImageURL string `json:"imageUrl"`
}

// CreateProduct handles POST /admin/products
// Example request:
// {"name": "Flyers", "imageUrl": "https://..."}
func (c *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "CreateProduct", "Invalid request", err)
		return
	}
	product, err := c.productService.CreateProduct(r.Context(), req.Name, req.Slug, req.ImageURL)
	if err != nil {
		writeError(w, "CreateProduct", "Failed to create product", err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// ListProducts handles GET /admin/products
func (c *ProductController) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := c.productService.ListProducts(r.Context())
	if err != nil {
		writeError(w, "ListProducts", "Failed to list products", err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /admin/products/{productID}
func (c *ProductController) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := c.productService.GetProduct(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, "GetProduct", "Failed to get product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// ListGroups handles GET /admin/products/{productID}/groups
// Groups come with their values
func (c *ProductController) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := c.productService.ListGroups(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		writeError(w, "ListGroups", "Failed to list attribute groups", err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// CreateGroup handles POST /admin/products/{productID}/groups
// Example request:
// {"name": "Papir", "kind": "material", "uiMode": "dropdown", "sortOrder": 2}
func (c *ProductController) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAttributeGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "CreateGroup", "Invalid request", err)
		return
	}
	group, err := c.productService.CreateGroup(r.Context(), chi.URLParam(r, "productID"), req)
	if err != nil {
		writeError(w, "CreateGroup", "Failed to create attribute group", err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// DeleteGroup handles DELETE /admin/groups/{groupID}
func (c *ProductController) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := c.productService.DeleteGroup(r.Context(), chi.URLParam(r, "groupID")); err != nil {
		writeError(w, "DeleteGroup", "Failed to delete attribute group", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateValue handles POST /admin/groups/{groupID}/values
// Example request:
// {"name": "A4", "widthMm": 210, "heightMm": 297}
func (c *ProductController) CreateValue(w http.ResponseWriter, r *http.Request) {
	c.upsertValue(w, r, "", http.StatusCreated)
}

// UpdateValue handles PUT /admin/groups/{groupID}/values/{valueID}
func (c *ProductController) UpdateValue(w http.ResponseWriter, r *http.Request) {
	c.upsertValue(w, r, chi.URLParam(r, "valueID"), http.StatusOK)
}

func (c *ProductController) upsertValue(w http.ResponseWriter, r *http.Request, valueID string, status int) {
	var req models.UpsertAttributeValueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "UpsertValue", "Invalid request", err)
		return
	}
	value, err := c.productService.UpsertValue(r.Context(), chi.URLParam(r, "groupID"), valueID, req)
	if err != nil {
		writeError(w, "UpsertValue", "Failed to save attribute value", err)
		return
	}
	writeJSON(w, status, value)
}

// DeleteValue handles DELETE /admin/groups/{groupID}/values/{valueID}
func (c *ProductController) DeleteValue(w http.ResponseWriter, r *http.Request) {
	if err := c.productService.DeleteValue(r.Context(), chi.URLParam(r, "valueID")); err != nil {
		writeError(w, "DeleteValue", "Failed to delete attribute value", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
