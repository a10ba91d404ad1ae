package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/andriansp/gocommerce/internal/application"
	"github.com/andriansp/gocommerce/internal/domain/entity"
	"github.com/andriansp/gocommerce/internal/domain/repository"
	"github.com/andriansp/gocommerce/pkg/response"
	"github.com/andriansp/gocommerce/pkg/validation"
)

type CatalogHandler struct {
	Svc    *application.CatalogService
	Logger *logrus.Logger
}

func NewCatalogHandler(svc *application.CatalogService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{Svc: svc, Logger: logger}
}

func categoryPayload(c *entity.Category) gin.H {
	return gin.H{"id": c.ID, "name": c.Name, "description": c.Description}
}

// productListItem is the compact shape used by list-style endpoints.
func productListItem(p *entity.Product) gin.H {
	return gin.H{
		"id":            p.ID,
		"name":          p.Name,
		"price":         p.Price,
		"category_name": p.CategoryName,
		"image_url":     p.ImageURL,
		"is_in_stock":   p.InStock(),
	}
}

func productDetail(p *entity.Product) gin.H {
	return gin.H{
		"id":             p.ID,
		"name":           p.Name,
		"description":    p.Description,
		"price":          p.Price,
		"category_id":    p.CategoryID,
		"category_name":  p.CategoryName,
		"image_url":      p.ImageURL,
		"stock_quantity": p.StockQuantity,
		"stock_status":   p.StockStatus(),
		"is_in_stock":    p.InStock(),
		"is_active":      p.IsActive,
		"created_at":     p.CreatedAt,
	}
}

func productList(products []entity.Product) []gin.H {
	out := make([]gin.H, 0, len(products))
	for i := range products {
		out = append(out, productListItem(&products[i]))
	}
	return out
}

func (h *CatalogHandler) serverError(c *gin.Context, err error, msg string) {
	if h.Logger != nil {
		h.Logger.WithError(err).Error(msg)
	}
	response.Error[any](c, http.StatusInternalServerError, msg, nil)
}

// ListCategories GET /api/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cats, err := h.Svc.ListCategories(c.Request.Context())
	if err != nil {
		h.serverError(c, err, "failed to list categories")
		return
	}
	out := make([]gin.H, 0, len(cats))
	for i := range cats {
		out = append(out, categoryPayload(&cats[i]))
	}
	response.Success(c, http.StatusOK, out, "categories", nil)
}

// GetCategory GET /api/categories/:id
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	cat, err := h.Svc.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "category not found", nil)
			return
		}
		h.serverError(c, err, "failed to load category")
		return
	}
	response.Success(c, http.StatusOK, categoryPayload(cat), "category", nil)
}

// ListProducts GET /api/products?category=&search=&ordering=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	f := repository.ProductFilter{
		CategoryID: c.Query("category"),
		Search:     c.Query("search"),
		Ordering:   c.Query("ordering"),
	}
	products, err := h.Svc.ListProducts(c.Request.Context(), f)
	if err != nil {
		h.serverError(c, err, "failed to list products")
		return
	}
	response.Success(c, http.StatusOK, productList(products), "products", gin.H{"count": len(products)})
}

// GetProduct GET /api/products/:id — detail plus up to 4 related products.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, related, err := h.Svc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "product not found", nil)
			return
		}
		h.serverError(c, err, "failed to load product")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"product":          productDetail(p),
		"related_products": productList(related),
		"breadcrumb": gin.H{
			"category":    p.CategoryName,
			"category_id": p.CategoryID,
			"product":     p.Name,
		},
	}, "product", nil)
}

type productRequest struct {
	CategoryID    string  `json:"category_id" binding:"required,uuid"`
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	StockQuantity int     `json:"stock_quantity" binding:"gte=0"`
	IsActive      *bool   `json:"is_active"`
	ImageURL      string  `json:"image_url"`
}

func (r *productRequest) toInput() application.ProductInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return application.ProductInput{
		CategoryID:    r.CategoryID,
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		IsActive:      active,
		ImageURL:      r.ImageURL,
	}
}

// CreateProduct POST /api/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	p, err := h.Svc.CreateProduct(c.Request.Context(), req.toInput())
	if err != nil {
		if fe, ok := application.AsFieldErrors(err); ok {
			response.Error[any](c, http.StatusBadRequest, "validation failed", fe)
			return
		}
		h.serverError(c, err, "failed to create product")
		return
	}
	response.Success(c, http.StatusCreated, productDetail(p), "product created", nil)
}

// UpdateProduct PUT /api/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	p, err := h.Svc.UpdateProduct(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		if fe, ok := application.AsFieldErrors(err); ok {
			response.Error[any](c, http.StatusBadRequest, "validation failed", fe)
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "product not found", nil)
			return
		}
		h.serverError(c, err, "failed to update product")
		return
	}
	response.Success(c, http.StatusOK, productDetail(p), "product updated", nil)
}

// DeleteProduct DELETE /api/products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	if err := h.Svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "product not found", nil)
			return
		}
		h.serverError(c, err, "failed to delete product")
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "product deleted", nil)
}

// ByCategory GET /api/products/by_category?category_id=
func (h *CatalogHandler) ByCategory(c *gin.Context) {
	categoryID := c.Query("category_id")
	if categoryID == "" {
		response.Error[any](c, http.StatusBadRequest, "category_id parameter required", nil)
		return
	}
	products, err := h.Svc.ListProducts(c.Request.Context(), repository.ProductFilter{CategoryID: categoryID})
	if err != nil {
		h.serverError(c, err, "failed to list products")
		return
	}
	response.Success(c, http.StatusOK, productList(products), "products", nil)
}

// Featured GET /api/products/featured
func (h *CatalogHandler) Featured(c *gin.Context) {
	products, err := h.Svc.Featured(c.Request.Context())
	if err != nil {
		h.serverError(c, err, "failed to load featured products")
		return
	}
	response.Success(c, http.StatusOK, productList(products), "featured products", nil)
}

// SearchSuggestions GET /api/products/search_suggestions?q=
func (h *CatalogHandler) SearchSuggestions(c *gin.Context) {
	suggestions, err := h.Svc.SearchSuggestions(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.serverError(c, err, "failed to load suggestions")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"suggestions": suggestions}, "search suggestions", nil)
}

// Similar GET /api/products/:id/similar
func (h *CatalogHandler) Similar(c *gin.Context) {
	products, err := h.Svc.Similar(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Error[any](c, http.StatusNotFound, "product not found", nil)
			return
		}
		h.serverError(c, err, "failed to load similar products")
		return
	}
	response.Success(c, http.StatusOK, productList(products), "similar products", nil)
}

// Search GET /api/products/search?q=&size= — Elasticsearch full-text search.
func (h *CatalogHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q parameter required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.SearchProducts(c.Request.Context(), q, size)
	if err != nil {
		h.serverError(c, err, "search failed")
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}
