package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andriansp/gocommerce/internal/domain/entity"
)

const testCategoryID = "7b0db837-3f2e-4f3a-9a57-0f7de05078f2"

func (fx *catalogFixture) seedCategory(name string) *entity.Category {
	c := &entity.Category{ID: testCategoryID, Name: name}
	fx.categories.categories[c.ID] = c
	return c
}

func (fx *catalogFixture) seedProduct(id, name string, price float64, stock int) *entity.Product {
	p := &entity.Product{
		ID: id, CategoryID: testCategoryID, CategoryName: "Electronics",
		Name: name, Price: price, StockQuantity: stock, IsActive: true,
	}
	fx.products.products[id] = p
	return p
}

func TestListProductsEndpoint(t *testing.T) {
	fx := newCatalogFixture(t)
	fx.seedCategory("Electronics")
	fx.seedProduct("p1", "Headphones", 129.99, 42)
	fx.seedProduct("p2", "Keyboard", 89.50, 0)

	w, env := doJSON(t, fx.engine, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := env.dataList(t)
	assert.Len(t, list, 2)
	assert.Equal(t, float64(2), env.Meta["count"])

	for _, item := range list {
		if item["name"] == "Keyboard" {
			assert.Equal(t, false, item["is_in_stock"])
		}
	}
}

func TestGetProductEndpointIncludesRelatedAndBreadcrumb(t *testing.T) {
	fx := newCatalogFixture(t)
	fx.seedCategory("Electronics")
	fx.seedProduct("p1", "Headphones", 129.99, 42)
	fx.seedProduct("p2", "Keyboard", 89.50, 3)

	w, env := doJSON(t, fx.engine, http.MethodGet, "/api/products/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := env.dataMap(t)
	product, ok := data["product"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Headphones", product["name"])
	assert.Equal(t, "In Stock", product["stock_status"])

	related, ok := data["related_products"].([]any)
	require.True(t, ok)
	assert.Len(t, related, 1)

	breadcrumb, ok := data["breadcrumb"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Electronics", breadcrumb["category"])
	assert.Equal(t, "Headphones", breadcrumb["product"])
}

func TestGetProductEndpointNotFound(t *testing.T) {
	fx := newCatalogFixture(t)
	w, env := doJSON(t, fx.engine, http.MethodGet, "/api/products/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product not found", env.Message)
}

func TestGetProductEndpointHidesInactive(t *testing.T) {
	fx := newCatalogFixture(t)
	fx.seedCategory("Electronics")
	fx.seedProduct("p1", "Discontinued", 59.99, 7).IsActive = false

	w, env := doJSON(t, fx.engine, http.MethodGet, "/api/products/p1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product not found", env.Message)

	w, _ = doJSON(t, fx.engine, http.MethodGet, "/api/products/p1/similar", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestByCategoryRequiresParameter(t *testing.T) {
	fx := newCatalogFixture(t)

	w, env := doJSON(t, fx.engine, http.MethodGet, "/api/products/by_category", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "category_id parameter required", env.Message)

	fx.seedCategory("Electronics")
	fx.seedProduct("p1", "Headphones", 129.99, 42)
	w, env = doJSON(t, fx.engine, http.MethodGet, "/api/products/by_category?category_id="+testCategoryID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, env.dataList(t), 1)
}

func TestSearchSuggestionsEndpointGate(t *testing.T) {
	fx := newCatalogFixture(t)
	fx.products.suggestion = []string{"Headphones", "Headset"}

	w, env := doJSON(t, fx.engine, http.MethodGet, "/api/products/search_suggestions?q=h", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := env.dataMap(t)
	suggestions, ok := data["suggestions"].([]any)
	require.True(t, ok)
	assert.Empty(t, suggestions)

	_, env = doJSON(t, fx.engine, http.MethodGet, "/api/products/search_suggestions?q=he", nil)
	suggestions, ok = env.dataMap(t)["suggestions"].([]any)
	require.True(t, ok)
	assert.Len(t, suggestions, 2)
}

func TestSimilarEndpoint(t *testing.T) {
	fx := newCatalogFixture(t)
	fx.seedCategory("Electronics")
	fx.seedProduct("p1", "Reference", 100, 5)
	fx.seedProduct("p2", "InBand", 80, 5)
	fx.seedProduct("p3", "TooCheap", 50, 5)
	fx.seedProduct("p4", "TooExpensive", 200, 5)

	w, env := doJSON(t, fx.engine, http.MethodGet, "/api/products/p1/similar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := env.dataList(t)
	require.Len(t, list, 1)
	assert.Equal(t, "InBand", list[0]["name"])

	w, _ = doJSON(t, fx.engine, http.MethodGet, "/api/products/missing/similar", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeaturedEndpoint(t *testing.T) {
	fx := newCatalogFixture(t)
	fx.seedCategory("Electronics")
	fx.seedProduct("p1", "Headphones", 129.99, 42)

	w, env := doJSON(t, fx.engine, http.MethodGet, "/api/products/featured", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, env.dataList(t), 1)
}

func TestCreateProductEndpoint(t *testing.T) {
	fx := newCatalogFixture(t)
	fx.seedCategory("Electronics")

	w, env := doJSON(t, fx.engine, http.MethodPost, "/api/products", gin.H{
		"category_id":    testCategoryID,
		"name":           "Monitor",
		"price":          249.99,
		"stock_quantity": 7,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	data := env.dataMap(t)
	assert.Equal(t, "Monitor", data["name"])
	assert.Equal(t, "Electronics", data["category_name"])
	assert.Equal(t, true, data["is_active"])
}

func TestCreateProductEndpointValidation(t *testing.T) {
	fx := newCatalogFixture(t)
	fx.seedCategory("Electronics")

	// binding-level failures
	w, env := doJSON(t, fx.engine, http.MethodPost, "/api/products", gin.H{
		"category_id": "not-a-uuid",
		"name":        "Monitor",
		"price":       -5,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := env.errorMap(t)
	assert.Contains(t, errs, "category_id")
	assert.Contains(t, errs, "price")

	// pipeline-level failure: well-formed but unknown category
	w, env = doJSON(t, fx.engine, http.MethodPost, "/api/products", gin.H{
		"category_id": "119aa55f-aaaa-4e5e-8000-27635e441c9b",
		"name":        "Monitor",
		"price":       10,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.errorMap(t), "category")
}

func TestUpdateAndDeleteProductEndpoints(t *testing.T) {
	fx := newCatalogFixture(t)
	fx.seedCategory("Electronics")
	fx.seedProduct("p1", "Headphones", 129.99, 42)

	w, env := doJSON(t, fx.engine, http.MethodPut, "/api/products/p1", gin.H{
		"category_id":    testCategoryID,
		"name":           "Headphones v2",
		"price":          149.99,
		"stock_quantity": 10,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Headphones v2", env.dataMap(t)["name"])

	w, _ = doJSON(t, fx.engine, http.MethodDelete, "/api/products/p1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, fx.engine, http.MethodDelete, "/api/products/p1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListCategoriesEndpoint(t *testing.T) {
	fx := newCatalogFixture(t)
	fx.seedCategory("Electronics")

	w, env := doJSON(t, fx.engine, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := env.dataList(t)
	require.Len(t, list, 1)
	assert.Equal(t, "Electronics", list[0]["name"])

	w, _ = doJSON(t, fx.engine, http.MethodGet, "/api/categories/"+testCategoryID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, fx.engine, http.MethodGet, "/api/categories/other", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
