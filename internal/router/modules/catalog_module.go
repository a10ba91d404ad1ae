package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andriansp/gocommerce/internal/container"
	handlers "github.com/andriansp/gocommerce/internal/interface/http"
	"github.com/andriansp/gocommerce/internal/interface/middleware"
	"github.com/andriansp/gocommerce/pkg/helpers"
)

// CatalogModule wires catalog routes. Reads are public, product
// writes sit behind auth so only logged-in staff tooling can use them.
type CatalogModule struct {
	Catalog *handlers.CatalogHandler
	Tokens  *helpers.TokenManager
}

func NewCatalogModule(catalog *handlers.CatalogHandler, tokens *helpers.TokenManager) *CatalogModule {
	return &CatalogModule{Catalog: catalog, Tokens: tokens}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/categories", readLimiter, m.Catalog.ListCategories)
	rg.GET("/categories/:id", readLimiter, m.Catalog.GetCategory)

	rg.GET("/products", readLimiter, m.Catalog.ListProducts)
	rg.GET("/products/by_category", readLimiter, m.Catalog.ByCategory)
	rg.GET("/products/featured", readLimiter, m.Catalog.Featured)
	rg.GET("/products/search_suggestions", readLimiter, m.Catalog.SearchSuggestions)
	rg.GET("/products/search", readLimiter, m.Catalog.Search)
	rg.GET("/products/:id", readLimiter, m.Catalog.GetProduct)
	rg.GET("/products/:id/similar", readLimiter, m.Catalog.Similar)

	auth := rg.Group("/products")
	auth.Use(middleware.Auth(container.GetRedis(), m.Tokens))
	{
		auth.POST("", m.Catalog.CreateProduct)
		auth.PUT("/:id", m.Catalog.UpdateProduct)
		auth.DELETE("/:id", m.Catalog.DeleteProduct)
	}
}
