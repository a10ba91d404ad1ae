package repository

import (
	"context"

	"github.com/andriansp/gocommerce/internal/domain/entity"
)

// CategoryRepository is the read-only category surface.
type CategoryRepository interface {
	List(ctx context.Context) ([]entity.Category, error)
	GetByID(ctx context.Context, id string) (*entity.Category, error)
}

// ProductFilter narrows List. Zero values mean "no filter"; Ordering is one
// of price, created_at, name, optionally prefixed with '-' for descending,
// and defaults to -created_at.
type ProductFilter struct {
	CategoryID string
	Search     string
	Ordering   string
}

type ProductRepository interface {
	// List returns active products only.
	List(ctx context.Context, f ProductFilter) ([]entity.Product, error)
	// GetActiveByID returns ErrNotFound for inactive products; the storefront
	// never serves a deactivated product by id.
	GetActiveByID(ctx context.Context, id string) (*entity.Product, error)

	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	Delete(ctx context.Context, id string) error

	// Related: same category, active, excluding excludeID, unranked.
	Related(ctx context.Context, categoryID, excludeID string, limit int) ([]entity.Product, error)
	// SimilarByPrice: same category, active, priceMin <= price <= priceMax,
	// excluding excludeID.
	SimilarByPrice(ctx context.Context, categoryID, excludeID string, priceMin, priceMax float64, limit int) ([]entity.Product, error)
	Featured(ctx context.Context, limit int) ([]entity.Product, error)
	// NameSuggestions: case-insensitive substring match on name, active only.
	NameSuggestions(ctx context.Context, query string, limit int) ([]string, error)
}
