package entity

import (
	"fmt"
	"time"
)

// Category is an independent aggregate referenced by products.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product references a Category by required foreign key. Price is stored as
// NUMERIC(10,2) in Postgres; the float64 here mirrors how the catalog
// computes its percentage price bands.
type Product struct {
	ID            string
	CategoryID    string
	CategoryName  string
	Name          string
	Description   string
	Price         float64
	StockQuantity int
	IsActive      bool
	ImageURL      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Product) InStock() bool {
	return p.StockQuantity > 0
}

// StockStatus returns the human-readable stock label shown on detail pages.
func (p *Product) StockStatus() string {
	switch {
	case p.StockQuantity == 0:
		return "Out of Stock"
	case p.StockQuantity <= 5:
		return fmt.Sprintf("Only %d left", p.StockQuantity)
	case p.StockQuantity <= 20:
		return "Limited Stock"
	default:
		return "In Stock"
	}
}
