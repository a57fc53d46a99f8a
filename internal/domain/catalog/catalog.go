// Package catalog holds the fixed product catalog. The menu is defined at
// deploy time and never mutated at runtime, so there is no repository behind
// it; callers receive value copies.
package catalog

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a single menu entry.
type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Description string
}

// Catalog is an immutable product listing with lookup by id.
type Catalog struct {
	products []Product
	byID     map[string]Product
}

// New builds a Catalog from the given products.
func New(products []Product) *Catalog {
	byID := make(map[string]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &Catalog{products: products, byID: byID}
}

// Default returns the production menu. Prices are in CHF.
func Default() *Catalog {
	return New([]Product{
		{ID: "kottu", Name: "Kottu Rotti", Price: decimal.RequireFromString("12.00"), Description: "Chopped roti with chicken and vegetables"},
		{ID: "veggie-kottu", Name: "Veggie Kottu Rotti", Price: decimal.RequireFromString("10.00"), Description: "Vegetarian kottu"},
		{ID: "rolls", Name: "Rolls (2 Stk)", Price: decimal.RequireFromString("8.00")},
		{ID: "biryani", Name: "Chicken Biryani", Price: decimal.RequireFromString("15.00")},
		{ID: "mutton-curry", Name: "Mutton Curry", Price: decimal.RequireFromString("17.00")},
		{ID: "cola", Name: "Cola", Price: decimal.RequireFromString("3.50")},
	})
}

// List returns all products in menu order.
func (c *Catalog) List() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// GetByID returns the product with the given id or ErrNotFound.
func (c *Catalog) GetByID(id string) (Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// Names returns the product names tracked in reporting breakdowns.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.products))
	for i, p := range c.products {
		names[i] = p.Name
	}
	return names
}
