// Package catalog holds the immutable in-memory view of the product catalog,
// loaded once at startup and shared read-only across requests.
package catalog

import (
	"fmt"

	"github.com/yungbote/productintel-backend/internal/domain"
)

type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

// New builds a catalog from products in load order. The slice order is the
// insertion order used for deterministic tie-breaking in the matcher.
func New(products []domain.Product) (*Catalog, error) {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		if p.ProductID == "" {
			return nil, fmt.Errorf("catalog row %d: empty product_id", i)
		}
		if _, dup := byID[p.ProductID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product_id %q", p.ProductID)
		}
		byID[p.ProductID] = i
	}
	return &Catalog{products: products, byID: byID}, nil
}

func (c *Catalog) Get(productID string) (*domain.Product, bool) {
	i, ok := c.byID[productID]
	if !ok {
		return nil, false
	}
	return &c.products[i], true
}

func (c *Catalog) Has(productID string) bool {
	_, ok := c.byID[productID]
	return ok
}

// Products returns records in insertion order. Callers must not mutate.
func (c *Catalog) Products() []domain.Product {
	return c.products
}

func (c *Catalog) Len() int {
	return len(c.products)
}
