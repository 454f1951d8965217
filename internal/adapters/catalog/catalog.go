// Package catalog loads the product catalog from CSV and exports fuel
// timelines as CSV.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/okian/fuelplan/internal/domain/model"
)

// ErrInvalidProduct reports a catalog row that cannot be used.
var ErrInvalidProduct = errors.New("invalid product")

// Catalog is a read-only, in-memory product list.
type Catalog struct {
	products []model.Product
}

// New wraps an already loaded product list.
func New(products []model.Product) *Catalog {
	cp := make([]model.Product, len(products))
	copy(cp, products)
	return &Catalog{products: cp}
}

// LoadFile reads a catalog CSV from path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	products, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return New(products), nil
}

// Parse decodes products from CSV. The header must name the product
// columns; flavors and dietary flags are pipe-separated.
func Parse(r io.Reader) ([]model.Product, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("create CSV decoder: %w", err)
	}

	var products []model.Product
	if err := dec.Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	seen := make(map[string]struct{}, len(products))
	for i := range products {
		p := &products[i]
		p.SKU = strings.TrimSpace(p.SKU)
		p.Brand = strings.TrimSpace(p.Brand)
		if err := validate(*p); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if _, dup := seen[p.SKU]; dup {
			return nil, fmt.Errorf("row %d: %w: duplicate sku %q", i+2, ErrInvalidProduct, p.SKU)
		}
		seen[p.SKU] = struct{}{}
	}
	return products, nil
}

func validate(p model.Product) error {
	switch {
	case p.SKU == "":
		return fmt.Errorf("%w: empty sku", ErrInvalidProduct)
	case !p.Category.Valid():
		return fmt.Errorf("%w: %s has unknown category %q", ErrInvalidProduct, p.SKU, p.Category)
	case p.CarbsPerServing < 0, p.SodiumPerServing < 0, p.CaffeinePerServing < 0:
		return fmt.Errorf("%w: %s has negative nutrition", ErrInvalidProduct, p.SKU)
	case p.Price < 0, p.WeightGrams < 0:
		return fmt.Errorf("%w: %s has negative price or weight", ErrInvalidProduct, p.SKU)
	}
	return nil
}

// Products returns a copy of the catalog.
func (c *Catalog) Products(_ context.Context) ([]model.Product, error) {
	cp := make([]model.Product, len(c.products))
	copy(cp, c.products)
	return cp, nil
}

// Len returns the number of products.
func (c *Catalog) Len() int { return len(c.products) }
