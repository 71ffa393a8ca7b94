package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/validation"
)

// Product is a catalog entry. IDs are assigned by the store on first save;
// stock is only ever decremented through the checkout transaction.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Image       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	Category    *string
	Image       *string
}

// Validate checks the product's own invariants and returns a field-keyed
// error map, or nil when the product is valid.
func (p *Product) Validate() error {
	errs := validation.Errors{}

	if strings.TrimSpace(p.Name) == "" {
		errs.Add("name", "name is required")
	}
	if !p.Price.IsPositive() {
		errs.Add("price", "price must be greater than zero")
	}
	if p.Stock < 0 {
		errs.Add("stock", "stock cannot be negative")
	}

	if errs.Empty() {
		return nil
	}
	return errs
}

// Apply overwrites the fields the patch supplies. Validation runs
// separately so that a bad patch never half-applies silently.
func (p *Product) Apply(patch Patch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
}
