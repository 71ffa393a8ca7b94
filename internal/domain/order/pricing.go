package order

import "github.com/shopspring/decimal"

// PricingPolicy holds the constants the pricing engine applies. It is
// injected rather than hard-coded so alternate policies can be configured
// and tested.
type PricingPolicy struct {
	TaxRate          decimal.Decimal
	FreeShippingOver decimal.Decimal
	FlatShipping     decimal.Decimal
}

// DefaultPricing returns 16% tax, flat 9.99 shipping waived above 100.
func DefaultPricing() PricingPolicy {
	return PricingPolicy{
		TaxRate:          decimal.RequireFromString("0.16"),
		FreeShippingOver: decimal.RequireFromString("100"),
		FlatShipping:     decimal.RequireFromString("9.99"),
	}
}

// Totals is the result of pricing an order's items, every field fixed to
// two decimal places.
type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Price computes the order totals from the item subtotals. Rounding is
// decimal.Round (half away from zero) throughout.
func (p PricingPolicy) Price(items []Item) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Subtotal)
	}
	subtotal = subtotal.Round(2)

	shipping := p.FlatShipping.Round(2)
	if subtotal.GreaterThan(p.FreeShippingOver) {
		shipping = decimal.Zero.Round(2)
	}

	tax := subtotal.Mul(p.TaxRate).Round(2)

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal.Add(shipping).Add(tax).Round(2),
	}
}
