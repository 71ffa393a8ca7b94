package order

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain/catalog"
)

// Item is one line within an order. Product name and unit price are
// snapshots taken at order creation, so later catalog changes never
// retroactively alter a placed order.
type Item struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// NewItem snapshots the product's current price into a line item.
func NewItem(product *catalog.Product, quantity int) (Item, error) {
	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}

	unitPrice := product.Price.Round(2)
	return Item{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Subtotal:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}, nil
}
