package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/validation"
)

type Status string

// Processing and cancelled are part of the stored vocabulary but no
// workflow transitions into them; the only implemented transition is
// pending -> completed via checkout.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ShippingAddress holds the optional delivery fields captured at creation.
type ShippingAddress struct {
	FullName   string
	Address    string
	City       string
	PostalCode string
	Phone      string
}

// Order is one purchase: a header with computed money fields plus the line
// items it owns. Totals are only ever written through ApplyTotals so they
// stay consistent with the pricing policy.
type Order struct {
	ID         int64
	CustomerID string
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
	Shipping   decimal.Decimal
	Total      decimal.Decimal
	Status     Status
	ShipTo     ShippingAddress
	Items      []Item
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// New builds a pending order. The customer id is the only entity-level
// requirement; shipping fields are optional.
func New(customerID string, shipTo ShippingAddress) (*Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, validation.Errors{"customerId": "customer id is required"}
	}

	return &Order{
		CustomerID: customerID,
		Status:     StatusPending,
		ShipTo:     shipTo,
		Subtotal:   decimal.Zero,
		Tax:        decimal.Zero,
		Shipping:   decimal.Zero,
		Total:      decimal.Zero,
	}, nil
}

func (o *Order) AddItem(item Item) {
	o.Items = append(o.Items, item)
}

// ApplyTotals stamps the computed money fields onto the header.
func (o *Order) ApplyTotals(t Totals) {
	o.Subtotal = t.Subtotal
	o.Shipping = t.Shipping
	o.Tax = t.Tax
	o.Total = t.Total
}

func (o *Order) IsPending() bool {
	return o.Status == StatusPending
}

// Complete marks the order checked out. The caller is responsible for the
// pending-status guard and for committing the stock decrement in the same
// unit of work.
func (o *Order) Complete() {
	o.Status = StatusCompleted
}
