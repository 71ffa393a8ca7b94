package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/order"
)

// Common errors returned by the store implementations.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
)

type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*catalog.Product, error)

	// FindByIDForUpdate reads the product while holding an exclusive lock
	// for the remainder of the surrounding transaction. Outside a
	// transaction it behaves like FindByID.
	FindByIDForUpdate(ctx context.Context, id int64) (*catalog.Product, error)

	FindPaginated(ctx context.Context, q catalog.PageQuery) (*catalog.Page, error)

	// ListCategories returns the distinct non-empty categories, sorted.
	ListCategories(ctx context.Context) ([]string, error)

	// Save inserts the product when its ID is zero (assigning one) and
	// updates it otherwise. Created/updated timestamps are touched here.
	Save(ctx context.Context, p *catalog.Product) error
}

type OrderRepository interface {
	// Save persists the order with its items. Items are written once at
	// insert; later saves only update the header.
	Save(ctx context.Context, o *order.Order) error

	FindByID(ctx context.Context, id int64) (*order.Order, error)

	// FindByIDForUpdate reads the order while holding an exclusive lock on
	// its row for the remainder of the surrounding transaction. Checkout
	// re-reads through this so two transactions cannot both observe the
	// order pending: with a plain read under read committed, the second
	// transaction's status check could pass before the first commits and
	// the stock decrement would be applied twice. Outside a transaction it
	// behaves like FindByID.
	FindByIDForUpdate(ctx context.Context, id int64) (*order.Order, error)

	// FindByCustomer returns the customer's orders, newest first.
	FindByCustomer(ctx context.Context, customerID string) ([]*order.Order, error)

	// FindAll returns every order, newest first.
	FindAll(ctx context.Context) ([]*order.Order, error)
}

// Store groups the repositories and the transaction boundary.
type Store interface {
	Products() ProductRepository
	Orders() OrderRepository

	// WithinTx runs fn against a transactional view of the store. All
	// reads and writes made through the view commit or roll back as one
	// unit; the checkout validate-then-decrement sequence relies on this
	// being exclusive per affected product.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
