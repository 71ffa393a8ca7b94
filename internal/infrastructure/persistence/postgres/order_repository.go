package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"storefront/internal/domain/order"
	"storefront/internal/domain/repository"
)

type OrderRepository struct {
	db querier
}

const orderColumns = `id, customer_id, subtotal, tax, shipping, total, status,
	shipping_name, shipping_address, shipping_city, shipping_postal_code, shipping_phone,
	created_at, updated_at`

func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	if o.ID == 0 {
		return r.insert(ctx, o)
	}
	return r.update(ctx, o)
}

func (r *OrderRepository) insert(ctx context.Context, o *order.Order) error {
	const query = `
		INSERT INTO orders (customer_id, subtotal, tax, shipping, total, status,
			shipping_name, shipping_address, shipping_city, shipping_postal_code, shipping_phone,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		o.CustomerID,
		o.Subtotal,
		o.Tax,
		o.Shipping,
		o.Total,
		string(o.Status),
		o.ShipTo.FullName,
		o.ShipTo.Address,
		o.ShipTo.City,
		o.ShipTo.PostalCode,
		o.ShipTo.Phone,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	// Items are written once at creation and never change afterwards.
	const itemQuery = `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, item := range o.Items {
		_, err := r.db.Exec(ctx, itemQuery,
			o.ID,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.UnitPrice,
			item.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *OrderRepository) update(ctx context.Context, o *order.Order) error {
	const query = `
		UPDATE orders
		SET subtotal = $2, tax = $3, shipping = $4, total = $5, status = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		o.ID,
		o.Subtotal,
		o.Tax,
		o.Shipping,
		o.Total,
		string(o.Status),
	).Scan(&o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, query, id)
}

func (r *OrderRepository) findOne(ctx context.Context, query string, id int64) (*order.Order, error) {
	o, err := r.scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, []*order.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepository) FindByCustomer(ctx context.Context, customerID string) ([]*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC`
	return r.queryOrders(ctx, query, customerID)
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`
	return r.queryOrders(ctx, query)
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*order.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*order.Order, 0)
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	var status string
	err := row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.Subtotal,
		&o.Tax,
		&o.Shipping,
		&o.Total,
		&status,
		&o.ShipTo.FullName,
		&o.ShipTo.Address,
		&o.ShipTo.City,
		&o.ShipTo.PostalCode,
		&o.ShipTo.Phone,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	o.Status = order.Status(status)
	return &o, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(orders))
	byID := make(map[int64]*order.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	const query = `
		SELECT order_id, product_id, product_name, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int64
		var item order.Item
		if err := rows.Scan(
			&orderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
		); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}
