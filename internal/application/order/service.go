package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront/internal/application/identity"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/order"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/validation"
	"storefront/pkg/logger"
)

// ErrForbidden is returned when the caller is neither the order's owner
// nor an admin.
var ErrForbidden = errors.New("not allowed to access this order")

// Publisher sends an encoded order event to the message broker.
type Publisher interface {
	PublishOrder(ctx context.Context, payload []byte) error
}

type Service struct {
	store     repository.Store
	pricing   order.PricingPolicy
	publisher Publisher
	log       logger.Logger
}

// NewService wires the order workflows. publisher may be nil, in which
// case completed orders are not announced anywhere.
func NewService(store repository.Store, pricing order.PricingPolicy, publisher Publisher, log logger.Logger) *Service {
	return &Service{store: store, pricing: pricing, publisher: publisher, log: log}
}

type ItemRequest struct {
	ProductID int64
	Quantity  int
}

type CreateOrderCommand struct {
	CustomerID string
	Items      []ItemRequest
	ShipTo     order.ShippingAddress
}

// CreateOrder validates the requested items against the current catalog,
// snapshots prices, computes totals and persists a pending order. Item
// errors accumulate per index; any error fails the whole operation and
// nothing is persisted. Stock is not touched here: the creation-time check
// is advisory and reserves nothing.
func (s *Service) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if len(cmd.Items) == 0 {
		return nil, validation.Errors{"items": "the order must contain at least one item"}
	}

	errs := validation.Errors{}
	items := make([]order.Item, 0, len(cmd.Items))

	for i, req := range cmd.Items {
		if req.ProductID == 0 {
			errs.Add(fmt.Sprintf("items[%d].productId", i), "product id is required")
			continue
		}

		product, err := s.store.Products().FindByID(ctx, req.ProductID)
		if errors.Is(err, repository.ErrProductNotFound) {
			errs.Add(fmt.Sprintf("items[%d].productId", i), fmt.Sprintf("product with id %d not found", req.ProductID))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load product %d: %w", req.ProductID, err)
		}

		if req.Quantity <= 0 {
			errs.Add(fmt.Sprintf("items[%d].quantity", i), "quantity must be greater than zero")
			continue
		}

		if req.Quantity > product.Stock {
			errs.Add(fmt.Sprintf("items[%d].quantity", i),
				fmt.Sprintf("insufficient stock for '%s', available: %d", product.Name, product.Stock))
			continue
		}

		item, err := order.NewItem(product, req.Quantity)
		if err != nil {
			errs.Add(fmt.Sprintf("items[%d].quantity", i), err.Error())
			continue
		}
		items = append(items, item)
	}

	if !errs.Empty() {
		return nil, errs
	}

	o, err := order.New(cmd.CustomerID, cmd.ShipTo)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		o.AddItem(item)
	}
	o.ApplyTotals(s.pricing.Price(o.Items))

	if err := s.store.Orders().Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	s.log.Info("order created",
		logger.Int64("order_id", o.ID),
		logger.String("customer_id", o.CustomerID),
		logger.String("total", o.Total.StringFixed(2)),
	)
	return o, nil
}

// GetOrder loads an order and applies the ownership gate.
func (s *Service) GetOrder(ctx context.Context, orderID int64, caller identity.Identity) (*order.Order, error) {
	o, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(o.CustomerID) {
		return nil, ErrForbidden
	}
	return o, nil
}

// ListOrders returns all orders for admins and only the caller's own
// otherwise, newest first.
func (s *Service) ListOrders(ctx context.Context, caller identity.Identity) ([]*order.Order, error) {
	if caller.IsAdmin {
		return s.store.Orders().FindAll(ctx)
	}
	return s.store.Orders().FindByCustomer(ctx, caller.CustomerID)
}

// Checkout transitions a pending order to completed, re-validating stock
// and decrementing it in a single transaction. On any validation failure
// nothing is mutated and the order stays pending.
func (s *Service) Checkout(ctx context.Context, orderID int64, caller identity.Identity) (*order.Order, error) {
	o, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(o.CustomerID) {
		return nil, ErrForbidden
	}

	var completed *order.Order
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		// Re-read inside the transaction with the order row locked: status
		// or stock may have moved since the gate check above, and two
		// transactions must never both see the order pending.
		cur, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if !cur.IsPending() {
			return validation.Errors{
				"status": fmt.Sprintf("the order is not pending, current status: %s", cur.Status),
			}
		}

		errs := validation.Errors{}

		type decrement struct {
			product  *catalog.Product
			quantity int
		}
		decrements := make([]decrement, 0, len(cur.Items))

		for _, item := range cur.Items {
			product, err := tx.Products().FindByIDForUpdate(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("lock product %d: %w", item.ProductID, err)
			}
			if item.Quantity > product.Stock {
				errs.Add(fmt.Sprintf("product_%d", product.ID),
					fmt.Sprintf("insufficient stock for '%s'", product.Name))
				continue
			}
			decrements = append(decrements, decrement{product: product, quantity: item.Quantity})
		}

		if !errs.Empty() {
			return errs
		}

		for _, d := range decrements {
			d.product.Stock -= d.quantity
			if err := tx.Products().Save(ctx, d.product); err != nil {
				return fmt.Errorf("update stock for product %d: %w", d.product.ID, err)
			}
		}

		cur.Complete()
		if err := tx.Orders().Save(ctx, cur); err != nil {
			return fmt.Errorf("save order: %w", err)
		}

		completed = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("checkout completed",
		logger.Int64("order_id", completed.ID),
		logger.String("customer_id", completed.CustomerID),
	)
	s.publishCompleted(ctx, completed)
	return completed, nil
}

// CompletedEvent is the payload announced after a successful checkout.
type CompletedEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	OrderID    int64     `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	Total      string    `json:"total"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publishCompleted announces the checkout on the broker. This runs after
// the transaction has committed and is best-effort: a broker failure is
// logged, never surfaced to the caller.
func (s *Service) publishCompleted(ctx context.Context, o *order.Order) {
	if s.publisher == nil {
		return
	}

	evt := CompletedEvent{
		EventID:    uuid.NewString(),
		Type:       "order.completed",
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Total:      o.Total.StringFixed(2),
		OccurredAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		s.log.Error("encode order event", logger.Error(err), logger.Int64("order_id", o.ID))
		return
	}

	if err := s.publisher.PublishOrder(ctx, payload); err != nil {
		s.log.Warn("publish order event", logger.Error(err), logger.Int64("order_id", o.ID))
	}
}
