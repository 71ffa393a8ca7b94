package order_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/application/identity"
	app "storefront/internal/application/order"
	"storefront/internal/domain/catalog"
	domain "storefront/internal/domain/order"
	"storefront/internal/domain/repository"
	"storefront/internal/domain/validation"
	"storefront/internal/infrastructure/persistence/memory"
	"storefront/pkg/logger"
)

// MockPublisher mocks the Publisher interface.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrder(ctx context.Context, payload []byte) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func setupService(t *testing.T) (*app.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := app.NewService(store, domain.DefaultPricing(), nil, logger.NewNop())
	return svc, store
}

func seedProduct(t *testing.T, store *memory.Store, name, price string, stock int) *catalog.Product {
	t.Helper()
	p := &catalog.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	require.NoError(t, store.Products().Save(context.Background(), p))
	return p
}

func productStock(t *testing.T, store *memory.Store, id int64) int {
	t.Helper()
	p, err := store.Products().FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	svc, store := setupService(t)

	_, err := svc.CreateOrder(context.Background(), app.CreateOrderCommand{
		CustomerID: "customer-1",
	})
	require.Error(t, err)

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "items")

	orders, err := store.Orders().FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrder_AccumulatesItemErrors(t *testing.T) {
	svc, store := setupService(t)
	p := seedProduct(t, store, "Headphones", "149.99", 5)

	_, err := svc.CreateOrder(context.Background(), app.CreateOrderCommand{
		CustomerID: "customer-1",
		Items: []app.ItemRequest{
			{ProductID: 999, Quantity: 1},        // unknown product
			{ProductID: p.ID, Quantity: 0},       // non-positive quantity
			{ProductID: p.ID, Quantity: 10},      // more than stock
			{ProductID: 0, Quantity: 1},          // missing product id
		},
	})
	require.Error(t, err)

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 4)
	assert.Contains(t, verrs["items[0].productId"], "999")
	assert.Contains(t, verrs["items[1].quantity"], "greater than zero")
	assert.Equal(t, "insufficient stock for 'Headphones', available: 5", verrs["items[2].quantity"])
	assert.Contains(t, verrs, "items[3].productId")

	// nothing persisted, stock untouched
	orders, err := store.Orders().FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Equal(t, 5, productStock(t, store, p.ID))
}

func TestCreateOrder_Success(t *testing.T) {
	svc, store := setupService(t)
	p1 := seedProduct(t, store, "Headphones", "100.00", 5)
	p2 := seedProduct(t, store, "Speaker", "50.00", 5)

	created, err := svc.CreateOrder(context.Background(), app.CreateOrderCommand{
		CustomerID: "customer-1",
		Items: []app.ItemRequest{
			{ProductID: p1.ID, Quantity: 1},
			{ProductID: p2.ID, Quantity: 2},
		},
		ShipTo: domain.ShippingAddress{FullName: "Jane Doe", City: "Valencia"},
	})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, "200.00", created.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", created.Shipping.StringFixed(2))
	assert.Equal(t, "32.00", created.Tax.StringFixed(2))
	assert.Equal(t, "232.00", created.Total.StringFixed(2))
	assert.Equal(t, "Jane Doe", created.ShipTo.FullName)
	require.Len(t, created.Items, 2)
	assert.Equal(t, "Headphones", created.Items[0].ProductName)

	// creation does not reserve stock
	assert.Equal(t, 5, productStock(t, store, p1.ID))
	assert.Equal(t, 5, productStock(t, store, p2.ID))
}

func TestCreateOrder_PriceSnapshotIsStable(t *testing.T) {
	svc, store := setupService(t)
	p := seedProduct(t, store, "Headphones", "149.99", 10)

	created, err := svc.CreateOrder(context.Background(), app.CreateOrderCommand{
		CustomerID: "customer-1",
		Items:      []app.ItemRequest{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	// raise the catalog price after the order was placed
	p.Price = decimal.RequireFromString("999.99")
	require.NoError(t, store.Products().Save(context.Background(), p))

	reloaded, err := store.Orders().FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "149.99", reloaded.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "299.98", reloaded.Items[0].Subtotal.StringFixed(2))
}

func TestCreateOrder_BlankCustomer(t *testing.T) {
	svc, store := setupService(t)
	p := seedProduct(t, store, "Headphones", "10.00", 5)

	_, err := svc.CreateOrder(context.Background(), app.CreateOrderCommand{
		CustomerID: "  ",
		Items:      []app.ItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	require.Error(t, err)

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "customerId")
}

func createOrder(t *testing.T, svc *app.Service, customerID string, productID int64, quantity int) *domain.Order {
	t.Helper()
	created, err := svc.CreateOrder(context.Background(), app.CreateOrderCommand{
		CustomerID: customerID,
		Items:      []app.ItemRequest{{ProductID: productID, Quantity: quantity}},
	})
	require.NoError(t, err)
	return created
}

func TestCheckout_Success(t *testing.T) {
	svc, store := setupService(t)
	p := seedProduct(t, store, "Headphones", "50.00", 10)
	created := createOrder(t, svc, "customer-1", p.ID, 3)

	caller := identity.Identity{CustomerID: "customer-1"}
	completed, err := svc.Checkout(context.Background(), created.ID, caller)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, completed.Status)
	assert.Equal(t, 7, productStock(t, store, p.ID))
}

func TestCheckout_AlreadyCompleted(t *testing.T) {
	svc, store := setupService(t)
	p := seedProduct(t, store, "Headphones", "50.00", 10)
	created := createOrder(t, svc, "customer-1", p.ID, 3)

	caller := identity.Identity{CustomerID: "customer-1"}
	_, err := svc.Checkout(context.Background(), created.ID, caller)
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), created.ID, caller)
	require.Error(t, err)

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs["status"], "completed")

	// stock decremented exactly once
	assert.Equal(t, 7, productStock(t, store, p.ID))
}

func TestCheckout_InsufficientStock(t *testing.T) {
	svc, store := setupService(t)
	p := seedProduct(t, store, "Headphones", "50.00", 5)
	created := createOrder(t, svc, "customer-1", p.ID, 5)

	// another customer drains the stock between creation and checkout
	other := createOrder(t, svc, "customer-2", p.ID, 3)
	_, err := svc.Checkout(context.Background(), other.ID, identity.Identity{CustomerID: "customer-2"})
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), created.ID, identity.Identity{CustomerID: "customer-1"})
	require.Error(t, err)

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "insufficient stock for 'Headphones'", verrs["product_1"])

	// order stays pending, stock unchanged by the failed attempt
	reloaded, err := store.Orders().FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, reloaded.Status)
	assert.Equal(t, 2, productStock(t, store, p.ID))
}

func TestCheckout_ConcurrentRace(t *testing.T) {
	svc, store := setupService(t)
	p := seedProduct(t, store, "Headphones", "50.00", 5)

	first := createOrder(t, svc, "customer-1", p.ID, 3)
	second := createOrder(t, svc, "customer-2", p.ID, 3)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, tc := range []struct {
		orderID int64
		caller  identity.Identity
	}{
		{first.ID, identity.Identity{CustomerID: "customer-1"}},
		{second.ID, identity.Identity{CustomerID: "customer-2"}},
	} {
		wg.Add(1)
		go func(i int, orderID int64, caller identity.Identity) {
			defer wg.Done()
			_, err := svc.Checkout(context.Background(), orderID, caller)
			results[i] = err
		}(i, tc.orderID, tc.caller)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs, "product_1")
		}
	}

	assert.Equal(t, 1, successes, "exactly one checkout can win the remaining stock")
	assert.Equal(t, 2, productStock(t, store, p.ID))
}

func TestCheckout_ConcurrentSameOrder(t *testing.T) {
	svc, store := setupService(t)
	p := seedProduct(t, store, "Headphones", "50.00", 10)
	created := createOrder(t, svc, "customer-1", p.ID, 3)

	caller := identity.Identity{CustomerID: "customer-1"}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Checkout(context.Background(), created.ID, caller)
			results[i] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs["status"], "completed")
		}
	}

	assert.Equal(t, 1, successes, "only one checkout of an order can complete it")
	// stock decremented exactly once
	assert.Equal(t, 7, productStock(t, store, p.ID))
}

func TestGetOrder_OwnershipGate(t *testing.T) {
	svc, store := setupService(t)
	p := seedProduct(t, store, "Headphones", "50.00", 10)
	created := createOrder(t, svc, "customer-b", p.ID, 1)

	_, err := svc.GetOrder(context.Background(), created.ID, identity.Identity{CustomerID: "customer-a"})
	assert.ErrorIs(t, err, app.ErrForbidden)

	got, err := svc.GetOrder(context.Background(), created.ID, identity.Identity{CustomerID: "customer-b"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	got, err = svc.GetOrder(context.Background(), created.ID, identity.Identity{CustomerID: "someone-else", IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetOrder(context.Background(), 999, identity.Identity{CustomerID: "customer-b"})
	assert.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestCheckout_OwnershipGate(t *testing.T) {
	svc, store := setupService(t)
	p := seedProduct(t, store, "Headphones", "50.00", 10)
	created := createOrder(t, svc, "customer-b", p.ID, 1)

	_, err := svc.Checkout(context.Background(), created.ID, identity.Identity{CustomerID: "customer-a"})
	assert.ErrorIs(t, err, app.ErrForbidden)
	assert.Equal(t, 10, productStock(t, store, p.ID))
}

func TestListOrders(t *testing.T) {
	svc, store := setupService(t)
	p := seedProduct(t, store, "Headphones", "50.00", 100)

	firstA := createOrder(t, svc, "customer-a", p.ID, 1)
	forB := createOrder(t, svc, "customer-b", p.ID, 1)
	secondA := createOrder(t, svc, "customer-a", p.ID, 2)

	own, err := svc.ListOrders(context.Background(), identity.Identity{CustomerID: "customer-a"})
	require.NoError(t, err)
	require.Len(t, own, 2)
	// newest first
	assert.Equal(t, secondA.ID, own[0].ID)
	assert.Equal(t, firstA.ID, own[1].ID)

	all, err := svc.ListOrders(context.Background(), identity.Identity{CustomerID: "admin", IsAdmin: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, forB.ID, all[1].ID)
}

func TestCheckout_PublishesCompletedEvent(t *testing.T) {
	store := memory.NewStore()
	publisher := new(MockPublisher)
	svc := app.NewService(store, domain.DefaultPricing(), publisher, logger.NewNop())

	p := seedProduct(t, store, "Headphones", "50.00", 10)
	created := createOrder(t, svc, "customer-1", p.ID, 2)

	publisher.On("PublishOrder", mock.Anything, mock.MatchedBy(func(payload []byte) bool {
		var evt app.CompletedEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return false
		}
		return evt.Type == "order.completed" && evt.OrderID == created.ID && evt.Total == "125.99"
	})).Return(nil).Once()

	_, err := svc.Checkout(context.Background(), created.ID, identity.Identity{CustomerID: "customer-1"})
	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestCheckout_PublishFailureDoesNotFailCheckout(t *testing.T) {
	store := memory.NewStore()
	publisher := new(MockPublisher)
	svc := app.NewService(store, domain.DefaultPricing(), publisher, logger.NewNop())

	p := seedProduct(t, store, "Headphones", "50.00", 10)
	created := createOrder(t, svc, "customer-1", p.ID, 2)

	publisher.On("PublishOrder", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	completed, err := svc.Checkout(context.Background(), created.ID, identity.Identity{CustomerID: "customer-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	publisher.AssertExpectations(t)
}
