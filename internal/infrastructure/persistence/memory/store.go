package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/order"
	"storefront/internal/domain/repository"
)

// Store is an in-memory implementation of repository.Store used for
// development and tests. A single RWMutex serializes writers; WithinTx
// holds the write lock for the whole callback, which gives checkout the
// exclusive validate-then-decrement window it requires.
type Store struct {
	mu   sync.RWMutex
	core *core
}

type core struct {
	products      map[int64]*catalog.Product
	orders        map[int64]*order.Order
	nextProductID int64
	nextOrderID   int64
}

func NewStore() *Store {
	return &Store{
		core: &core{
			products:      make(map[int64]*catalog.Product),
			orders:        make(map[int64]*order.Order),
			nextProductID: 1,
			nextOrderID:   1,
		},
	}
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepo{store: s}
}

func (s *Store) Orders() repository.OrderRepository {
	return &orderRepo{store: s}
}

// WithinTx takes the write lock, snapshots the state and runs fn against
// an unlocked view. Any error restores the snapshot, so partial mutations
// never become visible.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.core.clone()
	if err := fn(&txStore{core: s.core}); err != nil {
		s.core.restore(snapshot)
		return err
	}
	return nil
}

// txStore is the view handed to WithinTx callbacks. The outer lock is
// already held, so it talks to the core directly.
type txStore struct {
	core *core
}

func (t *txStore) Products() repository.ProductRepository {
	return &txProductRepo{core: t.core}
}

func (t *txStore) Orders() repository.OrderRepository {
	return &txOrderRepo{core: t.core}
}

func (t *txStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

/* ---------- product repository ---------- */

type productRepo struct {
	store *Store
}

func (r *productRepo) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.core.findProduct(id)
}

func (r *productRepo) FindByIDForUpdate(ctx context.Context, id int64) (*catalog.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *productRepo) FindPaginated(ctx context.Context, q catalog.PageQuery) (*catalog.Page, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.core.findPaginated(q)
}

func (r *productRepo) ListCategories(ctx context.Context) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.core.listCategories()
}

func (r *productRepo) Save(ctx context.Context, p *catalog.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.core.saveProduct(p)
}

type txProductRepo struct {
	core *core
}

func (r *txProductRepo) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	return r.core.findProduct(id)
}

func (r *txProductRepo) FindByIDForUpdate(ctx context.Context, id int64) (*catalog.Product, error) {
	return r.core.findProduct(id)
}

func (r *txProductRepo) FindPaginated(ctx context.Context, q catalog.PageQuery) (*catalog.Page, error) {
	return r.core.findPaginated(q)
}

func (r *txProductRepo) ListCategories(ctx context.Context) ([]string, error) {
	return r.core.listCategories()
}

func (r *txProductRepo) Save(ctx context.Context, p *catalog.Product) error {
	return r.core.saveProduct(p)
}

/* ---------- order repository ---------- */

type orderRepo struct {
	store *Store
}

func (r *orderRepo) Save(ctx context.Context, o *order.Order) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.core.saveOrder(o)
}

func (r *orderRepo) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.core.findOrder(id)
}

func (r *orderRepo) FindByIDForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *orderRepo) FindByCustomer(ctx context.Context, customerID string) ([]*order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.core.listOrders(func(o *order.Order) bool {
		return o.CustomerID == customerID
	}), nil
}

func (r *orderRepo) FindAll(ctx context.Context) ([]*order.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.core.listOrders(nil), nil
}

type txOrderRepo struct {
	core *core
}

func (r *txOrderRepo) Save(ctx context.Context, o *order.Order) error {
	return r.core.saveOrder(o)
}

func (r *txOrderRepo) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	return r.core.findOrder(id)
}

func (r *txOrderRepo) FindByIDForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	return r.core.findOrder(id)
}

func (r *txOrderRepo) FindByCustomer(ctx context.Context, customerID string) ([]*order.Order, error) {
	return r.core.listOrders(func(o *order.Order) bool {
		return o.CustomerID == customerID
	}), nil
}

func (r *txOrderRepo) FindAll(ctx context.Context) ([]*order.Order, error) {
	return r.core.listOrders(nil), nil
}

/* ---------- core ---------- */

func (c *core) findProduct(id int64) (*catalog.Product, error) {
	p, ok := c.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (c *core) saveProduct(p *catalog.Product) error {
	now := time.Now().UTC()
	clone := *p

	if clone.ID == 0 {
		clone.ID = c.nextProductID
		c.nextProductID++
		clone.CreatedAt = now
	} else if existing, ok := c.products[clone.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
	}
	clone.UpdatedAt = now

	c.products[clone.ID] = &clone
	*p = clone
	return nil
}

func (c *core) findPaginated(q catalog.PageQuery) (*catalog.Page, error) {
	search := strings.ToLower(q.Search)

	matches := make([]*catalog.Product, 0, len(c.products))
	for _, p := range c.products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		matches = append(matches, p)
	}

	desc := q.Order == catalog.OrderDesc
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if desc {
			a, b = b, a
		}
		switch q.Sort {
		case catalog.SortByPrice:
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case catalog.SortByStock:
			if a.Stock != b.Stock {
				return a.Stock < b.Stock
			}
		case catalog.SortByCreatedAt:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		default:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		}
		return a.ID < b.ID
	})

	total := len(matches)
	start := q.Offset()
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	items := make([]*catalog.Product, 0, end-start)
	for _, p := range matches[start:end] {
		clone := *p
		items = append(items, &clone)
	}

	return &catalog.Page{
		Items: items,
		Total: total,
		Page:  q.Page,
		Limit: q.Limit,
		Pages: catalog.PageCount(total, q.Limit),
	}, nil
}

func (c *core) listCategories() ([]string, error) {
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range c.products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (c *core) findOrder(id int64) (*order.Order, error) {
	o, ok := c.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (c *core) saveOrder(o *order.Order) error {
	now := time.Now().UTC()
	clone := cloneOrder(o)

	if clone.ID == 0 {
		clone.ID = c.nextOrderID
		c.nextOrderID++
		clone.CreatedAt = now
	} else if existing, ok := c.orders[clone.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
	}
	clone.UpdatedAt = now

	c.orders[clone.ID] = clone
	*o = *cloneOrder(clone)
	return nil
}

// listOrders returns orders matching the filter (nil matches all), newest
// first with ids breaking ties.
func (c *core) listOrders(match func(*order.Order) bool) []*order.Order {
	result := make([]*order.Order, 0)
	for _, o := range c.orders {
		if match != nil && !match(o) {
			continue
		}
		result = append(result, cloneOrder(o))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result
}

func (c *core) clone() *core {
	snapshot := &core{
		products:      make(map[int64]*catalog.Product, len(c.products)),
		orders:        make(map[int64]*order.Order, len(c.orders)),
		nextProductID: c.nextProductID,
		nextOrderID:   c.nextOrderID,
	}
	for id, p := range c.products {
		clone := *p
		snapshot.products[id] = &clone
	}
	for id, o := range c.orders {
		snapshot.orders[id] = cloneOrder(o)
	}
	return snapshot
}

func (c *core) restore(snapshot *core) {
	c.products = snapshot.products
	c.orders = snapshot.orders
	c.nextProductID = snapshot.nextProductID
	c.nextOrderID = snapshot.nextOrderID
}

func cloneOrder(o *order.Order) *order.Order {
	clone := *o
	clone.Items = make([]order.Item, len(o.Items))
	copy(clone.Items, o.Items)
	return &clone
}
