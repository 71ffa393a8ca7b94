package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/repository"
	"storefront/pkg/logger"
)

type Service struct {
	store repository.Store
	log   logger.Logger
}

func NewService(store repository.Store, log logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// ListProducts returns one catalog page. The query is normalized here so
// repositories only ever see clamped bounds and a whitelisted sort field.
func (s *Service) ListProducts(ctx context.Context, q catalog.PageQuery) (*catalog.Page, error) {
	return s.store.Products().FindPaginated(ctx, q.Normalize())
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	return s.store.Products().FindByID(ctx, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	return s.store.Products().ListCategories(ctx)
}

type CreateProductCommand struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Image       string
}

// CreateProduct validates and persists a new catalog entry.
func (s *Service) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*catalog.Product, error) {
	product := &catalog.Product{
		Name:        cmd.Name,
		Description: cmd.Description,
		Price:       cmd.Price,
		Stock:       cmd.Stock,
		Category:    cmd.Category,
		Image:       cmd.Image,
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Products().Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}

	s.log.Info("product created",
		logger.Int64("product_id", product.ID),
		logger.String("name", product.Name),
	)
	return product, nil
}

// UpdateProduct applies a partial update; only supplied fields change and
// the full entity is re-validated before anything is persisted.
func (s *Service) UpdateProduct(ctx context.Context, id int64, patch catalog.Patch) (*catalog.Product, error) {
	product, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Apply(patch)
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Products().Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}

	s.log.Info("product updated", logger.Int64("product_id", product.ID))
	return product, nil
}
