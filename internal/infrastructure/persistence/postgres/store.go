package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain/repository"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same repository code serves both the pooled and the transactional path.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements repository.Store on postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Products() repository.ProductRepository {
	return &ProductRepository{db: s.pool}
}

func (s *Store) Orders() repository.OrderRepository {
	return &OrderRepository{db: s.pool}
}

// WithinTx runs fn inside one pgx transaction. Row locks taken via
// FindByIDForUpdate are held until commit or rollback, which serializes
// concurrent checkouts touching the same products.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&txStore{tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			return fmt.Errorf("rollback tx: %v (original: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type txStore struct {
	tx pgx.Tx
}

func (t *txStore) Products() repository.ProductRepository {
	return &ProductRepository{db: t.tx}
}

func (t *txStore) Orders() repository.OrderRepository {
	return &OrderRepository{db: t.tx}
}

func (t *txStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}
