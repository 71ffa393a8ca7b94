package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"storefront/internal/domain/catalog"
	"storefront/internal/domain/repository"
)

// sortColumns whitelists the API sort fields against real columns.
var sortColumns = map[string]string{
	catalog.SortByName:      "name",
	catalog.SortByPrice:     "price",
	catalog.SortByStock:     "stock",
	catalog.SortByCreatedAt: "created_at",
}

type ProductRepository struct {
	db querier
}

const productColumns = `id, name, description, price, stock, category, image, created_at, updated_at`

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

func (r *ProductRepository) FindByIDForUpdate(ctx context.Context, id int64) (*catalog.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

func (r *ProductRepository) scanOne(ctx context.Context, query string, id int64) (*catalog.Product, error) {
	var p catalog.Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Stock,
		&p.Category,
		&p.Image,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepository) FindPaginated(ctx context.Context, q catalog.PageQuery) (*catalog.Page, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 2)

	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", n, n))
	}
	if q.Category != "" {
		args = append(args, q.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := `SELECT count(*) FROM products` + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	column, ok := sortColumns[q.Sort]
	if !ok {
		column = "name"
	}
	direction := "ASC"
	if q.Order == catalog.OrderDesc {
		direction = "DESC"
	}

	args = append(args, q.Limit, q.Offset())
	query := fmt.Sprintf(
		`SELECT `+productColumns+` FROM products%s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		whereClause, column, direction, len(args)-1, len(args),
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	items := make([]*catalog.Product, 0, q.Limit)
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.Stock,
			&p.Category,
			&p.Image,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return &catalog.Page{
		Items: items,
		Total: total,
		Page:  q.Page,
		Limit: q.Limit,
		Pages: catalog.PageCount(total, q.Limit),
	}, nil
}

func (r *ProductRepository) ListCategories(ctx context.Context) ([]string, error) {
	const query = `
		SELECT DISTINCT category FROM products
		WHERE category <> ''
		ORDER BY category ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *ProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	if p.ID == 0 {
		const query = `
			INSERT INTO products (name, description, price, stock, category, image, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			RETURNING id, created_at, updated_at`

		err := r.db.QueryRow(ctx, query,
			p.Name,
			p.Description,
			p.Price,
			p.Stock,
			p.Category,
			p.Image,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		return nil
	}

	const query = `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock = $5, category = $6, image = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		p.Stock,
		p.Category,
		p.Image,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}
