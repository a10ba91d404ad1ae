package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andriansp/gocommerce/internal/domain/entity"
	"github.com/andriansp/gocommerce/internal/domain/repository"
)

const productSelect = `
	SELECT p.id, p.category_id, c.name, p.name, p.description, p.price,
		p.stock_quantity, p.is_active, p.image_url, p.created_at, p.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id`

// orderColumns whitelists the sortable columns exposed by the list endpoint.
var orderColumns = map[string]string{
	"price":      "p.price",
	"created_at": "p.created_at",
	"name":       "p.name",
}

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	p := &entity.Product{}
	if err := row.Scan(&p.ID, &p.CategoryID, &p.CategoryName, &p.Name,
		&p.Description, &p.Price, &p.StockQuantity, &p.IsActive, &p.ImageURL,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// escapeLike neutralizes LIKE metacharacters so user input matches
// literally inside an ILIKE '%...%' pattern.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

func (r *ProductRepository) collect(ctx context.Context, query string, args ...any) ([]entity.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Product, 0, 16)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func orderClause(ordering string) string {
	dir := "ASC"
	if strings.HasPrefix(ordering, "-") {
		dir = "DESC"
		ordering = ordering[1:]
	}
	col, ok := orderColumns[ordering]
	if !ok {
		return "p.created_at DESC"
	}
	return col + " " + dir
}

func (r *ProductRepository) List(ctx context.Context, f repository.ProductFilter) ([]entity.Product, error) {
	var sb strings.Builder
	sb.WriteString(productSelect)
	sb.WriteString(" WHERE p.is_active")

	args := make([]any, 0, 2)
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		fmt.Fprintf(&sb, " AND p.category_id = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, escapeLike(f.Search))
		n := len(args)
		fmt.Fprintf(&sb, " AND (p.name ILIKE '%%' || $%d || '%%' OR p.description ILIKE '%%' || $%d || '%%')", n, n)
	}
	sb.WriteString(" ORDER BY " + orderClause(f.Ordering))

	return r.collect(ctx, sb.String(), args...)
}

func (r *ProductRepository) GetActiveByID(ctx context.Context, id string) (*entity.Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1 AND p.is_active`, id))
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (category_id, name, description, price,
			stock_quantity, is_active, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, p.CategoryID, p.Name, p.Description, p.Price, p.StockQuantity,
		p.IsActive, p.ImageURL)
	return row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepository) Update(ctx context.Context, p *entity.Product) error {
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, price = $4,
			stock_quantity = $5, is_active = $6, image_url = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at
	`, p.CategoryID, p.Name, p.Description, p.Price, p.StockQuantity,
		p.IsActive, p.ImageURL, p.ID)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Related(ctx context.Context, categoryID, excludeID string, limit int) ([]entity.Product, error) {
	return r.collect(ctx, productSelect+`
		WHERE p.is_active AND p.category_id = $1 AND p.id <> $2
		LIMIT $3
	`, categoryID, excludeID, limit)
}

func (r *ProductRepository) SimilarByPrice(ctx context.Context, categoryID, excludeID string, priceMin, priceMax float64, limit int) ([]entity.Product, error) {
	return r.collect(ctx, productSelect+`
		WHERE p.is_active AND p.category_id = $1 AND p.id <> $2
			AND p.price >= $3 AND p.price <= $4
		LIMIT $5
	`, categoryID, excludeID, priceMin, priceMax, limit)
}

func (r *ProductRepository) Featured(ctx context.Context, limit int) ([]entity.Product, error) {
	// The created_at IS NOT NULL arm can never be false, so this matches
	// every active product. Kept to mirror the documented behavior; narrow
	// to stock_quantity >= 10 only as a deliberate product decision.
	return r.collect(ctx, productSelect+`
		WHERE p.is_active AND (p.stock_quantity >= 10 OR p.created_at IS NOT NULL)
		ORDER BY p.created_at DESC
		LIMIT $1
	`, limit)
}

func (r *ProductRepository) NameSuggestions(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name FROM products
		WHERE is_active AND name ILIKE '%' || $1 || '%'
		LIMIT $2
	`, escapeLike(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0, limit)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
