package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const productColumns = `id, name, description, price, category_id, vendor_id, version, created_at, updated_at`

type productRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.VendorID,
		&p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *productRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	created, err := scanProduct(r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, description, price, category_id, vendor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productColumns,
		product.Name, product.Description, product.Price, product.CategoryID, product.VendorID,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Product{}, domain.ErrInvalidReference
		}
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return created, nil
}

func (r *productRepository) Get(ctx context.Context, id int64) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	product, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return product, nil
}

// List строит WHERE только из заданных полей фильтра.
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		conditions []string
		args       []any
	)
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conditions = append(conditions, "category_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Name != nil {
		args = append(args, *filter.Name)
		conditions = append(conditions, "name = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

// Save обновляет товар, только если версия в базе совпадает с product.Version.
func (r *productRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	updated, err := scanProduct(r.db.QueryRowContext(ctx, `
		UPDATE products
		SET name = $1,
		    description = $2,
		    price = $3,
		    category_id = $4,
		    vendor_id = $5,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $6
		  AND version = $7
		RETURNING `+productColumns,
		product.Name, product.Description, product.Price, product.CategoryID, product.VendorID,
		product.ID, product.Version,
	))
	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, sql.ErrNoRows):
		found, probeErr := exists(ctx, r.db, "products", product.ID)
		if probeErr != nil {
			return domain.Product{}, probeErr
		}
		if !found {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, domain.ErrVersionConflict
	case isForeignKeyViolation(err):
		return domain.Product{}, domain.ErrInvalidReference
	default:
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
}

// Delete удаляет товар; позиции корзин удаляются каскадом по внешнему ключу.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

var _ domain.ProductRepository = (*productRepository)(nil)
