package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const categoryColumns = `id, name, version, created_at, updated_at`

type categoryRepository struct {
	db *sql.DB
}

func scanCategory(row rowScanner) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *categoryRepository) Create(ctx context.Context, category domain.Category) (domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	created, err := scanCategory(r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING `+categoryColumns, category.Name))
	if err != nil {
		return domain.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return created, nil
}

func (r *categoryRepository) Get(ctx context.Context, id int64) (domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	category, err := scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, domain.ErrCategoryNotFound
		}
		return domain.Category{}, fmt.Errorf("select category: %w", err)
	}
	return category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) Save(ctx context.Context, category domain.Category) (domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	updated, err := scanCategory(r.db.QueryRowContext(ctx, `
		UPDATE categories
		SET name = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
		RETURNING `+categoryColumns,
		category.Name, category.ID, category.Version,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, fmt.Errorf("update category: %w", err)
	}

	found, err := exists(ctx, r.db, "categories", category.ID)
	if err != nil {
		return domain.Category{}, err
	}
	if !found {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return domain.Category{}, domain.ErrVersionConflict
}

// Delete возвращает ErrCategoryInUse, если внешний ключ products.category_id не даёт удалить строку.
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCategoryInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

var _ domain.CategoryRepository = (*categoryRepository)(nil)
