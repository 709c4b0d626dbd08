package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// Create сохраняет корзину и позиции в одной транзакции.
func (r *cartRepository) Create(ctx context.Context, cart domain.Cart) (created domain.Cart, err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	created = domain.Cart{CustomerID: cart.CustomerID}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO carts (customer_id) VALUES ($1) RETURNING id, created_at`, cart.CustomerID,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Cart{}, domain.ErrInvalidReference
		}
		return domain.Cart{}, fmt.Errorf("insert cart: %w", err)
	}

	created.Items = make([]domain.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)`,
			created.ID, item.ProductID, item.Quantity,
		); err != nil {
			if isForeignKeyViolation(err) {
				return domain.Cart{}, domain.ErrInvalidReference
			}
			return domain.Cart{}, fmt.Errorf("insert cart item: %w", err)
		}
		created.Items = append(created.Items, item)
	}

	if err = tx.Commit(); err != nil {
		return domain.Cart{}, fmt.Errorf("commit create cart: %w", err)
	}
	return created, nil
}

func (r *cartRepository) Get(ctx context.Context, id int64) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var cart domain.Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, created_at FROM carts WHERE id = $1`, id,
	).Scan(&cart.ID, &cart.CustomerID, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, quantity FROM cart_items WHERE cart_id = $1 ORDER BY id`, id)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = make([]domain.CartItem, 0)
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return domain.Cart{}, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("iterate cart items: %w", err)
	}
	return cart, nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
