package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrNotFound        = errors.New("cart not found")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrProductNotFound = errors.New("product not found")
)

type Repository interface {
	Create(ctx context.Context) (*Cart, error)
	Get(ctx context.Context, cartID string) (*Cart, error)
	Delete(ctx context.Context, cartID string) error

	AddItem(ctx context.Context, cartID, productID string, quantity int) (*Item, error)
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (*Item, error)
	RemoveItem(ctx context.Context, cartID, itemID string) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context) (*Cart, error) {
	c := &Cart{ID: uuid.NewString()}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO carts (id) VALUES ($1) RETURNING created_at`,
		c.ID,
	).Scan(&c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert cart: %w", err)
	}
	return c, nil
}

func (r *repo) Get(ctx context.Context, cartID string) (*Cart, error) {
	var c Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM carts WHERE id = $1`, cartID,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT ci.id, ci.quantity, p.id, p.name, p.unit_price
         FROM cart_items ci
         JOIN products p ON p.id = ci.product_id
         WHERE ci.cart_id = $1
         ORDER BY p.name`,
		cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Quantity, &it.Product.ID, &it.Product.Name, &it.Product.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &c, nil
}

func (r *repo) Delete(ctx context.Context, cartID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		if isInvalidUUID(err) {
			return ErrNotFound
		}
		return fmt.Errorf("delete cart: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddItem merges into an existing line for the same product in a single
// conditional upsert, so concurrent adds cannot race a check-then-create.
func (r *repo) AddItem(ctx context.Context, cartID, productID string, quantity int) (*Item, error) {
	it := &Item{Quantity: quantity}
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO cart_items (id, cart_id, product_id, quantity)
         VALUES ($1, $2, $3, $4)
         ON CONFLICT (cart_id, product_id)
         DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
         RETURNING id, quantity`,
		uuid.NewString(), cartID, productID, quantity,
	).Scan(&it.ID, &it.Quantity)
	if err != nil {
		return nil, classifyItemErr(err)
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT id, name, unit_price FROM products WHERE id = $1`, productID,
	).Scan(&it.Product.ID, &it.Product.Name, &it.Product.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}

	return it, nil
}

func (r *repo) UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (*Item, error) {
	it := &Item{ID: itemID, Quantity: quantity}
	err := r.db.QueryRowContext(ctx,
		`UPDATE cart_items ci SET quantity = $3
         FROM products p
         WHERE ci.id = $1 AND ci.cart_id = $2 AND p.id = ci.product_id
         RETURNING p.id, p.name, p.unit_price`,
		itemID, cartID, quantity,
	).Scan(&it.Product.ID, &it.Product.Name, &it.Product.UnitPrice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	return it, nil
}

func (r *repo) RemoveItem(ctx context.Context, cartID, itemID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		if isInvalidUUID(err) {
			return ErrItemNotFound
		}
		return fmt.Errorf("delete cart item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// classifyItemErr maps foreign key violations on cart_items inserts to the
// missing referenced entity.
func classifyItemErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "cart_items_cart_id_fkey":
			return ErrNotFound
		case "cart_items_product_id_fkey":
			return ErrProductNotFound
		}
	}
	if isInvalidUUID(err) {
		return ErrNotFound
	}
	return fmt.Errorf("upsert cart item: %w", err)
}

// isInvalidUUID reports whether err is Postgres rejecting a malformed uuid
// literal (SQLSTATE 22P02). A syntactically invalid id can never match a row,
// so callers treat it the same as not-found.
func isInvalidUUID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}
