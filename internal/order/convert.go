package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	// ErrCartNotFound: the cart id does not resolve to a cart. Also the
	// result of resubmitting a conversion that already committed, since a
	// successful conversion deletes the cart.
	ErrCartNotFound = errors.New("no cart with this id")
	// ErrCartEmpty: the cart exists but holds no items.
	ErrCartEmpty = errors.New("cart is empty")
	// ErrNoCustomer: no customer profile exists for the caller's identity.
	ErrNoCustomer = errors.New("no customer profile for this user")
	// ErrConversionConflict: the store detected a concurrent conversion of
	// the same cart. A fresh retry will observe the cart as gone.
	ErrConversionConflict = errors.New("concurrent conversion of this cart")
)

// Converter drains a cart into a durable order as one atomic unit: it
// snapshots the cart lines with the product prices current at that read,
// writes the order and its lines, and deletes the cart. Either all of it
// commits or none of it does.
type Converter struct {
	db *sql.DB
}

func NewConverter(db *sql.DB) *Converter {
	return &Converter{db: db}
}

// ConvertCartToOrder converts the cart into a new order owned by the
// customer profile of userID.
//
// The transaction runs at serializable isolation and takes a row lock on
// the cart, so two conversions of the same cart cannot both succeed: the
// loser either blocks and then finds the cart gone (ErrCartNotFound) or
// aborts with a serialization failure (ErrConversionConflict). Conversions
// of different carts do not contend.
func (c *Converter) ConvertCartToOrder(ctx context.Context, cartID, userID string) (*Order, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Lock the cart row. This is both the existence check and the per-cart
	// mutual exclusion for the rest of the unit.
	var lockedID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM carts WHERE id = $1 FOR UPDATE`, cartID,
	).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, ErrCartNotFound
		}
		return nil, classifyTxErr(err, "lock cart")
	}

	// Snapshot the cart lines together with each product's price, in one
	// read under the lock. This re-validates non-emptiness and is the only
	// price read: the order lines below are written from this snapshot, so
	// a price change racing the conversion cannot split the order across
	// two prices.
	rows, err := tx.QueryContext(ctx,
		`SELECT ci.quantity, p.id, p.name, p.unit_price
         FROM cart_items ci
         JOIN products p ON p.id = ci.product_id
         WHERE ci.cart_id = $1
         ORDER BY p.name`,
		cartID,
	)
	if err != nil {
		return nil, classifyTxErr(err, "snapshot cart items")
	}

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Quantity, &it.Product.ID, &it.Product.Name, &it.Product.UnitPrice); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		it.UnitPrice = it.Product.UnitPrice
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, classifyTxErr(err, "snapshot cart items")
	}

	if len(items) == 0 {
		return nil, ErrCartEmpty
	}

	var customerID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM customers WHERE user_id = $1`, userID,
	).Scan(&customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoCustomer
		}
		return nil, classifyTxErr(err, "resolve customer")
	}

	o := &Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Status:     StatusUnfulfilled,
		CreatedAt:  time.Now().UTC(),
		Items:      items,
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, customer_id, status, created_at) VALUES ($1, $2, $3, $4)`,
		o.ID, o.CustomerID, o.Status, o.CreatedAt,
	)
	if err != nil {
		return nil, classifyTxErr(err, "insert order")
	}

	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
             VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), o.ID, it.Product.ID, it.Quantity, it.UnitPrice,
		)
		if err != nil {
			return nil, classifyTxErr(err, "insert order item")
		}
	}

	// cart_items go with the cart via ON DELETE CASCADE.
	_, err = tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return nil, classifyTxErr(err, "delete cart")
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyTxErr(err, "commit")
	}

	return o, nil
}

// classifyTxErr surfaces serialization failures as ErrConversionConflict and
// wraps everything else.
func classifyTxErr(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "40001" {
		return ErrConversionConflict
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isInvalidUUID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}
