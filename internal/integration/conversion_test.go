package integration

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisharafi88/Store-api/internal/cart"
	"github.com/alisharafi88/Store-api/internal/customer"
	"github.com/alisharafi88/Store-api/internal/order"
	"github.com/alisharafi88/Store-api/internal/testutil"
)

// fixture seeds a customer, two products, and a cart holding both.
type fixture struct {
	db         *sql.DB
	userID     string
	customerID string
	cartID     string
	productA   string
	productB   string
}

func newFixture(ctx context.Context, t *testing.T, db *sql.DB) *fixture {
	t.Helper()

	f := &fixture{
		db:         db,
		userID:     "user-" + uuid.NewString(),
		customerID: uuid.NewString(),
		productA:   uuid.NewString(),
		productB:   uuid.NewString(),
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO customers (id, user_id, first_name, last_name, email)
         VALUES ($1, $2, 'Ada', 'Lovelace', $3)`,
		f.customerID, f.userID, f.userID+"@example.com")
	require.NoError(t, err)

	for _, p := range []struct {
		id, name, price string
		inventory       int
	}{
		{f.productA, "product alpha", "10.00", 100},
		{f.productB, "product bravo", "5.00", 100},
	} {
		_, err := db.ExecContext(ctx,
			`INSERT INTO products (id, name, slug, unit_price, inventory)
             VALUES ($1, $2, $3, $4, $5)`,
			p.id, p.name, p.name, p.price, p.inventory)
		require.NoError(t, err)
	}

	carts := cart.NewRepository(db)
	c, err := carts.Create(ctx)
	require.NoError(t, err)
	f.cartID = c.ID

	_, err = carts.AddItem(ctx, f.cartID, f.productA, 2)
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, f.cartID, f.productB, 1)
	require.NoError(t, err)

	return f
}

func TestConversion_SnapshotsPricesAndDeletesCart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, cleanup := testutil.StartPostgres(ctx, t)
	defer cleanup()

	f := newFixture(ctx, t, db)

	o, err := order.NewConverter(db).ConvertCartToOrder(ctx, f.cartID, f.userID)
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	assert.Equal(t, f.customerID, o.CustomerID)
	assert.Equal(t, order.StatusUnfulfilled, o.Status)
	assert.True(t, order.Total(o.Items).Equal(decimal.RequireFromString("25.00")))

	// the cart is gone, cascade included
	_, err = cart.NewRepository(db).Get(ctx, f.cartID)
	require.ErrorIs(t, err, cart.ErrNotFound)

	var itemCount int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`, f.cartID).Scan(&itemCount))
	assert.Zero(t, itemCount)
}

func TestConversion_FrozenPriceSurvivesCatalogChange(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, cleanup := testutil.StartPostgres(ctx, t)
	defer cleanup()

	f := newFixture(ctx, t, db)

	o, err := order.NewConverter(db).ConvertCartToOrder(ctx, f.cartID, f.userID)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`UPDATE products SET unit_price = '99.99' WHERE id = $1`, f.productA)
	require.NoError(t, err)

	reread, err := order.NewRepository(db).GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, reread.Items, 2)

	// frozen line price is untouched; the product view reflects the new price
	assert.True(t, reread.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, reread.Items[0].Product.UnitPrice.Equal(decimal.RequireFromString("99.99")))
	assert.True(t, order.Total(reread.Items).Equal(decimal.RequireFromString("25.00")))
}

func TestConversion_EmptyCart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, cleanup := testutil.StartPostgres(ctx, t)
	defer cleanup()

	f := newFixture(ctx, t, db)

	c, err := cart.NewRepository(db).Create(ctx)
	require.NoError(t, err)

	_, err = order.NewConverter(db).ConvertCartToOrder(ctx, c.ID, f.userID)
	require.ErrorIs(t, err, order.ErrCartEmpty)

	// the empty cart survives the failed conversion
	_, err = cart.NewRepository(db).Get(ctx, c.ID)
	require.NoError(t, err)
}

func TestConversion_NoCustomerProfileLeavesCartIntact(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, cleanup := testutil.StartPostgres(ctx, t)
	defer cleanup()

	f := newFixture(ctx, t, db)

	_, err := order.NewConverter(db).ConvertCartToOrder(ctx, f.cartID, "stranger")
	require.ErrorIs(t, err, order.ErrNoCustomer)

	// all-or-nothing: no order rows, cart untouched
	var orderCount int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders`).Scan(&orderCount))
	assert.Zero(t, orderCount)

	c, err := cart.NewRepository(db).Get(ctx, f.cartID)
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)
}

func TestConversion_ExactlyOnceUnderConcurrency(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, cleanup := testutil.StartPostgres(ctx, t)
	defer cleanup()

	f := newFixture(ctx, t, db)
	converter := order.NewConverter(db)

	const attempts = 8
	results := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = converter.ConvertCartToOrder(ctx, f.cartID, f.userID)
		}(i)
	}
	wg.Wait()

	var successes int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, order.ErrCartNotFound), errors.Is(err, order.ErrConversionConflict):
		default:
			t.Fatalf("unexpected conversion error: %v", err)
		}
	}
	require.Equal(t, 1, successes, "exactly one conversion must win")

	var orderCount int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_id = $1`, f.customerID).Scan(&orderCount))
	assert.Equal(t, 1, orderCount)
}

func TestCustomerUpsert_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, cleanup := testutil.StartPostgres(ctx, t)
	defer cleanup()

	repo := customer.NewRepository(db)

	c := &customer.Customer{
		UserID:    "user-42",
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
	}
	require.NoError(t, repo.Upsert(ctx, c))
	require.NotEmpty(t, c.ID)

	c.Email = "g.hopper@example.com"
	require.NoError(t, repo.Upsert(ctx, c))

	got, err := repo.GetByUserID(ctx, "user-42")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "g.hopper@example.com", got.Email)
}
