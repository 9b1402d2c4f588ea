package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusUnfulfilled Status = "unfulfilled"
	StatusFulfilled   Status = "fulfilled"
	StatusCanceled    Status = "canceled"
)

// Product identifies the catalog entry an order line refers to. UnitPrice
// here is the product's current catalog price; the frozen price the customer
// pays lives on the Item.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Item is a price-frozen order line. Quantity and UnitPrice are captured
// when the order is created and never change afterwards, even if the
// referenced product's price does.
type Item struct {
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Order struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"datetime_created"`
	Items      []Item    `json:"items"`
}

// Total sums unit_price * quantity over the order's lines, the same formula
// the cart uses for its own total. It is derived on every read and never
// persisted.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
