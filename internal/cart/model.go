package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the slice of catalog data a cart line needs for display and
// pricing. UnitPrice is the product's price at read time, not a snapshot.
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Item struct {
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Price is the line price at the current product price.
func (it Item) Price() decimal.Decimal {
	return it.Product.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Cart struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Items     []Item    `json:"items"`
}

// Total sums the line prices. It is always derived, never stored, so it
// cannot drift from the items it is computed from.
func Total(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price())
	}
	return total
}
