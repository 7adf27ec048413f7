// Package cart owns the authoritative shopping cart state: line items, the
// active discount, and every mutation that can touch them. Each mutation is a
// single unit of work: state changes, the snapshot is saved, and exactly one
// change notification goes out, all before the operation returns.
package cart

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one cart entry. Price, title, and image are snapshotted when
// the item is first added; later catalog changes never reach items already in
// the cart.
type LineItem struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price times quantity for this line.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Repository persists the cart snapshot. Load must degrade a corrupt payload
// to an empty cart rather than fail.
type Repository interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
}

// Publisher is where the service sends its change notifications. Satisfied by
// *event.Bus.
type Publisher interface {
	Publish(e any)
}

// ChangedEvent is published after every effective cart mutation. It carries
// the full new state so observers never need to read back.
type ChangedEvent struct {
	Items           []LineItem
	TotalItems      int
	TotalPrice      decimal.Decimal
	DiscountedTotal decimal.Decimal
	DiscountCode    string

	// FirstItem is set only when this mutation put the first item into a
	// previously empty cart.
	FirstItem bool
}

// discountRates maps accepted discount codes to their rates. Lookup is
// case-insensitive.
var discountRates = map[string]decimal.Decimal{
	"SAVE10":    decimal.NewFromFloat(0.10),
	"WELCOME20": decimal.NewFromFloat(0.20),
	"NEWUSER":   decimal.NewFromFloat(0.15),
}

// lookupDiscount resolves a code to its rate. The canonical (upper-case) form
// of the code is returned alongside.
func lookupDiscount(code string) (canonical string, rate decimal.Decimal, ok bool) {
	canonical = strings.ToUpper(code)
	rate, ok = discountRates[canonical]
	return canonical, rate, ok
}
