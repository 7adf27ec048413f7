package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrEmptyCart is returned when checkout is attempted on a cart with no items.
var ErrEmptyCart = errors.New("cart is empty")

// Flat pricing policy: 10% tax on the subtotal, and a flat shipping fee
// waived only when the subtotal strictly exceeds the free-shipping threshold.
var (
	taxRate           = decimal.NewFromFloat(0.10)
	shippingFee       = decimal.RequireFromString("9.99")
	freeShippingAbove = decimal.NewFromInt(50)
)

// SummaryItem is one cart line as it appears on the checkout summary.
type SummaryItem struct {
	ProductID int             `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Summary is the derived checkout pricing breakdown. The cart's active
// discount is deliberately not part of it: discount codes and the checkout
// summary are parallel paths that do not compose.
type Summary struct {
	Items      []SummaryItem   `json:"items"`
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Shipping   decimal.Decimal `json:"shipping"`
	Total      decimal.Decimal `json:"total"`
}

// Receipt records a completed checkout.
type Receipt struct {
	ID        string    `json:"id"`
	Summary   Summary   `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summarize derives the checkout breakdown from the current cart state under
// the flat pricing policy.
func (s *Service) Summarize() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return summarize(s.items)
}

func summarize(items []LineItem) Summary {
	out := Summary{
		Items:      make([]SummaryItem, len(items)),
		TotalItems: totalItems(items),
		Subtotal:   totalPrice(items),
	}
	for i, li := range items {
		out.Items[i] = SummaryItem{
			ProductID: li.ID,
			Title:     li.Title,
			Price:     li.Price,
			Quantity:  li.Quantity,
			Subtotal:  li.Subtotal(),
		}
	}

	out.Tax = out.Subtotal.Mul(taxRate).Round(2)
	// Exactly at the threshold still pays shipping: the boundary is strict.
	if out.Subtotal.GreaterThan(freeShippingAbove) {
		out.Shipping = decimal.Zero
	} else {
		out.Shipping = shippingFee
	}
	out.Total = out.Subtotal.Add(out.Tax).Add(out.Shipping).Round(2)
	return out
}

// Checkout completes a purchase: it snapshots the summary, empties the cart,
// and returns a receipt. The active discount survives, matching Clear.
func (s *Service) Checkout(ctx context.Context) (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return nil, ErrEmptyCart
	}

	r := &Receipt{
		ID:        uuid.New().String(),
		Summary:   summarize(s.items),
		CreatedAt: time.Now().UTC(),
	}

	s.items = nil
	s.commit(ctx, false)

	return r, nil
}

// Export captures the cart for transfer or inspection.
type Export struct {
	Items      []LineItem      `json:"items"`
	Total      decimal.Decimal `json:"total"`
	ItemCount  int             `json:"itemCount"`
	ExportedAt time.Time       `json:"exportedAt"`
}

// ExportCart returns a portable snapshot of the current cart.
func (s *Service) ExportCart() Export {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Export{
		Items:      s.snapshot(),
		Total:      totalPrice(s.items),
		ItemCount:  totalItems(s.items),
		ExportedAt: time.Now().UTC(),
	}
}

// ImportCart replaces the cart contents with a previously exported snapshot.
func (s *Service) ImportCart(ctx context.Context, items []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]LineItem, len(items))
	copy(s.items, items)
	s.commit(ctx, false)
}
