package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service is the cart state machine. All operations are synchronous and
// serialized by a single mutex, so rapid repeated calls behave like a
// single-threaded event loop.
type Service struct {
	repo Repository
	bus  Publisher
	lg   *zap.Logger

	mu           sync.Mutex
	items        []LineItem
	discountRate decimal.Decimal
	discountCode string
}

// NewService creates a cart Service. Call Hydrate before first use to restore
// the persisted snapshot.
func NewService(repo Repository, bus Publisher, lg *zap.Logger) *Service {
	return &Service{
		repo: repo,
		bus:  bus,
		lg:   lg,
	}
}

// Hydrate restores the cart from the repository. A missing or corrupt
// snapshot yields an empty cart; hydration never fails the caller.
func (s *Service) Hydrate(ctx context.Context) {
	items, err := s.repo.Load(ctx)
	if err != nil {
		s.lg.Warn("cart hydrate failed, starting empty", zap.Error(err))
		items = nil
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// AddItem adds one unit of the given product. An existing line item keeps its
// first-seen title, price, and image and only gains quantity. Adding to an
// empty cart flags the event as the first item.
func (s *Service) AddItem(ctx context.Context, id int, title string, price decimal.Decimal, image string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	first := len(s.items) == 0

	if li := s.find(id); li != nil {
		li.Quantity++
	} else {
		s.items = append(s.items, LineItem{
			ID:       id,
			Title:    title,
			Price:    price,
			Image:    image,
			Quantity: 1,
		})
	}

	s.commit(ctx, first)
}

// RemoveItem deletes the line item with the given id. Absent ids are a no-op,
// not an error.
func (s *Service) RemoveItem(ctx context.Context, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.remove(id) {
		return
	}
	s.commit(ctx, false)
}

// SetQuantity sets the quantity of the line item with the given id. A
// quantity of zero or less removes the item. Absent ids are a no-op.
func (s *Service) SetQuantity(ctx context.Context, id, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	li := s.find(id)
	if li == nil {
		return
	}

	if qty <= 0 {
		s.remove(id)
	} else {
		li.Quantity = qty
	}
	s.commit(ctx, false)
}

// Clear empties all line items. An active discount stays in place: clearing
// items and clearing the discount are independent operations here.
func (s *Service) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.commit(ctx, false)
}

// ApplyDiscount validates code against the fixed discount table. A valid code
// activates the discount and returns true; an unknown code leaves all state
// untouched and returns false so the caller can show a recoverable message.
func (s *Service) ApplyDiscount(ctx context.Context, code string) bool {
	canonical, rate, ok := lookupDiscount(code)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.discountRate = rate
	s.discountCode = canonical
	s.commit(ctx, false)
	return true
}

// RemoveDiscount clears any active discount unconditionally.
func (s *Service) RemoveDiscount(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.discountRate = decimal.Zero
	s.discountCode = ""
	s.commit(ctx, false)
}

// Items returns a copy of the line items in insertion order.
func (s *Service) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// TotalItems returns the sum of quantities across all line items.
func (s *Service) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalItems(s.items)
}

// TotalPrice returns the undiscounted sum of price times quantity.
func (s *Service) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totalPrice(s.items)
}

// DiscountedTotal returns the total price minus the active discount. With no
// discount active it equals TotalPrice.
func (s *Service) DiscountedTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return discountedTotal(s.items, s.discountRate)
}

// Discount reports the active discount, if any.
func (s *Service) Discount() (code string, rate decimal.Decimal, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discountCode, s.discountRate, s.discountCode != ""
}

// commit finishes a mutation while the lock is held: the snapshot is saved
// first so no observer is notified of unpersisted state, then exactly one
// ChangedEvent goes out. A save failure degrades to an ephemeral cart and is
// only logged.
func (s *Service) commit(ctx context.Context, first bool) {
	snap := s.snapshot()

	if err := s.repo.Save(ctx, snap); err != nil {
		s.lg.Warn("cart save failed", zap.Error(err))
	}

	s.bus.Publish(ChangedEvent{
		Items:           snap,
		TotalItems:      totalItems(s.items),
		TotalPrice:      totalPrice(s.items),
		DiscountedTotal: discountedTotal(s.items, s.discountRate),
		DiscountCode:    s.discountCode,
		FirstItem:       first,
	})
}

func (s *Service) snapshot() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Service) find(id int) *LineItem {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i]
		}
	}
	return nil
}

func (s *Service) remove(id int) bool {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

func totalItems(items []LineItem) int {
	total := 0
	for _, li := range items {
		total += li.Quantity
	}
	return total
}

func totalPrice(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, li := range items {
		sum = sum.Add(li.Subtotal())
	}
	return sum
}

func discountedTotal(items []LineItem, rate decimal.Decimal) decimal.Decimal {
	subtotal := totalPrice(items)
	return subtotal.Sub(subtotal.Mul(rate))
}
