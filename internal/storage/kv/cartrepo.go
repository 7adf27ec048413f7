package kv

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/vitrine-shop/vitrine/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository persists the cart snapshot as a JSON array under KeyCart.
type CartRepository struct {
	store *Store
	lg    *zap.Logger
}

// NewCartRepository returns a CartRepository on top of the given store.
func NewCartRepository(store *Store, lg *zap.Logger) *CartRepository {
	return &CartRepository{store: store, lg: lg}
}

// Load reads the persisted snapshot. A missing key yields an empty cart. A
// payload that does not parse also yields an empty cart: corrupt state
// degrades silently instead of failing startup.
func (r *CartRepository) Load(ctx context.Context) ([]cart.LineItem, error) {
	raw, ok, err := r.store.Get(ctx, KeyCart)
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	if !ok {
		return nil, nil
	}

	var items []cart.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		r.lg.Warn("persisted cart is malformed, resetting to empty", zap.Error(err))
		return nil, nil
	}
	return items, nil
}

// Save writes the whole snapshot.
func (r *CartRepository) Save(ctx context.Context, items []cart.LineItem) error {
	if items == nil {
		items = []cart.LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	return r.store.Set(ctx, KeyCart, string(raw))
}
