// Package browse orchestrates catalog display state: the active filter set
// and pagination. It owns the rules that keep them consistent — any filter
// change resets to page one, the page is clamped whenever the total changes,
// overlapping loads are dropped, and stale responses never overwrite newer
// state.
package browse

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vitrine-shop/vitrine/internal/domain/catalog"
	"github.com/vitrine-shop/vitrine/internal/source"
)

// Source is the slice of the catalog client the controller needs.
type Source interface {
	Query(ctx context.Context, p source.Params) (*source.Result, error)
	Categories(ctx context.Context) ([]string, error)
}

// Publisher receives catalog-loaded notifications.
type Publisher interface {
	Publish(e any)
}

// LoadedEvent is published after each successful load with the page ready
// for display.
type LoadedEvent struct {
	Products   []catalog.Product
	Total      int
	Page       int
	TotalPages int
}

// FallbackCategories is used when the categories endpoint is unavailable.
var FallbackCategories = []string{
	"smartphones", "laptops", "fragrances", "skincare", "groceries",
	"home-decoration", "furniture", "tops", "womens-dresses", "womens-shoes",
	"mens-shirts", "mens-shoes", "mens-watches", "womens-watches",
	"womens-bags", "womens-jewellery", "sunglasses", "automotive",
	"motorcycle", "lighting",
}

// Config holds the controller settings.
type Config struct {
	// PageSize is the fixed number of products per page.
	PageSize int
	// SearchDebounce is the quiet period before a search-text change
	// triggers a reload. Zero applies the search immediately.
	SearchDebounce time.Duration
}

// Controller owns FilterState and PaginationState for the catalog view.
type Controller struct {
	src    Source
	engine *catalog.Engine
	bus    Publisher
	lg     *zap.Logger

	pageSize int
	debounce time.Duration

	mu     sync.Mutex
	filter catalog.Filter
	page   int
	total  int

	searchTimer *time.Timer

	// loading drops overlapping loads; generation detects responses that
	// arrive after a newer load already completed.
	loading    atomic.Bool
	generation atomic.Uint64
}

// NewController creates a Controller starting on page one with no filters.
func NewController(cfg Config, src Source, engine *catalog.Engine, bus Publisher, lg *zap.Logger) *Controller {
	return &Controller{
		src:      src,
		engine:   engine,
		bus:      bus,
		lg:       lg,
		pageSize: cfg.PageSize,
		debounce: cfg.SearchDebounce,
		page:     1,
	}
}

// Load fetches the current page by the primary query mode, applies the
// client-side filters and sort, and publishes a LoadedEvent. A load started
// while another is in flight is dropped, not queued. On source failure the
// previously displayed state is left untouched and the error is returned for
// the caller to surface as a transient notice.
func (c *Controller) Load(ctx context.Context) error {
	if !c.loading.CompareAndSwap(false, true) {
		return nil
	}
	defer c.loading.Store(false)

	gen := c.generation.Add(1)

	c.mu.Lock()
	f := c.filter
	skip := (c.page - 1) * c.pageSize
	c.mu.Unlock()

	res, err := c.src.Query(ctx, source.Params{
		Category: f.Category,
		Search:   f.Search,
		Limit:    c.pageSize,
		Skip:     skip,
	})
	if err != nil {
		return err
	}

	// A newer load superseded this one while the response was in flight;
	// its result must not overwrite newer state.
	if c.generation.Load() != gen {
		return nil
	}

	products := c.engine.Apply(res.Products, f)

	c.mu.Lock()
	c.total = res.Total
	c.clampPageLocked()
	ev := LoadedEvent{
		Products:   products,
		Total:      c.total,
		Page:       c.page,
		TotalPages: c.totalPagesLocked(),
	}
	c.mu.Unlock()

	c.bus.Publish(ev)
	return nil
}

// SetCategory selects a category filter (empty = all) and reloads from the
// first page.
func (c *Controller) SetCategory(ctx context.Context, category string) error {
	c.mu.Lock()
	c.filter.Category = category
	c.page = 1
	c.mu.Unlock()
	return c.Load(ctx)
}

// SetSearch updates the free-text search term. Rapid successive calls
// coalesce: the reload fires only after the configured quiet period, and each
// call cancels the previously scheduled one.
func (c *Controller) SetSearch(ctx context.Context, term string) error {
	if c.debounce <= 0 {
		c.applySearch(term)
		return c.Load(ctx)
	}

	c.mu.Lock()
	if c.searchTimer != nil {
		c.searchTimer.Stop()
	}
	c.searchTimer = time.AfterFunc(c.debounce, func() {
		c.applySearch(term)
		if err := c.Load(context.Background()); err != nil {
			c.lg.Warn("debounced search load failed", zap.Error(err))
		}
	})
	c.mu.Unlock()
	return nil
}

func (c *Controller) applySearch(term string) {
	c.mu.Lock()
	c.filter.Search = term
	c.page = 1
	c.mu.Unlock()
}

// SetSort selects the sort key and reloads from the first page.
func (c *Controller) SetSort(ctx context.Context, key catalog.SortKey) error {
	c.mu.Lock()
	c.filter.Sort = key
	c.page = 1
	c.mu.Unlock()
	return c.Load(ctx)
}

// SetPriceBounds sets the inclusive price range and reloads from the first
// page. Invalid (unset) bounds lift the constraint.
func (c *Controller) SetPriceBounds(ctx context.Context, min, max decimal.NullDecimal) error {
	c.mu.Lock()
	c.filter.MinPrice = min
	c.filter.MaxPrice = max
	c.page = 1
	c.mu.Unlock()
	return c.Load(ctx)
}

// ToggleRating adds or removes a minimum-rating threshold and reloads from
// the first page.
func (c *Controller) ToggleRating(ctx context.Context, threshold int) error {
	c.mu.Lock()
	found := false
	for i, t := range c.filter.Ratings {
		if t == threshold {
			c.filter.Ratings = append(c.filter.Ratings[:i], c.filter.Ratings[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		c.filter.Ratings = append(c.filter.Ratings, threshold)
	}
	c.page = 1
	c.mu.Unlock()
	return c.Load(ctx)
}

// ClearFilters resets every filter axis and any pending search, and reloads
// from the first page.
func (c *Controller) ClearFilters(ctx context.Context) error {
	c.mu.Lock()
	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
	c.filter = catalog.Filter{}
	c.page = 1
	c.mu.Unlock()
	return c.Load(ctx)
}

// SetPage moves to the given page and reloads. Pages outside
// [1, ceil(total/pageSize)] are a no-op. Filters are untouched.
func (c *Controller) SetPage(ctx context.Context, page int) error {
	c.mu.Lock()
	if page < 1 || page > c.totalPagesLocked() {
		c.mu.Unlock()
		return nil
	}
	c.page = page
	c.mu.Unlock()
	return c.Load(ctx)
}

// Categories returns the category list, falling back to a static list when
// the source is unavailable — a degraded state, not an error.
func (c *Controller) Categories(ctx context.Context) []string {
	names, err := c.src.Categories(ctx)
	if err != nil {
		c.lg.Warn("categories unavailable, using fallback", zap.Error(err))
		return FallbackCategories
	}
	return names
}

// Filter returns a copy of the active filter set.
func (c *Controller) Filter() catalog.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.filter
	f.Ratings = append([]int(nil), c.filter.Ratings...)
	return f
}

// Page returns the current page number.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// PageSize returns the fixed page size.
func (c *Controller) PageSize() int {
	return c.pageSize
}

// Close stops any pending debounced reload.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
}

func (c *Controller) totalPagesLocked() int {
	if c.total <= 0 {
		return 0
	}
	return (c.total + c.pageSize - 1) / c.pageSize
}

// clampPageLocked keeps the page inside [1, ceil(total/pageSize)] after the
// total changes.
func (c *Controller) clampPageLocked() {
	if tp := c.totalPagesLocked(); tp >= 1 && c.page > tp {
		c.page = tp
	}
	if c.page < 1 {
		c.page = 1
	}
}
