package catalog

import (
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortKey selects a comparator for ordering a product collection.
type SortKey string

const (
	SortNone         SortKey = ""
	SortPriceAsc     SortKey = "price-asc"
	SortPriceDesc    SortKey = "price-desc"
	SortRatingDesc   SortKey = "rating-desc"
	SortRatingAsc    SortKey = "rating-asc"
	SortTitleAsc     SortKey = "title-asc"
	SortTitleDesc    SortKey = "title-desc"
	SortDiscountDesc SortKey = "discount-desc"
	SortNewest       SortKey = "newest"
	SortPopular      SortKey = "popular"
)

// Filter is the active filter set applied client-side to a fetched product
// collection. Invalid (unset) price bounds mean "no constraint on that axis".
type Filter struct {
	Category string
	Search   string
	Sort     SortKey
	MinPrice decimal.NullDecimal
	MaxPrice decimal.NullDecimal

	// Ratings is the set of selected minimum-rating thresholds. When more
	// than one is selected, the lowest wins: a product passes if its rating
	// is at least min(Ratings). This mirrors the storefront's historical
	// behaviour and is covered by a test so it cannot be "fixed" silently.
	Ratings []int
}

// Empty reports whether no client-side constraint or ordering is active.
func (f Filter) Empty() bool {
	return f.Category == "" && f.Search == "" && f.Sort == SortNone &&
		!f.MinPrice.Valid && !f.MaxPrice.Valid && len(f.Ratings) == 0
}

// Engine applies filters and sort orders to product collections. It is a pure
// transformation: inputs are never modified and no side effects occur. The
// collator makes title ordering locale-aware.
type Engine struct {
	coll *collate.Collator
}

// NewEngine creates an Engine whose title comparisons follow the collation
// rules of the given language.
func NewEngine(tag language.Tag) *Engine {
	return &Engine{coll: collate.New(tag)}
}

// Apply filters products by price bounds and rating thresholds, then sorts by
// the filter's sort key. The input slice is left untouched.
func (e *Engine) Apply(products []Product, f Filter) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if !priceInBounds(p, f.MinPrice, f.MaxPrice) {
			continue
		}
		if !ratingAccepted(p, f.Ratings) {
			continue
		}
		out = append(out, p)
	}
	e.sortProducts(out, f.Sort)
	return out
}

// Paginate returns the half-open window [skip, skip+limit) of items. Out of
// range windows collapse to an empty slice.
func Paginate(items []Product, skip, limit int) []Product {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) || limit <= 0 {
		return []Product{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

// priceInBounds checks the inclusive price range. An unset bound does not
// constrain; in particular an unset minimum is not treated as zero.
func priceInBounds(p Product, min, max decimal.NullDecimal) bool {
	if min.Valid && p.Price.LessThan(min.Decimal) {
		return false
	}
	if max.Valid && p.Price.GreaterThan(max.Decimal) {
		return false
	}
	return true
}

// ratingAccepted keeps products rated at or above the lowest selected
// threshold. No selection accepts everything.
func ratingAccepted(p Product, thresholds []int) bool {
	if len(thresholds) == 0 {
		return true
	}
	min := thresholds[0]
	for _, t := range thresholds[1:] {
		if t < min {
			min = t
		}
	}
	return p.Rating.GreaterThanOrEqual(decimal.NewFromInt(int64(min)))
}

// sortProducts orders items in place. An unrecognized key preserves input
// order. Stability beyond what the comparator guarantees is not promised.
func (e *Engine) sortProducts(items []Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.Slice(items, func(i, j int) bool {
			return items[i].Price.LessThan(items[j].Price)
		})
	case SortPriceDesc:
		sort.Slice(items, func(i, j int) bool {
			return items[j].Price.LessThan(items[i].Price)
		})
	case SortRatingDesc, SortPopular:
		sort.Slice(items, func(i, j int) bool {
			return items[j].Rating.LessThan(items[i].Rating)
		})
	case SortRatingAsc:
		sort.Slice(items, func(i, j int) bool {
			return items[i].Rating.LessThan(items[j].Rating)
		})
	case SortTitleAsc:
		sort.Slice(items, func(i, j int) bool {
			return e.coll.CompareString(items[i].Title, items[j].Title) < 0
		})
	case SortTitleDesc:
		sort.Slice(items, func(i, j int) bool {
			return e.coll.CompareString(items[j].Title, items[i].Title) < 0
		})
	case SortDiscountDesc:
		// Missing discount sorts as zero.
		sort.Slice(items, func(i, j int) bool {
			return items[j].DiscountPercentage.LessThan(items[i].DiscountPercentage)
		})
	case SortNewest:
		sort.Slice(items, func(i, j int) bool {
			return items[j].ID < items[i].ID
		})
	}
}
