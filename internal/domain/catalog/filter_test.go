package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func testProducts() []Product {
	return []Product{
		{ID: 1, Title: "Zest Lamp", Price: dec("15.00"), Rating: dec("3")},
		{ID: 2, Title: "Apple Crate", Price: dec("50.00"), Rating: dec("4"), DiscountPercentage: dec("12.5")},
		{ID: 3, Title: "Éclair Mold", Price: dec("80.00"), Rating: dec("5"), DiscountPercentage: dec("5")},
	}
}

func newTestEngine() *Engine {
	return NewEngine(language.English)
}

func ids(items []Product) []int {
	out := make([]int, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

func TestApply_PriceBoundsInclusive(t *testing.T) {
	e := newTestEngine()

	got := e.Apply(testProducts(), Filter{MinPrice: nullDec("15.00"), MaxPrice: nullDec("50.00")})
	assert.Equal(t, []int{1, 2}, ids(got))

	// Unset bound is unconstrained, never zero.
	got = e.Apply(testProducts(), Filter{MaxPrice: nullDec("49.99")})
	assert.Equal(t, []int{1}, ids(got))

	got = e.Apply(testProducts(), Filter{})
	assert.Equal(t, []int{1, 2, 3}, ids(got))
}

func TestApply_RatingMinimumOfSelectedSet(t *testing.T) {
	e := newTestEngine()

	// Selecting {3,5} keeps everything rated >= 3: the lowest selected
	// threshold wins.
	got := e.Apply(testProducts(), Filter{Ratings: []int{3, 5}})
	require.Len(t, got, 3)

	got = e.Apply(testProducts(), Filter{Ratings: []int{4}})
	assert.Equal(t, []int{2, 3}, ids(got))
}

func TestApply_SortKeys(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		key  SortKey
		want []int
	}{
		{SortPriceAsc, []int{1, 2, 3}},
		{SortPriceDesc, []int{3, 2, 1}},
		{SortRatingDesc, []int{3, 2, 1}},
		{SortRatingAsc, []int{1, 2, 3}},
		{SortTitleAsc, []int{2, 3, 1}}, // collation puts Éclair before Zest
		{SortTitleDesc, []int{1, 3, 2}},
		{SortDiscountDesc, []int{2, 3, 1}}, // missing discount treated as 0
		{SortNewest, []int{3, 2, 1}},
		{SortPopular, []int{3, 2, 1}},
		{SortKey("bogus"), []int{1, 2, 3}}, // unknown key preserves order
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := e.Apply(testProducts(), Filter{Sort: tt.key})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	e := newTestEngine()
	in := testProducts()

	e.Apply(in, Filter{Sort: SortPriceDesc})
	assert.Equal(t, []int{1, 2, 3}, ids(in))
}

func TestPaginate(t *testing.T) {
	items := testProducts()

	assert.Equal(t, []int{1, 2}, ids(Paginate(items, 0, 2)))
	assert.Equal(t, []int{3}, ids(Paginate(items, 2, 2)))
	assert.Empty(t, Paginate(items, 5, 2))
	assert.Empty(t, Paginate(items, 0, 0))
	assert.Equal(t, []int{1, 2, 3}, ids(Paginate(items, -1, 10)))
}

func TestDiscountedPrice(t *testing.T) {
	p := Product{Price: dec("100.00"), DiscountPercentage: dec("12.5")}
	assert.True(t, dec("87.50").Equal(p.DiscountedPrice()))

	p = Product{Price: dec("100.00")}
	assert.True(t, dec("100.00").Equal(p.DiscountedPrice()))
}

func TestFilter_Empty(t *testing.T) {
	assert.True(t, Filter{}.Empty())
	assert.False(t, Filter{Search: "lamp"}.Empty())
	assert.False(t, Filter{MinPrice: nullDec("1")}.Empty())
}
