package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/vitrine-shop/vitrine/internal/auth"
	"github.com/vitrine-shop/vitrine/internal/browse"
	"github.com/vitrine-shop/vitrine/internal/domain/cart"
	"github.com/vitrine-shop/vitrine/internal/domain/catalog"
	"github.com/vitrine-shop/vitrine/internal/event"
	"github.com/vitrine-shop/vitrine/internal/settings"
	"github.com/vitrine-shop/vitrine/internal/source"
)

// stubCatalog backs both the browse controller and the handler's direct
// catalog lookups.
type stubCatalog struct {
	products []catalog.Product
	err      error
}

func (s *stubCatalog) Query(context.Context, source.Params) (*source.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &source.Result{Products: s.products, Total: len(s.products)}, nil
}

func (s *stubCatalog) Categories(context.Context) ([]string, error) {
	return []string{"lighting", "storage"}, nil
}

func (s *stubCatalog) Product(_ context.Context, id int) (*catalog.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, source.ErrUnavailable
}

func (s *stubCatalog) Recommendations(context.Context, int) ([]catalog.Product, error) {
	return s.products, s.err
}

func (s *stubCatalog) FeaturedProducts(context.Context, int) ([]catalog.Product, error) {
	return s.products, s.err
}

type memCartRepo struct {
	items []cart.LineItem
}

func (m *memCartRepo) Load(context.Context) ([]cart.LineItem, error) { return m.items, nil }
func (m *memCartRepo) Save(_ context.Context, items []cart.LineItem) error {
	m.items = items
	return nil
}

type memSettingsStore struct {
	values map[string]string
}

func (m *memSettingsStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memSettingsStore) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func testProducts() []catalog.Product {
	return []catalog.Product{
		{
			ID:        1,
			Title:     "Desk Lamp",
			Price:     decimal.RequireFromString("24.99"),
			Rating:    decimal.RequireFromString("4.5"),
			Stock:     12,
			Category:  "lighting",
			Thumbnail: "lamp.jpg",
		},
		{
			ID:       2,
			Title:    "Bookshelf",
			Price:    decimal.RequireFromString("89.00"),
			Rating:   decimal.RequireFromString("4.1"),
			Stock:    3,
			Category: "storage",
		},
	}
}

func newTestMux(t *testing.T, src *stubCatalog) *http.ServeMux {
	t.Helper()

	lg := zap.NewNop()
	bus := event.New()

	cartSvc := cart.NewService(&memCartRepo{}, bus, lg)
	browseCtl := browse.NewController(
		browse.Config{PageSize: 20},
		src,
		catalog.NewEngine(language.English),
		bus,
		lg,
	)
	t.Cleanup(browseCtl.Close)

	settingsSvc := settings.NewService(&memSettingsStore{values: map[string]string{}}, bus, lg)
	authSvc := auth.NewService(bus)

	mux := http.NewServeMux()
	NewHandler(cartSvc, browseCtl, src, authSvc, settingsSvc, bus).Routes(mux)
	return mux
}

func do(t *testing.T, mux *http.ServeMux, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestGetCatalog(t *testing.T) {
	mux := newTestMux(t, &stubCatalog{products: testProducts()})

	rec := do(t, mux, http.MethodGet, "/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[catalogView](t, rec)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, 1, view.Page)
	require.Len(t, view.Products, 2)
	assert.Equal(t, "Desk Lamp", view.Products[0].Title)
	assert.Equal(t, "low-stock", view.Products[1].StockStatus)
}

func TestGetCatalog_SourceDownWithNothingLoaded(t *testing.T) {
	mux := newTestMux(t, &stubCatalog{err: source.ErrUnavailable})

	rec := do(t, mux, http.MethodGet, "/catalog", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetCatalog_SourceDownKeepsLastView(t *testing.T) {
	src := &stubCatalog{products: testProducts()}
	mux := newTestMux(t, src)

	require.Equal(t, http.StatusOK, do(t, mux, http.MethodGet, "/catalog", nil).Code)

	src.err = source.ErrUnavailable
	rec := do(t, mux, http.MethodGet, "/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[catalogView](t, rec).Total)
}

func TestCategoriesEndpoint(t *testing.T) {
	mux := newTestMux(t, &stubCatalog{})

	rec := do(t, mux, http.MethodGet, "/catalog/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode[map[string][]string](t, rec)
	assert.Equal(t, []string{"lighting", "storage"}, out["categories"])
}

func TestFilterCommands(t *testing.T) {
	mux := newTestMux(t, &stubCatalog{products: testProducts()})

	rec := do(t, mux, http.MethodPut, "/catalog/category", map[string]string{"category": "lighting"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, mux, http.MethodPut, "/catalog/sort", map[string]string{"sort": "price-asc"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, mux, http.MethodPost, "/catalog/ratings/9", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, mux, http.MethodDelete, "/catalog/filters", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCartFlow(t *testing.T) {
	mux := newTestMux(t, &stubCatalog{products: testProducts()})

	rec := do(t, mux, http.MethodPost, "/cart/items", map[string]int{"productId": 1})
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[cartView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Desk Lamp", view.Items[0].Title)
	assert.Equal(t, 1, view.TotalItems)

	// Same product again only bumps the quantity.
	rec = do(t, mux, http.MethodPost, "/cart/items", map[string]int{"productId": 1})
	view = decode[cartView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)

	rec = do(t, mux, http.MethodPut, "/cart/items/1", map[string]int{"quantity": 5})
	view = decode[cartView](t, rec)
	assert.Equal(t, 5, view.TotalItems)

	// Zero quantity removes the line.
	rec = do(t, mux, http.MethodPut, "/cart/items/1", map[string]int{"quantity": 0})
	view = decode[cartView](t, rec)
	assert.Empty(t, view.Items)
}

func TestAddItem_SourceDown(t *testing.T) {
	mux := newTestMux(t, &stubCatalog{err: source.ErrUnavailable})

	rec := do(t, mux, http.MethodPost, "/cart/items", map[string]int{"productId": 1})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestDiscountEndpoints(t *testing.T) {
	mux := newTestMux(t, &stubCatalog{products: testProducts()})
	do(t, mux, http.MethodPost, "/cart/items", map[string]int{"productId": 1})

	rec := do(t, mux, http.MethodPost, "/cart/discount", map[string]string{"code": "BOGUS"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, mux, http.MethodPost, "/cart/discount", map[string]string{"code": "save10"})
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[cartView](t, rec)
	assert.Equal(t, "SAVE10", view.DiscountCode)
	assert.InDelta(t, 22.491, view.DiscountedTotal, 0.001)

	rec = do(t, mux, http.MethodDelete, "/cart/discount", nil)
	view = decode[cartView](t, rec)
	assert.Empty(t, view.DiscountCode)
}

func TestSummaryEndpoint(t *testing.T) {
	mux := newTestMux(t, &stubCatalog{products: testProducts()})
	do(t, mux, http.MethodPost, "/cart/items", map[string]int{"productId": 1})

	rec := do(t, mux, http.MethodGet, "/cart/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	s := decode[summaryView](t, rec)
	assert.InDelta(t, 24.99, s.Subtotal, 0.001)
	assert.InDelta(t, 2.50, s.Tax, 0.001)
	assert.InDelta(t, 9.99, s.Shipping, 0.001)
	assert.InDelta(t, 37.48, s.Total, 0.001)
}

func TestCheckout(t *testing.T) {
	mux := newTestMux(t, &stubCatalog{products: testProducts()})

	rec := do(t, mux, http.MethodPost, "/checkout", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	do(t, mux, http.MethodPost, "/cart/items", map[string]int{"productId": 1})
	rec = do(t, mux, http.MethodPost, "/checkout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	receipt := decode[receiptView](t, rec)
	assert.NotEmpty(t, receipt.ID)
	assert.InDelta(t, 37.48, receipt.Summary.Total, 0.001)

	view := decode[cartView](t, do(t, mux, http.MethodGet, "/cart", nil))
	assert.Empty(t, view.Items)
}

func TestAuthEndpoints(t *testing.T) {
	mux := newTestMux(t, &stubCatalog{})

	rec := do(t, mux, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, mux, http.MethodPost, "/auth/signin", map[string]string{
		"email": "jane@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Email must end with @gmail.com", decode[errorResponse](t, rec).Message)

	rec = do(t, mux, http.MethodPost, "/auth/signin", map[string]string{
		"email": "Jane@Gmail.com", "password": "pw",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode[identityView](t, rec)
	assert.Equal(t, "jane", id.Name)
	assert.Equal(t, "jane@gmail.com", id.Email)

	rec = do(t, mux, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, mux, http.MethodPost, "/auth/signout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, mux, http.MethodGet, "/auth/me", nil).Code)
}

func TestSettingsEndpoints_LocalizedErrors(t *testing.T) {
	mux := newTestMux(t, &stubCatalog{})

	rec := do(t, mux, http.MethodPut, "/settings/language", map[string]string{"language": "fr"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fr", decode[settingsView](t, rec).Language)

	// Error messages follow the active language.
	rec = do(t, mux, http.MethodPost, "/auth/signin", map[string]string{
		"email": "jane@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "L'email doit se terminer par @gmail.com", decode[errorResponse](t, rec).Message)

	rec = do(t, mux, http.MethodPost, "/settings/theme/toggle", nil)
	assert.Equal(t, "dark", decode[settingsView](t, rec).Theme)

	rec = do(t, mux, http.MethodPost, "/settings/language/toggle", nil)
	assert.Equal(t, "en", decode[settingsView](t, rec).Language)
}

func TestEncodeEvent(t *testing.T) {
	h := &Handler{}
	frame, ok := h.encodeEvent(settings.ThemeChangedEvent{Theme: "dark"})
	require.True(t, ok)
	s := string(frame)
	assert.True(t, strings.HasPrefix(s, "event: theme-changed\n"))
	assert.Contains(t, s, `data: {"theme":"dark"}`)
	assert.True(t, strings.HasSuffix(s, "\n\n"))

	_, ok = h.encodeEvent(struct{ X int }{1})
	assert.False(t, ok, "unknown events are not streamed")

	frame, ok = h.encodeEvent(auth.SignedOutEvent{})
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(string(frame), "event: user-signed-out\n"))
}
