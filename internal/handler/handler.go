// Package handler exposes the storefront over HTTP: catalog browsing, cart
// mutations, checkout, the mock sign-in gate, preferences, and a server-sent
// event stream mirroring the internal notification bus.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/vitrine-shop/vitrine/internal/auth"
	"github.com/vitrine-shop/vitrine/internal/browse"
	"github.com/vitrine-shop/vitrine/internal/domain/cart"
	"github.com/vitrine-shop/vitrine/internal/domain/catalog"
	"github.com/vitrine-shop/vitrine/internal/i18n"
	"github.com/vitrine-shop/vitrine/internal/settings"
)

// Catalog is the slice of the source client the handler needs beyond what the
// browse controller covers.
type Catalog interface {
	Product(ctx context.Context, id int) (*catalog.Product, error)
	Recommendations(ctx context.Context, limit int) ([]catalog.Product, error)
	FeaturedProducts(ctx context.Context, limit int) ([]catalog.Product, error)
}

// Bus is the event bus surface the handler consumes.
type Bus interface {
	Subscribe(fn func(e any)) (cancel func())
}

// Handler wires the domain services to HTTP routes.
type Handler struct {
	cart     *cart.Service
	browse   *browse.Controller
	catalog  Catalog
	auth     *auth.Service
	settings *settings.Service
	bus      Bus

	// viewMu guards the last loaded catalog page, kept current through the
	// bus so GET /catalog can answer without refetching.
	viewMu   sync.Mutex
	lastView browse.LoadedEvent
}

// NewHandler constructs a Handler and subscribes it to catalog load events.
func NewHandler(
	cartSvc *cart.Service,
	browseCtl *browse.Controller,
	catalogSrc Catalog,
	authSvc *auth.Service,
	settingsSvc *settings.Service,
	bus Bus,
) *Handler {
	h := &Handler{
		cart:     cartSvc,
		browse:   browseCtl,
		catalog:  catalogSrc,
		auth:     authSvc,
		settings: settingsSvc,
		bus:      bus,
	}
	bus.Subscribe(func(e any) {
		if le, ok := e.(browse.LoadedEvent); ok {
			h.viewMu.Lock()
			h.lastView = le
			h.viewMu.Unlock()
		}
	})
	return h
}

// Routes registers all storefront routes on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /catalog", h.getCatalog)
	mux.HandleFunc("GET /catalog/categories", h.getCategories)
	mux.HandleFunc("GET /catalog/products/{id}", h.getProduct)
	mux.HandleFunc("GET /catalog/recommendations", h.getRecommendations)
	mux.HandleFunc("GET /catalog/featured", h.getFeatured)
	mux.HandleFunc("PUT /catalog/category", h.putCategory)
	mux.HandleFunc("PUT /catalog/search", h.putSearch)
	mux.HandleFunc("PUT /catalog/sort", h.putSort)
	mux.HandleFunc("PUT /catalog/price", h.putPriceBounds)
	mux.HandleFunc("POST /catalog/ratings/{threshold}", h.toggleRating)
	mux.HandleFunc("DELETE /catalog/filters", h.clearFilters)
	mux.HandleFunc("PUT /catalog/page", h.putPage)

	mux.HandleFunc("GET /cart", h.getCart)
	mux.HandleFunc("POST /cart/items", h.addItem)
	mux.HandleFunc("PUT /cart/items/{id}", h.setQuantity)
	mux.HandleFunc("DELETE /cart/items/{id}", h.removeItem)
	mux.HandleFunc("DELETE /cart", h.clearCart)
	mux.HandleFunc("POST /cart/discount", h.applyDiscount)
	mux.HandleFunc("DELETE /cart/discount", h.removeDiscount)
	mux.HandleFunc("GET /cart/summary", h.getSummary)
	mux.HandleFunc("GET /cart/export", h.exportCart)
	mux.HandleFunc("POST /cart/import", h.importCart)
	mux.HandleFunc("POST /checkout", h.checkout)

	mux.HandleFunc("POST /auth/signin", h.signIn)
	mux.HandleFunc("POST /auth/signup", h.signUp)
	mux.HandleFunc("POST /auth/signout", h.signOut)
	mux.HandleFunc("GET /auth/me", h.me)

	mux.HandleFunc("GET /settings", h.getSettings)
	mux.HandleFunc("PUT /settings/language", h.putLanguage)
	mux.HandleFunc("PUT /settings/theme", h.putTheme)
	mux.HandleFunc("POST /settings/language/toggle", h.toggleLanguage)
	mux.HandleFunc("POST /settings/theme/toggle", h.toggleTheme)

	mux.HandleFunc("GET /events", h.events)
}

// translate resolves a UI string in the active interface language.
func (h *Handler) translate(key string) string {
	return i18n.Translate(h.settings.Language(), key, nil)
}

// --- Response plumbing ---

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("request failed",
			zap.Int("status", status),
			zap.String("message", msg),
		)
	}
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func pathInt(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(r.PathValue(name))
	return v, err == nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && v > 0 {
		return v
	}
	return fallback
}

// --- View types ---

type productView struct {
	ID                 int     `json:"id"`
	Title              string  `json:"title"`
	Description        string  `json:"description,omitempty"`
	Price              float64 `json:"price"`
	DiscountedPrice    float64 `json:"discountedPrice"`
	DiscountPercentage float64 `json:"discountPercentage"`
	Rating             float64 `json:"rating"`
	Stock              int     `json:"stock"`
	StockStatus        string  `json:"stockStatus"`
	Brand              string  `json:"brand,omitempty"`
	Category           string  `json:"category"`
	Thumbnail          string  `json:"thumbnail"`
}

func toProductView(p catalog.Product) productView {
	return productView{
		ID:                 p.ID,
		Title:              p.Title,
		Description:        p.Description,
		Price:              p.Price.InexactFloat64(),
		DiscountedPrice:    p.DiscountedPrice().InexactFloat64(),
		DiscountPercentage: p.DiscountPercentage.InexactFloat64(),
		Rating:             p.Rating.InexactFloat64(),
		Stock:              p.Stock,
		StockStatus:        string(p.Status()),
		Brand:              p.Brand,
		Category:           p.Category,
		Thumbnail:          p.Thumbnail,
	}
}

func toProductViews(products []catalog.Product) []productView {
	out := make([]productView, len(products))
	for i, p := range products {
		out[i] = toProductView(p)
	}
	return out
}

type lineItemView struct {
	ProductID int     `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Image     string  `json:"image"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

func toLineItemViews(items []cart.LineItem) []lineItemView {
	out := make([]lineItemView, len(items))
	for i, li := range items {
		out[i] = lineItemView{
			ProductID: li.ID,
			Title:     li.Title,
			Price:     li.Price.InexactFloat64(),
			Image:     li.Image,
			Quantity:  li.Quantity,
			Subtotal:  li.Subtotal().InexactFloat64(),
		}
	}
	return out
}

type cartView struct {
	Items           []lineItemView `json:"items"`
	TotalItems      int            `json:"totalItems"`
	TotalPrice      float64        `json:"totalPrice"`
	DiscountedTotal float64        `json:"discountedTotal"`
	DiscountCode    string         `json:"discountCode,omitempty"`
}

func (h *Handler) cartView() cartView {
	code, _, _ := h.cart.Discount()
	return cartView{
		Items:           toLineItemViews(h.cart.Items()),
		TotalItems:      h.cart.TotalItems(),
		TotalPrice:      h.cart.TotalPrice().InexactFloat64(),
		DiscountedTotal: h.cart.DiscountedTotal().InexactFloat64(),
		DiscountCode:    code,
	}
}

type summaryItemView struct {
	ProductID int     `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

type summaryView struct {
	Items      []summaryItemView `json:"items"`
	TotalItems int               `json:"totalItems"`
	Subtotal   float64           `json:"subtotal"`
	Tax        float64           `json:"tax"`
	Shipping   float64           `json:"shipping"`
	Total      float64           `json:"total"`
}

func toSummaryView(s cart.Summary) summaryView {
	items := make([]summaryItemView, len(s.Items))
	for i, it := range s.Items {
		items[i] = summaryItemView{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price.InexactFloat64(),
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal.InexactFloat64(),
		}
	}
	return summaryView{
		Items:      items,
		TotalItems: s.TotalItems,
		Subtotal:   s.Subtotal.InexactFloat64(),
		Tax:        s.Tax.InexactFloat64(),
		Shipping:   s.Shipping.InexactFloat64(),
		Total:      s.Total.InexactFloat64(),
	}
}

type receiptView struct {
	ID        string      `json:"id"`
	Summary   summaryView `json:"summary"`
	CreatedAt time.Time   `json:"createdAt"`
}
