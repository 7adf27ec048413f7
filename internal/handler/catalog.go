package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/vitrine-shop/vitrine/internal/browse"
	"github.com/vitrine-shop/vitrine/internal/domain/catalog"
	"github.com/vitrine-shop/vitrine/internal/source"
)

type catalogView struct {
	Products   []productView `json:"products"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	PageSize   int           `json:"pageSize"`
}

func (h *Handler) toCatalogView(le browse.LoadedEvent) catalogView {
	return catalogView{
		Products:   toProductViews(le.Products),
		Total:      le.Total,
		Page:       le.Page,
		TotalPages: le.TotalPages,
		PageSize:   h.browse.PageSize(),
	}
}

// respondCatalog answers with the last loaded page. Load errors fall back to
// the previously displayed state, mirroring how the storefront keeps stale
// results on screen during an outage.
func (h *Handler) respondCatalog(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil && !errors.Is(err, source.ErrUnavailable) {
		writeError(w, r, http.StatusInternalServerError, h.translate("general.error"))
		return
	}

	h.viewMu.Lock()
	view := h.toCatalogView(h.lastView)
	h.viewMu.Unlock()

	if err != nil && view.Total == 0 && len(view.Products) == 0 {
		// Nothing displayable at all.
		writeError(w, r, http.StatusBadGateway, "catalog source unavailable")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) getCatalog(w http.ResponseWriter, r *http.Request) {
	h.respondCatalog(w, r, h.browse.Load(r.Context()))
}

func (h *Handler) getCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": h.browse.Categories(r.Context()),
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		writeError(w, r, http.StatusBadGateway, "catalog source unavailable")
		return
	}
	writeJSON(w, http.StatusOK, toProductView(*p))
}

func (h *Handler) getRecommendations(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Recommendations(r.Context(), queryInt(r, "limit", 4))
	if err != nil {
		writeError(w, r, http.StatusBadGateway, "catalog source unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": toProductViews(products)})
}

func (h *Handler) getFeatured(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.FeaturedProducts(r.Context(), queryInt(r, "limit", 8))
	if err != nil {
		writeError(w, r, http.StatusBadGateway, "catalog source unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": toProductViews(products)})
}

func (h *Handler) putCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	h.respondCatalog(w, r, h.browse.SetCategory(r.Context(), req.Category))
}

func (h *Handler) putSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"q"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	// The reload may be debounced; answer with the current view either way.
	h.respondCatalog(w, r, h.browse.SetSearch(r.Context(), req.Query))
}

func (h *Handler) putSort(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sort string `json:"sort"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	h.respondCatalog(w, r, h.browse.SetSort(r.Context(), catalog.SortKey(req.Sort)))
}

func (h *Handler) putPriceBounds(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	bound := func(v *float64) decimal.NullDecimal {
		if v == nil {
			return decimal.NullDecimal{}
		}
		return decimal.NullDecimal{Decimal: decimal.NewFromFloat(*v), Valid: true}
	}
	h.respondCatalog(w, r, h.browse.SetPriceBounds(r.Context(), bound(req.Min), bound(req.Max)))
}

func (h *Handler) toggleRating(w http.ResponseWriter, r *http.Request) {
	threshold, ok := pathInt(r, "threshold")
	if !ok || threshold < 1 || threshold > 5 {
		writeError(w, r, http.StatusBadRequest, "invalid rating threshold")
		return
	}
	h.respondCatalog(w, r, h.browse.ToggleRating(r.Context(), threshold))
}

func (h *Handler) clearFilters(w http.ResponseWriter, r *http.Request) {
	h.respondCatalog(w, r, h.browse.ClearFilters(r.Context()))
}

func (h *Handler) putPage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page int `json:"page"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	h.respondCatalog(w, r, h.browse.SetPage(r.Context(), req.Page))
}
