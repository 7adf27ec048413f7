package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/vitrine-shop/vitrine/internal/domain/cart"
)

func (h *Handler) getCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID int `json:"productId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := h.catalog.Product(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, http.StatusBadGateway, "catalog source unavailable")
		return
	}

	h.cart.AddItem(r.Context(), p.ID, p.Title, p.Price, p.Thumbnail)
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	h.cart.SetQuantity(r.Context(), id, req.Quantity)
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}

	h.cart.RemoveItem(r.Context(), id)
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear(r.Context())
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) applyDiscount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if !h.cart.ApplyDiscount(r.Context(), req.Code) {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid discount code")
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) removeDiscount(w http.ResponseWriter, r *http.Request) {
	h.cart.RemoveDiscount(r.Context())
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) getSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, toSummaryView(h.cart.Summarize()))
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.cart.Checkout(r.Context())
	if err != nil {
		if errors.Is(err, cart.ErrEmptyCart) {
			writeError(w, r, http.StatusConflict, h.translate("cart.empty"))
			return
		}
		writeError(w, r, http.StatusInternalServerError, h.translate("general.error"))
		return
	}

	writeJSON(w, http.StatusOK, receiptView{
		ID:        receipt.ID,
		Summary:   toSummaryView(receipt.Summary),
		CreatedAt: receipt.CreatedAt,
	})
}

func (h *Handler) exportCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.cart.ExportCart())
}

func (h *Handler) importCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []cart.LineItem `json:"items"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	h.cart.ImportCart(r.Context(), req.Items)
	writeJSON(w, http.StatusOK, h.cartView())
}
