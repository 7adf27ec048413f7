package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-faster/sdk/zctx"

	"github.com/vitrine-shop/vitrine/internal/auth"
	"github.com/vitrine-shop/vitrine/internal/browse"
	"github.com/vitrine-shop/vitrine/internal/domain/cart"
	"github.com/vitrine-shop/vitrine/internal/settings"
)

// events streams the notification bus as server-sent events so a thin client
// can re-render on every state change.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Deliveries are buffered so a slow client cannot stall Publish; events
	// beyond the buffer are dropped for this subscriber only.
	deliveries := make(chan []byte, 64)
	cancel := h.bus.Subscribe(func(e any) {
		frame, ok := h.encodeEvent(e)
		if !ok {
			return
		}
		select {
		case deliveries <- frame:
		default:
			zctx.From(r.Context()).Warn("event stream subscriber lagging, dropping event")
		}
	})
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame := <-deliveries:
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// encodeEvent maps an internal event to an SSE frame. Unknown event types are
// not streamed.
func (h *Handler) encodeEvent(e any) ([]byte, bool) {
	var (
		name    string
		payload any
	)

	switch ev := e.(type) {
	case cart.ChangedEvent:
		name = "cart-changed"
		payload = map[string]any{
			"items":           toLineItemViews(ev.Items),
			"totalItems":      ev.TotalItems,
			"totalPrice":      ev.TotalPrice.InexactFloat64(),
			"discountedTotal": ev.DiscountedTotal.InexactFloat64(),
			"discountCode":    ev.DiscountCode,
			"firstItem":       ev.FirstItem,
		}
	case browse.LoadedEvent:
		name = "catalog-loaded"
		payload = h.toCatalogView(ev)
	case auth.SignedInEvent:
		name = "user-signed-in"
		payload = identityView(ev.Identity)
	case auth.SignedOutEvent:
		name = "user-signed-out"
		payload = struct{}{}
	case settings.LanguageChangedEvent:
		name = "language-changed"
		payload = map[string]string{"language": ev.Language}
	case settings.ThemeChangedEvent:
		name = "theme-changed"
		payload = map[string]string{"theme": ev.Theme}
	default:
		return nil, false
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", name, data), true
}
