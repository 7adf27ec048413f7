package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/vitrine-shop/vitrine/internal/auth"
)

type identityView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := h.auth.SignIn(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentialFormat) {
			writeError(w, r, http.StatusUnauthorized, h.translate("auth.email-required"))
			return
		}
		writeError(w, r, http.StatusInternalServerError, h.translate("general.error"))
		return
	}
	writeJSON(w, http.StatusOK, identityView(id))
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	id, err := h.auth.SignUp(req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentialFormat) {
			writeError(w, r, http.StatusUnauthorized, h.translate("auth.email-required"))
			return
		}
		writeError(w, r, http.StatusInternalServerError, h.translate("general.error"))
		return
	}
	writeJSON(w, http.StatusOK, identityView(id))
}

func (h *Handler) signOut(w http.ResponseWriter, _ *http.Request) {
	h.auth.SignOut()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, ok := h.auth.Current()
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, identityView(id))
}

type settingsView struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
}

func (h *Handler) settingsView() settingsView {
	return settingsView{
		Language: h.settings.Language(),
		Theme:    h.settings.Theme(),
	}
}

func (h *Handler) getSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.settingsView())
}

func (h *Handler) putLanguage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Language string `json:"language"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	h.settings.SetLanguage(r.Context(), req.Language)
	writeJSON(w, http.StatusOK, h.settingsView())
}

func (h *Handler) putTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	h.settings.SetTheme(r.Context(), req.Theme)
	writeJSON(w, http.StatusOK, h.settingsView())
}

func (h *Handler) toggleLanguage(w http.ResponseWriter, r *http.Request) {
	h.settings.ToggleLanguage(r.Context())
	writeJSON(w, http.StatusOK, h.settingsView())
}

func (h *Handler) toggleTheme(w http.ResponseWriter, r *http.Request) {
	h.settings.ToggleTheme(r.Context())
	writeJSON(w, http.StatusOK, h.settingsView())
}
