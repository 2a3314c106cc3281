package handlers

import (
	"net/http"

	"github.com/diewo77/go-quotes/auth"
	"github.com/diewo77/go-quotes/internal/session"
	"github.com/diewo77/go-quotes/view"
	"go.uber.org/zap"
)

type AuthHandler struct {
	gate  *auth.Gate
	store *session.Store
	log   *zap.Logger
}

func NewAuthHandler(gate *auth.Gate, store *session.Store, log *zap.Logger) *AuthHandler {
	return &AuthHandler{gate: gate, store: store, log: log}
}

// Login shows the password form and, on POST, starts a new quote session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.gate.Open() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "")
		return
	}

	if !h.gate.Check(r.FormValue("password")) {
		h.log.Info("login rejected", zap.String("remote", r.RemoteAddr))
		h.render(w, r, http.StatusUnauthorized, "invalid_password")
		return
	}

	if id, ok := auth.SessionIDFromContext(r.Context()); ok {
		h.store.Delete(id)
	}
	sess := h.store.Create()
	h.gate.CreateSession(w, sess.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout drops the session and its quote.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := auth.SessionIDFromContext(r.Context()); ok {
		h.store.Delete(id)
	}
	auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, status int, errCode string) {
	data := map[string]any{"IsLoggedIn": false}
	if errCode != "" {
		data["Error"] = errCode
	}
	if err := view.RenderStatus(w, r, status, "login.html", data); err != nil {
		h.log.Error("render login page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
