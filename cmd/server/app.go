package main

import (
	"net/http"

	"github.com/diewo77/go-quotes/auth"
	"github.com/diewo77/go-quotes/httpx"
	"github.com/diewo77/go-quotes/i18n"
	"github.com/diewo77/go-quotes/internal/handlers"
	"github.com/diewo77/go-quotes/internal/session"
	"go.uber.org/zap"
)

// RouterConfig holds the configured handlers and the shared state behind them.
type RouterConfig struct {
	Gate  *auth.Gate
	Store *session.Store

	AuthHandler  *handlers.AuthHandler
	QuoteHandler *handlers.QuoteHandler
}

// NewRouterConfig wires the handlers around one session store.
func NewRouterConfig(gate *auth.Gate, store *session.Store, status handlers.CatalogStatus, log *zap.Logger) *RouterConfig {
	return &RouterConfig{
		Gate:         gate,
		Store:        store,
		AuthHandler:  handlers.NewAuthHandler(gate, store, log),
		QuoteHandler: handlers.NewQuoteHandler(store, status, log),
	}
}

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	routerCfg *RouterConfig
	log       *zap.Logger
}

// NewApp creates a new application with all routes configured.
func NewApp(routerCfg *RouterConfig, log *zap.Logger) *App {
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
		log:       log,
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler := a.routerCfg.Gate.Middleware(withPreferences(a.mux))
	handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	// Public
	ah := a.routerCfg.AuthHandler
	a.mux.HandleFunc("GET /healthz", a.health)
	a.mux.HandleFunc("GET /login", ah.Login)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("POST /logout", ah.Logout)

	// Quote builder, one quote per session
	qh := a.routerCfg.QuoteHandler
	a.mux.Handle("GET /{$}", a.requireSession(http.HandlerFunc(qh.Page)))
	a.mux.Handle("POST /quote/items", a.requireSession(http.HandlerFunc(qh.AddItem)))
	a.mux.Handle("POST /quote/items/{index}", a.requireSession(http.HandlerFunc(qh.UpdateItem)))
	a.mux.Handle("POST /quote/items/{index}/delete", a.requireSession(http.HandlerFunc(qh.RemoveItem)))
	a.mux.Handle("POST /quote/clear", a.requireSession(http.HandlerFunc(qh.Clear)))

	// JSON API
	a.mux.Handle("GET /api/products", a.requireSession(http.HandlerFunc(qh.Products)))
	a.mux.Handle("GET /api/quote", a.requireSession(http.HandlerFunc(qh.Quote)))
	a.mux.Handle("POST /api/quote/reconcile", a.requireSession(http.HandlerFunc(qh.Reconcile)))
}

// requireSession lets the request through when it carries a live session.
// With no password configured a fresh session is started instead of asking
// for a login.
func (a *App) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := a.routerCfg.Store
		if id, ok := auth.SessionIDFromContext(r.Context()); ok && store.Exists(id) {
			next.ServeHTTP(w, r)
			return
		}
		if !a.routerCfg.Gate.Open() {
			auth.Deny(w, r)
			return
		}
		sess := store.Create()
		a.routerCfg.Gate.CreateSession(w, sess.ID)
		a.log.Debug("session started", zap.String("session", sess.ID))
		next.ServeHTTP(w, r.WithContext(auth.WithSessionID(r.Context(), sess.ID)))
	})
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": a.routerCfg.Store.Len(),
		"products": a.routerCfg.Store.Resolver().Catalog().Len(),
	})
}

// withPreferences picks the UI language from the query, a cookie or the
// Accept-Language header, in that order.
func withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie("lang"); err == nil && i18n.Supported(c.Value) {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); i18n.Supported(q) {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
			})
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}
