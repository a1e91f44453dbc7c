// Package storefront is the JSON API the menu page talks to.
package storefront

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"LittleLemon/internal/kv"
	"LittleLemon/internal/session"
	"LittleLemon/pkg/kit"
)

const readyTimeout = 1 * time.Second

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	Store      kv.Store
	Sessions   *session.Registry
	Tokens     *session.TokenMaker
	RatePerMin int
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	r := chi.NewRouter()
	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps))

	r.Get("/menu", s.listMenu)
	r.Get("/menu/categories", s.categories)
	r.With(session.Attach(deps.Tokens, deps.Sessions, deps.Log)).Get("/menu/{id}", s.getItem)

	newSessions := kit.NewIPRateLimiter(deps.RatePerMin, time.Minute)
	mutations := kit.NewIPRateLimiter(deps.RatePerMin, time.Minute)

	r.Group(func(sr chi.Router) {
		sr.Use(session.LimitNew(deps.Tokens, newSessions.Middleware))
		sr.Use(session.Middleware(deps.Tokens, deps.Sessions, deps.Log))

		sr.Get("/cart", s.getCart)
		sr.Get("/cart/export.xlsx", s.exportCart)
		sr.Get("/favorites", s.favorites)
		sr.Get("/theme", s.theme)
		sr.Get("/notifications", s.notifications)

		sr.Group(func(mr chi.Router) {
			mr.Use(mutations.Middleware)
			mr.Post("/cart/items", s.addToCart)
			mr.Delete("/cart/items/{id}", s.removeFromCart)
			mr.Post("/favorites/{id}/toggle", s.toggleFavorite)
			mr.Post("/theme/toggle", s.toggleTheme)
		})
	})

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RoutePattern))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(deps HTTPDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := deps.Store.Ping(ctx); err != nil {
			deps.Log.Warn("readyz failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func isTimeoutErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
