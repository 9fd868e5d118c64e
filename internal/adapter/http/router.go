package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/ledgercheck/internal/adapter/http/handler"
	"github.com/iho/ledgercheck/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	IssueHandler  *handler.IssueHandler
	HealthHandler *handler.HealthHandler
	Logger        zerolog.Logger

	// Optional
	Metrics        middleware.HTTPObserver
	MetricsHandler http.Handler
	FixLimiter     *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/issues", func(r chi.Router) {
			r.Get("/", cfg.IssueHandler.List)
			r.Post("/recheck", cfg.IssueHandler.Recheck)
			r.Get("/{id}", cfg.IssueHandler.Get)

			r.Group(func(r chi.Router) {
				if cfg.FixLimiter != nil {
					r.Use(cfg.FixLimiter.Limit)
				}
				r.Post("/{id}/fixes/{index}", cfg.IssueHandler.ApplyFix)
			})
		})
	})

	return r
}
