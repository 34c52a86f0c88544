package handlers

import (
	"net/http"
	"time"

	"charityprep/internal/config"
	custommiddleware "charityprep/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the API routes and middleware
func NewRouter(cfg *config.Config, compliance *ComplianceHandler, health *HealthHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", health.Health)

	limiter := custommiddleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Use(custommiddleware.CORS(cfg.AllowedOrigins))
		r.Use(limiter.Middleware)
		r.Use(custommiddleware.Timeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second))

		r.Route("/organizations/{id}", func(r chi.Router) {
			r.Get("/compliance", compliance.GetCompliance)
			r.Get("/annual-return", compliance.GetAnnualReturn)
			r.Get("/annual-return/export", compliance.ExportAnnualReturn)
		})

		r.With(custommiddleware.RequireAPIKey(cfg.AdminAPIKey)).Post("/admin/snapshots", compliance.RunSnapshots)
	})

	return r
}
