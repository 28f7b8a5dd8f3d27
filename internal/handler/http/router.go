package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inteiros/GoStack-GoMarketplace/pkg/health"
	"github.com/inteiros/GoStack-GoMarketplace/pkg/middleware"
)

// NewRouter creates a chi router with all cart routes registered.
func NewRouter(provider CartProvider, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("cart"))
	r.Use(middleware.Tracing("cart"))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	h := NewCartHandler(logger)

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(WithCart(provider, logger))

		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Post("/items/{id}/increment", h.Increment)
		r.Post("/items/{id}/decrement", h.Decrement)
	})

	return r
}
