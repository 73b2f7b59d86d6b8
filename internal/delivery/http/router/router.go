package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/pricepulse-web/internal/delivery/http/handler"
	"github.com/user/pricepulse-web/internal/delivery/http/middleware"
	"github.com/user/pricepulse-web/internal/view"
	"github.com/user/pricepulse-web/pkg/metrics"
)

// RequestTimeout bounds a whole request, including a track flow.
const RequestTimeout = 60 * time.Second

func New(h *handler.Handler, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/api/health", h.HandleHealthCheck)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(view.Static()))))

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(RequestTimeout))
		r.Use(middleware.Session)

		r.Get("/", h.HandleHome)
		r.Post("/track", h.HandleTrack)
		r.Post("/alert", h.HandleHomeAlert)
		r.Get("/products/{id}", h.HandleProduct)
		r.Post("/products/{id}/alert", h.HandleProductAlert)
	})

	r.NotFound(h.NotFound)
	return r
}
