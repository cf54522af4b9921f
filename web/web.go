// Package web provides the HTTP API surface: schema documents, method
// dispatch, alerts, health, and metrics.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pelagos/shoal/adapters/metrics"
	"github.com/pelagos/shoal/core/alert"
	"github.com/pelagos/shoal/core/method"
)

// Handler provides the API endpoints.
type Handler struct {
	methods     *method.Registry
	alerts      *alert.Service
	collector   *metrics.Collector
	metricsPath string
	logger      zerolog.Logger
	started     time.Time
}

// Deps contains dependencies for the web handler.
type Deps struct {
	Methods     *method.Registry
	Alerts      *alert.Service
	Collector   *metrics.Collector // nil disables the metrics endpoint
	MetricsPath string             // defaults to /metrics
	Logger      zerolog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(deps Deps) *Handler {
	path := deps.MetricsPath
	if path == "" {
		path = "/metrics"
	}
	return &Handler{
		methods:     deps.Methods,
		alerts:      deps.Alerts,
		collector:   deps.Collector,
		metricsPath: path,
		logger:      deps.Logger,
		started:     time.Now(),
	}
}

// Router returns the API router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", h.Health)

	if h.collector != nil {
		r.Handle(h.metricsPath, promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/schemas", h.ListSchemas)
		r.Get("/schemas/{name}", h.GetSchema)
		r.Get("/methods", h.ListMethods)
		r.Post("/methods/{method}", h.CallMethod)
		r.Get("/alerts", h.ListAlerts)
	})

	return r
}

// logRequests logs each request and records HTTP metrics when a collector
// is configured. The route pattern, not the raw path, is used as the
// metric label to keep cardinality bounded.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", elapsed).
			Msg("request")

		if h.collector != nil {
			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			status := strconv.Itoa(ww.Status())
			h.collector.RequestsTotal.WithLabelValues(r.Method, pattern, status).Inc()
			h.collector.RequestDuration.WithLabelValues(r.Method, pattern, status).Observe(elapsed.Seconds())
		}
	})
}
