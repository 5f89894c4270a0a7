// Package httptransport is the thin HTTP layer. It delegates to the
// catalog service without embedding business logic so transport concerns
// remain isolated.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fedreg/internal/platform/metrics"
	"fedreg/internal/platform/middleware"
)

// HealthChecker reports readiness of a backing dependency.
type HealthChecker func(ctx context.Context) error

// NewRouter wires all public endpoints behind the shared middleware
// chain. No request timeout is applied: a first-request backfill blocks
// until the upstream answers.
func NewRouter(h *Handler, logger *slog.Logger, m *metrics.Metrics, health HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))

	r.Get("/agencies", h.handleListAgencies)
	r.Get("/agencies/{agencyID}", h.handleGetAgency)
	r.Get("/agencies/{agencyID}/regulations/{year}", h.handleAgencyRegulations)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
