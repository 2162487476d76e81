// Package httpapi assembles the HTTP surface: global middleware, domain
// handlers, health, and metrics.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attestgate/pkg/platform/httputil"
	"attestgate/pkg/platform/middleware/auth"
	"attestgate/pkg/platform/middleware/metadata"
	"attestgate/pkg/platform/middleware/requestid"
)

// Registrar is any handler that mounts its routes on the router.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// NewRouter wires global middleware and mounts every handler.
func NewRouter(logger *slog.Logger, validator auth.Validator, checks map[string]HealthCheck, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(requestid.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(auth.Authenticate(validator, logger))

	for _, h := range handlers {
		h.Register(r)
	}

	r.Get("/healthz", healthHandler(checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		out := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				out[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			out[name] = "ok"
		}
		httputil.WriteJSON(w, status, out)
	}
}
