// Package handler exposes logic upgrades over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attestgate/pkg/domain"
	"attestgate/pkg/platform/httputil"
	"attestgate/pkg/platform/middleware/auth"
	"attestgate/pkg/requestcontext"
)

// Coordinator is the upgrade surface the handler forwards to.
type Coordinator interface {
	Upgrade(ctx context.Context, caller domain.Address, version string) error
	ActiveVersion() string
}

type Handler struct {
	coordinator Coordinator
	logger      *slog.Logger
}

func New(coordinator Coordinator, logger *slog.Logger) *Handler {
	return &Handler{coordinator: coordinator, logger: logger}
}

// Register mounts the upgrade route. Requires an authenticated caller; the
// admin role check lives in the coordinator.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireCaller)
		r.Post("/upgrade", h.Upgrade)
	})
}

type upgradeRequest struct {
	Version string `json:"version"`
}

func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[upgradeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.coordinator.Upgrade(ctx, requestcontext.Caller(ctx), req.Version); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"active": h.coordinator.ActiveVersion()})
}
