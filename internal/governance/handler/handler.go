// Package handler exposes governance administration over HTTP.
package handler

import (
	"context"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
	"attestgate/pkg/platform/httputil"
	"attestgate/pkg/platform/middleware/auth"
	"attestgate/pkg/requestcontext"
)

// Service is the governance surface the handler forwards to.
type Service interface {
	SetTreasury(ctx context.Context, caller, addr domain.Address) error
	SetTransactionCostUSD(ctx context.Context, caller domain.Address, cost *big.Int) error
	SetDataTypeStatus(ctx context.Context, caller domain.Address, dt domain.DataType, active bool) error
	AllowTokenPayment(ctx context.Context, caller, token domain.Address, enabled bool, oracle domain.Address) error
	Pause(ctx context.Context, caller domain.Address) error
	Unpause(ctx context.Context, caller domain.Address) error
	GrantRole(ctx context.Context, caller domain.Address, role domain.Role, addr domain.Address) error
	RevokeRole(ctx context.Context, caller domain.Address, role domain.Role, addr domain.Address) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the governance routes. All require an authenticated
// caller; admin and pauser role checks live in the service.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireCaller)
		r.Post("/governance/treasury", h.SetTreasury)
		r.Post("/governance/transaction-cost", h.SetTransactionCost)
		r.Post("/governance/data-types", h.SetDataTypeStatus)
		r.Post("/governance/tokens", h.AllowTokenPayment)
		r.Post("/governance/pause", h.Pause)
		r.Post("/governance/unpause", h.Unpause)
		r.Post("/governance/roles/grant", h.GrantRole)
		r.Post("/governance/roles/revoke", h.RevokeRole)
	})
}

type treasuryRequest struct {
	Treasury domain.Address `json:"treasury"`
}

func (h *Handler) SetTreasury(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[treasuryRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.SetTreasury(ctx, requestcontext.Caller(ctx), req.Treasury); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}

type transactionCostRequest struct {
	CostUSD string `json:"cost_usd"`
}

func (r transactionCostRequest) Validate() error {
	if _, ok := new(big.Int).SetString(r.CostUSD, 10); !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "cost_usd is not an integer")
	}
	return nil
}

func (h *Handler) SetTransactionCost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[transactionCostRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	cost, _ := new(big.Int).SetString(req.CostUSD, 10)
	if err := h.service.SetTransactionCostUSD(ctx, requestcontext.Caller(ctx), cost); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}

type dataTypeRequest struct {
	DataType domain.DataType `json:"data_type"`
	Active   bool            `json:"active"`
}

func (h *Handler) SetDataTypeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[dataTypeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.SetDataTypeStatus(ctx, requestcontext.Caller(ctx), req.DataType, req.Active); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}

type tokenPaymentRequest struct {
	Token   domain.Address `json:"token"`
	Enabled bool           `json:"enabled"`
	Oracle  domain.Address `json:"oracle"`
}

func (h *Handler) AllowTokenPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[tokenPaymentRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.AllowTokenPayment(ctx, requestcontext.Caller(ctx), req.Token, req.Enabled, req.Oracle); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Pause(ctx, requestcontext.Caller(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}

func (h *Handler) Unpause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Unpause(ctx, requestcontext.Caller(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}

type roleRequest struct {
	Role    domain.Role    `json:"role"`
	Address domain.Address `json:"address"`
}

func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[roleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.GrantRole(ctx, requestcontext.Caller(ctx), req.Role, req.Address); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}

func (h *Handler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[roleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	if err := h.service.RevokeRole(ctx, requestcontext.Caller(ctx), req.Role, req.Address); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}
