// Package handler exposes the query engine over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attestgate/internal/query/models"
	"attestgate/internal/query/service"
	"attestgate/pkg/domain"
	"attestgate/pkg/platform/httputil"
	"attestgate/pkg/platform/middleware/auth"
	"attestgate/pkg/requestcontext"
)

// Service is the query surface the handler forwards to.
type Service interface {
	LookupNonces(ctx context.Context, caller domain.Address, hashWalletSig domain.Hash, dataTypes []domain.DataType) (models.NonceLookup, error)
	LookupRecordedAt(ctx context.Context, hashWalletSig domain.Hash, owner domain.Address, dataTypes []domain.DataType) ([]uint64, error)
	QueryAttributesMatch(ctx context.Context, caller domain.Address, req service.MatchRequest) (models.MatchResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the query routes. Nonce lookups and paid matches are
// caller-bound; recorded-at can be asked about any address without
// credentials.
func (h *Handler) Register(r chi.Router) {
	r.Post("/query/recorded-at", h.LookupRecordedAt)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireCaller)
		r.Post("/query/nonces", h.LookupNonces)
		r.Post("/query/match", h.QueryAttributesMatch)
	})
}

type noncesRequest struct {
	HashWalletSig domain.Hash       `json:"hash_wallet_sig"`
	DataTypes     []domain.DataType `json:"data_types"`
}

func (h *Handler) LookupNonces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[noncesRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.service.LookupNonces(ctx, requestcontext.Caller(ctx), req.HashWalletSig, req.DataTypes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type recordedAtRequest struct {
	HashWalletSig domain.Hash       `json:"hash_wallet_sig"`
	Owner         domain.Address    `json:"owner"`
	DataTypes     []domain.DataType `json:"data_types"`
}

func (h *Handler) LookupRecordedAt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[recordedAtRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.service.LookupRecordedAt(ctx, req.HashWalletSig, req.Owner, req.DataTypes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]uint64{"recorded_at": out})
}

type matchRequest struct {
	HashWalletSig  domain.Hash       `json:"hash_wallet_sig"`
	Owner          domain.Address    `json:"owner"`
	NonceProofs    []domain.Hash     `json:"nonce_proofs"`
	DataTypes      []domain.DataType `json:"data_types"`
	RawValueHashes []domain.Hash     `json:"raw_value_hashes"`
	PaymentToken   domain.Address    `json:"payment_token"`
}

func (h *Handler) QueryAttributesMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[matchRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	out, err := h.service.QueryAttributesMatch(ctx, requestcontext.Caller(ctx), service.MatchRequest{
		HashWalletSig:  req.HashWalletSig,
		Owner:          req.Owner,
		NonceProofs:    req.NonceProofs,
		DataTypes:      req.DataTypes,
		RawValueHashes: req.RawValueHashes,
		PaymentToken:   req.PaymentToken,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
