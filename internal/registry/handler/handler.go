// Package handler exposes attestation ingest over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"attestgate/internal/registry/service"
	"attestgate/pkg/domain"
	"attestgate/pkg/platform/httputil"
	"attestgate/pkg/platform/middleware/auth"
	"attestgate/pkg/requestcontext"
)

// Service is the ingest surface the handler forwards to.
type Service interface {
	Ingest(ctx context.Context, caller domain.Address, batch service.Batch) error
	IngestOne(ctx context.Context, caller domain.Address, walletKey, attestation, nonce, ky0xID domain.Hash, dt domain.DataType, version uint64) error
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the ingest routes. Both require an authenticated caller;
// the attestor role check lives in the service.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireCaller)
		r.Post("/attestations", h.Ingest)
		r.Post("/attestations/one", h.IngestOne)
	})
}

type ingestRequest struct {
	WalletKeys             []domain.Hash     `json:"wallet_keys"`
	AttestationCommitments []domain.Hash     `json:"attestation_commitments"`
	NonceCommitments       []domain.Hash     `json:"nonce_commitments"`
	Ky0xIDs                []domain.Hash     `json:"ky0x_ids"`
	DataTypes              []domain.DataType `json:"data_types"`
	Versions               []uint64          `json:"versions"`
}

func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ingestRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	err := h.service.Ingest(ctx, requestcontext.Caller(ctx), service.Batch{
		WalletKeys:             req.WalletKeys,
		AttestationCommitments: req.AttestationCommitments,
		NonceCommitments:       req.NonceCommitments,
		Ky0xIDs:                req.Ky0xIDs,
		DataTypes:              req.DataTypes,
		Versions:               req.Versions,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]int{"ingested": len(req.WalletKeys)})
}

type ingestOneRequest struct {
	WalletKey             domain.Hash     `json:"wallet_key"`
	AttestationCommitment domain.Hash     `json:"attestation_commitment"`
	NonceCommitment       domain.Hash     `json:"nonce_commitment"`
	Ky0xID                domain.Hash     `json:"ky0x_id"`
	DataType              domain.DataType `json:"data_type"`
	Version               uint64          `json:"version"`
}

func (h *Handler) IngestOne(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ingestOneRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	err := h.service.IngestOne(ctx, requestcontext.Caller(ctx),
		req.WalletKey, req.AttestationCommitment, req.NonceCommitment, req.Ky0xID,
		req.DataType, req.Version,
	)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]int{"ingested": 1})
}
