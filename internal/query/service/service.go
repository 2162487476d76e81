// Package service implements the query engine: free nonce and recency
// lookups, and the fee-paid match verification that recomputes attestation
// commitments against disclosed values.
package service

import (
	"context"
	"log/slog"
	"math/big"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"attestgate/internal/events"
	"attestgate/internal/query/metrics"
	"attestgate/internal/query/models"
	registrymodels "attestgate/internal/registry/models"
	"attestgate/internal/registry/store"
	"attestgate/pkg/commitment"
	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
	"attestgate/pkg/requestcontext"
)

var tracer = otel.Tracer("attestgate/query")

// Guard is the governance surface queries need. Only the paid match path is
// pause-gated; pure reads stay available while paused.
type Guard interface {
	RequireNotPaused(ctx context.Context) error
	Treasury(ctx context.Context) (domain.Address, error)
}

// FeeSource computes the fee for a payment token. The upgrade coordinator
// provides it, so swapping logic versions changes the fee computation
// without touching this service.
type FeeSource interface {
	FeeFor(ctx context.Context, token domain.Address) (*big.Int, error)
}

// Collector pulls the computed fee from the payer into the treasury.
type Collector interface {
	Collect(ctx context.Context, token, payer, treasury domain.Address, amount *big.Int) error
}

type Service struct {
	records   store.Store
	guard     Guard
	fees      FeeSource
	collector Collector
	publisher events.Publisher
	logger    *slog.Logger
}

func New(records store.Store, guard Guard, fees FeeSource, collector Collector, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		records:   records,
		guard:     guard,
		fees:      fees,
		collector: collector,
		publisher: publisher,
		logger:    logger,
	}
}

// LookupNonces returns the stored nonce commitment for each requested data
// type under the caller's own wallet key. The wallet key is derived from the
// caller identity, so one account cannot read another's nonces.
func (s *Service) LookupNonces(ctx context.Context, caller domain.Address, hashWalletSig domain.Hash, dataTypes []domain.DataType) (out models.NonceLookup, err error) {
	defer func() { metrics.ObserveLookup("nonces", err) }()

	walletKey := commitment.WalletKey(hashWalletSig, caller)
	out = models.NonceLookup{
		Statuses: make([]models.LookupStatus, len(dataTypes)),
		Nonces:   make([]domain.Hash, len(dataTypes)),
	}
	for i, dt := range dataTypes {
		rec, err := s.getRecord(ctx, walletKey, dt)
		if err != nil {
			return models.NonceLookup{}, err
		}
		if rec == nil {
			out.Statuses[i] = models.LookupNotFound
			continue
		}
		out.Nonces[i] = rec.NonceCommitment
	}
	return out, nil
}

// LookupRecordedAt returns the ledger position each record was written at,
// zero where absent. Unlike nonce lookups it takes an explicit owner and can
// be asked about any address.
func (s *Service) LookupRecordedAt(ctx context.Context, hashWalletSig domain.Hash, owner domain.Address, dataTypes []domain.DataType) (out []uint64, err error) {
	defer func() { metrics.ObserveLookup("recorded_at", err) }()

	walletKey := commitment.WalletKey(hashWalletSig, owner)
	out = make([]uint64, len(dataTypes))
	for i, dt := range dataTypes {
		rec, err := s.getRecord(ctx, walletKey, dt)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out[i] = rec.RecordedAt
		}
	}
	return out, nil
}

// MatchRequest carries the parallel arrays of a match verification. The
// three per-item arrays must be the same length.
type MatchRequest struct {
	HashWalletSig  domain.Hash
	Owner          domain.Address
	NonceProofs    []domain.Hash
	DataTypes      []domain.DataType
	RawValueHashes []domain.Hash
	PaymentToken   domain.Address
}

// QueryAttributesMatch verifies disclosed attribute values against stored
// attestation commitments and pulls the query fee from the caller. Payment
// failure fails the whole call; no results are released.
func (s *Service) QueryAttributesMatch(ctx context.Context, caller domain.Address, req MatchRequest) (out models.MatchResult, err error) {
	start := time.Now()
	defer func() { metrics.ObserveMatch(time.Since(start).Seconds(), err) }()

	ctx, span := tracer.Start(ctx, "QueryAttributesMatch", trace.WithAttributes(
		attribute.Int("items", len(req.DataTypes)),
	))
	defer span.End()

	if err = s.guard.RequireNotPaused(ctx); err != nil {
		return models.MatchResult{}, err
	}
	n := len(req.NonceProofs)
	if len(req.DataTypes) != n || len(req.RawValueHashes) != n {
		return models.MatchResult{}, dErrors.New(dErrors.CodeInvalidInput, "not same length")
	}

	walletKey := commitment.WalletKey(req.HashWalletSig, req.Owner)
	out = models.MatchResult{
		Statuses:   make([]models.MatchStatus, n),
		RecordedAt: make([]uint64, n),
	}
	for i := 0; i < n; i++ {
		rec, err := s.getRecord(ctx, walletKey, req.DataTypes[i])
		if err != nil {
			return models.MatchResult{}, err
		}
		if rec == nil {
			out.Statuses[i] = models.MatchNotFound
			continue
		}
		out.RecordedAt[i] = rec.RecordedAt
		out.Ky0xID = rec.Ky0xID

		recomputed := commitment.Attestation(rec.Ky0xID, req.NonceProofs[i], walletKey, req.RawValueHashes[i])
		if recomputed == rec.AttestationCommitment {
			out.Statuses[i] = models.MatchMatch
		} else {
			out.Statuses[i] = models.MatchNoMatch
		}
	}

	fee, err := s.fees.FeeFor(ctx, req.PaymentToken)
	if err != nil {
		return models.MatchResult{}, err
	}
	treasury, err := s.guard.Treasury(ctx)
	if err != nil {
		return models.MatchResult{}, err
	}
	if err = s.collector.Collect(ctx, req.PaymentToken, caller, treasury, fee); err != nil {
		return models.MatchResult{}, err
	}
	out.PaymentAmount = fee

	span.SetAttributes(attribute.String("fee", fee.String()))
	s.publishMatch(ctx, req, out)
	return out, nil
}

// getRecord maps absence to a nil record so callers can treat it as a
// status.
func (s *Service) getRecord(ctx context.Context, walletKey domain.Hash, dt domain.DataType) (*registrymodels.Record, error) {
	rec, err := s.records.Get(ctx, walletKey, dt)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) publishMatch(ctx context.Context, req MatchRequest, result models.MatchResult) {
	ev := events.Event{
		Type:      events.TypeMatchQueried,
		Timestamp: requestcontext.Now(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Actor:     requestcontext.Caller(ctx).String(),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		Payload: map[string]any{
			"owner":          req.Owner,
			"payment_token":  req.PaymentToken,
			"statuses":       result.Statuses,
			"payment_amount": result.PaymentAmount.String(),
		},
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("event publish failed", "type", ev.Type, "error", err)
	}
}
