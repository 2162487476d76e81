// Package service implements attestation ingest. Batches are written
// atomically: every record lands or none does, and all records of one batch
// share the ledger position advanced for that call.
package service

import (
	"context"
	"log/slog"

	"attestgate/internal/events"
	"attestgate/internal/registry/metrics"
	"attestgate/internal/registry/models"
	"attestgate/internal/registry/store"
	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
	"attestgate/pkg/platform/tx"
	"attestgate/pkg/requestcontext"
)

const (
	minBatchSize = 1
	maxBatchSize = 9
)

// Guard is the governance surface ingest needs: role membership and the
// pause gate.
type Guard interface {
	RequireRole(ctx context.Context, role domain.Role, addr domain.Address) error
	RequireNotPaused(ctx context.Context) error
}

// Batch carries the parallel ingest arrays. All six must be the same length.
type Batch struct {
	WalletKeys             []domain.Hash     `json:"wallet_keys"`
	AttestationCommitments []domain.Hash     `json:"attestation_commitments"`
	NonceCommitments       []domain.Hash     `json:"nonce_commitments"`
	Ky0xIDs                []domain.Hash     `json:"ky0x_ids"`
	DataTypes              []domain.DataType `json:"data_types"`
	Versions               []uint64          `json:"versions"`
}

type transition struct {
	old *models.Record
	new models.Record
}

type Service struct {
	store     store.Store
	runner    tx.Runner
	guard     Guard
	publisher events.Publisher
	logger    *slog.Logger
}

func New(st store.Store, runner tx.Runner, guard Guard, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{store: st, runner: runner, guard: guard, publisher: publisher, logger: logger}
}

// Ingest validates and writes a batch of attestation records. The whole
// batch is rejected on any validation failure; on success every record
// carries the same freshly advanced ledger position.
func (s *Service) Ingest(ctx context.Context, caller domain.Address, batch Batch) (err error) {
	defer func() { metrics.ObserveIngest(len(batch.WalletKeys), err) }()

	if err = s.guard.RequireRole(ctx, domain.RoleAttestor, caller); err != nil {
		return err
	}
	if err = s.guard.RequireNotPaused(ctx); err != nil {
		return err
	}

	n := len(batch.WalletKeys)
	if n < minBatchSize || n > maxBatchSize {
		return dErrors.New(dErrors.CodeInvalidInput, "batch size should be between 1 and 9")
	}
	if len(batch.AttestationCommitments) != n || len(batch.NonceCommitments) != n ||
		len(batch.Ky0xIDs) != n || len(batch.DataTypes) != n || len(batch.Versions) != n {
		return dErrors.New(dErrors.CodeInvalidInput, "length not equal")
	}

	records := make([]models.Record, n)
	for i := 0; i < n; i++ {
		records[i] = models.Record{
			WalletKey:             batch.WalletKeys[i],
			DataType:              batch.DataTypes[i],
			Ky0xID:                batch.Ky0xIDs[i],
			NonceCommitment:       batch.NonceCommitments[i],
			AttestationCommitment: batch.AttestationCommitments[i],
			Version:               batch.Versions[i],
		}
		if records[i].HasZeroField() {
			return dErrors.New(dErrors.CodeInvalidInput, "cannot be 0")
		}
	}

	transitions := make([]transition, 0, n)
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		transitions = transitions[:0]
		position, err := s.store.AdvancePosition(ctx)
		if err != nil {
			return err
		}
		for i := range records {
			records[i].RecordedAt = position

			old, err := s.store.Get(ctx, records[i].WalletKey, records[i].DataType)
			if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
				return err
			}
			if err := s.store.Put(ctx, &records[i]); err != nil {
				return err
			}
			transitions = append(transitions, transition{old: old, new: records[i]})
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("attestation batch ingested",
		"caller", caller, "size", n, "recorded_at", records[0].RecordedAt)
	for _, t := range transitions {
		s.publish(ctx, t)
	}
	return nil
}

// IngestOne writes a single record with the same semantics as a one-item
// batch.
func (s *Service) IngestOne(ctx context.Context, caller domain.Address, walletKey, attestation, nonce, ky0xID domain.Hash, dt domain.DataType, version uint64) error {
	return s.Ingest(ctx, caller, Batch{
		WalletKeys:             []domain.Hash{walletKey},
		AttestationCommitments: []domain.Hash{attestation},
		NonceCommitments:       []domain.Hash{nonce},
		Ky0xIDs:                []domain.Hash{ky0xID},
		DataTypes:              []domain.DataType{dt},
		Versions:               []uint64{version},
	})
}

func (s *Service) publish(ctx context.Context, t transition) {
	payload := map[string]any{
		"wallet_key": t.new.WalletKey,
		"data_type":  t.new.DataType,
		"new":        t.new,
	}
	if t.old != nil {
		payload["old"] = t.old
	}
	ev := events.Event{
		Type:      events.TypeAttestationPosted,
		Timestamp: requestcontext.Now(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Actor:     requestcontext.Caller(ctx).String(),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		Payload:   payload,
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("event publish failed", "type", ev.Type, "error", err)
	}
}
