package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"attestgate/internal/registry/models"
	"attestgate/pkg/domain"
	"attestgate/pkg/platform/tx"
)

// PostgresStore persists attestation records in PostgreSQL. Writes issued
// inside a context transaction join it, so a whole ingest batch commits or
// rolls back as one unit.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the registry tables when absent and seeds the ledger
// position row.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS attestation_records (
	wallet_key             TEXT NOT NULL,
	data_type              BIGINT NOT NULL,
	ky0x_id                TEXT NOT NULL,
	nonce_commitment       TEXT NOT NULL,
	attestation_commitment TEXT NOT NULL,
	recorded_at            BIGINT NOT NULL,
	version                BIGINT NOT NULL,
	PRIMARY KEY (wallet_key, data_type)
);
CREATE TABLE IF NOT EXISTS registry_position (
	singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
	position  BIGINT NOT NULL
);
INSERT INTO registry_position (position) VALUES (0) ON CONFLICT DO NOTHING;`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure registry schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, walletKey domain.Hash, dt domain.DataType) (*models.Record, error) {
	q := tx.QuerierFrom(ctx, s.db)

	rec := &models.Record{WalletKey: walletKey, DataType: dt}
	var ky0xID, nonce, attestation string
	var recordedAt, version int64
	err := q.QueryRowContext(ctx,
		`SELECT ky0x_id, nonce_commitment, attestation_commitment, recorded_at, version
		 FROM attestation_records WHERE wallet_key = $1 AND data_type = $2`,
		walletKey.String(), int64(dt),
	).Scan(&ky0xID, &nonce, &attestation, &recordedAt, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load attestation record: %w", err)
	}
	if rec.Ky0xID, err = domain.ParseHash(ky0xID); err != nil {
		return nil, fmt.Errorf("stored ky0x id: %w", err)
	}
	if rec.NonceCommitment, err = domain.ParseHash(nonce); err != nil {
		return nil, fmt.Errorf("stored nonce commitment: %w", err)
	}
	if rec.AttestationCommitment, err = domain.ParseHash(attestation); err != nil {
		return nil, fmt.Errorf("stored attestation commitment: %w", err)
	}
	rec.RecordedAt = uint64(recordedAt)
	rec.Version = uint64(version)
	return rec, nil
}

func (s *PostgresStore) Put(ctx context.Context, record *models.Record) error {
	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx,
		`INSERT INTO attestation_records
		 (wallet_key, data_type, ky0x_id, nonce_commitment, attestation_commitment, recorded_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (wallet_key, data_type) DO UPDATE SET
		   ky0x_id = EXCLUDED.ky0x_id,
		   nonce_commitment = EXCLUDED.nonce_commitment,
		   attestation_commitment = EXCLUDED.attestation_commitment,
		   recorded_at = EXCLUDED.recorded_at,
		   version = EXCLUDED.version`,
		record.WalletKey.String(), int64(record.DataType), record.Ky0xID.String(),
		record.NonceCommitment.String(), record.AttestationCommitment.String(),
		int64(record.RecordedAt), int64(record.Version),
	)
	if err != nil {
		return fmt.Errorf("upsert attestation record: %w", err)
	}
	return nil
}

func (s *PostgresStore) AdvancePosition(ctx context.Context) (uint64, error) {
	q := tx.QuerierFrom(ctx, s.db)
	var position int64
	err := q.QueryRowContext(ctx,
		`UPDATE registry_position SET position = position + 1 RETURNING position`,
	).Scan(&position)
	if err != nil {
		return 0, fmt.Errorf("advance ledger position: %w", err)
	}
	return uint64(position), nil
}
