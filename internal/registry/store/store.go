// Package store persists attestation records and the ledger position the
// registry stamps onto them.
package store

import (
	"context"

	"attestgate/internal/registry/models"
	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
)

// ErrRecordNotFound signals an absent (walletKey, dataType) slot. Query
// paths translate it into a NOT_FOUND status rather than an error.
var ErrRecordNotFound = dErrors.New(dErrors.CodeNotFound, "attestation record not found")

// Store is the persistence boundary for attestation records.
type Store interface {
	// Get returns the record at (walletKey, dataType), or ErrRecordNotFound.
	Get(ctx context.Context, walletKey domain.Hash, dt domain.DataType) (*models.Record, error)
	// Put upserts a record at its (WalletKey, DataType) key.
	Put(ctx context.Context, record *models.Record) error
	// AdvancePosition increments the ledger position and returns the new
	// value. Called once per ingest, inside the same transaction as the
	// batch's writes.
	AdvancePosition(ctx context.Context) (uint64, error)
}
