// Package models defines the attestation record, the unit of state the
// registry stores and queries.
package models

import (
	"attestgate/pkg/domain"
)

// Record is one attestation, keyed by (WalletKey, DataType). Re-ingesting
// the same key overwrites the previous record whole.
type Record struct {
	WalletKey             domain.Hash     `json:"wallet_key"`
	DataType              domain.DataType `json:"data_type"`
	Ky0xID                domain.Hash     `json:"ky0x_id"`
	NonceCommitment       domain.Hash     `json:"nonce_commitment"`
	AttestationCommitment domain.Hash     `json:"attestation_commitment"`
	// RecordedAt is the ledger position of the ingest call that wrote the
	// record. All records of one batch share it.
	RecordedAt uint64 `json:"recorded_at"`
	// Version is attestor-supplied provenance metadata, stored verbatim.
	Version uint64 `json:"version"`
}

// HasZeroField reports whether any commitment field is the zero hash.
// Such records are rejected at ingest.
func (r Record) HasZeroField() bool {
	return r.WalletKey.IsZero() || r.AttestationCommitment.IsZero() ||
		r.NonceCommitment.IsZero() || r.Ky0xID.IsZero()
}
