// Package models defines the query result shapes and status codes. Absence
// and mismatch are statuses, not errors: a lookup that finds nothing is a
// successful call.
package models

import (
	"math/big"

	"attestgate/pkg/domain"
)

// LookupStatus is the per-item outcome of a nonce lookup.
type LookupStatus uint8

const (
	LookupNoError  LookupStatus = 0
	LookupNotFound LookupStatus = 1
)

// MatchStatus is the per-item outcome of a match verification.
type MatchStatus uint8

const (
	MatchNotFound MatchStatus = 0
	MatchMatch    MatchStatus = 1
	MatchNoMatch  MatchStatus = 2
)

// NonceLookup is the result of LookupNonces. Statuses and Nonces are
// parallel to the requested data types; Nonces holds the zero hash where the
// record is absent.
type NonceLookup struct {
	Statuses []LookupStatus `json:"statuses"`
	Nonces   []domain.Hash  `json:"nonces"`
}

// MatchResult is the outcome of a paid match verification. Ky0xID is taken
// from the last queried item whose record exists; PaymentAmount is the fee
// actually pulled in the payment token's units.
type MatchResult struct {
	Ky0xID        domain.Hash   `json:"ky0x_id"`
	Statuses      []MatchStatus `json:"statuses"`
	PaymentAmount *big.Int      `json:"payment_amount"`
	RecordedAt    []uint64      `json:"recorded_at"`
}
