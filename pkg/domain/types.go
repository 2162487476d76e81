// Package domain defines the typed primitives shared across services: wallet
// addresses, 32-byte commitments, data types, and role names. Construct values
// via the Parse functions at trust boundaries; direct casting bypasses
// validation.
package domain

import (
	"encoding/hex"
	"strings"

	dErrors "attestgate/pkg/domain-errors"
)

// Address is a 20-byte account identifier, formatted as 0x-prefixed hex.
type Address [20]byte

// Hash is a 32-byte value: wallet keys, nonce commitments, attestation
// commitments, and pseudonymous IDs are all Hash-typed and only distinguished
// by how they are derived.
type Hash [32]byte

// DataType is a small enumerated compliance category. Categories beyond the
// initial two are enabled through governance, so the type is open-ended.
type DataType uint32

const (
	DataTypeKYC DataType = 0
	DataTypeAML DataType = 1
)

// ZeroAddress and ZeroHash are the rejected all-zero values.
var (
	ZeroAddress Address
	ZeroHash    Hash
)

// IsZero reports whether the address is the all-zero value.
func (a Address) IsZero() bool { return a == ZeroAddress }

// String formats the address as 0x-prefixed lowercase hex.
func (a Address) String() string { return "0x" + hex.EncodeToString(a[:]) }

// MarshalText implements encoding.TextMarshaler for JSON transport.
func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler for JSON transport.
func (a *Address) UnmarshalText(b []byte) error {
	parsed, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress constructs an Address from 0x-prefixed hex input.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := decodeHex(s, len(a))
	if err != nil {
		return a, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid address")
	}
	copy(a[:], raw)
	return a, nil
}

// IsZero reports whether the hash is the all-zero value.
func (h Hash) IsZero() bool { return h == ZeroHash }

// String formats the hash as 0x-prefixed lowercase hex.
func (h Hash) String() string { return "0x" + hex.EncodeToString(h[:]) }

// MarshalText implements encoding.TextMarshaler for JSON transport.
func (h Hash) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler for JSON transport.
func (h *Hash) UnmarshalText(b []byte) error {
	parsed, err := ParseHash(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash constructs a Hash from 0x-prefixed hex input.
func ParseHash(s string) (Hash, error) {
	var h Hash
	raw, err := decodeHex(s, len(h))
	if err != nil {
		return h, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid hash")
	}
	copy(h[:], raw)
	return h, nil
}

func decodeHex(s string, want int) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, err
	}
	if len(raw) != want {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "expected %d bytes, got %d", want, len(raw))
	}
	return raw, nil
}
