// Package commitment derives the keyed commitments used by the attestation
// registry. All derivations are keccak-256 over 32-byte words (addresses are
// left-padded), so keys and commitments produced by off-service attestor
// tooling reproduce bit-exactly here.
package commitment

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"attestgate/pkg/domain"
)

// nonceProofDomain separates nonce proofs from other keccak preimages.
const nonceProofDomain = 1

// Keccak256 hashes the concatenation of the given byte slices with the
// keccak-256 permutation (the pre-NIST padding variant).
func Keccak256(parts ...[]byte) domain.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, p := range parts {
		h.Write(p)
	}
	var out domain.Hash
	h.Sum(out[:0])
	return out
}

// HashValue commits to a raw attribute value (e.g. "PASS") without storing it.
func HashValue(raw string) domain.Hash {
	return Keccak256([]byte(raw))
}

// WalletKey binds a wallet-signature hash to a specific owner address:
// keccak(hashWalletSig || pad32(owner)). The resulting key is what records
// are stored under, so a caller can only reconstruct keys for addresses it
// names explicitly.
func WalletKey(hashWalletSig domain.Hash, owner domain.Address) domain.Hash {
	return Keccak256(hashWalletSig[:], pad32(owner[:]))
}

// NonceProof derives the per-data-type nonce proof from the hash of a nonce
// signature: keccak(uint256(1) || uint256(dataType) || hashNonceSig). The
// registry never computes this itself; attestors derive it off-service and
// callers replay it during match verification.
func NonceProof(dataType domain.DataType, hashNonceSig domain.Hash) domain.Hash {
	return Keccak256(uint256(nonceProofDomain), uint256(uint64(dataType)), hashNonceSig[:])
}

// Attestation is the compact unforgeable summary stored per record:
// keccak(ky0xID || nonceProof || walletKey || rawValueHash). Equality against
// the stored value is the whole of match verification.
func Attestation(ky0xID, nonceProof, walletKey, rawValueHash domain.Hash) domain.Hash {
	return Keccak256(ky0xID[:], nonceProof[:], walletKey[:], rawValueHash[:])
}

// pad32 left-pads b into a 32-byte word.
func pad32(b []byte) []byte {
	word := make([]byte, 32)
	copy(word[32-len(b):], b)
	return word
}

// uint256 encodes v as a big-endian 32-byte word.
func uint256(v uint64) []byte {
	word := make([]byte, 32)
	binary.BigEndian.PutUint64(word[24:], v)
	return word
}
