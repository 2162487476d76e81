package commitment

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"attestgate/pkg/domain"
)

// =============================================================================
// Commitment Derivation Test Suite
// =============================================================================
// Derivations must reproduce what off-service attestor tooling computes, so
// the keccak vectors here are pinned against the reference permutation.

type CommitmentSuite struct {
	suite.Suite
}

func TestCommitmentSuite(t *testing.T) {
	suite.Run(t, new(CommitmentSuite))
}

func (s *CommitmentSuite) mustHash(hex string) domain.Hash {
	h, err := domain.ParseHash(hex)
	s.Require().NoError(err)
	return h
}

func (s *CommitmentSuite) mustAddr(hex string) domain.Address {
	a, err := domain.ParseAddress(hex)
	s.Require().NoError(err)
	return a
}

// =============================================================================
// Keccak256 Reference Vectors
// =============================================================================

func (s *CommitmentSuite) TestKeccak256Vectors() {
	s.Run("empty input", func() {
		want := s.mustHash("0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
		s.Equal(want, Keccak256())
	})

	s.Run("abc", func() {
		want := s.mustHash("0x4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45")
		s.Equal(want, Keccak256([]byte("abc")))
	})

	s.Run("concatenation equals single write", func() {
		s.Equal(Keccak256([]byte("abc")), Keccak256([]byte("a"), []byte("bc")))
	})
}

func (s *CommitmentSuite) TestHashValue() {
	s.Equal(Keccak256([]byte("PASS")), HashValue("PASS"))
	s.NotEqual(HashValue("PASS"), HashValue("FAIL"))
}

// =============================================================================
// WalletKey
// =============================================================================

func (s *CommitmentSuite) TestWalletKey() {
	sig := HashValue("wallet-signature")
	owner := s.mustAddr("0x00112233445566778899aabbccddeeff00112233")

	s.Run("binds the owner address", func() {
		other := s.mustAddr("0xffeeddccbbaa99887766554433221100ffeeddcc")
		s.NotEqual(WalletKey(sig, owner), WalletKey(sig, other))
	})

	s.Run("address is left-padded to a 32-byte word", func() {
		padded := make([]byte, 32)
		copy(padded[12:], owner[:])
		s.Equal(Keccak256(sig[:], padded), WalletKey(sig, owner))
	})

	s.Run("deterministic", func() {
		s.Equal(WalletKey(sig, owner), WalletKey(sig, owner))
	})
}

// =============================================================================
// NonceProof
// =============================================================================

func (s *CommitmentSuite) TestNonceProof() {
	hashNonceSig := HashValue("nonce-signature")

	s.Run("separates data types", func() {
		s.NotEqual(
			NonceProof(domain.DataTypeKYC, hashNonceSig),
			NonceProof(domain.DataTypeAML, hashNonceSig),
		)
	})

	s.Run("uses the domain constant and big-endian words", func() {
		one := make([]byte, 32)
		one[31] = 1
		dt := make([]byte, 32)
		dt[31] = byte(domain.DataTypeAML)
		s.Equal(
			Keccak256(one, dt, hashNonceSig[:]),
			NonceProof(domain.DataTypeAML, hashNonceSig),
		)
	})
}

// =============================================================================
// Attestation
// =============================================================================

func (s *CommitmentSuite) TestAttestation() {
	ky0xID := HashValue("ky0x-id")
	sig := HashValue("wallet-signature")
	owner := s.mustAddr("0x00112233445566778899aabbccddeeff00112233")
	walletKey := WalletKey(sig, owner)
	proof := NonceProof(domain.DataTypeKYC, HashValue("nonce-signature"))

	s.Run("changes with any component", func() {
		base := Attestation(ky0xID, proof, walletKey, HashValue("PASS"))
		s.NotEqual(base, Attestation(ky0xID, proof, walletKey, HashValue("FAIL")))
		s.NotEqual(base, Attestation(HashValue("other-id"), proof, walletKey, HashValue("PASS")))
		s.NotEqual(base, Attestation(ky0xID, NonceProof(domain.DataTypeAML, HashValue("nonce-signature")), walletKey, HashValue("PASS")))
	})

	s.Run("reproducible from components", func() {
		pass := HashValue("PASS")
		s.Equal(
			Keccak256(ky0xID[:], proof[:], walletKey[:], pass[:]),
			Attestation(ky0xID, proof, walletKey, pass),
		)
	})
}
