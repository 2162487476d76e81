package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"attestgate/pkg/domain"
)

// =============================================================================
// Token Service Test Suite
// =============================================================================

type TokenSuite struct {
	suite.Suite
	service *Service
	addr    domain.Address
}

func TestTokenSuite(t *testing.T) {
	suite.Run(t, new(TokenSuite))
}

func (s *TokenSuite) SetupTest() {
	s.service = NewService("unit-test-signing-key", "attestgate-test")
	a, err := domain.ParseAddress("0x00112233445566778899aabbccddeeff00112233")
	s.Require().NoError(err)
	s.addr = a
}

func (s *TokenSuite) TestIssueAndValidate() {
	s.Run("round trip binds the address", func() {
		tok, err := s.service.Issue(s.addr, time.Hour)
		s.Require().NoError(err)

		got, err := s.service.Validate(tok)
		s.Require().NoError(err)
		s.Equal(s.addr, got)
	})

	s.Run("expired token rejected", func() {
		tok, err := s.service.Issue(s.addr, -time.Minute)
		s.Require().NoError(err)

		_, err = s.service.Validate(tok)
		s.Error(err)
	})

	s.Run("wrong key rejected", func() {
		other := NewService("different-key", "attestgate-test")
		tok, err := other.Issue(s.addr, time.Hour)
		s.Require().NoError(err)

		_, err = s.service.Validate(tok)
		s.Error(err)
	})

	s.Run("garbage rejected", func() {
		_, err := s.service.Validate("not-a-token")
		s.Error(err)
	})

	s.Run("zero address rejected", func() {
		tok, err := s.service.Issue(domain.ZeroAddress, time.Hour)
		s.Require().NoError(err)

		_, err = s.service.Validate(tok)
		s.Error(err)
	})
}
