package pricecache

import (
	"context"
	"log/slog"
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	"attestgate/internal/payment/memory"
	"attestgate/pkg/domain"
)

// =============================================================================
// Price Cache Test Suite
// =============================================================================
// Redis-backed behavior is covered by the integration suite; these tests pin
// the pass-through path and the wire encoding.

type PriceCacheSuite struct {
	suite.Suite
	upstream *memory.PriceSource
	oracle   domain.Address
}

func TestPriceCacheSuite(t *testing.T) {
	suite.Run(t, new(PriceCacheSuite))
}

func (s *PriceCacheSuite) SetupTest() {
	s.upstream = memory.NewPriceSource()
	s.oracle[19] = 1
	s.upstream.SetOracle(s.oracle, big.NewInt(100_000_000), 8)
}

func (s *PriceCacheSuite) TestPassThrough() {
	cache := New(s.upstream, nil, 0, slog.New(slog.DiscardHandler))

	price, decimals, err := cache.LatestPrice(context.Background(), s.oracle)
	s.Require().NoError(err)
	s.Equal("100000000", price.String())
	s.Equal(uint8(8), decimals)

	_, _, err = cache.LatestPrice(context.Background(), domain.ZeroAddress)
	s.Error(err)
}

func (s *PriceCacheSuite) TestEncoding() {
	s.Run("round trip", func() {
		price, decimals, ok := decode(encode(big.NewInt(123456789), 18))
		s.Require().True(ok)
		s.Equal("123456789", price.String())
		s.Equal(uint8(18), decimals)
	})

	s.Run("rejects garbage", func() {
		for _, raw := range []string{"", "123", "abc:8", "123:x"} {
			_, _, ok := decode(raw)
			s.False(ok, "decode(%q) should fail", raw)
		}
	})
}
