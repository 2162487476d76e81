//go:build integration

package pricecache_test

import (
	"context"
	"log/slog"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"attestgate/internal/payment/pricecache"
	"attestgate/pkg/domain"
	"attestgate/pkg/testutil/containers"
)

// =============================================================================
// Price Cache Integration Suite
// =============================================================================

// countingSource counts upstream reads so the suite can observe cache hits.
type countingSource struct {
	calls atomic.Int64
	price *big.Int
}

func (c *countingSource) LatestPrice(context.Context, domain.Address) (*big.Int, uint8, error) {
	c.calls.Add(1)
	return new(big.Int).Set(c.price), 8, nil
}

type PriceCacheSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	oracle domain.Address
}

func TestPriceCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PriceCacheSuite))
}

func (s *PriceCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.oracle[19] = 1
}

func (s *PriceCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *PriceCacheSuite) TestCaching() {
	ctx := context.Background()
	upstream := &countingSource{price: big.NewInt(100_000_000)}
	cache := pricecache.New(upstream, s.redis.Client, time.Minute, slog.New(slog.DiscardHandler))

	price, decimals, err := cache.LatestPrice(ctx, s.oracle)
	s.Require().NoError(err)
	s.Equal("100000000", price.String())
	s.Equal(uint8(8), decimals)
	s.Equal(int64(1), upstream.calls.Load())

	// Second read is served from redis.
	price, _, err = cache.LatestPrice(ctx, s.oracle)
	s.Require().NoError(err)
	s.Equal("100000000", price.String())
	s.Equal(int64(1), upstream.calls.Load())
}

func (s *PriceCacheSuite) TestTTLExpiry() {
	ctx := context.Background()
	upstream := &countingSource{price: big.NewInt(100_000_000)}
	cache := pricecache.New(upstream, s.redis.Client, 500*time.Millisecond, slog.New(slog.DiscardHandler))

	_, _, err := cache.LatestPrice(ctx, s.oracle)
	s.Require().NoError(err)

	time.Sleep(700 * time.Millisecond)
	upstream.price = big.NewInt(200_000_000)

	price, _, err := cache.LatestPrice(ctx, s.oracle)
	s.Require().NoError(err)
	s.Equal("200000000", price.String())
	s.Equal(int64(2), upstream.calls.Load())
}
