// Package pricecache fronts a PriceSource with a short-lived redis cache so
// a burst of fee-paid queries does not hammer the upstream feed.
package pricecache

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"attestgate/internal/payment/ports"
	"attestgate/pkg/domain"
)

type Cache struct {
	next   ports.PriceSource
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.PriceSource = (*Cache)(nil)

// New wraps next with a redis cache. A nil client disables caching and the
// wrapper becomes a transparent pass-through.
func New(next ports.PriceSource, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *Cache) LatestPrice(ctx context.Context, oracle domain.Address) (*big.Int, uint8, error) {
	if c.client == nil {
		return c.next.LatestPrice(ctx, oracle)
	}

	key := "price:" + oracle.String()
	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		if price, decimals, ok := decode(cached); ok {
			return price, decimals, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("price cache read failed", "oracle", oracle, "error", err)
	}

	price, decimals, err := c.next.LatestPrice(ctx, oracle)
	if err != nil {
		return nil, 0, err
	}
	if err := c.client.Set(ctx, key, encode(price, decimals), c.ttl).Err(); err != nil {
		c.logger.Warn("price cache write failed", "oracle", oracle, "error", err)
	}
	return price, decimals, nil
}

func encode(price *big.Int, decimals uint8) string {
	return fmt.Sprintf("%s:%d", price.String(), decimals)
}

func decode(s string) (*big.Int, uint8, bool) {
	raw, decPart, found := strings.Cut(s, ":")
	if !found {
		return nil, 0, false
	}
	price, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, 0, false
	}
	var decimals uint8
	if _, err := fmt.Sscanf(decPart, "%d", &decimals); err != nil {
		return nil, 0, false
	}
	return price, decimals, true
}
