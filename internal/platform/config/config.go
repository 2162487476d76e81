// Package config builds runtime configuration from the environment so main
// stays lean. Every knob has a development default; production overrides via
// environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration.
type Config struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string

	PostgresURL string

	Redis RedisConfig

	Kafka KafkaConfig

	// Bootstrap identities. Admin receives every role when the registry is
	// first initialized; Treasury receives fees; Spender is the identity
	// payers approve for fee pulls.
	AdminAddress    string
	TreasuryAddress string
	SpenderAddress  string
}

// RedisConfig configures the oracle price cache. An empty URL disables it.
type RedisConfig struct {
	URL      string
	PriceTTL time.Duration
}

// KafkaConfig configures event publishing. Empty brokers disable it.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	cfg := Config{
		Addr:          envOr("ATTESTGATE_ADDR", ":8080"),
		JWTSigningKey: envOr("ATTESTGATE_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     envOr("ATTESTGATE_JWT_ISSUER", "attestgate"),
		PostgresURL:   os.Getenv("ATTESTGATE_POSTGRES_URL"),
		Redis: RedisConfig{
			URL:      os.Getenv("ATTESTGATE_REDIS_URL"),
			PriceTTL: envDurationOr("ATTESTGATE_PRICE_CACHE_TTL", 15*time.Second),
		},
		Kafka: KafkaConfig{
			Topic: envOr("ATTESTGATE_KAFKA_TOPIC", "attestgate.events"),
		},
		AdminAddress:    envOr("ATTESTGATE_ADMIN_ADDRESS", "0x0000000000000000000000000000000000000001"),
		TreasuryAddress: envOr("ATTESTGATE_TREASURY_ADDRESS", "0x0000000000000000000000000000000000000002"),
		SpenderAddress:  envOr("ATTESTGATE_SPENDER_ADDRESS", "0x0000000000000000000000000000000000000003"),
	}
	if brokers := os.Getenv("ATTESTGATE_KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
