// Package models defines the governance state: the global configuration
// singleton and role membership.
package models

import (
	"math/big"

	"attestgate/pkg/domain"
)

// MaxTransactionCostUSD bounds the per-query cost to $10, 18-decimal fixed
// point. The bound is inclusive.
var MaxTransactionCostUSD = new(big.Int).Mul(big.NewInt(10), Ether)

// DefaultTransactionCostUSD is the $1 cost set at initialization.
var DefaultTransactionCostUSD = new(big.Int).Set(Ether)

// Ether is 10^18, the fixed-point scale for USD amounts.
var Ether = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// TokenPayment is the per-token payment eligibility and oracle binding.
type TokenPayment struct {
	Enabled bool           `json:"enabled"`
	Oracle  domain.Address `json:"oracle"`
}

// Config is the admin-owned global configuration singleton. It is created
// once at initialization and mutated only through the bounded setters; it
// survives logic upgrades intact.
type Config struct {
	Treasury           domain.Address                   `json:"treasury"`
	TransactionCostUSD *big.Int                         `json:"transaction_cost_usd"`
	Paused             bool                             `json:"paused"`
	DataTypes          map[domain.DataType]bool         `json:"data_types"`
	Tokens             map[domain.Address]TokenPayment  `json:"tokens"`
}

// NewDefaultConfig builds the initial configuration: KYC and AML enabled,
// $1 per query, unpaused.
func NewDefaultConfig(treasury domain.Address) *Config {
	return &Config{
		Treasury:           treasury,
		TransactionCostUSD: new(big.Int).Set(DefaultTransactionCostUSD),
		DataTypes: map[domain.DataType]bool{
			domain.DataTypeKYC: true,
			domain.DataTypeAML: true,
		},
		Tokens: map[domain.Address]TokenPayment{},
	}
}

// Clone deep-copies the config so stores can hand out snapshots.
func (c *Config) Clone() *Config {
	out := &Config{
		Treasury:           c.Treasury,
		TransactionCostUSD: new(big.Int).Set(c.TransactionCostUSD),
		Paused:             c.Paused,
		DataTypes:          make(map[domain.DataType]bool, len(c.DataTypes)),
		Tokens:             make(map[domain.Address]TokenPayment, len(c.Tokens)),
	}
	for dt, active := range c.DataTypes {
		out.DataTypes[dt] = active
	}
	for token, tp := range c.Tokens {
		out.Tokens[token] = tp
	}
	return out
}
