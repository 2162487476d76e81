// Package converter turns a USD transaction cost into an amount of a
// specific payment token using that token's bound price oracle.
package converter

import (
	"context"
	"math/big"

	"attestgate/internal/payment/ports"
	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
)

// TokenDirectory resolves whether a token is accepted for payment and which
// oracle prices it. The governance service provides the production
// implementation.
type TokenDirectory interface {
	TokenPayment(ctx context.Context, token domain.Address) (enabled bool, oracle domain.Address, err error)
}

type Converter struct {
	directory TokenDirectory
	ledger    ports.TokenLedger
	prices    ports.PriceSource
}

func New(directory TokenDirectory, ledger ports.TokenLedger, prices ports.PriceSource) *Converter {
	return &Converter{directory: directory, ledger: ledger, prices: prices}
}

// FeeFor converts costUSD (fixed-point, 18 decimals) into units of token.
//
// amount = costUSD * 10^tokenDecimals / (rawPrice * 10^(18 - oracleDecimals))
//
// The division truncates, matching integer ledger arithmetic. Oracles report
// at most 18 decimals.
func (c *Converter) FeeFor(ctx context.Context, token domain.Address, costUSD *big.Int) (*big.Int, error) {
	enabled, oracle, err := c.directory.TokenPayment(ctx, token)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "token not supported")
	}

	rawPrice, oracleDecimals, err := c.prices.LatestPrice(ctx, oracle)
	if err != nil {
		return nil, err
	}
	if rawPrice.Sign() <= 0 {
		return nil, dErrors.New(dErrors.CodeFailedDependency, "price <= 0")
	}

	tokenDecimals, err := c.ledger.Decimals(ctx, token)
	if err != nil {
		return nil, err
	}

	num := new(big.Int).Mul(costUSD, pow10(int(tokenDecimals)))
	den := new(big.Int).Mul(rawPrice, pow10(18-int(oracleDecimals)))
	return num.Quo(num, den), nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
