// Package ports defines the collaborator boundaries of the payment path: the
// fungible-token ledger that moves value and the price source that quotes it.
// Both are external systems; the gateway only ever talks to them through
// these interfaces.
package ports

import (
	"context"
	"math/big"

	"attestgate/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// TokenLedger is the fungible-token collaborator. Tokens are addressed
// individually; amounts are integral token units at the token's own decimal
// scale.
type TokenLedger interface {
	// Decimals reports the token's decimal precision. Failure means the
	// address does not behave as a fungible-token contract.
	Decimals(ctx context.Context, token domain.Address) (uint8, error)
	// BalanceOf reports owner's balance of token.
	BalanceOf(ctx context.Context, token, owner domain.Address) (*big.Int, error)
	// Allowance reports how much spender may pull from owner.
	Allowance(ctx context.Context, token, owner, spender domain.Address) (*big.Int, error)
	// TransferFrom pulls amount from owner to recipient, debiting the
	// spender's allowance. The gateway treats failure as caller-attributable.
	TransferFrom(ctx context.Context, token, spender, owner, recipient domain.Address, amount *big.Int) error
}

// PriceSource quotes USD prices from the oracle bound to a token. Failure
// means the address does not behave as a valid price source.
type PriceSource interface {
	// LatestPrice returns the raw price and the oracle's decimal precision.
	// A non-positive price is returned as-is; callers decide how to fail.
	LatestPrice(ctx context.Context, oracle domain.Address) (*big.Int, uint8, error)
}
