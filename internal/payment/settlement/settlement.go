// Package settlement pulls the query fee from the caller's token balance
// into the treasury.
package settlement

import (
	"context"
	"log/slog"
	"math/big"

	"attestgate/internal/payment/ports"
	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
)

// Settler collects fees on behalf of a fixed spender identity. The payer
// must have granted the spender an allowance covering the fee before the
// paid call; payment is pull-based, the service never holds funds itself.
type Settler struct {
	ledger  ports.TokenLedger
	spender domain.Address
	logger  *slog.Logger
}

func New(ledger ports.TokenLedger, spender domain.Address, logger *slog.Logger) *Settler {
	return &Settler{ledger: ledger, spender: spender, logger: logger}
}

// Spender is the identity payers must approve.
func (s *Settler) Spender() domain.Address {
	return s.spender
}

// Collect moves amount of token from payer to treasury. The allowance is
// checked first so an underfunded approval surfaces as a distinct error
// before any transfer is attempted.
func (s *Settler) Collect(ctx context.Context, token, payer, treasury domain.Address, amount *big.Int) error {
	allowance, err := s.ledger.Allowance(ctx, token, payer, s.spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return dErrors.New(dErrors.CodeFailedDependency, "insufficient allowance")
	}
	if err := s.ledger.TransferFrom(ctx, token, s.spender, payer, treasury, amount); err != nil {
		return err
	}
	s.logger.Info("fee collected",
		"token", token, "payer", payer, "treasury", treasury, "amount", amount.String())
	return nil
}
