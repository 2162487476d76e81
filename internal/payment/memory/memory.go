// Package memory provides in-process token-ledger and price-source
// collaborators. Tests and broker-less local runs use them in place of the
// real external systems; semantics mirror a standard fungible-token ledger
// (balances, allowances, pull transfers) and a fixed-point price feed.
package memory

import (
	"context"
	"math/big"
	"sync"

	"attestgate/internal/payment/ports"
	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
)

type balanceKey struct {
	token domain.Address
	owner domain.Address
}

type allowanceKey struct {
	token   domain.Address
	owner   domain.Address
	spender domain.Address
}

// TokenLedger is the in-memory fungible-token collaborator.
type TokenLedger struct {
	mu         sync.RWMutex
	decimals   map[domain.Address]uint8
	balances   map[balanceKey]*big.Int
	allowances map[allowanceKey]*big.Int
}

var _ ports.TokenLedger = (*TokenLedger)(nil)

func NewTokenLedger() *TokenLedger {
	return &TokenLedger{
		decimals:   make(map[domain.Address]uint8),
		balances:   make(map[balanceKey]*big.Int),
		allowances: make(map[allowanceKey]*big.Int),
	}
}

// RegisterToken declares a token contract with its decimal precision.
// Unregistered addresses fail every ledger operation, which is how the
// governance token probe detects a non-token address.
func (l *TokenLedger) RegisterToken(token domain.Address, decimals uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.decimals[token] = decimals
}

// Mint credits owner with amount, creating supply out of thin air. Test setup
// only.
func (l *TokenLedger) Mint(token, owner domain.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := balanceKey{token, owner}
	cur, ok := l.balances[k]
	if !ok {
		cur = new(big.Int)
	}
	l.balances[k] = new(big.Int).Add(cur, amount)
}

// Approve lets spender pull up to amount from owner.
func (l *TokenLedger) Approve(token, owner, spender domain.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[allowanceKey{token, owner, spender}] = new(big.Int).Set(amount)
}

func (l *TokenLedger) Decimals(_ context.Context, token domain.Address) (uint8, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	dec, ok := l.decimals[token]
	if !ok {
		return 0, dErrors.New(dErrors.CodeFailedDependency, "not a token contract")
	}
	return dec, nil
}

func (l *TokenLedger) BalanceOf(_ context.Context, token, owner domain.Address) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, ok := l.decimals[token]; !ok {
		return nil, dErrors.New(dErrors.CodeFailedDependency, "not a token contract")
	}
	if bal, ok := l.balances[balanceKey{token, owner}]; ok {
		return new(big.Int).Set(bal), nil
	}
	return new(big.Int), nil
}

func (l *TokenLedger) Allowance(_ context.Context, token, owner, spender domain.Address) (*big.Int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, ok := l.decimals[token]; !ok {
		return nil, dErrors.New(dErrors.CodeFailedDependency, "not a token contract")
	}
	if a, ok := l.allowances[allowanceKey{token, owner, spender}]; ok {
		return new(big.Int).Set(a), nil
	}
	return new(big.Int), nil
}

func (l *TokenLedger) TransferFrom(_ context.Context, token, spender, owner, recipient domain.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.decimals[token]; !ok {
		return dErrors.New(dErrors.CodeFailedDependency, "not a token contract")
	}
	granted := allowanceKey{token, owner, spender}
	allowance, ok := l.allowances[granted]
	if !ok || allowance.Cmp(amount) < 0 {
		return dErrors.New(dErrors.CodeFailedDependency, "transfer amount exceeds allowance")
	}
	from := balanceKey{token, owner}
	bal, ok := l.balances[from]
	if !ok || bal.Cmp(amount) < 0 {
		return dErrors.New(dErrors.CodeFailedDependency, "transfer amount exceeds balance")
	}
	l.allowances[granted] = new(big.Int).Sub(allowance, amount)
	l.balances[from] = new(big.Int).Sub(bal, amount)
	to := balanceKey{token, recipient}
	cur, ok := l.balances[to]
	if !ok {
		cur = new(big.Int)
	}
	l.balances[to] = new(big.Int).Add(cur, amount)
	return nil
}

type quote struct {
	price    *big.Int
	decimals uint8
}

// PriceSource is the in-memory oracle collaborator. Each oracle address
// serves one (price, decimals) pair, mutable mid-test to model feed changes.
type PriceSource struct {
	mu      sync.RWMutex
	oracles map[domain.Address]quote
}

var _ ports.PriceSource = (*PriceSource)(nil)

func NewPriceSource() *PriceSource {
	return &PriceSource{oracles: make(map[domain.Address]quote)}
}

// SetOracle binds an oracle address to a raw price and decimal precision.
func (s *PriceSource) SetOracle(oracle domain.Address, price *big.Int, decimals uint8) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oracles[oracle] = quote{price: new(big.Int).Set(price), decimals: decimals}
}

func (s *PriceSource) LatestPrice(_ context.Context, oracle domain.Address) (*big.Int, uint8, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.oracles[oracle]
	if !ok {
		return nil, 0, dErrors.New(dErrors.CodeFailedDependency, "not a price oracle")
	}
	return new(big.Int).Set(q.price), q.decimals, nil
}
