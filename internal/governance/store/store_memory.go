package store

import (
	"context"
	"math/big"
	"sync"

	"attestgate/internal/governance/models"
	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
)

type roleKey struct {
	role domain.Role
	addr domain.Address
}

// MemoryStore keeps governance state in memory. Used by unit tests and
// broker-less local runs.
type MemoryStore struct {
	mu     sync.RWMutex
	config *models.Config
	roles  map[roleKey]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{roles: make(map[roleKey]bool)}
}

func (s *MemoryStore) GetConfig(ctx context.Context) (*models.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return nil, ErrNotInitialized
	}
	return s.config.Clone(), nil
}

func (s *MemoryStore) InitConfig(ctx context.Context, cfg *models.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config != nil {
		return dErrors.New(dErrors.CodeConflict, "contract is already initialized")
	}
	s.config = cfg.Clone()
	return nil
}

func (s *MemoryStore) SetTreasury(ctx context.Context, addr domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return ErrNotInitialized
	}
	s.config.Treasury = addr
	return nil
}

func (s *MemoryStore) SetTransactionCost(ctx context.Context, cost string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return ErrNotInitialized
	}
	v, ok := new(big.Int).SetString(cost, 10)
	if !ok {
		return dErrors.New(dErrors.CodeInvalidInput, "malformed cost")
	}
	s.config.TransactionCostUSD = v
	return nil
}

func (s *MemoryStore) SetPaused(ctx context.Context, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return ErrNotInitialized
	}
	s.config.Paused = paused
	return nil
}

func (s *MemoryStore) SetDataType(ctx context.Context, dt domain.DataType, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return ErrNotInitialized
	}
	s.config.DataTypes[dt] = active
	return nil
}

func (s *MemoryStore) SetTokenPayment(ctx context.Context, token domain.Address, tp models.TokenPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return ErrNotInitialized
	}
	s.config.Tokens[token] = tp
	return nil
}

func (s *MemoryStore) HasRole(ctx context.Context, role domain.Role, addr domain.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roles[roleKey{role, addr}], nil
}

func (s *MemoryStore) GrantRole(ctx context.Context, role domain.Role, addr domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[roleKey{role, addr}] = true
	return nil
}

func (s *MemoryStore) RevokeRole(ctx context.Context, role domain.Role, addr domain.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, roleKey{role, addr})
	return nil
}
