package service

import (
	"context"
	"log/slog"
	"math/big"
	"testing"

	"github.com/stretchr/testify/suite"

	"attestgate/internal/events"
	"attestgate/internal/governance/models"
	"attestgate/internal/governance/store"
	"attestgate/internal/payment/memory"
	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
	"attestgate/pkg/platform/tx"
)

// =============================================================================
// Governance Service Test Suite
// =============================================================================
// Covers the one-shot initialization, role gating, the idempotent-guarded
// setters, the pause gate, and the live token and oracle probes.

type GovernanceSuite struct {
	suite.Suite
	store     *store.MemoryStore
	ledger    *memory.TokenLedger
	prices    *memory.PriceSource
	publisher *events.MemoryPublisher
	service   *Service

	admin    domain.Address
	outsider domain.Address
	treasury domain.Address
}

func TestGovernanceSuite(t *testing.T) {
	suite.Run(t, new(GovernanceSuite))
}

func (s *GovernanceSuite) SetupTest() {
	s.store = store.NewMemoryStore()
	s.ledger = memory.NewTokenLedger()
	s.prices = memory.NewPriceSource()
	s.publisher = events.NewMemoryPublisher()
	s.service = New(s.store, tx.NewMutexRunner(), s.ledger, s.prices, s.publisher, slog.New(slog.DiscardHandler))

	s.admin = addr(1)
	s.outsider = addr(2)
	s.treasury = addr(3)
	s.Require().NoError(s.service.Initialize(context.Background(), s.admin, s.treasury))
}

func addr(b byte) domain.Address {
	var a domain.Address
	a[19] = b
	return a
}

// =============================================================================
// Initialization
// =============================================================================

func (s *GovernanceSuite) TestInitialize() {
	ctx := context.Background()

	s.Run("is one-shot", func() {
		err := s.service.Initialize(ctx, s.admin, s.treasury)
		s.Require().Error(err)
		s.Contains(err.Error(), "contract is already initialized")
	})

	s.Run("seeds defaults", func() {
		cfg, err := s.service.Config(ctx)
		s.Require().NoError(err)
		s.Equal(s.treasury, cfg.Treasury)
		s.Equal(models.DefaultTransactionCostUSD.String(), cfg.TransactionCostUSD.String())
		s.True(cfg.DataTypes[domain.DataTypeKYC])
		s.True(cfg.DataTypes[domain.DataTypeAML])
		s.False(cfg.Paused)
	})

	s.Run("grants the founder every role", func() {
		for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleAttestor, domain.RolePauser} {
			ok, err := s.service.HasRole(ctx, role, s.admin)
			s.Require().NoError(err)
			s.True(ok, "founder should hold %s", role)
		}
	})
}

// =============================================================================
// Treasury
// =============================================================================

func (s *GovernanceSuite) TestSetTreasury() {
	ctx := context.Background()

	s.Run("admin only", func() {
		err := s.service.SetTreasury(ctx, s.outsider, addr(9))
		s.Require().Error(err)
		s.Contains(err.Error(), "admin only")
	})

	s.Run("rejects the zero address", func() {
		err := s.service.SetTreasury(ctx, s.admin, domain.ZeroAddress)
		s.Require().Error(err)
		s.Contains(err.Error(), "address zero")
	})

	s.Run("rejects a no-op update", func() {
		err := s.service.SetTreasury(ctx, s.admin, s.treasury)
		s.Require().Error(err)
		s.Contains(err.Error(), "treasury already set to this address")
	})

	s.Run("updates and publishes", func() {
		next := addr(9)
		s.Require().NoError(s.service.SetTreasury(ctx, s.admin, next))

		got, err := s.service.Treasury(ctx)
		s.Require().NoError(err)
		s.Equal(next, got)
		s.Len(s.publisher.ByType(events.TypeTreasuryUpdated), 1)
	})
}

// =============================================================================
// Transaction Cost
// =============================================================================

func (s *GovernanceSuite) TestSetTransactionCostUSD() {
	ctx := context.Background()

	s.Run("admin only", func() {
		err := s.service.SetTransactionCostUSD(ctx, s.outsider, big.NewInt(1))
		s.Require().Error(err)
		s.Contains(err.Error(), "admin only")
	})

	s.Run("rejects above ten dollars", func() {
		over := new(big.Int).Add(models.MaxTransactionCostUSD, big.NewInt(1))
		err := s.service.SetTransactionCostUSD(ctx, s.admin, over)
		s.Require().Error(err)
		s.Contains(err.Error(), "transaction cost > $10")
	})

	s.Run("accepts exactly ten dollars", func() {
		s.NoError(s.service.SetTransactionCostUSD(ctx, s.admin, models.MaxTransactionCostUSD))
	})

	s.Run("rejects negadollars", func() {
		err := s.service.SetTransactionCostUSD(ctx, s.admin, big.NewInt(-1))
		s.Error(err)
	})

	s.Run("rejects a no-op update", func() {
		s.Require().NoError(s.service.SetTransactionCostUSD(ctx, s.admin, big.NewInt(5)))
		err := s.service.SetTransactionCostUSD(ctx, s.admin, big.NewInt(5))
		s.Require().Error(err)
		s.Contains(err.Error(), "transactionCost already set with this value")
	})

	s.Run("accepts zero", func() {
		s.NoError(s.service.SetTransactionCostUSD(ctx, s.admin, big.NewInt(0)))
	})
}

// =============================================================================
// Data Types
// =============================================================================

func (s *GovernanceSuite) TestSetDataTypeStatus() {
	ctx := context.Background()

	s.Run("rejects a no-op update", func() {
		err := s.service.SetDataTypeStatus(ctx, s.admin, domain.DataTypeKYC, true)
		s.Require().Error(err)
		s.Contains(err.Error(), "dataType already active/inactive")
	})

	s.Run("toggles and publishes", func() {
		s.Require().NoError(s.service.SetDataTypeStatus(ctx, s.admin, domain.DataTypeKYC, false))
		active, err := s.service.IsDataTypeActive(ctx, domain.DataTypeKYC)
		s.Require().NoError(err)
		s.False(active)
		s.Len(s.publisher.ByType(events.TypeDataTypeStatusSet), 1)
	})

	s.Run("enables new categories", func() {
		const creditScore domain.DataType = 7
		s.Require().NoError(s.service.SetDataTypeStatus(ctx, s.admin, creditScore, true))
		active, err := s.service.IsDataTypeActive(ctx, creditScore)
		s.Require().NoError(err)
		s.True(active)
	})
}

// =============================================================================
// Token Payment
// =============================================================================

func (s *GovernanceSuite) TestAllowTokenPayment() {
	ctx := context.Background()
	token, oracle := addr(10), addr(11)
	s.ledger.RegisterToken(token, 6)
	s.prices.SetOracle(oracle, big.NewInt(100_000_000), 8)

	s.Run("probes the token", func() {
		err := s.service.AllowTokenPayment(ctx, s.admin, addr(12), true, oracle)
		s.Require().Error(err)
		s.Contains(err.Error(), "not a token contract")
	})

	s.Run("probes the oracle", func() {
		err := s.service.AllowTokenPayment(ctx, s.admin, token, true, addr(13))
		s.Require().Error(err)
		s.Contains(err.Error(), "not a price oracle")
	})

	s.Run("rejects a non-positive probe price", func() {
		dead := addr(14)
		s.prices.SetOracle(dead, big.NewInt(0), 8)
		err := s.service.AllowTokenPayment(ctx, s.admin, token, true, dead)
		s.Require().Error(err)
		s.Contains(err.Error(), "price <= 0")
	})

	s.Run("first enable succeeds", func() {
		s.Require().NoError(s.service.AllowTokenPayment(ctx, s.admin, token, true, oracle))
		enabled, bound, err := s.service.TokenPayment(ctx, token)
		s.Require().NoError(err)
		s.True(enabled)
		s.Equal(oracle, bound)
	})

	s.Run("repeating the same flag and oracle fails", func() {
		err := s.service.AllowTokenPayment(ctx, s.admin, token, true, oracle)
		s.Require().Error(err)
		s.Contains(err.Error(), "token already authorized/disabled")
	})

	s.Run("same flag with a new oracle rebinds", func() {
		rotated := addr(15)
		s.prices.SetOracle(rotated, big.NewInt(200_000_000), 8)
		s.Require().NoError(s.service.AllowTokenPayment(ctx, s.admin, token, true, rotated))

		_, bound, err := s.service.TokenPayment(ctx, token)
		s.Require().NoError(err)
		s.Equal(rotated, bound)
	})

	s.Run("disable then re-enable", func() {
		rotated := addr(15)
		s.Require().NoError(s.service.AllowTokenPayment(ctx, s.admin, token, false, rotated))
		enabled, _, err := s.service.TokenPayment(ctx, token)
		s.Require().NoError(err)
		s.False(enabled)

		s.Require().NoError(s.service.AllowTokenPayment(ctx, s.admin, token, true, rotated))
	})
}

// =============================================================================
// Pause Gate
// =============================================================================

func (s *GovernanceSuite) TestPauseUnpause() {
	ctx := context.Background()
	pauser := addr(20)
	s.Require().NoError(s.service.GrantRole(ctx, s.admin, domain.RolePauser, pauser))

	s.Run("pauser only", func() {
		err := s.service.Pause(ctx, s.outsider)
		s.Require().Error(err)
		s.Contains(err.Error(), "pauser only")
	})

	s.Run("unpausing while running fails", func() {
		err := s.service.Unpause(ctx, pauser)
		s.Require().Error(err)
		s.Contains(err.Error(), "already unpaused")
	})

	s.Run("pause engages the gate", func() {
		s.Require().NoError(s.service.Pause(ctx, pauser))
		err := s.service.RequireNotPaused(ctx)
		s.Require().Error(err)
		s.Contains(err.Error(), "paused")
	})

	s.Run("double pause fails", func() {
		err := s.service.Pause(ctx, pauser)
		s.Require().Error(err)
		s.Contains(err.Error(), "already paused")
	})

	s.Run("unpause releases the gate", func() {
		s.Require().NoError(s.service.Unpause(ctx, pauser))
		s.NoError(s.service.RequireNotPaused(ctx))
	})
}

// =============================================================================
// Roles
// =============================================================================

func (s *GovernanceSuite) TestRoles() {
	ctx := context.Background()

	s.Run("grant is admin gated", func() {
		err := s.service.GrantRole(ctx, s.outsider, domain.RoleAttestor, s.outsider)
		s.Require().Error(err)
		s.Contains(err.Error(), "admin only")
	})

	s.Run("admin can grant admin", func() {
		second := addr(30)
		s.Require().NoError(s.service.GrantRole(ctx, s.admin, domain.RoleAdmin, second))

		// The new admin can administrate in turn.
		s.NoError(s.service.GrantRole(ctx, second, domain.RoleAttestor, addr(31)))
	})

	s.Run("revoke removes the capability", func() {
		attestor := addr(32)
		s.Require().NoError(s.service.GrantRole(ctx, s.admin, domain.RoleAttestor, attestor))
		s.Require().NoError(s.service.RevokeRole(ctx, s.admin, domain.RoleAttestor, attestor))

		err := s.service.RequireRole(ctx, domain.RoleAttestor, attestor)
		s.Require().Error(err)
		s.Contains(err.Error(), "attestor only")
	})

	s.Run("unknown role rejected", func() {
		err := s.service.GrantRole(ctx, s.admin, domain.Role("janitor"), addr(33))
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
