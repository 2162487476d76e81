// Package service implements governance: role membership, the pause gate,
// and the bounded configuration setters. Every setter is idempotent-guarded,
// so setting a parameter to its current value is a caller error rather than
// a silent no-op.
package service

import (
	"context"
	"log/slog"
	"math/big"

	"attestgate/internal/events"
	"attestgate/internal/governance/metrics"
	"attestgate/internal/governance/models"
	"attestgate/internal/governance/store"
	"attestgate/internal/payment/ports"
	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
	"attestgate/pkg/platform/tx"
	"attestgate/pkg/requestcontext"
)

type Service struct {
	store     store.Store
	runner    tx.Runner
	ledger    ports.TokenLedger
	prices    ports.PriceSource
	publisher events.Publisher
	logger    *slog.Logger
}

func New(st store.Store, runner tx.Runner, ledger ports.TokenLedger, prices ports.PriceSource, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:     st,
		runner:    runner,
		ledger:    ledger,
		prices:    prices,
		publisher: publisher,
		logger:    logger,
	}
}

// ====================================================================
// Initialization
// ====================================================================

// Initialize creates the configuration singleton and grants the founding
// admin every role. One-shot: a second call fails regardless of arguments.
func (s *Service) Initialize(ctx context.Context, admin, treasury domain.Address) (err error) {
	defer func() { metrics.ObserveOperation("initialize", err) }()

	if admin.IsZero() || treasury.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "address zero")
	}
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.InitConfig(ctx, models.NewDefaultConfig(treasury)); err != nil {
			return err
		}
		for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleAttestor, domain.RolePauser} {
			if err := s.store.GrantRole(ctx, role, admin); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("registry initialized", "admin", admin, "treasury", treasury)
	return nil
}

// ====================================================================
// Guards and read views
// ====================================================================

// RequireRole fails with the role's canonical message when addr lacks it.
func (s *Service) RequireRole(ctx context.Context, role domain.Role, addr domain.Address) error {
	ok, err := s.store.HasRole(ctx, role, addr)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, string(role)+" only")
	}
	return nil
}

// RequireNotPaused fails when the pause gate is engaged.
func (s *Service) RequireNotPaused(ctx context.Context) error {
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Paused {
		return dErrors.New(dErrors.CodeUnauthorized, "paused")
	}
	return nil
}

func (s *Service) HasRole(ctx context.Context, role domain.Role, addr domain.Address) (bool, error) {
	return s.store.HasRole(ctx, role, addr)
}

func (s *Service) Config(ctx context.Context) (*models.Config, error) {
	return s.store.GetConfig(ctx)
}

func (s *Service) Treasury(ctx context.Context) (domain.Address, error) {
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		return domain.ZeroAddress, err
	}
	return cfg.Treasury, nil
}

func (s *Service) TransactionCostUSD(ctx context.Context) (*big.Int, error) {
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	return cfg.TransactionCostUSD, nil
}

// IsDataTypeActive reports whether dt is enabled for ingest and queries.
func (s *Service) IsDataTypeActive(ctx context.Context, dt domain.DataType) (bool, error) {
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		return false, err
	}
	return cfg.DataTypes[dt], nil
}

// TokenPayment reports payment eligibility and the bound oracle for token.
// It is the directory the fee converter resolves against.
func (s *Service) TokenPayment(ctx context.Context, token domain.Address) (bool, domain.Address, error) {
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		return false, domain.ZeroAddress, err
	}
	tp, ok := cfg.Tokens[token]
	if !ok {
		return false, domain.ZeroAddress, nil
	}
	return tp.Enabled, tp.Oracle, nil
}

// ====================================================================
// Bounded setters (admin role)
// ====================================================================

func (s *Service) SetTreasury(ctx context.Context, caller, addr domain.Address) (err error) {
	defer func() { metrics.ObserveOperation("set_treasury", err) }()

	if err = s.RequireRole(ctx, domain.RoleAdmin, caller); err != nil {
		return err
	}
	if addr.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "address zero")
	}
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.store.GetConfig(ctx)
		if err != nil {
			return err
		}
		if cfg.Treasury == addr {
			return dErrors.New(dErrors.CodeConflict, "treasury already set to this address")
		}
		return s.store.SetTreasury(ctx, addr)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.TypeTreasuryUpdated, map[string]any{"treasury": addr})
	return nil
}

func (s *Service) SetTransactionCostUSD(ctx context.Context, caller domain.Address, cost *big.Int) (err error) {
	defer func() { metrics.ObserveOperation("set_transaction_cost", err) }()

	if err = s.RequireRole(ctx, domain.RoleAdmin, caller); err != nil {
		return err
	}
	if cost == nil || cost.Sign() < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "cannot be negative")
	}
	if cost.Cmp(models.MaxTransactionCostUSD) > 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "transaction cost > $10")
	}
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.store.GetConfig(ctx)
		if err != nil {
			return err
		}
		if cfg.TransactionCostUSD.Cmp(cost) == 0 {
			return dErrors.New(dErrors.CodeConflict, "transactionCost already set with this value")
		}
		return s.store.SetTransactionCost(ctx, cost.String())
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.TypeTransactionCostUpdated, map[string]any{"cost_usd": cost.String()})
	return nil
}

func (s *Service) SetDataTypeStatus(ctx context.Context, caller domain.Address, dt domain.DataType, active bool) (err error) {
	defer func() { metrics.ObserveOperation("set_data_type_status", err) }()

	if err = s.RequireRole(ctx, domain.RoleAdmin, caller); err != nil {
		return err
	}
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.store.GetConfig(ctx)
		if err != nil {
			return err
		}
		if cfg.DataTypes[dt] == active {
			return dErrors.New(dErrors.CodeConflict, "dataType already active/inactive")
		}
		return s.store.SetDataType(ctx, dt, active)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.TypeDataTypeStatusSet, map[string]any{"data_type": dt, "active": active})
	return nil
}

// AllowTokenPayment toggles payment eligibility for token, binding oracle as
// its price source. Both collaborators are probed live on every call. A call
// that changes neither the flag nor the oracle fails; rebinding a new oracle
// while the flag stays the same is accepted as an oracle rotation.
func (s *Service) AllowTokenPayment(ctx context.Context, caller, token domain.Address, enabled bool, oracle domain.Address) (err error) {
	defer func() { metrics.ObserveOperation("allow_token_payment", err) }()

	if err = s.RequireRole(ctx, domain.RoleAdmin, caller); err != nil {
		return err
	}
	if token.IsZero() || oracle.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "address zero")
	}
	if _, err = s.ledger.Decimals(ctx, token); err != nil {
		return err
	}
	price, _, err := s.prices.LatestPrice(ctx, oracle)
	if err != nil {
		return err
	}
	if price.Sign() <= 0 {
		return dErrors.New(dErrors.CodeFailedDependency, "price <= 0")
	}
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.store.GetConfig(ctx)
		if err != nil {
			return err
		}
		if existing, ok := cfg.Tokens[token]; ok && existing.Enabled == enabled && existing.Oracle == oracle {
			return dErrors.New(dErrors.CodeConflict, "token already authorized/disabled")
		}
		return s.store.SetTokenPayment(ctx, token, models.TokenPayment{Enabled: enabled, Oracle: oracle})
	})
	if err != nil {
		return err
	}
	s.publish(ctx, events.TypeTokenPaymentSet, map[string]any{
		"token": token, "enabled": enabled, "oracle": oracle,
	})
	return nil
}

// ====================================================================
// Pause gate (pauser role)
// ====================================================================

func (s *Service) Pause(ctx context.Context, caller domain.Address) (err error) {
	defer func() { metrics.ObserveOperation("pause", err) }()

	if err = s.RequireRole(ctx, domain.RolePauser, caller); err != nil {
		return err
	}
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.store.GetConfig(ctx)
		if err != nil {
			return err
		}
		if cfg.Paused {
			return dErrors.New(dErrors.CodeConflict, "already paused")
		}
		return s.store.SetPaused(ctx, true)
	})
	if err != nil {
		return err
	}
	metrics.SetPaused(true)
	s.logger.Warn("registry paused", "caller", caller)
	s.publish(ctx, events.TypePaused, nil)
	return nil
}

func (s *Service) Unpause(ctx context.Context, caller domain.Address) (err error) {
	defer func() { metrics.ObserveOperation("unpause", err) }()

	if err = s.RequireRole(ctx, domain.RolePauser, caller); err != nil {
		return err
	}
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		cfg, err := s.store.GetConfig(ctx)
		if err != nil {
			return err
		}
		if !cfg.Paused {
			return dErrors.New(dErrors.CodeConflict, "already unpaused")
		}
		return s.store.SetPaused(ctx, false)
	})
	if err != nil {
		return err
	}
	metrics.SetPaused(false)
	s.logger.Info("registry unpaused", "caller", caller)
	s.publish(ctx, events.TypeUnpaused, nil)
	return nil
}

// ====================================================================
// Role administration (admin role)
// ====================================================================

func (s *Service) GrantRole(ctx context.Context, caller domain.Address, role domain.Role, addr domain.Address) (err error) {
	defer func() { metrics.ObserveOperation("grant_role", err) }()

	if err = s.RequireRole(ctx, domain.RoleAdmin, caller); err != nil {
		return err
	}
	if !role.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	if addr.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "address zero")
	}
	if err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		return s.store.GrantRole(ctx, role, addr)
	}); err != nil {
		return err
	}
	s.publish(ctx, events.TypeRoleGranted, map[string]any{"role": role, "address": addr})
	return nil
}

func (s *Service) RevokeRole(ctx context.Context, caller domain.Address, role domain.Role, addr domain.Address) (err error) {
	defer func() { metrics.ObserveOperation("revoke_role", err) }()

	if err = s.RequireRole(ctx, domain.RoleAdmin, caller); err != nil {
		return err
	}
	if !role.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	if err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		return s.store.RevokeRole(ctx, role, addr)
	}); err != nil {
		return err
	}
	s.publish(ctx, events.TypeRoleRevoked, map[string]any{"role": role, "address": addr})
	return nil
}

func (s *Service) publish(ctx context.Context, t events.Type, payload any) {
	ev := events.Event{
		Type:      t,
		Timestamp: requestcontext.Now(ctx),
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		Payload:   payload,
	}
	if caller := requestcontext.Caller(ctx); !caller.IsZero() {
		ev.Actor = caller.String()
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("event publish failed", "type", t, "error", err)
	}
}
