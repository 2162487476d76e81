// Package upgrade manages named logic versions and the atomic binding that
// selects the active one. Upgrading swaps computation only; every store keeps
// its state, so records and configuration written under the old version are
// observable unchanged under the new one.
package upgrade

import (
	"context"
	"log/slog"
	"math/big"
	"sync"

	"attestgate/internal/events"
	"attestgate/internal/payment/converter"
	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
	"attestgate/pkg/requestcontext"
)

// Logic is one version of the swappable computation. Today that is the fee
// formula; the binding is the seam future behavior changes go through.
type Logic interface {
	Name() string
	FeeFor(ctx context.Context, token domain.Address) (*big.Int, error)
}

// Guard is the governance surface upgrades need.
type Guard interface {
	RequireRole(ctx context.Context, role domain.Role, addr domain.Address) error
}

// Coordinator keeps the registered versions and the active binding.
type Coordinator struct {
	mu       sync.RWMutex
	versions map[string]Logic
	active   Logic

	guard     Guard
	publisher events.Publisher
	logger    *slog.Logger
}

func NewCoordinator(guard Guard, publisher events.Publisher, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		versions:  make(map[string]Logic),
		guard:     guard,
		publisher: publisher,
		logger:    logger,
	}
}

// Register adds a logic version. The first registered version becomes
// active. Registration happens at wiring time, before traffic.
func (c *Coordinator) Register(logic Logic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[logic.Name()] = logic
	if c.active == nil {
		c.active = logic
	}
}

// ActiveVersion names the currently bound logic.
func (c *Coordinator) ActiveVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.active == nil {
		return ""
	}
	return c.active.Name()
}

// Upgrade rebinds the active logic to a registered version. Admin-gated;
// the swap is atomic with respect to in-flight fee computations.
func (c *Coordinator) Upgrade(ctx context.Context, caller domain.Address, version string) error {
	if err := c.guard.RequireRole(ctx, domain.RoleAdmin, caller); err != nil {
		return err
	}

	c.mu.Lock()
	logic, ok := c.versions[version]
	if !ok {
		c.mu.Unlock()
		return dErrors.New(dErrors.CodeNotFound, "unknown logic version")
	}
	previous := ""
	if c.active != nil {
		previous = c.active.Name()
	}
	c.active = logic
	c.mu.Unlock()

	c.logger.Info("logic upgraded", "from", previous, "to", version, "caller", caller)
	ev := events.Event{
		Type:      events.TypeLogicUpgraded,
		Timestamp: requestcontext.Now(ctx),
		RequestID: requestcontext.RequestID(ctx),
		Actor:     caller.String(),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		Payload:   map[string]any{"from": previous, "to": version},
	}
	if err := c.publisher.Publish(ctx, ev); err != nil {
		c.logger.Warn("event publish failed", "type", ev.Type, "error", err)
	}
	return nil
}

// FeeFor delegates to the active logic.
func (c *Coordinator) FeeFor(ctx context.Context, token domain.Address) (*big.Int, error) {
	c.mu.RLock()
	logic := c.active
	c.mu.RUnlock()
	if logic == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "no logic version bound")
	}
	return logic.FeeFor(ctx, token)
}

// CostSource resolves the configured USD transaction cost.
type CostSource interface {
	TransactionCostUSD(ctx context.Context) (*big.Int, error)
}

// StandardLogic is the launch fee formula: the configured USD cost converted
// into token units at the oracle price.
type StandardLogic struct {
	name      string
	costs     CostSource
	converter *converter.Converter
}

var _ Logic = (*StandardLogic)(nil)

func NewStandardLogic(name string, costs CostSource, conv *converter.Converter) *StandardLogic {
	return &StandardLogic{name: name, costs: costs, converter: conv}
}

func (l *StandardLogic) Name() string { return l.name }

func (l *StandardLogic) FeeFor(ctx context.Context, token domain.Address) (*big.Int, error) {
	cost, err := l.costs.TransactionCostUSD(ctx)
	if err != nil {
		return nil, err
	}
	return l.converter.FeeFor(ctx, token, cost)
}

// ConstantFeeLogic charges a fixed token amount regardless of configuration.
// Used to exercise upgrades with an observably different formula.
type ConstantFeeLogic struct {
	name   string
	amount *big.Int
}

var _ Logic = (*ConstantFeeLogic)(nil)

func NewConstantFeeLogic(name string, amount *big.Int) *ConstantFeeLogic {
	return &ConstantFeeLogic{name: name, amount: new(big.Int).Set(amount)}
}

func (l *ConstantFeeLogic) Name() string { return l.name }

func (l *ConstantFeeLogic) FeeFor(context.Context, domain.Address) (*big.Int, error) {
	return new(big.Int).Set(l.amount), nil
}
