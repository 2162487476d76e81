// Package store persists governance state: the configuration singleton and
// role membership. Two implementations exist, in-memory and PostgreSQL, with
// identical semantics.
package store

import (
	"context"

	"attestgate/internal/governance/models"
	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
)

// ErrNotInitialized signals that the configuration singleton does not exist
// yet. Every operation except initialization fails on it.
var ErrNotInitialized = dErrors.New(dErrors.CodeConflict, "registry not initialized")

// Store is the persistence boundary for governance state.
type Store interface {
	// GetConfig returns a snapshot of the singleton, or ErrNotInitialized.
	GetConfig(ctx context.Context) (*models.Config, error)
	// InitConfig creates the singleton. Fails if it already exists.
	InitConfig(ctx context.Context, cfg *models.Config) error

	SetTreasury(ctx context.Context, addr domain.Address) error
	SetTransactionCost(ctx context.Context, cost string) error
	SetPaused(ctx context.Context, paused bool) error
	SetDataType(ctx context.Context, dt domain.DataType, active bool) error
	SetTokenPayment(ctx context.Context, token domain.Address, tp models.TokenPayment) error

	HasRole(ctx context.Context, role domain.Role, addr domain.Address) (bool, error)
	GrantRole(ctx context.Context, role domain.Role, addr domain.Address) error
	RevokeRole(ctx context.Context, role domain.Role, addr domain.Address) error
}
