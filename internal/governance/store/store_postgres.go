package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/lib/pq"

	"attestgate/internal/governance/models"
	"attestgate/pkg/domain"
	dErrors "attestgate/pkg/domain-errors"
	"attestgate/pkg/platform/tx"
)

// PostgresStore persists governance state in PostgreSQL. Mutations issued
// inside a context transaction join it, so a service-level call commits or
// rolls back as one unit.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the governance tables when absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS governance_config (
	singleton            BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
	treasury             TEXT NOT NULL,
	transaction_cost_usd NUMERIC(78,0) NOT NULL,
	paused               BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE TABLE IF NOT EXISTS governance_data_types (
	data_type BIGINT PRIMARY KEY,
	active    BOOLEAN NOT NULL
);
CREATE TABLE IF NOT EXISTS governance_tokens (
	token   TEXT PRIMARY KEY,
	enabled BOOLEAN NOT NULL,
	oracle  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS governance_roles (
	role    TEXT NOT NULL,
	address TEXT NOT NULL,
	PRIMARY KEY (role, address)
);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure governance schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetConfig(ctx context.Context) (*models.Config, error) {
	q := tx.QuerierFrom(ctx, s.db)

	cfg := &models.Config{
		DataTypes: map[domain.DataType]bool{},
		Tokens:    map[domain.Address]models.TokenPayment{},
	}
	var treasury, cost string
	err := q.QueryRowContext(ctx,
		`SELECT treasury, transaction_cost_usd, paused FROM governance_config`,
	).Scan(&treasury, &cost, &cfg.Paused)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, fmt.Errorf("load governance config: %w", err)
	}
	if cfg.Treasury, err = domain.ParseAddress(treasury); err != nil {
		return nil, fmt.Errorf("stored treasury: %w", err)
	}
	v, ok := new(big.Int).SetString(cost, 10)
	if !ok {
		return nil, fmt.Errorf("stored transaction cost %q is not numeric", cost)
	}
	cfg.TransactionCostUSD = v

	if err := s.loadDataTypes(ctx, q, cfg); err != nil {
		return nil, err
	}
	if err := s.loadTokens(ctx, q, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *PostgresStore) loadDataTypes(ctx context.Context, q tx.Querier, cfg *models.Config) error {
	rows, err := q.QueryContext(ctx, `SELECT data_type, active FROM governance_data_types`)
	if err != nil {
		return fmt.Errorf("load data types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var dt int64
		var active bool
		if err := rows.Scan(&dt, &active); err != nil {
			return fmt.Errorf("scan data type: %w", err)
		}
		cfg.DataTypes[domain.DataType(dt)] = active
	}
	return rows.Err()
}

func (s *PostgresStore) loadTokens(ctx context.Context, q tx.Querier, cfg *models.Config) error {
	rows, err := q.QueryContext(ctx, `SELECT token, enabled, oracle FROM governance_tokens`)
	if err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var token, oracle string
		var enabled bool
		if err := rows.Scan(&token, &enabled, &oracle); err != nil {
			return fmt.Errorf("scan token: %w", err)
		}
		addr, err := domain.ParseAddress(token)
		if err != nil {
			return fmt.Errorf("stored token: %w", err)
		}
		oracleAddr, err := domain.ParseAddress(oracle)
		if err != nil {
			return fmt.Errorf("stored oracle: %w", err)
		}
		cfg.Tokens[addr] = models.TokenPayment{Enabled: enabled, Oracle: oracleAddr}
	}
	return rows.Err()
}

func (s *PostgresStore) InitConfig(ctx context.Context, cfg *models.Config) error {
	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx,
		`INSERT INTO governance_config (treasury, transaction_cost_usd, paused) VALUES ($1, $2, $3)`,
		cfg.Treasury.String(), cfg.TransactionCostUSD.String(), cfg.Paused,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.New(dErrors.CodeConflict, "contract is already initialized")
		}
		return fmt.Errorf("init governance config: %w", err)
	}
	for dt, active := range cfg.DataTypes {
		if err := s.SetDataType(ctx, dt, active); err != nil {
			return err
		}
	}
	for token, tp := range cfg.Tokens {
		if err := s.SetTokenPayment(ctx, token, tp); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) SetTreasury(ctx context.Context, addr domain.Address) error {
	return s.updateConfig(ctx, `UPDATE governance_config SET treasury = $1`, addr.String())
}

func (s *PostgresStore) SetTransactionCost(ctx context.Context, cost string) error {
	return s.updateConfig(ctx, `UPDATE governance_config SET transaction_cost_usd = $1`, cost)
}

func (s *PostgresStore) SetPaused(ctx context.Context, paused bool) error {
	return s.updateConfig(ctx, `UPDATE governance_config SET paused = $1`, paused)
}

func (s *PostgresStore) updateConfig(ctx context.Context, query string, arg any) error {
	q := tx.QuerierFrom(ctx, s.db)
	res, err := q.ExecContext(ctx, query, arg)
	if err != nil {
		return fmt.Errorf("update governance config: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotInitialized
	}
	return nil
}

func (s *PostgresStore) SetDataType(ctx context.Context, dt domain.DataType, active bool) error {
	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx,
		`INSERT INTO governance_data_types (data_type, active) VALUES ($1, $2)
		 ON CONFLICT (data_type) DO UPDATE SET active = EXCLUDED.active`,
		int64(dt), active,
	)
	if err != nil {
		return fmt.Errorf("set data type: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetTokenPayment(ctx context.Context, token domain.Address, tp models.TokenPayment) error {
	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx,
		`INSERT INTO governance_tokens (token, enabled, oracle) VALUES ($1, $2, $3)
		 ON CONFLICT (token) DO UPDATE SET enabled = EXCLUDED.enabled, oracle = EXCLUDED.oracle`,
		token.String(), tp.Enabled, tp.Oracle.String(),
	)
	if err != nil {
		return fmt.Errorf("set token payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) HasRole(ctx context.Context, role domain.Role, addr domain.Address) (bool, error) {
	q := tx.QuerierFrom(ctx, s.db)
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM governance_roles WHERE role = $1 AND address = $2)`,
		role.String(), addr.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) GrantRole(ctx context.Context, role domain.Role, addr domain.Address) error {
	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx,
		`INSERT INTO governance_roles (role, address) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		role.String(), addr.String(),
	)
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeRole(ctx context.Context, role domain.Role, addr domain.Address) error {
	q := tx.QuerierFrom(ctx, s.db)
	_, err := q.ExecContext(ctx,
		`DELETE FROM governance_roles WHERE role = $1 AND address = $2`,
		role.String(), addr.String(),
	)
	if err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	return nil
}

// isUniqueViolation matches the PostgreSQL unique_violation SQLSTATE.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
