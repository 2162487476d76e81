// Package tx carries a SQL transaction through context so stores compose into
// one atomic unit per mutating call. The registry's all-or-nothing contract
// comes from running every mutating operation inside a single serializable
// transaction; stores pick the transaction out of context when present and
// fall back to the pool for plain reads.
package tx

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Stores issue queries through it so the same code path serves transactional
// and plain calls.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// QuerierFrom returns the context transaction when present, else db.
func QuerierFrom(ctx context.Context, db *sql.DB) Querier {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// Runner provides the transactional boundary for a mutating call.
// Implementations wrap a database transaction or, in-memory, a coarse lock;
// either way the registry's single-writer, all-or-nothing contract holds.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PostgresRunner runs each mutating call in a serializable transaction.
type PostgresRunner struct {
	db *sql.DB
}

func NewPostgresRunner(db *sql.DB) *PostgresRunner {
	return &PostgresRunner{db: db}
}

func (r *PostgresRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return Serializable(ctx, r.db, fn)
}

// MutexRunner serializes mutating calls with a coarse lock. Memory stores are
// individually thread-safe; the runner additionally makes multi-store
// read-modify-write sequences atomic, matching the ledger's one-call-at-a-time
// execution model.
type MutexRunner struct {
	mu sync.Mutex
}

func NewMutexRunner() *MutexRunner {
	return &MutexRunner{}
}

func (r *MutexRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}

// Serializable runs fn inside a serializable transaction, committing on nil
// and rolling back on error. fn receives a context carrying the transaction.
func Serializable(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	sqlTx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
