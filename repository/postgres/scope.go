package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/glatasks/backend/domain"
	"github.com/glatasks/backend/repository"
)

type scopeCtxKey struct{}

// executor is the subset of pgx shared by pgxpool.Pool and pgx.Tx, letting
// repositories run inside a request scope when one is open and directly on
// the pool otherwise.
type executor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// db returns the open transaction from the context, or the pool when no
// scope is active (startup tasks, background jobs).
func db(ctx context.Context, pool *pgxpool.Pool) executor {
	if tx, ok := ctx.Value(scopeCtxKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// ScopeToken is the opaque handle for one request's open transaction.
type ScopeToken struct {
	tx   pgx.Tx
	done bool
}

// ScopeManager opens exactly one transaction per request and guarantees it is
// committed or rolled back on every exit path.
type ScopeManager struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewScopeManager builds a ScopeManager on the shared pool.
func NewScopeManager(pool *pgxpool.Pool, logger *zap.Logger) *ScopeManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeManager{pool: pool, logger: logger}
}

// Begin opens a transaction and stores it in the returned context. End must
// be called exactly once with the returned token.
func (m *ScopeManager) Begin(ctx context.Context) (context.Context, *ScopeToken, error) {
	if ctx.Value(scopeCtxKey{}) != nil {
		return ctx, nil, domain.NewError(domain.ErrCodeInternal, "scope already open for this request")
	}
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return ctx, nil, domain.WrapError(domain.ErrCodeInternal, "begin scope", err)
	}
	token := &ScopeToken{tx: tx}
	return context.WithValue(ctx, scopeCtxKey{}, tx), token, nil
}

// End closes the scope: commit when cause is nil, rollback otherwise.
func (m *ScopeManager) End(ctx context.Context, token *ScopeToken, cause error) error {
	if token == nil || token.done {
		return nil
	}
	token.done = true
	if cause != nil {
		if err := token.tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			m.logger.Error("scope rollback failed", zap.Error(err))
		}
		return nil
	}
	if err := token.tx.Commit(ctx); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "commit scope", err)
	}
	return nil
}

// Run wraps fn in a scope with guaranteed release. Panics inside fn roll the
// transaction back and surface as INTERNAL errors so a poisoned connection
// never leaks back into the pool.
func (m *ScopeManager) Run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	scoped, token, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = m.End(scoped, token, fmt.Errorf("panic: %v", r))
			m.logger.Error("panic inside request scope", zap.Any("panic", r))
			err = domain.NewError(domain.ErrCodeInternal, "internal error")
			return
		}
		if endErr := m.End(scoped, token, err); endErr != nil && err == nil {
			err = endErr
		}
	}()
	return fn(scoped)
}

var _ repository.Scoper = (*ScopeManager)(nil)
