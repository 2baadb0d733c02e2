package postgres

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"agent-promosi/internal/domain"
	"agent-promosi/internal/domain/ports/repository"
)

// Ensure compile-time conformance
var _ repository.TransactionManager = (*TxManager)(nil)

// TxManager implements repository.TransactionManager for pgx.
// The callback receives the pgx.Tx as its repository.Tx.
type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// WithTx commits when fn returns nil and rolls back otherwise.
// Hooks registered with AfterCommit on the ctx passed to fn run after a successful commit.
func (m *TxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := m.pool.BeginTx(ctx, txOpt)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	return withCommitHooks(ctx,
		func(ctx context.Context) error { return fn(ctx, tx) },
		func() error { return tx.Commit(ctx) },
	)
}

type commitHooksKey struct{}

type commitHooks struct {
	fns []func(context.Context)
}

// AfterCommit defers fn until the transaction that WithTx opened for ctx has
// committed. Outside WithTx, fn runs immediately.
func AfterCommit(ctx context.Context, fn func(context.Context)) {
	if h, ok := ctx.Value(commitHooksKey{}).(*commitHooks); ok {
		h.fns = append(h.fns, fn)
		return
	}
	fn(ctx)
}

// withCommitHooks runs fn with a fresh hook scope and fires the hooks only
// when both fn and commit succeed.
func withCommitHooks(ctx context.Context, fn func(ctx context.Context) error, commit func() error) error {
	hooks := &commitHooks{}
	if err := fn(context.WithValue(ctx, commitHooksKey{}, hooks)); err != nil {
		return err
	}
	if err := commit(); err != nil {
		return err
	}
	for _, h := range hooks.fns {
		h(ctx)
	}
	return nil
}

type executor interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func getExecutor(pool *pgxpool.Pool, tx repository.Tx) (executor, error) {
	switch v := tx.(type) {
	case pgx.Tx:
		return v, nil
	case *pgxpool.Conn:
		return v, nil
	case *pgxpool.Pool:
		return v, nil
	case nil:
		if pool != nil {
			return pool, nil
		}
		return nil, domain.ErrInvalidArgument
	default:
		return nil, domain.ErrInvalidExecContext
	}
}
