package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// txCtxKey is the context key under which WithTx stores the open transaction.
type txCtxKey struct{}

// WithTx executes fn within one database transaction. The open transaction
// travels in fn's context, so every repository call made from fn joins it
// (see TxFromContext). A nil return from fn commits; any error rolls back.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// No-op once the transaction has committed.
		_ = tx.Rollback(ctx)
	}()

	if err := fn(context.WithValue(ctx, txCtxKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// TxFromContext returns the transaction started by WithTx, or nil when the
// context carries none. Repositories call it to decide whether to run a
// statement on the shared pool or inside an enclosing transaction.
func TxFromContext(ctx context.Context) pgx.Tx {
	if tx, ok := ctx.Value(txCtxKey{}).(pgx.Tx); ok {
		return tx
	}
	return nil
}
