package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WithTx executes fn within a RepeatableRead transaction. Posting paths rely on
// this isolation level so a balance read never observes a half-written entry.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	return withTx(ctx, pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, fn)
}

// WithSerializableTx executes fn at Serializable isolation. Cascade deletes
// use it so the lock-and-recheck sequence commits atomically with the
// deletes it guards.
func WithSerializableTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	return withTx(ctx, pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
}

func withTx(ctx context.Context, pool *pgxpool.Pool, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}
