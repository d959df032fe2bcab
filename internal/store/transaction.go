package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/strefethen/crud-example/internal/platform/logger"
)

// TxFn runs inside a transaction opened by RunInTransaction.
type TxFn func(ctx context.Context, tx *sql.Tx) error

// RunInTransaction commits when fn returns nil and rolls back otherwise.
// The SQL backends use it so a document save is all-or-nothing. A panic in
// fn rolls back and is re-raised.
func RunInTransaction(ctx context.Context, db *sql.DB, fn TxFn) error {
	log := logger.FromContext(ctx).With("component", "document_tx")

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back after panic", "error", rbErr, "panic", p)
		}
		panic(p)
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("failed to roll back transaction", "rollback_error", rbErr, "error", err)
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		log.Debug("rolled back transaction", "error", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
