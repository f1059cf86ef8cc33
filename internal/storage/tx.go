package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// WithTx runs fn inside a SQL transaction named op. The transaction is rolled
// back when fn fails or panics, and committed otherwise.
func WithTx(ctx context.Context, db *sql.DB, op string, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit tx: %w", op, err)
	}
	return nil
}
