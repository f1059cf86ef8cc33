package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type LedgerRepo struct {
	db *sql.DB
}

func NewLedgerRepo(db *sql.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

func insertLedger(ctx context.Context, tx *sql.Tx, e LedgerEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO xp_ledger (user_id, at, delta, reason, ref_id)
		VALUES (?, ?, ?, ?, ?)
	`, e.UserID, e.At, e.Delta, e.Reason, e.RefID)
	if err != nil {
		return fmt.Errorf("ledger insert: %w", err)
	}
	return nil
}

// Recent returns the newest entries for a user, newest first.
func (r *LedgerRepo) Recent(ctx context.Context, userID string, limit int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, at, delta, reason, ref_id
		FROM xp_ledger
		WHERE user_id = ?
		ORDER BY at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger recent: %w", err)
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.At, &e.Delta, &e.Reason, &e.RefID); err != nil {
			return nil, fmt.Errorf("ledger scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger rows: %w", err)
	}
	return out, nil
}

// SumSince returns the net XP movement for a user since the given time.
// Ledger times are stored in UTC, so since is compared in UTC too.
func (r *LedgerRepo) SumSince(ctx context.Context, userID string, since time.Time) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(delta), 0)
		FROM xp_ledger
		WHERE user_id = ? AND at >= ?
	`, userID, since.UTC())
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("ledger sum: %w", err)
	}
	return n, nil
}
