package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Document kinds stored per user.
const (
	KindProfile    = "profile"
	KindTasks      = "tasks"
	KindQuests     = "quests"
	KindChallenges = "challenges"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			body TEXT NOT NULL,
			updated_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, kind)
		);`,
		// Append-only audit of every XP movement (awards, revocations, bonuses).
		`CREATE TABLE IF NOT EXISTS xp_ledger (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			at DATETIME NOT NULL,
			delta INTEGER NOT NULL,
			reason TEXT NOT NULL,
			ref_id TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_xp_ledger_user_at ON xp_ledger(user_id, at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
