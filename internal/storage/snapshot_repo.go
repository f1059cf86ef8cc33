package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotRepo loads and saves whole-document user snapshots. Each document
// kind is stored as one JSON body per user; a save rewrites all of them.
type SnapshotRepo struct {
	db     *sql.DB
	ledger *LedgerRepo
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db, ledger: NewLedgerRepo(db)}
}

func (r *SnapshotRepo) Ledger() *LedgerRepo { return r.ledger }

// Load returns the stored snapshot for userID, or nil when the user has no
// documents yet.
func (r *SnapshotRepo) Load(ctx context.Context, userID string) (*Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, body FROM documents WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("snapshot load: %w", err)
	}
	defer rows.Close()

	var snap Snapshot
	found := false
	for rows.Next() {
		var kind, body string
		if err := rows.Scan(&kind, &body); err != nil {
			return nil, fmt.Errorf("snapshot scan: %w", err)
		}
		found = true

		var target any
		switch kind {
		case KindProfile:
			target = &snap.Profile
		case KindTasks:
			target = &snap.Tasks
		case KindQuests:
			target = &snap.Quests
		case KindChallenges:
			target = &snap.Challenges
		default:
			continue
		}
		if err := json.Unmarshal([]byte(body), target); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", kind, err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot rows: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &snap, nil
}

// Save rewrites every document of the snapshot and appends the ledger entries
// in a single transaction.
func (r *SnapshotRepo) Save(ctx context.Context, userID string, snap *Snapshot, entries []LedgerEntry) error {
	docs := map[string]any{
		KindProfile:    snap.Profile,
		KindTasks:      nonNil(snap.Tasks),
		KindQuests:     nonNil(snap.Quests),
		KindChallenges: nonNil(snap.Challenges),
	}
	bodies := make(map[string]string, len(docs))
	for kind, v := range docs {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", kind, err)
		}
		bodies[kind] = string(data)
	}

	now := time.Now().UTC()
	return WithTx(ctx, r.db, "snapshot save", func(tx *sql.Tx) error {
		for kind, body := range bodies {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO documents (user_id, kind, body, updated_at) VALUES (?, ?, ?, ?)
				ON CONFLICT(user_id, kind) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
			`, userID, kind, body, now)
			if err != nil {
				return fmt.Errorf("document upsert %s: %w", kind, err)
			}
		}
		for _, e := range entries {
			e.UserID = userID
			if e.At.IsZero() {
				e.At = now
			}
			e.At = e.At.UTC()
			if err := insertLedger(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// nonNil keeps empty collections encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
