package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SnapshotRepo {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSnapshotRepo(db)
}

func TestLoadMissingUserReturnsNil(t *testing.T) {
	repo := openTestDB(t)
	snap, err := repo.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()
	done := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	in := &Snapshot{
		Profile: Profile{
			UserID:  "u1",
			Name:    "Ada",
			TotalXP: 120,
			Level:   1,
			Skills:  map[string]SkillStat{"PHYSICAL": {XP: 45, Level: 0}},
			Goals:   []string{"run a marathon"},
		},
		Tasks: []Task{{ID: "t1", Title: "Stretch", Difficulty: "EASY", Skill: "PHYSICAL", IsHabit: true, Streak: 3, LastCompletedDate: &done}},
		Quests: []Quest{{
			ID:    "q1",
			Title: "Ship it",
			Categories: []QuestCategory{{
				ID: "c1", Title: "Plan", SectionBonusXP: 20,
				Tasks: []QuestTask{{ID: "qt1", Name: "Outline", Status: "completed", Difficulty: "MEDIUM", Skill: "MENTAL"}},
			}},
		}},
	}
	entries := []LedgerEntry{
		{Delta: 10, Reason: "task", RefID: "t1", At: done},
		{Delta: 20, Reason: "section_bonus", RefID: "c1", At: done.Add(time.Minute)},
	}
	require.NoError(t, repo.Save(ctx, "u1", in, entries))

	out, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "Ada", out.Profile.Name)
	assert.Equal(t, 45, out.Profile.Skills["PHYSICAL"].XP)
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, 3, out.Tasks[0].Streak)
	require.NotNil(t, out.Tasks[0].LastCompletedDate)
	assert.True(t, done.Equal(*out.Tasks[0].LastCompletedDate))
	require.Len(t, out.Quests, 1)
	assert.Equal(t, 20, out.Quests[0].Categories[0].SectionBonusXP)
	assert.NotNil(t, out.Challenges)

	recent, err := repo.Ledger().Recent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "section_bonus", recent[0].Reason)

	sum, err := repo.Ledger().SumSince(ctx, "u1", done.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 30, sum)
}

func TestSaveOverwritesDocuments(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "u1", &Snapshot{Profile: Profile{Name: "one"}, Tasks: []Task{{ID: "a"}, {ID: "b"}}}, nil))
	require.NoError(t, repo.Save(ctx, "u1", &Snapshot{Profile: Profile{Name: "two"}}, nil))

	out, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "two", out.Profile.Name)
	assert.Empty(t, out.Tasks)
}

func TestSnapshotsAreKeyedByUser(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "a", &Snapshot{Profile: Profile{Name: "A"}}, []LedgerEntry{{Delta: 5, Reason: "task"}}))
	require.NoError(t, repo.Save(ctx, "b", &Snapshot{Profile: Profile{Name: "B"}}, nil))

	a, err := repo.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "A", a.Profile.Name)

	recent, err := repo.Ledger().Recent(ctx, "b", 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestSumSinceComparesInstantsAcrossZones(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	// 02:00 UTC on the 19th is still the 18th in New York and already
	// mid-morning on the 19th in Tokyo.
	at := time.Date(2026, 10, 19, 2, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, "u", &Snapshot{}, []LedgerEntry{{Delta: 40, Reason: "task", At: at}}))

	newYork := time.FixedZone("EDT", -4*60*60)
	tokyo := time.FixedZone("JST", 9*60*60)

	tests := []struct {
		name  string
		since time.Time
		want  int
	}{
		{"midnight after the entry, behind UTC", time.Date(2026, 10, 19, 0, 0, 0, 0, newYork), 0},
		{"midnight before the entry, behind UTC", time.Date(2026, 10, 18, 0, 0, 0, 0, newYork), 40},
		{"midnight before the entry, ahead of UTC", time.Date(2026, 10, 19, 0, 0, 0, 0, tokyo), 40},
		{"midnight after the entry, ahead of UTC", time.Date(2026, 10, 20, 0, 0, 0, 0, tokyo), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, err := repo.Ledger().SumSince(ctx, "u", tt.since)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sum)
		})
	}
}
