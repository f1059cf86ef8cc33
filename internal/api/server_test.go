package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xpeak/internal/engine"
	"xpeak/internal/storage"
)

func newTestServer(t *testing.T, cfg Config) (*Server, *engine.Store) {
	t.Helper()
	ctx := context.Background()
	db, err := storage.Open(ctx, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := engine.Open(ctx, storage.NewSnapshotRepo(db), "api-user")
	require.NoError(t, err)
	return New(cfg, store, nil), store
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestTaskToggleMovesXP(t *testing.T) {
	srv, store := newTestServer(t, Config{})
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/tasks", map[string]any{"title": "Stretch", "difficulty": "hard", "skillCategory": "physical"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decodeBody[storage.Task](t, rec)
	assert.Equal(t, "HARD", task.Difficulty)
	assert.Equal(t, "PHYSICAL", task.Skill)

	rec = do(t, h, http.MethodPost, "/api/v1/tasks/"+task.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[taskResultJSON](t, rec)
	assert.True(t, res.Task.Completed)
	assert.Equal(t, 50, res.Award)
	assert.Equal(t, 50, res.XPDelta)

	rec = do(t, h, http.MethodGet, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeBody[profileJSON](t, rec)
	assert.Equal(t, 50, p.TotalXP)
	assert.Equal(t, 50, p.Skills["PHYSICAL"].XP)
	assert.Equal(t, store.Profile().TotalXP, p.TotalXP)

	rec = do(t, h, http.MethodPost, "/api/v1/tasks/"+task.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -50, decodeBody[taskResultJSON](t, rec).XPDelta)
	assert.Zero(t, store.Profile().TotalXP)

	rec = do(t, h, http.MethodPost, "/api/v1/tasks/missing/toggle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBadRequests(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	h := srv.Handler()

	tests := []struct {
		name string
		path string
		body any
	}{
		{name: "empty title", path: "/api/v1/tasks", body: map[string]any{"title": "  "}},
		{name: "bad difficulty", path: "/api/v1/tasks", body: map[string]any{"title": "x", "difficulty": "legendary"}},
		{name: "unknown field", path: "/api/v1/tasks", body: map[string]any{"title": "x", "xp": 9000}},
		{name: "quest without title", path: "/api/v1/quests", body: map[string]any{}},
		{name: "challenge without opponent", path: "/api/v1/challenges", body: map[string]any{"title": "x", "targetValue": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		})
	}
}

// questWithTask creates a one-category quest holding one medium task and
// returns the ids needed to toggle it.
func questWithTask(t *testing.T, h http.Handler) (questID, categoryID, taskID string) {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/v1/quests", map[string]any{"title": "Launch blog", "categories": []string{"Setup"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	q := decodeBody[storage.Quest](t, rec)
	require.Len(t, q.Categories, 1)

	path := "/api/v1/quests/" + q.ID + "/categories/" + q.Categories[0].ID + "/tasks"
	rec = do(t, h, http.MethodPost, path, map[string]any{"name": "Pick a theme", "difficulty": "medium"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[questResultJSON](t, rec)
	require.NotNil(t, res.Quest)
	require.Len(t, res.Quest.Categories[0].Tasks, 1)
	return q.ID, q.Categories[0].ID, res.Quest.Categories[0].Tasks[0].ID
}

func TestQuestBonusConfirm(t *testing.T) {
	srv, store := newTestServer(t, Config{})
	h := srv.Handler()
	qid, cid, tid := questWithTask(t, h)

	rec := do(t, h, http.MethodPost, "/api/v1/quests/"+qid+"/categories/"+cid+"/tasks/"+tid+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[questResultJSON](t, rec)
	assert.Equal(t, 25, res.TaskXP)
	assert.Equal(t, engine.SectionBonusXP, res.SectionBonus)
	assert.True(t, res.QuestComplete)
	require.NotNil(t, res.Pending)
	assert.Equal(t, engine.QuestBonusLow, res.Pending.Amount)

	rec = do(t, h, http.MethodGet, "/api/v1/bonuses", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bonuses := decodeBody[[]bonusJSON](t, rec)
	require.Len(t, bonuses, 1)
	assert.Equal(t, res.Pending.ID, bonuses[0].ID)

	rec = do(t, h, http.MethodPost, "/api/v1/bonuses/"+res.Pending.ID+"/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody[bonusOutcomeJSON](t, rec)
	assert.True(t, out.Applied)
	assert.Equal(t, engine.QuestBonusLow, out.Amount)
	assert.Equal(t, 25+engine.SectionBonusXP+engine.QuestBonusLow, store.Profile().TotalXP)

	// Answered proposals are gone.
	rec = do(t, h, http.MethodPost, "/api/v1/bonuses/"+res.Pending.ID+"/confirm", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The bonus is banked, so there is nothing left to propose.
	rec = do(t, h, http.MethodPost, "/api/v1/quests/"+qid+"/bonus", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestQuestBonusDeclineThenPropose(t *testing.T) {
	srv, store := newTestServer(t, Config{})
	h := srv.Handler()
	qid, cid, tid := questWithTask(t, h)

	rec := do(t, h, http.MethodPost, "/api/v1/quests/"+qid+"/categories/"+cid+"/tasks/"+tid+"/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decodeBody[questResultJSON](t, rec).Pending
	require.NotNil(t, pending)

	rec = do(t, h, http.MethodPost, "/api/v1/bonuses/"+pending.ID+"/decline", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[bonusOutcomeJSON](t, rec)
	assert.False(t, out.Applied)
	assert.Equal(t, "declined", out.Reason)
	assert.Equal(t, 25+engine.SectionBonusXP, store.Profile().TotalXP)

	rec = do(t, h, http.MethodPost, "/api/v1/quests/"+qid+"/bonus", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	again := decodeBody[bonusJSON](t, rec)
	assert.NotEqual(t, pending.ID, again.ID)
	assert.Equal(t, engine.QuestBonusLow, again.Amount)

	rec = do(t, h, http.MethodPost, "/api/v1/quests/missing/bonus", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBreakdownWithoutAssistant(t *testing.T) {
	srv, _ := newTestServer(t, Config{})
	h := srv.Handler()
	qid, _, _ := questWithTask(t, h)

	rec := do(t, h, http.MethodPost, "/api/v1/quests/"+qid+"/breakdown", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestChallengeClaim(t *testing.T) {
	srv, store := newTestServer(t, Config{})
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/challenges", map[string]any{
		"title": "Most pushups", "opponent": "sam", "metric": "reps", "targetValue": 100, "rewardXP": 75,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ch := decodeBody[storage.Challenge](t, rec)

	rec = do(t, h, http.MethodPost, "/api/v1/challenges/"+ch.ID+"/claim", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/challenges/"+ch.ID+"/progress", map[string]any{"myProgress": 100, "opponentProgress": 80})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, engine.ChallengeWon, decodeBody[challengeResultJSON](t, rec).Challenge.Status)

	rec = do(t, h, http.MethodPost, "/api/v1/challenges/"+ch.ID+"/claim", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[challengeResultJSON](t, rec)
	assert.True(t, res.Applied)
	assert.Equal(t, 75, res.XPDelta)
	assert.Equal(t, 75, store.Profile().TotalXP)

	rec = do(t, h, http.MethodGet, "/api/v1/challenges?status=claimed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]storage.Challenge](t, rec), 1)

	rec = do(t, h, http.MethodPost, "/api/v1/challenges/missing/claim", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, Config{RequestsPerSecond: 0.001, Burst: 1})
	h := srv.Handler()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/tasks", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodGet, "/api/v1/tasks", nil).Code)
	// Health checks sit outside the limited group.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", nil).Code)
}
