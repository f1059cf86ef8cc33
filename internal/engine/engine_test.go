package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"xpeak/internal/storage"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) advanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

type testEnv struct {
	store *Store
	repo  *storage.SnapshotRepo
	clock *testClock
	path  string
}

func newTestStore(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(ctx, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := storage.NewSnapshotRepo(db)
	clock := &testClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	all := append([]Option{WithClock(clock.Now), WithLocation(time.UTC)}, opts...)
	s, err := Open(ctx, repo, "user-1", all...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return &testEnv{store: s, repo: repo, clock: clock, path: path}
}

func (e *testEnv) reopen(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), e.repo, "user-1", WithClock(e.clock.Now), WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	return s
}

func mustAddTask(t *testing.T, s *Store, in TaskInput) storage.Task {
	t.Helper()
	task, err := s.AddTask(context.Background(), in)
	if err != nil {
		t.Fatalf("AddTask(%q): %v", in.Title, err)
	}
	return *task
}

func mustToggle(t *testing.T, s *Store, id string) *TaskResult {
	t.Helper()
	res, err := s.ToggleTask(context.Background(), id)
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if !res.Applied {
		t.Fatalf("ToggleTask(%s) not applied", id)
	}
	return res
}

func TestXPBoundaries(t *testing.T) {
	if got := XPRequiredForLevel(0); got != 0 {
		t.Fatalf("XPRequiredForLevel(0)=%d, want 0", got)
	}
	if got := XPRequiredForLevel(1); got != 100 {
		t.Fatalf("XPRequiredForLevel(1)=%d, want 100", got)
	}
	if got := XPRequiredForLevel(4); got != 800 {
		t.Fatalf("XPRequiredForLevel(4)=%d, want 800", got)
	}

	l1 := XPRequiredForLevel(1)
	if got := LevelForXP(l1 - 1); got != 0 {
		t.Fatalf("LevelForXP(l1-1)=%d, want 0", got)
	}
	if got := LevelForXP(l1); got != 1 {
		t.Fatalf("LevelForXP(l1)=%d, want 1", got)
	}

	l7 := XPRequiredForLevel(7)
	if got := LevelForXP(l7); got != 7 {
		t.Fatalf("LevelForXP(l7)=%d, want 7", got)
	}
	if got := LevelForXP(-50); got != 0 {
		t.Fatalf("LevelForXP(-50)=%d, want 0", got)
	}
}

func TestLevelIsMonotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 20000; xp += 7 {
		l := LevelForXP(xp)
		if l < prev {
			t.Fatalf("LevelForXP(%d)=%d < previous %d", xp, l, prev)
		}
		prev = l
	}
}

func TestProgress(t *testing.T) {
	p := Progress(150, 1)
	if p.Current != 50 {
		t.Fatalf("Current=%d, want 50", p.Current)
	}
	if p.Max != XPRequiredForLevel(2)-XPRequiredForLevel(1) {
		t.Fatalf("Max=%d", p.Max)
	}
	if p.Percentage <= 0 || p.Percentage >= 100 {
		t.Fatalf("Percentage=%f, want inside (0,100)", p.Percentage)
	}
}

func TestCalculateXP(t *testing.T) {
	cases := []struct {
		d      Difficulty
		habit  bool
		streak int
		want   int
	}{
		{DifficultyEasy, false, 0, 10},
		{DifficultyMedium, false, 7, 25},
		{DifficultyHard, false, 0, 50},
		{DifficultyEpic, false, 0, 100},
		{DifficultyEasy, true, 0, 10},
		{DifficultyEasy, true, 5, 15},
		{DifficultyMedium, true, 4, 35},
		{DifficultyHard, true, 10, 100},
		{DifficultyHard, true, 25, 100},
	}
	for _, tc := range cases {
		got, err := CalculateXP(tc.d, tc.habit, tc.streak)
		if err != nil {
			t.Fatalf("CalculateXP(%s,%v,%d): %v", tc.d, tc.habit, tc.streak, err)
		}
		if got.Total != tc.want {
			t.Fatalf("CalculateXP(%s,%v,%d)=%d, want %d", tc.d, tc.habit, tc.streak, got.Total, tc.want)
		}
	}
	if _, err := CalculateXP("TRIVIAL", false, 0); err == nil {
		t.Fatalf("expected error for unknown difficulty")
	}
}

func TestParseDifficultyAndSkill(t *testing.T) {
	if d, err := ParseDifficulty(" Hard "); err != nil || d != DifficultyHard {
		t.Fatalf("ParseDifficulty(Hard)=%q,%v", d, err)
	}
	if _, err := ParseDifficulty("legendary"); err == nil {
		t.Fatalf("expected error for unknown difficulty")
	}
	if got := ParseSkill("career"); got != SkillProfessional {
		t.Fatalf("ParseSkill(career)=%q", got)
	}
	if got := ParseSkill("juggling"); got != SkillDefault {
		t.Fatalf("ParseSkill(juggling)=%q, want DEFAULT", got)
	}
}

func TestNewProfileIsPersisted(t *testing.T) {
	env := newTestStore(t, WithUserName("Ada"))
	p := env.store.Profile()
	if p.Name != "Ada" || p.TotalXP != 0 || p.Level != 0 {
		t.Fatalf("profile=%+v", p)
	}
	if len(p.Skills) != len(TrackedSkills) {
		t.Fatalf("skills=%d, want %d", len(p.Skills), len(TrackedSkills))
	}
	if _, ok := p.Skills[string(SkillDefault)]; ok {
		t.Fatalf("DEFAULT must not carry a skill entry")
	}
	if len(p.Layout) == 0 {
		t.Fatalf("expected default layout")
	}

	snap, err := env.repo.Load(context.Background(), "user-1")
	if err != nil || snap == nil {
		t.Fatalf("load: %v (snap=%v)", err, snap)
	}
}

func TestToggleTaskRoundTrip(t *testing.T) {
	env := newTestStore(t)
	s := env.store

	task := mustAddTask(t, s, TaskInput{Title: "Write report", Difficulty: DifficultyHard, Skill: SkillProfessional})

	done := mustToggle(t, s, task.ID)
	if done.XP.Total != 50 || done.XPDelta != 50 {
		t.Fatalf("complete xp=%d delta=%d, want 50", done.XP.Total, done.XPDelta)
	}
	p := s.Profile()
	if p.TotalXP != 50 || p.Skills[string(SkillProfessional)].XP != 50 {
		t.Fatalf("after complete total=%d skill=%d", p.TotalXP, p.Skills[string(SkillProfessional)].XP)
	}

	undone := mustToggle(t, s, task.ID)
	if undone.XP.Total != done.XP.Total {
		t.Fatalf("undo xp=%d, want %d", undone.XP.Total, done.XP.Total)
	}
	p = s.Profile()
	if p.TotalXP != 0 || p.Skills[string(SkillProfessional)].XP != 0 {
		t.Fatalf("after undo total=%d skill=%d, want 0", p.TotalXP, p.Skills[string(SkillProfessional)].XP)
	}
	if len(p.History) != 2 || p.History[0].XPGained != -50 {
		t.Fatalf("history=%+v", p.History)
	}

	sum, err := env.repo.Ledger().SumSince(context.Background(), "user-1", time.Time{})
	if err != nil {
		t.Fatalf("SumSince: %v", err)
	}
	if sum != 0 {
		t.Fatalf("ledger sum=%d, want 0", sum)
	}
}

func TestDefaultSkillOnlyCountsTowardsTotal(t *testing.T) {
	env := newTestStore(t)
	s := env.store

	task := mustAddTask(t, s, TaskInput{Title: "Errands", Difficulty: DifficultyMedium, Skill: "nonsense"})
	if task.Skill != string(SkillDefault) {
		t.Fatalf("skill=%q, want DEFAULT", task.Skill)
	}
	mustToggle(t, s, task.ID)

	p := s.Profile()
	if p.TotalXP != 25 {
		t.Fatalf("total=%d, want 25", p.TotalXP)
	}
	for sk, stat := range p.Skills {
		if stat.XP != 0 {
			t.Fatalf("skill %s xp=%d, want 0", sk, stat.XP)
		}
	}
}

func TestAwardClampsAtZero(t *testing.T) {
	env := newTestStore(t)
	s := env.store

	s.mu.Lock()
	c := s.begin()
	c.award(30, SkillMental, ReasonTask, "a")
	c.award(-80, SkillMental, ReasonTaskUndo, "a")
	_, err := s.commit(context.Background(), c)
	s.mu.Unlock()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	p := s.Profile()
	if p.TotalXP != 0 || p.Skills[string(SkillMental)].XP != 0 {
		t.Fatalf("total=%d skill=%d, want 0", p.TotalXP, p.Skills[string(SkillMental)].XP)
	}
}

func TestLevelUpIsReported(t *testing.T) {
	env := newTestStore(t)
	s := env.store

	first := mustAddTask(t, s, TaskInput{Title: "Big thing", Difficulty: DifficultyEpic, Skill: SkillCreative})
	res := mustToggle(t, s, first.ID)
	if !res.LevelUp || res.LevelBefore != 0 || res.LevelAfter != 1 {
		t.Fatalf("first epic: %+v, want level 0 -> 1", res.XPChange)
	}

	second := mustAddTask(t, s, TaskInput{Title: "Bigger thing", Difficulty: DifficultyEpic, Skill: SkillCreative})
	res = mustToggle(t, s, second.ID)
	if res.LevelUp || res.LevelAfter != 1 {
		t.Fatalf("second epic: %+v, want to stay at level 1", res.XPChange)
	}
	if got := s.Profile().Skills[string(SkillCreative)].Level; got != 1 {
		t.Fatalf("skill level=%d, want 1", got)
	}

	res = mustToggle(t, s, first.ID)
	if res.LevelDown || res.LevelAfter != 1 {
		t.Fatalf("undo to 100 xp: %+v, want level 1", res.XPChange)
	}
	res = mustToggle(t, s, second.ID)
	if !res.LevelDown || res.LevelAfter != 0 {
		t.Fatalf("undo to 0 xp: %+v, want level down to 0", res.XPChange)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	env := newTestStore(t)
	s := env.store

	task := mustAddTask(t, s, TaskInput{Title: "Flip", Difficulty: DifficultyEasy})
	for i := 0; i < MaxHistory+10; i++ {
		mustToggle(t, s, task.ID)
	}
	if got := len(s.Profile().History); got != MaxHistory {
		t.Fatalf("history len=%d, want %d", got, MaxHistory)
	}
}

func TestUpdateTaskGuardsCompletedFields(t *testing.T) {
	env := newTestStore(t)
	s := env.store
	ctx := context.Background()

	task := mustAddTask(t, s, TaskInput{Title: "Stretch", Difficulty: DifficultyEasy, Skill: SkillPhysical})
	mustToggle(t, s, task.ID)

	hard := DifficultyHard
	if _, err := s.UpdateTask(ctx, task.ID, TaskPatch{Difficulty: &hard}); err == nil {
		t.Fatalf("expected ErrTaskCompleted")
	}

	title := "  Stretch well "
	res, err := s.UpdateTask(ctx, task.ID, TaskPatch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateTask title: %v", err)
	}
	if !res.Applied || res.Task.Title != "Stretch well" {
		t.Fatalf("res=%+v", res)
	}
}

func TestMissingEntitiesAreNoOps(t *testing.T) {
	env := newTestStore(t)
	s := env.store
	ctx := context.Background()

	if res, err := s.ToggleTask(ctx, "nope"); err != nil || res.Applied {
		t.Fatalf("ToggleTask missing: res=%+v err=%v", res, err)
	}
	if res, err := s.DeleteTask(ctx, "nope"); err != nil || res.Applied {
		t.Fatalf("DeleteTask missing: res=%+v err=%v", res, err)
	}
	if res, err := s.ToggleQuestTask(ctx, "q", "c", "t"); err != nil || res.Applied {
		t.Fatalf("ToggleQuestTask missing: res=%+v err=%v", res, err)
	}
	if res, err := s.DeleteQuest(ctx, "q"); err != nil || res.Applied {
		t.Fatalf("DeleteQuest missing: res=%+v err=%v", res, err)
	}
	if p, err := s.ProposeQuestBonus(ctx, "q"); err != nil || p != nil {
		t.Fatalf("ProposeQuestBonus missing: p=%+v err=%v", p, err)
	}
	if s.Profile().TotalXP != 0 {
		t.Fatalf("state changed")
	}
}

func TestDeleteTaskKeepsXP(t *testing.T) {
	env := newTestStore(t)
	s := env.store

	task := mustAddTask(t, s, TaskInput{Title: "Call mom", Difficulty: DifficultyMedium, Skill: SkillSocial})
	mustToggle(t, s, task.ID)
	res, err := s.DeleteTask(context.Background(), task.ID)
	if err != nil || !res.Applied {
		t.Fatalf("DeleteTask: res=%+v err=%v", res, err)
	}
	if got := s.Profile().TotalXP; got != 25 {
		t.Fatalf("total=%d, want 25", got)
	}
	if len(s.Tasks()) != 0 {
		t.Fatalf("task not removed")
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	env := newTestStore(t)
	s := env.store

	task := mustAddTask(t, s, TaskInput{Title: "Gym", Difficulty: DifficultyHard, Skill: SkillPhysical})
	mustToggle(t, s, task.ID)

	s2 := env.reopen(t)
	p := s2.Profile()
	if p.TotalXP != 50 || p.Skills[string(SkillPhysical)].XP != 50 {
		t.Fatalf("reopened profile=%+v", p)
	}
	tasks := s2.Tasks()
	if len(tasks) != 1 || !tasks[0].Completed {
		t.Fatalf("reopened tasks=%+v", tasks)
	}
}

func TestAchievements(t *testing.T) {
	env := newTestStore(t)
	s := env.store

	task := mustAddTask(t, s, TaskInput{Title: "First", Difficulty: DifficultyEpic, Skill: SkillMental})
	mustToggle(t, s, task.ID)

	got := map[string]bool{}
	for _, a := range s.Achievements() {
		got[a.ID] = a.Earned
	}
	if !got["first_task"] {
		t.Fatalf("expected first_task earned")
	}
	if got["productive"] || got["first_quest"] {
		t.Fatalf("unexpected achievements: %+v", got)
	}

	checker := NewAchievementChecker(s.Snapshot())
	if checker.CountEarned() < 1 || checker.CountTotal() != len(checker.GetAchievements()) {
		t.Fatalf("earned=%d total=%d", checker.CountEarned(), checker.CountTotal())
	}
}

func TestUpdateProfileAndLayout(t *testing.T) {
	env := newTestStore(t)
	s := env.store
	ctx := context.Background()

	name := " Grace "
	identity := "I am someone who ships"
	p, err := s.UpdateProfile(ctx, ProfilePatch{Name: &name, Identity: &identity, Goals: []string{"run", " ", "read"}})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if p.Name != "Grace" || p.Identity != identity || len(p.Goals) != 2 {
		t.Fatalf("profile=%+v", p)
	}

	layout, err := s.SetLayout(ctx, []storage.Widget{{ID: "tasks", Visible: true, Order: 2}, {ID: "stats", Visible: false, Order: 1}})
	if err != nil {
		t.Fatalf("SetLayout: %v", err)
	}
	if layout[0].ID != "stats" || layout[1].ID != "tasks" {
		t.Fatalf("layout=%+v", layout)
	}
	if _, err := s.SetLayout(ctx, []storage.Widget{{ID: "a"}, {ID: "a"}}); err == nil {
		t.Fatalf("expected duplicate widget error")
	}
}
