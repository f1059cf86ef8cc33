package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeAssistant struct {
	cats        []BreakdownCategory
	suggestions []SuggestedTask
	err         error

	started chan struct{}
	release chan struct{}
	onCall  func()
}

func (f *fakeAssistant) Breakdown(ctx context.Context, title string) ([]BreakdownCategory, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.onCall != nil {
		f.onCall()
	}
	return f.cats, f.err
}

func (f *fakeAssistant) SuggestTasks(ctx context.Context, prompt string) ([]SuggestedTask, error) {
	return f.suggestions, f.err
}

func sampleBreakdown() []BreakdownCategory {
	return []BreakdownCategory{
		{Title: "Research", Tasks: []BreakdownTask{{Name: "Read docs", Difficulty: "EASY", SkillCategory: "MENTAL"}}},
		{Title: "Build", Tasks: []BreakdownTask{
			{Name: "Prototype", Difficulty: "HARD", SkillCategory: "PROFESSIONAL"},
			{Name: "Polish", Difficulty: "bogus", SkillCategory: "???"},
		}},
	}
}

func TestBreakdownQuestReplacesCategories(t *testing.T) {
	env := newTestStore(t, WithAssistant(&fakeAssistant{cats: sampleBreakdown()}))
	s := env.store
	ctx := context.Background()

	q, err := s.CreateQuest(ctx, QuestInput{Title: "Learn Go", Categories: []string{"Old"}})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}
	res, err := s.BreakdownQuest(ctx, q.ID)
	if err != nil || !res.Applied {
		t.Fatalf("BreakdownQuest: %+v %v", res, err)
	}

	cur, _ := s.Quest(q.ID)
	if len(cur.Categories) != 2 || cur.Categories[0].Title != "Research" {
		t.Fatalf("categories=%+v", cur.Categories)
	}
	polish := cur.Categories[1].Tasks[1]
	if polish.Difficulty != string(DefaultDifficulty) || polish.Skill != string(SkillDefault) || polish.Status != StatusPending {
		t.Fatalf("fallbacks not applied: %+v", polish)
	}
	if s.QuestBusy(q.ID) {
		t.Fatalf("busy marker left behind")
	}
}

func TestBreakdownQuestRejectsMalformedResult(t *testing.T) {
	fake := &fakeAssistant{cats: []BreakdownCategory{}}
	env := newTestStore(t, WithAssistant(fake))
	s := env.store
	ctx := context.Background()

	q, err := s.CreateQuest(ctx, QuestInput{Title: "Learn Go", Categories: []string{"Keep me"}})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}
	if _, err := s.BreakdownQuest(ctx, q.ID); !errors.Is(err, ErrInvalidBreakdown) {
		t.Fatalf("err=%v, want ErrInvalidBreakdown", err)
	}

	fake.cats = []BreakdownCategory{{Title: "", Tasks: nil}}
	if _, err := s.BreakdownQuest(ctx, q.ID); !errors.Is(err, ErrInvalidBreakdown) {
		t.Fatalf("err=%v, want ErrInvalidBreakdown", err)
	}

	cur, _ := s.Quest(q.ID)
	if len(cur.Categories) != 1 || cur.Categories[0].Title != "Keep me" {
		t.Fatalf("quest changed: %+v", cur.Categories)
	}
}

func TestBreakdownQuestIsExclusivePerQuest(t *testing.T) {
	fake := &fakeAssistant{cats: sampleBreakdown(), started: make(chan struct{}), release: make(chan struct{})}
	env := newTestStore(t, WithAssistant(fake))
	s := env.store
	ctx := context.Background()

	q, err := s.CreateQuest(ctx, QuestInput{Title: "Learn Go"})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}

	type result struct {
		res *QuestResult
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := s.BreakdownQuest(ctx, q.ID)
		done <- result{res, err}
	}()
	<-fake.started

	if !s.QuestBusy(q.ID) {
		t.Fatalf("quest not marked busy")
	}
	if _, err := s.BreakdownQuest(ctx, q.ID); !errors.Is(err, ErrQuestBusy) {
		t.Fatalf("err=%v, want ErrQuestBusy", err)
	}
	// The store stays writable while the assistant works.
	if res, err := s.RenameQuest(ctx, q.ID, "Learn Go properly"); err != nil || !res.Applied {
		t.Fatalf("RenameQuest during breakdown: %+v %v", res, err)
	}

	close(fake.release)
	select {
	case r := <-done:
		if r.err != nil || !r.res.Applied {
			t.Fatalf("breakdown: %+v %v", r.res, r.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("breakdown did not finish")
	}
	if s.QuestBusy(q.ID) {
		t.Fatalf("busy marker left behind")
	}
	cur, _ := s.Quest(q.ID)
	if cur.Title != "Learn Go properly" || len(cur.Categories) != 2 {
		t.Fatalf("quest=%+v", cur)
	}
}

func TestBreakdownQuestDropsLateResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeAssistant{cats: sampleBreakdown(), onCall: cancel}
	env := newTestStore(t, WithAssistant(fake))
	s := env.store

	q, err := s.CreateQuest(context.Background(), QuestInput{Title: "Learn Go"})
	if err != nil {
		t.Fatalf("CreateQuest: %v", err)
	}
	if _, err := s.BreakdownQuest(ctx, q.ID); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	cur, _ := s.Quest(q.ID)
	if len(cur.Categories) != 0 {
		t.Fatalf("late result applied: %+v", cur.Categories)
	}

	// A quest deleted while the assistant works is not resurrected.
	fake.onCall = func() {
		if _, err := s.DeleteQuest(context.Background(), q.ID); err != nil {
			t.Errorf("DeleteQuest: %v", err)
		}
	}
	res, err := s.BreakdownQuest(context.Background(), q.ID)
	if err != nil || res.Applied {
		t.Fatalf("res=%+v err=%v, want not applied", res, err)
	}
	if len(s.Quests()) != 0 {
		t.Fatalf("deleted quest came back")
	}
}

func TestAssistantNotConfigured(t *testing.T) {
	env := newTestStore(t)
	if _, err := env.store.BreakdownQuest(context.Background(), "q"); !errors.Is(err, ErrAINotConfigured) {
		t.Fatalf("err=%v, want ErrAINotConfigured", err)
	}
	if _, err := env.store.AddSuggestedTasks(context.Background(), "get fit"); !errors.Is(err, ErrAINotConfigured) {
		t.Fatalf("err=%v, want ErrAINotConfigured", err)
	}
}

func TestAddSuggestedTasks(t *testing.T) {
	fake := &fakeAssistant{suggestions: []SuggestedTask{
		{Title: "Stretch", Difficulty: "EASY", SkillCategory: "PHYSICAL", IsHabit: true},
		{Title: "  "},
		{Title: "Plan week", Difficulty: "MEDIUM", SkillCategory: "PROFESSIONAL"},
	}}
	env := newTestStore(t, WithAssistant(fake))

	added, err := env.store.AddSuggestedTasks(context.Background(), "get organised")
	if err != nil {
		t.Fatalf("AddSuggestedTasks: %v", err)
	}
	if len(added) != 2 || !added[0].IsHabit || added[1].Skill != string(SkillProfessional) {
		t.Fatalf("added=%+v", added)
	}
	if len(env.store.Tasks()) != 2 {
		t.Fatalf("tasks=%d, want 2", len(env.store.Tasks()))
	}
}
