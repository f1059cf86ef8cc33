package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xpeak/internal/storage"
)

type QuestInput struct {
	Title       string
	Description string
	// Categories optionally seeds empty categories by title.
	Categories []string
}

type QuestTaskInput struct {
	Name       string
	Difficulty Difficulty
	Skill      Skill
}

// QuestResult reports what a quest command did. Applied is false when the
// referenced quest, category or task does not exist; state is then unchanged.
type QuestResult struct {
	Applied    bool
	QuestID    string
	CategoryID string
	TaskID     string

	// TaskXP is the signed award for a toggled quest task.
	TaskXP int
	// SectionBonus is the net signed section bonus movement.
	SectionBonus      int
	QuestBonusRevoked int
	QuestComplete     bool
	// Pending is the open bonus proposal for the quest after the command.
	Pending *PendingBonus
	XPChange
}

// CreateQuest adds a new quest.
func (s *Store) CreateQuest(ctx context.Context, in QuestInput) (*storage.Quest, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	q := storage.Quest{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		Categories:  []storage.QuestCategory{},
		CreatedAt:   c.now,
	}
	for _, ct := range in.Categories {
		if t, err := normalizeTitle(ct); err == nil {
			AddCategory(&q, t)
		}
	}
	c.next.quests = append(c.next.quests, q)
	if _, err := s.commit(ctx, c); err != nil {
		return nil, err
	}
	out := cloneQuest(q)
	return &out, nil
}

// RenameQuest retitles a quest.
func (s *Store) RenameQuest(ctx context.Context, questID, title string) (*QuestResult, error) {
	t, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyQuest(ctx, questID, func(c *change, q *storage.Quest, res *QuestResult) (bool, error) {
		if q.Title == t {
			return false, nil
		}
		q.Title = t
		return true, nil
	})
}

// DeleteQuest removes a quest with all its categories and tasks. XP already
// awarded stays; any pending bonus for the quest is invalidated.
func (s *Store) DeleteQuest(ctx context.Context, questID string) (*QuestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	i := findQuest(c.next.quests, questID)
	if i < 0 {
		return &QuestResult{QuestID: questID}, nil
	}
	c.next.quests = append(c.next.quests[:i], c.next.quests[i+1:]...)
	c.invalidate = append(c.invalidate, questID)
	xc, err := s.commit(ctx, c)
	if err != nil {
		return nil, err
	}
	s.log.Info("quest deleted", zap.String("quest_id", questID))
	return &QuestResult{Applied: true, QuestID: questID, XPChange: xc}, nil
}

// AddCategory appends an empty category. An empty category is incomplete, so
// a complete quest loses its banked bonus.
func (s *Store) AddCategory(ctx context.Context, questID, title string) (*QuestResult, error) {
	t, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyQuest(ctx, questID, func(c *change, q *storage.Quest, res *QuestResult) (bool, error) {
		cat := AddCategory(q, t)
		res.CategoryID = cat.ID
		return true, nil
	})
}

func (s *Store) RenameCategory(ctx context.Context, questID, categoryID, title string) (*QuestResult, error) {
	t, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyQuest(ctx, questID, func(c *change, q *storage.Quest, res *QuestResult) (bool, error) {
		res.CategoryID = categoryID
		return RenameCategory(q, categoryID, t), nil
	})
}

// DeleteCategory removes a category and its tasks. Its banked section bonus
// stays; the quest is re-evaluated.
func (s *Store) DeleteCategory(ctx context.Context, questID, categoryID string) (*QuestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyQuest(ctx, questID, func(c *change, q *storage.Quest, res *QuestResult) (bool, error) {
		res.CategoryID = categoryID
		return DeleteCategory(q, categoryID), nil
	})
}

// AddQuestTask appends a pending task to a category.
func (s *Store) AddQuestTask(ctx context.Context, questID, categoryID string, in QuestTaskInput) (*QuestResult, error) {
	name, err := normalizeTitle(in.Name)
	if err != nil {
		return nil, err
	}
	if !in.Difficulty.IsValid() {
		return nil, fmt.Errorf("invalid difficulty: %q", in.Difficulty)
	}
	in.Name = name

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyQuest(ctx, questID, func(c *change, q *storage.Quest, res *QuestResult) (bool, error) {
		res.CategoryID = categoryID
		t, ok := AddQuestTask(q, categoryID, in)
		res.TaskID = t.ID
		return ok, nil
	})
}

// DeleteQuestTask removes a task. The XP it earned stays.
func (s *Store) DeleteQuestTask(ctx context.Context, questID, categoryID, taskID string) (*QuestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyQuest(ctx, questID, func(c *change, q *storage.Quest, res *QuestResult) (bool, error) {
		res.CategoryID = categoryID
		res.TaskID = taskID
		_, ok := DeleteQuestTask(q, categoryID, taskID)
		return ok, nil
	})
}

// ToggleQuestTask completes or uncompletes a quest task, moving its XP and
// any section or quest bonus the transition causes.
func (s *Store) ToggleQuestTask(ctx context.Context, questID, categoryID, taskID string) (*QuestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyQuest(ctx, questID, func(c *change, q *storage.Quest, res *QuestResult) (bool, error) {
		res.CategoryID = categoryID
		res.TaskID = taskID
		t, ok := ToggleQuestTask(q, categoryID, taskID)
		if !ok {
			return false, nil
		}
		xp := QuestTaskXP(t).Total
		skill := parseStoredSkill(t.Skill)
		if t.Status == StatusCompleted {
			c.award(xp, skill, ReasonQuestTask, t.ID)
			res.TaskXP = xp
		} else {
			c.award(-xp, skill, ReasonQuestTaskUndo, t.ID)
			res.TaskXP = -xp
		}
		return true, nil
	})
}

type questMutation func(c *change, q *storage.Quest, res *QuestResult) (bool, error)

// applyQuest runs fn on a clone of the quest, settles bonuses against the
// completion state before fn, and commits. Callers hold s.mu.
func (s *Store) applyQuest(ctx context.Context, questID string, fn questMutation) (*QuestResult, error) {
	c := s.begin()
	res := &QuestResult{QuestID: questID}

	i := findQuest(c.next.quests, questID)
	if i < 0 {
		return res, nil
	}
	q := &c.next.quests[i]
	before := SnapshotCompletion(*q)

	ok, err := fn(c, q, res)
	if err != nil {
		return nil, err
	}
	if !ok {
		return res, nil
	}
	res.Applied = true

	s.settleQuest(c, before, q, res)

	xc, err := s.commit(ctx, c)
	if err != nil {
		return nil, err
	}
	res.XPChange = xc
	res.QuestComplete = QuestComplete(s.state.quests[i])
	if p := s.pendingForQuest(questID); p != nil {
		cp := *p
		res.Pending = &cp
	}
	return res, nil
}

// settleQuest applies a Settlement to the change.
func (s *Store) settleQuest(c *change, before CompletionSnapshot, q *storage.Quest, res *QuestResult) {
	st := Settle(before, *q)

	for _, id := range st.SectionAwards {
		ci := findCategory(q, id)
		q.Categories[ci].SectionBonusXP = SectionBonusXP
		c.award(SectionBonusXP, SkillDefault, ReasonSectionBonus, id)
		res.SectionBonus += SectionBonusXP
	}
	for _, r := range st.SectionRevokes {
		ci := findCategory(q, r.CategoryID)
		q.Categories[ci].SectionBonusXP = 0
		c.award(-r.Amount, SkillDefault, ReasonSectionRevoke, r.CategoryID)
		res.SectionBonus -= r.Amount
	}
	if st.QuestRevoke > 0 {
		q.BonusXP = 0
		c.award(-st.QuestRevoke, SkillDefault, ReasonQuestRevoke, q.ID)
		res.QuestBonusRevoked = st.QuestRevoke
	}
	if st.InvalidatePending {
		c.invalidate = append(c.invalidate, q.ID)
	}
	if st.ProposeQuestBonus {
		c.proposals = append(c.proposals, PendingBonus{
			ID:         uuid.NewString(),
			QuestID:    q.ID,
			QuestTitle: q.Title,
			Amount:     st.QuestBonus,
			Categories: len(q.Categories),
			ProposedAt: c.now,
		})
	} else if st.QuestBonus > 0 {
		c.bonusAmounts[q.ID] = st.QuestBonus
	}
}

// replaceCategoriesLocked installs an AI breakdown. Callers hold s.mu.
func (s *Store) replaceCategoriesLocked(ctx context.Context, questID string, cats []BreakdownCategory) (*QuestResult, error) {
	return s.applyQuest(ctx, questID, func(c *change, q *storage.Quest, res *QuestResult) (bool, error) {
		ReplaceCategories(q, cats)
		return true, nil
	})
}

