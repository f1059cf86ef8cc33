package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xpeak/internal/storage"
)

// BreakdownTask is one task proposed by the assistant.
type BreakdownTask struct {
	Name          string `json:"name"`
	Difficulty    string `json:"difficulty"`
	SkillCategory string `json:"skillCategory"`
}

// BreakdownCategory is one quest category proposed by the assistant.
type BreakdownCategory struct {
	Title string          `json:"title"`
	Tasks []BreakdownTask `json:"tasks"`
}

// SuggestedTask is a standalone task proposed by the assistant.
type SuggestedTask struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Difficulty    string `json:"difficulty"`
	SkillCategory string `json:"skillCategory"`
	IsHabit       bool   `json:"isHabit"`
}

// Assistant generates quest breakdowns and task suggestions.
type Assistant interface {
	Breakdown(ctx context.Context, questTitle string) ([]BreakdownCategory, error)
	SuggestTasks(ctx context.Context, prompt string) ([]SuggestedTask, error)
}

// ValidateBreakdown rejects results that would leave a quest without usable
// categories.
func ValidateBreakdown(cats []BreakdownCategory) error {
	if len(cats) == 0 {
		return fmt.Errorf("no categories: %w", ErrInvalidBreakdown)
	}
	for i, c := range cats {
		if strings.TrimSpace(c.Title) == "" {
			return fmt.Errorf("category %d has no title: %w", i, ErrInvalidBreakdown)
		}
		for j, t := range c.Tasks {
			if strings.TrimSpace(t.Name) == "" {
				return fmt.Errorf("category %q task %d has no name: %w", c.Title, j, ErrInvalidBreakdown)
			}
		}
	}
	return nil
}

// BreakdownQuest asks the assistant to split a quest into categories and
// replaces the quest's categories with the result.
//
// The quest is marked busy for the duration of the call; a second call for
// the same quest gets ErrQuestBusy. The store lock is not held while waiting
// on the assistant. A result arriving after ctx is done, or for a quest that
// was deleted meanwhile, is dropped.
func (s *Store) BreakdownQuest(ctx context.Context, questID string) (*QuestResult, error) {
	if s.assistant == nil {
		return nil, ErrAINotConfigured
	}

	s.mu.Lock()
	i := findQuest(s.state.quests, questID)
	if i < 0 {
		s.mu.Unlock()
		return &QuestResult{QuestID: questID}, nil
	}
	if s.busy[questID] {
		s.mu.Unlock()
		return nil, fmt.Errorf("quest %s: %w", questID, ErrQuestBusy)
	}
	title := s.state.quests[i].Title
	s.busy[questID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.busy, questID)
		s.mu.Unlock()
	}()

	s.log.Debug("quest breakdown requested", zap.String("quest_id", questID))
	cats, err := s.assistant.Breakdown(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("breakdown quest %s: %w", questID, err)
	}
	if err := ValidateBreakdown(cats); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		s.log.Info("quest breakdown dropped", zap.String("quest_id", questID), zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.replaceCategoriesLocked(ctx, questID, cats)
	if err != nil {
		return nil, err
	}
	if res.Applied {
		s.log.Info("quest breakdown applied", zap.String("quest_id", questID), zap.Int("categories", len(cats)))
	}
	return res, nil
}

// AddSuggestedTasks asks the assistant for standalone tasks matching prompt
// and adds them. Suggestions without a title are skipped.
func (s *Store) AddSuggestedTasks(ctx context.Context, prompt string) ([]storage.Task, error) {
	if s.assistant == nil {
		return nil, ErrAINotConfigured
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	suggestions, err := s.assistant.SuggestTasks(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("suggest tasks: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	var added []storage.Task
	for _, sg := range suggestions {
		title := strings.TrimSpace(sg.Title)
		if title == "" {
			continue
		}
		t := storage.Task{
			ID:          uuid.NewString(),
			Title:       title,
			Description: strings.TrimSpace(sg.Description),
			Difficulty:  string(parseStoredDifficulty(sg.Difficulty)),
			Skill:       string(parseStoredSkill(sg.SkillCategory)),
			IsHabit:     sg.IsHabit,
			CreatedAt:   c.now,
		}
		c.next.tasks = append(c.next.tasks, t)
		added = append(added, t)
	}
	if len(added) == 0 {
		return nil, nil
	}
	if _, err := s.commit(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("suggested tasks added", zap.Int("count", len(added)))
	return added, nil
}
