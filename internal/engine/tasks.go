package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xpeak/internal/storage"
)

type TaskInput struct {
	Title       string
	Description string
	Difficulty  Difficulty
	Skill       Skill
	IsHabit     bool
}

// TaskPatch edits a task. Nil fields are left alone.
type TaskPatch struct {
	Title       *string
	Description *string
	Difficulty  *Difficulty
	Skill       *Skill
}

// TaskResult reports what a task command did. Applied is false when the task
// does not exist.
type TaskResult struct {
	Applied bool
	Task    storage.Task
	XP      XPBreakdown
	XPChange
}

// AddTask creates a pending task.
func (s *Store) AddTask(ctx context.Context, in TaskInput) (*storage.Task, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	if !in.Difficulty.IsValid() {
		return nil, fmt.Errorf("invalid difficulty: %q", in.Difficulty)
	}
	skill := in.Skill
	if !skill.IsValid() {
		skill = SkillDefault
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	t := storage.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Difficulty:  string(in.Difficulty),
		Skill:       string(skill),
		IsHabit:     in.IsHabit,
		CreatedAt:   c.now,
	}
	c.next.tasks = append(c.next.tasks, t)
	if _, err := s.commit(ctx, c); err != nil {
		return nil, err
	}
	s.log.Debug("task added", zap.String("task_id", t.ID), zap.Bool("habit", t.IsHabit))
	return &t, nil
}

// UpdateTask edits a task. Difficulty and skill decide the XP already
// awarded, so they can only change while the task is not completed.
func (s *Store) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*TaskResult, error) {
	if patch.Title != nil {
		t, err := normalizeTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &t
	}
	if patch.Difficulty != nil && !patch.Difficulty.IsValid() {
		return nil, fmt.Errorf("invalid difficulty: %q", *patch.Difficulty)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	i := findTask(c.next.tasks, id)
	if i < 0 {
		return &TaskResult{}, nil
	}
	t := &c.next.tasks[i]
	if t.Completed && (patch.Difficulty != nil || patch.Skill != nil) {
		return nil, fmt.Errorf("task %s: %w", id, ErrTaskCompleted)
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Difficulty != nil {
		t.Difficulty = string(*patch.Difficulty)
	}
	if patch.Skill != nil {
		sk := *patch.Skill
		if !sk.IsValid() {
			sk = SkillDefault
		}
		t.Skill = string(sk)
	}
	if _, err := s.commit(ctx, c); err != nil {
		return nil, err
	}
	return &TaskResult{Applied: true, Task: cloneTask(*t)}, nil
}

// DeleteTask removes a task. XP it earned is kept.
func (s *Store) DeleteTask(ctx context.Context, id string) (*TaskResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	i := findTask(c.next.tasks, id)
	if i < 0 {
		return &TaskResult{}, nil
	}
	removed := c.next.tasks[i]
	c.next.tasks = append(c.next.tasks[:i], c.next.tasks[i+1:]...)
	if _, err := s.commit(ctx, c); err != nil {
		return nil, err
	}
	return &TaskResult{Applied: true, Task: removed}, nil
}

// TaskXP is the award for the task in its current state.
func TaskXP(t storage.Task) XPBreakdown {
	xp, err := CalculateXP(parseStoredDifficulty(t.Difficulty), t.IsHabit, t.Streak)
	if err != nil {
		return XPBreakdown{}
	}
	return xp
}

// ToggleTask completes a pending task or uncompletes a completed one.
//
// Completing a habit first advances its streak (continued from yesterday or
// restarted at 1) and then awards XP for the new streak. Uncompleting
// revokes the XP of the current state and restores the previous streak, so
// the two moves cancel exactly.
func (s *Store) ToggleTask(ctx context.Context, id string) (*TaskResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	// Stale habits are reset before the user touches them.
	SweepHabits(c.next.tasks, c.now, s.loc)

	i := findTask(c.next.tasks, id)
	if i < 0 {
		return &TaskResult{}, nil
	}
	t := &c.next.tasks[i]
	skill := parseStoredSkill(t.Skill)

	var xp XPBreakdown
	if !t.Completed {
		if t.IsHabit {
			advanceStreak(t, c.now, s.loc)
		}
		xp = TaskXP(*t)
		t.Completed = true
		if !t.IsHabit {
			t.LastCompletedDate = cloneTime(&c.now)
		}
		c.award(xp.Total, skill, ReasonTask, t.ID)
	} else {
		xp = TaskXP(*t)
		t.Completed = false
		if t.IsHabit {
			t.Streak = t.PrevStreak
			t.LastCompletedDate = cloneTime(t.PrevCompletedDate)
		} else {
			t.LastCompletedDate = nil
		}
		c.award(-xp.Total, skill, ReasonTaskUndo, t.ID)
	}

	xc, err := s.commit(ctx, c)
	if err != nil {
		return nil, err
	}
	return &TaskResult{Applied: true, Task: cloneTask(*t), XP: xp, XPChange: xc}, nil
}
