package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"xpeak/internal/storage"
)

// dayStart truncates t to midnight in loc.
func dayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// advanceStreak records a habit completion at now: the streak continues when
// the last completion was yesterday, stays when it was already today, and
// restarts at 1 otherwise. The previous values are kept for undo.
func advanceStreak(t *storage.Task, now time.Time, loc *time.Location) {
	today := dayStart(now, loc)
	yesterday := today.AddDate(0, 0, -1)

	t.PrevStreak = t.Streak
	t.PrevCompletedDate = cloneTime(t.LastCompletedDate)

	next := 1
	if t.LastCompletedDate != nil {
		last := dayStart(*t.LastCompletedDate, loc)
		switch {
		case last.Equal(today):
			next = max(1, t.Streak)
		case last.Equal(yesterday):
			next = t.Streak + 1
		}
	}
	t.Streak = next
	t.LastCompletedDate = cloneTime(&now)
}

// SweepResult counts what a habit sweep changed.
type SweepResult struct {
	Reset         int
	StreaksBroken int
}

func (r SweepResult) Changed() bool { return r.Reset > 0 || r.StreaksBroken > 0 }

// SweepHabits applies the daily boundary policy to tasks in place. A habit
// completed before today goes back to pending (its XP stays). A habit whose
// last completion is older than yesterday loses its streak.
func SweepHabits(tasks []storage.Task, now time.Time, loc *time.Location) SweepResult {
	var res SweepResult
	today := dayStart(now, loc)
	yesterday := today.AddDate(0, 0, -1)

	for i := range tasks {
		t := &tasks[i]
		if !t.IsHabit {
			continue
		}
		var last time.Time
		if t.LastCompletedDate != nil {
			last = dayStart(*t.LastCompletedDate, loc)
		}
		if t.Completed && (t.LastCompletedDate == nil || last.Before(today)) {
			t.Completed = false
			// The reset is not an undo; uncompleting must not reach back past it.
			t.PrevStreak = t.Streak
			t.PrevCompletedDate = cloneTime(t.LastCompletedDate)
			res.Reset++
		}
		if t.Streak > 0 && (t.LastCompletedDate == nil || last.Before(yesterday)) {
			t.Streak = 0
			res.StreaksBroken++
		}
	}
	return res
}

// SweepHabits runs the daily boundary policy and persists any change.
func (s *Store) SweepHabits(ctx context.Context) (SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(ctx)
}

func (s *Store) sweepLocked(ctx context.Context) (SweepResult, error) {
	c := s.begin()
	res := SweepHabits(c.next.tasks, c.now, s.loc)
	if !res.Changed() {
		return res, nil
	}
	if _, err := s.commit(ctx, c); err != nil {
		return SweepResult{}, fmt.Errorf("habit sweep: %w", err)
	}
	s.log.Info("habit sweep", zap.Int("reset", res.Reset), zap.Int("streaks_broken", res.StreaksBroken))
	return res, nil
}

// HabitSweeper runs SweepHabits on a fixed interval.
type HabitSweeper struct {
	store    *Store
	interval time.Duration
	log      *zap.Logger
}

func NewHabitSweeper(store *Store, interval time.Duration, log *zap.Logger) *HabitSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HabitSweeper{store: store, interval: interval, log: log}
}

// Run sweeps once immediately and then at every interval. Blocks until ctx
// is cancelled. Sweep failures are logged and retried on the next tick.
func (h *HabitSweeper) Run(ctx context.Context) error {
	h.sweep(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.sweep(ctx)
		}
	}
}

func (h *HabitSweeper) sweep(ctx context.Context) {
	if _, err := h.store.SweepHabits(ctx); err != nil {
		h.log.Warn("habit sweep failed", zap.Error(err))
	}
}
