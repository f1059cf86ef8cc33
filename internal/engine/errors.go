package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrQuestBusy is returned when an AI breakdown is already running for a quest.
	ErrQuestBusy = errors.New("quest is busy")
	// ErrBonusNotFound means the pending bonus was confirmed, declined or invalidated.
	ErrBonusNotFound = errors.New("pending bonus not found")
	// ErrBonusUnavailable means the quest is not complete or already has its bonus.
	ErrBonusUnavailable = errors.New("quest bonus unavailable")
	// ErrTaskCompleted guards fields that decide XP on a completed task.
	ErrTaskCompleted = errors.New("task is completed")
	// ErrInvalidBreakdown is returned for empty or malformed AI results.
	ErrInvalidBreakdown = errors.New("invalid quest breakdown")
	// ErrAINotConfigured is returned when no assistant is wired in.
	ErrAINotConfigured = errors.New("ai assistant is not configured")
	// ErrChallengeNotWon is returned when claiming a challenge that is not won.
	ErrChallengeNotWon = errors.New("challenge is not won")
)

// GateError indicates a template is locked behind a required global level.
type GateError struct {
	Feature       string
	RequiredLevel int
}

func (e GateError) Error() string {
	if e.RequiredLevel <= 0 {
		return fmt.Sprintf("'%s' is locked", e.Feature)
	}
	return fmt.Sprintf("'%s' unlocks at level %d", e.Feature, e.RequiredLevel)
}
