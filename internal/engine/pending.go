package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PendingBonus is a quest bonus offered to the user but not yet applied.
type PendingBonus struct {
	ID         string
	QuestID    string
	QuestTitle string
	Amount     int
	Categories int
	ProposedAt time.Time
}

// BonusOutcome is the result of answering a PendingBonus.
type BonusOutcome struct {
	Applied bool
	Amount  int
	// Reason explains a cancelled outcome ("declined", "quest no longer complete", ...).
	Reason string
	XPChange
}

func (s *Store) pendingForQuest(questID string) *PendingBonus {
	for _, p := range s.pending {
		if p.QuestID == questID {
			return p
		}
	}
	return nil
}

func (s *Store) dropPendingForQuest(questID string) {
	for id, p := range s.pending {
		if p.QuestID == questID {
			delete(s.pending, id)
		}
	}
}

// PendingBonuses lists open proposals, oldest first.
func (s *Store) PendingBonuses() []PendingBonus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PendingBonus, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ProposedAt.Equal(out[j].ProposedAt) {
			return out[i].ProposedAt.Before(out[j].ProposedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PendingBonusForQuest returns the open proposal for a quest, if any.
func (s *Store) PendingBonusForQuest(questID string) (PendingBonus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.pendingForQuest(questID); p != nil {
		return *p, true
	}
	return PendingBonus{}, false
}

// ProposeQuestBonus offers the bonus of a complete quest that has nothing
// banked. An existing proposal for the quest is returned unchanged. A missing
// quest yields (nil, nil).
func (s *Store) ProposeQuestBonus(ctx context.Context, questID string) (*PendingBonus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := findQuest(s.state.quests, questID)
	if i < 0 {
		return nil, nil
	}
	q := s.state.quests[i]
	if !QuestComplete(q) {
		return nil, fmt.Errorf("quest %s is not complete: %w", questID, ErrBonusUnavailable)
	}
	if q.BonusXP > 0 {
		return nil, fmt.Errorf("quest %s already has its bonus: %w", questID, ErrBonusUnavailable)
	}
	if p := s.pendingForQuest(questID); p != nil {
		cp := *p
		return &cp, nil
	}

	p := &PendingBonus{
		ID:         uuid.NewString(),
		QuestID:    q.ID,
		QuestTitle: q.Title,
		Amount:     QuestBonusForCategories(len(q.Categories)),
		Categories: len(q.Categories),
		ProposedAt: s.now(),
	}
	s.pending[p.ID] = p
	s.log.Info("quest bonus proposed", zap.String("quest_id", q.ID), zap.Int("amount", p.Amount))
	cp := *p
	return &cp, nil
}

// ConfirmBonus answers a proposal. Accepting re-validates the quest and banks
// the bonus; declining clears the proposal without touching XP.
func (s *Store) ConfirmBonus(ctx context.Context, bonusID string, accept bool) (*BonusOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[bonusID]
	if !ok {
		return nil, ErrBonusNotFound
	}
	if !accept {
		delete(s.pending, bonusID)
		s.log.Info("quest bonus declined", zap.String("quest_id", p.QuestID))
		return &BonusOutcome{Reason: "declined"}, nil
	}

	c := s.begin()
	qi := findQuest(c.next.quests, p.QuestID)
	if qi < 0 {
		delete(s.pending, bonusID)
		return &BonusOutcome{Reason: "quest deleted"}, nil
	}
	q := &c.next.quests[qi]
	if !QuestComplete(*q) {
		delete(s.pending, bonusID)
		return &BonusOutcome{Reason: "quest no longer complete"}, nil
	}
	if q.BonusXP > 0 {
		delete(s.pending, bonusID)
		return &BonusOutcome{Reason: "bonus already applied"}, nil
	}

	amount := QuestBonusForCategories(len(q.Categories))
	q.BonusXP = amount
	c.award(amount, SkillDefault, ReasonQuestBonus, q.ID)
	c.dropPendingID = bonusID

	xc, err := s.commit(ctx, c)
	if err != nil {
		return nil, err
	}
	s.log.Info("quest bonus applied", zap.String("quest_id", q.ID), zap.Int("amount", amount))
	return &BonusOutcome{Applied: true, Amount: amount, XPChange: xc}, nil
}
