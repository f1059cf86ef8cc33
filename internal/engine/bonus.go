package engine

import "xpeak/internal/storage"

// SectionBonusXP is awarded once per completed quest category.
const SectionBonusXP = 20

// Quest bonus tiers by category count.
const (
	QuestBonusLow  = 50
	QuestBonusMid  = 150
	QuestBonusHigh = 300
)

// CategoryComplete reports whether c has at least one task and every task is
// completed.
func CategoryComplete(c storage.QuestCategory) bool {
	if len(c.Tasks) == 0 {
		return false
	}
	for _, t := range c.Tasks {
		if t.Status != StatusCompleted {
			return false
		}
	}
	return true
}

// QuestComplete reports whether q has at least one category and every
// category is complete.
func QuestComplete(q storage.Quest) bool {
	if len(q.Categories) == 0 {
		return false
	}
	for _, c := range q.Categories {
		if !CategoryComplete(c) {
			return false
		}
	}
	return true
}

// QuestBonusForCategories returns the quest bonus for a quest with n
// categories.
func QuestBonusForCategories(n int) int {
	switch {
	case n < 1:
		return 0
	case n <= 2:
		return QuestBonusLow
	case n <= 5:
		return QuestBonusMid
	default:
		return QuestBonusHigh
	}
}

// CompletionSnapshot captures the derived completion state of a quest at one
// instant.
type CompletionSnapshot struct {
	Quest      bool
	Categories map[string]bool
}

// SnapshotCompletion records which categories of q are complete and whether
// q itself is.
func SnapshotCompletion(q storage.Quest) CompletionSnapshot {
	cats := make(map[string]bool, len(q.Categories))
	for _, c := range q.Categories {
		cats[c.ID] = CategoryComplete(c)
	}
	return CompletionSnapshot{Quest: QuestComplete(q), Categories: cats}
}

// SectionRevoke names a category whose banked bonus must be taken back.
type SectionRevoke struct {
	CategoryID string
	Amount     int
}

// Settlement is the set of ledger moves needed to bring a quest's banked
// bonuses in line with its completion state.
type Settlement struct {
	SectionAwards  []string
	SectionRevokes []SectionRevoke
	QuestRevoke    int
	// ProposeQuestBonus is set when the quest just became complete and has
	// nothing banked. The amount is only offered, never applied here.
	ProposeQuestBonus bool
	QuestBonus        int
	InvalidatePending bool
}

// Settle decides bonus moves for the quest after a change, given its state
// before. Section bonuses follow banked-versus-complete, so running Settle
// again on a settled quest yields an empty settlement.
func Settle(before CompletionSnapshot, after storage.Quest) Settlement {
	var st Settlement
	for _, c := range after.Categories {
		complete := CategoryComplete(c)
		switch {
		case complete && c.SectionBonusXP == 0:
			st.SectionAwards = append(st.SectionAwards, c.ID)
		case !complete && c.SectionBonusXP > 0:
			st.SectionRevokes = append(st.SectionRevokes, SectionRevoke{CategoryID: c.ID, Amount: c.SectionBonusXP})
		}
	}

	if !QuestComplete(after) {
		st.QuestRevoke = after.BonusXP
		st.InvalidatePending = true
		return st
	}

	st.QuestBonus = QuestBonusForCategories(len(after.Categories))
	if !before.Quest && after.BonusXP == 0 {
		st.ProposeQuestBonus = true
	}
	return st
}

// Empty reports whether the settlement moves no XP and touches no proposal.
func (s Settlement) Empty() bool {
	return len(s.SectionAwards) == 0 && len(s.SectionRevokes) == 0 && s.QuestRevoke == 0 && !s.ProposeQuestBonus
}
