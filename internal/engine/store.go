package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"xpeak/internal/storage"
)

// SnapshotStore is the persistence collaborator. Implemented by
// storage.SnapshotRepo.
type SnapshotStore interface {
	Load(ctx context.Context, userID string) (*storage.Snapshot, error)
	Save(ctx context.Context, userID string, snap *storage.Snapshot, entries []storage.LedgerEntry) error
}

// Store is the single writer of one user's gamification state. Every command
// builds the next state on a clone, persists it and only then swaps it in.
type Store struct {
	mu sync.Mutex

	repo   SnapshotStore
	userID string
	state  *state

	// pending quest bonuses awaiting confirmation, keyed by bonus id.
	pending map[string]*PendingBonus
	// quests with an AI breakdown in flight.
	busy map[string]bool

	assistant Assistant
	now       func() time.Time
	loc       *time.Location
	log       *zap.Logger
	name      string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the time zone used for habit day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithAssistant sets the AI breakdown collaborator.
func WithAssistant(a Assistant) Option {
	return func(s *Store) { s.assistant = a }
}

// WithUserName sets the display name of a newly created profile.
func WithUserName(name string) Option {
	return func(s *Store) { s.name = name }
}

// Open loads the user's snapshot (creating a fresh profile when none exists)
// and runs one habit sweep.
func Open(ctx context.Context, repo SnapshotStore, userID string, opts ...Option) (*Store, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	s := &Store{
		repo:    repo,
		userID:  userID,
		pending: map[string]*PendingBonus{},
		busy:    map[string]bool{},
		now:     time.Now,
		loc:     time.Local,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := repo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap == nil {
		s.state = newState(userID, s.name)
		if err := repo.Save(ctx, userID, s.state.snapshot(), nil); err != nil {
			return nil, fmt.Errorf("save new profile: %w", err)
		}
		s.log.Info("created profile", zap.String("user_id", userID))
	} else {
		s.state = stateFromSnapshot(userID, snap)
	}

	if _, err := s.sweepLocked(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) UserID() string { return s.userID }

// XPChange summarises the effect of a command on total XP and level.
type XPChange struct {
	XPDelta     int
	LevelBefore int
	LevelAfter  int
	LevelUp     bool
	LevelDown   bool
}

// change is an in-progress command: the next state plus everything that must
// happen if and only if it is persisted.
type change struct {
	next    *state
	now     time.Time
	entries []storage.LedgerEntry
	delta   int

	proposals     []PendingBonus
	invalidate    []string
	bonusAmounts  map[string]int
	dropPendingID string
}

func (s *Store) begin() *change {
	return &change{next: s.state.clone(), now: s.now(), bonusAmounts: map[string]int{}}
}

// award moves XP on the next state. Total and skill XP are clamped at zero;
// skill accounting skips the neutral Default skill.
func (c *change) award(delta int, skill Skill, reason, refID string) {
	if delta == 0 {
		return
	}
	p := &c.next.profile
	p.TotalXP = max(0, p.TotalXP+delta)
	p.Level = LevelForXP(p.TotalXP)
	if skill.Tracked() {
		stat := p.Skills[string(skill)]
		stat.XP = max(0, stat.XP+delta)
		stat.Level = LevelForXP(stat.XP)
		p.Skills[string(skill)] = stat
	}

	entry := storage.HistoryEntry{Date: c.now, XPGained: delta, TaskID: refID, Reason: reason}
	p.History = append([]storage.HistoryEntry{entry}, p.History...)
	if len(p.History) > MaxHistory {
		p.History = p.History[:MaxHistory]
	}

	c.entries = append(c.entries, storage.LedgerEntry{At: c.now, Delta: delta, Reason: reason, RefID: refID})
	c.delta += delta
}

// commit is the single apply point: persist, swap, then update the transient
// pending-bonus table.
func (s *Store) commit(ctx context.Context, c *change) (XPChange, error) {
	before := s.state.profile.Level
	if err := s.repo.Save(ctx, s.userID, c.next.snapshot(), c.entries); err != nil {
		return XPChange{}, fmt.Errorf("save snapshot: %w", err)
	}
	s.state = c.next

	for _, questID := range c.invalidate {
		s.dropPendingForQuest(questID)
	}
	if c.dropPendingID != "" {
		delete(s.pending, c.dropPendingID)
	}
	for questID, amount := range c.bonusAmounts {
		if p := s.pendingForQuest(questID); p != nil {
			p.Amount = amount
		}
	}
	for i := range c.proposals {
		p := c.proposals[i]
		s.dropPendingForQuest(p.QuestID)
		s.pending[p.ID] = &p
		s.log.Info("quest bonus proposed", zap.String("quest_id", p.QuestID), zap.Int("amount", p.Amount))
	}

	after := s.state.profile.Level
	if c.delta != 0 {
		s.log.Debug("xp applied", zap.Int("delta", c.delta), zap.Int("total_xp", s.state.profile.TotalXP), zap.Int("level", after))
	}
	if after > before {
		s.log.Info("level up", zap.Int("from", before), zap.Int("to", after))
	}
	return XPChange{
		XPDelta:     c.delta,
		LevelBefore: before,
		LevelAfter:  after,
		LevelUp:     after > before,
		LevelDown:   after < before,
	}, nil
}

// Profile returns a copy of the user profile.
func (s *Store) Profile() storage.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone().profile
}

// Tasks returns a copy of the standalone task list.
func (s *Store) Tasks() []storage.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone().tasks
}

// Quests returns a copy of the quest tree.
func (s *Store) Quests() []storage.Quest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone().quests
}

// Quest returns a copy of one quest.
func (s *Store) Quest(id string) (storage.Quest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := findQuest(s.state.quests, id)
	if i < 0 {
		return storage.Quest{}, false
	}
	return cloneQuest(s.state.quests[i]), true
}

func (s *Store) Challenges() []storage.Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storage.Challenge(nil), s.state.challenges...)
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() *storage.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone().snapshot()
}

// QuestBusy reports whether an AI breakdown is in flight for the quest.
func (s *Store) QuestBusy(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[id]
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", errors.New("title is required")
	}
	return t, nil
}
