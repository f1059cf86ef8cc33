package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xpeak/internal/storage"
)

type ChallengeInput struct {
	Title       string
	Opponent    string
	Metric      string
	TargetValue int
	RewardXP    int
}

// ChallengeResult reports what a challenge command did. Applied is false when
// the challenge does not exist.
type ChallengeResult struct {
	Applied   bool
	Challenge storage.Challenge
	XPChange
}

// CreateChallenge starts an active challenge against a friend.
func (s *Store) CreateChallenge(ctx context.Context, in ChallengeInput) (*storage.Challenge, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return nil, err
	}
	opponent := strings.TrimSpace(in.Opponent)
	if opponent == "" {
		return nil, errors.New("opponent is required")
	}
	if in.TargetValue <= 0 {
		return nil, fmt.Errorf("target must be positive: %d", in.TargetValue)
	}
	if in.RewardXP < 0 {
		return nil, fmt.Errorf("reward must not be negative: %d", in.RewardXP)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	ch := storage.Challenge{
		ID:          uuid.NewString(),
		Title:       title,
		Opponent:    opponent,
		Metric:      strings.TrimSpace(in.Metric),
		TargetValue: in.TargetValue,
		RewardXP:    in.RewardXP,
		Status:      ChallengeActive,
		CreatedAt:   c.now,
	}
	c.next.challenges = append(c.next.challenges, ch)
	if _, err := s.commit(ctx, c); err != nil {
		return nil, err
	}
	s.log.Debug("challenge created", zap.String("challenge_id", ch.ID), zap.String("opponent", opponent))
	return &ch, nil
}

// UpdateChallengeProgress records both sides' progress. An active challenge
// is won when my progress reaches the target and lost when only the opponent
// does; reaching it together counts as a win. Finished challenges are frozen.
func (s *Store) UpdateChallengeProgress(ctx context.Context, id string, mine, opponent int) (*ChallengeResult, error) {
	if mine < 0 || opponent < 0 {
		return nil, errors.New("progress must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	i := findChallenge(c.next.challenges, id)
	if i < 0 {
		return &ChallengeResult{}, nil
	}
	ch := &c.next.challenges[i]
	if ch.Status != ChallengeActive {
		return &ChallengeResult{Applied: false, Challenge: *ch}, nil
	}
	ch.MyProgress = mine
	ch.OpponentProgress = opponent
	switch {
	case ch.MyProgress >= ch.TargetValue:
		ch.Status = ChallengeWon
	case ch.OpponentProgress >= ch.TargetValue:
		ch.Status = ChallengeLost
	}
	if _, err := s.commit(ctx, c); err != nil {
		return nil, err
	}
	if ch.Status != ChallengeActive {
		s.log.Info("challenge finished", zap.String("challenge_id", id), zap.String("status", ch.Status))
	}
	return &ChallengeResult{Applied: true, Challenge: *ch}, nil
}

// ClaimChallenge awards the reward of a won challenge once.
func (s *Store) ClaimChallenge(ctx context.Context, id string) (*ChallengeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	i := findChallenge(c.next.challenges, id)
	if i < 0 {
		return &ChallengeResult{}, nil
	}
	ch := &c.next.challenges[i]
	if ch.Status != ChallengeWon {
		return nil, fmt.Errorf("challenge %s is %s: %w", id, ch.Status, ErrChallengeNotWon)
	}
	ch.Status = ChallengeClaimed
	c.award(ch.RewardXP, SkillDefault, ReasonChallenge, ch.ID)

	xc, err := s.commit(ctx, c)
	if err != nil {
		return nil, err
	}
	s.log.Info("challenge claimed", zap.String("challenge_id", id), zap.Int("reward", ch.RewardXP))
	return &ChallengeResult{Applied: true, Challenge: *ch, XPChange: xc}, nil
}

// DeleteChallenge removes a challenge. A claimed reward stays.
func (s *Store) DeleteChallenge(ctx context.Context, id string) (*ChallengeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	i := findChallenge(c.next.challenges, id)
	if i < 0 {
		return &ChallengeResult{}, nil
	}
	removed := c.next.challenges[i]
	c.next.challenges = append(c.next.challenges[:i], c.next.challenges[i+1:]...)
	if _, err := s.commit(ctx, c); err != nil {
		return nil, err
	}
	return &ChallengeResult{Applied: true, Challenge: removed}, nil
}

// ListChallenges returns challenges with the given status, or all of them
// when status is empty.
func (s *Store) ListChallenges(status string) []storage.Challenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.Challenge, 0, len(s.state.challenges))
	for _, ch := range s.state.challenges {
		if status == "" || ch.Status == status {
			out = append(out, ch)
		}
	}
	return out
}
