package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"xpeak/internal/storage"
)

// ProfilePatch edits profile fields. Nil fields are left alone.
type ProfilePatch struct {
	Name     *string
	Identity *string
	Goals    []string
}

// UpdateProfile edits name, identity statement and goals. XP and levels are
// only ever moved by completing work.
func (s *Store) UpdateProfile(ctx context.Context, patch ProfilePatch) (storage.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	p := &c.next.profile
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Identity != nil {
		p.Identity = strings.TrimSpace(*patch.Identity)
	}
	if patch.Goals != nil {
		goals := make([]string, 0, len(patch.Goals))
		for _, g := range patch.Goals {
			if g = strings.TrimSpace(g); g != "" {
				goals = append(goals, g)
			}
		}
		p.Goals = goals
	}
	if _, err := s.commit(ctx, c); err != nil {
		return storage.Profile{}, err
	}
	return s.state.clone().profile, nil
}

// SetLayout replaces the dashboard layout. Widget ids must be unique; the
// result is stored ordered by Order.
func (s *Store) SetLayout(ctx context.Context, widgets []storage.Widget) ([]storage.Widget, error) {
	seen := make(map[string]bool, len(widgets))
	layout := make([]storage.Widget, 0, len(widgets))
	for _, w := range widgets {
		id := strings.TrimSpace(w.ID)
		if id == "" {
			return nil, fmt.Errorf("widget id is required")
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate widget: %s", id)
		}
		seen[id] = true
		w.ID = id
		layout = append(layout, w)
	}
	sort.SliceStable(layout, func(i, j int) bool { return layout[i].Order < layout[j].Order })

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.begin()
	if len(layout) == 0 {
		layout = append([]storage.Widget(nil), DefaultLayout...)
	}
	c.next.profile.Layout = layout
	if _, err := s.commit(ctx, c); err != nil {
		return nil, err
	}
	return append([]storage.Widget(nil), layout...), nil
}

// History returns up to limit recent XP events, newest first.
func (s *Store) History(limit int) []storage.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.state.profile.History
	if limit > 0 && limit < len(h) {
		h = h[:limit]
	}
	return append([]storage.HistoryEntry(nil), h...)
}
