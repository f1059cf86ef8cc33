package engine

import (
	"time"

	"xpeak/internal/storage"
)

// MaxHistory bounds the profile's recent-activity list.
const MaxHistory = 100

// DefaultLayout is the widget arrangement of a new profile.
var DefaultLayout = []storage.Widget{
	{ID: "stats", Visible: true, Order: 0},
	{ID: "tasks", Visible: true, Order: 1},
	{ID: "quests", Visible: true, Order: 2},
	{ID: "habits", Visible: true, Order: 3},
	{ID: "challenges", Visible: true, Order: 4},
	{ID: "history", Visible: false, Order: 5},
}

// state is the full in-memory object graph of one user.
type state struct {
	profile    storage.Profile
	tasks      []storage.Task
	quests     []storage.Quest
	challenges []storage.Challenge
}

func newState(userID, name string) *state {
	st := &state{profile: storage.Profile{
		UserID: userID,
		Name:   name,
		Layout: append([]storage.Widget(nil), DefaultLayout...),
	}}
	st.normalize()
	return st
}

func stateFromSnapshot(userID string, snap *storage.Snapshot) *state {
	st := &state{
		profile:    snap.Profile,
		tasks:      snap.Tasks,
		quests:     snap.Quests,
		challenges: snap.Challenges,
	}
	if st.profile.UserID == "" {
		st.profile.UserID = userID
	}
	st.normalize()
	return st
}

// normalize restores profile invariants: one entry per tracked skill, levels
// derived from XP, no negative XP.
func (st *state) normalize() {
	p := &st.profile
	if p.Skills == nil {
		p.Skills = make(map[string]storage.SkillStat, len(TrackedSkills))
	}
	for _, sk := range TrackedSkills {
		stat := p.Skills[string(sk)]
		stat.XP = max(0, stat.XP)
		stat.Level = LevelForXP(stat.XP)
		p.Skills[string(sk)] = stat
	}
	delete(p.Skills, string(SkillDefault))
	p.TotalXP = max(0, p.TotalXP)
	p.Level = LevelForXP(p.TotalXP)
	if len(p.Layout) == 0 {
		p.Layout = append([]storage.Widget(nil), DefaultLayout...)
	}
}

func (st *state) clone() *state {
	p := st.profile
	p.Skills = make(map[string]storage.SkillStat, len(st.profile.Skills))
	for k, v := range st.profile.Skills {
		p.Skills[k] = v
	}
	p.History = append([]storage.HistoryEntry(nil), st.profile.History...)
	p.Goals = append([]string(nil), st.profile.Goals...)
	p.Templates = append([]storage.Template(nil), st.profile.Templates...)
	p.Layout = append([]storage.Widget(nil), st.profile.Layout...)

	out := &state{
		profile:    p,
		tasks:      make([]storage.Task, len(st.tasks)),
		quests:     make([]storage.Quest, len(st.quests)),
		challenges: append([]storage.Challenge(nil), st.challenges...),
	}
	for i, t := range st.tasks {
		out.tasks[i] = cloneTask(t)
	}
	for i, q := range st.quests {
		out.quests[i] = cloneQuest(q)
	}
	return out
}

func cloneTask(t storage.Task) storage.Task {
	out := t
	out.LastCompletedDate = cloneTime(t.LastCompletedDate)
	out.PrevCompletedDate = cloneTime(t.PrevCompletedDate)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (st *state) snapshot() *storage.Snapshot {
	return &storage.Snapshot{
		Profile:    st.profile,
		Tasks:      st.tasks,
		Quests:     st.quests,
		Challenges: st.challenges,
	}
}

func findTask(tasks []storage.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func findChallenge(cs []storage.Challenge, id string) int {
	for i := range cs {
		if cs[i].ID == id {
			return i
		}
	}
	return -1
}
