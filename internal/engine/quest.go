package engine

import (
	"github.com/google/uuid"

	"xpeak/internal/storage"
)

// Quest tree edits. Each function mutates the quest it is given and reports
// whether anything changed; callers pass a clone so a failed command leaves
// the live tree untouched.

func cloneQuest(q storage.Quest) storage.Quest {
	out := q
	out.Categories = make([]storage.QuestCategory, len(q.Categories))
	for i, c := range q.Categories {
		out.Categories[i] = c
		out.Categories[i].Tasks = append([]storage.QuestTask(nil), c.Tasks...)
	}
	return out
}

func findQuest(quests []storage.Quest, id string) int {
	for i := range quests {
		if quests[i].ID == id {
			return i
		}
	}
	return -1
}

func findCategory(q *storage.Quest, id string) int {
	for i := range q.Categories {
		if q.Categories[i].ID == id {
			return i
		}
	}
	return -1
}

func findQuestTask(c *storage.QuestCategory, id string) int {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// ToggleQuestTask flips a task between pending and completed and returns the
// task after the flip.
func ToggleQuestTask(q *storage.Quest, categoryID, taskID string) (storage.QuestTask, bool) {
	ci := findCategory(q, categoryID)
	if ci < 0 {
		return storage.QuestTask{}, false
	}
	cat := &q.Categories[ci]
	ti := findQuestTask(cat, taskID)
	if ti < 0 {
		return storage.QuestTask{}, false
	}
	t := &cat.Tasks[ti]
	if t.Status == StatusCompleted {
		t.Status = StatusPending
	} else {
		t.Status = StatusCompleted
	}
	return *t, true
}

// AddQuestTask appends a pending task to a category.
func AddQuestTask(q *storage.Quest, categoryID string, in QuestTaskInput) (storage.QuestTask, bool) {
	ci := findCategory(q, categoryID)
	if ci < 0 {
		return storage.QuestTask{}, false
	}
	skill := in.Skill
	if !skill.IsValid() {
		skill = SkillDefault
	}
	t := storage.QuestTask{
		ID:         uuid.NewString(),
		Name:       in.Name,
		Status:     StatusPending,
		Difficulty: string(in.Difficulty),
		Skill:      string(skill),
	}
	q.Categories[ci].Tasks = append(q.Categories[ci].Tasks, t)
	return t, true
}

// DeleteQuestTask removes a task from a category.
func DeleteQuestTask(q *storage.Quest, categoryID, taskID string) (storage.QuestTask, bool) {
	ci := findCategory(q, categoryID)
	if ci < 0 {
		return storage.QuestTask{}, false
	}
	cat := &q.Categories[ci]
	ti := findQuestTask(cat, taskID)
	if ti < 0 {
		return storage.QuestTask{}, false
	}
	removed := cat.Tasks[ti]
	cat.Tasks = append(cat.Tasks[:ti], cat.Tasks[ti+1:]...)
	return removed, true
}

// AddCategory appends an empty category.
func AddCategory(q *storage.Quest, title string) storage.QuestCategory {
	c := storage.QuestCategory{ID: uuid.NewString(), Title: title, Tasks: []storage.QuestTask{}}
	q.Categories = append(q.Categories, c)
	return c
}

// DeleteCategory removes a category and all of its tasks.
func DeleteCategory(q *storage.Quest, categoryID string) bool {
	ci := findCategory(q, categoryID)
	if ci < 0 {
		return false
	}
	q.Categories = append(q.Categories[:ci], q.Categories[ci+1:]...)
	return true
}

// RenameCategory retitles a category.
func RenameCategory(q *storage.Quest, categoryID, title string) bool {
	ci := findCategory(q, categoryID)
	if ci < 0 {
		return false
	}
	if q.Categories[ci].Title == title {
		return false
	}
	q.Categories[ci].Title = title
	return true
}

// ReplaceCategories discards the quest's categories and installs the given
// breakdown as fresh, pending categories.
func ReplaceCategories(q *storage.Quest, breakdown []BreakdownCategory) {
	cats := make([]storage.QuestCategory, 0, len(breakdown))
	for _, bc := range breakdown {
		c := storage.QuestCategory{ID: uuid.NewString(), Title: bc.Title, Tasks: make([]storage.QuestTask, 0, len(bc.Tasks))}
		for _, bt := range bc.Tasks {
			c.Tasks = append(c.Tasks, storage.QuestTask{
				ID:         uuid.NewString(),
				Name:       bt.Name,
				Status:     StatusPending,
				Difficulty: string(parseStoredDifficulty(bt.Difficulty)),
				Skill:      string(parseStoredSkill(bt.SkillCategory)),
			})
		}
		cats = append(cats, c)
	}
	q.Categories = cats
}

// QuestTaskXP is the award for a quest task. Quest tasks never carry a streak.
func QuestTaskXP(t storage.QuestTask) XPBreakdown {
	xp, err := CalculateXP(parseStoredDifficulty(t.Difficulty), false, 0)
	if err != nil {
		return XPBreakdown{}
	}
	return xp
}
