package storage

import "time"

// Snapshot is the whole-document state of one user. It is always loaded and
// saved as a unit.
type Snapshot struct {
	Profile    Profile     `json:"profile"`
	Tasks      []Task      `json:"tasks"`
	Quests     []Quest     `json:"quests"`
	Challenges []Challenge `json:"challenges"`
}

type Profile struct {
	UserID    string               `json:"userId"`
	Name      string               `json:"name"`
	TotalXP   int                  `json:"totalXP"`
	Level     int                  `json:"level"`
	Skills    map[string]SkillStat `json:"skills"`
	History   []HistoryEntry       `json:"history"`
	Identity  string               `json:"identity"`
	Goals     []string             `json:"goals"`
	Templates []Template           `json:"templates"`
	Layout    []Widget             `json:"layout"`
}

type SkillStat struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

type HistoryEntry struct {
	Date     time.Time `json:"date"`
	XPGained int       `json:"xpGained"`
	TaskID   string    `json:"taskId"`
	Reason   string    `json:"reason"`
}

type Template struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Skill       string `json:"skillCategory"`
	IsHabit     bool   `json:"isHabit"`
}

type Widget struct {
	ID      string `json:"id"`
	Visible bool   `json:"visible"`
	Order   int    `json:"order"`
}

type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Difficulty        string     `json:"difficulty"`
	Skill             string     `json:"skillCategory"`
	Completed         bool       `json:"completed"`
	IsHabit           bool       `json:"isHabit"`
	Streak            int        `json:"streak"`
	LastCompletedDate *time.Time `json:"lastCompletedDate,omitempty"`
	// Undo bookkeeping for habits: the values before the latest completion.
	PrevStreak        int        `json:"prevStreak"`
	PrevCompletedDate *time.Time `json:"prevCompletedDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

type Quest struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Categories  []QuestCategory `json:"categories"`
	BonusXP     int             `json:"bonusXP"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type QuestCategory struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Tasks          []QuestTask `json:"tasks"`
	SectionBonusXP int         `json:"sectionBonusXP"`
}

type QuestTask struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	Difficulty string `json:"difficulty"`
	Skill      string `json:"skillCategory"`
}

type Challenge struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Opponent         string    `json:"opponent"`
	Metric           string    `json:"metric"`
	TargetValue      int       `json:"targetValue"`
	MyProgress       int       `json:"myProgress"`
	OpponentProgress int       `json:"opponentProgress"`
	RewardXP         int       `json:"rewardXP"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
}

// LedgerEntry is one signed XP movement. Entries are append-only.
type LedgerEntry struct {
	ID     int64
	UserID string
	At     time.Time
	Delta  int
	Reason string
	RefID  string
}
