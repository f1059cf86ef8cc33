package engine

// Skill is one of the fixed life domains a task trains.
type Skill string

const (
	SkillPhysical     Skill = "PHYSICAL"
	SkillMental       Skill = "MENTAL"
	SkillProfessional Skill = "PROFESSIONAL"
	SkillSocial       Skill = "SOCIAL"
	SkillCreative     Skill = "CREATIVE"
	// SkillDefault is the neutral MISC bucket. It counts towards total XP but
	// has no skill level of its own.
	SkillDefault Skill = "DEFAULT"
)

// TrackedSkills lists the skills that carry their own XP and level.
var TrackedSkills = []Skill{SkillPhysical, SkillMental, SkillProfessional, SkillSocial, SkillCreative}

func (s Skill) IsValid() bool {
	switch s {
	case SkillPhysical, SkillMental, SkillProfessional, SkillSocial, SkillCreative, SkillDefault:
		return true
	default:
		return false
	}
}

// Tracked reports whether XP for s is accounted on a skill.
func (s Skill) Tracked() bool {
	return s.IsValid() && s != SkillDefault
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
	DifficultyEpic   Difficulty = "EPIC"
)

// DefaultDifficulty is used when stored data carries an unknown value.
const DefaultDifficulty = DifficultyEasy

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyEpic:
		return true
	default:
		return false
	}
}

// Quest task statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Challenge statuses.
const (
	ChallengeActive  = "active"
	ChallengeWon     = "won"
	ChallengeLost    = "lost"
	ChallengeClaimed = "claimed"
)

// Ledger reasons.
const (
	ReasonTask          = "task"
	ReasonTaskUndo      = "task_undo"
	ReasonQuestTask     = "quest_task"
	ReasonQuestTaskUndo = "quest_task_undo"
	ReasonSectionBonus  = "section_bonus"
	ReasonSectionRevoke = "section_revoke"
	ReasonQuestBonus    = "quest_bonus"
	ReasonQuestRevoke   = "quest_revoke"
	ReasonChallenge     = "challenge"
)
