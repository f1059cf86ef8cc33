package engine

import (
	"strings"

	"xpeak/internal/storage"
)

// Achievement represents a badge the user can earn.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Earned      bool
}

// AchievementChecker calculates which achievements a snapshot has earned.
// Everything is derived from the current state, so badges for undone work
// disappear again.
type AchievementChecker struct {
	snap *storage.Snapshot
}

func NewAchievementChecker(snap *storage.Snapshot) *AchievementChecker {
	if snap == nil {
		snap = &storage.Snapshot{}
	}
	return &AchievementChecker{snap: snap}
}

// GetAchievements returns all achievements with their earned status.
func (c *AchievementChecker) GetAchievements() []Achievement {
	achievements := []Achievement{
		// Level milestones
		c.levelAchievement("getting_started", "Getting Started", "Reach level 2", "🌱", 2),
		c.levelAchievement("on_the_path", "On the Path", "Reach level 5", "🌿", 5),
		c.levelAchievement("seasoned", "Seasoned", "Reach level 10", "⭐", 10),
		c.levelAchievement("veteran", "Veteran", "Reach level 20", "🌟", 20),

		// Task completion milestones
		c.taskCountAchievement("first_task", "First Step", "Complete 1 task", "✓", 1),
		c.taskCountAchievement("productive", "Productive", "Complete 10 tasks", "📋", 10),
		c.taskCountAchievement("achiever", "Achiever", "Complete 50 tasks", "🏅", 50),

		// Skill level achievements
		c.skillLevelAchievement("athlete", "Athlete", "PHYSICAL level 3", "💪", SkillPhysical, 3),
		c.skillLevelAchievement("scholar", "Scholar", "MENTAL level 3", "🧠", SkillMental, 3),
		c.skillLevelAchievement("professional", "Professional", "PROFESSIONAL level 3", "💼", SkillProfessional, 3),
		c.skillLevelAchievement("connector", "Connector", "SOCIAL level 3", "🤝", SkillSocial, 3),
		c.skillLevelAchievement("artist", "Artist", "CREATIVE level 3", "🎨", SkillCreative, 3),

		// Quests
		c.questAchievement("first_quest", "Quest Complete", "Complete a quest", "📜", 1),
		c.questAchievement("questmaster", "Questmaster", "Complete 5 quests", "🗺", 5),

		// Habits
		c.streakAchievement("week_streak", "On a Roll", "Reach a 7 day habit streak", "🔥", 7),
		c.streakAchievement("month_streak", "Unstoppable", "Reach a 30 day habit streak", "🔁", 30),

		// Challenges
		c.challengeAchievement("rival", "Rival", "Win a challenge", "🏆"),
	}

	return achievements
}

// CountEarned returns how many achievements have been earned.
func (c *AchievementChecker) CountEarned() int {
	count := 0
	for _, a := range c.GetAchievements() {
		if a.Earned {
			count++
		}
	}
	return count
}

// CountTotal returns total number of achievements.
func (c *AchievementChecker) CountTotal() int {
	return len(c.GetAchievements())
}

func (c *AchievementChecker) levelAchievement(id, name, desc, icon string, level int) Achievement {
	earned := LevelForXP(c.snap.Profile.TotalXP) >= level
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) taskCountAchievement(id, name, desc, icon string, count int) Achievement {
	done := 0
	for _, t := range c.snap.Tasks {
		if t.Completed {
			done++
		}
	}
	for _, q := range c.snap.Quests {
		for _, cat := range q.Categories {
			for _, t := range cat.Tasks {
				if strings.EqualFold(t.Status, StatusCompleted) {
					done++
				}
			}
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: done >= count}
}

func (c *AchievementChecker) skillLevelAchievement(id, name, desc, icon string, skill Skill, level int) Achievement {
	stat := c.snap.Profile.Skills[string(skill)]
	earned := LevelForXP(stat.XP) >= level
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) questAchievement(id, name, desc, icon string, count int) Achievement {
	done := 0
	for _, q := range c.snap.Quests {
		if QuestComplete(q) {
			done++
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: done >= count}
}

func (c *AchievementChecker) streakAchievement(id, name, desc, icon string, days int) Achievement {
	earned := false
	for _, t := range c.snap.Tasks {
		if t.IsHabit && t.Streak >= days {
			earned = true
			break
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

func (c *AchievementChecker) challengeAchievement(id, name, desc, icon string) Achievement {
	earned := false
	for _, ch := range c.snap.Challenges {
		if ch.Status == ChallengeWon || ch.Status == ChallengeClaimed {
			earned = true
			break
		}
	}
	return Achievement{ID: id, Name: name, Description: desc, Icon: icon, Earned: earned}
}

// Achievements is a convenience wrapper over the store's current state.
func (s *Store) Achievements() []Achievement {
	return NewAchievementChecker(s.Snapshot()).GetAchievements()
}
