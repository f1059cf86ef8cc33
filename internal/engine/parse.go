package engine

import (
	"fmt"
	"strings"
)

// ParseSkill parses user input to a Skill.
// Supported: physical, mental, professional, social, creative, default/misc
// plus a few aliases. Empty or unrecognized input returns SkillDefault.
func ParseSkill(input string) Skill {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "physical", "phys", "body", "fitness", "str":
		return SkillPhysical
	case "mental", "mind", "int", "learning":
		return SkillMental
	case "professional", "pro", "career", "work":
		return SkillProfessional
	case "social", "friends", "family":
		return SkillSocial
	case "creative", "art", "create":
		return SkillCreative
	default:
		return SkillDefault
	}
}

// ParseDifficulty parses user input to a Difficulty. Unlike skills,
// difficulty has no silent fallback: it decides the XP award.
func ParseDifficulty(input string) (Difficulty, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	switch s {
	case "easy", "e", "1":
		return DifficultyEasy, nil
	case "medium", "med", "m", "2":
		return DifficultyMedium, nil
	case "hard", "h", "3":
		return DifficultyHard, nil
	case "epic", "4":
		return DifficultyEpic, nil
	default:
		return "", fmt.Errorf("invalid difficulty: %q", input)
	}
}

func parseStoredSkill(s string) Skill {
	sk := Skill(strings.TrimSpace(strings.ToUpper(s)))
	if sk.IsValid() {
		return sk
	}
	return ParseSkill(s)
}

func parseStoredDifficulty(s string) Difficulty {
	d := Difficulty(strings.TrimSpace(strings.ToUpper(s)))
	if d.IsValid() {
		return d
	}
	if parsed, err := ParseDifficulty(s); err == nil {
		return parsed
	}
	return DefaultDifficulty
}
