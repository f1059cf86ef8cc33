package engine

import (
	"fmt"
	"math"
)

const (
	// XPRequiredCoef scales the level curve: XP_req(L) = 100 * L^1.5.
	XPRequiredCoef = 100.0

	// StreakBonusRate is the extra multiplier per consecutive habit day.
	StreakBonusRate = 0.10

	// MaxStreakBonusDays caps the streak multiplier at 1 + 10*0.10 = 2.0.
	MaxStreakBonusDays = 10
)

// XPRequiredForLevel returns the total XP threshold required to be at the given level.
// Level 0 requires 0 XP.
func XPRequiredForLevel(level int) int {
	if level <= 0 {
		return 0
	}
	req := XPRequiredCoef * math.Pow(float64(level), 1.5)
	// Use ceil to avoid making thresholds easier due to floating point rounding.
	return int(math.Ceil(req))
}

// LevelForXP returns the highest level L such that xp >= XPRequiredForLevel(L).
// The same curve is used for total XP and for every skill.
func LevelForXP(xp int) int {
	if xp <= 0 {
		return 0
	}

	// Exponential search upper bound, then binary search.
	low := 0
	high := 1
	for XPRequiredForLevel(high) <= xp {
		low = high
		high *= 2
		if high > 1_000_000 {
			break
		}
	}

	for low+1 < high {
		mid := low + (high-low)/2
		if XPRequiredForLevel(mid) <= xp {
			low = mid
		} else {
			high = mid
		}
	}
	return low
}

// LevelProgress is the XP earned inside the current level band.
type LevelProgress struct {
	Current    int
	Max        int
	Percentage float64
}

// Progress returns how far xp is through the band of the given level.
func Progress(xp int, level int) LevelProgress {
	floor := XPRequiredForLevel(level)
	ceiling := XPRequiredForLevel(level + 1)
	width := ceiling - floor
	if width <= 0 {
		width = 1
	}
	cur := xp - floor
	if cur < 0 {
		cur = 0
	}
	pct := float64(cur) / float64(width) * 100
	pct = math.Max(0, math.Min(100, pct))
	return LevelProgress{Current: cur, Max: width, Percentage: pct}
}

// BaseXP returns the fixed award for a difficulty.
func BaseXP(d Difficulty) (int, error) {
	switch d {
	case DifficultyEasy:
		return 10, nil
	case DifficultyMedium:
		return 25, nil
	case DifficultyHard:
		return 50, nil
	case DifficultyEpic:
		return 100, nil
	default:
		return 0, fmt.Errorf("invalid difficulty: %q", d)
	}
}

// StreakMultiplier grows linearly with the streak and saturates at
// MaxStreakBonusDays.
func StreakMultiplier(streak int) float64 {
	if streak <= 0 {
		return 1.0
	}
	if streak > MaxStreakBonusDays {
		streak = MaxStreakBonusDays
	}
	return 1.0 + float64(streak)*StreakBonusRate
}

// XPBreakdown explains an award.
type XPBreakdown struct {
	Base             int
	StreakMultiplier float64
	Total            int
}

// CalculateXP computes the award for a task of the given difficulty. The
// streak only counts for habits. The result depends on nothing but its
// inputs, so the same task state yields the same total at completion and at
// uncompletion.
func CalculateXP(d Difficulty, isHabit bool, streak int) (XPBreakdown, error) {
	base, err := BaseXP(d)
	if err != nil {
		return XPBreakdown{}, err
	}
	mult := 1.0
	if isHabit {
		mult = StreakMultiplier(streak)
	}
	// Round to nearest integer for stable results.
	total := int(math.Round(float64(base) * mult))
	return XPBreakdown{Base: base, StreakMultiplier: mult, Total: total}, nil
}
