package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// XPeak theme (CLI + TUI): reusable styles and a few emojis.

const (
	IconQuest     = "🗺️"
	IconSparkle   = "✨"
	IconPlus      = "➕"
	IconDone      = "✅"
	IconPending   = "⬜"
	IconTrophy    = "🏆"
	IconBolt      = "⚡"
	IconInfo      = "ℹ️"
	IconWarn      = "⚠️"
	IconError     = "🧨"
	IconLoop      = "🔁"
	IconFire      = "🔥"
	IconSwords    = "⚔️"
	IconHourglass = "⏳"
	IconRobot     = "🤖"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)
	Dim   = lipgloss.NewStyle().Foreground(cMuted)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)
	Dialog      = lipgloss.NewStyle().BorderStyle(lipgloss.DoubleBorder()).BorderForeground(cGold).Padding(1, 2)

	BadgeLevelUp   = lipgloss.NewStyle().Bold(true).Foreground(cGold).Render("LEVEL UP")
	BadgeLevelDown = lipgloss.NewStyle().Bold(true).Foreground(cBad).Render("LEVEL DOWN")
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Check renders a completion box.
func Check(done bool) string {
	if done {
		return IconDone
	}
	return IconPending
}

func StatusText(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case "completed", "won", "claimed":
		return Good.Render(s)
	case "active":
		return H2.Render(s)
	case "pending":
		return Warn.Render(s)
	case "lost":
		return Bad.Render(s)
	default:
		return Muted.Render(status)
	}
}

func DifficultyText(d string) string {
	switch strings.ToUpper(d) {
	case "EASY":
		return Good.Render("easy")
	case "MEDIUM":
		return H2.Render("medium")
	case "HARD":
		return Warn.Render("hard")
	case "EPIC":
		return Gold.Render("epic")
	default:
		return Muted.Render(strings.ToLower(d))
	}
}

func SkillIcon(skill string) string {
	switch strings.ToUpper(skill) {
	case "PHYSICAL":
		return "💪"
	case "MENTAL":
		return "🧠"
	case "PROFESSIONAL":
		return "💼"
	case "SOCIAL":
		return "🤝"
	case "CREATIVE":
		return "🎨"
	default:
		return "•"
	}
}

func KindIcon(isHabit bool) string {
	if isHabit {
		return IconLoop
	}
	return IconQuest
}

// Bar renders a width-cell progress bar for pct in [0,100].
func Bar(pct float64, width int) string {
	if width <= 0 {
		width = 20
	}
	pct = max(0, min(100, pct))
	filled := int(pct / 100 * float64(width))
	return Good.Render(strings.Repeat("█", filled)) + Dim.Render(strings.Repeat("░", width-filled))
}

// SignedXP renders an XP delta with its sign.
func SignedXP(delta int) string {
	switch {
	case delta > 0:
		return Good.Render(fmt.Sprintf("+%d XP", delta))
	case delta < 0:
		return Bad.Render(fmt.Sprintf("%d XP", delta))
	default:
		return Muted.Render("0 XP")
	}
}
