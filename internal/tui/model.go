package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"xpeak/internal/engine"
	"xpeak/internal/storage"
	"xpeak/internal/ui"
)

type lineKind int

const (
	lineTask lineKind = iota
	lineQuest
	lineCategory
	lineQuestTask
)

// boardLine is one selectable row of the board.
type boardLine struct {
	kind       lineKind
	depth      int
	id         string
	questID    string
	categoryID string
	title      string
	done       bool
	isHabit    bool
	streak     int
	difficulty string
	skill      string
	expanded   bool
}

type boardModel struct {
	ctx   context.Context
	store *engine.Store

	width  int
	height int

	profile storage.Profile
	tasks   []storage.Task
	quests  []storage.Quest

	expanded map[string]bool
	selected int

	// pending is the quest bonus awaiting a y/n answer.
	pending *engine.PendingBonus

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	profile storage.Profile
	tasks   []storage.Task
	quests  []storage.Quest
}

type toggledMsg struct {
	title string
	delta int
	level engine.XPChange
	bonus *engine.PendingBonus
	err   error
}

type bonusMsg struct {
	out *engine.BonusOutcome
	err error
}

type breakdownMsg struct {
	title string
	res   *engine.QuestResult
	err   error
}

func newBoardModel(ctx context.Context, store *engine.Store) boardModel {
	return boardModel{
		ctx:      ctx,
		store:    store,
		expanded: map[string]bool{},
		loading:  true,
		lastLog:  "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{profile: m.store.Profile(), tasks: m.store.Tasks(), quests: m.store.Quests()}
	}
}

func (m boardModel) toggleCmd(line boardLine) tea.Cmd {
	return func() tea.Msg {
		switch line.kind {
		case lineTask:
			res, err := m.store.ToggleTask(m.ctx, line.id)
			if err != nil {
				return toggledMsg{title: line.title, err: err}
			}
			return toggledMsg{title: line.title, delta: res.XPDelta, level: res.XPChange}
		case lineQuestTask:
			res, err := m.store.ToggleQuestTask(m.ctx, line.questID, line.categoryID, line.id)
			if err != nil {
				return toggledMsg{title: line.title, err: err}
			}
			return toggledMsg{title: line.title, delta: res.XPDelta, level: res.XPChange, bonus: res.Pending}
		}
		return nil
	}
}

func (m boardModel) proposeCmd(questID string) tea.Cmd {
	return func() tea.Msg {
		p, err := m.store.ProposeQuestBonus(m.ctx, questID)
		return toggledMsg{title: "quest bonus", bonus: p, err: err}
	}
}

func (m boardModel) confirmCmd(id string, accept bool) tea.Cmd {
	return func() tea.Msg {
		out, err := m.store.ConfirmBonus(m.ctx, id, accept)
		return bonusMsg{out: out, err: err}
	}
}

func (m boardModel) breakdownCmd(line boardLine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, 2*time.Minute)
		defer cancel()
		res, err := m.store.BreakdownQuest(ctx, line.id)
		return breakdownMsg{title: line.title, res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.profile = msg.profile
		m.tasks = msg.tasks
		m.quests = msg.quests
		if lines := m.boardLines(); m.selected >= len(lines) {
			m.selected = max(0, len(lines)-1)
		}
		return m, nil
	case toggledMsg:
		if msg.err != nil {
			m.lastLog = "Failed: " + msg.err.Error()
			return m, nil
		}
		m.lastLog = fmt.Sprintf("%s: %s", msg.title, ui.SignedXP(msg.delta))
		if msg.level.LevelUp {
			m.lastLog += fmt.Sprintf("  %s %d → %d", ui.BadgeLevelUp, msg.level.LevelBefore, msg.level.LevelAfter)
		}
		if msg.bonus != nil {
			m.pending = msg.bonus
		}
		return m, m.loadCmd()
	case bonusMsg:
		m.pending = nil
		switch {
		case msg.err != nil:
			m.lastLog = "Bonus failed: " + msg.err.Error()
		case msg.out.Applied:
			m.lastLog = fmt.Sprintf("%s Quest bonus %s", ui.IconTrophy, ui.SignedXP(msg.out.Amount))
		default:
			m.lastLog = "Quest bonus " + msg.out.Reason + "."
		}
		return m, m.loadCmd()
	case breakdownMsg:
		switch {
		case errors.Is(msg.err, engine.ErrQuestBusy):
			m.lastLog = "Breakdown already running."
		case msg.err != nil:
			m.lastLog = "Breakdown failed: " + msg.err.Error()
		case !msg.res.Applied:
			m.lastLog = "Quest is gone."
		default:
			m.lastLog = fmt.Sprintf("%s Broke down %q.", ui.IconRobot, msg.title)
		}
		return m, m.loadCmd()
	case tea.KeyMsg:
		if m.pending != nil {
			switch msg.String() {
			case "y", "Y", "enter":
				return m, m.confirmCmd(m.pending.ID, true)
			case "n", "N", "esc":
				return m, m.confirmCmd(m.pending.ID, false)
			case "ctrl+c":
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.boardLines())-1 {
				m.selected++
			}
			return m, nil
		}

		line, ok := m.current()
		if !ok {
			return m, nil
		}
		switch msg.String() {
		case "enter":
			if line.kind == lineQuest {
				m.expanded[line.id] = !m.expanded[line.id]
			}
			return m, nil
		case "c", " ":
			if line.kind != lineTask && line.kind != lineQuestTask {
				m.lastLog = "Select a task to toggle."
				return m, nil
			}
			return m, m.toggleCmd(line)
		case "p":
			if line.kind != lineQuest {
				return m, nil
			}
			return m, m.proposeCmd(line.id)
		case "b":
			if line.kind != lineQuest {
				m.lastLog = "Select a quest to break down."
				return m, nil
			}
			m.lastLog = fmt.Sprintf("%s Breaking down %q…", ui.IconHourglass, line.title)
			return m, m.breakdownCmd(line)
		}
	}
	return m, nil
}

func (m boardModel) current() (boardLine, bool) {
	lines := m.boardLines()
	if m.selected < 0 || m.selected >= len(lines) {
		return boardLine{}, false
	}
	return lines[m.selected], true
}

func (m boardModel) boardLines() []boardLine {
	var out []boardLine
	for _, t := range m.tasks {
		out = append(out, boardLine{
			kind: lineTask, id: t.ID, title: t.Title, done: t.Completed,
			isHabit: t.IsHabit, streak: t.Streak, difficulty: t.Difficulty, skill: t.Skill,
		})
	}
	for _, q := range m.quests {
		out = append(out, boardLine{
			kind: lineQuest, id: q.ID, title: q.Title,
			done: engine.QuestComplete(q), expanded: m.expanded[q.ID],
		})
		if !m.expanded[q.ID] {
			continue
		}
		for _, c := range q.Categories {
			out = append(out, boardLine{
				kind: lineCategory, depth: 1, id: c.ID, questID: q.ID, title: c.Title,
				done: engine.CategoryComplete(c),
			})
			for _, t := range c.Tasks {
				out = append(out, boardLine{
					kind: lineQuestTask, depth: 2, id: t.ID, questID: q.ID, categoryID: c.ID,
					title: t.Name, done: t.Status == engine.StatusCompleted,
					difficulty: t.Difficulty, skill: t.Skill,
				})
			}
		}
	}
	return out
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	leftW := 30
	if m.width > 0 {
		leftW = max(20, min(leftW, m.width/2))
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	rows := max(len(linesLeft), len(linesRight))

	var body strings.Builder
	for i := 0; i < rows; i++ {
		l, r := "", ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	view := header + "\n" + body.String() + footer
	if m.pending != nil {
		view += "\n" + m.renderDialog()
	}
	return view
}

func (m boardModel) renderHeader() string {
	if m.loading {
		return "XPeak: loading…"
	}
	p := m.profile
	prog := engine.Progress(p.TotalXP, p.Level)
	name := p.Name
	if name == "" {
		name = p.UserID
	}
	return fmt.Sprintf("%s | %s | Level %d | XP %d %s %d/%d",
		ui.Title.Render("XPeak"), name, p.Level, p.TotalXP, ui.Bar(prog.Percentage, 24), prog.Current, prog.Max)
}

func (m boardModel) renderSidebar() string {
	lines := []string{ui.PanelTitle.Render("Skills")}
	for _, sk := range engine.TrackedSkills {
		stat := m.profile.Skills[string(sk)]
		prog := engine.Progress(stat.XP, stat.Level)
		lines = append(lines, fmt.Sprintf("%s L%-2d %s", ui.SkillIcon(string(sk)), stat.Level, ui.Bar(prog.Percentage, 12)))
	}
	lines = append(lines,
		"",
		ui.PanelTitle.Render("Keys"),
		"↑/↓ j/k  move",
		"enter    expand quest",
		"c/space  toggle task",
		"p        offer quest bonus",
		"b        AI breakdown",
		"r        refresh",
		"q        quit",
	)
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	lines := m.boardLines()
	if len(lines) == 0 {
		return "(no tasks or quests yet: try `xpeak add` or `xpeak quest new`)"
	}

	var out []string
	for i, l := range lines {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		indent := strings.Repeat("  ", l.depth)
		var row string
		switch l.kind {
		case lineTask:
			row = fmt.Sprintf("%s %s %s %s", ui.Check(l.done), ui.KindIcon(l.isHabit), l.title, ui.DifficultyText(l.difficulty))
			if l.isHabit && l.streak > 0 {
				row += fmt.Sprintf(" %s%d", ui.IconFire, l.streak)
			}
		case lineQuest:
			fold := "▸"
			if l.expanded {
				fold = "▾"
			}
			row = fmt.Sprintf("%s %s %s", fold, ui.H2.Render(l.title), ui.Check(l.done))
			if m.store.QuestBusy(l.id) {
				row += " " + ui.IconHourglass
			}
		case lineCategory:
			row = fmt.Sprintf("%s %s", ui.Check(l.done), ui.Key.Render(l.title))
		case lineQuestTask:
			row = fmt.Sprintf("%s %s %s %s", ui.Check(l.done), ui.SkillIcon(l.skill), l.title, ui.DifficultyText(l.difficulty))
		}
		if i == m.selected {
			cursor = ui.Gold.Render(cursor)
		}
		out = append(out, cursor+indent+row)
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func (m boardModel) renderDialog() string {
	p := m.pending
	body := fmt.Sprintf("%s Quest complete: %s\n\nClaim the quest bonus of %s (%d categories)?\n\n[y] accept   [n] decline",
		ui.IconTrophy, p.QuestTitle, ui.Gold.Render(fmt.Sprintf("%d XP", p.Amount)), p.Categories)
	return ui.Dialog.Render(body)
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
