package root

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"xpeak/internal/engine"
	"xpeak/internal/storage"
	"xpeak/internal/ui"
)

// shortIDLen is how much of a uuid the CLI prints. Any unique prefix is
// accepted back.
const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// matchID resolves an exact id or a unique id prefix.
func matchID(what, ref string, ids []string) (string, error) {
	ref = strings.TrimSpace(strings.ToLower(ref))
	if ref == "" {
		return "", fmt.Errorf("%s id is required", what)
	}
	var found []string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%s %q not found", what, ref)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("%s id %q is ambiguous (%d matches)", what, ref, len(found))
	}
}

func resolveTask(store *engine.Store, ref string) (storage.Task, error) {
	tasks := store.Tasks()
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	id, err := matchID("task", ref, ids)
	if err != nil {
		return storage.Task{}, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return storage.Task{}, fmt.Errorf("task %q not found", ref)
}

func resolveQuest(store *engine.Store, ref string) (storage.Quest, error) {
	quests := store.Quests()
	ids := make([]string, len(quests))
	for i, q := range quests {
		ids[i] = q.ID
	}
	id, err := matchID("quest", ref, ids)
	if err != nil {
		return storage.Quest{}, err
	}
	q, ok := store.Quest(id)
	if !ok {
		return storage.Quest{}, fmt.Errorf("quest %q not found", ref)
	}
	return q, nil
}

func resolveCategory(q storage.Quest, ref string) (storage.QuestCategory, error) {
	ids := make([]string, len(q.Categories))
	for i, c := range q.Categories {
		ids[i] = c.ID
	}
	id, err := matchID("category", ref, ids)
	if err != nil {
		return storage.QuestCategory{}, err
	}
	for _, c := range q.Categories {
		if c.ID == id {
			return c, nil
		}
	}
	return storage.QuestCategory{}, fmt.Errorf("category %q not found", ref)
}

func resolveQuestTask(c storage.QuestCategory, ref string) (storage.QuestTask, error) {
	ids := make([]string, len(c.Tasks))
	for i, t := range c.Tasks {
		ids[i] = t.ID
	}
	id, err := matchID("task", ref, ids)
	if err != nil {
		return storage.QuestTask{}, err
	}
	for _, t := range c.Tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return storage.QuestTask{}, fmt.Errorf("task %q not found", ref)
}

func resolveChallenge(store *engine.Store, ref string) (storage.Challenge, error) {
	all := store.Challenges()
	ids := make([]string, len(all))
	for i, c := range all {
		ids[i] = c.ID
	}
	id, err := matchID("challenge", ref, ids)
	if err != nil {
		return storage.Challenge{}, err
	}
	for _, c := range all {
		if c.ID == id {
			return c, nil
		}
	}
	return storage.Challenge{}, fmt.Errorf("challenge %q not found", ref)
}

// confirm asks a yes/no question on in. Anything but y/yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s %s ", question, ui.Muted.Render("[y/N]"))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.TrimSpace(strings.ToLower(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func exactArgs(n int, names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%s required", strings.Join(names, ", "))
		}
		return nil
	}
}

// printXPChange reports the level movement of a command.
func printXPChange(out io.Writer, xc engine.XPChange) {
	switch {
	case xc.LevelUp:
		fmt.Fprintf(out, "%s %s %d → %d\n", ui.IconBolt, ui.BadgeLevelUp, xc.LevelBefore, xc.LevelAfter)
	case xc.LevelDown:
		fmt.Fprintf(out, "%s %d → %d\n", ui.BadgeLevelDown, xc.LevelBefore, xc.LevelAfter)
	}
}

func parseDifficultyFlag(s string) (engine.Difficulty, error) {
	if strings.TrimSpace(s) == "" {
		return engine.DefaultDifficulty, nil
	}
	return engine.ParseDifficulty(s)
}

func taskLine(t storage.Task) string {
	line := fmt.Sprintf("%s %s %s %s %s %s",
		ui.Check(t.Completed), ui.Muted.Render(shortID(t.ID)), ui.KindIcon(t.IsHabit), t.Title,
		ui.DifficultyText(t.Difficulty), ui.SkillIcon(t.Skill))
	if t.IsHabit && t.Streak > 0 {
		line += fmt.Sprintf(" %s%d", ui.IconFire, t.Streak)
	}
	return line
}
