package root

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"xpeak/internal/engine"
	"xpeak/internal/storage"
	"xpeak/internal/ui"
)

func newListCmd() *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, habits and quests (tree view)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			tasks := store.Tasks()
			quests := store.Quests()
			if len(tasks) == 0 && len(quests) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("Nothing here yet: try `xpeak add \"Drink water\" --habit`."))
				return nil
			}

			if len(tasks) > 0 {
				fmt.Fprintln(out, ui.H2.Render("Tasks"))
				for _, t := range tasks {
					if pendingOnly && t.Completed {
						continue
					}
					fmt.Fprintln(out, "  "+taskLine(t))
				}
				fmt.Fprintln(out)
			}
			for _, q := range quests {
				printQuest(out, q, pendingOnly)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&pendingOnly, "pending", "p", false, "Hide completed tasks")

	return cmd
}

func printQuest(out io.Writer, q storage.Quest, pendingOnly bool) {
	head := fmt.Sprintf("%s %s %s", ui.IconQuest, ui.H2.Render(q.Title), ui.Muted.Render(shortID(q.ID)))
	if engine.QuestComplete(q) {
		head += " " + ui.Good.Render("complete")
	}
	if q.BonusXP > 0 {
		head += " " + ui.Gold.Render(fmt.Sprintf("%s +%d", ui.IconTrophy, q.BonusXP))
	}
	fmt.Fprintln(out, head)
	if len(q.Categories) == 0 {
		fmt.Fprintln(out, ui.Muted.Render("  (no categories)"))
	}
	for _, c := range q.Categories {
		line := fmt.Sprintf("  %s %s %s", ui.Check(engine.CategoryComplete(c)), ui.Key.Render(c.Title), ui.Muted.Render(shortID(c.ID)))
		if c.SectionBonusXP > 0 {
			line += " " + ui.Good.Render(fmt.Sprintf("+%d", c.SectionBonusXP))
		}
		fmt.Fprintln(out, line)
		for _, t := range c.Tasks {
			done := t.Status == engine.StatusCompleted
			if pendingOnly && done {
				continue
			}
			fmt.Fprintf(out, "    %s %s %s %s %s\n", ui.Check(done), ui.Muted.Render(shortID(t.ID)), t.Name,
				ui.DifficultyText(t.Difficulty), ui.SkillIcon(t.Skill))
		}
	}
	fmt.Fprintln(out)
}
