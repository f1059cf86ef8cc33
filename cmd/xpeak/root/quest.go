package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"xpeak/internal/engine"
	"xpeak/internal/ui"
)

func newQuestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quest",
		Short: "Manage quests: big goals split into categories of tasks",
	}
	cmd.AddCommand(
		newQuestNewCmd(),
		newQuestRenameCmd(),
		newQuestRmCmd(),
		newQuestCatCmd(),
		newQuestRmCatCmd(),
		newQuestTaskCmd(),
		newQuestRmTaskCmd(),
		newQuestToggleCmd(),
		newQuestBreakdownCmd(),
	)
	return cmd
}

func newQuestNewCmd() *cobra.Command {
	var desc string
	var cats []string

	cmd := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a quest",
		Args:  exactArgs(1, "title"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := store.CreateQuest(ctx, engine.QuestInput{Title: args[0], Description: desc, Categories: cats})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconQuest+" Quest created"), q.Title, ui.Muted.Render(shortID(q.ID)))
			if len(q.Categories) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Add a category: %s\n", ui.Muted.Render("💡"),
					ui.Key.Render(fmt.Sprintf("xpeak quest cat %s \"First step\"", shortID(q.ID))))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	cmd.Flags().StringSliceVarP(&cats, "cat", "c", nil, "Category titles to start with (repeatable)")

	return cmd
}

func newQuestRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <quest-id> <title>",
		Short: "Rename a quest",
		Args:  exactArgs(2, "quest id", "title"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := resolveQuest(store, args[0])
			if err != nil {
				return err
			}
			if _, err := store.RenameQuest(ctx, q.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s → %s\n", ui.Good.Render("Renamed"), q.Title, args[1])
			return nil
		},
	}
}

func newQuestRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <quest-id>",
		Short: "Delete a quest (earned XP stays)",
		Args:  exactArgs(1, "quest id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := resolveQuest(store, args[0])
			if err != nil {
				return err
			}
			if _, err := store.DeleteQuest(ctx, q.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Deleted quest"), q.Title)
			return nil
		},
	}
}

func newQuestCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <quest-id> <title>",
		Short: "Add a category to a quest",
		Args:  exactArgs(2, "quest id", "title"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := resolveQuest(store, args[0])
			if err != nil {
				return err
			}
			res, err := store.AddCategory(ctx, q.ID, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconPlus+" Category"), args[1], ui.Muted.Render(shortID(res.CategoryID)))
			return reportQuestResult(cmd, store, res, false)
		},
	}
}

func newQuestRmCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rmcat <quest-id> <category-id>",
		Short: "Delete a category (its tasks and section bonus XP stay earned)",
		Args:  exactArgs(2, "quest id", "category id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := resolveQuest(store, args[0])
			if err != nil {
				return err
			}
			c, err := resolveCategory(q, args[1])
			if err != nil {
				return err
			}
			res, err := store.DeleteCategory(ctx, q.ID, c.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Deleted category"), c.Title)
			return reportQuestResult(cmd, store, res, false)
		},
	}
}

func newQuestTaskCmd() *cobra.Command {
	var diff, skill string

	cmd := &cobra.Command{
		Use:   "task <quest-id> <category-id> <name>",
		Short: "Add a task to a quest category",
		Args:  exactArgs(3, "quest id", "category id", "name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDifficultyFlag(diff)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := resolveQuest(store, args[0])
			if err != nil {
				return err
			}
			c, err := resolveCategory(q, args[1])
			if err != nil {
				return err
			}
			res, err := store.AddQuestTask(ctx, q.ID, c.ID, engine.QuestTaskInput{Name: args[2], Difficulty: d, Skill: engine.ParseSkill(skill)})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconPlus+" Task"), args[2], ui.Muted.Render(shortID(res.TaskID)))
			return reportQuestResult(cmd, store, res, false)
		},
	}

	cmd.Flags().StringVarP(&diff, "diff", "d", "easy", "Difficulty (easy|medium|hard|epic)")
	cmd.Flags().StringVarP(&skill, "skill", "s", "", "Skill (physical|mental|professional|social|creative)")

	return cmd
}

func newQuestRmTaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rmtask <quest-id> <category-id> <task-id>",
		Short: "Delete a quest task (earned XP stays)",
		Args:  exactArgs(3, "quest id", "category id", "task id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := resolveQuest(store, args[0])
			if err != nil {
				return err
			}
			c, err := resolveCategory(q, args[1])
			if err != nil {
				return err
			}
			t, err := resolveQuestTask(c, args[2])
			if err != nil {
				return err
			}
			res, err := store.DeleteQuestTask(ctx, q.ID, c.ID, t.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Deleted task"), t.Name)
			return reportQuestResult(cmd, store, res, false)
		},
	}
}

func newQuestToggleCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "toggle <quest-id> <category-id> <task-id>",
		Short: "Complete or uncomplete a quest task",
		Args:  exactArgs(3, "quest id", "category id", "task id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := resolveQuest(store, args[0])
			if err != nil {
				return err
			}
			c, err := resolveCategory(q, args[1])
			if err != nil {
				return err
			}
			t, err := resolveQuestTask(c, args[2])
			if err != nil {
				return err
			}
			res, err := store.ToggleQuestTask(ctx, q.ID, c.ID, t.ID)
			if err != nil {
				return err
			}
			if !res.Applied {
				return fmt.Errorf("task %q not found", args[2])
			}
			verb := ui.Good.Render(ui.IconDone + " Done")
			if res.TaskXP < 0 {
				verb = ui.Warn.Render(ui.IconLoop + " Restored")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", verb, t.Name, ui.SignedXP(res.TaskXP))
			return reportQuestResult(cmd, store, res, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Accept a quest bonus without asking")

	return cmd
}

func newQuestBreakdownCmd() *cobra.Command {
	var timeout time.Duration
	var yes bool

	cmd := &cobra.Command{
		Use:   "breakdown <quest-id>",
		Short: "Let the AI assistant split a quest into categories and tasks",
		Long: `Ask the AI assistant to break a quest down.

The quest's categories are REPLACED by the suggestion. XP already earned
stays earned. Requires ai.api_key (or XPEAK_AI_API_KEY).`,
		Args: exactArgs(1, "quest id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, cleanup, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			q, err := resolveQuest(store, args[0])
			if err != nil {
				return err
			}
			if len(q.Categories) > 0 && !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Replace the %d categories of %q?", len(q.Categories), q.Title))
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			fmt.Fprintf(cmd.OutOrStdout(), "%s Breaking down %q…\n", ui.IconHourglass, q.Title)
			res, err := store.BreakdownQuest(ctx, q.ID)
			if err != nil {
				return err
			}
			if !res.Applied {
				return fmt.Errorf("quest %q was deleted", q.Title)
			}
			if updated, ok := store.Quest(q.ID); ok {
				printQuest(cmd.OutOrStdout(), updated, false)
			}
			return reportQuestResult(cmd, store, res, false)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Give up on the assistant after this long")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Replace existing categories without asking")

	return cmd
}

// reportQuestResult prints bonus movements and, when the quest has an open
// bonus proposal, asks whether to claim it.
func reportQuestResult(cmd *cobra.Command, store *engine.Store, res *engine.QuestResult, autoAccept bool) error {
	out := cmd.OutOrStdout()
	if !res.Applied {
		return fmt.Errorf("quest item not found")
	}
	switch {
	case res.SectionBonus > 0:
		fmt.Fprintf(out, "%s Section complete %s\n", ui.IconSparkle, ui.SignedXP(res.SectionBonus))
	case res.SectionBonus < 0:
		fmt.Fprintf(out, "Section reopened %s\n", ui.SignedXP(res.SectionBonus))
	}
	if res.QuestBonusRevoked > 0 {
		fmt.Fprintf(out, "Quest reopened %s\n", ui.SignedXP(-res.QuestBonusRevoked))
	}
	printXPChange(out, res.XPChange)

	if res.Pending == nil {
		return nil
	}
	p := *res.Pending
	accept := autoAccept
	if !accept {
		var err error
		accept, err = confirm(cmd.InOrStdin(), out, fmt.Sprintf("%s Quest %q complete! Claim the %d XP quest bonus?", ui.IconTrophy, p.QuestTitle, p.Amount))
		if err != nil {
			return err
		}
	}
	return answerBonus(cmd, store, p, accept)
}

func answerBonus(cmd *cobra.Command, store *engine.Store, p engine.PendingBonus, accept bool) error {
	out := cmd.OutOrStdout()
	outcome, err := store.ConfirmBonus(cmd.Context(), p.ID, accept)
	if err != nil {
		return err
	}
	if outcome.Applied {
		fmt.Fprintf(out, "%s Quest bonus %s\n", ui.IconTrophy, ui.SignedXP(outcome.Amount))
		printXPChange(out, outcome.XPChange)
		return nil
	}
	fmt.Fprintf(out, "%s %s\n", ui.Muted.Render("Quest bonus not applied:"), outcome.Reason)
	if !accept {
		fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("Claim it later with `xpeak bonus %s`.", shortID(p.QuestID))))
	}
	return nil
}
