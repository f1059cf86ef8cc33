package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"xpeak/internal/engine"
	"xpeak/internal/ui"
)

func newAddCmd() *cobra.Command {
	var diff string
	var skill string
	var desc string
	var isHabit bool

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task (or a daily habit with --habit)",
		Args:  exactArgs(1, "title"),
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

			t, err := store.AddTask(ctx, engine.TaskInput{
				Title:       args[0],
				Description: desc,
				Difficulty:  d,
				Skill:       engine.ParseSkill(skill),
				IsHabit:     isHabit,
			})
			if err != nil {
				return err
			}
			xp := engine.TaskXP(*t)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n",
				ui.Good.Render(ui.IconPlus+" Added"), ui.Muted.Render(shortID(t.ID)), t.Title,
				ui.Muted.Render(fmt.Sprintf("(%d XP)", xp.Total)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&diff, "diff", "d", "easy", "Difficulty (easy|medium|hard|epic)")
	cmd.Flags().StringVarP(&skill, "skill", "s", "", "Skill (physical|mental|professional|social|creative)")
	cmd.Flags().StringVar(&desc, "desc", "", "Description")
	cmd.Flags().BoolVar(&isHabit, "habit", false, "Daily habit (resets every day, builds a streak)")

	return cmd
}

func newEditCmd() *cobra.Command {
	var title, desc, diff, skill string

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit a task (difficulty and skill only while pending)",
		Args:  exactArgs(1, "task id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := resolveTask(store, args[0])
			if err != nil {
				return err
			}

			var patch engine.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("desc") {
				patch.Description = &desc
			}
			if flags.Changed("diff") {
				d, err := engine.ParseDifficulty(diff)
				if err != nil {
					return err
				}
				patch.Difficulty = &d
			}
			if flags.Changed("skill") {
				s := engine.ParseSkill(skill)
				patch.Skill = &s
			}

			res, err := store.UpdateTask(ctx, t.ID, patch)
			if err != nil {
				return err
			}
			if !res.Applied {
				return fmt.Errorf("task %q not found", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("Updated ")+taskLine(res.Task))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&desc, "desc", "", "New description")
	cmd.Flags().StringVarP(&diff, "diff", "d", "", "New difficulty")
	cmd.Flags().StringVarP(&skill, "skill", "s", "", "New skill")

	return cmd
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task (earned XP stays)",
		Args:  exactArgs(1, "task id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := resolveTask(store, args[0])
			if err != nil {
				return err
			}
			if _, err := store.DeleteTask(ctx, t.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Deleted"), t.Title)
			return nil
		},
	}
}
