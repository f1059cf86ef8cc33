package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"xpeak/internal/engine"
	"xpeak/internal/storage"
	"xpeak/internal/ui"
)

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"tpl"},
		Short:   "Reusable task templates (some unlock with level)",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			for _, def := range store.ListTemplates() {
				state := ui.Good.Render("available")
				if def.Locked {
					state = ui.Bad.Render(fmt.Sprintf("🔒 level %d", def.MinLevel))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "- %s %s %s %s %s %s\n",
					ui.Key.Render(def.Name), ui.KindIcon(def.IsHabit), def.Title,
					ui.DifficultyText(def.Difficulty), ui.Muted.Render(string(def.Source)), state)
			}
			return nil
		},
	}

	use := &cobra.Command{
		Use:   "use <name>",
		Short: "Add a task from a template",
		Args:  exactArgs(1, "name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			t, err := store.AddTaskFromTemplate(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconPlus+" Added ")+taskLine(*t))
			return nil
		},
	}

	var title, desc, diff, skill string
	var isHabit bool
	save := &cobra.Command{
		Use:   "save <name>",
		Short: "Save (or overwrite) a personal template",
		Args:  exactArgs(1, "name"),
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

			t, err := store.SaveTemplate(ctx, storage.Template{
				Name:        args[0],
				Title:       title,
				Description: desc,
				Difficulty:  string(d),
				Skill:       string(engine.ParseSkill(skill)),
				IsHabit:     isHabit,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render("Saved template"), t.Name)
			return nil
		},
	}
	save.Flags().StringVar(&title, "title", "", "Task title (required)")
	save.Flags().StringVar(&desc, "desc", "", "Task description")
	save.Flags().StringVarP(&diff, "diff", "d", "easy", "Difficulty")
	save.Flags().StringVarP(&skill, "skill", "s", "", "Skill")
	save.Flags().BoolVar(&isHabit, "habit", false, "Template creates a habit")

	rm := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a personal template",
		Args:  exactArgs(1, "name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ok, err := store.DeleteTemplate(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("template %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Deleted template"), args[0])
			return nil
		},
	}

	cmd.AddCommand(list, use, save, rm)
	return cmd
}
