package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"xpeak/internal/engine"
	"xpeak/internal/ui"
)

func newDoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "do <task-id>",
		Short: "Complete a task or today's habit",
		Args:  exactArgs(1, "task id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleTask(cmd, args[0], false)
		},
	}

	return cmd
}

func newUndoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "undo <task-id>",
		Aliases: []string{"restore"},
		Short:   "Uncomplete a task (undo completion)",
		Long: `Return a completed task to pending.

This will:
- Deduct exactly the XP the completion awarded
- Restore a habit's previous streak
- Possibly lower your level`,
		Args: exactArgs(1, "task id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleTask(cmd, args[0], true)
		},
	}

	return cmd
}

func toggleTask(cmd *cobra.Command, ref string, wantCompleted bool) error {
	ctx := cmd.Context()
	store, _, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	t, err := resolveTask(store, ref)
	if err != nil {
		return err
	}
	if t.Completed != wantCompleted {
		if wantCompleted {
			return fmt.Errorf("task %s is not completed", shortID(t.ID))
		}
		return fmt.Errorf("task %s is already completed (use `xpeak undo`)", shortID(t.ID))
	}

	res, err := store.ToggleTask(ctx, t.ID)
	if err != nil {
		return err
	}
	if !res.Applied {
		return fmt.Errorf("task %q not found", ref)
	}

	out := cmd.OutOrStdout()
	if res.Task.Completed {
		line := fmt.Sprintf("%s %s %s", ui.Good.Render(ui.IconDone+" Done"), res.Task.Title, ui.SignedXP(res.XPDelta))
		if res.Task.IsHabit {
			line += ui.Muted.Render(fmt.Sprintf(" (streak %d, x%.1f)", res.Task.Streak, res.XP.StreakMultiplier))
		}
		fmt.Fprintln(out, line)
	} else {
		fmt.Fprintf(out, "%s %s %s\n", ui.Warn.Render(ui.IconLoop+" Restored"), res.Task.Title, ui.SignedXP(res.XPDelta))
	}
	printXPChange(out, res.XPChange)
	if skill := engine.ParseSkill(res.Task.Skill); skill.Tracked() {
		stat := store.Profile().Skills[string(skill)]
		fmt.Fprintf(out, "%s %s\n", ui.SkillIcon(string(skill)), ui.Muted.Render(fmt.Sprintf("%s lvl %d (xp %d)", skill, stat.Level, stat.XP)))
	}
	return nil
}
