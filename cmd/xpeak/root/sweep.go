package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"xpeak/internal/ui"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Reset habits for the new day and break stale streaks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			// Opening the store already sweeps; this reports what is left.
			res, err := store.SweepHabits(ctx)
			if err != nil {
				return err
			}
			if !res.Changed() {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render(ui.IconLoop+" Habits are up to date."))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d habit(s) reset, %d streak(s) broken\n", ui.IconLoop, res.Reset, res.StreaksBroken)
			return nil
		},
	}
}
