package root

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"xpeak/internal/timer"
	"xpeak/internal/ui"
)

func newFocusCmd() *cobra.Command {
	var minutes int
	var taskRef string

	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Run a focus countdown, optionally completing a task when it ends",
		RunE: func(cmd *cobra.Command, args []string) error {
			if minutes <= 0 {
				return fmt.Errorf("minutes must be positive")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var title string
			if taskRef != "" {
				store, _, cleanup, err := openStore(ctx)
				if err != nil {
					return err
				}
				t, err := resolveTask(store, taskRef)
				cleanup()
				if err != nil {
					return err
				}
				if t.Completed {
					return fmt.Errorf("task %s is already completed", shortID(t.ID))
				}
				taskRef, title = t.ID, t.Title
			}

			cd := timer.New(nil)
			if err := cd.Start(time.Duration(minutes) * time.Minute); err != nil {
				return err
			}
			heading := "Focus"
			if title != "" {
				heading += ": " + title
			}
			fmt.Fprintln(out, ui.Heading(ui.IconHourglass, heading))

			err := cd.Run(ctx, time.Second, func(left time.Duration) {
				fmt.Fprintf(out, "\r%s %s ", ui.Bar(100-float64(left)/float64(cd.Total())*100, 30), formatClock(left))
			})
			fmt.Fprintln(out)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					fmt.Fprintln(out, ui.Muted.Render("Focus session cancelled."))
					return nil
				}
				return err
			}

			fmt.Fprintln(out, ui.Good.Render(ui.IconSparkle+" Time's up!"))
			if taskRef == "" {
				return nil
			}
			return toggleTask(cmd, taskRef, false)
		},
	}

	cmd.Flags().IntVarP(&minutes, "minutes", "m", 25, "Length of the session")
	cmd.Flags().StringVarP(&taskRef, "task", "t", "", "Task to complete when the session ends")

	return cmd
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d / time.Minute)
	s := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%02d:%02d", m, s)
}
