package root

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"xpeak/internal/ui"
)

func newAskCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ask <what you want to work on>",
		Short: "Let the AI assistant suggest tasks and add them",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("prompt is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, cleanup, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			fmt.Fprintf(cmd.OutOrStdout(), "%s Thinking…\n", ui.IconRobot)
			added, err := store.AddSuggestedTasks(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(added) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No suggestions."))
				return nil
			}
			for _, t := range added {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconPlus)+" "+taskLine(t))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Give up on the assistant after this long")

	return cmd
}
