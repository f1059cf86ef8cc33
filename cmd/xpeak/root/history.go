package root

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"xpeak/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	var ledger bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent XP movements",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, repo, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			now := time.Now().In(loc)
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
			gained, err := repo.Ledger().SumSince(ctx, store.UserID(), today)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.LabelValue("Today", ui.SignedXP(gained)))
			fmt.Fprintln(out)

			// The profile keeps a bounded history; the ledger keeps everything.
			if ledger {
				entries, err := repo.Ledger().Recent(ctx, store.UserID(), limit)
				if err != nil {
					return err
				}
				for _, e := range entries {
					fmt.Fprintf(out, "%s %s %s %s\n", ui.Muted.Render(e.At.In(loc).Format("2006-01-02 15:04")),
						ui.SignedXP(e.Delta), e.Reason, ui.Muted.Render(shortID(e.RefID)))
				}
				return nil
			}

			for _, h := range store.History(limit) {
				fmt.Fprintf(out, "%s %s %s %s\n", ui.Muted.Render(h.Date.In(loc).Format("2006-01-02 15:04")),
					ui.SignedXP(h.XPGained), h.Reason, ui.Muted.Render(shortID(h.TaskID)))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "How many entries")
	cmd.Flags().BoolVar(&ledger, "ledger", false, "Read the full ledger instead of the profile history")

	return cmd
}
