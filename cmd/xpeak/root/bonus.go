package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"xpeak/internal/ui"
)

// Bonus proposals live only as long as the process that made them, so the
// CLI re-proposes and answers in one go. Long-running surfaces (board,
// serve) list and answer them separately.
func newBonusCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "bonus <quest-id>",
		Short: "Claim the bonus of a complete quest (e.g. after declining it)",
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
			p, err := store.ProposeQuestBonus(ctx, q.ID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("quest %q not found", args[0])
			}
			accept := yes
			if !accept {
				accept, err = confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
					fmt.Sprintf("%s Claim the %d XP bonus of %q?", ui.IconTrophy, p.Amount, p.QuestTitle))
				if err != nil {
					return err
				}
			}
			return answerBonus(cmd, store, *p, accept)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Accept without asking")

	return cmd
}
