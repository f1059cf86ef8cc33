package root

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"xpeak/internal/engine"
	"xpeak/internal/ui"
)

func newChallengeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "challenge",
		Aliases: []string{"ch"},
		Short:   "Race a friend to a target",
	}

	var metric string
	var reward int
	newCmd := &cobra.Command{
		Use:   "new <title> <opponent> <target>",
		Short: "Start a challenge",
		Args:  exactArgs(3, "title", "opponent", "target"),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("target must be an integer")
			}
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ch, err := store.CreateChallenge(ctx, engine.ChallengeInput{
				Title:       args[0],
				Opponent:    args[1],
				Metric:      metric,
				TargetValue: target,
				RewardXP:    reward,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s vs %s %s\n", ui.Good.Render(ui.IconSwords+" Challenge"), ch.Title, ch.Opponent, ui.Muted.Render(shortID(ch.ID)))
			return nil
		},
	}
	newCmd.Flags().StringVarP(&metric, "metric", "m", "", "What is counted (e.g. km, pages)")
	newCmd.Flags().IntVarP(&reward, "reward", "r", 100, "XP reward for winning")

	progress := &cobra.Command{
		Use:   "progress <challenge-id> <mine> <theirs>",
		Short: "Record both sides' progress",
		Args:  exactArgs(3, "challenge id", "mine", "theirs"),
		RunE: func(cmd *cobra.Command, args []string) error {
			mine, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("mine must be an integer")
			}
			theirs, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("theirs must be an integer")
			}
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ch, err := resolveChallenge(store, args[0])
			if err != nil {
				return err
			}
			res, err := store.UpdateChallengeProgress(ctx, ch.ID, mine, theirs)
			if err != nil {
				return err
			}
			if !res.Applied {
				return fmt.Errorf("challenge %s is already %s", shortID(ch.ID), res.Challenge.Status)
			}
			c := res.Challenge
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d/%d vs %d/%d %s\n", c.Title, c.MyProgress, c.TargetValue, c.OpponentProgress, c.TargetValue, ui.StatusText(c.Status))
			if c.Status == engine.ChallengeWon {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Claim it: %s\n", ui.IconTrophy, ui.Key.Render("xpeak challenge claim "+shortID(c.ID)))
			}
			return nil
		},
	}

	claim := &cobra.Command{
		Use:   "claim <challenge-id>",
		Short: "Collect the reward of a won challenge",
		Args:  exactArgs(1, "challenge id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ch, err := resolveChallenge(store, args[0])
			if err != nil {
				return err
			}
			res, err := store.ClaimChallenge(ctx, ch.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.IconTrophy, res.Challenge.Title, ui.SignedXP(res.XPDelta))
			printXPChange(cmd.OutOrStdout(), res.XPChange)
			return nil
		},
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List challenges",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			all := store.ListChallenges(status)
			if len(all) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("No challenges."))
				return nil
			}
			for _, c := range all {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s vs %s %d/%d vs %d/%d %s %s\n",
					ui.IconSwords, ui.Muted.Render(shortID(c.ID)), c.Title, c.Opponent,
					c.MyProgress, c.TargetValue, c.OpponentProgress, c.TargetValue,
					c.Metric, ui.StatusText(c.Status))
			}
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "Only this status (active|won|lost|claimed)")

	rm := &cobra.Command{
		Use:   "rm <challenge-id>",
		Short: "Delete a challenge (a claimed reward stays)",
		Args:  exactArgs(1, "challenge id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ch, err := resolveChallenge(store, args[0])
			if err != nil {
				return err
			}
			if _, err := store.DeleteChallenge(ctx, ch.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Warn.Render("Deleted challenge"), ch.Title)
			return nil
		},
	}

	cmd.AddCommand(newCmd, progress, claim, list, rm)
	return cmd
}
