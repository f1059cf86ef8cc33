package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"xpeak/internal/engine"
	"xpeak/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, skills and achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			p := store.Profile()
			nextReq := engine.XPRequiredForLevel(p.Level + 1)
			prog := engine.Progress(p.TotalXP, p.Level)

			name := p.Name
			if name == "" {
				name = p.UserID
			}
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, name))
			if p.Identity != "" {
				fmt.Fprintln(out, ui.Muted.Render(p.Identity))
			}
			fmt.Fprintln(out, ui.LabelValue("Level", p.Level))
			fmt.Fprintln(out, ui.LabelValue("Total XP", fmt.Sprintf("%d (next at %d, %d to go)", p.TotalXP, nextReq, max(0, nextReq-p.TotalXP))))
			fmt.Fprintf(out, "%s %s\n", ui.Bar(prog.Percentage, 30), ui.Muted.Render(fmt.Sprintf("%d/%d", prog.Current, prog.Max)))
			fmt.Fprintln(out)

			fmt.Fprintln(out, ui.H2.Render("📊 Skills"))
			for _, sk := range engine.TrackedSkills {
				stat := p.Skills[string(sk)]
				sp := engine.Progress(stat.XP, stat.Level)
				fmt.Fprintf(out, "- %s %-12s lvl %-2d %s %s\n", ui.SkillIcon(string(sk)), sk, stat.Level,
					ui.Bar(sp.Percentage, 12), ui.Muted.Render(fmt.Sprintf("(xp %d)", stat.XP)))
			}
			fmt.Fprintln(out)

			checker := engine.NewAchievementChecker(store.Snapshot())
			fmt.Fprintln(out, ui.H2.Render(fmt.Sprintf("%s Achievements %d/%d", ui.IconTrophy, checker.CountEarned(), checker.CountTotal())))
			for _, a := range checker.GetAchievements() {
				if a.Earned {
					fmt.Fprintf(out, "- %s %s %s\n", a.Icon, ui.Good.Render(a.Name), ui.Muted.Render(a.Description))
				} else {
					fmt.Fprintf(out, "- 🔒 %s %s\n", ui.Muted.Render(a.Name), ui.Muted.Render(a.Description))
				}
			}
			return nil
		},
	}

	return cmd
}
