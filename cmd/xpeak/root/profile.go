package root

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"xpeak/internal/engine"
	"xpeak/internal/storage"
	"xpeak/internal/ui"
)

func newProfileCmd() *cobra.Command {
	var name, identity string
	var goals []string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your name, identity statement and goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p := store.Profile()
			var patch engine.ProfilePatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("identity") {
				patch.Identity = &identity
			}
			if flags.Changed("goal") {
				patch.Goals = goals
			}
			if patch.Name != nil || patch.Identity != nil || patch.Goals != nil {
				if p, err = store.UpdateProfile(ctx, patch); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconSparkle, "Profile"))
			fmt.Fprintln(out, ui.LabelValue("Name", p.Name))
			fmt.Fprintln(out, ui.LabelValue("Identity", p.Identity))
			fmt.Fprintln(out, ui.LabelValue("Goals", strings.Join(p.Goals, "; ")))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&identity, "identity", "", "Who you are becoming (\"I am someone who...\")")
	cmd.Flags().StringSliceVar(&goals, "goal", nil, "Goals (repeatable; replaces the list)")

	cmd.AddCommand(newLayoutCmd())
	return cmd
}

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout [widget[:hidden]]...",
		Short: "Show or set the dashboard layout (order is the argument order)",
		Long: `Show or set the dashboard widget layout.

With no arguments the current layout is printed. Otherwise the widgets are
stored in argument order; append ":hidden" to keep a widget but hide it.

  xpeak profile layout level skills:hidden quests tasks`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, cleanup, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			layout := store.Profile().Layout
			if len(args) > 0 {
				widgets := make([]storage.Widget, 0, len(args))
				for i, a := range args {
					id, hidden := strings.CutSuffix(a, ":hidden")
					widgets = append(widgets, storage.Widget{ID: id, Visible: !hidden, Order: i})
				}
				if layout, err = store.SetLayout(ctx, widgets); err != nil {
					return err
				}
			}
			for _, w := range layout {
				vis := ui.Good.Render("shown")
				if !w.Visible {
					vis = ui.Muted.Render("hidden")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s %s\n", w.Order+1, ui.Key.Render(w.ID), vis)
			}
			return nil
		},
	}
}
