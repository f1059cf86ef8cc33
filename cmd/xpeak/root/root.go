package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"xpeak/internal/config"
	"xpeak/internal/logging"
	"xpeak/internal/ui"
)

const Version = "0.1.0"

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "xpeak",
	Short:         "XPeak: level up by getting things done",
	Long:          "XPeak is a local-first productivity tracker that turns tasks, habits and quests into XP, levels and skills.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		opts := logging.Options{Level: cfg.Log.Level, Verbose: verbose}
		// Full-screen UIs own the terminal, so their logs go to a file.
		if cmd.Name() == "board" {
			if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
				return fmt.Errorf("create config dir: %w", err)
			}
			opts.File = filepath.Join(config.ConfigDir(), "xpeak.log")
		}
		logger, err = logging.New(opts)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.config/xpeak/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(
		newAddCmd(),
		newEditCmd(),
		newDoCmd(),
		newUndoCmd(),
		newRmCmd(),
		newListCmd(),
		newQuestCmd(),
		newBonusCmd(),
		newSweepCmd(),
		newChallengeCmd(),
		newTemplateCmd(),
		newAskCmd(),
		newFocusCmd(),
		newProfileCmd(),
		newHistoryCmd(),
		newStatusCmd(),
		newBoardCmd(),
		newServeCmd(),
	)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
