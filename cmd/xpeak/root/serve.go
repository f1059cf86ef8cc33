package root

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"xpeak/internal/api"
	"xpeak/internal/engine"
)

func newServeCmd() *cobra.Command {
	var addr string
	var rps float64

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and keep habits swept",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, cleanup, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			srv := api.New(api.Config{
				Addr:              addr,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      3 * time.Minute,
				RequestsPerSecond: rps,
				Burst:             max(1, int(rps*2)),
			}, store, logger.Named("http"))
			sweeper := engine.NewHabitSweeper(store, cfg.Habits.SweepInterval, logger.Named("habits"))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return srv.Start(ctx)
			})
			g.Go(func() error {
				if err := sweeper.Run(ctx); err != nil && ctx.Err() == nil {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				logger.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			})

			logger.Info("serving", zap.String("addr", addr), zap.Duration("sweep_interval", cfg.Habits.SweepInterval))
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from server.addr)")
	cmd.Flags().Float64Var(&rps, "rps", 20, "API requests per second (0 disables the limit)")

	return cmd
}
