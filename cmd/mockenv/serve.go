package main

import (
	"os"
	"os/signal"
	"syscall"

	"mock_env_server/internal/infra/telemetry"
	"mock_env_server/utils"

	"github.com/go-chassis/go-chassis/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST server and the periodic health monitor",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, cfg, cleanup, err := loadApp()
		if err != nil {
			return err
		}
		defer cleanup()

		logger := utils.GetLogger()
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.HealthConfig.RehydrateOnBoot {
			if _, err := app.Manager.Rehydrate(ctx); err != nil {
				logger.Errorf("rehydrate err: %v", err)
			}
		}

		for _, schema := range app.Schemas.All() {
			chassis.RegisterSchema("rest", schema)
		}
		if err := chassis.Init(); err != nil {
			logger.Errorf("chassis init err: %v", err)
			return err
		}
		telemetry.Enable()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return app.Monitor.Run(gctx)
		})
		g.Go(func() error {
			return chassis.Run()
		})
		return g.Wait()
	},
}
