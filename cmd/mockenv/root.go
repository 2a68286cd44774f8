package main

import (
	"fmt"
	"os"

	configs "mock_env_server/internal/infra/config"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mockenv",
	Short: "Mock and test execution environment",
	Long: `mockenv hosts generated mock backends, keeps them healthy and runs golden
test suites against a mock, sandbox or production origin.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, sweepCmd, migrateSettingsCmd)
}

// loadApp reads the config and builds the object graph.
func loadApp() (*App, *configs.AppConfig, func(), error) {
	cfg, err := configs.LoadAppConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	app, cleanup, err := initializeApp(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return app, cfg, cleanup, nil
}
