package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Probe every mock instance once and print the results",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, _, cleanup, err := loadApp()
		if err != nil {
			return err
		}
		defer cleanup()

		results, err := app.Monitor.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}
