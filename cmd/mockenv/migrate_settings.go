package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var dryRun bool

var migrateSettingsCmd = &cobra.Command{
	Use:   "migrate-settings",
	Short: "Rewrite legacy project origin keys into testSettings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, _, cleanup, err := loadApp()
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := app.SettingsMigration.Migrate(cmd.Context(), dryRun)
		if err != nil {
			return err
		}
		fmt.Printf("scanned %d projects, migrated %d, failed %d\n", report.Scanned, len(report.Migrated), len(report.Failed))
		failed := make([]string, 0, len(report.Failed))
		for id := range report.Failed {
			failed = append(failed, id)
		}
		sort.Strings(failed)
		for _, id := range failed {
			fmt.Printf("  %s: %s\n", id, report.Failed[id])
		}
		if len(report.Failed) > 0 {
			return fmt.Errorf("%d projects could not be migrated", len(report.Failed))
		}
		return nil
	},
}

func init() {
	migrateSettingsCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
}
