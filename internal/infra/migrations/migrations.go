// Package migrations applies the embedded MySQL schema.
package migrations

import (
	"embed"
	"errors"
	"fmt"

	configs "mock_env_server/internal/infra/config"
	"mock_env_server/utils"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql" // mysql driver for migrations
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var schemaFS embed.FS

// Up applies every pending migration.
func Up(c *configs.AppConfig) error {
	m, err := newMigrate(c)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", upErr)
	}
	if errors.Is(upErr, migrate.ErrNoChange) {
		utils.GetLogger().Info("no new migrations to apply")
		return nil
	}

	version, dirty, vErr := m.Version()
	if vErr != nil && !errors.Is(vErr, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", vErr)
	}
	utils.GetLogger().WithField("version", version).WithField("dirty", dirty).Info("migrations applied")
	return nil
}

// Down rolls back the given number of steps.
func Down(c *configs.AppConfig, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	m, err := newMigrate(c)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

func newMigrate(c *configs.AppConfig) (*migrate.Migrate, error) {
	source, err := iofs.New(schemaFS, "sql")
	if err != nil {
		return nil, fmt.Errorf("creating source driver: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, "mysql://"+c.DatabaseConfig.GetMigrateDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		utils.GetLogger().Warnf("failed to close migration instance: source=%v db=%v", srcErr, dbErr)
	}
}
