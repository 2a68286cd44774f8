package services

import (
	"context"
	"fmt"

	"mock_env_server/internal/domain/model/project"
	"mock_env_server/internal/infra/repo"
	"mock_env_server/utils"
)

type SettingsMigrationReport struct {
	Scanned  int
	Migrated []string
	Failed   map[string]string
}

// SettingsMigrationService rewrites legacy project config blobs into the
// testSettings schema. The resolver only reads the schema.
type SettingsMigrationService struct {
	projectRepo repo.ProjectRepositoryIface
}

func NewSettingsMigrationService(projectRepo repo.ProjectRepositoryIface) *SettingsMigrationService {
	return &SettingsMigrationService{projectRepo: projectRepo}
}

// Migrate walks every project. With dryRun nothing is written.
func (s *SettingsMigrationService) Migrate(ctx context.Context, dryRun bool) (*SettingsMigrationReport, error) {
	projects, err := s.projectRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	report := &SettingsMigrationReport{Failed: map[string]string{}}
	log := utils.GetLogger()
	for _, p := range projects {
		report.Scanned++
		migrated, changed, err := project.MigrateLegacyConfig(p.Config)
		if err != nil {
			report.Failed[p.ID] = err.Error()
			continue
		}
		if !changed {
			continue
		}
		if _, err := project.ParseTestSettings(migrated); err != nil {
			report.Failed[p.ID] = err.Error()
			continue
		}
		if !dryRun {
			if err := s.projectRepo.UpdateConfig(ctx, p.ID, migrated); err != nil {
				report.Failed[p.ID] = err.Error()
				continue
			}
		}
		report.Migrated = append(report.Migrated, p.ID)
		log.WithField("project_id", p.ID).Infof("legacy test settings migrated (dry run %v)", dryRun)
	}
	return report, nil
}
