package services

import (
	"context"
	"fmt"

	"mock_env_server/internal/domain/errs"
	"mock_env_server/internal/domain/iface"
	"mock_env_server/internal/domain/model/project"
	"mock_env_server/internal/infra/repo"
	"mock_env_server/utils"

	"github.com/sirupsen/logrus"
)

// OriginResolverService decides which origin a test run may call.
type OriginResolverService struct {
	instanceRepo repo.InstanceRepositoryIface
	projectRepo  repo.ProjectRepositoryIface
	manager      iface.InstanceManager
}

var _ iface.OriginResolver = (*OriginResolverService)(nil)

func NewOriginResolverService(instanceRepo repo.InstanceRepositoryIface, projectRepo repo.ProjectRepositoryIface, manager iface.InstanceManager) *OriginResolverService {
	return &OriginResolverService{
		instanceRepo: instanceRepo,
		projectRepo:  projectRepo,
		manager:      manager,
	}
}

func (s *OriginResolverService) Resolve(ctx context.Context, envKey project.EnvKey, projectID string) (string, error) {
	switch envKey {
	case project.EnvMock:
		return s.resolveMock(ctx, projectID)
	case project.EnvSandbox, project.EnvProd:
		return s.resolveExternal(ctx, envKey, projectID)
	default:
		return "", errs.Validation("unknown environment %q", envKey)
	}
}

// resolveMock ensures the newest instance of the project and returns its base URL.
func (s *OriginResolverService) resolveMock(ctx context.Context, projectID string) (string, error) {
	instance, err := s.instanceRepo.LatestForProject(ctx, projectID)
	if err != nil {
		return "", err
	}
	ensured, err := s.manager.Ensure(ctx, instance, iface.EnsureOptions{})
	if err != nil {
		return "", err
	}
	if !ensured.IsRunning() {
		if err := s.instanceRepo.MarkRunning(ctx, ensured.ID); err != nil {
			utils.GetLogger().WithField("instance_id", ensured.ID).Warnf("failed to force running: %v", err)
		}
	}
	return ensured.BaseURL, nil
}

func (s *OriginResolverService) resolveExternal(ctx context.Context, envKey project.EnvKey, projectID string) (string, error) {
	p, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return "", err
	}
	settings, err := p.TestSettings()
	if err != nil {
		return "", fmt.Errorf("project %s: %w", projectID, err)
	}
	raw, ok := settings.Origin(envKey)
	if !ok {
		return "", &errs.OriginNotConfiguredError{EnvKey: string(envKey)}
	}

	origin, err := ValidateExternalOrigin(envKey, raw, settings)
	if err != nil {
		utils.GetLogger().WithFields(logrus.Fields{
			"project_id": projectID,
			"env_key":    envKey,
		}).Warnf("origin rejected: %v", err)
		return "", err
	}
	return origin, nil
}
