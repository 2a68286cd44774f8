package services

import (
	"context"
	"time"

	"mock_env_server/internal/domain/errs"
	"mock_env_server/internal/domain/iface"
	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	configs "mock_env_server/internal/infra/config"
	"mock_env_server/internal/infra/blueprint"
	"mock_env_server/internal/infra/repo"
	"mock_env_server/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MockProvisionService turns an OpenAPI document into a running mock instance.
// Every instance of a project shares the project's registry key, so the newest
// started instance serves the project's routes.
type MockProvisionService struct {
	instanceRepo repo.InstanceRepositoryIface
	projectRepo  repo.ProjectRepositoryIface
	manager      iface.InstanceManager
	security     *configs.SecurityConfig
	health       *configs.HealthConfig
	newID        func() string
}

var _ iface.MockProvisioner = (*MockProvisionService)(nil)

func NewMockProvisionService(instanceRepo repo.InstanceRepositoryIface, projectRepo repo.ProjectRepositoryIface, manager iface.InstanceManager, security *configs.SecurityConfig, health *configs.HealthConfig) *MockProvisionService {
	return &MockProvisionService{
		instanceRepo: instanceRepo,
		projectRepo:  projectRepo,
		manager:      manager,
		security:     security,
		health:       health,
		newID:        uuid.NewString,
	}
}

// ProjectRegistryKey is the registry key shared by all instances of a project.
func ProjectRegistryKey(projectID string) string {
	return "project:" + projectID
}

// Provision creates the instance and ensures it. A zero latency uses the
// configured default.
func (s *MockProvisionService) Provision(ctx context.Context, projectID string, rawSpec []byte, latency time.Duration) (*mockinstance.MockInstance, error) {
	if latency < 0 {
		return nil, errs.Validation("latencyMs must not be negative")
	}
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}

	bp, err := blueprint.Ingest(rawSpec)
	if err != nil {
		return nil, errs.Validation("%v", err)
	}
	if len(bp.Endpoints) == 0 {
		return nil, errs.Validation("OpenAPI document has no operations")
	}

	latencyMs := int(latency / time.Millisecond)
	if latency == 0 {
		latencyMs = s.health.DefaultLatencyMs
	}

	instance := &mockinstance.MockInstance{
		ID:           s.newID(),
		ProjectID:    projectID,
		BaseURL:      s.security.PublicBaseURL + "/mock",
		Status:       mockinstance.StatusStopped,
		HealthStatus: mockinstance.HealthUnknown,
		Config: mockinstance.InstanceConfig{
			RegistryKey: ProjectRegistryKey(projectID),
			LatencyMs:   latencyMs,
			Routes:      bp.Routes(),
			Extra: map[string]any{
				"title":   bp.Title,
				"version": bp.Version,
			},
		},
	}
	if err := s.instanceRepo.Create(ctx, instance); err != nil {
		return nil, err
	}

	utils.GetLogger().WithFields(logrus.Fields{
		"instance_id": instance.ID,
		"project_id":  projectID,
		"routes":      len(instance.Config.Routes),
	}).Info("mock instance provisioned")
	return s.manager.Ensure(ctx, instance, iface.EnsureOptions{})
}
