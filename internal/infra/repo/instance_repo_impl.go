package repo

import (
	"context"
	"fmt"
	"time"

	"mock_env_server/internal/domain/errs"
	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	configs "mock_env_server/internal/infra/config"
	"mock_env_server/internal/infra/storage"

	"github.com/avast/retry-go/v4"
)

type instanceRepoImpl struct {
	mysqlStorage storage.MySQLInstanceStorageIface
	config       *configs.RepoConfig
}

var _ InstanceRepositoryIface = (*instanceRepoImpl)(nil)

func NewInstanceRepoImpl(mysqlStorage storage.MySQLInstanceStorageIface, config *configs.RepoConfig) InstanceRepositoryIface {
	return &instanceRepoImpl{mysqlStorage: mysqlStorage, config: config}
}

func (r *instanceRepoImpl) Create(ctx context.Context, instance *mockinstance.MockInstance) error {
	if instance.Status == "" {
		instance.Status = mockinstance.StatusStopped
	}
	if instance.HealthStatus == "" {
		instance.HealthStatus = mockinstance.HealthUnknown
	}
	return r.withRetry(func() error {
		return r.mysqlStorage.CreateInstance(ctx, instance)
	})
}

func (r *instanceRepoImpl) FindByID(ctx context.Context, instanceID string) (*mockinstance.MockInstance, error) {
	instance, err := r.mysqlStorage.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, &errs.MockInstanceNotFoundError{InstanceID: instanceID}
	}
	return instance, nil
}

func (r *instanceRepoImpl) LatestForProject(ctx context.Context, projectID string) (*mockinstance.MockInstance, error) {
	instance, err := r.mysqlStorage.LatestInstanceForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, &errs.NoMockInstanceError{ProjectID: projectID}
	}
	return instance, nil
}

func (r *instanceRepoImpl) ListAll(ctx context.Context) ([]*mockinstance.MockInstance, error) {
	return r.mysqlStorage.ListInstances(ctx)
}

func (r *instanceRepoImpl) MarkRunning(ctx context.Context, instanceID string) error {
	return r.update(ctx, instanceID, map[string]interface{}{
		"status": mockinstance.StatusRunning,
	})
}

func (r *instanceRepoImpl) MarkStopped(ctx context.Context, instanceID string, at time.Time) error {
	return r.update(ctx, instanceID, map[string]interface{}{
		"status":          mockinstance.StatusStopped,
		"last_stopped_at": at,
	})
}

func (r *instanceRepoImpl) UpdateHealth(ctx context.Context, instanceID string, health mockinstance.HealthStatus, at time.Time) error {
	return r.update(ctx, instanceID, map[string]interface{}{
		"health_status":  health,
		"last_health_at": at,
	})
}

func (r *instanceRepoImpl) update(ctx context.Context, instanceID string, fields map[string]interface{}) error {
	err := r.withRetry(func() error {
		return r.mysqlStorage.UpdateInstanceFields(ctx, instanceID, fields)
	})
	if err != nil {
		return fmt.Errorf("failed to update mock instance: %w", err)
	}
	return nil
}

func (r *instanceRepoImpl) withRetry(fn func() error) error {
	return retry.Do(
		fn,
		retry.Attempts(uint(r.config.SaveDBRetryCount)),
		retry.Delay(r.config.SaveDBRetryDelay),
		retry.LastErrorOnly(true),
	)
}
