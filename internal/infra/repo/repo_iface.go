package repo

import (
	"context"
	"time"

	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	"mock_env_server/internal/domain/model/project"
	testsuite "mock_env_server/internal/domain/model/test_suite"
)

// InstanceRepositoryIface owns mock instance persistence. Field writes are
// last-write-wins so concurrent sweeps never block each other.
type InstanceRepositoryIface interface {
	Create(ctx context.Context, instance *mockinstance.MockInstance) error
	FindByID(ctx context.Context, instanceID string) (*mockinstance.MockInstance, error)
	LatestForProject(ctx context.Context, projectID string) (*mockinstance.MockInstance, error)
	ListAll(ctx context.Context) ([]*mockinstance.MockInstance, error)
	MarkRunning(ctx context.Context, instanceID string) error
	MarkStopped(ctx context.Context, instanceID string, at time.Time) error
	UpdateHealth(ctx context.Context, instanceID string, health mockinstance.HealthStatus, at time.Time) error
}

type ProjectRepositoryIface interface {
	FindByID(ctx context.Context, projectID string) (*project.Project, error)
	ListAll(ctx context.Context) ([]*project.Project, error)
	UpdateConfig(ctx context.Context, projectID string, config project.RawConfig) error
}

// SuiteRepositoryIface reads suite definitions through the cache.
type SuiteRepositoryIface interface {
	FindByID(ctx context.Context, suiteID string) (*testsuite.Suite, error)
	Save(ctx context.Context, suite *testsuite.Suite) error
}

type RunRepositoryIface interface {
	Save(ctx context.Context, run *testsuite.SuiteRunResult) error
	FindByID(ctx context.Context, runID string) (*testsuite.SuiteRunResult, error)
	ListByProject(ctx context.Context, projectID string, limit int) ([]*testsuite.SuiteRunResult, error)
}
