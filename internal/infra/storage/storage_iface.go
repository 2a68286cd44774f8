package storage

import (
	"context"
	"time"

	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	"mock_env_server/internal/domain/model/project"
	testsuite "mock_env_server/internal/domain/model/test_suite"
)

// Lookups return (nil, nil) when the row does not exist.

type MySQLInstanceStorageIface interface {
	CreateInstance(ctx context.Context, instance *mockinstance.MockInstance) error
	GetInstance(ctx context.Context, instanceID string) (*mockinstance.MockInstance, error)
	LatestInstanceForProject(ctx context.Context, projectID string) (*mockinstance.MockInstance, error)
	ListInstances(ctx context.Context) ([]*mockinstance.MockInstance, error)
	// UpdateInstanceFields writes only the given columns; concurrent writers are last-write-wins.
	UpdateInstanceFields(ctx context.Context, instanceID string, fields map[string]interface{}) error
}

type MySQLProjectStorageIface interface {
	GetProject(ctx context.Context, projectID string) (*project.Project, error)
	ListProjects(ctx context.Context) ([]*project.Project, error)
	UpdateProjectConfig(ctx context.Context, projectID string, config project.RawConfig) error
}

type MySQLSuiteStorageIface interface {
	GetSuite(ctx context.Context, suiteID string) (*testsuite.Suite, error)
	SaveSuite(ctx context.Context, suite *testsuite.Suite) error
}

type MySQLRunStorageIface interface {
	CreateRun(ctx context.Context, run *testsuite.SuiteRunResult) error
	GetRun(ctx context.Context, runID string) (*testsuite.SuiteRunResult, error)
	ListRunsByProject(ctx context.Context, projectID string, limit int) ([]*testsuite.SuiteRunResult, error)
}

// RedisSuiteCacheIface caches suite definitions.
type RedisSuiteCacheIface interface {
	GetSuiteFromCache(ctx context.Context, suiteID string) (*testsuite.Suite, error)
	SetSuiteToCache(ctx context.Context, suite *testsuite.Suite, ttl time.Duration) error
	DeleteSuiteFromCache(ctx context.Context, suiteID string) error
}

// RedisWindowCounterIface counts hits in fixed windows.
type RedisWindowCounterIface interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}
