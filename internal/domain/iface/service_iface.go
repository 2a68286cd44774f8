package iface

import (
	"context"
	"time"

	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	mockroute "mock_env_server/internal/domain/model/mock_route"
	"mock_env_server/internal/domain/model/project"
	testsuite "mock_env_server/internal/domain/model/test_suite"
)

// MockServeService answers simulated requests from the registry.
type MockServeService interface {
	// Serve resolves method+path and waits out the entry latency before returning.
	Serve(ctx context.Context, method, path string) (*mockroute.Match, error)
	Entries() []string
	// InstanceServing reports whether the routes of the instance are registered.
	InstanceServing(instanceID string) bool
}

type EnsureOptions struct {
	ForceRestart bool
}

// InstanceManager owns the lifecycle of persisted mock instances.
type InstanceManager interface {
	Ensure(ctx context.Context, instance *mockinstance.MockInstance, opts EnsureOptions) (*mockinstance.MockInstance, error)
	Stop(ctx context.Context, instanceID string) (*mockinstance.MockInstance, error)
	Restart(ctx context.Context, instanceID string) (*mockinstance.MockInstance, error)
	Rehydrate(ctx context.Context) (int, error)
}

type SweepResult struct {
	ID           string                    `json:"id"`
	Status       mockinstance.Status       `json:"status"`
	HealthStatus mockinstance.HealthStatus `json:"healthStatus"`
	Error        string                    `json:"error,omitempty"`
}

// HealthMonitor probes every instance.
type HealthMonitor interface {
	Sweep(ctx context.Context) ([]SweepResult, error)
	Run(ctx context.Context) error
}

// Prober performs one liveness probe and returns the HTTP status.
type Prober interface {
	Probe(ctx context.Context, baseURL string) (int, error)
}

// OriginResolver maps an environment key to one validated base URL.
type OriginResolver interface {
	Resolve(ctx context.Context, envKey project.EnvKey, projectID string) (string, error)
}

// RunRequest asks for one suite execution. ProjectID and ActorID come from the
// caller's session, never from the request body.
type RunRequest struct {
	SuiteID   string
	ProjectID string
	EnvKey    string
	Actor     testsuite.Actor
	ActorID   string
}

// TestCoordinator executes suites and keeps the audit trail.
type TestCoordinator interface {
	Run(ctx context.Context, req RunRequest) (*testsuite.SuiteRunResult, error)
	GetRun(ctx context.Context, projectID, runID string) (*testsuite.SuiteRunResult, error)
	ListRuns(ctx context.Context, projectID string, limit int) ([]*testsuite.SuiteRunResult, error)
}

// CaseExecutor runs the cases of a suite against one origin.
type CaseExecutor interface {
	Execute(ctx context.Context, baseURL string, cases []testsuite.Case) []testsuite.CaseRunResult
}

// MockProvisioner creates a mock instance from an OpenAPI document.
type MockProvisioner interface {
	Provision(ctx context.Context, projectID string, rawSpec []byte, latency time.Duration) (*mockinstance.MockInstance, error)
}
