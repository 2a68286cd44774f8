package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"mock_env_server/internal/domain/errs"
	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	mockroute "mock_env_server/internal/domain/model/mock_route"
	"mock_env_server/internal/domain/model/project"
	testsuite "mock_env_server/internal/domain/model/test_suite"
	configs "mock_env_server/internal/infra/config"

	"github.com/sirupsen/logrus"
)

func testHealthConfig() *configs.HealthConfig {
	return &configs.HealthConfig{
		Interval:        time.Hour,
		ProbeTimeout:    100 * time.Millisecond,
		PoolSize:        4,
		StartRetryCount: 2,
		StartRetryDelay: time.Millisecond,
	}
}

func testRunnerConfig() *configs.RunnerConfig {
	return &configs.RunnerConfig{CaseTimeout: time.Second, MaxRepeat: 10}
}

func quietRegistry() *mockroute.Registry {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return mockroute.NewRegistry(log)
}

type fakeInstanceRepo struct {
	mu        sync.Mutex
	instances map[string]*mockinstance.MockInstance
	order     []string
}

func newFakeInstanceRepo(instances ...*mockinstance.MockInstance) *fakeInstanceRepo {
	r := &fakeInstanceRepo{instances: map[string]*mockinstance.MockInstance{}}
	for _, inst := range instances {
		cp := *inst
		r.instances[inst.ID] = &cp
		r.order = append(r.order, inst.ID)
	}
	return r
}

func (r *fakeInstanceRepo) Create(ctx context.Context, instance *mockinstance.MockInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *instance
	r.instances[instance.ID] = &cp
	r.order = append(r.order, instance.ID)
	return nil
}

func (r *fakeInstanceRepo) FindByID(ctx context.Context, instanceID string) (*mockinstance.MockInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[instanceID]
	if !ok {
		return nil, &errs.MockInstanceNotFoundError{InstanceID: instanceID}
	}
	cp := *inst
	return &cp, nil
}

func (r *fakeInstanceRepo) LatestForProject(ctx context.Context, projectID string) (*mockinstance.MockInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.order) - 1; i >= 0; i-- {
		inst := r.instances[r.order[i]]
		if inst.ProjectID == projectID {
			cp := *inst
			return &cp, nil
		}
	}
	return nil, &errs.NoMockInstanceError{ProjectID: projectID}
}

func (r *fakeInstanceRepo) ListAll(ctx context.Context) ([]*mockinstance.MockInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*mockinstance.MockInstance, 0, len(r.order))
	for _, id := range r.order {
		cp := *r.instances[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeInstanceRepo) MarkRunning(ctx context.Context, instanceID string) error {
	return r.mutate(instanceID, func(inst *mockinstance.MockInstance) {
		inst.Status = mockinstance.StatusRunning
	})
}

func (r *fakeInstanceRepo) MarkStopped(ctx context.Context, instanceID string, at time.Time) error {
	return r.mutate(instanceID, func(inst *mockinstance.MockInstance) {
		inst.Status = mockinstance.StatusStopped
		inst.LastStoppedAt = &at
	})
}

func (r *fakeInstanceRepo) UpdateHealth(ctx context.Context, instanceID string, health mockinstance.HealthStatus, at time.Time) error {
	return r.mutate(instanceID, func(inst *mockinstance.MockInstance) {
		inst.HealthStatus = health
		inst.LastHealthAt = &at
	})
}

func (r *fakeInstanceRepo) mutate(instanceID string, fn func(*mockinstance.MockInstance)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[instanceID]
	if !ok {
		return &errs.MockInstanceNotFoundError{InstanceID: instanceID}
	}
	fn(inst)
	return nil
}

func (r *fakeInstanceRepo) get(instanceID string) mockinstance.MockInstance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.instances[instanceID]
}

// countingLauncher counts starts and fails the first failStarts of them.
type countingLauncher struct {
	starts     int32
	stops      int32
	failStarts int32
	delay      time.Duration
}

func (l *countingLauncher) Start(ctx context.Context, instance *mockinstance.MockInstance) error {
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	n := atomic.AddInt32(&l.starts, 1)
	if n <= atomic.LoadInt32(&l.failStarts) {
		return errors.New("port already in use")
	}
	return nil
}

func (l *countingLauncher) Stop(ctx context.Context, instance *mockinstance.MockInstance) error {
	atomic.AddInt32(&l.stops, 1)
	return nil
}

func (l *countingLauncher) startCount() int {
	return int(atomic.LoadInt32(&l.starts))
}

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*project.Project
}

func newFakeProjectRepo(projects ...*project.Project) *fakeProjectRepo {
	r := &fakeProjectRepo{projects: map[string]*project.Project{}}
	for _, p := range projects {
		r.projects[p.ID] = p
	}
	return r
}

func (r *fakeProjectRepo) FindByID(ctx context.Context, projectID string) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return nil, &errs.ProjectNotFoundError{ProjectID: projectID}
	}
	return p, nil
}

func (r *fakeProjectRepo) ListAll(ctx context.Context) ([]*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*project.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProjectRepo) UpdateConfig(ctx context.Context, projectID string, config project.RawConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return &errs.ProjectNotFoundError{ProjectID: projectID}
	}
	p.Config = config
	return nil
}

type fakeSuiteRepo struct {
	suites map[string]*testsuite.Suite
}

func (r *fakeSuiteRepo) FindByID(ctx context.Context, suiteID string) (*testsuite.Suite, error) {
	s, ok := r.suites[suiteID]
	if !ok {
		return nil, &errs.SuiteNotFoundError{SuiteID: suiteID}
	}
	return s, nil
}

func (r *fakeSuiteRepo) Save(ctx context.Context, suite *testsuite.Suite) error {
	r.suites[suite.ID] = suite
	return nil
}

type fakeRunRepo struct {
	mu   sync.Mutex
	runs []*testsuite.SuiteRunResult
	err  error
}

func (r *fakeRunRepo) Save(ctx context.Context, run *testsuite.SuiteRunResult) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func (r *fakeRunRepo) FindByID(ctx context.Context, runID string) (*testsuite.SuiteRunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.runs {
		if run.ID == runID {
			return run, nil
		}
	}
	return nil, &errs.RunNotFoundError{RunID: runID}
}

func (r *fakeRunRepo) ListByProject(ctx context.Context, projectID string, limit int) ([]*testsuite.SuiteRunResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*testsuite.SuiteRunResult
	for _, run := range r.runs {
		if run.ProjectID == projectID {
			out = append(out, run)
		}
	}
	return out, nil
}

type stubResolver struct {
	origin string
	err    error
	calls  int32
}

func (s *stubResolver) Resolve(ctx context.Context, envKey project.EnvKey, projectID string) (string, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.origin, s.err
}
