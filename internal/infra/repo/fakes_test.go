package repo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	mockinstance "mock_env_server/internal/domain/model/mock_instance"
	testsuite "mock_env_server/internal/domain/model/test_suite"
	configs "mock_env_server/internal/infra/config"
	"mock_env_server/internal/infra/storage"
)

func testRepoConfig() *configs.RepoConfig {
	return &configs.RepoConfig{
		RedisCacheRetryCount: 2,
		RedisCacheRetryDelay: time.Millisecond,
		SuiteCacheTTL:        time.Minute,
		SaveDBRetryCount:     3,
		SaveDBRetryDelay:     time.Millisecond,
		CacheFillPoolSize:    2,
	}
}

type fakeSuiteStorage struct {
	mu      sync.Mutex
	suites  map[string]*testsuite.Suite
	gets    int32
	release chan struct{}
}

func (f *fakeSuiteStorage) GetSuite(ctx context.Context, suiteID string) (*testsuite.Suite, error) {
	atomic.AddInt32(&f.gets, 1)
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suites[suiteID], nil
}

func (f *fakeSuiteStorage) SaveSuite(ctx context.Context, suite *testsuite.Suite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.suites == nil {
		f.suites = map[string]*testsuite.Suite{}
	}
	f.suites[suite.ID] = suite
	return nil
}

type fakeSuiteCache struct {
	mu     sync.Mutex
	suites map[string]*testsuite.Suite
}

func newFakeSuiteCache() *fakeSuiteCache {
	return &fakeSuiteCache{suites: map[string]*testsuite.Suite{}}
}

func (f *fakeSuiteCache) GetSuiteFromCache(ctx context.Context, suiteID string) (*testsuite.Suite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.suites[suiteID]
	if !ok {
		return nil, storage.ErrCacheMiss
	}
	return s, nil
}

func (f *fakeSuiteCache) SetSuiteToCache(ctx context.Context, suite *testsuite.Suite, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suites[suite.ID] = suite
	return nil
}

func (f *fakeSuiteCache) DeleteSuiteFromCache(ctx context.Context, suiteID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.suites, suiteID)
	return nil
}

func (f *fakeSuiteCache) has(suiteID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.suites[suiteID]
	return ok
}

type fakeInstanceStorage struct {
	mu          sync.Mutex
	instances   map[string]*mockinstance.MockInstance
	failUpdates int
	updates     int
}

func (f *fakeInstanceStorage) CreateInstance(ctx context.Context, instance *mockinstance.MockInstance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *instance
	f.instances[instance.ID] = &cp
	return nil
}

func (f *fakeInstanceStorage) GetInstance(ctx context.Context, instanceID string) (*mockinstance.MockInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inst, ok := f.instances[instanceID]
	if !ok {
		return nil, nil
	}
	cp := *inst
	return &cp, nil
}

func (f *fakeInstanceStorage) LatestInstanceForProject(ctx context.Context, projectID string) (*mockinstance.MockInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *mockinstance.MockInstance
	for _, inst := range f.instances {
		if inst.ProjectID != projectID {
			continue
		}
		if latest == nil || inst.CreatedAt.After(latest.CreatedAt) {
			latest = inst
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeInstanceStorage) ListInstances(ctx context.Context) ([]*mockinstance.MockInstance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*mockinstance.MockInstance, 0, len(f.instances))
	for _, inst := range f.instances {
		cp := *inst
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeInstanceStorage) UpdateInstanceFields(ctx context.Context, instanceID string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	if f.failUpdates > 0 {
		f.failUpdates--
		return errors.New("deadlock found when trying to get lock")
	}
	inst, ok := f.instances[instanceID]
	if !ok {
		return nil
	}
	if v, ok := fields["status"]; ok {
		inst.Status = v.(mockinstance.Status)
	}
	if v, ok := fields["health_status"]; ok {
		inst.HealthStatus = v.(mockinstance.HealthStatus)
	}
	if v, ok := fields["last_health_at"]; ok {
		at := v.(time.Time)
		inst.LastHealthAt = &at
	}
	if v, ok := fields["last_stopped_at"]; ok {
		at := v.(time.Time)
		inst.LastStoppedAt = &at
	}
	return nil
}
