package repo

import (
	"context"
	"errors"
	"fmt"

	"mock_env_server/internal/domain/errs"
	testsuite "mock_env_server/internal/domain/model/test_suite"
	configs "mock_env_server/internal/infra/config"
	"mock_env_server/internal/infra/storage"
	"mock_env_server/utils"

	"github.com/avast/retry-go/v4"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/singleflight"
)

// suiteRepoImpl reads suites from MySQL through a Redis cache. Concurrent misses
// for one suite share a single database read; cache fills run on the task pool.
type suiteRepoImpl struct {
	mysqlStorage storage.MySQLSuiteStorageIface
	redisCache   storage.RedisSuiteCacheIface
	config       *configs.RepoConfig
	taskPool     *ants.Pool
	sfGroup      singleflight.Group
}

var _ SuiteRepositoryIface = (*suiteRepoImpl)(nil)

func NewSuiteRepoImpl(mysqlStorage storage.MySQLSuiteStorageIface, redisCache storage.RedisSuiteCacheIface, config *configs.RepoConfig) (SuiteRepositoryIface, func(), error) {
	taskPool, err := ants.NewPool(config.CacheFillPoolSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	repo := &suiteRepoImpl{
		mysqlStorage: mysqlStorage,
		redisCache:   redisCache,
		config:       config,
		taskPool:     taskPool,
	}
	return repo, taskPool.Release, nil
}

func (r *suiteRepoImpl) FindByID(ctx context.Context, suiteID string) (*testsuite.Suite, error) {
	suite, err := r.redisCache.GetSuiteFromCache(ctx, suiteID)
	if err == nil {
		utils.GetLogger().Debugf("suite found in cache: %s", suiteID)
		return suite, nil
	}
	if !errors.Is(err, storage.ErrCacheMiss) {
		utils.GetLogger().Warnf("suite cache read failed, falling back to db: %v", err)
	}

	data, err, _ := r.sfGroup.Do("find_suite_by_id_"+suiteID, func() (interface{}, error) {
		suite, err := r.mysqlStorage.GetSuite(ctx, suiteID)
		if err != nil {
			return nil, fmt.Errorf("failed to get suite from db: %w", err)
		}
		if suite == nil {
			return nil, &errs.SuiteNotFoundError{SuiteID: suiteID}
		}
		r.fillCache(ctx, suite)
		return suite, nil
	})
	if err != nil {
		return nil, err
	}
	return data.(*testsuite.Suite), nil
}

// Save writes the suite to the database and refreshes the cache asynchronously.
func (r *suiteRepoImpl) Save(ctx context.Context, suite *testsuite.Suite) error {
	err := retry.Do(
		func() error {
			return r.mysqlStorage.SaveSuite(ctx, suite)
		},
		retry.Attempts(uint(r.config.SaveDBRetryCount)),
		retry.Delay(r.config.SaveDBRetryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save suite to db: %w", err)
	}
	r.fillCache(ctx, suite)
	return nil
}

func (r *suiteRepoImpl) fillCache(ctx context.Context, suite *testsuite.Suite) {
	log := utils.GetLogger()
	cacheCtx := context.WithoutCancel(ctx)
	if err := r.taskPool.Submit(func() {
		err := retry.Do(
			func() error {
				return r.redisCache.SetSuiteToCache(cacheCtx, suite, r.config.SuiteCacheTTL)
			},
			retry.Attempts(uint(r.config.RedisCacheRetryCount)),
			retry.Delay(r.config.RedisCacheRetryDelay),
		)
		if err != nil {
			log.Warnf("async suite cache fill failed for %s: %v", suite.ID, err)
		}
	}); err != nil {
		log.Warnf("failed to submit suite cache fill: %v", err)
	}
}
