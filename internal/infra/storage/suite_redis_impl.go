package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	testsuite "mock_env_server/internal/domain/model/test_suite"
	"mock_env_server/utils"

	"github.com/go-redis/redis/v8"
)

const suiteKeyPrefix = "mockenv:suite:"

// ErrCacheMiss is returned when a key is not cached.
var ErrCacheMiss = errors.New("cache miss")

type redisSuiteStorageImpl struct {
	redisClient *redis.Client
}

func NewRedisSuiteStorageImpl(redisClient *redis.Client) RedisSuiteCacheIface {
	return &redisSuiteStorageImpl{redisClient: redisClient}
}

var _ RedisSuiteCacheIface = (*redisSuiteStorageImpl)(nil)

func (r *redisSuiteStorageImpl) GetSuiteFromCache(ctx context.Context, suiteID string) (*testsuite.Suite, error) {
	key := suiteKeyPrefix + suiteID
	suiteJSON, err := r.redisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		utils.GetLogger().Debugf("suite %s not found in cache", suiteID)
		return nil, ErrCacheMiss
	} else if err != nil {
		return nil, fmt.Errorf("failed to get suite from redis: %w", err)
	}

	suite := &testsuite.Suite{}
	if err := json.Unmarshal([]byte(suiteJSON), suite); err != nil {
		return nil, fmt.Errorf("failed to unmarshal suite from JSON: %w", err)
	}
	return suite, nil
}

func (r *redisSuiteStorageImpl) SetSuiteToCache(ctx context.Context, suite *testsuite.Suite, ttl time.Duration) error {
	suiteJSON, err := json.Marshal(suite)
	if err != nil {
		return fmt.Errorf("failed to marshal suite to JSON: %w", err)
	}
	if err := r.redisClient.Set(ctx, suiteKeyPrefix+suite.ID, suiteJSON, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set suite to redis: %w", err)
	}
	return nil
}

func (r *redisSuiteStorageImpl) DeleteSuiteFromCache(ctx context.Context, suiteID string) error {
	if err := r.redisClient.Del(ctx, suiteKeyPrefix+suiteID).Err(); err != nil {
		return fmt.Errorf("failed to delete suite from redis: %w", err)
	}
	return nil
}
