package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const windowKeyPrefix = "mockenv:ratelimit:"

type redisWindowCounterImpl struct {
	redisClient *redis.Client
}

func NewRedisWindowCounterImpl(redisClient *redis.Client) RedisWindowCounterIface {
	return &redisWindowCounterImpl{redisClient: redisClient}
}

var _ RedisWindowCounterIface = (*redisWindowCounterImpl)(nil)

// IncrWindow increments the counter of the current fixed window for key and
// returns the new count. The window key expires with the window.
func (r *redisWindowCounterImpl) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	bucket := time.Now().UnixNano() / int64(window)
	redisKey := fmt.Sprintf("%s%s:%d", windowKeyPrefix, key, bucket)

	pipe := r.redisClient.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment rate window: %w", err)
	}
	return incr.Val(), nil
}
