// Package ratelimit throttles partner-triggered test runs per caller.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	configs "mock_env_server/internal/infra/config"
	"mock_env_server/internal/infra/storage"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Limiter decides whether one more request for key is allowed now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// NewLimiter builds the limiter named by the config backend.
func NewLimiter(c *configs.RateLimitConfig, counter storage.RedisWindowCounterIface) (Limiter, error) {
	switch c.Backend {
	case BackendRedis:
		return NewRedisLimiter(counter, c.Requests, c.Window), nil
	case "", BackendMemory:
		return NewMemoryLimiter(c.Requests, c.Window, c.Burst, c.TableSize)
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", c.Backend)
	}
}

// MemoryLimiter keeps one token bucket per key. The table is bounded; the least
// recently seen keys are evicted and start with a full bucket when they return.
type MemoryLimiter struct {
	limit rate.Limit
	burst int
	table *lru.Cache[string, *rate.Limiter]
}

func NewMemoryLimiter(requests int, window time.Duration, burst, tableSize int) (*MemoryLimiter, error) {
	if requests <= 0 || window <= 0 {
		return nil, fmt.Errorf("rate limit requires positive requests and window")
	}
	if burst <= 0 {
		burst = 1
	}
	table, err := lru.New[string, *rate.Limiter](tableSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create limiter table: %w", err)
	}
	return &MemoryLimiter{
		limit: rate.Limit(float64(requests) / window.Seconds()),
		burst: burst,
		table: table,
	}, nil
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	lim, ok := m.table.Get(key)
	if !ok {
		lim = rate.NewLimiter(m.limit, m.burst)
		if prev, found, _ := m.table.PeekOrAdd(key, lim); found {
			lim = prev
		}
	}
	return lim.Allow(), nil
}

// RedisLimiter is a fixed window counter shared by every process.
type RedisLimiter struct {
	counter  storage.RedisWindowCounterIface
	requests int
	window   time.Duration
}

func NewRedisLimiter(counter storage.RedisWindowCounterIface, requests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{counter: counter, requests: requests, window: window}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := r.counter.IncrWindow(ctx, key, r.window)
	if err != nil {
		return false, err
	}
	return n <= int64(r.requests), nil
}
