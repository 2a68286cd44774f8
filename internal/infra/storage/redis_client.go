package storage

import (
	"context"
	"fmt"
	"time"

	configs "mock_env_server/internal/infra/config"
	"mock_env_server/utils"

	"github.com/go-redis/redis/v8"
)

func NewRedisClient(c *configs.AppConfig) (*redis.Client, error) {
	rc := c.RedisConfig
	client := redis.NewClient(&redis.Options{
		Addr:         rc.Addr(),
		Password:     rc.Password,
		DB:           rc.Database,
		PoolSize:     rc.PoolSize,
		MinIdleConns: rc.MinIdleConns,
		MaxRetries:   rc.MaxRetries,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
		PoolTimeout:  rc.PoolTimeout,
		IdleTimeout:  rc.IdleTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis %s: %w", rc.Addr(), err)
	}

	utils.GetLogger().Infof("connected to redis %s", rc.Addr())
	return client, nil
}
