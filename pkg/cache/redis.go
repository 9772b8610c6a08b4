package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/school-console/pkg/config"
)

const clientName = "school-console"

// NewRedis connects the console session store. The ping is retried with a
// linear backoff up to cfg.ConnectAttempts times, or until ctx is done.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   cfg.Password,
		DB:         cfg.DB,
		PoolSize:   cfg.PoolSize,
		ClientName: clientName,
	})

	attempts := cfg.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = ping(ctx, client); err == nil {
			return client, nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", addr, ctx.Err())
		case <-time.After(time.Duration(attempt) * cfg.RetryDelay):
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("ping redis %s after %d attempt(s): %w", addr, attempts, err)
}

// Checker returns a readiness probe for client.
func Checker(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return ping(ctx, client)
	}
}

func ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}
