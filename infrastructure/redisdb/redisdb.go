// Package redisdb provides the optional Redis client used for list
// caching. The service runs without it; an empty REDIS_URL disables it.
package redisdb

import (
	"context"
	"fmt"
	"time"

	"github.com/bosn/zero-todo/sdk/environment"
	"github.com/redis/go-redis/v9"
)

// Options represents the exportable Redis configuration.
type Options struct {
	URL string `env:"REDIS_URL" default:""`
}

// NewFromEnv creates a Redis client using environment variables. A nil
// client with a nil error means caching is disabled.
func NewFromEnv(prefix string) (*redis.Client, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing redis config: %w", err)
	}

	if cfg.URL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// StatusCheck returns nil if it can successfully talk to redis.
func StatusCheck(ctx context.Context, client *redis.Client) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second)
		defer cancel()
	}

	return client.Ping(ctx).Err()
}
