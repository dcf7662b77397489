package internal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// ConnectRetry controls how long startup waits for backing stores.
type ConnectRetry struct {
	Attempts uint64
	Base     time.Duration
}

// DefaultConnectRetry waits roughly 15s in total with exponential backoff.
var DefaultConnectRetry = ConnectRetry{Attempts: 5, Base: 500 * time.Millisecond}

func (c ConnectRetry) backoff() retry.Backoff {
	return retry.WithMaxRetries(c.Attempts, retry.NewExponential(c.Base))
}

// PingDatabase waits until db answers a ping.
func PingDatabase(ctx context.Context, db *sql.DB, rc ConnectRetry, logger *slog.Logger) error {
	attempt := 0
	err := retry.Do(ctx, rc.backoff(), func(ctx context.Context) error {
		attempt++
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("Database not ready", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// ConnectRedis parses url and waits until the server answers a ping.
func ConnectRedis(ctx context.Context, url string, rc ConnectRetry, logger *slog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	attempt := 0
	err = retry.Do(ctx, rc.backoff(), func(ctx context.Context) error {
		attempt++
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis not ready", "attempt", attempt, "addr", opts.Addr, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis not ready: %w", err)
	}
	return client, nil
}
