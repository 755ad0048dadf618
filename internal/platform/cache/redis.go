package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect returns a Redis client for redisURL, or nil when the URL is empty,
// malformed or unreachable. Callers treat a nil client as caching disabled.
func Connect(ctx context.Context, redisURL string, logger *slog.Logger) *redis.Client {
	if logger == nil {
		logger = slog.Default()
	}
	if redisURL == "" {
		logger.Info("redis not configured, caching disabled",
			"event", "redis_disabled",
			"module", "internal/platform/cache",
			"layer", "platform",
		)
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warn("invalid redis url, caching disabled",
			"event", "redis_invalid_url",
			"module", "internal/platform/cache",
			"layer", "platform",
			"error", err.Error(),
		)
		return nil
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		logger.Warn("redis unreachable, caching disabled",
			"event", "redis_unreachable",
			"module", "internal/platform/cache",
			"layer", "platform",
			"addr", opts.Addr,
			"error", err.Error(),
		)
		return nil
	}

	logger.Info("redis connected",
		"event", "redis_connected",
		"module", "internal/platform/cache",
		"layer", "platform",
		"addr", opts.Addr,
	)
	return rdb
}
