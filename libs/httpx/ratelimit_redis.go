package httpx

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window limiter backed by Redis so every
// instance of the service shares one budget per client.
type RedisRateLimiter struct {
	client *redis.Client
	logger *slog.Logger
	prefix string
	window time.Duration
	limit  int64
}

func NewRedisRateLimiter(client *redis.Client, logger *slog.Logger, prefix string, limit int64, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		logger: logger,
		prefix: prefix,
		window: window,
		limit:  limit,
	}
}

// Allow fails open: a Redis outage must not take bookings down with it.
func (l *RedisRateLimiter) Allow(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	redisKey := l.prefix + ":" + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		l.logger.Warn("rate limiter unavailable, allowing request", "error", err)
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			l.logger.Warn("rate limiter expire failed", "key", redisKey, "error", err)
		}
	}
	return count <= l.limit
}
