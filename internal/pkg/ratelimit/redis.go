package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLimiter counts requests in Redis with INCR + PEXPIRE buckets.
type RedisLimiter struct {
	rdb    *redis.Client
	cfg    Config
	logger *zap.Logger
}

// NewRedis creates a limiter backed by a shared Redis counter store.
func NewRedis(rdb *redis.Client, cfg Config, logger *zap.Logger) *RedisLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{rdb: rdb, cfg: cfg, logger: logger.Named("ratelimit")}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	bucket := time.Now().UnixMilli() / l.cfg.Window.Milliseconds()
	counterKey := fmt.Sprintf("rc:ratelimit:%s:%s:%d", l.cfg.Prefix, key, bucket)

	count, err := l.rdb.Incr(ctx, counterKey).Result()
	if err != nil {
		// Fail open: the quota protects against alert storms, it must not
		// block legitimate traffic when the counter store is down.
		l.logger.Warn("counter store unreachable, allowing request",
			zap.String("limiter", l.cfg.Prefix),
			zap.String("key", key),
			zap.Error(err))
		return true
	}

	if count == 1 {
		l.rdb.PExpire(ctx, counterKey, l.cfg.Window+time.Second)
	}

	return count <= int64(l.cfg.Limit)
}
