package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisLimiter(t *testing.T, limit int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedis(rdb, Config{Prefix: "test", Limit: limit, Window: window}, nil), mr
}

func TestRedisLimiterEnforcesQuota(t *testing.T) {
	l, _ := newTestRedisLimiter(t, 3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow(ctx, "1.2.3.4") {
		t.Fatalf("request over quota should be denied")
	}
}

func TestRedisLimiterKeysAreIndependent(t *testing.T) {
	l, _ := newTestRedisLimiter(t, 1, time.Hour)
	ctx := context.Background()

	if !l.Allow(ctx, "a") {
		t.Fatalf("first request for key a should be allowed")
	}
	if l.Allow(ctx, "a") {
		t.Fatalf("second request for key a should be denied")
	}
	if !l.Allow(ctx, "b") {
		t.Fatalf("key b has its own quota")
	}
}

func TestRedisLimiterSetsBucketTTL(t *testing.T) {
	l, mr := newTestRedisLimiter(t, 5, time.Minute)
	l.Allow(context.Background(), "x")

	keys := mr.Keys()
	if len(keys) != 1 {
		t.Fatalf("expected 1 counter key, got %d", len(keys))
	}
	ttl := mr.TTL(keys[0])
	if ttl <= 0 || ttl > time.Minute+time.Second {
		t.Fatalf("unexpected bucket ttl %v", ttl)
	}
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	l, mr := newTestRedisLimiter(t, 1, time.Hour)
	ctx := context.Background()

	l.Allow(ctx, "x")
	mr.Close()

	// Counter store down: quota checks must not block traffic.
	for i := 0; i < 5; i++ {
		if !l.Allow(ctx, "x") {
			t.Fatalf("limiter must fail open when redis is unreachable")
		}
	}
}

func TestMemoryLimiterEnforcesQuota(t *testing.T) {
	l := NewMemory(Config{Prefix: "test", Limit: 2, Window: time.Hour})
	ctx := context.Background()

	if !l.Allow(ctx, "k") || !l.Allow(ctx, "k") {
		t.Fatalf("requests inside the quota should be allowed")
	}
	if l.Allow(ctx, "k") {
		t.Fatalf("request over quota should be denied")
	}
}

func TestMemoryLimiterResetsOnNewWindow(t *testing.T) {
	l := NewMemory(Config{Prefix: "test", Limit: 1, Window: 30 * time.Millisecond})
	ctx := context.Background()

	if !l.Allow(ctx, "k") {
		t.Fatalf("first request should be allowed")
	}
	if l.Allow(ctx, "k") {
		t.Fatalf("second request in the same window should be denied")
	}

	time.Sleep(40 * time.Millisecond)
	if !l.Allow(ctx, "k") {
		t.Fatalf("counter should reset in the next window")
	}
}
