package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is an in-process fallback for deployments without a shared
// counter store, and for tests. Counters are per-process only.
type MemoryLimiter struct {
	cfg Config

	mu      sync.Mutex
	buckets map[string]*memBucket
}

type memBucket struct {
	window int64
	count  int
}

// NewMemory creates an in-memory limiter.
func NewMemory(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{cfg: cfg, buckets: make(map[string]*memBucket)}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) bool {
	window := time.Now().UnixMilli() / l.cfg.Window.Milliseconds()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || b.window != window {
		b = &memBucket{window: window}
		l.buckets[key] = b
	}
	b.count++

	if len(l.buckets) > 4096 {
		l.prune(window)
	}
	return b.count <= l.cfg.Limit
}

// prune drops counters from past windows. Caller holds the lock.
func (l *MemoryLimiter) prune(window int64) {
	for k, b := range l.buckets {
		if b.window != window {
			delete(l.buckets, k)
		}
	}
}
