// Package ratelimit provides named request-quota limiters keyed by an
// arbitrary identifier (IP, chip folio, mail address). The shared-store
// implementation fails open: if the counter store is unreachable the
// request is allowed and the degradation is logged, so an infrastructure
// outage never blocks an emergency flow.
package ratelimit

import (
	"context"
	"time"
)

// Limiter answers whether one more request under the given key fits the
// quota, counting the request in the same step.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Config describes one named quota.
type Config struct {
	// Prefix names the limiter and namespaces its counter keys.
	Prefix string
	// Limit is the maximum number of requests per Window.
	Limit int
	// Window is the quota interval. Counting uses fixed buckets of this
	// size, so a burst can span at most two adjacent windows.
	Window time.Duration
}
