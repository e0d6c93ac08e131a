// Package ratelimit limits inbound requests either in process, with
// golang.org/x/time/rate token buckets, or across replicas with a redis
// sliding window.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a request may proceed
type Limiter interface {
	// TryAcquire takes a token from the global bucket without blocking
	TryAcquire() bool
	// TryAcquireForKey takes a token from key's bucket without blocking
	TryAcquireForKey(key string) bool

	Stats() map[string]interface{}
	Health() error
}

// RedisInterface is the subset of the redis client the distributed limiter needs
type RedisInterface interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error)
	Health() error
}
