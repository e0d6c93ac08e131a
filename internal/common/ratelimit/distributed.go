package ratelimit

import (
	"context"
	"fmt"
	"time"

	"pokeproxy/internal/common/logging"
)

const redisCallTimeout = 2 * time.Second

// distributedLimiter shares a sliding window between replicas through redis
type distributedLimiter struct {
	config      Config
	redisClient RedisInterface
	logger      logging.Logger
}

// NewDistributedLimiter creates a redis-backed limiter. RequestsPerSecond
// requests are admitted per key and Window; BurstSize is not used.
func NewDistributedLimiter(config Config, redisClient RedisInterface, logger logging.Logger) (Limiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if redisClient == nil {
		return nil, fmt.Errorf("redis client is required for distributed rate limiter")
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &distributedLimiter{
		config:      config,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

func (rl *distributedLimiter) TryAcquire() bool {
	return rl.TryAcquireForKey("global")
}

// TryAcquireForKey admits the request when redis is unreachable.
func (rl *distributedLimiter) TryAcquireForKey(key string) bool {
	if !rl.config.Enabled {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisCallTimeout)
	defer cancel()

	allowed, _, err := rl.redisClient.CheckRateLimit(ctx, rl.config.KeyPrefix+key, rl.config.RequestsPerSecond, rl.config.Window)
	if err != nil {
		rl.logger.Warn("Rate limit check failed, admitting request",
			logging.String("key", key),
			logging.Err(err))
		return true
	}
	return allowed
}

func (rl *distributedLimiter) Stats() map[string]interface{} {
	return map[string]interface{}{
		"type":                string(BackendRedis),
		"enabled":             rl.config.Enabled,
		"requests_per_second": rl.config.RequestsPerSecond,
		"window":              rl.config.Window.String(),
		"key_prefix":          rl.config.KeyPrefix,
	}
}

func (rl *distributedLimiter) Health() error {
	return rl.redisClient.Health()
}

var _ Limiter = (*distributedLimiter)(nil)
