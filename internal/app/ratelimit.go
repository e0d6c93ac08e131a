package app

import (
	"pokeproxy/internal/common/logging"
	"pokeproxy/internal/common/ratelimit"
)

// initializeRateLimiter leaves RateLimiter nil when limiting is disabled
func (app *App) initializeRateLimiter() error {
	if !app.Config.RateLimitEnabled {
		return nil
	}

	cfg := app.Config.RateLimit()
	var redisClient ratelimit.RedisInterface
	if cfg.Type == ratelimit.BackendRedis {
		if app.RedisClient == nil {
			cfg.Type = ratelimit.BackendLocal
		} else {
			redisClient = app.RedisClient
		}
	}

	limiter, err := ratelimit.New(cfg, redisClient, app.Logger)
	if err != nil {
		return err
	}

	app.RateLimiter = limiter
	app.Logger.Info("Rate limiting enabled",
		logging.String("backend", string(cfg.Type)),
		logging.Int("requests_per_second", cfg.RequestsPerSecond),
		logging.Int("burst", cfg.BurstSize))
	return nil
}
