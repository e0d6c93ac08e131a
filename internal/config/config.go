// Package config loads the proxy's settings from the environment and its
// routing rules from a JSON or YAML file.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - HMAC_SECRET: Base64 HMAC-SHA256 key for X-Grd-Signature. Unset is not a
//     startup error; /stream answers 500 until it is provided.
//   - POKEPROXY_CONFIG: Rules file path (default: rules.json)
//   - FORWARD_TIMEOUT: Upstream request timeout (default: 10s)
//   - MAX_BODY_BYTES: Largest accepted /stream body, 0 disables (default: 1048576)
//   - TLS_CERT_FILE, TLS_KEY_FILE: Serve HTTPS when both are set
//   - LOG_LEVEL: debug, info, warn or error (default: info)
//   - LOG_FILE: Log destination (default: stdout)
//
// Rate Limiting:
//   - RATE_LIMIT_ENABLED: Limit /stream per client IP (default: false)
//   - RATE_LIMIT_RPS: Requests per second (default: 100)
//   - RATE_LIMIT_BURST: Token bucket size, local backend only (default: 200)
//   - RATE_LIMIT_BACKEND: "local" or "redis" (default: local)
//
// Redis Configuration (redis rate limit backend):
//   - REDIS_ADDR: Redis server address
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//
// Operator Endpoints:
//   - STATS_JWT_SECRET: When set, GET /stats requires an HS256 bearer token
//     signed with it (minimum 32 characters)
//   - STATS_REPORT_SCHEDULE: Cron schedule for logging stats snapshots, e.g.
//     "@every 1m" (default: off)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"pokeproxy/internal/common/ratelimit"
	"pokeproxy/internal/common/validation"
	"pokeproxy/internal/redis"
)

// Config holds all configuration values. Load never fails; call Validate
// before use.
type Config struct {
	Port           string
	HMACSecret     string
	RulesPath      string
	ForwardTimeout time.Duration
	MaxBodyBytes   int64
	TLSCertFile    string
	TLSKeyFile     string
	LogLevel       string
	LogFile        string

	RateLimitEnabled bool
	RateLimitRPS     int
	RateLimitBurst   int
	RateLimitBackend string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	StatsJWTSecret      string
	StatsReportSchedule string
}

// Load reads the environment. Unparseable numbers and durations fall back to
// their defaults.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		HMACSecret:     os.Getenv("HMAC_SECRET"),
		RulesPath:      getEnv("POKEPROXY_CONFIG", "rules.json"),
		ForwardTimeout: getDurationEnv("FORWARD_TIMEOUT", 10*time.Second),
		MaxBodyBytes:   int64(getIntEnv("MAX_BODY_BYTES", 1<<20)),
		TLSCertFile:    getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:     getEnv("TLS_KEY_FILE", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),

		RateLimitEnabled: getBoolEnv("RATE_LIMIT_ENABLED", false),
		RateLimitRPS:     getIntEnv("RATE_LIMIT_RPS", 100),
		RateLimitBurst:   getIntEnv("RATE_LIMIT_BURST", 200),
		RateLimitBackend: getEnv("RATE_LIMIT_BACKEND", string(ratelimit.BackendLocal)),

		RedisAddress:  getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		StatsJWTSecret:      getEnv("STATS_JWT_SECRET", ""),
		StatsReportSchedule: getEnv("STATS_REPORT_SCHEDULE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv accepts anything strconv.ParseBool does
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate checks ranges and cross-field requirements. A missing HMAC secret
// is deliberately accepted.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	if c.RulesPath == "" {
		return fmt.Errorf("POKEPROXY_CONFIG must name a rules file")
	}

	if c.ForwardTimeout <= 0 {
		return fmt.Errorf("FORWARD_TIMEOUT must be a positive duration")
	}

	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("MAX_BODY_BYTES must not be negative")
	}

	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}

	if err := validation.ValidateVar(c.LogLevel, "oneof=debug info warn warning error"); err != nil {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	if c.RateLimitEnabled {
		if c.RateLimitRPS < 1 {
			return fmt.Errorf("RATE_LIMIT_RPS must be a positive number")
		}
		if c.RateLimitBurst < 1 {
			return fmt.Errorf("RATE_LIMIT_BURST must be a positive number")
		}
		switch ratelimit.BackendType(c.RateLimitBackend) {
		case ratelimit.BackendLocal:
		case ratelimit.BackendRedis:
			if c.RedisAddress == "" {
				return fmt.Errorf("REDIS_ADDR is required when RATE_LIMIT_BACKEND is redis")
			}
			if err := validation.ValidateVar(c.RedisAddress, "hostname_port"); err != nil {
				return fmt.Errorf("REDIS_ADDR must be host:port")
			}
		default:
			return fmt.Errorf("RATE_LIMIT_BACKEND must be 'local' or 'redis'")
		}
	}

	if c.RedisDB < 0 || c.RedisDB > 15 {
		return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
	}

	if c.StatsJWTSecret != "" && len(c.StatsJWTSecret) < 32 {
		return fmt.Errorf("STATS_JWT_SECRET must be at least 32 characters long")
	}

	if c.StatsReportSchedule != "" {
		if err := validation.ValidateVar(c.StatsReportSchedule, "cron_schedule"); err != nil {
			return fmt.Errorf("STATS_REPORT_SCHEDULE must be a valid cron schedule: %w", err)
		}
	}

	return nil
}

// TLSEnabled reports whether both certificate and key are configured
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// UsesRedis reports whether the rate limiter needs a redis connection
func (c *Config) UsesRedis() bool {
	return c.RateLimitEnabled && ratelimit.BackendType(c.RateLimitBackend) == ratelimit.BackendRedis
}

// RateLimit converts the settings into a limiter configuration
func (c *Config) RateLimit() ratelimit.Config {
	rl := ratelimit.DefaultConfig()
	rl.Enabled = c.RateLimitEnabled
	rl.RequestsPerSecond = c.RateLimitRPS
	rl.BurstSize = c.RateLimitBurst
	rl.Type = ratelimit.BackendType(c.RateLimitBackend)
	return rl
}

// Redis returns the client configuration for the redis backend
func (c *Config) Redis() *redis.Config {
	return &redis.Config{
		Address:  c.RedisAddress,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
