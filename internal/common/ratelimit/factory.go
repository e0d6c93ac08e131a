package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"pokeproxy/internal/common/errors"
	"pokeproxy/internal/common/logging"
)

// New creates a limiter for config.Type. redisClient is required for the
// redis backend and ignored otherwise.
func New(config Config, redisClient RedisInterface, logger logging.Logger) (Limiter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case BackendLocal:
		return NewLocalLimiter(config)
	case BackendRedis:
		return NewDistributedLimiter(config, redisClient, logger)
	default:
		return nil, fmt.Errorf("unsupported rate limiter backend type: %s", config.Type)
	}
}

// HTTPMiddleware rejects requests over the limit with 429 before they reach
// next. An empty key from keyFunc uses the global bucket.
func HTTPMiddleware(limiter Limiter, keyFunc func(*http.Request) string, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)

			var allowed bool
			if key == "" {
				allowed = limiter.TryAcquire()
			} else {
				allowed = limiter.TryAcquireForKey(key)
			}

			if !allowed {
				if rps, ok := limiter.Stats()["requests_per_second"].(int); ok {
					w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rps))
				}
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", "1")

				logging.WithContext(r.Context()).Debug("Request rate limited",
					logging.String("resource", resource),
					logging.String("key", key))
				errors.WriteHTTP(w, errors.RateLimitError(resource))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IPKey keys requests by client IP: the first X-Forwarded-For hop, then
// X-Real-IP, then the connection's remote address.
func IPKey(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// GlobalKey puts every request in one shared bucket
func GlobalKey(*http.Request) string {
	return ""
}
