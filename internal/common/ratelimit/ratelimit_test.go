package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pokeproxy/internal/redis"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestConfig_Validate(t *testing.T) {
	t.Run("disabled skips validation", func(t *testing.T) {
		c := Config{Type: "carrier-pigeon"}
		assert.NoError(t, c.Validate())
	})

	t.Run("fills local defaults", func(t *testing.T) {
		c := Config{Enabled: true}
		require.NoError(t, c.Validate())
		assert.Equal(t, BackendLocal, c.Type)
		assert.Equal(t, 10, c.RequestsPerSecond)
		assert.Equal(t, 10, c.BurstSize)
		assert.Equal(t, 10000, c.MaxKeys)
	})

	t.Run("fills redis defaults", func(t *testing.T) {
		c := Config{Enabled: true, Type: BackendRedis, RequestsPerSecond: 3}
		require.NoError(t, c.Validate())
		assert.Equal(t, "pokeproxy:ratelimit:", c.KeyPrefix)
		assert.Equal(t, time.Second, c.Window)
	})

	t.Run("rejects unknown backend", func(t *testing.T) {
		c := Config{Enabled: true, Type: "carrier-pigeon"}
		assert.Error(t, c.Validate())
	})
}

func TestLocalLimiter_Burst(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	limiter, err := newLocalLimiter(Config{Enabled: true, RequestsPerSecond: 10, BurstSize: 5}, clock.now)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		assert.True(t, limiter.TryAcquire(), "request %d", i)
	}
	assert.False(t, limiter.TryAcquire())

	// 150ms refills one and a half tokens at 10 rps.
	clock.t = clock.t.Add(150 * time.Millisecond)
	assert.True(t, limiter.TryAcquire())
	assert.False(t, limiter.TryAcquire())
}

func TestLocalLimiter_KeysAreIndependent(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	limiter, err := newLocalLimiter(Config{Enabled: true, RequestsPerSecond: 2, BurstSize: 2}, clock.now)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		assert.True(t, limiter.TryAcquireForKey("10.0.0.1"))
		assert.True(t, limiter.TryAcquireForKey("10.0.0.2"))
	}
	assert.False(t, limiter.TryAcquireForKey("10.0.0.1"))
	assert.False(t, limiter.TryAcquireForKey("10.0.0.2"))
	assert.Equal(t, 2, limiter.Stats()["active_keys"])
}

func TestLocalLimiter_CleanupDropsIdleKeys(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	limiter, err := newLocalLimiter(Config{
		Enabled:           true,
		RequestsPerSecond: 1,
		BurstSize:         1,
		CleanupPeriod:     time.Minute,
	}, clock.now)
	require.NoError(t, err)

	limiter.TryAcquireForKey("old")
	clock.t = clock.t.Add(2 * time.Minute)
	limiter.TryAcquireForKey("new")

	assert.Equal(t, 1, limiter.Stats()["active_keys"])
}

func TestLocalLimiter_Disabled(t *testing.T) {
	limiter, err := NewLocalLimiter(Config{Enabled: false, RequestsPerSecond: 1, BurstSize: 1})
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.TryAcquire())
		assert.True(t, limiter.TryAcquireForKey("k"))
	}
	assert.NoError(t, limiter.Health())
}

func newRedisLimiter(t *testing.T, rps int) (Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient(&redis.Config{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := New(Config{Enabled: true, Type: BackendRedis, RequestsPerSecond: rps, Window: time.Minute}, client, nil)
	require.NoError(t, err)
	return limiter, mr
}

func TestDistributedLimiter(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.TryAcquireForKey("10.0.0.1"), "request %d", i)
	}
	assert.False(t, limiter.TryAcquireForKey("10.0.0.1"))
	assert.True(t, limiter.TryAcquireForKey("10.0.0.2"))

	assert.True(t, mr.Exists("pokeproxy:ratelimit:10.0.0.1"))
	assert.NoError(t, limiter.Health())
}

func TestDistributedLimiter_FailsOpen(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 1)
	mr.Close()

	assert.True(t, limiter.TryAcquire())
	assert.True(t, limiter.TryAcquire())
	assert.Error(t, limiter.Health())
}

func TestNew_RedisRequiresClient(t *testing.T) {
	_, err := New(Config{Enabled: true, Type: BackendRedis}, nil, nil)
	assert.Error(t, err)
}

type stubRedis struct{ err error }

func (s stubRedis) CheckRateLimit(context.Context, string, int, time.Duration) (bool, int, error) {
	return false, 0, s.err
}

func (s stubRedis) Health() error { return s.err }

func TestDistributedLimiter_Denies(t *testing.T) {
	limiter, err := NewDistributedLimiter(Config{Enabled: true, Type: BackendRedis}, stubRedis{}, nil)
	require.NoError(t, err)
	assert.False(t, limiter.TryAcquire())

	limiter, err = NewDistributedLimiter(Config{Enabled: true, Type: BackendRedis}, stubRedis{err: errors.New("down")}, nil)
	require.NoError(t, err)
	assert.True(t, limiter.TryAcquire())
}

func TestHTTPMiddleware(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	limiter, err := newLocalLimiter(Config{Enabled: true, RequestsPerSecond: 1, BurstSize: 1}, clock.now)
	require.NoError(t, err)

	calls := 0
	handler := HTTPMiddleware(limiter, IPKey, "stream")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/stream", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send("192.0.2.1:5000").Code)

	rec := send("192.0.2.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"detail":"rate limit exceeded for stream"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, send("192.0.2.2:5000").Code)
	assert.Equal(t, 2, calls)
}

func TestIPKey(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"remote ipv4", "192.0.2.1:1234", nil, "192.0.2.1"},
		{"remote ipv6", "[2001:db8::1]:443", nil, "2001:db8::1"},
		{"remote without port", "192.0.2.9", nil, "192.0.2.9"},
		{"forwarded for first hop", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"}, "198.51.100.7"},
		{"real ip", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.8"}, "198.51.100.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, IPKey(req))
		})
	}
	assert.Equal(t, "", GlobalKey(httptest.NewRequest(http.MethodGet, "/", nil)))
}
