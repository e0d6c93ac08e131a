package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := NewClient(&Config{
		Address:  mr.Addr(),
		PoolSize: 10,
	})
	require.NoError(t, err)

	return client, mr
}

func TestNewClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	t.Run("successful connection", func(t *testing.T) {
		client, err := NewClient(&Config{Address: mr.Addr(), PoolSize: 5})
		assert.NoError(t, err)
		require.NotNil(t, client)
		assert.NoError(t, client.Close())
	})

	t.Run("sets default pool size", func(t *testing.T) {
		config := &Config{Address: mr.Addr()}
		client, err := NewClient(config)
		require.NoError(t, err)
		defer client.Close()

		assert.Equal(t, 10, config.PoolSize)
	})

	t.Run("nil config", func(t *testing.T) {
		client, err := NewClient(nil)
		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "redis config is required")
	})

	t.Run("connection failure", func(t *testing.T) {
		client, err := NewClient(&Config{Address: "invalid:99999"})
		assert.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})
}

func TestClient_Health(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()

	assert.NoError(t, client.Health())

	mr.Close()
	assert.Error(t, client.Health())
}

func TestClient_CheckRateLimit(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	key := "test:ratelimit"
	limit := 5
	window := 10 * time.Second

	t.Run("first request allowed", func(t *testing.T) {
		allowed, count, err := client.CheckRateLimit(ctx, key, limit, window)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 1, count)
	})

	t.Run("subsequent requests within limit", func(t *testing.T) {
		for i := 2; i <= limit; i++ {
			allowed, count, err := client.CheckRateLimit(ctx, key, limit, window)
			assert.NoError(t, err)
			assert.True(t, allowed)
			assert.Equal(t, i, count)
		}
	})

	t.Run("request exceeds limit", func(t *testing.T) {
		allowed, count, err := client.CheckRateLimit(ctx, key, limit, window)
		assert.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, limit+1, count)
	})

	t.Run("key expires", func(t *testing.T) {
		assert.True(t, mr.Exists(key))
		mr.FastForward(2*window + time.Second)
		assert.False(t, mr.Exists(key))

		allowed, count, err := client.CheckRateLimit(ctx, key, limit, window)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 1, count)
	})

	t.Run("keys are independent", func(t *testing.T) {
		allowed, count, err := client.CheckRateLimit(ctx, "test:other", limit, window)
		assert.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 1, count)
	})
}

func TestClient_CheckRateLimit_Concurrent(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	limit := 10

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := client.CheckRateLimit(ctx, "test:concurrent", limit, time.Minute)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, allowed)
}

func TestClient_ClosedServer(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()
	mr.Close()

	_, _, err := client.CheckRateLimit(context.Background(), "test:limit", 10, time.Minute)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check rate limit")
}
