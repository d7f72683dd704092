package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCacheIsNoOp(t *testing.T) {
	var c *RedisCache
	ctx := context.Background()

	var dest string
	hit, err := c.GetJSON(ctx, "key", &dest)
	require.NoError(t, err, "A nil cache must never fail a read")
	assert.False(t, hit, "A nil cache always misses")

	assert.NoError(t, c.SetJSON(ctx, "key", "value", time.Minute), "A nil cache swallows writes")
	assert.NoError(t, c.Close())
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, err := NewRedisCache(Config{Host: "localhost", Port: "6379"})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	key := "test:roundtrip:" + time.Now().Format("150405.000000000")

	hit, err := c.GetJSON(ctx, key, &payload{})
	require.NoError(t, err)
	assert.False(t, hit, "Fresh key should miss")

	require.NoError(t, c.SetJSON(ctx, key, payload{Name: "upcoming", Count: 3}, time.Minute))

	var got payload
	hit, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, payload{Name: "upcoming", Count: 3}, got)
}
