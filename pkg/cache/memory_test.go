package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	type payload struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}

	require.NoError(t, c.Set(ctx, "prices:bitcoin", payload{Name: "bitcoin", Price: 50000}, time.Minute))

	got, err := GetTyped[payload](ctx, c, "prices:bitcoin")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", got.Name)
	assert.InDelta(t, 50000.0, got.Price, 1e-9)
}

func TestMemoryCache_MissAndExpiry(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	var out string
	err := c.Get(ctx, "absent", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "short", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	err = c.Get(ctx, "short", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_DeleteByPattern(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "indicators:bitcoin:90", "a", time.Minute))
	require.NoError(t, c.Set(ctx, "indicators:bitcoin:30", "b", time.Minute))
	require.NoError(t, c.Set(ctx, "indicators:ethereum:90", "c", time.Minute))

	require.NoError(t, c.DeleteByPattern(ctx, Pattern("indicators", "bitcoin")))

	ok, err := c.Exists(ctx, "indicators:bitcoin:90")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Exists(ctx, "indicators:ethereum:90")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_Increment(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	n, err := c.Increment(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = c.Increment(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMemoryCache_TryLock(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()
	ctx := context.Background()

	ok, err := c.TryLock(ctx, "lock:retrain", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.TryLock(ctx, "lock:retrain", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Unlock(ctx, "lock:retrain"))

	ok, err = c.TryLock(ctx, "lock:retrain", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKeyAndPattern(t *testing.T) {
	assert.Equal(t, "prices:bitcoin:30", Key("prices", "bitcoin", "30"))
	assert.Equal(t, "prices:bitcoin", Key("prices", "", "bitcoin"))
	assert.Equal(t, "features:bitcoin:*", Pattern("features", "bitcoin"))
}
