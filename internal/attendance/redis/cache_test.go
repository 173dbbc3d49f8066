package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCache(client, time.Hour), mr
}

func TestCacheMissReturnsEmpty(t *testing.T) {
	cache, _ := setupCache(t)

	id, err := cache.GetEventID(context.Background(), "AB12CD")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestCacheSetAndGet(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetEventID(ctx, "AB12CD", "ev-1"))

	id, err := cache.GetEventID(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Equal(t, "ev-1", id)

	// entries are namespaced and TTL-bound
	assert.True(t, mr.Exists("event_code:AB12CD"))
	assert.Equal(t, time.Hour, mr.TTL("event_code:AB12CD"))
}

func TestCacheEntryExpires(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetEventID(ctx, "AB12CD", "ev-1"))
	mr.FastForward(2 * time.Hour)

	id, err := cache.GetEventID(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetEventID(ctx, "AB12CD", "ev-1"))
	require.NoError(t, cache.Invalidate(ctx, "AB12CD"))

	id, err := cache.GetEventID(ctx, "AB12CD")
	require.NoError(t, err)
	assert.Empty(t, id)
}
