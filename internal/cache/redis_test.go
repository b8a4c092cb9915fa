package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, Cache) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedisCacheWithClient(client, "storefront-test")
}

func TestRedisCache_SetGet(t *testing.T) {
	ctx := context.Background()
	_, c := setupTestRedis(t)

	key := c.GenerateKey("catalog", "property")
	assert.Equal(t, "storefront-test:catalog:property", key)

	require.NoError(t, c.Set(ctx, key, `[{"id":1}]`, time.Minute))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, got)
}

func TestRedisCache_MissIsEmpty(t *testing.T) {
	_, c := setupTestRedis(t)

	got, err := c.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisCache_TTLExpires(t *testing.T) {
	ctx := context.Background()
	mr, c := setupTestRedis(t)

	require.NoError(t, c.Set(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisCache_Delete(t *testing.T) {
	ctx := context.Background()
	mr, c := setupTestRedis(t)

	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))
	require.NoError(t, c.Delete(ctx, "a", "b"))
	require.NoError(t, c.Delete(ctx))

	assert.False(t, mr.Exists("a"))
	assert.False(t, mr.Exists("b"))
}

func TestPing(t *testing.T) {
	_, c := setupTestRedis(t)
	require.NoError(t, Ping(context.Background(), c))

	down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = down.Close() })
	assert.Error(t, Ping(context.Background(), NewRedisCacheWithClient(down, "x")))
}
