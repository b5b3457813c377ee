//go:build integration

package infra

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisCache_SlotsFollowGeneration(t *testing.T) {
	ctx := context.Background()
	container, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })
	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewRedisCache(rdb, "test", time.Minute)
	var out map[string]int

	slot, hit := c.GetJSON(ctx, "summary", &out)
	require.False(t, hit)
	require.NotEmpty(t, slot)
	c.SetJSON(ctx, slot, map[string]int{"revenue": 1})
	_, hit = c.GetJSON(ctx, "summary", &out)
	require.True(t, hit)
	assert.Equal(t, 1, out["revenue"])

	// a value computed before an invalidation lands in the old generation
	stale, hit := c.GetJSON(ctx, "trends", &out)
	require.False(t, hit)
	c.Invalidate(ctx)
	c.SetJSON(ctx, stale, map[string]int{"revenue": 2})
	_, hit = c.GetJSON(ctx, "trends", &out)
	assert.False(t, hit)
	_, hit = c.GetJSON(ctx, "summary", &out)
	assert.False(t, hit)
}
