package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Slug  string   `json:"slug"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := NewRedisCache(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rc.Close() })
	require.NoError(t, rc.Connect(context.Background()))
	return rc, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	var miss entry
	found, err := rc.Get(ctx, "blog:none", &miss)
	require.NoError(t, err)
	assert.False(t, found)

	in := entry{Slug: "intro", Count: 3, Tags: []string{"go"}}
	require.NoError(t, rc.Set(ctx, "blog:slug:intro", in, time.Minute))

	var out entry
	found, err = rc.Get(ctx, "blog:slug:intro", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)

	mr.FastForward(2 * time.Minute)
	found, err = rc.Get(ctx, "blog:slug:intro", &out)
	require.NoError(t, err)
	assert.False(t, found, "expired after ttl")
}

func TestRedisCache_GetCorruptValue(t *testing.T) {
	rc, mr := newTestCache(t)
	require.NoError(t, mr.Set("blog:bad", "{not json"))

	var out entry
	found, err := rc.Get(context.Background(), "blog:bad", &out)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestRedisCache_DeletePattern(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, rc.Set(ctx, fmt.Sprintf("blog:list:%d", i), i, time.Minute))
	}
	require.NoError(t, rc.Set(ctx, "session:abc", "keep", time.Minute))

	require.NoError(t, rc.DeletePattern(ctx, "blog:*"))

	assert.Equal(t, []string{"session:abc"}, mr.Keys())
}

func TestRedisCache_DeletePatternNoMatchAndPing(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "a", 1, 0))
	require.NoError(t, rc.Set(ctx, "b", 2, 0))
	require.NoError(t, rc.DeletePattern(ctx, "a*"))
	require.NoError(t, rc.DeletePattern(ctx, "blog:*"))
	assert.Equal(t, []string{"b"}, mr.Keys())

	require.NoError(t, rc.Ping(ctx))
	mr.Close()
	assert.Error(t, rc.Ping(ctx))
}
