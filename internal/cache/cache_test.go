package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

func TestRedisSetGetExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedis(Options{Addr: mr.Addr(), TTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Set(ctx, UserKey("u1"), doc{Name: "Ana", Role: "candidate"}))
	assert.True(t, mr.Exists("jobboard:user:u1"))

	var got doc
	found, err := c.Get(ctx, UserKey("u1"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Ana", got.Name)

	mr.FastForward(2 * time.Minute)
	found, err = c.Get(ctx, UserKey("u1"), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisDeleteAndCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedis(Options{Addr: mr.Addr()})
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, ProfileKey("u1"), doc{Name: "Ana"}))
	require.NoError(t, c.Delete(ctx, ProfileKey("u1"), UserKey("u1")))
	var got doc
	found, err := c.Get(ctx, ProfileKey("u1"), &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, mr.Set("jobboard:user:u2", "{not json"))
	found, err = c.Get(ctx, UserKey("u2"), &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists("jobboard:user:u2"))
}

func TestRedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedis(Options{Addr: mr.Addr()})
	mr.Close()

	assert.Error(t, c.Ping(context.Background()))
}

func TestNop(t *testing.T) {
	var c Cache = Nop{}
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", doc{}))
	found, err := c.Get(ctx, "k", &doc{})
	require.NoError(t, err)
	assert.False(t, found)
}
