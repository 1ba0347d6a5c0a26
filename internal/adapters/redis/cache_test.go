package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "bookaway/internal/adapters/redis"
	"bookaway/internal/domain"
)

func newTestCache(t *testing.T) *redisad.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestCache_SetGetDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	in := domain.Hotel{Slug: "taj", Name: "The Taj", City: "Mumbai"}
	require.NoError(t, c.Set(ctx, "hotel:taj", in, time.Minute))

	var out domain.Hotel
	ok, err := c.Get(ctx, "hotel:taj", &out)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, in, out)

	require.NoError(t, c.Del(ctx, "hotel:taj"))
	ok, err = c.Get(ctx, "hotel:taj", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_MissIsNotAnError(t *testing.T) {
	c := newTestCache(t)
	var out domain.Hotel
	ok, err := c.Get(context.Background(), "hotel:ghost", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "hotel:taj", domain.Hotel{Slug: "taj"}, time.Second))
	mr.FastForward(2 * time.Second)

	var out domain.Hotel
	ok, err := c.Get(ctx, "hotel:taj", &out)
	require.NoError(t, err)
	assert.False(t, ok)
}
