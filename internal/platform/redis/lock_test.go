package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantamorto/internal/platform/config"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLockExclusive(t *testing.T) {
	ctx := context.Background()
	_, client := newMiniredis(t)
	locker := NewLocker(client, "fantamorto:test:lock", time.Minute)

	first, err := locker.Acquire(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Token())

	_, err = locker.Acquire(ctx)
	assert.ErrorIs(t, err, ErrLockHeld)

	require.NoError(t, first.Release(ctx))

	second, err := locker.Acquire(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token(), second.Token())
}

func TestLockExpiry(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	locker := NewLocker(client, "k", 10*time.Second)

	stale, err := locker.Acquire(ctx)
	require.NoError(t, err)

	mr.FastForward(11 * time.Second)

	fresh, err := locker.Acquire(ctx)
	require.NoError(t, err, "an expired lock can be taken")

	assert.ErrorIs(t, stale.Release(ctx), ErrLockLost)
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, fresh.Token(), got, "a stale holder must not delete the new lock")
}

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	c, err := New(ctx, config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, c, "no URL means no client")

	_, err = New(ctx, config.RedisConfig{URL: "://bad"})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	c, err = New(ctx, config.RedisConfig{URL: "redis://" + mr.Addr(), PoolSize: 2})
	require.NoError(t, err)
	defer c.Close()
	assert.NoError(t, c.Ping(ctx))
}
