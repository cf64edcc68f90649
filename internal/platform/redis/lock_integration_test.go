//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fantamorto/internal/platform/redis"
	"fantamorto/pkg/testutil/containers"
)

func TestLockAgainstRealRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	rc := containers.GetManager().GetRedis(t)
	require.NoError(t, rc.Client.Del(ctx, "fantamorto:it:lock").Err())

	locker := redis.NewLocker(rc.Client, "fantamorto:it:lock", 2*time.Second)
	lock, err := locker.Acquire(ctx)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx)
	assert.ErrorIs(t, err, redis.ErrLockHeld)

	ttl, err := rc.Client.PTTL(ctx, "fantamorto:it:lock").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)

	require.NoError(t, lock.Release(ctx))
	assert.ErrorIs(t, lock.Release(ctx), redis.ErrLockLost)
}
