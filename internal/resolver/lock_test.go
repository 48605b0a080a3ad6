package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T, ttl time.Duration) (*DateLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewDateLock(client, true, ttl), mr
}

func TestDateLockAcquireAndContend(t *testing.T) {
	lock, _ := newTestLock(t, time.Minute)
	ctx := context.Background()

	acquired, err := lock.Acquire(ctx, "2016-03-01")
	require.NoError(t, err)
	assert.True(t, acquired)

	// Second attempt for the same date must lose.
	acquired, err = lock.Acquire(ctx, "2016-03-01")
	require.NoError(t, err)
	assert.False(t, acquired)

	// A different date is an independent lock.
	acquired, err = lock.Acquire(ctx, "2016-03-03")
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestDateLockRelease(t *testing.T) {
	lock, _ := newTestLock(t, time.Minute)
	ctx := context.Background()

	acquired, err := lock.Acquire(ctx, "2016-03-01")
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, lock.Release(ctx, "2016-03-01"))

	acquired, err = lock.Acquire(ctx, "2016-03-01")
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestDateLockTTLExpiry(t *testing.T) {
	lock, mr := newTestLock(t, time.Second)
	ctx := context.Background()

	acquired, err := lock.Acquire(ctx, "2016-03-01")
	require.NoError(t, err)
	require.True(t, acquired)

	mr.FastForward(2 * time.Second)

	acquired, err = lock.Acquire(ctx, "2016-03-01")
	require.NoError(t, err)
	assert.True(t, acquired, "a stale lock must expire rather than wedge the date")
}

func TestDateLockDisabled(t *testing.T) {
	lock := NewDateLock(nil, false, 0)
	ctx := context.Background()

	assert.False(t, lock.IsEnabled())

	for i := 0; i < 3; i++ {
		acquired, err := lock.Acquire(ctx, "2016-03-01")
		require.NoError(t, err)
		assert.True(t, acquired)
	}
	assert.NoError(t, lock.Release(ctx, "2016-03-01"))
}
