package locker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prefix = "appointments:lock:"

func newLocker(t *testing.T, maxWait time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLocker(client, prefix, 5*time.Second, maxWait), mr
}

func TestAcquire_Release(t *testing.T) {
	l, mr := newLocker(t, 0)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "doctor:10:2026-03-02")
	require.NoError(t, err)
	assert.True(t, mr.Exists(prefix+"doctor:10:2026-03-02"))
	assert.Equal(t, 5*time.Second, mr.TTL(prefix+"doctor:10:2026-03-02"))

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists(prefix+"doctor:10:2026-03-02"))

	again, err := l.Acquire(ctx, "doctor:10:2026-03-02")
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestAcquire_BusyKeyGivesUpAfterMaxWait(t *testing.T) {
	l, _ := newLocker(t, 120*time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "doctor:10:2026-03-02")
	require.NoError(t, err)
	defer func() { _ = release(ctx) }()

	started := time.Now()
	_, err = l.Acquire(ctx, "doctor:10:2026-03-02")
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.GreaterOrEqual(t, time.Since(started), 120*time.Millisecond)

	other, err := l.Acquire(ctx, "doctor:11:2026-03-02")
	require.NoError(t, err, "другой врач не блокируется")
	require.NoError(t, other(ctx))
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	l, _ := newLocker(t, 2*time.Second)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "doctor:10:2026-03-02")
	require.NoError(t, err)

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = release(ctx)
	}()

	second, err := l.Acquire(ctx, "doctor:10:2026-03-02")
	require.NoError(t, err)
	require.NoError(t, second(ctx))
}

func TestAcquire_ContextCancelled(t *testing.T) {
	l, _ := newLocker(t, time.Minute)

	release, err := l.Acquire(context.Background(), "doctor:10:2026-03-02")
	require.NoError(t, err)
	defer func() { _ = release(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx, "doctor:10:2026-03-02")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRelease_ExpiredLockDoesNotDropNewOwner(t *testing.T) {
	l, mr := newLocker(t, 0)
	ctx := context.Background()
	key := prefix + "doctor:10:2026-03-02"

	stale, err := l.Acquire(ctx, "doctor:10:2026-03-02")
	require.NoError(t, err)

	mr.FastForward(6 * time.Second)
	require.False(t, mr.Exists(key))

	current, err := l.Acquire(ctx, "doctor:10:2026-03-02")
	require.NoError(t, err)
	owner, err := mr.Get(key)
	require.NoError(t, err)

	require.NoError(t, stale(ctx))
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	require.NoError(t, current(ctx))
	assert.False(t, mr.Exists(key))
}

func TestAcquire_RedisDown(t *testing.T) {
	l, mr := newLocker(t, 0)
	mr.Close()

	_, err := l.Acquire(context.Background(), "doctor:10:2026-03-02")
	assert.ErrorIs(t, err, ErrRedis)
}

func TestNopLocker(t *testing.T) {
	release, err := NopLocker{}.Acquire(context.Background(), "any")
	require.NoError(t, err)
	assert.NoError(t, release(context.Background()))
}
