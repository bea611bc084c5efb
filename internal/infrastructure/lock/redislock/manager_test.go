package redislock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locksmith-pay/locksmith/internal/lock"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredislib.NewClient(&goredislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, nil), mr
}

func TestAcquireAndRelease(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	h, err := m.Acquire(ctx, "payment:order:1", lock.Options{Wait: time.Second, Lease: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, "payment:order:1", h.Key())
	assert.NotEmpty(t, h.Owner())
	assert.True(t, mr.Exists("payment:order:1"))

	require.NoError(t, m.Release(ctx, h))
	assert.False(t, mr.Exists("payment:order:1"))
}

func TestAcquireEmptyKey(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Acquire(context.Background(), "", lock.Options{})
	require.Error(t, err)
}

func TestContendedAcquireTimesOut(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	h, err := m.Acquire(ctx, "payment:order:1", lock.Options{Wait: time.Second, Lease: time.Minute})
	require.NoError(t, err)
	defer func() { _ = m.Release(ctx, h) }()

	_, err = m.Acquire(ctx, "payment:order:1", lock.Options{Wait: 150 * time.Millisecond, Lease: time.Minute})
	require.ErrorIs(t, err, lock.ErrUnavailable)
}

func TestAcquireAfterLeaseExpiry(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	stale, err := m.Acquire(ctx, "payment:order:1", lock.Options{Wait: time.Second, Lease: time.Second})
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	next, err := m.Acquire(ctx, "payment:order:1", lock.Options{Wait: time.Second, Lease: time.Minute})
	require.NoError(t, err)
	assert.NotEqual(t, stale.Owner(), next.Owner())

	// The stale holder's release must not evict the new holder.
	require.NoError(t, m.Release(ctx, stale))
	assert.True(t, mr.Exists("payment:order:1"))

	require.NoError(t, m.Release(ctx, next))
	assert.False(t, mr.Exists("payment:order:1"))
}

func TestReleaseIdempotent(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	h, err := m.Acquire(ctx, "payment:order:1", lock.Options{Wait: time.Second, Lease: time.Minute})
	require.NoError(t, err)

	require.NoError(t, m.Release(ctx, h))
	require.NoError(t, m.Release(ctx, h))
	require.NoError(t, m.Release(ctx, nil))
}

func TestDistinctKeysDoNotContend(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	h1, err := m.Acquire(ctx, "payment:order:1", lock.Options{Wait: 200 * time.Millisecond, Lease: time.Minute})
	require.NoError(t, err)
	h2, err := m.Acquire(ctx, "payment:order:2", lock.Options{Wait: 200 * time.Millisecond, Lease: time.Minute})
	require.NoError(t, err)

	require.NoError(t, m.Release(ctx, h1))
	require.NoError(t, m.Release(ctx, h2))
}

func TestMutualExclusion(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	const workers = 8
	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := lock.Do(ctx, m, "payment:order:1", lock.Options{Wait: 10 * time.Second, Lease: time.Minute}, func(context.Context) error {
				now := inside.Add(1)
				for {
					seen := maxSeen.Load()
					if now <= seen || maxSeen.CompareAndSwap(seen, now) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				inside.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxSeen.Load())
}
