// Package redislock implements the lock.Manager port on Redis via redsync.
// The lease maps to the mutex expiry, so a crashed holder's key frees itself;
// release is value-checked on the Redis side, so a stale holder can never
// evict a newer owner.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	goredislib "github.com/redis/go-redis/v9"

	"github.com/locksmith-pay/locksmith/internal/lock"
	"github.com/locksmith-pay/locksmith/internal/observability"
)

const (
	retryDelay  = 100 * time.Millisecond
	driftFactor = 0.01
)

type Manager struct {
	rs  *redsync.Redsync
	log observability.Logger
}

func New(client goredislib.UniversalClient, logger observability.Logger) *Manager {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Manager{
		rs:  redsync.New(goredis.NewPool(client)),
		log: logger.With(observability.F("component", "redislock")),
	}
}

func (m *Manager) Acquire(ctx context.Context, key string, opts lock.Options) (*lock.Handle, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("redislock: key cannot be empty")
	}
	opts = opts.Normalized()

	owner := uuid.NewString()
	tries := int(opts.Wait/retryDelay) + 1
	mu := m.rs.NewMutex(key,
		redsync.WithExpiry(opts.Lease),
		redsync.WithTries(tries),
		redsync.WithRetryDelay(retryDelay),
		redsync.WithDriftFactor(driftFactor),
		redsync.WithGenValueFunc(func() (string, error) { return owner, nil }),
	)

	waitCtx, cancel := context.WithTimeout(ctx, opts.Wait)
	defer cancel()

	if err := mu.LockContext(waitCtx); err != nil {
		if ctx.Err() != nil {
			// The caller went away; surface cancellation, not contention.
			return nil, fmt.Errorf("redislock: acquire %s: %w", key, ctx.Err())
		}
		m.log.Warn("lock_acquire_timeout",
			observability.F("key", key),
			observability.F("wait", opts.Wait.String()),
		)
		return nil, fmt.Errorf("%w: %s", lock.ErrUnavailable, key)
	}

	m.log.Debug("lock_acquired",
		observability.F("key", key),
		observability.F("owner", owner),
	)

	return lock.NewHandle(key, owner, opts.Lease, func(relCtx context.Context) error {
		ok, err := mu.UnlockContext(relCtx)
		if err != nil {
			// Expired or taken over by a new owner: already not ours, treat
			// the release as done.
			if staleUnlock(err) {
				m.log.Warn("lock_no_longer_held_on_release", observability.F("key", key))
				return nil
			}
			return fmt.Errorf("redislock: release %s: %w", key, err)
		}
		if ok {
			m.log.Debug("lock_released", observability.F("key", key))
		}
		return nil
	}), nil
}

// staleUnlock reports whether an unlock failed only because the key is no
// longer ours: the lease ran out, or a new owner has since taken it. redsync
// reports the first as ErrLockAlreadyExpired and the second as ErrTaken (or
// ErrNodeTaken per node).
func staleUnlock(err error) bool {
	if errors.Is(err, redsync.ErrLockAlreadyExpired) {
		return true
	}
	var (
		taken    redsync.ErrTaken
		takenP   *redsync.ErrTaken
		nodeTkn  redsync.ErrNodeTaken
		nodeTknP *redsync.ErrNodeTaken
	)
	return errors.As(err, &taken) || errors.As(err, &takenP) ||
		errors.As(err, &nodeTkn) || errors.As(err, &nodeTknP)
}

// Release is idempotent; releasing a stale or already-released handle is a
// no-op.
func (m *Manager) Release(ctx context.Context, h *lock.Handle) error {
	if h == nil {
		return nil
	}
	if err := h.Release(ctx); err != nil {
		m.log.Warn("lock_release_failed",
			observability.F("key", h.Key()),
			observability.F("error", err.Error()),
		)
		return err
	}
	return nil
}
