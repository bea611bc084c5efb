// Package lock defines the distributed mutual-exclusion port and the scoped
// runner that guarantees release on every exit path of a critical section.
package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrUnavailable reports that the key could not be acquired within the wait
// timeout. Callers may retry with backoff.
var ErrUnavailable = errors.New("lock: unavailable")

// Options bound an acquisition. Wait caps how long Acquire may block; Lease
// caps how long the lock survives without an explicit release, so a crashed
// holder can never wedge the key forever.
type Options struct {
	Wait  time.Duration
	Lease time.Duration
}

// DefaultOptions mirrors the service defaults: wait up to 10s, self-expire
// after 30s.
func DefaultOptions() Options {
	return Options{Wait: 10 * time.Second, Lease: 30 * time.Second}
}

// Normalized fills zero fields with the defaults.
func (o Options) Normalized() Options {
	def := DefaultOptions()
	if o.Wait <= 0 {
		o.Wait = def.Wait
	}
	if o.Lease <= 0 {
		o.Lease = def.Lease
	}
	return o
}

// Manager acquires and releases named locks against a store shared by all
// processes using the same key namespace. It never retries beyond Wait;
// retry policy belongs to the caller.
type Manager interface {
	Acquire(ctx context.Context, key string, opts Options) (*Handle, error)
	Release(ctx context.Context, h *Handle) error
}

// Handle is one acquired lock. It is owned by the call stack that acquired
// it and is valid until released or until the lease runs out, whichever
// comes first. Handles are never reused.
type Handle struct {
	key        string
	owner      string
	acquiredAt time.Time
	lease      time.Duration

	once    sync.Once
	release func(ctx context.Context) error
}

// NewHandle is used by Manager implementations. The release function must be
// owner-checked: it must never evict a lock a different owner took after a
// lease expiry.
func NewHandle(key, owner string, lease time.Duration, release func(ctx context.Context) error) *Handle {
	return &Handle{
		key:        key,
		owner:      owner,
		acquiredAt: time.Now(),
		lease:      lease,
		release:    release,
	}
}

func (h *Handle) Key() string           { return h.key }
func (h *Handle) Owner() string         { return h.owner }
func (h *Handle) AcquiredAt() time.Time { return h.acquiredAt }
func (h *Handle) Lease() time.Duration  { return h.lease }

// Expired reports whether the lease has run out locally. The store is the
// authority; this is a hint for hazard logging.
func (h *Handle) Expired() bool {
	return time.Now().After(h.acquiredAt.Add(h.lease))
}

// Release is idempotent: the second and later calls are no-ops.
func (h *Handle) Release(ctx context.Context) error {
	if h == nil || h.release == nil {
		return nil
	}
	var err error
	h.once.Do(func() { err = h.release(ctx) })
	return err
}

const releaseTimeout = 3 * time.Second

// Do acquires key, runs fn while holding it, and releases on every exit
// path: normal return, error, cancellation, or panic. fn never runs when the
// key is unobtainable.
func Do(ctx context.Context, m Manager, key string, opts Options, fn func(ctx context.Context) error) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("lock: key cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("lock: fn is nil")
	}

	h, err := m.Acquire(ctx, key, opts.Normalized())
	if err != nil {
		return err
	}
	defer func() {
		// Release even when ctx is already done; a failed release only means
		// the key stays taken until the lease runs out.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		_ = m.Release(relCtx, h)
	}()

	return fn(ctx)
}
