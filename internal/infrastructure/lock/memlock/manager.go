// Package memlock implements the lock.Manager port in process memory. It
// honors the same wait/lease contract as the Redis manager but is only safe
// for a single process sharing one Manager value: tests and single-node
// deployments without Redis.
package memlock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/locksmith-pay/locksmith/internal/lock"
)

const pollInterval = 5 * time.Millisecond

type entry struct {
	owner string
	until time.Time
}

type Manager struct {
	mu   sync.Mutex
	held map[string]entry
}

func New() *Manager {
	return &Manager{held: make(map[string]entry)}
}

func (m *Manager) Acquire(ctx context.Context, key string, opts lock.Options) (*lock.Handle, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("memlock: key cannot be empty")
	}
	opts = opts.Normalized()

	owner := uuid.NewString()
	waitCtx, cancel := context.WithTimeout(ctx, opts.Wait)
	defer cancel()

	for {
		if m.tryStore(key, owner, opts.Lease) {
			return lock.NewHandle(key, owner, opts.Lease, func(context.Context) error {
				m.releaseOwned(key, owner)
				return nil
			}), nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return nil, fmt.Errorf("memlock: acquire %s: %w", key, ctx.Err())
			}
			return nil, fmt.Errorf("%w: %s", lock.ErrUnavailable, key)
		case <-time.After(pollInterval):
		}
	}
}

func (m *Manager) Release(ctx context.Context, h *lock.Handle) error {
	if h == nil {
		return nil
	}
	return h.Release(ctx)
}

func (m *Manager) tryStore(key, owner string, lease time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.held[key]; ok && time.Now().Before(e.until) {
		return false
	}
	m.held[key] = entry{owner: owner, until: time.Now().Add(lease)}
	return true
}

// releaseOwned deletes the key only while this owner still holds it, so a
// release after lease expiry never evicts a successor.
func (m *Manager) releaseOwned(key, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.held[key]; ok && e.owner == owner {
		delete(m.held, key)
	}
}
