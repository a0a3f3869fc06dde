package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
)

// lease is a held key with its owner token and expiry
type lease struct {
	token     string
	expiresAt time.Time
}

// InMemoryAggregateLocker implements AggregateLocker within one process.
// Suitable for single-instance deployments and tests.
type InMemoryAggregateLocker struct {
	mu     sync.Mutex
	leases map[string]lease
	wait   time.Duration
}

// NewInMemoryAggregateLocker creates a locker that waits up to wait for a held key
func NewInMemoryAggregateLocker(wait time.Duration) *InMemoryAggregateLocker {
	return &InMemoryAggregateLocker{
		leases: make(map[string]lease),
		wait:   wait,
	}
}

// Lock acquires key for ttl, polling while it is held and not expired
func (l *InMemoryAggregateLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		if l.tryAcquire(key, token, ttl) {
			return func() { l.release(key, token) }, nil
		}
		if !time.Now().Before(deadline) {
			return nil, shared.ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", shared.ErrLockNotAcquired, ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}

func (l *InMemoryAggregateLocker) tryAcquire(key, token string, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if held, ok := l.leases[key]; ok && now.Before(held.expiresAt) {
		return false
	}
	l.leases[key] = lease{token: token, expiresAt: now.Add(ttl)}
	return true
}

func (l *InMemoryAggregateLocker) release(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if held, ok := l.leases[key]; ok && held.token == token {
		delete(l.leases, key)
	}
}

// Size returns the number of leases currently tracked (for testing/monitoring)
func (l *InMemoryAggregateLocker) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.leases)
}

// Ensure InMemoryAggregateLocker implements AggregateLocker
var _ shared.AggregateLocker = (*InMemoryAggregateLocker)(nil)
