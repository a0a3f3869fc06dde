package shared

import (
	"context"
	"time"
)

// AggregateLocker serializes work on a single aggregate across workers and processes.
// Lock returns ErrLockNotAcquired when another holder owns the key past the wait budget.
type AggregateLocker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// AggregateKey builds the lock key for an aggregate
func AggregateKey(aggregateType string, id interface{ String() string }) string {
	return aggregateType + ":" + id.String()
}
