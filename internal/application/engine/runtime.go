package engine

import (
	"context"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Lock key prefixes. A tick on an aggregate holds "<prefix>:<id>".
const (
	lockShowroom = "showroom"
	lockSupplier = "supplier"
	lockCustomer = "customer"
)

// DefaultLockTTL bounds how long a crashed worker can keep an aggregate locked
const DefaultLockTTL = 30 * time.Second

// Runtime bundles the collaborators every engine service needs
type Runtime struct {
	TxScope   TransactionScope
	Locker    shared.AggregateLocker
	LockTTL   time.Duration
	Publisher shared.EventPublisher
	Metrics   Metrics
	Logger    *zap.Logger
	// Clock is the tick's notion of now. Defaults to time.Now.
	Clock func() time.Time
}

func (rt Runtime) withDefaults() Runtime {
	if rt.LockTTL <= 0 {
		rt.LockTTL = DefaultLockTTL
	}
	if rt.Metrics == nil {
		rt.Metrics = NopMetrics{}
	}
	if rt.Logger == nil {
		rt.Logger = zap.NewNop()
	}
	if rt.Clock == nil {
		rt.Clock = time.Now
	}
	return rt
}

// log prefers the job-scoped logger the scheduler put on the context
func (rt Runtime) log(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(logger.LoggerKey).(*zap.Logger); ok {
		return l
	}
	return rt.Logger
}

// locked runs fn while holding the aggregate lock for prefix:id
func (rt Runtime) locked(ctx context.Context, prefix string, id uuid.UUID, fn func() error) error {
	release, err := rt.Locker.Lock(ctx, shared.AggregateKey(prefix, id), rt.LockTTL)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// publish hands committed events to the bus. The data is already durable,
// so a bus failure is logged and not returned.
func (rt Runtime) publish(ctx context.Context, events []shared.DomainEvent) {
	if rt.Publisher == nil || len(events) == 0 {
		return
	}
	if err := rt.Publisher.Publish(ctx, events...); err != nil {
		rt.log(ctx).Warn("Failed to publish domain events",
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}
