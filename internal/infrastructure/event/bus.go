package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"go.uber.org/zap"
)

// BusStats is a snapshot of bus counters
type BusStats struct {
	Published int64
	Delivered int64
	Failed    int64
}

// InMemoryEventBus implements EventBus with in-process pub/sub.
// Delivery is synchronous; a failing or panicking handler never blocks the others.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	running  atomic.Bool

	published atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// Publish hands every event to its subscribed handlers.
// Events published while the bus is stopped are dropped.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if !b.running.Load() {
		b.logger.Debug("event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}

	for _, event := range events {
		if event == nil {
			continue
		}
		b.published.Add(1)

		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if err := b.dispatch(ctx, handler, event); err != nil {
				b.failed.Add(1)
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("aggregate_type", event.AggregateType()),
					zap.String("aggregate_id", event.AggregateID().String()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
				continue
			}
			b.delivered.Add(1)
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start begins accepting events
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started", zap.Int("handlers", b.registry.Count()))
	return nil
}

// Stop stops accepting events
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	stats := b.Stats()
	b.logger.Info("event bus stopped",
		zap.Int64("published", stats.Published),
		zap.Int64("delivered", stats.Delivered),
		zap.Int64("failed", stats.Failed),
	)
	return nil
}

// IsRunning reports whether the bus accepts events
func (b *InMemoryEventBus) IsRunning() bool {
	return b.running.Load()
}

// Stats returns the current counters
func (b *InMemoryEventBus) Stats() BusStats {
	return BusStats{
		Published: b.published.Load(),
		Delivered: b.delivered.Load(),
		Failed:    b.failed.Load(),
	}
}

// dispatch turns a handler panic into an error
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

// Ensure InMemoryEventBus implements EventBus
var _ shared.EventBus = (*InMemoryEventBus)(nil)
