package engine

import (
	"context"

	"github.com/Twelve-cloud/car-showroom/internal/domain/customer"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobSubmitter queues a tick for asynchronous execution
type JobSubmitter interface {
	Submit(kind string, aggregateID uuid.UUID) error
}

// TriggerHandler turns domain events into one-off engine ticks:
//   - ShowroomCreated and ShowroomChartsChanged queue a charts refresh
//   - ShowroomCarsChanged queues supplier matching for that showroom
//   - CustomerOfferCreated queues a fulfillment attempt for the new offer
type TriggerHandler struct {
	submitter JobSubmitter
	logger    *zap.Logger
}

// NewTriggerHandler creates a new TriggerHandler
func NewTriggerHandler(submitter JobSubmitter, logger *zap.Logger) *TriggerHandler {
	return &TriggerHandler{
		submitter: submitter,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler reacts to
func (h *TriggerHandler) EventTypes() []string {
	return []string{
		showroom.EventTypeShowroomCreated,
		showroom.EventTypeShowroomChartsChanged,
		showroom.EventTypeShowroomCarsChanged,
		customer.EventTypeCustomerOfferCreated,
	}
}

// Handle queues the tick matching the event
func (h *TriggerHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		kind string
		id   uuid.UUID
	)
	switch e := event.(type) {
	case *showroom.ShowroomCreatedEvent:
		kind, id = JobKindRefreshCars, e.ShowroomID
	case *showroom.ShowroomChartsChangedEvent:
		kind, id = JobKindRefreshCars, e.ShowroomID
	case *showroom.ShowroomCarsChangedEvent:
		kind, id = JobKindMatchShowroom, e.ShowroomID
	case *customer.CustomerOfferCreatedEvent:
		kind, id = JobKindFulfill, e.OfferID
	default:
		h.logger.Debug("Ignoring event",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
		)
		return nil
	}

	if err := h.submitter.Submit(kind, id); err != nil {
		h.logger.Warn("Failed to queue triggered tick",
			zap.String("event_type", event.EventType()),
			zap.String("job_kind", kind),
			zap.String("aggregate_id", id.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*TriggerHandler)(nil)
