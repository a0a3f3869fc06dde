package pricing

import (
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeDiscount is used for events that concern discounts as a whole
const AggregateTypeDiscount = "Discount"

// EventTypeDiscountsExpired is published after a sweep deactivated expired discounts
const EventTypeDiscountsExpired = "DiscountsExpired"

// DiscountsExpiredEvent reports how many discounts of one table a sweep deactivated.
// It has no single aggregate, so its aggregate ID is uuid.Nil.
type DiscountsExpiredEvent struct {
	shared.BaseDomainEvent
	Table string `json:"table"`
	Count int64  `json:"count"`
}

// NewDiscountsExpiredEvent creates a new DiscountsExpiredEvent
func NewDiscountsExpiredEvent(table string, count int64) *DiscountsExpiredEvent {
	return &DiscountsExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDiscountsExpired, AggregateTypeDiscount, uuid.Nil),
		Table:           table,
		Count:           count,
	}
}
