package showroom

import (
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for Showroom
const AggregateTypeShowroom = "Showroom"

// Event type constants for Showroom
const (
	EventTypeShowroomCreated       = "ShowroomCreated"
	EventTypeShowroomChartsChanged = "ShowroomChartsChanged"
	EventTypeShowroomCarsChanged   = "ShowroomCarsChanged"
	EventTypeShowroomCarPurchased  = "ShowroomCarPurchased"
	EventTypeShowroomDeactivated   = "ShowroomDeactivated"
)

// ShowroomCreatedEvent is published when a new showroom is created
type ShowroomCreatedEvent struct {
	shared.BaseDomainEvent
	ShowroomID uuid.UUID `json:"showroom_id"`
	Name       string    `json:"name"`
}

// NewShowroomCreatedEvent creates a new ShowroomCreatedEvent
func NewShowroomCreatedEvent(s *Showroom) *ShowroomCreatedEvent {
	return &ShowroomCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShowroomCreated, AggregateTypeShowroom, s.ID),
		ShowroomID:      s.ID,
		Name:            s.Name,
	}
}

// ShowroomChartsChangedEvent is raised by the outside layer when a showroom's
// charts were edited. The stored appropriate cars are stale until refreshed.
type ShowroomChartsChangedEvent struct {
	shared.BaseDomainEvent
	ShowroomID uuid.UUID `json:"showroom_id"`
}

func NewShowroomChartsChangedEvent(showroomID uuid.UUID) *ShowroomChartsChangedEvent {
	return &ShowroomChartsChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShowroomChartsChanged, AggregateTypeShowroom, showroomID),
		ShowroomID:      showroomID,
	}
}

// ShowroomCarsChangedEvent is published when a showroom's appropriate cars change.
// It triggers supplier matching for that showroom.
type ShowroomCarsChangedEvent struct {
	shared.BaseDomainEvent
	ShowroomID uuid.UUID   `json:"showroom_id"`
	CarIDs     []uuid.UUID `json:"car_ids"`
}

// NewShowroomCarsChangedEvent creates a new ShowroomCarsChangedEvent
func NewShowroomCarsChangedEvent(s *Showroom) *ShowroomCarsChangedEvent {
	ids := make([]uuid.UUID, len(s.AppropriateCarIDs))
	copy(ids, s.AppropriateCarIDs)
	return &ShowroomCarsChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShowroomCarsChanged, AggregateTypeShowroom, s.ID),
		ShowroomID:      s.ID,
		CarIDs:          ids,
	}
}

// ShowroomCarPurchasedEvent is published after a showroom bought a car from a supplier
type ShowroomCarPurchasedEvent struct {
	shared.BaseDomainEvent
	ShowroomID    uuid.UUID       `json:"showroom_id"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	CarID         uuid.UUID       `json:"car_id"`
	ShowroomCarID uuid.UUID       `json:"showroom_car_id"`
	Price         decimal.Decimal `json:"price"`
	PriceSource   string          `json:"price_source"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

// NewShowroomCarPurchasedEvent creates a new ShowroomCarPurchasedEvent
func NewShowroomCarPurchasedEvent(s *Showroom, supplierID uuid.UUID, car *Car, source string) *ShowroomCarPurchasedEvent {
	return &ShowroomCarPurchasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShowroomCarPurchased, AggregateTypeShowroom, s.ID),
		ShowroomID:      s.ID,
		SupplierID:      supplierID,
		CarID:           car.CarID,
		ShowroomCarID:   car.ID,
		Price:           car.Price,
		PriceSource:     source,
		BalanceAfter:    s.Balance,
	}
}

// ShowroomDeactivatedEvent is published after a showroom and everything it owns was deactivated
type ShowroomDeactivatedEvent struct {
	shared.BaseDomainEvent
	ShowroomID uuid.UUID `json:"showroom_id"`
}

// NewShowroomDeactivatedEvent creates a new ShowroomDeactivatedEvent
func NewShowroomDeactivatedEvent(s *Showroom) *ShowroomDeactivatedEvent {
	return &ShowroomDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShowroomDeactivated, AggregateTypeShowroom, s.ID),
		ShowroomID:      s.ID,
	}
}
