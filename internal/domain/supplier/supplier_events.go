package supplier

import (
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant for Supplier
const AggregateTypeSupplier = "Supplier"

// Event type constants for Supplier
const (
	EventTypeSupplierCreated     = "SupplierCreated"
	EventTypeSupplierDeactivated = "SupplierDeactivated"
)

// SupplierCreatedEvent is published when a new supplier is created
type SupplierCreatedEvent struct {
	shared.BaseDomainEvent
	SupplierID uuid.UUID `json:"supplier_id"`
	Name       string    `json:"name"`
}

// NewSupplierCreatedEvent creates a new SupplierCreatedEvent
func NewSupplierCreatedEvent(s *Supplier) *SupplierCreatedEvent {
	return &SupplierCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierCreated, AggregateTypeSupplier, s.ID),
		SupplierID:      s.ID,
		Name:            s.Name,
	}
}

// SupplierDeactivatedEvent is published after a supplier and everything it owns was deactivated
type SupplierDeactivatedEvent struct {
	shared.BaseDomainEvent
	SupplierID uuid.UUID `json:"supplier_id"`
}

// NewSupplierDeactivatedEvent creates a new SupplierDeactivatedEvent
func NewSupplierDeactivatedEvent(s *Supplier) *SupplierDeactivatedEvent {
	return &SupplierDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierDeactivated, AggregateTypeSupplier, s.ID),
		SupplierID:      s.ID,
	}
}
