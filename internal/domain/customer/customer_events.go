package customer

import (
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for Customer
const AggregateTypeCustomer = "Customer"

// Event type constants for Customer
const (
	EventTypeCustomerOfferCreated = "CustomerOfferCreated"
	EventTypeCustomerCarPurchased = "CustomerCarPurchased"
	EventTypeCustomerDeactivated  = "CustomerDeactivated"
)

// CustomerOfferCreatedEvent is published when a customer places an offer.
// It triggers an immediate fulfillment attempt.
type CustomerOfferCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID       `json:"customer_id"`
	OfferID    uuid.UUID       `json:"offer_id"`
	CarID      uuid.UUID       `json:"car_id"`
	MaxPrice   decimal.Decimal `json:"max_price"`
}

// NewCustomerOfferCreatedEvent creates a new CustomerOfferCreatedEvent
func NewCustomerOfferCreatedEvent(o *Offer) *CustomerOfferCreatedEvent {
	return &CustomerOfferCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerOfferCreated, AggregateTypeCustomer, o.CustomerID),
		CustomerID:      o.CustomerID,
		OfferID:         o.ID,
		CarID:           o.CarID,
		MaxPrice:        o.MaxPrice,
	}
}

// CustomerCarPurchasedEvent is published after an offer was fulfilled
type CustomerCarPurchasedEvent struct {
	shared.BaseDomainEvent
	CustomerID    uuid.UUID       `json:"customer_id"`
	OfferID       uuid.UUID       `json:"offer_id"`
	ShowroomID    uuid.UUID       `json:"showroom_id"`
	ShowroomCarID uuid.UUID       `json:"showroom_car_id"`
	CarID         uuid.UUID       `json:"car_id"`
	Price         decimal.Decimal `json:"price"`
	PriceSource   string          `json:"price_source"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

// PurchaseDetails carries the sale facts of a CustomerCarPurchasedEvent
type PurchaseDetails struct {
	OfferID       uuid.UUID
	ShowroomID    uuid.UUID
	ShowroomCarID uuid.UUID
	CarID         uuid.UUID
	Price         decimal.Decimal
	PriceSource   string
}

// NewCustomerCarPurchasedEvent creates a new CustomerCarPurchasedEvent
func NewCustomerCarPurchasedEvent(c *Customer, d PurchaseDetails) *CustomerCarPurchasedEvent {
	return &CustomerCarPurchasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCarPurchased, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
		OfferID:         d.OfferID,
		ShowroomID:      d.ShowroomID,
		ShowroomCarID:   d.ShowroomCarID,
		CarID:           d.CarID,
		Price:           d.Price,
		PriceSource:     d.PriceSource,
		BalanceAfter:    c.Balance,
	}
}

// CustomerDeactivatedEvent is published after a customer and everything it owns was deactivated
type CustomerDeactivatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
}

// NewCustomerDeactivatedEvent creates a new CustomerDeactivatedEvent
func NewCustomerDeactivatedEvent(c *Customer) *CustomerDeactivatedEvent {
	return &CustomerDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerDeactivated, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
	}
}
