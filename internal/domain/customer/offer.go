package customer

import (
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offer is a customer's standing request to buy a car below a price ceiling
type Offer struct {
	shared.BaseEntity
	shared.ActiveFlag
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	CarID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaxPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (Offer) TableName() string {
	return "customer_offers"
}

// NewOffer creates an active offer
func NewOffer(customerID, carID uuid.UUID, maxPrice decimal.Decimal) (*Offer, error) {
	if !maxPrice.IsPositive() {
		return nil, shared.NewDomainError("INVALID_MAX_PRICE", "Max price must be positive")
	}
	return &Offer{
		BaseEntity: shared.NewBaseEntity(),
		ActiveFlag: shared.Activated(),
		CustomerID: customerID,
		CarID:      carID,
		MaxPrice:   maxPrice,
	}, nil
}

// Accepts reports whether a price is strictly under the ceiling
func (o *Offer) Accepts(price decimal.Decimal) bool {
	return price.LessThan(o.MaxPrice)
}
