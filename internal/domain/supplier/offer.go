package supplier

import (
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CarOffer is a supplier's unit of stock for one catalog car. It is sold at most once.
type CarOffer struct {
	shared.BaseEntity
	shared.ActiveFlag
	SupplierID uuid.UUID       `gorm:"type:uuid;not null;index:idx_supplier_car_offer"`
	CarID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_supplier_car_offer;index"`
	Price      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (CarOffer) TableName() string {
	return "supplier_car_offers"
}

// NewCarOffer creates an active offer
func NewCarOffer(supplierID, carID uuid.UUID, price decimal.Decimal) (*CarOffer, error) {
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Offer price cannot be negative")
	}
	return &CarOffer{
		BaseEntity: shared.NewBaseEntity(),
		ActiveFlag: shared.Activated(),
		SupplierID: supplierID,
		CarID:      carID,
		Price:      price,
	}, nil
}

// Listing is an active offer joined with its owning supplier
type Listing struct {
	Offer    CarOffer
	Supplier Supplier
}
