package supplier

import (
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CarDiscount is a promotional discount published by a supplier
type CarDiscount struct {
	pricing.Discount
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (CarDiscount) TableName() string {
	return "supplier_car_discounts"
}

// NewCarDiscount creates an active supplier discount
func NewCarDiscount(supplierID uuid.UUID, name, description string, percent decimal.Decimal, start, finish time.Time, carIDs []uuid.UUID) (*CarDiscount, error) {
	terms, err := pricing.NewDiscount(name, description, percent, start, finish, carIDs)
	if err != nil {
		return nil, err
	}
	return &CarDiscount{Discount: terms, SupplierID: supplierID}, nil
}

// DiscountCar links a supplier discount to a covered car
type DiscountCar struct {
	DiscountID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CarID      uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName returns the table name for GORM
func (DiscountCar) TableName() string {
	return "supplier_car_discount_cars"
}

// Terms extracts the pricing view of a discount list
func Terms(discounts []CarDiscount) []pricing.Discount {
	terms := make([]pricing.Discount, len(discounts))
	for i := range discounts {
		terms[i] = discounts[i].Discount
	}
	return terms
}
