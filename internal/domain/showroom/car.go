package showroom

import (
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Car is a unit of showroom inventory. Once sold it keeps its row, turns inactive
// and records the buying customer.
type Car struct {
	shared.BaseEntity
	shared.ActiveFlag
	ShowroomID uuid.UUID       `gorm:"type:uuid;not null;index"`
	CarID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CustomerID *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Car) TableName() string {
	return "showroom_cars"
}

// NewCar stocks a purchased car at the price paid for it
func NewCar(showroomID, carID uuid.UUID, price decimal.Decimal) *Car {
	return &Car{
		BaseEntity: shared.NewBaseEntity(),
		ActiveFlag: shared.Activated(),
		ShowroomID: showroomID,
		CarID:      carID,
		Price:      price,
	}
}

// SellTo hands the car to a customer
func (c *Car) SellTo(customerID uuid.UUID) error {
	if !c.Active() {
		return shared.NewDomainError("CAR_ALREADY_SOLD", "Showroom car is no longer for sale")
	}
	c.CustomerID = &customerID
	c.Deactivate()
	c.Touch()
	return nil
}
