package customer

import (
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// History is the append-only record of a customer's purchase.
// The showroom is kept by name so the record survives showroom changes.
type History struct {
	shared.BaseEntity
	shared.ActiveFlag
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	CarID         uuid.UUID       `gorm:"type:uuid;not null"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Showroom      string          `gorm:"type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (History) TableName() string {
	return "customer_histories"
}

// NewHistory records a completed purchase
func NewHistory(customerID, carID uuid.UUID, price decimal.Decimal, showroomName string) *History {
	return &History{
		BaseEntity:    shared.NewBaseEntity(),
		ActiveFlag:    shared.Activated(),
		CustomerID:    customerID,
		CarID:         carID,
		PurchasePrice: price,
		Showroom:      showroomName,
	}
}
