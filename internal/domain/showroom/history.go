package showroom

import (
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// History is the append-only record of one sale from a showroom to a customer
type History struct {
	shared.BaseEntity
	shared.ActiveFlag
	ShowroomID uuid.UUID       `gorm:"type:uuid;not null;index:idx_showroom_history_pair"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index:idx_showroom_history_pair"`
	CarID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	SalePrice  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (History) TableName() string {
	return "showroom_histories"
}

// NewHistory records a completed sale
func NewHistory(showroomID, customerID, carID uuid.UUID, salePrice decimal.Decimal) *History {
	return &History{
		BaseEntity: shared.NewBaseEntity(),
		ActiveFlag: shared.Activated(),
		ShowroomID: showroomID,
		CustomerID: customerID,
		CarID:      carID,
		SalePrice:  salePrice,
	}
}
