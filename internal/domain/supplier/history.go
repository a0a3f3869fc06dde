package supplier

import (
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// History is the append-only record of one sale from a supplier to a showroom
type History struct {
	shared.BaseEntity
	shared.ActiveFlag
	SupplierID uuid.UUID       `gorm:"type:uuid;not null;index:idx_supplier_history_pair"`
	ShowroomID uuid.UUID       `gorm:"type:uuid;not null;index:idx_supplier_history_pair"`
	CarID      uuid.UUID       `gorm:"type:uuid;not null"`
	SalePrice  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the table name for GORM
func (History) TableName() string {
	return "supplier_histories"
}

// NewHistory records a completed sale
func NewHistory(supplierID, showroomID, carID uuid.UUID, salePrice decimal.Decimal) *History {
	return &History{
		BaseEntity: shared.NewBaseEntity(),
		ActiveFlag: shared.Activated(),
		SupplierID: supplierID,
		ShowroomID: showroomID,
		CarID:      carID,
		SalePrice:  salePrice,
	}
}
