package pricing

import (
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Percent bounds for promotional and unique-customer discounts
var (
	MinPercent = decimal.Zero
	MaxPercent = decimal.RequireFromString("0.5")
)

// Discount is a time-bounded promotional percentage covering a set of cars.
// Supplier and showroom discounts embed it and add their owner.
type Discount struct {
	shared.BaseEntity
	shared.ActiveFlag
	Name        string          `gorm:"type:varchar(50);not null"`
	Description string          `gorm:"type:text"`
	Percent     decimal.Decimal `gorm:"type:decimal(3,2);not null"`
	StartDate   time.Time       `gorm:"not null"`
	FinishDate  time.Time       `gorm:"not null;index"`
	CarIDs      []uuid.UUID     `gorm:"-"`
}

// NewDiscount validates and builds discount terms
func NewDiscount(name, description string, percent decimal.Decimal, start, finish time.Time, carIDs []uuid.UUID) (Discount, error) {
	if name == "" {
		return Discount{}, shared.NewDomainError("INVALID_DISCOUNT_NAME", "Discount name cannot be empty")
	}
	if err := ValidatePercent(percent); err != nil {
		return Discount{}, err
	}
	if !start.Before(finish) {
		return Discount{}, shared.NewDomainError("INVALID_DISCOUNT_PERIOD", "Discount start date must be before finish date")
	}

	cars := make([]uuid.UUID, len(carIDs))
	copy(cars, carIDs)

	return Discount{
		BaseEntity:  shared.NewBaseEntity(),
		ActiveFlag:  shared.Activated(),
		Name:        name,
		Description: description,
		Percent:     percent,
		StartDate:   start,
		FinishDate:  finish,
		CarIDs:      cars,
	}, nil
}

// ValidatePercent checks that a fraction lies in [0, 0.5]
func ValidatePercent(percent decimal.Decimal) error {
	if percent.LessThan(MinPercent) || percent.GreaterThan(MaxPercent) {
		return shared.NewDomainError("INVALID_PERCENT", "Percent must be between 0 and 0.5")
	}
	return nil
}

// Covers reports whether the discount applies to the car
func (d *Discount) Covers(carID uuid.UUID) bool {
	for _, id := range d.CarIDs {
		if id == carID {
			return true
		}
	}
	return false
}

// IsExpired reports whether the finish date has passed at now
func (d *Discount) IsExpired(now time.Time) bool {
	return d.FinishDate.Before(now)
}
