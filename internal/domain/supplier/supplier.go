package supplier

import (
	"strings"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/pricing"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Default volume terms for a new supplier
const DefaultNumberOfSales = 20

// DefaultUniqueCustomerDiscount is the fraction a loyal buyer pays once the threshold is reached
var DefaultUniqueCustomerDiscount = decimal.RequireFromString("0.2")

// Supplier is a seller of cars to showrooms.
// It is the aggregate root for offers, promotional discounts and sales history.
type Supplier struct {
	shared.BaseAggregateRoot
	shared.ActiveFlag
	Name                       string          `gorm:"type:varchar(50);not null"`
	CreationYear               int             `gorm:"not null"`
	CustomersCount             int             `gorm:"not null"`
	NumberOfSales              int             `gorm:"not null"`
	DiscountForUniqueCustomers decimal.Decimal `gorm:"type:decimal(3,2);not null"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new active supplier
func NewSupplier(name string, creationYear, numberOfSales int, uniqueDiscount decimal.Decimal) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	if len(name) > 50 {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot exceed 50 characters")
	}
	if creationYear < 1900 || creationYear > time.Now().Year() {
		return nil, shared.NewDomainError("INVALID_CREATION_YEAR", "Creation year must be between 1900 and the current year")
	}
	if numberOfSales < 0 {
		return nil, shared.NewDomainError("INVALID_NUMBER_OF_SALES", "Number of sales cannot be negative")
	}
	if err := pricing.ValidatePercent(uniqueDiscount); err != nil {
		return nil, err
	}

	s := &Supplier{
		BaseAggregateRoot:          shared.NewBaseAggregateRoot(),
		ActiveFlag:                 shared.Activated(),
		Name:                       name,
		CreationYear:               creationYear,
		NumberOfSales:              numberOfSales,
		DiscountForUniqueCustomers: uniqueDiscount,
	}
	s.AddDomainEvent(NewSupplierCreatedEvent(s))

	return s, nil
}

// VolumeTerms returns the supplier's loyalty terms
func (s *Supplier) VolumeTerms() pricing.VolumeTerms {
	return pricing.VolumeTerms{
		Threshold: s.NumberOfSales,
		Fraction:  s.DiscountForUniqueCustomers,
	}
}

// MarkDeactivated records the supplier's cascading deactivation
func (s *Supplier) MarkDeactivated() {
	s.Deactivate()
	s.IncrementVersion()
	s.AddDomainEvent(NewSupplierDeactivatedEvent(s))
}
