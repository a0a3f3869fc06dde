package showroom

import (
	"strings"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/catalog"
	"github.com/Twelve-cloud/car-showroom/internal/domain/pricing"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Showroom buys cars from suppliers and sells them to customers.
// It is the aggregate root for its inventory, discounts, history and supplier assignments.
type Showroom struct {
	shared.BaseAggregateRoot
	shared.ActiveFlag
	Name                       string          `gorm:"type:varchar(50);not null"`
	CreationYear               int             `gorm:"not null"`
	Location                   string          `gorm:"type:varchar(2);not null"`
	Balance                    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Charts                     string          `gorm:"type:text;not null"`
	NumberOfSales              int             `gorm:"not null"`
	DiscountForUniqueCustomers decimal.Decimal `gorm:"type:decimal(3,2);not null"`

	// Loaded separately from their own tables
	AppropriateCarIDs []uuid.UUID             `gorm:"-"`
	CurrentSuppliers  map[uuid.UUID]uuid.UUID `gorm:"-"`
}

// TableName returns the table name for GORM
func (Showroom) TableName() string {
	return "showrooms"
}

// NewShowroom creates a new active showroom
func NewShowroom(name, location string, creationYear int, balance decimal.Decimal, charts string, numberOfSales int, uniqueDiscount decimal.Decimal) (*Showroom, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return nil, shared.NewDomainError("INVALID_NAME", "Showroom name must be 1 to 50 characters")
	}
	if len(location) != 2 {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location must be a two-letter country code")
	}
	if creationYear < 1900 || creationYear > time.Now().Year() {
		return nil, shared.NewDomainError("INVALID_CREATION_YEAR", "Creation year must be between 1900 and the current year")
	}
	if balance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_BALANCE", "Balance cannot be negative")
	}
	if numberOfSales < 0 {
		return nil, shared.NewDomainError("INVALID_NUMBER_OF_SALES", "Number of sales cannot be negative")
	}
	if err := pricing.ValidatePercent(uniqueDiscount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(charts) == "" {
		charts = "[]"
	}
	if _, err := catalog.ParseCharts(charts); err != nil {
		return nil, err
	}

	s := &Showroom{
		BaseAggregateRoot:          shared.NewBaseAggregateRoot(),
		ActiveFlag:                 shared.Activated(),
		Name:                       name,
		CreationYear:               creationYear,
		Location:                   strings.ToUpper(location),
		Balance:                    balance,
		Charts:                     charts,
		NumberOfSales:              numberOfSales,
		DiscountForUniqueCustomers: uniqueDiscount,
		CurrentSuppliers:           make(map[uuid.UUID]uuid.UUID),
	}
	s.AddDomainEvent(NewShowroomCreatedEvent(s))

	return s, nil
}

// VolumeTerms returns the showroom's loyalty terms towards its customers
func (s *Showroom) VolumeTerms() pricing.VolumeTerms {
	return pricing.VolumeTerms{
		Threshold: s.NumberOfSales,
		Fraction:  s.DiscountForUniqueCustomers,
	}
}

// Criteria parses the showroom's charts
func (s *Showroom) Criteria() ([]catalog.CarCriteria, error) {
	return catalog.ParseCharts(s.Charts)
}

// CanAfford reports whether a price is strictly below the balance
func (s *Showroom) CanAfford(price decimal.Decimal) bool {
	return pricing.Affordable(price, s.Balance)
}

// Debit withdraws the price of a purchase from the balance
func (s *Showroom) Debit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Debit amount cannot be negative")
	}
	if !s.CanAfford(amount) {
		return shared.ErrInsufficientBalance
	}
	s.Balance = s.Balance.Sub(amount)
	s.IncrementVersion()
	return nil
}

// SetAppropriateCars replaces the ordered list of cars the showroom wants to stock
func (s *Showroom) SetAppropriateCars(carIDs []uuid.UUID) {
	ids := make([]uuid.UUID, len(carIDs))
	copy(ids, carIDs)
	s.AppropriateCarIDs = ids
	s.AddDomainEvent(NewShowroomCarsChangedEvent(s))
}

// AssignSupplier records the supplier currently chosen for a car
func (s *Showroom) AssignSupplier(carID, supplierID uuid.UUID) {
	if s.CurrentSuppliers == nil {
		s.CurrentSuppliers = make(map[uuid.UUID]uuid.UUID)
	}
	s.CurrentSuppliers[carID] = supplierID
}

// Pairing is an appropriate car with the supplier currently assigned to it
type Pairing struct {
	CarID      uuid.UUID
	SupplierID uuid.UUID
}

// Pairings joins appropriate cars with their assigned supplier, in appropriate-car order.
// Cars without an assigned supplier are skipped.
func (s *Showroom) Pairings() []Pairing {
	pairs := make([]Pairing, 0, len(s.AppropriateCarIDs))
	for _, carID := range s.AppropriateCarIDs {
		supplierID, ok := s.CurrentSuppliers[carID]
		if !ok {
			continue
		}
		pairs = append(pairs, Pairing{CarID: carID, SupplierID: supplierID})
	}
	return pairs
}

// MarkDeactivated records the showroom's cascading deactivation
func (s *Showroom) MarkDeactivated() {
	s.Deactivate()
	s.IncrementVersion()
	s.AddDomainEvent(NewShowroomDeactivatedEvent(s))
}

// AppropriateCar is one position in a showroom's ordered wish list
type AppropriateCar struct {
	ShowroomID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CarID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position   int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AppropriateCar) TableName() string {
	return "showroom_appropriate_cars"
}

// CurrentSupplier assigns a supplier to one of a showroom's cars
type CurrentSupplier struct {
	ShowroomID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CarID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (CurrentSupplier) TableName() string {
	return "showroom_current_suppliers"
}
