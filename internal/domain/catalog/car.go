package catalog

import (
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
)

// Brand is a car manufacturer known to the catalog
type Brand string

const (
	BrandAudi  Brand = "audi"
	BrandBMW   Brand = "bmw"
	BrandTesla Brand = "tesla"
)

// AllBrands returns every supported brand
func AllBrands() []Brand {
	return []Brand{BrandAudi, BrandBMW, BrandTesla}
}

// IsValid reports whether the brand is supported
func (b Brand) IsValid() bool {
	switch b {
	case BrandAudi, BrandBMW, BrandTesla:
		return true
	}
	return false
}

// Transmission is a gearbox type
type Transmission string

const (
	TransmissionManual Transmission = "manual"
	TransmissionAuto   Transmission = "auto"
)

// AllTransmissions returns every supported transmission type
func AllTransmissions() []Transmission {
	return []Transmission{TransmissionManual, TransmissionAuto}
}

// IsValid reports whether the transmission is supported
func (t Transmission) IsValid() bool {
	return t == TransmissionManual || t == TransmissionAuto
}

// MinCreationYear is the oldest model year the catalog accepts
const MinCreationYear = 1900

// Car is an immutable catalog entry. The trading engine only reads it.
type Car struct {
	shared.BaseEntity
	shared.ActiveFlag
	Brand        Brand        `gorm:"type:varchar(50);not null;index"`
	Transmission Transmission `gorm:"type:varchar(50);not null"`
	CreationYear int          `gorm:"not null"`
	Mileage      float64      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Car) TableName() string {
	return "cars"
}

// NewCar creates a new catalog car
func NewCar(brand Brand, transmission Transmission, creationYear int, mileage float64) (*Car, error) {
	if !brand.IsValid() {
		return nil, shared.NewDomainError("INVALID_BRAND", "Unsupported car brand: "+string(brand))
	}
	if !transmission.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSMISSION", "Unsupported transmission type: "+string(transmission))
	}
	if creationYear < MinCreationYear || creationYear > time.Now().Year()+1 {
		return nil, shared.NewDomainError("INVALID_CREATION_YEAR", "Creation year must be between 1900 and next year")
	}
	if mileage < 0 {
		return nil, shared.NewDomainError("INVALID_MILEAGE", "Mileage cannot be negative")
	}

	return &Car{
		BaseEntity:   shared.NewBaseEntity(),
		ActiveFlag:   shared.Activated(),
		Brand:        brand,
		Transmission: transmission,
		CreationYear: creationYear,
		Mileage:      mileage,
	}, nil
}
