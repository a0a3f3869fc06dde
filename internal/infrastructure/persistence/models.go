package persistence

import (
	"github.com/Twelve-cloud/car-showroom/internal/domain/catalog"
	"github.com/Twelve-cloud/car-showroom/internal/domain/customer"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/Twelve-cloud/car-showroom/internal/domain/supplier"
)

// AllModels lists every persisted type in dependency order.
// The SQL migrations are the schema of record; AutoMigrate over this list is used by
// the sqlite driver and by tests.
func AllModels() []interface{} {
	return []interface{}{
		&catalog.Car{},
		&supplier.Supplier{},
		&supplier.CarOffer{},
		&supplier.CarDiscount{},
		&supplier.DiscountCar{},
		&supplier.History{},
		&showroom.Showroom{},
		&showroom.AppropriateCar{},
		&showroom.CurrentSupplier{},
		&showroom.Car{},
		&showroom.CarDiscount{},
		&showroom.DiscountCar{},
		&showroom.History{},
		&customer.Customer{},
		&customer.Offer{},
		&customer.History{},
	}
}
