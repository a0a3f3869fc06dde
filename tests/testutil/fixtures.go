package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/catalog"
	"github.com/Twelve-cloud/car-showroom/internal/domain/customer"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/Twelve-cloud/car-showroom/internal/domain/supplier"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/persistence"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Fixtures writes domain aggregates through the real repositories.
// Names and emails are generated; everything that affects pricing is explicit.
type Fixtures struct {
	t         *testing.T
	ctx       context.Context
	faker     *gofakeit.Faker
	Cars      *persistence.GormCarRepository
	Suppliers *persistence.GormSupplierRepository
	Showrooms *persistence.GormShowroomRepository
	Customers *persistence.GormCustomerRepository
}

// NewFixtures creates a fixture builder over db
func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	t.Helper()
	return &Fixtures{
		t:         t,
		ctx:       context.Background(),
		faker:     gofakeit.New(0),
		Cars:      persistence.NewGormCarRepository(db),
		Suppliers: persistence.NewGormSupplierRepository(db),
		Showrooms: persistence.NewGormShowroomRepository(db),
		Customers: persistence.NewGormCustomerRepository(db),
	}
}

// Money parses a decimal literal
func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Car stores a catalog car
func (f *Fixtures) Car(brand catalog.Brand, transmission catalog.Transmission, year int, mileage float64) *catalog.Car {
	f.t.Helper()
	car, err := catalog.NewCar(brand, transmission, year, mileage)
	require.NoError(f.t, err)
	require.NoError(f.t, f.Cars.Save(f.ctx, car))
	return car
}

// Supplier stores an active supplier with the given loyalty terms
func (f *Fixtures) Supplier(numberOfSales int, uniqueDiscount string) *supplier.Supplier {
	f.t.Helper()
	s, err := supplier.NewSupplier(f.companyName(), 2001, numberOfSales, Money(uniqueDiscount))
	require.NoError(f.t, err)
	s.ClearDomainEvents()
	require.NoError(f.t, f.Suppliers.Save(f.ctx, s))
	return s
}

// Offer lists a car by a supplier
func (f *Fixtures) Offer(supplierID, carID uuid.UUID, price string) *supplier.CarOffer {
	f.t.Helper()
	o, err := supplier.NewCarOffer(supplierID, carID, Money(price))
	require.NoError(f.t, err)
	require.NoError(f.t, f.Suppliers.SaveOffer(f.ctx, o))
	return o
}

// SupplierDiscount stores a supplier promotion valid between start and finish
func (f *Fixtures) SupplierDiscount(supplierID uuid.UUID, percent string, start, finish time.Time, carIDs ...uuid.UUID) *supplier.CarDiscount {
	f.t.Helper()
	d, err := supplier.NewCarDiscount(supplierID, f.faker.BuzzWord(), "", Money(percent), start, finish, carIDs)
	require.NoError(f.t, err)
	require.NoError(f.t, f.Suppliers.SaveDiscount(f.ctx, d))
	return d
}

// SupplierSale records a past sale from a supplier to a showroom
func (f *Fixtures) SupplierSale(supplierID, showroomID, carID uuid.UUID, price string) {
	f.t.Helper()
	require.NoError(f.t, f.Suppliers.AppendHistory(f.ctx, supplier.NewHistory(supplierID, showroomID, carID, Money(price))))
}

// Showroom stores an active showroom. charts may be empty.
func (f *Fixtures) Showroom(balance string, numberOfSales int, uniqueDiscount string, charts string) *showroom.Showroom {
	f.t.Helper()
	s, err := showroom.NewShowroom(f.companyName(), "US", 2010, Money(balance), charts, numberOfSales, Money(uniqueDiscount))
	require.NoError(f.t, err)
	s.ClearDomainEvents()
	require.NoError(f.t, f.Showrooms.Save(f.ctx, s))
	return s
}

// WantCars sets the showroom's ordered appropriate cars
func (f *Fixtures) WantCars(showroomID uuid.UUID, carIDs ...uuid.UUID) {
	f.t.Helper()
	require.NoError(f.t, f.Showrooms.ReplaceAppropriateCars(f.ctx, showroomID, carIDs))
}

// AssignSuppliers sets the showroom's car to supplier map
func (f *Fixtures) AssignSuppliers(showroomID uuid.UUID, assignments map[uuid.UUID]uuid.UUID) {
	f.t.Helper()
	require.NoError(f.t, f.Showrooms.ReplaceCurrentSuppliers(f.ctx, showroomID, assignments))
}

// StockCar puts an unsold unit into a showroom
func (f *Fixtures) StockCar(showroomID, carID uuid.UUID, price string) *showroom.Car {
	f.t.Helper()
	c := showroom.NewCar(showroomID, carID, Money(price))
	require.NoError(f.t, f.Showrooms.SaveCar(f.ctx, c))
	return c
}

// ShowroomDiscount stores a showroom promotion valid between start and finish
func (f *Fixtures) ShowroomDiscount(showroomID uuid.UUID, percent string, start, finish time.Time, carIDs ...uuid.UUID) *showroom.CarDiscount {
	f.t.Helper()
	d, err := showroom.NewCarDiscount(showroomID, f.faker.BuzzWord(), "", Money(percent), start, finish, carIDs)
	require.NoError(f.t, err)
	require.NoError(f.t, f.Showrooms.SaveDiscount(f.ctx, d))
	return d
}

// ShowroomSale records a past sale from a showroom to a customer
func (f *Fixtures) ShowroomSale(showroomID, customerID, carID uuid.UUID, price string) {
	f.t.Helper()
	require.NoError(f.t, f.Showrooms.AppendHistory(f.ctx, showroom.NewHistory(showroomID, customerID, carID, Money(price))))
}

// Customer stores an active customer
func (f *Fixtures) Customer(balance string) *customer.Customer {
	f.t.Helper()
	c, err := customer.NewCustomer(f.faker.Name(), f.faker.Email(), Money(balance))
	require.NoError(f.t, err)
	require.NoError(f.t, f.Customers.Save(f.ctx, c))
	return c
}

// CustomerOffer stores a standing purchase offer
func (f *Fixtures) CustomerOffer(customerID, carID uuid.UUID, maxPrice string) *customer.Offer {
	f.t.Helper()
	o, err := customer.NewOffer(customerID, carID, Money(maxPrice))
	require.NoError(f.t, err)
	require.NoError(f.t, f.Customers.SaveOffer(f.ctx, o))
	return o
}

func (f *Fixtures) companyName() string {
	name := f.faker.Company()
	if len(name) > 50 {
		name = name[:50]
	}
	return name
}
