// Package seed fills an empty database with generated cars, suppliers, showrooms and customers.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/application/engine"
	"github.com/Twelve-cloud/car-showroom/internal/domain/catalog"
	"github.com/Twelve-cloud/car-showroom/internal/domain/customer"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/Twelve-cloud/car-showroom/internal/domain/supplier"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidConfig is returned for non-positive counts
var ErrInvalidConfig = errors.New("invalid seed config")

const maxNameLength = 50

// Config controls how much data is generated
type Config struct {
	Cars              int
	Suppliers         int
	OffersPerSupplier int
	Showrooms         int
	Customers         int
	OffersPerCustomer int
	// Seed makes a run reproducible; 0 picks a random seed
	Seed uint64
}

// DefaultConfig returns a small data set
func DefaultConfig() Config {
	return Config{
		Cars:              20,
		Suppliers:         5,
		OffersPerSupplier: 8,
		Showrooms:         3,
		Customers:         10,
		OffersPerCustomer: 2,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Cars <= 0 || c.Suppliers <= 0 || c.Showrooms <= 0 || c.Customers <= 0 {
		return fmt.Errorf("%w: cars, suppliers, showrooms and customers must be positive", ErrInvalidConfig)
	}
	if c.OffersPerSupplier < 0 || c.OffersPerCustomer < 0 {
		return fmt.Errorf("%w: offer counts cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Report counts what a run created
type Report struct {
	Cars              int
	Suppliers         int
	SupplierOffers    int
	SupplierDiscounts int
	Showrooms         int
	Customers         int
	CustomerOffers    int
	// ShowroomIDs lists the created showrooms in creation order
	ShowroomIDs []uuid.UUID
}

// CarsRefresher derives a showroom's appropriate cars from its charts
type CarsRefresher interface {
	RefreshAppropriateCars(ctx context.Context, showroomID uuid.UUID) (*engine.RefreshResult, error)
}

// Seeder writes generated aggregates through the transactional repositories
type Seeder struct {
	txScope   engine.TransactionScope
	refresher CarsRefresher
	faker     *gofakeit.Faker
	config    Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewSeeder creates a Seeder. refresher may be nil, in which case showrooms
// keep an empty appropriate car list until the engine refreshes them.
func NewSeeder(txScope engine.TransactionScope, refresher CarsRefresher, config Config, logger *zap.Logger) (*Seeder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		txScope:   txScope,
		refresher: refresher,
		faker:     gofakeit.New(config.Seed),
		config:    config,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Run generates the whole data set in one transaction, then refreshes the
// appropriate cars of every new showroom.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	err := s.txScope.Execute(ctx, func(repos engine.TransactionalRepositories) error {
		cars, err := s.seedCars(ctx, repos.CarRepo(), report)
		if err != nil {
			return err
		}
		if err := s.seedSuppliers(ctx, repos.SupplierRepo(), cars, report); err != nil {
			return err
		}
		if err := s.seedShowrooms(ctx, repos.ShowroomRepo(), cars, report); err != nil {
			return err
		}
		return s.seedCustomers(ctx, repos.CustomerRepo(), cars, report)
	})
	if err != nil {
		return nil, err
	}

	if s.refresher != nil {
		for _, id := range report.ShowroomIDs {
			if _, err := s.refresher.RefreshAppropriateCars(ctx, id); err != nil {
				return report, fmt.Errorf("failed to refresh cars of showroom %s: %w", id, err)
			}
		}
	}

	s.logger.Info("Seed data created",
		zap.Int("cars", report.Cars),
		zap.Int("suppliers", report.Suppliers),
		zap.Int("supplier_offers", report.SupplierOffers),
		zap.Int("supplier_discounts", report.SupplierDiscounts),
		zap.Int("showrooms", report.Showrooms),
		zap.Int("customers", report.Customers),
		zap.Int("customer_offers", report.CustomerOffers),
	)
	return report, nil
}

func (s *Seeder) seedCars(ctx context.Context, repo catalog.CarRepository, report *Report) ([]*catalog.Car, error) {
	brands := catalog.AllBrands()
	transmissions := catalog.AllTransmissions()
	thisYear := s.now().Year()

	cars := make([]*catalog.Car, 0, s.config.Cars)
	for i := 0; i < s.config.Cars; i++ {
		car, err := catalog.NewCar(
			brands[s.faker.Number(0, len(brands)-1)],
			transmissions[s.faker.Number(0, len(transmissions)-1)],
			s.faker.Number(2000, thisYear),
			float64(s.faker.Number(0, 200_000)),
		)
		if err != nil {
			return nil, err
		}
		if err := repo.Save(ctx, car); err != nil {
			return nil, fmt.Errorf("failed to save car: %w", err)
		}
		cars = append(cars, car)
	}
	report.Cars = len(cars)
	return cars, nil
}

func (s *Seeder) seedSuppliers(ctx context.Context, repo supplier.SupplierRepository, cars []*catalog.Car, report *Report) error {
	now := s.now().UTC()
	for i := 0; i < s.config.Suppliers; i++ {
		sup, err := supplier.NewSupplier(
			s.name(s.faker.Company()),
			s.faker.Number(1950, now.Year()),
			s.faker.Number(10, 30),
			s.percent(0.2, 0.5),
		)
		if err != nil {
			return err
		}
		sup.ClearDomainEvents()
		if err := repo.Save(ctx, sup); err != nil {
			return fmt.Errorf("failed to save supplier: %w", err)
		}
		report.Suppliers++

		offered := s.pick(cars, s.config.OffersPerSupplier)
		for _, car := range offered {
			offer, err := supplier.NewCarOffer(sup.ID, car.ID, s.price(1000, 100_000))
			if err != nil {
				return err
			}
			if err := repo.SaveOffer(ctx, offer); err != nil {
				return fmt.Errorf("failed to save supplier offer: %w", err)
			}
			report.SupplierOffers++
		}

		if len(offered) == 0 {
			continue
		}
		covered := make([]uuid.UUID, 0, 2)
		for _, car := range s.pick(offered, 2) {
			covered = append(covered, car.ID)
		}
		start := now
		finish := now.Add(time.Duration(s.faker.Number(1, 5)) * time.Hour)
		discount, err := supplier.NewCarDiscount(sup.ID, s.faker.BuzzWord(), s.faker.Sentence(5), s.percent(0, 0.5), start, finish, covered)
		if err != nil {
			return err
		}
		if err := repo.SaveDiscount(ctx, discount); err != nil {
			return fmt.Errorf("failed to save supplier discount: %w", err)
		}
		report.SupplierDiscounts++
	}
	return nil
}

func (s *Seeder) seedShowrooms(ctx context.Context, repo showroom.ShowroomRepository, cars []*catalog.Car, report *Report) error {
	thisYear := s.now().Year()
	for i := 0; i < s.config.Showrooms; i++ {
		charts, err := s.charts(cars)
		if err != nil {
			return err
		}
		sr, err := showroom.NewShowroom(
			s.name(s.faker.Company()),
			s.faker.CountryAbr(),
			s.faker.Number(1950, thisYear),
			s.price(100_000, 1_000_000),
			charts,
			s.faker.Number(1, 10),
			s.percent(0, 0.3),
		)
		if err != nil {
			return err
		}
		sr.ClearDomainEvents()
		if err := repo.Save(ctx, sr); err != nil {
			return fmt.Errorf("failed to save showroom: %w", err)
		}
		report.Showrooms++
		report.ShowroomIDs = append(report.ShowroomIDs, sr.ID)
	}
	return nil
}

func (s *Seeder) seedCustomers(ctx context.Context, repo customer.CustomerRepository, cars []*catalog.Car, report *Report) error {
	for i := 0; i < s.config.Customers; i++ {
		// the index keeps generated emails unique
		email := fmt.Sprintf("%d.%s", i, s.faker.Email())
		c, err := customer.NewCustomer(s.faker.Name(), email, s.price(10_000, 200_000))
		if err != nil {
			return err
		}
		if err := repo.Save(ctx, c); err != nil {
			return fmt.Errorf("failed to save customer: %w", err)
		}
		report.Customers++

		for _, car := range s.pick(cars, s.config.OffersPerCustomer) {
			offer, err := customer.NewOffer(c.ID, car.ID, s.price(1000, 100_000))
			if err != nil {
				return err
			}
			if err := repo.SaveOffer(ctx, offer); err != nil {
				return fmt.Errorf("failed to save customer offer: %w", err)
			}
			report.CustomerOffers++
		}
	}
	return nil
}

// charts describes two or three cars of the catalog, so every entry resolves
func (s *Seeder) charts(cars []*catalog.Car) (string, error) {
	picked := s.pick(cars, s.faker.Number(2, 3))
	criteria := make([]catalog.CarCriteria, 0, len(picked))
	for _, car := range picked {
		brand := car.Brand
		c := catalog.CarCriteria{Brand: &brand}
		if s.faker.Bool() {
			transmission := car.Transmission
			c.Transmission = &transmission
		}
		if s.faker.Bool() {
			year := car.CreationYear
			c.CreationYear = &year
		}
		criteria = append(criteria, c)
	}
	return catalog.MarshalCharts(criteria)
}

// pick returns up to n distinct elements in random order
func (s *Seeder) pick(cars []*catalog.Car, n int) []*catalog.Car {
	if n > len(cars) {
		n = len(cars)
	}
	shuffled := make([]*catalog.Car, len(cars))
	copy(shuffled, cars)
	for i := 0; i < n; i++ {
		j := s.faker.Number(i, len(shuffled)-1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n]
}

// price and percent both round to cents
func (s *Seeder) price(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(s.faker.Float64Range(min, max)).Round(2)
}

func (s *Seeder) percent(min, max float64) decimal.Decimal {
	return s.price(min, max)
}

func (s *Seeder) name(raw string) string {
	if len(raw) > maxNameLength {
		return raw[:maxNameLength]
	}
	return raw
}
