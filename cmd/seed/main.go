package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Twelve-cloud/car-showroom/internal/application/engine"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/cache"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/config"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/logger"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/persistence"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/seed"
	"go.uber.org/zap"
)

func main() {
	sc := seed.DefaultConfig()
	flag.IntVar(&sc.Cars, "cars", sc.Cars, "Number of catalog cars")
	flag.IntVar(&sc.Suppliers, "suppliers", sc.Suppliers, "Number of suppliers")
	flag.IntVar(&sc.OffersPerSupplier, "supplier-offers", sc.OffersPerSupplier, "Cars offered by each supplier")
	flag.IntVar(&sc.Showrooms, "showrooms", sc.Showrooms, "Number of showrooms")
	flag.IntVar(&sc.Customers, "customers", sc.Customers, "Number of customers")
	flag.IntVar(&sc.OffersPerCustomer, "customer-offers", sc.OffersPerCustomer, "Standing offers per customer")
	flag.Uint64Var(&sc.Seed, "seed", 0, "Random seed (0 = random)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level)))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if db.Driver() == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to create schema", zap.Error(err))
		}
	}

	// A running engine may already be refreshing showrooms, so share its locks when Redis is up.
	locker, err := cache.NewLockerFactory(cfg.Redis, cfg.Engine.LockWait,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	).CreateLocker()
	if err != nil {
		log.Fatal("Failed to create aggregate locker", zap.Error(err))
	}

	rt := engine.Runtime{
		TxScope: persistence.NewGormTransactionScope(db.DB),
		Locker:  locker,
		LockTTL: cfg.Engine.LockTTL,
		Logger:  log,
	}
	seeder, err := seed.NewSeeder(rt.TxScope, engine.NewSupplierSelectionService(rt), sc, log)
	if err != nil {
		log.Fatal("Invalid seed options", zap.Error(err))
	}

	if _, err := seeder.Run(context.Background()); err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
}
