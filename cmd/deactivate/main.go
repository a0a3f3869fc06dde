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
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		printUsage()
		os.Exit(2)
	}
	aggregate := args[0]
	id, err := uuid.Parse(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid id %q: %v\n", args[1], err)
		os.Exit(2)
	}

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

	// Deactivating under a running engine must take the same aggregate locks.
	locker, err := cache.NewLockerFactory(cfg.Redis, cfg.Engine.LockWait,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env == "development"),
	).CreateLocker()
	if err != nil {
		log.Fatal("Failed to create aggregate locker", zap.Error(err))
	}

	svc := engine.NewDeactivationService(engine.Runtime{
		TxScope: persistence.NewGormTransactionScope(db.DB),
		Locker:  locker,
		LockTTL: cfg.Engine.LockTTL,
		Logger:  log,
	})

	report, err := svc.Deactivate(context.Background(), aggregate, id)
	if err != nil {
		log.Fatal("Deactivation failed", zap.Error(err))
	}
	if report.Total() == 0 {
		log.Info("Nothing to deactivate, already inactive",
			zap.String("aggregate", aggregate),
			zap.String("id", id.String()),
		)
		return
	}
	for table, rows := range report.Rows {
		log.Info("Deactivated", zap.String("table", table), zap.Int64("rows", rows))
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: deactivate <aggregate> <id>

Soft-deletes an aggregate and every row it owns.

Aggregates:
  %s
  %s
  %s
`, engine.AggregateShowroom, engine.AggregateSupplier, engine.AggregateCustomer)
}
