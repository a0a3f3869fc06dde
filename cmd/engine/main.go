package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/application/engine"
	"github.com/Twelve-cloud/car-showroom/internal/domain/pricing"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/cache"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/config"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/event"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/logger"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/migration"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/persistence"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/scheduler"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/telemetry"
	"github.com/Twelve-cloud/car-showroom/migrations"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting showroom engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("database", cfg.Database.Driver),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdown(log, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdown(log, "meter provider", meterProvider.Shutdown)

	engineMetrics, err := telemetry.NewEngineMetrics(meterProvider.Meter(cfg.Telemetry.ServiceName))
	if err != nil {
		log.Fatal("Failed to create engine metrics", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        cfg.Database.Driver,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	if err := prepareSchema(db, log); err != nil {
		log.Fatal("Failed to prepare schema", zap.Error(err))
	}
	log.Info("Database ready")

	lockers := cache.NewLockerFactory(cfg.Redis, cfg.Engine.LockWait,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env == "development"),
	)
	locker, err := lockers.CreateLocker()
	if err != nil {
		log.Fatal("Failed to create aggregate locker", zap.Error(err))
	}

	eventBus := event.NewInMemoryEventBus(log)

	rt := engine.Runtime{
		TxScope:   persistence.NewGormTransactionScope(db.DB),
		Locker:    locker,
		LockTTL:   cfg.Engine.LockTTL,
		Publisher: eventBus,
		Metrics:   engineMetrics,
		Logger:    log,
	}
	resolver := pricing.NewDiscountResolver()
	calculator := pricing.NewVolumeDiscountCalculator()

	showroomRepo := persistence.NewGormShowroomRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)

	executor := engine.NewExecutor(
		engine.NewSupplierSelectionService(rt),
		engine.NewReplenishmentService(rt, resolver, calculator),
		engine.NewOfferFulfillmentService(rt, resolver, calculator),
		engine.NewDiscountExpiryService(rt),
		showroomRepo.FindActiveIDs,
		engineMetrics,
		log,
	)

	if !cfg.Scheduler.Enabled {
		log.Warn("Scheduler disabled, no ticks will run")
		return
	}

	jobs, err := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Workers:       cfg.Scheduler.Workers,
		QueueSize:     cfg.Scheduler.QueueSize,
		JobTimeout:    cfg.Scheduler.JobTimeout,
		RetryAttempts: cfg.Scheduler.RetryAttempts,
		RetryDelay:    cfg.Scheduler.RetryDelay,
	}, executor, log)
	if err != nil {
		log.Fatal("Failed to create scheduler", zap.Error(err))
	}

	trigger := engine.NewTriggerHandler(jobs, log)
	eventBus.Subscribe(trigger, trigger.EventTypes()...)
	log.Info("Event handlers registered", zap.Strings("trigger_events", trigger.EventTypes()))

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if err := jobs.Start(ctx); err != nil {
		log.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer func() {
		if err := jobs.Stop(context.Background()); err != nil {
			log.Error("Error stopping scheduler", zap.Error(err))
		}
	}()

	if cfg.Redis.Enabled {
		stopTriggers, err := startTriggerSubscriber(ctx, cfg.Redis, eventBus, log)
		if err != nil {
			log.Fatal("Failed to subscribe to triggers", zap.Error(err))
		}
		defer stopTriggers()
	} else {
		log.Info("Redis disabled, external triggers are not received")
	}

	planner, err := scheduler.NewPlanner(jobs, log,
		scheduler.Plan{
			Kind:       engine.JobKindDiscountSweep,
			Interval:   cfg.Engine.SweepInterval,
			Targets:    scheduler.Singleton,
			RunOnStart: true,
		},
		scheduler.Plan{
			Kind:       engine.JobKindMatchAll,
			Interval:   cfg.Engine.MatchingInterval,
			Targets:    scheduler.Singleton,
			RunOnStart: true,
		},
		scheduler.Plan{
			Kind:     engine.JobKindRefreshCars,
			Interval: cfg.Engine.RefreshInterval,
			Targets:  showroomRepo.FindActiveIDs,
		},
		scheduler.Plan{
			Kind:     engine.JobKindReplenish,
			Interval: cfg.Engine.ReplenishInterval,
			Targets:  showroomRepo.FindActiveIDs,
		},
		scheduler.Plan{
			Kind:     engine.JobKindFulfill,
			Interval: cfg.Engine.FulfillInterval,
			Targets:  customerRepo.FindActiveOfferIDs,
		},
	)
	if err != nil {
		log.Fatal("Failed to create planner", zap.Error(err))
	}
	if err := planner.Start(ctx); err != nil {
		log.Fatal("Failed to start planner", zap.Error(err))
	}
	log.Info("Engine started",
		zap.Int("workers", cfg.Scheduler.Workers),
		zap.Duration("sweep_interval", cfg.Engine.SweepInterval),
		zap.Duration("matching_interval", cfg.Engine.MatchingInterval),
		zap.Duration("refresh_interval", cfg.Engine.RefreshInterval),
		zap.Duration("replenish_interval", cfg.Engine.ReplenishInterval),
		zap.Duration("fulfill_interval", cfg.Engine.FulfillInterval),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down engine...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := planner.Stop(stopCtx); err != nil {
		log.Error("Error stopping planner", zap.Error(err))
	}
	log.Info("Engine exited gracefully")
}

// startTriggerSubscriber relays the CRUD layer's trigger messages onto the bus.
// The returned func unsubscribes and closes the dedicated client.
func startTriggerSubscriber(ctx context.Context, cfg config.RedisConfig, bus shared.EventPublisher, log *zap.Logger) (func(), error) {
	client, err := cache.NewRedisClient(cache.RedisConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, err
	}

	sub := event.NewRedisTriggerSubscriber(client, cfg.TriggerChannel, bus, log)
	if err := sub.Start(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sub.Stop(stopCtx); err != nil {
			log.Error("Error stopping trigger subscriber", zap.Error(err))
		}
		if err := client.Close(); err != nil {
			log.Error("Error closing trigger client", zap.Error(err))
		}
	}, nil
}

// prepareSchema applies the embedded SQL migrations on postgres and
// creates the schema from the models on sqlite.
func prepareSchema(db *persistence.Database, log *zap.Logger) error {
	if db.Driver() == config.DriverSQLite {
		return db.AutoMigrate()
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, migrations.FS, log)
	if err != nil {
		return err
	}
	// Closing the migrator would close the shared connection pool too.
	return m.Up()
}

func shutdown(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
