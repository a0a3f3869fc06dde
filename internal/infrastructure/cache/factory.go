package cache

import (
	"fmt"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LockerFactory creates aggregate lockers based on configuration
type LockerFactory struct {
	redisConfig           config.RedisConfig
	wait                  time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockerFactoryOption is a functional option for configuring the factory
type LockerFactoryOption func(*LockerFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-process locker when Redis is unavailable.
// Default is false: a multi-instance deployment without shared locks could double-spend a balance.
func WithInMemoryFallback(allow bool) LockerFactoryOption {
	return func(f *LockerFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockerFactory creates a new factory
func NewLockerFactory(cfg config.RedisConfig, wait time.Duration, opts ...LockerFactoryOption) *LockerFactory {
	f := &LockerFactory{
		redisConfig: cfg,
		wait:        wait,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateLocker returns a Redis locker when Redis is enabled, an in-process one otherwise
func (f *LockerFactory) CreateLocker() (shared.AggregateLocker, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory aggregate locker")
		return NewInMemoryAggregateLocker(f.wait), nil
	}

	locker, err := NewRedisAggregateLocker(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.wait)
	if err == nil {
		f.logger.Info("Using Redis aggregate locker", zap.String("addr", f.redisConfig.Addr()))
		return locker, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for aggregate locks but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory aggregate locker. "+
		"Ticks are only serialized within this process.",
		zap.Error(err),
	)
	return NewInMemoryAggregateLocker(f.wait), nil
}
