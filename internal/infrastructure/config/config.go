package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const envPrefix = "SHOWROOM"

// Config is the full engine configuration. Every key can be overridden through
// SHOWROOM_<SECTION>_<KEY>, e.g. SHOWROOM_ENGINE_LOCK_TTL=45s.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// DatabaseConfig selects postgres or a sqlite file. Lifetimes are in minutes.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"`
}

// DSN builds the driver connection string. For sqlite it is the file path.
func (d *DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// RedisConfig backs the cross-process aggregate locks and the trigger channel.
// With Enabled false the engine only locks in-process and reacts to nothing
// but its own events and the planner.
type RedisConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Password       string `mapstructure:"password"`
	DB             int    `mapstructure:"db"`
	TriggerChannel string `mapstructure:"trigger_channel"`
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type SchedulerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Workers       int           `mapstructure:"workers"`
	QueueSize     int           `mapstructure:"queue_size"`
	JobTimeout    time.Duration `mapstructure:"job_timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

// EngineConfig holds the periodic tick cadence and the aggregate lock budget.
type EngineConfig struct {
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	MatchingInterval  time.Duration `mapstructure:"matching_interval"`
	RefreshInterval   time.Duration `mapstructure:"refresh_interval"`
	ReplenishInterval time.Duration `mapstructure:"replenish_interval"`
	FulfillInterval   time.Duration `mapstructure:"fulfill_interval"`
	LockTTL           time.Duration `mapstructure:"lock_ttl"`
	LockWait          time.Duration `mapstructure:"lock_wait"`
}

type TelemetryConfig struct {
	Enabled               bool          `mapstructure:"enabled"`
	CollectorEndpoint     string        `mapstructure:"collector_endpoint"`
	SamplingRatio         float64       `mapstructure:"sampling_ratio"`
	ServiceName           string        `mapstructure:"service_name"`
	Insecure              bool          `mapstructure:"insecure"`
	MetricsEnabled        bool          `mapstructure:"metrics_enabled"`
	MetricsExportInterval time.Duration `mapstructure:"metrics_export_interval"`
	DBTraceEnabled        bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL          bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh     time.Duration `mapstructure:"db_slow_query_threshold"`
}

// defaults registers every key with viper. Unmarshal only sees environment
// overrides for keys viper already knows, so keys without a meaningful
// default are still registered with their zero value.
var defaults = map[string]any{
	"app.name": "car-showroom-engine",
	"app.env":  "development",

	"database.driver":             DriverPostgres,
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "showroom",
	"database.sslmode":            "disable",
	"database.sqlite_path":        "showroom.db",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.enabled":         false,
	"redis.host":            "localhost",
	"redis.port":            6379,
	"redis.password":        "",
	"redis.db":              0,
	"redis.trigger_channel": "showroom:triggers",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"scheduler.enabled":        true,
	"scheduler.workers":        4,
	"scheduler.queue_size":     1000,
	"scheduler.job_timeout":    30 * time.Second,
	"scheduler.retry_attempts": 3,
	"scheduler.retry_delay":    5 * time.Second,

	"engine.sweep_interval":     time.Minute,
	"engine.matching_interval":  time.Hour,
	"engine.refresh_interval":   6 * time.Hour,
	"engine.replenish_interval": 10 * time.Minute,
	"engine.fulfill_interval":   10 * time.Minute,
	"engine.lock_ttl":           30 * time.Second,
	"engine.lock_wait":          5 * time.Second,

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "car-showroom-engine",
	"telemetry.insecure":                false,
	"telemetry.metrics_enabled":         false,
	"telemetry.metrics_export_interval": time.Minute,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
}

// Load reads config.toml from the working directory or /app, then applies
// SHOWROOM_ environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	db := c.Database
	switch {
	case db.Driver != DriverPostgres && db.Driver != DriverSQLite:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, db.Driver)
	case db.MaxOpenConns <= 0:
		return errors.New("database.max_open_conns must be positive")
	case db.MaxIdleConns < 0:
		return errors.New("database.max_idle_conns cannot be negative")
	case db.MaxIdleConns > db.MaxOpenConns:
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)
	case c.Scheduler.Workers <= 0:
		return errors.New("scheduler.workers must be positive")
	case c.Scheduler.RetryAttempts < 0:
		return errors.New("scheduler.retry_attempts cannot be negative")
	case c.Redis.Enabled && c.Redis.TriggerChannel == "":
		return errors.New("redis.trigger_channel cannot be empty when redis is enabled")
	case c.Engine.LockTTL <= 0:
		return errors.New("engine.lock_ttl must be positive")
	case c.Engine.LockWait > c.Engine.LockTTL:
		return fmt.Errorf("engine.lock_wait (%s) cannot exceed engine.lock_ttl (%s)", c.Engine.LockWait, c.Engine.LockTTL)
	case c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1:
		return fmt.Errorf("telemetry.sampling_ratio must be within [0, 1], got %g", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

// validateProduction rejects settings that are only acceptable on a workstation.
func (c *Config) validateProduction() error {
	switch {
	case c.Database.Driver == DriverSQLite:
		return errors.New("database.driver=sqlite is not allowed in production")
	case c.Database.Password == "":
		return errors.New("database.password is required in production")
	case c.Database.SSLMode == "disable":
		return errors.New("database.sslmode cannot be 'disable' in production")
	case !c.Redis.Enabled:
		return errors.New("redis.enabled must be true in production")
	case c.Telemetry.DBLogFullSQL:
		return errors.New("telemetry.db_log_full_sql must be false in production")
	}
	return nil
}
