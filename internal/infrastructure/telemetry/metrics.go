package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// DefaultMetricsExportInterval is used when MetricsConfig.ExportInterval is unset
const DefaultMetricsExportInterval = 60 * time.Second

// Engine instrument names
const (
	metricTicks            = "showroom_engine_ticks_total"
	metricTickErrors       = "showroom_engine_tick_errors_total"
	metricTickDuration     = "showroom_engine_tick_duration_seconds"
	metricSales            = "showroom_engine_sales_total"
	metricSaleAmount       = "showroom_engine_sale_amount"
	metricDiscountsExpired = "showroom_engine_discounts_expired_total"
)

// Attribute keys shared by the engine instruments
var (
	AttrJobKind     = attribute.Key("job_kind")
	AttrOutcome     = attribute.Key("outcome")
	AttrPriceSource = attribute.Key("price_source")
	AttrTable       = attribute.Key("db.table")
)

// TickDurationBuckets are the tick duration histogram boundaries, in seconds
var TickDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// SaleAmountBuckets are the sale price histogram boundaries
var SaleAmountBuckets = []float64{1000, 5000, 10000, 25000, 50000, 100000}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration
	ServiceName       string
	Insecure          bool
}

// MeterProvider owns the OTLP metrics pipeline of the engine process
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider exports metrics over OTLP gRPC and installs the provider globally.
// Disabled metrics leave the global no-op provider in place.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger}
	if !cfg.Enabled {
		logger.Info("Metrics disabled, engine instruments are no-ops")
		return mp, nil
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = DefaultMetricsExportInterval
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithView(EngineViews()...),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// EngineViews pins the bucket boundaries of the engine histograms
func EngineViews() []sdkmetric.View {
	return []sdkmetric.View{
		bucketView(metricTickDuration, TickDurationBuckets),
		bucketView(metricSaleAmount, SaleAmountBuckets),
	}
}

func bucketView(instrument string, bounds []float64) sdkmetric.View {
	return sdkmetric.NewView(
		sdkmetric.Instrument{Name: instrument},
		sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: bounds}},
	)
}

// Shutdown flushes pending metrics and stops the exporter
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	return shutdownProvider(ctx, "meter provider", mp.logger, mp.provider.Shutdown)
}

// Meter returns a named meter, falling back to the global provider when disabled
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// IsEnabled returns whether metrics are exported.
func (mp *MeterProvider) IsEnabled() bool {
	return mp.provider != nil
}

// shutdownProvider bounds a provider flush to 10s
func shutdownProvider(ctx context.Context, name string, logger *zap.Logger, shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown %s: %w", name, err)
	}
	logger.Info("OpenTelemetry " + name + " shutdown complete")
	return nil
}

// Counter wraps an int64 counter
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a Counter
func NewCounter(meter metric.Meter, name, description, unit string) (*Counter, error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return &Counter{counter: c}, nil
}

// Add increments the counter by value
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Inc increments the counter by 1
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.Add(ctx, 1, attrs...)
}

// Histogram wraps a float64 histogram
type Histogram struct {
	histogram metric.Float64Histogram
}

// NewHistogram creates a Histogram. Bucket boundaries come from EngineViews.
func NewHistogram(meter metric.Meter, name, description, unit string) (*Histogram, error) {
	h, err := meter.Float64Histogram(name, metric.WithDescription(description), metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram %s: %w", name, err)
	}
	return &Histogram{histogram: h}, nil
}

// RecordDuration records d in seconds
func (h *Histogram) RecordDuration(ctx context.Context, d time.Duration, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAmount records a money amount
func (h *Histogram) RecordAmount(ctx context.Context, amount decimal.Decimal, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, amount.InexactFloat64(), metric.WithAttributes(attrs...))
}
