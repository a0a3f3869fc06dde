package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/telemetry"
)

func TestNewEngineMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewEngineMetrics(nil)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestEngineMetrics_NoopMeter(t *testing.T) {
	m, err := telemetry.NewEngineMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.TickCompleted(ctx, "replenish", "purchased", 10*time.Millisecond)
		m.TickFailed(ctx, "fulfill", time.Second)
		m.SaleRecorded(ctx, "fulfill", "volume", decimal.NewFromInt(1800))
		m.DiscountsExpired(ctx, "showroom_car_discounts", 2)
	})
}

func TestEngineMetrics_RecordsValues(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	m, err := telemetry.NewEngineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.TickCompleted(ctx, "replenish", "purchased", 5*time.Millisecond)
	m.TickCompleted(ctx, "replenish", "no_op", 5*time.Millisecond)
	m.DiscountsExpired(ctx, "supplier_car_discounts", 3)
	m.DiscountsExpired(ctx, "supplier_car_discounts", 0)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, metric := range scope.Metrics {
			if data, ok := metric.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[metric.Name] += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(2), sums["showroom_engine_ticks_total"])
	assert.Equal(t, int64(3), sums["showroom_engine_discounts_expired_total"])
}

func TestEngineViews_HistogramBuckets(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithView(telemetry.EngineViews()...),
	)
	defer func() { _ = provider.Shutdown(context.Background()) }()

	m, err := telemetry.NewEngineMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.SaleRecorded(ctx, "fulfill", "promo", decimal.NewFromInt(1800))
	m.TickCompleted(ctx, "fulfill", "purchased", 30*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	bounds := map[string][]float64{}
	for _, scope := range rm.ScopeMetrics {
		for _, metric := range scope.Metrics {
			if data, ok := metric.Data.(metricdata.Histogram[float64]); ok {
				require.Len(t, data.DataPoints, 1)
				assert.Equal(t, uint64(1), data.DataPoints[0].Count)
				bounds[metric.Name] = data.DataPoints[0].Bounds
			}
		}
	}

	assert.Equal(t, telemetry.SaleAmountBuckets, bounds["showroom_engine_sale_amount"])
	assert.Equal(t, telemetry.TickDurationBuckets, bounds["showroom_engine_tick_duration_seconds"])
}
