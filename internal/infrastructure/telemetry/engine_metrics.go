package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied.
var ErrMeterNil = &MetricsError{Op: "NewEngineMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics construction error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// EngineMetrics records the outcome of every engine tick
type EngineMetrics struct {
	ticksTotal       *Counter
	tickErrorsTotal  *Counter
	tickDuration     *Histogram
	salesTotal       *Counter
	saleAmount       *Histogram
	discountsExpired *Counter
}

// NewEngineMetrics registers the engine instruments on meter
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &EngineMetrics{}
	var err error

	if m.ticksTotal, err = NewCounter(meter, metricTicks,
		"Completed engine ticks by job kind and outcome", "{ticks}"); err != nil {
		return nil, err
	}
	if m.tickErrorsTotal, err = NewCounter(meter, metricTickErrors,
		"Engine ticks that returned an error", "{ticks}"); err != nil {
		return nil, err
	}
	if m.tickDuration, err = NewHistogram(meter, metricTickDuration,
		"Wall time of a single engine tick", "s"); err != nil {
		return nil, err
	}
	if m.salesTotal, err = NewCounter(meter, metricSales,
		"Purchases executed by the engine", "{sales}"); err != nil {
		return nil, err
	}
	if m.saleAmount, err = NewHistogram(meter, metricSaleAmount,
		"Price paid per executed purchase", "{currency}"); err != nil {
		return nil, err
	}
	if m.discountsExpired, err = NewCounter(meter, metricDiscountsExpired,
		"Discounts deactivated by the expiry sweep", "{discounts}"); err != nil {
		return nil, err
	}

	return m, nil
}

// TickCompleted records a tick that finished without error
func (m *EngineMetrics) TickCompleted(ctx context.Context, kind, outcome string, elapsed time.Duration) {
	m.ticksTotal.Inc(ctx, AttrJobKind.String(kind), AttrOutcome.String(outcome))
	m.tickDuration.RecordDuration(ctx, elapsed, AttrJobKind.String(kind))
}

// TickFailed records a tick that returned an error
func (m *EngineMetrics) TickFailed(ctx context.Context, kind string, elapsed time.Duration) {
	m.tickErrorsTotal.Inc(ctx, AttrJobKind.String(kind))
	m.tickDuration.RecordDuration(ctx, elapsed, AttrJobKind.String(kind))
}

// SaleRecorded records an executed purchase
func (m *EngineMetrics) SaleRecorded(ctx context.Context, kind, priceSource string, amount decimal.Decimal) {
	m.salesTotal.Inc(ctx, AttrJobKind.String(kind), AttrPriceSource.String(priceSource))
	m.saleAmount.RecordAmount(ctx, amount, AttrJobKind.String(kind))
}

// DiscountsExpired records discounts flipped by one sweep of a table
func (m *EngineMetrics) DiscountsExpired(ctx context.Context, table string, count int64) {
	if count == 0 {
		return
	}
	m.discountsExpired.Add(ctx, count, AttrTable.String(table))
}
