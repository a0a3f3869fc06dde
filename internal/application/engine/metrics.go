package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Metrics receives the engine's tick and sale measurements.
// telemetry.EngineMetrics is the OpenTelemetry implementation.
type Metrics interface {
	TickCompleted(ctx context.Context, kind, outcome string, elapsed time.Duration)
	TickFailed(ctx context.Context, kind string, elapsed time.Duration)
	SaleRecorded(ctx context.Context, kind, priceSource string, amount decimal.Decimal)
	DiscountsExpired(ctx context.Context, table string, count int64)
}

// NopMetrics discards every measurement
type NopMetrics struct{}

func (NopMetrics) TickCompleted(context.Context, string, string, time.Duration) {}
func (NopMetrics) TickFailed(context.Context, string, time.Duration) {}
func (NopMetrics) SaleRecorded(context.Context, string, string, decimal.Decimal) {}
func (NopMetrics) DiscountsExpired(context.Context, string, int64) {}

var _ Metrics = NopMetrics{}
