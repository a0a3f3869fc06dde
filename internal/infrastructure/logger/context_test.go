package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("returns attached logger", func(t *testing.T) {
		base := zap.NewExample()
		ctx := WithContext(context.Background(), base)
		assert.Same(t, base, FromContext(ctx))
	})

	t.Run("falls back to no-op", func(t *testing.T) {
		l := FromContext(context.Background())
		require.NotNil(t, l)
		l.Info("dropped")
	})

	t.Run("wrong value type falls back to no-op", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
		assert.NotNil(t, FromContext(ctx))
	})
}

func TestWithJob(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx, l := WithJob(context.Background(), zap.New(core), "job-1", "replenish", "0b5c")

	assert.Equal(t, "job-1", GetJobID(ctx))
	l.Info("tick")
	FromContext(ctx).Info("from context")

	logs := recorded.All()
	require.Len(t, logs, 2)
	for _, entry := range logs {
		fields := entry.ContextMap()
		assert.Equal(t, "job-1", fields["job_id"])
		assert.Equal(t, "replenish", fields["job_kind"])
		assert.Equal(t, "0b5c", fields["aggregate_id"])
	}
}

func TestWithJob_NoAggregate(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	_, l := WithJob(context.Background(), zap.New(core), "job-2", "sweep", "")
	l.Info("tick")

	_, ok := recorded.All()[0].ContextMap()["aggregate_id"]
	assert.False(t, ok)
}

func TestWithTraceContext(t *testing.T) {
	t.Run("no span keeps logger", func(t *testing.T) {
		base := zap.NewNop()
		assert.Same(t, base, WithTraceContext(context.Background(), base))
	})

	t.Run("valid span adds ids", func(t *testing.T) {
		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		sc := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), sc)

		core, recorded := observer.New(zapcore.InfoLevel)
		WithTraceContext(ctx, zap.New(core)).Info("traced")

		fields := recorded.All()[0].ContextMap()
		assert.Equal(t, traceID.String(), fields["trace_id"])
		assert.Equal(t, spanID.String(), fields["span_id"])
	})
}
