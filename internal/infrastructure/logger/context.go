package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// JobIDKey is the context key for the scheduler job ID
	JobIDKey contextKey = "job_id"
	// JobKindKey is the context key for the kind of tick being run
	JobKindKey contextKey = "job_kind"
	// AggregateIDKey is the context key for the aggregate the tick targets
	AggregateIDKey contextKey = "aggregate_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, or a no-op logger if none is attached
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithJob tags the context and logger with the job being executed
func WithJob(ctx context.Context, logger *zap.Logger, jobID, kind, aggregateID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, JobIDKey, jobID)
	ctx = context.WithValue(ctx, JobKindKey, kind)
	if aggregateID != "" {
		ctx = context.WithValue(ctx, AggregateIDKey, aggregateID)
	}
	enriched := WithTraceContext(ctx, logger.With(jobFields(ctx)...))
	return WithContext(ctx, enriched), enriched
}

// jobFields returns the job tags carried by ctx
func jobFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 3)
	for _, key := range []contextKey{JobIDKey, JobKindKey, AggregateIDKey} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			fields = append(fields, zap.String(string(key), v))
		}
	}
	return fields
}

// GetJobID retrieves the job ID from context
func GetJobID(ctx context.Context) string {
	if jobID, ok := ctx.Value(JobIDKey).(string); ok {
		return jobID
	}
	return ""
}

// WithTraceContext adds trace_id and span_id from the context's span.
// The logger is returned unchanged when no valid span exists.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
}
