package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func selectOffers() (string, int64) {
	return `SELECT * FROM "supplier_car_offers" WHERE car_id = 'x'`, 3
}

func TestGormLogger_Options(t *testing.T) {
	gormLog, _ := newObservedGormLogger(gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 500*time.Millisecond, gormLog.slowThreshold)
	assert.False(t, gormLog.ignoreNotFound)

	warnOnly, ok := gormLog.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, warnOnly.level)
	assert.Equal(t, gormlogger.Info, gormLog.level)
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("errors are logged with the statement", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Error)
		gormLog.Trace(context.Background(), time.Now(), selectOffers, errors.New("connection reset"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL Error", logs[0].Message)
		assert.Equal(t, zapcore.ErrorLevel, logs[0].Level)
	})

	t.Run("record not found is ignored by default", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Error)
		gormLog.Trace(context.Background(), time.Now(), selectOffers, gormlogger.ErrRecordNotFound)
		assert.Empty(t, recorded.All())
	})

	t.Run("slow statements warn", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))
		gormLog.Trace(context.Background(), time.Now().Add(-50*time.Millisecond), selectOffers, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Contains(t, logs[0].Message, "SLOW SQL")
	})

	t.Run("statements are logged at debug in info mode", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Info)
		gormLog.Trace(context.Background(), time.Now(), selectOffers, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "SQL", logs[0].Message)
		assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Silent)
		gormLog.Trace(context.Background(), time.Now(), selectOffers, errors.New("boom"))
		assert.Empty(t, recorded.All())
	})

	t.Run("not found is an error when not ignored", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Error, WithIgnoreRecordNotFoundError(false))
		gormLog.Trace(context.Background(), time.Now(), selectOffers, gormlogger.ErrRecordNotFound)
		assert.Len(t, recorded.All(), 1)
	})

	t.Run("fast statements are dropped in warn mode", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Warn)
		gormLog.Trace(context.Background(), time.Now(), selectOffers, nil)
		assert.Empty(t, recorded.All())
	})

	t.Run("job tags are attached", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Info)
		ctx, _ := WithJob(context.Background(), zap.NewNop(), "job-7", "replenish", "showroom-1")
		gormLog.Trace(ctx, time.Now(), selectOffers, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		fields := logs[0].ContextMap()
		assert.Equal(t, "job-7", fields["job_id"])
		assert.Equal(t, "replenish", fields["job_kind"])
		assert.Equal(t, "showroom-1", fields["aggregate_id"])
		assert.Equal(t, int64(3), fields["rows"])
	})

	t.Run("job id is attached", func(t *testing.T) {
		gormLog, recorded := newObservedGormLogger(gormlogger.Info)
		ctx := context.WithValue(context.Background(), JobIDKey, "job-42")
		gormLog.Trace(ctx, time.Now(), selectOffers, nil)

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "job-42", logs[0].ContextMap()["job_id"])
	})
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Warn},
		{"debug", gormlogger.Info},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}

var _ gormlogger.Interface = (*GormLogger)(nil)
