package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDiscount(t *testing.T, name, percent string, cars ...uuid.UUID) Discount {
	t.Helper()
	now := time.Now()
	d, err := NewDiscount(name, "", decimal.RequireFromString(percent), now.Add(-time.Hour), now.Add(time.Hour), cars)
	require.NoError(t, err)
	return d
}

func TestDiscountResolver_Resolve(t *testing.T) {
	resolver := NewDiscountResolver()
	carID := uuid.New()

	t.Run("returns the smallest percent", func(t *testing.T) {
		pool := []Discount{
			mustDiscount(t, "forty", "0.40", carID),
			mustDiscount(t, "ten", "0.10", carID),
			mustDiscount(t, "twenty-five", "0.25", carID),
		}

		best := resolver.Resolve(carID, pool)
		require.NotNil(t, best)
		assert.Equal(t, "ten", best.Name)
		assert.True(t, best.Percent.Equal(decimal.RequireFromString("0.1")))
	})

	t.Run("returns nil for empty pool", func(t *testing.T) {
		assert.Nil(t, resolver.Resolve(carID, nil))
	})

	t.Run("ignores discounts not covering the car", func(t *testing.T) {
		pool := []Discount{
			mustDiscount(t, "other", "0.05", uuid.New()),
			mustDiscount(t, "mine", "0.30", carID),
		}

		best := resolver.Resolve(carID, pool)
		require.NotNil(t, best)
		assert.Equal(t, "mine", best.Name)
	})

	t.Run("ignores inactive discounts", func(t *testing.T) {
		inactive := mustDiscount(t, "inactive", "0.01", carID)
		inactive.Deactivate()
		pool := []Discount{inactive, mustDiscount(t, "active", "0.20", carID)}

		best := resolver.Resolve(carID, pool)
		require.NotNil(t, best)
		assert.Equal(t, "active", best.Name)
	})

	t.Run("first entry wins ties", func(t *testing.T) {
		pool := []Discount{
			mustDiscount(t, "first", "0.15", carID),
			mustDiscount(t, "second", "0.15", carID),
		}

		for i := 0; i < 5; i++ {
			best := resolver.Resolve(carID, pool)
			require.NotNil(t, best)
			assert.Equal(t, "first", best.Name)
		}
	})

	t.Run("returns a copy", func(t *testing.T) {
		pool := []Discount{mustDiscount(t, "only", "0.20", carID)}
		best := resolver.Resolve(carID, pool)
		require.NotNil(t, best)

		best.Name = "changed"
		assert.Equal(t, "only", pool[0].Name)
	})
}

func TestNewDiscount(t *testing.T) {
	now := time.Now()

	t.Run("rejects start equal to finish", func(t *testing.T) {
		_, err := NewDiscount("d", "", decimal.RequireFromString("0.1"), now, now, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "start date must be before finish date")
	})

	t.Run("rejects start after finish", func(t *testing.T) {
		_, err := NewDiscount("d", "", decimal.RequireFromString("0.1"), now, now.Add(-time.Minute), nil)
		require.Error(t, err)
	})

	t.Run("rejects percent above 0.5", func(t *testing.T) {
		_, err := NewDiscount("d", "", decimal.RequireFromString("0.51"), now, now.Add(time.Hour), nil)
		require.Error(t, err)
	})

	t.Run("rejects negative percent", func(t *testing.T) {
		_, err := NewDiscount("d", "", decimal.RequireFromString("-0.01"), now, now.Add(time.Hour), nil)
		require.Error(t, err)
	})

	t.Run("accepts bounds", func(t *testing.T) {
		_, err := NewDiscount("zero", "", decimal.Zero, now, now.Add(time.Hour), nil)
		require.NoError(t, err)
		_, err = NewDiscount("half", "", decimal.RequireFromString("0.5"), now, now.Add(time.Hour), nil)
		require.NoError(t, err)
	})

	t.Run("expires strictly after finish", func(t *testing.T) {
		d, err := NewDiscount("d", "", decimal.RequireFromString("0.1"), now.Add(-time.Hour), now, nil)
		require.NoError(t, err)

		assert.False(t, d.IsExpired(now))
		assert.True(t, d.IsExpired(now.Add(time.Nanosecond)))
	})
}
