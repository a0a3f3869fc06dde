package supplier

import (
	"testing"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSupplier(t *testing.T) {
	t.Run("creates active supplier with event", func(t *testing.T) {
		s, err := NewSupplier("Northwind Motors", 2001, DefaultNumberOfSales, DefaultUniqueCustomerDiscount)
		require.NoError(t, err)
		assert.True(t, s.Active())
		assert.Equal(t, 1, s.GetVersion())
		assert.Equal(t, 20, s.VolumeTerms().Threshold)
		assert.True(t, s.VolumeTerms().Fraction.Equal(decimal.RequireFromString("0.2")))

		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeSupplierCreated, events[0].EventType())
		assert.Equal(t, s.ID, events[0].AggregateID())
	})

	t.Run("rejects blank name", func(t *testing.T) {
		_, err := NewSupplier("  ", 2001, 20, DefaultUniqueCustomerDiscount)
		assert.ErrorContains(t, err, "name")
	})

	t.Run("rejects year before 1900", func(t *testing.T) {
		_, err := NewSupplier("Old", 1850, 20, DefaultUniqueCustomerDiscount)
		assert.ErrorContains(t, err, "Creation year")
	})

	t.Run("rejects unique discount above half", func(t *testing.T) {
		_, err := NewSupplier("Greedy", 2001, 20, decimal.RequireFromString("0.51"))
		assert.ErrorContains(t, err, "Percent")
	})

	t.Run("rejects negative sales threshold", func(t *testing.T) {
		_, err := NewSupplier("Neg", 2001, -1, DefaultUniqueCustomerDiscount)
		assert.ErrorContains(t, err, "sales")
	})
}

func TestSupplier_MarkDeactivated(t *testing.T) {
	s, err := NewSupplier("Northwind Motors", 2001, 20, DefaultUniqueCustomerDiscount)
	require.NoError(t, err)
	s.ClearDomainEvents()

	s.MarkDeactivated()

	assert.False(t, s.Active())
	assert.Equal(t, 2, s.GetVersion())
	events := s.PullDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeSupplierDeactivated, events[0].EventType())
	assert.Empty(t, s.GetDomainEvents())
}

func TestNewCarOffer(t *testing.T) {
	_, err := NewCarOffer(uuid.New(), uuid.New(), decimal.NewFromInt(-1))
	assert.Error(t, err)

	offer, err := NewCarOffer(uuid.New(), uuid.New(), decimal.NewFromInt(1000))
	require.NoError(t, err)
	assert.True(t, offer.Active())
}

func TestNewCarDiscount(t *testing.T) {
	supplierID := uuid.New()
	car := uuid.New()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	d, err := NewCarDiscount(supplierID, "Spring", "", decimal.RequireFromString("0.1"), start, start.Add(time.Hour), []uuid.UUID{car})
	require.NoError(t, err)
	assert.Equal(t, supplierID, d.SupplierID)
	assert.True(t, d.Covers(car))

	_, err = NewCarDiscount(supplierID, "Backwards", "", decimal.RequireFromString("0.1"), start, start, nil)
	assert.True(t, isCode(err, "INVALID_DISCOUNT_PERIOD"))

	terms := Terms([]CarDiscount{*d})
	require.Len(t, terms, 1)
	assert.Equal(t, d.ID, terms[0].ID)
}

func isCode(err error, code string) bool {
	de, ok := err.(*shared.DomainError)
	return ok && de.Code == code
}
