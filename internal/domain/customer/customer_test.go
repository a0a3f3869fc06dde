package customer

import (
	"errors"
	"testing"

	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	c, err := NewCustomer("Ada Lovelace", "Ada@Example.com", decimal.NewFromInt(5000))
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", c.Email)
	assert.True(t, c.Active())

	_, err = NewCustomer("", "ada@example.com", decimal.Zero)
	assert.Error(t, err)

	_, err = NewCustomer("Ada", "not-an-email", decimal.Zero)
	assert.ErrorContains(t, err, "email")

	_, err = NewCustomer("Ada", "ada@example.com", decimal.NewFromInt(-5))
	assert.ErrorContains(t, err, "Balance")
}

func TestCustomer_Debit(t *testing.T) {
	c, err := NewCustomer("Ada", "ada@example.com", decimal.NewFromInt(5000))
	require.NoError(t, err)

	created := c.UpdatedAt

	require.NoError(t, c.Debit(decimal.NewFromInt(1800)))
	assert.Equal(t, "3200", c.Balance.String())
	assert.Equal(t, 2, c.GetVersion())
	assert.False(t, c.UpdatedAt.Before(created))
	debited := c.UpdatedAt

	err = c.Debit(decimal.NewFromInt(3200))
	assert.True(t, errors.Is(err, shared.ErrInsufficientBalance))
	assert.Equal(t, "3200", c.Balance.String())
	assert.Equal(t, 2, c.GetVersion())
	assert.Equal(t, debited, c.UpdatedAt)
}

func TestOffer_Accepts(t *testing.T) {
	o, err := NewOffer(uuid.New(), uuid.New(), decimal.NewFromInt(2000))
	require.NoError(t, err)

	assert.True(t, o.Accepts(decimal.NewFromInt(1800)))
	assert.False(t, o.Accepts(decimal.NewFromInt(2000)))

	_, err = NewOffer(uuid.New(), uuid.New(), decimal.Zero)
	assert.Error(t, err)
}

func TestCustomerEvents(t *testing.T) {
	c, err := NewCustomer("Ada", "ada@example.com", decimal.NewFromInt(5000))
	require.NoError(t, err)
	o, err := NewOffer(c.ID, uuid.New(), decimal.NewFromInt(2000))
	require.NoError(t, err)

	created := NewCustomerOfferCreatedEvent(o)
	assert.Equal(t, EventTypeCustomerOfferCreated, created.EventType())
	assert.Equal(t, c.ID, created.AggregateID())
	assert.Equal(t, o.ID, created.OfferID)

	c.MarkDeactivated()
	assert.False(t, c.Active())
	require.Len(t, c.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeCustomerDeactivated, c.GetDomainEvents()[0].EventType())
}
