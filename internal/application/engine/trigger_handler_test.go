package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Twelve-cloud/car-showroom/internal/application/engine"
	"github.com/Twelve-cloud/car-showroom/internal/domain/customer"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/Twelve-cloud/car-showroom/internal/domain/supplier"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(kind string, aggregateID uuid.UUID) error {
	args := m.Called(kind, aggregateID)
	return args.Error(0)
}

func newShowroomAggregate(t *testing.T) *showroom.Showroom {
	t.Helper()
	sr, err := showroom.NewShowroom("Northside Motors", "us", 2012, decimal.NewFromInt(1000), "", 10, decimal.RequireFromString("0.1"))
	require.NoError(t, err)
	return sr
}

func TestTriggerHandler_EventTypes(t *testing.T) {
	h := engine.NewTriggerHandler(new(mockSubmitter), zap.NewNop())

	assert.ElementsMatch(t, []string{
		showroom.EventTypeShowroomCreated,
		showroom.EventTypeShowroomChartsChanged,
		showroom.EventTypeShowroomCarsChanged,
		customer.EventTypeCustomerOfferCreated,
	}, h.EventTypes())
}

func TestTriggerHandler_Handle(t *testing.T) {
	ctx := context.Background()
	sr := newShowroomAggregate(t)
	offer, err := customer.NewOffer(uuid.New(), uuid.New(), decimal.NewFromInt(2000))
	require.NoError(t, err)

	tests := []struct {
		name  string
		event shared.DomainEvent
		kind  string
		id    uuid.UUID
	}{
		{"showroom created", showroom.NewShowroomCreatedEvent(sr), engine.JobKindRefreshCars, sr.ID},
		{"showroom charts changed", showroom.NewShowroomChartsChangedEvent(sr.ID), engine.JobKindRefreshCars, sr.ID},
		{"showroom cars changed", showroom.NewShowroomCarsChangedEvent(sr), engine.JobKindMatchShowroom, sr.ID},
		{"customer offer created", customer.NewCustomerOfferCreatedEvent(offer), engine.JobKindFulfill, offer.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := new(mockSubmitter)
			submitter.On("Submit", tt.kind, tt.id).Return(nil).Once()
			h := engine.NewTriggerHandler(submitter, zap.NewNop())

			err := h.Handle(ctx, tt.event)

			require.NoError(t, err)
			submitter.AssertExpectations(t)
		})
	}
}

func TestTriggerHandler_IgnoresOtherEvents(t *testing.T) {
	submitter := new(mockSubmitter)
	h := engine.NewTriggerHandler(submitter, zap.NewNop())
	sup, err := supplier.NewSupplier("Eastern Parts", 2001, 5, decimal.RequireFromString("0.1"))
	require.NoError(t, err)

	err = h.Handle(context.Background(), supplier.NewSupplierCreatedEvent(sup))

	require.NoError(t, err)
	submitter.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestTriggerHandler_SubmitError(t *testing.T) {
	queueFull := errors.New("job queue is full")
	submitter := new(mockSubmitter)
	sr := newShowroomAggregate(t)
	submitter.On("Submit", engine.JobKindRefreshCars, sr.ID).Return(queueFull)
	h := engine.NewTriggerHandler(submitter, zap.NewNop())

	err := h.Handle(context.Background(), showroom.NewShowroomCreatedEvent(sr))

	assert.ErrorIs(t, err, queueFull)
}
