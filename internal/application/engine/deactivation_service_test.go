package engine_test

import (
	"context"
	"testing"

	"github.com/Twelve-cloud/car-showroom/internal/application/engine"
	"github.com/Twelve-cloud/car-showroom/internal/domain/catalog"
	"github.com/Twelve-cloud/car-showroom/internal/domain/customer"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/Twelve-cloud/car-showroom/internal/domain/supplier"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeactivation_Showroom(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	car := h.f.Car(catalog.BrandTesla, catalog.TransmissionAuto, 2021, 100)
	sr := h.f.Showroom("1000", 5, "0.1", "")
	buyer := h.f.Customer("100")
	h.f.ShowroomDiscount(sr.ID, "0.1", dayAgo, tomorrow, car.ID)
	h.f.StockCar(sr.ID, car.ID, "500")
	h.f.StockCar(sr.ID, car.ID, "600")
	h.f.ShowroomSale(sr.ID, buyer.ID, car.ID, "550")

	report, err := h.deactivation.DeactivateShowroom(ctx, sr.ID)

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		showroom.Showroom{}.TableName():    1,
		showroom.CarDiscount{}.TableName(): 1,
		showroom.Car{}.TableName():         2,
		showroom.History{}.TableName():     1,
	}, report.Rows)
	assert.Equal(t, int64(5), report.Total())

	stored := h.showroom(t, sr.ID)
	assert.False(t, stored.Active())
	assert.Equal(t, 2, stored.Version)
	require.Len(t, h.pub.OfType(showroom.EventTypeShowroomDeactivated), 1)

	// the customer side is untouched
	assert.Equal(t, int64(1), h.countRows(t, &customer.Customer{}, "id = ? AND is_active = ?", buyer.ID, true))

	t.Run("already inactive", func(t *testing.T) {
		again, err := h.deactivation.DeactivateShowroom(ctx, sr.ID)

		require.NoError(t, err)
		assert.Zero(t, again.Total())
		assert.Len(t, h.pub.OfType(showroom.EventTypeShowroomDeactivated), 1)
	})
}

func TestDeactivation_Supplier(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	car := h.f.Car(catalog.BrandAudi, catalog.TransmissionManual, 2012, 150000)
	sup := h.f.Supplier(5, "0.1")
	sr := h.f.Showroom("1000", 5, "0.1", "")
	h.f.Offer(sup.ID, car.ID, "300")
	h.f.SupplierDiscount(sup.ID, "0.1", dayAgo, tomorrow, car.ID)
	h.f.SupplierSale(sup.ID, sr.ID, car.ID, "300")
	h.f.SupplierSale(sup.ID, sr.ID, car.ID, "300")

	report, err := h.deactivation.DeactivateSupplier(ctx, sup.ID)

	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		supplier.Supplier{}.TableName():    1,
		supplier.CarDiscount{}.TableName(): 1,
		supplier.CarOffer{}.TableName():    1,
		supplier.History{}.TableName():     2,
	}, report.Rows)
	require.Len(t, h.pub.OfType(supplier.EventTypeSupplierDeactivated), 1)

	// an inactive supplier no longer competes for the showroom
	offer, err := h.selection.FindCheapestOffer(ctx, car.ID)
	require.NoError(t, err)
	assert.Nil(t, offer)
}

func TestDeactivation_Customer(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	car := h.f.Car(catalog.BrandBMW, catalog.TransmissionAuto, 2018, 40000)
	sr := h.f.Showroom("0", 5, "0.1", "")
	buyer := h.f.Customer("5000")
	h.f.CustomerOffer(buyer.ID, car.ID, "1000")
	h.f.CustomerOffer(buyer.ID, car.ID, "2000")
	h.f.ShowroomSale(sr.ID, buyer.ID, car.ID, "900")

	report, err := h.deactivation.DeactivateCustomer(ctx, buyer.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Rows[customer.Customer{}.TableName()])
	assert.Equal(t, int64(2), report.Rows[customer.Offer{}.TableName()])
	require.Len(t, h.pub.OfType(customer.EventTypeCustomerDeactivated), 1)

	ids, err := h.f.Customers.FindActiveOfferIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	// showroom history of the customer belongs to the showroom
	assert.Equal(t, int64(1), h.countRows(t, &showroom.History{}, "customer_id = ? AND is_active = ?", buyer.ID, true))
}

func TestDeactivation_Errors(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	t.Run("unknown showroom", func(t *testing.T) {
		_, err := h.deactivation.DeactivateShowroom(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("busy supplier", func(t *testing.T) {
		sup := h.f.Supplier(5, "0.1")
		h.holdLock(t, shared.AggregateKey("supplier", sup.ID))

		_, err := h.deactivation.DeactivateSupplier(ctx, sup.ID)

		assert.ErrorIs(t, err, shared.ErrLockNotAcquired)
		assert.Empty(t, h.pub.Events())
	})
}

func TestDeactivation_ByName(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	sr := h.f.Showroom("1000", 5, "0.1", "")
	sup := h.f.Supplier(5, "0.1")
	buyer := h.f.Customer("100")

	for _, tc := range []struct {
		aggregate string
		id        uuid.UUID
		eventType string
	}{
		{engine.AggregateShowroom, sr.ID, showroom.EventTypeShowroomDeactivated},
		{engine.AggregateSupplier, sup.ID, supplier.EventTypeSupplierDeactivated},
		{engine.AggregateCustomer, buyer.ID, customer.EventTypeCustomerDeactivated},
	} {
		t.Run(tc.aggregate, func(t *testing.T) {
			report, err := h.deactivation.Deactivate(ctx, tc.aggregate, tc.id)

			require.NoError(t, err)
			assert.Equal(t, int64(1), report.Total())
			assert.Len(t, h.pub.OfType(tc.eventType), 1)
		})
	}

	t.Run("unknown name", func(t *testing.T) {
		_, err := h.deactivation.Deactivate(ctx, "car", uuid.New())
		assert.ErrorIs(t, err, engine.ErrUnknownAggregate)
	})
}
