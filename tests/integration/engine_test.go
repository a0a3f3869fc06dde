//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/application/engine"
	"github.com/Twelve-cloud/car-showroom/internal/domain/catalog"
	"github.com/Twelve-cloud/car-showroom/internal/domain/customer"
	"github.com/Twelve-cloud/car-showroom/internal/domain/pricing"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/cache"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/persistence"
	"github.com/Twelve-cloud/car-showroom/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type services struct {
	selection     *engine.SupplierSelectionService
	replenishment *engine.ReplenishmentService
	fulfillment   *engine.OfferFulfillmentService
	expiry        *engine.DiscountExpiryService
	pub           *testutil.RecordingPublisher
}

func newServices(tdb *TestDB, locker shared.AggregateLocker) *services {
	pub := testutil.NewRecordingPublisher()
	rt := engine.Runtime{
		TxScope:   persistence.NewGormTransactionScope(tdb.DB),
		Locker:    locker,
		LockTTL:   time.Minute,
		Publisher: pub,
		Logger:    zap.NewNop(),
	}
	resolver := pricing.NewDiscountResolver()
	calculator := pricing.NewVolumeDiscountCalculator()
	return &services{
		selection:     engine.NewSupplierSelectionService(rt),
		replenishment: engine.NewReplenishmentService(rt, resolver, calculator),
		fulfillment:   engine.NewOfferFulfillmentService(rt, resolver, calculator),
		expiry:        engine.NewDiscountExpiryService(rt),
		pub:           pub,
	}
}

func TestEngine_SupplyToCustomer_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb, cache.NewInMemoryAggregateLocker(time.Second))
	f := testutil.NewFixtures(t, tdb.DB)
	ctx := context.Background()

	car := f.Car(catalog.BrandBMW, catalog.TransmissionAuto, 2020, 15000)
	cheap := f.Supplier(20, "0.2")
	pricey := f.Supplier(20, "0.2")
	f.Offer(cheap.ID, car.ID, "1000")
	f.Offer(pricey.ID, car.ID, "1200")

	sr := f.Showroom("5000", 10, "0", `[{"brand": "bmw"}]`)
	refreshed, err := svc.selection.RefreshAppropriateCars(ctx, sr.ID)
	require.NoError(t, err)
	require.Len(t, refreshed.CarIDs, 1)
	assert.Equal(t, car.ID, refreshed.CarIDs[0])

	matched, err := svc.selection.MatchShowroom(ctx, sr.ID)
	require.NoError(t, err)
	assert.Equal(t, cheap.ID, matched.Assignments[car.ID])

	bought, err := svc.replenishment.Replenish(ctx, sr.ID)
	require.NoError(t, err)
	require.Equal(t, engine.OutcomePurchased, bought.Outcome)
	assert.Equal(t, cheap.ID, bought.SupplierID)
	assert.True(t, bought.BalanceAfter.Equal(testutil.Money("4000")))

	buyer := f.Customer("3000")
	offer := f.CustomerOffer(buyer.ID, car.ID, "2000")

	sold, err := svc.fulfillment.Fulfill(ctx, offer.ID)
	require.NoError(t, err)
	require.Equal(t, engine.OutcomePurchased, sold.Outcome)
	assert.Equal(t, bought.ShowroomCarID, sold.ShowroomCarID)
	assert.True(t, sold.Price.Equal(testutil.Money("1000")))
	assert.True(t, sold.BalanceAfter.Equal(testutil.Money("2000")))

	history, err := f.Customers.FindHistory(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, sr.Name, history[0].Showroom)

	// the only unit is gone, so the standing offer waits
	again, err := svc.fulfillment.Fulfill(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeNoInventory, again.Outcome)

	assert.Len(t, svc.pub.OfType(showroom.EventTypeShowroomCarPurchased), 1)
	assert.Len(t, svc.pub.OfType(customer.EventTypeCustomerCarPurchased), 1)
}

func TestEngine_DiscountSweep_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	svc := newServices(tdb, cache.NewInMemoryAggregateLocker(time.Second))
	f := testutil.NewFixtures(t, tdb.DB)
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	car := f.Car(catalog.BrandAudi, catalog.TransmissionManual, 2018, 40000)
	sup := f.Supplier(10, "0.2")
	sr := f.Showroom("1000", 1, "0", "")

	f.SupplierDiscount(sup.ID, "0.1", now.Add(-2*time.Hour), now.Add(-time.Hour), car.ID)
	f.SupplierDiscount(sup.ID, "0.2", now.Add(-time.Hour), now.Add(time.Hour), car.ID)
	f.ShowroomDiscount(sr.ID, "0.3", now.Add(-2*time.Hour), now.Add(-time.Minute), car.ID)

	stats, err := svc.expiry.SweepAt(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.SupplierDiscounts)
	assert.Equal(t, int64(1), stats.ShowroomDiscounts)

	stats, err = svc.expiry.SweepAt(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, stats.Total())
}

func TestEngine_ConcurrentFulfillment_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	client := NewTestRedis(t)
	f := testutil.NewFixtures(t, tdb.DB)
	ctx := context.Background()

	car := f.Car(catalog.BrandTesla, catalog.TransmissionAuto, 2023, 100)
	sr := f.Showroom("0", 100, "0", "")
	for i := 0; i < 5; i++ {
		f.StockCar(sr.ID, car.ID, "400")
	}
	buyer := f.Customer("1000")
	offer := f.CustomerOffer(buyer.ID, car.ID, "500")

	// every worker has its own locker, as separate engine processes would
	var wg sync.WaitGroup
	results := make(chan engine.Outcome, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc := newServices(tdb, cache.NewRedisAggregateLockerWithClient(client, "", 30*time.Second))
			result, err := svc.fulfillment.Fulfill(ctx, offer.ID)
			if assert.NoError(t, err) {
				results <- result.Outcome
			}
		}()
	}
	wg.Wait()
	close(results)

	counts := map[engine.Outcome]int{}
	for outcome := range results {
		counts[outcome]++
	}
	assert.Equal(t, 2, counts[engine.OutcomePurchased])
	assert.Equal(t, 3, counts[engine.OutcomeInsufficientBalance])

	stored, err := f.Customers.FindByID(ctx, buyer.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(testutil.Money("200")))
}
