package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/Twelve-cloud/car-showroom/internal/application/engine"
	"github.com/Twelve-cloud/car-showroom/internal/domain/pricing"
	"github.com/Twelve-cloud/car-showroom/internal/domain/showroom"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/cache"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/persistence"
	"github.com/Twelve-cloud/car-showroom/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// harness wires every engine service against a private sqlite database
type harness struct {
	db     *gorm.DB
	f      *testutil.Fixtures
	pub    *testutil.RecordingPublisher
	locker *cache.InMemoryAggregateLocker
	rt     engine.Runtime

	selection     *engine.SupplierSelectionService
	replenishment *engine.ReplenishmentService
	fulfillment   *engine.OfferFulfillmentService
	expiry        *engine.DiscountExpiryService
	deactivation  *engine.DeactivationService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	pub := testutil.NewRecordingPublisher()
	locker := cache.NewInMemoryAggregateLocker(0)
	rt := engine.Runtime{
		TxScope:   persistence.NewGormTransactionScope(db),
		Locker:    locker,
		LockTTL:   time.Minute,
		Publisher: pub,
		Logger:    zap.NewNop(),
	}
	resolver := pricing.NewDiscountResolver()
	calculator := pricing.NewVolumeDiscountCalculator()

	return &harness{
		db:            db,
		f:             testutil.NewFixtures(t, db),
		pub:           pub,
		locker:        locker,
		rt:            rt,
		selection:     engine.NewSupplierSelectionService(rt),
		replenishment: engine.NewReplenishmentService(rt, resolver, calculator),
		fulfillment:   engine.NewOfferFulfillmentService(rt, resolver, calculator),
		expiry:        engine.NewDiscountExpiryService(rt),
		deactivation:  engine.NewDeactivationService(rt),
	}
}

func (h *harness) showroom(t *testing.T, id uuid.UUID) *showroom.Showroom {
	t.Helper()
	sr, err := h.f.Showrooms.FindByID(context.Background(), id)
	require.NoError(t, err)
	return sr
}

func (h *harness) countRows(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

// holdLock takes an aggregate lock for the rest of the test
func (h *harness) holdLock(t *testing.T, key string) {
	t.Helper()
	release, err := h.locker.Lock(context.Background(), key, time.Minute)
	require.NoError(t, err)
	t.Cleanup(release)
}

var (
	dayAgo   = time.Now().Add(-24 * time.Hour)
	twoDays  = 48 * time.Hour
	tomorrow = time.Now().Add(24 * time.Hour)
)
