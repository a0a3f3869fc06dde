package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Twelve-cloud/car-showroom/internal/domain/catalog"
	"github.com/Twelve-cloud/car-showroom/internal/domain/shared"
	"github.com/Twelve-cloud/car-showroom/internal/domain/supplier"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/persistence"
	"github.com/Twelve-cloud/car-showroom/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSupplierRepository_FindActiveListingsForCar(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixtures(t, testutil.NewSQLiteDB(t))
	car := f.Car(catalog.BrandAudi, catalog.TransmissionAuto, 2020, 100)
	other := f.Car(catalog.BrandBMW, catalog.TransmissionAuto, 2020, 100)

	first := f.Supplier(10, "0.1")
	second := f.Supplier(20, "0.2")
	gone := f.Supplier(5, "0.05")

	o1 := f.Offer(first.ID, car.ID, "1000")
	o2 := f.Offer(second.ID, car.ID, "900")
	f.Offer(first.ID, other.ID, "100")
	f.Offer(gone.ID, car.ID, "10")
	sold := f.Offer(second.ID, car.ID, "800")
	require.NoError(t, f.Suppliers.DeactivateOffer(ctx, sold.ID))
	_, err := f.Suppliers.DeactivateCascade(ctx, gone.ID)
	require.NoError(t, err)

	listings, err := f.Suppliers.FindActiveListingsForCar(ctx, car.ID)

	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, o1.ID, listings[0].Offer.ID)
	assert.Equal(t, first.ID, listings[0].Supplier.ID)
	assert.Equal(t, o2.ID, listings[1].Offer.ID)
	assert.Equal(t, 20, listings[1].Supplier.NumberOfSales)

	t.Run("no listings", func(t *testing.T) {
		listings, err := f.Suppliers.FindActiveListingsForCar(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, listings)
	})
}

func TestGormSupplierRepository_MaxActiveNumberOfSales(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixtures(t, testutil.NewSQLiteDB(t))

	anchor, err := f.Suppliers.MaxActiveNumberOfSales(ctx)
	require.NoError(t, err)
	assert.Zero(t, anchor)

	f.Supplier(10, "0.1")
	top := f.Supplier(40, "0.1")
	f.Supplier(25, "0.1")
	anchor, err = f.Suppliers.MaxActiveNumberOfSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40, anchor)

	_, err = f.Suppliers.DeactivateCascade(ctx, top.ID)
	require.NoError(t, err)
	anchor, err = f.Suppliers.MaxActiveNumberOfSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, anchor)
}

func TestGormSupplierRepository_Offers(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixtures(t, testutil.NewSQLiteDB(t))
	car := f.Car(catalog.BrandTesla, catalog.TransmissionAuto, 2023, 0)
	sup := f.Supplier(10, "0.1")
	older := f.Offer(sup.ID, car.ID, "500")
	f.Offer(sup.ID, car.ID, "400")

	offer, err := f.Suppliers.FindActiveOffer(ctx, sup.ID, car.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, offer.ID)

	require.NoError(t, f.Suppliers.DeactivateOffer(ctx, older.ID))
	assert.ErrorIs(t, f.Suppliers.DeactivateOffer(ctx, older.ID), shared.ErrConcurrencyConflict)

	offer, err = f.Suppliers.FindActiveOffer(ctx, sup.ID, car.ID)
	require.NoError(t, err)
	assert.Equal(t, "400", offer.Price.StringFixed(0))

	_, err = f.Suppliers.FindActiveOffer(ctx, sup.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSupplierRepository_Discounts(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixtures(t, testutil.NewSQLiteDB(t))
	car := f.Car(catalog.BrandAudi, catalog.TransmissionManual, 2011, 1000)
	other := f.Car(catalog.BrandAudi, catalog.TransmissionManual, 2012, 1000)
	sup := f.Supplier(10, "0.1")
	rival := f.Supplier(10, "0.1")
	now := time.Now()

	both := f.SupplierDiscount(sup.ID, "0.2", now.Add(-time.Hour), now.Add(time.Hour), car.ID, other.ID)
	f.SupplierDiscount(sup.ID, "0.3", now.Add(-time.Hour), now.Add(time.Hour), other.ID)
	f.SupplierDiscount(rival.ID, "0.5", now.Add(-time.Hour), now.Add(time.Hour), car.ID)

	discounts, err := f.Suppliers.FindActiveDiscountsForCar(ctx, sup.ID, car.ID, now)

	require.NoError(t, err)
	require.Len(t, discounts, 1)
	assert.Equal(t, both.ID, discounts[0].ID)
	assert.ElementsMatch(t, []uuid.UUID{car.ID, other.ID}, discounts[0].CarIDs)

	t.Run("saving again rewrites covered cars", func(t *testing.T) {
		both.CarIDs = []uuid.UUID{other.ID}
		require.NoError(t, f.Suppliers.SaveDiscount(ctx, both))

		discounts, err := f.Suppliers.FindActiveDiscountsForCar(ctx, sup.ID, car.ID, now)
		require.NoError(t, err)
		assert.Empty(t, discounts)
	})

	t.Run("finished but unswept discount is left out", func(t *testing.T) {
		late := f.Car(catalog.BrandAudi, catalog.TransmissionManual, 2013, 1000)
		f.SupplierDiscount(sup.ID, "0.4", now.Add(-2*time.Hour), now.Add(-time.Hour), late.ID)
		live := f.SupplierDiscount(sup.ID, "0.1", now.Add(-2*time.Hour), now.Add(time.Hour), late.ID)

		discounts, err := f.Suppliers.FindActiveDiscountsForCar(ctx, sup.ID, late.ID, now)
		require.NoError(t, err)
		require.Len(t, discounts, 1)
		assert.Equal(t, live.ID, discounts[0].ID)

		discounts, err = f.Suppliers.FindActiveDiscountsForCar(ctx, sup.ID, late.ID, now.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, discounts)
	})
}

func TestGormSupplierRepository_CountActiveHistory(t *testing.T) {
	ctx := context.Background()
	f := testutil.NewFixtures(t, testutil.NewSQLiteDB(t))
	car := f.Car(catalog.BrandAudi, catalog.TransmissionManual, 2011, 1000)
	sup := f.Supplier(10, "0.1")
	sr := f.Showroom("0", 10, "0.1", "")
	f.SupplierSale(sup.ID, sr.ID, car.ID, "100")
	f.SupplierSale(sup.ID, sr.ID, car.ID, "100")
	f.SupplierSale(sup.ID, uuid.New(), car.ID, "100")

	n, err := f.Suppliers.CountActiveHistory(ctx, sup.ID, sr.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestGormSupplierRepository_FindActiveOfferLocksRow(t *testing.T) {
	db := testutil.NewMockDB(t)
	defer db.Close()
	repo := persistence.NewGormSupplierRepository(db.DB)
	supplierID, carID, offerID := uuid.New(), uuid.New(), uuid.New()

	db.Mock.ExpectQuery(`SELECT \* FROM "supplier_car_offers" WHERE \(?supplier_id = \$1 AND car_id = \$2 AND is_active = \$3\)? ORDER BY created_at ASC, id ASC,"supplier_car_offers"."id" LIMIT \$4 FOR UPDATE`).
		WithArgs(supplierID, carID, true, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "supplier_id", "car_id", "price", "is_active"}).
			AddRow(offerID, supplierID, carID, "1000.00", true))

	offer, err := repo.FindActiveOffer(context.Background(), supplierID, carID)

	require.NoError(t, err)
	assert.Equal(t, offerID, offer.ID)
	db.ExpectationsWereMet(t)
}

func TestGormSupplierRepository_DeactivateOfferIsConditional(t *testing.T) {
	db := testutil.NewMockDB(t)
	defer db.Close()
	repo := persistence.NewGormSupplierRepository(db.DB)
	offerID := uuid.New()

	db.Mock.ExpectExec(`UPDATE "supplier_car_offers" SET "is_active"=\$1,"updated_at"=\$2 WHERE id = \$3 AND is_active = \$4`).
		WithArgs(false, sqlmock.AnyArg(), offerID, true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeactivateOffer(context.Background(), offerID)

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	db.ExpectationsWereMet(t)
}

var _ supplier.SupplierRepository = (*persistence.GormSupplierRepository)(nil)
