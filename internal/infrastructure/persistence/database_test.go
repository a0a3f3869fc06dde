package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Twelve-cloud/car-showroom/internal/application/engine"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB, driver: config.DriverPostgres}, mock, mockDB
}

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: ":memory:",
	})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, config.DriverSQLite, db.Driver())
	require.NoError(t, db.AutoMigrate())

	for _, model := range AllModels() {
		assert.True(t, db.DB.Migrator().HasTable(model), "missing table for %T", model)
	}

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	db, err := NewDatabase(&config.DatabaseConfig{Driver: "mysql"})

	assert.Nil(t, db)
	assert.ErrorContains(t, err, `unsupported database driver "mysql"`)
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()

		assert.NoError(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(sql.ErrConnDone)

		assert.ErrorIs(t, db.Ping(), sql.ErrConnDone)
	})
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()

	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("commits", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "showrooms" SET "balance"=\$1 WHERE id = \$2`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Table("showrooms").Where("id = ?", uuid.New()).Update("balance", 10).Error
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionScope_Execute(t *testing.T) {
	t.Run("hands out repositories bound to the transaction", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		scope := NewGormTransactionScope(db.DB)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := scope.Execute(context.Background(), func(repos engine.TransactionalRepositories) error {
			assert.NotNil(t, repos.CarRepo())
			assert.NotNil(t, repos.SupplierRepo())
			assert.NotNil(t, repos.ShowroomRepo())
			assert.NotNil(t, repos.CustomerRepo())
			return nil
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the callback fails", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		scope := NewGormTransactionScope(db.DB)

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := scope.Execute(context.Background(), func(engine.TransactionalRepositories) error {
			return assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestExpireDiscounts(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectExec(`UPDATE "supplier_car_discounts" SET "is_active"=\$1,"updated_at"=\$2 WHERE is_active = \$3 AND finish_date < \$4`).
		WithArgs(false, now, true, now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := expireDiscounts(db.DB, "supplier_car_discounts", now)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateRoot(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	id := uuid.New()
	now := time.Now()

	mock.ExpectExec(`UPDATE "customers" SET "is_active"=\$1,"updated_at"=\$2,"version"=version \+ 1 WHERE id = \$3 AND is_active = \$4`).
		WithArgs(false, now, id, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := deactivateRoot(db.DB, "customers", id, now)

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
