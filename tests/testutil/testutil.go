// Package testutil holds database, fixture and event helpers shared by the
// engine's package tests.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/config"
	"github.com/Twelve-cloud/car-showroom/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockDB is a postgres-dialect gorm handle backed by sqlmock, for asserting
// the exact SQL a repository emits.
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err, "sqlmock")

	db, err := gorm.Open(
		postgres.New(postgres.Config{Conn: conn, DriverName: "postgres"}),
		&gorm.Config{SkipDefaultTransaction: true},
	)
	require.NoError(t, err, "open gorm on sqlmock")

	return &MockDB{DB: db, Mock: mock, SqlDB: conn}
}

func (m *MockDB) Close() error {
	return m.SqlDB.Close()
}

// ExpectationsWereMet fails the test on any unconsumed or unexpected query.
func (m *MockDB) ExpectationsWereMet(t *testing.T) {
	t.Helper()
	require.NoError(t, m.Mock.ExpectationsWereMet(), "unmet sql expectations")
}

// NewSQLiteDB opens a private in-memory database with the full schema.
// It is closed when the test ends.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: ":memory:",
	})
	require.NoError(t, err, "open sqlite")
	require.NoError(t, db.AutoMigrate(), "migrate sqlite schema")

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db.DB
}

var testNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewTestUUID derives a stable id from seed.
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(testNamespace, []byte(seed))
}
