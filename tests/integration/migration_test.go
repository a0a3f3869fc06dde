//go:build integration

package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_UpDown(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewTestDB(t)
	m := tdb.Migrator()

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	for _, table := range []string{"cars", "suppliers", "showrooms", "customers", "customer_offers", "showroom_car_discount_cars"} {
		assert.True(t, tdb.DB.Migrator().HasTable(table), table)
	}

	require.NoError(t, m.Down())
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, tdb.DB.Migrator().HasTable("showrooms"))

	// a second Up on a clean schema is the same as the first
	require.NoError(t, m.Up())
	require.NoError(t, m.Up())
	assert.True(t, tdb.DB.Migrator().HasTable("showrooms"))
}
