package entitycache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelierops/maillink-go/internal/datastore"
)

func setupStore(t *testing.T) *datastore.DataStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&datastore.BusinessEntity{}))
	return &datastore.DataStore{DB: db}
}

func TestSnapshotCachesUntilInvalidated(t *testing.T) {
	ds := setupStore(t)
	require.NoError(t, ds.DB.Create(&datastore.BusinessEntity{
		ID: 1, Kind: datastore.EntityKindProposal, Code: "25 BK-001",
	}).Error)

	cache := New(ds, time.Minute)

	first, err := cache.Snapshot()
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A write behind the cache is not visible until invalidation.
	require.NoError(t, ds.DB.Create(&datastore.BusinessEntity{
		ID: 2, Kind: datastore.EntityKindProject, Code: "24 PJ-001",
	}).Error)

	cached, err := cache.Snapshot()
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	cache.Invalidate()

	fresh, err := cache.Snapshot()
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestNewDefaultsNonPositiveTTL(t *testing.T) {
	ds := setupStore(t)
	cache := New(ds, 0)

	_, err := cache.Snapshot()
	require.NoError(t, err)
}
