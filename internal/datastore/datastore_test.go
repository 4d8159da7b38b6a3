// datastore_test.go: shared test helpers for datastore tests
package datastore

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelierops/maillink-go/internal/conf"
)

// setupTestDB creates an in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) *DataStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(&BusinessEntity{}, &Message{}, &MatchPattern{}, &Link{}, &Suggestion{})
	require.NoError(t, err, "Failed to migrate schema")

	return &DataStore{DB: db, Settings: testSettings()}
}

func testSettings() *conf.Settings {
	return &conf.Settings{
		Linker: conf.LinkerSettings{
			HighThreshold: 0.85,
			LowThreshold:  0.50,
			Decay: conf.DecaySettings{
				Window: 5,
				Rate:   0.5,
				Factor: 0.5,
			},
			EntityCacheTTLMinutes: 10,
		},
	}
}
