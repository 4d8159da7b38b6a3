// linker_test.go: shared fixtures for the linker package tests
package linker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelierops/maillink-go/internal/conf"
	"github.com/atelierops/maillink-go/internal/datastore"
)

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

func setupTestStore(t *testing.T) *datastore.DataStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "Failed to create test database")

	err = db.AutoMigrate(
		&datastore.BusinessEntity{},
		&datastore.Message{},
		&datastore.MatchPattern{},
		&datastore.Link{},
		&datastore.Suggestion{},
	)
	require.NoError(t, err, "Failed to migrate schema")

	return &datastore.DataStore{DB: db, Settings: testSettings()}
}

// seedEntities installs the two fixtures most tests share: a proposal with
// a known contact and a project with unrelated details.
func seedEntities(t *testing.T, ds *datastore.DataStore) {
	t.Helper()
	require.NoError(t, ds.DB.Create(&datastore.BusinessEntity{
		ID:            1,
		Kind:          datastore.EntityKindProposal,
		Code:          "25 BK-087",
		DisplayName:   "Pearl Resorts Vahine Island",
		ContactEmail:  "jp@pearlresorts.com",
		ContactDomain: "pearlresorts.com",
		CompanyName:   "Pearl Resorts",
	}).Error)
	require.NoError(t, ds.DB.Create(&datastore.BusinessEntity{
		ID:            2,
		Kind:          datastore.EntityKindProject,
		Code:          "24 PJ-004",
		DisplayName:   "Harbor Lights Rebrand",
		ContactEmail:  "anna@harborlights.example",
		ContactDomain: "harborlights.example",
		CompanyName:   "Harbor Lights",
	}).Error)
}

func testMessage(t *testing.T, ds *datastore.DataStore, msg datastore.Message) *datastore.Message {
	t.Helper()
	require.NotZero(t, msg.ID, "fixture messages carry explicit ids")
	if msg.MessageID == "" {
		msg.MessageID = fmt.Sprintf("<test-%d@example.test>", msg.ID)
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	require.NoError(t, ds.DB.Create(&msg).Error)
	return &msg
}
