// mysql_test.go: integration test for the MySQL backend against a
// disposable container
package datastore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/atelierops/maillink-go/internal/conf"
)

func TestMySQLStoreOpen(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MySQL container test in short mode")
	}

	ctx := context.Background()
	container, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase("maillink"),
		tcmysql.WithUsername("maillink"),
		tcmysql.WithPassword("maillink"),
	)
	if err != nil {
		t.Skipf("container runtime unavailable: %v", err)
	}
	defer func() { _ = testcontainers.TerminateContainer(container) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	settings := testSettings()
	settings.Database.MySQL = conf.MySQLSettings{
		Enabled:  true,
		Username: "maillink",
		Password: "maillink",
		Database: "maillink",
		Host:     host,
		Port:     port.Port(),
	}

	store := &MySQLStore{DataStore: DataStore{Settings: settings}}
	require.NoError(t, store.Open(), "open must connect and migrate the schema")
	defer func() { _ = store.Close() }()

	// A round-trip through the migrated schema proves the backend works
	// end to end, including the unique pair index on links.
	require.NoError(t, store.DB.Create(&BusinessEntity{
		Kind: EntityKindProposal, Code: "25 BK-087",
	}).Error)
	entity, err := store.GetEntityByCode(EntityKindProposal, "25 BK-087")
	require.NoError(t, err)
	require.NotZero(t, entity.ID)

	require.NoError(t, store.DB.Create(&Message{
		ID: 1, MessageID: "<msg-1@example.test>",
	}).Error)
	created, err := store.UpsertLink(&Link{
		MessageID: 1, EntityID: entity.ID, Confidence: 0.95, Source: LinkSourceRule,
	})
	require.NoError(t, err)
	assert.True(t, created)
	created, err = store.UpsertLink(&Link{
		MessageID: 1, EntityID: entity.ID, Confidence: 0.95, Source: LinkSourceRule,
	})
	require.NoError(t, err)
	assert.False(t, created, "the pair index must deduplicate on MySQL too")
}

func TestMySQLStoreOpenRequiresDatabaseName(t *testing.T) {
	settings := testSettings()
	settings.Database.MySQL.Enabled = true

	store := &MySQLStore{DataStore: DataStore{Settings: settings}}
	err := store.Open()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database name is empty")
}
