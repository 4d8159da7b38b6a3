// links_test.go: unit tests for message-to-entity link persistence
package datastore

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMessage(t *testing.T, ds *DataStore, id uint, threadID string, sentAt time.Time) {
	t.Helper()
	require.NoError(t, ds.DB.Create(&Message{
		ID:        id,
		MessageID: fmt.Sprintf("<msg-%d@pearlresorts.com>", id),
		ThreadID:  threadID,
		Sender:    "jp@pearlresorts.com",
		Subject:   "Vahine Island proposal",
		SentAt:    sentAt,
	}).Error)
}

func TestUpsertLink(t *testing.T) {
	t.Run("CreatesLink", func(t *testing.T) {
		ds := setupTestDB(t)
		seedMessage(t, ds, 1, "thread-1", time.Now())

		link := &Link{MessageID: 1, EntityID: 7, Confidence: 0.95, Source: LinkSourceRule}
		created, err := ds.UpsertLink(link)

		require.NoError(t, err)
		assert.True(t, created)
		assert.NotZero(t, link.ID)
	})

	t.Run("ReapplyIsIdempotent", func(t *testing.T) {
		ds := setupTestDB(t)
		seedMessage(t, ds, 1, "thread-1", time.Now())

		created, err := ds.UpsertLink(&Link{MessageID: 1, EntityID: 7, Confidence: 0.95, Source: LinkSourceRule})
		require.NoError(t, err)
		require.True(t, created)

		created, err = ds.UpsertLink(&Link{MessageID: 1, EntityID: 7, Confidence: 0.95, Source: LinkSourceRule})
		require.NoError(t, err)
		assert.False(t, created, "second apply must report the link as pre-existing")

		var count int64
		ds.DB.Model(&Link{}).Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("ManualLinkSurvivesAutomaticRelink", func(t *testing.T) {
		ds := setupTestDB(t)
		seedMessage(t, ds, 1, "thread-1", time.Now())

		_, err := ds.UpsertLink(&Link{MessageID: 1, EntityID: 7, Confidence: 0.20, Source: LinkSourceManual})
		require.NoError(t, err)

		created, err := ds.UpsertLink(&Link{MessageID: 1, EntityID: 7, Confidence: 0.95, Source: LinkSourceRule})
		require.NoError(t, err)
		assert.False(t, created)

		stored, err := ds.GetLink(1, 7)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, LinkSourceManual, stored.Source, "an operator link is never overwritten")
		assert.InDelta(t, 0.20, stored.Confidence, 1e-9)
	})

	t.Run("SameMessageDifferentEntities", func(t *testing.T) {
		ds := setupTestDB(t)
		seedMessage(t, ds, 1, "thread-1", time.Now())

		created, err := ds.UpsertLink(&Link{MessageID: 1, EntityID: 7, Confidence: 0.95, Source: LinkSourceRule})
		require.NoError(t, err)
		require.True(t, created)
		created, err = ds.UpsertLink(&Link{MessageID: 1, EntityID: 8, Confidence: 0.95, Source: LinkSourceRule})
		require.NoError(t, err)
		assert.True(t, created, "one message may link to several entities")

		links, err := ds.GetLinksForMessage(1)
		require.NoError(t, err)
		assert.Len(t, links, 2)
	})
}

func TestGetLink(t *testing.T) {
	ds := setupTestDB(t)

	link, err := ds.GetLink(99, 99)

	require.NoError(t, err)
	assert.Nil(t, link, "a missing pair is not an error")
}

func TestGetThreadLink(t *testing.T) {
	ds := setupTestDB(t)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	seedMessage(t, ds, 1, "thread-1", base)
	seedMessage(t, ds, 2, "thread-1", base.Add(time.Hour))
	seedMessage(t, ds, 3, "thread-2", base)

	_, err := ds.UpsertLink(&Link{MessageID: 2, EntityID: 7, Confidence: 0.95, Source: LinkSourceRule})
	require.NoError(t, err)
	_, err = ds.UpsertLink(&Link{MessageID: 3, EntityID: 8, Confidence: 0.95, Source: LinkSourceRule})
	require.NoError(t, err)

	t.Run("FindsLinkWithinThread", func(t *testing.T) {
		link, err := ds.GetThreadLink("thread-1")
		require.NoError(t, err)
		require.NotNil(t, link)
		assert.EqualValues(t, 2, link.MessageID)
		assert.EqualValues(t, 7, link.EntityID)
	})

	t.Run("OtherThreadNotVisible", func(t *testing.T) {
		link, err := ds.GetThreadLink("thread-3")
		require.NoError(t, err)
		assert.Nil(t, link)
	})
}

func TestLatestLinkActivity(t *testing.T) {
	t.Run("EmptyTableReturnsZeroTime", func(t *testing.T) {
		ds := setupTestDB(t)

		latest, err := ds.LatestLinkActivity()

		require.NoError(t, err)
		assert.True(t, latest.IsZero())
	})

	t.Run("ReturnsMostRecentCreation", func(t *testing.T) {
		ds := setupTestDB(t)
		seedMessage(t, ds, 1, "thread-1", time.Now())

		_, err := ds.UpsertLink(&Link{MessageID: 1, EntityID: 7, Confidence: 0.95, Source: LinkSourceRule})
		require.NoError(t, err)

		latest, err := ds.LatestLinkActivity()
		require.NoError(t, err)
		assert.False(t, latest.IsZero())
		assert.WithinDuration(t, time.Now(), latest, time.Minute)
	})
}
