// suggestions_test.go: unit tests for the suggestion review queue
package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierops/maillink-go/internal/errors"
)

func seedSuggestion(t *testing.T, ds *DataStore, messageID, entityID uint) *Suggestion {
	t.Helper()
	s := &Suggestion{
		MessageID:    messageID,
		EntityID:     entityID,
		Confidence:   0.75,
		Rationale:    "sender domain pearlresorts.com matches entity contact domain",
		RuleKind:     "domain_match",
		PatternKind:  PatternSenderDomain,
		PatternValue: "pearlresorts.com",
		Status:       SuggestionPending,
	}
	created, err := ds.CreateSuggestion(s)
	require.NoError(t, err)
	require.True(t, created)
	return s
}

func TestCreateSuggestion(t *testing.T) {
	t.Run("PendingPairIsDeduplicated", func(t *testing.T) {
		ds := setupTestDB(t)
		seedMessage(t, ds, 1, "thread-1", time.Now())
		seedSuggestion(t, ds, 1, 7)

		created, err := ds.CreateSuggestion(&Suggestion{
			MessageID:  1,
			EntityID:   7,
			Confidence: 0.80,
			Status:     SuggestionPending,
		})

		require.NoError(t, err)
		assert.False(t, created, "a pending pair must not be queued twice")

		count, err := ds.CountSuggestions(SuggestionPending)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("ResolvedPairCanBeQueuedAgain", func(t *testing.T) {
		ds := setupTestDB(t)
		seedMessage(t, ds, 1, "thread-1", time.Now())
		first := seedSuggestion(t, ds, 1, 7)

		_, err := ds.ResolveSuggestion(first.ID, SuggestionRejected, "ops", "wrong entity")
		require.NoError(t, err)

		created, err := ds.CreateSuggestion(&Suggestion{
			MessageID:  1,
			EntityID:   7,
			Confidence: 0.75,
			Status:     SuggestionPending,
		})
		require.NoError(t, err)
		assert.True(t, created, "resolution is terminal, a fresh record starts a new review")
	})
}

func TestResolveSuggestion(t *testing.T) {
	t.Run("Approve", func(t *testing.T) {
		ds := setupTestDB(t)
		seedMessage(t, ds, 1, "thread-1", time.Now())
		s := seedSuggestion(t, ds, 1, 7)

		resolved, err := ds.ResolveSuggestion(s.ID, SuggestionApproved, "ops", "")

		require.NoError(t, err)
		assert.Equal(t, SuggestionApproved, resolved.Status)
		assert.Equal(t, "ops", resolved.ResolvedBy)
		require.NotNil(t, resolved.ResolvedAt)
	})

	t.Run("RejectKeepsReason", func(t *testing.T) {
		ds := setupTestDB(t)
		seedMessage(t, ds, 1, "thread-1", time.Now())
		s := seedSuggestion(t, ds, 1, 7)

		resolved, err := ds.ResolveSuggestion(s.ID, SuggestionRejected, "ops", "belongs to another project")

		require.NoError(t, err)
		assert.Equal(t, SuggestionRejected, resolved.Status)
		assert.Equal(t, "belongs to another project", resolved.Reason)
	})

	t.Run("UnknownID", func(t *testing.T) {
		ds := setupTestDB(t)

		_, err := ds.ResolveSuggestion(999, SuggestionApproved, "ops", "")

		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("AlreadyResolved", func(t *testing.T) {
		ds := setupTestDB(t)
		seedMessage(t, ds, 1, "thread-1", time.Now())
		s := seedSuggestion(t, ds, 1, 7)

		_, err := ds.ResolveSuggestion(s.ID, SuggestionApproved, "ops", "")
		require.NoError(t, err)

		_, err = ds.ResolveSuggestion(s.ID, SuggestionRejected, "ops", "changed my mind")
		require.Error(t, err)
		assert.True(t, errors.IsAlreadyResolved(err), "resolution is final")
	})

	t.Run("NonTerminalStatusRejected", func(t *testing.T) {
		ds := setupTestDB(t)
		seedMessage(t, ds, 1, "thread-1", time.Now())
		s := seedSuggestion(t, ds, 1, 7)

		_, err := ds.ResolveSuggestion(s.ID, SuggestionPending, "ops", "")

		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	})
}

func TestListSuggestions(t *testing.T) {
	ds := setupTestDB(t)
	seedMessage(t, ds, 1, "thread-1", time.Now())
	seedMessage(t, ds, 2, "thread-2", time.Now())
	seedSuggestion(t, ds, 1, 7)
	s2 := seedSuggestion(t, ds, 2, 8)

	_, err := ds.ResolveSuggestion(s2.ID, SuggestionApproved, "ops", "")
	require.NoError(t, err)

	t.Run("FilterByStatus", func(t *testing.T) {
		pending, err := ds.ListSuggestions(SuggestionPending, 0, 0)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.EqualValues(t, 7, pending[0].EntityID)
	})

	t.Run("FilterByEntity", func(t *testing.T) {
		forEntity, err := ds.ListSuggestions("", 8, 0)
		require.NoError(t, err)
		require.Len(t, forEntity, 1)
		assert.Equal(t, SuggestionApproved, forEntity[0].Status)
	})

	t.Run("NoFiltersReturnsAll", func(t *testing.T) {
		all, err := ds.ListSuggestions("", 0, 0)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("LimitApplies", func(t *testing.T) {
		limited, err := ds.ListSuggestions("", 0, 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})
}
