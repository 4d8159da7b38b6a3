// patterns_test.go: unit tests for pattern persistence and decay
package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertPattern(t *testing.T) {
	t.Run("CreateNewPattern", func(t *testing.T) {
		ds := setupTestDB(t)

		pattern := &MatchPattern{
			Kind:           PatternSenderDomain,
			Value:          "pearlresorts.com",
			TargetEntityID: 7,
			Confidence:     0.75,
		}

		err := ds.UpsertPattern(pattern)

		require.NoError(t, err)
		assert.NotZero(t, pattern.ID, "ID should be assigned after save")
		assert.NotZero(t, pattern.CreatedAt, "CreatedAt should be set")
	})

	t.Run("ReapplyUpdatesExistingRow", func(t *testing.T) {
		ds := setupTestDB(t)

		pattern := &MatchPattern{
			Kind:           PatternSenderDomain,
			Value:          "pearlresorts.com",
			TargetEntityID: 7,
			Confidence:     0.75,
		}
		require.NoError(t, ds.UpsertPattern(pattern))
		originalID := pattern.ID

		pattern.Confidence = 0.80
		pattern.TimesUsed = 3
		require.NoError(t, ds.UpsertPattern(pattern))

		assert.Equal(t, originalID, pattern.ID, "ID should remain the same")

		var count int64
		ds.DB.Model(&MatchPattern{}).Count(&count)
		assert.EqualValues(t, 1, count, "reapplying must not duplicate the triple")
	})

	t.Run("SameValueDifferentEntityIsDistinct", func(t *testing.T) {
		ds := setupTestDB(t)

		require.NoError(t, ds.UpsertPattern(&MatchPattern{
			Kind: PatternSenderDomain, Value: "pearlresorts.com", TargetEntityID: 7, Confidence: 0.75,
		}))
		require.NoError(t, ds.UpsertPattern(&MatchPattern{
			Kind: PatternSenderDomain, Value: "pearlresorts.com", TargetEntityID: 8, Confidence: 0.75,
		}))

		var count int64
		ds.DB.Model(&MatchPattern{}).Count(&count)
		assert.EqualValues(t, 2, count)
	})

	t.Run("RejectsEmptyKind", func(t *testing.T) {
		ds := setupTestDB(t)
		err := ds.UpsertPattern(&MatchPattern{Value: "x", TargetEntityID: 1})
		assert.Error(t, err)
	})
}

func TestReinforcePattern(t *testing.T) {
	t.Run("CreatesWhenMissing", func(t *testing.T) {
		ds := setupTestDB(t)

		pattern, err := ds.ReinforcePattern(PatternSenderDomain, "example.com", 3, 0.75)

		require.NoError(t, err)
		require.NotNil(t, pattern)
		assert.Equal(t, 1, pattern.TimesUsed)
		assert.InDelta(t, 0.75, pattern.Confidence, 1e-9)
		assert.NotZero(t, pattern.LastUsedAt)
	})

	t.Run("IncrementsUsageWhenPresent", func(t *testing.T) {
		ds := setupTestDB(t)

		_, err := ds.ReinforcePattern(PatternSenderDomain, "example.com", 3, 0.75)
		require.NoError(t, err)

		pattern, err := ds.ReinforcePattern(PatternSenderDomain, "example.com", 3, 0.99)
		require.NoError(t, err)

		assert.Equal(t, 2, pattern.TimesUsed)
		assert.InDelta(t, 0.75, pattern.Confidence, 1e-9,
			"reinforcement keeps the original confidence")
	})
}

func TestPenalizePattern(t *testing.T) {
	t.Run("NoPatternIsNoop", func(t *testing.T) {
		ds := setupTestDB(t)

		pattern, err := ds.PenalizePattern(PatternSenderDomain, "nobody.com", 1)

		require.NoError(t, err)
		assert.Nil(t, pattern)
	})

	t.Run("IncrementsRejections", func(t *testing.T) {
		ds := setupTestDB(t)

		_, err := ds.ReinforcePattern(PatternSenderDomain, "example.com", 3, 0.75)
		require.NoError(t, err)

		pattern, err := ds.PenalizePattern(PatternSenderDomain, "example.com", 3)
		require.NoError(t, err)

		assert.Equal(t, 1, pattern.TimesRejected)
		assert.InDelta(t, 0.75, pattern.Confidence, 1e-9,
			"no decay before the outcome window fills")
	})

	t.Run("DecayHalvesConfidenceAtHalfRejected", func(t *testing.T) {
		ds := setupTestDB(t)

		// Two approvals then three rejections fill the 5-outcome window
		// at a 60% rejection rate.
		_, err := ds.ReinforcePattern(PatternSenderDomain, "example.com", 3, 0.80)
		require.NoError(t, err)
		_, err = ds.ReinforcePattern(PatternSenderDomain, "example.com", 3, 0.80)
		require.NoError(t, err)

		_, err = ds.PenalizePattern(PatternSenderDomain, "example.com", 3)
		require.NoError(t, err)
		_, err = ds.PenalizePattern(PatternSenderDomain, "example.com", 3)
		require.NoError(t, err)
		pattern, err := ds.PenalizePattern(PatternSenderDomain, "example.com", 3)
		require.NoError(t, err)

		assert.InDelta(t, 0.40, pattern.Confidence, 1e-9, "confidence should halve")
		assert.Empty(t, pattern.RecentOutcomes, "history clears after a decay")
		assert.Equal(t, 3, pattern.TimesRejected)
	})

	t.Run("MostlyApprovedWindowDoesNotDecay", func(t *testing.T) {
		ds := setupTestDB(t)

		_, err := ds.ReinforcePattern(PatternSenderDomain, "example.com", 3, 0.80)
		require.NoError(t, err)
		for range 3 {
			_, err = ds.ReinforcePattern(PatternSenderDomain, "example.com", 3, 0.80)
			require.NoError(t, err)
		}
		pattern, err := ds.PenalizePattern(PatternSenderDomain, "example.com", 3)
		require.NoError(t, err)

		assert.InDelta(t, 0.80, pattern.Confidence, 1e-9)
	})
}
