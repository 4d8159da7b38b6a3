// patterns.go: persistence and maintenance of learned match patterns.
package datastore

import (
	"time"

	"github.com/atelierops/maillink-go/internal/errors"
	"gorm.io/gorm"
)

const (
	outcomeApproved = 'a'
	outcomeRejected = 'r'
)

// GetActivePatterns retrieves all learned patterns for the matcher.
func (ds *DataStore) GetActivePatterns() ([]MatchPattern, error) {
	var patterns []MatchPattern
	if err := ds.DB.Find(&patterns).Error; err != nil {
		return nil, dbError(err, "get_active_patterns", errors.PriorityMedium,
			"table", "match_patterns")
	}
	return patterns, nil
}

// GetPattern retrieves a pattern by its unique (kind, value, entity) triple,
// or nil if no such pattern has been learned.
func (ds *DataStore) GetPattern(kind, value string, entityID uint) (*MatchPattern, error) {
	var pattern MatchPattern
	err := ds.DB.Where("kind = ? AND value = ? AND target_entity_id = ?",
		kind, value, entityID).First(&pattern).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dbError(err, "get_pattern", errors.PriorityMedium,
			"kind", kind, "value", value, "entity_id", entityID)
	}
	return &pattern, nil
}

// UpsertPattern saves or updates a pattern. The storage-level unique
// constraint on the triple makes reapplication update the existing row
// instead of duplicating it.
func (ds *DataStore) UpsertPattern(pattern *MatchPattern) error {
	if pattern == nil {
		return validationError("pattern cannot be nil", "pattern", nil)
	}
	if pattern.Kind == "" || pattern.Value == "" {
		return validationError("pattern kind and value are required", "kind", pattern.Kind)
	}

	now := time.Now()
	pattern.UpdatedAt = now

	// Set CreatedAt only on INSERT; always update the mutable fields.
	// A map keeps zero values (a cleared outcome history in particular)
	// writable, which a struct assign would silently skip.
	result := ds.DB.Where("kind = ? AND value = ? AND target_entity_id = ?",
		pattern.Kind, pattern.Value, pattern.TargetEntityID).
		Attrs(MatchPattern{CreatedAt: now}).
		Assign(map[string]interface{}{
			"confidence":      pattern.Confidence,
			"times_used":      pattern.TimesUsed,
			"times_rejected":  pattern.TimesRejected,
			"recent_outcomes": pattern.RecentOutcomes,
			"last_used_at":    pattern.LastUsedAt,
			"updated_at":      now,
		}).
		FirstOrCreate(pattern)

	if result.Error != nil {
		return dbError(result.Error, "upsert_pattern", errors.PriorityMedium,
			"kind", pattern.Kind,
			"value", pattern.Value,
			"entity_id", pattern.TargetEntityID)
	}
	return nil
}

// ReinforcePattern records an approval outcome for the pattern, creating it
// with the given confidence if it has not been learned yet.
func (ds *DataStore) ReinforcePattern(kind, value string, entityID uint, confidence float64) (*MatchPattern, error) {
	existing, err := ds.GetPattern(kind, value, entityID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if existing == nil {
		pattern := &MatchPattern{
			Kind:           kind,
			Value:          value,
			TargetEntityID: entityID,
			Confidence:     confidence,
			TimesUsed:      1,
			RecentOutcomes: string(outcomeApproved),
			LastUsedAt:     now,
		}
		if err := ds.UpsertPattern(pattern); err != nil {
			return nil, err
		}
		return pattern, nil
	}

	existing.TimesUsed++
	existing.LastUsedAt = now
	existing.RecentOutcomes = ds.appendOutcome(existing.RecentOutcomes, outcomeApproved)
	ds.applyDecay(existing)

	if err := ds.UpsertPattern(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// PenalizePattern records a rejection outcome for the pattern and re-evaluates
// the decay policy. Returns nil without error if no such pattern exists.
func (ds *DataStore) PenalizePattern(kind, value string, entityID uint) (*MatchPattern, error) {
	existing, err := ds.GetPattern(kind, value, entityID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	existing.TimesRejected++
	existing.RecentOutcomes = ds.appendOutcome(existing.RecentOutcomes, outcomeRejected)
	ds.applyDecay(existing)

	if err := ds.UpsertPattern(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// appendOutcome appends an outcome to the trailing history, keeping at most
// the configured window of most recent outcomes.
func (ds *DataStore) appendOutcome(history string, outcome byte) string {
	window := ds.decayWindow()
	history += string(outcome)
	if len(history) > window {
		history = history[len(history)-window:]
	}
	return history
}

// applyDecay halves the pattern's confidence when the rejection rate over
// the trailing outcome window reaches the configured threshold. The history
// is cleared after a decay so a single bad streak is not punished twice.
func (ds *DataStore) applyDecay(pattern *MatchPattern) {
	window := ds.decayWindow()
	if len(pattern.RecentOutcomes) < window {
		return
	}

	rejected := 0
	for i := 0; i < len(pattern.RecentOutcomes); i++ {
		if pattern.RecentOutcomes[i] == outcomeRejected {
			rejected++
		}
	}

	rate, factor := 0.5, 0.5
	if ds.Settings != nil {
		rate = ds.Settings.Linker.Decay.Rate
		factor = ds.Settings.Linker.Decay.Factor
	}

	if float64(rejected)/float64(len(pattern.RecentOutcomes)) >= rate {
		pattern.Confidence *= factor
		pattern.RecentOutcomes = ""
	}
}

func (ds *DataStore) decayWindow() int {
	if ds.Settings != nil && ds.Settings.Linker.Decay.Window > 0 {
		return ds.Settings.Linker.Decay.Window
	}
	return 5
}
