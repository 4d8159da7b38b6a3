// suggestions.go: persistence and state machine for review suggestions.
package datastore

import (
	"time"

	"github.com/atelierops/maillink-go/internal/errors"
	"gorm.io/gorm"
)

// GetSuggestion retrieves a suggestion by id. A missing id is a
// CategoryNotFound error so callers can surface it to the review UI.
func (ds *DataStore) GetSuggestion(id uint) (*Suggestion, error) {
	var s Suggestion
	if err := ds.DB.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("suggestion", "suggestion_id", id)
		}
		return nil, dbError(err, "get_suggestion", errors.PriorityMedium,
			"suggestion_id", id)
	}
	return &s, nil
}

// ListSuggestions retrieves suggestions filtered by status and/or entity,
// newest first. Zero values disable the corresponding filter.
func (ds *DataStore) ListSuggestions(status string, entityID uint, limit int) ([]Suggestion, error) {
	query := ds.DB.Model(&Suggestion{}).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if entityID != 0 {
		query = query.Where("entity_id = ?", entityID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var suggestions []Suggestion
	if err := query.Find(&suggestions).Error; err != nil {
		return nil, dbError(err, "list_suggestions", errors.PriorityMedium,
			"status", status, "entity_id", entityID)
	}
	return suggestions, nil
}

// HasPendingSuggestion reports whether an unresolved suggestion already
// exists for the (message, entity) pair.
func (ds *DataStore) HasPendingSuggestion(messageID, entityID uint) (bool, error) {
	var count int64
	err := ds.DB.Model(&Suggestion{}).
		Where("message_id = ? AND entity_id = ? AND status = ?",
			messageID, entityID, SuggestionPending).
		Count(&count).Error
	if err != nil {
		return false, dbError(err, "has_pending_suggestion", errors.PriorityMedium,
			"message_id", messageID, "entity_id", entityID)
	}
	return count > 0, nil
}

// CreateSuggestion inserts a pending suggestion unless one already exists
// for the pair, which keeps reprocessing from duplicating review work.
// Returns whether a new row was created.
func (ds *DataStore) CreateSuggestion(s *Suggestion) (bool, error) {
	if s == nil {
		return false, validationError("suggestion cannot be nil", "suggestion", nil)
	}
	if s.MessageID == 0 || s.EntityID == 0 {
		return false, validationError("suggestion requires message and entity ids", "message_id", s.MessageID)
	}

	pending, err := ds.HasPendingSuggestion(s.MessageID, s.EntityID)
	if err != nil {
		return false, err
	}
	if pending {
		return false, nil
	}

	s.Status = SuggestionPending
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if err := ds.DB.Create(s).Error; err != nil {
		return false, dbError(err, "create_suggestion", errors.PriorityHigh,
			"message_id", s.MessageID,
			"entity_id", s.EntityID)
	}
	return true, nil
}

// ResolveSuggestion transitions a pending suggestion to a terminal status.
// Resolving an already-resolved suggestion is a CategoryAlreadyResolved
// error carrying the current status so the caller can decide.
func (ds *DataStore) ResolveSuggestion(id uint, status, resolvedBy, reason string) (*Suggestion, error) {
	if status != SuggestionApproved && status != SuggestionRejected {
		return nil, validationError("invalid terminal status", "status", status)
	}

	s, err := ds.GetSuggestion(id)
	if err != nil {
		return nil, err
	}
	if s.Status != SuggestionPending {
		return nil, errors.Newf("suggestion %d already %s", id, s.Status).
			Component("datastore").
			Category(errors.CategoryAlreadyResolved).
			Context("suggestion_id", id).
			Context("current_status", s.Status).
			Build()
	}

	now := time.Now()
	s.Status = status
	s.ResolvedAt = &now
	s.ResolvedBy = resolvedBy
	if reason != "" {
		s.Reason = reason
	}

	// Guard the transition at the storage level too, in case two reviewers
	// race on the same suggestion.
	result := ds.DB.Model(&Suggestion{}).
		Where("id = ? AND status = ?", id, SuggestionPending).
		Updates(map[string]any{
			"status":      s.Status,
			"resolved_at": s.ResolvedAt,
			"resolved_by": s.ResolvedBy,
			"reason":      s.Reason,
		})
	if result.Error != nil {
		return nil, dbError(result.Error, "resolve_suggestion", errors.PriorityHigh,
			"suggestion_id", id, "status", status)
	}
	if result.RowsAffected == 0 {
		return nil, errors.Newf("suggestion %d resolved concurrently", id).
			Component("datastore").
			Category(errors.CategoryAlreadyResolved).
			Context("suggestion_id", id).
			Build()
	}

	return s, nil
}

// CountSuggestions counts suggestions in the given status, or all of them
// when status is empty. Feeds the queue depth gauge.
func (ds *DataStore) CountSuggestions(status string) (int64, error) {
	query := ds.DB.Model(&Suggestion{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, dbError(err, "count_suggestions", errors.PriorityLow,
			"status", status)
	}
	return count, nil
}
