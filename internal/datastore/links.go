// links.go: persistence of committed message-to-entity links.
package datastore

import (
	"database/sql"
	"time"

	"github.com/atelierops/maillink-go/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetLink retrieves the link for a (message, entity) pair, or nil if none.
func (ds *DataStore) GetLink(messageID, entityID uint) (*Link, error) {
	var link Link
	err := ds.DB.Where("message_id = ? AND entity_id = ?", messageID, entityID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dbError(err, "get_link", errors.PriorityMedium,
			"message_id", messageID, "entity_id", entityID)
	}
	return &link, nil
}

// GetLinksForMessage retrieves all links committed for a message.
func (ds *DataStore) GetLinksForMessage(messageID uint) ([]Link, error) {
	var links []Link
	if err := ds.DB.Where("message_id = ?", messageID).Find(&links).Error; err != nil {
		return nil, dbError(err, "get_links_for_message", errors.PriorityMedium,
			"message_id", messageID)
	}
	return links, nil
}

// GetThreadLink retrieves the earliest link committed for any message in the
// thread, which a reply inherits. Returns nil if the thread is unlinked.
func (ds *DataStore) GetThreadLink(threadID string) (*Link, error) {
	if threadID == "" {
		return nil, nil
	}
	var link Link
	err := ds.DB.Joins("JOIN messages ON messages.id = links.message_id").
		Where("messages.thread_id = ?", threadID).
		Order("links.created_at").
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, dbError(err, "get_thread_link", errors.PriorityMedium,
			"thread_id", threadID)
	}
	return &link, nil
}

// UpsertLink inserts a link if the (message, entity) pair is not linked yet.
// The storage-level unique constraint makes concurrent inserts race-safe;
// an existing link, manual ones included, is never overwritten. Returns
// whether a new row was created.
func (ds *DataStore) UpsertLink(link *Link) (bool, error) {
	if link == nil {
		return false, validationError("link cannot be nil", "link", nil)
	}
	if link.MessageID == 0 || link.EntityID == 0 {
		return false, validationError("link requires message and entity ids", "message_id", link.MessageID)
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}

	result := ds.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "message_id"}, {Name: "entity_id"}},
		DoNothing: true,
	}).Create(link)

	if result.Error != nil {
		return false, dbError(result.Error, "upsert_link", errors.PriorityHigh,
			"message_id", link.MessageID,
			"entity_id", link.EntityID,
			"source", link.Source)
	}
	return result.RowsAffected > 0, nil
}

// LatestLinkActivity returns the most recent link creation time, used as the
// default processing watermark. The zero time means no links exist yet.
func (ds *DataStore) LatestLinkActivity() (time.Time, error) {
	var latest sql.NullTime
	err := ds.DB.Model(&Link{}).Select("MAX(created_at)").Scan(&latest).Error
	if err != nil {
		return time.Time{}, dbError(err, "latest_link_activity", errors.PriorityLow,
			"table", "links")
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time, nil
}
