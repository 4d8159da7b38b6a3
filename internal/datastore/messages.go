// messages.go: read-only queries over the ingested message store.
package datastore

import (
	"time"

	"github.com/atelierops/maillink-go/internal/errors"
	"gorm.io/gorm"
)

// GetMessage retrieves a single message by its internal id.
func (ds *DataStore) GetMessage(id uint) (Message, error) {
	var msg Message
	if err := ds.DB.First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Message{}, notFoundError("message", "message_id", id)
		}
		return Message{}, dbError(err, "get_message", errors.PriorityMedium,
			"message_id", id)
	}
	return msg, nil
}

// GetMessagesSince retrieves messages sent at or after the given time,
// oldest first so thread roots are processed before their replies.
func (ds *DataStore) GetMessagesSince(since time.Time) ([]Message, error) {
	var msgs []Message
	err := ds.DB.Where("sent_at >= ?", since).Order("sent_at").Find(&msgs).Error
	if err != nil {
		return nil, dbError(err, "get_messages_since", errors.PriorityMedium,
			"since", since.Format(time.RFC3339))
	}
	return msgs, nil
}

// GetMessagesInThread retrieves all messages sharing a thread id, oldest first.
func (ds *DataStore) GetMessagesInThread(threadID string) ([]Message, error) {
	if threadID == "" {
		return nil, nil
	}
	var msgs []Message
	err := ds.DB.Where("thread_id = ?", threadID).Order("sent_at").Find(&msgs).Error
	if err != nil {
		return nil, dbError(err, "get_messages_in_thread", errors.PriorityMedium,
			"thread_id", threadID)
	}
	return msgs, nil
}
