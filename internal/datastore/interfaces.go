// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"time"

	"github.com/atelierops/maillink-go/internal/conf"
	"gorm.io/gorm"
)

// Interface abstracts the underlying database implementation and defines
// the operations the linking engine needs.
type Interface interface {
	Open() error
	Close() error

	// Entity store, read-only from this engine's perspective.
	GetAllEntities() ([]BusinessEntity, error)
	GetEntity(id uint) (BusinessEntity, error)
	GetEntityByCode(kind, code string) (BusinessEntity, error)
	GetEntityByContactEmail(email string) (*BusinessEntity, error)
	GetEntitiesByContactDomain(domain string) ([]BusinessEntity, error)

	// Message ingest, read-only.
	GetMessage(id uint) (Message, error)
	GetMessagesSince(since time.Time) ([]Message, error)
	GetMessagesInThread(threadID string) ([]Message, error)

	// Pattern library.
	GetActivePatterns() ([]MatchPattern, error)
	GetPattern(kind, value string, entityID uint) (*MatchPattern, error)
	UpsertPattern(pattern *MatchPattern) error
	ReinforcePattern(kind, value string, entityID uint, confidence float64) (*MatchPattern, error)
	PenalizePattern(kind, value string, entityID uint) (*MatchPattern, error)

	// Links.
	GetLink(messageID, entityID uint) (*Link, error)
	GetLinksForMessage(messageID uint) ([]Link, error)
	GetThreadLink(threadID string) (*Link, error)
	UpsertLink(link *Link) (created bool, err error)
	LatestLinkActivity() (time.Time, error)

	// Suggestions.
	GetSuggestion(id uint) (*Suggestion, error)
	ListSuggestions(status string, entityID uint, limit int) ([]Suggestion, error)
	HasPendingSuggestion(messageID, entityID uint) (bool, error)
	CreateSuggestion(s *Suggestion) (created bool, err error)
	ResolveSuggestion(id uint, status, resolvedBy, reason string) (*Suggestion, error)
	CountSuggestions(status string) (int64, error)

	// Transaction runs fn against a transaction-scoped store so one
	// message's link and pattern writes commit atomically.
	Transaction(fn func(tx Interface) error) error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB       *gorm.DB
	Settings *conf.Settings
}

// New creates a new datastore based on the configured backend.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Database.SQLite.Enabled:
		return &SQLiteStore{
			DataStore: DataStore{Settings: settings},
		}
	case settings.Database.MySQL.Enabled:
		return &MySQLStore{
			DataStore: DataStore{Settings: settings},
		}
	default:
		return nil
	}
}

// Transaction runs fn with a store bound to a database transaction.
// A non-nil error from fn rolls the whole transaction back.
func (ds *DataStore) Transaction(fn func(tx Interface) error) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&DataStore{DB: tx, Settings: ds.Settings})
	})
}

// Open is implemented by the backend-specific stores.
func (ds *DataStore) Open() error {
	return validationError("no database backend selected", "backend", nil)
}

// Close is implemented by the backend-specific stores.
func (ds *DataStore) Close() error {
	return nil
}
