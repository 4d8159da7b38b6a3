// model.go: data model for the email-to-entity linking engine.
package datastore

import "time"

// Entity kinds.
const (
	EntityKindProposal = "proposal"
	EntityKindProject  = "project"
)

// Pattern kinds, the closed set of learnable rule categories.
const (
	PatternSenderEmail    = "sender_email"
	PatternSenderDomain   = "sender_domain"
	PatternSubjectKeyword = "subject_keyword"
	PatternThreadInherit  = "thread_inherit"
)

// Link sources.
const (
	LinkSourceRule    = "rule"
	LinkSourcePattern = "pattern"
	LinkSourceManual  = "manual"
)

// Suggestion statuses.
const (
	SuggestionPending  = "pending"
	SuggestionApproved = "approved"
	SuggestionRejected = "rejected"
)

// BusinessEntity is a proposal or project the studio tracks. Records are
// owned by the external import process; this engine only reads them.
type BusinessEntity struct {
	ID            uint   `gorm:"primaryKey"`
	Kind          string `gorm:"type:varchar(20);index:idx_entities_kind_code,unique"` // proposal or project
	Code          string `gorm:"type:varchar(40);index:idx_entities_kind_code,unique"` // e.g. "25 BK-087", immutable
	DisplayName   string `gorm:"type:varchar(255)"`
	ContactEmail  string `gorm:"type:varchar(255);index:idx_entities_contact_email"`
	ContactDomain string `gorm:"type:varchar(255);index:idx_entities_contact_domain"` // lowercase, no leading @
	CompanyName   string `gorm:"type:varchar(255)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Message is an inbound or outbound email available to the matcher.
// Records are owned by the external ingestion pipeline and are immutable.
type Message struct {
	ID         uint      `gorm:"primaryKey"`
	MessageID  string    `gorm:"type:varchar(255);uniqueIndex"` // ingestion pipeline identifier
	Sender     string    `gorm:"type:varchar(255)"`
	Recipients string    `gorm:"type:text"` // comma-separated address list
	Subject    string    `gorm:"type:text"`
	BodyText   string    `gorm:"type:text"`
	BodyHTML   string    `gorm:"type:text"` // flattened to text before matching
	ThreadID   string    `gorm:"type:varchar(255);index:idx_messages_thread"`
	SentAt     time.Time `gorm:"index:idx_messages_sent_at"`
}

// MatchPattern is a learned rule the matcher can apply. The
// (kind, value, entity) triple is unique at the storage level so
// reapplying a rule reinforces the existing pattern instead of
// duplicating it.
type MatchPattern struct {
	ID             uint    `gorm:"primaryKey"`
	Kind           string  `gorm:"type:varchar(30);index:idx_patterns_triple,unique"`
	Value          string  `gorm:"type:varchar(255);index:idx_patterns_triple,unique"`
	TargetEntityID uint    `gorm:"index:idx_patterns_triple,unique;index:idx_patterns_entity"`
	Confidence     float64 // in [0,1], may decay as rejections accumulate
	TimesUsed      int
	TimesRejected  int
	RecentOutcomes string `gorm:"type:varchar(16)"` // trailing approve/reject history, newest last
	LastUsedAt     time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Link is a committed association between a message and an entity.
// (message_id, entity_id) is unique at the storage level so linking is
// idempotent under reprocessing and concurrent batch runs.
type Link struct {
	ID         uint `gorm:"primaryKey"`
	MessageID  uint `gorm:"index:idx_links_pair,unique;not null"`
	EntityID   uint `gorm:"index:idx_links_pair,unique;index:idx_links_entity;not null"`
	Confidence float64
	Source     string `gorm:"type:varchar(20)"` // rule, pattern or manual
	RuleKind   string `gorm:"type:varchar(30)"` // rule category that produced the link
	CreatedAt  time.Time
}

// Suggestion is a proposed link awaiting human review. Status is
// terminal once it leaves pending; re-evaluating the same pair later
// requires a new record so the review history stays auditable.
type Suggestion struct {
	ID           uint `gorm:"primaryKey"`
	MessageID    uint `gorm:"index:idx_suggestions_pair;not null"`
	EntityID     uint `gorm:"index:idx_suggestions_pair;not null"`
	Confidence   float64
	Rationale    string `gorm:"type:text"`
	RuleKind     string `gorm:"type:varchar(30)"`  // rule category that proposed the pairing
	PatternKind  string `gorm:"type:varchar(30)"`  // pattern kind to reinforce on approval, empty if none
	PatternValue string `gorm:"type:varchar(255)"` // the matched value, e.g. a domain or keyword
	Status       string `gorm:"type:varchar(20);index:idx_suggestions_status"`
	Reason       string `gorm:"type:text"` // optional reject reason, audit only
	CreatedAt    time.Time
	ResolvedAt   *time.Time
	ResolvedBy   string `gorm:"type:varchar(100)"`
}
