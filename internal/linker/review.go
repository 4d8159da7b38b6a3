// review.go: the human review workflow over queued suggestions.
package linker

import (
	"log/slog"

	"github.com/atelierops/maillink-go/internal/datastore"
	"github.com/atelierops/maillink-go/internal/logging"
)

// ApproveSuggestion resolves a pending suggestion: the link is committed
// with pattern provenance and the underlying match pattern is reinforced,
// or created if this value has not been learned yet. Returns the stored
// link, which is the pre-existing one when the pair was already linked.
//
// Unknown ids surface as a not-found error, terminal suggestions as an
// already-resolved error carrying the current status; both are recoverable
// and should be shown to the reviewer, not crash the batch.
func (e *Engine) ApproveSuggestion(suggestionID uint, resolvedBy string) (*datastore.Link, error) {
	var link *datastore.Link

	err := e.store.Transaction(func(tx datastore.Interface) error {
		s, err := tx.ResolveSuggestion(suggestionID, datastore.SuggestionApproved, resolvedBy, "")
		if err != nil {
			return err
		}

		link = &datastore.Link{
			MessageID:  s.MessageID,
			EntityID:   s.EntityID,
			Confidence: s.Confidence,
			Source:     datastore.LinkSourcePattern,
			RuleKind:   s.RuleKind,
		}
		created, err := tx.UpsertLink(link)
		if err != nil {
			return err
		}
		if !created {
			// The pair got linked while the suggestion sat in the
			// queue, possibly manually. The stored link wins and the
			// pattern counters stay untouched.
			existing, err := tx.GetLink(s.MessageID, s.EntityID)
			if err != nil {
				return err
			}
			if existing != nil {
				link = existing
			}
			return nil
		}

		if s.PatternKind != "" && s.PatternValue != "" {
			if _, err := tx.ReinforcePattern(s.PatternKind, s.PatternValue, s.EntityID, s.Confidence); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.reviewLog().Info("suggestion approved",
		"suggestion_id", suggestionID, "resolved_by", resolvedBy,
		"message_id", link.MessageID, "entity_id", link.EntityID)
	return link, nil
}

// RejectSuggestion resolves a pending suggestion without creating a link.
// The reason is stored for audit. A pattern behind the suggestion takes a
// rejection penalty and its decay policy is re-evaluated.
func (e *Engine) RejectSuggestion(suggestionID uint, resolvedBy, reason string) error {
	err := e.store.Transaction(func(tx datastore.Interface) error {
		s, err := tx.ResolveSuggestion(suggestionID, datastore.SuggestionRejected, resolvedBy, reason)
		if err != nil {
			return err
		}

		if s.PatternKind != "" && s.PatternValue != "" {
			if _, err := tx.PenalizePattern(s.PatternKind, s.PatternValue, s.EntityID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.reviewLog().Info("suggestion rejected",
		"suggestion_id", suggestionID, "resolved_by", resolvedBy)
	return nil
}

func (e *Engine) reviewLog() *slog.Logger {
	return logging.ForService("review")
}
