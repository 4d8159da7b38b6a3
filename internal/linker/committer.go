// committer.go: threshold routing of matcher candidates into links,
// suggestions or the noise bucket.
package linker

import (
	"log/slog"

	"github.com/atelierops/maillink-go/internal/conf"
	"github.com/atelierops/maillink-go/internal/datastore"
	"github.com/atelierops/maillink-go/internal/logging"
)

// Committer decides, per candidate, whether to commit a link, queue a
// suggestion or drop the candidate as noise, and applies the decision
// exactly once per (message, entity) pair.
type Committer struct {
	settings *conf.Settings
	log      *slog.Logger
}

// NewCommitter creates a committer with the configured thresholds.
func NewCommitter(settings *conf.Settings) *Committer {
	return &Committer{
		settings: settings,
		log:      logging.ForService("committer"),
	}
}

// Commit routes every candidate for one message inside the caller's
// transaction, staging outcomes in t. The first persistence failure
// aborts with its error so the whole message rolls back; every write is
// idempotent, so retrying the message later starts clean.
func (c *Committer) Commit(tx datastore.Interface, msg *datastore.Message, candidates []Candidate, t *tally) error {
	high := c.settings.Linker.HighThreshold
	low := c.settings.Linker.LowThreshold

	for i := range candidates {
		cand := &candidates[i]
		switch {
		case cand.Confidence >= high:
			if err := c.commitLink(tx, msg, cand, t); err != nil {
				return err
			}
		case cand.Confidence >= low:
			if err := c.queueSuggestion(tx, msg, cand, t); err != nil {
				return err
			}
		default:
			// Deliberate noise-reduction policy: below the low
			// threshold nothing is persisted, not even a suggestion.
			t.noise[cand.RuleKind]++
		}
	}
	return nil
}

func (c *Committer) commitLink(tx datastore.Interface, msg *datastore.Message, cand *Candidate, t *tally) error {
	source := datastore.LinkSourceRule
	if cand.RuleKind == RuleLearnedPattern {
		source = datastore.LinkSourcePattern
	}

	created, err := tx.UpsertLink(&datastore.Link{
		MessageID:  msg.ID,
		EntityID:   cand.EntityID,
		Confidence: cand.Confidence,
		Source:     source,
		RuleKind:   string(cand.RuleKind),
	})
	if err != nil {
		c.log.Error("link commit failed",
			"message_id", msg.ID, "entity_id", cand.EntityID, "error", err)
		return err
	}
	if !created {
		// Already linked, possibly manually. The existing link wins.
		return nil
	}

	// A high-confidence rule firing on a concrete value teaches the
	// pattern library, so future messages match at rule 4. A failure
	// here aborts the transaction so the link rolls back with it; link
	// and pattern stay in step and a retry recreates both.
	if cand.PatternKind != "" && cand.PatternValue != "" {
		if _, err := tx.ReinforcePattern(cand.PatternKind, cand.PatternValue, cand.EntityID, cand.Confidence); err != nil {
			c.log.Error("pattern reinforcement failed",
				"message_id", msg.ID, "entity_id", cand.EntityID,
				"pattern_kind", cand.PatternKind, "error", err)
			return err
		}
	}

	t.links[cand.RuleKind]++
	return nil
}

func (c *Committer) queueSuggestion(tx datastore.Interface, msg *datastore.Message, cand *Candidate, t *tally) error {
	// An already-linked pair has nothing left to review. Reprocessing a
	// message whose suggestion was approved earlier lands here, because
	// the learned pattern re-fires below the high threshold.
	link, err := tx.GetLink(msg.ID, cand.EntityID)
	if err != nil {
		return err
	}
	if link != nil {
		return nil
	}

	created, err := tx.CreateSuggestion(&datastore.Suggestion{
		MessageID:    msg.ID,
		EntityID:     cand.EntityID,
		Confidence:   cand.Confidence,
		Rationale:    cand.Rationale,
		RuleKind:     string(cand.RuleKind),
		PatternKind:  cand.PatternKind,
		PatternValue: cand.PatternValue,
	})
	if err != nil {
		c.log.Error("suggestion create failed",
			"message_id", msg.ID, "entity_id", cand.EntityID, "error", err)
		return err
	}
	if created {
		t.suggestions[cand.RuleKind]++
	}
	return nil
}
