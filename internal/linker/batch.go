// batch.go: the batch engine driving matcher and committer over a
// collection of messages.
package linker

import (
	"context"
	"log/slog"
	"time"

	"github.com/atelierops/maillink-go/internal/conf"
	"github.com/atelierops/maillink-go/internal/datastore"
	"github.com/atelierops/maillink-go/internal/entitycache"
	"github.com/atelierops/maillink-go/internal/logging"
	"github.com/atelierops/maillink-go/internal/observability/metrics"
)

// Engine wires the matcher and committer over a datastore. All
// collaborators are injected, there is no ambient state.
type Engine struct {
	store     datastore.Interface
	matcher   *Matcher
	committer *Committer
	settings  *conf.Settings
	metrics   *metrics.LinkerMetrics
	log       *slog.Logger
}

// New creates an engine over the given datastore. metrics may be nil.
func New(store datastore.Interface, settings *conf.Settings, m *metrics.LinkerMetrics) *Engine {
	cache := entitycache.New(store,
		time.Duration(settings.Linker.EntityCacheTTLMinutes)*time.Minute)
	return &Engine{
		store:     store,
		matcher:   NewMatcher(store, cache, settings),
		committer: NewCommitter(settings),
		settings:  settings,
		metrics:   m,
		log:       logging.ForService("linker"),
	}
}

// Match exposes the pure matching step for callers that want candidates
// without any persistence decision.
func (e *Engine) Match(msg *datastore.Message) ([]Candidate, error) {
	candidates, _, err := e.matcher.Match(msg)
	return candidates, err
}

// ProcessBatch runs the matcher and committer over a message collection.
// Each message's writes happen in one transaction so a link and its
// pattern update commit atomically; the run can be interrupted between
// messages via ctx without leaving partial state. Re-running over already
// processed messages is a no-op.
func (e *Engine) ProcessBatch(ctx context.Context, messages []datastore.Message) (*BatchReport, error) {
	report := NewBatchReport()

	for i := range messages {
		if err := ctx.Err(); err != nil {
			report.CompletedAt = time.Now()
			e.finish(report)
			return report, err
		}

		msg := &messages[i]
		report.Messages++
		candidates, notes, err := e.matcher.Match(msg)
		report.Notes = append(report.Notes, notes...)
		if err != nil {
			// Storage read failure: report the message and move on,
			// the retry contract covers it.
			report.addFailure(msg.ID, 0, err)
			e.log.Error("matching failed", "message_id", msg.ID, "error", err)
			continue
		}
		if len(candidates) == 0 {
			continue
		}

		t := newTally()
		err = e.store.Transaction(func(tx datastore.Interface) error {
			return e.committer.Commit(tx, msg, candidates, t)
		})
		if err != nil {
			report.addFailure(msg.ID, 0, err)
			if e.metrics != nil {
				e.metrics.RecordPersistFailure()
			}
			e.log.Error("commit transaction failed", "message_id", msg.ID, "error", err)
			continue
		}
		report.absorb(t)
		e.recordTally(t)
	}

	report.CompletedAt = time.Now()
	e.finish(report)
	return report, nil
}

// ProcessSince loads messages sent at or after the watermark and processes
// them. A zero watermark falls back to the latest link activity so routine
// runs only touch new mail.
func (e *Engine) ProcessSince(ctx context.Context, since time.Time) (*BatchReport, error) {
	if since.IsZero() {
		latest, err := e.store.LatestLinkActivity()
		if err != nil {
			return nil, err
		}
		since = latest
	}

	messages, err := e.store.GetMessagesSince(since)
	if err != nil {
		return nil, err
	}
	return e.ProcessBatch(ctx, messages)
}

func (e *Engine) recordTally(t *tally) {
	if e.metrics == nil {
		return
	}
	for kind, n := range t.links {
		for range n {
			e.metrics.RecordLinkCreated(string(kind))
		}
	}
	for kind, n := range t.suggestions {
		for range n {
			e.metrics.RecordSuggestionCreated(string(kind))
		}
	}
	for kind, n := range t.noise {
		for range n {
			e.metrics.RecordNoiseSkipped(string(kind))
		}
	}
}

func (e *Engine) finish(report *BatchReport) {
	if e.metrics != nil {
		e.metrics.RecordBatch(report.CompletedAt.Sub(report.StartedAt).Seconds(), report.Messages)
		if depth, err := e.store.CountSuggestions(datastore.SuggestionPending); err == nil {
			e.metrics.SetSuggestionQueueDepth(depth)
		}
	}

	e.log.Info("batch completed",
		"run_id", report.RunID,
		"messages", report.Messages,
		"links", report.TotalLinks(),
		"suggestions", report.TotalSuggestions(),
		"noise", report.TotalNoise(),
		"failures", len(report.FailedPairs),
		"duration", report.CompletedAt.Sub(report.StartedAt))
}
