// report.go: the operator-facing summary of one batch run.
package linker

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FailedPair identifies a candidate whose commit failed and needs retry.
// Retrying is safe, every commit path is idempotent.
type FailedPair struct {
	MessageID uint
	EntityID  uint
	Err       string
}

// BatchReport summarizes one processing run: what was committed, what was
// queued for review, what was dropped as noise and what failed to persist.
type BatchReport struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt time.Time
	Messages    int

	LinksCreated       map[RuleKind]int
	SuggestionsCreated map[RuleKind]int
	NoiseSkipped       map[RuleKind]int
	FailedPairs        []FailedPair
	Notes              []string
}

// NewBatchReport creates an empty report stamped with a fresh run id.
func NewBatchReport() *BatchReport {
	return &BatchReport{
		RunID:              uuid.NewString(),
		StartedAt:          time.Now(),
		LinksCreated:       make(map[RuleKind]int),
		SuggestionsCreated: make(map[RuleKind]int),
		NoiseSkipped:       make(map[RuleKind]int),
	}
}

// tally stages one message's routing outcomes so they reach the report
// only after the surrounding transaction has committed. A rolled-back
// message contributes nothing but its failure entry.
type tally struct {
	links       map[RuleKind]int
	suggestions map[RuleKind]int
	noise       map[RuleKind]int
}

func newTally() *tally {
	return &tally{
		links:       make(map[RuleKind]int),
		suggestions: make(map[RuleKind]int),
		noise:       make(map[RuleKind]int),
	}
}

// absorb folds a committed message's tally into the report.
func (r *BatchReport) absorb(t *tally) {
	for kind, n := range t.links {
		r.LinksCreated[kind] += n
	}
	for kind, n := range t.suggestions {
		r.SuggestionsCreated[kind] += n
	}
	for kind, n := range t.noise {
		r.NoiseSkipped[kind] += n
	}
}

func (r *BatchReport) addFailure(messageID, entityID uint, err error) {
	r.FailedPairs = append(r.FailedPairs, FailedPair{
		MessageID: messageID,
		EntityID:  entityID,
		Err:       err.Error(),
	})
}

// TotalLinks returns the number of links committed across all rule kinds.
func (r *BatchReport) TotalLinks() int {
	total := 0
	for _, n := range r.LinksCreated {
		total += n
	}
	return total
}

// TotalSuggestions returns the number of suggestions queued across all rule kinds.
func (r *BatchReport) TotalSuggestions() int {
	total := 0
	for _, n := range r.SuggestionsCreated {
		total += n
	}
	return total
}

// TotalNoise returns the number of candidates dropped below the low threshold.
func (r *BatchReport) TotalNoise() int {
	total := 0
	for _, n := range r.NoiseSkipped {
		total += n
	}
	return total
}

// Render formats the report as a human-readable table for the CLI.
func (r *BatchReport) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch %s\n", r.RunID)
	fmt.Fprintf(&b, "  messages processed: %d in %s\n", r.Messages,
		r.CompletedAt.Sub(r.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(&b, "  links committed:    %d\n", r.TotalLinks())
	fmt.Fprintf(&b, "  queued for review:  %d\n", r.TotalSuggestions())
	fmt.Fprintf(&b, "  skipped as noise:   %d\n", r.TotalNoise())

	for _, section := range []struct {
		label  string
		counts map[RuleKind]int
	}{
		{"links", r.LinksCreated},
		{"suggestions", r.SuggestionsCreated},
		{"noise", r.NoiseSkipped},
	} {
		if len(section.counts) == 0 {
			continue
		}
		kinds := make([]string, 0, len(section.counts))
		for kind := range section.counts {
			kinds = append(kinds, string(kind))
		}
		sort.Strings(kinds)
		fmt.Fprintf(&b, "  by rule (%s):\n", section.label)
		for _, kind := range kinds {
			fmt.Fprintf(&b, "    %-18s %d\n", kind, section.counts[RuleKind(kind)])
		}
	}

	if len(r.FailedPairs) > 0 {
		fmt.Fprintf(&b, "  FAILED to persist (retry the batch):\n")
		for _, fp := range r.FailedPairs {
			fmt.Fprintf(&b, "    message %d / entity %d: %s\n", fp.MessageID, fp.EntityID, fp.Err)
		}
	}
	for _, note := range r.Notes {
		fmt.Fprintf(&b, "  note: %s\n", note)
	}

	return b.String()
}
