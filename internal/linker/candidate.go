// Package linker implements the email-to-entity matching and suggestion
// pipeline: rule evaluation, threshold routing, the review workflow and
// pattern reinforcement.
package linker

import (
	"sort"
	"strings"
)

// RuleKind identifies which matching rule produced a candidate. The set is
// closed so rationale handling and pattern reinforcement stay exhaustive.
type RuleKind string

const (
	RuleExplicitCode   RuleKind = "explicit_code"
	RuleExactContact   RuleKind = "exact_contact"
	RuleThreadInherit  RuleKind = "thread_inherit"
	RuleLearnedPattern RuleKind = "learned_pattern"
	RuleDomainMatch    RuleKind = "domain_match"
	RuleNameOverlap    RuleKind = "name_overlap"
)

// Fixed confidences for the deterministic rule tiers. Learned patterns use
// their own live confidence instead.
const (
	ConfidenceExplicitCode  = 0.95
	ConfidenceExactContact  = 0.95
	ConfidenceThreadInherit = 0.90
	ConfidenceDomainMatch   = 0.75
	ConfidenceNameOverlap   = 0.55
)

// ruleTier orders rule kinds for tie-breaking: when two rules match the
// same entity at equal confidence, the earlier tier wins the merge.
var ruleTier = map[RuleKind]int{
	RuleExplicitCode:   1,
	RuleExactContact:   2,
	RuleThreadInherit:  3,
	RuleLearnedPattern: 4,
	RuleDomainMatch:    5,
	RuleNameOverlap:    6,
}

// Candidate is a proposed pairing of one message with one entity, before
// any persistence decision is made.
type Candidate struct {
	EntityID     uint
	EntityCode   string
	Confidence   float64
	RuleKind     RuleKind
	Rationale    string
	PatternKind  string // datastore pattern kind backing reinforcement, empty if none
	PatternValue string
}

// mergeCandidates reduces raw rule matches to one candidate per entity,
// keeping the highest-confidence match and merging rationales. Distinct
// entities at equal confidence each keep their own candidate, the
// ambiguity is left for human review.
func mergeCandidates(raw []Candidate) []Candidate {
	best := make(map[uint]Candidate)
	extra := make(map[uint][]string)

	for _, c := range raw {
		current, seen := best[c.EntityID]
		if !seen {
			best[c.EntityID] = c
			continue
		}
		if c.Confidence > current.Confidence ||
			(c.Confidence == current.Confidence && ruleTier[c.RuleKind] < ruleTier[current.RuleKind]) {
			extra[c.EntityID] = append(extra[c.EntityID], current.Rationale)
			best[c.EntityID] = c
		} else {
			extra[c.EntityID] = append(extra[c.EntityID], c.Rationale)
		}
	}

	merged := make([]Candidate, 0, len(best))
	for entityID, c := range best {
		if others := extra[entityID]; len(others) > 0 {
			c.Rationale = c.Rationale + "; " + strings.Join(others, "; ")
		}
		merged = append(merged, c)
	}

	// Highest confidence first, entity id as a stable tie-break.
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Confidence != merged[j].Confidence {
			return merged[i].Confidence > merged[j].Confidence
		}
		return merged[i].EntityID < merged[j].EntityID
	})

	return merged
}
