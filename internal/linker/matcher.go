// matcher.go: rule evaluation over one message against the entity store
// and pattern library.
package linker

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/atelierops/maillink-go/internal/conf"
	"github.com/atelierops/maillink-go/internal/datastore"
	"github.com/atelierops/maillink-go/internal/entitycache"
	"github.com/atelierops/maillink-go/internal/logging"
)

// Matcher evaluates the ordered matching rules for one message. It reads
// the entity store and pattern library but never mutates either.
type Matcher struct {
	store    datastore.Interface
	entities *entitycache.Cache
	settings *conf.Settings
	log      *slog.Logger
}

// NewMatcher creates a matcher over the given stores.
func NewMatcher(store datastore.Interface, entities *entitycache.Cache, settings *conf.Settings) *Matcher {
	return &Matcher{
		store:    store,
		entities: entities,
		settings: settings,
		log:      logging.ForService("matcher"),
	}
}

// Match produces candidates for one message, highest confidence first,
// one per entity with rationales merged. Malformed fields never abort
// matching; they skip the affected rule and surface as notes for the
// batch log. The returned error covers storage reads only.
func (m *Matcher) Match(msg *datastore.Message) (candidates []Candidate, notes []string, err error) {
	if msg == nil {
		return nil, nil, nil
	}

	entities, err := m.entities.Snapshot()
	if err != nil {
		return nil, nil, err
	}
	patterns, err := m.store.GetActivePatterns()
	if err != nil {
		return nil, nil, err
	}

	entityByID := make(map[uint]datastore.BusinessEntity, len(entities))
	for _, e := range entities {
		entityByID[e.ID] = e
	}

	sender := normalizeAddress(msg.Sender)
	if msg.Sender != "" && sender == "" {
		notes = append(notes, fmt.Sprintf("message %d: unparseable sender address, address rules skipped", msg.ID))
	}

	var recipients []string
	for _, raw := range splitRecipients(msg.Recipients) {
		if addr := normalizeAddress(raw); addr != "" {
			recipients = append(recipients, addr)
		} else {
			notes = append(notes, fmt.Sprintf("message %d: unparseable recipient %q skipped", msg.ID, raw))
		}
	}

	subject := normalizeText(msg.Subject)
	body := normalizeText(messageText(msg))
	// An empty thread id means no thread, never an inheritable key.
	threadID := strings.TrimSpace(msg.ThreadID)

	var raw []Candidate

	// Rule 2: exact contact match.
	for _, e := range entities {
		contact := strings.ToLower(strings.TrimSpace(e.ContactEmail))
		if contact == "" {
			continue
		}
		matched := sender == contact
		if !matched {
			for _, r := range recipients {
				if r == contact {
					matched = true
					break
				}
			}
		}
		if matched {
			raw = append(raw, Candidate{
				EntityID:     e.ID,
				EntityCode:   e.Code,
				Confidence:   ConfidenceExactContact,
				RuleKind:     RuleExactContact,
				Rationale:    "contact email exact match",
				PatternKind:  datastore.PatternSenderEmail,
				PatternValue: contact,
			})
		}
	}

	// Rule 3: thread inheritance from a prior link in the same thread.
	if threadID != "" {
		link, lerr := m.store.GetThreadLink(threadID)
		if lerr != nil {
			return nil, notes, lerr
		}
		if link != nil && link.MessageID != msg.ID {
			raw = append(raw, Candidate{
				EntityID:     link.EntityID,
				EntityCode:   entityByID[link.EntityID].Code,
				Confidence:   ConfidenceThreadInherit,
				RuleKind:     RuleThreadInherit,
				Rationale:    "thread inherits prior link",
				PatternKind:  datastore.PatternThreadInherit,
				PatternValue: threadID,
			})
		}
	}

	// Text-dependent rules need something to match against. A message
	// with neither subject nor body only gets the contact and thread
	// rules above.
	if subject != "" || body != "" {
		textBlob := subject + " " + body

		// Rule 1: explicit business code in subject or body.
		for _, e := range entities {
			code := normalizeText(e.Code)
			if code != "" && strings.Contains(textBlob, code) {
				raw = append(raw, Candidate{
					EntityID:   e.ID,
					EntityCode: e.Code,
					Confidence: ConfidenceExplicitCode,
					RuleKind:   RuleExplicitCode,
					Rationale:  "explicit project code in text",
				})
			}
		}

		// Rule 4: learned pattern match at the pattern's live confidence.
		senderDomain := domainOf(msg.Sender)
		for i := range patterns {
			p := &patterns[i]
			value := strings.ToLower(p.Value)
			var matched bool
			switch p.Kind {
			case datastore.PatternSenderEmail:
				matched = sender != "" && sender == value
			case datastore.PatternSenderDomain:
				matched = senderDomain != "" && senderDomain == value
			case datastore.PatternSubjectKeyword:
				matched = value != "" && strings.Contains(subject, value)
			case datastore.PatternThreadInherit:
				matched = threadID != "" && threadID == p.Value
			}
			if matched {
				raw = append(raw, Candidate{
					EntityID:     p.TargetEntityID,
					EntityCode:   entityByID[p.TargetEntityID].Code,
					Confidence:   p.Confidence,
					RuleKind:     RuleLearnedPattern,
					Rationale:    fmt.Sprintf("learned pattern: %s %q", p.Kind, p.Value),
					PatternKind:  p.Kind,
					PatternValue: p.Value,
				})
			}
		}

		// Rule 5: sender domain matches a client company domain.
		if senderDomain != "" {
			for _, e := range entities {
				if e.ContactDomain != "" && e.ContactDomain == senderDomain {
					raw = append(raw, Candidate{
						EntityID:     e.ID,
						EntityCode:   e.Code,
						Confidence:   ConfidenceDomainMatch,
						RuleKind:     RuleDomainMatch,
						Rationale:    "sender domain matches client company",
						PatternKind:  datastore.PatternSenderDomain,
						PatternValue: senderDomain,
					})
				}
			}
		}

		// Rule 6: fuzzy project name overlap in the subject.
		if subject != "" {
			subjectTokens := make(map[string]struct{})
			for _, tok := range tokenize(subject) {
				subjectTokens[tok] = struct{}{}
			}
			for _, e := range entities {
				var matched []string
				for _, tok := range contentTokens(e.DisplayName, m.settings.Linker.ExtraStop) {
					if _, ok := subjectTokens[tok]; ok {
						matched = append(matched, tok)
					}
				}
				if len(matched) >= 2 {
					raw = append(raw, Candidate{
						EntityID:     e.ID,
						EntityCode:   e.Code,
						Confidence:   ConfidenceNameOverlap,
						RuleKind:     RuleNameOverlap,
						Rationale:    "project name keyword overlap",
						PatternKind:  datastore.PatternSubjectKeyword,
						PatternValue: strings.Join(matched, " "),
					})
				}
			}
		}
	}

	return mergeCandidates(raw), notes, nil
}
