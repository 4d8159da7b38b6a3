// normalize.go: text and address normalization used by the matching rules.
package linker

import (
	"net/mail"
	"strings"
	"unicode"

	"github.com/k3a/html2text"

	"github.com/atelierops/maillink-go/internal/datastore"
)

// Stopwords excluded from fuzzy name matching. Project names in this
// business are short, so generic filler words would otherwise dominate
// the token overlap.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "at": {}, "by": {}, "for": {},
	"in": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {},
	"with": {}, "re": {}, "fw": {}, "fwd": {}, "new": {},
	"project": {}, "proposal": {},
}

// normalizeAddress extracts and lowercases the bare address from a header
// value like `"JP Martin" <jp@pearlresorts.com>`. Returns empty string
// when the value is not a parseable address.
func normalizeAddress(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if parsed, err := mail.ParseAddress(raw); err == nil {
		return strings.ToLower(parsed.Address)
	}
	// Plain addresses without display names still count if well-formed
	if at := strings.LastIndex(raw, "@"); at > 0 && at < len(raw)-1 && !strings.ContainsAny(raw, " <>") {
		return strings.ToLower(raw)
	}
	return ""
}

// domainOf returns the lowercase domain of an address, without the
// leading @, or empty string for unparseable input.
func domainOf(address string) string {
	normalized := normalizeAddress(address)
	if normalized == "" {
		return ""
	}
	at := strings.LastIndex(normalized, "@")
	if at < 0 || at == len(normalized)-1 {
		return ""
	}
	return normalized[at+1:]
}

// splitRecipients splits a stored recipient list on commas and semicolons.
func splitRecipients(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeText lowercases and collapses all whitespace runs to single
// spaces, so business codes match regardless of formatting.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// tokenize splits text into lowercase alphanumeric tokens.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// contentTokens tokenizes and drops stopwords, including any extras
// configured by the operator.
func contentTokens(s string, extraStop []string) []string {
	var out []string
	for _, tok := range tokenize(s) {
		if _, skip := stopwords[tok]; skip {
			continue
		}
		if containsFold(extraStop, tok) {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// messageText returns the matchable text of a message: the stored plain
// body, or the HTML body flattened to text when no plain part was ingested.
func messageText(msg *datastore.Message) string {
	if msg.BodyText != "" {
		return msg.BodyText
	}
	if msg.BodyHTML != "" {
		return html2text.HTML2Text(msg.BodyHTML)
	}
	return ""
}
