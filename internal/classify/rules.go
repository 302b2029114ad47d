package classify

import (
	"strings"

	"github.com/vietddude/faxroute/internal/core/domain"
)

// Matcher is the pure sender/keyword rule matcher. It holds immutable
// configuration and is safe for concurrent use. Matching is deterministic
// and order-stable: the sender mapping is checked first, then keyword rules
// in configured order, first match wins.
type Matcher struct {
	senders  map[string]string
	keywords []domain.KeywordRule
}

// NewMatcher creates a matcher from the configured sender mappings and
// ordered keyword rules. Keyword matching is case-insensitive.
func NewMatcher(senders map[string]string, rules []domain.KeywordRule) *Matcher {
	m := &Matcher{
		senders:  make(map[string]string, len(senders)),
		keywords: make([]domain.KeywordRule, 0, len(rules)),
	}
	for sender, category := range senders {
		m.senders[sender] = category
	}
	for _, rule := range rules {
		m.keywords = append(m.keywords, domain.KeywordRule{
			Keyword:  strings.ToLower(rule.Keyword),
			Category: rule.Category,
		})
	}
	return m
}

// MatchSender returns the mapped category for an exactly matching sender.
func (m *Matcher) MatchSender(sender string) (string, bool) {
	if sender == "" {
		return "", false
	}
	category, ok := m.senders[sender]
	return category, ok
}

// MatchKeywords scans text against the keyword rules in order and returns
// the first matching rule's category.
func (m *Matcher) MatchKeywords(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, rule := range m.keywords {
		if strings.Contains(lower, rule.Keyword) {
			return rule.Category, true
		}
	}
	return "", false
}
