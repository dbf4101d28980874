package moderation

import "strings"

// WordListFilter rejects text containing any of a configured set of terms.
// Matching is case-insensitive substring search, which is how the platform
// treats evasive spacing and embedding.
type WordListFilter struct {
	terms []string
}

// defaultTerms covers the scam and off-platform-payment phrases the rental
// platform blocks in chat.
var defaultTerms = []string{
	"wire me directly",
	"western union",
	"off-platform payment",
	"send gift card",
	"deposit before viewing",
}

func NewWordListFilter(terms ...string) *WordListFilter {
	if len(terms) == 0 {
		terms = defaultTerms
	}
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			normalized = append(normalized, t)
		}
	}
	return &WordListFilter{terms: normalized}
}

func (f *WordListFilter) ContainsBadWord(text string) bool {
	lowered := strings.ToLower(text)
	for _, term := range f.terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
