package valueobjects

import "strings"

// KeywordFilter restricts which facts take part in a regeneration run.
// A piece of content passes when it contains any of the terms, ignoring
// case. The zero value has no terms and passes everything.
type KeywordFilter struct {
	terms []string
}

// NewKeywordFilter lower-cases each keyword and keeps it otherwise as given,
// surrounding whitespace included. Only "" is dropped, so NewKeywordFilter("")
// is the empty filter.
func NewKeywordFilter(keywords ...string) KeywordFilter {
	var terms []string
	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(k)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		terms = append(terms, k)
	}
	return KeywordFilter{terms: terms}
}

func (f KeywordFilter) IsEmpty() bool { return len(f.terms) == 0 }

// Terms returns the normalized keywords.
func (f KeywordFilter) Terms() []string {
	return append([]string(nil), f.terms...)
}

func (f KeywordFilter) Matches(content string) bool {
	if f.IsEmpty() {
		return true
	}
	lower := strings.ToLower(content)
	for _, term := range f.terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func (f KeywordFilter) String() string {
	return strings.Join(f.terms, "|")
}
