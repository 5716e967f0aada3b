package filter

import "github.com/zostay/mailscrub/rules"

// TextFilter rewrites plain text payloads by applying each configured
// pattern, in rule order, as a global substitution with the empty string.
// Patterns match across line breaks, so a single rule may remove a
// multi-line region. Nothing is harvested from plain text.
type TextFilter struct {
	patterns rules.Patterns
}

// NewTextFilter builds a TextFilter from compiled patterns.
func NewTextFilter(patterns rules.Patterns) *TextFilter {
	return &TextFilter{patterns}
}

// Active reports whether the filter has any patterns to apply. An inactive
// filter is not applied at all, which keeps the exact bytes of the parts it
// would otherwise rewrite.
func (f *TextFilter) Active() bool {
	return len(f.patterns) > 0
}

// Apply runs every pattern against the text in rule order and returns the
// rewritten text. Every non-overlapping occurrence of each pattern is
// replaced with the empty string. Nil patterns are skipped.
func (f *TextFilter) Apply(text string) string {
	for _, p := range f.patterns {
		if p == nil {
			continue
		}
		text = p.ReplaceAllString(text, "")
	}
	return text
}
