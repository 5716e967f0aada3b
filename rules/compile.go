package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
)

// RuleError is returned when a rule in a List fails to compile. It carries
// the offending rule text and its one-based position within the List.
type RuleError struct {
	Rule string // the rule text that failed to compile
	Pos  int    // one-based position of the rule within its List
	Err  error  // the underlying compile error
}

// Error returns the error message naming the bad rule.
func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %d %q: %v", e.Pos, e.Rule, e.Err)
}

// Unwrap returns the underlying compile error.
func (e *RuleError) Unwrap() error {
	return e.Err
}

// Patterns is an ordered list of compiled text-matching rules. Each pattern
// is matched globally against a part payload and every match is replaced
// with the empty string.
type Patterns []*regexp.Regexp

// CompilePatterns compiles each rule in the List as a regular expression.
// Every pattern is compiled with the s flag set, so a dot matches line break
// characters and a single rule may span multiple lines of a payload. Rules
// that are empty after trimming are skipped.
//
// Compilation is fail-fast: the first rule that does not compile aborts with
// a RuleError naming the rule, and no Patterns are returned.
func CompilePatterns(list List) (Patterns, error) {
	ps := make(Patterns, 0, len(list))
	for i, rule := range list {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}

		re, err := regexp.Compile("(?s)" + rule)
		if err != nil {
			return nil, &RuleError{rule, i + 1, err}
		}
		ps = append(ps, re)
	}
	return ps, nil
}

// Selectors is an ordered list of compiled CSS selectors. Each selector is
// evaluated against a parsed markup document and every element it matches is
// removed.
type Selectors []cascadia.Selector

// CompileSelectors compiles each rule in the List as a CSS selector. Rules
// that are empty after trimming are skipped.
//
// Compilation is fail-fast: the first rule that does not compile aborts with
// a RuleError naming the rule, and no Selectors are returned.
func CompileSelectors(list List) (Selectors, error) {
	ss := make(Selectors, 0, len(list))
	for i, rule := range list {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}

		sel, err := cascadia.Compile(rule)
		if err != nil {
			return nil, &RuleError{rule, i + 1, err}
		}
		ss = append(ss, sel)
	}
	return ss, nil
}
