package filter

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding"

	"github.com/zostay/mailscrub/rules"
)

// cidRefMatch finds embedded-image references within markup text. The
// identifier between cid: and the closing quote is the reference target.
var cidRefMatch = regexp.MustCompile(`(?i)src="cid:([^"]+)"`)

// harvestRefs scans text for embedded-image references and adds each
// referenced content identifier to the removal set.
func harvestRefs(text string, removals RemovalSet) {
	for _, m := range cidRefMatch.FindAllStringSubmatch(text, -1) {
		removals.Add(m[1])
	}
}

// MarkupFilter rewrites HTML payloads. Configured selectors remove whole
// elements from the parsed document and configured patterns remove matching
// text, in that order. Both removal mechanisms harvest embedded-image
// references from the fragments they remove, so the parts those fragments
// referenced can be pruned afterwards.
type MarkupFilter struct {
	selectors rules.Selectors
	patterns  rules.Patterns
}

// NewMarkupFilter builds a MarkupFilter from compiled selectors and
// patterns. Either list may be empty.
func NewMarkupFilter(selectors rules.Selectors, patterns rules.Patterns) *MarkupFilter {
	return &MarkupFilter{selectors, patterns}
}

// Active reports whether the filter has any selectors or patterns to apply.
// An inactive filter is not applied at all, which keeps the exact bytes of
// the parts it would otherwise rewrite.
func (f *MarkupFilter) Active() bool {
	return len(f.selectors) > 0 || len(f.patterns) > 0
}

// Apply rewrites the given markup text and records every harvested
// embedded-image reference in the removal set.
//
// The text must already be UTF-8. When the part declared a charset other
// than UTF-8, enc carries its encoding and the rewritten document is
// round-tripped through it, so that characters the declared charset cannot
// represent are normalized before the caller re-encodes the payload.
//
// First every non-breaking-space entity is replaced with a plain space.
// Then, if selectors are configured, the text is parsed as a document and
// each selector, in rule order, removes the elements it matches, harvesting
// references from each removed subtree; the document is serialized back to
// text afterwards. Finally, configured patterns are applied as in
// TextFilter.Apply, except that text captured by a pattern's first group is
// scanned for references before the match is removed.
func (f *MarkupFilter) Apply(text string, enc encoding.Encoding, removals RemovalSet) (string, error) {
	text = strings.ReplaceAll(text, "&nbsp;", " ")

	if len(f.selectors) > 0 {
		var err error
		text, err = f.applySelectors(text, removals)
		if err != nil {
			return "", err
		}

		if enc != nil {
			b, err := encodeText(enc, text)
			if err != nil {
				return "", err
			}
			text, err = decodeText(enc, b)
			if err != nil {
				return "", err
			}
		}
	}

	if len(f.patterns) > 0 {
		text = f.applyPatterns(text, removals)
	}

	return text, nil
}

// applySelectors parses the text as an HTML document, removes every element
// matched by the configured selectors, and serializes the document back to
// text. Each removed element's subtree is harvested before removal.
func (f *MarkupFilter) applySelectors(text string, removals RemovalSet) (string, error) {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("parsing markup: %w", err)
	}

	for _, sel := range f.selectors {
		if sel == nil {
			continue
		}

		for _, node := range sel.MatchAll(doc) {
			// Matches are gathered before any of them is removed, so an
			// earlier removal may have already detached this one.
			if node.Parent == nil || !attached(doc, node) {
				continue
			}

			if err := harvestNode(node, removals); err != nil {
				return "", err
			}
			node.Parent.RemoveChild(node)
		}
	}

	var buf strings.Builder
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("rendering markup: %w", err)
	}
	return buf.String(), nil
}

// attached reports whether node is still reachable from root.
func attached(root, node *html.Node) bool {
	for n := node; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

// harvestNode serializes the subtree rooted at node and harvests the
// embedded-image references found in it.
func harvestNode(node *html.Node, removals RemovalSet) error {
	var buf strings.Builder
	if err := html.Render(&buf, node); err != nil {
		return fmt.Errorf("rendering removed element: %w", err)
	}
	harvestRefs(buf.String(), removals)
	return nil
}

// applyPatterns runs every pattern against the text in rule order, exactly
// like TextFilter.Apply, but first harvests references from the text each
// pattern captured in its first group.
func (f *MarkupFilter) applyPatterns(text string, removals RemovalSet) string {
	for _, p := range f.patterns {
		if p == nil {
			continue
		}

		for _, m := range p.FindAllStringSubmatch(text, -1) {
			if len(m) > 1 && m[1] != "" {
				harvestRefs(m[1], removals)
			}
		}
		text = p.ReplaceAllString(text, "")
	}
	return text
}
