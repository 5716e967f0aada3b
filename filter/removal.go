package filter

import "strings"

// A RemovalSet collects the content identifiers harvested while filtering
// one message. It is written during the filter pass, read during the prune
// pass, and discarded with the message. A RemovalSet is never shared between
// messages.
type RemovalSet map[string]struct{}

// NormalizeID reduces a content identifier to its comparable form:
// surrounding whitespace and one layer of angle brackets are stripped and
// the rest is lowercased. Content-id fields are usually written with
// brackets ("<frame001>") while cid: references inside markup are written
// without, so both spellings normalize to the same key.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "<")
	id = strings.TrimSuffix(id, ">")
	return strings.ToLower(strings.TrimSpace(id))
}

// Add normalizes the given content identifier and adds it to the set.
func (s RemovalSet) Add(id string) {
	s[NormalizeID(id)] = struct{}{}
}

// Contains reports whether the normalized form of the given content
// identifier is present in the set.
func (s RemovalSet) Contains(id string) bool {
	_, found := s[NormalizeID(id)]
	return found
}
