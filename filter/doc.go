// Package filter implements the message scrubbing engine. It rewrites the
// textual parts of a parsed email message according to configured rule lists
// and prunes the embedded attachments that the rewritten markup no longer
// references.
//
// A message moves through the engine in two passes over its part tree. The
// first pass classifies every part (see Classify) and rewrites the payload of
// plain text and markup leaves, skipping attachments entirely. While markup
// is rewritten, every removed fragment is scanned for embedded-image
// references of the form src="cid:xyz" and the referenced content
// identifiers are collected into a RemovalSet. The second pass rebuilds the
// child lists of the message, dropping the leaf parts whose content
// identifier was collected during the first.
//
// Parts the rules never touch keep their exact original bytes, including
// their transfer encoding. Only rewritten payloads and pruned child lists
// differ between input and output.
package filter
