// Package header models a message header as an ordered list of fields that
// survives a parse/serialize round trip untouched. Every field keeps its raw
// bytes, so a header that is only read — which is most headers the scrubber
// meets — is written back verbatim, original folding, casing, and field
// order included. Only setting a field replaces its raw form.
//
// On top of the raw model sit typed accessors (GetMediaType, GetCharset,
// GetContentID, GetBoundary and friends) that parse a field body on demand
// and cache the result. These drive part classification and pruning without
// ever rewriting the field they read.
package header
