// Package mailscrub removes unwanted boilerplate from mail messages without
// disturbing anything else. I wrote it to keep a mail archive tidy: most of
// what lands in one is wrapped in disclaimers, signature blocks, tracking
// pixels, and other noise somebody bolted onto the actual message, and I
// want that gone before the message is filed.
//
// The property that matters most here is byte preservation. A message is
// parsed into a tree of parts via message.Parse() and the parts the rules
// match are rewritten. Everything else comes back out byte-for-byte
// identical to how it arrived. Untouched headers keep their original
// folding and field order. Untouched leaves keep their transfer encoding
// as-is. A message filtered with no rules configured serializes to exactly
// its input. Mail is too full of oddball formatting to trust a rewrite of
// anything the rules never matched.
//
// Scrubbing makes two passes over the part tree, driven by three rule lists
// (see the rules package): text patterns, markup patterns, and markup
// selectors. The first pass rewrites text/plain and text/html leaves,
// harvesting the content ids of inline images referenced by whatever markup
// it removes. The second pass drops the parts those ids name. Attachments
// are never filtered by content, so the only way one leaves the message is
// when the markup that referenced it was scrubbed away. The filter package
// is where all of this lives.
//
// The mailbox, sink, and cmd/mailscrub packages wrap the filter in a small
// tool that drains a POP3 account into a directory of scrubbed files,
// deleting nothing from the server until the rewritten copy is safely in
// place.
package mailscrub
