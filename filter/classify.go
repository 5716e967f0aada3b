package filter

import (
	"strings"

	"github.com/zostay/mailscrub/message"
	"github.com/zostay/mailscrub/message/header"
)

// Class identifies how the scrubbing engine treats a single message part.
type Class int

const (
	// OtherLeaf is a leaf part with a content type the engine does not
	// rewrite. Leaves without a usable Content-type field land here too.
	// These parts pass through untouched.
	OtherLeaf Class = iota

	// PlainText is a non-attachment leaf part declaring text/plain.
	PlainText

	// Markup is a non-attachment leaf part declaring text/html.
	Markup

	// Composite is a non-attachment part with sub-parts. It has no payload
	// of its own, so it is never rewritten, but the walk descends into its
	// children.
	Composite

	// Attachment is any part carrying a Content-disposition field. It is
	// never inspected or rewritten and the walk does not descend into it,
	// whatever its declared content type.
	Attachment
)

// String returns a short name for the class, suitable for logging.
func (c Class) String() string {
	switch c {
	case PlainText:
		return "plain-text"
	case Markup:
		return "markup"
	case Composite:
		return "composite"
	case Attachment:
		return "attachment"
	default:
		return "other"
	}
}

// IsAttachment reports whether the given part presents itself as an
// attachment. A part is an attachment whenever it carries one or more
// Content-disposition fields. The field body does not matter: inline
// dispositions count as much as attachment dispositions do.
func IsAttachment(part message.Part) bool {
	return len(part.GetHeader().GetIndexesNamed(header.ContentDisposition)) > 0
}

// Classify assigns the given part the Class that decides its treatment
// during the filter pass. Attachment always wins over the other classes.
func Classify(part message.Part) Class {
	if IsAttachment(part) {
		return Attachment
	}

	if part.IsMultipart() {
		return Composite
	}

	mt, err := part.GetHeader().GetMediaType()
	if err != nil {
		return OtherLeaf
	}

	switch strings.ToLower(mt) {
	case "text/plain":
		return PlainText
	case "text/html":
		return Markup
	}

	return OtherLeaf
}
