package message

import (
	"fmt"
	"io"

	"github.com/zostay/mailscrub/message/header"
)

// Part is one node of a message tree, either a branch or a leaf.
//
// A branch has sub-parts: IsMultipart returns true, GetParts returns the
// children, and GetReader must not be called.
//
// A leaf has content: IsMultipart returns false, GetReader returns the
// body, and GetParts must not be called.
//
// A leaf can still hold a serialized multipart message as content. That
// happens when parsing depth ran out before the part was split, and for
// message/rfc822 attachments, which are content by definition.
type Part interface {
	io.WriterTo

	// IsMultipart reports whether this Part is a branch with nested parts.
	// Call GetParts only when it returns true and GetReader only when it
	// returns false. Skipping the check and handling the nil from the
	// wrong getter works too.
	IsMultipart() bool

	// IsEncoded reports whether the reader from GetReader returns the body
	// bytes still in their Content-transfer-encoding. False means reads
	// are decoded while writes re-encode. Branches always report false;
	// a transfer encoding cannot apply to a part with sub-parts.
	IsEncoded() bool

	// GetHeader is available on every Part.
	GetHeader() *header.Header

	// GetReader returns the content of a leaf and nil for a branch.
	GetReader() io.Reader

	// GetParts returns the children of a branch and nil for a leaf.
	GetParts() []Part
}

// Generic is an alias for Part that marks a complete message rather than a
// sub-part. A Generic is always either an *Opaque or a *Multipart, so a
// two-case type switch covers it.
type Generic = Part

// Multipart is a branch node: a message whose body is sub-parts separated
// by boundary lines. Its Content-type is one of the multipart/* types.
type Multipart struct {
	// Header holds the fields for this layer of the message.
	header.Header

	// prefix and suffix keep the bytes around the boundary lines so the
	// message round-trips exactly: whatever sat before the first boundary
	// and after the final one, usually nothing or a line of preamble text.
	//
	// A nil prefix means the body had no initial boundary, and writing the
	// message out omits it. A non-empty prefix must end in a line break or
	// the written message is malformed.
	//
	// A nil suffix likewise means no final boundary. A non-empty suffix
	// must start with a line break for the same reason.
	prefix, suffix []byte

	// parts are the children, kept in document order
	parts []Part
}

// WriteTo writes the header, boundaries, and parts to w. It fails if the
// Content-type has no boundary parameter set.
//
// Part bodies are consumed as they are written, so this can only be called
// once.
func (mp *Multipart) WriteTo(w io.Writer) (int64, error) {
	boundary, err := mp.GetBoundary()
	if err != nil {
		return 0, err
	}

	br := mp.Break()

	var total int64
	count := func(c int, err error) error {
		total += int64(c)
		return err
	}

	hc, err := mp.Header.WriteTo(w)
	total += hc
	if err != nil {
		return total, err
	}

	if err := count(w.Write(mp.prefix)); err != nil {
		return total, err
	}

	if len(mp.parts) > 0 {
		hasBody := false
		for _, part := range mp.parts {
			if hasBody {
				if err := count(fmt.Fprint(w, br)); err != nil {
					return total, err
				}
			}

			if err := count(fmt.Fprintf(w, "--%s%s", boundary, br)); err != nil {
				return total, err
			}

			// a line break goes between parts only when the previous part
			// wrote any bytes
			hasBody = part.IsMultipart() || part.GetReader() != nil

			pc, err := part.WriteTo(w)
			total += pc
			if err != nil {
				return total, err
			}
		}

		if mp.suffix != nil {
			if err := count(fmt.Fprintf(w, "%s--%s--", br, boundary)); err != nil {
				return total, err
			}
		}
	}

	if err := count(w.Write(mp.suffix)); err != nil {
		return total, err
	}

	return total, nil
}

// IsMultipart returns true for every Multipart.
func (mp *Multipart) IsMultipart() bool {
	return true
}

// IsEncoded returns false. Transfer encodings never apply to a branch.
func (mp *Multipart) IsEncoded() bool {
	return false
}

// GetHeader returns this layer's header.
func (mp *Multipart) GetHeader() *header.Header {
	return &mp.Header
}

// GetReader always returns nil.
func (mp *Multipart) GetReader() io.Reader {
	return nil
}

// GetParts returns the children, or nil when there are none.
func (mp *Multipart) GetParts() []Part {
	return mp.parts
}

// SetParts replaces the sub-parts of this message with the given list. The
// header, including the boundary set on the Content-type, is left
// untouched, as are the prefix and suffix bytes kept for round-tripping.
//
// Setting an empty list is permitted. A multipart message without any
// parts serializes its header, prefix, and suffix, but no boundaries.
func (mp *Multipart) SetParts(parts []Part) {
	mp.parts = parts
}

// MultipartAlternative builds a Multipart holding the given parts, with
// the Content-type set to multipart/alternative.
func MultipartAlternative(subparts ...Part) *Multipart {
	mp := &Multipart{
		parts: subparts,
	}
	mp.SetMediaType("multipart/alternative")
	return mp
}

// MultipartMixed builds a Multipart holding the given parts, with the
// Content-type set to multipart/mixed.
func MultipartMixed(subparts ...Part) *Multipart {
	mp := &Multipart{
		parts: subparts,
	}
	mp.SetMediaType("multipart/mixed")
	return mp
}
