package message

import (
	"io"

	"github.com/zostay/mailscrub/message/header"
	"github.com/zostay/mailscrub/message/transfer"
)

// Opaque is a leaf message: a header and a body of undifferentiated bytes,
// in the shape of net/mail but byte-preserving. A multipart message parsed
// with multipart handling disabled is also an Opaque, with the boundaries
// left inside the body.
type Opaque struct {
	// Header holds the message or part header.
	header.Header

	// Reader holds the body content. A body of zero bytes is a nil Reader.
	io.Reader

	// encoded reports whether Reader still carries the
	// Content-transfer-encoding. Parsing leaves bodies encoded unless the
	// DecodeTransferEncoding option asks otherwise; bodies written through
	// a Buffer are decoded unless built with OpaqueAlreadyEncoded.
	encoded bool
}

// WriteTo writes the header and body to w. A body whose transfer encoding
// was decoded is re-encoded on the way out; an untouched body is copied
// byte for byte, which is what keeps an unmodified message identical on
// round trip.
//
// The body Reader is consumed, so this can only be called once.
func (op *Opaque) WriteTo(w io.Writer) (int64, error) {
	wrote, err := op.Header.WriteTo(w)
	if err != nil {
		return wrote, err
	}

	dst := w
	if !op.encoded {
		enc := transfer.ApplyTransferEncoding(&op.Header, w)
		defer func() { _ = enc.Close() }()
		dst = enc
	}

	if op.Reader != nil {
		n, err := io.Copy(dst, op.Reader)
		wrote += n
		if err != nil {
			return wrote, err
		}
	}

	return wrote, nil
}

// IsMultipart always returns false.
func (op *Opaque) IsMultipart() bool {
	return false
}

// IsEncoded reports whether reading the body returns the bytes still in
// their Content-transfer-encoding. When true, the Reader and WriteTo agree
// byte for byte. When false, the Reader yields decoded bytes while WriteTo
// re-encodes; note that encodings like 7bit and 8bit pass bytes through
// either way.
func (op *Opaque) IsEncoded() bool {
	return op.encoded
}

// GetHeader returns the header for the message.
func (op *Opaque) GetHeader() *header.Header {
	return &op.Header
}

// GetReader returns the body. See IsEncoded for whether these bytes match
// what WriteTo would produce.
func (op *Opaque) GetReader() io.Reader {
	return op.Reader
}

// GetParts always returns nil.
func (op *Opaque) GetParts() []Part {
	return nil
}
