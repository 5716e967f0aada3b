package transfer

import (
	"io"
	"mime/quotedprintable"
)

// NewQuotedPrintableEncoder returns an io.WriteCloser that encodes written
// bytes as quoted-printable onto w. Close flushes any partially encoded
// line, so the caller must call it before treating the output as complete.
func NewQuotedPrintableEncoder(w io.Writer) io.WriteCloser {
	qpw := quotedprintable.NewWriter(w)
	return &writer{Writer: qpw, Closer: qpw}
}

// NewQuotedPrintableDecoder returns an io.Reader that decodes
// quoted-printable bytes read from r.
func NewQuotedPrintableDecoder(r io.Reader) io.Reader {
	return quotedprintable.NewReader(r)
}
