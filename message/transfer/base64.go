package transfer

import (
	"encoding/base64"
	"io"
)

// Encoded base64 bodies wrap at the RFC 2045 line limit.
const base64WrapColumn = 76

var base64WrapBreak = []byte{'\n'}

// wrapWriter breaks its output into lines of at most wrap bytes. The break
// is written lazily, just before the first byte of the next line, so the
// output never ends with a dangling break.
type wrapWriter struct {
	wrap int
	col  int
	lbr  []byte
	out  io.Writer
}

func (ww *wrapWriter) Write(p []byte) (int, error) {
	var written int
	for len(p) > 0 {
		if ww.col == ww.wrap {
			if _, err := ww.out.Write(ww.lbr); err != nil {
				return written, err
			}
			ww.col = 0
		}

		chunk := ww.wrap - ww.col
		if chunk > len(p) {
			chunk = len(p)
		}

		n, err := ww.out.Write(p[:chunk])
		written += n
		ww.col += n
		if err != nil {
			return written, err
		}
		p = p[chunk:]
	}
	return written, nil
}

// NewBase64Encoder returns an io.WriteCloser that encodes written bytes as
// line-wrapped base64 onto w. Close flushes the final quantum and must be
// called to complete the encoding.
func NewBase64Encoder(w io.Writer) io.WriteCloser {
	enc := base64.NewEncoder(base64.StdEncoding, &wrapWriter{
		wrap: base64WrapColumn,
		lbr:  base64WrapBreak,
		out:  w,
	})
	return &writer{enc, enc}
}

// NewBase64Decoder returns an io.Reader that decodes base64 bytes read from
// r. Line breaks in the input are skipped by the decoder.
func NewBase64Decoder(r io.Reader) io.Reader {
	return base64.NewDecoder(base64.StdEncoding, r)
}
