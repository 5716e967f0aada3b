package transfer

import (
	"io"

	"github.com/zostay/mailscrub/message/header"
)

// Values of the Content-transfer-encoding field. The first four name an
// encoding but never change the bytes; only quoted-printable and base64
// transform anything.
const (
	None            = ""
	Bit7            = "7bit"
	Bit8            = "8bit"
	Binary          = "binary"
	QuotedPrintable = "quoted-printable"
	Base64          = "base64"
)

// Transcoding pairs the two directions of one transfer encoding.
type Transcoding struct {
	// Encoder wraps w so that binary data written in comes out encoded.
	// Close the returned io.WriteCloser to flush the tail of the encoding.
	Encoder func(io.Writer) io.WriteCloser

	// Decoder wraps r so that encoded data read through it comes out as
	// binary.
	Decoder func(io.Reader) io.Reader
}

// AsIsTranscoder passes bytes through unchanged in both directions.
var AsIsTranscoder = Transcoding{NewAsIsEncoder, NewAsIsDecoder}

// Transcodings maps each supported Content-transfer-encoding to its
// handling. It is package state; replacing an entry changes handling
// everywhere.
var Transcodings = map[string]Transcoding{
	None:            AsIsTranscoder,
	Bit7:            AsIsTranscoder,
	Bit8:            AsIsTranscoder,
	Binary:          AsIsTranscoder,
	QuotedPrintable: {NewQuotedPrintableEncoder, NewQuotedPrintableDecoder},
	Base64:          {NewBase64Encoder, NewBase64Decoder},
}

// ApplyTransferEncoding wraps w with the encoder named by the header's
// Content-transfer-encoding field. A missing field or an unrecognized
// encoding passes bytes through. Close the returned io.WriteCloser when
// done writing.
func ApplyTransferEncoding(h *header.Header, w io.Writer) io.WriteCloser {
	cte, err := h.GetTransferEncoding()
	if err != nil {
		return &writer{w, nil}
	}

	tc, ok := Transcodings[cte]
	if ok {
		return tc.Encoder(w)
	}

	return &writer{w, nil}
}

// ApplyTransferDecoding wraps r with the decoder named by the header's
// Content-transfer-encoding field. Multipart content never has a transfer
// encoding of its own, so it passes through, as do a missing field and an
// unrecognized encoding.
func ApplyTransferDecoding(h *header.Header, r io.Reader) io.Reader {
	ct, err := h.GetContentType()
	if err == nil && ct != nil && ct.Type() == "multipart" {
		return r
	}

	cte, err := h.GetTransferEncoding()
	if err != nil {
		return r
	}

	tc, ok := Transcodings[cte]
	if ok {
		return tc.Decoder(r)
	}

	return r
}
