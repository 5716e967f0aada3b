package filter

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/zostay/mailscrub/message/header"
)

// charsetLabel returns the charset declared on the part's Content-type
// field, or an empty string when no usable declaration is present.
func charsetLabel(h *header.Header) string {
	cs, err := h.GetCharset()
	if err != nil {
		return ""
	}
	return cs
}

// resolveCharset maps a declared charset label to the encoding used to
// transcode payload bytes to and from UTF-8. Labels that already denote
// UTF-8 or a subset of it resolve to nil, meaning no transcoding is needed.
// A label naming an encoding this program cannot transcode is an error: the
// declared charset is authoritative for the payload bytes, so guessing
// another one would corrupt the part.
func resolveCharset(label string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return nil, nil
	}

	enc, err := ianaindex.MIME.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("charset %q is not recognized: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %q has no usable encoding", label)
	}
	return enc, nil
}

// decodeText transcodes payload bytes from the given encoding to a UTF-8
// string. A nil encoding passes the bytes through.
func decodeText(enc encoding.Encoding, b []byte) (string, error) {
	if enc == nil {
		return string(b), nil
	}

	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// encodeText transcodes a UTF-8 string back to payload bytes in the given
// encoding. Runes the encoding cannot represent are replaced with the
// encoding's substitute character rather than failing the whole part. A nil
// encoding passes the text through.
func encodeText(enc encoding.Encoding, s string) ([]byte, error) {
	if enc == nil {
		return []byte(s), nil
	}

	return encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(s))
}
