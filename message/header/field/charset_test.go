package field_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	_ "github.com/zostay/mailscrub/message/header/encoding"
	"github.com/zostay/mailscrub/message/header/field"
)

// The same Greek sentence twice: once in ISO-8859-7 bytes, once in UTF-8.
var greekISO = []byte(
	"\xc7\x20\xf3\xdc\xf1\xf9\xf3\xe7\x20\xea\xf1\xe1\xf4\xdc\x20\xe1\xec\xe5" +
		"\xf4\xdc\xe2\xeb\xe7\xf4\xe1\x20\xfc\xeb\xe1\x20\xf4\xe1\x20\xf5\xf0\xfc" +
		"\xeb\xef\xe9\xf0\xe1\x20\xec\xdd\xf1\xe7\x20\xf4\xef\xf5\x20\xec\xe7\xed" +
		"\xfd\xec\xe1\xf4\xef\xf2\x2e",
)

var greekUTF8 = []byte(
	"Η σάρωση κρατά αμετάβλητα όλα τα υπόλοιπα μέρη του μηνύματος.",
)

// One rune the us-ascii codec cannot represent, to exercise substitution.
var pencilLine = "Decoding keeps every byte it can and substitutes the rest. 🖊"
var pencilSub = "Decoding keeps every byte it can and substitutes the rest. \x1a"
var pencilRepl = "Decoding keeps every byte it can and substitutes the rest. \xef\xbf\xbd\xef\xbf\xbd\xef\xbf\xbd\xef\xbf\xbd"

func TestDefaultCharsetDecoder(t *testing.T) {
	t.Parallel()

	// the default decoder only knows utf-8 and us-ascii
	_, err := field.DefaultCharsetDecoder("greek", greekISO)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported byte encoding")

	got, err := field.DefaultCharsetDecoder("utf-8", greekUTF8)
	assert.NoError(t, err)
	assert.Equal(t, greekUTF8, []byte(got))

	// no charset label falls back to us-ascii; each non-ASCII byte decodes
	// to the replacement character
	got, err = field.DefaultCharsetDecoder("", []byte(pencilLine))
	assert.NoError(t, err)
	assert.Equal(t, []byte(pencilRepl), []byte(got))
}

func TestCharsetDecoder(t *testing.T) {
	t.Parallel()

	// the header/encoding import swaps in the IANA-index decoder
	got, err := field.CharsetDecoder("greek", greekISO)
	assert.NoError(t, err)
	assert.Equal(t, greekUTF8, []byte(got))
}

func TestDefaultCharsetEncoder(t *testing.T) {
	t.Parallel()

	_, err := field.DefaultCharsetEncoder("greek", string(greekUTF8))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported byte encoding")

	got, err := field.DefaultCharsetEncoder("utf-8", string(greekUTF8))
	assert.NoError(t, err)
	assert.Equal(t, greekUTF8, got)

	// the unrepresentable rune encodes to a single substitute byte
	got, err = field.DefaultCharsetEncoder("", pencilLine)
	assert.NoError(t, err)
	assert.Equal(t, []byte(pencilSub), got)
}

func TestCharsetEncoder(t *testing.T) {
	t.Parallel()

	got, err := field.CharsetEncoder("greek", string(greekUTF8))
	assert.NoError(t, err)
	assert.Equal(t, greekISO, got)
}

func TestCharsetDecoderToCharsetReader(t *testing.T) {
	t.Parallel()

	toReader := field.CharsetDecoderToCharsetReader(field.CharsetDecoder)

	rd, err := toReader("greek", bytes.NewReader(greekISO))
	assert.NoError(t, err)
	got, err := io.ReadAll(rd)
	assert.NoError(t, err)
	assert.Equal(t, greekUTF8, got)
}
