package transfer_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zostay/mailscrub/message/transfer"
)

// the encoding itself is the standard library's; these only check that it is
// wired up in both directions

var qpWire = []byte("=E9=3D!")
var qpPlain = []byte{0xe9, '=', '!'}

func TestNewQuotedPrintableDecoder(t *testing.T) {
	t.Parallel()

	dr := transfer.NewQuotedPrintableDecoder(bytes.NewReader(qpWire))
	got, err := io.ReadAll(dr)
	assert.NoError(t, err)
	assert.Equal(t, qpPlain, got)
}

func TestNewQuotedPrintableEncoder(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	wc := transfer.NewQuotedPrintableEncoder(out)
	n, err := wc.Write(qpPlain)
	assert.Equal(t, len(qpPlain), n)
	assert.NoError(t, err)

	err = wc.Close()
	assert.NoError(t, err)

	assert.Equal(t, qpWire, out.Bytes())
}
