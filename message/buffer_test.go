package message_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zostay/mailscrub/message"
)

// assertEnvelope probes the Subject and Content-type of a finished message.
func assertEnvelope(t *testing.T, got message.Generic, subject, mtype string) {
	t.Helper()

	subj, err := got.GetHeader().GetSubject()
	assert.NoError(t, err)
	assert.Equal(t, subject, subj)

	mt, err := got.GetHeader().GetMediaType()
	assert.NoError(t, err)
	assert.Equal(t, mtype, mt)
}

// assertRendered writes got out and checks both the bytes and the count
// WriteTo reports for them.
func assertRendered(t *testing.T, got message.Generic, want string) {
	t.Helper()

	out := &bytes.Buffer{}
	n, err := got.WriteTo(out)
	assert.NoError(t, err)
	assert.Equal(t, int64(len(want)), n)
	assert.Equal(t, want, out.String())
}

func newHTMLPart() *message.Opaque {
	part := &message.Opaque{
		Reader: strings.NewReader("<p>Inline copy.</p>"),
	}
	part.SetMediaType("text/html")
	return part
}

func newLeafBuffer() (*message.Buffer, string, error) {
	mb := &message.Buffer{}

	mb.SetSubject("digest plain")
	mb.SetMediaType("text/plain")

	_, err := fmt.Fprintln(mb, "Nothing here needs scrubbing.")

	const want = `Subject: digest plain
Content-type: text/plain

Nothing here needs scrubbing.
`

	return mb, want, err
}

const partedWant = `Subject: digest multipart
Content-type: multipart/alternative; boundary=edge42

--edge42
Content-type: text/html

<p>Inline copy.</p>
--edge42--`

// newPrerenderedBuffer builds the same message as newPartedBuffer, but by
// writing the boundaries and the part into the body by hand.
func newPrerenderedBuffer() (*message.Buffer, string, error) { //nolint:unparam // this is a test
	mb := &message.Buffer{}

	mb.SetSubject("digest multipart")
	mb.SetMediaType("multipart/alternative")
	if err := mb.SetBoundary("edge42"); err != nil {
		return nil, partedWant, err
	}

	leaf := newHTMLPart()

	if _, err := fmt.Fprintln(mb, "--edge42"); err != nil {
		return nil, partedWant, err
	}
	_, _ = leaf.WriteTo(mb)
	_, _ = fmt.Fprintln(mb)
	_, _ = fmt.Fprint(mb, "--edge42--")

	return mb, partedWant, nil
}

func newPartedBuffer() (*message.Buffer, string, error) { //nolint:unparam // this is a test
	mb := &message.Buffer{}

	mb.SetSubject("digest multipart")
	mb.SetMediaType("multipart/alternative")
	if err := mb.SetBoundary("edge42"); err != nil {
		return nil, partedWant, err
	}

	mb.Add(newHTMLPart())

	return mb, partedWant, nil
}

func TestBuffer_Add(t *testing.T) {
	t.Parallel()

	mb := &message.Buffer{}

	mb.SetSubject("digest multipart")
	mb.SetMediaType("multipart/alternative")
	err := mb.SetBoundary("edge42")
	assert.NoError(t, err)

	assert.Equal(t, message.ModeUnset, mb.Mode())

	mb.Add(newHTMLPart())

	assert.Equal(t, message.ModeMultipart, mb.Mode())

	assert.Panics(t, func() {
		_, _ = mb.Write([]byte("too late"))
	})

	got, err := mb.Multipart()
	assert.NoError(t, err)

	assertRendered(t, got, partedWant)
}

func TestBuffer_Write(t *testing.T) {
	t.Parallel()

	mb := &message.Buffer{}

	assert.Equal(t, message.ModeUnset, mb.Mode())

	mb.SetSubject("digest opaque")
	mb.SetMediaType("text/plain")

	n, err := fmt.Fprintln(mb, "The scrubber left this body alone.")
	assert.Equal(t, 35, n)
	assert.NoError(t, err)

	assert.Equal(t, message.ModeSingle, mb.Mode())

	assert.Panics(t, func() {
		mb.Add(newHTMLPart())
	})

	assertRendered(t, mb.Opaque(), `Subject: digest opaque
Content-type: text/plain

The scrubber left this body alone.
`)
}

func TestBuffer_Opaque_FromLeaf(t *testing.T) {
	t.Parallel()

	mb, want, err := newLeafBuffer()
	assert.NoError(t, err)

	got := mb.Opaque()

	assertEnvelope(t, got, "digest plain", "text/plain")

	assert.False(t, got.IsMultipart())
	assert.Nil(t, got.GetParts())
	assert.NotNil(t, got.GetReader())

	assertRendered(t, got, want)
}

func TestBuffer_Opaque_FromParts(t *testing.T) {
	t.Parallel()

	mb, want, err := newPartedBuffer()
	assert.NoError(t, err)

	got := mb.Opaque()

	assertEnvelope(t, got, "digest multipart", "multipart/alternative")

	// built from parts, handed back flattened
	assert.False(t, got.IsMultipart())
	assert.Nil(t, got.GetParts())
	assert.NotNil(t, got.GetReader())

	assertRendered(t, got, want)
}

func TestBuffer_Multipart_FromLeaf(t *testing.T) {
	t.Parallel()

	mb, _, err := newLeafBuffer()
	assert.NoError(t, err)

	_, err = mb.Multipart()
	assert.ErrorIs(t, err, message.ErrParsesAsNotMultipart)
}

func TestBuffer_Multipart_FromParts(t *testing.T) {
	t.Parallel()

	mb, want, err := newPartedBuffer()
	assert.NoError(t, err)

	got, err := mb.Multipart()
	assert.NoError(t, err)

	assertEnvelope(t, got, "digest multipart", "multipart/alternative")

	assert.True(t, got.IsMultipart())
	assert.Len(t, got.GetParts(), 1)
	assert.Nil(t, got.GetReader())

	assertRendered(t, got, want)
}

func TestBuffer_Multipart_FromPrerendered(t *testing.T) {
	t.Parallel()

	mb, want, err := newPrerenderedBuffer()
	assert.NoError(t, err)

	got, err := mb.Multipart()
	assert.NoError(t, err)

	assertEnvelope(t, got, "digest multipart", "multipart/alternative")

	assert.True(t, got.IsMultipart())
	assert.Len(t, got.GetParts(), 1)
	assert.Nil(t, got.GetReader())

	assertRendered(t, got, want)
}
