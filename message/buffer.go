package message

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/zostay/mailscrub/message/header"
)

// DefaultMultipartContentType is the Content-type given to a multipart
// message built without an explicit Content-type field.
const DefaultMultipartContentType = "multipart/mixed"

// BufferMode says how a Buffer has been used so far.
type BufferMode int

const (
	// ModeUnset means nothing has been written to the Buffer yet.
	ModeUnset BufferMode = iota

	// ModeSingle means the Buffer has been used as an io.Writer.
	ModeSingle

	// ModeMultipart means parts have been added to the Buffer.
	ModeMultipart
)

var (
	// ErrPartsBuffer means Write was called on a Buffer already holding
	// parts.
	ErrPartsBuffer = errors.New("buffer already holds parts")

	// ErrOpaqueBuffer means Add was called on a Buffer already written to.
	ErrOpaqueBuffer = errors.New("buffer already holds body bytes")

	// ErrModeUnset means Opaque or Multipart was called before anything was
	// put into the Buffer.
	ErrModeUnset = errors.New("nothing has been buffered")

	// ErrParsesAsNotMultipart means Multipart was called on content that
	// does not parse as a multipart message.
	ErrParsesAsNotMultipart = errors.New("buffered content is not a multipart message")
)

// Buffer builds a message, either from bytes or from parts. Writing bytes
// with Write puts it in ModeSingle; adding parts with Add puts it in
// ModeMultipart. The two are exclusive: once a Buffer is in one mode,
// using it the other way panics with ErrPartsBuffer or ErrOpaqueBuffer.
//
// The filter engine uses a Buffer in ModeSingle to rebuild a leaf part
// around its rewritten body while keeping a clone of the original header.
//
// Either way, the built message comes out of Opaque or Multipart. A Buffer
// is single-use; dispose of it after taking the message out.
type Buffer struct {
	header.Header
	parts []Part
	body  *bytes.Buffer
}

// Mode reports how the Buffer has been used so far.
func (bf *Buffer) Mode() BufferMode {
	if bf.parts != nil {
		return ModeMultipart
	} else if bf.body != nil {
		return ModeSingle
	}
	return ModeUnset
}

func (bf *Buffer) initBuffer() error {
	if bf.parts != nil {
		return ErrPartsBuffer
	}
	if bf.body == nil {
		bf.body = &bytes.Buffer{}
	}
	return nil
}

func (bf *Buffer) initParts(want int) error {
	if want == 0 {
		want = 10
	}
	if bf.body != nil {
		return ErrOpaqueBuffer
	}
	if bf.parts == nil {
		bf.parts = make([]Part, 0, want)
	}
	return nil
}

// Add appends parts to the message. It panics with ErrOpaqueBuffer if the
// Buffer has already been written to.
func (bf *Buffer) Add(parts ...Part) {
	if err := bf.initParts(0); err != nil {
		panic(err)
	}
	bf.parts = append(bf.parts, parts...)
}

// Write appends body bytes to the message, implementing io.Writer. It
// panics with ErrPartsBuffer if the Buffer already holds parts.
func (bf *Buffer) Write(p []byte) (int, error) {
	if err := bf.initBuffer(); err != nil {
		panic(err)
	}
	return bf.body.Write(p)
}

// prepareForMultipartOutput fills in the Content-type pieces that joining
// parts requires but the caller may not have set.
func (bf *Buffer) prepareForMultipartOutput() {
	if _, err := bf.GetMediaType(); errors.Is(err, header.ErrNoSuchField) {
		bf.SetMediaType(DefaultMultipartContentType)
	}

	if _, err := bf.GetBoundary(); errors.Is(err, header.ErrNoSuchFieldParameter) {
		_ = bf.SetBoundary(GenerateBoundary())
	}
}

// Opaque returns the built message as an *Opaque. It panics with
// ErrModeUnset when nothing has been put into the Buffer.
//
// In ModeSingle the written bytes become the body as-is.
//
// In ModeMultipart the parts are serialized into a flat body joined on the
// Content-type boundary. Set the Content-type field to the multipart/*
// type you mean before calling; a missing media type falls back to
// DefaultMultipartContentType and a missing boundary parameter is filled
// with GenerateBoundary.
func (bf *Buffer) Opaque() *Opaque {
	switch bf.Mode() {
	case ModeSingle:
		return &Opaque{
			Header: bf.Header,
			Reader: bf.body,
		}
	case ModeMultipart:
		bf.prepareForMultipartOutput()
		boundary, _ := bf.GetBoundary()

		joined := &bytes.Buffer{}
		if len(bf.parts) > 0 {
			for _, part := range bf.parts {
				_, _ = fmt.Fprintf(joined, "--%s%s", boundary, bf.Break())
				_, _ = part.WriteTo(joined)
				_, _ = fmt.Fprint(joined, bf.Break())
			}
			_, _ = fmt.Fprintf(joined, "--%s--", boundary)
		}

		return &Opaque{
			Header: bf.Header,
			Reader: joined,
		}
	case ModeUnset:
		panic(ErrModeUnset)
	}
	panic("unreachable buffer mode")
}

// OpaqueAlreadyEncoded is Opaque for bodies written in already-encoded
// form. It marks the result so that writing it out will not apply the
// Content-transfer-encoding a second time. No encoding is performed here;
// the caller asserts it already happened.
func (bf *Buffer) OpaqueAlreadyEncoded() *Opaque {
	op := bf.Opaque()
	if op != nil {
		op.encoded = true
	}
	return op
}

// Multipart returns the built message as a *Multipart. It panics with
// ErrModeUnset when nothing has been put into the Buffer.
//
// In ModeMultipart the header and collected parts are returned directly.
// As with Opaque, set the Content-type beforehand or accept
// DefaultMultipartContentType and a generated boundary.
//
// In ModeSingle the written bytes must themselves parse as a multipart
// message; they are run through the parser one level deep. A parse error
// is returned as-is, and content that parses to a leaf returns
// ErrParsesAsNotMultipart. When the built message is only going to be
// written out somewhere, Opaque does the same job without the parse.
func (bf *Buffer) Multipart() (*Multipart, error) {
	bf.prepareForMultipartOutput()
	switch bf.Mode() {
	case ModeSingle:
		leaf := &Opaque{bf.Header, bf.body, false}
		sub := defaultParser.fork()
		WithoutRecursion()(sub)
		reparsed, err := sub.parse(leaf, 0)
		switch msg := reparsed.(type) {
		case *Opaque:
			if err != nil {
				return nil, err
			}
			return nil, ErrParsesAsNotMultipart
		case *Multipart:
			return msg, err
		}
		return nil, errors.New("reparsed message is neither Opaque nor Multipart")
	case ModeMultipart:
		mp := &Multipart{
			Header: bf.Header,
			parts:  bf.parts,
		}
		// empty rather than nil, so WriteTo still emits the final boundary
		mp.prefix = []byte{}
		mp.suffix = []byte{}
		return mp, nil
	case ModeUnset:
		panic(ErrModeUnset)
	}
	panic("unreachable buffer mode")
}
