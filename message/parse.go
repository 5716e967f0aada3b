package message

import (
	"bufio"
	"bytes"
	"errors"
	"io"

	"github.com/zostay/mailscrub/internal/scanner"
	"github.com/zostay/mailscrub/message/header"
	"github.com/zostay/mailscrub/message/transfer"
)

// Parse option defaults.
const (
	// DefaultMaxMultipartDepth is how deep Parse recurses into nested
	// multipart parts unless told otherwise.
	DefaultMaxMultipartDepth = 10

	// DefaultChunkSize is how many bytes Parse reads from the input at a
	// time while looking for the end of the header.
	DefaultChunkSize = 16_384

	// DefaultMaxHeaderLength is the most header bytes Parse will buffer
	// before giving up on finding the end of the header.
	DefaultMaxHeaderLength = bufio.MaxScanTokenSize

	// DefaultMaxPartLength is the most bytes a single part may occupy at
	// any one nesting level before Parse gives up.
	DefaultMaxPartLength = bufio.MaxScanTokenSize
)

// Parse errors.
var (
	// ErrNoBoundary means a multipart/* Content-type field has no boundary
	// parameter, so the body cannot be split into parts.
	ErrNoBoundary = errors.New("Content-type names no boundary parameter")

	// ErrLargeHeader means the header grew past WithMaxHeaderLength (or
	// DefaultMaxHeaderLength) without ending.
	ErrLargeHeader = errors.New("header exceeds the parse length limit")

	// ErrLargePart means a part at some level grew past WithMaxPartLength
	// (or DefaultMaxPartLength).
	ErrLargePart = errors.New("message part exceeds the parse length limit")
)

// headBreaks are the doubled line breaks that can end a header, most likely
// first. The order is a priority order, not a position order.
var headBreaks = [][]byte{
	[]byte("\r\n\r\n"),
	[]byte("\n\r\n\r"), // rare to the point of theoretical
	[]byte("\n\n"),
	[]byte("\r\r"),
}

type parser struct {
	headCap      int
	partCap      int
	depthCap     int
	readSize     int
	decodeBodies bool
}

func (pr *parser) fork() *parser {
	cp := *pr
	return &cp
}

var defaultParser = &parser{
	headCap:      DefaultMaxHeaderLength,
	partCap:      DefaultMaxPartLength,
	depthCap:     DefaultMaxMultipartDepth,
	readSize:     DefaultChunkSize,
	decodeBodies: false,
}

// ParseOption adjusts how Parse reads a message.
type ParseOption func(*parser)

// WithMaxHeaderLength caps how many bytes may be buffered while looking for
// the end of the header, so a stream with no header break cannot eat all of
// memory. Parse fails with ErrLargeHeader when the cap is hit. Zero or
// negative means no cap. The default is DefaultMaxHeaderLength.
func WithMaxHeaderLength(n int) ParseOption {
	return func(pr *parser) { pr.headCap = n }
}

// WithMaxPartLength caps how many bytes a single part may occupy while
// scanning for boundaries. Parts are scanned per nesting level, so the cap
// must cover the largest part at each level. Parse fails with ErrLargePart
// when the cap is hit. The default is DefaultMaxPartLength and there is no
// way to disable it.
func WithMaxPartLength(n int) ParseOption {
	return func(pr *parser) { pr.partCap = n }
}

// DecodeTransferEncoding makes Parse decode Content-transfer-encoding on
// leaf parts. The default leaves bodies encoded, which is what keeps a
// scrub-then-write round trip byte-identical; decode only when the body
// content itself is what you are after.
func DecodeTransferEncoding() ParseOption {
	return func(pr *parser) { pr.decodeBodies = true }
}

// WithChunkSize sets how many bytes are read from the input per read while
// searching for the end of the header. The default is DefaultChunkSize.
func WithChunkSize(n int) ParseOption {
	return func(pr *parser) { pr.readSize = n }
}

// WithMaxDepth sets how deep Parse recurses into nested multipart parts.
// The default is DefaultMaxMultipartDepth.
func WithMaxDepth(n int) ParseOption {
	return func(pr *parser) { pr.depthCap = n }
}

// WithoutMultipart disables multipart processing entirely, so Parse always
// returns an *Opaque. Only the header and a single chunk of the body are
// read; the rest of the input io.Reader is left untouched. This is the
// cheap way to inspect top-level headers of a large message.
func WithoutMultipart() ParseOption {
	return func(pr *parser) { pr.depthCap = 0 }
}

// WithoutRecursion allows splitting only the top level into parts; nested
// multipart parts stay opaque.
func WithoutRecursion() ParseOption {
	return func(pr *parser) { pr.depthCap = 1 }
}

// WithUnlimitedRecursion removes the nesting depth limit.
func WithUnlimitedRecursion() ParseOption {
	return func(pr *parser) { pr.depthCap = -1 }
}

// headEnd locates the end of a header in buf. It returns the offset just
// past the doubled line break and the single line break in use, or -1 and
// nil when no doubled break is present. When zeroOK is set, a line break at
// offset zero also counts, since a part may legally have an empty header.
func headEnd(buf []byte, zeroOK bool) (int, []byte) {
	if zeroOK {
		for _, dbl := range headBreaks {
			single := dbl[:len(dbl)/2]
			if bytes.HasPrefix(buf, single) {
				return len(single), single
			}
		}
	}

	for _, dbl := range headBreaks {
		if at := bytes.Index(buf, dbl); at >= 0 {
			return at + len(dbl), dbl[:len(dbl)/2]
		}
	}
	return -1, nil
}

// splitHead reads from src until the end of the header is found and returns
// the raw header bytes, the line break in use, and a reader positioned at
// the start of the body. A message with no header break at all comes back
// as all header and a nil body.
func (pr *parser) splitHead(src io.Reader, subpart bool) ([]byte, []byte, io.Reader, error) {
	readBuf := make([]byte, pr.readSize)
	held := &bytes.Buffer{}
	searchFrom := 0
	for {
		n, err := src.Read(readBuf)
		sawEOF := errors.Is(err, io.EOF)
		if err != nil && !sawEOF {
			return nil, nil, nil, err
		}

		_, _ = held.Write(readBuf[:n])
		if pr.headCap > 0 && held.Len() > pr.headCap {
			return nil, nil, nil, ErrLargeHeader
		}

		// the empty-header case is only legal at the very start of a part
		at, brk := headEnd(held.Bytes()[searchFrom:], subpart && searchFrom == 0)
		if at >= 0 {
			at += searchFrom
			rawHead := append([]byte(nil), held.Next(at)...)

			// How the body reader is built depends on the source. Parts of
			// a multipart are re-parsed from a bytes.Reader, so the
			// cheapest thing is to drain it into the buffer and hand back
			// a reader over those bytes. An outer input reader is left
			// unread instead and stitched behind what the buffer already
			// holds, so a caller that only wants headers never pays for
			// the body.
			var body io.Reader
			if _, fromBytes := src.(*bytes.Reader); fromBytes {
				if _, err := held.ReadFrom(src); err != nil {
					return nil, nil, nil, err
				}
				body = bytes.NewReader(held.Bytes())
			} else {
				body = &remainder{held.Bytes(), src}
			}
			return rawHead, brk, body, nil
		}

		if sawEOF {
			break
		}

		// a doubled break may straddle two chunks, so back up by one byte
		// less than the longest doubled break before searching again
		searchFrom = held.Len() - 3
		if searchFrom < 0 {
			searchFrom = 0
		}
	}

	// No header/body split anywhere, so the whole input is header. Pick the
	// line break from whatever single break the header uses.
	for _, dbl := range headBreaks {
		single := dbl[:len(dbl)/2]
		if bytes.Contains(held.Bytes(), single) {
			return held.Bytes(), single, nil, nil
		}
	}

	return held.Bytes(), []byte("\r"), nil, nil
}

// parseOpaque reads a header and leaves the body as an undifferentiated
// reader.
func (pr *parser) parseOpaque(src io.Reader, subpart bool) (*Opaque, error) {
	rawHead, brk, body, err := pr.splitHead(src, subpart)
	if err != nil {
		return nil, err
	}

	hd, err := header.Parse(rawHead, header.Break(brk))
	if err != nil {
		return nil, err
	}

	if pr.decodeBodies {
		body = transfer.ApplyTransferDecoding(hd, body)
	}

	return &Opaque{
		Header:  *hd,
		Reader:  body,
		encoded: !pr.decodeBodies,
	}, nil
}

// Parse reads a complete MIME message from r and returns it as a part tree.
//
// The input is read a chunk at a time (see WithChunkSize) until a doubled
// line break ends the header. The break found there decides the line break
// used for the whole message. The header bytes are parsed into fields and
// everything after the break becomes the body. If the header outgrows
// WithMaxHeaderLength first, Parse fails with ErrLargeHeader and the reader
// is left partially read.
//
// A body whose Content-type is multipart/* with a boundary parameter is
// then split on that boundary and each piece is parsed the same way,
// recursively, down to WithMaxDepth levels. Each piece at each level must
// fit in WithMaxPartLength bytes or the parse fails with ErrLargePart.
// Anything else, message/rfc822 included, stays a leaf.
//
// By default leaf bodies keep their transfer encoding, which is what makes
// writing the tree back out reproduce the original bytes. With
// DecodeTransferEncoding the leaf bodies are decoded on read and re-encoded
// on write instead, which is usually not byte-identical.
//
// Where possible a failed parse still returns the partially parsed message
// alongside the error. The input reader may or may not be fully consumed on
// return either way; reading every leaf body, or calling WriteTo on the
// result, consumes it completely.
func Parse(r io.Reader, opts ...ParseOption) (Generic, error) {
	pr := defaultParser.fork()
	for _, opt := range opts {
		opt(pr)
	}

	top, err := pr.parseOpaque(r, false)
	if err != nil {
		return top, err
	}

	return pr.parse(top, 0)
}

// scan phases for the boundary splitter, in the order they run.
const (
	phaseLead = iota
	phaseParts
	phaseTail
)

// parse splits an *Opaque into a *Multipart when its Content-type calls for
// that and depth allows, recursing into the pieces.
func (pr *parser) parse(msg *Opaque, depth int) (Generic, error) {
	if pr.depthCap >= 0 && depth >= pr.depthCap {
		return msg, nil
	}

	// an unreadable or absent Content-type makes this a leaf
	ctype, err := msg.GetParamValue(header.ContentType)
	if err != nil {
		return msg, nil
	}

	// only multipart/* is boundary-delimited; message/rfc822 and the rest
	// are content
	if ctype.Type() != "multipart" {
		return msg, nil
	}

	if ctype.Boundary() == "" {
		return msg, ErrNoBoundary
	}

	// Boundary lines look like --boundary, with the final one --boundary--.
	// Each sits on its own line. For round-tripping, every byte of the body
	// must land somewhere: the break before the first boundary belongs to
	// the lead, the break after the final boundary belongs to the tail,
	// and the breaks on both sides of interior boundaries belong to the
	// delimiter itself, not to the neighboring parts.
	brk := string(msg.Break())
	bound := "--" + ctype.Boundary()
	openMark := []byte(bound + brk)
	midMark := []byte(brk + bound + brk)
	endMark := []byte(brk + bound + "--" + brk)
	endBare := []byte(brk + bound + "--")

	// The split function returns parts as tokens and captures the material
	// before the first boundary and after the last one on the side. It
	// runs through the phases above in order: first checking for a
	// boundary at offset zero (empty lead), then splitting on interior
	// boundaries, then handling the final boundary once EOF is in sight.
	scan := bufio.NewScanner(msg.Reader)
	scan.Buffer(make([]byte, pr.readSize), pr.partCap)
	var lead, tail []byte
	phase := phaseLead
	leadPending := true
	scan.Split(
		scanner.MakeSplitFuncExitByAdvance(
			func(data []byte, atEOF bool) (advance int, token []byte, err error) {
				switch phase {
				case phaseLead:
					// not enough data to rule a zero-length lead in or out
					// yet unless we are at EOF
					if atEOF || len(data) >= len(openMark) {
						if bytes.HasPrefix(data, openMark) {
							lead = []byte{}
							leadPending = false
							advance = len(openMark)
						}

						phase = phaseParts
						err = scanner.ErrContinue
					}

				case phaseParts:
					if ix := bytes.Index(data, midMark); ix >= 0 {
						advance = ix + len(midMark)
						if leadPending {
							// first boundary found mid-input, so everything
							// before it, through the line break, is the lead
							lead = append([]byte(nil), data[:ix+len(brk)]...)
							leadPending = false
						} else {
							token = data[:ix]
						}
					} else if atEOF {
						// no interior boundary left; go look for the final
						// one
						phase = phaseTail
						err = scanner.ErrContinue
					}

				case phaseTail:
					// Still no initial boundary by EOF means the message
					// has none at all. A nil lead records that, so writing
					// the message out omits the initial boundary too.
					if leadPending {
						lead = nil
					}

					if ix := bytes.Index(data, endMark); ix >= 0 {
						// the tail starts after the bare close, so the line
						// break following the final boundary stays in the
						// tail
						token = data[:ix]
						tail = append([]byte(nil), data[ix+len(endBare):]...)
					} else if ix := bytes.Index(data, endBare); ix >= 0 && ix == len(data)-len(endBare) {
						// final boundary flush against EOF with no line
						// break after it
						token = data[:ix]
						tail = []byte{}
					} else {
						// no final boundary at all; a nil tail records that
						// so writing the message out omits it too
						token = data
						tail = nil
					}
					err = bufio.ErrFinalToken
				default:
					panic("boundary splitter in impossible phase")
				}
				return
			},
		),
	)

	// rejoin recovers the original body when a piece fails to parse, so the
	// caller still gets the message back as a leaf next to the error.
	pieces := make([][]byte, 0, 10)
	rejoin := func() (*Opaque, error) {
		for scan.Scan() {
			pieces = append(pieces, scan.Bytes())
		}

		if err := scan.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				return nil, ErrLargePart
			}
			return nil, err
		}

		glued := &bytes.Buffer{}
		if lead != nil {
			glued.Write(lead)
			glued.Write(openMark)
		}
		glued.Write(bytes.Join(pieces, midMark))
		if tail != nil {
			// the tail already starts with the line break that followed
			// the final boundary, so write the bare close here
			glued.Write(endBare)
			glued.Write(tail)
		}

		return &Opaque{
			Header: msg.Header,
			Reader: glued,
		}, nil
	}

	kids := make([]Generic, 0, 10)
	for scan.Scan() {
		piece := scan.Bytes()
		pieces = append(pieces, piece)

		leaf, err := pr.parseOpaque(bytes.NewReader(piece), true)
		if err != nil {
			orig, _ := rejoin()
			return orig, err
		}

		sub, err := pr.parse(leaf, depth+1)
		if err != nil {
			orig, _ := rejoin()
			return orig, err
		}

		kids = append(kids, sub)
	}

	if err := scan.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, ErrLargePart
		}
		orig, _ := rejoin()
		return orig, err
	}

	return &Multipart{
		Header: msg.Header,
		prefix: lead,
		suffix: tail,
		parts:  kids,
	}, nil
}
