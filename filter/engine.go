package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/text/encoding"

	"github.com/zostay/mailscrub/message"
	"github.com/zostay/mailscrub/message/transfer"
	"github.com/zostay/mailscrub/message/walk"
	"github.com/zostay/mailscrub/rules"
)

// Engine drives the scrubbing of whole messages: parse, filter pass, prune
// pass, serialize. An Engine is built once per run from compiled rule lists
// and is safe for concurrent use, since every message gets its own part tree
// and its own RemovalSet.
type Engine struct {
	text   *TextFilter
	markup *MarkupFilter
	logger *slog.Logger
}

// Option adjusts the construction of an Engine.
type Option func(*Engine)

// WithLogger directs the engine's logging to the given logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New builds an Engine from compiled rule lists. Any of the lists may be
// empty. A filter with no rules is skipped entirely, so the parts it would
// have rewritten keep their exact original bytes.
func New(
	textPatterns rules.Patterns,
	markupSelectors rules.Selectors,
	markupPatterns rules.Patterns,
	opts ...Option,
) *Engine {
	e := &Engine{
		text:   NewTextFilter(textPatterns),
		markup: NewMarkupFilter(markupSelectors, markupPatterns),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scrub reads one raw message from raw, applies the filter and prune passes,
// and writes the rewritten message to out. The rewritten message is fully
// serialized in memory before the first byte is written, so a failure at any
// stage leaves the destination untouched.
//
// The id identifies the message in errors and logs. Failures are returned as
// a *StageError naming the stage that raised them. If ctx is already
// canceled, Scrub returns the context error without reading anything; there
// is no cancellation point within the processing of a single message.
func (e *Engine) Scrub(ctx context.Context, id string, raw io.Reader, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log := e.logger.With(slog.String("message", id))

	msg, err := message.Parse(raw)
	if err != nil {
		return &StageError{id, StageParse, err}
	}

	removals := make(RemovalSet)
	if e.text.Active() || e.markup.Active() {
		msg, err = walk.AndReplace(e.rewritePart(log, removals), msg)
		if err != nil {
			return &StageError{id, StageFilter, err}
		}
	}

	if len(removals) > 0 {
		log.Debug("pruning referenced parts",
			slog.Int("identifiers", len(removals)))
		if err := Prune(msg, removals); err != nil {
			return &StageError{id, StagePrune, err}
		}
	}

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return &StageError{id, StageSerialize, err}
	}

	if _, err := io.Copy(out, &buf); err != nil {
		return &StageError{id, StageSerialize, err}
	}

	return nil
}

// rewritePart returns the Replacer that performs the filter pass for one
// message. Attachments are skipped without descending into them, composite
// parts are recursed into, and plain text and markup leaves are rewritten
// when the matching filter has rules configured.
func (e *Engine) rewritePart(log *slog.Logger, removals RemovalSet) walk.Replacer {
	return func(part message.Part, parents []message.Part) (message.Part, error) {
		class := Classify(part)
		switch class {
		case Attachment:
			return nil, walk.ErrSkipChildren
		case Composite, OtherLeaf:
			return nil, nil
		case PlainText:
			if !e.text.Active() {
				return nil, nil
			}
		case Markup:
			if !e.markup.Active() {
				return nil, nil
			}
		}

		op, isOpaque := part.(*message.Opaque)
		if !isOpaque {
			return nil, nil
		}

		newPart, changed, err := e.rewriteLeaf(op, class, removals)
		if err != nil {
			return nil, err
		}
		if !changed {
			return nil, nil
		}

		log.Debug("rewrote part payload", slog.String("class", class.String()))
		return newPart, nil
	}
}

// rewriteLeaf applies the class's filter to the decoded payload of one leaf
// part. It returns the replacement part and true when the payload changed.
// When the payload comes out unchanged, the part's consumed reader is
// restored and no replacement is made, so the part keeps its exact original
// bytes.
func (e *Engine) rewriteLeaf(
	part *message.Opaque,
	class Class,
	removals RemovalSet,
) (message.Part, bool, error) {
	var raw []byte
	if r := part.GetReader(); r != nil {
		var err error
		raw, err = io.ReadAll(r)
		if err != nil {
			return nil, false, fmt.Errorf("reading part payload: %w", err)
		}

		// reading consumed the part's reader, put the bytes back in case
		// the part survives unchanged
		part.Reader = bytes.NewReader(raw)
	}

	body := raw
	if part.IsEncoded() {
		var err error
		body, err = io.ReadAll(
			transfer.ApplyTransferDecoding(part.GetHeader(), bytes.NewReader(raw)))
		if err != nil {
			return nil, false, fmt.Errorf("decoding part payload: %w", err)
		}
	}

	var (
		text, rewritten string
		enc             encoding.Encoding
	)
	switch class {
	case PlainText:
		text = string(body)
		rewritten = e.text.Apply(text)
	case Markup:
		var err error
		enc, err = resolveCharset(charsetLabel(part.GetHeader()))
		if err != nil {
			return nil, false, err
		}

		text, err = decodeText(enc, body)
		if err != nil {
			return nil, false, fmt.Errorf("decoding part charset: %w", err)
		}

		rewritten, err = e.markup.Apply(text, enc, removals)
		if err != nil {
			return nil, false, err
		}
	default:
		return nil, false, nil
	}

	if rewritten == text {
		return nil, false, nil
	}

	payload, err := encodeText(enc, rewritten)
	if err != nil {
		return nil, false, fmt.Errorf("encoding part charset: %w", err)
	}

	buf := &message.Buffer{Header: *part.GetHeader().Clone()}
	if _, err := buf.Write(payload); err != nil {
		return nil, false, err
	}
	return buf.Opaque(), true, nil
}
