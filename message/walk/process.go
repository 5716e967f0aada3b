package walk

import (
	"errors"

	"github.com/zostay/mailscrub/message"
)

// ErrSkipChildren may be returned by a Processor or Replacer callback when
// called on a part with sub-parts to prevent any descent into those
// sub-parts. The walk treats it as success and moves on to the part's
// siblings.
var ErrSkipChildren = errors.New("skip children")

// Processor is the callback the walk functions hand each part to.
//
// The part's ancestry arrives in parents, root first; an empty slice marks
// the part the walk started from, which need not be the root of the whole
// message. Returning an error stops the walk and surfaces that error,
// except for ErrSkipChildren, which keeps walking but skips the sub-parts
// of the current part.
type Processor func(part message.Part, parents []message.Part) error

// AndProcess calls fn for every part of msg, depth first: each branch
// before what it contains, siblings in document order. The first error
// other than ErrSkipChildren stops the walk.
func AndProcess(fn Processor, msg message.Part) error {
	return descend(fn, msg, make([]message.Part, 0, 10))
}

func descend(fn Processor, part message.Part, parents []message.Part) error {
	switch err := fn(part, parents); {
	case errors.Is(err, ErrSkipChildren):
		return nil
	case err != nil:
		return err
	}

	if !part.IsMultipart() {
		return nil
	}

	parents = append(parents, part)
	for _, child := range part.GetParts() {
		if err := descend(fn, child, parents); err != nil {
			return err
		}
	}

	return nil
}

// AndProcessOpaque is AndProcess filtered to leaves: fn sees only parts
// without sub-parts, while the walk still descends through the containers.
func AndProcessOpaque(fn Processor, msg message.Part) error {
	return AndProcess(
		func(part message.Part, parents []message.Part) error {
			if part.IsMultipart() {
				return nil
			}
			return fn(part, parents)
		}, msg)
}

// AndProcessMultipart is AndProcess filtered to branches: fn sees only
// parts with sub-parts.
func AndProcessMultipart(fn Processor, msg message.Part) error {
	return AndProcess(
		func(part message.Part, parents []message.Part) error {
			if !part.IsMultipart() {
				return nil
			}
			return fn(part, parents)
		}, msg)
}
