package walk

import (
	"errors"

	"github.com/zostay/mailscrub/message"
)

// Replacer is a callback that can be passed to the AndReplace() function to
// rewrite the parts of a message in place.
//
// The Replacer is given each part together with the ancestry of the part, just
// like a Processor. It must return the part that should stand in the original
// part's place. Returning nil keeps the original part unchanged. Returning
// ErrSkipChildren keeps the original part unchanged and also prevents descent
// into its sub-parts.
//
// If an error is returned, AndReplace() terminates immediately and returns
// that error.
type Replacer func(part message.Part, parents []message.Part) (message.Part, error)

// AndReplace will walk the message parts tree and call the given Replacer
// function for each part found. Whenever the Replacer returns a new part, the
// child list of the enclosing part is rebuilt with the new part standing in
// for the original. The replacement part is not itself walked.
//
// The walk modifies the message in place. The top-level part that AndReplace()
// returns is the replacement for the part it was called on (or that same part,
// if it was never replaced).
func AndReplace(
	replacer Replacer,
	msg message.Part,
) (message.Part, error) {
	parents := make([]message.Part, 0, 10)
	return andReplace(replacer, msg, parents)
}

func andReplace(
	replacer Replacer,
	part message.Part,
	parents []message.Part,
) (message.Part, error) {
	newPart, err := replacer(part, parents)
	if errors.Is(err, ErrSkipChildren) {
		return part, nil
	}
	if err != nil {
		return nil, err
	}
	if newPart != nil {
		return newPart, nil
	}

	if part.IsMultipart() {
		parents = append(parents, part)
		subParts := part.GetParts()
		newParts := make([]message.Part, len(subParts))
		changed := false
		for i, subPart := range subParts {
			newSubPart, err := andReplace(replacer, subPart, parents)
			if err != nil {
				return nil, err
			}
			if newSubPart != subPart {
				changed = true
			}
			newParts[i] = newSubPart
		}

		if changed {
			mm, canSetParts := part.(*message.Multipart)
			if !canSetParts {
				return nil, ErrImmutablePart
			}
			mm.SetParts(newParts)
		}
	}

	return part, nil
}
