package walk

import (
	"errors"

	"github.com/zostay/mailscrub/message"
)

// ErrImmutablePart is returned by AndReplace() and AndKeep() when the child
// list of a part needs to be rebuilt, but the part is some implementation of
// message.Part other than *message.Multipart and provides no way to do so.
var ErrImmutablePart = errors.New("part does not allow its sub-parts to be replaced")

// Keeper is a callback that can be passed to the AndKeep() function to decide
// which parts of a message survive. It is given each part together with the
// ancestry of the part, just like a Processor. Returning false drops the part
// from the child list of its enclosing part, together with any sub-parts it
// may have. Returning true keeps the part and, for parts with sub-parts,
// continues the walk into its children.
//
// If an error is returned, AndKeep() terminates immediately and returns that
// error.
type Keeper func(part message.Part, parents []message.Part) (bool, error)

// AndKeep will walk the message parts tree and call the given Keeper function
// for each part found, rebuilding the child list of every part with sub-parts
// to contain only the parts the Keeper decided to keep.
//
// The walk modifies the message in place. A part whose children have all been
// dropped keeps its header and remains a part with sub-parts, it just has none
// left.
//
// AndKeep returns the message and true if the top-level part was kept, or nil
// and false if the Keeper dropped the top-level part itself.
func AndKeep(
	keeper Keeper,
	msg message.Part,
) (message.Part, bool, error) {
	parents := make([]message.Part, 0, 10)
	keep, err := andKeep(keeper, msg, parents)
	if err != nil {
		return nil, false, err
	}
	if !keep {
		return nil, false, nil
	}
	return msg, true, nil
}

func andKeep(
	keeper Keeper,
	part message.Part,
	parents []message.Part,
) (bool, error) {
	keep, err := keeper(part, parents)
	if err != nil {
		return false, err
	}
	if !keep {
		return false, nil
	}

	if part.IsMultipart() {
		parents = append(parents, part)
		subParts := part.GetParts()
		keptParts := make([]message.Part, 0, len(subParts))
		for _, subPart := range subParts {
			keep, err := andKeep(keeper, subPart, parents)
			if err != nil {
				return false, err
			}
			if keep {
				keptParts = append(keptParts, subPart)
			}
		}

		if len(keptParts) != len(subParts) {
			mm, canSetParts := part.(*message.Multipart)
			if !canSetParts {
				return false, ErrImmutablePart
			}
			mm.SetParts(keptParts)
		}
	}

	return true, nil
}
