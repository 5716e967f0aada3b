package filter

import (
	"errors"

	"github.com/zostay/mailscrub/message"
	"github.com/zostay/mailscrub/message/header"
	"github.com/zostay/mailscrub/message/walk"
)

// Prune rebuilds the child list of every part with sub-parts, dropping the
// leaf parts whose content identifier is in the removal set. Parts with
// sub-parts are always kept and recursed into, and a leaf with no Content-id
// field is always kept. The top-level part is never dropped.
//
// A part whose children are all dropped keeps its header and remains a part
// with sub-parts. Pruning an already-pruned tree with the same removal set
// changes nothing.
func Prune(msg message.Part, removals RemovalSet) error {
	keep := func(part message.Part, parents []message.Part) (bool, error) {
		if len(parents) == 0 || part.IsMultipart() {
			return true, nil
		}

		cid, err := part.GetHeader().GetContentID()
		if errors.Is(err, header.ErrNoSuchField) {
			return true, nil
		}

		return !removals.Contains(cid), nil
	}

	_, _, err := walk.AndKeep(keep, msg)
	return err
}
