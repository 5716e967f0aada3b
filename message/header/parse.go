package header

import (
	"errors"

	"github.com/zostay/mailscrub/message/header/field"
)

// Parse splits raw into header fields on the given line break. The whole
// slice is treated as header material; separating the header from the body
// is the caller's job.
//
// The returned header has field.DoNotFoldEncoding set so that writing it out
// reproduces the original bytes. Call SetFoldEncoding to enable folding when
// rewriting is wanted.
func Parse(raw []byte, lbr Break) (*Header, error) {
	lines, err := field.ParseLines(raw, lbr.Bytes())

	// junk before the first field is survivable, anything else is not
	var startErr *field.BadStartError
	var keptErr error
	switch {
	case errors.As(err, &startErr):
		keptErr = startErr
	case err != nil:
		return nil, err
	}

	flds := make([]*field.Field, len(lines))
	for i, line := range lines {
		flds[i] = field.Parse(line, lbr.Bytes())
	}

	hd := &Header{
		Base: Base{
			lbr:    lbr,
			vf:     field.DoNotFoldEncoding,
			fields: flds,
		},
	}

	return hd, keptErr
}
