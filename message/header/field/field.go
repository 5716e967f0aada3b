package field

import (
	"bytes"
)

// Field provides a low-level interface to a complete header field. It pairs
// the semantic name and body held in Base with the original raw bytes of the
// field, when the field was parsed from an existing message.
//
// So long as Raw is set, rendering the field returns the raw bytes exactly as
// they were parsed. Modifying the name or body of the field clears Raw, which
// causes the field to be rendered from the semantic values instead.
type Field struct {
	Base
	Raw *Raw
}

// New constructs a new field with the given name and body and no raw
// representation.
func New(name, body string) *Field {
	return &Field{Base{name, body}, nil}
}

// String returns the field as a string. If Raw is set, the original bytes are
// returned. Otherwise, the name and body are combined and encoded.
func (f *Field) String() string {
	if f.Raw != nil {
		return f.Raw.String()
	}
	return f.Base.String()
}

// Bytes returns the field as a slice of bytes. If Raw is set, the original
// bytes are returned. Otherwise, the name and body are combined and encoded.
func (f *Field) Bytes() []byte {
	if f.Raw != nil {
		return f.Raw.Bytes()
	}
	return f.Base.Bytes()
}

// SetName updates the name of the field and clears Raw.
func (f *Field) SetName(name string) {
	f.Raw = nil
	f.Base.SetName(name)
}

// SetBody updates the body of the field and clears Raw.
func (f *Field) SetBody(body string) {
	f.Raw = nil
	f.Base.SetBody(body)
}

// SetRaw replaces the rendered form of the field with the given bytes. The
// bytes are used as-is when the field is output, even if they do not parse as
// a header field at all. The semantic name and body are left untouched.
func (f *Field) SetRaw(field []byte) {
	colon := bytes.IndexByte(field, ':')
	if colon < 0 {
		colon = len(field)
	}
	f.Raw = &Raw{field, colon}
}
