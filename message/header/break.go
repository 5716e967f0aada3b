package header

// Break is the line break a header uses between fields. Parsing detects the
// break from the input and keeps it, so a scrubbed message is written back
// with the line endings it arrived with.
type Break string

// The line breaks seen in the wild. New headers built from scratch should
// use CRLF, which is what the message format calls for on the wire.
const (
	Meh  Break = ""         // unknown or irrelevant
	CRLF Break = "\x0d\x0a" // \r\n - the wire format
	LF   Break = "\x0a"     // \n - Unix mailstores
	CR   Break = "\x0d"     // \r - antique Macs
	LFCR Break = "\x0a\x0d" // \n\r - seen once, kept for that once
)

// String returns the break as a string.
func (b Break) String() string {
	return string(b)
}

// Bytes returns the break as a slice of bytes.
func (b Break) Bytes() []byte {
	return []byte(b)
}
