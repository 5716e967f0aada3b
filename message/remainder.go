package message

import "io"

// remainder stitches the bytes consumed while hunting for the header/body
// split back onto the front of the unread input. Reads drain the replay
// buffer before touching the underlying io.Reader again.
type remainder struct {
	buffered []byte
	src      io.Reader
}

// Read drains the replay buffer first and then reads through to the source.
func (r *remainder) Read(p []byte) (n int, err error) {
	if len(r.buffered) > 0 {
		n = copy(p, r.buffered)
		r.buffered = r.buffered[n:]
		if n == len(p) {
			return n, nil
		}
	}

	sn, err := r.src.Read(p[n:])
	return n + sn, err
}

// Close closes the source when it is an io.Closer and is a no-op otherwise.
func (r *remainder) Close() error {
	if c, isCloser := r.src.(io.Closer); isCloser {
		return c.Close()
	}
	return nil
}
