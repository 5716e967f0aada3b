package transfer

import "io"

// writer is an internal helper to make wrapping easier.
type writer struct {
	io.Writer
	io.Closer
}

// Close will close the nested Closer, if one is set.
func (w *writer) Close() error {
	if w.Closer != nil {
		return w.Closer.Close()
	}
	return nil
}
