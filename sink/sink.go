// Package sink delivers scrubbed messages to their destination.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Sink receives one finished message at a time.
type Sink interface {
	// Deliver stores the message identified by id.
	Deliver(ctx context.Context, id string, r io.Reader) error
}

// Dir is a Sink that writes each message to a file in one directory. A
// message appears under its final name only after its content has been
// fully written.
type Dir struct {
	path   string
	logger *slog.Logger
}

// Option changes how a Dir delivers messages.
type Option func(*Dir)

// WithLogger sets the logger used to report deliveries. When not given,
// slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dir) {
		d.logger = logger
	}
}

// NewDir returns a Dir rooted at path, creating the directory if needed.
func NewDir(path string, opts ...Option) (*Dir, error) {
	if path == "" {
		return nil, errors.New("sink directory path is empty")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating sink directory: %w", err)
	}

	d := &Dir{path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d, nil
}

// Deliver writes the message to <dir>/<name>.eml, where name is derived
// from id. Delivering twice under the same id replaces the earlier file.
func (d *Dir) Deliver(ctx context.Context, id string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(d.path, ".delivery-*")
	if err != nil {
		return fmt.Errorf("creating delivery file: %w", err)
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing delivery file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing delivery file: %w", err)
	}

	dest := filepath.Join(d.path, safeName(id)+".eml")
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("placing delivery file: %w", err)
	}

	d.logger.Debug("message delivered",
		slog.String("message", id),
		slog.String("path", dest))
	return nil
}

// safeName flattens an id into a portable file name.
func safeName(id string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, id)
	name = strings.Trim(name, ".")
	if name == "" {
		return "message"
	}
	return name
}
