package brotli

import (
	"errors"
	"fmt"
	"io"
)

type readCloser struct {
	c io.Closer
	r *Reader
}

// NewReadCloser decompresses rc. Closing the result closes both the decode
// session and rc.
func NewReadCloser(rc io.ReadCloser, opts ...Option) (io.ReadCloser, error) {
	r, err := NewReader(rc, opts...)
	if err != nil {
		return nil, err
	}

	return &readCloser{c: rc, r: r}, nil
}

func (rc *readCloser) Close() error {
	if rc.c == nil || rc.r == nil {
		return errAlreadyClosed
	}

	rerr := rc.r.Close()

	if err := rc.c.Close(); err != nil {
		return fmt.Errorf("brotli: error closing: %w", err)
	}

	rc.c, rc.r = nil, nil

	return rerr
}

func (rc *readCloser) Read(p []byte) (int, error) {
	if rc.r == nil {
		return 0, errAlreadyClosed
	}

	n, err := rc.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("brotli: error reading: %w", err)
	}

	return n, err
}
