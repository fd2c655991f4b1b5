package brotli

import (
	"io"
)

// Reader decompresses a Brotli stream read from an underlying reader.
type Reader struct {
	d    *Decoder
	opts []Option

	buf  []byte
	pos  int
	end  int
	done bool
	err  error
}

// NewReader returns a Reader that decompresses src.
func NewReader(src io.Reader, opts ...Option) (*Reader, error) {
	r := &Reader{
		opts: opts,
		buf:  make([]byte, decodeChunkSize),
	}

	return r, r.Reset(src)
}

// Reset discards the current session and starts decoding src, keeping the
// options and the output buffer.
func (r *Reader) Reset(src io.Reader) error {
	if r.d != nil {
		_ = r.d.Close()
	}

	r.pos, r.end = 0, 0
	r.done = false
	r.err = nil

	d, err := NewDecoder(src, r.opts...)
	if err != nil {
		r.d = nil
		r.err = err

		return err
	}

	r.d = d

	return nil
}

func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for r.pos == r.end {
		if r.err != nil {
			return 0, r.err
		}

		if r.done {
			return 0, io.EOF
		}

		n, res, err := r.d.Decompress(r.buf)
		r.pos, r.end = 0, n

		if err != nil {
			r.err = err
		}

		if res == ResultDone {
			r.done = true
		}
	}

	n := copy(p, r.buf[r.pos:r.end])
	r.pos += n

	return n, nil
}

// Close ends the decode session. It does not close the underlying reader.
func (r *Reader) Close() error {
	if r.d == nil {
		return errAlreadyClosed
	}

	err := r.d.Close()
	r.d = nil
	r.err = errAlreadyClosed

	return err
}
