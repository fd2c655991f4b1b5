package brotli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

const decodeChunkSize = 16 << 10

var errEmptyBuffer = errors.New("brotli: empty copy buffer")

// Decode decompresses a complete Brotli stream held in memory.
func Decode(input []byte, opts ...Option) ([]byte, error) {
	d, err := NewDecoder(bytes.NewReader(input), opts...)
	if err != nil {
		return nil, err
	}

	defer d.Close()

	var (
		out   []byte
		chunk = make([]byte, decodeChunkSize)
	)

	for {
		n, res, err := d.Decompress(chunk)
		out = append(out, chunk[:n]...)

		if err != nil {
			return nil, err
		}

		if res == ResultDone {
			break
		}
	}

	if out == nil {
		out = []byte{}
	}

	return out, nil
}

// Copy decompresses src into dst and returns the number of bytes written.
func Copy(dst io.Writer, src io.Reader, opts ...Option) (int64, error) {
	return copyBuffer(dst, src, make([]byte, decodeChunkSize), opts...)
}

func copyBuffer(dst io.Writer, src io.Reader, buf []byte, opts ...Option) (int64, error) {
	d, err := NewDecoder(src, opts...)
	if err != nil {
		return 0, err
	}

	defer d.Close()

	var written int64

	for {
		n, res, err := d.Decompress(buf)
		if n > 0 {
			nw, werr := dst.Write(buf[:n])
			written += int64(nw)

			if werr != nil {
				return written, fmt.Errorf("write output: %w", werr)
			}
		}

		if err != nil {
			return written, err
		}

		if res == ResultDone {
			return written, nil
		}
	}
}

// CopyBuffer is Copy with a caller-supplied output buffer. Its size sets the
// granularity of writes to dst.
func CopyBuffer(dst io.Writer, src io.Reader, buf []byte, opts ...Option) (int64, error) {
	if len(buf) == 0 {
		return 0, errEmptyBuffer
	}

	return copyBuffer(dst, src, buf, opts...)
}
