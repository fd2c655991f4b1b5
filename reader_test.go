package brotli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func TestReader(t *testing.T) {
	r := require.New(t)

	input, err := os.ReadFile("testassets/mixed.bin.br")
	r.NoError(err)

	expected, err := os.ReadFile("testassets/mixed.bin")
	r.NoError(err)

	testCases := []struct {
		name string

		src func() io.Reader
	}{
		{
			name: "whole",
			src:  func() io.Reader { return bytes.NewReader(input) },
		},
		{
			name: "one_byte_reads",
			src:  func() io.Reader { return iotest.OneByteReader(bytes.NewReader(input)) },
		},
		{
			name: "half_reads",
			src:  func() io.Reader { return iotest.HalfReader(bytes.NewReader(input)) },
		},
		{
			name: "data_with_eof",
			src:  func() io.Reader { return iotest.DataErrReader(bytes.NewReader(input)) },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reader, err := NewReader(tc.src())
			r.NoError(err)

			var out bytes.Buffer
			_, err = io.Copy(&out, iotest.OneByteReader(reader))
			r.NoError(err)
			r.Equal(expected, out.Bytes())

			r.NoError(reader.Close())
		})
	}
}

func TestReaderConformance(t *testing.T) {
	r := require.New(t)

	input, err := os.ReadFile("testassets/text.txt.br")
	r.NoError(err)

	expected, err := os.ReadFile("testassets/text.txt")
	r.NoError(err)

	reader, err := NewReader(bytes.NewReader(input))
	r.NoError(err)

	r.NoError(iotest.TestReader(reader, expected))
}

func TestReaderReset(t *testing.T) {
	r := require.New(t)

	first, err := os.ReadFile("testassets/a.br")
	r.NoError(err)

	second, err := os.ReadFile("testassets/text.txt.br")
	r.NoError(err)

	expected, err := os.ReadFile("testassets/text.txt")
	r.NoError(err)

	reader, err := NewReader(bytes.NewReader(first))
	r.NoError(err)

	out, err := io.ReadAll(reader)
	r.NoError(err)
	r.Equal("a", string(out))

	r.NoError(reader.Reset(bytes.NewReader(second)))

	out, err = io.ReadAll(reader)
	r.NoError(err)
	r.Equal(expected, out)
}

func TestReaderErrors(t *testing.T) {
	r := require.New(t)

	input, err := os.ReadFile("testassets/text.txt.br")
	r.NoError(err)

	t.Run("source_error", func(t *testing.T) {
		reader, err := NewReader(iotest.TimeoutReader(bytes.NewReader(input)))
		r.NoError(err)

		_, err = io.ReadAll(reader)
		r.ErrorIs(err, iotest.ErrTimeout)

		// The error sticks.
		_, err = reader.Read(make([]byte, 1))
		r.ErrorIs(err, iotest.ErrTimeout)
	})

	t.Run("truncated", func(t *testing.T) {
		reader, err := NewReader(bytes.NewReader(input[:len(input)-10]))
		r.NoError(err)

		_, err = io.ReadAll(reader)
		r.ErrorIs(err, ErrTruncated)
	})

	t.Run("closed", func(t *testing.T) {
		reader, err := NewReader(bytes.NewReader(input))
		r.NoError(err)
		r.NoError(reader.Close())

		_, err = reader.Read(make([]byte, 1))
		r.ErrorIs(err, errAlreadyClosed)
		r.ErrorIs(reader.Close(), errAlreadyClosed)
	})
}

type trackingCloser struct {
	io.Reader
	closed   bool
	closeErr error
}

func (c *trackingCloser) Close() error {
	c.closed = true

	return c.closeErr
}

func TestReadCloser(t *testing.T) {
	r := require.New(t)

	input, err := os.ReadFile("testassets/text.txt.br")
	r.NoError(err)

	expected, err := os.ReadFile("testassets/text.txt")
	r.NoError(err)

	src := &trackingCloser{Reader: bytes.NewReader(input)}

	rc, err := NewReadCloser(src)
	r.NoError(err)

	out, err := io.ReadAll(rc)
	r.NoError(err)
	r.Equal(expected, out)

	r.NoError(rc.Close())
	r.True(src.closed)

	r.ErrorIs(rc.Close(), errAlreadyClosed)

	_, err = rc.Read(make([]byte, 1))
	r.ErrorIs(err, errAlreadyClosed)
}

func TestReadCloserCloseError(t *testing.T) {
	r := require.New(t)

	input, err := os.ReadFile("testassets/a.br")
	r.NoError(err)

	closeErr := errors.New("close failed")
	src := &trackingCloser{Reader: bytes.NewReader(input), closeErr: closeErr}

	rc, err := NewReadCloser(src)
	r.NoError(err)

	err = rc.Close()
	r.ErrorIs(err, closeErr)
}

func TestCopy(t *testing.T) {
	r := require.New(t)

	input, err := os.ReadFile("testassets/repeat_lgwin16.bin.br")
	r.NoError(err)

	expected, err := os.ReadFile("testassets/repeat_lgwin16.bin")
	r.NoError(err)

	var out bytes.Buffer
	n, err := Copy(&out, bytes.NewReader(input))
	r.NoError(err)
	r.Equal(int64(len(expected)), n)
	r.Equal(expected, out.Bytes())

	out.Reset()
	n, err = CopyBuffer(&out, bytes.NewReader(input), make([]byte, 333))
	r.NoError(err)
	r.Equal(int64(len(expected)), n)
	r.Equal(expected, out.Bytes())

	_, err = CopyBuffer(&out, bytes.NewReader(input), nil)
	r.ErrorIs(err, errEmptyBuffer)
}
