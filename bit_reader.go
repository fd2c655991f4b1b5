package brotli

import (
	"errors"
	"fmt"
	"io"
)

const (
	byteBufferSize = 4096
	halfBufferSize = byteBufferSize / 2

	// Refill point for the half buffer. Every decode step between two
	// watermark checks consumes less than the remaining 18 halves.
	halfWatermark = 2030
)

// bitReader keeps a 32-bit window over the input. Bits are consumed least
// significant first; the window is refilled 16 bits at a time from a buffer
// of little-endian half words.
type bitReader struct {
	src io.Reader

	byteBuffer  [byteBufferSize + 64]byte
	shortBuffer [halfBufferSize + 32]uint16

	accumulator uint32
	bitOffset   int
	halfOffset  int

	tailBytes   int
	endOfStream bool
}

func (br *bitReader) init(src io.Reader) error {
	br.src = src
	br.accumulator = 0
	br.bitOffset = 32
	br.halfOffset = halfBufferSize
	br.tailBytes = 0
	br.endOfStream = false

	return br.prepare()
}

// readMoreInput moves the unread tail of the buffer to the front and tops it
// up from the source.
func (br *bitReader) readMoreInput() error {
	if br.endOfStream {
		if br.halfAvailable() >= -2 {
			return nil
		}

		return newDecodeError(CodeTruncatedInput)
	}

	readOffset := br.halfOffset << 1
	if readOffset > byteBufferSize {
		return newDecodeError(CodeUnexpectedState)
	}

	bytesInBuffer := byteBufferSize - readOffset
	copy(br.byteBuffer[:], br.byteBuffer[readOffset:byteBufferSize])
	br.halfOffset = 0

	if bytesInBuffer < byteBufferSize {
		n, err := io.ReadFull(br.src, br.byteBuffer[bytesInBuffer:byteBufferSize])
		bytesInBuffer += n

		switch {
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			br.endOfStream = true
			br.tailBytes = bytesInBuffer
			br.byteBuffer[bytesInBuffer] = 0
			bytesInBuffer++
		case err != nil:
			return fmt.Errorf("read input: %w", err)
		}
	}

	br.bytesToNibbles(bytesInBuffer)

	return nil
}

func (br *bitReader) bytesToNibbles(byteLen int) {
	halfLen := byteLen >> 1
	for i := 0; i < halfLen; i++ {
		br.shortBuffer[i] = uint16(br.byteBuffer[i*2]) | uint16(br.byteBuffer[i*2+1])<<8
	}
}

// checkHealth verifies the cursor has not run past the last input byte.
// With endOfStream set it also requires every input byte to be consumed.
func (br *bitReader) checkHealth(endOfStream bool) error {
	if !br.endOfStream {
		return nil
	}

	byteOffset := (br.halfOffset << 1) + ((br.bitOffset + 7) >> 3) - 4
	if byteOffset > br.tailBytes {
		return newDecodeError(CodeReadAfterEnd)
	}

	if endOfStream && byteOffset != br.tailBytes {
		return newDecodeError(CodeUnusedBytesAfterEnd)
	}

	return nil
}

func (br *bitReader) halfAvailable() int {
	limit := halfBufferSize
	if br.endOfStream {
		limit = (br.tailBytes + 1) >> 1
	}

	return limit - br.halfOffset
}

// fillBitWindow guarantees at least 16 unread bits in the accumulator.
func (br *bitReader) fillBitWindow() {
	if br.bitOffset >= 16 {
		br.accumulator = uint32(br.shortBuffer[br.halfOffset])<<16 | br.accumulator>>16
		br.halfOffset++
		br.bitOffset -= 16
	}
}

// readFewBits returns the next n bits. The caller must have made n bits
// available with fillBitWindow.
func (br *bitReader) readFewBits(n int) int {
	v := int((br.accumulator >> br.bitOffset) & (1<<n - 1))
	br.bitOffset += n

	return v
}

// readManyBits reads 16 < n <= 24 bits with one refill in between.
func (br *bitReader) readManyBits(n int) int {
	low := br.readFewBits(16)
	br.accumulator = uint32(br.shortBuffer[br.halfOffset])<<16 | br.accumulator>>16
	br.halfOffset++
	br.bitOffset -= 16

	return low | br.readFewBits(n-16)<<16
}

// readBits reads up to 24 bits after filling the window.
func (br *bitReader) readBits(n int) int {
	br.fillBitWindow()
	if n <= 16 {
		return br.readFewBits(n)
	}

	return br.readManyBits(n)
}

func (br *bitReader) prepare() error {
	if br.halfOffset > halfWatermark {
		if err := br.readMoreInput(); err != nil {
			return err
		}
	}

	if err := br.checkHealth(false); err != nil {
		return err
	}

	br.accumulator = uint32(br.shortBuffer[br.halfOffset])<<16 | br.accumulator>>16
	br.halfOffset++
	br.bitOffset -= 16
	br.accumulator = uint32(br.shortBuffer[br.halfOffset])<<16 | br.accumulator>>16
	br.halfOffset++
	br.bitOffset -= 16

	return nil
}

func (br *bitReader) reload() error {
	if br.bitOffset == 32 {
		return br.prepare()
	}

	return nil
}

// ensureInput refills the half buffer once the watermark is crossed.
func (br *bitReader) ensureInput() error {
	if br.halfOffset > halfWatermark {
		return br.readMoreInput()
	}

	return nil
}

func (br *bitReader) jumpToByteBoundary() error {
	padding := (32 - br.bitOffset) & 7
	if padding != 0 {
		if br.readFewBits(padding) != 0 {
			return newDecodeError(CodeCorruptedPaddingBits)
		}
	}

	return nil
}

// copyRawBytes copies length bytes of byte-aligned input into data[offset:].
func (br *bitReader) copyRawBytes(data []byte, offset, length int) error {
	pos := offset

	if br.bitOffset&7 != 0 {
		return newDecodeError(CodeUnalignedCopyBytes)
	}

	for br.bitOffset != 32 && length != 0 {
		data[pos] = byte(br.accumulator >> br.bitOffset)
		pos++
		br.bitOffset += 8
		length--
	}

	if length == 0 {
		return nil
	}

	copyNibbles := min(br.halfAvailable(), length>>1)
	if copyNibbles > 0 {
		readOffset := br.halfOffset << 1
		delta := copyNibbles << 1
		copy(data[pos:], br.byteBuffer[readOffset:readOffset+delta])
		pos += delta
		length -= delta
		br.halfOffset += copyNibbles
	}

	if length == 0 {
		return nil
	}

	if br.halfAvailable() > 0 {
		br.fillBitWindow()
		for length != 0 {
			data[pos] = byte(br.accumulator >> br.bitOffset)
			pos++
			br.bitOffset += 8
			length--
		}

		return br.checkHealth(false)
	}

	_, err := io.ReadFull(br.src, data[pos:pos+length])
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return newDecodeError(CodeTruncatedInput)
	}

	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	return nil
}
