package brotli

const (
	// ringBufferSlack is the write-ahead room past the end of the ring that
	// a transformed dictionary word may spill into.
	ringBufferSlack = 37

	minEagerRingBufferSize = 1 << 14
	maxExpectedTotalSize   = 1 << 30
)

// ringBuffer is the sliding window. Bytes in [bytesWritten, bytesReady) are
// decoded but not yet handed to the caller.
type ringBuffer struct {
	buf     []byte
	size    int
	maxSize int
	pos     int

	bytesWritten int
	bytesReady   int

	expectedTotalSize int
}

func (rb *ringBuffer) mask() int {
	return rb.size - 1
}

func (rb *ringBuffer) addExpected(n int) {
	rb.expectedTotalSize = min(rb.expectedTotalSize+n, maxExpectedTotalSize)
}

// grow enlarges the buffer towards maxSize, staying small while the total
// output is known to be small.
func (rb *ringBuffer) grow(isLast bool) {
	newSize := rb.maxSize
	if newSize > rb.expectedTotalSize {
		for newSize>>1 > rb.expectedTotalSize {
			newSize >>= 1
		}

		if !isLast && newSize < minEagerRingBufferSize && rb.maxSize >= minEagerRingBufferSize {
			newSize = minEagerRingBufferSize
		}
	}

	if newSize <= rb.size {
		return
	}

	buf := make([]byte, newSize+ringBufferSlack)
	copy(buf, rb.buf[:min(rb.size, len(rb.buf))])

	rb.buf = buf
	rb.size = newSize
}

func (rb *ringBuffer) markReady() {
	rb.bytesReady = min(rb.pos, rb.size)
}

// flush copies ready bytes to out[*used:]. It reports whether out is full.
func (rb *ringBuffer) flush(out []byte, used *int) bool {
	n := min(len(out)-*used, rb.bytesReady-rb.bytesWritten)
	if n > 0 {
		copy(out[*used:], rb.buf[rb.bytesWritten:rb.bytesWritten+n])
		*used += n
		rb.bytesWritten += n
	}

	return *used >= len(out)
}

// wrap moves bytes written past the end of the ring to its start once the
// whole ring has been flushed.
func (rb *ringBuffer) wrap() {
	if rb.pos < rb.size {
		return
	}

	if rb.pos > rb.size {
		copy(rb.buf, rb.buf[rb.size:rb.pos])
	}

	rb.pos &= rb.mask()
	rb.bytesWritten = 0
}

// copyBackReference copies n bytes from distance bytes back to pos. Both
// ranges must lie inside the ring without wrapping.
func (rb *ringBuffer) copyBackReference(distance, n int) {
	src := (rb.pos - distance) & rb.mask()
	dst := rb.pos

	if src+n <= dst || dst+n <= src {
		copy(rb.buf[dst:dst+n], rb.buf[src:src+n])
	} else {
		for k := 0; k < n; k++ {
			rb.buf[dst+k] = rb.buf[src+k]
		}
	}

	rb.pos += n
}
