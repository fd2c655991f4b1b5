package brotli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLiteralContext(t *testing.T) {
	r := require.New(t)

	for i := 0; i < 256; i++ {
		r.Equal(i&0x3F, literalContext(contextLSB6, byte(i), 0xFF))
		r.Equal(i>>2, literalContext(contextMSB6, byte(i), 0xFF))
	}

	r.Equal(0, literalContext(contextUTF8, 0, 0))
	r.Equal(0, literalContext(contextSigned, 0, 0))
	r.Equal(63, literalContext(contextSigned, 0xFF, 0xFF))
	r.Equal(1<<3|1, literalContext(contextSigned, 1, 1))
	r.Equal(6<<3|6, literalContext(contextSigned, 0xF0, 0xF0))
}

func TestLiteralContextRange(t *testing.T) {
	r := require.New(t)

	for mode := 0; mode < numContextModes; mode++ {
		for p1 := 0; p1 < 256; p1++ {
			for p2 := 0; p2 < 256; p2++ {
				if id := literalContext(mode, byte(p1), byte(p2)); id >= 1<<literalContextBits {
					r.Failf("context out of range", "mode %d, bytes %d %d: %d", mode, p1, p2, id)
				}
			}
		}
	}
}
