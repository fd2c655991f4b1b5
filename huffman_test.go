package brotli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildTestTable(codeLengths []int32) ([]int32, int) {
	table := make([]int32, 1+maxHuffmanTableSize[(len(codeLengths)+31)>>5])
	table[0] = 1
	size := buildHuffmanTable(table, 0, huffmanTableBits, codeLengths, len(codeLengths))

	return table, size
}

func TestBuildHuffmanTablePure(t *testing.T) {
	r := require.New(t)

	codeLengths := []int32{2, 2, 3, 3, 3, 4, 5, 5}

	first, firstSize := buildTestTable(codeLengths)
	second, secondSize := buildTestTable(codeLengths)

	r.Equal(firstSize, secondSize)
	r.Equal(first, second)
	r.Equal(1<<huffmanTableBits, firstSize)
}

func TestBuildHuffmanTableCanonical(t *testing.T) {
	r := require.New(t)

	// A=1 bit (code 0), B=2 bits (code 10), C and D=3 bits (110, 111).
	// Codes are read bit-reversed: A at keys ending in 0, B at ...01.
	table, size := buildTestTable([]int32{1, 2, 3, 3})
	r.Equal(256, size)

	cell := func(key int) (int, int) {
		v := table[1+key]

		return int(v >> 16), int(v & 0xFFFF)
	}

	bits, sym := cell(0b000)
	r.Equal(1, bits)
	r.Equal(0, sym)

	bits, sym = cell(0b001)
	r.Equal(2, bits)
	r.Equal(1, sym)

	bits, sym = cell(0b011)
	r.Equal(3, bits)
	r.Equal(2, sym)

	bits, sym = cell(0b111)
	r.Equal(3, bits)
	r.Equal(3, sym)
}

func TestBuildHuffmanTableSecondLevel(t *testing.T) {
	r := require.New(t)

	// 255 symbols of 8 bits plus 2 of 9 bits: one root entry leads to a
	// 1-bit second level table.
	codeLengths := make([]int32, 257)
	for i := 0; i < 255; i++ {
		codeLengths[i] = 8
	}

	codeLengths[255] = 9
	codeLengths[256] = 9

	table, size := buildTestTable(codeLengths)
	r.Equal(256+2, size)

	// Root key 0xFF (bit-reversed all ones) points to the sub table.
	root := table[1+0xFF]
	r.Equal(int32(huffmanTableBits+1), root>>16)

	// Decode the two long symbols through readSymbol.
	for i, want := range []int{255, 256} {
		data := []byte{0xFF, byte(i), 0, 0}
		br := newTestBitReader(t, data)
		br.fillBitWindow()
		r.Equal(want, br.readSymbol(table, 0))
		r.Equal(9, br.bitOffset)
	}
}

func TestBuildHuffmanTableSingleSymbol(t *testing.T) {
	r := require.New(t)

	codeLengths := make([]int32, 10)
	codeLengths[7] = 1

	table, size := buildTestTable(codeLengths)
	r.Equal(256, size)

	for k := 0; k < 256; k++ {
		r.Equal(int32(7), table[1+k])
	}
}

func TestGetNextKey(t *testing.T) {
	r := require.New(t)

	// Bit-reversed increment over 3 bits: 000, 100, 010, 110, 001, ...
	key := 0
	var got []int
	for i := 0; i < 8; i++ {
		got = append(got, key)
		key = getNextKey(key, 3)
	}

	r.Equal([]int{0, 4, 2, 6, 1, 5, 3, 7}, got)
}

// bitWriter packs values least significant bit first.
type bitWriter struct {
	buf   bytes.Buffer
	acc   uint64
	nbits uint
}

func (w *bitWriter) write(v uint64, n uint) {
	w.acc |= v << w.nbits
	w.nbits += n

	for w.nbits >= 8 {
		w.buf.WriteByte(byte(w.acc))
		w.acc >>= 8
		w.nbits -= 8
	}
}

func (w *bitWriter) bytes() []byte {
	if w.nbits > 0 {
		w.buf.WriteByte(byte(w.acc))
		w.acc, w.nbits = 0, 0
	}

	// Slack so the reader never sees the end of the stream.
	return append(w.buf.Bytes(), 0, 0, 0, 0, 0, 0, 0, 0)
}

func TestReadHuffmanCode(t *testing.T) {
	testCases := []struct {
		name         string
		alphabetSize int
		write        func(w *bitWriter)

		expectedCode ErrorCode
	}{
		{
			name: "simple_two_symbols",
			write: func(w *bitWriter) {
				w.write(1, 2) // simple
				w.write(1, 2) // two symbols
				w.write(3, 8)
				w.write(200, 8)
			},
		},
		{
			name: "simple_duplicate",
			write: func(w *bitWriter) {
				w.write(1, 2)
				w.write(1, 2)
				w.write(42, 8)
				w.write(42, 8)
			},
			expectedCode: CodeDuplicateSimpleHuffmanSymbol,
		},
		{
			name: "complex_empty_histogram",
			write: func(w *bitWriter) {
				w.write(0, 2) // complex, no skip
				for i := 0; i < codeLengthCodes; i++ {
					w.write(0, 2) // code length code length 0
				}
			},
			expectedCode: CodeCorruptedHuffmanCodeHistogram,
		},
		{
			name: "complex_unused_space",
			write: func(w *bitWriter) {
				w.write(0, 2)
				// Code length codes 1 and 0 get 1 bit each, 2 to 4 get
				// none. The code space is full after the fifth entry.
				w.write(0b0111, 4)
				w.write(0, 2)
				w.write(0, 2)
				w.write(0, 2)
				w.write(0b0111, 4)
				// A single symbol of length 1 followed by zeros leaves
				// half of the code space unused.
				w.write(1, 1)
				for i := 1; i < 256; i++ {
					w.write(0, 1)
				}
			},
			expectedCode: CodeUnusedHuffmanSpace,
		},
		{
			name: "complex_over_subscribed_lengths",
			write: func(w *bitWriter) {
				w.write(0, 2)
				// Code length codes 1 and 2 get 1 bit each.
				w.write(0b0111, 4)
				w.write(0b0111, 4)
				// Lengths 1, 2, 1 need more than the whole code space.
				w.write(0, 1)
				w.write(1, 1)
				w.write(0, 1)
			},
			expectedCode: CodeUnusedHuffmanSpace,
		},
		{
			name: "complex_over_subscribed_code_length_codes",
			write: func(w *bitWriter) {
				w.write(0, 2)
				w.write(0b011, 3)  // 2 bits
				w.write(0b0111, 4) // 1 bit
				w.write(0b0111, 4) // 1 bit
			},
			expectedCode: CodeCorruptedHuffmanCodeHistogram,
		},
		{
			name:         "complex_repeat_past_alphabet",
			alphabetSize: 4,
			write: func(w *bitWriter) {
				w.write(0, 2)
				// Code length codes 1 and 17 get 1 bit each.
				w.write(0b0111, 4)
				for i := 0; i < 5; i++ {
					w.write(0, 2)
				}
				w.write(0b0111, 4)
				// One length 1, then a run of 10 zeros.
				w.write(0, 1)
				w.write(1, 1)
				w.write(0b111, 3)
			},
			expectedCode: CodeCorruptedCodeLengthTable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := require.New(t)

			alphabetSize := tc.alphabetSize
			if alphabetSize == 0 {
				alphabetSize = numLiteralSymbols
			}

			w := &bitWriter{}
			tc.write(w)

			br := newTestBitReader(t, w.bytes())
			table := make([]int32, 1+maxHuffmanTableSize[8])
			table[0] = 1

			_, err := readHuffmanCode(br, alphabetSize, alphabetSize, table, 0)
			if tc.expectedCode == 0 {
				r.NoError(err)

				return
			}

			r.ErrorIs(err, newDecodeError(tc.expectedCode))
			r.ErrorIs(err, ErrCorrupted)
		})
	}
}
