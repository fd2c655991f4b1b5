package brotli

import (
	_ "embed"
	"fmt"
	"sync"
)

// Transformed words of up to maxDictionaryWordLength bytes fit in the ring
// buffer slack.
const (
	minDictionaryWordLength = 4
	maxDictionaryWordLength = 24
)

//go:embed dictionary.bin
var staticDictionaryData []byte

// staticDictionarySizeBits holds log2 of the word count for each word
// length 0..24 of the RFC 7932 dictionary.
var staticDictionarySizeBits = []int{
	0, 0, 0, 0, 10, 10, 11, 11, 10, 10, 10, 10, 10,
	9, 9, 8, 7, 7, 8, 7, 7, 6, 6, 5, 5,
}

// Dictionary is an immutable word list addressed by (length, index). Words of
// the same length are stored back to back; a length with sizeBits n holds
// 1<<n words.
type Dictionary struct {
	data     []byte
	offsets  [maxDictionaryWordLength + 1]int
	sizeBits [maxDictionaryWordLength + 1]int
}

// StaticDictionary returns the built-in RFC 7932 dictionary. It is built on
// first use and shared by all decoders.
var StaticDictionary = sync.OnceValue(func() *Dictionary {
	d, err := NewDictionary(staticDictionaryData, staticDictionarySizeBits)
	if err != nil {
		panic(err)
	}

	return d
})

// NewDictionary validates data against sizeBits and returns a dictionary over
// it. sizeBits[l] is log2 of the number of words of length l, or 0 when there
// are none. Words are 4 to 24 bytes long.
func NewDictionary(data []byte, sizeBits []int) (*Dictionary, error) {
	if len(sizeBits) > maxDictionaryWordLength+1 {
		return nil, fmt.Errorf("%w: %d word lengths", ErrInvalidDictionary, len(sizeBits))
	}

	d := &Dictionary{data: data}

	pos := 0
	for i, bits := range sizeBits {
		if bits < 0 || bits > 31 {
			return nil, fmt.Errorf("%w: size bits %d for length %d", ErrInvalidDictionary, bits, i)
		}

		if bits != 0 && i < minDictionaryWordLength {
			return nil, fmt.Errorf("%w: words of length %d", ErrInvalidDictionary, i)
		}

		d.sizeBits[i] = bits
		d.offsets[i] = pos
		if bits != 0 {
			pos += i << bits
		}
	}

	for i := len(sizeBits); i <= maxDictionaryWordLength; i++ {
		d.offsets[i] = pos
	}

	if pos != len(data) {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidDictionary, pos, len(data))
	}

	return d, nil
}

// Word returns the index-th word of the given length, or nil when there is
// no such word. The returned slice must not be modified.
func (d *Dictionary) Word(length, index int) []byte {
	if length < 0 || length > maxDictionaryWordLength || d.sizeBits[length] == 0 {
		return nil
	}

	if index < 0 || index >= 1<<d.sizeBits[length] {
		return nil
	}

	offset := d.offsets[length] + index*length

	return d.data[offset : offset+length : offset+length]
}

// Size returns the number of bytes in the word list.
func (d *Dictionary) Size() int {
	return len(d.data)
}
