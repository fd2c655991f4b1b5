package brotli

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticDictionary(t *testing.T) {
	r := require.New(t)

	d := StaticDictionary()
	r.Same(d, StaticDictionary())
	r.Equal(122784, d.Size())

	sum := sha256.Sum256(d.data)
	r.Equal("20e42eb1b511c21806d4d227d07e5dd06877d8ce7b3a817f378f313653f35c70", hex.EncodeToString(sum[:]))

	r.Equal("time", string(d.Word(4, 0)))
	r.Equal("down", string(d.Word(4, 1)))
	r.Equal("first", string(d.Word(5, 0)))
	r.Equal("media", string(d.Word(5, 4)))
	r.Equal("&quot;", string(d.Word(6, 0)))
	r.Len(d.Word(24, 31), 24)
}

func TestDictionaryWordOutOfRange(t *testing.T) {
	r := require.New(t)

	d := StaticDictionary()

	r.Nil(d.Word(3, 0))
	r.Nil(d.Word(25, 0))
	r.Nil(d.Word(-1, 0))
	r.Nil(d.Word(32, 0))
	r.Nil(d.Word(4, 1024))
	r.Nil(d.Word(24, 32))
	r.Nil(d.Word(4, -1))
}

func TestNewDictionary(t *testing.T) {
	r := require.New(t)

	d, err := NewDictionary([]byte("abcdefghijklmnopqrstuvwxyz01"), []int{0, 0, 0, 0, 1, 2})
	r.NoError(err)
	r.Equal(28, d.Size())
	r.Equal("efgh", string(d.Word(4, 1)))
	r.Equal("ijklm", string(d.Word(5, 0)))
	r.Equal("xyz01", string(d.Word(5, 3)))
	r.Nil(d.Word(6, 0))

	testCases := []struct {
		name     string
		data     []byte
		sizeBits []int
	}{
		{name: "too_many_lengths", sizeBits: make([]int, maxDictionaryWordLength+2)},
		{name: "negative_bits", sizeBits: []int{0, 0, 0, 0, -1}},
		{name: "huge_bits", sizeBits: []int{0, 0, 0, 0, 32}},
		{name: "short_words", data: []byte("ab"), sizeBits: []int{0, 1}},
		{name: "words_too_long", data: make([]byte, 50), sizeBits: append(make([]int, 25), 1)},
		{name: "size_mismatch", data: []byte("abcdefg"), sizeBits: []int{0, 0, 0, 0, 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDictionary(tc.data, tc.sizeBits)
			require.ErrorIs(t, err, ErrInvalidDictionary)
		})
	}
}

func TestDictionaryWordsFitRingBufferSlack(t *testing.T) {
	r := require.New(t)

	for i, tr := range rfcTransforms {
		r.LessOrEqual(len(tr.prefix)+maxDictionaryWordLength+len(tr.suffix), ringBufferSlack, "transform %d", i)
	}

	// The longest word with the longest wrapping still lands in the slack.
	word := bytes.Repeat([]byte{'x'}, maxDictionaryWordLength)
	dst := make([]byte, ringBufferSlack)
	for i := range rfcTransforms {
		n := transformDictionaryWord(dst, word, rfcTransforms, i)
		expected := rfcTransforms[i].prefix + string(word) + rfcTransforms[i].suffix
		if rfcTransforms[i].kind == transformIdentity {
			r.Equal(expected, string(dst[:n]), "transform %d", i)
		}
	}
}
