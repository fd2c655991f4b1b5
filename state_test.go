package brotli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceHistory(t *testing.T) {
	r := require.New(t)

	h := newDistanceHistory()
	r.Equal(4, h.last())

	expected := []int{4, 11, 15, 16, 3, 5, 2, 6, 1, 7, 10, 12, 9, 13, 8, 14}
	for code, want := range expected {
		r.Equal(want, h.shortCode(code), "code %d", code)
	}

	h.push(100)
	r.Equal(100, h.last())
	r.Equal(100, h.shortCode(0))
	r.Equal(4, h.shortCode(1))
	r.Equal(11, h.shortCode(2))
	r.Equal(15, h.shortCode(3))
	r.Equal(99, h.shortCode(4))
}

func TestBlockCategoryNext(t *testing.T) {
	r := require.New(t)

	var c blockCategory
	c.reset(3, 10)
	r.Equal(0, c.current())
	r.Equal(10, c.length)

	r.Equal(1, c.next(0)) // previous type
	r.Equal(2, c.next(1)) // current + 1
	r.Equal(0, c.next(1)) // wraps around numTypes
	r.Equal(2, c.next(4)) // explicit type 2
	r.Equal(0, c.next(0))
	r.Equal(0, c.current())
}

func TestRunningStateString(t *testing.T) {
	r := require.New(t)

	r.Equal("main loop", stateMainLoop.String())
	r.Equal("copy from compound dictionary", stateCopyFromCompoundDictionary.String())
	r.Equal("unknown", runningState(-1).String())
	r.Equal("unknown", runningState(100).String())
}
