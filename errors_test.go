package brotli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeErrorClasses(t *testing.T) {
	testCases := []struct {
		code ErrorCode

		truncated bool
		misuse    bool
		internal  bool
	}{
		{code: CodeCorruptedContextMap},
		{code: CodeInvalidWindowBits},
		{code: CodeUnusedBytesAfterEnd},
		{code: CodeReadAfterEnd, truncated: true},
		{code: CodeTruncatedInput, truncated: true},
		{code: CodeAlreadyClosed, misuse: true},
		{code: CodeStateNotFresh, misuse: true},
		{code: CodeTooManyDictionaryChunks, misuse: true},
		{code: CodeMaxDistanceTooSmall, internal: true},
		{code: CodeUnexpectedState, internal: true},
		{code: CodeUnalignedCopyBytes, internal: true},
	}

	for _, tc := range testCases {
		t.Run(tc.code.String(), func(t *testing.T) {
			r := require.New(t)

			err := fmt.Errorf("wrapped: %w", newDecodeError(tc.code))

			r.Equal(tc.truncated, errors.Is(err, ErrTruncated))
			r.Equal(tc.misuse, errors.Is(err, ErrMisuse))
			r.Equal(tc.internal, errors.Is(err, ErrInternal))
			r.Equal(!tc.truncated && !tc.misuse && !tc.internal, errors.Is(err, ErrCorrupted))
			r.ErrorIs(err, newDecodeError(tc.code))
			r.NotErrorIs(err, newDecodeError(CodeUnreachable))

			var de *DecodeError
			r.ErrorAs(err, &de)
			r.Equal(tc.code, de.Code)
		})
	}
}

func TestDecodeErrorString(t *testing.T) {
	r := require.New(t)

	r.Equal("brotli: truncated input (-16)", newDecodeError(CodeTruncatedInput).Error())
	r.Equal("error code -1", ErrorCode(-1).String())
}
