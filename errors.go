package brotli

import (
	"errors"
	"strconv"
)

// ErrorCode identifies why a decode session failed. Codes are negative and
// stable; they follow the numbering used by the reference decoders.
type ErrorCode int

const (
	CodeCorruptedCodeLengthTable      ErrorCode = -2
	CodeCorruptedContextMap           ErrorCode = -3
	CodeCorruptedHuffmanCodeHistogram ErrorCode = -4
	CodeCorruptedPaddingBits          ErrorCode = -5
	CodeCorruptedReservedBit          ErrorCode = -6
	CodeDuplicateSimpleHuffmanSymbol  ErrorCode = -7
	CodeExuberantNibble               ErrorCode = -8
	CodeInvalidBackwardReference      ErrorCode = -9
	CodeInvalidMetablockLength        ErrorCode = -10
	CodeInvalidWindowBits             ErrorCode = -11
	CodeNegativeDistance              ErrorCode = -12
	CodeReadAfterEnd                  ErrorCode = -13
	CodeSymbolOutOfRange              ErrorCode = -15
	CodeTruncatedInput                ErrorCode = -16
	CodeUnusedBytesAfterEnd           ErrorCode = -17
	CodeUnusedHuffmanSpace            ErrorCode = -18

	CodeAlreadyClosed           ErrorCode = -22
	CodeMaxDistanceTooSmall     ErrorCode = -23
	CodeStateNotFresh           ErrorCode = -24
	CodeStateNotInitialized     ErrorCode = -25
	CodeStateNotUninitialized   ErrorCode = -26
	CodeTooManyDictionaryChunks ErrorCode = -27
	CodeUnexpectedState         ErrorCode = -28
	CodeUnreachable             ErrorCode = -29
	CodeUnalignedCopyBytes      ErrorCode = -30
)

var codeNames = map[ErrorCode]string{
	CodeCorruptedCodeLengthTable:      "corrupted code length table",
	CodeCorruptedContextMap:           "corrupted context map",
	CodeCorruptedHuffmanCodeHistogram: "corrupted huffman code histogram",
	CodeCorruptedPaddingBits:          "corrupted padding bits",
	CodeCorruptedReservedBit:          "corrupted reserved bit",
	CodeDuplicateSimpleHuffmanSymbol:  "duplicate simple huffman symbol",
	CodeExuberantNibble:               "exuberant nibble",
	CodeInvalidBackwardReference:      "invalid backward reference",
	CodeInvalidMetablockLength:        "invalid metablock length",
	CodeInvalidWindowBits:             "invalid window bits",
	CodeNegativeDistance:              "negative distance",
	CodeReadAfterEnd:                  "read after end",
	CodeSymbolOutOfRange:              "symbol out of range",
	CodeTruncatedInput:                "truncated input",
	CodeUnusedBytesAfterEnd:           "unused bytes after end",
	CodeUnusedHuffmanSpace:            "unused huffman space",
	CodeAlreadyClosed:                 "already closed",
	CodeMaxDistanceTooSmall:           "max distance too small",
	CodeStateNotFresh:                 "state not fresh",
	CodeStateNotInitialized:           "state not initialized",
	CodeStateNotUninitialized:         "state not uninitialized",
	CodeTooManyDictionaryChunks:       "too many dictionary chunks",
	CodeUnexpectedState:               "unexpected state",
	CodeUnreachable:                   "unreachable",
	CodeUnalignedCopyBytes:            "unaligned copy bytes",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return "error code " + strconv.Itoa(int(c))
}

// Error classes matched by errors.Is against a *DecodeError.
var (
	ErrCorrupted = errors.New("brotli: corrupted input")
	ErrTruncated = errors.New("brotli: truncated input")
	ErrMisuse    = errors.New("brotli: decoder misuse")
	ErrInternal  = errors.New("brotli: internal decoder error")

	ErrInvalidDictionary = errors.New("brotli: invalid dictionary")
	errAlreadyClosed     = errors.New("brotli: already closed")
)

// DecodeError reports a fatal condition of a decode session.
type DecodeError struct {
	Code ErrorCode
}

func newDecodeError(code ErrorCode) *DecodeError {
	return &DecodeError{Code: code}
}

func (e *DecodeError) Error() string {
	return "brotli: " + e.Code.String() + " (" + strconv.Itoa(int(e.Code)) + ")"
}

// class returns the error class of the code.
func (e *DecodeError) class() error {
	switch e.Code {
	case CodeTruncatedInput, CodeReadAfterEnd:
		return ErrTruncated
	case CodeAlreadyClosed, CodeStateNotFresh, CodeStateNotInitialized,
		CodeStateNotUninitialized, CodeTooManyDictionaryChunks:
		return ErrMisuse
	case CodeMaxDistanceTooSmall, CodeUnexpectedState, CodeUnreachable, CodeUnalignedCopyBytes:
		return ErrInternal
	}

	return ErrCorrupted
}

func (e *DecodeError) Is(target error) bool {
	if t, ok := target.(*DecodeError); ok {
		return t.Code == e.Code
	}

	return target == e.class()
}
