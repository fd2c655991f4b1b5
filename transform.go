package brotli

type transformKind uint8

const (
	transformIdentity transformKind = iota
	transformOmitLast1
	transformOmitLast2
	transformOmitLast3
	transformOmitLast4
	transformOmitLast5
	transformOmitLast6
	transformOmitLast7
	transformOmitLast8
	transformOmitLast9
	transformUppercaseFirst
	transformUppercaseAll
	transformOmitFirst1
	transformOmitFirst2
	transformOmitFirst3
	transformOmitFirst4
	transformOmitFirst5
	transformOmitFirst6
	transformOmitFirst7
	transformOmitFirst8
	transformOmitFirst9
	transformShiftFirst
	transformShiftAll
)

func (k transformKind) omitFirst() int {
	if k >= transformOmitFirst1 && k <= transformOmitFirst9 {
		return int(k-transformOmitFirst1) + 1
	}

	return 0
}

func (k transformKind) omitLast() int {
	if k >= transformOmitLast1 && k <= transformOmitLast9 {
		return int(k-transformOmitLast1) + 1
	}

	return 0
}

// transform wraps a dictionary word: prefix + kind(word) + suffix. param is
// only used by the shift kinds, which no entry of rfcTransforms uses.
type transform struct {
	prefix string
	kind   transformKind
	suffix string
	param  uint16
}

// rfcTransforms lists the 121 word transforms of RFC 7932 Appendix B.
var rfcTransforms = []transform{
	{"", transformIdentity, "", 0},
	{"", transformIdentity, " ", 0},
	{" ", transformIdentity, " ", 0},
	{"", transformOmitFirst1, "", 0},
	{"", transformUppercaseFirst, " ", 0},
	{"", transformIdentity, " the ", 0},
	{" ", transformIdentity, "", 0},
	{"s ", transformIdentity, " ", 0},
	{"", transformIdentity, " of ", 0},
	{"", transformUppercaseFirst, "", 0},
	{"", transformIdentity, " and ", 0},
	{"", transformOmitFirst2, "", 0},
	{"", transformOmitLast1, "", 0},
	{", ", transformIdentity, " ", 0},
	{"", transformIdentity, ", ", 0},
	{" ", transformUppercaseFirst, " ", 0},
	{"", transformIdentity, " in ", 0},
	{"", transformIdentity, " to ", 0},
	{"e ", transformIdentity, " ", 0},
	{"", transformIdentity, "\"", 0},
	{"", transformIdentity, ".", 0},
	{"", transformIdentity, "\">", 0},
	{"", transformIdentity, "\n", 0},
	{"", transformOmitLast3, "", 0},
	{"", transformIdentity, "]", 0},
	{"", transformIdentity, " for ", 0},
	{"", transformOmitFirst3, "", 0},
	{"", transformOmitLast2, "", 0},
	{"", transformIdentity, " a ", 0},
	{"", transformIdentity, " that ", 0},
	{" ", transformUppercaseFirst, "", 0},
	{"", transformIdentity, ". ", 0},
	{".", transformIdentity, "", 0},
	{" ", transformIdentity, ", ", 0},
	{"", transformOmitFirst4, "", 0},
	{"", transformIdentity, " with ", 0},
	{"", transformIdentity, "'", 0},
	{"", transformIdentity, " from ", 0},
	{"", transformIdentity, " by ", 0},
	{"", transformOmitFirst5, "", 0},
	{"", transformOmitFirst6, "", 0},
	{" the ", transformIdentity, "", 0},
	{"", transformOmitLast4, "", 0},
	{"", transformIdentity, ". The ", 0},
	{"", transformUppercaseAll, "", 0},
	{"", transformIdentity, " on ", 0},
	{"", transformIdentity, " as ", 0},
	{"", transformIdentity, " is ", 0},
	{"", transformOmitLast7, "", 0},
	{"", transformOmitLast1, "ing ", 0},
	{"", transformIdentity, "\n\t", 0},
	{"", transformIdentity, ":", 0},
	{" ", transformIdentity, ". ", 0},
	{"", transformIdentity, "ed ", 0},
	{"", transformOmitFirst9, "", 0},
	{"", transformOmitFirst7, "", 0},
	{"", transformOmitLast6, "", 0},
	{"", transformIdentity, "(", 0},
	{"", transformUppercaseFirst, ", ", 0},
	{"", transformOmitLast8, "", 0},
	{"", transformIdentity, " at ", 0},
	{"", transformIdentity, "ly ", 0},
	{" the ", transformIdentity, " of ", 0},
	{"", transformOmitLast5, "", 0},
	{"", transformOmitLast9, "", 0},
	{" ", transformUppercaseFirst, ", ", 0},
	{"", transformUppercaseFirst, "\"", 0},
	{".", transformIdentity, "(", 0},
	{"", transformUppercaseAll, " ", 0},
	{"", transformUppercaseFirst, "\">", 0},
	{"", transformIdentity, "=\"", 0},
	{" ", transformIdentity, ".", 0},
	{".com/", transformIdentity, "", 0},
	{" the ", transformIdentity, " of the ", 0},
	{"", transformUppercaseFirst, "'", 0},
	{"", transformIdentity, ". This ", 0},
	{"", transformIdentity, ",", 0},
	{".", transformIdentity, " ", 0},
	{"", transformUppercaseFirst, "(", 0},
	{"", transformUppercaseFirst, ".", 0},
	{"", transformIdentity, " not ", 0},
	{" ", transformIdentity, "=\"", 0},
	{"", transformIdentity, "er ", 0},
	{" ", transformUppercaseAll, " ", 0},
	{"", transformIdentity, "al ", 0},
	{" ", transformUppercaseAll, "", 0},
	{"", transformIdentity, "='", 0},
	{"", transformUppercaseAll, "\"", 0},
	{"", transformUppercaseFirst, ". ", 0},
	{" ", transformIdentity, "(", 0},
	{"", transformIdentity, "ful ", 0},
	{" ", transformUppercaseFirst, ". ", 0},
	{"", transformIdentity, "ive ", 0},
	{"", transformIdentity, "less ", 0},
	{"", transformUppercaseAll, "'", 0},
	{"", transformIdentity, "est ", 0},
	{" ", transformUppercaseFirst, ".", 0},
	{"", transformUppercaseAll, "\">", 0},
	{" ", transformIdentity, "='", 0},
	{"", transformUppercaseFirst, ",", 0},
	{"", transformIdentity, "ize ", 0},
	{"", transformUppercaseAll, ".", 0},
	{"\xC2\xA0", transformIdentity, "", 0},
	{" ", transformIdentity, ",", 0},
	{"", transformUppercaseFirst, "=\"", 0},
	{"", transformUppercaseAll, "=\"", 0},
	{"", transformIdentity, "ous ", 0},
	{"", transformUppercaseAll, ", ", 0},
	{"", transformUppercaseFirst, "='", 0},
	{" ", transformUppercaseFirst, ",", 0},
	{" ", transformUppercaseAll, "=\"", 0},
	{" ", transformUppercaseAll, ", ", 0},
	{"", transformUppercaseAll, ",", 0},
	{"", transformUppercaseAll, "(", 0},
	{"", transformUppercaseAll, ". ", 0},
	{" ", transformUppercaseAll, ".", 0},
	{"", transformUppercaseAll, "='", 0},
	{" ", transformUppercaseAll, ". ", 0},
	{" ", transformUppercaseFirst, "=\"", 0},
	{" ", transformUppercaseAll, "='", 0},
	{" ", transformUppercaseFirst, "='", 0},
}

// transformDictionaryWord writes the transformed word to dst and returns the
// number of bytes written. dst must have room for the prefix, the word, the
// suffix and 3 bytes of case-folding overrun.
func transformDictionaryWord(dst []byte, word []byte, transforms []transform, transformIndex int) int {
	t := &transforms[transformIndex]
	offset := copy(dst, t.prefix)

	omitFirst := min(t.kind.omitFirst(), len(word))
	length := len(word) - omitFirst - t.kind.omitLast()
	if length > 0 {
		copy(dst[offset:], word[omitFirst:omitFirst+length])
		offset += length
	}

	switch t.kind {
	case transformUppercaseFirst:
		if length > 0 {
			toUpperCase(dst, offset-length)
		}
	case transformUppercaseAll:
		pos := offset - length
		for length > 0 {
			step := toUpperCase(dst, pos)
			pos += step
			length -= step
		}
	case transformShiftFirst, transformShiftAll:
		pos := offset - length
		scalar := int(t.param&0x7FFF) + (0x1000000 - int(t.param&0x8000))
		for length > 0 {
			step := shiftCodepoint(dst[pos:], length, &scalar)
			pos += step
			length -= step
			if t.kind == transformShiftFirst {
				break
			}
		}
	}

	offset += copy(dst[offset:], t.suffix)

	return offset
}

// toUpperCase folds the case of the UTF-8 sequence at dst[pos] the way the
// format defines it and returns the sequence length.
func toUpperCase(dst []byte, pos int) int {
	c0 := dst[pos]
	switch {
	case c0 < 0xC0:
		if c0 >= 'a' && c0 <= 'z' {
			dst[pos] ^= 32
		}

		return 1
	case c0 < 0xE0:
		if pos+1 < len(dst) {
			dst[pos+1] ^= 32
		}

		return 2
	default:
		if pos+2 < len(dst) {
			dst[pos+2] ^= 5
		}

		return 3
	}
}

// shiftCodepoint adds *scalar to the code point at the start of b, keeping
// the sequence length. It returns the number of bytes consumed.
func shiftCodepoint(b []byte, length int, scalar *int) int {
	c0 := int(b[0])

	switch {
	case c0 < 0x80:
		*scalar += c0
		b[0] = byte(*scalar & 0x7F)

		return 1
	case c0 < 0xC0:
		return 1
	case c0 < 0xE0:
		if length < 2 {
			return length
		}

		c1 := int(b[1])
		*scalar += (c1 & 0x3F) | (c0&0x1F)<<6
		b[0] = byte(0xC0 | (*scalar>>6)&0x1F)
		b[1] = byte(c1&0xC0 | *scalar&0x3F)

		return 2
	case c0 < 0xF0:
		if length < 3 {
			return length
		}

		c1, c2 := int(b[1]), int(b[2])
		*scalar += (c2 & 0x3F) | (c1&0x3F)<<6 | (c0&0x0F)<<12
		b[0] = byte(0xE0 | (*scalar>>12)&0x0F)
		b[1] = byte(c1&0xC0 | (*scalar>>6)&0x3F)
		b[2] = byte(c2&0xC0 | *scalar&0x3F)

		return 3
	case c0 < 0xF8:
		if length < 4 {
			return length
		}

		c1, c2, c3 := int(b[1]), int(b[2]), int(b[3])
		*scalar += (c3 & 0x3F) | (c2&0x3F)<<6 | (c1&0x3F)<<12 | (c0&0x07)<<18
		b[0] = byte(0xF0 | (*scalar>>18)&0x07)
		b[1] = byte(c1&0xC0 | (*scalar>>12)&0x3F)
		b[2] = byte(c2&0xC0 | (*scalar>>6)&0x3F)
		b[3] = byte(c3&0xC0 | *scalar&0x3F)

		return 4
	}

	return 1
}
