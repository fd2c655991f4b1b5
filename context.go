package brotli

// Literal context modes.
const (
	contextLSB6 = iota
	contextMSB6
	contextUTF8
	contextSigned
)

// contextLookup maps the two previous bytes to a literal context id. Mode m
// uses contextLookup[m<<9 : m<<9+256] for the last byte and the following
// 256 entries for the byte before it; the two values are ORed.
var contextLookup = buildContextLookup()

const (
	contextUTF8Map = "         !!  !                  \"#$##%#$&'##(#)#++++++++++((&*'##,---,---,-----,-----,-----&#'###.///.///./////./////./////&#'# "
	contextUTF8Rle = "A/*  ':  & : $  \x81 @"
)

func buildContextLookup() [2048]uint8 {
	var lookup [2048]uint8

	for i := 0; i < 256; i++ {
		lookup[i] = uint8(i & 0x3F)
		lookup[512+i] = uint8(i >> 2)
		lookup[1792+i] = uint8(2 + (i >> 6))
	}

	for i := 0; i < 128; i++ {
		lookup[1024+i] = 4 * (contextUTF8Map[i] - 32)
	}

	for i := 0; i < 64; i++ {
		lookup[1152+i] = uint8(i & 1)
		lookup[1216+i] = uint8(2 + (i & 1))
	}

	offset := 1280
	for k := 0; k < len(contextUTF8Rle); k++ {
		value := uint8(k & 3)
		rep := int(contextUTF8Rle[k]) - 32
		for i := 0; i < rep; i++ {
			lookup[offset] = value
			offset++
		}
	}

	for i := 0; i < 16; i++ {
		lookup[1792+i] = 1
		lookup[2032+i] = 6
	}

	lookup[1792] = 0
	lookup[2047] = 7

	for i := 0; i < 256; i++ {
		lookup[1536+i] = lookup[1792+i] << 3
	}

	return lookup
}

// literalContext returns the context id of the next literal for the given
// mode and preceding bytes.
func literalContext(mode int, prev1, prev2 byte) int {
	base := mode << 9

	return int(contextLookup[base+int(prev1)] | contextLookup[base+256+int(prev2)])
}
