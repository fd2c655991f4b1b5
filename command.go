package brotli

const (
	numCommandSymbols = 704
	numLiteralSymbols = 256

	numDistanceShortCodes = 16
	maxDistanceBits       = 24
	maxLargeDistanceBits  = 62
	maxAllowedDistance    = 0x7FFFFFFC
)

var (
	blockLengthOffset = [blockLengthAlphabet]int{
		1, 5, 9, 13, 17, 25, 33, 41, 49, 65, 81, 97, 113, 145, 177, 209,
		241, 305, 369, 497, 753, 1265, 2289, 4337, 8433, 16625,
	}
	blockLengthNBits = [blockLengthAlphabet]int{
		2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 6, 6, 7, 8, 9, 10, 11, 12, 13, 24,
	}

	insertLengthNBits = [24]int{
		0, 0, 0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 7, 8, 9, 10, 12, 14, 24,
	}
	copyLengthNBits = [24]int{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 7, 8, 9, 10, 24,
	}

	// Short distance codes 0..15 reuse an entry of the distance ring,
	// optionally adjusted by a small delta.
	distanceShortCodeIndexOffset = [numDistanceShortCodes]int{0, 3, 2, 1, 0, 0, 0, 0, 0, 0, 3, 3, 3, 3, 3, 3}
	distanceShortCodeValueOffset = [numDistanceShortCodes]int{0, 0, 0, 0, -1, 1, -2, 2, -3, 3, -1, 1, -2, 2, -3, 3}
)

// command is one decoded insert-and-copy symbol.
type command struct {
	insertExtraBits int
	insertOffset    int
	copyExtraBits   int
	copyOffset      int

	// distanceContext selects the distance tree; a negative value means the
	// command reuses the last distance and carries no distance symbol.
	distanceContext int
}

var commandLookup = buildCommandLookup()

func buildCommandLookup() [numCommandSymbols]command {
	var (
		lookup             [numCommandSymbols]command
		insertLengthOffset [24]int
		copyLengthOffset   [24]int
	)

	copyLengthOffset[0] = 2
	for i := 0; i < 23; i++ {
		insertLengthOffset[i+1] = insertLengthOffset[i] + 1<<insertLengthNBits[i]
		copyLengthOffset[i+1] = copyLengthOffset[i] + 1<<copyLengthNBits[i]
	}

	for code := 0; code < numCommandSymbols; code++ {
		rangeIdx := code >> 6
		distanceContextOffset := -4
		if rangeIdx >= 2 {
			rangeIdx -= 2
			distanceContextOffset = 0
		}

		insertCode := (0x29850>>(rangeIdx*2))&0x3<<3 | (code>>3)&7
		copyCode := (0x26244>>(rangeIdx*2))&0x3<<3 | code&7

		lookup[code] = command{
			insertExtraBits: insertLengthNBits[insertCode],
			insertOffset:    insertLengthOffset[insertCode],
			copyExtraBits:   copyLengthNBits[copyCode],
			copyOffset:      copyLengthOffset[copyCode],
			distanceContext: distanceContextOffset + min(copyLengthOffset[copyCode], 5) - 2,
		}
	}

	return lookup
}

func calculateDistanceAlphabetSize(npostfix, ndirect, maxndistbits int) int {
	return numDistanceShortCodes + ndirect + 2*(maxndistbits<<npostfix)
}

// calculateDistanceAlphabetLimit returns the number of distance symbols that
// can encode distances up to maxDistance.
func calculateDistanceAlphabetLimit(maxDistance, npostfix, ndirect int) (int, error) {
	if maxDistance < ndirect+2<<npostfix {
		return 0, newDecodeError(CodeMaxDistanceTooSmall)
	}

	offset := (maxDistance-ndirect)>>npostfix + 4
	ndistbits := log2floor(offset) - 1
	group := (ndistbits-1)<<1 | (offset>>ndistbits)&1

	return (group-1)<<npostfix + 1<<npostfix + ndirect + numDistanceShortCodes, nil
}
