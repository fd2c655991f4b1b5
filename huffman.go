package brotli

const (
	huffmanTableBits = 8
	huffmanTableMask = 0xFF

	maxCodeLength = 15
)

// maxHuffmanTableSize bounds the table cells needed for an alphabet of up to
// 32*(i+1) symbols with an 8-bit root table.
var maxHuffmanTableSize = [...]int{
	256, 402, 436, 468, 500, 534, 566, 598, 630, 662, 694, 726,
	758, 790, 822, 854, 886, 920, 952, 984, 1016, 1048, 1080,
}

// huffmanTreeGroupAllocSize returns the cells needed for n trees: n offset
// slots followed by the tables themselves.
func huffmanTreeGroupAllocSize(alphabetSizeLimit, n int) int {
	maxTableSize := maxHuffmanTableSize[(alphabetSizeLimit+31)>>5]

	return n + n*maxTableSize
}

// getNextKey returns reverse(reverse(key, len) + 1, len).
func getNextKey(key, length int) int {
	step := 1 << (length - 1)
	for key&step != 0 {
		step >>= 1
	}

	return (key & (step - 1)) + step
}

// replicateValue stores item at table[offset+end-step], table[offset+end-2*step], ... table[offset].
func replicateValue(table []int32, offset, step, end int, item int32) {
	pos := end
	for pos > 0 {
		pos -= step
		table[offset+pos] = item
	}
}

// nextTableBitSize returns the bit width of the second-level table that
// holds the codes of length len and longer sharing one root entry.
func nextTableBitSize(count *[16]int, length, rootBits int) int {
	bits := length
	left := 1 << (bits - rootBits)
	for bits < maxCodeLength {
		left -= count[bits]
		if left <= 0 {
			break
		}

		bits++
		left <<= 1
	}

	return bits - rootBits
}

// buildHuffmanTable fills tableGroup starting at tableGroup[tableIdx] with a
// lookup table for the canonical code described by codeLengths. Each cell is
// bits<<16 | symbol; root cells of long codes instead point to a second
// level table. It returns the number of cells used.
func buildHuffmanTable(tableGroup []int32, tableIdx, rootBits int, codeLengths []int32, codeLengthsSize int) int {
	var (
		count  [16]int
		offset [16]int
	)

	tableOffset := int(tableGroup[tableIdx])
	sorted := make([]int32, codeLengthsSize)

	for sym := 0; sym < codeLengthsSize; sym++ {
		count[codeLengths[sym]]++
	}

	offset[1] = 0
	for length := 1; length < maxCodeLength; length++ {
		offset[length+1] = offset[length] + count[length]
	}

	for sym := 0; sym < codeLengthsSize; sym++ {
		if codeLengths[sym] != 0 {
			sorted[offset[codeLengths[sym]]] = int32(sym)
			offset[codeLengths[sym]]++
		}
	}

	tableBits := rootBits
	tableSize := 1 << tableBits
	totalSize := tableSize

	// Single symbol: every lookup yields it and consumes no bits.
	if offset[maxCodeLength] == 1 {
		for k := 0; k < totalSize; k++ {
			tableGroup[tableOffset+k] = sorted[0]
		}

		return totalSize
	}

	key := 0
	symbol := 0
	step := 1

	for length := 1; length <= rootBits; length++ {
		step <<= 1
		for count[length] > 0 {
			replicateValue(tableGroup, tableOffset+key, step, tableSize, int32(length<<16)|sorted[symbol])
			symbol++
			key = getNextKey(key, length)
			count[length]--
		}
	}

	mask := totalSize - 1
	low := -1
	currentOffset := tableOffset
	step = 1

	for length := rootBits + 1; length <= maxCodeLength; length++ {
		step <<= 1
		for count[length] > 0 {
			if key&mask != low {
				currentOffset += tableSize
				tableBits = nextTableBitSize(&count, length, rootBits)
				tableSize = 1 << tableBits
				totalSize += tableSize
				low = key & mask
				tableGroup[tableOffset+low] = int32((tableBits+rootBits)<<16 | (currentOffset - tableOffset - low))
			}

			replicateValue(tableGroup, currentOffset+(key>>rootBits), step, tableSize, int32((length-rootBits)<<16)|sorted[symbol])
			symbol++
			key = getNextKey(key, length)
			count[length]--
		}
	}

	return totalSize
}

// readSymbol decodes one symbol with the table at tableGroup[tableIdx].
// The window must hold at least 15 bits.
func (br *bitReader) readSymbol(tableGroup []int32, tableIdx int) int {
	offset := int(tableGroup[tableIdx])
	v := br.accumulator >> br.bitOffset
	offset += int(v & huffmanTableMask)

	bits := int(tableGroup[offset] >> 16)
	sym := int(tableGroup[offset] & 0xFFFF)
	if bits <= huffmanTableBits {
		br.bitOffset += bits

		return sym
	}

	offset += sym
	mask := uint32(1)<<bits - 1
	offset += int((v & mask) >> huffmanTableBits)
	br.bitOffset += int(tableGroup[offset]>>16) + huffmanTableBits

	return int(tableGroup[offset] & 0xFFFF)
}
