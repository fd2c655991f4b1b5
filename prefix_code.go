package brotli

import "math/bits"

const (
	codeLengthCodes       = 18
	codeLengthRepeatCode  = 16
	defaultCodeLength     = 8
	codeLengthTableBits   = 5
	huffmanSpace          = 1 << maxCodeLength
	codeLengthCodeSpace   = 32
	blockLengthAlphabet   = 26
	maxSimpleCodeSymbols  = 4
	simpleCodeHistogramV5 = 5
)

var codeLengthCodeOrder = [codeLengthCodes]int{1, 2, 3, 4, 0, 5, 17, 6, 16, 7, 8, 9, 10, 11, 12, 13, 14, 15}

// fixedCodeLengthTable decodes the static prefix code of the code length
// code lengths: bits<<16 | value, indexed by the next 4 bits.
var fixedCodeLengthTable = [16]int32{
	0x020000, 0x020004, 0x020003, 0x030002, 0x020000, 0x020004, 0x020003, 0x040001,
	0x020000, 0x020004, 0x020003, 0x030002, 0x020000, 0x020004, 0x020003, 0x040005,
}

func log2floor(i int) int {
	return bits.Len32(uint32(i)) - 1
}

// readHuffmanCodeLengths reads the run-length coded code lengths of a
// complex prefix code.
func readHuffmanCodeLengths(br *bitReader, codeLengthCodeLengths []int32, numSymbols int, codeLengths []int32) error {
	symbol := 0
	prevCodeLen := int32(defaultCodeLength)
	repeat := 0
	repeatCodeLen := int32(0)
	space := huffmanSpace

	var table [33]int32
	tableIdx := len(table) - 1
	buildHuffmanTable(table[:], tableIdx, codeLengthTableBits, codeLengthCodeLengths, codeLengthCodes)

	for symbol < numSymbols && space > 0 {
		if err := br.ensureInput(); err != nil {
			return err
		}

		br.fillBitWindow()
		p := (br.accumulator >> br.bitOffset) & 31
		br.bitOffset += int(table[p] >> 16)
		codeLen := table[p] & 0xFFFF

		if codeLen < codeLengthRepeatCode {
			repeat = 0
			codeLengths[symbol] = codeLen
			symbol++
			if codeLen != 0 {
				prevCodeLen = codeLen
				space -= huffmanSpace >> codeLen
			}

			continue
		}

		extraBits := int(codeLen) - 14
		newLen := int32(0)
		if codeLen == codeLengthRepeatCode {
			newLen = prevCodeLen
		}

		if repeatCodeLen != newLen {
			repeat = 0
			repeatCodeLen = newLen
		}

		oldRepeat := repeat
		if repeat > 0 {
			repeat -= 2
			repeat <<= extraBits
		}

		br.fillBitWindow()
		repeat += br.readFewBits(extraBits) + 3
		repeatDelta := repeat - oldRepeat
		if symbol+repeatDelta > numSymbols {
			return newDecodeError(CodeCorruptedCodeLengthTable)
		}

		for i := 0; i < repeatDelta; i++ {
			codeLengths[symbol] = repeatCodeLen
			symbol++
		}

		if repeatCodeLen != 0 {
			space -= repeatDelta << (maxCodeLength - repeatCodeLen)
		}
	}

	if space != 0 {
		return newDecodeError(CodeUnusedHuffmanSpace)
	}

	clear(codeLengths[symbol:numSymbols])

	return nil
}

func checkDupes(symbols []int) error {
	for i := 0; i < len(symbols)-1; i++ {
		for j := i + 1; j < len(symbols); j++ {
			if symbols[i] == symbols[j] {
				return newDecodeError(CodeDuplicateSimpleHuffmanSymbol)
			}
		}
	}

	return nil
}

// readSimpleHuffmanCode reads a code of 1 to 4 explicitly listed symbols.
func readSimpleHuffmanCode(br *bitReader, alphabetSizeMax, alphabetSizeLimit int, tableGroup []int32, tableIdx int) (int, error) {
	var symbols [maxSimpleCodeSymbols]int

	codeLengths := make([]int32, alphabetSizeLimit)
	maxBits := 1 + log2floor(alphabetSizeMax-1)

	numSymbols := br.readFewBits(2) + 1
	for i := 0; i < numSymbols; i++ {
		br.fillBitWindow()
		symbol := br.readFewBits(maxBits)
		if symbol >= alphabetSizeLimit {
			return 0, newDecodeError(CodeSymbolOutOfRange)
		}

		symbols[i] = symbol
	}

	if err := checkDupes(symbols[:numSymbols]); err != nil {
		return 0, err
	}

	histogramID := numSymbols
	if numSymbols == maxSimpleCodeSymbols {
		histogramID += br.readFewBits(1)
	}

	switch histogramID {
	case 1:
		codeLengths[symbols[0]] = 1
	case 2:
		codeLengths[symbols[0]] = 1
		codeLengths[symbols[1]] = 1
	case 3:
		codeLengths[symbols[0]] = 1
		codeLengths[symbols[1]] = 2
		codeLengths[symbols[2]] = 2
	case 4:
		codeLengths[symbols[0]] = 2
		codeLengths[symbols[1]] = 2
		codeLengths[symbols[2]] = 2
		codeLengths[symbols[3]] = 2
	case simpleCodeHistogramV5:
		codeLengths[symbols[0]] = 1
		codeLengths[symbols[1]] = 2
		codeLengths[symbols[2]] = 3
		codeLengths[symbols[3]] = 3
	}

	return buildHuffmanTable(tableGroup, tableIdx, huffmanTableBits, codeLengths, alphabetSizeLimit), nil
}

// readComplexHuffmanCode reads a code whose lengths are themselves prefix
// coded. skip is the number of leading code length codes omitted.
func readComplexHuffmanCode(br *bitReader, alphabetSizeLimit, skip int, tableGroup []int32, tableIdx int) (int, error) {
	var codeLengthCodeLengths [codeLengthCodes]int32

	codeLengths := make([]int32, alphabetSizeLimit)
	space := codeLengthCodeSpace
	numCodes := 0

	for i := skip; i < codeLengthCodes; i++ {
		codeLenIdx := codeLengthCodeOrder[i]

		br.fillBitWindow()
		p := (br.accumulator >> br.bitOffset) & 15
		br.bitOffset += int(fixedCodeLengthTable[p] >> 16)
		v := fixedCodeLengthTable[p] & 0xFFFF
		codeLengthCodeLengths[codeLenIdx] = v

		if v != 0 {
			space -= codeLengthCodeSpace >> v
			numCodes++
			if space <= 0 {
				break
			}
		}
	}

	if space != 0 && numCodes != 1 {
		return 0, newDecodeError(CodeCorruptedHuffmanCodeHistogram)
	}

	if err := readHuffmanCodeLengths(br, codeLengthCodeLengths[:], alphabetSizeLimit, codeLengths); err != nil {
		return 0, err
	}

	return buildHuffmanTable(tableGroup, tableIdx, huffmanTableBits, codeLengths, alphabetSizeLimit), nil
}

// readHuffmanCode reads one prefix code and builds its table at
// tableGroup[tableIdx]. It returns the number of table cells used.
func readHuffmanCode(br *bitReader, alphabetSizeMax, alphabetSizeLimit int, tableGroup []int32, tableIdx int) (int, error) {
	if err := br.ensureInput(); err != nil {
		return 0, err
	}

	br.fillBitWindow()
	simpleCodeOrSkip := br.readFewBits(2)
	if simpleCodeOrSkip == 1 {
		return readSimpleHuffmanCode(br, alphabetSizeMax, alphabetSizeLimit, tableGroup, tableIdx)
	}

	return readComplexHuffmanCode(br, alphabetSizeLimit, simpleCodeOrSkip, tableGroup, tableIdx)
}

// decodeHuffmanTreeGroup reads n prefix codes into group. group[i] receives
// the offset of tree i.
func decodeHuffmanTreeGroup(br *bitReader, alphabetSizeMax, alphabetSizeLimit, n int, group []int32) error {
	next := n
	for i := 0; i < n; i++ {
		group[i] = int32(next)

		size, err := readHuffmanCode(br, alphabetSizeMax, alphabetSizeLimit, group, i)
		if err != nil {
			return err
		}

		next += size
	}

	return nil
}
