package brotli

import "github.com/sirupsen/logrus"

const (
	numContextModes       = 4
	literalContextBits    = 6
	distanceContextBits   = 2
	contextModesPerRefill = 96
	singleBlockLength     = 1 << 28
)

// decodeWindowBits reads WBITS and returns log2 of the window size.
func (d *Decoder) decodeWindowBits() (int, error) {
	largeWindowEnabled := d.isLargeWindow
	d.isLargeWindow = false

	br := &d.br
	br.fillBitWindow()

	if br.readFewBits(1) == 0 {
		return 16, nil
	}

	n := br.readFewBits(3)
	if n != 0 {
		return 17 + n, nil
	}

	n = br.readFewBits(3)
	switch n {
	case 0:
		return 17, nil
	case 1:
		if !largeWindowEnabled {
			return 0, newDecodeError(CodeInvalidWindowBits)
		}

		d.isLargeWindow = true
		if br.readFewBits(1) == 1 {
			return 0, newDecodeError(CodeInvalidWindowBits)
		}

		n = br.readFewBits(6)
		if n < 10 || n > 30 {
			return 0, newDecodeError(CodeInvalidWindowBits)
		}

		return n, nil
	}

	return 8 + n, nil
}

func (d *Decoder) decodeVarLenUnsignedByte() int {
	br := &d.br
	br.fillBitWindow()

	if br.readFewBits(1) != 0 {
		n := br.readFewBits(3)
		if n == 0 {
			return 1
		}

		return br.readFewBits(n) + 1<<n
	}

	return 0
}

// decodeMetaBlockLength reads ISLAST, ISLASTEMPTY, MNIBBLES, MLEN and
// ISUNCOMPRESSED into d.header.
func (d *Decoder) decodeMetaBlockLength() error {
	br := &d.br
	h := &d.header

	br.fillBitWindow()
	h.isLast = br.readFewBits(1) != 0
	h.length = 0
	h.isUncompressed = false
	h.isMetadata = false

	if h.isLast && br.readFewBits(1) != 0 {
		return nil
	}

	sizeNibbles := br.readFewBits(2) + 4
	if sizeNibbles == 7 {
		h.isMetadata = true
		if br.readFewBits(1) != 0 {
			return newDecodeError(CodeCorruptedReservedBit)
		}

		sizeBytes := br.readFewBits(2)
		if sizeBytes == 0 {
			return nil
		}

		for i := 0; i < sizeBytes; i++ {
			br.fillBitWindow()
			bits := br.readFewBits(8)
			if bits == 0 && i+1 == sizeBytes && sizeBytes > 1 {
				return newDecodeError(CodeExuberantNibble)
			}

			h.length += bits << (i * 8)
		}
	} else {
		for i := 0; i < sizeNibbles; i++ {
			br.fillBitWindow()
			bits := br.readFewBits(4)
			if bits == 0 && i+1 == sizeNibbles && sizeNibbles > 4 {
				return newDecodeError(CodeExuberantNibble)
			}

			h.length += bits << (i * 4)
		}
	}

	h.length++

	if !h.isLast {
		h.isUncompressed = br.readFewBits(1) != 0
	}

	return nil
}

func (d *Decoder) readBlockLength(tableGroup []int32, tableIdx int) int {
	br := &d.br

	br.fillBitWindow()
	code := br.readSymbol(tableGroup, tableIdx)
	n := blockLengthNBits[code]

	br.fillBitWindow()
	if n <= 16 {
		return blockLengthOffset[code] + br.readFewBits(n)
	}

	return blockLengthOffset[code] + br.readManyBits(n)
}

func moveToFront(v []int, index int) {
	value := v[index]
	copy(v[1:index+1], v[:index])
	v[0] = value
}

func inverseMoveToFrontTransform(v []byte) {
	var mtf [256]int
	for i := range mtf {
		mtf[i] = i
	}

	for i, b := range v {
		index := int(b)
		v[i] = byte(mtf[index])
		if index != 0 {
			moveToFront(mtf[:], index)
		}
	}
}

// decodeContextMap fills contextMap and returns the number of trees it
// refers to.
func (d *Decoder) decodeContextMap(contextMap []byte) (int, error) {
	br := &d.br

	if err := br.ensureInput(); err != nil {
		return 0, err
	}

	numTrees := d.decodeVarLenUnsignedByte() + 1
	if numTrees == 1 {
		clear(contextMap)

		return numTrees, nil
	}

	br.fillBitWindow()
	maxRunLengthPrefix := 0
	if br.readFewBits(1) != 0 {
		maxRunLengthPrefix = br.readFewBits(4) + 1
	}

	alphabetSize := numTrees + maxRunLengthPrefix
	tableSize := maxHuffmanTableSize[(alphabetSize+31)>>5]
	table := make([]int32, tableSize+1)
	tableIdx := len(table) - 1

	if _, err := readHuffmanCode(br, alphabetSize, alphabetSize, table, tableIdx); err != nil {
		return 0, err
	}

	i := 0
	for i < len(contextMap) {
		if err := br.ensureInput(); err != nil {
			return 0, err
		}

		br.fillBitWindow()
		code := br.readSymbol(table, tableIdx)

		switch {
		case code == 0:
			contextMap[i] = 0
			i++
		case code <= maxRunLengthPrefix:
			br.fillBitWindow()
			reps := 1<<code + br.readFewBits(code)
			if i+reps > len(contextMap) {
				return 0, newDecodeError(CodeCorruptedContextMap)
			}

			clear(contextMap[i : i+reps])
			i += reps
		default:
			contextMap[i] = byte(code - maxRunLengthPrefix)
			i++
		}
	}

	br.fillBitWindow()
	if br.readFewBits(1) == 1 {
		inverseMoveToFrontTransform(contextMap)
	}

	return numTrees, nil
}

// decodeBlockTypeAndLength handles a block switch command of one category
// and returns the length of the new block.
func (d *Decoder) decodeBlockTypeAndLength(treeType int, c *blockCategory) int {
	br := &d.br

	br.fillBitWindow()
	symbol := br.readSymbol(d.mb.blockTrees, 2*treeType)
	length := d.readBlockLength(d.mb.blockTrees, 2*treeType+1)
	c.next(symbol)

	return length
}

func (d *Decoder) decodeLiteralBlockSwitch() {
	mb := &d.mb
	mb.literal.length = d.decodeBlockTypeAndLength(treeTypeLiteral, &mb.literal)

	blockType := mb.literal.current()
	mb.contextMapSlice = blockType << literalContextBits
	mb.literalTreeIdx = int(mb.contextMap[mb.contextMapSlice])
	mb.contextMode = mb.contextModes[blockType]
}

func (d *Decoder) decodeCommandBlockSwitch() {
	mb := &d.mb
	mb.command.length = d.decodeBlockTypeAndLength(treeTypeCommand, &mb.command)
	mb.commandTreeIdx = mb.command.current()
}

func (d *Decoder) decodeDistanceBlockSwitch() {
	mb := &d.mb
	mb.distance.length = d.decodeBlockTypeAndLength(treeTypeDistance, &mb.distance)
	mb.distContextMapSlice = mb.distance.current() << distanceContextBits
}

// readNextMetablockHeader reads the next header and picks the state that
// handles the metablock body.
func (d *Decoder) readNextMetablockHeader() error {
	if d.header.isLast {
		d.nextRunningState = stateFinished
		d.runningState = stateInitWrite

		return nil
	}

	d.mb.releaseTrees()

	if err := d.br.ensureInput(); err != nil {
		return err
	}

	if err := d.decodeMetaBlockLength(); err != nil {
		return err
	}

	d.logMetablockHeader()

	if d.header.length == 0 && !d.header.isMetadata {
		return nil
	}

	switch {
	case d.header.isUncompressed || d.header.isMetadata:
		if err := d.br.jumpToByteBoundary(); err != nil {
			return err
		}

		if d.header.isMetadata {
			d.runningState = stateReadMetadata
		} else {
			d.runningState = stateCopyUncompressed
		}
	default:
		d.runningState = stateCompressedBlockStart
	}

	if d.header.isMetadata {
		return nil
	}

	d.rb.addExpected(d.header.length)
	if d.rb.size < d.rb.maxSize {
		d.rb.grow(d.header.isLast)
	}

	return nil
}

// readMetablockPartition reads the block type and block length codes of one
// category and returns the length of the first block.
func (d *Decoder) readMetablockPartition(treeType, numBlockTypes int) (int, error) {
	blockTrees := d.mb.blockTrees
	offset := blockTrees[2*treeType]

	if numBlockTypes <= 1 {
		blockTrees[2*treeType+1] = offset
		blockTrees[2*treeType+2] = offset

		return singleBlockLength, nil
	}

	blockTypeAlphabetSize := numBlockTypes + 2
	size, err := readHuffmanCode(&d.br, blockTypeAlphabetSize, blockTypeAlphabetSize, blockTrees, 2*treeType)
	if err != nil {
		return 0, err
	}

	offset += int32(size)
	blockTrees[2*treeType+1] = offset

	size, err = readHuffmanCode(&d.br, blockLengthAlphabet, blockLengthAlphabet, blockTrees, 2*treeType+1)
	if err != nil {
		return 0, err
	}

	offset += int32(size)
	blockTrees[2*treeType+2] = offset

	return d.readBlockLength(blockTrees, 2*treeType+1), nil
}

// calculateDistanceLut fills the extra bit counts and base offsets of the
// distance symbols 16..alphabetSizeLimit-1.
func (mb *metablockCodes) calculateDistanceLut(alphabetSizeLimit int) {
	npostfix := mb.distancePostfixBits
	ndirect := mb.numDirectDistanceCodes
	postfix := 1 << npostfix

	bits := 1
	half := 0
	i := numDistanceShortCodes

	for j := 0; j < ndirect; j++ {
		mb.distExtraBits[i] = 0
		mb.distOffset[i] = j + 1
		i++
	}

	for i < alphabetSizeLimit {
		base := ndirect + ((2+half)<<bits-4)<<npostfix + 1
		for j := 0; j < postfix; j++ {
			mb.distExtraBits[i] = bits
			mb.distOffset[i] = base + j
			i++
		}

		bits += half
		half ^= 1
	}
}

func (d *Decoder) readMetablockHuffmanCodesAndContextMaps() error {
	var err error

	br := &d.br
	mb := &d.mb

	categories := []*blockCategory{&mb.literal, &mb.command, &mb.distance}
	for treeType, c := range categories {
		numTypes := d.decodeVarLenUnsignedByte() + 1

		length, err := d.readMetablockPartition(treeType, numTypes)
		if err != nil {
			return err
		}

		c.reset(numTypes, length)
	}

	if err = br.ensureInput(); err != nil {
		return err
	}

	br.fillBitWindow()
	mb.distancePostfixBits = br.readFewBits(2)
	mb.numDirectDistanceCodes = br.readFewBits(4) << mb.distancePostfixBits

	mb.contextModes = make([]int, mb.literal.numTypes)
	i := 0
	for i < mb.literal.numTypes {
		limit := min(i+contextModesPerRefill, mb.literal.numTypes)
		for ; i < limit; i++ {
			br.fillBitWindow()
			mb.contextModes[i] = br.readFewBits(2)
		}

		if err = br.ensureInput(); err != nil {
			return err
		}
	}

	mb.contextMap = make([]byte, mb.literal.numTypes<<literalContextBits)
	numLiteralTrees, err := d.decodeContextMap(mb.contextMap)
	if err != nil {
		return err
	}

	mb.trivialLiteralContext = true
	for j, tree := range mb.contextMap {
		if int(tree) != j>>literalContextBits {
			mb.trivialLiteralContext = false

			break
		}
	}

	mb.distContextMap = make([]byte, mb.distance.numTypes<<distanceContextBits)
	numDistTrees, err := d.decodeContextMap(mb.distContextMap)
	if err != nil {
		return err
	}

	mb.literalTrees = make([]int32, huffmanTreeGroupAllocSize(numLiteralSymbols, numLiteralTrees))
	err = decodeHuffmanTreeGroup(br, numLiteralSymbols, numLiteralSymbols, numLiteralTrees, mb.literalTrees)
	if err != nil {
		return err
	}

	mb.commandTrees = make([]int32, huffmanTreeGroupAllocSize(numCommandSymbols, mb.command.numTypes))
	err = decodeHuffmanTreeGroup(br, numCommandSymbols, numCommandSymbols, mb.command.numTypes, mb.commandTrees)
	if err != nil {
		return err
	}

	distanceAlphabetSizeMax := calculateDistanceAlphabetSize(mb.distancePostfixBits, mb.numDirectDistanceCodes, maxDistanceBits)
	distanceAlphabetSizeLimit := distanceAlphabetSizeMax

	if d.isLargeWindow {
		distanceAlphabetSizeMax = calculateDistanceAlphabetSize(mb.distancePostfixBits, mb.numDirectDistanceCodes, maxLargeDistanceBits)

		distanceAlphabetSizeLimit, err = calculateDistanceAlphabetLimit(maxAllowedDistance, mb.distancePostfixBits, mb.numDirectDistanceCodes)
		if err != nil {
			return err
		}
	}

	mb.distanceTrees = make([]int32, huffmanTreeGroupAllocSize(distanceAlphabetSizeLimit, numDistTrees))
	err = decodeHuffmanTreeGroup(br, distanceAlphabetSizeMax, distanceAlphabetSizeLimit, numDistTrees, mb.distanceTrees)
	if err != nil {
		return err
	}

	mb.calculateDistanceLut(distanceAlphabetSizeLimit)

	mb.contextMapSlice = 0
	mb.distContextMapSlice = 0
	mb.contextMode = mb.contextModes[0]
	mb.literalTreeIdx = 0
	mb.commandTreeIdx = 0

	d.logMetablockCodes(numLiteralTrees, numDistTrees)

	return nil
}

func (d *Decoder) debugEnabled() bool {
	return d.log.Logger.IsLevelEnabled(logrus.DebugLevel)
}

func (d *Decoder) logMetablockHeader() {
	d.metablockCount++

	if !d.debugEnabled() {
		return
	}

	d.log.WithFields(logrus.Fields{
		"metablock":    d.metablockCount,
		"length":       d.header.length,
		"last":         d.header.isLast,
		"uncompressed": d.header.isUncompressed,
		"metadata":     d.header.isMetadata,
		"window":       d.rb.maxSize,
	}).Debug("metablock header")
}

func (d *Decoder) logMetablockCodes(numLiteralTrees, numDistTrees int) {
	if !d.debugEnabled() {
		return
	}

	mb := &d.mb
	d.log.WithFields(logrus.Fields{
		"metablock":            d.metablockCount,
		"literal_block_types":  mb.literal.numTypes,
		"command_block_types":  mb.command.numTypes,
		"distance_block_types": mb.distance.numTypes,
		"literal_trees":        numLiteralTrees,
		"distance_trees":       numDistTrees,
		"npostfix":             mb.distancePostfixBits,
		"ndirect":              mb.numDirectDistanceCodes,
		"trivial_literal_ctx":  mb.trivialLiteralContext,
	}).Debug("metablock codes")
}
