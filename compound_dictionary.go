package brotli

const maxDictionaryChunks = 15

// compoundDictionary is the caller-supplied prefix placed just before the
// decoded output. Back-references that reach past the window and past the
// ring land here.
type compoundDictionary struct {
	chunks       [][]byte
	chunkOffsets []int
	totalSize    int

	// blockMap maps address>>blockBits to the first chunk that may hold it.
	blockMap  [256]uint8
	blockBits int
	mapped    bool

	// Pending copy.
	brIndex  int
	brOffset int
	brLength int
	brCopied int
}

func (cd *compoundDictionary) attach(data []byte) error {
	if len(cd.chunks) == maxDictionaryChunks {
		return newDecodeError(CodeTooManyDictionaryChunks)
	}

	if cd.chunkOffsets == nil {
		cd.chunkOffsets = make([]int, 1, maxDictionaryChunks+1)
	}

	cd.chunks = append(cd.chunks, data)
	cd.totalSize += len(data)
	cd.chunkOffsets = append(cd.chunkOffsets, cd.totalSize)

	return nil
}

func (cd *compoundDictionary) buildBlockMap() {
	blockBits := 8
	for (cd.totalSize-1)>>blockBits != 0 {
		blockBits++
	}

	blockBits -= 8
	cd.blockBits = blockBits

	cursor := 0
	index := 0
	for cursor < cd.totalSize {
		for cd.chunkOffsets[index+1] < cursor {
			index++
		}

		cd.blockMap[cursor>>blockBits] = uint8(index)
		cursor += 1 << blockBits
	}

	cd.mapped = true
}

// startCopy prepares a copy of length bytes starting at address.
func (cd *compoundDictionary) startCopy(address, length int) error {
	if address+length > cd.totalSize {
		return newDecodeError(CodeInvalidBackwardReference)
	}

	if !cd.mapped {
		cd.buildBlockMap()
	}

	index := int(cd.blockMap[address>>cd.blockBits])
	for address >= cd.chunkOffsets[index+1] {
		index++
	}

	cd.brIndex = index
	cd.brOffset = address - cd.chunkOffsets[index]
	cd.brLength = length
	cd.brCopied = 0

	return nil
}

// copyTo continues the pending copy into dst[pos:fence] and returns the
// number of bytes written.
func (cd *compoundDictionary) copyTo(dst []byte, pos, fence int) int {
	origPos := pos

	for cd.brLength != cd.brCopied {
		space := fence - pos
		remChunkLength := cd.chunkOffsets[cd.brIndex+1] - cd.chunkOffsets[cd.brIndex] - cd.brOffset
		length := min(cd.brLength-cd.brCopied, remChunkLength, space)

		copy(dst[pos:pos+length], cd.chunks[cd.brIndex][cd.brOffset:cd.brOffset+length])
		pos += length
		cd.brOffset += length
		cd.brCopied += length

		if length == remChunkLength {
			cd.brIndex++
			cd.brOffset = 0
		}

		if pos >= fence {
			break
		}
	}

	return pos - origPos
}
