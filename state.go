package brotli

type runningState int

const (
	stateUninitialized runningState = iota
	stateInitialized
	stateBlockStart
	stateCompressedBlockStart
	stateMainLoop
	stateReadMetadata
	stateCopyUncompressed
	stateInsertLoop
	stateCopyLoop
	stateUseDictionary
	stateFinished
	stateClosed
	stateInitWrite
	stateWrite
	stateCopyFromCompoundDictionary
)

var runningStateNames = [...]string{
	stateUninitialized:              "uninitialized",
	stateInitialized:                "initialized",
	stateBlockStart:                 "block start",
	stateCompressedBlockStart:       "compressed block start",
	stateMainLoop:                   "main loop",
	stateReadMetadata:               "read metadata",
	stateCopyUncompressed:           "copy uncompressed",
	stateInsertLoop:                 "insert loop",
	stateCopyLoop:                   "copy loop",
	stateUseDictionary:              "use dictionary",
	stateFinished:                   "finished",
	stateClosed:                     "closed",
	stateInitWrite:                  "init write",
	stateWrite:                      "write",
	stateCopyFromCompoundDictionary: "copy from compound dictionary",
}

func (s runningState) String() string {
	if s >= 0 && int(s) < len(runningStateNames) {
		return runningStateNames[s]
	}

	return "unknown"
}

const (
	treeTypeLiteral = iota
	treeTypeCommand
	treeTypeDistance
)

// blockCategory tracks the block switching of one of the three symbol
// categories. ring holds the previous and the current block type.
type blockCategory struct {
	numTypes int
	length   int
	ring     [2]int
}

func (c *blockCategory) reset(numTypes, length int) {
	c.numTypes = numTypes
	c.length = length
	c.ring = [2]int{1, 0}
}

func (c *blockCategory) current() int {
	return c.ring[1]
}

// next resolves a block type symbol against the ring and makes the result
// the current type.
func (c *blockCategory) next(symbol int) int {
	var blockType int

	switch symbol {
	case 0:
		blockType = c.ring[0]
	case 1:
		blockType = c.ring[1] + 1
	default:
		blockType = symbol - 2
	}

	if blockType >= c.numTypes {
		blockType -= c.numTypes
	}

	c.ring[0] = c.ring[1]
	c.ring[1] = blockType

	return blockType
}

// distanceHistory is the ring of the last four distances. It survives
// metablock boundaries.
type distanceHistory struct {
	ring [4]int
	idx  int
}

func newDistanceHistory() distanceHistory {
	return distanceHistory{
		ring: [4]int{16, 15, 11, 4},
		idx:  3,
	}
}

func (h *distanceHistory) last() int {
	return h.ring[h.idx]
}

// shortCode resolves distance codes 0..15. The result may be negative.
func (h *distanceHistory) shortCode(code int) int {
	index := (h.idx + distanceShortCodeIndexOffset[code]) & 3

	return h.ring[index] + distanceShortCodeValueOffset[code]
}

func (h *distanceHistory) push(distance int) {
	h.idx = (h.idx + 1) & 3
	h.ring[h.idx] = distance
}

// metablockHeader holds the fields of the current metablock header.
type metablockHeader struct {
	length         int
	isLast         bool
	isUncompressed bool
	isMetadata     bool
}

// metablockCodes holds the prefix codes and context maps of the current
// compressed metablock.
type metablockCodes struct {
	blockTrees []int32

	literal  blockCategory
	command  blockCategory
	distance blockCategory

	contextModes   []int
	contextMap     []byte
	distContextMap []byte

	literalTrees  []int32
	commandTrees  []int32
	distanceTrees []int32

	distExtraBits []int
	distOffset    []int

	distancePostfixBits    int
	numDirectDistanceCodes int

	trivialLiteralContext bool

	contextMapSlice     int
	distContextMapSlice int
	contextMode         int

	literalTreeIdx int
	commandTreeIdx int
}

const blockTreesSize = 3091

func newMetablockCodes(maxDistanceAlphabetLimit int) metablockCodes {
	c := metablockCodes{
		blockTrees:    make([]int32, blockTreesSize),
		distExtraBits: make([]int, maxDistanceAlphabetLimit),
		distOffset:    make([]int, maxDistanceAlphabetLimit),
	}

	// Offset slots 0..6 precede the tables of the six block type and block
	// length codes.
	c.blockTrees[0] = 7

	return c
}

func (c *metablockCodes) releaseTrees() {
	c.literalTrees = nil
	c.commandTrees = nil
	c.distanceTrees = nil
}
