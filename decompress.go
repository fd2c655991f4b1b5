package brotli

// decompress runs the state machine until the stream ends or d.output is
// full. Every suspension point records the state to resume in
// nextRunningState.
func (d *Decoder) decompress() (Result, error) {
	if d.err != nil {
		return 0, d.err
	}

	switch d.runningState {
	case stateUninitialized:
		return 0, newDecodeError(CodeStateNotInitialized)
	case stateClosed:
		return 0, newDecodeError(CodeAlreadyClosed)
	case stateInitialized:
		windowBits, err := d.decodeWindowBits()
		if err != nil {
			return 0, err
		}

		d.rb.maxSize = 1 << windowBits
		d.maxBackwardDistance = d.rb.maxSize - 16
		d.runningState = stateBlockStart
	}

	br := &d.br
	rb := &d.rb
	fence := d.calculateFence()

	for d.runningState != stateFinished {
		switch d.runningState {
		case stateBlockStart:
			if d.header.length < 0 {
				return 0, newDecodeError(CodeInvalidMetablockLength)
			}

			if err := d.readNextMetablockHeader(); err != nil {
				return 0, err
			}

			fence = d.calculateFence()

		case stateCompressedBlockStart:
			if err := d.readMetablockHuffmanCodesAndContextMaps(); err != nil {
				return 0, err
			}

			d.runningState = stateMainLoop

		case stateMainLoop:
			if d.header.length <= 0 {
				d.runningState = stateBlockStart

				continue
			}

			if err := br.ensureInput(); err != nil {
				return 0, err
			}

			d.readCommand()
			d.runningState = stateInsertLoop

		case stateInsertLoop:
			if err := d.insertLiterals(fence); err != nil {
				return 0, err
			}

			if d.runningState != stateInsertLoop {
				continue
			}

			d.header.length -= d.insertLength
			if d.header.length <= 0 {
				d.runningState = stateMainLoop

				continue
			}

			if err := d.readDistance(); err != nil {
				return 0, err
			}

			if d.maxDistance != d.maxBackwardDistance && rb.pos < d.maxBackwardDistance {
				d.maxDistance = rb.pos
			} else {
				d.maxDistance = d.maxBackwardDistance
			}

			if d.distance > d.maxDistance {
				d.runningState = stateUseDictionary

				continue
			}

			if d.distanceCode > 0 {
				d.dist.push(d.distance)
			}

			if d.copyLength > d.header.length {
				return 0, newDecodeError(CodeInvalidBackwardReference)
			}

			d.j = 0
			d.runningState = stateCopyLoop

		case stateCopyLoop:
			d.copyMatch(fence)

		case stateUseDictionary:
			if err := d.useDictionary(fence); err != nil {
				return 0, err
			}

		case stateCopyFromCompoundDictionary:
			rb.pos += d.cd.copyTo(rb.buf, rb.pos, fence)
			if rb.pos >= fence {
				d.nextRunningState = stateCopyFromCompoundDictionary
				d.runningState = stateInitWrite

				continue
			}

			d.runningState = stateMainLoop

		case stateReadMetadata:
			for d.header.length > 0 {
				if err := br.ensureInput(); err != nil {
					return 0, err
				}

				br.fillBitWindow()
				br.readFewBits(8)
				d.header.length--
			}

			d.runningState = stateBlockStart

		case stateCopyUncompressed:
			if err := d.copyUncompressedData(); err != nil {
				return 0, err
			}

		case stateInitWrite:
			rb.markReady()
			d.runningState = stateWrite

		case stateWrite:
			if rb.flush(d.output, &d.outputUsed) {
				return ResultNeedsMoreOutput, nil
			}

			if rb.pos >= d.maxBackwardDistance {
				d.maxDistance = d.maxBackwardDistance
			}

			rb.wrap()
			fence = d.calculateFence()
			d.runningState = d.nextRunningState

		default:
			return 0, newDecodeError(CodeUnexpectedState)
		}
	}

	if d.header.length < 0 {
		return 0, newDecodeError(CodeInvalidMetablockLength)
	}

	if err := br.jumpToByteBoundary(); err != nil {
		return 0, err
	}

	if err := br.checkHealth(true); err != nil {
		return 0, err
	}

	return ResultDone, nil
}

func (d *Decoder) calculateFence() int {
	fence := d.rb.size
	if d.isEager {
		fence = min(fence, d.rb.bytesWritten+len(d.output)-d.outputUsed)
	}

	return fence
}

// readCommand decodes one insert-and-copy command.
func (d *Decoder) readCommand() {
	br := &d.br
	mb := &d.mb

	if mb.command.length == 0 {
		d.decodeCommandBlockSwitch()
	}

	mb.command.length--

	br.fillBitWindow()
	cmd := &commandLookup[br.readSymbol(mb.commandTrees, mb.commandTreeIdx)]
	d.distanceCode = cmd.distanceContext

	br.fillBitWindow()
	if cmd.insertExtraBits <= 16 {
		d.insertLength = cmd.insertOffset + br.readFewBits(cmd.insertExtraBits)
	} else {
		d.insertLength = cmd.insertOffset + br.readManyBits(cmd.insertExtraBits)
	}

	br.fillBitWindow()
	if cmd.copyExtraBits <= 16 {
		d.copyLength = cmd.copyOffset + br.readFewBits(cmd.copyExtraBits)
	} else {
		d.copyLength = cmd.copyOffset + br.readManyBits(cmd.copyExtraBits)
	}

	d.j = 0
}

// insertLiterals decodes the remaining literals of the current command. It
// switches to stateInitWrite when the fence is reached.
func (d *Decoder) insertLiterals(fence int) error {
	br := &d.br
	mb := &d.mb
	rb := &d.rb

	mask := rb.mask()
	prev1 := rb.buf[(rb.pos-1)&mask]
	prev2 := rb.buf[(rb.pos-2)&mask]

	for d.j < d.insertLength {
		if err := br.ensureInput(); err != nil {
			return err
		}

		if mb.literal.length == 0 {
			d.decodeLiteralBlockSwitch()
		}

		treeIdx := mb.literalTreeIdx
		if !mb.trivialLiteralContext {
			ctx := literalContext(mb.contextMode, prev1, prev2)
			treeIdx = int(mb.contextMap[mb.contextMapSlice+ctx])
		}

		mb.literal.length--

		br.fillBitWindow()
		prev2 = prev1
		prev1 = byte(br.readSymbol(mb.literalTrees, treeIdx))
		rb.buf[rb.pos] = prev1
		rb.pos++
		d.j++

		if rb.pos >= fence {
			d.nextRunningState = stateInsertLoop
			d.runningState = stateInitWrite

			break
		}
	}

	return nil
}

// readDistance resolves the distance of the current command.
func (d *Decoder) readDistance() error {
	br := &d.br
	mb := &d.mb

	if d.distanceCode < 0 {
		d.distance = d.dist.last()

		return nil
	}

	if err := br.ensureInput(); err != nil {
		return err
	}

	if mb.distance.length == 0 {
		d.decodeDistanceBlockSwitch()
	}

	mb.distance.length--

	br.fillBitWindow()
	treeIdx := int(mb.distContextMap[mb.distContextMapSlice+d.distanceCode])
	d.distanceCode = br.readSymbol(mb.distanceTrees, treeIdx)

	if d.distanceCode < numDistanceShortCodes {
		d.distance = d.dist.shortCode(d.distanceCode)
		if d.distance < 0 {
			return newDecodeError(CodeNegativeDistance)
		}

		return nil
	}

	extraBits := mb.distExtraBits[d.distanceCode]

	var bits int
	if br.bitOffset+extraBits <= 32 {
		bits = br.readFewBits(extraBits)
	} else {
		br.fillBitWindow()
		if extraBits <= 16 {
			bits = br.readFewBits(extraBits)
		} else {
			bits = br.readManyBits(extraBits)
		}
	}

	d.distance = mb.distOffset[d.distanceCode] + bits<<mb.distancePostfixBits

	return nil
}

// copyMatch copies the rest of the current back-reference.
func (d *Decoder) copyMatch(fence int) {
	rb := &d.rb
	mask := rb.mask()

	n := d.copyLength - d.j
	src := (rb.pos - d.distance) & mask

	if src+n < mask && rb.pos+n < mask {
		rb.copyBackReference(d.distance, n)
		d.j += n
		d.header.length -= n
		d.runningState = stateMainLoop

		return
	}

	for d.j < d.copyLength {
		rb.buf[rb.pos] = rb.buf[(rb.pos-d.distance)&mask]
		d.header.length--
		rb.pos++
		d.j++

		if rb.pos >= fence {
			d.nextRunningState = stateCopyLoop
			d.runningState = stateInitWrite

			return
		}
	}

	d.runningState = stateMainLoop
}

// useDictionary handles a distance beyond the window: a compound dictionary
// reference or a transformed static dictionary word.
func (d *Decoder) useDictionary(fence int) error {
	if d.distance > maxAllowedDistance {
		return newDecodeError(CodeInvalidBackwardReference)
	}

	rb := &d.rb
	address := d.distance - d.maxDistance - 1 - d.cd.totalSize

	if address < 0 {
		if err := d.cd.startCopy(-address-1, d.copyLength); err != nil {
			return err
		}

		d.dist.push(d.distance)
		d.header.length -= d.copyLength
		d.runningState = stateCopyFromCompoundDictionary

		return nil
	}

	wordLength := d.copyLength
	if wordLength > maxDictionaryWordLength {
		return newDecodeError(CodeInvalidBackwardReference)
	}

	shift := d.dict.sizeBits[wordLength]
	if shift == 0 {
		return newDecodeError(CodeInvalidBackwardReference)
	}

	wordIdx := address & (1<<shift - 1)
	transformIdx := address >> shift
	if transformIdx >= len(d.transforms) {
		return newDecodeError(CodeInvalidBackwardReference)
	}

	word := d.dict.Word(wordLength, wordIdx)
	n := transformDictionaryWord(rb.buf[rb.pos:], word, d.transforms, transformIdx)
	rb.pos += n
	d.header.length -= n

	if rb.pos >= fence {
		d.nextRunningState = stateMainLoop
		d.runningState = stateInitWrite

		return nil
	}

	d.runningState = stateMainLoop

	return nil
}

// copyUncompressedData moves the body of an uncompressed metablock into the
// ring buffer.
func (d *Decoder) copyUncompressedData() error {
	rb := &d.rb

	if d.header.length <= 0 {
		if err := d.br.reload(); err != nil {
			return err
		}

		d.runningState = stateBlockStart

		return nil
	}

	chunkLength := min(rb.size-rb.pos, d.header.length)
	if err := d.br.copyRawBytes(rb.buf, rb.pos, chunkLength); err != nil {
		return err
	}

	d.header.length -= chunkLength
	rb.pos += chunkLength

	if rb.pos == rb.size {
		d.nextRunningState = stateCopyUncompressed
		d.runningState = stateInitWrite

		return nil
	}

	if err := d.br.reload(); err != nil {
		return err
	}

	d.runningState = stateBlockStart

	return nil
}
