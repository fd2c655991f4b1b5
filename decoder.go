package brotli

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"
)

// Result tells the caller why Decompress returned.
type Result int

const (
	// ResultDone means the stream ended and every byte was delivered.
	ResultDone Result = 1
	// ResultNeedsMoreOutput means out was filled; call Decompress again
	// with fresh space.
	ResultNeedsMoreOutput Result = 2
)

func (r Result) String() string {
	switch r {
	case ResultDone:
		return "done"
	case ResultNeedsMoreOutput:
		return "needs more output"
	}

	return "unknown"
}

// Decoder is a single Brotli decode session. It pulls compressed bytes from
// its source and writes decoded bytes into the buffers handed to
// Decompress. A Decoder is not safe for concurrent use.
type Decoder struct {
	br   bitReader
	rb   ringBuffer
	mb   metablockCodes
	dist distanceHistory
	cd   compoundDictionary

	dict       *Dictionary
	transforms []transform

	log *logrus.Entry

	runningState     runningState
	nextRunningState runningState
	err              error

	header metablockHeader

	isLargeWindow bool
	isEager       bool

	maxDistance         int
	maxBackwardDistance int

	// Command being executed.
	j            int
	insertLength int
	copyLength   int
	distance     int
	distanceCode int

	output     []byte
	outputUsed int

	metablockCount int
}

// NewDecoder starts a session over src. The first compressed bytes are read
// immediately.
func NewDecoder(src io.Reader, opts ...Option) (*Decoder, error) {
	o := newOptions(opts)

	maxDistanceAlphabetLimit, err := calculateDistanceAlphabetLimit(maxAllowedDistance, 3, 120)
	if err != nil {
		return nil, err
	}

	d := &Decoder{
		mb:         newMetablockCodes(maxDistanceAlphabetLimit),
		dist:       newDistanceHistory(),
		dict:       o.dictionary,
		transforms: rfcTransforms,
		log:        o.logger,
	}

	if err = d.br.init(src); err != nil {
		return nil, err
	}

	d.runningState = stateInitialized

	if o.largeWindow {
		if err = d.EnableLargeWindow(); err != nil {
			return nil, err
		}
	}

	if o.eagerOutput {
		if err = d.EnableEagerOutput(); err != nil {
			return nil, err
		}
	}

	for _, chunk := range o.chunks {
		if err = d.AttachDictionaryChunk(chunk); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// fail latches err; every later call reports it again.
func (d *Decoder) fail(err error) error {
	if d.err == nil {
		d.err = err
	}

	return d.err
}

func (d *Decoder) checkFresh() error {
	if d.err != nil {
		return d.err
	}

	if d.runningState != stateInitialized {
		return d.fail(newDecodeError(CodeStateNotFresh))
	}

	return nil
}

// EnableLargeWindow accepts window sizes up to 1 GiB. It must be called
// before the first Decompress.
func (d *Decoder) EnableLargeWindow() error {
	if err := d.checkFresh(); err != nil {
		return err
	}

	d.isLargeWindow = true

	return nil
}

// EnableEagerOutput makes Decompress return output as soon as the caller's
// buffer can take it instead of once per ring buffer turn. It must be
// called before the first Decompress.
func (d *Decoder) EnableEagerOutput() error {
	if err := d.checkFresh(); err != nil {
		return err
	}

	d.isEager = true

	return nil
}

// AttachDictionaryChunk appends data to the compound dictionary. Up to 15
// chunks may be attached before the first Decompress. data must not be
// modified while the session is in use.
func (d *Decoder) AttachDictionaryChunk(data []byte) error {
	if err := d.checkFresh(); err != nil {
		return err
	}

	if err := d.cd.attach(data); err != nil {
		return d.fail(err)
	}

	return nil
}

// Decompress decodes into out and returns the number of bytes written.
// ResultNeedsMoreOutput means out is full and decoding can resume with
// another call. An empty out is always full: such calls report
// ResultNeedsMoreOutput without delivering anything.
func (d *Decoder) Decompress(out []byte) (int, Result, error) {
	d.output = out
	d.outputUsed = 0

	res, err := d.decompress()
	n := d.outputUsed
	d.output = nil

	if err != nil {
		return n, 0, d.fail(d.classify(err))
	}

	return n, res, nil
}

// classify reports corruption found in the zero padding past the end of a
// short input as truncation.
func (d *Decoder) classify(err error) error {
	if !errors.Is(err, ErrCorrupted) {
		return err
	}

	if herr := d.br.checkHealth(false); herr != nil {
		return herr
	}

	return err
}

// Close ends the session. Closing a failed session is not an error.
func (d *Decoder) Close() error {
	if d.runningState == stateUninitialized {
		return newDecodeError(CodeStateNotInitialized)
	}

	if d.runningState == stateClosed {
		return newDecodeError(CodeAlreadyClosed)
	}

	d.runningState = stateClosed
	d.mb.releaseTrees()
	d.rb.buf = nil

	return nil
}
