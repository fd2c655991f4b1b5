package brotli

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Option configures a decode session.
type Option func(*options)

type options struct {
	dictionary  *Dictionary
	chunks      [][]byte
	largeWindow bool
	eagerOutput bool
	logger      *logrus.Entry
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.dictionary == nil {
		o.dictionary = StaticDictionary()
	}

	if o.logger == nil {
		o.logger = discardLogger()
	}

	return o
}

// WithDictionary replaces the built-in static dictionary.
func WithDictionary(d *Dictionary) Option {
	return func(o *options) {
		o.dictionary = d
	}
}

// WithCustomDictionary attaches data as a compound dictionary chunk. It may
// be given more than once; chunks are attached in order.
func WithCustomDictionary(data []byte) Option {
	return func(o *options) {
		o.chunks = append(o.chunks, data)
	}
}

// WithLargeWindow allows streams with window sizes above 16 MiB.
func WithLargeWindow() Option {
	return func(o *options) {
		o.largeWindow = true
	}
}

// WithEagerOutput hands decoded bytes out as soon as possible.
func WithEagerOutput() Option {
	return func(o *options) {
		o.eagerOutput = true
	}
}

// WithLogger sets the logger used for debug records about stream structure.
func WithLogger(l *logrus.Entry) Option {
	return func(o *options) {
		o.logger = l
	}
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return logrus.NewEntry(l)
}
