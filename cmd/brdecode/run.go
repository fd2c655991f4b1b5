package main

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/kulaginds/brotli"
	"github.com/kulaginds/brotli/internal/config"
)

type runner struct {
	fs     afero.Fs
	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
	log    *logrus.Entry
}

func newRunner(fs afero.Fs, cfg *config.Config, stdin io.Reader, stdout io.Writer, log *logrus.Entry) *runner {
	return &runner{
		fs:     fs,
		cfg:    cfg,
		stdin:  stdin,
		stdout: stdout,
		log:    log,
	}
}

func (r *runner) run() error {
	opts, err := r.decoderOptions()
	if err != nil {
		return err
	}

	for _, name := range r.cfg.CLI.Files {
		if err := r.decodeFile(name, opts); err != nil {
			return errors.Wrapf(err, "error decoding %s", name)
		}
	}

	return nil
}

func (r *runner) decoderOptions() ([]brotli.Option, error) {
	opts := []brotli.Option{brotli.WithLogger(r.log)}

	if r.cfg.LargeWindow() {
		opts = append(opts, brotli.WithLargeWindow())
	}

	if r.cfg.EagerOutput() {
		opts = append(opts, brotli.WithEagerOutput())
	}

	if path := r.cfg.Dictionary(); path != "" {
		data, err := afero.ReadFile(r.fs, path)
		if err != nil {
			return nil, errors.Wrap(err, "error reading dictionary")
		}

		opts = append(opts, brotli.WithCustomDictionary(data))
	}

	return opts, nil
}

func (r *runner) decodeFile(name string, opts []brotli.Option) error {
	llog := r.log.WithFields(logrus.Fields{
		"method": "decodeFile",
		"file":   name,
	})

	if name == config.StdioFile {
		n, err := r.copy(r.stdout, r.stdin, opts)
		if err != nil {
			return err
		}

		llog.Debugf("decoded %d bytes", n)

		return nil
	}

	in, err := r.fs.Open(name)
	if err != nil {
		return errors.Wrap(err, "error opening input")
	}
	defer in.Close()

	if r.cfg.CLI.Stdout {
		n, err := r.copy(r.stdout, in, opts)
		if err != nil {
			return err
		}

		llog.Debugf("decoded %d bytes", n)

		return nil
	}

	outName, err := r.outputName(name)
	if err != nil {
		return err
	}

	out, err := r.fs.OpenFile(outName, r.openFlags(), 0o644)
	if err != nil {
		return errors.Wrap(err, "error creating output")
	}

	n, err := r.copy(out, in, opts)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "error closing output")
	}

	if err != nil {
		_ = r.fs.Remove(outName)

		return err
	}

	llog.Debugf("decoded %d bytes to %s", n, outName)

	return nil
}

func (r *runner) copy(dst io.Writer, src io.Reader, opts []brotli.Option) (int64, error) {
	n, err := brotli.CopyBuffer(dst, src, make([]byte, r.cfg.ChunkSize()), opts...)
	if err != nil {
		return n, errors.Wrap(err, "error decompressing")
	}

	return n, nil
}

func (r *runner) outputName(name string) (string, error) {
	suffix := r.cfg.Suffix()
	if !strings.HasSuffix(name, suffix) || len(name) == len(suffix) {
		return "", errors.Errorf("%s does not end in %s", name, suffix)
	}

	return strings.TrimSuffix(name, suffix), nil
}

func (r *runner) openFlags() int {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !r.cfg.Overwrite() {
		flags |= os.O_EXCL
	}

	return flags
}
