package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/kulaginds/brotli/internal/config"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Println("ERROR: ", err)
		os.Exit(1)
	}

	logrus.SetOutput(os.Stderr)

	if cfg.CLI.Debug {
		logrus.Info("debug mode enabled")
		logrus.SetLevel(logrus.DebugLevel)
	}

	displayConfig(cfg)

	r := newRunner(afero.NewOsFs(), cfg, os.Stdin, os.Stdout, logrus.WithField("pkg", "brdecode"))

	if err := r.run(); err != nil {
		logrus.Errorf("error during decode: %s", err)
		os.Exit(1)
	}
}

func displayConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	logrus.Debug("brdecode settings:")
	logrus.Debug("  [CLI]")
	logrus.Debugf("  version: %s", config.VERSION)
	logrus.Debugf("  config file: %s", cfg.CLI.ConfigFile)
	logrus.Debugf("  files: %v", cfg.CLI.Files)
	logrus.Debugf("  stdout: %v", cfg.CLI.Stdout)
	logrus.Debug("")
	logrus.Debug("  [DECODE]")
	logrus.Debugf("  decode.large_window: %v", cfg.LargeWindow())
	logrus.Debugf("  decode.eager_output: %v", cfg.EagerOutput())
	logrus.Debugf("  decode.dictionary: %s", cfg.Dictionary())
	logrus.Debugf("  decode.chunk_size: %d", cfg.ChunkSize())
	logrus.Debug("")
	logrus.Debug("  [OUTPUT]")
	logrus.Debugf("  output.suffix: %s", cfg.Suffix())
	logrus.Debugf("  output.overwrite: %v", cfg.Overwrite())
}
