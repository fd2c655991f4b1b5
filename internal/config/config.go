package config

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	EnvVarPrefix = "BRDECODE"

	DefaultSuffix    = ".br"
	DefaultChunkSize = 64 << 10

	MinChunkSize = 1
	MaxChunkSize = 16 << 20

	// StdioFile selects stdin as input and stdout as output.
	StdioFile = "-"
)

var (
	// VERSION gets set during build
	VERSION = "0.0.0"
)

type Config struct {
	CLI  *CLI
	TOML *TOML
}

type TOML struct {
	Decode *TOMLDecode `toml:"decode"`
	Output *TOMLOutput `toml:"output"`
}

type TOMLDecode struct {
	LargeWindow bool   `toml:"large_window"`
	EagerOutput bool   `toml:"eager_output"`
	Dictionary  string `toml:"dictionary"`
	ChunkSize   int    `toml:"chunk_size"`
}

type TOMLOutput struct {
	Suffix    string `toml:"suffix"`
	Overwrite bool   `toml:"overwrite"`
}

type CLI struct {
	Files []string `kong:"arg,optional,help='Files to decompress (- for stdin)'"`

	ConfigFile  string `kong:"help='Path to an optional TOML config file',short='C'"`
	Stdout      bool   `kong:"help='Write decompressed data to stdout',short='c'"`
	LargeWindow bool   `kong:"help='Accept large window streams',short='w'"`
	Dictionary  string `kong:"help='Compound dictionary file',short='D'"`
	ChunkSize   int    `kong:"help='Output buffer size in bytes',short='s'"`
	Force       bool   `kong:"help='Overwrite existing output files',short='f'"`

	Debug   bool             `kong:"help='Enable debug output',short='d'"`
	Version kong.VersionFlag `help:"Show version and exit" short:"v" env:"-"`
}

// NewConfig parses os.Args, the optional .env file and the optional TOML
// file on the OS filesystem.
func NewConfig() (*Config, error) {
	// Attempt to load .env
	_ = godotenv.Load(".env")

	return NewConfigFromArgs(afero.NewOsFs(), os.Args[1:], kong.UsageOnError())
}

// NewConfigFromArgs is NewConfig for explicit arguments and filesystem.
func NewConfigFromArgs(fs afero.Fs, args []string, options ...kong.Option) (*Config, error) {
	cli, err := readCLIArgs(args, options...)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing CLI args")
	}

	tomlConfig := &TOML{}

	if cli.ConfigFile != "" {
		tomlConfig, err = readTOML(fs, cli.ConfigFile)
		if err != nil {
			return nil, errors.Wrap(err, "error reading config file")
		}
	}

	if err := setTOMLDefaults(tomlConfig); err != nil {
		return nil, errors.Wrap(err, "error setting TOML defaults")
	}

	cfg := &Config{
		CLI:  cli,
		TOML: tomlConfig,
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LargeWindow reports whether large window streams are accepted.
func (c *Config) LargeWindow() bool {
	return c.CLI.LargeWindow || c.TOML.Decode.LargeWindow
}

func (c *Config) EagerOutput() bool {
	return c.TOML.Decode.EagerOutput
}

// Dictionary returns the compound dictionary path; the flag wins over the
// file.
func (c *Config) Dictionary() string {
	if c.CLI.Dictionary != "" {
		return c.CLI.Dictionary
	}

	return c.TOML.Decode.Dictionary
}

func (c *Config) ChunkSize() int {
	if c.CLI.ChunkSize != 0 {
		return c.CLI.ChunkSize
	}

	return c.TOML.Decode.ChunkSize
}

func (c *Config) Overwrite() bool {
	return c.CLI.Force || c.TOML.Output.Overwrite
}

func (c *Config) Suffix() string {
	return c.TOML.Output.Suffix
}

func setTOMLDefaults(t *TOML) error {
	if t == nil {
		return errors.New("toml config cannot be nil")
	}

	if t.Decode == nil {
		t.Decode = &TOMLDecode{}
	}

	if t.Output == nil {
		t.Output = &TOMLOutput{}
	}

	if t.Decode.ChunkSize == 0 {
		t.Decode.ChunkSize = DefaultChunkSize
	}

	if t.Output.Suffix == "" {
		t.Output.Suffix = DefaultSuffix
	}

	return nil
}

func Validate(c *Config) error {
	if err := validateCLIArgs(c.CLI); err != nil {
		return errors.Wrap(err, "error validating CLI args")
	}

	if err := validateTOML(c.TOML); err != nil {
		return errors.Wrap(err, "error validating toml config")
	}

	return nil
}

func validateTOML(t *TOML) error {
	if t == nil {
		return errors.New("toml config cannot be nil")
	}

	// Validate [decode]
	if err := validateTOMLDecode(t.Decode); err != nil {
		return errors.Wrap(err, "decode error(s)")
	}

	// Validate [output]
	if err := validateTOMLOutput(t.Output); err != nil {
		return errors.Wrap(err, "output error(s)")
	}

	return nil
}

func validateTOMLDecode(d *TOMLDecode) error {
	if d == nil {
		return errors.New("decode cannot be empty")
	}

	if d.ChunkSize < MinChunkSize || d.ChunkSize > MaxChunkSize {
		return errors.Errorf("decode.chunk_size must be between %d and %d", MinChunkSize, MaxChunkSize)
	}

	return nil
}

func validateTOMLOutput(o *TOMLOutput) error {
	if o == nil {
		return errors.New("output cannot be empty")
	}

	if o.Suffix == "" {
		return errors.New("output.suffix cannot be empty")
	}

	return nil
}

func readCLIArgs(args []string, options ...kong.Option) (*CLI, error) {
	cli := &CLI{}

	options = append([]kong.Option{
		kong.Name("brdecode"),
		kong.Description("Brotli stream decompressor"),
		kong.DefaultEnvars(EnvVarPrefix),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"version": VERSION,
		},
	}, options...)

	parser, err := kong.New(cli, options...)
	if err != nil {
		return nil, errors.Wrap(err, "error creating parser")
	}

	if _, err := parser.Parse(args); err != nil {
		return nil, errors.Wrap(err, "error parsing args")
	}

	if err := validateCLIArgs(cli); err != nil {
		return nil, errors.Wrap(err, "error validating args")
	}

	return cli, nil
}

func readTOML(fs afero.Fs, file string) (*TOML, error) {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return nil, errors.Wrap(err, "error reading file")
	}

	tomlConfig := &TOML{}

	if err := toml.Unmarshal(data, tomlConfig); err != nil {
		return nil, errors.Wrap(err, "error parsing TOML config")
	}

	return tomlConfig, nil
}

func validateCLIArgs(cli *CLI) error {
	if cli == nil {
		return errors.New("config cannot be nil")
	}

	if len(cli.Files) == 0 {
		return errors.New("at least one file (or -) is required")
	}

	if cli.ChunkSize != 0 && (cli.ChunkSize < MinChunkSize || cli.ChunkSize > MaxChunkSize) {
		return errors.Errorf("chunk size must be between %d and %d", MinChunkSize, MaxChunkSize)
	}

	return nil
}
