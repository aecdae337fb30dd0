// Package cli wires the lazypipe command: configuration, logging and the pipelines it runs.
package cli

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by LoadConfig, LAZYPIPE_LOG_LEVEL
// sets log.level for instance.
const EnvPrefix = "LAZYPIPE"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrNoInput       = errors.Wrap(ErrInvalidConfig, "at least one file must be given")
)

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the configuration of the lazypipe command.
type Config struct {
	Log     LogConfig `mapstructure:"log"`
	Workdir string    `mapstructure:"workdir"`
	Output  string    `mapstructure:"output"`
	Graph   string    `mapstructure:"graph"`
	Files   []string  `mapstructure:"-"`
	Jobs    int       `mapstructure:"jobs"`
	Measure bool      `mapstructure:"measure"`
	Number  bool      `mapstructure:"number"`
	WithLen bool      `mapstructure:"with_len"`
	Count   bool      `mapstructure:"count"`
	Append  bool      `mapstructure:"append"`
}

// ApplyDefaults fills the unset values.
func (c *Config) ApplyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Workdir == "" {
		c.Workdir = "."
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "log.level %q", c.Log.Level)
	}
	validFormats := []string{"console", "json"}
	if !slices.Contains(validFormats, c.Log.Format) {
		return errors.Wrapf(ErrInvalidConfig, "log.format must be one of %v (got: %s)", validFormats, c.Log.Format)
	}
	if c.Jobs < 0 {
		return errors.Wrapf(ErrInvalidConfig, "jobs must not be negative (got: %d)", c.Jobs)
	}
	if c.Count && c.Graph != "" {
		return errors.Wrap(ErrInvalidConfig, "graph cannot be drawn in count mode, every file has its own pipeline")
	}
	if c.Count && c.Output != "" {
		return errors.Wrap(ErrInvalidConfig, "output cannot be set in count mode")
	}
	if len(c.Files) == 0 {
		return ErrNoInput
	}

	return nil
}

// flag name -> configuration key
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"workdir":    "workdir",
	"output":     "output",
	"graph":      "graph",
	"jobs":       "jobs",
	"measure":    "measure",
	"number":     "number",
	"with-len":   "with_len",
	"count":      "count",
	"append":     "append",
}

// NewFlagSet declares the command line flags.
func NewFlagSet(name string, errorHandling pflag.ErrorHandling) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, errorHandling)
	flags.StringP("config", "c", "", "Path to a YAML config file.")
	flags.String("log-level", "info", "Log level (trace, debug, info, warn, error).")
	flags.String("log-format", "console", "Log format (console or json).")
	flags.StringP("workdir", "C", ".", "Directory relative paths are resolved against.")
	flags.StringP("output", "o", "", "Write the lines to this file instead of stdout.")
	flags.String("graph", "", "Write the stage graph of the pipeline to this DOT file, not in count mode.")
	flags.IntP("jobs", "j", 0, "Maximum number of files counted concurrently, 0 for no limit.")
	flags.Bool("measure", false, "Log how many elements went through every stage.")
	flags.BoolP("number", "n", false, "Number the output lines.")
	flags.Bool("with-len", false, "Count the lines before reading them and log the total.")
	flags.BoolP("count", "l", false, "Count the lines of every file instead of printing them.")
	flags.BoolP("append", "a", false, "Append to the output file instead of truncating it.")

	return flags
}

// LoadConfig builds the configuration from, by increasing priority, the config file,
// the LAZYPIPE_ environment variables and the flags set on the command line.
// The positional arguments are the files to read.
func LoadConfig(fs afero.Fs, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetFs(fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		err := v.BindPFlag(key, flag)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to bind flag %s", name)
		}
	}

	if configFile, err := flags.GetString("config"); err == nil && configFile != "" {
		v.SetConfigFile(configFile)
		err = v.ReadInConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read config file %s", configFile)
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "unable to unmarshal config")
	}
	cfg.Files = flags.Args()
	cfg.ApplyDefaults()

	return cfg, nil
}
