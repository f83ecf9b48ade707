// Package config loads tyr CLI configuration.
//
// Values are layered, later sources winning: built-in defaults, an
// optional YAML file (--config, or tyr.yaml / tyr.yml in the working
// directory), TYR_* environment variables and explicitly set flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Defaults.
const (
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultInferRows   = 16
	DefaultMaxSource   = "0"
	EnvPrefix          = "TYR_"
)

// ErrInvalid is returned for configuration values that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all CLI configuration options.
type Config struct {
	LogLevel    string        `koanf:"log_level"`
	LogFormat   string        `koanf:"log_format"`
	Workers     int           `koanf:"workers"`
	HTTPTimeout time.Duration `koanf:"http_timeout"`
	InferRows   int           `koanf:"infer_rows"`
	Delimiter   string        `koanf:"delimiter"`
	// MaxSourceBytes is a human-readable size such as "64MB"; "0" means
	// no limit.
	MaxSourceBytes string `koanf:"max_source_bytes"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// findConfigFile returns explicit, or the first default config file present.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"tyr.yaml", "tyr.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration from defaults, cfgFile, the environment and
// flags. Only flags that were set on the command line override other
// sources; flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"log_level":        DefaultLogLevel,
		"log_format":       DefaultLogFormat,
		"workers":          0,
		"http_timeout":     DefaultHTTPTimeout,
		"infer_rows":       DefaultInferRows,
		"delimiter":        "",
		"max_source_bytes": DefaultMaxSource,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// TYR_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every option.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q (want debug, info, warn or error)", ErrInvalid, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q (want text or json)", ErrInvalid, c.LogFormat)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalid, c.Workers)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("%w: http_timeout must be non-negative, got %s", ErrInvalid, c.HTTPTimeout)
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	if _, err := c.SourceLimit(); err != nil {
		return err
	}
	return nil
}

// DelimiterRune returns the configured CSV delimiter, or zero to sniff it.
// "tab" and "\t" both mean a tab character.
func (c *Config) DelimiterRune() (rune, error) {
	switch c.Delimiter {
	case "":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	r := []rune(c.Delimiter)
	if len(r) != 1 || r[0] == '"' || r[0] == '\n' || r[0] == '\r' {
		return 0, fmt.Errorf("%w: delimiter %q must be a single character", ErrInvalid, c.Delimiter)
	}
	return r[0], nil
}

// SourceLimit returns MaxSourceBytes in bytes. Zero means unlimited.
func (c *Config) SourceLimit() (int64, error) {
	if c.MaxSourceBytes == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.MaxSourceBytes)
	if err != nil {
		return 0, fmt.Errorf("%w: max_source_bytes: %w", ErrInvalid, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("%w: max_source_bytes %s is too large", ErrInvalid, c.MaxSourceBytes)
	}
	return int64(n), nil
}
