package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/jsonsh/internal/flatten"
	"github.com/jacoelho/jsonsh/internal/input"
	"github.com/jacoelho/jsonsh/internal/render"
)

var (
	ErrInvalidRoot      = errors.New("root must match [A-Za-z_][A-Za-z0-9_]*")
	ErrInvalidSeparator = errors.New("separator must be a single byte")
	ErrInvalidRateLimit = errors.New("rate limit cannot be negative")
	ErrInvalidMaxDepth  = errors.New("max depth must be positive")
	ErrInvalidLogLevel  = errors.New("log level must be one of debug, info, warn, error")
)

var rootPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config represents the complete configuration for the jsonsh tool.
// Field names double as YAML config keys, environment variable suffixes
// (JSONSH_ROOT, JSONSH_RATE_LIMIT, ...) and flag names.
type Config struct {
	// Naming
	Root      string `yaml:"root"`
	Separator string `yaml:"separator"`
	MaxDepth  int    `yaml:"max-depth"`

	// Output
	Format    string  `yaml:"format"`
	Quote     string  `yaml:"quote"`
	Output    string  `yaml:"output"`
	RateLimit float64 `yaml:"rate-limit"` // Lines per second (0 = unlimited)

	// Input
	Input       string `yaml:"input"`
	Compression string `yaml:"compression"`
	Select      string `yaml:"select"`

	// Logging
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log-level"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Root:        flatten.DefaultRoot,
		Separator:   string(rune(flatten.DefaultSeparator)),
		MaxDepth:    flatten.DefaultMaxDepth,
		Format:      "shell",
		Quote:       "double",
		Compression: "auto",
		LogLevel:    "warn",
	}
}

// LoadFile reads a YAML config file on top of the defaults. Unknown keys are rejected.
func LoadFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	cfg := Default()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if !rootPattern.MatchString(c.Root) {
		return fmt.Errorf("%w, got: %q", ErrInvalidRoot, c.Root)
	}

	if len(c.Separator) != 1 {
		return fmt.Errorf("%w, got: %q", ErrInvalidSeparator, c.Separator)
	}

	if c.MaxDepth <= 0 {
		return fmt.Errorf("%w, got: %d", ErrInvalidMaxDepth, c.MaxDepth)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("%w, got: %v", ErrInvalidRateLimit, c.RateLimit)
	}

	if _, err := render.ParseFormat(c.Format); err != nil {
		return err
	}

	if _, err := render.ParseQuote(c.Quote); err != nil {
		return err
	}

	if _, err := input.ParseCompression(c.Compression); err != nil {
		return err
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w, got: %q", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

// FlattenOptions returns the engine options described by the configuration.
func (c *Config) FlattenOptions() []flatten.Option {
	opts := []flatten.Option{
		flatten.WithRoot(c.Root),
		flatten.WithMaxDepth(c.MaxDepth),
	}
	if len(c.Separator) == 1 {
		opts = append(opts, flatten.WithSeparator(c.Separator[0]))
	}
	return opts
}

// Level returns the effective log level; Debug wins over LogLevel.
func (c *Config) Level() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

// OutputFormat returns the parsed output format. Call Validate first.
func (c *Config) OutputFormat() render.Format {
	f, _ := render.ParseFormat(c.Format)
	return f
}

// OutputQuote returns the parsed quote mode. Call Validate first.
func (c *Config) OutputQuote() render.Quote {
	q, _ := render.ParseQuote(c.Quote)
	return q
}

// InputCompression returns the parsed compression mode. Call Validate first.
func (c *Config) InputCompression() input.Compression {
	m, _ := input.ParseCompression(c.Compression)
	return m
}
