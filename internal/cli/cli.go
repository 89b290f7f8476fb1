// Package cli wires flags, environment and config file into a run.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jacoelho/jsonsh/internal/config"
	"github.com/jacoelho/jsonsh/internal/exit"
	"github.com/jacoelho/jsonsh/internal/input"
	"github.com/jacoelho/jsonsh/internal/logging"
	"github.com/jacoelho/jsonsh/internal/runner"
)

// Version is set at build time using ldflags.
var Version = "dev"

const envPrefix = "JSONSH"

const examples = `  eval "$(curl -s https://api.example.com/item | jsonsh)"
  jsonsh --root item --format export item.json
  jsonsh --select '$.items[*].id' --quote single items.json.zst
  JSONSH_SEPARATOR=. jsonsh --format json < doc.json`

// reportedError marks failures the runner already logged with full context.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// Run executes jsonsh with args (without the program name) and returns the
// process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)

	result := exit.FromError(err)
	result.Output = stderr
	if errors.As(err, new(reportedError)) {
		result.Message = ""
	}
	result.Print()
	return result.ExitCode
}

// NewRootCmd builds the jsonsh command. Every flag can also be set through
// a JSONSH_ environment variable or a YAML config file; flags win over the
// environment, which wins over the file.
func NewRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "jsonsh [file]",
		Short: "Flatten JSON into shell variable assignments",
		Long: `jsonsh reads JSON documents and prints one NAME="value" line per scalar,
naming each variable after its path from the root (root_items_0_id).
Input is read from the file argument or stdin and may be gzip, zstd or
lz4 compressed.`,
		Example:       examples,
		Args:          cobra.MaximumNArgs(1),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, args)
			if err != nil {
				return err
			}
			return execute(cmd.Context(), cfg, stdin, stdout, stderr)
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	setFlags(cmd.Flags(), config.Default())

	// Flags are registered above, so binding cannot fail.
	_ = v.BindPFlags(cmd.Flags())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

func setFlags(f *pflag.FlagSet, defaults *config.Config) {
	f.String("config", "", "YAML config file")
	f.String("root", defaults.Root, "Name of the root variable")
	f.String("separator", defaults.Separator, "Single byte placed between path segments")
	f.Int("max-depth", defaults.MaxDepth, "Maximum container nesting depth")
	f.StringP("format", "f", defaults.Format, "Output format: shell, export, json or yaml")
	f.StringP("quote", "q", defaults.Quote, "Value quoting: double, single or raw")
	f.StringP("output", "o", defaults.Output, "Write to file instead of stdout")
	f.Float64("rate-limit", defaults.RateLimit, "Maximum lines per second (0 = unlimited)")
	f.StringP("compression", "c", defaults.Compression, "Input compression: auto, none, gzip, zstd or lz4")
	f.StringP("select", "s", defaults.Select, "JSONPath query selecting the nodes to flatten")
	f.Bool("debug", defaults.Debug, "Enable debug logging")
	f.String("log-level", defaults.LogLevel, "Log level: debug, info, warn or error")
}

// loadConfig layers the config file, environment and flags.
func loadConfig(v *viper.Viper, args []string) (*config.Config, error) {
	base := config.Default()
	if path := v.GetString("config"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		base = loaded
	}

	// File values act as defaults so unset flags and env vars fall back to them.
	v.SetDefault("root", base.Root)
	v.SetDefault("separator", base.Separator)
	v.SetDefault("max-depth", base.MaxDepth)
	v.SetDefault("format", base.Format)
	v.SetDefault("quote", base.Quote)
	v.SetDefault("output", base.Output)
	v.SetDefault("rate-limit", base.RateLimit)
	v.SetDefault("input", base.Input)
	v.SetDefault("compression", base.Compression)
	v.SetDefault("select", base.Select)
	v.SetDefault("debug", base.Debug)
	v.SetDefault("log-level", base.LogLevel)

	cfg := &config.Config{
		Root:        v.GetString("root"),
		Separator:   v.GetString("separator"),
		MaxDepth:    v.GetInt("max-depth"),
		Format:      v.GetString("format"),
		Quote:       v.GetString("quote"),
		Output:      v.GetString("output"),
		RateLimit:   v.GetFloat64("rate-limit"),
		Input:       v.GetString("input"),
		Compression: v.GetString("compression"),
		Select:      v.GetString("select"),
		Debug:       v.GetBool("debug"),
		LogLevel:    v.GetString("log-level"),
	}
	if len(args) == 1 {
		cfg.Input = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func execute(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	logger, err := logging.New(stderr, cfg.Level())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	r, err := runner.New(cfg, logger)
	if err != nil {
		return err
	}

	in, err := input.Open(cfg.Input, stdin)
	if err != nil {
		return err
	}
	defer in.Close()

	out := stdout
	if cfg.Output != "" && cfg.Output != "-" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
		}()
		out = f
	}

	if _, err := r.Run(ctx, in, out); err != nil {
		return reportedError{err: err}
	}
	return nil
}
