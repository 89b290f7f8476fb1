// Package runner drives one jsonsh invocation: acquire the input, flatten
// every top-level value and render the pairs.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jacoelho/jsonsh/internal/config"
	"github.com/jacoelho/jsonsh/internal/flatten"
	"github.com/jacoelho/jsonsh/internal/input"
	"github.com/jacoelho/jsonsh/internal/ratelimit"
	"github.com/jacoelho/jsonsh/internal/render"
	"github.com/jacoelho/jsonsh/internal/selector"
	"github.com/jacoelho/jsonsh/internal/token"
)

// Summary describes a finished run.
type Summary struct {
	Documents int64
	Pairs     int64
	Codec     input.Compression
	Duration  time.Duration
}

// Runner flattens JSON input into shell assignments.
type Runner struct {
	config      *config.Config
	logger      *zap.Logger
	runID       string
	rateLimiter *ratelimit.Limiter
	selector    *selector.Selector
	options     []flatten.Option
}

// New creates a Runner. The configuration is validated and the selection
// compiled here, before any output is opened.
func New(cfg *config.Config, logger *zap.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var sel *selector.Selector
	if cfg.Select != "" {
		s, err := selector.Compile(cfg.Select)
		if err != nil {
			return nil, err
		}
		sel = s
	}

	runID := uuid.NewString()

	return &Runner{
		config:      cfg,
		logger:      logger.With(zap.String("run_id", runID)),
		runID:       runID,
		rateLimiter: ratelimit.New(cfg.RateLimit),
		selector:    sel,
		options:     cfg.FlattenOptions(),
	}, nil
}

// RunID identifies this runner in log entries.
func (r *Runner) RunID() string {
	return r.runID
}

// Run reads all of in and writes one line per scalar leaf to out. Lines
// produced before a failure are still flushed. The returned summary is
// never nil.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	r.logger.Info("run started",
		zap.String("input", displayInput(r.config.Input)),
		zap.String("format", r.config.Format),
		zap.String("select", r.config.Select),
	)

	data, codec, err := input.Read(in, r.config.InputCompression())
	summary.Codec = codec
	if err != nil {
		return r.finish(summary, start, err)
	}
	r.logger.Debug("input read", zap.Int("bytes", len(data)), zap.Stringer("compression", codec))

	w := render.NewWriter(out, r.config.OutputFormat(), r.config.OutputQuote())

	if r.selector != nil {
		err = r.runSelected(ctx, data, w, summary)
	} else {
		err = r.runStreaming(ctx, bytes.NewReader(data), w, summary)
	}

	if flushErr := w.Flush(); flushErr != nil && err == nil {
		err = fmt.Errorf("write output: %w", flushErr)
	}

	return r.finish(summary, start, err)
}

func (r *Runner) runStreaming(ctx context.Context, in io.Reader, w *render.Writer, summary *Summary) error {
	lexer := token.NewLexer(in)

	for lexer.More() {
		if err := ctx.Err(); err != nil {
			return err
		}

		engine := flatten.New(lexer, r.options...)
		if err := r.document(ctx, engine, w, summary); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) runSelected(ctx context.Context, data []byte, w *render.Writer, summary *Summary) error {
	if err := selector.CheckUniqueKeys(data); err != nil {
		return err
	}

	for doc, err := range selector.Documents(data) {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		matches := r.selector.Select(doc)
		r.logger.Debug("document selected",
			zap.Int64("document", summary.Documents),
			zap.Int("matches", len(matches)),
		)

		var pairs int64
		for _, m := range matches {
			src, err := m.Source()
			if err != nil {
				return err
			}

			root := m.Root(r.config.Root, r.config.Separator[0])
			engine := flatten.New(src, slices.Concat(r.options, []flatten.Option{flatten.WithRoot(root)})...)

			n, err := r.drain(ctx, engine, w)
			pairs += n
			summary.Pairs += n
			if err != nil {
				return fmt.Errorf("document %d: %w", summary.Documents, err)
			}
		}

		r.logger.Debug("document flattened", zap.Int64("document", summary.Documents), zap.Int64("pairs", pairs))
		summary.Documents++
	}

	return nil
}

// document flattens one top-level value.
func (r *Runner) document(ctx context.Context, engine *flatten.Engine, w *render.Writer, summary *Summary) error {
	n, err := r.drain(ctx, engine, w)
	summary.Pairs += n
	if err != nil {
		return fmt.Errorf("document %d: %w", summary.Documents, err)
	}

	r.logger.Debug("document flattened", zap.Int64("document", summary.Documents), zap.Int64("pairs", n))
	summary.Documents++
	return nil
}

func (r *Runner) drain(ctx context.Context, engine *flatten.Engine, w *render.Writer) (int64, error) {
	var n int64
	for engine.Advance() {
		if err := r.rateLimiter.Wait(ctx); err != nil {
			return n, err
		}
		if err := w.Write(engine.Path(), engine.Value()); err != nil {
			return n, fmt.Errorf("write output: %w", err)
		}
		// Throttled lines must reach the sink one by one.
		if !r.rateLimiter.Unlimited() {
			if err := w.Flush(); err != nil {
				return n, fmt.Errorf("write output: %w", err)
			}
		}
		n++
	}
	return n, engine.Err()
}

func (r *Runner) finish(summary *Summary, start time.Time, err error) (*Summary, error) {
	summary.Duration = time.Since(start)

	fields := []zap.Field{
		zap.Int64("documents", summary.Documents),
		zap.Int64("pairs", summary.Pairs),
		zap.Duration("duration", summary.Duration),
	}

	if err != nil {
		r.logger.Error("run failed", append(fields, errorFields(err)...)...)
		return summary, err
	}

	r.logger.Info("run finished", fields...)
	return summary, nil
}

func errorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}

	var se *flatten.SyntaxError
	if errors.As(err, &se) {
		fields = append(fields,
			zap.Stringer("kind", se.Kind),
			zap.String("path", se.Path),
			zap.Int64("offset", se.Offset),
		)
	}
	return fields
}

func displayInput(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}
