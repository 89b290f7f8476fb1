package render

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/jsonsh/internal/token"
)

// Writer renders pairs as lines on a buffered writer. Call Flush when done.
type Writer struct {
	out    *bufio.Writer
	format Format
	quote  Quote
	line   []byte
	name   []byte
}

func NewWriter(w io.Writer, format Format, quote Quote) *Writer {
	return &Writer{
		out:    bufio.NewWriter(w),
		format: format,
		quote:  quote,
		line:   make([]byte, 0, 256),
	}
}

type jsonLine struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Write renders one pair. path may alias the engine's buffer; it is not retained.
func (w *Writer) Write(path []byte, v token.Value) error {
	w.name = AppendName(w.name[:0], path)
	w.line = w.line[:0]

	switch w.format {
	case FormatJSON:
		encoded, err := json.Marshal(jsonLine{
			Name:  string(w.name),
			Path:  string(path),
			Value: v.Interface(),
		})
		if err != nil {
			return fmt.Errorf("encode JSON line: %w", err)
		}
		w.line = append(w.line, encoded...)
		w.line = append(w.line, '\n')
	case FormatYAML:
		encoded, err := yaml.Marshal(yaml.MapSlice{{Key: string(w.name), Value: v.Interface()}})
		if err != nil {
			return fmt.Errorf("encode YAML entry: %w", err)
		}
		w.line = append(w.line, encoded...)
	case FormatExport:
		w.line = append(w.line, "export "...)
		fallthrough
	default:
		w.line = append(w.line, w.name...)
		w.line = append(w.line, '=')
		w.line = AppendQuoted(w.line, v.String(), w.quote)
		w.line = append(w.line, '\n')
	}

	if _, err := w.out.Write(w.line); err != nil {
		return err
	}
	return nil
}

func (w *Writer) Flush() error {
	return w.out.Flush()
}
