// Package render turns flattened pairs into output lines.
package render

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrUnknownQuote  = errors.New("unknown quote mode")
)

// Format selects the line layout.
type Format int

const (
	// FormatShell renders NAME="value".
	FormatShell Format = iota
	// FormatExport renders export NAME="value".
	FormatExport
	// FormatJSON renders one JSON object per line.
	FormatJSON
	// FormatYAML renders one "NAME: value" mapping entry per line.
	FormatYAML
)

var formatNames = map[string]Format{
	"shell":  FormatShell,
	"export": FormatExport,
	"json":   FormatJSON,
	"yaml":   FormatYAML,
}

func ParseFormat(s string) (Format, error) {
	f, ok := formatNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

func (f Format) String() string {
	for name, v := range formatNames {
		if v == f {
			return name
		}
	}
	return "unknown"
}

// Quote selects how shell values are quoted.
type Quote int

const (
	// QuoteDouble wraps the value in double quotes and escapes \ " $ and `.
	QuoteDouble Quote = iota
	// QuoteSingle wraps the value in single quotes; ' becomes '\''.
	QuoteSingle
	// QuoteRaw wraps the value in double quotes without escaping anything.
	QuoteRaw
)

var quoteNames = map[string]Quote{
	"double": QuoteDouble,
	"single": QuoteSingle,
	"raw":    QuoteRaw,
}

func ParseQuote(s string) (Quote, error) {
	q, ok := quoteNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownQuote, s)
	}
	return q, nil
}

func (q Quote) String() string {
	for name, v := range quoteNames {
		if v == q {
			return name
		}
	}
	return "unknown"
}

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// AppendName appends path to dst keeping only [A-Za-z0-9_].
func AppendName(dst []byte, path []byte) []byte {
	for _, c := range path {
		if isNameByte(c) {
			dst = append(dst, c)
		}
	}
	return dst
}

// Name strips every character outside [A-Za-z0-9_] from path.
func Name(path string) string {
	return string(AppendName(nil, []byte(path)))
}

// AppendQuoted appends value to dst quoted according to q.
func AppendQuoted(dst []byte, value string, q Quote) []byte {
	switch q {
	case QuoteSingle:
		dst = append(dst, '\'')
		for i := 0; i < len(value); i++ {
			if value[i] == '\'' {
				dst = append(dst, `'\''`...)
				continue
			}
			dst = append(dst, value[i])
		}
		return append(dst, '\'')
	case QuoteRaw:
		dst = append(dst, '"')
		dst = append(dst, value...)
		return append(dst, '"')
	default:
		dst = append(dst, '"')
		for i := 0; i < len(value); i++ {
			switch value[i] {
			case '\\', '"', '$', '`':
				dst = append(dst, '\\')
			}
			dst = append(dst, value[i])
		}
		return append(dst, '"')
	}
}
