package flatten

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax is matched by every structural parse error.
var ErrSyntax = errors.New("flatten: syntax error")

// ErrorKind classifies structural parse errors.
type ErrorKind uint8

const (
	// UnbalancedClose is a ']' or '}' with no open container or of the wrong type.
	UnbalancedClose ErrorKind = iota + 1
	// MisplacedComma is a ',' outside any container, directly after an object
	// key, or leading, doubled or trailing inside a container.
	MisplacedComma
	// MisplacedColon is a ':' anywhere except directly after an object key.
	MisplacedColon
	// Unterminated means the token source ended or failed with containers open.
	Unterminated
	// UnexpectedToken is a token that cannot occupy the current slot: a
	// non-text key, a value without a colon or two values without a comma.
	UnexpectedToken
	// DepthExceeded means nesting went past the configured maximum depth.
	DepthExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case UnbalancedClose:
		return "unbalanced close"
	case MisplacedComma:
		return "misplaced comma"
	case MisplacedColon:
		return "misplaced colon"
	case Unterminated:
		return "unterminated document"
	case UnexpectedToken:
		return "unexpected token"
	case DepthExceeded:
		return "maximum depth exceeded"
	default:
		return "unknown"
	}
}

// SyntaxError reports where the engine stopped. Path is the path buffer at
// the failure point and Offset the byte offset of the offending token, or -1.
type SyntaxError struct {
	Kind   ErrorKind
	Detail string
	Path   string
	Offset int64
	Err    error
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	b.WriteString(ErrSyntax.Error())
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (path %s)", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a structural error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
