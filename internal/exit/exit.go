package exit

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/jsonsh/internal/flatten"
	"github.com/jacoelho/jsonsh/internal/input"
	"github.com/jacoelho/jsonsh/internal/selector"
	"github.com/jacoelho/jsonsh/internal/token"
)

// Process exit codes.
const (
	CodeSuccess = 0
	// CodeFailure covers I/O, configuration and cancellation failures.
	CodeFailure = 1
	// CodeMalformed is used when the input is not a well-formed document.
	CodeMalformed = 2
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message to the configured output destination.
func (r *Result) Print() {
	if r.Message == "" {
		return
	}
	fmt.Fprint(r.Output, r.Message)
}

// Success creates a successful exit result that outputs to stdout with exit code 0.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: CodeSuccess,
		Message:  message,
	}
}

// Error creates an error exit result that outputs to stderr with exit code 1.
func Error(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeFailure,
		Message:  message,
	}
}

// Errorf creates an error exit result with formatted message.
func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// FromError builds the exit result for err, nil meaning success.
func FromError(err error) *Result {
	if err == nil {
		return Success("")
	}

	r := Errorf("jsonsh: %v\n", err)
	r.ExitCode = Code(err)
	return r
}

// Code maps err to a process exit code.
func Code(err error) int {
	switch {
	case err == nil:
		return CodeSuccess
	case errors.Is(err, flatten.ErrSyntax),
		errors.Is(err, token.ErrToken),
		errors.Is(err, selector.ErrDecode),
		errors.Is(err, selector.ErrDuplicateKey),
		errors.Is(err, input.ErrInvalidUTF8):
		return CodeMalformed
	default:
		return CodeFailure
	}
}
