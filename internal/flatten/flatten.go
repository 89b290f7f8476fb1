// Package flatten turns a JSON token stream into (path, scalar) pairs, one
// per scalar leaf, in document order.
//
// The Engine is a push-down state machine. It keeps a stack of container
// contexts and a single path buffer that is appended to on the way down and
// truncated back to recorded restore points on the way up, so memory is
// O(depth) for the stack and O(longest path) for the buffer, independent of
// document size.
//
// Given the root name "root" and separator '_', the document
//
//	{"a":[{"b":[true]}], "c":null}
//
// yields ("root_a_0_b_0", true) followed by ("root_c", null).
package flatten

import (
	"errors"
	"io"
	"iter"
	"strconv"

	"github.com/jacoelho/jsonsh/internal/stack"
	"github.com/jacoelho/jsonsh/internal/token"
)

// Pair is one flattened leaf.
type Pair struct {
	Path  string
	Value token.Value
}

// Engine flattens exactly one top-level JSON value from a token source.
// It is not safe for concurrent use and cannot be restarted.
type Engine struct {
	src      token.Source
	contexts *stack.Stack[frame]
	path     []byte
	sep      byte
	maxDepth int
	depth    int

	value    token.Value
	started  bool
	complete bool
	done     bool
	err      error
}

// New creates an engine reading from src. The path buffer starts out holding
// the root name and the context stack is empty.
func New(src token.Source, opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	path := make([]byte, 0, max(o.pathCapacity, len(o.root)))
	path = append(path, o.root...)

	return &Engine{
		src:      src,
		contexts: stack.NewWithCapacity[frame](16),
		path:     path,
		sep:      o.separator,
		maxDepth: o.maxDepth,
	}
}

// Advance pulls tokens until one pair is ready or the engine terminates.
// It returns false once the root value is complete, the source is exhausted
// or an error occurred; Err distinguishes the cases.
func (e *Engine) Advance() bool {
	if e.done {
		return false
	}

	if e.complete {
		e.done = true
		return false
	}

	for {
		tok, err := e.src.Next()
		if errors.Is(err, io.EOF) {
			return e.exhausted()
		}
		if err != nil {
			e.failSource(err)
			return false
		}

		emitted, err := e.step(tok)
		if err != nil {
			e.fail(err)
			return false
		}

		if e.started && e.contexts.IsEmpty() {
			e.complete = true
		}

		if emitted {
			return true
		}

		if e.complete {
			e.done = true
			return false
		}
	}
}

// Pair returns the current pair. The path is copied.
func (e *Engine) Pair() Pair {
	return Pair{Path: string(e.path), Value: e.value}
}

// Path returns the current path without copying. The slice is only valid
// until the next call to Advance.
func (e *Engine) Path() []byte {
	return e.path
}

// Value returns the scalar of the current pair.
func (e *Engine) Value() token.Value {
	return e.value
}

// Err returns the error that terminated the engine, if any.
func (e *Engine) Err() error {
	return e.err
}

// Depth returns the number of open containers.
func (e *Engine) Depth() int {
	return e.depth
}

// Next combines Advance and Pair. It returns io.EOF when no pairs remain.
func (e *Engine) Next() (Pair, error) {
	if e.Advance() {
		return e.Pair(), nil
	}
	if e.err != nil {
		return Pair{}, e.err
	}
	return Pair{}, io.EOF
}

// All yields every remaining pair, then the terminal error if there is one.
func (e *Engine) All() iter.Seq2[Pair, error] {
	return func(yield func(Pair, error) bool) {
		for e.Advance() {
			if !yield(e.Pair(), nil) {
				return
			}
		}
		if e.err != nil {
			yield(Pair{}, e.err)
		}
	}
}

func (e *Engine) exhausted() bool {
	e.done = true
	if e.depth > 0 || !e.contexts.IsEmpty() {
		e.err = e.syntaxError(Unterminated, sourceOffset(e.src), "%d container(s) still open", e.depth)
	}
	return false
}

func (e *Engine) failSource(err error) {
	offset := sourceOffset(e.src)
	var tokErr *token.Error
	if errors.As(err, &tokErr) {
		offset = tokErr.Offset
	}

	se := e.syntaxError(Unterminated, offset, "token source failed")
	se.Err = err
	e.fail(se)
}

func (e *Engine) fail(err error) {
	e.err = err
	e.done = true
}

func sourceOffset(src token.Source) int64 {
	if o, ok := src.(interface{ Offset() int64 }); ok {
		return o.Offset()
	}
	return -1
}

// truncate cuts the path back to a restore point recorded on the stack.
func (e *Engine) truncate(n int) {
	e.path = e.path[:n]
}

func (e *Engine) appendIndex(i int) {
	e.path = strconv.AppendInt(e.path, int64(i), 10)
}

// Collect drains src through a new engine and returns every pair.
// Pairs emitted before an error are returned alongside it.
func Collect(src token.Source, opts ...Option) ([]Pair, error) {
	e := New(src, opts...)

	var pairs []Pair
	for e.Advance() {
		pairs = append(pairs, e.Pair())
	}
	return pairs, e.Err()
}
