// Package selector narrows documents with RFC 9535 JSONPath queries before
// flattening. Selection works on decoded documents, so unlike the streaming
// path it holds one whole top-level value in memory at a time.
package selector

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strconv"

	"github.com/theory/jsonpath"
	"github.com/theory/jsonpath/spec"

	"github.com/jacoelho/jsonsh/internal/token"
)

var (
	ErrInvalidPath = errors.New("invalid JSONPath")
	ErrDecode      = errors.New("decode document")
)

// Selector is a compiled JSONPath query.
type Selector struct {
	expr string
	path *jsonpath.Path
}

func Compile(expr string) (*Selector, error) {
	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidPath, expr, err)
	}
	return &Selector{expr: expr, path: path}, nil
}

func (s *Selector) String() string {
	return s.expr
}

// Segment is one step of a match location: an object member name or an
// array index.
type Segment struct {
	Name    string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Name
}

// Match is a selected node and where it was found.
type Match struct {
	Segments []Segment
	Node     any
}

// Root returns the path prefix for the match: root followed by each
// location segment, joined by sep.
func (m Match) Root(root string, sep byte) string {
	b := make([]byte, 0, len(root)+8*len(m.Segments))
	b = append(b, root...)
	for _, seg := range m.Segments {
		b = append(b, sep)
		if seg.IsIndex {
			b = strconv.AppendInt(b, int64(seg.Index), 10)
			continue
		}
		b = append(b, seg.Name...)
	}
	return string(b)
}

// Source re-encodes the node as a token stream. Object members come out
// in sorted key order.
func (m Match) Source() (token.Source, error) {
	encoded, err := json.Marshal(m.Node)
	if err != nil {
		return nil, fmt.Errorf("encode selected node: %w", err)
	}
	return token.NewLexer(bytes.NewReader(encoded)), nil
}

// Select applies the query to doc. Matches are ordered by location, array
// indices numerically, so output does not depend on map iteration order.
func (s *Selector) Select(doc any) []Match {
	located := s.path.SelectLocated(doc)

	matches := make([]Match, 0, len(located))
	for _, node := range located {
		matches = append(matches, Match{
			Segments: segments(node.Path),
			Node:     node.Node,
		})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		return compareSegments(a.Segments, b.Segments)
	})
	return matches
}

func segments(path spec.NormalizedPath) []Segment {
	out := make([]Segment, 0, len(path))
	for _, sel := range path {
		switch v := sel.(type) {
		case spec.Index:
			out = append(out, Segment{Index: int(v), IsIndex: true})
		case spec.Name:
			out = append(out, Segment{Name: string(v)})
		}
	}
	return out
}

func compareSegments(a, b []Segment) int {
	for i := range min(len(a), len(b)) {
		x, y := a[i], b[i]
		switch {
		case x.IsIndex && y.IsIndex:
			if c := cmp.Compare(x.Index, y.Index); c != 0 {
				return c
			}
		case x.IsIndex:
			return -1
		case y.IsIndex:
			return 1
		default:
			if c := cmp.Compare(x.Name, y.Name); c != 0 {
				return c
			}
		}
	}
	return cmp.Compare(len(a), len(b))
}

// Documents decodes consecutive top-level values from data.
func Documents(data []byte) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		dec := json.NewDecoder(bytes.NewReader(data))
		for {
			var doc any
			err := dec.Decode(&doc)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("%w at offset %d: %v", ErrDecode, dec.InputOffset(), err))
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}
