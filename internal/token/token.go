// Package token defines the lexical tokens consumed by the flattening engine
// and a lexer that produces them from JSON text.
package token

import (
	"io"
	"strconv"
)

// Kind identifies the lexical class of a token.
type Kind uint8

const (
	BeginArray Kind = iota
	EndArray
	BeginObject
	EndObject
	Comma
	Colon
	Scalar
)

func (k Kind) String() string {
	switch k {
	case BeginArray:
		return "'['"
	case EndArray:
		return "']'"
	case BeginObject:
		return "'{'"
	case EndObject:
		return "'}'"
	case Comma:
		return "','"
	case Colon:
		return "':'"
	case Scalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// ScalarKind identifies the variant held by a Value.
type ScalarKind uint8

const (
	NullKind ScalarKind = iota
	TrueKind
	FalseKind
	NumberKind
	TextKind
)

// Value is an immutable scalar: text, number, true, false or null.
// The zero Value is null.
type Value struct {
	kind ScalarKind
	text string
	num  float64
}

func Text(s string) Value {
	return Value{kind: TextKind, text: s}
}

func Number(f float64) Value {
	return Value{kind: NumberKind, num: f}
}

func True() Value {
	return Value{kind: TrueKind}
}

func False() Value {
	return Value{kind: FalseKind}
}

func Null() Value {
	return Value{}
}

func (v Value) Kind() ScalarKind {
	return v.kind
}

// AsText returns the text payload and whether v is a text scalar.
func (v Value) AsText() (string, bool) {
	return v.text, v.kind == TextKind
}

// AsNumber returns the numeric payload and whether v is a number scalar.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == NumberKind
}

// String renders the scalar: true, false, null, the text verbatim, or the
// shortest decimal form of the number without an exponent (23.0 is "23").
func (v Value) String() string {
	switch v.kind {
	case TrueKind:
		return "true"
	case FalseKind:
		return "false"
	case NumberKind:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case TextKind:
		return v.text
	default:
		return "null"
	}
}

// Interface returns the scalar as a plain Go value: string, float64, bool or nil.
func (v Value) Interface() any {
	switch v.kind {
	case TrueKind:
		return true
	case FalseKind:
		return false
	case NumberKind:
		return v.num
	case TextKind:
		return v.text
	default:
		return nil
	}
}

// Token is one lexical unit. Value is only meaningful for Scalar tokens.
// Offset is the byte position of the token in the source, or -1 when unknown.
type Token struct {
	Kind   Kind
	Value  Value
	Offset int64
}

func Delim(k Kind) Token {
	return Token{Kind: k, Offset: -1}
}

func Of(v Value) Token {
	return Token{Kind: Scalar, Value: v, Offset: -1}
}

// At returns t positioned at offset.
func (t Token) At(offset int64) Token {
	t.Offset = offset
	return t
}

// Source yields tokens in document order and returns io.EOF once exhausted.
type Source interface {
	Next() (Token, error)
}

// SliceSource replays a fixed token sequence.
type SliceSource struct {
	tokens []Token
	pos    int
}

func NewSliceSource(tokens ...Token) *SliceSource {
	return &SliceSource{tokens: tokens}
}

func (s *SliceSource) Next() (Token, error) {
	if s.pos >= len(s.tokens) {
		return Token{}, io.EOF
	}

	tok := s.tokens[s.pos]
	s.pos++
	return tok, nil
}

// More reports whether tokens remain.
func (s *SliceSource) More() bool {
	return s.pos < len(s.tokens)
}
