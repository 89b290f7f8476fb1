package token

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func collect(t *testing.T, input string) ([]Token, error) {
	t.Helper()

	l := NewLexer(strings.NewReader(input))
	var out []Token
	for {
		tok, err := l.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		tok.Offset = -1
		out = append(out, tok)
	}
}

func TestLexer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "whitespace_only",
			input: " \t   \n \r  ",
			want:  nil,
		},
		{
			name:  "commas",
			input: ",,",
			want:  []Token{Delim(Comma), Delim(Comma)},
		},
		{
			name:  "colons",
			input: "::",
			want:  []Token{Delim(Colon), Delim(Colon)},
		},
		{
			name:  "empty_containers",
			input: "[]{}",
			want:  []Token{Delim(BeginArray), Delim(EndArray), Delim(BeginObject), Delim(EndObject)},
		},
		{
			name:  "text",
			input: `"test","123"`,
			want:  []Token{Of(Text("test")), Delim(Comma), Of(Text("123"))},
		},
		{
			name:  "numbers",
			input: "-1.23e-2,123, 0 ,2E+3",
			want: []Token{
				Of(Number(-1.23e-2)), Delim(Comma),
				Of(Number(123)), Delim(Comma),
				Of(Number(0)), Delim(Comma),
				Of(Number(2000)),
			},
		},
		{
			name:  "literals",
			input: "true,false,null",
			want:  []Token{Of(True()), Delim(Comma), Of(False()), Delim(Comma), Of(Null())},
		},
		{
			name:  "escapes",
			input: `"a\"b\\c\/d\b\f\n\r\t"`,
			want:  []Token{Of(Text("a\"b\\c/d\b\f\n\r\t"))},
		},
		{
			name:  "unicode_escape",
			input: `"\u00e9\u4E2D"`,
			want:  []Token{Of(Text("é中"))},
		},
		{
			name:  "surrogate_pair",
			input: `"\ud83d\ude00"`,
			want:  []Token{Of(Text("😀"))},
		},
		{
			name:  "lone_surrogate",
			input: `"\ud83dx"`,
			want:  []Token{Of(Text("�x"))},
		},
		{
			name:  "raw_utf8",
			input: `"héllo"`,
			want:  []Token{Of(Text("héllo"))},
		},
		{
			name:  "object",
			input: `{"a": [1, "v"]}`,
			want: []Token{
				Delim(BeginObject), Of(Text("a")), Delim(Colon),
				Delim(BeginArray), Of(Number(1)), Delim(Comma), Of(Text("v")), Delim(EndArray),
				Delim(EndObject),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collect(t, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokens = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int64
	}{
		{name: "illegal_character", input: "[x]", offset: 1},
		{name: "bad_literal", input: "tru", offset: 0},
		{name: "misspelled_literal", input: " nil", offset: 1},
		{name: "unterminated_string", input: `"abc`, offset: 0},
		{name: "invalid_escape", input: `"a\q"`, offset: 3},
		{name: "bad_unicode", input: `"\u12g4"`, offset: 3},
		{name: "control_character", input: "\"a\nb\"", offset: 2},
		{name: "leading_zero", input: "01", offset: 0},
		{name: "bare_minus", input: "-", offset: 0},
		{name: "missing_fraction", input: "1.", offset: 0},
		{name: "missing_exponent", input: "1e+", offset: 0},
		{name: "out_of_range", input: "1e400", offset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collect(t, tt.input)
			if !errors.Is(err, ErrToken) {
				t.Fatalf("error = %v, want ErrToken", err)
			}

			var tokErr *Error
			if !errors.As(err, &tokErr) {
				t.Fatalf("error %T is not *Error", err)
			}
			if tokErr.Offset != tt.offset {
				t.Errorf("offset = %d, want %d", tokErr.Offset, tt.offset)
			}
		})
	}
}

func TestLexerOffsets(t *testing.T) {
	l := NewLexer(strings.NewReader(` [ "ab" , 12 ]`))

	want := []int64{1, 3, 8, 10, 13}
	for i, off := range want {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if tok.Offset != off {
			t.Errorf("token %d offset = %d, want %d", i, tok.Offset, off)
		}
	}
}

func TestTokenAt(t *testing.T) {
	tok := Of(Text("a")).At(7)

	if tok.Offset != 7 || tok.Kind != Scalar || tok.Value != Text("a") {
		t.Errorf("At(7) = %+v", tok)
	}
	if d := Delim(Comma); d.Offset != -1 {
		t.Errorf("Delim offset = %d, want -1", d.Offset)
	}
}

func TestLexerErrorIsSticky(t *testing.T) {
	l := NewLexer(strings.NewReader("@ 1"))

	_, first := l.Next()
	_, second := l.Next()

	if first == nil || first != second {
		t.Errorf("second error = %v, want the first error %v", second, first)
	}
}

func TestLexerMore(t *testing.T) {
	l := NewLexer(strings.NewReader("1 \n 2  \n"))

	count := 0
	for l.More() {
		if _, err := l.Next(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		count++
	}

	if count != 2 {
		t.Errorf("More() loop consumed %d tokens, want 2", count)
	}

	if _, err := l.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after exhaustion = %v, want io.EOF", err)
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{True(), "true"},
		{False(), "false"},
		{Null(), "null"},
		{Value{}, "null"},
		{Text("abc"), "abc"},
		{Number(23.0), "23"},
		{Number(-0.5), "-0.5"},
		{Number(1.5e-7), "0.00000015"},
		{Number(1e21), "1000000000000000000000"},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource(Delim(BeginArray), Delim(EndArray))

	for range 2 {
		if !src.More() {
			t.Fatal("More() = false before exhaustion")
		}
		if _, err := src.Next(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if src.More() {
		t.Error("More() = true after exhaustion")
	}
	if _, err := src.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() = %v, want io.EOF", err)
	}
}
