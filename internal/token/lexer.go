package token

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// Lexer turns JSON text into tokens. It reads incrementally, so memory use
// is bounded by the longest single token, not by the document.
type Lexer struct {
	r       *bufio.Reader
	off     int64
	scratch []byte
	err     error
}

func NewLexer(r io.Reader) *Lexer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	return &Lexer{
		r:       br,
		scratch: make([]byte, 0, 64),
	}
}

// Offset returns the number of bytes consumed so far.
func (l *Lexer) Offset() int64 {
	return l.off
}

// More reports whether another token follows, skipping whitespace.
// A pending read error counts as more input so Next can surface it.
func (l *Lexer) More() bool {
	if l.err != nil {
		return !errors.Is(l.err, io.EOF)
	}

	if err := l.skipSpace(); err != nil {
		if errors.Is(err, io.EOF) {
			return false
		}
		l.err = err
		return true
	}

	return true
}

// Next returns the next token or io.EOF. Errors are sticky.
func (l *Lexer) Next() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}

	tok, err := l.next()
	if err != nil {
		l.err = err
		return Token{}, err
	}

	return tok, nil
}

func (l *Lexer) next() (Token, error) {
	if err := l.skipSpace(); err != nil {
		return Token{}, err
	}

	start := l.off
	c, err := l.readByte()
	if err != nil {
		return Token{}, err
	}

	switch c {
	case '[':
		return Delim(BeginArray).At(start), nil
	case ']':
		return Delim(EndArray).At(start), nil
	case '{':
		return Delim(BeginObject).At(start), nil
	case '}':
		return Delim(EndObject).At(start), nil
	case ',':
		return Delim(Comma).At(start), nil
	case ':':
		return Delim(Colon).At(start), nil
	case '"':
		s, err := l.lexString(start)
		if err != nil {
			return Token{}, err
		}
		return Of(Text(s)).At(start), nil
	case 't':
		if err := l.expectLiteral(start, "rue"); err != nil {
			return Token{}, err
		}
		return Of(True()).At(start), nil
	case 'f':
		if err := l.expectLiteral(start, "alse"); err != nil {
			return Token{}, err
		}
		return Of(False()).At(start), nil
	case 'n':
		if err := l.expectLiteral(start, "ull"); err != nil {
			return Token{}, err
		}
		return Of(Null()).At(start), nil
	}

	if c == '-' || isDigit(c) {
		l.unreadByte()
		f, err := l.lexNumber(start)
		if err != nil {
			return Token{}, err
		}
		return Of(Number(f)).At(start), nil
	}

	return Token{}, tokenError(start, "unexpected character %q", c)
}

func (l *Lexer) readByte() (byte, error) {
	c, err := l.r.ReadByte()
	if err != nil {
		return 0, err
	}
	l.off++
	return c, nil
}

func (l *Lexer) unreadByte() {
	if err := l.r.UnreadByte(); err == nil {
		l.off--
	}
}

func (l *Lexer) peekByte() (byte, bool) {
	b, err := l.r.Peek(1)
	if err != nil {
		return 0, false
	}
	return b[0], true
}

func (l *Lexer) skipSpace() error {
	for {
		c, err := l.readByte()
		if err != nil {
			return err
		}

		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		}

		l.unreadByte()
		return nil
	}
}

func (l *Lexer) expectLiteral(start int64, rest string) error {
	for i := 0; i < len(rest); i++ {
		c, err := l.readByte()
		if errors.Is(err, io.EOF) {
			return tokenError(start, "unterminated literal")
		}
		if err != nil {
			return err
		}
		if c != rest[i] {
			return tokenError(start, "invalid literal")
		}
	}

	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// lexNumber follows the JSON number grammar:
// -? (0 | [1-9][0-9]*) (. [0-9]+)? ([eE] [+-]? [0-9]+)?
func (l *Lexer) lexNumber(start int64) (float64, error) {
	l.scratch = l.scratch[:0]

	accept := func(match func(byte) bool) bool {
		c, ok := l.peekByte()
		if !ok || !match(c) {
			return false
		}
		l.scratch = append(l.scratch, c)
		_, _ = l.readByte()
		return true
	}
	digits := func() int {
		n := 0
		for accept(isDigit) {
			n++
		}
		return n
	}

	accept(func(c byte) bool { return c == '-' })

	if accept(func(c byte) bool { return c == '0' }) {
		if c, ok := l.peekByte(); ok && isDigit(c) {
			return 0, tokenError(start, "leading zero in number")
		}
	} else if digits() == 0 {
		return 0, tokenError(start, "invalid number")
	}

	if accept(func(c byte) bool { return c == '.' }) && digits() == 0 {
		return 0, tokenError(start, "invalid decimal number")
	}

	if accept(func(c byte) bool { return c == 'e' || c == 'E' }) {
		accept(func(c byte) bool { return c == '+' || c == '-' })
		if digits() == 0 {
			return 0, tokenError(start, "invalid exponent")
		}
	}

	f, err := strconv.ParseFloat(string(l.scratch), 64)
	if err != nil {
		return 0, tokenError(start, "number %s out of range", l.scratch)
	}

	return f, nil
}

func (l *Lexer) lexString(start int64) (string, error) {
	l.scratch = l.scratch[:0]

	for {
		c, err := l.readByte()
		if errors.Is(err, io.EOF) {
			return "", tokenError(start, "unterminated string")
		}
		if err != nil {
			return "", err
		}

		switch {
		case c == '"':
			return string(l.scratch), nil
		case c == '\\':
			if err := l.lexEscape(start); err != nil {
				return "", err
			}
		case c < 0x20:
			return "", tokenError(l.off-1, "control character %q in string", c)
		default:
			l.scratch = append(l.scratch, c)
		}
	}
}

func (l *Lexer) lexEscape(start int64) error {
	c, err := l.readByte()
	if errors.Is(err, io.EOF) {
		return tokenError(start, "unterminated escape sequence")
	}
	if err != nil {
		return err
	}

	switch c {
	case '"', '\\', '/':
		l.scratch = append(l.scratch, c)
	case 'b':
		l.scratch = append(l.scratch, '\b')
	case 'f':
		l.scratch = append(l.scratch, '\f')
	case 'n':
		l.scratch = append(l.scratch, '\n')
	case 'r':
		l.scratch = append(l.scratch, '\r')
	case 't':
		l.scratch = append(l.scratch, '\t')
	case 'u':
		r, err := l.readHex4(start)
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			r = l.lowSurrogate(r)
		}
		l.scratch = utf8.AppendRune(l.scratch, r)
	default:
		return tokenError(l.off-1, "invalid escape '\\%c'", c)
	}

	return nil
}

// lowSurrogate completes a surrogate pair. A lone or mismatched half decodes
// to U+FFFD, as encoding/json does.
func (l *Lexer) lowSurrogate(high rune) rune {
	next, err := l.r.Peek(2)
	if err != nil || next[0] != '\\' || next[1] != 'u' {
		return utf8.RuneError
	}

	peeked, err := l.r.Peek(6)
	if err != nil {
		return utf8.RuneError
	}

	low, ok := parseHex4(peeked[2:6])
	if !ok || !utf16.IsSurrogate(low) {
		return utf8.RuneError
	}

	decoded := utf16.DecodeRune(high, low)
	if decoded == utf8.RuneError {
		return utf8.RuneError
	}

	for range 6 {
		_, _ = l.readByte()
	}
	return decoded
}

func (l *Lexer) readHex4(start int64) (rune, error) {
	var hex [4]byte
	for i := range hex {
		c, err := l.readByte()
		if errors.Is(err, io.EOF) {
			return 0, tokenError(start, "unterminated unicode escape")
		}
		if err != nil {
			return 0, err
		}
		hex[i] = c
	}

	r, ok := parseHex4(hex[:])
	if !ok {
		return 0, tokenError(l.off-4, "invalid unicode escape %q", hex[:])
	}

	return r, nil
}

func parseHex4(b []byte) (rune, bool) {
	var r rune
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
			c -= '0'
		case c >= 'a' && c <= 'f':
			c = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			c = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(c)
	}
	return r, true
}
