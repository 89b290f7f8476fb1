package token

import (
	"errors"
	"fmt"
)

// ErrToken indicates malformed lexical input: a bad literal, escape or number.
var ErrToken = errors.New("token error")

// Error reports a lexical failure at a byte offset.
type Error struct {
	Offset int64
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s at offset %d", ErrToken, e.Msg, e.Offset)
}

func (e *Error) Is(target error) bool {
	return target == ErrToken
}

func tokenError(offset int64, format string, args ...any) error {
	return &Error{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}
