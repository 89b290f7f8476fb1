package selector

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jacoelho/jsonsh/internal/stack"
	"github.com/jacoelho/jsonsh/internal/token"
)

// ErrDuplicateKey is matched by DuplicateKeyError.
var ErrDuplicateKey = errors.New("duplicate object key")

// DuplicateKeyError reports an object member name seen twice in one object.
// Selection decodes objects into maps, which would keep only the last one.
type DuplicateKeyError struct {
	Key    string
	Offset int64
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%v %q at offset %d: not supported with a JSONPath selection", ErrDuplicateKey, e.Key, e.Offset)
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

type keyScope struct {
	object    bool
	expectKey bool
	keys      map[string]struct{}
}

// CheckUniqueKeys scans data in one streaming pass and fails on the first
// object that repeats a member name. Malformed input is left for decoding
// to report.
func CheckUniqueKeys(data []byte) error {
	lexer := token.NewLexer(bytes.NewReader(data))
	scopes := stack.New[keyScope]()

	for {
		tok, err := lexer.Next()
		if err != nil {
			return nil
		}

		switch tok.Kind {
		case token.BeginObject:
			scopes.Push(keyScope{object: true, expectKey: true, keys: make(map[string]struct{})})
		case token.BeginArray:
			scopes.Push(keyScope{})
		case token.EndObject, token.EndArray:
			scopes.Pop()
		case token.Comma:
			if top := scopes.PeekRef(); top != nil && top.object {
				top.expectKey = true
			}
		case token.Scalar:
			top := scopes.PeekRef()
			if top == nil || !top.object || !top.expectKey {
				continue
			}
			top.expectKey = false

			key, ok := tok.Value.AsText()
			if !ok {
				continue
			}
			if _, seen := top.keys[key]; seen {
				return &DuplicateKeyError{Key: key, Offset: tok.Offset}
			}
			top.keys[key] = struct{}{}
		}
	}
}
