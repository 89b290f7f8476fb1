package flatten

import (
	"fmt"

	"github.com/jacoelho/jsonsh/internal/token"
)

type contextKind uint8

const (
	arrayContext contextKind = iota
	objectContext
	// pendingValue marks a key appended to the path whose value has not
	// arrived yet. The object's restore point sits in the frame below it.
	pendingValue
)

// frame is one entry of the context stack.
type frame struct {
	kind contextKind
	// index is the position of the next array element.
	index int
	// base is the path length when the container was entered; the path is
	// only ever truncated back to base or base+1.
	base int
	// filled is set once the current slot holds an element or member.
	filled bool
	// afterComma is set when the last token inside the container was ','.
	afterComma bool
	// colon is set on a pendingValue frame once ':' has been seen.
	colon bool
}

// step applies one token. It reports whether a pair is ready.
func (e *Engine) step(tok token.Token) (bool, error) {
	switch tok.Kind {
	case token.BeginArray:
		return false, e.open(tok, arrayContext)
	case token.BeginObject:
		return false, e.open(tok, objectContext)
	case token.EndArray:
		return false, e.closeArray(tok)
	case token.EndObject:
		return false, e.closeObject(tok)
	case token.Comma:
		return false, e.comma(tok)
	case token.Colon:
		return false, e.colon(tok)
	case token.Scalar:
		return e.scalar(tok)
	default:
		return false, e.syntaxError(UnexpectedToken, tok.Offset, "unknown token kind %d", tok.Kind)
	}
}

// enterSlot claims the slot a value is about to occupy: it appends the array
// index, or consumes the pending key marker. Object key position is rejected
// since only text keys may appear there.
func (e *Engine) enterSlot(tok token.Token, what string) error {
	top := e.contexts.PeekRef()
	if top == nil {
		e.started = true
		return nil
	}

	switch top.kind {
	case arrayContext:
		if top.filled {
			return e.syntaxError(UnexpectedToken, tok.Offset, "%s after array element without ','", what)
		}
		top.filled = true
		top.afterComma = false
		e.appendIndex(top.index)
	case pendingValue:
		if !top.colon {
			return e.syntaxError(UnexpectedToken, tok.Offset, "%s after object key without ':'", what)
		}
		e.contexts.Pop()
	case objectContext:
		if top.filled {
			return e.syntaxError(UnexpectedToken, tok.Offset, "%s after object member without ','", what)
		}
		return e.syntaxError(UnexpectedToken, tok.Offset, "%s where object key expected", what)
	}

	return nil
}

func (e *Engine) open(tok token.Token, kind contextKind) error {
	if e.depth >= e.maxDepth {
		return e.syntaxError(DepthExceeded, tok.Offset, "limit is %d", e.maxDepth)
	}

	if err := e.enterSlot(tok, tok.Kind.String()); err != nil {
		return err
	}

	e.contexts.Push(frame{kind: kind, base: len(e.path)})
	e.depth++
	e.path = append(e.path, e.sep)
	return nil
}

func (e *Engine) closeArray(tok token.Token) error {
	top, ok := e.contexts.Peek()
	if !ok || top.kind != arrayContext {
		return e.syntaxError(UnbalancedClose, tok.Offset, "']' without matching '['")
	}

	return e.close(tok, top)
}

func (e *Engine) closeObject(tok token.Token) error {
	top, ok := e.contexts.Peek()
	if !ok {
		return e.syntaxError(UnbalancedClose, tok.Offset, "'}' without matching '{'")
	}

	switch top.kind {
	case objectContext:
		return e.close(tok, top)
	case pendingValue:
		return e.syntaxError(UnexpectedToken, tok.Offset, "'}' after object key, value expected")
	default:
		return e.syntaxError(UnbalancedClose, tok.Offset, "'}' closes an array")
	}
}

func (e *Engine) close(tok token.Token, top frame) error {
	if top.afterComma {
		return e.syntaxError(MisplacedComma, tok.Offset, "trailing ',' before %s", tok.Kind)
	}

	e.contexts.Pop()
	e.depth--
	e.truncate(top.base)
	return nil
}

func (e *Engine) comma(tok token.Token) error {
	top := e.contexts.PeekRef()
	if top == nil {
		return e.syntaxError(MisplacedComma, tok.Offset, "',' outside any container")
	}

	switch top.kind {
	case pendingValue:
		return e.syntaxError(MisplacedComma, tok.Offset, "',' after object key, value expected")
	case arrayContext, objectContext:
		if !top.filled {
			return e.syntaxError(MisplacedComma, tok.Offset, "',' without preceding element")
		}
		if top.kind == arrayContext {
			top.index++
		}
		top.filled = false
		top.afterComma = true
		e.truncate(top.base + 1)
	}

	return nil
}

func (e *Engine) colon(tok token.Token) error {
	top := e.contexts.PeekRef()
	if top == nil || top.kind != pendingValue || top.colon {
		return e.syntaxError(MisplacedColon, tok.Offset, "':' outside object key/value boundary")
	}

	top.colon = true
	return nil
}

func (e *Engine) scalar(tok token.Token) (bool, error) {
	if top := e.contexts.PeekRef(); top != nil && top.kind == objectContext {
		return false, e.key(tok, top)
	}

	if err := e.enterSlot(tok, "value"); err != nil {
		return false, err
	}

	e.value = tok.Value
	return true, nil
}

// key handles a text scalar in object key position: the key is appended to
// the path and a pendingValue marker awaits its value.
func (e *Engine) key(tok token.Token, top *frame) error {
	if top.filled {
		return e.syntaxError(UnexpectedToken, tok.Offset, "object key without preceding ','")
	}

	key, ok := tok.Value.AsText()
	if !ok {
		return e.syntaxError(UnexpectedToken, tok.Offset, "object key must be text, got %s", tok.Value)
	}

	top.filled = true
	top.afterComma = false
	e.truncate(top.base + 1)
	e.path = append(e.path, key...)
	e.contexts.Push(frame{kind: pendingValue})
	return nil
}

func (e *Engine) syntaxError(kind ErrorKind, offset int64, format string, args ...any) *SyntaxError {
	return &SyntaxError{
		Kind:   kind,
		Detail: fmt.Sprintf(format, args...),
		Path:   string(e.path),
		Offset: offset,
	}
}
