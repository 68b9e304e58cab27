package tapejson

import "fmt"

// Error is the unified error taxonomy every fallible operation in this
// module returns. It is a plain value, never a panic or a typed exception
// hierarchy — callers consult an error before reading a result, the same
// way every other Go API does.
type Error int

const (
	Success Error = iota
	Capacity
	MemAlloc
	TapeError
	DepthError
	StringError
	TAtomError
	FAtomError
	NAtomError
	NumberError
	UTF8Error
	UnescapedChars
	UnclosedString
	Empty
	UnexpectedError
	Uninitialized
	IncorrectType
	NoSuchField
	NumberOutOfRange
	IndexOutOfBounds
	ParserInUse
	OutOfOrderIteration
)

var errorText = [...]string{
	Success:              "success",
	Capacity:             "input exceeds configured max capacity",
	MemAlloc:             "memory allocation failed",
	TapeError:            "tape is not a valid JSON document",
	DepthError:           "container nesting exceeds configured max depth",
	StringError:          "invalid string escape or control character",
	TAtomError:           "invalid literal, expected true",
	FAtomError:           "invalid literal, expected false",
	NAtomError:           "invalid literal, expected null",
	NumberError:          "invalid number literal",
	UTF8Error:            "invalid UTF-8 in input",
	UnescapedChars:       "unescaped control character inside string",
	UnclosedString:       "unclosed string",
	Empty:                "no JSON found",
	UnexpectedError:      "unexpected internal error",
	Uninitialized:        "parser context not initialized",
	IncorrectType:        "value has an incompatible type for this accessor",
	NoSuchField:          "object has no such field",
	NumberOutOfRange:     "number out of range for the requested type",
	IndexOutOfBounds:     "index out of bounds",
	ParserInUse:          "parser context already in use",
	OutOfOrderIteration:  "value read out of order",
}

// Error implements the error interface. The mapping from Error to message
// is stable, per spec's user-visible message table requirement.
func (e Error) Error() string {
	if int(e) < 0 || int(e) >= len(errorText) {
		return "simdjson: unknown error"
	}
	return "simdjson: " + errorText[e]
}

// posError decorates an Error with the byte offset in the input at which
// it was detected, the way creachadair/jtree's scanner.posError does for
// its own lexical errors.
type posError struct {
	pos int
	err Error
}

func (p posError) Error() string {
	return fmt.Sprintf("%s (offset %d)", p.err.Error(), p.pos)
}

func (p posError) Unwrap() error { return p.err }

// AtOffset wraps err with the byte offset at which it occurred. Passing a
// negative offset omits the position (used when no single byte is
// responsible, e.g. EMPTY).
func AtOffset(err Error, offset int) error {
	if offset < 0 {
		return err
	}
	return posError{pos: offset, err: err}
}

// Is reports whether err is the given Error value, either directly or as
// the Error inside a posError (what AtOffset returns). Other wrappers are
// not unwrapped.
func Is(err error, target Error) bool {
	if err == nil {
		return target == Success
	}
	if e, ok := err.(Error); ok {
		return e == target
	}
	if pe, ok := err.(posError); ok {
		return pe.err == target
	}
	return false
}
