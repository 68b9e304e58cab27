package tapebuild

import (
	"errors"
	"fmt"
)

// Sentinel grammar-validation errors. internal/numparse.ErrNumber and
// internal/strescape.ErrString are also surfaced by Build, wrapped the
// same way, so callers have one wrapping shape (*BuildError) regardless of
// which sub-parser rejected the token.
var (
	ErrTape  = errors.New("tapebuild: not a valid JSON document")
	ErrDepth = errors.New("tapebuild: container nesting exceeds configured max depth")
	ErrTAtom = errors.New("tapebuild: invalid literal, expected true")
	ErrFAtom = errors.New("tapebuild: invalid literal, expected false")
	ErrNAtom = errors.New("tapebuild: invalid literal, expected null")
	ErrEmpty = errors.New("tapebuild: no JSON found")
)

// BuildError decorates one of the sentinels above with the byte offset in
// the original input at which it was detected, the same shape
// creachadair/jtree's scanner.posError gives its own lexical errors.
type BuildError struct {
	Offset int
	Err    error
}

func (e *BuildError) Error() string {
	if e.Offset < 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (offset %d)", e.Err, e.Offset)
}

func (e *BuildError) Unwrap() error { return e.Err }

func fail(offset int, err error) error {
	return &BuildError{Offset: offset, Err: err}
}
