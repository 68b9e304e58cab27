package scanner

import "errors"

// Sentinel errors stage 1 can fail with (spec §3.6, restricted to the
// subset stage 1 itself can raise). The tapejson package maps these onto
// its own Error enum at the package boundary; internal/scanner has no
// dependency on tapejson to avoid an import cycle.
var (
	ErrEmpty          = errors.New("scanner: no structural characters found")
	ErrUnescapedChars = errors.New("scanner: unescaped control character inside string")
	ErrUnclosedString = errors.New("scanner: unclosed string")
	ErrUTF8           = errors.New("scanner: invalid UTF-8")
)
