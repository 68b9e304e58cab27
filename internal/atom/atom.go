// Package atom implements the literal-matching stage-1's structural
// scanner only marks the *first* byte of, shared between the stage-2 tape
// builder and the on-demand iterator so the two token-consuming call
// sites can't drift apart on what counts as a valid terminator.
package atom

import (
	"go4.org/mem"

	"github.com/tapeforge/simdjson/internal/scanner"
)

// True, False, and Null are the three JSON literal spellings.
var (
	True  = mem.S("true")
	False = mem.S("false")
	Null  = mem.S("null")
)

// Matches reports whether full has want's bytes starting at pos, using
// go4.org/mem for an allocation-free comparison, per creachadair/jtree's
// scanner.go constant-verification pattern (mem.B(s.buf.Bytes()).Equal
// (want)). It also requires the byte immediately following the literal to
// be whitespace, a structural character, or past full's logical end,
// mirroring internal/numparse/number.go's isNumberContinuation
// trailing-garbage check: stage 1 only records a (pseudo-)structural
// index at the literal's first byte, so nothing else would ever catch a
// token like "truex" or "nullable" running past the expected spelling.
func Matches(full []byte, pos int, want mem.RO) bool {
	n := want.Len()
	if pos+n > len(full) {
		return false
	}
	if !mem.B(full[pos : pos+n]).Equal(want) {
		return false
	}
	if pos+n == len(full) {
		return true
	}
	next := full[pos+n]
	return scanner.IsWhitespace(next) || scanner.IsStructural(next)
}
