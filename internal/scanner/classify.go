// Package scanner implements the stage-1 structural scanner (spec §4.C)
// and the windowed byte-parallel primitives it is built from (spec §4.B).
package scanner

// structuralSet and whitespaceSet are byte-parallel classification tables,
// generalizing the teacher's internal/scanner/simd_constants.go
// (CharClassLookup) from an 8-way character class enum down to the two
// predicates stage-1 actually branches on.
var structuralSet [256]bool
var whitespaceSet [256]bool

func init() {
	for _, c := range []byte{'{', '}', '[', ']', ':', ','} {
		structuralSet[c] = true
	}
	for _, c := range []byte{' ', '\t', '\n', '\r'} {
		whitespaceSet[c] = true
	}
}

// IsStructural reports whether b is one of the six JSON structural
// characters (spec Glossary).
func IsStructural(b byte) bool { return structuralSet[b] }

// IsWhitespace reports whether b is JSON insignificant whitespace.
func IsWhitespace(b byte) bool { return whitespaceSet[b] }
