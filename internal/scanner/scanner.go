package scanner

import "math/bits"

// Result is stage-1's output: the ordered structural index stream (spec
// §3.2, sentinel-terminated) and the UTF-8 validity verdict.
type Result struct {
	Indices []uint32
	UTF8OK  bool
}

// Scanner holds the reusable state and carry words a stage-1 pass needs
// across the whole document, generalizing the teacher's Scanner struct
// (internal/scanner/scanner.go) from single-byte iteration to spec §4.C's
// windowed algorithm.
//
// Every Backend value currently drives the same portable kernel below.
// The retrieved teacher shipped //go:noescape declarations for
// findStructuralIndicesAVX2 et al. but the corresponding .s files were not
// present in the retrieved tree, only the self-consistent
// !amd64 && !arm64 scalar fallback. Rather than hand-author unverifiable
// AVX2/NEON assembly with no way to assemble or test it, this module keeps
// the real dispatch scaffolding (backend selection, cached once, see
// dispatch.go) and widens the teacher's own portable fallback into the
// full windowed, carry-propagating algorithm the spec describes, so it is
// correct on every architecture Go supports.
type Scanner struct {
	backend Backend
	indices []uint32
}

// New constructs a Scanner with its backend label selected once, per
// Design Notes §9.
func New() *Scanner {
	return &Scanner{backend: selectBackend()}
}

// Backend reports the label this Scanner was constructed with.
func (s *Scanner) Backend() Backend { return s.backend }

// scanState carries the four named carry words of spec §4.C across window
// iterations.
type scanState struct {
	prevEndsOddBackslash bool
	prevInsideQuote      bool
	prevEndsPseudoPred   bool
	havePending          bool
	pendingMask          uint64
	pendingBase          int
}

// Scan runs stage 1 over full, a padded buffer whose first length bytes
// are the logical document and whose remaining bytes (at least 64, per
// tapejson.padding) are guaranteed accessible and pre-filled with ASCII
// spaces by the caller's padded allocator. It returns indices in strictly
// increasing order, sentinel-terminated at length, per spec §3.2.
func (s *Scanner) Scan(full []byte, length int) (Result, error) {
	if cap(s.indices) == 0 {
		s.indices = make([]uint32, 0, length/6+8)
	}
	s.indices = s.indices[:0]

	if length == 0 {
		return Result{}, ErrEmpty
	}

	var st scanState
	st.prevEndsPseudoPred = true // virtual start behaves as if preceded by whitespace/structural
	var unescapedControlSeen bool

	for base := 0; base < length; base += windowSize {
		end := base + windowSize
		window := full[base:end] // safe: full has length+64 bytes minimum

		backslash := eqMask(window, '\\')
		oddEnds, newOddCarry := oddBackslashRunEnds(backslash, st.prevEndsOddBackslash)
		var escapedIn uint64
		if st.prevEndsOddBackslash {
			escapedIn = 1
		}
		escaped := (oddEnds << 1) | escapedIn
		st.prevEndsOddBackslash = newOddCarry

		rawQuote := eqMask(window, '"') &^ escaped
		openQuote, insideMask, newInsideCarry := quoteScope(rawQuote, st.prevInsideQuote)
		st.prevInsideQuote = newInsideCarry

		controlMask := lteqUnsignedMask(window, 0x1F) & insideMask
		if controlMask != 0 {
			unescapedControlSeen = true
		}

		structuralMask := classifyMask(window, &structuralSet) &^ insideMask
		whitespaceMask := classifyMask(window, &whitespaceSet) &^ insideMask
		wsOrStruct := structuralMask | whitespaceMask

		var pseudoCarryIn uint64
		if st.prevEndsPseudoPred {
			pseudoCarryIn = 1
		}
		candidate := (wsOrStruct << 1) | pseudoCarryIn
		pseudoMask := candidate &^ whitespaceMask &^ insideMask
		st.prevEndsPseudoPred = wsOrStruct&(1<<(windowSize-1)) != 0

		windowStructurals := structuralMask | pseudoMask | openQuote

		if st.havePending {
			flatten(&s.indices, st.pendingMask, st.pendingBase)
		}
		st.pendingMask = windowStructurals
		st.pendingBase = base
		st.havePending = true
	}
	if st.havePending {
		flatten(&s.indices, st.pendingMask, st.pendingBase)
	}

	if unescapedControlSeen {
		return Result{}, ErrUnescapedChars
	}

	utf8OK := ValidateUTF8(full[:length])
	if !utf8OK {
		return Result{Indices: s.indices, UTF8OK: false}, ErrUTF8
	}

	if st.prevInsideQuote {
		return Result{}, ErrUnclosedString
	}
	if len(s.indices) == 0 {
		return Result{}, ErrEmpty
	}

	s.indices = append(s.indices, uint32(length))
	return Result{Indices: s.indices, UTF8OK: true}, nil
}

// oddBackslashRunEnds marks, for each backslash byte in window, whether
// the run of consecutive backslashes ending at that byte (inclusive,
// counting the carried-in run from the previous window) has odd length —
// i.e. that backslash is unpaired and escapes whatever follows it (spec
// §4.C step 1).
func oddBackslashRunEnds(backslash uint64, carryOddIn bool) (oddEnds uint64, carryOddOut bool) {
	run := carryOddIn
	for i := 0; i < windowSize; i++ {
		if backslash&(1<<uint(i)) != 0 {
			run = !run
			if run {
				oddEnds |= 1 << uint(i)
			}
		} else {
			run = false
		}
	}
	return oddEnds, run
}

// quoteScope walks the unescaped-quote bitmap rawQuote and produces
// openQuote (bit set only at quote bytes that open a string) and
// insideMask (bit set for every byte, including the opening quote itself,
// that lies within an open string), per spec §4.C step 2.
func quoteScope(rawQuote uint64, carryInsideIn bool) (openQuote, insideMask uint64, carryInsideOut bool) {
	inside := carryInsideIn
	for i := 0; i < windowSize; i++ {
		if rawQuote&(1<<uint(i)) != 0 {
			if !inside {
				openQuote |= 1 << uint(i)
			}
			inside = !inside
		}
		if inside {
			insideMask |= 1 << uint(i)
		}
	}
	return openQuote, insideMask, inside
}

// flatten appends the set bits of mask as absolute offsets (base+bitpos)
// to indices, extracting them by counting trailing zeros and clearing the
// lowest set bit, per spec §4.C step 7.
func flatten(indices *[]uint32, mask uint64, base int) {
	for mask != 0 {
		bit := bits.TrailingZeros64(mask)
		*indices = append(*indices, uint32(base+bit))
		mask &= mask - 1
	}
}
