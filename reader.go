package tapejson

import (
	"go4.org/mem"

	"github.com/tapeforge/simdjson/internal/tape"
)

// Document is a built tape paired with its string scratch buffer: the DOM
// view of spec §4.G. It is valid until the owning ParserContext parses
// another document or is released.
type Document struct {
	tape    *tape.Tape
	scratch *tape.Scratch
}

// Document returns the DOM view of the tape most recently built by ctx.
func (ctx *ParserContext) Document() *Document {
	return &Document{tape: &ctx.tape, scratch: &ctx.scratch}
}

// Root returns a cursor positioned at the document's single top-level
// value (tape index 1; index 0 holds the root sentinel cell).
func (d *Document) Root() Cursor {
	return Cursor{doc: d, idx: 1}
}

// Cursor is the `(tape_index, current_tag)` pair spec §4.G names, plus the
// chain of enclosing container open-cell indices needed to implement Up
// and to bound Next/Prev/MoveToKey/MoveToIndex to the current scope. It is
// an immutable value: every navigation method returns a new Cursor rather
// than mutating the receiver, so multiple live cursors over one Document
// never interfere with each other.
type Cursor struct {
	doc  *Document
	idx  int
	path []int // ancestor container open-cell indices, innermost last
}

// Type returns the tag at the cursor, O(1).
func (c Cursor) Type() Tag { return c.doc.tape.TagAt(c.idx) }

// Down is valid only when Type is TagObjectOpen or TagArrayOpen. It
// advances to the first child and reports false if the container is
// empty, per spec §4.G.
func (c Cursor) Down() (Cursor, bool) {
	tag := c.Type()
	if tag != TagObjectOpen && tag != TagArrayOpen {
		return c, false
	}
	closeIdx := int(c.doc.tape.PayloadAt(c.idx))
	firstChild := c.idx + 1
	if firstChild == closeIdx {
		return c, false
	}
	path := append(append([]int(nil), c.path...), c.idx)
	return Cursor{doc: c.doc, idx: firstChild, path: path}, true
}

// Up moves the cursor to the parent container's cell. Undefined (reports
// false, cursor unchanged) at the document root.
func (c Cursor) Up() (Cursor, bool) {
	if len(c.path) == 0 {
		return c, false
	}
	parentOpen := c.path[len(c.path)-1]
	return Cursor{doc: c.doc, idx: parentOpen, path: c.path[:len(c.path)-1]}, true
}

// Next moves to the next sibling, skipping a numeric cell's trailing raw
// value cell. Reports false if there is no next sibling (including at the
// document root, which has exactly one value and so no siblings).
func (c Cursor) Next() (Cursor, bool) {
	if len(c.path) == 0 {
		return c, false
	}
	nextIdx := c.idx + c.doc.cellWidth(c.idx)
	closeIdx := int(c.doc.tape.PayloadAt(c.path[len(c.path)-1]))
	if nextIdx >= closeIdx {
		return c, false
	}
	return Cursor{doc: c.doc, idx: nextIdx, path: c.path}, true
}

// Prev is Next's symmetric counterpart. Since tape cells are
// variable-width, finding the preceding sibling requires an O(n) rescan
// from the start of the current scope, matching the O(n) cost spec §4.G
// already accepts for MoveToIndex. Undefined (false) at scope start.
func (c Cursor) Prev() (Cursor, bool) {
	if len(c.path) == 0 {
		return c, false
	}
	start := c.path[len(c.path)-1] + 1
	if c.idx <= start {
		return c, false
	}
	prevIdx := start
	for {
		next := prevIdx + c.doc.cellWidth(prevIdx)
		if next == c.idx {
			return Cursor{doc: c.doc, idx: prevIdx, path: c.path}, true
		}
		if next > c.idx {
			return c, false
		}
		prevIdx = next
	}
}

// MoveToKey is valid only at a TagObjectOpen cell. It performs an O(n)
// linear scan for an exact key match, using go4.org/mem for an
// allocation-free comparison against the scratch buffer's raw bytes
// (matching internal/atom.Matches / creachadair/jtree's comparison
// pattern). On a miss the cursor is restored unchanged.
func (c Cursor) MoveToKey(key string) (Cursor, bool) {
	if c.Type() != TagObjectOpen {
		return c, false
	}
	child, ok := c.Down()
	if !ok {
		return c, false
	}
	want := mem.S(key)
	for {
		if child.Type() != TagString {
			return c, false
		}
		keyOff := int(child.doc.tape.PayloadAt(child.idx))
		if mem.B(child.doc.scratch.BytesAt(keyOff)).Equal(want) {
			val, ok := child.Next()
			if !ok {
				return c, false
			}
			return val, true
		}
		val, ok := child.Next()
		if !ok {
			return c, false
		}
		nextKey, ok := val.Next()
		if !ok {
			return c, false
		}
		child = nextKey
	}
}

// MoveToIndex is valid only at a TagArrayOpen cell; it is an O(n)
// traversal to the i-th element, per spec §4.G.
func (c Cursor) MoveToIndex(i int) (Cursor, bool) {
	if c.Type() != TagArrayOpen || i < 0 {
		return c, false
	}
	cur, ok := c.Down()
	if !ok {
		return c, false
	}
	for n := 0; n < i; n++ {
		cur, ok = cur.Next()
		if !ok {
			return c, false
		}
	}
	return cur, true
}

// Int64 returns the cursor's value as a signed integer. IncorrectType if
// the cell is not TagInt64.
func (c Cursor) Int64() (int64, error) {
	if c.Type() != TagInt64 {
		return 0, IncorrectType
	}
	return int64(c.doc.tape.RawAt(c.idx + 1)), nil
}

// Uint64 returns the cursor's value as an unsigned integer. IncorrectType
// if the cell is not TagUint64.
func (c Cursor) Uint64() (uint64, error) {
	if c.Type() != TagUint64 {
		return 0, IncorrectType
	}
	return c.doc.tape.RawAt(c.idx + 1), nil
}

// Float64 returns the cursor's value as a double. IncorrectType if the
// cell is not TagDouble.
func (c Cursor) Float64() (float64, error) {
	if c.Type() != TagDouble {
		return 0, IncorrectType
	}
	return tape.Float64FromBits(c.doc.tape.RawAt(c.idx + 1)), nil
}

// String returns the cursor's unescaped string contents. IncorrectType if
// the cell is not TagString.
func (c Cursor) String() (string, error) {
	if c.Type() != TagString {
		return "", IncorrectType
	}
	off := int(c.doc.tape.PayloadAt(c.idx))
	return c.doc.scratch.StringAt(off), nil
}

// Bool returns the cursor's boolean value. IncorrectType for any other
// cell.
func (c Cursor) Bool() (bool, error) {
	switch c.Type() {
	case TagTrue:
		return true, nil
	case TagFalse:
		return false, nil
	}
	return false, IncorrectType
}

// IsNull reports whether the cursor is positioned at a TagNull cell.
func (c Cursor) IsNull() bool { return c.Type() == TagNull }

// cellWidth returns how many tape cells the value at idx occupies:
// numeric cells carry a trailing raw-value cell (spec §3.3); container
// cells occupy everything up to and including their matching close cell;
// everything else is a single cell.
func (d *Document) cellWidth(idx int) int {
	switch d.tape.TagAt(idx) {
	case TagInt64, TagUint64, TagDouble:
		return 2
	case TagObjectOpen, TagArrayOpen:
		return int(d.tape.PayloadAt(idx)) - idx + 1
	default:
		return 1
	}
}
