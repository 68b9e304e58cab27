// Package ondemand implements spec §4.H's tape-free traversal model: typed
// getters read directly off the stage-1 structural index stream, advancing
// a shared cursor instead of consuming a stage-2 tape. It generalizes the
// teacher's position-and-lookahead bookkeeping (internal/parser/parser.go's
// Parser.pos) to a lazily-materialized, borrow-the-parent's-cursor design,
// following original_source/src/generic/stage2_streaming.h's "no tape,
// walk forward, backpatch nothing" model.
package ondemand

import (
	"github.com/tapeforge/simdjson/internal/atom"
	"github.com/tapeforge/simdjson/internal/numparse"
	"github.com/tapeforge/simdjson/internal/strescape"
)

// cursor is the mutable position every Iterator, ObjectIter, and ArrayIter
// spawned from one traversal shares by pointer. depth is the absolute
// container nesting depth of the byte the cursor currently points at,
// maintained by every open/close it walks over, whether via a typed
// GetObject/GetArray or the generic finishSlot skip path.
type cursor struct {
	full    []byte
	indices []uint32
	pos     int
	depth   int
	strbuf  []byte
}

func (cs *cursor) structPos() int { return int(cs.indices[cs.pos]) }
func (cs *cursor) byteAt() byte   { return cs.full[cs.structPos()] }
func (cs *cursor) atEnd() bool    { return cs.pos >= len(cs.indices)-1 }

// finishSlot discards whatever remains of the value that started at
// slotStartPos, whether it was never touched, partially descended into via
// a container sub-iterator, or already fully consumed (a no-op in that
// case). holderDepth is the depth of the container directly holding this
// slot, i.e. cs.depth's value at the moment the slot's own first token was
// (or would have been) consumed.
func (cs *cursor) finishSlot(slotStartPos, holderDepth int) error {
	if cs.pos == slotStartPos {
		if cs.atEnd() {
			return ErrTape
		}
		switch cs.byteAt() {
		case '{', '[':
			cs.depth++
			cs.pos++
		case '"':
			if err := cs.skipString(); err != nil {
				return err
			}
			return nil
		default:
			cs.pos++
			return nil
		}
	}
	for cs.depth > holderDepth {
		if cs.atEnd() {
			return ErrTape
		}
		switch cs.byteAt() {
		case '{', '[':
			cs.depth++
			cs.pos++
		case '}', ']':
			cs.depth--
			cs.pos++
		case '"':
			if err := cs.skipString(); err != nil {
				return err
			}
		default:
			cs.pos++
		}
	}
	return nil
}

func (cs *cursor) skipString() error {
	if _, err := strescape.Unescape(cs.full[cs.structPos()+1:], discardSink{}); err != nil {
		return err
	}
	cs.pos++
	return nil
}

type discardSink struct{}

func (discardSink) Write(b []byte) (int, error) { return len(b), nil }
func (discardSink) WriteByte(byte) error        { return nil }

// Reader walks a stage-1 structural index stream as a sequence of
// concatenated top-level JSON values, the model DocumentStream needs:
// unlike Iterator, it has no enclosing value of its own.
type Reader struct {
	cs *cursor
}

// NewReader constructs a Reader over full's structural index stream.
// indices must end with the sentinel entry internal/scanner.Scan appends.
func NewReader(full []byte, indices []uint32) *Reader {
	return &Reader{cs: &cursor{full: full, indices: indices}}
}

// AtEnd reports whether every structural entry has been consumed.
func (r *Reader) AtEnd() bool { return r.cs.atEnd() }

// BytePos returns the absolute byte offset within full the cursor is
// currently positioned at (the end of the buffer if AtEnd).
func (r *Reader) BytePos() int {
	if r.cs.atEnd() {
		return len(r.cs.full)
	}
	return r.cs.structPos()
}

// Next returns an Iterator over the value starting at the cursor. The
// caller must fully read or Skip it (or a later container's traversal
// will do so implicitly) before calling Next again.
func (r *Reader) Next() *Iterator {
	return &Iterator{cs: r.cs, startPos: r.cs.pos, holderDepth: r.cs.depth}
}

// New constructs a stand-alone Iterator over a single document's
// structural index stream, equivalent to NewReader(full, indices).Next().
func New(full []byte, indices []uint32) *Iterator {
	return NewReader(full, indices).Next()
}

// Iterator is a lazy, read-once handle to one JSON value. No tape cell is
// ever built for it; each typed getter classifies the byte at the cursor,
// dispatches to the same leaf parsers stage 2 uses, and advances the
// shared cursor past the value it just read.
type Iterator struct {
	cs          *cursor
	startPos    int
	holderDepth int
}

// checkFresh reports ErrOutOfOrder if the shared cursor has moved past
// this Iterator's value already, whether because it was already read,
// explicitly skipped, or because a sibling's traversal skipped over it.
func (it *Iterator) checkFresh() error {
	if it.cs.pos != it.startPos {
		return ErrOutOfOrder
	}
	return nil
}

// Type classifies the byte at the cursor without consuming it: one of
// '{', '[', '"', 't', 'f', 'n', or a digit/'-' for a number.
func (it *Iterator) Type() (byte, error) {
	if err := it.checkFresh(); err != nil {
		return 0, err
	}
	return it.cs.byteAt(), nil
}

// Skip discards this value, whatever it is, without materializing it. A
// no-op if the value was already fully read.
func (it *Iterator) Skip() error {
	return it.cs.finishSlot(it.startPos, it.holderDepth)
}

// Int64 reads the value as a signed 64-bit integer. ErrIncorrectType if it
// is not an integer literal that fits in int64.
func (it *Iterator) Int64() (int64, error) {
	if err := it.checkFresh(); err != nil {
		return 0, err
	}
	if b := it.cs.byteAt(); b != '-' && (b < '0' || b > '9') {
		return 0, ErrIncorrectType
	}
	res, err := numparse.Parse(it.cs.full[it.cs.structPos():])
	if err != nil {
		return 0, err
	}
	if res.Kind != numparse.KindInt64 {
		return 0, ErrIncorrectType
	}
	it.cs.pos++
	return res.I64, nil
}

// Uint64 reads the value as an unsigned 64-bit integer. ErrIncorrectType
// if it is not a non-negative integer literal too large for int64.
func (it *Iterator) Uint64() (uint64, error) {
	if err := it.checkFresh(); err != nil {
		return 0, err
	}
	if b := it.cs.byteAt(); b != '-' && (b < '0' || b > '9') {
		return 0, ErrIncorrectType
	}
	res, err := numparse.Parse(it.cs.full[it.cs.structPos():])
	if err != nil {
		return 0, err
	}
	if res.Kind != numparse.KindUint64 {
		return 0, ErrIncorrectType
	}
	it.cs.pos++
	return res.U64, nil
}

// Float64 reads the value as a double. ErrIncorrectType unless the number
// parser classifies the literal as a double: one with a fraction or
// exponent, -0, or an integer outside both 64-bit integer ranges.
func (it *Iterator) Float64() (float64, error) {
	if err := it.checkFresh(); err != nil {
		return 0, err
	}
	if b := it.cs.byteAt(); b != '-' && (b < '0' || b > '9') {
		return 0, ErrIncorrectType
	}
	res, err := numparse.Parse(it.cs.full[it.cs.structPos():])
	if err != nil {
		return 0, err
	}
	if res.Kind != numparse.KindDouble {
		return 0, ErrIncorrectType
	}
	it.cs.pos++
	return res.F64, nil
}

// String reads and unescapes the value. ErrIncorrectType if it is not a
// string. The returned string is a fresh copy, safe to retain past the
// next call into this traversal.
func (it *Iterator) String() (string, error) {
	if err := it.checkFresh(); err != nil {
		return "", err
	}
	if it.cs.byteAt() != '"' {
		return "", ErrIncorrectType
	}
	it.cs.strbuf = it.cs.strbuf[:0]
	if _, err := strescape.Unescape(it.cs.full[it.cs.structPos()+1:], (*strbufSink)(&it.cs.strbuf)); err != nil {
		return "", err
	}
	it.cs.pos++
	return string(it.cs.strbuf), nil
}

// Bool reads the value as a boolean literal. ErrIncorrectType for anything
// else.
func (it *Iterator) Bool() (bool, error) {
	if err := it.checkFresh(); err != nil {
		return false, err
	}
	switch it.cs.byteAt() {
	case 't':
		if !atom.Matches(it.cs.full, it.cs.structPos(), atom.True) {
			return false, ErrTAtom
		}
		it.cs.pos++
		return true, nil
	case 'f':
		if !atom.Matches(it.cs.full, it.cs.structPos(), atom.False) {
			return false, ErrFAtom
		}
		it.cs.pos++
		return false, nil
	}
	return false, ErrIncorrectType
}

// IsNull reports whether the value is the null literal. Unlike the other
// getters it does not consume a non-null value, so a caller can probe for
// null before falling back to a typed getter.
func (it *Iterator) IsNull() (bool, error) {
	if err := it.checkFresh(); err != nil {
		return false, err
	}
	if it.cs.byteAt() != 'n' {
		return false, nil
	}
	if !atom.Matches(it.cs.full, it.cs.structPos(), atom.Null) {
		return false, ErrNAtom
	}
	it.cs.pos++
	return true, nil
}

// GetObject enters the value as an object. ErrIncorrectType if it is not
// one.
func (it *Iterator) GetObject() (*ObjectIter, error) {
	if err := it.checkFresh(); err != nil {
		return nil, err
	}
	if it.cs.byteAt() != '{' {
		return nil, ErrIncorrectType
	}
	holderDepth := it.cs.depth
	it.cs.depth++
	it.cs.pos++
	return &ObjectIter{cs: it.cs, holderDepth: holderDepth}, nil
}

// GetArray enters the value as an array. ErrIncorrectType if it is not
// one.
func (it *Iterator) GetArray() (*ArrayIter, error) {
	if err := it.checkFresh(); err != nil {
		return nil, err
	}
	if it.cs.byteAt() != '[' {
		return nil, ErrIncorrectType
	}
	holderDepth := it.cs.depth
	it.cs.depth++
	it.cs.pos++
	return &ArrayIter{cs: it.cs, holderDepth: holderDepth}, nil
}

// ObjectIter yields an object's key/value pairs in document order,
// forward-only. It borrows its parent Iterator's cursor.
type ObjectIter struct {
	cs              *cursor
	holderDepth     int
	pendingStartPos int
	pendingValid    bool
	done            bool
}

// Next returns the next key and a fresh Iterator over its value, or ok ==
// false once the object is exhausted. A previously-returned value
// Iterator that was left unread is skipped automatically here, per spec
// §4.H's forward-only-skip rule.
func (o *ObjectIter) Next() (string, *Iterator, bool, error) {
	if o.done {
		return "", nil, false, nil
	}
	if o.pendingValid {
		if err := o.cs.finishSlot(o.pendingStartPos, o.holderDepth+1); err != nil {
			return "", nil, false, err
		}
		o.pendingValid = false
	}
	if o.cs.atEnd() {
		return "", nil, false, ErrTape
	}
	switch o.cs.byteAt() {
	case '}':
		o.cs.pos++
		o.cs.depth--
		o.done = true
		return "", nil, false, nil
	case ',':
		o.cs.pos++
		if o.cs.atEnd() {
			return "", nil, false, ErrTape
		}
	}
	if o.cs.byteAt() != '"' {
		return "", nil, false, ErrTape
	}
	var keyBuf []byte
	if _, err := strescape.Unescape(o.cs.full[o.cs.structPos()+1:], (*strbufSink)(&keyBuf)); err != nil {
		return "", nil, false, err
	}
	key := string(keyBuf)
	o.cs.pos++
	if o.cs.atEnd() || o.cs.byteAt() != ':' {
		return "", nil, false, ErrTape
	}
	o.cs.pos++
	if o.cs.atEnd() {
		return "", nil, false, ErrTape
	}
	valueStart := o.cs.pos
	o.pendingStartPos = valueStart
	o.pendingValid = true
	return key, &Iterator{cs: o.cs, startPos: valueStart, holderDepth: o.holderDepth + 1}, true, nil
}

// ArrayIter yields an array's elements in document order, forward-only. It
// borrows its parent Iterator's cursor.
type ArrayIter struct {
	cs              *cursor
	holderDepth     int
	pendingStartPos int
	pendingValid    bool
	done            bool
}

// Next returns a fresh Iterator over the next element, or ok == false once
// the array is exhausted. A previously-returned element left unread is
// skipped automatically here.
func (a *ArrayIter) Next() (*Iterator, bool, error) {
	if a.done {
		return nil, false, nil
	}
	if a.pendingValid {
		if err := a.cs.finishSlot(a.pendingStartPos, a.holderDepth+1); err != nil {
			return nil, false, err
		}
		a.pendingValid = false
	}
	if a.cs.atEnd() {
		return nil, false, ErrTape
	}
	switch a.cs.byteAt() {
	case ']':
		a.cs.pos++
		a.cs.depth--
		a.done = true
		return nil, false, nil
	case ',':
		a.cs.pos++
		if a.cs.atEnd() {
			return nil, false, ErrTape
		}
	}
	valueStart := a.cs.pos
	a.pendingStartPos = valueStart
	a.pendingValid = true
	return &Iterator{cs: a.cs, startPos: valueStart, holderDepth: a.holderDepth + 1}, true, nil
}

// strbufSink adapts a *[]byte to strescape.Unescape's io.Writer/io.ByteWriter
// sink requirement without depending on internal/tape.Scratch, which would
// otherwise pull this package toward the tape-building side of the module.
type strbufSink []byte

func (s *strbufSink) Write(b []byte) (int, error) {
	*s = append(*s, b...)
	return len(b), nil
}

func (s *strbufSink) WriteByte(b byte) error {
	*s = append(*s, b)
	return nil
}
