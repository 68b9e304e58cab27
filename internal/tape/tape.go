// Package tape is the shared leaf package defining the tape cell encoding
// of spec §3.3 and the string scratch buffer layout of spec §3.4. It is a
// leaf so both tapejson (the public tape reader, component G) and
// internal/tapebuild (the stage-2 builder that writes tapes, component F)
// can depend on it without depending on each other.
package tape

import (
	"encoding/binary"
	"math"
)

// Tag identifies the type of value stored in a tape cell.
type Tag byte

const (
	TagRoot        Tag = 'r'
	TagObjectOpen  Tag = '{'
	TagObjectClose Tag = '}'
	TagArrayOpen   Tag = '['
	TagArrayClose  Tag = ']'
	TagString      Tag = '"'
	TagInt64       Tag = 'l'
	TagUint64      Tag = 'u'
	TagDouble      Tag = 'd'
	TagTrue        Tag = 't'
	TagFalse       Tag = 'f'
	TagNull        Tag = 'n'
)

// payloadMask isolates the low 56 bits of a tape cell; the top byte is the
// tag.
const payloadMask = 1<<56 - 1

func makeCell(tag Tag, payload uint64) uint64 {
	return uint64(tag)<<56 | (payload & payloadMask)
}

// Tape is the dense sequence of 64-bit cells the stage-2 builder produces.
// It owns no string bytes of its own; those live in a paired Scratch.
type Tape struct {
	cells []uint64
}

// Reset truncates the tape for reuse, keeping its backing array.
func (t *Tape) Reset() { t.cells = t.cells[:0] }

// Len returns the number of cells currently on the tape.
func (t *Tape) Len() int { return len(t.cells) }

// Push appends a tag+payload cell and returns its index.
func (t *Tape) Push(tag Tag, payload uint64) int {
	idx := len(t.cells)
	t.cells = append(t.cells, makeCell(tag, payload))
	return idx
}

// PushRaw appends a bare 64-bit value cell, used immediately after a
// numeric tag cell (spec §3.3).
func (t *Tape) PushRaw(v uint64) int {
	idx := len(t.cells)
	t.cells = append(t.cells, v)
	return idx
}

// PatchPayload rewrites the payload of the cell at idx, keeping its tag.
// Used to backpatch a container-open cell once its matching close is
// known, and vice versa.
func (t *Tape) PatchPayload(idx int, payload uint64) {
	tag := t.TagAt(idx)
	t.cells[idx] = makeCell(tag, payload)
}

// TagAt returns the tag of the cell at idx.
func (t *Tape) TagAt(idx int) Tag { return Tag(t.cells[idx] >> 56) }

// PayloadAt returns the low 56 bits of the cell at idx.
func (t *Tape) PayloadAt(idx int) uint64 { return t.cells[idx] & payloadMask }

// RawAt returns the full 64-bit cell at idx, unmasked — used to read back
// the raw value cell following a numeric tag cell.
func (t *Tape) RawAt(idx int) uint64 { return t.cells[idx] }

// Float64FromBits reinterprets a raw tape cell as the IEEE-754 double it
// encodes (tag 'd').
func Float64FromBits(v uint64) float64 { return math.Float64frombits(v) }

// Float64ToBits is Float64FromBits's inverse, for the builder.
func Float64ToBits(f float64) uint64 { return math.Float64bits(f) }

// Scratch is the byte buffer strings are unescaped into, laid out per spec
// §3.4: a 4-byte little-endian length prefix, the unescaped bytes, then a
// single NUL terminator.
type Scratch struct {
	buf []byte
}

// Reset truncates the scratch buffer for reuse, growing it first if
// capacityHint exceeds what is already allocated.
func (s *Scratch) Reset(capacityHint int) {
	if cap(s.buf) < capacityHint {
		s.buf = make([]byte, 0, capacityHint)
	}
	s.buf = s.buf[:0]
}

// Begin reserves a placeholder length prefix and returns the offset at
// which the string record begins; the caller writes unescaped bytes via
// WriteByte/Write and then calls Finish with this offset.
func (s *Scratch) Begin() int {
	offset := len(s.buf)
	s.buf = append(s.buf, 0, 0, 0, 0)
	return offset
}

// WriteByte implements io.ByteWriter.
func (s *Scratch) WriteByte(b byte) error {
	s.buf = append(s.buf, b)
	return nil
}

// Write implements io.Writer.
func (s *Scratch) Write(b []byte) (int, error) {
	s.buf = append(s.buf, b...)
	return len(b), nil
}

// Finish writes the final length into the record started by Begin and
// appends the NUL terminator.
func (s *Scratch) Finish(offset int) {
	n := uint32(len(s.buf) - offset - 4)
	binary.LittleEndian.PutUint32(s.buf[offset:offset+4], n)
	s.buf = append(s.buf, 0)
}

// StringAt reads back the length-prefixed string written at offset.
func (s *Scratch) StringAt(offset int) string {
	n := binary.LittleEndian.Uint32(s.buf[offset : offset+4])
	return string(s.buf[offset+4 : offset+4+int(n)])
}

// BytesAt is StringAt without the copy, for callers that only need to
// compare bytes (e.g. the reader's allocation-free MoveToKey).
func (s *Scratch) BytesAt(offset int) []byte {
	n := binary.LittleEndian.Uint32(s.buf[offset : offset+4])
	return s.buf[offset+4 : offset+4+int(n)]
}
