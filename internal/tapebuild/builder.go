// Package tapebuild implements the stage-2 tape builder: the
// grammar-validating state machine that turns stage 1's structural index
// stream into a flat tape of cells with backpatched container cross-links.
package tapebuild

import (
	"github.com/tapeforge/simdjson/internal/atom"
	"github.com/tapeforge/simdjson/internal/numparse"
	"github.com/tapeforge/simdjson/internal/strescape"
	"github.com/tapeforge/simdjson/internal/tape"
)

// state names the per-scope "computed goto" target: which grammar
// production to resume once the structural cursor advances within the
// current container.
type state int

const (
	stateObjectBegin state = iota
	stateObjectContinue
	stateArrayBegin
	stateArrayContinue
)

// frame is one entry of the depth-indexed return-state stack: the tape
// index of the still-open container cell and the state to resume in the
// parent scope once this one closes.
type frame struct {
	openIdx  int
	retState state
}

// Builder runs the stage-2 grammar-validating tape-emitting state machine,
// generalizing the teacher's internal/parser/parser.go
// parseObject/parseArray/parseValue recursive-descent tree builder into a
// flat, iterative tape emitter with an explicit return-state stack instead
// of Go call-stack recursion, per Design Notes §9's "depth-indexed return
// state". A Builder is reusable across parses; it holds no input-specific
// state between calls to Build.
type Builder struct {
	stack []frame
}

// Build consumes indices (stage 1's structural offset stream, sentinel
// terminated at the logical length of full) over the padded buffer full,
// appending cells to t and unescaped string bytes to scratch. maxDepth
// bounds container nesting; exceeding it fails with ErrDepth.
func (b *Builder) Build(full []byte, indices []uint32, t *tape.Tape, scratch *tape.Scratch, maxDepth int) error {
	if len(indices) < 2 {
		return fail(-1, ErrEmpty)
	}
	b.stack = b.stack[:0]
	t.Reset()

	rootIdx := t.Push(tape.TagRoot, 0)

	cursor, entered, openIdx, _, childState, err := b.consumeValue(full, indices, 0, t, scratch)
	if err != nil {
		return err
	}

	if entered {
		depth := 1
		if depth > maxDepth {
			return fail(int(indices[cursor-1]), ErrDepth)
		}
		b.stack = append(b.stack, frame{openIdx: openIdx, retState: -1})
		cur := childState

		for depth > 0 {
			if cursor >= len(indices)-1 {
				return fail(int(indices[len(indices)-1]), ErrTape)
			}
			pos := int(indices[cursor])
			c := full[pos]

			switch cur {
			case stateObjectBegin, stateObjectContinue:
				if c == '}' {
					top := b.closeScope(t, tape.TagObjectClose)
					cursor++
					depth--
					if depth > 0 {
						cur = top.retState
					}
					continue
				}
				if cur == stateObjectContinue {
					if c != ',' {
						return fail(pos, ErrTape)
					}
					cursor++
					if cursor >= len(indices)-1 {
						return fail(pos, ErrTape)
					}
					pos = int(indices[cursor])
					c = full[pos]
				}
				if c != '"' {
					return fail(pos, ErrTape)
				}
				if err := b.pushString(full, pos, t, scratch); err != nil {
					return err
				}
				cursor++
				if cursor >= len(indices)-1 {
					return fail(pos, ErrTape)
				}
				colonPos := int(indices[cursor])
				if full[colonPos] != ':' {
					return fail(colonPos, ErrTape)
				}
				cursor++

				nc, ent, oi, _, cs, verr := b.consumeValue(full, indices, cursor, t, scratch)
				if verr != nil {
					return verr
				}
				cursor = nc
				if ent {
					depth++
					if depth > maxDepth {
						return fail(int(indices[cursor-1]), ErrDepth)
					}
					b.stack = append(b.stack, frame{openIdx: oi, retState: stateObjectContinue})
					cur = cs
				} else {
					cur = stateObjectContinue
				}

			case stateArrayBegin, stateArrayContinue:
				if c == ']' {
					top := b.closeScope(t, tape.TagArrayClose)
					cursor++
					depth--
					if depth > 0 {
						cur = top.retState
					}
					continue
				}
				if cur == stateArrayContinue {
					if c != ',' {
						return fail(pos, ErrTape)
					}
					cursor++
					if cursor >= len(indices)-1 {
						return fail(pos, ErrTape)
					}
				}

				nc, ent, oi, _, cs, verr := b.consumeValue(full, indices, cursor, t, scratch)
				if verr != nil {
					return verr
				}
				cursor = nc
				if ent {
					depth++
					if depth > maxDepth {
						return fail(int(indices[cursor-1]), ErrDepth)
					}
					b.stack = append(b.stack, frame{openIdx: oi, retState: stateArrayContinue})
					cur = cs
				} else {
					cur = stateArrayContinue
				}
			}
		}
	}

	if cursor != len(indices)-1 {
		return fail(int(indices[cursor]), ErrTape)
	}
	t.PatchPayload(rootIdx, uint64(t.Len()))
	return nil
}

// closeScope pops the innermost frame, writes the close cell with payload
// pointing back to the open cell, and backpatches the open cell's payload
// to point forward to the close cell, per spec's scope_end rule.
func (b *Builder) closeScope(t *tape.Tape, closeTag tape.Tag) frame {
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	closeIdx := t.Push(closeTag, uint64(top.openIdx))
	t.PatchPayload(top.openIdx, uint64(closeIdx))
	return top
}

// consumeValue dispatches on the byte at indices[cursor], the first byte
// of the token to consume. For scalars it emits the value's tape cell(s)
// and returns the cursor advanced past just that one structural entry
// (the token's own contents are never separately structural). For
// containers it emits the open cell and reports the child state the
// caller should push a return frame for.
func (b *Builder) consumeValue(full []byte, indices []uint32, cursor int, t *tape.Tape, scratch *tape.Scratch) (newCursor int, entered bool, openIdx int, kind tape.Tag, childState state, err error) {
	pos := int(indices[cursor])
	c := full[pos]
	switch {
	case c == '"':
		if err := b.pushString(full, pos, t, scratch); err != nil {
			return 0, false, 0, 0, 0, err
		}
		return cursor + 1, false, 0, 0, 0, nil
	case c == '-' || isDigit(c):
		if err := b.pushNumber(full, pos, t); err != nil {
			return 0, false, 0, 0, 0, err
		}
		return cursor + 1, false, 0, 0, 0, nil
	case c == 't':
		if !atom.Matches(full, pos, atom.True) {
			return 0, false, 0, 0, 0, fail(pos, ErrTAtom)
		}
		t.Push(tape.TagTrue, 0)
		return cursor + 1, false, 0, 0, 0, nil
	case c == 'f':
		if !atom.Matches(full, pos, atom.False) {
			return 0, false, 0, 0, 0, fail(pos, ErrFAtom)
		}
		t.Push(tape.TagFalse, 0)
		return cursor + 1, false, 0, 0, 0, nil
	case c == 'n':
		if !atom.Matches(full, pos, atom.Null) {
			return 0, false, 0, 0, 0, fail(pos, ErrNAtom)
		}
		t.Push(tape.TagNull, 0)
		return cursor + 1, false, 0, 0, 0, nil
	case c == '{':
		idx := t.Push(tape.TagObjectOpen, 0)
		return cursor + 1, true, idx, tape.TagObjectOpen, stateObjectBegin, nil
	case c == '[':
		idx := t.Push(tape.TagArrayOpen, 0)
		return cursor + 1, true, idx, tape.TagArrayOpen, stateArrayBegin, nil
	default:
		return 0, false, 0, 0, 0, fail(pos, ErrTape)
	}
}

// pushString unescapes the string starting at full[pos] (the opening
// quote) into scratch and emits its tape cell.
func (b *Builder) pushString(full []byte, pos int, t *tape.Tape, scratch *tape.Scratch) error {
	offset := scratch.Begin()
	if _, err := strescape.Unescape(full[pos+1:], scratch); err != nil {
		return fail(pos, err)
	}
	scratch.Finish(offset)
	t.Push(tape.TagString, uint64(offset))
	return nil
}

// pushNumber parses the number starting at full[pos] and emits its tag
// cell plus raw value cell, per spec §3.3's tag+raw-value pairing.
func (b *Builder) pushNumber(full []byte, pos int, t *tape.Tape) error {
	res, err := numparse.Parse(full[pos:])
	if err != nil {
		return fail(pos, err)
	}
	switch res.Kind {
	case numparse.KindInt64:
		t.Push(tape.TagInt64, 0)
		t.PushRaw(uint64(res.I64))
	case numparse.KindUint64:
		t.Push(tape.TagUint64, 0)
		t.PushRaw(res.U64)
	default:
		t.Push(tape.TagDouble, 0)
		t.PushRaw(tape.Float64ToBits(res.F64))
	}
	return nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
