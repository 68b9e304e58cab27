package tapejson

import (
	"errors"

	"github.com/tapeforge/simdjson/internal/numparse"
	"github.com/tapeforge/simdjson/internal/scanner"
	"github.com/tapeforge/simdjson/internal/strescape"
	"github.com/tapeforge/simdjson/internal/tapebuild"
)

// Parse runs the full stage-1/stage-2 pipeline over data using ctx and
// returns a Document valid until ctx's next Parse or Release. ctx may be
// reused across many calls; each call invalidates any Document from a
// previous one.
func Parse(ctx *ParserContext, data []byte) (*Document, error) {
	if err := ctx.acquire(); err != nil {
		return nil, err
	}
	defer ctx.release()

	if len(data) > ctx.cfg.MaxCapacity {
		return nil, Capacity
	}

	if ctx.input == nil {
		buf, err := newPaddedBuffer(len(data))
		if err != nil {
			return nil, err
		}
		ctx.input = buf
	}
	if err := ctx.input.reset(data); err != nil {
		return nil, err
	}

	if ctx.scan == nil {
		ctx.scan = scanner.New()
	}
	result, err := ctx.scan.Scan(ctx.input.Full(), len(data))
	if err != nil {
		return nil, translateScanErr(err)
	}

	ctx.scratch.Reset(len(data))
	if err := ctx.build.Build(ctx.input.Full(), result.Indices, &ctx.tape, &ctx.scratch, ctx.cfg.MaxDepth); err != nil {
		return nil, translateBuildErr(err)
	}

	return ctx.Document(), nil
}

// ParseString is Parse for a string input. The padded buffer still copies
// the bytes (spec §6's "if the caller cannot guarantee padding" fallback
// applies unconditionally here, since a Go string's backing array is
// never writable in place).
func ParseString(ctx *ParserContext, data string) (*Document, error) {
	return Parse(ctx, []byte(data))
}

// Valid reports whether data is well-formed JSON, using a throwaway
// context.
func Valid(data []byte) bool {
	ctx := New(DefaultConfig())
	defer ctx.Release()
	_, err := Parse(ctx, data)
	return err == nil
}

// translateScanErr maps internal/scanner's sentinel errors onto the
// public Error taxonomy. Stage 1 does not currently carry a byte offset
// on its errors, so these are returned unwrapped (AtOffset with a
// negative offset is a no-op, per errors.go).
func translateScanErr(err error) error {
	switch err {
	case scanner.ErrEmpty:
		return Empty
	case scanner.ErrUnescapedChars:
		return UnescapedChars
	case scanner.ErrUnclosedString:
		return UnclosedString
	case scanner.ErrUTF8:
		return UTF8Error
	default:
		return UnexpectedError
	}
}

// translateBuildErr maps an internal/tapebuild.BuildError (itself possibly
// wrapping an internal/numparse or internal/strescape sentinel) onto the
// public Error taxonomy, preserving the offset via AtOffset.
func translateBuildErr(err error) error {
	var be *tapebuild.BuildError
	if !errors.As(err, &be) {
		return UnexpectedError
	}
	var code Error
	switch {
	case errors.Is(be.Err, tapebuild.ErrTape):
		code = TapeError
	case errors.Is(be.Err, tapebuild.ErrDepth):
		code = DepthError
	case errors.Is(be.Err, tapebuild.ErrTAtom):
		code = TAtomError
	case errors.Is(be.Err, tapebuild.ErrFAtom):
		code = FAtomError
	case errors.Is(be.Err, tapebuild.ErrNAtom):
		code = NAtomError
	case errors.Is(be.Err, tapebuild.ErrEmpty):
		code = Empty
	case errors.Is(be.Err, numparse.ErrNumber):
		code = NumberError
	case errors.Is(be.Err, strescape.ErrString):
		code = StringError
	default:
		code = UnexpectedError
	}
	return AtOffset(code, be.Offset)
}
