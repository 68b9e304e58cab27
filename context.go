package tapejson

import (
	"sync"

	"github.com/tapeforge/simdjson/internal/scanner"
	"github.com/tapeforge/simdjson/internal/tape"
	"github.com/tapeforge/simdjson/internal/tapebuild"
)

// Config carries the tunable capacities named in spec §6.
type Config struct {
	// MaxCapacity bounds the logical byte length of any document this
	// context will accept. A parse of a longer input fails with Capacity.
	MaxCapacity int
	// MaxDepth bounds container nesting. Exceeding it fails with
	// DepthError.
	MaxDepth int
	// BatchSize is the stage-1 window size used by DocumentStream. It is
	// rounded up to streamMinBatch if smaller.
	BatchSize int
}

// streamMinBatch is the implementation-enforced minimum batch size for
// DocumentStream, per spec §6.
const streamMinBatch = 64 * 1024

// DefaultConfig returns the capacities this module uses when none are
// supplied explicitly, following the teacher's niladic-constructor idiom
// (scanner.New(), parser.New()) generalized to a config value.
func DefaultConfig() Config {
	return Config{
		MaxCapacity: 1 << 30, // 1 GiB
		MaxDepth:    1024,
		BatchSize:   1 << 20, // 1 MiB
	}
}

func (c Config) normalized() Config {
	if c.MaxCapacity <= 0 {
		c.MaxCapacity = DefaultConfig().MaxCapacity
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultConfig().MaxDepth
	}
	if c.BatchSize < streamMinBatch {
		c.BatchSize = streamMinBatch
	}
	return c
}

// ParserContext is the bundle of owned buffers spec §3.5 describes: padded
// input, the reusable stage-1 scanner and stage-2 builder, tape, and
// string scratch, plus the configured capacities. A context is exclusive
// to one goroutine at a time (spec §5) and is reusable across parses of
// documents not exceeding its current capacities, exactly like the
// teacher's pooled scanner/decoder/encoder.
type ParserContext struct {
	cfg Config

	input *paddedBuffer
	scan  *scanner.Scanner
	build tapebuild.Builder

	tape    tape.Tape
	scratch tape.Scratch

	inUse bool
}

var contextPool = sync.Pool{
	New: func() interface{} {
		return &ParserContext{}
	},
}

// New allocates (or reuses, via an internal pool) a ParserContext
// configured with cfg. Zero MaxCapacity and MaxDepth take DefaultConfig's
// values; a BatchSize below streamMinBatch, zero included, is raised to
// streamMinBatch.
func New(cfg Config) *ParserContext {
	ctx := contextPool.Get().(*ParserContext)
	ctx.cfg = cfg.normalized()
	ctx.inUse = false
	return ctx
}

// Release returns the context to the internal pool. The context and any
// Document obtained from it must not be used afterwards.
func (ctx *ParserContext) Release() {
	ctx.inUse = false
	ctx.tape.Reset()
	contextPool.Put(ctx)
}

func (ctx *ParserContext) acquire() error {
	if ctx.inUse {
		return ParserInUse
	}
	ctx.inUse = true
	return nil
}

func (ctx *ParserContext) release() {
	ctx.inUse = false
}
