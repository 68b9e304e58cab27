package tapejson

import (
	"github.com/tapeforge/simdjson/internal/numparse"
	"github.com/tapeforge/simdjson/internal/ondemand"
	"github.com/tapeforge/simdjson/internal/scanner"
	"github.com/tapeforge/simdjson/internal/strescape"
)

// DocumentStream consumes data as a sequence of whitespace-separated
// top-level JSON values (spec §4.H), scanning it in forward-only sliding
// batches instead of requiring the whole input's structural index stream
// up front. When the window edge falls short of the end of data, the last
// top-level value in the window is held back and the next batch starts at
// its first byte; a window with no complete value before its edge doubles
// and is re-scanned from the same start. A document once yielded is never
// rescanned.
type DocumentStream struct {
	data       []byte
	batchSize  int
	batchStart int
	scan       *scanner.Scanner
	reader     *ondemand.Reader
	finished   bool
	err        error
}

// NewDocumentStream constructs a stream over data using cfg's BatchSize
// (raised to the implementation minimum per spec §6 if smaller).
func NewDocumentStream(data []byte, cfg Config) *DocumentStream {
	cfg = cfg.normalized()
	return &DocumentStream{
		data:      data,
		batchSize: cfg.BatchSize,
		scan:      scanner.New(),
	}
}

// Next yields the next document's Iterator, or (nil, nil) once the stream
// is exhausted — spec §4.H's "EMPTY is end-of-stream, not an error."
// Once an error occurs it is sticky: every later call returns it again.
func (s *DocumentStream) Next() (*ondemand.Iterator, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.finished {
		return nil, nil
	}

	if s.reader == nil || s.reader.AtEnd() {
		if s.batchStart >= len(s.data) {
			s.finished = true
			return nil, nil
		}
		if err := s.loadBatch(); err != nil {
			s.err = err
			return nil, err
		}
		if s.reader == nil || s.reader.AtEnd() {
			s.finished = true
			return nil, nil
		}
	}
	return s.reader.Next(), nil
}

// loadBatch scans a fresh window starting at batchStart. It walks every
// complete top-level value the window contains (discarding each via
// Skip, since this is a validity probe, not real consumption) to find the
// byte offset just past the last one. If more of data remains beyond the
// window, the last value is dropped from the batch (it may be cut by the
// window edge) and batchStart moves to its first byte; when that leaves no
// value, or the scan or the walk fails in a way the cut could cause, the
// window doubles and the probe restarts from batchStart without ever
// re-scanning bytes already folded into a previous document. A malformed
// value after at least one good one ends the batch at that value, so the
// good ones are yielded first and the error comes from the next batch.
func (s *DocumentStream) loadBatch() error {
	window := s.batchSize
	for {
		end := s.batchStart + window
		truncated := end < len(s.data)
		if !truncated {
			end = len(s.data)
		}
		chunk := s.data[s.batchStart:end]

		buf, err := newPaddedBuffer(len(chunk))
		if err != nil {
			return err
		}
		if err := buf.reset(chunk); err != nil {
			return err
		}

		result, serr := s.scan.Scan(buf.Full(), len(chunk))
		if serr == scanner.ErrEmpty {
			if truncated {
				window *= 2
				continue
			}
			s.reader = ondemand.NewReader(buf.Bytes(), []uint32{uint32(len(chunk))})
			return nil
		}
		if truncated && (serr == scanner.ErrUnclosedString || serr == scanner.ErrUTF8) {
			window *= 2
			continue
		}
		if serr != nil {
			return translateScanErr(serr)
		}

		probe := ondemand.NewReader(buf.Bytes(), result.Indices)
		goodBytePos := 0
		lastStart := 0
		grow := false
		for !probe.AtEnd() {
			lastStart = probe.BytePos()
			if err := probe.Next().Skip(); err != nil {
				if truncated {
					grow = true
					break
				}
				if goodBytePos == 0 {
					return translateOndemandErr(err)
				}
				break
			}
			goodBytePos = probe.BytePos()
		}
		if truncated && !grow {
			// the last value may continue past the window edge
			goodBytePos = lastStart
			grow = goodBytePos == 0
		}
		if grow {
			window *= 2
			continue
		}

		trimmed := make([]uint32, 0, len(result.Indices))
		for _, idx := range result.Indices {
			if int(idx) >= goodBytePos {
				break
			}
			trimmed = append(trimmed, idx)
		}
		trimmed = append(trimmed, uint32(goodBytePos))

		s.batchStart += goodBytePos
		s.reader = ondemand.NewReader(buf.Bytes(), trimmed)
		return nil
	}
}

// translateOndemandErr maps internal/ondemand's sentinel errors onto the
// public Error taxonomy. The on-demand path does not carry byte offsets on
// its errors (unlike internal/tapebuild's), so these return unwrapped.
func translateOndemandErr(err error) error {
	switch err {
	case ondemand.ErrOutOfOrder:
		return OutOfOrderIteration
	case ondemand.ErrIncorrectType:
		return IncorrectType
	case ondemand.ErrTape:
		return TapeError
	case ondemand.ErrTAtom:
		return TAtomError
	case ondemand.ErrFAtom:
		return FAtomError
	case ondemand.ErrNAtom:
		return NAtomError
	case numparse.ErrNumber:
		return NumberError
	case strescape.ErrString:
		return StringError
	default:
		return UnexpectedError
	}
}
