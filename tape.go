package tapejson

import "github.com/tapeforge/simdjson/internal/tape"

// Tag identifies the type of value stored in a tape cell (spec §3.3). It is
// a re-export of internal/tape.Tag so the reader API in reader.go can name
// it without exposing internal/tape as a public import path.
type Tag = tape.Tag

const (
	TagRoot        = tape.TagRoot
	TagObjectOpen  = tape.TagObjectOpen
	TagObjectClose = tape.TagObjectClose
	TagArrayOpen   = tape.TagArrayOpen
	TagArrayClose  = tape.TagArrayClose
	TagString      = tape.TagString
	TagInt64       = tape.TagInt64
	TagUint64      = tape.TagUint64
	TagDouble      = tape.TagDouble
	TagTrue        = tape.TagTrue
	TagFalse       = tape.TagFalse
	TagNull        = tape.TagNull
)
