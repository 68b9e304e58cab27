package ondemand

import "errors"

// Sentinel errors for the on-demand (tape-free) traversal model. Mirrors
// internal/tapebuild's sentinel-error shape; this package cannot depend on
// tapejson's Error enum without creating an import cycle, since tapejson
// depends on this package for DocumentStream.
var (
	ErrOutOfOrder    = errors.New("ondemand: value read out of order")
	ErrIncorrectType = errors.New("ondemand: incorrect type for this accessor")
	ErrTape          = errors.New("ondemand: malformed document")
	ErrTAtom         = errors.New("ondemand: invalid literal, expected true")
	ErrFAtom         = errors.New("ondemand: invalid literal, expected false")
	ErrNAtom         = errors.New("ondemand: invalid literal, expected null")
)
