package cram

import "github.com/singerma/cramtools/itf8"

// ReadITF8 and WriteITF8 are re-exported from the itf8 package so that
// callers of this package never need an extra import for the wire
// encoding used throughout the container and compression headers.
var (
	ReadITF8  = itf8.ReadITF8
	WriteITF8 = itf8.WriteITF8
)
