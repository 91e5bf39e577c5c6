package cram

import "github.com/singerma/cramtools/cramerr"

// Error kinds, re-exported from cramerr so that callers of this package
// never need to import the internal taxonomy package directly.
const (
	TruncatedStream     = cramerr.TruncatedStream
	MalformedStream     = cramerr.MalformedStream
	UnsupportedEncoding = cramerr.UnsupportedEncoding
	SymbolNotInAlphabet = cramerr.SymbolNotInAlphabet
	ValueOutOfRange     = cramerr.ValueOutOfRange
	MalformedRecord     = cramerr.MalformedRecord
	RefMd5Mismatch      = cramerr.RefMd5Mismatch
	UnknownSequence     = cramerr.UnknownSequence
)

// Kind and Error are aliased from cramerr so that a single definition
// backs errors.Is/errors.As regardless of which package constructed them.
type (
	Kind  = cramerr.Kind
	Error = cramerr.Error
)
