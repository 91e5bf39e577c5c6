// Package cramerr defines the closed error taxonomy shared by every stage
// of the decode pipeline (bit codecs, the container/slice parser, and the
// normalizer), so that a caller can switch on Kind regardless of which
// package raised the error.
package cramerr

import (
	"fmt"

	"github.com/mewkiz/pkg/errutil"
)

// Kind classifies the fatal, container-granularity errors this package
// can produce.
type Kind uint8

// Error kinds.
const (
	// TruncatedStream indicates an unexpected EOF on a bit or byte read.
	TruncatedStream Kind = iota
	// MalformedStream indicates a Huffman decode fallthrough, an ITF8
	// overflow, or an invalid block length.
	MalformedStream
	// UnsupportedEncoding indicates a compression header named a codec
	// id this implementation does not handle.
	UnsupportedEncoding
	// SymbolNotInAlphabet indicates an encode-side lookup of an unknown
	// symbol. Not reachable on the decode path.
	SymbolNotInAlphabet
	// ValueOutOfRange indicates a Beta width overflow or a Golomb value
	// that decodes below its offset.
	ValueOutOfRange
	// MalformedRecord indicates a feature position outside the read
	// length or an invalid feature operator.
	MalformedRecord
	// RefMd5Mismatch indicates a slice's stored reference MD5 disagrees
	// with the reference source's MD5 over the slice window.
	RefMd5Mismatch
	// UnknownSequence indicates a sequence id in a record or slice is not
	// present in the SAM header.
	UnknownSequence
)

func (k Kind) String() string {
	switch k {
	case TruncatedStream:
		return "truncated stream"
	case MalformedStream:
		return "malformed stream"
	case UnsupportedEncoding:
		return "unsupported encoding"
	case SymbolNotInAlphabet:
		return "symbol not in alphabet"
	case ValueOutOfRange:
		return "value out of range"
	case MalformedRecord:
		return "malformed record"
	case RefMd5Mismatch:
		return "reference md5 mismatch"
	case UnknownSequence:
		return "unknown sequence"
	default:
		return "unknown error kind"
	}
}

// Error is a fatal, container-granularity decode error.
type Error struct {
	Kind Kind
	err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cram: %v: %v", e.Kind, e.err)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New wraps err (annotated with caller info via errutil.Err) as an *Error
// of the given kind.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, err: errutil.Err(err)}
}

// Newf formats a new *Error of the given kind.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, err: errutil.Newf(format, args...)}
}
