package cramerr_test

import (
	"errors"
	"io"
	"testing"

	"github.com/singerma/cramtools/cramerr"
)

func TestErrorIsMatchesByKind(t *testing.T) {
	a := cramerr.New(cramerr.TruncatedStream, io.ErrUnexpectedEOF)
	b := cramerr.New(cramerr.TruncatedStream, io.EOF)
	if !errors.Is(a, b) {
		t.Fatalf("expected errors with the same Kind to match via errors.Is")
	}

	c := cramerr.New(cramerr.MalformedStream, io.ErrUnexpectedEOF)
	if errors.Is(a, c) {
		t.Fatalf("expected errors with different Kind not to match")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := cramerr.New(cramerr.TruncatedStream, cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected Unwrap to expose the wrapped cause")
	}
}

func TestNewfFormatsMessage(t *testing.T) {
	err := cramerr.Newf(cramerr.ValueOutOfRange, "value %d out of range", 42)
	if err.Kind != cramerr.ValueOutOfRange {
		t.Fatalf("got kind %v, want ValueOutOfRange", err.Kind)
	}
	if err.Error() == "" {
		t.Fatalf("expected non-empty error message")
	}
}

func TestKindString(t *testing.T) {
	cases := map[cramerr.Kind]string{
		cramerr.TruncatedStream:     "truncated stream",
		cramerr.UnsupportedEncoding: "unsupported encoding",
		cramerr.RefMd5Mismatch:      "reference md5 mismatch",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
