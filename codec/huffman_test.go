package codec_test

import (
	"bytes"
	"testing"

	"github.com/singerma/cramtools/codec"
	"github.com/singerma/cramtools/internal/bits"
)

func TestHuffmanIntSingleSymbol(t *testing.T) {
	c, err := codec.NewHuffmanInt([]int32{42}, []uint32{0})
	if err != nil {
		t.Fatalf("NewHuffmanInt: %v", err)
	}

	var buf bytes.Buffer
	w := bits.NewWriter(&buf)
	if _, err := c.WriteInt(w, 42); err != nil {
		t.Fatalf("WriteInt: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := bits.NewReader(&buf)
	got, err := c.ReadInt(r)
	if err != nil {
		t.Fatalf("ReadInt: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d, want 42", got)
	}
}

func TestHuffmanIntCanonicalThreeSymbols(t *testing.T) {
	// Symbol 0 -> 1 bit, symbols 1 and 2 -> 2 bits each: a textbook
	// canonical assignment (codes 0, 10, 11).
	c, err := codec.NewHuffmanInt([]int32{0, 1, 2}, []uint32{1, 2, 2})
	if err != nil {
		t.Fatalf("NewHuffmanInt: %v", err)
	}

	for _, want := range []int32{0, 1, 2, 0, 2, 1} {
		var buf bytes.Buffer
		w := bits.NewWriter(&buf)
		if _, err := c.WriteInt(w, want); err != nil {
			t.Fatalf("WriteInt(%d): %v", want, err)
		}
		if err := w.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		got, err := c.ReadInt(bits.NewReader(&buf))
		if err != nil {
			t.Fatalf("ReadInt after writing %d: %v", want, err)
		}
		if got != want {
			t.Fatalf("round-trip mismatch: got %d, want %d", got, want)
		}
	}
}

func TestHuffmanByteAlphabet(t *testing.T) {
	c, err := codec.NewHuffmanByte([]byte{'A', 'C', 'G', 'T'}, []uint32{2, 2, 2, 2})
	if err != nil {
		t.Fatalf("NewHuffmanByte: %v", err)
	}

	var buf bytes.Buffer
	w := bits.NewWriter(&buf)
	for _, b := range []byte("ACGT") {
		if _, err := c.WriteByte(w, b); err != nil {
			t.Fatalf("WriteByte(%q): %v", b, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := bits.NewReader(&buf)
	for _, want := range []byte("ACGT") {
		got, err := c.ReadByte(r)
		if err != nil {
			t.Fatalf("ReadByte: %v", err)
		}
		if got != want {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func TestHuffmanIntSymbolNotInAlphabet(t *testing.T) {
	c, err := codec.NewHuffmanInt([]int32{1, 2}, []uint32{1, 1})
	if err != nil {
		t.Fatalf("NewHuffmanInt: %v", err)
	}
	var buf bytes.Buffer
	w := bits.NewWriter(&buf)
	if _, err := c.WriteInt(w, 99); err == nil {
		t.Fatalf("expected SymbolNotInAlphabet error, got nil")
	}
}
