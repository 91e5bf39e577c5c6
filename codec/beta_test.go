package codec_test

import (
	"bytes"
	"testing"

	"github.com/singerma/cramtools/codec"
	"github.com/singerma/cramtools/internal/bits"
)

func TestBetaRoundTrip(t *testing.T) {
	c, err := codec.NewBeta(10, 5)
	if err != nil {
		t.Fatalf("NewBeta: %v", err)
	}

	values := []int32{-10, -1, 0, 5, 21}
	var buf bytes.Buffer
	w := bits.NewWriter(&buf)
	for _, v := range values {
		if _, err := c.WriteInt(w, v); err != nil {
			t.Fatalf("WriteInt(%d): %v", v, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r := bits.NewReader(&buf)
	for _, want := range values {
		got, err := c.ReadInt(r)
		if err != nil {
			t.Fatalf("ReadInt: %v", err)
		}
		if got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
	}
}

func TestBetaValueOutOfRange(t *testing.T) {
	c, err := codec.NewBeta(0, 3) // 3 bits, 0..7
	if err != nil {
		t.Fatalf("NewBeta: %v", err)
	}
	var buf bytes.Buffer
	w := bits.NewWriter(&buf)
	if _, err := c.WriteInt(w, 8); err == nil {
		t.Fatalf("expected error writing out-of-range value, got nil")
	}
}

func TestNewBetaInvalidBitLimit(t *testing.T) {
	if _, err := codec.NewBeta(0, 0); err == nil {
		t.Fatalf("expected error for bit limit 0")
	}
	if _, err := codec.NewBeta(0, 33); err == nil {
		t.Fatalf("expected error for bit limit 33")
	}
}
