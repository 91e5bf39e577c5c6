package codec_test

import (
	"bytes"
	"testing"

	"github.com/singerma/cramtools/codec"
	"github.com/singerma/cramtools/internal/bits"
)

func TestGolombRoundTripPowerOfTwoModulus(t *testing.T) {
	c, err := codec.NewGolomb(8, 0)
	if err != nil {
		t.Fatalf("NewGolomb: %v", err)
	}
	roundTripGolomb(t, c, []int32{0, 1, 7, 8, 9, 100})
}

func TestGolombRoundTripNonPowerOfTwoModulus(t *testing.T) {
	// m=5 exercises the truncated-binary remainder's b-1/b split.
	c, err := codec.NewGolomb(5, 0)
	if err != nil {
		t.Fatalf("NewGolomb: %v", err)
	}
	roundTripGolomb(t, c, []int32{0, 1, 2, 3, 4, 5, 6, 17, 42})
}

func TestGolombWithOffset(t *testing.T) {
	c, err := codec.NewGolomb(4, 10)
	if err != nil {
		t.Fatalf("NewGolomb: %v", err)
	}
	roundTripGolomb(t, c, []int32{-10, -9, 0, 10})
}

func TestNewGolombInvalidModulus(t *testing.T) {
	if _, err := codec.NewGolomb(0, 0); err == nil {
		t.Fatalf("expected error for m=0")
	}
}

func roundTripGolomb(t *testing.T, c *codec.Golomb, values []int32) {
	t.Helper()
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
