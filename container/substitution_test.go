package container_test

import (
	"testing"

	"github.com/singerma/cramtools/container"
)

func TestSubstitutionMatrixRoundTrip(t *testing.T) {
	// Code 0b00011011 packs codes 0,1,2,3 for each reference base.
	packed := [5]byte{0x1b, 0x1b, 0x1b, 0x1b, 0x1b}
	m := container.NewSubstitutionMatrix(packed)

	for _, ref := range []byte{'A', 'C', 'G', 'T', 'N'} {
		for code := byte(0); code < 4; code++ {
			alt, err := m.Base(ref, code)
			if err != nil {
				t.Fatalf("Base(%q, %d): %v", ref, code, err)
			}
			gotCode, err := m.Code(ref, alt)
			if err != nil {
				t.Fatalf("Code(%q, %q): %v", ref, alt, err)
			}
			if gotCode != code {
				t.Fatalf("round-trip mismatch for ref=%q code=%d: got back %d (alt=%q)", ref, code, gotCode, alt)
			}
		}
	}
}

func TestSubstitutionMatrixUnknownReferenceBase(t *testing.T) {
	m := container.NewSubstitutionMatrix([5]byte{})
	if _, err := m.Base('X', 0); err == nil {
		t.Fatalf("expected error for unknown reference base")
	}
}

func TestSubstitutionMatrixCodeOutOfRange(t *testing.T) {
	m := container.NewSubstitutionMatrix([5]byte{})
	if _, err := m.Base('A', 4); err == nil {
		t.Fatalf("expected error for out-of-range code")
	}
}
