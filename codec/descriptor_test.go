package codec_test

import (
	"bytes"
	"testing"

	"github.com/singerma/cramtools/codec"
)

func TestDescriptorRoundTrip(t *testing.T) {
	src := &codec.Descriptor{ID: codec.KindBeta, Params: []byte{0x05, 0x08}}

	var buf bytes.Buffer
	if err := codec.WriteDescriptor(&buf, src); err != nil {
		t.Fatalf("WriteDescriptor: %v", err)
	}

	got, err := codec.ReadDescriptor(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadDescriptor: %v", err)
	}
	if got.ID != src.ID || !bytes.Equal(got.Params, src.Params) {
		t.Fatalf("round-trip mismatch: got %+v, want %+v", got, src)
	}
}

func TestDescriptorBuildBeta(t *testing.T) {
	var params bytes.Buffer
	writeITF8Params(t, &params, 10, 5) // offset=10, bitLimit=5

	d := &codec.Descriptor{ID: codec.KindBeta, Params: params.Bytes()}
	built, err := d.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	beta, ok := built.(*codec.Beta)
	if !ok {
		t.Fatalf("Build returned %T, want *codec.Beta", built)
	}
	if beta.Offset != 10 || beta.BitLimit != 5 {
		t.Fatalf("got offset=%d bitLimit=%d, want 10/5", beta.Offset, beta.BitLimit)
	}
}

func TestDescriptorBuildUnsupportedEncoding(t *testing.T) {
	d := &codec.Descriptor{ID: codec.Kind(99), Params: nil}
	if _, err := d.Build(); err == nil {
		t.Fatalf("expected error for unsupported encoding id")
	}
}

// writeITF8Params writes raw ITF8 integers directly for test descriptor
// parameter blobs, in the layout Descriptor.Build parses.
func writeITF8Params(t *testing.T, buf *bytes.Buffer, vals ...int32) {
	t.Helper()
	for _, v := range vals {
		if v < 0 || v > 127 {
			t.Fatalf("test helper only supports single-byte ITF8 values, got %d", v)
		}
		buf.WriteByte(byte(v))
	}
}
