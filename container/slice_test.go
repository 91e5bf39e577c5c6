package container_test

import (
	"bytes"
	"testing"

	"github.com/singerma/cramtools/codec"
	"github.com/singerma/cramtools/container"
	"github.com/singerma/cramtools/itf8"
)

func buildSliceHeaderBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range []int32{
		0, // SequenceID
		1, // AlignmentStart
		10, // AlignmentSpan
		3, // NumRecords
		0, // RecordCounter
		1, // NumBlocks
		1, // content id count
		5, // content id 5
	} {
		mustWriteITF8(t, &buf, v)
	}
	buf.Write(make([]byte, 16)) // RefMD5
	return buf.Bytes()
}

func TestReadSliceHeader(t *testing.T) {
	s, err := container.ReadSliceHeader(bytes.NewReader(buildSliceHeaderBytes(t)))
	if err != nil {
		t.Fatalf("ReadSliceHeader: %v", err)
	}
	if s.SequenceID != 0 || s.NumRecords != 3 || s.NumBlocks != 1 {
		t.Fatalf("unexpected slice header: %+v", s)
	}
	if len(s.ContentIDs) != 1 || s.ContentIDs[0] != 5 {
		t.Fatalf("unexpected content ids: %v", s.ContentIDs)
	}
}

func TestCodecsMissingExternalBlock(t *testing.T) {
	s, err := container.ReadSliceHeader(bytes.NewReader(buildSliceHeaderBytes(t)))
	if err != nil {
		t.Fatalf("ReadSliceHeader: %v", err)
	}
	// Do not AddBlock(5, ...); the descriptor below references content id 5.
	var params bytes.Buffer
	mustWriteITF8(t, &params, 5)
	ch := &container.CompressionHeader{
		Preservation: map[string]bool{},
		Matrix:       container.NewSubstitutionMatrix([5]byte{}),
		Descriptors: map[container.SeriesTag]*codec.Descriptor{
			container.SeriesBase: {ID: codec.KindExternal, Params: params.Bytes()},
		},
		TagEncodings: map[int32]*codec.Descriptor{},
	}
	if _, _, err := s.Codecs(ch); err == nil {
		t.Fatalf("expected error resolving a missing external block")
	}
}

func TestCodecsResolvesExternalBlock(t *testing.T) {
	s, err := container.ReadSliceHeader(bytes.NewReader(buildSliceHeaderBytes(t)))
	if err != nil {
		t.Fatalf("ReadSliceHeader: %v", err)
	}
	s.AddBlock(5, []byte{0x41, 0x42})
	var params bytes.Buffer
	if _, err := itf8.WriteITF8(&params, 5); err != nil {
		t.Fatalf("WriteITF8: %v", err)
	}
	ch := &container.CompressionHeader{
		Preservation: map[string]bool{},
		Matrix:       container.NewSubstitutionMatrix([5]byte{}),
		Descriptors: map[container.SeriesTag]*codec.Descriptor{
			container.SeriesBase: {ID: codec.KindExternal, Params: params.Bytes()},
		},
		TagEncodings: map[int32]*codec.Descriptor{},
	}
	if _, _, err := s.Codecs(ch); err != nil {
		t.Fatalf("Codecs: %v", err)
	}
}
