package container_test

import (
	"bytes"
	"testing"

	"github.com/singerma/cramtools/codec"
	"github.com/singerma/cramtools/container"
	"github.com/singerma/cramtools/itf8"
)

// externalDescriptor builds a KindExternal descriptor pointing at
// contentID, and returns the encoded Params blob the slice's Codecs will
// parse to resolve it.
func externalDescriptor(t *testing.T, contentID int32) *codec.Descriptor {
	t.Helper()
	var params bytes.Buffer
	if _, err := itf8.WriteITF8(&params, contentID); err != nil {
		t.Fatalf("WriteITF8: %v", err)
	}
	return &codec.Descriptor{ID: codec.KindExternal, Params: params.Bytes()}
}

func itf8Bytes(t *testing.T, vals ...int32) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range vals {
		if _, err := itf8.WriteITF8(&buf, v); err != nil {
			t.Fatalf("WriteITF8(%d): %v", v, err)
		}
	}
	return buf.Bytes()
}

// TestReadRecordsSingleUnmappedRecord drives the full slice/record parse
// path for one minimal unmapped, non-paired record with every field
// carried by its own EXTERNAL block, so the test only needs to assert
// ITF8/byte framing rather than reconstruct a bit-packed core block.
func TestReadRecordsSingleUnmappedRecord(t *testing.T) {
	const (
		idBF = iota + 1
		idCF
		idMF
		idRL
		idAP
		idRG
		idMQ
		idTC
	)

	ch := &container.CompressionHeader{
		Preservation: map[string]bool{},
		Matrix:       container.NewSubstitutionMatrix([5]byte{}),
		Descriptors: map[container.SeriesTag]*codec.Descriptor{
			container.SeriesBitFlags:         externalDescriptor(t, idBF),
			container.SeriesCompressionFlags: externalDescriptor(t, idCF),
			container.SeriesMateFlags:        externalDescriptor(t, idMF),
			container.SeriesReadLength:       externalDescriptor(t, idRL),
			container.SeriesInReadPos:        externalDescriptor(t, idAP),
			container.SeriesReadGroup:        externalDescriptor(t, idRG),
			container.SeriesMappingQuality:   externalDescriptor(t, idMQ),
			container.SeriesTagCount:         externalDescriptor(t, idTC),
		},
		TagEncodings: map[int32]*codec.Descriptor{},
	}

	s, err := container.ReadSliceHeader(bytes.NewReader(buildSliceHeaderBytes(t)))
	if err != nil {
		t.Fatalf("ReadSliceHeader: %v", err)
	}
	s.AddBlock(idBF, itf8Bytes(t, int32(container.FlagUnmapped)))
	s.AddBlock(idCF, itf8Bytes(t, 0))
	s.AddBlock(idMF, itf8Bytes(t, 0))
	s.AddBlock(idRL, itf8Bytes(t, 5))
	s.AddBlock(idAP, itf8Bytes(t, 100))
	s.AddBlock(idRG, itf8Bytes(t, 0))
	s.AddBlock(idMQ, []byte{30})
	s.AddBlock(idTC, itf8Bytes(t, 0))

	records, err := s.ReadRecords(ch, 1)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if !r.IsUnmapped() {
		t.Fatalf("expected unmapped record")
	}
	if r.ReadLength != 5 || r.AlignmentStart != 100 || r.MappingQuality != 30 {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.RecordsToNextFragment != -1 {
		t.Fatalf("expected RecordsToNextFragment -1 for a non-multi-fragment record, got %d", r.RecordsToNextFragment)
	}
}

// TestReadRecordsInsertionByteArrayStop drives a mapped record carrying a
// single Insertion feature whose sequence series is encoded
// BYTE_ARRAY_STOP, so the feature's bytes are read up to a sentinel
// rather than an ITF8 length prefix.
func TestReadRecordsInsertionByteArrayStop(t *testing.T) {
	const (
		idBF = iota + 1
		idCF
		idMF
		idRL
		idAP
		idRG
		idMQ
		idNF
		idFC
		idFP
		idIN
		idTC
	)

	var inParams bytes.Buffer
	inParams.WriteByte(0x00) // stop byte
	if _, err := itf8.WriteITF8(&inParams, idIN); err != nil {
		t.Fatalf("WriteITF8: %v", err)
	}

	ch := &container.CompressionHeader{
		Preservation: map[string]bool{},
		Matrix:       container.NewSubstitutionMatrix([5]byte{}),
		Descriptors: map[container.SeriesTag]*codec.Descriptor{
			container.SeriesBitFlags:         externalDescriptor(t, idBF),
			container.SeriesCompressionFlags: externalDescriptor(t, idCF),
			container.SeriesMateFlags:        externalDescriptor(t, idMF),
			container.SeriesReadLength:       externalDescriptor(t, idRL),
			container.SeriesInReadPos:        externalDescriptor(t, idAP),
			container.SeriesReadGroup:        externalDescriptor(t, idRG),
			container.SeriesMappingQuality:   externalDescriptor(t, idMQ),
			container.SeriesNumberOfFeatures: externalDescriptor(t, idNF),
			container.SeriesFeatureCode:      externalDescriptor(t, idFC),
			container.SeriesFeaturePosition:  externalDescriptor(t, idFP),
			container.SeriesInsertion:        {ID: codec.KindByteArrayStop, Params: inParams.Bytes()},
			container.SeriesTagCount:         externalDescriptor(t, idTC),
		},
		TagEncodings: map[int32]*codec.Descriptor{},
	}

	s, err := container.ReadSliceHeader(bytes.NewReader(buildSliceHeaderBytes(t)))
	if err != nil {
		t.Fatalf("ReadSliceHeader: %v", err)
	}
	s.AddBlock(idBF, itf8Bytes(t, 0))
	s.AddBlock(idCF, itf8Bytes(t, 0))
	s.AddBlock(idMF, itf8Bytes(t, 0))
	s.AddBlock(idRL, itf8Bytes(t, 5))
	s.AddBlock(idAP, itf8Bytes(t, 100))
	s.AddBlock(idRG, itf8Bytes(t, 0))
	s.AddBlock(idMQ, []byte{30})
	s.AddBlock(idNF, itf8Bytes(t, 1))
	s.AddBlock(idFC, []byte{'I'})
	s.AddBlock(idFP, itf8Bytes(t, 1))
	s.AddBlock(idIN, []byte{'G', 'G', 0x00, 'X'}) // trailing 'X' must not be consumed
	s.AddBlock(idTC, itf8Bytes(t, 0))

	records, err := s.ReadRecords(ch, 1)
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	r := records[0]
	if len(r.ReadFeatures) != 1 {
		t.Fatalf("got %d read features, want 1", len(r.ReadFeatures))
	}
	f := r.ReadFeatures[0]
	if f.Op != container.FeatureInsertion || string(f.Sequence) != "GG" {
		t.Fatalf("unexpected insertion feature: %+v", f)
	}
}
