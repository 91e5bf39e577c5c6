package container

import (
	"bytes"

	"github.com/singerma/cramtools/codec"
	"github.com/singerma/cramtools/cramerr"
	"github.com/singerma/cramtools/itf8"
)

// SeriesTag identifies one of CRAM's fixed data series by its two-letter
// wire tag (spec.md §4.5's mapping from data-series tag to codec
// descriptor).
type SeriesTag string

// The fixed data-series tag set.
const (
	SeriesBitFlags             SeriesTag = "BF" // read flags
	SeriesCompressionFlags     SeriesTag = "CF" // compression flags
	SeriesReadLength           SeriesTag = "RL"
	SeriesInReadPos            SeriesTag = "AP" // alignment start (delta)
	SeriesReadGroup            SeriesTag = "RG"
	SeriesMateFlags            SeriesTag = "MF"
	SeriesMateSeqID            SeriesTag = "NS"
	SeriesMateAlignmentStart   SeriesTag = "NP"
	SeriesTemplateSize         SeriesTag = "TS"
	SeriesRecordsToNextFrag    SeriesTag = "NF"
	SeriesTagLineIndex         SeriesTag = "TL"
	SeriesNumberOfFeatures     SeriesTag = "FN"
	SeriesFeatureCode          SeriesTag = "FC"
	SeriesFeaturePosition      SeriesTag = "FP"
	SeriesBaseSubstitutionCode SeriesTag = "BS"
	SeriesInsertion            SeriesTag = "IN"
	SeriesSoftClip             SeriesTag = "SC"
	SeriesHardClip             SeriesTag = "HC"
	SeriesPadding              SeriesTag = "PD"
	SeriesRefSkip              SeriesTag = "RS"
	SeriesDeletionLength       SeriesTag = "DL"
	SeriesBase                 SeriesTag = "BA"
	SeriesQualityScore         SeriesTag = "QS"
	SeriesReadName             SeriesTag = "RN"
	SeriesMappingQuality       SeriesTag = "MQ"
	SeriesTagCount             SeriesTag = "TC"
	SeriesTagIDs               SeriesTag = "TN"
	SeriesTagValues            SeriesTag = "TV"
)

// allSeriesTags enumerates the fixed data-series tag set.
// ReadCompressionHeader does not consult it: every (tag, descriptor) pair
// on the wire is stored in Descriptors, and an unknown tag is not rejected.
var allSeriesTags = map[SeriesTag]bool{
	SeriesBitFlags: true, SeriesCompressionFlags: true, SeriesReadLength: true,
	SeriesInReadPos: true, SeriesReadGroup: true, SeriesMateFlags: true,
	SeriesMateSeqID: true, SeriesMateAlignmentStart: true, SeriesTemplateSize: true,
	SeriesRecordsToNextFrag: true, SeriesTagLineIndex: true, SeriesNumberOfFeatures: true,
	SeriesFeatureCode: true, SeriesFeaturePosition: true, SeriesBaseSubstitutionCode: true,
	SeriesInsertion: true, SeriesSoftClip: true, SeriesHardClip: true, SeriesPadding: true,
	SeriesRefSkip: true, SeriesDeletionLength: true, SeriesBase: true, SeriesQualityScore: true,
	SeriesReadName: true, SeriesMappingQuality: true, SeriesTagCount: true,
	SeriesTagIDs: true, SeriesTagValues: true,
}

// Preservation map boolean keys (spec.md §4.5).
const (
	PreserveReadNames     = "RN"
	PreserveAPSeriesDelta = "AP"
	PreserveReferenceSeq  = "RR"
	PreserveSubstitutions = "SM"
	PreserveTagIDs        = "TD"
)

// CompressionHeader is the per-container description of how every data
// series was encoded, plus the substitution matrix and a preservation map
// of decoder-relevant booleans.
type CompressionHeader struct {
	Preservation map[string]bool
	Matrix       *SubstitutionMatrix
	Descriptors  map[SeriesTag]*codec.Descriptor
	TagEncodings map[int32]*codec.Descriptor
}

// APSeriesDelta reports whether alignment starts are encoded as deltas
// from the previous record's alignment start (spec.md §4.5, §9).
func (h *CompressionHeader) APSeriesDelta() bool {
	return h.Preservation[PreserveAPSeriesDelta]
}

// PreserveReadNames reports whether original read names were preserved
// verbatim rather than synthesized by the normalizer.
func (h *CompressionHeader) PreserveReadNames() bool {
	return h.Preservation[PreserveReadNames]
}

// ReadCompressionHeader parses a compression header block: the
// preservation map, the substitution matrix, the per-series descriptor
// map, and the tag-encoding map (keyed by a packed tag-id used for
// optional SAM auxiliary fields).
func ReadCompressionHeader(buf []byte) (*CompressionHeader, error) {
	r := bytes.NewReader(buf)

	preservation, err := readPreservationMap(r)
	if err != nil {
		return nil, err
	}

	matrix, err := readSubstitutionMatrixField(r)
	if err != nil {
		return nil, err
	}

	descriptors, err := readSeriesEncodingMap(r)
	if err != nil {
		return nil, err
	}

	tagEncodings, err := readTagEncodingMap(r)
	if err != nil {
		return nil, err
	}

	return &CompressionHeader{
		Preservation: preservation,
		Matrix:       matrix,
		Descriptors:  descriptors,
		TagEncodings: tagEncodings,
	}, nil
}

func readPreservationMap(r *bytes.Reader) (map[string]bool, error) {
	n, err := itf8.ReadITF8(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, cramerr.Newf(cramerr.MalformedStream, "container: compression header: negative preservation map size %d", n)
	}
	m := make(map[string]bool, n)
	for i := int32(0); i < n; i++ {
		var key [2]byte
		if err := readFull(r, key[:]); err != nil {
			return nil, err
		}
		v, err := r.ReadByte()
		if err != nil {
			return nil, cramerr.New(cramerr.TruncatedStream, err)
		}
		m[string(key[:])] = v != 0
	}
	return m, nil
}

func readSubstitutionMatrixField(r *bytes.Reader) (*SubstitutionMatrix, error) {
	var packed [5]byte
	if err := readFull(r, packed[:]); err != nil {
		return nil, err
	}
	return NewSubstitutionMatrix(packed), nil
}

func readSeriesEncodingMap(r *bytes.Reader) (map[SeriesTag]*codec.Descriptor, error) {
	n, err := itf8.ReadITF8(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, cramerr.Newf(cramerr.MalformedStream, "container: compression header: negative series map size %d", n)
	}
	out := make(map[SeriesTag]*codec.Descriptor, n)
	for i := int32(0); i < n; i++ {
		var key [2]byte
		if err := readFull(r, key[:]); err != nil {
			return nil, err
		}
		d, err := codec.ReadDescriptor(r)
		if err != nil {
			return nil, err
		}
		out[SeriesTag(key[:])] = d
	}
	return out, nil
}

func readTagEncodingMap(r *bytes.Reader) (map[int32]*codec.Descriptor, error) {
	n, err := itf8.ReadITF8(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, cramerr.Newf(cramerr.MalformedStream, "container: compression header: negative tag encoding map size %d", n)
	}
	out := make(map[int32]*codec.Descriptor, n)
	for i := int32(0); i < n; i++ {
		id, err := itf8.ReadITF8(r)
		if err != nil {
			return nil, err
		}
		d, err := codec.ReadDescriptor(r)
		if err != nil {
			return nil, err
		}
		out[id] = d
	}
	return out, nil
}

func readFull(r *bytes.Reader, buf []byte) error {
	n, err := r.Read(buf)
	if err != nil || n != len(buf) {
		if err == nil {
			err = bytes.ErrTooLarge
		}
		return cramerr.New(cramerr.TruncatedStream, err)
	}
	return nil
}
