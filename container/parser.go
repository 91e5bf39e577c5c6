package container

import (
	"github.com/singerma/cramtools/cramerr"
	"github.com/singerma/cramtools/internal/bits"
)

// ReadRecords pulls n records from the slice in lock-step across every
// data series, following the 8-step reconstruction walk (spec.md §4.5).
// It does not resolve mate pointers; that is the normalizer's job.
func (s *Slice) ReadRecords(h *CompressionHeader, n int) ([]*Record, error) {
	sc, br, err := s.Codecs(h)
	if err != nil {
		return nil, err
	}

	records := make([]*Record, n)
	prevAlignmentStart := s.AlignmentStart

	for i := 0; i < n; i++ {
		r := new(Record)

		// 1. bit flags, compression flags, mate flags.
		flags, err := sc.readInt(br, SeriesBitFlags)
		if err != nil {
			return nil, wrapTruncated(err)
		}
		r.Flags = uint16(flags)

		cflags, err := sc.readInt(br, SeriesCompressionFlags)
		if err != nil {
			return nil, wrapTruncated(err)
		}
		r.CompressionFlags = uint8(cflags)

		mflags, err := sc.readInt(br, SeriesMateFlags)
		if err != nil {
			return nil, wrapTruncated(err)
		}
		r.MateFlags = uint8(mflags)

		// 2. read name, unless synthesized later by the normalizer.
		if h.PreserveReadNames() {
			name, err := readByteArray(sc, br)
			if err != nil {
				return nil, wrapTruncated(err)
			}
			r.ReadName = name
		}

		// 3. read length, alignment start (absolute or delta).
		readLen, err := sc.readInt(br, SeriesReadLength)
		if err != nil {
			return nil, wrapTruncated(err)
		}
		r.ReadLength = readLen

		if h.APSeriesDelta() {
			delta, err := sc.readInt(br, SeriesInReadPos)
			if err != nil {
				return nil, wrapTruncated(err)
			}
			r.AlignmentStart = prevAlignmentStart + delta
			prevAlignmentStart = r.AlignmentStart
		} else {
			start, err := sc.readInt(br, SeriesInReadPos)
			if err != nil {
				return nil, wrapTruncated(err)
			}
			r.AlignmentStart = start
		}

		// 4. read group, mapping quality.
		if _, err := sc.readInt(br, SeriesReadGroup); err != nil {
			return nil, wrapTruncated(err)
		}
		mq, err := sc.readByte(br, SeriesMappingQuality)
		if err != nil {
			return nil, wrapTruncated(err)
		}
		r.MappingQuality = mq

		// 5. read features, when mapped.
		if !r.IsUnmapped() {
			nFeatures, err := sc.readInt(br, SeriesNumberOfFeatures)
			if err != nil {
				return nil, wrapTruncated(err)
			}
			if nFeatures < 0 {
				return nil, cramerr.Newf(cramerr.MalformedStream, "container: parser: negative feature count %d", nFeatures)
			}
			r.ReadFeatures = make([]ReadFeature, nFeatures)
			pos := int32(0)
			for j := int32(0); j < nFeatures; j++ {
				code, err := sc.readByte(br, SeriesFeatureCode)
				if err != nil {
					return nil, wrapTruncated(err)
				}
				delta, err := sc.readInt(br, SeriesFeaturePosition)
				if err != nil {
					return nil, wrapTruncated(err)
				}
				pos += delta
				f, err := readFeaturePayload(sc, br, code, pos)
				if err != nil {
					return nil, err
				}
				r.ReadFeatures[j] = f
			}
		}

		// 6. detached mate fields.
		if r.IsDetached() {
			nmflags, err := sc.readInt(br, SeriesMateFlags)
			if err != nil {
				return nil, wrapTruncated(err)
			}
			r.MateFlags = uint8(nmflags)
			if r.MateSequenceID, err = sc.readInt(br, SeriesMateSeqID); err != nil {
				return nil, wrapTruncated(err)
			}
			if r.MateAlignmentStart, err = sc.readInt(br, SeriesMateAlignmentStart); err != nil {
				return nil, wrapTruncated(err)
			}
			if r.TemplateSize, err = sc.readInt(br, SeriesTemplateSize); err != nil {
				return nil, wrapTruncated(err)
			}
			if r.ReadName == nil {
				name, err := readByteArray(sc, br)
				if err != nil {
					return nil, wrapTruncated(err)
				}
				r.ReadName = name
			}
		}

		// 7. forward offset to mate within the current slice.
		r.RecordsToNextFragment = -1
		if r.IsMultiFragment() && !r.IsDetached() {
			nf, err := sc.readInt(br, SeriesRecordsToNextFrag)
			if err != nil {
				return nil, wrapTruncated(err)
			}
			r.RecordsToNextFragment = nf
		}

		// 8. optional tag block: a TC count of (TN id, value) pairs, each
		// value consumed according to the encoding TagEncodings names for
		// that tag id (spec.md §4.5).
		tagCount, err := sc.readInt(br, SeriesTagCount)
		if err != nil {
			return nil, wrapTruncated(err)
		}
		for j := int32(0); j < tagCount; j++ {
			tagID, err := sc.readInt(br, SeriesTagIDs)
			if err != nil {
				return nil, wrapTruncated(err)
			}
			if err := sc.readTagValue(br, tagID); err != nil {
				return nil, err
			}
		}

		records[i] = r
	}

	return records, nil
}

// readByteArray reads the read name series as a byte array, using
// whichever framing its descriptor resolved to (see readSequence).
func readByteArray(sc *seriesCodecs, br *bits.Reader) ([]byte, error) {
	return readSequence(sc, br, SeriesReadName)
}

// readFeaturePayload reads the operator-specific payload for one read
// feature, dispatching on the feature code byte per spec.md §3
// ReadFeature / §4.5 step 5.
func readFeaturePayload(sc *seriesCodecs, br *bits.Reader, code byte, pos int32) (ReadFeature, error) {
	f := ReadFeature{Pos: pos}

	switch code {
	case 'X': // Substitution
		f.Op = FeatureSubstitution
		c, err := sc.readByte(br, SeriesBaseSubstitutionCode)
		if err != nil {
			return f, wrapTruncated(err)
		}
		f.SubCode = c

	case 'I': // Insertion
		f.Op = FeatureInsertion
		seq, err := readSequence(sc, br, SeriesInsertion)
		if err != nil {
			return f, err
		}
		f.Sequence = seq

	case 'S': // SoftClip
		f.Op = FeatureSoftClip
		seq, err := readSequence(sc, br, SeriesSoftClip)
		if err != nil {
			return f, err
		}
		f.Sequence = seq

	case 'i': // InsertBase
		f.Op = FeatureInsertBase
		b, err := sc.readByte(br, SeriesBase)
		if err != nil {
			return f, wrapTruncated(err)
		}
		f.InsertedBase = b

	case 'Q': // BaseQualityScore
		f.Op = FeatureBaseQualityScore
		q, err := sc.readByte(br, SeriesQualityScore)
		if err != nil {
			return f, wrapTruncated(err)
		}
		f.HasQuality = true
		f.Quality = q

	case 'B': // ReadBase (base + quality together)
		f.Op = FeatureReadBase
		b, err := sc.readByte(br, SeriesBase)
		if err != nil {
			return f, wrapTruncated(err)
		}
		f.InsertedBase = b
		q, err := sc.readByte(br, SeriesQualityScore)
		if err != nil {
			return f, wrapTruncated(err)
		}
		f.HasQuality = true
		f.Quality = q

	case 'D': // Deletion
		f.Op = FeatureDeletion
		length, err := sc.readInt(br, SeriesDeletionLength)
		if err != nil {
			return f, wrapTruncated(err)
		}
		f.Length = length

	case 'H': // HardClip
		f.Op = FeatureHardClip
		length, err := sc.readInt(br, SeriesHardClip)
		if err != nil {
			return f, wrapTruncated(err)
		}
		f.Length = length

	case 'P': // Padding
		f.Op = FeaturePadding
		length, err := sc.readInt(br, SeriesPadding)
		if err != nil {
			return f, wrapTruncated(err)
		}
		f.Length = length

	case 'N': // RefSkip
		f.Op = FeatureRefSkip
		length, err := sc.readInt(br, SeriesRefSkip)
		if err != nil {
			return f, wrapTruncated(err)
		}
		f.Length = length

	default:
		return f, cramerr.Newf(cramerr.MalformedStream, "container: parser: unknown read feature code %q", code)
	}

	return f, nil
}

// readSequence reads a run of bytes for the given series (used by the
// read name, Insertion, and SoftClip series). A series encoded
// BYTE_ARRAY_STOP has no length prefix; its bytes run up to and
// excluding a sentinel value, consumed by readTagValue's sibling logic
// at the series level. Every other series is length-prefixed: an ITF8
// count followed by that many bytes read one at a time.
func readSequence(sc *seriesCodecs, br *bits.Reader, tag SeriesTag) ([]byte, error) {
	if stop, ok := sc.stopByte[tag]; ok {
		var out []byte
		for {
			b, err := sc.readByte(br, tag)
			if err != nil {
				return nil, wrapTruncated(err)
			}
			if b == stop {
				return out, nil
			}
			out = append(out, b)
		}
	}

	n, err := sc.readInt(br, tag)
	if err != nil {
		return nil, wrapTruncated(err)
	}
	if n < 0 {
		return nil, cramerr.Newf(cramerr.MalformedStream, "container: parser: negative sequence length %d", n)
	}
	out := make([]byte, n)
	for i := range out {
		b, err := sc.readByte(br, tag)
		if err != nil {
			return nil, wrapTruncated(err)
		}
		out[i] = b
	}
	return out, nil
}

// wrapTruncated reclassifies any bare I/O failure surfaced while reading
// slice-local data as TruncatedStream ("TruncatedSlice" per spec.md §4.5,
// §7); cramerr.Error values from deeper layers (UnsupportedEncoding,
// MalformedStream) pass through unchanged.
func wrapTruncated(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*cramerr.Error); ok {
		return err
	}
	return cramerr.New(cramerr.TruncatedStream, err)
}
