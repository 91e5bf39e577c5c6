// Package normalize implements the post-parse normalizer: it turns a raw
// per-slice record batch into SAM/BAM-ready records by assigning a
// monotonic index, resolving mate-pair links, synthesizing read names,
// and expanding reference-delta read features into dense base and
// quality arrays.
package normalize

import (
	"github.com/singerma/cramtools/container"
	"github.com/singerma/cramtools/cramerr"
)

// NoAlignmentSentinel marks a sequence id or alignment start that does
// not refer to any reference coordinate (spec.md §4.6 step 2).
const NoAlignmentSentinel = -1

// DefaultQualityScore fills quality positions with no explicit score.
const DefaultQualityScore = 0xff

// Normalizer holds the state that must persist across container batches:
// a monotonic read counter and the read-name synthesis prefix.
type Normalizer struct {
	Counter              int64
	NamePrefix           string
	ForcePreserveQuality bool

	SequenceName string
}

// Normalize runs the five normalization steps, in order, over one
// slice's record batch (spec.md §4.6).
func (nz *Normalizer) Normalize(records []*container.Record, ref []byte, matrix *container.SubstitutionMatrix, apDelta bool) error {
	startCounter := nz.Counter

	assignIndexes(nz, records)
	if err := restoreMates(records, startCounter); err != nil {
		return err
	}
	synthesizeNames(nz, records)
	if err := restoreBases(records, ref, matrix); err != nil {
		return err
	}
	if err := restoreQuality(records, nz.ForcePreserveQuality); err != nil {
		return err
	}
	return nil
}

// 1. Index assignment.
func assignIndexes(nz *Normalizer, records []*container.Record) {
	for _, r := range records {
		nz.Counter++
		r.Index = nz.Counter
		r.SequenceName = nz.SequenceName
		// Default to "no mate", since only the forward side of a link
		// (the record that IsHasMateDownStream) overwrites it below; a
		// record left at Go's zero value here would be mistaken by
		// synthesizeNames for a real link to batch index 0.
		r.NextIndex = -1
		r.PreviousIndex = -1
	}
}

// 2. Mate restoration.
func restoreMates(records []*container.Record, startCounter int64) error {
	for i, r := range records {
		if !r.IsMultiFragment() || r.IsDetached() {
			r.RecordsToNextFragment = -1
			continue
		}
		if !r.IsHasMateDownStream() {
			continue
		}

		j := r.Index + int64(r.RecordsToNextFragment) - startCounter
		if j < 0 || j >= int64(len(records)) {
			return cramerr.Newf(cramerr.MalformedRecord, "normalize: mate restoration: computed batch index %d out of range [0,%d)", j, len(records))
		}
		downMate := records[j]

		r.NextIndex = int(j)
		downMate.PreviousIndex = i

		r.MateAlignmentStart = downMate.AlignmentStart
		r.MateSequenceID = downMate.SequenceID
		setMateFlags(r, downMate)
		setMateFlags(downMate, r)

		if r.SequenceID == NoAlignmentSentinel {
			r.MateAlignmentStart = NoAlignmentSentinel
		}
		if downMate.SequenceID == NoAlignmentSentinel {
			downMate.MateAlignmentStart = NoAlignmentSentinel
		}

		computeTemplateSize(r, downMate)
	}
	return nil
}

// setMateFlags mirrors unmapped/strand state from other onto r's mate
// flag bits (MateUnmapped, MateNegativeStrand).
func setMateFlags(r, other *container.Record) {
	if other.IsSegmentUnmapped() {
		r.Flags |= container.FlagMateUnmapped
	} else {
		r.Flags &^= container.FlagMateUnmapped
	}
	if other.IsNegativeStrand() {
		r.Flags |= container.FlagMateNegativeStrand
	} else {
		r.Flags &^= container.FlagMateNegativeStrand
	}
}

// computeTemplateSize assigns the SAM TLEN convention: the leftmost
// mapped mate of a pair on the same reference gets a positive value, the
// rightmost a negative value, magnitude equal to the distance from the
// leftmost mate's alignment start to the rightmost mate's end, where that
// end is taken as its alignment start plus its read length (no CIGAR is
// materialized, so clips and indels do not shift it); different
// references (or either mate unmapped) yield zero.
func computeTemplateSize(a, b *container.Record) {
	if a.SequenceID != b.SequenceID || a.IsUnmapped() || b.IsUnmapped() {
		a.TemplateSize = 0
		b.TemplateSize = 0
		return
	}

	left, right := a, b
	swap := b.AlignmentStart < a.AlignmentStart ||
		(b.AlignmentStart == a.AlignmentStart && b.Index < a.Index)
	if swap {
		left, right = b, a
	}

	span := int32(right.AlignmentStart+right.ReadLength) - left.AlignmentStart
	if span < 0 {
		span = 0
	}
	left.TemplateSize = span
	right.TemplateSize = -span
}

// 3. Name synthesis.
func synthesizeNames(nz *Normalizer, records []*container.Record) {
	for _, r := range records {
		if r.ReadName != nil {
			continue
		}
		name := synthesizeName(nz.NamePrefix, r.Index)
		r.ReadName = name
		if r.NextIndex >= 0 {
			records[r.NextIndex].ReadName = name
		}
		if r.PreviousIndex >= 0 {
			records[r.PreviousIndex].ReadName = name
		}
	}
}

func synthesizeName(prefix string, index int64) []byte {
	// itoa without importing strconv's full surface: index is always
	// non-negative here.
	if index == 0 {
		return append([]byte(prefix), '0')
	}
	var digits [20]byte
	i := len(digits)
	n := index
	for n > 0 {
		i--
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	out := make([]byte, 0, len(prefix)+len(digits)-i)
	out = append(out, prefix...)
	out = append(out, digits[i:]...)
	return out
}

// 4. Base restoration.
func restoreBases(records []*container.Record, ref []byte, matrix *container.SubstitutionMatrix) error {
	for _, r := range records {
		if r.IsUnmapped() {
			continue
		}
		bases, err := restoreRecordBases(r, ref, matrix)
		if err != nil {
			return err
		}
		r.Bases = bases
	}
	return nil
}

func restoreRecordBases(r *container.Record, ref []byte, matrix *container.SubstitutionMatrix) ([]byte, error) {
	L := int(r.ReadLength)
	bases := make([]byte, L)

	refAt := func(offset int) byte {
		if offset < 0 || offset >= len(ref) {
			return 'N'
		}
		return ref[offset]
	}

	if len(r.ReadFeatures) == 0 {
		base0 := int(r.AlignmentStart) - 1
		for i := 0; i < L; i++ {
			bases[i] = refAt(base0 + i)
		}
		normalizeBases(bases)
		return bases, nil
	}

	posInRead := 1 // 1-based
	posInSeq := int(r.AlignmentStart) - 1

	copyRef := func(uptoPosInRead int) {
		for posInRead < uptoPosInRead {
			bases[posInRead-1] = refAt(posInSeq)
			posInRead++
			posInSeq++
		}
	}

	for i := range r.ReadFeatures {
		f := &r.ReadFeatures[i]
		copyRef(int(f.Pos))

		switch f.Op {
		case container.FeatureSubstitution:
			refBase := refAt(posInSeq)
			alt, err := matrix.Base(refBase, f.SubCode)
			if err != nil {
				return nil, err
			}
			f.RefBase = refBase
			f.Base = alt
			if posInRead-1 < L {
				bases[posInRead-1] = alt
			}
			posInRead++
			posInSeq++

		case container.FeatureInsertion, container.FeatureSoftClip:
			for _, b := range f.Sequence {
				if posInRead-1 < L {
					bases[posInRead-1] = b
				}
				posInRead++
			}

		case container.FeatureInsertBase:
			if posInRead-1 < L {
				bases[posInRead-1] = f.InsertedBase
			}
			posInRead++

		case container.FeatureDeletion, container.FeatureRefSkip:
			posInSeq += int(f.Length)

		case container.FeatureHardClip, container.FeaturePadding, container.FeatureBaseQualityScore:
			// No base-sequence effect.
		}
	}
	copyRef(L + 1)

	// Second pass: ReadBase features take precedence over the reference.
	for i := range r.ReadFeatures {
		f := &r.ReadFeatures[i]
		if f.Op != container.FeatureReadBase {
			continue
		}
		pos := int(f.Pos)
		if pos < 1 || pos > L {
			return nil, cramerr.Newf(cramerr.MalformedRecord, "normalize: base restoration: read-base feature position %d out of range [1,%d]", pos, L)
		}
		bases[pos-1] = f.InsertedBase
	}

	normalizeBases(bases)
	return bases, nil
}

// normalizeBases maps every base to canonical uppercase IUPAC, with
// anything outside ACGTN folded to 'N'.
func normalizeBases(bases []byte) {
	for i, b := range bases {
		switch b {
		case 'a':
			b = 'A'
		case 'c':
			b = 'C'
		case 'g':
			b = 'G'
		case 't':
			b = 'T'
		case 'n', 0:
			b = 'N'
		}
		switch b {
		case 'A', 'C', 'G', 'T', 'N':
		default:
			b = 'N'
		}
		bases[i] = b
	}
}

// 5. Quality restoration.
func restoreQuality(records []*container.Record, forcePreserveQuality bool) error {
	for _, r := range records {
		L := int(r.ReadLength)

		if forcePreserveQuality {
			for i, q := range r.Quality {
				if q == 0xff {
					r.Quality[i] = DefaultQualityScore
				}
			}
			continue
		}

		scores := make([]byte, L)
		for i := range scores {
			scores[i] = DefaultQualityScore
		}
		for _, f := range r.ReadFeatures {
			if f.Op != container.FeatureBaseQualityScore && f.Op != container.FeatureReadBase {
				continue
			}
			if !f.HasQuality {
				continue
			}
			pos := int(f.Pos)
			if pos < 1 || pos > L {
				return cramerr.Newf(cramerr.MalformedRecord, "normalize: quality restoration: feature position %d out of range [1,%d]", pos, L)
			}
			scores[pos-1] = f.Quality
		}
		r.Quality = scores
	}
	return nil
}
