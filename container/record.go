package container

// Flag bits for Record.Flags (read flags).
const (
	FlagPaired uint16 = 1 << iota
	FlagProperPair
	FlagUnmapped
	FlagMateUnmapped
	FlagNegativeStrand
	FlagMateNegativeStrand
	FlagFirstOfPair
	FlagSecondOfPair
	FlagSecondary
	FlagFailsQC
	FlagDuplicate
	FlagSupplementary
)

// Compression flag bits (Record.CompressionFlags), CRAM-internal (not
// SAM), controlling how a record's fields were serialized.
const (
	CFPreservedQualityScores uint8 = 1 << iota
	CFDetached
	CFHasMateDownStream
	CFUnknownMateAlignmentStart
)

// FeatureOp identifies which of the ten read-feature operators a
// ReadFeature carries.
type FeatureOp uint8

// Read feature operators (spec.md §3 ReadFeature).
const (
	FeatureSubstitution FeatureOp = iota
	FeatureInsertion
	FeatureDeletion
	FeatureSoftClip
	FeatureInsertBase
	FeatureBaseQualityScore
	FeatureReadBase
	FeatureHardClip
	FeaturePadding
	FeatureRefSkip
)

// ReadFeature is a tagged union over the ten read-feature operators, each
// carrying a 1-based position within the read and operator-specific
// payload.
type ReadFeature struct {
	Op  FeatureOp
	Pos int32 // 1-based position within the read

	// Substitution
	SubCode byte // 2-bit code as stored
	RefBase byte // filled in by the normalizer during base restoration
	Base    byte // resolved alternate base, filled in by the normalizer

	// Insertion / SoftClip
	Sequence []byte

	// InsertBase / ReadBase
	InsertedBase byte

	// BaseQualityScore / ReadBase (quality)
	HasQuality bool
	Quality    byte

	// Deletion / HardClip / Padding / RefSkip
	Length int32
}

// Record is a single CRAM alignment record prior to (or after)
// normalization. Fields documented in spec.md §3 CramRecord.
type Record struct {
	Flags            uint16
	CompressionFlags uint8
	MateFlags        uint8

	SequenceID     int32 // -1 = unmapped
	AlignmentStart int32
	ReadLength     int32
	ReadName       []byte // nil if not yet synthesized
	MappingQuality uint8

	ReadFeatures []ReadFeature

	Bases   []byte // filled by the normalizer
	Quality []byte // filled (or post-filled) by the normalizer

	MateSequenceID     int32
	MateAlignmentStart int32
	TemplateSize       int32

	// RecordsToNextFragment is the 0-based forward offset, within the
	// current slice/batch, to the mate record. -1 when not applicable.
	RecordsToNextFragment int32

	// Index is this record's position in the decode session's monotonic
	// read counter, assigned by the normalizer.
	Index int64

	// NextIndex/PreviousIndex are batch-relative indices (not pointers)
	// into the owning batch's records slice, per spec.md §9's
	// cycle-avoidance guidance. -1 when absent.
	NextIndex     int
	PreviousIndex int

	SequenceName string
}

// IsUnmapped reports whether the record's SegmentUnmapped flag is set.
func (r *Record) IsUnmapped() bool {
	return r.Flags&FlagUnmapped != 0
}

// IsSegmentUnmapped is an alias for IsUnmapped matching SAM terminology
// used by the normalizer's mate-restoration step.
func (r *Record) IsSegmentUnmapped() bool {
	return r.IsUnmapped()
}

// IsNegativeStrand reports whether the record aligns to the reverse
// strand.
func (r *Record) IsNegativeStrand() bool {
	return r.Flags&FlagNegativeStrand != 0
}

// IsMultiFragment reports whether this record is part of a multi-segment
// template (SAM "paired" flag, despite CRAM's more general naming).
func (r *Record) IsMultiFragment() bool {
	return r.Flags&FlagPaired != 0
}

// IsDetached reports whether the record's mate is not present in the
// current slice.
func (r *Record) IsDetached() bool {
	return r.CompressionFlags&CFDetached != 0
}

// IsHasMateDownStream reports whether the record's mate lies later in the
// current batch, addressable via RecordsToNextFragment.
func (r *Record) IsHasMateDownStream() bool {
	return r.CompressionFlags&CFHasMateDownStream != 0
}
