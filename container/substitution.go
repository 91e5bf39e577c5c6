package container

import "github.com/singerma/cramtools/cramerr"

// refBases is the fixed ordering of reference bases a substitution matrix
// is indexed by.
var refBases = [5]byte{'A', 'C', 'G', 'T', 'N'}

// SubstitutionMatrix maps (ref_base, code) to an alternate base, loaded
// once from the compression header and immutable per container. Both
// directions are precomputed at load: base->code for encoding, code->base
// for decoding (spec.md §9 "Substitution matrix indirection").
type SubstitutionMatrix struct {
	// codeToBase[refBase][code] -> alt base.
	codeToBase map[byte][4]byte
	// baseToCode[refBase][altBase] -> code.
	baseToCode map[byte]map[byte]byte
}

// NewSubstitutionMatrix builds a matrix from the 5 packed bytes stored in
// the compression header: one byte per reference base (A, C, G, T, N),
// each byte packing four 2-bit codes that name the three alternate bases
// in the order the reference implementation assigns them (ref bases are
// sorted ascending, with ref itself excluded, and N filling the fourth
// slot by convention).
func NewSubstitutionMatrix(packed [5]byte) *SubstitutionMatrix {
	m := &SubstitutionMatrix{
		codeToBase: make(map[byte][4]byte, 5),
		baseToCode: make(map[byte]map[byte]byte, 5),
	}
	for i, ref := range refBases {
		b := packed[i]
		var alts [4]byte
		alts[0] = altBase(ref, (b>>6)&0x3)
		alts[1] = altBase(ref, (b>>4)&0x3)
		alts[2] = altBase(ref, (b>>2)&0x3)
		alts[3] = altBase(ref, b&0x3)
		m.codeToBase[ref] = alts

		codes := make(map[byte]byte, 4)
		for code, alt := range alts {
			codes[alt] = byte(code)
		}
		m.baseToCode[ref] = codes
	}
	return m
}

// allBases is the full ACGTN alphabet in canonical order; a reference
// base's four substitution codes index into this list with ref removed.
var allBases = [5]byte{'A', 'C', 'G', 'T', 'N'}

// altBase maps a reference base and 2-bit substitution code (as packed
// into the compression header's matrix byte for that reference base) to
// a concrete alternate base letter, by indexing the canonical ACGTN order
// with ref removed.
func altBase(ref byte, code byte) byte {
	var others []byte
	for _, b := range allBases {
		if b != ref {
			others = append(others, b)
		}
	}
	if int(code) >= len(others) {
		return 'N'
	}
	return others[code]
}

// Base returns the alternate base for refBase substituted with code.
func (m *SubstitutionMatrix) Base(refBase byte, code byte) (byte, error) {
	alts, ok := m.codeToBase[refBase]
	if !ok {
		return 0, cramerr.Newf(cramerr.MalformedRecord, "container: substitution matrix: unknown reference base %q", refBase)
	}
	if code > 3 {
		return 0, cramerr.Newf(cramerr.MalformedRecord, "container: substitution matrix: code %d out of range", code)
	}
	return alts[code], nil
}

// Code returns the substitution code for refBase -> altBase.
func (m *SubstitutionMatrix) Code(refBase, altBase byte) (byte, error) {
	codes, ok := m.baseToCode[refBase]
	if !ok {
		return 0, cramerr.Newf(cramerr.MalformedRecord, "container: substitution matrix: unknown reference base %q", refBase)
	}
	code, ok := codes[altBase]
	if !ok {
		return 0, cramerr.Newf(cramerr.MalformedRecord, "container: substitution matrix: %q is not a substitution of %q", altBase, refBase)
	}
	return code, nil
}
