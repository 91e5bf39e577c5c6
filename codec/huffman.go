package codec

import (
	"sort"

	"github.com/singerma/cramtools/cramerr"
	"github.com/singerma/cramtools/internal/bits"
)

// huffmanCode is a HuffmanBitCode triple: a symbol, the bit length of its
// canonical code, and the code itself.
type huffmanCode struct {
	value   int32
	bitLen  uint8
	bitCode uint32
}

// huffmanTable holds the canonical Huffman codebook for an alphabet, in
// both the encode (value->code) and decode (rank-sorted parallel arrays)
// shapes described in spec.md §4.1.
type huffmanTable struct {
	valueToCode map[int32]huffmanCode

	// Parallel arrays sorted by (bitLen, bitCode), one entry per symbol.
	sortedValues  []int32
	sortedBitLens []uint8
	sortedCodes   []uint32

	// rankByCode maps a left-aligned bit pattern to its rank among
	// sortedCodes, or -1 if absent.
	rankByCode []int32
}

// newHuffmanTable builds the canonical codebook for values/bitLengths per
// spec.md §4.1: group by bit length, sort ascending within a group by
// value, assign codes via a running code_value/code_length counter.
func newHuffmanTable(values []int32, bitLengths []uint32) (*huffmanTable, error) {
	if len(values) != len(bitLengths) {
		return nil, cramerr.Newf(cramerr.MalformedStream, "codec: huffman: mismatched values (%d) and bit lengths (%d)", len(values), len(bitLengths))
	}

	type pair struct {
		value  int32
		bitLen uint32
	}
	pairs := make([]pair, len(values))
	for i, v := range values {
		pairs[i] = pair{value: v, bitLen: bitLengths[i]}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].bitLen != pairs[j].bitLen {
			return pairs[i].bitLen < pairs[j].bitLen
		}
		return pairs[i].value < pairs[j].value
	})

	t := &huffmanTable{
		valueToCode: make(map[int32]huffmanCode, len(pairs)),
	}

	var codeValue int64 = -1
	var codeLen uint32
	maxCode := uint32(0)
	for _, p := range pairs {
		codeValue++
		codeValue <<= (p.bitLen - codeLen)
		codeLen = p.bitLen

		code := huffmanCode{value: p.value, bitLen: uint8(codeLen), bitCode: uint32(codeValue)}
		if codeLen < 32 && uint32(codeValue) >= 1<<codeLen {
			return nil, cramerr.Newf(cramerr.MalformedStream, "codec: huffman: symbol %d out of range for bit length %d", p.value, codeLen)
		}

		t.valueToCode[p.value] = code
		t.sortedValues = append(t.sortedValues, code.value)
		t.sortedBitLens = append(t.sortedBitLens, code.bitLen)
		t.sortedCodes = append(t.sortedCodes, code.bitCode)
		if code.bitCode > maxCode {
			maxCode = code.bitCode
		}
	}

	t.rankByCode = make([]int32, maxCode+1)
	for i := range t.rankByCode {
		t.rankByCode[i] = -1
	}
	for rank, code := range t.sortedCodes {
		t.rankByCode[code] = int32(rank)
	}

	return t, nil
}

// decode reads one symbol from br using the canonical table, per the
// incremental-bit-accumulation algorithm of spec.md §4.1.
func (t *huffmanTable) decode(br *bits.Reader) (int32, error) {
	if len(t.sortedCodes) == 1 && t.sortedBitLens[0] == 0 {
		// Single-symbol alphabet: zero bits encode the only value.
		return t.sortedValues[0], nil
	}

	var accum uint64
	var prevLen uint8
	for i := 0; i < len(t.sortedCodes); {
		extra := t.sortedBitLens[i] - prevLen
		bits64, err := br.ReadBits(extra)
		if err != nil {
			return 0, cramerr.New(cramerr.TruncatedStream, err)
		}
		accum = accum<<extra | bits64
		prevLen = t.sortedBitLens[i]

		if int(accum) < len(t.rankByCode) {
			if rank := t.rankByCode[accum]; rank >= 0 && t.sortedBitLens[rank] == prevLen {
				return t.sortedValues[rank], nil
			}
		}

		// Advance past all remaining codes of this same bit length; none
		// of them can match since the rank lookup already missed.
		curLen := t.sortedBitLens[i]
		for i < len(t.sortedCodes) && t.sortedBitLens[i] == curLen {
			i++
		}
	}
	return 0, cramerr.Newf(cramerr.MalformedStream, "codec: huffman: decode fell through with no matching code")
}

// encode writes the canonical code for value and returns the number of
// bits written.
func (t *huffmanTable) encode(bw *bits.Writer, value int32) (int, error) {
	code, ok := t.valueToCode[value]
	if !ok {
		return 0, cramerr.Newf(cramerr.SymbolNotInAlphabet, "codec: huffman: symbol %d not in alphabet", value)
	}
	if code.bitLen == 0 {
		return 0, nil
	}
	if err := bw.WriteBits(uint64(code.bitCode), code.bitLen); err != nil {
		return 0, err
	}
	return int(code.bitLen), nil
}

// HuffmanInt is the canonical Huffman codec over an alphabet of signed
// 32-bit integers.
type HuffmanInt struct {
	table *huffmanTable
}

// NewHuffmanInt builds a canonical Huffman integer codec from an alphabet
// and its per-symbol bit lengths.
func NewHuffmanInt(values []int32, bitLengths []uint32) (*HuffmanInt, error) {
	t, err := newHuffmanTable(values, bitLengths)
	if err != nil {
		return nil, err
	}
	return &HuffmanInt{table: t}, nil
}

// ReadInt implements IntCodec.
func (c *HuffmanInt) ReadInt(br *bits.Reader) (int32, error) {
	return c.table.decode(br)
}

// WriteInt implements IntCodec and returns the number of bits written.
func (c *HuffmanInt) WriteInt(bw *bits.Writer, v int32) (int, error) {
	return c.table.encode(bw, v)
}

// BitsFor returns the bit length assigned to symbol, or 0 if symbol is not
// in the alphabet.
func (c *HuffmanInt) BitsFor(symbol int32) uint32 {
	if code, ok := c.table.valueToCode[symbol]; ok {
		return uint32(code.bitLen)
	}
	return 0
}

// HuffmanByte is the canonical Huffman codec over a byte alphabet (widened
// to i32 in 0..256 during table construction).
type HuffmanByte struct {
	table *huffmanTable
}

// NewHuffmanByte builds a canonical Huffman byte codec. valueToCode is a
// map keyed by symbol value, so every byte value 0..255, 255 included, can
// be part of the alphabet.
func NewHuffmanByte(values []byte, bitLengths []uint32) (*HuffmanByte, error) {
	vals := make([]int32, len(values))
	for i, v := range values {
		vals[i] = int32(v)
	}
	t, err := newHuffmanTable(vals, bitLengths)
	if err != nil {
		return nil, err
	}
	return &HuffmanByte{table: t}, nil
}

// ReadByte implements ByteCodec.
func (c *HuffmanByte) ReadByte(br *bits.Reader) (byte, error) {
	v, err := c.table.decode(br)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

// WriteByte implements ByteCodec and returns the number of bits written.
func (c *HuffmanByte) WriteByte(bw *bits.Writer, v byte) (int, error) {
	return c.table.encode(bw, int32(v))
}
