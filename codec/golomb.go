package codec

import (
	"github.com/singerma/cramtools/cramerr"
	"github.com/singerma/cramtools/internal/bits"
)

// Golomb encodes a non-negative integer x'=x+offset as a unary-coded
// quotient x'/m followed by a truncated-binary-coded remainder x' mod m.
type Golomb struct {
	M      uint32 // m >= 1
	Offset int32
}

// NewGolomb returns a Golomb codec with the given modulus and offset.
func NewGolomb(m uint32, offset int32) (*Golomb, error) {
	if m < 1 {
		return nil, cramerr.Newf(cramerr.ValueOutOfRange, "codec: golomb: m must be >= 1, got %d", m)
	}
	return &Golomb{M: m, Offset: offset}, nil
}

// truncatedBinaryWidth returns b = ceil(log2(m)) and the threshold
// (1<<b)-m below which remainders are coded in b-1 bits instead of b.
func truncatedBinaryWidth(m uint32) (b uint8, threshold uint32) {
	if m <= 1 {
		return 0, 0
	}
	for (uint32(1) << b) < m {
		b++
	}
	threshold = (uint32(1) << b) - m
	return b, threshold
}

// ReadInt implements IntCodec.
func (c *Golomb) ReadInt(br *bits.Reader) (int32, error) {
	q, err := br.ReadUnary()
	if err != nil {
		return 0, cramerr.New(cramerr.TruncatedStream, err)
	}

	r, err := c.readRemainder(br)
	if err != nil {
		return 0, err
	}

	xPrime := int64(q)*int64(c.M) + int64(r)
	v := xPrime - int64(c.Offset)
	if xPrime < int64(c.Offset) {
		return 0, cramerr.Newf(cramerr.ValueOutOfRange, "codec: golomb: decoded value %d below offset %d", xPrime, c.Offset)
	}
	return int32(v), nil
}

func (c *Golomb) readRemainder(br *bits.Reader) (uint32, error) {
	b, threshold := truncatedBinaryWidth(c.M)
	if b == 0 {
		return 0, nil
	}
	v, err := br.ReadBits(b - 1)
	if err != nil {
		return 0, cramerr.New(cramerr.TruncatedStream, err)
	}
	if uint32(v) < threshold {
		return uint32(v), nil
	}
	bit, err := br.ReadBits(1)
	if err != nil {
		return 0, cramerr.New(cramerr.TruncatedStream, err)
	}
	return (uint32(v)<<1 | uint32(bit)) - threshold, nil
}

// WriteInt implements IntCodec and returns the number of bits written.
func (c *Golomb) WriteInt(bw *bits.Writer, v int32) (int, error) {
	xPrime := int64(v) + int64(c.Offset)
	if xPrime < 0 {
		return 0, cramerr.Newf(cramerr.ValueOutOfRange, "codec: golomb: value %d negative after offset %d", v, c.Offset)
	}
	q := uint64(xPrime) / uint64(c.M)
	r := uint32(uint64(xPrime) % uint64(c.M))

	if err := bw.WriteUnary(q); err != nil {
		return 0, err
	}
	n := int(q) + 1

	b, threshold := truncatedBinaryWidth(c.M)
	if b == 0 {
		return n, nil
	}
	if r < threshold {
		if err := bw.WriteBits(uint64(r), b-1); err != nil {
			return 0, err
		}
		return n + int(b-1), nil
	}
	if err := bw.WriteBits(uint64(r+threshold), b); err != nil {
		return 0, err
	}
	return n + int(b), nil
}
