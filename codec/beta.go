package codec

import (
	"github.com/singerma/cramtools/cramerr"
	"github.com/singerma/cramtools/internal/bits"
)

// Beta is a fixed-width codec with an additive offset: read(bis) =
// read_bits(bitLimit) - offset.
type Beta struct {
	Offset   int32
	BitLimit uint8 // 1..32
}

// NewBeta returns a Beta codec with the given offset and bit width.
func NewBeta(offset int32, bitLimit uint32) (*Beta, error) {
	if bitLimit < 1 || bitLimit > 32 {
		return nil, cramerr.Newf(cramerr.ValueOutOfRange, "codec: beta: bit limit %d out of range 1..32", bitLimit)
	}
	return &Beta{Offset: offset, BitLimit: uint8(bitLimit)}, nil
}

// ReadInt implements IntCodec.
func (c *Beta) ReadInt(br *bits.Reader) (int32, error) {
	x, err := br.ReadBits(c.BitLimit)
	if err != nil {
		return 0, cramerr.New(cramerr.TruncatedStream, err)
	}
	return int32(x) - c.Offset, nil
}

// WriteInt implements IntCodec and returns the number of bits written.
func (c *Beta) WriteInt(bw *bits.Writer, v int32) (int, error) {
	u := int64(v) + int64(c.Offset)
	if u < 0 || (c.BitLimit < 64 && u >= int64(1)<<c.BitLimit) {
		return 0, cramerr.Newf(cramerr.ValueOutOfRange, "codec: beta: value %d does not fit in %d bits after offset %d", v, c.BitLimit, c.Offset)
	}
	if err := bw.WriteBits(uint64(u), c.BitLimit); err != nil {
		return 0, err
	}
	return int(c.BitLimit), nil
}
