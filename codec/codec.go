// Package codec implements the per-series decoders that map a bit stream
// (or an external byte channel) to a sequence of integers or bytes:
// canonical Huffman (integer and byte variants), Beta, Golomb, and
// External.
package codec

import (
	"github.com/singerma/cramtools/internal/bits"
)

// Kind identifies a codec by its CRAM encoding id.
type Kind uint8

// Codec kinds recognized by this implementation.
const (
	KindHuffmanInt Kind = iota
	KindHuffmanByte
	KindBeta
	KindGolomb
	KindExternal
	KindByteArrayLen
	KindByteArrayStop
)

func (k Kind) String() string {
	switch k {
	case KindHuffmanInt:
		return "HUFFMAN_INT"
	case KindHuffmanByte:
		return "HUFFMAN_BYTE"
	case KindBeta:
		return "BETA"
	case KindGolomb:
		return "GOLOMB"
	case KindExternal:
		return "EXTERNAL"
	case KindByteArrayLen:
		return "BYTE_ARRAY_LEN"
	case KindByteArrayStop:
		return "BYTE_ARRAY_STOP"
	default:
		return "UNKNOWN"
	}
}

// IntCodec decodes and encodes a series of signed 32-bit integers from/to
// a bit stream.
type IntCodec interface {
	ReadInt(br *bits.Reader) (int32, error)
	WriteInt(bw *bits.Writer, v int32) (int, error)
}

// ByteCodec decodes and encodes a series of bytes from/to a bit stream.
type ByteCodec interface {
	ReadByte(br *bits.Reader) (byte, error)
	WriteByte(bw *bits.Writer, v byte) (int, error)
}
