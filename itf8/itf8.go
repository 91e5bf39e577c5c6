// Package itf8 implements CRAM's variable-length big-endian integer
// encoding, used throughout the compression header and by every codec
// descriptor's parameter block.
package itf8

import (
	"io"

	"github.com/singerma/cramtools/cramerr"
)

// ReadITF8 decodes CRAM's variable-length big-endian integer encoding
// (ITF8): 1 to 5 bytes, the leading bits of the first byte determining how
// many continuation bytes follow.
//
// ref: spec.md §6 "ITF8 integers".
func ReadITF8(r io.ByteReader) (int32, error) {
	b0, err := r.ReadByte()
	if err != nil {
		return 0, cramerr.New(cramerr.TruncatedStream, err)
	}
	if b0&0x80 == 0 {
		return int32(b0), nil
	}

	b1, err := r.ReadByte()
	if err != nil {
		return 0, cramerr.New(cramerr.TruncatedStream, err)
	}
	if b0&0x40 == 0 {
		return int32(b0&0x7f)<<8 | int32(b1), nil
	}

	b2, err := r.ReadByte()
	if err != nil {
		return 0, cramerr.New(cramerr.TruncatedStream, err)
	}
	if b0&0x20 == 0 {
		return int32(b0&0x3f)<<16 | int32(b1)<<8 | int32(b2), nil
	}

	b3, err := r.ReadByte()
	if err != nil {
		return 0, cramerr.New(cramerr.TruncatedStream, err)
	}
	if b0&0x10 == 0 {
		return int32(b0&0x1f)<<24 | int32(b1)<<16 | int32(b2)<<8 | int32(b3), nil
	}

	b4, err := r.ReadByte()
	if err != nil {
		return 0, cramerr.New(cramerr.TruncatedStream, err)
	}
	return int32(uint32(b0&0x0f)<<28 | uint32(b1)<<20 | uint32(b2)<<12 | uint32(b3)<<4 | uint32(b4&0x0f)), nil
}

// WriteITF8 encodes v using CRAM's ITF8 encoding and returns the number of
// bytes written.
func WriteITF8(w io.ByteWriter, v int32) (int, error) {
	u := uint32(v)
	switch {
	case u>>7 == 0:
		return 1, w.WriteByte(byte(u))
	case u>>14 == 0:
		if err := w.WriteByte(byte(u>>8) | 0x80); err != nil {
			return 0, err
		}
		return 2, w.WriteByte(byte(u))
	case u>>21 == 0:
		if err := w.WriteByte(byte(u>>16) | 0xc0); err != nil {
			return 0, err
		}
		if err := w.WriteByte(byte(u >> 8)); err != nil {
			return 0, err
		}
		return 3, w.WriteByte(byte(u))
	case u>>28 == 0:
		if err := w.WriteByte(byte(u>>24) | 0xe0); err != nil {
			return 0, err
		}
		if err := w.WriteByte(byte(u >> 16)); err != nil {
			return 0, err
		}
		if err := w.WriteByte(byte(u >> 8)); err != nil {
			return 0, err
		}
		return 4, w.WriteByte(byte(u))
	default:
		if err := w.WriteByte(byte(u>>28) | 0xf0); err != nil {
			return 0, err
		}
		if err := w.WriteByte(byte(u >> 20)); err != nil {
			return 0, err
		}
		if err := w.WriteByte(byte(u >> 12)); err != nil {
			return 0, err
		}
		if err := w.WriteByte(byte(u >> 4)); err != nil {
			return 0, err
		}
		return 5, w.WriteByte(byte(u))
	}
}
