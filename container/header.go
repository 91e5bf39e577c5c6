// Package container implements the CRAM container/slice parser: it reads
// a container header, the compression header (per-series codec
// descriptors and the substitution matrix), and one or more slices,
// assigning each slice's per-series byte buffer to the correct codec
// instance before pulling records in lock-step across all series.
package container

import (
	"bytes"
	"hash/crc32"
	"io"

	"github.com/singerma/cramtools/cramerr"
	"github.com/singerma/cramtools/itf8"
)

// Special sequence id values (spec.md §3 Container).
const (
	SeqIDMultiRef = -1
	SeqIDUnmapped = -2
)

// Header is a CRAM container header.
type Header struct {
	CompressionHeaderLen int32
	NumRecords           int32
	SequenceID           int32
	AlignmentStart       int32
	AlignmentSpan        int32
	NumBases             int64
	BlockCount           int32
	SliceOffsets         []int32
	CRC                  uint32
}

// ReadHeader reads a container header from r. The container header's own
// bytes (save the CRC itself) are fed through a CRC-32 (IEEE) hash so the
// trailing checksum can be verified; CRAM's container header CRC is
// 32-bit, wider than anything mewkiz/pkg/hashutil offers, so the standard
// library's hash/crc32 is used directly (see DESIGN.md).
func ReadHeader(r io.Reader) (*Header, error) {
	var lead [1]byte
	switch n, err := io.ReadFull(r, lead[:]); {
	case n == 0 && err == io.EOF:
		// Clean end of stream at a container boundary: not a truncation.
		return nil, io.EOF
	case err != nil:
		return nil, cramerr.New(cramerr.TruncatedStream, err)
	}

	var buf bytes.Buffer
	tr := io.TeeReader(io.MultiReader(bytes.NewReader(lead[:]), r), &buf)
	br := byteReader{tr}

	h := new(Header)
	var err error
	if h.CompressionHeaderLen, err = itf8.ReadITF8(br); err != nil {
		return nil, err
	}
	if h.NumRecords, err = itf8.ReadITF8(br); err != nil {
		return nil, err
	}
	if h.SequenceID, err = itf8.ReadITF8(br); err != nil {
		return nil, err
	}
	if h.AlignmentStart, err = itf8.ReadITF8(br); err != nil {
		return nil, err
	}
	if h.AlignmentSpan, err = itf8.ReadITF8(br); err != nil {
		return nil, err
	}
	numBasesHi, err := itf8.ReadITF8(br)
	if err != nil {
		return nil, err
	}
	h.NumBases = int64(numBasesHi)
	if h.BlockCount, err = itf8.ReadITF8(br); err != nil {
		return nil, err
	}
	nOffsets, err := itf8.ReadITF8(br)
	if err != nil {
		return nil, err
	}
	if nOffsets < 0 {
		return nil, cramerr.Newf(cramerr.MalformedStream, "container: header: negative slice offset count %d", nOffsets)
	}
	h.SliceOffsets = make([]int32, nOffsets)
	for i := range h.SliceOffsets {
		if h.SliceOffsets[i], err = itf8.ReadITF8(br); err != nil {
			return nil, err
		}
	}

	got := crc32.ChecksumIEEE(buf.Bytes())
	wantBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, wantBuf); err != nil {
		return nil, cramerr.New(cramerr.TruncatedStream, err)
	}
	want := uint32(wantBuf[0]) | uint32(wantBuf[1])<<8 | uint32(wantBuf[2])<<16 | uint32(wantBuf[3])<<24
	if want != got {
		return nil, cramerr.Newf(cramerr.MalformedStream, "container: header: checksum mismatch; expected 0x%08x, got 0x%08x", want, got)
	}
	h.CRC = want

	return h, nil
}

// byteReader adapts an io.Reader lacking ReadByte to io.ByteReader.
type byteReader struct {
	io.Reader
}

func (b byteReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.Reader, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
