package container

import (
	"bytes"
	"io"

	"github.com/singerma/cramtools/codec"
	"github.com/singerma/cramtools/cramerr"
	"github.com/singerma/cramtools/internal/bits"
	"github.com/singerma/cramtools/itf8"
)

// Slice is a sub-container grouping a contiguous run of records that
// share the same set of per-series compressed byte buffers, keyed by
// block content id (spec.md §3 Slice).
type Slice struct {
	SequenceID     int32
	AlignmentStart int32
	AlignmentSpan  int32
	NumRecords     int32
	RecordCounter  int64
	NumBlocks      int32
	ContentIDs     []int32
	RefMD5         [16]byte

	// blocks holds the raw decompressed bytes of every block in this
	// slice, keyed by content id. Block 0 (by convention the core bit
	// block, spec.md §4.5) is addressed separately via core.
	blocks map[int32][]byte
	core   []byte

	header *CompressionHeader
}

// ReadSliceHeader parses a slice header from r. It does not consume the
// slice's block payloads; callers read those separately via ReadBlock and
// attach them with AddBlock before calling Codecs.
func ReadSliceHeader(r io.Reader) (*Slice, error) {
	br := byteReader{r}
	s := new(Slice)
	var err error
	if s.SequenceID, err = itf8.ReadITF8(br); err != nil {
		return nil, err
	}
	if s.AlignmentStart, err = itf8.ReadITF8(br); err != nil {
		return nil, err
	}
	if s.AlignmentSpan, err = itf8.ReadITF8(br); err != nil {
		return nil, err
	}
	if s.NumRecords, err = itf8.ReadITF8(br); err != nil {
		return nil, err
	}
	counter, err := itf8.ReadITF8(br)
	if err != nil {
		return nil, err
	}
	s.RecordCounter = int64(counter)
	if s.NumBlocks, err = itf8.ReadITF8(br); err != nil {
		return nil, err
	}
	nIDs, err := itf8.ReadITF8(br)
	if err != nil {
		return nil, err
	}
	if nIDs < 0 {
		return nil, cramerr.Newf(cramerr.MalformedStream, "container: slice header: negative content id count %d", nIDs)
	}
	s.ContentIDs = make([]int32, nIDs)
	for i := range s.ContentIDs {
		if s.ContentIDs[i], err = itf8.ReadITF8(br); err != nil {
			return nil, err
		}
	}
	if _, err := io.ReadFull(r, s.RefMD5[:]); err != nil {
		return nil, cramerr.New(cramerr.TruncatedStream, err)
	}

	s.blocks = make(map[int32][]byte, nIDs)
	return s, nil
}

// AddBlock attaches a decompressed block payload to the slice, keyed by
// its content id. Content id 0 is the core bit block addressed by all bit
// codecs (Huffman, Beta, Golomb); all other ids back EXTERNAL series.
func (s *Slice) AddBlock(contentID int32, payload []byte) {
	if contentID == 0 {
		s.core = payload
		return
	}
	s.blocks[contentID] = payload
}

// externalBlock returns the decompressed bytes for the given content id,
// failing TruncatedSlice if the slice never received that block.
func (s *Slice) externalBlock(contentID int32) ([]byte, error) {
	b, ok := s.blocks[contentID]
	if !ok {
		return nil, cramerr.Newf(cramerr.TruncatedStream, "container: slice: missing external block %d", contentID)
	}
	return b, nil
}

// seriesCodecs holds one instantiated codec per data series for a single
// slice, as built by Codecs. A bit-level series gets an entry in
// whichever of ints/bytes its codec implements; an EXTERNAL,
// BYTE_ARRAY_LEN or BYTE_ARRAY_STOP series gets an entry in both, sharing
// one cursor over its external block. stopByte holds
// the sentinel for any series encoded BYTE_ARRAY_STOP; its absence means
// the series (if a byte array at all) is length-prefixed instead. tags
// holds one codec per optional-tag id named in the compression header's
// tag encoding map (spec.md §4.5).
type seriesCodecs struct {
	ints     map[SeriesTag]codecIntReader
	bytes    map[SeriesTag]codecByteReader
	stopByte map[SeriesTag]byte
	tags     map[int32]*tagCodec
}

// tagCodec is the resolved codec for one optional-tag id's value
// encoding. A tag resolved to an external block has both ints and bytes
// set over the same cursor (when hasStop is set, bytes is read up to the
// stop byte; otherwise ints gives the length for bytes); a tag resolved to
// a bit-level codec has exactly one of them set.
type tagCodec struct {
	ints    codecIntReader
	bytes   codecByteReader
	stop    byte
	hasStop bool
}

// codecIntReader is the subset of codec.IntCodec this package consumes.
type codecIntReader interface {
	ReadInt(r *bits.Reader) (int32, error)
}

// codecByteReader is the subset of codec.ByteCodec this package consumes.
type codecByteReader interface {
	ReadByte(r *bits.Reader) (byte, error)
}

// externalIntCodec and externalByteCodec adapt a slice's own external
// block (an ITF8-encoded side channel, per spec.md §4.4) behind the
// codecIntReader/codecByteReader interfaces so the parser never needs to
// special-case EXTERNAL series.
type externalIntCodec struct{ r *bytes.Reader }

func (e *externalIntCodec) ReadInt(*bits.Reader) (int32, error) {
	v, err := itf8.ReadITF8(e.r)
	if err != nil {
		return 0, cramerr.New(cramerr.TruncatedStream, err)
	}
	return v, nil
}

type externalByteCodec struct{ r *bytes.Reader }

func (e *externalByteCodec) ReadByte(*bits.Reader) (byte, error) {
	b, err := e.r.ReadByte()
	if err != nil {
		return 0, cramerr.New(cramerr.TruncatedStream, err)
	}
	return b, nil
}

// bitIntCodec and bitByteCodec adapt the bit-level codecs in the codec
// package (whose ReadInt/ReadByte already take *bits.Reader) so they
// satisfy the same two interfaces as the external adapters above.
type bitIntCodec struct {
	read func(*bits.Reader) (int32, error)
}

func (c *bitIntCodec) ReadInt(r *bits.Reader) (int32, error) { return c.read(r) }

type bitByteCodec struct {
	read func(*bits.Reader) (byte, error)
}

func (c *bitByteCodec) ReadByte(r *bits.Reader) (byte, error) { return c.read(r) }

// Codecs instantiates one codec per data series named in the compression
// header, resolving EXTERNAL series against the slice's own blocks and
// bit-level series (Huffman/Beta/Golomb) against the slice's shared core
// bit block. It also resolves one codec per optional-tag id in the
// header's tag encoding map, so readTagValue can consume each tag's
// value with the framing its own encoding calls for. The returned bit
// reader must be used for every bit-coded series in this slice (they
// share one MSB-first cursor).
func (s *Slice) Codecs(h *CompressionHeader) (*seriesCodecs, *bits.Reader, error) {
	s.header = h
	br := bits.NewReader(bytes.NewReader(s.core))

	sc := &seriesCodecs{
		ints:     make(map[SeriesTag]codecIntReader),
		bytes:    make(map[SeriesTag]codecByteReader),
		stopByte: make(map[SeriesTag]byte),
		tags:     make(map[int32]*tagCodec),
	}

	for tag, d := range h.Descriptors {
		ir, br2, stop, hasStop, err := s.resolveDescriptor(d)
		if err != nil {
			return nil, nil, err
		}
		if ir != nil {
			sc.ints[tag] = ir
		}
		if br2 != nil {
			sc.bytes[tag] = br2
		}
		if hasStop {
			sc.stopByte[tag] = stop
		}
		if ir == nil && br2 == nil {
			return nil, nil, cramerr.Newf(cramerr.UnsupportedEncoding, "container: slice: codec for series %q implements neither ReadInt nor ReadByte", tag)
		}
	}

	for tagID, d := range h.TagEncodings {
		ir, br2, stop, hasStop, err := s.resolveDescriptor(d)
		if err != nil {
			return nil, nil, err
		}
		sc.tags[tagID] = &tagCodec{ints: ir, bytes: br2, stop: stop, hasStop: hasStop}
	}

	return sc, br, nil
}

// resolveDescriptor builds the int/byte codec pair named by d. EXTERNAL
// and BYTE_ARRAY_LEN resolve against the slice's own block, addressed
// via the ITF8-encoded content id carried in d.Params (spec.md §4.4).
// BYTE_ARRAY_STOP resolves the same way but additionally carries a
// sentinel byte ahead of the content id, and hasStop reports that to the
// caller so it can switch from length-prefixed to stop-delimited reads.
func (s *Slice) resolveDescriptor(d *codec.Descriptor) (codecIntReader, codecByteReader, byte, bool, error) {
	if d.ID == codec.KindByteArrayStop {
		pr := bytes.NewReader(d.Params)
		stop, err := pr.ReadByte()
		if err != nil {
			return nil, nil, 0, false, cramerr.New(cramerr.TruncatedStream, err)
		}
		contentID, err := itf8.ReadITF8(pr)
		if err != nil {
			return nil, nil, 0, false, err
		}
		payload, err := s.externalBlock(contentID)
		if err != nil {
			return nil, nil, 0, false, err
		}
		er := bytes.NewReader(payload)
		return &externalIntCodec{r: er}, &externalByteCodec{r: er}, stop, true, nil
	}

	built, err := d.Build()
	if err != nil {
		return nil, nil, 0, false, err
	}
	if built == nil {
		// EXTERNAL / BYTE_ARRAY_LEN: length-prefixed side channel.
		contentID, err := itf8.ReadITF8(bytes.NewReader(d.Params))
		if err != nil {
			return nil, nil, 0, false, err
		}
		payload, err := s.externalBlock(contentID)
		if err != nil {
			return nil, nil, 0, false, err
		}
		er := bytes.NewReader(payload)
		return &externalIntCodec{r: er}, &externalByteCodec{r: er}, 0, false, nil
	}

	switch c := built.(type) {
	case interface{ ReadInt(*bits.Reader) (int32, error) }:
		return &bitIntCodec{read: c.ReadInt}, nil, 0, false, nil
	case interface{ ReadByte(*bits.Reader) (byte, error) }:
		return nil, &bitByteCodec{read: c.ReadByte}, 0, false, nil
	default:
		return nil, nil, 0, false, nil
	}
}

func (sc *seriesCodecs) readInt(br *bits.Reader, tag SeriesTag) (int32, error) {
	c, ok := sc.ints[tag]
	if !ok {
		return 0, cramerr.Newf(cramerr.UnsupportedEncoding, "container: slice: no codec for data series %q", tag)
	}
	return c.ReadInt(br)
}

func (sc *seriesCodecs) readByte(br *bits.Reader, tag SeriesTag) (byte, error) {
	c, ok := sc.bytes[tag]
	if !ok {
		return 0, cramerr.Newf(cramerr.UnsupportedEncoding, "container: slice: no codec for data series %q", tag)
	}
	return c.ReadByte(br)
}

// readTagValue consumes one optional tag's value bytes, using whichever
// encoding the compression header named for tagID (spec.md §4.5). A
// BYTE_ARRAY_STOP tag reads until its sentinel; an EXTERNAL/BYTE_ARRAY_LEN
// tag reads an ITF8 length then that many bytes; a tag resolved to a bare
// bit-level codec reads a single scalar. Either way the bit/byte cursor
// ends up exactly past the tag's value, so the next tag (or record) stays
// in sync.
func (sc *seriesCodecs) readTagValue(br *bits.Reader, tagID int32) error {
	tc, ok := sc.tags[tagID]
	if !ok {
		return cramerr.Newf(cramerr.UnsupportedEncoding, "container: slice: no codec for tag id %d", tagID)
	}

	if tc.hasStop {
		for {
			b, err := tc.bytes.ReadByte(br)
			if err != nil {
				return wrapTruncated(err)
			}
			if b == tc.stop {
				return nil
			}
		}
	}

	if tc.ints != nil && tc.bytes != nil {
		n, err := tc.ints.ReadInt(br)
		if err != nil {
			return wrapTruncated(err)
		}
		if n < 0 {
			return cramerr.Newf(cramerr.MalformedStream, "container: slice: negative tag value length %d", n)
		}
		for i := int32(0); i < n; i++ {
			if _, err := tc.bytes.ReadByte(br); err != nil {
				return wrapTruncated(err)
			}
		}
		return nil
	}

	if tc.ints != nil {
		if _, err := tc.ints.ReadInt(br); err != nil {
			return wrapTruncated(err)
		}
		return nil
	}

	if tc.bytes != nil {
		if _, err := tc.bytes.ReadByte(br); err != nil {
			return wrapTruncated(err)
		}
		return nil
	}

	return cramerr.Newf(cramerr.UnsupportedEncoding, "container: slice: tag id %d has no usable codec", tagID)
}
