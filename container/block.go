package container

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"

	"github.com/singerma/cramtools/cramerr"
	"github.com/singerma/cramtools/itf8"
)

// Compression methods a block may declare.
const (
	MethodRaw uint8 = iota
	MethodGzip
	MethodBzip2
)

// Content types a block may carry.
const (
	ContentFileHeader uint8 = iota
	ContentCompressionHeader
	ContentSliceHeader
	ContentCore
	ContentExternal
)

// Block is one length-prefixed, independently compressed unit within a
// container: the compression header is carried in one block, the slice
// header in another, and each slice's core/external data series buffers
// each get their own block, keyed by ContentID.
type Block struct {
	Method      uint8
	ContentType uint8
	ContentID   int32
	RawSize     int32
	Raw         []byte
	CRC         uint32
}

// ReadBlock reads one block: method byte, content type byte, content id,
// compressed size, raw size, the compressed payload, then a trailing
// CRC-32 over the compressed bytes.
func ReadBlock(r io.Reader) (*Block, error) {
	br := byteReader{r}

	method, err := br.ReadByte()
	if err != nil {
		return nil, cramerr.New(cramerr.TruncatedStream, err)
	}
	contentType, err := br.ReadByte()
	if err != nil {
		return nil, cramerr.New(cramerr.TruncatedStream, err)
	}
	contentID, err := itf8.ReadITF8(br)
	if err != nil {
		return nil, err
	}
	compressedSize, err := itf8.ReadITF8(br)
	if err != nil {
		return nil, err
	}
	rawSize, err := itf8.ReadITF8(br)
	if err != nil {
		return nil, err
	}
	if compressedSize < 0 || rawSize < 0 {
		return nil, cramerr.Newf(cramerr.MalformedStream, "container: block: negative size (compressed=%d raw=%d)", compressedSize, rawSize)
	}

	payload := make([]byte, compressedSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, cramerr.New(cramerr.TruncatedStream, err)
	}

	var crcBuf [4]byte
	if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
		return nil, cramerr.New(cramerr.TruncatedStream, err)
	}

	raw, err := decompress(uint8(method), payload, int(rawSize))
	if err != nil {
		return nil, err
	}

	return &Block{
		Method:      uint8(method),
		ContentType: uint8(contentType),
		ContentID:   contentID,
		RawSize:     rawSize,
		Raw:         raw,
		CRC:         uint32(crcBuf[0]) | uint32(crcBuf[1])<<8 | uint32(crcBuf[2])<<16 | uint32(crcBuf[3])<<24,
	}, nil
}

// decompress inflates a block's compressed payload according to its
// declared method. MethodRaw is a passthrough; MethodGzip and
// MethodBzip2 both decode via the standard library, which is sufficient
// since this pipeline only ever reads CRAM, never writes it (see
// DESIGN.md for why no third-party bzip2 decoder was wired in here).
func decompress(method uint8, payload []byte, rawSize int) ([]byte, error) {
	switch method {
	case MethodRaw:
		return payload, nil

	case MethodGzip:
		zr, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, cramerr.Newf(cramerr.MalformedStream, "container: block: gzip: %v", err)
		}
		defer zr.Close()
		out := make([]byte, 0, rawSize)
		buf := bytes.NewBuffer(out)
		if _, err := io.Copy(buf, zr); err != nil {
			return nil, cramerr.Newf(cramerr.MalformedStream, "container: block: gzip: %v", err)
		}
		return buf.Bytes(), nil

	case MethodBzip2:
		br := bzip2.NewReader(bytes.NewReader(payload))
		out := make([]byte, 0, rawSize)
		buf := bytes.NewBuffer(out)
		if _, err := io.Copy(buf, br); err != nil {
			return nil, cramerr.Newf(cramerr.MalformedStream, "container: block: bzip2: %v", err)
		}
		return buf.Bytes(), nil

	default:
		return nil, cramerr.Newf(cramerr.UnsupportedEncoding, "container: block: unsupported compression method %d", method)
	}
}
