package codec

import (
	"bytes"
	"io"

	"github.com/singerma/cramtools/cramerr"
	"github.com/singerma/cramtools/itf8"
)

// Descriptor identifies a codec by tag and carries its serialized
// parameters, as stored inside the compression header (spec.md §4.4).
type Descriptor struct {
	ID     Kind
	Params []byte
}

// ReadDescriptor reads an (id, param_bytes) pair: id as ITF8, a param
// length as ITF8, then that many raw param bytes.
func ReadDescriptor(r *bytes.Reader) (*Descriptor, error) {
	id, err := itf8.ReadITF8(r)
	if err != nil {
		return nil, err
	}
	n, err := itf8.ReadITF8(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, cramerr.Newf(cramerr.MalformedStream, "codec: descriptor: negative param length %d", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, cramerr.New(cramerr.TruncatedStream, err)
	}
	return &Descriptor{ID: Kind(id), Params: buf}, nil
}

// WriteDescriptor writes the (id, param_bytes) pair.
func WriteDescriptor(buf *bytes.Buffer, d *Descriptor) error {
	if _, err := itf8.WriteITF8(buf, int32(d.ID)); err != nil {
		return err
	}
	if _, err := itf8.WriteITF8(buf, int32(len(d.Params))); err != nil {
		return err
	}
	buf.Write(d.Params)
	return nil
}

// Build dispatches on d.ID to construct the concrete codec it describes.
// Unknown ids fail UnsupportedEncoding.
func (d *Descriptor) Build() (interface{}, error) {
	r := bytes.NewReader(d.Params)
	switch d.ID {
	case KindBeta:
		offset, err := itf8.ReadITF8(r)
		if err != nil {
			return nil, err
		}
		bitLimit, err := itf8.ReadITF8(r)
		if err != nil {
			return nil, err
		}
		return NewBeta(offset, uint32(bitLimit))

	case KindGolomb:
		offset, err := itf8.ReadITF8(r)
		if err != nil {
			return nil, err
		}
		m, err := itf8.ReadITF8(r)
		if err != nil {
			return nil, err
		}
		return NewGolomb(uint32(m), offset)

	case KindHuffmanInt:
		values, bitLengths, err := readHuffmanParams(r)
		if err != nil {
			return nil, err
		}
		return NewHuffmanInt(values, bitLengths)

	case KindHuffmanByte:
		values, bitLengths, err := readHuffmanParams(r)
		if err != nil {
			return nil, err
		}
		bvals := make([]byte, len(values))
		for i, v := range values {
			bvals[i] = byte(v)
		}
		return NewHuffmanByte(bvals, bitLengths)

	case KindExternal, KindByteArrayLen, KindByteArrayStop:
		// These carry no bit-level parameters of their own; the caller
		// supplies the side-channel reader/writer when instantiating them
		// against a slice's per-block buffers. BYTE_ARRAY_STOP additionally
		// carries a sentinel byte ahead of its external content id, which
		// Params still holds raw for the caller to parse, since reading it
		// changes the array's framing (stop-delimited, not length-prefixed)
		// rather than anything this package's bit-level codecs model.
		return nil, nil

	default:
		return nil, cramerr.Newf(cramerr.UnsupportedEncoding, "codec: unsupported encoding id %v", d.ID)
	}
}

func readHuffmanParams(r *bytes.Reader) ([]int32, []uint32, error) {
	n, err := itf8.ReadITF8(r)
	if err != nil {
		return nil, nil, err
	}
	if n < 0 {
		return nil, nil, cramerr.Newf(cramerr.MalformedStream, "codec: huffman: negative alphabet size %d", n)
	}
	values := make([]int32, n)
	for i := range values {
		v, err := itf8.ReadITF8(r)
		if err != nil {
			return nil, nil, err
		}
		values[i] = v
	}

	n2, err := itf8.ReadITF8(r)
	if err != nil {
		return nil, nil, err
	}
	if n2 != n {
		return nil, nil, cramerr.Newf(cramerr.MalformedStream, "codec: huffman: value count %d != bit length count %d", n, n2)
	}
	bitLengths := make([]uint32, n2)
	for i := range bitLengths {
		v, err := itf8.ReadITF8(r)
		if err != nil {
			return nil, nil, err
		}
		if v < 0 {
			return nil, nil, cramerr.Newf(cramerr.MalformedStream, "codec: huffman: negative bit length %d", v)
		}
		bitLengths[i] = uint32(v)
	}
	return values, bitLengths, nil
}
