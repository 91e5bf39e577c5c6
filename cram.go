// Package cram decodes a CRAM-format genomic alignment container stream
// into normalized SAM/BAM-ready alignment records. It wires together the
// bit-level codec family (Huffman, Beta, Golomb, External), the
// container/slice parser, and the record normalizer.
package cram

import (
	"fmt"
	"io"
	"os"

	"github.com/singerma/cramtools/container"
	"github.com/singerma/cramtools/cramerr"
	"github.com/singerma/cramtools/internal/bufseekio"
	"github.com/singerma/cramtools/normalize"
)

// FileSignature is present at the beginning of every CRAM file.
const FileSignature = "CRAM"

// FileHeader is the fixed 26-byte header preceding the SAM header block
// and the first container (spec.md §6).
type FileHeader struct {
	MajorVersion byte
	MinorVersion byte
	ID           [20]byte
}

// Sink is the downstream writer contract this core hands normalized
// records to (spec.md §6); format selection (SAM text, BAM, FASTQ) is an
// external concern.
type Sink interface {
	AddAlignment(r *container.Record) error
	Close() error
}

// Stream is an open CRAM bitstream: its file header, raw SAM header
// text, and the state needed to decode containers one at a time.
type Stream struct {
	Header     FileHeader
	SAMHeader  []byte
	Reference  ReferenceSource
	NamePrefix string

	r   io.Reader
	ref *referenceCache
	nz  *normalize.Normalizer
}

// Open opens the named CRAM file and returns a parsed Stream positioned
// at the first container. The file is wrapped in a buffered ReadSeeker
// so the (currently unexercised) index-seek path can later jump to a
// container offset without losing buffered lookahead.
func Open(filePath string) (*Stream, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	return NewStream(bufseekio.NewReadSeeker(f), nil)
}

// NewStream reads the 26-byte file header and the SAM header block from
// r and returns a Stream ready to decode containers. ref may be nil for
// reference-free ("unmapped-only") inputs.
func NewStream(r io.Reader, ref ReferenceSource) (*Stream, error) {
	sig := make([]byte, 4)
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, cramerr.New(cramerr.TruncatedStream, err)
	}
	if string(sig) != FileSignature {
		return nil, fmt.Errorf("cram.NewStream: invalid signature; expected %q, got %q", FileSignature, sig)
	}

	s := &Stream{r: r, Reference: ref, NamePrefix: "read_"}

	var verBuf [2]byte
	if _, err := io.ReadFull(r, verBuf[:]); err != nil {
		return nil, cramerr.New(cramerr.TruncatedStream, err)
	}
	s.Header.MajorVersion = verBuf[0]
	s.Header.MinorVersion = verBuf[1]

	if _, err := io.ReadFull(r, s.Header.ID[:]); err != nil {
		return nil, cramerr.New(cramerr.TruncatedStream, err)
	}

	// The SAM header is itself carried as a length-prefixed block
	// (content type ContentFileHeader) ahead of the first real container.
	block, err := container.ReadBlock(r)
	if err != nil {
		return nil, err
	}
	s.SAMHeader = block.Raw

	s.ref = newReferenceCache(ref)
	s.nz = &normalize.Normalizer{NamePrefix: s.NamePrefix}

	return s, nil
}

// Decode reads every remaining container from the stream, normalizing
// each one's record batch and handing it to sink in order. Container
// failures propagate immediately; the Stream does not retry (spec.md
// §7).
func (s *Stream) Decode(sink Sink) error {
	for {
		records, err := s.nextContainer()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		for _, r := range records {
			if err := sink.AddAlignment(r); err != nil {
				return err
			}
		}
	}
	return sink.Close()
}

// nextContainer decodes the next container's full record batch, or
// returns io.EOF once the stream is exhausted cleanly.
func (s *Stream) nextContainer() ([]*container.Record, error) {
	header, err := container.ReadHeader(s.r)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}

	chBlock, err := container.ReadBlock(s.r)
	if err != nil {
		return nil, err
	}
	ch, err := container.ReadCompressionHeader(chBlock.Raw)
	if err != nil {
		return nil, err
	}

	var ref []byte
	if header.SequenceID >= 0 {
		ref, err = s.ref.Bases(header.SequenceID)
		if err != nil {
			return nil, err
		}
	}

	var all []*container.Record
	for _, offset := range header.SliceOffsets {
		_ = offset // slice offsets are for random-access seeking; the
		// sequential decode path below reads slices in stream order.

		slice, err := container.ReadSliceHeader(s.r)
		if err != nil {
			return nil, err
		}
		for i := int32(0); i < slice.NumBlocks; i++ {
			blk, err := container.ReadBlock(s.r)
			if err != nil {
				return nil, err
			}
			slice.AddBlock(blk.ContentID, blk.Raw)
		}

		records, err := slice.ReadRecords(ch, int(slice.NumRecords))
		if err != nil {
			return nil, err
		}

		if err := s.nz.Normalize(records, ref, ch.Matrix, ch.APSeriesDelta()); err != nil {
			return nil, err
		}

		all = append(all, records...)
	}

	return all, nil
}

