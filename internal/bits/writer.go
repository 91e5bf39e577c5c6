package bits

import (
	"io"

	"github.com/icza/bitio"
)

// Writer is the write-side counterpart of Reader, used by the codec
// round-trip tests to exercise the encode path of each codec.
type Writer struct {
	bw *bitio.Writer
}

// NewWriter returns a Writer pushing bits to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bitio.NewWriter(w)}
}

// WriteBits writes the low n bits (1 <= n <= 64) of v, MSB-first.
func (w *Writer) WriteBits(v uint64, n uint8) error {
	return w.bw.WriteBits(v, n)
}

// WriteUnary encodes x as an unary coded integer: x zeros followed by a one.
func (w *Writer) WriteUnary(x uint64) error {
	for ; x > 0; x-- {
		if err := w.WriteBits(0, 1); err != nil {
			return err
		}
	}
	return w.WriteBits(1, 1)
}

// Align flushes any partial byte, padding with zero bits, and returns the
// number of padding bits written.
func (w *Writer) Align() (int8, error) {
	return w.bw.Align()
}

// Close flushes pending writes.
func (w *Writer) Close() error {
	return w.bw.Close()
}
