package lzx

import (
	"bytes"
	"fmt"
	"io"

	"github.com/icza/bitio"
)

// bitWriter packs bits MSB-first into 16-bit little-endian words. bitio
// produces big-endian bytes, so every completed pair is swapped before it
// reaches out.
type bitWriter struct {
	out     io.Writer
	scratch bytes.Buffer
	bits    *bitio.Writer
	pending int   // bits since the last 16-bit boundary
	written int64 // bytes handed to out
	err     error
}

func newBitWriter(out io.Writer) *bitWriter {
	w := &bitWriter{out: out}
	w.bits = bitio.NewWriter(&w.scratch)
	return w
}

func (w *bitWriter) writeBits(v uint64, n int) {
	if n == 0 || w.err != nil {
		return
	}
	if err := w.bits.WriteBits(v, uint8(n)); err != nil {
		w.err = fmt.Errorf("failed to pack bits: %w", err)
		return
	}
	w.pending = (w.pending + n) % 16
	if w.scratch.Len() >= 2 {
		w.flush()
	}
}

// align pads with zero bits up to the next 16-bit boundary. Everything
// written so far has reached out afterwards.
func (w *bitWriter) align() {
	if w.pending != 0 {
		w.writeBits(0, 16-w.pending)
	}
}

func (w *bitWriter) flush() {
	buf := w.scratch.Bytes()
	n := len(buf) &^ 1
	for i := 0; i < n; i += 2 {
		buf[i], buf[i+1] = buf[i+1], buf[i]
	}
	written, err := w.out.Write(buf[:n])
	w.written += int64(written)
	if err == nil && written < n {
		err = ErrShortWrite
	}
	if err != nil {
		w.err = fmt.Errorf("failed to write output: %w", err)
	}
	w.scratch.Next(n)
}
