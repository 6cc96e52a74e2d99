// Package resettable builds the LZXC reset table CHM files keep next to an
// LZX stream: the compressed offset at which every frame starts.
package resettable

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/lzxtools/pkg/lzx"
)

const (
	Version    = 2
	EntrySize  = 8
	HeaderSize = 0x28
)

var (
	ErrTooShort = errors.New("reset table too short")
	ErrVersion  = errors.New("unsupported reset table version")
	ErrLayout   = errors.New("unexpected reset table layout")
)

// Table is a parsed reset table. Offsets[i] is the compressed offset of
// frame i; the first entry is always 0.
type Table struct {
	Uncompressed uint64
	Compressed   uint64
	BlockSize    uint64
	Offsets      []uint64
}

// Recorder collects frame boundaries from an lzx.Encoder.
type Recorder struct {
	frames []lzx.Frame
}

// MarkFrame implements lzx.FrameMarker.
func (r *Recorder) MarkFrame(uncompressed, compressed int64) {
	r.frames = append(r.frames, lzx.Frame{Uncompressed: uncompressed, Compressed: compressed})
}

func (r *Recorder) Frames() []lzx.Frame { return r.frames }

// Table builds the reset table for the frames seen so far.
func (r *Recorder) Table() *Table {
	return FromFrames(r.frames)
}

// FromFrames builds a reset table from frame end notifications.
func FromFrames(frames []lzx.Frame) *Table {
	t := &Table{BlockSize: lzx.FrameSize}
	if len(frames) == 0 {
		return t
	}
	t.Offsets = append(t.Offsets, 0)
	for _, f := range frames[:len(frames)-1] {
		t.Offsets = append(t.Offsets, uint64(f.Compressed))
	}
	last := frames[len(frames)-1]
	t.Uncompressed = uint64(last.Uncompressed)
	t.Compressed = uint64(last.Compressed)
	return t
}

// MarshalBinary encodes the table in the LZXC layout.
func (t *Table) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize+EntrySize*len(t.Offsets))
	binary.LittleEndian.PutUint32(buf[0x00:], Version)
	binary.LittleEndian.PutUint32(buf[0x04:], uint32(len(t.Offsets)))
	binary.LittleEndian.PutUint32(buf[0x08:], EntrySize)
	binary.LittleEndian.PutUint32(buf[0x0C:], HeaderSize)
	binary.LittleEndian.PutUint64(buf[0x10:], t.Uncompressed)
	binary.LittleEndian.PutUint64(buf[0x18:], t.Compressed)
	binary.LittleEndian.PutUint64(buf[0x20:], t.BlockSize)
	for i, off := range t.Offsets {
		binary.LittleEndian.PutUint64(buf[HeaderSize+i*EntrySize:], off)
	}
	return buf, nil
}

// Parse decodes a reset table.
func Parse(data []byte) (*Table, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooShort, len(data))
	}
	if v := binary.LittleEndian.Uint32(data[0x00:]); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, v)
	}
	count := int(binary.LittleEndian.Uint32(data[0x04:]))
	entrySize := binary.LittleEndian.Uint32(data[0x08:])
	headerSize := int(binary.LittleEndian.Uint32(data[0x0C:]))
	if entrySize != EntrySize || headerSize < HeaderSize {
		return nil, fmt.Errorf("%w: entry size %d, header size %d", ErrLayout, entrySize, headerSize)
	}
	if headerSize > len(data) || count > (len(data)-headerSize)/EntrySize {
		return nil, fmt.Errorf("%w: %d entries need %d bytes, have %d",
			ErrTooShort, count, headerSize+count*EntrySize, len(data))
	}

	t := &Table{
		Uncompressed: binary.LittleEndian.Uint64(data[0x10:]),
		Compressed:   binary.LittleEndian.Uint64(data[0x18:]),
		BlockSize:    binary.LittleEndian.Uint64(data[0x20:]),
		Offsets:      make([]uint64, count),
	}
	for i := range t.Offsets {
		t.Offsets[i] = binary.LittleEndian.Uint64(data[headerSize+i*EntrySize:])
	}
	return t, nil
}
