// Package lzx implements an LZX compressor producing the block, tree and
// frame layout read by CHM and LIT readers.
package lzx

import (
	"fmt"
	"io"

	"github.com/lzxtools/pkg/huffman"
	"github.com/lzxtools/pkg/lz"
)

// FrameMarker is told the uncompressed and compressed totals at the end of
// every frame.
type FrameMarker interface {
	MarkFrame(uncompressed, compressed int64)
}

// FrameMarkerFunc adapts a function to FrameMarker.
type FrameMarkerFunc func(uncompressed, compressed int64)

func (f FrameMarkerFunc) MarkFrame(uncompressed, compressed int64) { f(uncompressed, compressed) }

// Frame is one MarkFrame notification.
type Frame struct {
	Uncompressed int64
	Compressed   int64
}

// Results summarises a finished compression.
type Results struct {
	Uncompressed  int64 // input bytes including padding
	Compressed    int64
	Blocks        int
	AlignedBlocks int
}

// Encoder compresses one stream.
type Encoder struct {
	opts   Options
	src    Source
	marker FrameMarker
	bw     *bitWriter
	lzm    *lz.Matcher

	numSlots     int
	mainTreeSize int
	overhead     float64

	r0, r1, r2 int

	mainFreq    []int
	lengthFreq  []int
	alignedFreq []int

	mainTree    []huffman.Entry
	lengthTree  []huffman.Entry
	alignedTree []huffman.Entry

	prevMainLengths   []uint8
	prevLengthLengths []uint8

	codes       []blockCode
	blockSize   int
	leftInBlock int
	subdivide   int // 0 off, 1 on, -1 cut requested
	entropy     float64
	lastRatio   float64

	needHeader   bool
	read         int64 // input bytes handed to the match finder
	uncompressed int64 // input bytes written out
	lastReset    int64

	blocks        int
	alignedBlocks int
	finished      bool
	err           error
}

type matchSink struct{ e *Encoder }

func (s matchSink) Match(distance, length int) bool { return s.e.outputMatch(distance, length) }
func (s matchSink) Literal(c byte)                  { s.e.outputLiteral(c) }

type fillSource struct{ e *Encoder }

func (s fillSource) Fill(buf []byte) int { return s.e.fill(buf) }

// NewEncoder returns an Encoder reading src and writing the compressed
// stream to w. marker may be nil; opts nil means DefaultOptions.
func NewEncoder(src Source, w io.Writer, marker FrameMarker, opts *Options) (*Encoder, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	e := &Encoder{
		opts:         *opts,
		src:          src,
		marker:       marker,
		bw:           newBitWriter(w),
		numSlots:     NumPositionSlots(opts.WindowBits),
		mainTreeSize: MainTreeSize(opts.WindowBits),
		overhead:     opts.overhead(),
	}
	e.mainFreq = make([]int, e.mainTreeSize)
	e.lengthFreq = make([]int, NumSecondaryLengths)
	e.alignedFreq = make([]int, AlignedSize)
	e.prevMainLengths = make([]uint8, e.mainTreeSize)
	e.prevLengthLengths = make([]uint8, NumSecondaryLengths)

	window := 1 << opts.WindowBits
	lzm, err := lz.New(lz.Config{
		Window:    window,
		MaxDist:   window - 3,
		MaxMatch:  MaxMatch,
		MinMatch:  MinMatch,
		FrameSize: FrameSize,
	}, fillSource{e}, matchSink{e})
	if err != nil {
		return nil, fmt.Errorf("failed to create match finder: %w", err)
	}
	e.lzm = lzm
	e.Reset()
	return e, nil
}

// Reset starts a new reset interval: the repeat offsets return to 1, the
// trees are sent in full again and matches cannot reach back past this
// point.
func (e *Encoder) Reset() {
	e.needHeader = true
	e.r0, e.r1, e.r2 = 1, 1, 1
	clear(e.prevMainLengths)
	clear(e.prevLengthLengths)
	e.lzm.Reset()
}

// CompressBlock compresses up to blockSize input bytes, writing one or more
// LZX blocks. With subdivide set, the bytes may be split across several
// blocks when the statistics change.
func (e *Encoder) CompressBlock(blockSize int, subdivide bool) error {
	if e.finished {
		return ErrFinished
	}
	if e.err != nil {
		return e.err
	}
	if blockSize <= 0 || blockSize >= 1<<24 {
		return fmt.Errorf("%w: %d", ErrBlockSize, blockSize)
	}

	if e.blockSize != blockSize || e.codes == nil {
		e.blockSize = blockSize
		e.codes = make([]blockCode, 0, blockSize)
	}
	e.subdivide = 0
	if subdivide {
		e.subdivide = 1
	}
	e.leftInBlock = blockSize
	e.resetStats()

	written := 0
	for {
		e.lzm.Compress(e.leftInBlock)
		if e.err != nil {
			return e.err
		}
		drained := e.lzm.LeftToProcess() == 0 && e.atEOF()
		if e.subdivide < 0 || e.leftInBlock == 0 || drained {
			// Zero when the input ends exactly on a block boundary.
			if length := blockSize - e.leftInBlock - written; length > 0 {
				if e.subdivide < 0 {
					e.subdivide = 1
				}
				if err := e.writeBlock(length); err != nil {
					return err
				}
				written += length
			}
		}
		if e.leftInBlock == 0 || drained {
			return nil
		}
	}
}

// CompressAll compresses the remaining input in blocks of Options.BlockSize,
// resetting every Options.ResetInterval bytes.
func (e *Encoder) CompressAll() error {
	for !e.Done() {
		size := e.opts.BlockSize
		if ri := int64(e.opts.ResetInterval); ri > 0 {
			pos := e.lzm.Position()
			if pos > e.lastReset && pos%ri == 0 {
				e.Reset()
				e.lastReset = pos
			}
			size = min(size, int(ri-pos%ri))
		}
		if err := e.CompressBlock(size, e.opts.Subdivide); err != nil {
			return err
		}
	}
	return nil
}

// Done reports whether all input has been compressed.
func (e *Encoder) Done() bool {
	return e.err != nil || (e.lzm.LeftToProcess() == 0 && e.atEOF())
}

// Finish closes the trailing partial frame and releases the match finder.
func (e *Encoder) Finish() (Results, error) {
	if e.finished {
		return e.Results(), ErrFinished
	}
	e.finished = true
	if e.err == nil && e.uncompressed%FrameSize != 0 {
		e.bw.align()
		e.markFrame()
	}
	e.lzm.Release()
	if e.err != nil {
		return e.Results(), e.err
	}
	return e.Results(), e.bw.err
}

// Results returns the running totals.
func (e *Encoder) Results() Results {
	return Results{
		Uncompressed:  e.read,
		Compressed:    e.bw.written,
		Blocks:        e.blocks,
		AlignedBlocks: e.alignedBlocks,
	}
}

func (e *Encoder) fail(err error) {
	if e.err == nil {
		e.err = err
	}
	e.lzm.Stop()
}

func (e *Encoder) fill(buf []byte) int {
	if e.err != nil {
		return 0
	}
	n, err := io.ReadFull(e.src, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		e.fail(fmt.Errorf("failed to read input: %w", err))
		return 0
	}
	if n < len(buf) && e.opts.PadFinalFrame {
		pad := int((FrameSize - (e.read+int64(n))%FrameSize) % FrameSize)
		pad = min(pad, len(buf)-n)
		clear(buf[n : n+pad])
		n += pad
	}
	e.read += int64(n)
	return n
}

func (e *Encoder) atEOF() bool {
	switch {
	case e.err != nil, e.lzm.AtEOF():
		return true
	case e.opts.PadFinalFrame && e.read%FrameSize != 0:
		return false
	}
	return e.src.AtEOF()
}

func (e *Encoder) resetStats() {
	e.entropy = 0
	e.lastRatio = noRatio
	e.codes = e.codes[:0]
	clear(e.mainFreq)
	clear(e.lengthFreq)
	clear(e.alignedFreq)
}

func (e *Encoder) writeBlock(length int) error {
	if e.needHeader {
		// No E8 call translation.
		e.bw.writeBits(0, 1)
		e.needHeader = false
	}

	var err error
	if e.alignedTree, err = huffman.Build(e.alignedFreq, MaxAlignedCodeLength); err != nil {
		return fmt.Errorf("%w: aligned tree: %v", ErrCompressInternal, err)
	}
	blockType := BlockVerbatim
	rawBits := 0
	for _, f := range e.alignedFreq {
		rawBits += f * 3
	}
	if huffman.Cost(e.alignedFreq, e.alignedTree)+AlignedSize*3 < rawBits {
		blockType = BlockAligned
	}

	e.bw.writeBits(uint64(blockType), 3)
	e.bw.writeBits(uint64(length), 24)
	if blockType == BlockAligned {
		for _, a := range e.alignedTree {
			e.bw.writeBits(uint64(a.Length), 3)
		}
	}

	if e.mainTree, err = huffman.Build(e.mainFreq, MaxCodeLength); err != nil {
		return fmt.Errorf("%w: main tree: %v", ErrCompressInternal, err)
	}
	if e.lengthTree, err = huffman.Build(e.lengthFreq, MaxCodeLength); err != nil {
		return fmt.Errorf("%w: length tree: %v", ErrCompressInternal, err)
	}
	mainLengths := huffman.Lengths(e.mainTree)
	lengthLengths := huffman.Lengths(e.lengthTree)
	e.writeCompressedTree(mainLengths[:NumChars], e.prevMainLengths[:NumChars])
	e.writeCompressedTree(mainLengths[NumChars:], e.prevMainLengths[NumChars:])
	e.writeCompressedTree(lengthLengths, e.prevLengthLengths)

	if err := e.writeCodes(blockType); err != nil {
		return err
	}

	copy(e.prevMainLengths, mainLengths)
	copy(e.prevLengthLengths, lengthLengths)
	e.blocks++
	if blockType == BlockAligned {
		e.alignedBlocks++
	}
	if e.opts.Verbose {
		kind := "verbatim"
		if blockType == BlockAligned {
			kind = "aligned"
		}
		fmt.Printf("Block %d: %s, %d bytes, %d codes (output at %d bytes)\n",
			e.blocks, kind, length, len(e.codes), e.bw.written)
	}
	e.resetStats()

	if e.err != nil {
		return e.err
	}
	return e.bw.err
}

// writeCodes replays the buffered codes with the block's trees, aligning
// the output and notifying the marker at every frame boundary.
func (e *Encoder) writeCodes(blockType int) error {
	frameCount := int(e.uncompressed % FrameSize)
	e.uncompressed -= int64(frameCount)

	for _, c := range e.codes {
		if c.isMatch() {
			slot, footer, length := c.slot(), c.footer(), c.length()
			header, lengthSym, long := lengthHeader(length)
			m := e.mainTree[NumChars+(slot<<3|header)]
			e.bw.writeBits(uint64(m.Code), int(m.Length))
			if long {
				l := e.lengthTree[lengthSym]
				e.bw.writeBits(uint64(l.Code), int(l.Length))
			}
			extra := int(extraBits[slot])
			if blockType == BlockAligned && extra >= 3 {
				e.bw.writeBits(uint64(footer>>3), extra-3)
				a := e.alignedTree[footer&7]
				e.bw.writeBits(uint64(a.Code), int(a.Length))
			} else {
				e.bw.writeBits(uint64(footer), extra)
			}
			frameCount += length
		} else {
			m := e.mainTree[c.literal()]
			e.bw.writeBits(uint64(m.Code), int(m.Length))
			frameCount++
		}

		if frameCount > FrameSize {
			return fmt.Errorf("%w: code overruns frame by %d bytes", ErrCompressInternal, frameCount-FrameSize)
		}
		if frameCount == FrameSize {
			e.uncompressed += FrameSize
			e.bw.align()
			e.markFrame()
			frameCount = 0
		}
	}
	e.uncompressed += int64(frameCount)
	return nil
}

func (e *Encoder) markFrame() {
	if e.marker != nil {
		e.marker.MarkFrame(e.uncompressed, e.bw.written)
	}
}
