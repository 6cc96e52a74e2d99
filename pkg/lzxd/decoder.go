// Package lzxd decodes whole LZX streams. It backs the round-trip checks of
// the compressor and the decompress command; it is not a streaming decoder.
package lzxd

import (
	"fmt"

	"github.com/lzxtools/pkg/lzx"
)

// Options describes how the stream was written.
type Options struct {
	WindowBits    int
	ResetInterval int // bytes between resets, 0 for none

	// OnMatch, when set, is called with every decoded match.
	OnMatch func(distance, length int)
}

type decoder struct {
	br   *bitReader
	opts Options
	out  []byte

	numSlots   int
	r0, r1, r2 int

	headerRead     bool
	blockType      int
	blockRemaining int

	mainLengths    []uint8
	lengthLengths  []uint8
	alignedLengths []uint8
	main           *table
	length         *table
	aligned        *table
}

// Decompress decodes src, which must hold exactly outLen bytes of
// uncompressed data.
func Decompress(src []byte, outLen int, opts *Options) ([]byte, error) {
	if opts == nil {
		return nil, ErrOptionsMissing
	}
	numSlots := lzx.NumPositionSlots(opts.WindowBits)
	if numSlots == 0 {
		return nil, fmt.Errorf("%w: %d", ErrWindowSize, opts.WindowBits)
	}
	if opts.ResetInterval < 0 || opts.ResetInterval%lzx.FrameSize != 0 {
		return nil, fmt.Errorf("%w: %d", ErrResetInterval, opts.ResetInterval)
	}

	d := &decoder{
		br:             newBitReader(src),
		opts:           *opts,
		out:            make([]byte, 0, outLen),
		numSlots:       numSlots,
		mainLengths:    make([]uint8, lzx.MainTreeSize(opts.WindowBits)),
		lengthLengths:  make([]uint8, lzx.NumSecondaryLengths),
		alignedLengths: make([]uint8, lzx.AlignedSize),
	}
	d.reset()

	for len(d.out) < outLen {
		pos := len(d.out)
		if ri := d.opts.ResetInterval; ri > 0 && pos > 0 && pos%ri == 0 {
			if d.blockRemaining != 0 {
				return nil, fmt.Errorf("%w: block spans reset at %d", ErrCorrupt, pos)
			}
			d.reset()
		}
		frameEnd := min(pos-pos%lzx.FrameSize+lzx.FrameSize, outLen)
		if err := d.decodeFrame(frameEnd); err != nil {
			return nil, fmt.Errorf("frame at %d: %w", pos, err)
		}
		if err := d.br.align(); err != nil {
			return nil, err
		}
	}
	return d.out, nil
}

func (d *decoder) reset() {
	d.r0, d.r1, d.r2 = 1, 1, 1
	d.headerRead = false
	d.blockRemaining = 0
	clear(d.mainLengths)
	clear(d.lengthLengths)
}

func (d *decoder) decodeFrame(frameEnd int) error {
	if !d.headerRead {
		e8, err := d.br.readBits(1)
		if err != nil {
			return err
		}
		if e8 != 0 {
			return fmt.Errorf("%w: E8 call translation", ErrUnsupported)
		}
		d.headerRead = true
	}

	for len(d.out) < frameEnd {
		if d.blockRemaining == 0 {
			if err := d.readBlockHeader(); err != nil {
				return err
			}
		}
		n, err := d.decodeSymbol()
		if err != nil {
			return err
		}
		d.blockRemaining -= n
		if d.blockRemaining < 0 {
			return fmt.Errorf("%w: code overruns block", ErrCorrupt)
		}
		if len(d.out) > frameEnd {
			return fmt.Errorf("%w: match overruns frame", ErrCorrupt)
		}
	}
	return nil
}

func (d *decoder) readBlockHeader() error {
	var err error
	if d.blockType, err = d.br.readBits(3); err != nil {
		return err
	}
	if d.blockRemaining, err = d.br.readBits(24); err != nil {
		return err
	}
	if d.blockRemaining == 0 {
		return fmt.Errorf("%w: empty block", ErrCorrupt)
	}

	switch d.blockType {
	case lzx.BlockAligned:
		for i := range d.alignedLengths {
			l, err := d.br.readBits(3)
			if err != nil {
				return err
			}
			d.alignedLengths[i] = uint8(l)
		}
		if d.aligned, err = newTable(d.alignedLengths); err != nil {
			return fmt.Errorf("aligned tree: %w", err)
		}
	case lzx.BlockVerbatim:
	case lzx.BlockUncompressed:
		return fmt.Errorf("%w: uncompressed block", ErrUnsupported)
	default:
		return fmt.Errorf("%w: block type %d", ErrCorrupt, d.blockType)
	}

	if err := d.readLengths(d.mainLengths[:lzx.NumChars]); err != nil {
		return err
	}
	if err := d.readLengths(d.mainLengths[lzx.NumChars:]); err != nil {
		return err
	}
	if d.main, err = newTable(d.mainLengths); err != nil {
		return fmt.Errorf("main tree: %w", err)
	}
	if err := d.readLengths(d.lengthLengths); err != nil {
		return err
	}
	if d.length, err = newTable(d.lengthLengths); err != nil {
		return fmt.Errorf("length tree: %w", err)
	}
	return nil
}

// readLengths updates lens in place from a pretree-coded delta list.
func (d *decoder) readLengths(lens []uint8) error {
	pre := make([]uint8, lzx.PretreeSize)
	for i := range pre {
		l, err := d.br.readBits(4)
		if err != nil {
			return err
		}
		pre[i] = uint8(l)
	}
	pretree, err := newTable(pre)
	if err != nil {
		return fmt.Errorf("pretree: %w", err)
	}

	delta := func(prev uint8, z int) uint8 {
		v := int(prev) - z
		if v < 0 {
			v += 17
		}
		return uint8(v)
	}

	for x := 0; x < len(lens); {
		z, err := d.decode(pretree)
		if err != nil {
			return err
		}
		run, value := 1, uint8(0)
		switch z {
		case 17:
			n, err := d.br.readBits(4)
			if err != nil {
				return err
			}
			run = n + 4
		case 18:
			n, err := d.br.readBits(5)
			if err != nil {
				return err
			}
			run = n + 20
		case 19:
			n, err := d.br.readBits(1)
			if err != nil {
				return err
			}
			run = n + 4
			if z, err = d.decode(pretree); err != nil {
				return err
			}
			if z > 16 {
				return fmt.Errorf("%w: repeat of pretree symbol %d", ErrCorrupt, z)
			}
			value = delta(lens[x], z)
		default:
			value = delta(lens[x], z)
		}
		if x+run > len(lens) {
			return fmt.Errorf("%w: tree run overflows", ErrCorrupt)
		}
		for i := 0; i < run; i++ {
			lens[x+i] = value
		}
		x += run
	}
	return nil
}

// decodeSymbol decodes one literal or match and returns its length.
func (d *decoder) decodeSymbol() (int, error) {
	sym, err := d.decode(d.main)
	if err != nil {
		return 0, err
	}
	if sym < lzx.NumChars {
		d.out = append(d.out, byte(sym))
		return 1, nil
	}

	sym -= lzx.NumChars
	slot, length := sym>>3, sym&7
	if length == lzx.NumPrimaryLengths {
		extra, err := d.decode(d.length)
		if err != nil {
			return 0, err
		}
		length += extra
	}
	length += lzx.MinMatch
	if slot >= d.numSlots {
		return 0, fmt.Errorf("%w: position slot %d", ErrCorrupt, slot)
	}

	var distance int
	switch slot {
	case 0:
		distance = d.r0
	case 1:
		distance = d.r1
		d.r1 = d.r0
		d.r0 = distance
	case 2:
		distance = d.r2
		d.r2 = d.r0
		d.r0 = distance
	default:
		extra := lzx.ExtraBits(slot)
		distance = lzx.PositionBase(slot) - 2
		if d.blockType == lzx.BlockAligned && extra >= 3 {
			verbatim, err := d.br.readBits(extra - 3)
			if err != nil {
				return 0, err
			}
			aligned, err := d.decode(d.aligned)
			if err != nil {
				return 0, err
			}
			distance += verbatim<<3 + aligned
		} else {
			footer, err := d.br.readBits(extra)
			if err != nil {
				return 0, err
			}
			distance += footer
		}
		d.r2, d.r1, d.r0 = d.r1, d.r0, distance
	}

	if distance <= 0 || distance > len(d.out) {
		return 0, fmt.Errorf("%w: distance %d at %d", ErrCorrupt, distance, len(d.out))
	}
	if d.opts.OnMatch != nil {
		d.opts.OnMatch(distance, length)
	}
	start := len(d.out) - distance
	for i := 0; i < length; i++ {
		d.out = append(d.out, d.out[start+i])
	}
	return length, nil
}
