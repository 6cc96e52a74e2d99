package lzx

import (
	"fmt"
	"math"
)

// Initial ratio of a block, worse than anything measurable.
const noRatio = 9999999.0

// DefaultSubdivideOverhead returns the bits charged to a block for its
// header and trees when deciding whether to cut it.
func DefaultSubdivideOverhead(windowBits int) float64 {
	return float64(24 + 3*80 + NumChars + (MainTreeSize(windowBits)-NumChars)*3 + NumSecondaryLengths)
}

// checkEntropy updates the running main-tree entropy after symbol was
// counted, and every 4096 codes compares the projected bits per byte with
// the previous measurement. A worse ratio stops the match finder so the
// block is cut where it stands.
func (e *Encoder) checkEntropy(symbol int) {
	f := float64(e.mainFreq[symbol])
	if f != 1 {
		e.entropy += (f - 1) * math.Log(f-1)
	}
	e.entropy -= f * math.Log(f)

	n := len(e.codes)
	if n&0xFFF != 0 || e.leftInBlock < 4096 {
		return
	}
	nf := float64(n)
	bits := (nf*math.Log(nf) + e.entropy) / math.Ln2
	ratio := (bits + e.overhead) / float64(e.blockSize-e.leftInBlock)
	if ratio > e.lastRatio {
		if e.opts.Verbose {
			fmt.Printf("  cutting block after %d codes (%.4f > %.4f bits/byte)\n", n, ratio, e.lastRatio)
		}
		e.subdivide = -1
		e.lzm.Stop()
	}
	e.lastRatio = ratio
}
