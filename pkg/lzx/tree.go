package lzx

import (
	"fmt"

	"github.com/lzxtools/pkg/huffman"
)

// Pretree symbols above the sixteen length deltas.
const (
	treeZeros4  = 17 // 4 + 4-bit count zero lengths
	treeZeros20 = 18 // 20 + 5-bit count zero lengths
	treeSame4   = 19 // 4 + 1-bit count copies of the next delta
)

type treeToken struct {
	code  uint8
	extra uint8
}

// encodeTreeDeltas turns code lengths into pretree tokens. Lengths are sent
// as (prev - length) mod 17 against the previous block's lengths.
func encodeTreeDeltas(lengths, prev []uint8) []treeToken {
	tokens := make([]treeToken, 0, len(lengths))
	delta := func(i int, l uint8) treeToken {
		return treeToken{code: uint8((int(prev[i]) - int(l) + 17) % 17)}
	}

	for start := 0; start < len(lengths); {
		l := lengths[start]
		end := start + 1
		for end < len(lengths) && lengths[end] == l {
			end++
		}
		run, i := end-start, start

		if l == 0 {
			for run >= 20 {
				excess := min(run-20, 31)
				tokens = append(tokens, treeToken{code: treeZeros20, extra: uint8(excess)})
				run -= excess + 20
				i += excess + 20
			}
			for run >= 4 {
				excess := min(run-4, 15)
				tokens = append(tokens, treeToken{code: treeZeros4, extra: uint8(excess)})
				run -= excess + 4
				i += excess + 4
			}
		} else {
			for run >= 4 {
				excess := 0
				if run > 4 {
					excess = 1
				}
				tokens = append(tokens, treeToken{code: treeSame4, extra: uint8(excess)}, delta(i, l))
				run -= excess + 4
				i += excess + 4
			}
		}
		for ; run > 0; run-- {
			tokens = append(tokens, delta(i, l))
			i++
		}
		start = end
	}
	return tokens
}

// writeCompressedTree writes the pretree followed by the tokens for one
// slice of a tree.
func (e *Encoder) writeCompressedTree(lengths, prev []uint8) {
	tokens := encodeTreeDeltas(lengths, prev)
	pretree, err := buildPretree(tokens)
	if err != nil {
		e.fail(fmt.Errorf("%w: pretree: %v", ErrCompressInternal, err))
		return
	}

	for _, p := range pretree {
		e.bw.writeBits(uint64(p.Length), 4)
	}
	for _, t := range tokens {
		p := pretree[t.code]
		e.bw.writeBits(uint64(p.Code), int(p.Length))
		switch t.code {
		case treeZeros4:
			e.bw.writeBits(uint64(t.extra), 4)
		case treeZeros20:
			e.bw.writeBits(uint64(t.extra), 5)
		case treeSame4:
			e.bw.writeBits(uint64(t.extra), 1)
		}
	}
}

// buildPretree builds the pretree for tokens. Lengths are only bounded by
// the 4-bit field they are sent in.
func buildPretree(tokens []treeToken) ([]huffman.Entry, error) {
	freq := make([]int, PretreeSize)
	for _, t := range tokens {
		freq[t.code]++
	}
	return huffman.Build(freq, MaxPretreeCodeLength)
}
