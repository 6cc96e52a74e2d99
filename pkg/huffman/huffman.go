// Package huffman builds length-limited canonical Huffman codes for the LZX
// main, length, aligned-offset and pretree alphabets.
package huffman

import (
	"errors"
	"fmt"
	"sort"
)

// ErrTooManySymbols is returned when the used symbols cannot fit in codes of
// the requested maximum length.
var ErrTooManySymbols = errors.New("too many symbols for maximum code length")

// Entry is one symbol's code. Length 0 means the symbol is unused.
type Entry struct {
	Length uint16
	Code   uint16
}

type leaf struct {
	freq  int
	sym   int
	depth int
	code  uint32
}

// inner nodes and leaves share one index space: leaves are 0..n-1,
// inner node i is n+i.
type inner struct {
	freq  int
	depth int
	left  int
	right int
}

// Build returns one Entry per element of freq. Zero frequencies get no code.
// Trees whose depth would exceed maxLength are rebuilt after halving every
// non-zero frequency (a frequency of 1 stays 1).
//
// A single used symbol still yields two one-bit codes: the lowest unused
// symbol is paired with it, since LZX cannot express a zero-bit code.
func Build(freq []int, maxLength int) ([]Entry, error) {
	if maxLength < 1 || maxLength > 16 {
		return nil, fmt.Errorf("invalid maximum code length %d", maxLength)
	}

	leaves := make([]leaf, len(freq))
	for i, f := range freq {
		if f < 0 {
			return nil, fmt.Errorf("negative frequency %d for symbol %d", f, i)
		}
		leaves[i] = leaf{freq: f, sym: i}
	}
	sort.Slice(leaves, func(i, j int) bool {
		a, b := leaves[i], leaves[j]
		if (a.freq == 0) != (b.freq == 0) {
			return a.freq != 0
		}
		if a.freq == b.freq {
			return a.sym < b.sym
		}
		return a.freq < b.freq
	})

	used := 0
	for used < len(leaves) && leaves[used].freq != 0 {
		used++
	}
	if used > 1<<maxLength {
		return nil, fmt.Errorf("%w: %d symbols, %d bits", ErrTooManySymbols, used, maxLength)
	}

	tree := make([]Entry, len(freq))
	switch {
	case used == 0:
		return tree, nil
	case used == 1:
		if len(leaves) < 2 {
			return nil, fmt.Errorf("%w: alphabet of one symbol", ErrTooManySymbols)
		}
		a, b := leaves[0].sym, leaves[1].sym
		if a > b {
			a, b = b, a
		}
		tree[a] = Entry{Length: 1, Code: 0}
		tree[b] = Entry{Length: 1, Code: 1}
		return tree, nil
	}

	leaves = leaves[:used]
	nodes := make([]inner, 0, used-1)
	for !merge(leaves, &nodes, maxLength) {
		for i := range leaves {
			if leaves[i].freq != 1 {
				leaves[i].freq >>= 1
			}
		}
	}
	assignDepths(leaves, nodes)

	sort.Slice(leaves, func(i, j int) bool {
		if leaves[i].depth == leaves[j].depth {
			return leaves[i].sym > leaves[j].sym
		}
		return leaves[i].depth > leaves[j].depth
	})

	// The counter starts at the deepest level and is shifted right on the
	// way up. Its complement within each length is the decoder's canonical
	// code: shortest code all zeros, ascending symbols get ascending codes.
	depth := leaves[0].depth
	var counter uint32
	for i := range leaves {
		for leaves[i].depth < depth {
			counter >>= 1
			depth--
		}
		leaves[i].code = counter
		counter++
	}
	for _, l := range leaves {
		mask := uint32(1)<<l.depth - 1
		tree[l.sym] = Entry{Length: uint16(l.depth), Code: uint16(^l.code & mask)}
	}
	return tree, nil
}

// merge runs the two-queue construction over sorted leaves. It returns false
// as soon as an inner node would be deeper than maxLength.
func merge(leaves []leaf, nodes *[]inner, maxLength int) bool {
	n := len(leaves)
	*nodes = (*nodes)[:0]
	nextLeaf, nextNode := 0, 0

	pick := func() (idx, freq, depth int, ok bool) {
		ns := *nodes
		if nextLeaf < n && (nextNode == len(ns) || leaves[nextLeaf].freq <= ns[nextNode].freq) {
			nextLeaf++
			return nextLeaf - 1, leaves[nextLeaf-1].freq, 0, true
		}
		if nextNode < len(ns) {
			nextNode++
			return n + nextNode - 1, ns[nextNode-1].freq, ns[nextNode-1].depth, true
		}
		return 0, 0, 0, false
	}

	for {
		i1, f1, d1, ok1 := pick()
		i2, f2, d2, ok2 := pick()
		if !ok1 || !ok2 {
			return true
		}
		node := inner{freq: f1 + f2, depth: max(d1, d2) + 1, left: i1, right: i2}
		if node.depth > maxLength {
			return false
		}
		*nodes = append(*nodes, node)
	}
}

// assignDepths walks from the root down. Inner nodes are created after their
// children, so visiting them in reverse creation order sees every parent
// before its children.
func assignDepths(leaves []leaf, nodes []inner) {
	n := len(leaves)
	depths := make([]int, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		for _, child := range [2]int{nodes[i].left, nodes[i].right} {
			if child < n {
				leaves[child].depth = depths[i] + 1
			} else {
				depths[child-n] = depths[i] + 1
			}
		}
	}
}

// MaxLength returns the longest code length in tree.
func MaxLength(tree []Entry) int {
	m := 0
	for _, e := range tree {
		m = max(m, int(e.Length))
	}
	return m
}

// Cost returns the number of bits needed to code freq with tree.
func Cost(freq []int, tree []Entry) int {
	bits := 0
	for i, f := range freq {
		bits += f * int(tree[i].Length)
	}
	return bits
}

// Lengths returns the code lengths of tree as bytes.
func Lengths(tree []Entry) []uint8 {
	out := make([]uint8, len(tree))
	for i, e := range tree {
		out[i] = uint8(e.Length)
	}
	return out
}
