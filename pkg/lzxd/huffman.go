package lzxd

import "fmt"

const maxBits = 16

// table decodes canonical codes one bit at a time: codes are assigned in
// order of length, and within a length in order of symbol.
type table struct {
	count  [maxBits + 1]int
	symbol []int
}

// newTable builds a table from code lengths. All-zero lengths give an empty
// table that fails on use.
func newTable(lengths []uint8) (*table, error) {
	t := &table{}
	for _, l := range lengths {
		if l > maxBits {
			return nil, fmt.Errorf("%w: code length %d", ErrCorrupt, l)
		}
		t.count[l]++
	}
	t.count[0] = 0

	left := 1
	for l := 1; l <= maxBits; l++ {
		left = left<<1 - t.count[l]
		if left < 0 {
			return nil, fmt.Errorf("%w: over-subscribed code", ErrCorrupt)
		}
	}

	var offs [maxBits + 2]int
	for l := 1; l <= maxBits; l++ {
		offs[l+1] = offs[l] + t.count[l]
	}
	t.symbol = make([]int, offs[maxBits+1])
	for sym, l := range lengths {
		if l != 0 {
			t.symbol[offs[l]] = sym
			offs[l]++
		}
	}
	return t, nil
}

func (d *decoder) decode(t *table) (int, error) {
	code, first, index := 0, 0, 0
	for l := 1; l <= maxBits; l++ {
		bit, err := d.br.readBits(1)
		if err != nil {
			return 0, err
		}
		code |= bit
		count := t.count[l]
		if code-first < count {
			return t.symbol[index+code-first], nil
		}
		index += count
		first = (first + count) << 1
		code <<= 1
	}
	return 0, fmt.Errorf("%w: invalid code", ErrCorrupt)
}
