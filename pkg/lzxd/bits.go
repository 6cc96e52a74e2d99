package lzxd

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
)

// bitReader reads the MSB-first bits of 16-bit little-endian words.
type bitReader struct {
	r        *bitio.Reader
	consumed int64
}

func newBitReader(src []byte) *bitReader {
	swapped := make([]byte, len(src)+len(src)&1)
	copy(swapped, src)
	for i := 0; i < len(swapped); i += 2 {
		swapped[i], swapped[i+1] = swapped[i+1], swapped[i]
	}
	return &bitReader{r: bitio.NewReader(bytes.NewReader(swapped))}
}

func (b *bitReader) readBits(n int) (int, error) {
	if n == 0 {
		return 0, nil
	}
	v, err := b.r.ReadBits(uint8(n))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnexpectedEOF, err)
	}
	b.consumed += int64(n)
	return int(v), nil
}

// align skips to the next 16-bit boundary.
func (b *bitReader) align() error {
	if r := b.consumed % 16; r != 0 {
		_, err := b.readBits(int(16 - r))
		return err
	}
	return nil
}
