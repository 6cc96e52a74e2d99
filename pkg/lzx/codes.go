package lzx

// blockCode is one buffered literal or match, replayed once the block's
// trees are known. Matches are stored as
//
//	bit 31      match flag
//	bits 25-30  position slot
//	bits 8-24   position footer
//	bits 0-7    length - MinMatch
type blockCode uint32

const matchFlag blockCode = 1 << 31

func literalCode(c byte) blockCode { return blockCode(c) }

func matchCode(slot int, footer uint32, length int) blockCode {
	return matchFlag | blockCode(slot)<<25 | blockCode(footer&0x1FFFF)<<8 | blockCode(length-MinMatch)
}

func (c blockCode) isMatch() bool  { return c&matchFlag != 0 }
func (c blockCode) literal() byte  { return byte(c) }
func (c blockCode) slot() int      { return int(c>>25) & 0x3F }
func (c blockCode) footer() uint32 { return uint32(c>>8) & 0x1FFFF }
func (c blockCode) length() int    { return int(c&0xFF) + MinMatch }

// lengthHeader splits a match length into the header carried by the main
// tree and, for long matches, the length tree symbol.
func lengthHeader(length int) (header int, footer int, long bool) {
	l := length - MinMatch
	if l < NumPrimaryLengths {
		return l, 0, false
	}
	return NumPrimaryLengths, l - NumPrimaryLengths, true
}
