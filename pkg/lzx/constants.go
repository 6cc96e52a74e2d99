package lzx

// Format constants.
const (
	FrameSize           = 32768
	MinMatch            = 2
	MaxMatch            = 257
	NumChars            = 256
	NumPrimaryLengths   = 7
	NumSecondaryLengths = 249
	AlignedSize         = 8
	PretreeSize         = 20
	MinWindowBits       = 15
	MaxWindowBits       = 21

	MaxCodeLength        = 16 // main and length trees
	MaxPretreeCodeLength = 15 // largest value of the 4-bit pretree length field
	MaxAlignedCodeLength = 7  // largest value of the 3-bit aligned length field
)

// Block types as written in the 3-bit block header.
const (
	BlockVerbatim     = 1
	BlockAligned      = 2
	BlockUncompressed = 3
)

// Offsets at or above this use the closed-form slot computation.
const largeOffset = 262144

var (
	extraBits    [52]uint8
	positionBase [52]int
)

var slotsPerWindow = [...]int{30, 32, 34, 36, 38, 42, 50}

// Filled once at start-up and only read afterwards.
func init() {
	j := uint8(0)
	for i := 0; i < len(extraBits); i += 2 {
		extraBits[i] = j // 0,0,0,0,1,1,2,2,3,3...
		extraBits[i+1] = j
		if i != 0 && j < 17 {
			j++
		}
	}
	base := 0
	for i := range positionBase {
		positionBase[i] = base // 0,1,2,3,4,6,8,12,16,24,32...
		base += 1 << extraBits[i]
	}
}

// ExtraBits returns the number of footer bits of a position slot.
func ExtraBits(slot int) int { return int(extraBits[slot]) }

// PositionBase returns the smallest formatted offset of a position slot.
func PositionBase(slot int) int { return positionBase[slot] }

// NumPositionSlots returns the number of position slots for a window of
// 1<<windowBits bytes, or 0 when windowBits is out of range.
func NumPositionSlots(windowBits int) int {
	if windowBits < MinWindowBits || windowBits > MaxWindowBits {
		return 0
	}
	return slotsPerWindow[windowBits-MinWindowBits]
}

// MainTreeSize returns the size of the main alphabet: literals followed by
// eight length headers per position slot.
func MainTreeSize(windowBits int) int {
	return NumChars + NumPositionSlots(windowBits)<<3
}
