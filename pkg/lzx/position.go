package lzx

import "fmt"

// outputMatch codes a match offered by the match finder. It returns false to
// have the match emitted as literals instead.
func (e *Encoder) outputMatch(distance, length int) bool {
	slot, repeat := e.repeatSlot(distance)
	if !repeat {
		// Prefer a cached distance that covers the same bytes.
		for _, r := range [3]int{e.r0, e.r1, e.r2} {
			if e.lzm.FindMatchAt(r, length, distance) {
				distance = r
				break
			}
		}
		slot, repeat = e.repeatSlot(distance)
	}

	var footer uint32
	if !repeat {
		formatted := distance + 2
		if rejectMatch(formatted, length) {
			return false
		}
		slot = positionSlot(formatted, e.numSlots)
		if slot < 0 {
			e.fail(fmt.Errorf("%w: no position slot for offset %d", ErrCompressInternal, formatted))
			return false
		}
		footer = uint32(formatted) & (1<<extraBits[slot] - 1)
		e.r2, e.r1, e.r0 = e.r1, e.r0, distance
	}

	header, lengthSym, long := lengthHeader(length)
	mainSym := NumChars + (slot<<3 | header)
	e.mainFreq[mainSym]++
	if long {
		e.lengthFreq[lengthSym]++
	}
	if extraBits[slot] >= 3 {
		e.alignedFreq[footer&7]++
	}

	e.codes = append(e.codes, matchCode(slot, footer, length))
	e.leftInBlock -= length
	if e.subdivide != 0 {
		e.checkEntropy(mainSym)
	}
	return true
}

// outputLiteral codes a single byte.
func (e *Encoder) outputLiteral(c byte) {
	e.leftInBlock--
	e.codes = append(e.codes, literalCode(c))
	e.mainFreq[c]++
	if e.subdivide != 0 {
		e.checkEntropy(int(c))
	}
}

// repeatSlot looks distance up in the repeat-offset cache and moves a hit
// to R0.
func (e *Encoder) repeatSlot(distance int) (int, bool) {
	switch distance {
	case e.r0:
		return 0, true
	case e.r1:
		e.r0, e.r1 = e.r1, e.r0
		return 1, true
	case e.r2:
		e.r0, e.r2 = e.r2, e.r0
		return 2, true
	}
	return 0, false
}

// rejectMatch reports whether a fresh offset costs more footer bits than
// the match is likely to save.
func rejectMatch(formatted, length int) bool {
	return length < 3 ||
		(formatted >= 64 && length < 4) ||
		(formatted >= 2048 && length < 5) ||
		(formatted >= 65536 && length < 6)
}

// positionSlot returns the slot of a formatted offset, or -1 when it lies
// beyond the window.
func positionSlot(formatted, numSlots int) int {
	if formatted >= largeOffset {
		slot := formatted>>17 + 34
		if slot >= numSlots {
			return -1
		}
		return slot
	}
	left, right := 3, numSlots-1
	for left <= right {
		mid := (left + right) / 2
		if positionBase[mid] <= formatted && formatted < positionBase[mid+1] {
			return mid
		}
		if formatted > positionBase[mid] {
			left = mid + 1
		} else {
			right = mid - 1
		}
	}
	return -1
}
