package lz

// analyze fills lentab and prevtab for the whole buffer.
//
// The first pass links every position to the previous occurrence of its byte
// (length 1). Pass maxlen then walks the buffer backwards and tries to grow
// each match of exactly maxlen by one byte, first against its own candidate
// and then along that candidate's chain, as long as the chain members still
// share maxlen bytes and stay within MaxDist. Candidates lie before the
// position being extended, so they still hold their lengths from the
// previous pass. Analysis ends when a pass grows nothing.
func (m *Matcher) analyze() {
	var last [256]int32
	for i := range last {
		last[i] = noPrev
	}

	n := m.charsInBuf
	buf := m.buf[:n]
	lentab := m.lentab[:n]
	prevtab := m.prevtab[:n]

	for i, c := range buf {
		prevtab[i] = last[c]
		lentab[i] = 0
		if last[c] != noPrev {
			lentab[i] = 1
		}
		last[c] = int32(i)
	}

	maxDist := m.cfg.MaxDist
	grew := true
	for maxlen := 1; grew && maxlen < m.cfg.MaxMatch; maxlen++ {
		grew = false
		for pos := n - maxlen - 1; pos > 0; pos-- {
			if int(lentab[pos]) != maxlen {
				continue
			}
			next := buf[pos+maxlen]
			for cursor := int(prevtab[pos]); cursor != noPrev && pos-cursor <= maxDist; {
				if buf[cursor+maxlen] == next {
					prevtab[pos] = int32(cursor)
					lentab[pos]++
					grew = true
					break
				}
				if int(lentab[cursor]) != maxlen {
					break
				}
				cursor = int(prevtab[cursor])
			}
		}
	}
	m.analysisValid = true
}
