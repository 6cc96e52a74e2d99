// Package lz implements the non-sliding LZ77 match finder used by the LZX
// encoder. Every refill of the block buffer is analysed in full: each
// position gets the longest match reachable within the maximum distance,
// found by extending per-byte-value occurrence chains one byte per pass
// instead of hashing.
package lz

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// noPrev marks a position without an earlier occurrence of its byte.
const noPrev = -1

// ErrInvalidConfig is wrapped by every Config validation failure.
var ErrInvalidConfig = errors.New("invalid match finder configuration")

// Config describes the match finder geometry.
type Config struct {
	Window    int // bytes of new input buffered per refill
	MaxDist   int // farthest back a match may reach
	MaxMatch  int // longest match reported
	MinMatch  int // shortest match offered to the sink (raised to 3)
	FrameSize int // matches never cross a multiple of this; 0 disables
}

// Source supplies input bytes. Returning fewer than len(buf) bytes marks
// the end of input.
type Source interface {
	Fill(buf []byte) int
}

// Sink receives the covering sequence of literals and matches. Match
// returns false to reject a match; the finder then emits a literal.
type Sink interface {
	Match(distance, length int) bool
	Literal(c byte)
}

// Matcher holds one match finding session.
type Matcher struct {
	cfg  Config
	src  Source
	sink Sink

	buf     []byte
	lentab  []int32 // longest match length at each buffer position
	prevtab []int32 // buffer index of that match, or noPrev

	charsInBuf    int
	blockLoc      int   // next buffer position to process
	curLoc        int64 // absolute input position of blockLoc
	eofCount      int
	analysisValid bool
	stop          bool
}

func (c Config) validate() error {
	var result *multierror.Error
	if c.Window <= 0 {
		result = multierror.Append(result, fmt.Errorf("%w: window %d", ErrInvalidConfig, c.Window))
	}
	if c.MaxDist <= 0 || c.MaxDist > c.Window {
		result = multierror.Append(result, fmt.Errorf("%w: max distance %d", ErrInvalidConfig, c.MaxDist))
	}
	if c.MaxMatch <= 0 || c.MaxMatch >= c.Window {
		result = multierror.Append(result, fmt.Errorf("%w: max match %d", ErrInvalidConfig, c.MaxMatch))
	}
	if c.FrameSize < 0 {
		result = multierror.Append(result, fmt.Errorf("%w: frame size %d", ErrInvalidConfig, c.FrameSize))
	}
	return result.ErrorOrNil()
}

// New allocates a Matcher. The block buffer holds Window new bytes plus
// MaxDist bytes of history.
func New(cfg Config, src Source, sink Sink) (*Matcher, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.MinMatch < 3 {
		cfg.MinMatch = 3
	}
	if cfg.MinMatch > cfg.MaxMatch {
		return nil, fmt.Errorf("%w: min match %d above max match %d", ErrInvalidConfig, cfg.MinMatch, cfg.MaxMatch)
	}

	size := cfg.Window + cfg.MaxDist
	return &Matcher{
		cfg:     cfg,
		src:     src,
		sink:    sink,
		buf:     make([]byte, size),
		lentab:  make([]int32, size),
		prevtab: make([]int32, size),
	}, nil
}

// MinMatch returns the effective minimum match length.
func (m *Matcher) MinMatch() int { return m.cfg.MinMatch }

// Position returns the absolute input offset of the next byte to process.
func (m *Matcher) Position() int64 { return m.curLoc }

// LeftToProcess returns the number of buffered bytes not yet emitted.
func (m *Matcher) LeftToProcess() int { return m.charsInBuf - m.blockLoc }

// AtEOF reports whether the source has signalled the end of input.
func (m *Matcher) AtEOF() bool { return m.eofCount > 0 }

// Stop makes the running Compress call return after the current event.
// Buffered input is kept for the next call.
func (m *Matcher) Stop() { m.stop = true }

// Reset discards the match history. Unprocessed bytes stay buffered and
// later matches cannot reach before them.
func (m *Matcher) Reset() {
	residual := m.LeftToProcess()
	copy(m.buf, m.buf[m.blockLoc:m.charsInBuf])
	m.charsInBuf = residual
	m.blockLoc = 0
	m.analysisValid = false
}

// Release drops the buffers. The Matcher is unusable afterwards.
func (m *Matcher) Release() {
	m.buf, m.lentab, m.prevtab = nil, nil, nil
	m.charsInBuf, m.blockLoc = 0, 0
	m.analysisValid = false
}

// FindMatchAt reports whether the length bytes at the current position also
// occur distance bytes back, given that they occur current bytes back.
// Distances equal to current, shorter than length, or reaching before the
// retained history are refused.
func (m *Matcher) FindMatchAt(distance, length, current int) bool {
	if distance == current || distance < length || distance > m.blockLoc {
		return false
	}
	known := m.blockLoc - current
	candidate := m.blockLoc - distance
	return bytes.Equal(m.buf[known:known+length], m.buf[candidate:candidate+length])
}

// Compress emits events for up to n input bytes. It returns early when the
// input is exhausted or Stop is called.
func (m *Matcher) Compress(n int) {
	m.stop = false
	for (m.LeftToProcess() > 0 || m.eofCount == 0) && !m.stop && n > 0 {
		if !m.analysisValid || (m.eofCount == 0 && m.LeftToProcess() < n) {
			m.refill(n)
		}

		holdback := m.cfg.MaxMatch
		if m.eofCount > 0 {
			holdback = 0
		}
		end := m.blockLoc + n
		if m.charsInBuf < end {
			end = m.charsInBuf - holdback
		}

		for m.blockLoc < end && !m.stop {
			pos := m.blockLoc
			length := int(m.lentab[pos])
			trimmed := false
			if fs := m.cfg.FrameSize; fs > 0 {
				if left := fs - int(m.curLoc%int64(fs)); length > left {
					length = left
					trimmed = true
				}
			}
			if length > n {
				length = n
				trimmed = true
			}

			if length >= m.cfg.MinMatch {
				if pos < end-1 && !trimmed && int(m.lentab[pos+1]) > length+1 {
					length = 1
				} else if !m.sink.Match(pos-int(m.prevtab[pos]), length) {
					length = 1
				}
			} else {
				length = 1
			}
			if length < m.cfg.MinMatch {
				m.sink.Literal(m.buf[pos])
			}

			m.curLoc += int64(length)
			m.blockLoc += length
			n -= length
		}
	}
}

// refill keeps up to MaxDist bytes of history plus the unprocessed residual
// at the front of the buffer, reads more input and re-analyses.
func (m *Matcher) refill(n int) {
	residual := m.LeftToProcess()
	keep := min(m.cfg.MaxDist+residual, m.charsInBuf)
	copy(m.buf, m.buf[m.charsInBuf-keep:m.charsInBuf])
	m.blockLoc = keep - residual
	m.charsInBuf = keep

	if m.eofCount == 0 {
		want := min(len(m.buf)-m.charsInBuf, n-residual)
		if want < 0 {
			want = 0
		}
		got := m.src.Fill(m.buf[m.charsInBuf : m.charsInBuf+want])
		m.charsInBuf += got
		if got != want {
			m.eofCount++
		}
	}
	m.analyze()
}
