package lzx

import (
	"bufio"
	"io"
)

// Source is the encoder's input.
type Source interface {
	io.Reader
	// AtEOF reports whether no input is left.
	AtEOF() bool
}

type readerSource struct {
	br  *bufio.Reader
	err error // read error seen while peeking
}

// NewSource adapts r. Readers that already implement Source are returned
// as is.
func NewSource(r io.Reader) Source {
	if s, ok := r.(Source); ok {
		return s
	}
	return &readerSource{br: bufio.NewReader(r)}
}

func (s *readerSource) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.br.Read(p)
}

// AtEOF reports false on read errors so the next Read returns them.
func (s *readerSource) AtEOF() bool {
	if s.err != nil {
		return false
	}
	_, err := s.br.Peek(1)
	if err != nil && err != io.EOF {
		s.err = err
		return false
	}
	return err == io.EOF
}
