package lzx

import "errors"

var (
	ErrWindowSize    = errors.New("window size out of range: expected 15 to 21 bits")
	ErrBlockSize     = errors.New("invalid block size")
	ErrResetInterval = errors.New("reset interval must be a multiple of the frame size")
	ErrFinished      = errors.New("encoder already finished")
	ErrShortWrite    = errors.New("short write")

	// ErrCompressInternal is returned when the encoder hits an internal
	// invariant violation, such as a match that overruns a frame.
	ErrCompressInternal = errors.New("internal compressor error")
)
