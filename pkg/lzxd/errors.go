package lzxd

import "errors"

var (
	ErrWindowSize     = errors.New("window size out of range: expected 15 to 21 bits")
	ErrResetInterval  = errors.New("reset interval must be a multiple of the frame size")
	ErrUnexpectedEOF  = errors.New("unexpected end of compressed data")
	ErrCorrupt        = errors.New("corrupt LZX stream")
	ErrUnsupported    = errors.New("unsupported LZX feature")
	ErrOptionsMissing = errors.New("options required: WindowBits must be set")
)
