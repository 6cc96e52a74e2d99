package lzx

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Options configures an Encoder.
type Options struct {
	// WindowBits selects a window of 1<<WindowBits bytes, 15 to 21.
	WindowBits int
	// BlockSize is the number of input bytes sharing one set of trees.
	BlockSize int
	// Subdivide cuts blocks early when their entropy estimate worsens.
	Subdivide bool
	// SubdivideOverhead overrides DefaultSubdivideOverhead when positive.
	SubdivideOverhead float64
	// ResetInterval resets the encoder state every ResetInterval input
	// bytes (0 = never). Must be a multiple of FrameSize.
	ResetInterval int
	// PadFinalFrame zero-pads the input up to a whole frame.
	PadFinalFrame bool
	// Verbose prints one line per written block.
	Verbose bool
}

// DefaultOptions returns a 64 KiB window with one block per frame.
func DefaultOptions() *Options {
	return &Options{WindowBits: 16, BlockSize: FrameSize}
}

// Validate reports every invalid field at once.
func (o *Options) Validate() error {
	var result *multierror.Error
	if NumPositionSlots(o.WindowBits) == 0 {
		result = multierror.Append(result, fmt.Errorf("%w: %d", ErrWindowSize, o.WindowBits))
	}
	if o.BlockSize <= 0 || o.BlockSize >= 1<<24 {
		result = multierror.Append(result, fmt.Errorf("%w: %d", ErrBlockSize, o.BlockSize))
	}
	if o.ResetInterval < 0 || o.ResetInterval%FrameSize != 0 {
		result = multierror.Append(result, fmt.Errorf("%w: %d", ErrResetInterval, o.ResetInterval))
	}
	return result.ErrorOrNil()
}

func (o *Options) overhead() float64 {
	if o.SubdivideOverhead > 0 {
		return o.SubdivideOverhead
	}
	return DefaultSubdivideOverhead(o.WindowBits)
}
