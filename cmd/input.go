package cmd

import (
	"fmt"
	"os"

	"github.com/blacktop/lzss"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/lzxtools/pkg/lzx"
)

// encodeFlags holds the encoder settings shared by compress, verify and
// stats.
type encodeFlags struct {
	window        int
	blockSize     int
	subdivide     bool
	overhead      float64
	resetInterval int
	pad           bool
	fromLZSS      bool
	charset       string
}

func (f *encodeFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.window, "window", "w", 16,
		"window size in bits (15 to 21)")
	cmd.Flags().IntVar(&f.blockSize, "block-size", lzx.FrameSize,
		"input bytes per block")
	cmd.Flags().BoolVar(&f.subdivide, "subdivide", false,
		"cut blocks early when their statistics change")
	cmd.Flags().Float64Var(&f.overhead, "subdivide-overhead", 0,
		"estimated tree cost in bits used when subdividing (0 = derived from window)")
	cmd.Flags().IntVar(&f.resetInterval, "reset-interval", 0,
		"reset the encoder every N input bytes, a multiple of 32768 (0 = never)")
	cmd.Flags().BoolVar(&f.pad, "pad", false,
		"zero-pad the input to a whole frame")
	cmd.Flags().BoolVar(&f.fromLZSS, "from-lzss", false,
		"input is LZSS compressed; decode it first")
	cmd.Flags().StringVar(&f.charset, "charset", "",
		"transcode input text from this charset to UTF-8 first (e.g. shift_jis)")
}

func (f *encodeFlags) options(verbose bool) *lzx.Options {
	return &lzx.Options{
		WindowBits:        f.window,
		BlockSize:         f.blockSize,
		Subdivide:         f.subdivide,
		SubdivideOverhead: f.overhead,
		ResetInterval:     f.resetInterval,
		PadFinalFrame:     f.pad,
		Verbose:           verbose,
	}
}

// load reads path and applies the requested input conversions.
func (f *encodeFlags) load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	if f.fromLZSS {
		data = lzss.Decompress(data)
	}

	if f.charset != "" {
		enc, err := htmlindex.Get(f.charset)
		if err != nil {
			return nil, fmt.Errorf("unknown charset %q: %w", f.charset, err)
		}
		data, _, err = transform.Bytes(enc.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s input: %w", f.charset, err)
		}
	}
	return data, nil
}

func ratio(compressed, uncompressed int64) float64 {
	if uncompressed == 0 {
		return 0
	}
	return 100 * float64(compressed) / float64(uncompressed)
}
