package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lzxtools/pkg/lzx"
	"github.com/lzxtools/pkg/lzxd"
)

var (
	verifyVerbose bool
	verifyFlags   encodeFlags
)

var verifyCmd = &cobra.Command{
	Use:   "verify <input>",
	Short: "Check that a file survives an LZX round trip",
	Long: `Compress a file in memory, decode the stream again and compare the result
with the input. Accepts the same encoder flags as compress.

Examples:
  lzxtools verify book.txt -w 21 --subdivide`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().BoolVarP(&verifyVerbose, "verbose", "v", false,
		"print one line per written block")
	verifyFlags.register(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	data, err := verifyFlags.load(args[0])
	if err != nil {
		return err
	}

	compressed, frames, err := lzx.Compress(data, verifyFlags.options(verifyVerbose))
	if err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}

	outLen := len(data)
	if n := len(frames); n > 0 {
		outLen = int(frames[n-1].Uncompressed)
	}
	decoded, err := lzxd.Decompress(compressed, outLen, &lzxd.Options{
		WindowBits:    verifyFlags.window,
		ResetInterval: verifyFlags.resetInterval,
	})
	if err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}

	if !bytes.Equal(decoded[:len(data)], data) {
		for i := range data {
			if decoded[i] != data[i] {
				return fmt.Errorf("round trip mismatch at byte %d", i)
			}
		}
	}
	for i, c := range decoded[len(data):] {
		if c != 0 {
			return fmt.Errorf("round trip mismatch in padding at byte %d", len(data)+i)
		}
	}

	fmt.Printf("OK: %d bytes -> %d bytes (%.1f%%), %d frames\n",
		len(data), len(compressed), ratio(int64(len(compressed)), int64(len(data))), len(frames))
	return nil
}
