package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lzxtools",
	Short: "Tools for LZX compressed streams",
	Long: `lzxtools writes raw LZX streams, the format used inside CHM help files,
LIT books and cabinet archives, and reads back the streams it writes.

Commands:
  compress     compress a file, optionally writing an LZXC reset table
  decompress   decode a stream given its length or reset table
  verify       compress and decode in memory and compare with the input
  stats        report blocks and per-frame sizes, optionally as an SVG chart

Encoder flags shared by compress, verify and stats select the window
(-w 15..21), block size, adaptive block splitting and reset interval.`,
}

// Execute runs the command named on the command line and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	// Usage is for flag mistakes, not for failed reads or corrupt streams.
	rootCmd.SilenceUsage = true
}
