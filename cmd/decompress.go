package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lzxtools/pkg/lzxd"
	"github.com/lzxtools/pkg/resettable"
)

var (
	decompressOutput        string
	decompressSize          int
	decompressTable         string
	decompressWindow        int
	decompressResetInterval int
)

var decompressCmd = &cobra.Command{
	Use:   "decompress <input.lzx>",
	Short: "Decompress a raw LZX stream",
	Long: `Decompress a raw LZX stream written by the compress command.

The uncompressed length is taken from --size, or from the reset table given
with --table. The window size and reset interval must match the values used
for compression.

Examples:
  lzxtools decompress page.lzx --size 18342 -o page.html
  lzxtools decompress book.txt.lzx -w 21 --reset-interval 65536 --table book.rt`,
	Args: cobra.ExactArgs(1),
	RunE: runDecompress,
}

func init() {
	rootCmd.AddCommand(decompressCmd)

	decompressCmd.Flags().StringVarP(&decompressOutput, "output", "o", "",
		"output file (default <input> without .lzx)")
	decompressCmd.Flags().IntVar(&decompressSize, "size", -1,
		"uncompressed length in bytes")
	decompressCmd.Flags().StringVar(&decompressTable, "table", "",
		"read the uncompressed length from this LZXC reset table")
	decompressCmd.Flags().IntVarP(&decompressWindow, "window", "w", 16,
		"window size in bits (15 to 21)")
	decompressCmd.Flags().IntVar(&decompressResetInterval, "reset-interval", 0,
		"reset interval in bytes used for compression (0 = never)")
}

func runDecompress(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath := decompressOutput
	if outputPath == "" {
		outputPath = strings.TrimSuffix(inputPath, ".lzx")
		if outputPath == inputPath {
			outputPath = inputPath + ".out"
		}
	}

	size := decompressSize
	if decompressTable != "" {
		raw, err := os.ReadFile(decompressTable)
		if err != nil {
			return fmt.Errorf("failed to read reset table: %w", err)
		}
		table, err := resettable.Parse(raw)
		if err != nil {
			return fmt.Errorf("failed to parse reset table: %w", err)
		}
		size = int(table.Uncompressed)
	}
	if size < 0 {
		return fmt.Errorf("uncompressed length unknown: use --size or --table")
	}

	src, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	data, err := lzxd.Decompress(src, size, &lzxd.Options{
		WindowBits:    decompressWindow,
		ResetInterval: decompressResetInterval,
	})
	if err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Printf("Output: %s (%d bytes)\n", outputPath, len(data))
	return nil
}
