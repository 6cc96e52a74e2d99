package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lzxtools/pkg/lzx"
	"github.com/lzxtools/pkg/resettable"
)

var (
	compressOutput  string
	compressTable   string
	compressVerbose bool
	compressFlags   encodeFlags
)

var compressCmd = &cobra.Command{
	Use:   "compress <input>",
	Short: "Compress a file into a raw LZX stream",
	Long: `Compress a file into a raw LZX stream.

The stream carries no header: the window size, reset interval and
uncompressed length must be known to the reader. Use --table to also write
a CHM style LZXC reset table, which records the uncompressed length and the
compressed offset of every 32 KiB frame.

Examples:
  # Compress with a 64 KiB window
  lzxtools compress page.html -o page.lzx

  # Large window, adaptive blocks, reset table for random access
  lzxtools compress book.txt -w 21 --subdivide --reset-interval 65536 --table book.rt

  # Shift-JIS HTML stored as LZSS, transcoded to UTF-8 before compression
  lzxtools compress TOPIC.LZS --from-lzss --charset shift_jis -o topic.lzx`,
	Args: cobra.ExactArgs(1),
	RunE: runCompress,
}

func init() {
	rootCmd.AddCommand(compressCmd)

	compressCmd.Flags().StringVarP(&compressOutput, "output", "o", "",
		"output file (default <input>.lzx)")
	compressCmd.Flags().StringVar(&compressTable, "table", "",
		"write an LZXC reset table to this file")
	compressCmd.Flags().BoolVarP(&compressVerbose, "verbose", "v", false,
		"print one line per written block")
	compressFlags.register(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	outputPath := compressOutput
	if outputPath == "" {
		outputPath = inputPath + ".lzx"
	}

	data, err := compressFlags.load(inputPath)
	if err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	var recorder resettable.Recorder
	enc, err := lzx.NewEncoder(lzx.NewSource(bytes.NewReader(data)), w, &recorder, compressFlags.options(compressVerbose))
	if err != nil {
		return fmt.Errorf("failed to create encoder: %w", err)
	}
	if err := enc.CompressAll(); err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}
	res, err := enc.Finish()
	if err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if compressTable != "" {
		table, err := recorder.Table().MarshalBinary()
		if err != nil {
			return fmt.Errorf("failed to encode reset table: %w", err)
		}
		if err := os.WriteFile(compressTable, table, 0644); err != nil {
			return fmt.Errorf("failed to write reset table: %w", err)
		}
	}

	fmt.Printf("Input: %s (%d bytes)\n", inputPath, res.Uncompressed)
	fmt.Printf("Output: %s (%d bytes, %.1f%%)\n", outputPath, res.Compressed, ratio(res.Compressed, res.Uncompressed))
	fmt.Printf("Blocks: %d (%d aligned), frames: %d\n", res.Blocks, res.AlignedBlocks, len(recorder.Frames()))
	return nil
}
