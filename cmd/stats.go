package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/lzxtools/pkg/lzx"
)

var (
	statsChart   string
	statsVerbose bool
	statsFlags   encodeFlags
)

var statsCmd = &cobra.Command{
	Use:   "stats <input>",
	Short: "Report how a file compresses",
	Long: `Compress a file in memory and report block and frame statistics. With
--chart, the compressed size of every 32 KiB frame is plotted to an SVG file.

Examples:
  lzxtools stats book.txt --subdivide
  lzxtools stats book.txt -w 21 --chart frames.svg`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVar(&statsChart, "chart", "",
		"write an SVG chart of compressed bytes per frame")
	statsCmd.Flags().BoolVarP(&statsVerbose, "verbose", "v", false,
		"print per-frame sizes")
	statsFlags.register(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	data, err := statsFlags.load(args[0])
	if err != nil {
		return err
	}

	compressed, frames, err := lzx.Compress(data, statsFlags.options(false))
	if err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}

	sizes := frameSizes(frames)
	fmt.Printf("Input: %d bytes\n", len(data))
	fmt.Printf("Compressed: %d bytes (%.1f%%)\n", len(compressed), ratio(int64(len(compressed)), int64(len(data))))
	fmt.Printf("Frames: %d\n", len(frames))
	if len(sizes) > 0 {
		smallest, largest := sizes[0], sizes[0]
		for _, s := range sizes {
			smallest = min(smallest, s)
			largest = max(largest, s)
		}
		fmt.Printf("Frame sizes: %.0f to %.0f bytes\n", smallest, largest)
	}
	if statsVerbose {
		for i, s := range sizes {
			fmt.Printf("  frame %d: %.0f bytes\n", i, s)
		}
	}

	if statsChart != "" {
		if err := renderFrameChart(statsChart, sizes); err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}
		fmt.Printf("Chart: %s\n", statsChart)
	}
	return nil
}

// frameSizes converts cumulative frame ends into per-frame compressed sizes.
func frameSizes(frames []lzx.Frame) []float64 {
	sizes := make([]float64, len(frames))
	prev := int64(0)
	for i, f := range frames {
		sizes[i] = float64(f.Compressed - prev)
		prev = f.Compressed
	}
	return sizes
}

func renderFrameChart(path string, sizes []float64) error {
	if len(sizes) < 2 {
		return fmt.Errorf("need at least 2 frames to plot, have %d", len(sizes))
	}

	xvals := make([]float64, len(sizes))
	for i := range xvals {
		xvals[i] = float64(i)
	}
	graph := chart.Chart{
		XAxis: chart.XAxis{Name: "frame"},
		YAxis: chart.YAxis{Name: "compressed bytes"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					DotWidth: 3,
				},
				XValues: xvals,
				YValues: sizes,
			},
		},
	}

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.SVG, fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
