package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lzxtools/pkg/lzx"
)

func TestFrameSizes(t *testing.T) {
	frames := []lzx.Frame{
		{Uncompressed: 32768, Compressed: 1000},
		{Uncompressed: 65536, Compressed: 2500},
		{Uncompressed: 70000, Compressed: 2600},
	}
	got := frameSizes(frames)
	want := []float64{1000, 1500, 100}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frame %d size %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRenderFrameChart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frames.svg")
	if err := renderFrameChart(path, []float64{1000, 1500, 100}); err != nil {
		t.Fatalf("renderFrameChart failed: %v", err)
	}
	svg, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read chart: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Fatal("output is not an SVG document")
	}

	if err := renderFrameChart(path, []float64{1000}); err == nil {
		t.Fatal("expected error for a single frame")
	}
}
