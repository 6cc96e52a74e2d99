package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_Charset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sjis.txt")
	// "日本" in Shift-JIS.
	if err := os.WriteFile(path, []byte{0x93, 0xFA, 0x96, 0x7B}, 0644); err != nil {
		t.Fatal(err)
	}

	f := &encodeFlags{charset: "shift_jis"}
	data, err := f.load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if string(data) != "日本" {
		t.Fatalf("got %q, want %q", data, "日本")
	}

	f.charset = "no-such-charset"
	if _, err := f.load(path); err == nil {
		t.Fatal("expected error for unknown charset")
	}
}

func TestCompressDecompress(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "book.txt")
	compressed := filepath.Join(dir, "book.lzx")
	table := filepath.Join(dir, "book.rt")
	output := filepath.Join(dir, "book.out")

	data := bytes.Repeat([]byte("It was the best of times, it was the worst of times. "), 1500)
	if err := os.WriteFile(input, data, 0644); err != nil {
		t.Fatal(err)
	}

	rootCmd.SetArgs([]string{"compress", input, "-o", compressed, "--table", table,
		"-w", "17", "--reset-interval", "65536"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("compress failed: %v", err)
	}

	rootCmd.SetArgs([]string{"decompress", compressed, "-o", output, "--table", table,
		"-w", "17", "--reset-interval", "65536"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("decompress failed: %v", err)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(data))
	}

	rootCmd.SetArgs([]string{"verify", input, "--subdivide", "--pad"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
}

func TestRootCommands(t *testing.T) {
	for _, name := range []string{"compress", "decompress", "verify", "stats"} {
		sub, _, err := rootCmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Fatalf("command %q not registered: %v", name, err)
		}
		if !strings.Contains(rootCmd.Long, "  "+name+" ") {
			t.Errorf("root help does not describe %q", name)
		}
	}
}
