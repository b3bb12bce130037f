package emu

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFiles writes files (name -> content) in a temporary directory, and
// returns the directory.
func writeFiles(tb testing.TB, files map[string]string) string {
	tb.Helper()

	dir := tb.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			tb.Fatal(err)
		}
	}
	return dir
}

func mustMachine(tb testing.TB, src, dir string) *Machine {
	tb.Helper()

	cfg, err := ParseConfig(src, dir)
	if err != nil {
		tb.Fatal(err)
	}
	m, err := NewMachine(cfg)
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(m.Close)
	return m
}

const ramRomConfig = `
[bus]
name = "main"

[[device]]
name = "ram"
kind = "ram"
start = 0x0000
end = 0x7FFF

[[device]]
name = "rom"
kind = "rom"
start = 0x8000
end = 0xFFFF
fill = 0xEA
`
