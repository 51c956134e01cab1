package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"rosella/internal/codegen"
)

// golden tests: one source compiled for both targets, compared byte-for-byte
// against the checked-in scripts.

func readTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("cannot read testdata: %v", err)
	}
	return string(data)
}

func TestGoldenExample(t *testing.T) {
	source := readTestdata(t, "example.rla")

	tests := []struct {
		target codegen.Target
		golden string
	}{
		{codegen.Shell, "example.sh"},
		{codegen.Batch, "example.bat"},
	}

	for _, tt := range tests {
		t.Run(tt.target.String(), func(t *testing.T) {
			result, err := Compile("example.rla", source, tt.target)
			if err != nil {
				t.Fatalf("compile failed: %v", err)
			}
			if len(result.Warnings) != 0 {
				t.Errorf("unexpected warnings: %v", result.Warnings)
			}

			want := readTestdata(t, tt.golden)
			if result.Output != want {
				t.Errorf("output mismatch for %s\n--- got ---\n%s\n--- want ---\n%s",
					tt.target, result.Output, want)
			}
		})
	}
}
