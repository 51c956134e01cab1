package codegen

import "testing"

func TestNormalizePathSeparators(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		target Target
		want   string
	}{
		{"forward slash kept for shell", `src/main.c`, Shell, `src/main.c`},
		{"forward slash flipped for batch", `src/main.c`, Batch, `src\main.c`},
		{"backslash flipped for shell", `build\out`, Shell, `build/out`},
		{"backslash kept for batch", `build\out`, Batch, `build\out`},
		{"nested path batch", `a/b/c.txt`, Batch, `a\b\c.txt`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLiteral(tt.raw, tt.target)
			if got != tt.want {
				t.Errorf("normalizeLiteral(%q, %s) = %q, want %q", tt.raw, tt.target, got, tt.want)
			}
		})
	}
}

func TestNormalizeSkipsNonPaths(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		target Target
		want   string
	}{
		{"no separator", `hello`, Batch, `hello`},
		{"whitespace disqualifies", `a / b`, Batch, `a / b`},
		{"sentence with slash", `read/write mode`, Batch, `read/write mode`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLiteral(tt.raw, tt.target)
			if got != tt.want {
				t.Errorf("normalizeLiteral(%q, %s) = %q, want %q", tt.raw, tt.target, got, tt.want)
			}
		})
	}
}

func TestNormalizeRespectsEscapes(t *testing.T) {
	// An escaped separator is an opt-out: it decodes to the separator
	// character but is never rewritten, and it does not make the literal
	// path-like on its own.
	if got := normalizeLiteral(`dir\/file`, Batch); got != `dir/file` {
		t.Errorf("escaped slash rewritten: %q", got)
	}
	if got := normalizeLiteral(`a\\b`, Shell); got != `a\b` {
		t.Errorf("escaped backslash rewritten: %q", got)
	}
	// Mixed: the unescaped slash makes it a path, the escaped backslash
	// still survives untouched.
	if got := normalizeLiteral(`src/my\\lib`, Batch); got != `src\my\lib` {
		t.Errorf("mixed escapes: %q", got)
	}
}

func TestNormalizeDecodesEscapes(t *testing.T) {
	if got := normalizeLiteral(`line1\nline2`, Shell); got != "line1\nline2" {
		t.Errorf("newline escape not decoded: %q", got)
	}
	if got := normalizeLiteral(`say \"hi\"`, Shell); got != `say "hi"` {
		t.Errorf("quote escape not decoded: %q", got)
	}
}
