package compiler

import (
	"errors"
	"testing"

	"rosella/internal/codegen"
	"rosella/internal/diag"
)

// helper: compile expecting failure, returning the typed error
func compileErr(t *testing.T, source string, target codegen.Target) *Error {
	t.Helper()
	result, err := Compile("test.rla", source, target)
	if err == nil {
		t.Fatalf("expected error, got output:\n%s", result.Output)
	}
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *compiler.Error, got %T", err)
	}
	if result != nil {
		t.Errorf("expected nil result on failure")
	}
	return cerr
}

func TestCompileSimple(t *testing.T) {
	result, err := Compile("test.rla", `print("hi");`, codegen.Shell)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Output == "" {
		t.Fatal("expected output")
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestCompileErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   ErrorKind
	}{
		{"lex", "let s = \"oops;\n", LexError},
		{"syntax", `let x 1;`, SyntaxError},
		{"name", `print(y);`, NameError},
		{"type", `let int x = "s";`, TypeError},
		{"codegen", `let a = "x"; if str(a <= "y") { print(a); }`, CodegenError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cerr := compileErr(t, tt.source, codegen.Shell)
			if cerr.Kind() != tt.kind {
				t.Errorf("expected %s, got %s (%s)", tt.kind, cerr.Kind(), cerr.Diag.Code)
			}
		})
	}
}

func TestCompileErrorIsSingle(t *testing.T) {
	// Fail-fast: a source with several problems reports only the first.
	source := "print(a);\nprint(b);\nlet int c = \"s\";"
	cerr := compileErr(t, source, codegen.Batch)
	if cerr.Diag.Code != "E3001" {
		t.Errorf("expected first error E3001, got %s", cerr.Diag.Code)
	}
	if cerr.Diag.Span.Start.Line != 1 {
		t.Errorf("expected error on line 1, got %d", cerr.Diag.Span.Start.Line)
	}
}

func TestCompileWarningsSurvive(t *testing.T) {
	result, err := Compile("test.rla", `with darwin { print("d"); }`, codegen.Shell)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Code != "W3001" {
		t.Errorf("expected W3001 warning, got %v", result.Warnings)
	}
}

func TestCompileDeterministic(t *testing.T) {
	source := `
let int n = 0;
while int(n < 5) {
  print(n * 2);
  let int n = n + 1;
}
`
	for _, target := range []codegen.Target{codegen.Shell, codegen.Batch} {
		first, err := Compile("test.rla", source, target)
		if err != nil {
			t.Fatalf("%s: %v", target, err)
		}
		second, err := Compile("test.rla", source, target)
		if err != nil {
			t.Fatalf("%s: %v", target, err)
		}
		if first.Output != second.Output {
			t.Errorf("%s output differs between runs", target)
		}
	}
}

func TestErrorMessageFormat(t *testing.T) {
	cerr := compileErr(t, `print(y);`, codegen.Shell)
	msg := cerr.Error()
	if msg == "" {
		t.Fatal("empty error message")
	}
	// Single line, leading with the kind.
	for _, ch := range msg {
		if ch == '\n' {
			t.Fatalf("error message must be one line: %q", msg)
		}
	}
	if got := cerr.Kind().String(); got != "name error" {
		t.Errorf("kind string: %q", got)
	}
}

func TestFirstErrorSkipsWarnings(t *testing.T) {
	diags := []diag.Diagnostic{
		{Code: "W3001", Severity: diag.Warning},
		{Code: "E3001", Severity: diag.Error},
	}
	d, found := diag.FirstError(diags)
	if !found || d.Code != "E3001" {
		t.Errorf("FirstError = %v, %v", d, found)
	}
}
