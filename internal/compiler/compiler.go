// Package compiler wires the pipeline together: lex, parse, check, generate.
//
// The pipeline is fail-fast. Each stage either succeeds completely or reports
// a single error; a failing stage aborts the run and no later stage sees its
// partial output. Warnings are collected across stages and never abort.
package compiler

import (
	"fmt"
	"strings"

	"rosella/internal/codegen"
	"rosella/internal/diag"
	"rosella/internal/lexer"
	"rosella/internal/parser"
	"rosella/internal/sema"
)

// ErrorKind classifies a compilation failure by the stage that produced it.
type ErrorKind int

const (
	LexError ErrorKind = iota
	SyntaxError
	NameError
	TypeError
	CodegenError
)

func (k ErrorKind) String() string {
	switch k {
	case LexError:
		return "lex error"
	case SyntaxError:
		return "syntax error"
	case NameError:
		return "name error"
	case TypeError:
		return "type error"
	case CodegenError:
		return "codegen error"
	default:
		return "error"
	}
}

// Error is the single error type returned by Compile. It wraps the first
// error diagnostic of the failing stage.
type Error struct {
	Diag diag.Diagnostic
}

// Kind derives the failure class from the diagnostic's stable code.
func (e *Error) Kind() ErrorKind {
	switch {
	case strings.HasPrefix(e.Diag.Code, "E1"):
		return LexError
	case strings.HasPrefix(e.Diag.Code, "E2"):
		return SyntaxError
	case strings.HasPrefix(e.Diag.Code, "E30"):
		return NameError
	case strings.HasPrefix(e.Diag.Code, "E31"):
		return TypeError
	default:
		return CodegenError
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind(), e.Diag.String())
}

// Result carries a successful compilation's output plus any warnings.
type Result struct {
	Output   string
	Warnings []diag.Diagnostic
}

// Compile runs the full pipeline over source for one target. The filename is
// only used in diagnostics. On failure the returned error is always a *Error
// wrapping the first diagnostic; Result is nil and no output exists, not even
// partial output.
func Compile(filename, source string, target codegen.Target) (*Result, error) {
	var warnings []diag.Diagnostic

	tokens, diags := lexer.New(source, filename).Tokenize()
	if d, failed := diag.FirstError(diags); failed {
		return nil, &Error{Diag: d}
	}
	warnings = append(warnings, diags...)

	program, diags := parser.New(tokens).ParseProgram()
	if d, failed := diag.FirstError(diags); failed {
		return nil, &Error{Diag: d}
	}
	warnings = append(warnings, diags...)

	diags = sema.New().Check(program)
	if d, failed := diag.FirstError(diags); failed {
		return nil, &Error{Diag: d}
	}
	warnings = append(warnings, diags...)

	output, diags := codegen.New(target).Generate(program)
	if d, failed := diag.FirstError(diags); failed {
		return nil, &Error{Diag: d}
	}
	warnings = append(warnings, diags...)

	return &Result{Output: output, Warnings: warnings}, nil
}
