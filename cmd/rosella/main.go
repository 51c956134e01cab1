// Command rosella is the CLI entry point for the rosella transpiler.
//
// Usage:
//
//	rosella compile -i <file> [-t shell|batch|both] [-o <out>]
//	rosella tokens <file>            Print tokens
//	rosella tokens <file> --json     Print tokens as JSON
//	rosella parse  <file>            Print AST as JSON
//	rosella repl                     Start interactive REPL
package main

import (
	"fmt"
	"os"
	"strings"

	"rosella/internal/ast"
	"rosella/internal/codegen"
	"rosella/internal/compiler"
	"rosella/internal/lexer"
	"rosella/internal/parser"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "compile":
		cmdCompile(os.Args[2:])
	case "tokens":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(1)
		}
		source := readFile(os.Args[2])
		jsonMode := hasFlag("--json")
		cmdTokens(source, os.Args[2], jsonMode)
	case "parse":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: missing file argument")
			os.Exit(1)
		}
		source := readFile(os.Args[2])
		cmdParse(source, os.Args[2])
	case "repl":
		cmdRepl()
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", command)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  rosella compile -i <file> [-t shell|batch|both] [-o <out>]")
	fmt.Fprintln(os.Stderr, "  rosella tokens <file> [--json]   Tokenize and print tokens")
	fmt.Fprintln(os.Stderr, "  rosella parse  <file>            Parse and print AST (JSON)")
	fmt.Fprintln(os.Stderr, "  rosella repl                     Start interactive REPL")
}

func readFile(filename string) string {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return string(source)
}

func hasFlag(flag string) bool {
	for _, arg := range os.Args[3:] {
		if arg == flag {
			return true
		}
	}
	return false
}

// ---- compile command ----

func cmdCompile(args []string) {
	input := ""
	targetName := "both"
	output := ""

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-i", "--input":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "error: -i requires a file argument")
				os.Exit(1)
			}
			input = args[i]
		case "-t", "--target":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "error: -t requires a target argument")
				os.Exit(1)
			}
			targetName = args[i]
		case "-o", "--output":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "error: -o requires a file argument")
				os.Exit(1)
			}
			output = args[i]
		default:
			fmt.Fprintf(os.Stderr, "error: unknown flag '%s'\n", args[i])
			os.Exit(1)
		}
	}

	if input == "" {
		fmt.Fprintln(os.Stderr, "error: missing input file (-i <file>)")
		os.Exit(1)
	}

	var targets []codegen.Target
	if targetName == "both" {
		targets = []codegen.Target{codegen.Shell, codegen.Batch}
	} else {
		target, err := codegen.ParseTarget(targetName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		targets = []codegen.Target{target}
	}
	if output != "" && len(targets) > 1 {
		fmt.Fprintln(os.Stderr, "error: -o only applies to a single target; use -t shell or -t batch")
		os.Exit(1)
	}

	source := readFile(input)
	stem := strings.TrimSuffix(input, ".rla")

	for _, target := range targets {
		result, err := compiler.Compile(input, source, target)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		printDiagsText(result.Warnings)

		path := output
		if path == "" {
			path = stem + target.Ext()
		}
		if err := os.WriteFile(path, []byte(result.Output), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "error: cannot write %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("%s: wrote %s\n", target, path)
	}
}

// ---- tokens command ----

func cmdTokens(source, filename string, jsonMode bool) {
	l := lexer.New(source, filename)
	tokens, diags := l.Tokenize()

	if jsonMode {
		printTokensJSON(tokens, diags)
	} else {
		printTokensText(tokens, diags)
	}

	if len(diags) > 0 {
		os.Exit(1)
	}
}

// ---- parse command ----

func cmdParse(source, filename string) {
	l := lexer.New(source, filename)
	tokens, lexDiags := l.Tokenize()
	if len(lexDiags) > 0 {
		printDiagsText(lexDiags)
		os.Exit(1)
	}

	p := parser.New(tokens)
	program, parseDiags := p.ParseProgram()

	output := map[string]interface{}{
		"ast":         ast.NodeToMap(program),
		"diagnostics": diagsToSlice(parseDiags),
	}
	printJSON(output)

	if len(parseDiags) > 0 {
		os.Exit(1)
	}
}
