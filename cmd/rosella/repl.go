package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"rosella/internal/codegen"
	"rosella/internal/compiler"
)

// ---- ANSI colors ----

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// ---- repl command ----

// cmdRepl reads snippets, compiles each one for the active target, and prints
// the generated script. `:target shell|batch` switches the dialect.
func cmdRepl() {
	// Determine history file path (~/.rosella_history)
	historyFile := ""
	if home, err := os.UserHomeDir(); err == nil {
		historyFile = filepath.Join(home, ".rosella_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            colorGreen + "rosella> " + colorReset,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	// Welcome banner
	fmt.Fprintf(rl.Stdout(), "%s%srosella REPL%s %s(':target shell|batch' to switch, 'exit' or Ctrl+D to quit)%s\n\n",
		colorBold, colorCyan, colorReset, colorGray, colorReset)

	target := codegen.Shell
	var accumulated strings.Builder
	braceDepth := 0

	for {
		// Update prompt based on multi-line state
		if braceDepth > 0 {
			rl.SetPrompt(colorGray + "...      " + colorReset)
		} else {
			rl.SetPrompt(colorGreen + "rosella> " + colorReset)
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if braceDepth > 0 {
					// Cancel multi-line input
					accumulated.Reset()
					braceDepth = 0
					continue
				}
				// Show hint instead of exiting
				fmt.Fprintf(rl.Stdout(), "\n%s(use 'exit' or Ctrl+D to quit)%s\n", colorGray, colorReset)
				continue
			}
			// EOF (Ctrl+D) or other error → exit
			if err == io.EOF {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		// REPL commands only apply outside a multi-line snippet
		if braceDepth == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "exit" {
				break
			}
			if rest, ok := strings.CutPrefix(trimmed, ":target"); ok {
				name := strings.TrimSpace(rest)
				if name == "" {
					fmt.Fprintf(rl.Stdout(), "%starget: %s%s\n", colorGray, target, colorReset)
					continue
				}
				t, err := codegen.ParseTarget(name)
				if err != nil {
					fmt.Fprintf(rl.Stderr(), "%serror: %v%s\n", colorRed, err, colorReset)
					continue
				}
				target = t
				fmt.Fprintf(rl.Stdout(), "%starget: %s%s\n", colorGray, target, colorReset)
				continue
			}
		}

		// Count braces for multi-line input
		braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
		accumulated.WriteString(line)
		accumulated.WriteString("\n")

		// If braces are unbalanced, keep reading
		if braceDepth > 0 {
			continue
		}
		braceDepth = 0

		source := accumulated.String()
		accumulated.Reset()

		// Skip empty input
		if strings.TrimSpace(source) == "" {
			continue
		}

		result, err := compiler.Compile("<repl>", source, target)
		if err != nil {
			fmt.Fprintf(rl.Stderr(), "%s%s%s\n", colorRed, err, colorReset)
			continue
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(rl.Stderr(), "%s%s%s\n", colorYellow, w.String(), colorReset)
		}
		fmt.Fprint(rl.Stdout(), result.Output)
	}
}
