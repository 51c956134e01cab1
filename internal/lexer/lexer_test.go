package lexer

import (
	"rosella/internal/token"
	"testing"
)

func TestTokenizeSimple(t *testing.T) {
	source := `let int x = 1 + 2;`
	l := New(source, "test.rla")
	tokens, diags := l.Tokenize()

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	expected := []token.Kind{
		token.KW_LET, token.KW_INT, token.IDENT, token.ASSIGN,
		token.INT, token.PLUS, token.INT, token.SEMICOLON, token.EOF,
	}

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}

	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s (%q)", i, exp, tokens[i].Kind, tokens[i].Lexeme)
		}
	}
}

func TestTokenizeKeywords(t *testing.T) {
	source := `let fn if else while with print int str`
	l := New(source, "test.rla")
	tokens, diags := l.Tokenize()

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	expected := []token.Kind{
		token.KW_LET, token.KW_FN, token.KW_IF, token.KW_ELSE,
		token.KW_WHILE, token.KW_WITH, token.KW_PRINT,
		token.KW_INT, token.KW_STR,
		token.EOF,
	}

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}

	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s", i, exp, tokens[i].Kind)
		}
	}
}

func TestTokenizeOperators(t *testing.T) {
	source := `= == != < <= > >= + - * / |>`
	l := New(source, "test.rla")
	tokens, diags := l.Tokenize()

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	expected := []token.Kind{
		token.ASSIGN, token.EQ, token.NEQ,
		token.LT, token.LTE, token.GT, token.GTE,
		token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.PIPE_RAW,
		token.EOF,
	}

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}

	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s", i, exp, tokens[i].Kind)
		}
	}
}

func TestTokenizeString(t *testing.T) {
	source := `"hello" "line1\nline2" "a\/b"`
	l := New(source, "test.rla")
	tokens, diags := l.Tokenize()

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	if tokens[0].Kind != token.STRING || tokens[0].Lexeme != "hello" {
		t.Errorf("expected STRING 'hello', got %s %q", tokens[0].Kind, tokens[0].Lexeme)
	}
	if tokens[0].Raw != "hello" {
		t.Errorf("expected raw 'hello', got %q", tokens[0].Raw)
	}

	if tokens[1].Kind != token.STRING || tokens[1].Lexeme != "line1\nline2" {
		t.Errorf("expected STRING with newline, got %s %q", tokens[1].Kind, tokens[1].Lexeme)
	}
	if tokens[1].Raw != `line1\nline2` {
		t.Errorf("expected raw with visible escape, got %q", tokens[1].Raw)
	}

	// Escaped separator: decoded to a plain slash, but the raw text keeps the
	// backslash so the path normalizer can tell it apart.
	if tokens[2].Lexeme != "a/b" {
		t.Errorf("expected decoded 'a/b', got %q", tokens[2].Lexeme)
	}
	if tokens[2].Raw != `a\/b` {
		t.Errorf("expected raw 'a\\/b', got %q", tokens[2].Raw)
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	source := "let s = \"oops;\n"
	l := New(source, "test.rla")
	_, diags := l.Tokenize()

	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Code != "E1001" {
		t.Errorf("expected E1001, got %s", diags[0].Code)
	}
	// Reported at the opening quote.
	if diags[0].Span.Start.Column != 9 {
		t.Errorf("expected error at column 9, got %d", diags[0].Span.Start.Column)
	}
}

func TestTokenizeUnknownEscape(t *testing.T) {
	source := `let s = "bad\q";`
	l := New(source, "test.rla")
	_, diags := l.Tokenize()

	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Code != "E1002" {
		t.Errorf("expected E1002, got %s", diags[0].Code)
	}
}

func TestTokenizeComments(t *testing.T) {
	source := "x // line comment\n/* block\ncomment */ y"
	l := New(source, "test.rla")
	tokens, diags := l.Tokenize()

	if len(diags) > 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}

	expected := []token.Kind{token.IDENT, token.IDENT, token.EOF}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, exp := range expected {
		if tokens[i].Kind != exp {
			t.Errorf("token[%d]: expected %s, got %s", i, exp, tokens[i].Kind)
		}
	}
}

func TestTokenizeUnterminatedBlockComment(t *testing.T) {
	source := "x /* never closed"
	l := New(source, "test.rla")
	_, diags := l.Tokenize()

	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Code != "E1004" {
		t.Errorf("expected E1004, got %s", diags[0].Code)
	}
}

func TestTokenizeBareBang(t *testing.T) {
	source := `let x = !y;`
	l := New(source, "test.rla")
	_, diags := l.Tokenize()

	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Code != "E1003" {
		t.Errorf("expected E1003, got %s", diags[0].Code)
	}
}

func TestTokenizeFailFast(t *testing.T) {
	// Two errors in the source: only the first is reported.
	source := "let x = !a;\nlet y = !b;"
	l := New(source, "test.rla")
	_, diags := l.Tokenize()

	if len(diags) != 1 {
		t.Fatalf("expected exactly 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Span.Start.Line != 1 {
		t.Errorf("expected error on line 1, got %d", diags[0].Span.Start.Line)
	}
}

func TestTokenizePositions(t *testing.T) {
	source := "let x = 1;"
	l := New(source, "test.rla")
	tokens, _ := l.Tokenize()

	// "let" starts at line 1, col 1
	if tokens[0].Span.Start.Line != 1 || tokens[0].Span.Start.Column != 1 {
		t.Errorf("'let' position: expected 1:1, got %d:%d", tokens[0].Span.Start.Line, tokens[0].Span.Start.Column)
	}
	// "x" starts at line 1, col 5
	if tokens[1].Span.Start.Line != 1 || tokens[1].Span.Start.Column != 5 {
		t.Errorf("'x' position: expected 1:5, got %d:%d", tokens[1].Span.Start.Line, tokens[1].Span.Start.Column)
	}
}
