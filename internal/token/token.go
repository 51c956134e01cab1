// Package token defines the token types produced by the lexer.
package token

import (
	"fmt"
	"rosella/internal/span"
)

// Kind represents the type of a token.
type Kind int

const (
	// Special tokens
	ILLEGAL Kind = iota
	EOF

	// Literals
	IDENT  // identifiers: x, foo, my_var
	INT    // integer literals: 123
	STRING // string literals: "hello"

	// Operators
	ASSIGN // =
	PLUS   // +
	MINUS  // -
	STAR   // *
	SLASH  // /

	EQ  // ==
	NEQ // !=
	LT  // <
	LTE // <=
	GT  // >
	GTE // >=

	PIPE_RAW // |> raw instruction marker

	// Delimiters
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	SEMICOLON // ;

	// Keywords
	KW_LET
	KW_FN
	KW_IF
	KW_ELSE
	KW_WHILE
	KW_WITH
	KW_PRINT
	KW_INT
	KW_STR
)

var kindNames = map[Kind]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT:  "IDENT",
	INT:    "INT",
	STRING: "STRING",

	ASSIGN: "=",
	PLUS:   "+",
	MINUS:  "-",
	STAR:   "*",
	SLASH:  "/",
	EQ:     "==",
	NEQ:    "!=",
	LT:     "<",
	LTE:    "<=",
	GT:     ">",
	GTE:    ">=",

	PIPE_RAW: "|>",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	LBRACKET:  "[",
	RBRACKET:  "]",
	COMMA:     ",",
	SEMICOLON: ";",

	KW_LET:   "let",
	KW_FN:    "fn",
	KW_IF:    "if",
	KW_ELSE:  "else",
	KW_WHILE: "while",
	KW_WITH:  "with",
	KW_PRINT: "print",
	KW_INT:   "int",
	KW_STR:   "str",
}

// String returns the human-readable name for a token kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsKeyword returns true if the kind is a keyword.
func (k Kind) IsKeyword() bool {
	return k >= KW_LET && k <= KW_STR
}

// IsLiteral returns true if the kind is a literal (ident/int/string).
func (k Kind) IsLiteral() bool {
	return k >= IDENT && k <= STRING
}

// IsComparison returns true for the six comparison operator kinds.
func (k Kind) IsComparison() bool {
	return k >= EQ && k <= GTE
}

var keywords = map[string]Kind{
	"let":   KW_LET,
	"fn":    KW_FN,
	"if":    KW_IF,
	"else":  KW_ELSE,
	"while": KW_WHILE,
	"with":  KW_WITH,
	"print": KW_PRINT,
	"int":   KW_INT,
	"str":   KW_STR,
}

// LookupIdent returns the keyword Kind for ident, or IDENT if it is not a
// keyword. Keywords are matched post-lex against this table; the scanning
// loop itself never special-cases them.
func LookupIdent(ident string) Kind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return IDENT
}

// Token represents a lexical token with its kind, text, and source location.
// For STRING tokens Lexeme holds the decoded value and Raw the source text
// between the quotes with escapes still visible (the path normalizer needs
// to distinguish escaped separators).
type Token struct {
	Kind   Kind      `json:"kind"`
	Lexeme string    `json:"lexeme"`
	Raw    string    `json:"raw,omitempty"`
	Span   span.Span `json:"span"`
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Kind, t.Lexeme, t.Span.Start)
}
