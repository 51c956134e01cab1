// Package ast defines the abstract syntax tree for rosella.
package ast

import (
	"rosella/internal/span"
	"rosella/internal/token"
)

// ============================================================
// Types
// ============================================================

// Type is the lightweight type tag tracked by the checker. It exists only to
// decide how each target dialect renders an operation (integer arithmetic vs
// string handling); there is no inference beyond propagating declared tags.
type Type int

const (
	TypeUnknown Type = iota // not yet annotated
	TypeInt                 // declared 'int': integer arithmetic contract
	TypeStr                 // untyped / declared 'str': string-like
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeStr:
		return "str"
	default:
		return "unknown"
	}
}

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
	GetSpan() span.Span
}

// Expr is the interface for expression nodes. The checker annotates each
// expression with its resolved type; nothing else mutates the tree.
type Expr interface {
	Node
	exprNode()
	ResolvedType() Type
	SetResolvedType(Type)
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide common fields)
// ============================================================

// NodeBase provides the common Span field for all AST nodes.
type NodeBase struct {
	Span span.Span
}

func (n NodeBase) nodeNode()          {}
func (n NodeBase) GetSpan() span.Span { return n.Span }

// ExprBase is embedded by all expression nodes. Type is filled in by the
// checker after parsing.
type ExprBase struct {
	NodeBase
	Type Type
}

func (ExprBase) exprNode() {}

func (e *ExprBase) ResolvedType() Type     { return e.Type }
func (e *ExprBase) SetResolvedType(t Type) { e.Type = t }

// StmtBase is embedded by all statement nodes.
type StmtBase struct{ NodeBase }

func (StmtBase) stmtNode() {}

// ============================================================
// Program (top-level AST root)
// ============================================================

// Program represents one compiled source unit. It owns every node for the
// lifetime of the compilation.
type Program struct {
	NodeBase
	Stmts []Stmt // top-level statements and declarations in source order
}

// ============================================================
// Expressions
// ============================================================

// Ident represents an identifier reference.
type Ident struct {
	ExprBase
	Name string
}

// IntLiteral represents an integer literal.
type IntLiteral struct {
	ExprBase
	Value int64
}

// StringLiteral represents a string literal. Value holds the decoded text;
// Raw keeps the source text between the quotes with escapes intact, which the
// emitters feed to the path normalizer.
type StringLiteral struct {
	ExprBase
	Value string
	Raw   string
}

// UnaryExpr represents a unary minus: -x.
type UnaryExpr struct {
	ExprBase
	Op      token.Kind
	Operand Expr
}

// BinaryExpr represents a binary operation: a + b, x < y.
type BinaryExpr struct {
	ExprBase
	Op    token.Kind
	Left  Expr
	Right Expr
}

// CallExpr represents a call by name: f(a, b). Functions are not first-class
// values, so the callee is always a bare name.
type CallExpr struct {
	ExprBase
	Name string
	Args []Expr
}

// ============================================================
// Statements
// ============================================================

// ExprStmt wraps an expression used as a statement (in practice a call).
type ExprStmt struct {
	StmtBase
	Expr Expr
}

// VarDecl represents: let <int|str>? name = expr;
// Re-declaring a name with let in the same scope creates a new binding that
// shadows the previous one; the checker accepts it.
type VarDecl struct {
	StmtBase
	DeclType Type // TypeInt for 'let int', TypeStr otherwise
	Name     string
	Init     Expr
}

// AssignStmt represents: name = expr;
type AssignStmt struct {
	StmtBase
	Name  string
	Value Expr
}

// PrintStmt represents: print(a, b, ...); — arguments are concatenated with
// no separator into a single output line.
type PrintStmt struct {
	StmtBase
	Args []Expr
}

// BlockStmt represents a bare block: { ... }. Introduces a new lexical scope.
type BlockStmt struct {
	StmtBase
	Stmts []Stmt
}

// IfStmt represents: if <marker>(cond) block [else block | else if ...].
// CondType records the boolean-context marker (int or str); the marker is
// syntax, not a call, so only the inner expression is kept.
type IfStmt struct {
	StmtBase
	CondType  Type
	Condition Expr
	Body      *BlockStmt
	Else      Stmt // *BlockStmt, *IfStmt (else-if chain), or nil
}

// WhileStmt represents: while <marker>(cond) block.
type WhileStmt struct {
	StmtBase
	CondType  Type
	Condition Expr
	Body      *BlockStmt
}

// WithStmt represents an OS-gated block: with <os> { ... }. The body is only
// emitted when the active target dialect matches the named OS.
type WithStmt struct {
	StmtBase
	OS   string
	Body *BlockStmt
}

// RawStmt represents a raw instruction: |> expr ... ; — operands are rendered
// verbatim into the output script.
type RawStmt struct {
	StmtBase
	Args []Expr
}

// ============================================================
// Declarations
// ============================================================

// Param is a function parameter with its (optionally declared) type.
// Untyped parameters default to int; see DESIGN.md.
type Param struct {
	Name string
	Type Type
	Span span.Span
}

// FuncDecl represents: fn name(params) { ... }. Functions live in a single
// flat global namespace and may be referenced before their declaration.
type FuncDecl struct {
	StmtBase
	Name   string
	Params []Param
	Body   *BlockStmt
}
