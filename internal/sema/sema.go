// Package sema implements the declaration/scope checker for rosella.
//
// A single recursive walk maintains a stack of scope frames, registers
// variable declarations with their declared type, validates every identifier
// reference against the enclosing scope chain, and annotates each expression
// with its resolved type. Function declarations are collected in a pre-pass
// into a flat global namespace, so forward references across function bodies
// are legal; variable declarations are strictly declare-before-use.
//
// The walk stops at the first error. Warnings never abort.
package sema

import (
	"fmt"
	"rosella/internal/ast"
	"rosella/internal/diag"
	"rosella/internal/span"
	"rosella/internal/token"
)

// Checker validates and annotates a parsed program.
type Checker struct {
	funcs  map[string]*ast.FuncDecl
	scopes *scopeStack
	diags  []diag.Diagnostic
}

// New creates a Checker.
func New() *Checker {
	return &Checker{
		funcs:  make(map[string]*ast.FuncDecl),
		scopes: newScopeStack(),
	}
}

// Check walks the program, annotating expression types in place. The returned
// diagnostics contain at most one error (the first found) plus any warnings.
func (c *Checker) Check(program *ast.Program) []diag.Diagnostic {
	// Pre-pass: functions live in one flat, order-independent namespace.
	for _, stmt := range program.Stmts {
		fn, ok := stmt.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if _, exists := c.funcs[fn.Name]; exists {
			c.error("E3003", fn.Span, fmt.Sprintf("function '%s' redeclared", fn.Name))
			return c.diags
		}
		c.funcs[fn.Name] = fn
	}

	for _, stmt := range program.Stmts {
		c.checkStmt(stmt)
		if c.failed() {
			break
		}
	}
	return c.diags
}

// failed reports whether an error diagnostic has been recorded.
func (c *Checker) failed() bool {
	_, found := diag.FirstError(c.diags)
	return found
}

func (c *Checker) error(code string, s span.Span, msg string) {
	if c.failed() {
		return
	}
	c.diags = append(c.diags, diag.Errorf(code, s, "%s", msg))
}

func (c *Checker) warn(code string, s span.Span, msg string) {
	c.diags = append(c.diags, diag.Warningf(code, s, "%s", msg))
}

// ============================================================
// Statements
// ============================================================

func (c *Checker) checkStmt(stmt ast.Stmt) {
	if c.failed() {
		return
	}

	switch s := stmt.(type) {
	case *ast.VarDecl:
		// The initializer is checked before the name is bound, so
		// `let int x = x + 1;` resolves x against the outer binding.
		t := c.checkExpr(s.Init)
		if c.failed() {
			return
		}
		if s.DeclType == ast.TypeInt && t != ast.TypeInt {
			c.error("E3103", s.Span,
				fmt.Sprintf("cannot initialize int variable '%s' with a %s value", s.Name, t))
			return
		}
		if s.DeclType == ast.TypeStr && t == ast.TypeInt {
			c.error("E3103", s.Span,
				fmt.Sprintf("cannot initialize str variable '%s' with an int value", s.Name))
			return
		}
		c.scopes.define(s.Name, s.DeclType)

	case *ast.AssignStmt:
		declType, ok := c.scopes.lookup(s.Name)
		if !ok {
			c.error("E3001", s.Span, fmt.Sprintf("use of undeclared identifier '%s'", s.Name))
			return
		}
		t := c.checkExpr(s.Value)
		if c.failed() {
			return
		}
		if t != declType {
			c.error("E3103", s.Span,
				fmt.Sprintf("cannot assign %s value to %s variable '%s'", t, declType, s.Name))
		}

	case *ast.PrintStmt:
		// print auto-stringifies int arguments; any resolved type is fine.
		for _, arg := range s.Args {
			c.checkExpr(arg)
			if c.failed() {
				return
			}
		}

	case *ast.ExprStmt:
		if call, ok := s.Expr.(*ast.CallExpr); ok {
			c.checkCall(call)
			return
		}
		c.checkExpr(s.Expr)

	case *ast.BlockStmt:
		c.checkBlock(s)

	case *ast.IfStmt:
		c.checkCondition(s.Condition, s.CondType, s.Span)
		if c.failed() {
			return
		}
		c.checkBlock(s.Body)
		if s.Else != nil {
			c.checkStmt(s.Else)
		}

	case *ast.WhileStmt:
		c.checkCondition(s.Condition, s.CondType, s.Span)
		if c.failed() {
			return
		}
		c.checkBlock(s.Body)

	case *ast.WithStmt:
		if s.OS != "windows" && s.OS != "linux" {
			c.warn("W3001", s.Span,
				fmt.Sprintf("unknown target os '%s'; block will never be emitted", s.OS))
		}
		c.checkBlock(s.Body)

	case *ast.RawStmt:
		for _, arg := range s.Args {
			c.checkExpr(arg)
			if c.failed() {
				return
			}
		}

	case *ast.FuncDecl:
		c.checkFunc(s)
	}
}

// checkBlock pushes a scope frame for the block's lifetime; everything
// declared inside becomes unreachable when the frame pops.
func (c *Checker) checkBlock(block *ast.BlockStmt) {
	if block == nil {
		return
	}
	c.scopes.push()
	for _, stmt := range block.Stmts {
		c.checkStmt(stmt)
		if c.failed() {
			break
		}
	}
	c.scopes.pop()
}

// checkFunc checks a function body. Bodies are self-contained: they see their
// parameters and the global function namespace, not outer variables.
func (c *Checker) checkFunc(fn *ast.FuncDecl) {
	saved := c.scopes
	c.scopes = newScopeStack()
	for _, p := range fn.Params {
		c.scopes.define(p.Name, p.Type)
	}
	for _, stmt := range fn.Body.Stmts {
		c.checkStmt(stmt)
		if c.failed() {
			break
		}
	}
	c.scopes = saved
}

// ============================================================
// Conditions
// ============================================================

// checkCondition validates a while/if condition against its boolean-context
// marker. A comparison must compare operands of the marker's type; a bare
// expression is tested against zero and therefore requires an int marker.
func (c *Checker) checkCondition(cond ast.Expr, marker ast.Type, s span.Span) {
	if cond == nil {
		return
	}

	if bin, ok := cond.(*ast.BinaryExpr); ok && bin.Op.IsComparison() {
		lt := c.checkExpr(bin.Left)
		if c.failed() {
			return
		}
		rt := c.checkExpr(bin.Right)
		if c.failed() {
			return
		}
		if lt != marker || rt != marker {
			c.error("E3104", bin.Span,
				fmt.Sprintf("condition marked '%s' compares %s and %s operands", marker, lt, rt))
			return
		}
		// Comparisons behave as int (0/1) in boolean context.
		bin.SetResolvedType(ast.TypeInt)
		return
	}

	t := c.checkExpr(cond)
	if c.failed() {
		return
	}
	if marker != ast.TypeInt || t != ast.TypeInt {
		c.error("E3104", cond.GetSpan(),
			"bare condition expressions are tested against zero and require an int marker and int operands")
	}
}

// ============================================================
// Expressions
// ============================================================

// checkExpr resolves and annotates an expression, returning its type.
func (c *Checker) checkExpr(expr ast.Expr) ast.Type {
	if expr == nil || c.failed() {
		return ast.TypeUnknown
	}

	switch e := expr.(type) {
	case *ast.IntLiteral:
		e.SetResolvedType(ast.TypeInt)
		return ast.TypeInt

	case *ast.StringLiteral:
		e.SetResolvedType(ast.TypeStr)
		return ast.TypeStr

	case *ast.Ident:
		t, ok := c.scopes.lookup(e.Name)
		if !ok {
			c.error("E3001", e.Span, fmt.Sprintf("use of undeclared identifier '%s'", e.Name))
			return ast.TypeUnknown
		}
		e.SetResolvedType(t)
		return t

	case *ast.UnaryExpr:
		t := c.checkExpr(e.Operand)
		if c.failed() {
			return ast.TypeUnknown
		}
		if t != ast.TypeInt {
			c.error("E3102", e.Span, "unary '-' requires an int operand")
			return ast.TypeUnknown
		}
		e.SetResolvedType(ast.TypeInt)
		return ast.TypeInt

	case *ast.BinaryExpr:
		return c.checkBinary(e)

	case *ast.CallExpr:
		// Functions have no return value; a call can only stand alone
		// as a statement.
		c.error("E3101", e.Span,
			fmt.Sprintf("function '%s' has no value and cannot be used inside an expression", e.Name))
		return ast.TypeUnknown

	default:
		return ast.TypeUnknown
	}
}

func (c *Checker) checkBinary(e *ast.BinaryExpr) ast.Type {
	if e.Op.IsComparison() {
		c.error("E3105", e.Span,
			"comparison operators are only allowed in if/while conditions")
		return ast.TypeUnknown
	}

	lt := c.checkExpr(e.Left)
	if c.failed() {
		return ast.TypeUnknown
	}
	rt := c.checkExpr(e.Right)
	if c.failed() {
		return ast.TypeUnknown
	}

	switch e.Op {
	case token.PLUS:
		if lt == ast.TypeInt && rt == ast.TypeInt {
			e.SetResolvedType(ast.TypeInt)
			return ast.TypeInt
		}
		if lt == ast.TypeStr && rt == ast.TypeStr {
			// String concatenation.
			e.SetResolvedType(ast.TypeStr)
			return ast.TypeStr
		}
		// Mixed int/str addition is rejected; int values auto-stringify
		// only in print argument lists, never inside '+'.
		c.error("E3102", e.Span,
			fmt.Sprintf("'+' requires two int or two str operands, got %s and %s", lt, rt))
		return ast.TypeUnknown

	case token.MINUS, token.STAR, token.SLASH:
		if lt != ast.TypeInt || rt != ast.TypeInt {
			c.error("E3102", e.Span,
				fmt.Sprintf("'%s' requires int operands, got %s and %s", e.Op, lt, rt))
			return ast.TypeUnknown
		}
		e.SetResolvedType(ast.TypeInt)
		return ast.TypeInt

	default:
		c.error("E3102", e.Span, fmt.Sprintf("operator '%s' is not defined", e.Op))
		return ast.TypeUnknown
	}
}

// checkCall validates a call statement: the callee must be a declared
// function and the argument count must match its parameter list.
func (c *Checker) checkCall(call *ast.CallExpr) {
	fn, ok := c.funcs[call.Name]
	if !ok {
		c.error("E3002", call.Span, fmt.Sprintf("call to undeclared function '%s'", call.Name))
		return
	}
	if len(call.Args) != len(fn.Params) {
		c.error("E3106", call.Span,
			fmt.Sprintf("function '%s' takes %d arguments, got %d",
				call.Name, len(fn.Params), len(call.Args)))
		return
	}
	for i, arg := range call.Args {
		t := c.checkExpr(arg)
		if c.failed() {
			return
		}
		if t != fn.Params[i].Type {
			c.error("E3103", arg.GetSpan(),
				fmt.Sprintf("argument %d of '%s' must be %s, got %s",
					i+1, call.Name, fn.Params[i].Type, t))
			return
		}
	}
}
