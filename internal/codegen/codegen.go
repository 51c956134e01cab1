// Package codegen renders a checked AST into an executable script for one of
// the two target dialects. The traversal is shared; the generator branches on
// the target only where the dialects actually diverge: variable syntax,
// arithmetic, condition tests, call convention, and quoting.
package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"rosella/internal/ast"
	"rosella/internal/diag"
	"rosella/internal/span"
	"rosella/internal/token"
)

// Generator emits script text for a single target dialect. A Generator is
// single-use: temp and label counters restart per compilation, which keeps
// the output byte-identical across runs.
type Generator struct {
	target Target

	out    strings.Builder
	indent int
	inFunc bool

	tmpCount   int // batch arithmetic temporaries
	labelCount int // batch control-flow labels

	diags []diag.Diagnostic
}

// New creates a Generator for the given target.
func New(target Target) *Generator {
	return &Generator{target: target}
}

// Generate walks the annotated program and returns the complete script text.
// On error nothing is returned: no partial output is ever produced.
func (g *Generator) Generate(program *ast.Program) (string, []diag.Diagnostic) {
	var funcs []*ast.FuncDecl
	var mains []ast.Stmt
	for _, stmt := range program.Stmts {
		if fn, ok := stmt.(*ast.FuncDecl); ok {
			funcs = append(funcs, fn)
		} else {
			mains = append(mains, stmt)
		}
	}

	switch g.target {
	case Shell:
		// Shell functions must be defined before first use, so every
		// function is lifted above the top-level statements; relative
		// order within each group is preserved.
		g.raw("#!/usr/bin/env bash\n\n")
		for _, fn := range funcs {
			g.emitFuncShell(fn)
			g.raw("\n")
		}
		for _, stmt := range mains {
			g.emitStmt(stmt)
		}
	case Batch:
		g.raw("@echo off\nsetlocal EnableDelayedExpansion\n\n")
		for _, stmt := range mains {
			g.emitStmt(stmt)
		}
		if len(funcs) > 0 {
			g.raw("\nexit /b 0\n")
			for _, fn := range funcs {
				g.raw("\n")
				g.emitFuncBatch(fn)
			}
		}
	}

	if g.failed() {
		return "", g.diags
	}
	return g.out.String(), g.diags
}

// ---- output helpers ----

func (g *Generator) raw(s string) {
	g.out.WriteString(s)
}

func (g *Generator) line(s string) {
	for i := 0; i < g.indent; i++ {
		g.out.WriteString("  ")
	}
	g.out.WriteString(s)
	g.out.WriteString("\n")
}

func (g *Generator) linef(format string, args ...interface{}) {
	g.line(fmt.Sprintf(format, args...))
}

// label writes a batch label at column zero regardless of nesting.
func (g *Generator) label(name string) {
	g.out.WriteString(":" + name + "\n")
}

func (g *Generator) failed() bool {
	return len(g.diags) > 0
}

func (g *Generator) errorf(code string, s span.Span, format string, args ...interface{}) {
	if g.failed() {
		return
	}
	g.diags = append(g.diags, diag.Errorf(code, s, format, args...))
}

func (g *Generator) nextTmp() string {
	g.tmpCount++
	return fmt.Sprintf("__t%d", g.tmpCount)
}

func (g *Generator) nextLabel() int {
	g.labelCount++
	return g.labelCount
}

// ============================================================
// Statement dispatch (shared traversal)
// ============================================================

func (g *Generator) emitStmt(stmt ast.Stmt) {
	if g.failed() {
		return
	}

	switch s := stmt.(type) {
	case *ast.VarDecl:
		g.emitVarDecl(s)
	case *ast.AssignStmt:
		g.emitAssign(s)
	case *ast.PrintStmt:
		g.emitPrint(s)
	case *ast.ExprStmt:
		if call, ok := s.Expr.(*ast.CallExpr); ok {
			g.emitCall(call)
		}
	case *ast.BlockStmt:
		g.emitBlock(s)
	case *ast.IfStmt:
		g.emitIf(s)
	case *ast.WhileStmt:
		g.emitWhile(s)
	case *ast.WithStmt:
		// OS gate: the body is emitted inline for the matching target
		// and dropped entirely otherwise.
		if g.target.matchesOS(s.OS) {
			for _, inner := range s.Body.Stmts {
				g.emitStmt(inner)
			}
		}
	case *ast.RawStmt:
		g.emitRaw(s)
	case *ast.FuncDecl:
		// Functions are lifted by Generate; nothing to do in place.
	default:
		g.errorf("E4002", stmt.GetSpan(), "statement has no rendering for target %s", g.target)
	}
}

func (g *Generator) emitStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		g.emitStmt(stmt)
	}
}

// ============================================================
// Declarations and assignment
// ============================================================

func (g *Generator) emitVarDecl(s *ast.VarDecl) {
	switch g.target {
	case Shell:
		prefix := ""
		if g.inFunc {
			prefix = "local "
		}
		if s.DeclType == ast.TypeInt {
			g.linef("%s%s=%s", prefix, s.Name, g.shellIntValue(s.Init))
		} else {
			g.linef(`%s%s="%s"`, prefix, s.Name, g.shellStrSegs(s.Init))
		}
	case Batch:
		if s.DeclType == ast.TypeInt {
			g.linef("set /a %s=%s", s.Name, g.batchArith(s.Init, false))
		} else {
			g.linef(`set "%s=%s"`, s.Name, g.batchStrSegs(s.Init, true))
		}
	}
}

func (g *Generator) emitAssign(s *ast.AssignStmt) {
	isInt := s.Value != nil && s.Value.ResolvedType() == ast.TypeInt
	switch g.target {
	case Shell:
		if isInt {
			g.linef("%s=%s", s.Name, g.shellIntValue(s.Value))
		} else {
			g.linef(`%s="%s"`, s.Name, g.shellStrSegs(s.Value))
		}
	case Batch:
		if isInt {
			g.linef("set /a %s=%s", s.Name, g.batchArith(s.Value, false))
		} else {
			g.linef(`set "%s=%s"`, s.Name, g.batchStrSegs(s.Value, true))
		}
	}
}

// ============================================================
// print
// ============================================================

// emitPrint renders one output line; the comma-separated arguments are
// concatenated with no separator.
func (g *Generator) emitPrint(s *ast.PrintStmt) {
	switch g.target {
	case Shell:
		var segs strings.Builder
		for _, arg := range s.Args {
			segs.WriteString(g.shellPrintSeg(arg))
		}
		g.linef(`echo "%s"`, segs.String())
	case Batch:
		var segs strings.Builder
		for _, arg := range s.Args {
			segs.WriteString(g.batchPrintSeg(arg))
		}
		if segs.Len() == 0 {
			g.line("echo.")
		} else {
			g.linef("echo %s", segs.String())
		}
	}
}

// shellPrintSeg renders one print argument as a segment inside the quoted
// echo string. Int values auto-stringify here (and only here).
func (g *Generator) shellPrintSeg(arg ast.Expr) string {
	if arg.ResolvedType() == ast.TypeInt {
		switch e := arg.(type) {
		case *ast.IntLiteral:
			return strconv.FormatInt(e.Value, 10)
		case *ast.Ident:
			return "${" + e.Name + "}"
		default:
			return "$(( " + g.shellArith(arg, false) + " ))"
		}
	}
	return g.shellStrSegs(arg)
}

// batchPrintSeg renders one print argument for an echo line, computing
// arithmetic subexpressions into a temporary first.
func (g *Generator) batchPrintSeg(arg ast.Expr) string {
	if arg.ResolvedType() == ast.TypeInt {
		switch e := arg.(type) {
		case *ast.IntLiteral:
			return strconv.FormatInt(e.Value, 10)
		case *ast.Ident:
			return "!" + e.Name + "!"
		default:
			tmp := g.nextTmp()
			g.linef("set /a %s=%s", tmp, g.batchArith(arg, false))
			return "!" + tmp + "!"
		}
	}
	return g.batchStrSegs(arg, false)
}

// ============================================================
// Calls
// ============================================================

func (g *Generator) emitCall(call *ast.CallExpr) {
	switch g.target {
	case Shell:
		parts := []string{call.Name}
		for _, arg := range call.Args {
			parts = append(parts, g.shellCallArg(arg))
		}
		g.line(strings.Join(parts, " "))
	case Batch:
		parts := []string{"call", ":" + call.Name}
		for _, arg := range call.Args {
			parts = append(parts, g.batchCallArg(arg))
		}
		g.line(strings.Join(parts, " "))
	}
}

func (g *Generator) shellCallArg(arg ast.Expr) string {
	if arg.ResolvedType() == ast.TypeInt {
		switch e := arg.(type) {
		case *ast.IntLiteral:
			return strconv.FormatInt(e.Value, 10)
		case *ast.Ident:
			return `"${` + e.Name + `}"`
		default:
			return `"$(( ` + g.shellArith(arg, false) + ` ))"`
		}
	}
	return `"` + g.shellStrSegs(arg) + `"`
}

func (g *Generator) batchCallArg(arg ast.Expr) string {
	if arg.ResolvedType() == ast.TypeInt {
		switch e := arg.(type) {
		case *ast.IntLiteral:
			return strconv.FormatInt(e.Value, 10)
		case *ast.Ident:
			return "!" + e.Name + "!"
		default:
			tmp := g.nextTmp()
			g.linef("set /a %s=%s", tmp, g.batchArith(arg, false))
			return "!" + tmp + "!"
		}
	}
	return `"` + g.batchStrSegs(arg, true) + `"`
}

// ============================================================
// Blocks
// ============================================================

// emitBlock renders a bare source block with the dialect's own scoping
// construct, so variables shadowed inside leave the outer bindings intact:
// a subshell for shell, setlocal/endlocal for batch.
func (g *Generator) emitBlock(s *ast.BlockStmt) {
	switch g.target {
	case Shell:
		g.line("(")
		g.indent++
		g.emitStmts(s.Stmts)
		g.indent--
		g.line(")")
	case Batch:
		g.line("setlocal EnableDelayedExpansion")
		g.indent++
		g.emitStmts(s.Stmts)
		g.indent--
		g.line("endlocal")
	}
}

// ============================================================
// Conditionals and loops
// ============================================================

func (g *Generator) emitIf(s *ast.IfStmt) {
	switch g.target {
	case Shell:
		cond := g.shellCond(s.Condition, s.CondType)
		if g.failed() {
			return
		}
		g.linef("if [[ %s ]]; then", cond)
		g.indent++
		g.emitStmts(s.Body.Stmts)
		g.indent--
		g.emitShellElse(s.Else)
		g.line("fi")
	case Batch:
		n := g.nextLabel()
		if s.Else == nil {
			g.emitBatchCondGoto(s.Condition, s.CondType, fmt.Sprintf("endif_%d", n))
			g.indent++
			g.emitStmts(s.Body.Stmts)
			g.indent--
			g.label(fmt.Sprintf("endif_%d", n))
			return
		}
		g.emitBatchCondGoto(s.Condition, s.CondType, fmt.Sprintf("else_%d", n))
		g.indent++
		g.emitStmts(s.Body.Stmts)
		g.linef("goto :endif_%d", n)
		g.indent--
		g.label(fmt.Sprintf("else_%d", n))
		g.indent++
		if inner, ok := s.Else.(*ast.BlockStmt); ok {
			g.emitStmts(inner.Stmts)
		} else {
			g.emitStmt(s.Else)
		}
		g.indent--
		g.label(fmt.Sprintf("endif_%d", n))
	}
}

// emitShellElse renders the else/else-if chain with elif.
func (g *Generator) emitShellElse(stmt ast.Stmt) {
	switch e := stmt.(type) {
	case nil:
	case *ast.IfStmt:
		cond := g.shellCond(e.Condition, e.CondType)
		if g.failed() {
			return
		}
		g.linef("elif [[ %s ]]; then", cond)
		g.indent++
		g.emitStmts(e.Body.Stmts)
		g.indent--
		g.emitShellElse(e.Else)
	case *ast.BlockStmt:
		g.line("else")
		g.indent++
		g.emitStmts(e.Stmts)
		g.indent--
	}
}

func (g *Generator) emitWhile(s *ast.WhileStmt) {
	switch g.target {
	case Shell:
		cond := g.shellCond(s.Condition, s.CondType)
		if g.failed() {
			return
		}
		g.linef("while [[ %s ]]; do", cond)
		g.indent++
		g.emitStmts(s.Body.Stmts)
		g.indent--
		g.line("done")
	case Batch:
		n := g.nextLabel()
		g.label(fmt.Sprintf("while_%d", n))
		g.emitBatchCondGoto(s.Condition, s.CondType, fmt.Sprintf("endwhile_%d", n))
		g.indent++
		g.emitStmts(s.Body.Stmts)
		g.linef("goto :while_%d", n)
		g.indent--
		g.label(fmt.Sprintf("endwhile_%d", n))
	}
}

// ---- shell conditions ----

var shellIntOps = map[token.Kind]string{
	token.EQ:  "-eq",
	token.NEQ: "-ne",
	token.LT:  "-lt",
	token.LTE: "-le",
	token.GT:  "-gt",
	token.GTE: "-ge",
}

var shellStrOps = map[token.Kind]string{
	token.EQ:  "==",
	token.NEQ: "!=",
	token.LT:  "<",
	token.GT:  ">",
}

// shellCond renders the inside of a [[ ]] test for a condition expression.
func (g *Generator) shellCond(cond ast.Expr, marker ast.Type) string {
	bin, ok := cond.(*ast.BinaryExpr)
	if !ok || !bin.Op.IsComparison() {
		// Bare expression: tested against zero.
		return g.shellCompOperand(cond) + " -ne 0"
	}

	if marker == ast.TypeInt {
		return g.shellCompOperand(bin.Left) + " " + shellIntOps[bin.Op] + " " + g.shellCompOperand(bin.Right)
	}

	op, ok := shellStrOps[bin.Op]
	if !ok {
		g.errorf("E4101", bin.Span,
			"string comparison '%s' has no shell rendering", bin.Op)
		return ""
	}
	return `"` + g.shellStrSegs(bin.Left) + `" ` + op + ` "` + g.shellStrSegs(bin.Right) + `"`
}

// shellCompOperand renders an int-valued comparison operand.
func (g *Generator) shellCompOperand(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(v.Value, 10)
	case *ast.Ident:
		return "${" + v.Name + "}"
	default:
		return "$(( " + g.shellArith(e, false) + " ))"
	}
}

// ---- batch conditions ----

// batchInvOps maps each comparison to its negation: batch control flow is
// label-based, so every condition is emitted as "jump past the body when the
// test fails".
var batchInvOps = map[token.Kind]string{
	token.EQ:  "NEQ",
	token.NEQ: "EQU",
	token.LT:  "GEQ",
	token.LTE: "GTR",
	token.GT:  "LEQ",
	token.GTE: "LSS",
}

// emitBatchCondGoto writes the inverted condition test jumping to label.
// Arithmetic operands are computed into temporaries first.
func (g *Generator) emitBatchCondGoto(cond ast.Expr, marker ast.Type, label string) {
	bin, ok := cond.(*ast.BinaryExpr)
	if !ok || !bin.Op.IsComparison() {
		g.linef("if %s EQU 0 goto :%s", g.batchCompOperand(cond), label)
		return
	}

	if marker == ast.TypeInt {
		left := g.batchCompOperand(bin.Left)
		right := g.batchCompOperand(bin.Right)
		g.linef("if %s %s %s goto :%s", left, batchInvOps[bin.Op], right, label)
		return
	}

	left := `"` + g.batchStrSegs(bin.Left, true) + `"`
	right := `"` + g.batchStrSegs(bin.Right, true) + `"`
	switch bin.Op {
	case token.EQ:
		g.linef("if not %s==%s goto :%s", left, right, label)
	case token.NEQ:
		g.linef("if %s==%s goto :%s", left, right, label)
	default:
		g.errorf("E4101", bin.Span,
			"string comparison '%s' has no batch rendering", bin.Op)
	}
}

// batchCompOperand renders an int-valued comparison operand; `if` does not
// evaluate arithmetic, so compound expressions go through a temporary.
func (g *Generator) batchCompOperand(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(v.Value, 10)
	case *ast.Ident:
		return "!" + v.Name + "!"
	default:
		tmp := g.nextTmp()
		g.linef("set /a %s=%s", tmp, g.batchArith(e, false))
		return "!" + tmp + "!"
	}
}

// ============================================================
// Raw instructions
// ============================================================

// emitRaw renders |> operands verbatim, space-joined, with no quoting and no
// path normalization: raw lines are the author's escape hatch.
func (g *Generator) emitRaw(s *ast.RawStmt) {
	var parts []string
	for _, arg := range s.Args {
		switch e := arg.(type) {
		case *ast.StringLiteral:
			parts = append(parts, e.Value)
		case *ast.IntLiteral:
			parts = append(parts, strconv.FormatInt(e.Value, 10))
		case *ast.Ident:
			if g.target == Batch {
				parts = append(parts, "!"+e.Name+"!")
			} else {
				parts = append(parts, "${"+e.Name+"}")
			}
		default:
			g.errorf("E4002", arg.GetSpan(), "raw instruction operands must be literals or identifiers")
			return
		}
	}
	g.line(strings.Join(parts, " "))
}

// ============================================================
// Functions
// ============================================================

func (g *Generator) emitFuncShell(fn *ast.FuncDecl) {
	g.linef("%s() {", fn.Name)
	g.indent++
	g.inFunc = true
	for i, p := range fn.Params {
		g.linef(`local %s="$%d"`, p.Name, i+1)
	}
	g.emitStmts(fn.Body.Stmts)
	g.inFunc = false
	g.indent--
	g.line("}")
}

func (g *Generator) emitFuncBatch(fn *ast.FuncDecl) {
	g.label(fn.Name)
	g.line("setlocal EnableDelayedExpansion")
	for i, p := range fn.Params {
		if p.Type == ast.TypeInt {
			g.linef("set /a %s=%%~%d", p.Name, i+1)
		} else {
			g.linef(`set "%s=%%~%d"`, p.Name, i+1)
		}
	}
	g.emitStmts(fn.Body.Stmts)
	g.line("endlocal")
	g.line("goto :eof")
}

// ============================================================
// Expression rendering
// ============================================================

// shellIntValue renders an int expression as an assignment value.
func (g *Generator) shellIntValue(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(v.Value, 10)
	case *ast.Ident:
		return "${" + v.Name + "}"
	default:
		return "$(( " + g.shellArith(e, false) + " ))"
	}
}

// shellArith renders an int expression inside $(( )). Variables appear by
// bare name; nested subexpressions are parenthesized so the rendered text
// mirrors the tree regardless of dialect precedence.
func (g *Generator) shellArith(e ast.Expr, nested bool) string {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(v.Value, 10)
	case *ast.Ident:
		return v.Name
	case *ast.UnaryExpr:
		// A nested unary operand must be parenthesized: "--x" is a
		// pre-decrement in shell arithmetic, not double negation.
		inner := g.shellArith(v.Operand, true)
		if _, ok := v.Operand.(*ast.UnaryExpr); ok {
			inner = "(" + inner + ")"
		}
		return "-" + inner
	case *ast.BinaryExpr:
		s := g.shellArith(v.Left, true) + " " + v.Op.String() + " " + g.shellArith(v.Right, true)
		if nested {
			return "(" + s + ")"
		}
		return s
	default:
		g.errorf("E4002", e.GetSpan(), "expression has no arithmetic rendering")
		return ""
	}
}

// batchArith renders an int expression for set /a.
func (g *Generator) batchArith(e ast.Expr, nested bool) string {
	switch v := e.(type) {
	case *ast.IntLiteral:
		return strconv.FormatInt(v.Value, 10)
	case *ast.Ident:
		return v.Name
	case *ast.UnaryExpr:
		// Parenthesize a nested unary operand so set /a never sees "--".
		inner := g.batchArith(v.Operand, true)
		if _, ok := v.Operand.(*ast.UnaryExpr); ok {
			inner = "(" + inner + ")"
		}
		return "-" + inner
	case *ast.BinaryExpr:
		s := g.batchArith(v.Left, true) + " " + v.Op.String() + " " + g.batchArith(v.Right, true)
		if nested {
			return "(" + s + ")"
		}
		return s
	default:
		g.errorf("E4002", e.GetSpan(), "expression has no arithmetic rendering")
		return ""
	}
}

// shellStrSegs renders a string-valued expression as the inside of a
// double-quoted shell word. Concatenation is juxtaposition.
func (g *Generator) shellStrSegs(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.StringLiteral:
		return escapeShell(normalizeLiteral(rawOf(v), g.target))
	case *ast.Ident:
		return "${" + v.Name + "}"
	case *ast.BinaryExpr:
		if v.Op == token.PLUS {
			return g.shellStrSegs(v.Left) + g.shellStrSegs(v.Right)
		}
	}
	g.errorf("E4002", e.GetSpan(), "expression has no string rendering")
	return ""
}

// batchStrSegs renders a string-valued expression for batch; quoted selects
// the escaping rules for `set "x=..."` versus a bare echo line.
func (g *Generator) batchStrSegs(e ast.Expr, quoted bool) string {
	switch v := e.(type) {
	case *ast.StringLiteral:
		text := normalizeLiteral(rawOf(v), g.target)
		if quoted {
			return escapeBatchQuoted(text)
		}
		return escapeBatchEcho(text)
	case *ast.Ident:
		return "!" + v.Name + "!"
	case *ast.BinaryExpr:
		if v.Op == token.PLUS {
			return g.batchStrSegs(v.Left, quoted) + g.batchStrSegs(v.Right, quoted)
		}
	}
	g.errorf("E4002", e.GetSpan(), "expression has no string rendering")
	return ""
}

// rawOf returns the literal's raw source text, falling back to the decoded
// value for nodes built without one.
func rawOf(lit *ast.StringLiteral) string {
	if lit.Raw != "" {
		return lit.Raw
	}
	return lit.Value
}

// ---- dialect escaping ----

// escapeShell escapes text for interpolation inside a double-quoted word.
func escapeShell(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '\\', '"', '$', '`':
			b.WriteByte('\\')
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// escapeBatchQuoted escapes text inside `set "x=..."`: quotes neutralize the
// cmd specials, but percent signs still expand.
func escapeBatchQuoted(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

// escapeBatchEcho escapes text on a bare echo line with delayed expansion
// enabled.
func escapeBatchEcho(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '%':
			b.WriteString("%%")
		case '^':
			b.WriteString("^^")
		case '!':
			b.WriteString("^^!")
		case '&', '|', '<', '>', '(', ')':
			b.WriteByte('^')
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
