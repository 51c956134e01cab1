// Package parser implements the syntax analysis for rosella.
// It uses recursive descent for statements and Pratt parsing (precedence
// climbing) for expressions. Parsing is single-pass and stops at the first
// syntax error; the only lookahead is the fixed two-token peek that
// disambiguates assignment from call-as-statement.
package parser

import (
	"fmt"
	"rosella/internal/ast"
	"rosella/internal/diag"
	"rosella/internal/span"
	"rosella/internal/token"
	"strconv"
)

// ============================================================
// Binding power (precedence) levels
// ============================================================

const (
	bpNone       = 0
	bpEquality   = 10 // == !=
	bpComparison = 20 // < <= > >=
	bpAdditive   = 30 // + -
	bpMultiply   = 40 // * /
	bpUnary      = 50 // unary -
)

// infixBP returns the left binding power for an infix operator.
func infixBP(kind token.Kind) int {
	switch kind {
	case token.EQ, token.NEQ:
		return bpEquality
	case token.LT, token.LTE, token.GT, token.GTE:
		return bpComparison
	case token.PLUS, token.MINUS:
		return bpAdditive
	case token.STAR, token.SLASH:
		return bpMultiply
	default:
		return bpNone
	}
}

// ============================================================
// Parser
// ============================================================

// Parser performs syntax analysis on a stream of tokens.
type Parser struct {
	tokens []token.Token
	pos    int
	depth  int // block nesting depth; function declarations must sit at 0
	diags  []diag.Diagnostic
}

// New creates a new parser from a token slice.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, pos: 0}
}

// ParseProgram parses the entire token stream and returns the AST root and
// diagnostics. On a syntax error the slice contains exactly one diagnostic
// and the returned program holds whatever parsed cleanly before it.
func (p *Parser) ParseProgram() (*ast.Program, []diag.Diagnostic) {
	program := &ast.Program{}
	startPos := p.peek().Span.Start

	for !p.isAtEnd() && !p.failed() {
		stmt := p.parseStmt()
		if p.failed() {
			break
		}
		program.Stmts = append(program.Stmts, stmt)
	}

	endPos := p.peek().Span.End
	program.Span = span.Span{Start: startPos, End: endPos}
	return program, p.diags
}

// ---- navigation helpers ----

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() token.Kind {
	return p.peek().Kind
}

// peekAt returns the token n positions ahead of the current one.
func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.tokens) {
		return token.Token{Kind: token.EOF}
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peekKind() == kind
}

func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if p.check(kind) {
		return p.advance(), true
	}
	tok := p.peek()
	p.error("E2001", tok.Span, fmt.Sprintf("expected '%s', got '%s'", kind, tok.Kind))
	return tok, false
}

func (p *Parser) isAtEnd() bool {
	return p.peekKind() == token.EOF
}

// failed reports whether a syntax error has already been recorded. The parser
// aborts at the first error rather than attempting recovery.
func (p *Parser) failed() bool {
	return len(p.diags) > 0
}

func (p *Parser) error(code string, s span.Span, msg string) {
	if p.failed() {
		return
	}
	p.diags = append(p.diags, diag.Errorf(code, s, "%s", msg))
}

// ============================================================
// Statement parsing
// ============================================================

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peekKind() {
	case token.KW_FN:
		if p.depth > 0 {
			tok := p.peek()
			p.error("E2006", tok.Span, "nested function declarations are not allowed")
			return &ast.ExprStmt{StmtBase: makeStmtBase(tok.Span.Start, tok.Span.End)}
		}
		return p.parseFuncDecl()
	case token.KW_LET:
		return p.parseVarDecl()
	case token.KW_IF:
		return p.parseIfStmt()
	case token.KW_WHILE:
		return p.parseWhileStmt()
	case token.KW_PRINT:
		return p.parsePrintStmt()
	case token.KW_WITH:
		return p.parseWithStmt()
	case token.PIPE_RAW:
		return p.parseRawStmt()
	case token.LBRACE:
		return p.parseBlock()
	case token.IDENT:
		return p.parseIdentStmt()
	default:
		tok := p.peek()
		p.error("E2002", tok.Span, fmt.Sprintf("expected statement, got '%s'", tok.Kind))
		return &ast.ExprStmt{StmtBase: makeStmtBase(tok.Span.Start, tok.Span.End)}
	}
}

// parseVarDecl parses: let [int|str] IDENT = expr ;
func (p *Parser) parseVarDecl() *ast.VarDecl {
	start := p.advance() // consume 'let'
	stmt := &ast.VarDecl{DeclType: ast.TypeStr}

	switch p.peekKind() {
	case token.KW_INT:
		p.advance()
		stmt.DeclType = ast.TypeInt
	case token.KW_STR:
		p.advance()
		stmt.DeclType = ast.TypeStr
	}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		stmt.Span = p.makeSpan(start.Span.Start)
		return stmt
	}
	stmt.Name = nameTok.Lexeme

	if _, ok := p.expect(token.ASSIGN); !ok {
		stmt.Span = p.makeSpan(start.Span.Start)
		return stmt
	}
	stmt.Init = p.parseExpr(bpNone)
	p.expect(token.SEMICOLON)

	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseFuncDecl parses: fn IDENT ( params ) block
func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	start := p.advance() // consume 'fn'
	decl := &ast.FuncDecl{}

	nameTok, ok := p.expect(token.IDENT)
	if !ok {
		decl.Span = p.makeSpan(start.Span.Start)
		return decl
	}
	decl.Name = nameTok.Lexeme

	decl.Params = p.parseParamList()
	decl.Body = p.parseBlock()
	decl.Span = p.makeSpan(start.Span.Start)
	return decl
}

// parseParamList parses: ( [int|str] ident, [int|str] ident, ... )
// Parameters without a type prefix default to int.
func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param

	if _, ok := p.expect(token.LPAREN); !ok {
		return params
	}

	for !p.check(token.RPAREN) && !p.failed() {
		if len(params) > 0 {
			if _, ok := p.expect(token.COMMA); !ok {
				return params
			}
		}
		param := ast.Param{Type: ast.TypeInt}
		switch p.peekKind() {
		case token.KW_INT:
			p.advance()
		case token.KW_STR:
			p.advance()
			param.Type = ast.TypeStr
		}
		nameTok, ok := p.expect(token.IDENT)
		if !ok {
			return params
		}
		param.Name = nameTok.Lexeme
		param.Span = nameTok.Span
		params = append(params, param)
	}

	p.expect(token.RPAREN)
	return params
}

// parseCondMarker parses the boolean-context marker of an if/while condition:
// the 'int' or 'str' wrapping the parenthesized expression. It is syntax, not
// a call named int; only the marker tag is kept.
func (p *Parser) parseCondMarker() ast.Type {
	switch p.peekKind() {
	case token.KW_INT:
		p.advance()
		return ast.TypeInt
	case token.KW_STR:
		p.advance()
		return ast.TypeStr
	default:
		tok := p.peek()
		p.error("E2003", tok.Span,
			fmt.Sprintf("expected 'int' or 'str' condition marker, got '%s'", tok.Kind))
		return ast.TypeUnknown
	}
}

// parseIfStmt parses: if marker ( expr ) block [ else (if ... | block) ]
func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.advance() // consume 'if'
	stmt := &ast.IfStmt{}

	stmt.CondType = p.parseCondMarker()
	if _, ok := p.expect(token.LPAREN); !ok {
		stmt.Span = p.makeSpan(start.Span.Start)
		return stmt
	}
	stmt.Condition = p.parseExpr(bpNone)
	p.expect(token.RPAREN)
	stmt.Body = p.parseBlock()

	if p.check(token.KW_ELSE) {
		p.advance() // consume 'else'
		if p.check(token.KW_IF) {
			stmt.Else = p.parseIfStmt()
		} else {
			stmt.Else = p.parseBlock()
		}
	}

	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseWhileStmt parses: while marker ( expr ) block
func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start := p.advance() // consume 'while'
	stmt := &ast.WhileStmt{}

	stmt.CondType = p.parseCondMarker()
	if _, ok := p.expect(token.LPAREN); !ok {
		stmt.Span = p.makeSpan(start.Span.Start)
		return stmt
	}
	stmt.Condition = p.parseExpr(bpNone)
	p.expect(token.RPAREN)
	stmt.Body = p.parseBlock()
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parsePrintStmt parses: print ( args ) ;
func (p *Parser) parsePrintStmt() *ast.PrintStmt {
	start := p.advance() // consume 'print'
	stmt := &ast.PrintStmt{}

	if _, ok := p.expect(token.LPAREN); !ok {
		stmt.Span = p.makeSpan(start.Span.Start)
		return stmt
	}
	stmt.Args = p.parseArgList()
	p.expect(token.SEMICOLON)
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseWithStmt parses: with IDENT block
func (p *Parser) parseWithStmt() *ast.WithStmt {
	start := p.advance() // consume 'with'
	stmt := &ast.WithStmt{}

	osTok, ok := p.expect(token.IDENT)
	if !ok {
		stmt.Span = p.makeSpan(start.Span.Start)
		return stmt
	}
	stmt.OS = osTok.Lexeme
	stmt.Body = p.parseBlock()
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseRawStmt parses: |> expr ... ;
func (p *Parser) parseRawStmt() *ast.RawStmt {
	start := p.advance() // consume '|>'
	stmt := &ast.RawStmt{}

	for !p.check(token.SEMICOLON) && !p.isAtEnd() && !p.failed() {
		arg := p.parseExpr(bpNone)
		if arg == nil {
			break
		}
		stmt.Args = append(stmt.Args, arg)
	}
	p.expect(token.SEMICOLON)
	stmt.Span = p.makeSpan(start.Span.Start)
	return stmt
}

// parseIdentStmt disambiguates assignment from call-as-statement with fixed
// one-token lookahead past the identifier.
func (p *Parser) parseIdentStmt() ast.Stmt {
	switch p.peekAt(1).Kind {
	case token.ASSIGN:
		nameTok := p.advance() // IDENT
		p.advance()            // '='
		value := p.parseExpr(bpNone)
		p.expect(token.SEMICOLON)
		return &ast.AssignStmt{
			StmtBase: makeStmtBase(nameTok.Span.Start, p.prevEnd()),
			Name:     nameTok.Lexeme,
			Value:    value,
		}
	case token.LPAREN:
		call := p.parseCallExpr()
		p.expect(token.SEMICOLON)
		return &ast.ExprStmt{
			StmtBase: makeStmtBase(call.GetSpan().Start, p.prevEnd()),
			Expr:     call,
		}
	default:
		tok := p.peek()
		p.error("E2004", tok.Span,
			fmt.Sprintf("expected '=' or '(' after identifier '%s'", tok.Lexeme))
		return &ast.ExprStmt{StmtBase: makeStmtBase(tok.Span.Start, tok.Span.End)}
	}
}

// parseBlock parses: { stmts }
func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.peek()
	block := &ast.BlockStmt{}

	if _, ok := p.expect(token.LBRACE); !ok {
		block.Span = p.makeSpan(start.Span.Start)
		return block
	}

	p.depth++
	for !p.check(token.RBRACE) && !p.isAtEnd() && !p.failed() {
		block.Stmts = append(block.Stmts, p.parseStmt())
	}
	p.depth--

	p.expect(token.RBRACE)
	block.Span = p.makeSpan(start.Span.Start)
	return block
}

// ============================================================
// Expression parsing (Pratt / precedence climbing)
// ============================================================

// parseExpr parses an expression with the given minimum binding power.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.nud()
	if left == nil {
		return nil
	}

	for !p.failed() {
		kind := p.peekKind()
		bp := infixBP(kind)
		if bp <= minBP {
			break
		}
		opTok := p.advance()
		right := p.parseExpr(bp)
		if right == nil {
			break
		}
		left = &ast.BinaryExpr{
			ExprBase: makeExprBase(left.GetSpan().Start, right.GetSpan().End),
			Op:       opTok.Kind,
			Left:     left,
			Right:    right,
		}
	}

	return left
}

// nud handles prefix (null denotation) parsing.
func (p *Parser) nud() ast.Expr {
	tok := p.peek()

	switch tok.Kind {
	case token.INT:
		p.advance()
		val, _ := strconv.ParseInt(tok.Lexeme, 10, 64)
		return &ast.IntLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    val,
		}

	case token.STRING:
		p.advance()
		return &ast.StringLiteral{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Value:    tok.Lexeme,
			Raw:      tok.Raw,
		}

	case token.IDENT:
		if p.peekAt(1).Kind == token.LPAREN {
			return p.parseCallExpr()
		}
		p.advance()
		return &ast.Ident{
			ExprBase: makeExprBase(tok.Span.Start, tok.Span.End),
			Name:     tok.Lexeme,
		}

	case token.LPAREN:
		p.advance() // consume '('
		expr := p.parseExpr(bpNone)
		p.expect(token.RPAREN)
		return expr

	case token.MINUS:
		p.advance()
		operand := p.parseExpr(bpUnary)
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			ExprBase: makeExprBase(tok.Span.Start, operand.GetSpan().End),
			Op:       token.MINUS,
			Operand:  operand,
		}

	default:
		p.error("E2005", tok.Span, fmt.Sprintf("expected expression, got '%s'", tok.Kind))
		return nil
	}
}

// parseCallExpr parses: IDENT ( args )
func (p *Parser) parseCallExpr() *ast.CallExpr {
	nameTok := p.advance() // IDENT
	p.advance()            // '('

	call := &ast.CallExpr{Name: nameTok.Lexeme}
	call.Args = p.parseArgList()
	call.ExprBase = makeExprBase(nameTok.Span.Start, p.prevEnd())
	return call
}

// parseArgList parses a comma-separated argument list up to the closing ')'.
// The opening '(' must already be consumed by the caller.
func (p *Parser) parseArgList() []ast.Expr {
	var args []ast.Expr

	if !p.check(token.RPAREN) {
		arg := p.parseExpr(bpNone)
		if arg == nil {
			return args
		}
		args = append(args, arg)
		for p.check(token.COMMA) && !p.failed() {
			p.advance() // consume ','
			arg := p.parseExpr(bpNone)
			if arg == nil {
				return args
			}
			args = append(args, arg)
		}
	}
	p.expect(token.RPAREN)
	return args
}

// ============================================================
// Span helpers
// ============================================================

func (p *Parser) prevEnd() span.Position {
	if p.pos > 0 && p.pos-1 < len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) makeSpan(start span.Position) span.Span {
	return span.Span{Start: start, End: p.prevEnd()}
}

func makeExprBase(start, end span.Position) ast.ExprBase {
	return ast.ExprBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}

func makeStmtBase(start, end span.Position) ast.StmtBase {
	return ast.StmtBase{NodeBase: ast.NodeBase{Span: span.Span{Start: start, End: end}}}
}
