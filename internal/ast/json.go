package ast

import (
	"rosella/internal/span"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
// Resolved types appear only after the checker has run.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		return m("Program", n.Span, "stmts", stmtSlice(n.Stmts))

	// ---- Expressions ----
	case *Ident:
		return expr("Ident", n, "name", n.Name)
	case *IntLiteral:
		return expr("IntLiteral", n, "value", n.Value)
	case *StringLiteral:
		return expr("StringLiteral", n, "value", n.Value)
	case *UnaryExpr:
		return expr("UnaryExpr", n, "op", n.Op.String(), "operand", NodeToMap(n.Operand))
	case *BinaryExpr:
		return expr("BinaryExpr", n,
			"op", n.Op.String(),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *CallExpr:
		return expr("CallExpr", n, "name", n.Name, "args", exprSlice(n.Args))

	// ---- Statements ----
	case *ExprStmt:
		return m("ExprStmt", n.Span, "expr", NodeToMap(n.Expr))
	case *VarDecl:
		return m("VarDecl", n.Span,
			"declType", n.DeclType.String(),
			"name", n.Name,
			"init", NodeToMap(n.Init))
	case *AssignStmt:
		return m("AssignStmt", n.Span, "name", n.Name, "value", NodeToMap(n.Value))
	case *PrintStmt:
		return m("PrintStmt", n.Span, "args", exprSlice(n.Args))
	case *BlockStmt:
		return m("BlockStmt", n.Span, "stmts", stmtSlice(n.Stmts))
	case *IfStmt:
		result := m("IfStmt", n.Span,
			"condType", n.CondType.String(),
			"condition", NodeToMap(n.Condition),
			"body", NodeToMap(n.Body))
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *WhileStmt:
		return m("WhileStmt", n.Span,
			"condType", n.CondType.String(),
			"condition", NodeToMap(n.Condition),
			"body", NodeToMap(n.Body))
	case *WithStmt:
		return m("WithStmt", n.Span, "os", n.OS, "body", NodeToMap(n.Body))
	case *RawStmt:
		return m("RawStmt", n.Span, "args", exprSlice(n.Args))

	// ---- Declarations ----
	case *FuncDecl:
		params := make([]interface{}, len(n.Params))
		for i, p := range n.Params {
			params[i] = map[string]interface{}{
				"name": p.Name,
				"type": p.Type.String(),
			}
		}
		return m("FuncDecl", n.Span,
			"name", n.Name,
			"params", params,
			"body", NodeToMap(n.Body))

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

// expr builds a node map and includes the resolved type when annotated.
func expr(kind string, e Expr, kvs ...interface{}) map[string]interface{} {
	result := m(kind, e.GetSpan(), kvs...)
	if t := e.ResolvedType(); t != TypeUnknown {
		result["type"] = t.String()
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func stmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}
