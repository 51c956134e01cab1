package sema

import (
	"rosella/internal/ast"
	"rosella/internal/diag"
	"rosella/internal/lexer"
	"rosella/internal/parser"
	"testing"
)

// helper: lex+parse+check, expecting a clean program
func checkOK(t *testing.T, source string) (*ast.Program, []diag.Diagnostic) {
	t.Helper()
	program := parse(t, source)
	diags := New().Check(program)
	if _, failed := diag.FirstError(diags); failed {
		t.Fatalf("unexpected error: %v", diags)
	}
	return program, diags
}

// helper: lex+parse+check, expecting one error with the given code
func checkErr(t *testing.T, source, code string) {
	t.Helper()
	program := parse(t, source)
	diags := New().Check(program)
	d, failed := diag.FirstError(diags)
	if !failed {
		t.Fatalf("expected error %s, got none", code)
	}
	if d.Code != code {
		t.Errorf("expected %s, got %s (%s)", code, d.Code, d.Message)
	}
}

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	tokens, lexDiags := lexer.New(source, "test.rla").Tokenize()
	if len(lexDiags) > 0 {
		t.Fatalf("lex errors: %v", lexDiags)
	}
	program, parseDiags := parser.New(tokens).ParseProgram()
	if len(parseDiags) > 0 {
		t.Fatalf("parse errors: %v", parseDiags)
	}
	return program
}

func TestCheckAnnotatesTypes(t *testing.T) {
	program, _ := checkOK(t, `let int x = 1 + 2;`)
	decl := program.Stmts[0].(*ast.VarDecl)
	if decl.Init.ResolvedType() != ast.TypeInt {
		t.Errorf("expected init annotated int, got %s", decl.Init.ResolvedType())
	}
}

func TestCheckUndeclaredVariable(t *testing.T) {
	checkErr(t, `print(y);`, "E3001")
}

func TestCheckDeclMismatch(t *testing.T) {
	checkErr(t, `let int x = "hi";`, "E3103")
}

func TestCheckUntypedDeclIsStr(t *testing.T) {
	// An untyped let declares a str variable; an int initializer is rejected
	// rather than stringified. Implicit stringification happens only in
	// print argument lists.
	checkOK(t, `let s = "hi";`)
	checkErr(t, `let x = 5;`, "E3103")
	checkErr(t, `let x = 2 + 3;`, "E3103")
}

func TestCheckAssignMismatch(t *testing.T) {
	checkErr(t, `let int x = 1; x = "hi";`, "E3103")
}

func TestCheckAssignUndeclared(t *testing.T) {
	checkErr(t, `x = 1;`, "E3001")
}

func TestCheckShadowingAllowed(t *testing.T) {
	checkOK(t, `
let str x = "outer";
{
  let str x = "inner";
  print(x);
}
print(x);
`)
}

func TestCheckBlockScopeEnds(t *testing.T) {
	// y is gone once its block closes.
	checkErr(t, `
{
  let y = "inner";
}
print(y);
`, "E3001")
}

func TestCheckInitSeesOuterBinding(t *testing.T) {
	// The initializer is resolved before the new binding exists, so the
	// x on the right refers to the outer x.
	checkOK(t, `
let int x = 1;
{
  let int x = x + 1;
  print(x);
}
`)
}

func TestCheckSelfReferenceFails(t *testing.T) {
	checkErr(t, `let int x = x + 1;`, "E3001")
}

func TestCheckConcatTypes(t *testing.T) {
	checkOK(t, `let a = "x" + "y"; print(a);`)
	checkErr(t, `let a = "x" + 1;`, "E3102")
}

func TestCheckArithmeticTypes(t *testing.T) {
	checkErr(t, `let int a = "x" - "y";`, "E3102")
	checkErr(t, `let int a = -"x";`, "E3102")
}

func TestCheckComparisonOutsideCondition(t *testing.T) {
	checkErr(t, `let int a = 1 < 2;`, "E3105")
}

func TestCheckConditionMarkerMismatch(t *testing.T) {
	checkErr(t, `let int x = 1; if str(x == 2) { print(x); }`, "E3104")
	checkErr(t, `let s = "a"; while int(s == "a") { print(s); }`, "E3104")
}

func TestCheckBareConditionNeedsInt(t *testing.T) {
	checkOK(t, `let int x = 1; if int(x) { print(x); }`)
	checkErr(t, `let s = "a"; if str(s) { print(s); }`, "E3104")
}

func TestCheckFuncRedeclared(t *testing.T) {
	checkErr(t, `fn f() { } fn f() { }`, "E3003")
}

func TestCheckCallUndeclared(t *testing.T) {
	checkErr(t, `g(1);`, "E3002")
}

func TestCheckCallBeforeDecl(t *testing.T) {
	// Functions live in one flat namespace; calls may precede the declaration.
	checkOK(t, `f(1); fn f(x) { print(x); }`)
}

func TestCheckCallArity(t *testing.T) {
	checkErr(t, `fn f(x) { print(x); } f(1, 2);`, "E3106")
}

func TestCheckCallArgType(t *testing.T) {
	checkErr(t, `fn f(x) { print(x); } f("hi");`, "E3103")
}

func TestCheckCallInExpression(t *testing.T) {
	checkErr(t, `fn f() { } let int x = f();`, "E3101")
}

func TestCheckFuncBodyIsolated(t *testing.T) {
	// Function bodies see parameters only, never outer variables.
	checkErr(t, `let int g = 1; fn f() { print(g); }`, "E3001")
}

func TestCheckUnknownOSWarns(t *testing.T) {
	_, diags := checkOK(t, `with darwin { print("d"); }`)
	if len(diags) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(diags))
	}
	if diags[0].Code != "W3001" || diags[0].Severity != diag.Warning {
		t.Errorf("expected W3001 warning, got %v", diags[0])
	}
}

func TestCheckFailFast(t *testing.T) {
	// Two undeclared uses: only the first is reported.
	program := parse(t, "print(a);\nprint(b);")
	diags := New().Check(program)
	errs := 0
	for _, d := range diags {
		if d.Severity == diag.Error {
			errs++
		}
	}
	if errs != 1 {
		t.Fatalf("expected exactly 1 error, got %d", errs)
	}
}
