package parser_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"sl/internal/ast"
	"sl/internal/lexer"
	"sl/internal/parser"
	"sl/internal/token"
)

func parse(t *testing.T, input string) ([]ast.Stmt, []error) {
	t.Helper()
	toks, lexErrs := lexer.Scan(input)
	if len(lexErrs) > 0 {
		t.Fatalf("unexpected lexer errors: %v", lexErrs)
	}
	p := parser.New(toks)
	stmts := p.Parse()
	return stmts, p.Errors()
}

func mustParse(t *testing.T, input string) []ast.Stmt {
	t.Helper()
	stmts, errs := parse(t, input)
	if len(errs) > 0 {
		for _, e := range errs {
			t.Logf("parser error: %s", e)
		}
		t.Fatalf("expected no parser errors, got %d", len(errs))
	}
	return stmts
}

func parseExpr(t *testing.T, input string) ast.Expr {
	t.Helper()
	stmts := mustParse(t, input+";")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	es, ok := stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", stmts[0])
	}
	return es.Expression
}

func TestParseDeclarations(t *testing.T) {
	input := `var a = 1;
var b;
fun add(x, y) { return x + y; }
print add(a, 2);
`
	stmts := mustParse(t, input)
	if len(stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(stmts))
	}

	v, ok := stmts[0].(*ast.VarDeclStmt)
	if !ok || v.Name.Lexeme != "a" || v.Initializer == nil {
		t.Fatalf("expected var a with initializer, got %#v", stmts[0])
	}
	if v, ok := stmts[1].(*ast.VarDeclStmt); !ok || v.Initializer != nil {
		t.Fatalf("expected var b without initializer, got %#v", stmts[1])
	}

	fn, ok := stmts[2].(*ast.FunDecl)
	if !ok {
		t.Fatalf("expected FunDecl, got %T", stmts[2])
	}
	if fn.Name.Lexeme != "add" || len(fn.Func.Params) != 2 || len(fn.Func.Body) != 1 {
		t.Fatalf("unexpected function shape: %s", ast.Dump(fn))
	}

	pr, ok := stmts[3].(*ast.PrintStmt)
	if !ok {
		t.Fatalf("expected PrintStmt, got %T", stmts[3])
	}
	call, ok := pr.Expression.(*ast.CallExpr)
	if !ok || len(call.Args) != 2 {
		t.Fatalf("expected call with 2 args, got %#v", pr.Expression)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	expr := parseExpr(t, "1 + 2 * 3 == 7 and !false or nil")

	or, ok := expr.(*ast.LogicalExpr)
	if !ok || or.Op.Kind != token.Or {
		t.Fatalf("expected top-level 'or', got %s", ast.Dump(expr))
	}
	and, ok := or.Left.(*ast.LogicalExpr)
	if !ok || and.Op.Kind != token.And {
		t.Fatalf("expected 'and' under 'or', got %s", ast.Dump(or.Left))
	}
	eq, ok := and.Left.(*ast.BinaryExpr)
	if !ok || eq.Op.Kind != token.Eq {
		t.Fatalf("expected '==' under 'and', got %s", ast.Dump(and.Left))
	}
	sum, ok := eq.Left.(*ast.BinaryExpr)
	if !ok || sum.Op.Kind != token.Plus {
		t.Fatalf("expected '+' under '==', got %s", ast.Dump(eq.Left))
	}
	if prod, ok := sum.Right.(*ast.BinaryExpr); !ok || prod.Op.Kind != token.Star {
		t.Fatalf("expected '*' as right operand of '+', got %s", ast.Dump(sum.Right))
	}
	if not, ok := and.Right.(*ast.UnaryExpr); !ok || not.Op.Kind != token.Bang {
		t.Fatalf("expected '!' as right operand of 'and', got %s", ast.Dump(and.Right))
	}
}

func TestBinaryIsLeftAssociative(t *testing.T) {
	expr := parseExpr(t, "1 - 2 - 3")
	outer, ok := expr.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expected BinaryExpr, got %T", expr)
	}
	if _, ok := outer.Left.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected (1 - 2) - 3, got %s", ast.Dump(expr))
	}
	if _, ok := outer.Right.(*ast.Literal); !ok {
		t.Fatalf("expected literal right operand, got %s", ast.Dump(outer.Right))
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	expr := parseExpr(t, "a = b = 1")
	outer, ok := expr.(*ast.AssignExpr)
	if !ok || outer.Name.Lexeme != "a" {
		t.Fatalf("expected assignment to a, got %s", ast.Dump(expr))
	}
	inner, ok := outer.Value.(*ast.AssignExpr)
	if !ok || inner.Name.Lexeme != "b" {
		t.Fatalf("expected nested assignment to b, got %s", ast.Dump(outer.Value))
	}
}

func TestPropertyAssignmentBecomesSet(t *testing.T) {
	expr := parseExpr(t, "a.b.c = 2")
	set, ok := expr.(*ast.SetExpr)
	if !ok || set.Name.Lexeme != "c" {
		t.Fatalf("expected SetExpr for c, got %s", ast.Dump(expr))
	}
	if get, ok := set.Object.(*ast.GetExpr); !ok || get.Name.Lexeme != "b" {
		t.Fatalf("expected object a.b, got %s", ast.Dump(set.Object))
	}
}

func TestInvalidAssignmentTarget(t *testing.T) {
	stmts, errs := parse(t, "1 + 2 = 3;\nprint 4;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "invalid assignment target") {
		t.Fatalf("unexpected error: %s", errs[0])
	}
	// the error is not fatal; both statements survive
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
}

func TestLeadingBinaryOperator(t *testing.T) {
	_, errs := parse(t, "+5;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "binary operator '+' without left-hand operand") {
		t.Fatalf("unexpected error: %s", errs[0])
	}
}

func TestForDesugarsToWhile(t *testing.T) {
	stmts := mustParse(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	block, ok := stmts[0].(*ast.BlockStmt)
	if !ok || len(block.Stmts) != 2 {
		t.Fatalf("expected block of initializer and loop, got %s", ast.DumpProgram(stmts))
	}
	if _, ok := block.Stmts[0].(*ast.VarDeclStmt); !ok {
		t.Fatalf("expected initializer first, got %T", block.Stmts[0])
	}
	loop, ok := block.Stmts[1].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", block.Stmts[1])
	}
	body, ok := loop.Body.(*ast.BlockStmt)
	if !ok || len(body.Stmts) != 2 {
		t.Fatalf("expected body with increment appended, got %s", ast.Dump(loop.Body))
	}
	if _, ok := body.Stmts[0].(*ast.PrintStmt); !ok {
		t.Fatalf("expected original body first, got %T", body.Stmts[0])
	}
	if incr, ok := body.Stmts[1].(*ast.ExprStmt); !ok {
		t.Fatalf("expected increment last, got %T", body.Stmts[1])
	} else if _, ok := incr.Expression.(*ast.AssignExpr); !ok {
		t.Fatalf("expected increment assignment, got %T", incr.Expression)
	}
}

func TestForWithoutClauses(t *testing.T) {
	stmts := mustParse(t, "for (;;) break;")
	loop, ok := stmts[0].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected bare WhileStmt, got %s", ast.DumpProgram(stmts))
	}
	lit, ok := loop.Cond.(*ast.Literal)
	if !ok || lit.Value != true {
		t.Fatalf("expected literal true condition, got %s", ast.Dump(loop.Cond))
	}
	if _, ok := loop.Body.(*ast.BreakStmt); !ok {
		t.Fatalf("expected break body, got %T", loop.Body)
	}
}

func TestDanglingElseBindsToNearestIf(t *testing.T) {
	stmts := mustParse(t, "if (a) if (b) print 1; else print 2;")
	outer := stmts[0].(*ast.IfStmt)
	if outer.Else != nil {
		t.Fatalf("expected outer if without else")
	}
	inner, ok := outer.Then.(*ast.IfStmt)
	if !ok || inner.Else == nil {
		t.Fatalf("expected inner if to own the else, got %s", ast.Dump(outer.Then))
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	tests := []struct {
		input string
		errs  int
	}{
		{"break;", 1},
		{"while (true) break;", 0},
		{"while (true) { if (x) break; }", 0},
		{"while (true) { fun f() { break; } }", 1},
		{"while (true) { var g = fun () { break; }; }", 1},
		{"fun f() { while (true) { break; } break; }", 1},
	}
	for i, tt := range tests {
		_, errs := parse(t, tt.input)
		if len(errs) != tt.errs {
			t.Fatalf("tests[%d] - expected %d errors, got %d: %v", i, tt.errs, len(errs), errs)
		}
		for _, err := range errs {
			if !strings.Contains(err.Error(), "inside a loop") {
				t.Fatalf("tests[%d] - unexpected error: %s", i, err)
			}
		}
	}
}

func TestFunDeclarationVersusLiteral(t *testing.T) {
	stmts := mustParse(t, "fun named() {}\nfun (x) { return x; };\nvar f = fun () {};")
	if _, ok := stmts[0].(*ast.FunDecl); !ok {
		t.Fatalf("expected FunDecl, got %T", stmts[0])
	}
	es, ok := stmts[1].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected expression statement for lambda, got %T", stmts[1])
	}
	if lit, ok := es.Expression.(*ast.FuncLiteral); !ok || len(lit.Params) != 1 {
		t.Fatalf("expected FuncLiteral with 1 param, got %s", ast.Dump(es.Expression))
	}
	v := stmts[2].(*ast.VarDeclStmt)
	if _, ok := v.Initializer.(*ast.FuncLiteral); !ok {
		t.Fatalf("expected FuncLiteral initializer, got %T", v.Initializer)
	}
}

func TestClassDeclaration(t *testing.T) {
	input := `class B < A {
    init(x) { this.x = x; }
    class make() { return B(1); }
    get() { return super.get() + 1; }
}`
	stmts := mustParse(t, input)
	cls, ok := stmts[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected ClassDecl, got %T", stmts[0])
	}
	if cls.Name.Lexeme != "B" {
		t.Fatalf("expected class B, got %s", cls.Name.Lexeme)
	}
	if cls.Superclass == nil || cls.Superclass.Name.Lexeme != "A" {
		t.Fatalf("expected superclass A, got %#v", cls.Superclass)
	}
	if len(cls.Methods) != 2 || cls.Methods[0].Name.Lexeme != "init" || cls.Methods[1].Name.Lexeme != "get" {
		t.Fatalf("unexpected methods: %s", ast.Dump(cls))
	}
	if len(cls.Statics) != 1 || cls.Statics[0].Name.Lexeme != "make" {
		t.Fatalf("unexpected static methods: %s", ast.Dump(cls))
	}
}

func TestTooManyArguments(t *testing.T) {
	args := make([]string, 256)
	for i := range args {
		args[i] = "1"
	}
	_, errs := parse(t, "f("+strings.Join(args, ", ")+");")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "more than 255 arguments") {
		t.Fatalf("unexpected error: %s", errs[0])
	}
}

func TestErrorWording(t *testing.T) {
	_, errs := parse(t, "print 1")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Error() != "1:7: at end: expect ';' after value" {
		t.Fatalf("unexpected error: %s", errs[0])
	}
	if pe, ok := errs[0].(*parser.Error); !ok || !pe.AtEnd() {
		t.Fatalf("expected end-of-input parser error, got %#v", errs[0])
	}

	_, errs = parse(t, "var 1 = 2;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Error() != "1:5: at '1': expect variable name" {
		t.Fatalf("unexpected error: %s", errs[0])
	}
}

func TestMultipleErrorsAreReported(t *testing.T) {
	input := `var = 1;
print ;
var ok = 2;
foo(;
class { }
print ok;
`
	stmts, errs := parse(t, input)
	if len(errs) != 4 {
		for _, e := range errs {
			t.Logf("parser error: %s", e)
		}
		t.Fatalf("expected 4 errors, got %d", len(errs))
	}
	wantLines := []int{1, 2, 4, 5}
	for i, err := range errs {
		pe := err.(*parser.Error)
		if pe.Tok.Pos.Line != wantLines[i] {
			t.Fatalf("tests[%d] - expected error on line %d, got %s", i, wantLines[i], err)
		}
	}
	// the well-formed declarations are still produced
	if len(stmts) != 2 {
		t.Fatalf("expected 2 surviving statements, got %d: %s", len(stmts), ast.DumpProgram(stmts))
	}
}

func TestParseInteractive(t *testing.T) {
	tests := []struct {
		input   string
		stmts   int
		hasExpr bool
	}{
		{"1 + 2", 0, true},
		{"var a = 1; a + 2", 1, true},
		{"print 1;", 1, false},
		{"a = 3;", 1, false},
		{"fun f() { return 1; } f()", 1, true},
	}
	for i, tt := range tests {
		toks, _ := lexer.Scan(tt.input)
		p := parser.New(toks)
		in := p.ParseInteractive()
		if len(p.Errors()) > 0 {
			t.Fatalf("tests[%d] - unexpected errors: %v", i, p.Errors())
		}
		if len(in.Stmts) != tt.stmts {
			t.Fatalf("tests[%d] - expected %d statements, got %d", i, tt.stmts, len(in.Stmts))
		}
		if (in.Expr != nil) != tt.hasExpr {
			t.Fatalf("tests[%d] - trailing expression presence wrong: %#v", i, in.Expr)
		}
	}
}

func TestParseInteractiveIncompleteBlock(t *testing.T) {
	toks, _ := lexer.Scan("{ 1 + 2")
	p := parser.New(toks)
	in := p.ParseInteractive()
	if in.Expr != nil {
		t.Fatalf("expression inside an open block must not be reported, got %s", ast.Dump(in.Expr))
	}
	errs := p.Errors()
	if len(errs) == 0 {
		t.Fatalf("expected an error for unterminated block")
	}
	if pe, ok := errs[len(errs)-1].(*parser.Error); !ok || !pe.AtEnd() {
		t.Fatalf("expected end-of-input error, got %s", errs[len(errs)-1])
	}
}

func TestFormatRoundTrip(t *testing.T) {
	inputs := []string{
		`1`,
		`2.5`,
		`"hello world"`,
		`nil`,
		`true == !false`,
		`-(-1)`,
		`- -1`,
		`(1 + 2) * 3 / 4 - 5`,
		`1 < 2 and 3 >= 4 or 5 != 6`,
		`a = b = c`,
		`obj.field.other = f(1, g(2), h)`,
		`this.x`,
		`super.method(1)`,
		`fun (a, b) { return a + b; }`,
		`fun () { var x = 1; if (x) { print x; } else print nil; while (false) break; }`,
		`f(fun (x) { return x * x; })(3)`,
	}

	opts := cmpopts.IgnoreTypes(token.Position{})
	for i, input := range inputs {
		orig := parseExpr(t, input)
		printed := ast.Format(orig)
		again := parseExpr(t, printed)
		if diff := cmp.Diff(orig, again, opts); diff != "" {
			t.Fatalf("tests[%d] - round trip of %q via %q mismatch (-orig +reparsed):\n%s", i, input, printed, diff)
		}
	}
}

func TestDumpIsStable(t *testing.T) {
	stmts := mustParse(t, "var a = 1 + 2;")
	got := ast.DumpProgram(stmts)
	want := `VarDecl name=a
  Value:
    Binary op=+
      Literal 1
      Literal 2
`
	if got != want {
		t.Fatalf("unexpected dump:\n%s\nwant:\n%s", got, want)
	}
}
