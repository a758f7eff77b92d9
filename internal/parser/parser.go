package parser

import (
	"fmt"

	"sl/internal/ast"
	"sl/internal/token"
)

const maxArgs = 255

// Error is a syntax error anchored at the offending token.
type Error struct {
	Tok token.Token
	Msg string
}

func (e *Error) Error() string {
	if e.Tok.Kind == token.EOF {
		return fmt.Sprintf("%d:%d: at end: %s", e.Tok.Pos.Line, e.Tok.Pos.Column, e.Msg)
	}
	return fmt.Sprintf("%d:%d: at '%s': %s", e.Tok.Pos.Line, e.Tok.Pos.Column, e.Tok.Lexeme, e.Msg)
}

// AtEnd reports whether the error was raised on the end-of-input token,
// which is how an interactive caller detects an incomplete entry.
func (e *Error) AtEnd() bool { return e.Tok.Kind == token.EOF }

// bailout unwinds the parser to the nearest declaration boundary.
type bailout struct{}

type Parser struct {
	toks []token.Token
	pos  int

	prev token.Token
	cur  token.Token
	peek token.Token

	loopDepth int

	errors []error
}

// New creates a parser over toks, which must end with an EOF token as
// produced by lexer.Scan.
func New(toks []token.Token) *Parser {
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		var pos token.Position
		if len(toks) > 0 {
			pos = toks[len(toks)-1].Pos
		}
		toks = append(toks, token.Token{Kind: token.EOF, Pos: pos})
	}
	p := &Parser{toks: toks}
	// init cur/peek
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []error {
	return p.errors
}

func (p *Parser) nextToken() {
	p.prev = p.cur
	p.cur = p.peek
	if p.pos < len(p.toks) {
		p.peek = p.toks[p.pos]
		p.pos++
	} else {
		p.peek = p.toks[len(p.toks)-1]
	}
}

func (p *Parser) atEnd() bool {
	return p.cur.Kind == token.EOF
}

// match consumes cur when it is one of kinds.
func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.cur.Kind == k {
			p.nextToken()
			return true
		}
	}
	return false
}

// errorf records a diagnostic without unwinding.
func (p *Parser) errorf(tok token.Token, format string, args ...any) {
	p.errors = append(p.errors, &Error{Tok: tok, Msg: fmt.Sprintf(format, args...)})
}

// fail records a diagnostic and abandons the current declaration.
func (p *Parser) fail(tok token.Token, format string, args ...any) {
	p.errorf(tok, format, args...)
	panic(bailout{})
}

func (p *Parser) expect(kind token.Kind, msg string) token.Token {
	if p.cur.Kind != kind {
		p.fail(p.cur, "%s", msg)
	}
	tok := p.cur
	p.nextToken()
	return tok
}

// ---------- Top-level ----------

// Parse parses a whole program. Declarations that fail to parse are dropped
// after their error is recorded; callers must reject the program when
// Errors is non-empty.
func (p *Parser) Parse() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// ParseInteractive parses REPL input, where the final expression may omit
// its terminating ';' and is returned separately as a value to report.
func (p *Parser) ParseInteractive() *ast.Interactive {
	in := &ast.Interactive{}
	for !p.atEnd() {
		if p.startsStatement() {
			if stmt := p.declaration(); stmt != nil {
				in.Stmts = append(in.Stmts, stmt)
			}
			continue
		}
		stmt, trailing := p.interactiveExprStmt()
		if trailing != nil {
			in.Expr = trailing
			break
		}
		if stmt != nil {
			in.Stmts = append(in.Stmts, stmt)
		}
	}
	return in
}

// startsStatement reports whether cur begins anything other than an
// expression statement.
func (p *Parser) startsStatement() bool {
	switch p.cur.Kind {
	case token.Class, token.Var, token.For, token.If, token.Print,
		token.Return, token.While, token.Break, token.LBrace:
		return true
	case token.Fun:
		return p.peek.Kind == token.Ident
	}
	return false
}

func (p *Parser) interactiveExprStmt() (stmt ast.Stmt, trailing ast.Expr) {
	defer p.recoverDeclaration()

	expr := p.parseExpr()
	if p.atEnd() {
		return nil, expr
	}
	p.expect(token.Semicolon, "expect ';' after expression")
	return &ast.ExprStmt{Expression: expr}, nil
}

func (p *Parser) declaration() (stmt ast.Stmt) {
	defer p.recoverDeclaration()

	switch {
	case p.cur.Kind == token.Class:
		p.nextToken()
		return p.parseClassDecl()
	case p.cur.Kind == token.Fun && p.peek.Kind == token.Ident:
		p.nextToken()
		return p.parseFunDecl("function")
	case p.cur.Kind == token.Var:
		p.nextToken()
		return p.parseVarDecl()
	default:
		return p.parseStatement()
	}
}

// recoverDeclaration stops a bailout at the declaration boundary and skips
// ahead to where parsing can resume. Named results of the interrupted
// declaration stay at their zero values.
func (p *Parser) recoverDeclaration() {
	if r := recover(); r != nil {
		if _, ok := r.(bailout); !ok {
			panic(r)
		}
		p.synchronize()
	}
}

// synchronize discards tokens until a likely declaration boundary.
func (p *Parser) synchronize() {
	p.nextToken()
	for !p.atEnd() {
		if p.prev.Kind == token.Semicolon {
			return
		}
		switch p.cur.Kind {
		case token.Class, token.Fun, token.Var, token.For, token.If,
			token.While, token.Print, token.Return:
			return
		}
		p.nextToken()
	}
}

func (p *Parser) parseClassDecl() ast.Stmt {
	name := p.expect(token.Ident, "expect class name")

	var super *ast.VariableExpr
	if p.match(token.Lt) {
		superTok := p.expect(token.Ident, "expect superclass name")
		super = &ast.VariableExpr{Name: superTok}
	}

	p.expect(token.LBrace, "expect '{' before class body")

	decl := &ast.ClassDecl{Name: name, Superclass: super}
	for p.cur.Kind != token.RBrace && !p.atEnd() {
		if p.match(token.Class) {
			decl.Statics = append(decl.Statics, p.parseFunDecl("method"))
		} else {
			decl.Methods = append(decl.Methods, p.parseFunDecl("method"))
		}
	}

	p.expect(token.RBrace, "expect '}' after class body")
	return decl
}

func (p *Parser) parseFunDecl(kind string) *ast.FunDecl {
	name := p.expect(token.Ident, "expect "+kind+" name")
	fn := p.parseFuncBody(kind, name.Pos)
	return &ast.FunDecl{Name: name, Func: fn}
}

// parseFuncBody parses `(params) { body }`. Loop depth does not carry into
// the body: a `break` there cannot reach the enclosing loop.
func (p *Parser) parseFuncBody(kind string, pos token.Position) *ast.FuncLiteral {
	p.expect(token.LParen, "expect '(' after "+kind+" name")

	var params []token.Token
	if p.cur.Kind != token.RParen {
		for {
			if len(params) >= maxArgs {
				p.errorf(p.cur, "can't have more than %d parameters", maxArgs)
			}
			params = append(params, p.expect(token.Ident, "expect parameter name"))
			if !p.match(token.Comma) {
				break
			}
		}
	}
	p.expect(token.RParen, "expect ')' after parameters")
	p.expect(token.LBrace, "expect '{' before "+kind+" body")

	savedDepth := p.loopDepth
	p.loopDepth = 0
	defer func() { p.loopDepth = savedDepth }()

	body := p.parseBlock()
	return &ast.FuncLiteral{FunPos: pos, Params: params, Body: body}
}

func (p *Parser) parseVarDecl() ast.Stmt {
	name := p.expect(token.Ident, "expect variable name")

	var init ast.Expr
	if p.match(token.Assign) {
		init = p.parseExpr()
	}
	p.expect(token.Semicolon, "expect ';' after variable declaration")

	return &ast.VarDeclStmt{Name: name, Initializer: init}
}

// ---------- Blocks & statements ----------

// parseBlock parses declarations up to the closing brace; the opening brace
// has already been consumed.
func (p *Parser) parseBlock() []ast.Stmt {
	var stmts []ast.Stmt
	for p.cur.Kind != token.RBrace && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(token.RBrace, "expect '}' after block")
	return stmts
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.cur.Kind {
	case token.For:
		return p.parseForStmt()
	case token.If:
		return p.parseIfStmt()
	case token.Print:
		return p.parsePrintStmt()
	case token.Return:
		return p.parseReturnStmt()
	case token.While:
		return p.parseWhileStmt()
	case token.Break:
		return p.parseBreakStmt()
	case token.LBrace:
		lbrace := p.cur
		p.nextToken()
		return &ast.BlockStmt{LBrace: lbrace.Pos, Stmts: p.parseBlock()}
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parsePrintStmt() ast.Stmt {
	kw := p.cur
	p.nextToken()
	value := p.parseExpr()
	p.expect(token.Semicolon, "expect ';' after value")
	return &ast.PrintStmt{Keyword: kw, Expression: value}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	kw := p.cur
	p.nextToken()

	var result ast.Expr
	if p.cur.Kind != token.Semicolon {
		result = p.parseExpr()
	}
	p.expect(token.Semicolon, "expect ';' after return value")

	return &ast.ReturnStmt{Keyword: kw, Result: result}
}

func (p *Parser) parseIfStmt() ast.Stmt {
	ifTok := p.cur
	p.nextToken()
	p.expect(token.LParen, "expect '(' after 'if'")
	cond := p.parseExpr()
	p.expect(token.RParen, "expect ')' after if condition")

	// the else binds to the nearest if because the inner parseIfStmt
	// consumes it first
	then := p.parseStatement()
	var elseStmt ast.Stmt
	if p.match(token.Else) {
		elseStmt = p.parseStatement()
	}

	return &ast.IfStmt{IfPos: ifTok.Pos, Cond: cond, Then: then, Else: elseStmt}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	whileTok := p.cur
	p.nextToken()
	p.expect(token.LParen, "expect '(' after 'while'")
	cond := p.parseExpr()
	p.expect(token.RParen, "expect ')' after condition")

	p.loopDepth++
	defer func() { p.loopDepth-- }()
	body := p.parseStatement()

	return &ast.WhileStmt{WhilePos: whileTok.Pos, Cond: cond, Body: body}
}

// parseForStmt desugars `for (init; cond; incr) body` into
// `{ init; while (cond) { body; incr; } }`.
func (p *Parser) parseForStmt() ast.Stmt {
	forTok := p.cur
	p.nextToken()
	p.expect(token.LParen, "expect '(' after 'for'")

	var init ast.Stmt
	switch {
	case p.match(token.Semicolon):
	case p.match(token.Var):
		init = p.parseVarDecl()
	default:
		init = p.parseExprStmt()
	}

	var cond ast.Expr
	if p.cur.Kind != token.Semicolon {
		cond = p.parseExpr()
	}
	p.expect(token.Semicolon, "expect ';' after loop condition")

	var incr ast.Expr
	if p.cur.Kind != token.RParen {
		incr = p.parseExpr()
	}
	p.expect(token.RParen, "expect ')' after for clauses")

	p.loopDepth++
	defer func() { p.loopDepth-- }()
	body := p.parseStatement()

	if incr != nil {
		body = &ast.BlockStmt{
			LBrace: body.Pos(),
			Stmts:  []ast.Stmt{body, &ast.ExprStmt{Expression: incr}},
		}
	}
	if cond == nil {
		cond = &ast.Literal{Value: true, LitPos: forTok.Pos}
	}
	var loop ast.Stmt = &ast.WhileStmt{WhilePos: forTok.Pos, Cond: cond, Body: body}
	if init != nil {
		loop = &ast.BlockStmt{LBrace: forTok.Pos, Stmts: []ast.Stmt{init, loop}}
	}
	return loop
}

func (p *Parser) parseBreakStmt() ast.Stmt {
	kw := p.cur
	p.nextToken()
	if p.loopDepth == 0 {
		p.errorf(kw, "must be inside a loop to use 'break'")
	}
	p.expect(token.Semicolon, "expect ';' after 'break'")
	return &ast.BreakStmt{Keyword: kw}
}

func (p *Parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpr()
	p.expect(token.Semicolon, "expect ';' after expression")
	return &ast.ExprStmt{Expression: expr}
}

// ---------- Expressions (with priorities) ----------

func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expr {
	expr := p.parseOr()

	if p.cur.Kind == token.Assign {
		equals := p.cur
		p.nextToken()
		value := p.parseAssignment()

		switch target := expr.(type) {
		case *ast.VariableExpr:
			return &ast.AssignExpr{Name: target.Name, Value: value}
		case *ast.GetExpr:
			return &ast.SetExpr{Object: target.Object, Name: target.Name, Value: value}
		}
		p.errorf(equals, "invalid assignment target")
	}
	return expr
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.cur.Kind == token.Or {
		opTok := p.cur
		p.nextToken()
		right := p.parseAnd()
		left = &ast.LogicalExpr{Op: opTok, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.cur.Kind == token.And {
		opTok := p.cur
		p.nextToken()
		right := p.parseEquality()
		left = &ast.LogicalExpr{Op: opTok, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for p.cur.Kind == token.Eq || p.cur.Kind == token.NotEq {
		opTok := p.cur
		p.nextToken()
		right := p.parseComparison()
		left = &ast.BinaryExpr{Op: opTok, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expr {
	left := p.parseTerm()
	for p.cur.Kind == token.Lt || p.cur.Kind == token.LtEq ||
		p.cur.Kind == token.Gt || p.cur.Kind == token.GtEq {
		opTok := p.cur
		p.nextToken()
		right := p.parseTerm()
		left = &ast.BinaryExpr{Op: opTok, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseTerm() ast.Expr {
	left := p.parseFactor()
	for p.cur.Kind == token.Plus || p.cur.Kind == token.Minus {
		opTok := p.cur
		p.nextToken()
		right := p.parseFactor()
		left = &ast.BinaryExpr{Op: opTok, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseFactor() ast.Expr {
	left := p.parseUnary()
	for p.cur.Kind == token.Star || p.cur.Kind == token.Slash {
		opTok := p.cur
		p.nextToken()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Op: opTok, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.cur.Kind == token.Bang || p.cur.Kind == token.Minus {
		opTok := p.cur
		p.nextToken()
		x := p.parseUnary()
		return &ast.UnaryExpr{Op: opTok, X: x}
	}
	if p.cur.Kind.IsBinaryOperator() {
		p.fail(p.cur, "binary operator '%s' without left-hand operand", p.cur.Lexeme)
	}
	return p.parseCall()
}

func (p *Parser) parseCall() ast.Expr {
	expr := p.parsePrimary()

	for {
		switch p.cur.Kind {
		case token.LParen:
			p.nextToken()
			expr = p.finishCall(expr)
		case token.Dot:
			p.nextToken()
			name := p.expect(token.Ident, "expect property name after '.'")
			expr = &ast.GetExpr{Object: expr, Name: name}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if p.cur.Kind != token.RParen {
		for {
			if len(args) >= maxArgs {
				p.errorf(p.cur, "can't have more than %d arguments", maxArgs)
			}
			args = append(args, p.parseExpr())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.expect(token.RParen, "expect ')' after arguments")
	return &ast.CallExpr{Callee: callee, Paren: paren, Args: args}
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.cur
	switch tok.Kind {
	case token.False, token.True:
		p.nextToken()
		return &ast.Literal{Value: tok.Kind == token.True, LitPos: tok.Pos}
	case token.Nil:
		p.nextToken()
		return &ast.Literal{Value: nil, LitPos: tok.Pos}
	case token.Number, token.String:
		p.nextToken()
		return &ast.Literal{Value: tok.Literal, LitPos: tok.Pos}
	case token.Super:
		p.nextToken()
		p.expect(token.Dot, "expect '.' after 'super'")
		method := p.expect(token.Ident, "expect superclass method name")
		return &ast.SuperExpr{Keyword: tok, Method: method}
	case token.This:
		p.nextToken()
		return &ast.ThisExpr{Keyword: tok}
	case token.Ident:
		p.nextToken()
		return &ast.VariableExpr{Name: tok}
	case token.Fun:
		p.nextToken()
		return p.parseFuncBody("function", tok.Pos)
	case token.LParen:
		p.nextToken()
		inner := p.parseExpr()
		p.expect(token.RParen, "expect ')' after expression")
		return &ast.GroupingExpr{LParen: tok.Pos, Inner: inner}
	}
	p.fail(tok, "expect expression")
	return nil
}
