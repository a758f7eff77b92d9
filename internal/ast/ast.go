package ast

import "sl/internal/token"

// Basic interfaces

type Node interface {
	Pos() token.Position
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

// Interactive is the result of parsing REPL input: leading statements and
// an optional trailing bare expression whose value is reported.
type Interactive struct {
	Stmts []Stmt
	Expr  Expr // nil when the input ends with a terminated statement
}

// ---------- Statements ----------

type ExprStmt struct {
	Expression Expr
}

func (s *ExprStmt) Pos() token.Position { return s.Expression.Pos() }
func (s *ExprStmt) stmtNode()           {}

type PrintStmt struct {
	Keyword    token.Token
	Expression Expr
}

func (s *PrintStmt) Pos() token.Position { return s.Keyword.Pos }
func (s *PrintStmt) stmtNode()           {}

type VarDeclStmt struct {
	Name        token.Token
	Initializer Expr // nil for `var a;`
}

func (s *VarDeclStmt) Pos() token.Position { return s.Name.Pos }
func (s *VarDeclStmt) stmtNode()           {}

type BlockStmt struct {
	LBrace token.Position
	Stmts  []Stmt
}

func (b *BlockStmt) Pos() token.Position { return b.LBrace }
func (b *BlockStmt) stmtNode()           {}

type IfStmt struct {
	IfPos token.Position
	Cond  Expr
	Then  Stmt
	Else  Stmt // may be nil
}

func (s *IfStmt) Pos() token.Position { return s.IfPos }
func (s *IfStmt) stmtNode()           {}

// WhileStmt is also the desugared form of `for`.
type WhileStmt struct {
	WhilePos token.Position
	Cond     Expr
	Body     Stmt
}

func (s *WhileStmt) Pos() token.Position { return s.WhilePos }
func (s *WhileStmt) stmtNode()           {}

type BreakStmt struct {
	Keyword token.Token
}

func (s *BreakStmt) Pos() token.Position { return s.Keyword.Pos }
func (s *BreakStmt) stmtNode()           {}

type FunDecl struct {
	Name token.Token
	Func *FuncLiteral
}

func (f *FunDecl) Pos() token.Position { return f.Name.Pos }
func (f *FunDecl) stmtNode()           {}

type ReturnStmt struct {
	Keyword token.Token
	Result  Expr // may be nil for `return;`
}

func (s *ReturnStmt) Pos() token.Position { return s.Keyword.Pos }
func (s *ReturnStmt) stmtNode()           {}

type ClassDecl struct {
	Name       token.Token
	Superclass *VariableExpr // nil without `< Super`
	Methods    []*FunDecl
	Statics    []*FunDecl // methods declared with a leading `class`
}

func (c *ClassDecl) Pos() token.Position { return c.Name.Pos }
func (c *ClassDecl) stmtNode()           {}

// ---------- Expressions ----------

// Literal holds nil, bool, float64 or string.
type Literal struct {
	Value  any
	LitPos token.Position
}

func (e *Literal) Pos() token.Position { return e.LitPos }
func (e *Literal) exprNode()           {}

type GroupingExpr struct {
	LParen token.Position
	Inner  Expr
}

func (e *GroupingExpr) Pos() token.Position { return e.LParen }
func (e *GroupingExpr) exprNode()           {}

type UnaryExpr struct {
	Op token.Token
	X  Expr
}

func (e *UnaryExpr) Pos() token.Position { return e.Op.Pos }
func (e *UnaryExpr) exprNode()           {}

type BinaryExpr struct {
	Op    token.Token
	Left  Expr
	Right Expr
}

func (e *BinaryExpr) Pos() token.Position { return e.Op.Pos }
func (e *BinaryExpr) exprNode()           {}

// LogicalExpr is `and`/`or`; unlike BinaryExpr the right side is evaluated
// only when needed.
type LogicalExpr struct {
	Op    token.Token
	Left  Expr
	Right Expr
}

func (e *LogicalExpr) Pos() token.Position { return e.Op.Pos }
func (e *LogicalExpr) exprNode()           {}

type VariableExpr struct {
	Name token.Token
}

func (e *VariableExpr) Pos() token.Position { return e.Name.Pos }
func (e *VariableExpr) exprNode()           {}

type AssignExpr struct {
	Name  token.Token
	Value Expr
}

func (e *AssignExpr) Pos() token.Position { return e.Name.Pos }
func (e *AssignExpr) exprNode()           {}

type CallExpr struct {
	Callee Expr
	Paren  token.Token // closing paren, used for error positions
	Args   []Expr
}

func (e *CallExpr) Pos() token.Position { return e.Callee.Pos() }
func (e *CallExpr) exprNode()           {}

type GetExpr struct {
	Object Expr
	Name   token.Token
}

func (e *GetExpr) Pos() token.Position { return e.Name.Pos }
func (e *GetExpr) exprNode()           {}

type SetExpr struct {
	Object Expr
	Name   token.Token
	Value  Expr
}

func (e *SetExpr) Pos() token.Position { return e.Name.Pos }
func (e *SetExpr) exprNode()           {}

type ThisExpr struct {
	Keyword token.Token
}

func (e *ThisExpr) Pos() token.Position { return e.Keyword.Pos }
func (e *ThisExpr) exprNode()           {}

type SuperExpr struct {
	Keyword token.Token
	Method  token.Token
}

func (e *SuperExpr) Pos() token.Position { return e.Keyword.Pos }
func (e *SuperExpr) exprNode()           {}

// FuncLiteral is an anonymous function; FunDecl wraps one with a name.
type FuncLiteral struct {
	FunPos token.Position
	Params []token.Token
	Body   []Stmt
}

func (e *FuncLiteral) Pos() token.Position { return e.FunPos }
func (e *FuncLiteral) exprNode()           {}
