package resolver

import (
	"fmt"

	"sl/internal/ast"
	"sl/internal/token"
)

// Locals maps each resolved Variable, Assign, This or Super node to the
// number of scopes between the reference and its declaration, 0 being the
// innermost. Nodes that are absent refer to globals.
type Locals map[ast.Expr]int

// Error is a static scoping error.
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

type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnMethod
	fnInitializer
	fnStatic
)

type classKind int

const (
	classNone classKind = iota
	classPlain
	classSub
)

// Resolver walks the tree once, mirroring the environments the interpreter
// will create, and records how far out each local reference lives.
type Resolver struct {
	// name -> defined; a declared-but-undefined name is false
	scopes []map[string]bool
	locals Locals

	fn    functionKind
	class classKind

	errors []error
}

// NewResolver creates a new resolver.
func NewResolver() *Resolver {
	return &Resolver{
		locals: make(Locals),
	}
}

// Resolve analyzes a program and returns its distance map.
func (r *Resolver) Resolve(stmts []ast.Stmt) (Locals, []error) {
	r.resolveStmts(stmts)
	return r.locals, r.errors
}

// ResolveInteractive resolves REPL input, including its trailing expression.
func (r *Resolver) ResolveInteractive(in *ast.Interactive) (Locals, []error) {
	r.resolveStmts(in.Stmts)
	if in.Expr != nil {
		r.resolveExpr(in.Expr)
	}
	return r.locals, r.errors
}

func (r *Resolver) errorf(tok token.Token, format string, args ...any) {
	r.errors = append(r.errors, &Error{Tok: tok, Msg: fmt.Sprintf(format, args...)})
}

// ---------- Scopes ----------

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare and define are no-ops at global scope: globals may be redefined.
func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name.Lexeme]; exists {
		r.errorf(name, "already a variable with this name in this scope")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

// bind puts an implicit name such as "this" in the innermost scope.
func (r *Resolver) bind(name string) {
	r.scopes[len(r.scopes)-1][name] = true
}

func (r *Resolver) resolveLocal(expr ast.Expr, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
	// global
}

// ---------- Statements ----------

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch s := s.(type) {
	case *ast.ExprStmt:
		r.resolveExpr(s.Expression)

	case *ast.PrintStmt:
		r.resolveExpr(s.Expression)

	case *ast.VarDeclStmt:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpr(s.Initializer)
		}
		r.define(s.Name)

	case *ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(s.Stmts)
		r.endScope()

	case *ast.IfStmt:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}

	case *ast.WhileStmt:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Body)

	case *ast.BreakStmt:
		// placement is checked by the parser

	case *ast.FunDecl:
		// defined before the body so the function can recurse
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s.Func, fnFunction)

	case *ast.ReturnStmt:
		if r.fn == fnNone {
			r.errorf(s.Keyword, "can't return from top-level code")
		}
		if s.Result != nil {
			if r.fn == fnInitializer {
				r.errorf(s.Keyword, "can't return a value from an initializer")
			}
			r.resolveExpr(s.Result)
		}

	case *ast.ClassDecl:
		r.resolveClass(s)
	}
}

// resolveClass mirrors the runtime layout: an optional scope holding
// "super", then a scope holding "this", then each method's own scope.
func (r *Resolver) resolveClass(c *ast.ClassDecl) {
	enclosingClass := r.class
	r.class = classPlain
	defer func() { r.class = enclosingClass }()

	r.declare(c.Name)
	r.define(c.Name)

	if c.Superclass != nil {
		if c.Superclass.Name.Lexeme == c.Name.Lexeme {
			r.errorf(c.Superclass.Name, "a class can't inherit from itself")
		}
		r.class = classSub
		r.resolveExpr(c.Superclass)

		r.beginScope()
		r.bind("super")
		defer r.endScope()
	}

	r.beginScope()
	r.bind("this")
	for _, m := range c.Methods {
		kind := fnMethod
		if m.Name.Lexeme == "init" {
			kind = fnInitializer
		}
		r.resolveFunction(m.Func, kind)
	}
	for _, m := range c.Statics {
		r.resolveFunction(m.Func, fnStatic)
	}
	r.endScope()
}

func (r *Resolver) resolveFunction(fn *ast.FuncLiteral, kind functionKind) {
	enclosing := r.fn
	r.fn = kind
	defer func() { r.fn = enclosing }()

	r.beginScope()
	for _, p := range fn.Params {
		r.declare(p)
		r.define(p)
	}
	r.resolveStmts(fn.Body)
	r.endScope()
}

// ---------- Expressions ----------

func (r *Resolver) resolveExpr(e ast.Expr) {
	switch e := e.(type) {
	case *ast.Literal:

	case *ast.GroupingExpr:
		r.resolveExpr(e.Inner)

	case *ast.UnaryExpr:
		r.resolveExpr(e.X)

	case *ast.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.VariableExpr:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !defined {
				r.errorf(e.Name, "can't read local variable in its own initializer")
			}
		}
		r.resolveLocal(e, e.Name.Lexeme)

	case *ast.AssignExpr:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name.Lexeme)

	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, a := range e.Args {
			r.resolveExpr(a)
		}

	case *ast.GetExpr:
		r.resolveExpr(e.Object)

	case *ast.SetExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)

	case *ast.ThisExpr:
		if r.class == classNone {
			r.errorf(e.Keyword, "can't use 'this' outside of a class")
			return
		}
		r.resolveLocal(e, "this")

	case *ast.SuperExpr:
		switch r.class {
		case classNone:
			r.errorf(e.Keyword, "can't use 'super' outside of a class")
			return
		case classPlain:
			r.errorf(e.Keyword, "can't use 'super' in a class with no superclass")
			return
		}
		r.resolveLocal(e, "super")

	case *ast.FuncLiteral:
		r.resolveFunction(e, fnFunction)
	}
}
