package runtime

import (
	"sl/internal/ast"
)

// ExecSignal is the control-flow outcome of executing a statement.
type ExecSignal int

const (
	SigNone   ExecSignal = iota
	SigReturn            // return from function
	SigBreak             // break from loop
)

// ExecResult carries a control flow signal and, for SigReturn, its value.
type ExecResult struct {
	Signal ExecSignal
	Value  Value
}

// Executor runs statement lists in a given frame. The interpreter
// implements it.
type Executor interface {
	ExecuteBlock(stmts []ast.Stmt, env *Environment) (ExecResult, error)
}

// Callable is anything that can appear before an argument list.
type Callable interface {
	Arity() int
	Call(ex Executor, args []Value) (Value, error)
	String() string
}

// Function is a user-defined function or method closed over the frame
// active at its declaration.
type Function struct {
	Name    string // empty for function literals
	Decl    *ast.FuncLiteral
	Closure *Environment
	IsInit  bool
}

func NewFunction(name string, decl *ast.FuncLiteral, closure *Environment, isInit bool) *Function {
	return &Function{Name: name, Decl: decl, Closure: closure, IsInit: isInit}
}

func (f *Function) Arity() int {
	return len(f.Decl.Params)
}

func (f *Function) String() string {
	if f.Name == "" {
		return "<fn>"
	}
	return "<fn " + f.Name + ">"
}

// Bind returns a copy of f whose closure has "this" bound to receiver.
func (f *Function) Bind(receiver Value) *Function {
	env := NewEnclosed(f.Closure)
	env.Define("this", receiver)
	return NewFunction(f.Name, f.Decl, env, f.IsInit)
}

func (f *Function) Call(ex Executor, args []Value) (Value, error) {
	env := NewEnclosed(f.Closure)
	for i, p := range f.Decl.Params {
		env.Define(p.Lexeme, args[i])
	}

	res, err := ex.ExecuteBlock(f.Decl.Body, env)
	if err != nil {
		return Nil(), err
	}

	// an initializer yields its instance however it exits
	if f.IsInit {
		this, _ := f.Closure.GetAt(0, "this")
		return this, nil
	}
	if res.Signal == SigReturn {
		return res.Value, nil
	}
	return Nil(), nil
}

// NativeFunc implements a host-provided function. Errors it returns are
// reported at the call site.
type NativeFunc func(args []Value) (Value, error)

type Native struct {
	Name   string
	Params int
	Fn     NativeFunc
}

func (n *Native) Arity() int {
	return n.Params
}

func (n *Native) String() string {
	return "<native fn " + n.Name + ">"
}

func (n *Native) Call(_ Executor, args []Value) (Value, error) {
	return n.Fn(args)
}
