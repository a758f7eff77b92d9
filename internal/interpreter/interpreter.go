package interpreter

import (
	"errors"

	"sl/internal/ast"
	"sl/internal/resolver"
	"sl/internal/runtime"
	"sl/internal/runtime/builtins"
	"sl/internal/token"
)

// maxCallDepth is the deepest call nesting before "stack overflow".
const maxCallDepth = 4096

// Host is what the interpreter needs from its embedder.
type Host interface {
	Println(s string) error
	Now() float64
}

// Interpreter walks the AST and executes it.
type Interpreter struct {
	host    Host
	globals *runtime.Environment
	env     *runtime.Environment
	locals  resolver.Locals
	depth   int
}

// New creates an interpreter whose global environment holds the builtins.
func New(host Host) *Interpreter {
	globals := runtime.NewEnvironment()
	builtins.Install(globals, host)
	return &Interpreter{
		host:    host,
		globals: globals,
		env:     globals,
		locals:  make(resolver.Locals),
	}
}

// Globals returns the persistent global environment.
func (in *Interpreter) Globals() *runtime.Environment {
	return in.globals
}

// Resolve merges a distance map produced by the resolver. Maps from earlier
// runs stay valid because their keys are distinct nodes.
func (in *Interpreter) Resolve(locals resolver.Locals) {
	for expr, depth := range locals {
		in.locals[expr] = depth
	}
}

// Interpret executes a resolved program. It stops at the first runtime
// error, which is always a *runtime.RuntimeError.
func (in *Interpreter) Interpret(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if _, err := in.execute(s); err != nil {
			return err
		}
	}
	return nil
}

// Evaluate evaluates a single resolved expression in the current scope.
func (in *Interpreter) Evaluate(e ast.Expr) (runtime.Value, error) {
	return in.evaluate(e)
}

// ExecuteBlock runs stmts in env and restores the previous environment on
// every exit path. It implements runtime.Executor.
func (in *Interpreter) ExecuteBlock(stmts []ast.Stmt, env *runtime.Environment) (runtime.ExecResult, error) {
	prev := in.env
	in.env = env
	defer func() { in.env = prev }()

	for _, s := range stmts {
		res, err := in.execute(s)
		if err != nil {
			return res, err
		}
		if res.Signal != runtime.SigNone {
			return res, nil
		}
	}
	return runtime.ExecResult{}, nil
}

// call invokes fn with arity and depth checks. Errors from natives gain the
// call site position.
func (in *Interpreter) call(paren token.Token, fn runtime.Callable, args []runtime.Value) (runtime.Value, error) {
	if len(args) != fn.Arity() {
		return runtime.Nil(), runtime.NewError(paren, "expected %d arguments but got %d", fn.Arity(), len(args))
	}
	if in.depth >= maxCallDepth {
		return runtime.Nil(), runtime.NewError(paren, "stack overflow")
	}
	in.depth++
	defer func() { in.depth-- }()

	v, err := fn.Call(in, args)
	if err != nil {
		var rerr *runtime.RuntimeError
		if errors.As(err, &rerr) {
			return runtime.Nil(), err
		}
		return runtime.Nil(), runtime.NewError(paren, "%s", err.Error())
	}
	return v, nil
}
