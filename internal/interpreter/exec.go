package interpreter

import (
	"sl/internal/ast"
	"sl/internal/runtime"
)

var resultNone = runtime.ExecResult{Signal: runtime.SigNone}

func (in *Interpreter) execute(stmt ast.Stmt) (runtime.ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := in.evaluate(s.Expression)
		return resultNone, err

	case *ast.PrintStmt:
		v, err := in.evaluate(s.Expression)
		if err != nil {
			return resultNone, err
		}
		if err := in.host.Println(v.String()); err != nil {
			return resultNone, runtime.NewError(s.Keyword, "write output: %v", err)
		}
		return resultNone, nil

	case *ast.VarDeclStmt:
		v := runtime.Uninitialized()
		if s.Initializer != nil {
			var err error
			if v, err = in.evaluate(s.Initializer); err != nil {
				return resultNone, err
			}
		}
		in.env.Define(s.Name.Lexeme, v)
		return resultNone, nil

	case *ast.BlockStmt:
		return in.ExecuteBlock(s.Stmts, runtime.NewEnclosed(in.env))

	case *ast.IfStmt:
		cond, err := in.evaluate(s.Cond)
		if err != nil {
			return resultNone, err
		}
		if cond.Truthy() {
			return in.execute(s.Then)
		}
		if s.Else != nil {
			return in.execute(s.Else)
		}
		return resultNone, nil

	case *ast.WhileStmt:
		return in.execWhile(s)

	case *ast.BreakStmt:
		return runtime.ExecResult{Signal: runtime.SigBreak}, nil

	case *ast.FunDecl:
		fn := runtime.NewFunction(s.Name.Lexeme, s.Func, in.env, false)
		in.env.Define(s.Name.Lexeme, runtime.CallableValue(fn))
		return resultNone, nil

	case *ast.ReturnStmt:
		v := runtime.Nil()
		if s.Result != nil {
			var err error
			if v, err = in.evaluate(s.Result); err != nil {
				return resultNone, err
			}
		}
		return runtime.ExecResult{Signal: runtime.SigReturn, Value: v}, nil

	case *ast.ClassDecl:
		return resultNone, in.execClass(s)
	}
	return resultNone, nil
}

// execWhile consumes only its own break; a return keeps propagating.
func (in *Interpreter) execWhile(s *ast.WhileStmt) (runtime.ExecResult, error) {
	for {
		cond, err := in.evaluate(s.Cond)
		if err != nil {
			return resultNone, err
		}
		if !cond.Truthy() {
			return resultNone, nil
		}

		res, err := in.execute(s.Body)
		if err != nil {
			return resultNone, err
		}
		switch res.Signal {
		case runtime.SigBreak:
			return resultNone, nil
		case runtime.SigReturn:
			return res, nil
		}
	}
}

// execClass binds the name first so methods can refer to their class, then
// builds the class over an optional frame holding "super".
func (in *Interpreter) execClass(s *ast.ClassDecl) error {
	var super *runtime.Class
	if s.Superclass != nil {
		v, err := in.evaluate(s.Superclass)
		if err != nil {
			return err
		}
		cls, ok := v.Callable.(*runtime.Class)
		if v.Kind != runtime.KindCallable || !ok {
			return runtime.NewError(s.Superclass.Name, "superclass must be a class")
		}
		super = cls
	}

	in.env.Define(s.Name.Lexeme, runtime.Nil())

	closure := in.env
	if super != nil {
		closure = runtime.NewEnclosed(in.env)
		closure.Define("super", runtime.CallableValue(super))
	}

	methods := make(map[string]*runtime.Function, len(s.Methods))
	for _, m := range s.Methods {
		isInit := m.Name.Lexeme == "init"
		methods[m.Name.Lexeme] = runtime.NewFunction(m.Name.Lexeme, m.Func, closure, isInit)
	}
	statics := make(map[string]*runtime.Function, len(s.Statics))
	for _, m := range s.Statics {
		statics[m.Name.Lexeme] = runtime.NewFunction(m.Name.Lexeme, m.Func, closure, false)
	}

	cls := runtime.NewClass(s.Name.Lexeme, super, methods, statics)
	return in.env.Assign(s.Name, runtime.CallableValue(cls))
}
