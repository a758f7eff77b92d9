package interpreter

import (
	"sl/internal/ast"
	"sl/internal/runtime"
	"sl/internal/token"
)

func (in *Interpreter) evaluate(expr ast.Expr) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return runtime.FromLiteral(e.Value), nil

	case *ast.GroupingExpr:
		return in.evaluate(e.Inner)

	case *ast.UnaryExpr:
		x, err := in.evaluate(e.X)
		if err != nil {
			return runtime.Nil(), err
		}
		return unaryOp(e.Op, x)

	case *ast.BinaryExpr:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return runtime.Nil(), err
		}
		right, err := in.evaluate(e.Right)
		if err != nil {
			return runtime.Nil(), err
		}
		return binaryOp(e.Op, left, right)

	case *ast.LogicalExpr:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return runtime.Nil(), err
		}
		if e.Op.Kind == token.Or {
			if left.Truthy() {
				return left, nil
			}
		} else if !left.Truthy() {
			return left, nil
		}
		return in.evaluate(e.Right)

	case *ast.VariableExpr:
		return in.lookUpVariable(e.Name, e)

	case *ast.AssignExpr:
		v, err := in.evaluate(e.Value)
		if err != nil {
			return runtime.Nil(), err
		}
		if distance, ok := in.locals[e]; ok {
			in.env.AssignAt(distance, e.Name.Lexeme, v)
			return v, nil
		}
		if err := in.globals.Assign(e.Name, v); err != nil {
			return runtime.Nil(), err
		}
		return v, nil

	case *ast.CallExpr:
		return in.evalCall(e)

	case *ast.GetExpr:
		obj, err := in.evaluate(e.Object)
		if err != nil {
			return runtime.Nil(), err
		}
		if obj.Kind == runtime.KindInstance {
			return obj.Instance.Get(e.Name)
		}
		if cls, ok := obj.Callable.(*runtime.Class); ok {
			return cls.Get(e.Name)
		}
		return runtime.Nil(), runtime.NewError(e.Name, "only instances have properties")

	case *ast.SetExpr:
		obj, err := in.evaluate(e.Object)
		if err != nil {
			return runtime.Nil(), err
		}
		var target interface {
			Set(name token.Token, v runtime.Value)
		}
		if obj.Kind == runtime.KindInstance {
			target = obj.Instance
		} else if cls, ok := obj.Callable.(*runtime.Class); ok {
			target = cls
		} else {
			return runtime.Nil(), runtime.NewError(e.Name, "only instances have fields")
		}
		v, err := in.evaluate(e.Value)
		if err != nil {
			return runtime.Nil(), err
		}
		target.Set(e.Name, v)
		return v, nil

	case *ast.ThisExpr:
		return in.lookUpVariable(e.Keyword, e)

	case *ast.SuperExpr:
		return in.evalSuper(e)

	case *ast.FuncLiteral:
		return runtime.CallableValue(runtime.NewFunction("", e, in.env, false)), nil
	}
	return runtime.Nil(), nil
}

// lookUpVariable reads a resolved local from its exact frame, or a global.
func (in *Interpreter) lookUpVariable(name token.Token, expr ast.Expr) (runtime.Value, error) {
	var v runtime.Value
	if distance, ok := in.locals[expr]; ok {
		var found bool
		if v, found = in.env.GetAt(distance, name.Lexeme); !found {
			return runtime.Nil(), runtime.NewError(name, "undefined variable '%s'", name.Lexeme)
		}
	} else {
		var err error
		if v, err = in.globals.Get(name); err != nil {
			return runtime.Nil(), err
		}
	}
	if v.Kind == runtime.KindUninitialized {
		return runtime.Nil(), runtime.NewError(name, "variable '%s' used before being initialized", name.Lexeme)
	}
	return v, nil
}

func (in *Interpreter) evalCall(e *ast.CallExpr) (runtime.Value, error) {
	callee, err := in.evaluate(e.Callee)
	if err != nil {
		return runtime.Nil(), err
	}

	args := make([]runtime.Value, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := in.evaluate(a)
		if err != nil {
			return runtime.Nil(), err
		}
		args = append(args, v)
	}

	if callee.Kind != runtime.KindCallable {
		return runtime.Nil(), runtime.NewError(e.Paren, "can only call functions and classes")
	}
	return in.call(e.Paren, callee.Callable, args)
}

// evalSuper finds the method in the superclass and binds it to the current
// receiver. Inside a static method the receiver is the class, so the lookup
// uses the static tables.
func (in *Interpreter) evalSuper(e *ast.SuperExpr) (runtime.Value, error) {
	distance := in.locals[e]
	superV, _ := in.env.GetAt(distance, "super")
	super := superV.Callable.(*runtime.Class)
	// "this" always lives one frame inside "super"
	receiver, _ := in.env.GetAt(distance-1, "this")

	var method *runtime.Function
	if receiver.Kind == runtime.KindInstance {
		method = super.FindMethod(e.Method.Lexeme)
	} else {
		method = super.FindStatic(e.Method.Lexeme)
	}
	if method == nil {
		return runtime.Nil(), runtime.NewError(e.Method, "undefined property '%s'", e.Method.Lexeme)
	}
	return runtime.CallableValue(method.Bind(receiver)), nil
}
