package interpreter

import (
	"sl/internal/runtime"
	"sl/internal/token"
)

func unaryOp(op token.Token, x runtime.Value) (runtime.Value, error) {
	switch op.Kind {
	case token.Bang:
		return runtime.Bool(!x.Truthy()), nil
	case token.Minus:
		if x.Kind != runtime.KindNumber {
			return runtime.Nil(), runtime.NewError(op, "operand of '-' must be a number, got %s", x.Kind)
		}
		return runtime.Number(-x.Num), nil
	}
	return runtime.Nil(), runtime.NewError(op, "unknown unary operator '%s'", op.Lexeme)
}

func binaryOp(op token.Token, left, right runtime.Value) (runtime.Value, error) {
	switch op.Kind {
	case token.Plus:
		switch {
		case left.Kind == runtime.KindNumber && right.Kind == runtime.KindNumber:
			return runtime.Number(left.Num + right.Num), nil
		case left.Kind == runtime.KindString && right.Kind == runtime.KindString:
			return runtime.Str(left.Str + right.Str), nil
		}
		return runtime.Nil(), runtime.NewError(op,
			"operands of '+' must be two numbers or two strings, got %s and %s", left.Kind, right.Kind)

	case token.Eq, token.NotEq:
		if left.Kind != right.Kind {
			return runtime.Nil(), runtime.NewError(op,
				"cannot compare %s and %s with '%s'", left.Kind, right.Kind, op.Lexeme)
		}
		eq := left.Equal(right)
		if op.Kind == token.NotEq {
			eq = !eq
		}
		return runtime.Bool(eq), nil
	}

	if left.Kind != runtime.KindNumber || right.Kind != runtime.KindNumber {
		return runtime.Nil(), runtime.NewError(op,
			"operands of '%s' must be numbers, got %s and %s", op.Lexeme, left.Kind, right.Kind)
	}
	a, b := left.Num, right.Num

	switch op.Kind {
	case token.Minus:
		return runtime.Number(a - b), nil
	case token.Star:
		return runtime.Number(a * b), nil
	case token.Slash:
		if b == 0 {
			return runtime.Nil(), runtime.NewError(op, "division by zero")
		}
		return runtime.Number(a / b), nil
	case token.Lt:
		return runtime.Bool(a < b), nil
	case token.LtEq:
		return runtime.Bool(a <= b), nil
	case token.Gt:
		return runtime.Bool(a > b), nil
	case token.GtEq:
		return runtime.Bool(a >= b), nil
	}
	return runtime.Nil(), runtime.NewError(op, "unknown binary operator '%s'", op.Lexeme)
}
