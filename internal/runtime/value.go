package runtime

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the type of a value at runtime.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindCallable
	KindInstance

	// KindUninitialized marks a variable declared without an initializer.
	// It never escapes a variable read.
	KindUninitialized
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindCallable:
		return "callable"
	case KindInstance:
		return "instance"
	case KindUninitialized:
		return "uninitialized"
	default:
		return "invalid"
	}
}

// Value is a universal value for the interpreter.
type Value struct {
	Kind     Kind
	Bool     bool
	Num      float64
	Str      string
	Callable Callable  // for KindCallable: *Function, *Class or *Native
	Instance *Instance // for KindInstance
}

func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return FormatNumber(v.Num)
	case KindString:
		return v.Str
	case KindCallable:
		return v.Callable.String()
	case KindInstance:
		return v.Instance.Class.Name + "_instance"
	case KindUninitialized:
		return "<uninitialized>"
	default:
		return "<invalid>"
	}
}

// FormatNumber renders a number as a float that always shows a fractional
// part or exponent: 4 prints as "4.0", 2.5 as "2.5", 1e21 as "1e+21".
func FormatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Truthy reports SL truthiness: nil and false are falsy, all else is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNil:
		return false
	case KindBool:
		return v.Bool
	default:
		return true
	}
}

// Equal compares two values of the same kind. Callables and instances
// compare by identity.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNil:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindNumber:
		return v.Num == o.Num
	case KindString:
		return v.Str == o.Str
	case KindCallable:
		return v.Callable == o.Callable
	case KindInstance:
		return v.Instance == o.Instance
	default:
		return false
	}
}

// Helpers

func Nil() Value {
	return Value{Kind: KindNil}
}

func Uninitialized() Value {
	return Value{Kind: KindUninitialized}
}

func Bool(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

func Str(s string) Value {
	return Value{Kind: KindString, Str: s}
}

func CallableValue(c Callable) Value {
	return Value{Kind: KindCallable, Callable: c}
}

func InstanceValue(inst *Instance) Value {
	return Value{Kind: KindInstance, Instance: inst}
}

// FromLiteral converts a parsed literal payload (nil, bool, float64 or
// string) into a Value.
func FromLiteral(lit any) Value {
	switch lit := lit.(type) {
	case bool:
		return Bool(lit)
	case float64:
		return Number(lit)
	case string:
		return Str(lit)
	default:
		return Nil()
	}
}
