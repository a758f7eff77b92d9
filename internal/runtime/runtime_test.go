package runtime_test

import (
	"bytes"
	"errors"
	"testing"

	"sl/internal/runtime"
	"sl/internal/runtime/builtins"
	"sl/internal/token"
)

func ident(name string) token.Token {
	return token.Token{Kind: token.Ident, Lexeme: name, Pos: token.Position{Line: 3, Column: 5}}
}

func TestEnvironmentChain(t *testing.T) {
	global := runtime.NewEnvironment()
	global.Define("a", runtime.Number(1))

	inner := runtime.NewEnclosed(runtime.NewEnclosed(global))
	inner.Define("b", runtime.Str("x"))

	v, err := inner.Get(ident("a"))
	if err != nil || v.Num != 1 {
		t.Fatalf("expected a=1 through chain, got %v (err=%v)", v, err)
	}

	if err := inner.Assign(ident("a"), runtime.Number(2)); err != nil {
		t.Fatalf("unexpected assign error: %v", err)
	}
	if v, _ := global.Get(ident("a")); v.Num != 2 {
		t.Fatalf("expected assignment to reach the global frame, got %v", v)
	}

	if v, ok := inner.GetAt(2, "a"); !ok || v.Num != 2 {
		t.Fatalf("expected GetAt(2) to read the global frame, got %v (ok=%v)", v, ok)
	}
	if _, ok := inner.GetAt(1, "a"); ok {
		t.Fatalf("GetAt must not search past the requested frame")
	}

	inner.AssignAt(0, "b", runtime.Str("y"))
	if v, _ := inner.GetAt(0, "b"); v.Str != "y" {
		t.Fatalf("expected b=y, got %v", v)
	}
	if inner.Ancestor(2) != global {
		t.Fatalf("expected Ancestor(2) to be the global frame")
	}
}

func TestUndefinedVariable(t *testing.T) {
	env := runtime.NewEnvironment()

	_, err := env.Get(ident("missing"))
	var rerr *runtime.RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RuntimeError, got %T", err)
	}
	if got := err.Error(); got != "3:5: runtime error: undefined variable 'missing'" {
		t.Fatalf("unexpected message: %s", got)
	}

	if err := env.Assign(ident("missing"), runtime.Nil()); err == nil {
		t.Fatalf("expected error assigning undefined variable")
	}
}

func TestRedefinitionIsAllowed(t *testing.T) {
	env := runtime.NewEnvironment()
	env.Define("a", runtime.Number(1))
	env.Define("a", runtime.Str("two"))
	if v, _ := env.Get(ident("a")); v.Kind != runtime.KindString || v.Str != "two" {
		t.Fatalf("expected redefinition to replace the binding, got %v", v)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4, "4.0"},
		{2.5, "2.5"},
		{-3, "-3.0"},
		{0, "0.0"},
		{0.1, "0.1"},
		{1234567.25, "1234567.25"},
		{1e21, "1e+21"},
		{1e-5, "1e-05"},
	}
	for i, tt := range tests {
		if got := runtime.FormatNumber(tt.in); got != tt.want {
			t.Fatalf("tests[%d] - expected %q, got %q", i, tt.want, got)
		}
	}
}

func TestValueString(t *testing.T) {
	cls := runtime.NewClass("Point", nil, map[string]*runtime.Function{}, map[string]*runtime.Function{})
	tests := []struct {
		v    runtime.Value
		want string
	}{
		{runtime.Nil(), "nil"},
		{runtime.Bool(true), "true"},
		{runtime.Bool(false), "false"},
		{runtime.Number(7), "7.0"},
		{runtime.Str("hi"), "hi"},
		{runtime.CallableValue(cls), "Point"},
		{runtime.InstanceValue(runtime.NewInstance(cls)), "Point_instance"},
		{runtime.CallableValue(&runtime.Native{Name: "clock"}), "<native fn clock>"},
		{runtime.CallableValue(runtime.NewFunction("add", nil, nil, false)), "<fn add>"},
		{runtime.CallableValue(runtime.NewFunction("", nil, nil, false)), "<fn>"},
	}
	for i, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Fatalf("tests[%d] - expected %q, got %q", i, tt.want, got)
		}
	}
}

func TestTruthiness(t *testing.T) {
	falsy := []runtime.Value{runtime.Nil(), runtime.Bool(false)}
	truthy := []runtime.Value{runtime.Bool(true), runtime.Number(0), runtime.Str("")}
	for i, v := range falsy {
		if v.Truthy() {
			t.Fatalf("falsy[%d] - %v should be falsy", i, v)
		}
	}
	for i, v := range truthy {
		if !v.Truthy() {
			t.Fatalf("truthy[%d] - %v should be truthy", i, v)
		}
	}
}

func TestEqualityByIdentity(t *testing.T) {
	cls := runtime.NewClass("A", nil, nil, nil)
	a := runtime.InstanceValue(runtime.NewInstance(cls))
	b := runtime.InstanceValue(runtime.NewInstance(cls))
	if !a.Equal(a) || a.Equal(b) {
		t.Fatalf("instances must compare by identity")
	}
	if !runtime.Nil().Equal(runtime.Nil()) {
		t.Fatalf("nil must equal nil")
	}
	if runtime.Number(1).Equal(runtime.Str("1")) {
		t.Fatalf("values of different kinds are never equal")
	}
}

func TestInstanceFieldsShadowMethods(t *testing.T) {
	cls := runtime.NewClass("A", nil, map[string]*runtime.Function{}, nil)
	inst := runtime.NewInstance(cls)

	if _, err := inst.Get(ident("x")); err == nil {
		t.Fatalf("expected undefined property error")
	}
	inst.Set(ident("x"), runtime.Number(3))
	if v, err := inst.Get(ident("x")); err != nil || v.Num != 3 {
		t.Fatalf("expected x=3, got %v (err=%v)", v, err)
	}
}

func TestClassFields(t *testing.T) {
	cls := runtime.NewClass("Counter", nil, nil, nil)
	cls.Set(ident("count"), runtime.Number(1))
	if v, err := cls.Get(ident("count")); err != nil || v.Num != 1 {
		t.Fatalf("expected class field count=1, got %v (err=%v)", v, err)
	}
	if cls.Arity() != 0 {
		t.Fatalf("expected arity 0 without init, got %d", cls.Arity())
	}
}

func TestHostAndClockBuiltin(t *testing.T) {
	var out bytes.Buffer
	host := runtime.NewHost(&out, func() float64 { return 42 })
	if err := host.Println("hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "hello\n" {
		t.Fatalf("unexpected output %q", out.String())
	}

	env := runtime.NewEnvironment()
	builtins.Install(env, host)
	v, err := env.Get(ident("clock"))
	if err != nil {
		t.Fatalf("clock not installed: %v", err)
	}
	if v.Kind != runtime.KindCallable || v.Callable.Arity() != 0 {
		t.Fatalf("expected zero-argument callable, got %v", v)
	}
	res, err := v.Callable.Call(nil, nil)
	if err != nil || res.Num != 42 {
		t.Fatalf("expected clock() = 42, got %v (err=%v)", res, err)
	}
}
