package builtins

import (
	"sl/internal/runtime"
)

func init() {
	registerClock()
}

func registerClock() {
	Register(Builtin{
		Name:  "clock",
		Arity: 0,
		Call: func(host Host, args []runtime.Value) (runtime.Value, error) {
			return runtime.Number(host.Now()), nil
		},
	})
}
