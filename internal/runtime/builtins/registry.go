package builtins

import (
	"fmt"
	"sort"
	"sync"

	"sl/internal/runtime"
)

// Host provides host services to builtins.
type Host interface {
	// Now returns seconds on a monotonic clock.
	Now() float64
}

// Builtin is a native function installed into the global environment.
type Builtin struct {
	Name  string
	Arity int
	Call  func(host Host, args []runtime.Value) (runtime.Value, error)
}

type registry struct {
	mu     sync.RWMutex
	byName map[string]*Builtin
}

var globalRegistry = &registry{
	byName: make(map[string]*Builtin),
}

// Register registers a builtin. This is called by each builtin's init().
// Panics if the name is already registered.
func Register(b Builtin) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if b.Name == "" || b.Call == nil {
		panic(fmt.Sprintf("builtin %q: missing name or implementation", b.Name))
	}
	if _, exists := globalRegistry.byName[b.Name]; exists {
		panic(fmt.Sprintf("builtin name %q is already registered", b.Name))
	}
	globalRegistry.byName[b.Name] = &b
}

// LookupByName finds a builtin by name. Returns nil if not found.
func LookupByName(name string) *Builtin {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return globalRegistry.byName[name]
}

// Names returns all registered builtin names in sorted order.
func Names() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	names := make([]string, 0, len(globalRegistry.byName))
	for name := range globalRegistry.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install defines every registered builtin in env, bound to host.
func Install(env *runtime.Environment, host Host) {
	for _, name := range Names() {
		b := LookupByName(name)
		env.Define(name, runtime.CallableValue(&runtime.Native{
			Name:   b.Name,
			Params: b.Arity,
			Fn: func(args []runtime.Value) (runtime.Value, error) {
				return b.Call(host, args)
			},
		}))
	}
}
