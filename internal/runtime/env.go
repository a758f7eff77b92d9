package runtime

import (
	"sl/internal/token"
)

// Environment is one scope frame. Frames are shared by reference between a
// closure and every call that runs inside it.
type Environment struct {
	values    map[string]Value
	enclosing *Environment
}

// NewEnvironment creates a root (global) frame.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]Value)}
}

// NewEnclosed creates a frame nested in enclosing.
func NewEnclosed(enclosing *Environment) *Environment {
	return &Environment{
		values:    make(map[string]Value),
		enclosing: enclosing,
	}
}

// Define binds name in this frame, replacing any previous binding.
func (e *Environment) Define(name string, v Value) {
	e.values[name] = v
}

// Get looks name up through the chain of enclosing frames.
func (e *Environment) Get(name token.Token) (Value, error) {
	for env := e; env != nil; env = env.enclosing {
		if v, ok := env.values[name.Lexeme]; ok {
			return v, nil
		}
	}
	return Value{}, NewError(name, "undefined variable '%s'", name.Lexeme)
}

// Assign updates the nearest existing binding of name.
func (e *Environment) Assign(name token.Token, v Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = v
			return nil
		}
	}
	return NewError(name, "undefined variable '%s'", name.Lexeme)
}

// Ancestor returns the frame distance hops outward.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.enclosing
	}
	return env
}

// GetAt reads name from exactly the frame distance hops outward.
func (e *Environment) GetAt(distance int, name string) (Value, bool) {
	v, ok := e.Ancestor(distance).values[name]
	return v, ok
}

// AssignAt writes name into exactly the frame distance hops outward.
func (e *Environment) AssignAt(distance int, name string, v Value) {
	e.Ancestor(distance).values[name] = v
}
