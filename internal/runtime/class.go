package runtime

import (
	"sl/internal/token"
)

// Class is both a callable constructor and an object in its own right: it
// has static methods and a field table, and `this` inside a static method
// is the class itself.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
	Statics    map[string]*Function
	Fields     map[string]Value
}

func NewClass(name string, super *Class, methods, statics map[string]*Function) *Class {
	return &Class{
		Name:       name,
		Superclass: super,
		Methods:    methods,
		Statics:    statics,
		Fields:     make(map[string]Value),
	}
}

// FindMethod looks up an instance method along the superclass chain.
func (c *Class) FindMethod(name string) *Function {
	for cls := c; cls != nil; cls = cls.Superclass {
		if m, ok := cls.Methods[name]; ok {
			return m
		}
	}
	return nil
}

// FindStatic looks up a static method along the superclass chain.
func (c *Class) FindStatic(name string) *Function {
	for cls := c; cls != nil; cls = cls.Superclass {
		if m, ok := cls.Statics[name]; ok {
			return m
		}
	}
	return nil
}

func (c *Class) String() string {
	return c.Name
}

// Arity is the arity of init, or 0 when no class in the chain defines one.
func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call constructs a new instance and runs init on it.
func (c *Class) Call(ex Executor, args []Value) (Value, error) {
	inst := NewInstance(c)
	self := InstanceValue(inst)
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.Bind(self).Call(ex, args); err != nil {
			return Nil(), err
		}
	}
	return self, nil
}

// Get reads a field stored on the class, then a static method bound to it.
func (c *Class) Get(name token.Token) (Value, error) {
	if v, ok := c.Fields[name.Lexeme]; ok {
		return v, nil
	}
	if m := c.FindStatic(name.Lexeme); m != nil {
		return CallableValue(m.Bind(CallableValue(c))), nil
	}
	return Value{}, NewError(name, "undefined property '%s'", name.Lexeme)
}

func (c *Class) Set(name token.Token, v Value) {
	c.Fields[name.Lexeme] = v
}

// Instance has a class and an open set of fields.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

func NewInstance(c *Class) *Instance {
	return &Instance{Class: c, Fields: make(map[string]Value)}
}

// Get returns a field if present; otherwise a method bound to the instance.
func (i *Instance) Get(name token.Token) (Value, error) {
	if v, ok := i.Fields[name.Lexeme]; ok {
		return v, nil
	}
	if m := i.Class.FindMethod(name.Lexeme); m != nil {
		return CallableValue(m.Bind(InstanceValue(i))), nil
	}
	return Value{}, NewError(name, "undefined property '%s'", name.Lexeme)
}

func (i *Instance) Set(name token.Token, v Value) {
	i.Fields[name.Lexeme] = v
}
