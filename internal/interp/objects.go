package interp

import (
	"fmt"
	"strconv"

	"github.com/marcuscaisey/golox/internal/ast"
	"github.com/marcuscaisey/golox/internal/loxerr"
	"github.com/marcuscaisey/golox/internal/token"
)

// Value is implemented by every runtime Lox value: Nil, Bool, Number, String, *Function, *Class, and
// *Instance.
type Value interface {
	String() string
	Type() string
}

// Nil is the value of the nil literal.
type Nil struct{}

func (Nil) String() string { return "nil" }
func (Nil) Type() string   { return "nil" }

// Bool is a boolean value.
type Bool bool

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }
func (Bool) Type() string     { return "bool" }

// Number is a double-precision floating point value.
type Number float64

// String formats n without a trailing ".0" for integral values, matching the reference REPL's output.
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

func (Number) Type() string { return "number" }

// String is a Lox string value.
type String string

func (s String) String() string { return string(s) }
func (String) Type() string     { return "string" }

// IsTruthy reports whether v is truthy: every value is truthy except nil and false.
func IsTruthy(v Value) bool {
	switch v := v.(type) {
	case Nil:
		return false
	case Bool:
		return bool(v)
	default:
		return true
	}
}

// Equal reports whether a and b are the same Lox value. Values of different dynamic types are never equal.
// Instances, functions, and classes compare by identity.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bb, ok := b.(Bool)
		return ok && a == bb
	case Number:
		bb, ok := b.(Number)
		return ok && a == bb
	case String:
		bb, ok := b.(String)
		return ok && a == bb
	default:
		return a == b
	}
}

// Callable is implemented by every Value that can appear as the callee of a call expression.
type Callable interface {
	Value
	Arity() int
	Call(i *Interpreter, args []Value) Value
}

// Function is a Lox function or method: either declared in source and closing over its defining environment, or
// a native function supplied by the interpreter.
type Function struct {
	name          string
	params        []token.Token
	body          []ast.Stmt
	closure       *Environment
	isInitializer bool
	isMethod      bool

	native     func(args []Value) Value
	nativeArgs int
}

// NewFunction constructs a Function declared in source, closed over closure.
func NewFunction(name string, params []token.Token, body []ast.Stmt, closure *Environment, isInitializer bool) *Function {
	return &Function{name: name, params: params, body: body, closure: closure, isInitializer: isInitializer}
}

// NewNativeFunction constructs a built-in Function implemented in Go.
func NewNativeFunction(name string, arity int, fn func(args []Value) Value) *Function {
	return &Function{name: name, native: fn, nativeArgs: arity}
}

var _ Callable = (*Function)(nil)

func (f *Function) String() string {
	if f.native != nil {
		return fmt.Sprintf("<native fn %s>", f.name)
	}
	return fmt.Sprintf("<fn %s>", f.name)
}

func (f *Function) Type() string { return "function" }

// Arity returns the number of parameters f expects.
func (f *Function) Arity() int {
	if f.native != nil {
		return f.nativeArgs
	}
	return len(f.params)
}

// Call invokes f with args already evaluated, left to right, by the caller.
func (f *Function) Call(i *Interpreter, args []Value) Value {
	if f.native != nil {
		return f.native(args)
	}

	env := f.closure.Child()
	for idx, param := range f.params {
		env.Define(param.Lexeme, args[idx])
	}

	result := i.executeBlock(env, f.body)
	if f.isInitializer {
		return f.closure.GetByName(thisIdent)
	}
	if ret, ok := result.(stmtReturn); ok {
		return ret.value
	}
	return Nil{}
}

// Bind returns a copy of f whose this is instance, used when a method is looked up on an instance.
func (f *Function) Bind(instance *Instance) *Function {
	env := f.closure.Child()
	env.Define(thisIdent, instance)
	bound := *f
	bound.closure = env
	bound.isMethod = true
	return &bound
}

// Class is a Lox class: a callable that constructs instances and a namespace of methods shared by them.
type Class struct {
	Name       string
	Superclass *Class
	methods    map[string]*Function
}

// NewClass constructs a Class with the given methods, keyed by name.
func NewClass(name string, superclass *Class, methods map[string]*Function) *Class {
	return &Class{Name: name, Superclass: superclass, methods: methods}
}

var _ Callable = (*Class)(nil)

func (c *Class) String() string { return fmt.Sprintf("<class %s>", c.Name) }
func (c *Class) Type() string   { return "class" }

// Method looks up name in c's own methods, then its superclass chain.
func (c *Class) Method(name string) (*Function, bool) {
	if m, ok := c.methods[name]; ok {
		return m, true
	}
	if c.Superclass != nil {
		return c.Superclass.Method(name)
	}
	return nil, false
}

// Arity returns the arity of the class's init method, or 0 if it doesn't define one.
func (c *Class) Arity() int {
	if init, ok := c.Method("init"); ok {
		return init.Arity()
	}
	return 0
}

// Call constructs a new Instance of c, running its init method, if any, with args.
func (c *Class) Call(i *Interpreter, args []Value) Value {
	instance := NewInstance(c)
	if init, ok := c.Method("init"); ok {
		init.Bind(instance).Call(i, args)
	}
	return instance
}

// Instance is an instance of a Lox class: a bag of fields backed by its class's methods.
type Instance struct {
	Class  *Class
	fields map[string]Value
}

// NewInstance constructs an Instance of class with no fields set.
func NewInstance(class *Class) *Instance {
	return &Instance{Class: class, fields: make(map[string]Value)}
}

func (inst *Instance) String() string { return fmt.Sprintf("<%s instance>", inst.Class.Name) }
func (inst *Instance) Type() string   { return inst.Class.Name }

// Get returns the value of the property name on inst: first its own fields, then the class's methods, bound to
// inst.
func (inst *Instance) Get(name token.Token) Value {
	if v, ok := inst.fields[name.Lexeme]; ok {
		return v
	}
	if m, ok := inst.Class.Method(name.Lexeme); ok {
		return m.Bind(inst)
	}
	panic(loxerr.NewRuntime(name, "undefined property %q", name.Lexeme))
}

// Set assigns value to the field name on inst, creating it if it doesn't already exist.
func (inst *Instance) Set(name token.Token, value Value) {
	inst.fields[name.Lexeme] = value
}
