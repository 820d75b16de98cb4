package interp

import (
	"github.com/marcuscaisey/golox/internal/loxerr"
	"github.com/marcuscaisey/golox/internal/token"
)

// Environment is a lexical scope mapping variable names to their values, chained to an enclosing scope.
type Environment struct {
	parent *Environment
	values map[string]Value
}

// NewEnvironment constructs a top-level environment with no enclosing scope.
func NewEnvironment() *Environment {
	return &Environment{values: make(map[string]Value)}
}

// Child creates a new environment enclosed by e.
func (e *Environment) Child() *Environment {
	return &Environment{parent: e, values: make(map[string]Value)}
}

// Define binds name to value in this environment, overwriting any existing binding. Used for variable and
// function declarations, parameters, and built-ins, none of which need to distinguish shadowing from
// redeclaration at runtime: the resolver has already rejected illegal redeclarations statically.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Assign assigns value to the variable tok in this environment, raising a runtime error if it isn't defined
// here.
func (e *Environment) Assign(tok token.Token, value Value) {
	if _, ok := e.values[tok.Lexeme]; !ok {
		panic(loxerr.NewRuntime(tok, "undefined variable %q", tok.Lexeme))
	}
	e.values[tok.Lexeme] = value
}

// AssignAt assigns value to tok in the environment distance enclosing scopes up from e.
func (e *Environment) AssignAt(distance int, tok token.Token, value Value) {
	e.ancestor(distance).Assign(tok, value)
}

// Get returns the value of the variable tok in this environment, raising a runtime error if it isn't defined
// here.
func (e *Environment) Get(tok token.Token) Value {
	value, ok := e.values[tok.Lexeme]
	if !ok {
		panic(loxerr.NewRuntime(tok, "undefined variable %q", tok.Lexeme))
	}
	return value
}

// GetAt returns the value of tok in the environment distance enclosing scopes up from e.
func (e *Environment) GetAt(distance int, tok token.Token) Value {
	return e.ancestor(distance).Get(tok)
}

// GetByName looks up name in this environment directly, bypassing distance resolution. Used for values such as
// this and super that the interpreter injects itself, outside of any source-level declaration.
func (e *Environment) GetByName(name string) Value {
	return e.values[name]
}

func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for range distance {
		env = env.parent
	}
	return env
}
