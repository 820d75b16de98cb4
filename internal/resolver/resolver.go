// Package resolver performs static resolution of variable references, recording the lexical distance between
// each reference and the scope that declares it so that the interpreter doesn't have to search the
// environment chain at runtime.
package resolver

import (
	"fmt"
	"iter"

	"github.com/marcuscaisey/golox/internal/ast"
	"github.com/marcuscaisey/golox/internal/loxerr"
	"github.com/marcuscaisey/golox/internal/token"
)

const (
	thisIdent  = "this"
	superIdent = "super"
)

// Distances maps an expression's ID (VariableExpr, AssignExpr, ThisExpr, or SuperExpr) to the number of
// environment frames between the scope it was resolved in and the scope that declares it. An expression
// missing from the map refers to a global.
type Distances map[int]int

// Resolve statically resolves every variable reference in stmts, reporting errors to sink. Resolution
// continues past an error so that a single pass reports every static error in the program.
func Resolve(stmts []ast.Stmt, sink *loxerr.Sink) Distances {
	r := &resolver{
		scopes:     newStack[scope](),
		distances:  Distances{},
		sink:       sink,
		curFunType: funTypeNone,
	}
	for _, stmt := range stmts {
		r.resolveStmt(stmt)
	}
	return r.distances
}

type identStatus int

const (
	statusDeclared identStatus = iota
	statusDefined
)

type ident struct {
	status identStatus
	tok    token.Token
}

type scope map[string]*ident

func (s scope) declare(tok token.Token) {
	s[tok.Lexeme] = &ident{tok: tok, status: statusDeclared}
}

func (s scope) define(name string) {
	if id, ok := s[name]; ok {
		id.status = statusDefined
	}
}

func (s scope) isDeclared(name string) bool {
	_, ok := s[name]
	return ok
}

func (s scope) isDefined(name string) bool {
	id, ok := s[name]
	return ok && id.status == statusDefined
}

type funType int

const (
	funTypeNone funType = iota
	funTypeFunction
	funTypeMethod
	funTypeInitializer
)

type classType int

const (
	classTypeNone classType = iota
	classTypeClass
	classTypeSubclass
)

type resolver struct {
	scopes     *stack[scope]
	distances  Distances
	sink       *loxerr.Sink
	loopDepth  int
	curFunType funType
	curClass   classType
}

func (r *resolver) beginScope() func() {
	r.scopes.Push(scope{})
	return func() { r.scopes.Pop() }
}

func (r *resolver) declare(tok token.Token) {
	if r.scopes.Len() == 0 {
		return
	}
	scope := r.scopes.Peek()
	if scope.isDeclared(tok.Lexeme) {
		r.sink.Add(loxerr.NewAtToken(tok, "%s has already been declared in this scope", tok.Lexeme))
		return
	}
	scope.declare(tok)
}

func (r *resolver) define(name string) {
	if r.scopes.Len() == 0 {
		return
	}
	r.scopes.Peek().define(name)
}

// resolveLocal walks the scope stack from innermost outward looking for name, recording the distance to the
// scope it's declared in against id. If name isn't found in any scope, it's assumed to be global.
func (r *resolver) resolveLocal(id int, name string) {
	for i, scope := range r.scopes.Backward() {
		if scope.isDeclared(name) {
			r.distances[id] = r.scopes.Len() - 1 - i
			return
		}
	}
}

func (r *resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		r.resolveExpr(s.Expr)
	case *ast.VarStmt:
		r.resolveVarStmt(s)
	case *ast.BlockStmt:
		r.resolveBlockStmt(s)
	case *ast.IfStmt:
		r.resolveExpr(s.Cond)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}
	case *ast.WhileStmt:
		r.resolveExpr(s.Cond)
		r.loopDepth++
		r.resolveStmt(s.Body)
		r.loopDepth--
	case *ast.ForStmt:
		r.resolveForStmt(s)
	case *ast.BreakStmt:
		if r.loopDepth == 0 {
			r.sink.Add(loxerr.NewAtToken(s.Keyword, "'break' can only be used inside a loop"))
		}
	case *ast.ContinueStmt:
		if r.loopDepth == 0 {
			r.sink.Add(loxerr.NewAtToken(s.Keyword, "'continue' can only be used inside a loop"))
		}
	case *ast.FunctionStmt:
		r.declare(s.Name)
		r.define(s.Name.Lexeme)
		r.resolveFunction(s.Params, s.Body, funTypeFunction)
	case *ast.ReturnStmt:
		r.resolveReturnStmt(s)
	case *ast.ClassStmt:
		r.resolveClassStmt(s)
	default:
		panic(fmt.Sprintf("resolver: unexpected statement type: %T", stmt))
	}
}

func (r *resolver) resolveVarStmt(stmt *ast.VarStmt) {
	r.declare(stmt.Name)
	if stmt.Initializer != nil {
		r.resolveExpr(stmt.Initializer)
	}
	r.define(stmt.Name.Lexeme)
}

// resolveForStmt resolves a for loop in its own scope, so that a variable declared by its initializer clause
// is visible to the condition, update, and body but nowhere outside the loop.
func (r *resolver) resolveForStmt(stmt *ast.ForStmt) {
	endScope := r.beginScope()
	defer endScope()

	if stmt.Init != nil {
		r.resolveStmt(stmt.Init)
	}
	if stmt.Cond != nil {
		r.resolveExpr(stmt.Cond)
	}
	r.loopDepth++
	r.resolveStmt(stmt.Body)
	if stmt.Update != nil {
		r.resolveExpr(stmt.Update)
	}
	r.loopDepth--
}

func (r *resolver) resolveBlockStmt(stmt *ast.BlockStmt) {
	endScope := r.beginScope()
	defer endScope()
	for _, s := range stmt.Stmts {
		r.resolveStmt(s)
	}
}

func (r *resolver) resolveFunction(params []token.Token, body []ast.Stmt, typ funType) {
	prevFunType := r.curFunType
	r.curFunType = typ
	defer func() { r.curFunType = prevFunType }()

	prevLoopDepth := r.loopDepth
	r.loopDepth = 0
	defer func() { r.loopDepth = prevLoopDepth }()

	endScope := r.beginScope()
	defer endScope()
	for _, param := range params {
		r.declare(param)
		r.define(param.Lexeme)
	}
	for _, s := range body {
		r.resolveStmt(s)
	}
}

func (r *resolver) resolveReturnStmt(stmt *ast.ReturnStmt) {
	if r.curFunType == funTypeNone {
		r.sink.Add(loxerr.NewAtToken(stmt.Keyword, "'return' can only be used inside a function or method"))
	}
	if stmt.Value != nil {
		if r.curFunType == funTypeInitializer {
			r.sink.Add(loxerr.NewAtToken(stmt.Keyword, "can't return a value from an initializer"))
		}
		r.resolveExpr(stmt.Value)
	}
}

func (r *resolver) resolveClassStmt(stmt *ast.ClassStmt) {
	prevClass := r.curClass
	r.curClass = classTypeClass
	defer func() { r.curClass = prevClass }()

	r.declare(stmt.Name)
	r.define(stmt.Name.Lexeme)

	if stmt.Superclass != nil {
		if stmt.Superclass.Name.Lexeme == stmt.Name.Lexeme {
			r.sink.Add(loxerr.NewAtToken(stmt.Superclass.Name, "a class can't inherit from itself"))
		}
		r.curClass = classTypeSubclass
		r.resolveExpr(stmt.Superclass)

		endSuperScope := r.beginScope()
		defer endSuperScope()
		r.scopes.Peek().declare(token.Token{Lexeme: superIdent})
		r.scopes.Peek().define(superIdent)
	}

	endThisScope := r.beginScope()
	defer endThisScope()
	r.scopes.Peek().declare(token.Token{Lexeme: thisIdent})
	r.scopes.Peek().define(thisIdent)

	for _, method := range stmt.Methods {
		typ := funTypeMethod
		if method.Name.Lexeme == "init" {
			typ = funTypeInitializer
		}
		r.resolveFunction(method.Params, method.Body, typ)
	}
}

func (r *resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		// Nothing to resolve.
	case *ast.VariableExpr:
		r.resolveVariableExpr(e)
	case *ast.AssignExpr:
		r.resolveExpr(e.Value)
		r.resolveLocal(e.ID(), e.Name.Lexeme)
	case *ast.UnaryExpr:
		r.resolveExpr(e.Right)
	case *ast.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)
	case *ast.TernaryExpr:
		r.resolveExpr(e.Cond)
		r.resolveExpr(e.Then)
		r.resolveExpr(e.Else)
	case *ast.GroupingExpr:
		r.resolveExpr(e.Inner)
	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpr(arg)
		}
	case *ast.GetExpr:
		r.resolveExpr(e.Object)
	case *ast.SetExpr:
		r.resolveExpr(e.Value)
		r.resolveExpr(e.Object)
	case *ast.ThisExpr:
		if r.curClass == classTypeNone {
			r.sink.Add(loxerr.NewAtToken(e.Keyword, "'this' can only be used inside a method"))
			return
		}
		r.resolveLocal(e.ID(), thisIdent)
	case *ast.SuperExpr:
		r.resolveSuperExpr(e)
	case *ast.FunctionExpr:
		r.resolveFunction(e.Params, e.Body, funTypeFunction)
	default:
		panic(fmt.Sprintf("resolver: unexpected expression type: %T", expr))
	}
}

func (r *resolver) resolveVariableExpr(expr *ast.VariableExpr) {
	r.resolveLocal(expr.ID(), expr.Name.Lexeme)
}

func (r *resolver) resolveSuperExpr(expr *ast.SuperExpr) {
	switch r.curClass {
	case classTypeNone:
		r.sink.Add(loxerr.NewAtToken(expr.Keyword, "'super' can only be used inside a method"))
	case classTypeClass:
		r.sink.Add(loxerr.NewAtToken(expr.Keyword, "'super' can only be used in a class with a superclass"))
	}
	r.resolveLocal(expr.ID(), superIdent)
}

type stack[E any] []E

func newStack[E any]() *stack[E] {
	return &stack[E]{}
}

func (s *stack[E]) Push(v E) { *s = append(*s, v) }

func (s *stack[E]) Pop() E {
	v := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return v
}

func (s *stack[E]) Peek() E {
	return (*s)[len(*s)-1]
}

func (s *stack[E]) Len() int {
	return len(*s)
}

func (s *stack[E]) Backward() iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		for i := s.Len() - 1; i >= 0; i-- {
			if !yield(i, (*s)[i]) {
				return
			}
		}
	}
}
