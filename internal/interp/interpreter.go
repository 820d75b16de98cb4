// Package interp evaluates a resolved Lox syntax tree.
package interp

import (
	"fmt"
	"time"

	"github.com/marcuscaisey/golox/internal/ast"
	"github.com/marcuscaisey/golox/internal/loxerr"
	"github.com/marcuscaisey/golox/internal/resolver"
	"github.com/marcuscaisey/golox/internal/token"
)

const (
	thisIdent  = "this"
	superIdent = "super"
)

// Interpreter evaluates statements against a persistent global environment, so that state (variables,
// functions, classes) survives across repeated calls to Interpret, as the REPL needs.
type Interpreter struct {
	globals   *Environment
	distances resolver.Distances
}

// New constructs an Interpreter with its global environment populated with the native functions clock, print,
// and println.
func New() *Interpreter {
	globals := NewEnvironment()
	globals.Define("clock", NewNativeFunction("clock", 0, func(args []Value) Value {
		return Number(float64(time.Now().UnixNano()) / float64(time.Second))
	}))
	globals.Define("print", NewNativeFunction("print", 1, func(args []Value) Value {
		fmt.Print(args[0].String())
		return Nil{}
	}))
	globals.Define("println", NewNativeFunction("println", 1, func(args []Value) Value {
		fmt.Println(args[0].String())
		return Nil{}
	}))
	return &Interpreter{globals: globals}
}

// Interpret resolves and executes stmts, reporting errors to sink. Resolution errors prevent execution;
// panicking runtime errors are recovered and reported to sink too, so the caller only has to check
// sink.HadError. Distances computed for this call are merged into the interpreter's state so that
// incrementally-fed REPL input keeps resolving against previously-declared variables.
func (i *Interpreter) Interpret(stmts []ast.Stmt, sink *loxerr.Sink) {
	distances := resolver.Resolve(stmts, sink)
	if sink.HadError() {
		return
	}
	if i.distances == nil {
		i.distances = distances
	} else {
		for id, d := range distances {
			i.distances[id] = d
		}
	}

	defer func() {
		if r := recover(); r != nil {
			if loxErr, ok := r.(*loxerr.Error); ok {
				sink.Add(loxErr)
				return
			}
			panic(r)
		}
	}()

	for _, stmt := range stmts {
		i.execStmt(i.globals, stmt)
	}
}

// stmtResult is the outcome of executing a statement: either execution falls through (stmtNone) or a
// non-local control transfer is propagating up through enclosing blocks (stmtBreak, stmtContinue, stmtReturn).
type stmtResult interface{ stmtResult() }

type stmtNone struct{}

func (stmtNone) stmtResult() {}

type stmtBreak struct{}

func (stmtBreak) stmtResult() {}

type stmtContinue struct{}

func (stmtContinue) stmtResult() {}

type stmtReturn struct{ value Value }

func (stmtReturn) stmtResult() {}

func (i *Interpreter) execStmt(env *Environment, stmt ast.Stmt) stmtResult {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		i.evalExpr(env, s.Expr)
	case *ast.VarStmt:
		i.execVarStmt(env, s)
	case *ast.BlockStmt:
		return i.executeBlock(env.Child(), s.Stmts)
	case *ast.IfStmt:
		return i.execIfStmt(env, s)
	case *ast.WhileStmt:
		return i.execWhileStmt(env, s)
	case *ast.ForStmt:
		return i.execForStmt(env, s)
	case *ast.BreakStmt:
		return stmtBreak{}
	case *ast.ContinueStmt:
		return stmtContinue{}
	case *ast.FunctionStmt:
		env.Define(s.Name.Lexeme, NewFunction(s.Name.Lexeme, s.Params, s.Body, env, false))
	case *ast.ReturnStmt:
		return i.execReturnStmt(env, s)
	case *ast.ClassStmt:
		i.execClassStmt(env, s)
	default:
		panic(fmt.Sprintf("interp: unexpected statement type: %T", stmt))
	}
	return stmtNone{}
}

func (i *Interpreter) execVarStmt(env *Environment, stmt *ast.VarStmt) {
	var value Value = Nil{}
	if stmt.Initializer != nil {
		value = i.evalExpr(env, stmt.Initializer)
	}
	env.Define(stmt.Name.Lexeme, value)
}

// executeBlock executes stmts in env, stopping early and propagating the result if a non-local control
// transfer occurs. The caller supplies env, so block-scoped code and function bodies (which run in a fresh
// environment rooted at the function's closure rather than the call site) share this one entry point.
func (i *Interpreter) executeBlock(env *Environment, stmts []ast.Stmt) stmtResult {
	for _, stmt := range stmts {
		if result := i.execStmt(env, stmt); !isNone(result) {
			return result
		}
	}
	return stmtNone{}
}

func isNone(r stmtResult) bool {
	_, ok := r.(stmtNone)
	return ok
}

func (i *Interpreter) execIfStmt(env *Environment, stmt *ast.IfStmt) stmtResult {
	if IsTruthy(i.evalExpr(env, stmt.Cond)) {
		return i.execStmt(env, stmt.Then)
	} else if stmt.Else != nil {
		return i.execStmt(env, stmt.Else)
	}
	return stmtNone{}
}

func (i *Interpreter) execWhileStmt(env *Environment, stmt *ast.WhileStmt) stmtResult {
	for IsTruthy(i.evalExpr(env, stmt.Cond)) {
		switch result := i.execStmt(env, stmt.Body).(type) {
		case stmtBreak:
			return stmtNone{}
		case stmtReturn:
			return result
		}
	}
	return stmtNone{}
}

// execForStmt runs a C-style for loop in a single environment shared across every iteration, so that a
// variable declared by the initializer clause keeps its identity (and any closures formed over it) from one
// iteration to the next. The update expression runs after every iteration that falls through or continues,
// not just the ones that fall through normally, so that continue can't skip it.
func (i *Interpreter) execForStmt(env *Environment, stmt *ast.ForStmt) stmtResult {
	loopEnv := env.Child()
	if stmt.Init != nil {
		i.execStmt(loopEnv, stmt.Init)
	}
	for stmt.Cond == nil || IsTruthy(i.evalExpr(loopEnv, stmt.Cond)) {
		switch result := i.execStmt(loopEnv, stmt.Body).(type) {
		case stmtBreak:
			return stmtNone{}
		case stmtReturn:
			return result
		}
		if stmt.Update != nil {
			i.evalExpr(loopEnv, stmt.Update)
		}
	}
	return stmtNone{}
}

func (i *Interpreter) execReturnStmt(env *Environment, stmt *ast.ReturnStmt) stmtReturn {
	var value Value = Nil{}
	if stmt.Value != nil {
		value = i.evalExpr(env, stmt.Value)
	}
	return stmtReturn{value: value}
}

func (i *Interpreter) execClassStmt(env *Environment, stmt *ast.ClassStmt) {
	var superclass *Class
	if stmt.Superclass != nil {
		superVal := i.evalExpr(env, stmt.Superclass)
		var ok bool
		superclass, ok = superVal.(*Class)
		if !ok {
			panic(loxerr.NewRuntime(stmt.Superclass.Name, "superclass must be a class"))
		}
	}

	env.Define(stmt.Name.Lexeme, nil)

	methodEnv := env
	if superclass != nil {
		methodEnv = env.Child()
		methodEnv.Define(superIdent, superclass)
	}

	methods := make(map[string]*Function, len(stmt.Methods))
	for _, methodDecl := range stmt.Methods {
		isInit := methodDecl.Name.Lexeme == "init"
		methods[methodDecl.Name.Lexeme] = NewFunction(methodDecl.Name.Lexeme, methodDecl.Params, methodDecl.Body, methodEnv, isInit)
	}

	class := NewClass(stmt.Name.Lexeme, superclass, methods)
	env.Assign(stmt.Name, class)
}

func (i *Interpreter) evalExpr(env *Environment, expr ast.Expr) Value {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return literalValue(e.Value)
	case *ast.VariableExpr:
		return i.lookUpVariable(env, e.ID(), e.Name)
	case *ast.AssignExpr:
		return i.evalAssignExpr(env, e)
	case *ast.UnaryExpr:
		return i.evalUnaryExpr(env, e)
	case *ast.BinaryExpr:
		return i.evalBinaryExpr(env, e)
	case *ast.LogicalExpr:
		return i.evalLogicalExpr(env, e)
	case *ast.TernaryExpr:
		if IsTruthy(i.evalExpr(env, e.Cond)) {
			return i.evalExpr(env, e.Then)
		}
		return i.evalExpr(env, e.Else)
	case *ast.GroupingExpr:
		return i.evalExpr(env, e.Inner)
	case *ast.CallExpr:
		return i.evalCallExpr(env, e)
	case *ast.GetExpr:
		return i.evalGetExpr(env, e)
	case *ast.SetExpr:
		return i.evalSetExpr(env, e)
	case *ast.ThisExpr:
		return i.lookUpVariable(env, e.ID(), e.Keyword)
	case *ast.SuperExpr:
		return i.evalSuperExpr(env, e)
	case *ast.FunctionExpr:
		return NewFunction("(anonymous)", e.Params, e.Body, env, false)
	default:
		panic(fmt.Sprintf("interp: unexpected expression type: %T", expr))
	}
}

func literalValue(v any) Value {
	switch v := v.(type) {
	case nil:
		return Nil{}
	case bool:
		return Bool(v)
	case float64:
		return Number(v)
	case string:
		return String(v)
	default:
		panic(fmt.Sprintf("interp: unexpected literal value type: %T", v))
	}
}

func (i *Interpreter) lookUpVariable(env *Environment, id int, name token.Token) Value {
	if distance, ok := i.distances[id]; ok {
		return env.GetAt(distance, name)
	}
	return i.globals.Get(name)
}

func (i *Interpreter) evalAssignExpr(env *Environment, expr *ast.AssignExpr) Value {
	value := i.evalExpr(env, expr.Value)
	if distance, ok := i.distances[expr.ID()]; ok {
		env.AssignAt(distance, expr.Name, value)
	} else {
		i.globals.Assign(expr.Name, value)
	}
	return value
}

func (i *Interpreter) evalLogicalExpr(env *Environment, expr *ast.LogicalExpr) Value {
	left := i.evalExpr(env, expr.Left)
	if expr.Op.Kind == token.Or {
		if IsTruthy(left) {
			return left
		}
	} else {
		if !IsTruthy(left) {
			return left
		}
	}
	return i.evalExpr(env, expr.Right)
}

func (i *Interpreter) evalUnaryExpr(env *Environment, expr *ast.UnaryExpr) Value {
	right := i.evalExpr(env, expr.Right)
	switch expr.Op.Kind {
	case token.Not:
		return Bool(!IsTruthy(right))
	case token.Minus:
		n, ok := right.(Number)
		if !ok {
			panic(loxerr.NewRuntime(expr.Op, "operand must be a number"))
		}
		return -n
	default:
		panic(fmt.Sprintf("interp: unexpected unary operator: %s", expr.Op.Kind))
	}
}

func (i *Interpreter) evalBinaryExpr(env *Environment, expr *ast.BinaryExpr) Value {
	left := i.evalExpr(env, expr.Left)

	if expr.Op.Kind == token.Comma {
		return i.evalExpr(env, expr.Right)
	}

	right := i.evalExpr(env, expr.Right)

	switch expr.Op.Kind {
	case token.Equal:
		return Bool(Equal(left, right))
	case token.NotEqual:
		return Bool(!Equal(left, right))
	}

	switch expr.Op.Kind {
	case token.Plus:
		if ln, lok := left.(Number); lok {
			if rn, rok := right.(Number); rok {
				return ln + rn
			}
		}
		if ls, lok := left.(String); lok {
			if rs, rok := right.(String); rok {
				return ls + rs
			}
		}
		panic(loxerr.NewRuntime(expr.Op, "operands must be two numbers or two strings"))
	case token.Minus:
		l, r := i.numberOperands(expr.Op, left, right)
		return l - r
	case token.Asterisk:
		l, r := i.numberOperands(expr.Op, left, right)
		return l * r
	case token.Slash:
		l, r := i.numberOperands(expr.Op, left, right)
		if r == 0 {
			panic(loxerr.NewRuntime(expr.Op, "Division by zero"))
		}
		return l / r
	case token.Greater:
		l, r := i.numberOperands(expr.Op, left, right)
		return Bool(l > r)
	case token.GreaterEqual:
		l, r := i.numberOperands(expr.Op, left, right)
		return Bool(l >= r)
	case token.Less:
		l, r := i.numberOperands(expr.Op, left, right)
		return Bool(l < r)
	case token.LessEqual:
		l, r := i.numberOperands(expr.Op, left, right)
		return Bool(l <= r)
	default:
		panic(fmt.Sprintf("interp: unexpected binary operator: %s", expr.Op.Kind))
	}
}

func (i *Interpreter) numberOperands(op token.Token, left, right Value) (Number, Number) {
	ln, lok := left.(Number)
	rn, rok := right.(Number)
	if !lok || !rok {
		panic(loxerr.NewRuntime(op, "operands must be numbers"))
	}
	return ln, rn
}

func (i *Interpreter) evalCallExpr(env *Environment, expr *ast.CallExpr) Value {
	callee := i.evalExpr(env, expr.Callee)
	args := make([]Value, len(expr.Args))
	for idx, arg := range expr.Args {
		args[idx] = i.evalExpr(env, arg)
	}

	callable, ok := callee.(Callable)
	if !ok {
		panic(loxerr.NewRuntime(expr.Paren, "can only call functions and classes"))
	}
	if len(args) != callable.Arity() {
		panic(loxerr.NewRuntime(expr.Paren, "expected %d arguments but got %d", callable.Arity(), len(args)))
	}
	return callable.Call(i, args)
}

func (i *Interpreter) evalGetExpr(env *Environment, expr *ast.GetExpr) Value {
	object := i.evalExpr(env, expr.Object)
	instance, ok := object.(*Instance)
	if !ok {
		panic(loxerr.NewRuntime(expr.Name, "only instances have properties"))
	}
	return instance.Get(expr.Name)
}

func (i *Interpreter) evalSetExpr(env *Environment, expr *ast.SetExpr) Value {
	object := i.evalExpr(env, expr.Object)
	instance, ok := object.(*Instance)
	if !ok {
		panic(loxerr.NewRuntime(expr.Name, "only instances have fields"))
	}
	value := i.evalExpr(env, expr.Value)
	instance.Set(expr.Name, value)
	return value
}

func (i *Interpreter) evalSuperExpr(env *Environment, expr *ast.SuperExpr) Value {
	distance := i.distances[expr.ID()]
	superclass, _ := env.GetAt(distance, expr.Keyword).(*Class)
	instance, _ := env.GetAt(distance-1, token.Token{Lexeme: thisIdent}).(*Instance)

	method, ok := superclass.Method(expr.Method.Lexeme)
	if !ok {
		panic(loxerr.NewRuntime(expr.Method, "undefined property %q", expr.Method.Lexeme))
	}
	return method.Bind(instance)
}

