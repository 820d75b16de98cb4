package resolver_test

import (
	"strings"
	"testing"

	"github.com/marcuscaisey/golox/internal/ast"
	"github.com/marcuscaisey/golox/internal/loxerr"
	"github.com/marcuscaisey/golox/internal/parser"
	"github.com/marcuscaisey/golox/internal/resolver"
	"github.com/marcuscaisey/golox/internal/scanner"
)

func resolveSrc(t *testing.T, src string) ([]ast.Stmt, resolver.Distances, *loxerr.Sink) {
	t.Helper()
	sink := &loxerr.Sink{}
	toks := scanner.New(src, sink).Scan()
	stmts := parser.New(toks, sink).Parse()
	if sink.HadError() {
		t.Fatalf("unexpected parse error: %s", sink.Err())
	}
	distances := resolver.Resolve(stmts, sink)
	return stmts, distances, sink
}

func TestResolveLocalVariableDistance(t *testing.T) {
	stmts, distances, sink := resolveSrc(t, `
		var a = 1;
		{
			var b = 2;
			a = b;
		}
	`)
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}

	block := stmts[1].(*ast.BlockStmt)
	assignStmt := block.Stmts[1].(*ast.ExpressionStmt)
	assign := assignStmt.Expr.(*ast.AssignExpr)

	// a is declared globally, so the assignment to it from within the block isn't in the distance table.
	if _, ok := distances[assign.ID()]; ok {
		t.Errorf("assignment to global %q should not have a recorded distance", "a")
	}

	// b is declared in the block's own scope, so reading it from within the block resolves at distance 0.
	b := assign.Value.(*ast.VariableExpr)
	if d, ok := distances[b.ID()]; !ok || d != 0 {
		t.Errorf("distance for local %q = %v, ok=%v, want 0, true", "b", d, ok)
	}
}

func TestResolveDoesNotRejectShadowingInitializer(t *testing.T) {
	// var x = x; inside a scope that shadows an outer x is legitimate: it isn't flagged as a static error, the
	// way a dedicated "can't read local variable in its own initializer" check would.
	_, _, sink := resolveSrc(t, `var a = 1; { var a = a; }`)
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}
}

func TestResolveRejectsDuplicateDeclarationInSameScope(t *testing.T) {
	_, _, sink := resolveSrc(t, `{ var a = 1; var a = 2; }`)
	if !sink.HadError() {
		t.Fatal("expected an error")
	}
	if !strings.Contains(sink.Err().Error(), "already been declared") {
		t.Errorf("error %q does not mention duplicate declaration", sink.Err())
	}
}

func TestResolveRejectsBreakOutsideLoop(t *testing.T) {
	_, _, sink := resolveSrc(t, `break;`)
	if !sink.HadError() {
		t.Fatal("expected an error")
	}
	if !strings.Contains(sink.Err().Error(), "'break'") {
		t.Errorf("error %q does not mention break", sink.Err())
	}
}

func TestResolveRejectsReturnOutsideFunction(t *testing.T) {
	_, _, sink := resolveSrc(t, `return 1;`)
	if !sink.HadError() {
		t.Fatal("expected an error")
	}
	if !strings.Contains(sink.Err().Error(), "'return'") {
		t.Errorf("error %q does not mention return", sink.Err())
	}
}

func TestResolveRejectsThisOutsideMethod(t *testing.T) {
	_, _, sink := resolveSrc(t, `print(this);`)
	if !sink.HadError() {
		t.Fatal("expected an error")
	}
	if !strings.Contains(sink.Err().Error(), "'this'") {
		t.Errorf("error %q does not mention this", sink.Err())
	}
}

func TestResolveRejectsSuperWithoutSuperclass(t *testing.T) {
	_, _, sink := resolveSrc(t, `class A { f() { return super.f(); } }`)
	if !sink.HadError() {
		t.Fatal("expected an error")
	}
	if !strings.Contains(sink.Err().Error(), "superclass") {
		t.Errorf("error %q does not mention the missing superclass", sink.Err())
	}
}

func TestResolveAcceptsSuperInSubclassMethod(t *testing.T) {
	_, _, sink := resolveSrc(t, `
		class A { greet() { return "hi"; } }
		class B < A { greet() { return super.greet(); } }
	`)
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}
}

func TestResolveClosedOverVariableDistance(t *testing.T) {
	// inc assigns to i, which is declared by the enclosing function make: the assignment resolves one scope
	// out, from inc's own scope to make's.
	stmts, distances, sink := resolveSrc(t, `
		fun make() {
			var i = 0;
			fun inc() {
				i = i + 1;
				return i;
			}
			return inc;
		}
	`)
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}
	makeFn := stmts[0].(*ast.FunctionStmt)
	incFn := makeFn.Body[1].(*ast.FunctionStmt)
	assign := incFn.Body[0].(*ast.ExpressionStmt).Expr.(*ast.AssignExpr)
	if d, ok := distances[assign.ID()]; !ok || d != 1 {
		t.Errorf("distance for closed-over %q = %v, ok=%v, want 1, true", "i", d, ok)
	}
}
