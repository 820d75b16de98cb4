package interp_test

import (
	"os"
	"strings"
	"testing"

	"github.com/marcuscaisey/golox/internal/interp"
	"github.com/marcuscaisey/golox/internal/loxerr"
	"github.com/marcuscaisey/golox/internal/parser"
	"github.com/marcuscaisey/golox/internal/scanner"
)

// captureStdout redirects os.Stdout for the duration of fn and returns what was written to it. The native
// print/println functions write directly to os.Stdout, so this is the only way to observe their output without
// spawning a subprocess.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	var b strings.Builder
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		b.Write(buf[:n])
		if err != nil {
			break
		}
	}
	return b.String()
}

func runLox(t *testing.T, src string) (string, *loxerr.Sink) {
	t.Helper()
	sink := &loxerr.Sink{}
	i := interp.New()
	out := captureStdout(t, func() {
		toks := scanner.New(src, sink).Scan()
		stmts := parser.New(toks, sink).Parse()
		if sink.HadError() {
			return
		}
		i.Interpret(stmts, sink)
	})
	return out, sink
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "arithmetic and println",
			src:  `var a = 1; var b = 2; println(a + b);`,
			want: "3\n",
		},
		{
			name: "closure keeps its captured state across calls",
			src: `
				fun make() { var i = 0; fun inc() { i = i + 1; return i; } return inc; }
				var f = make();
				println(f());
				println(f());
				println(f());
			`,
			want: "1\n2\n3\n",
		},
		{
			name: "single inheritance and super",
			src: `
				class A { greet() { return "hi"; } }
				class B < A { greet() { return super.greet() + "!"; } }
				println(B().greet());
			`,
			want: "hi!\n",
		},
		{
			name: "initializer sets fields",
			src:  `class C { init(x) { this.x = x; } } println(C(7).x);`,
			want: "7\n",
		},
		{
			name: "block scoping restores outer binding",
			src:  `var x = 10; { var x = 20; println(x); } println(x);`,
			want: "20\n10\n",
		},
		{
			name: "break exits the loop early",
			src:  `for (var i = 0; i < 3; i = i + 1) { if (i == 2) break; println(i); }`,
			want: "0\n1\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, sink := runLox(t, tt.src)
			if sink.HadError() {
				t.Fatalf("unexpected error: %s", sink.Err())
			}
			if out != tt.want {
				t.Errorf("stdout = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestDivisionByZeroIsARuntimeError(t *testing.T) {
	_, sink := runLox(t, `println(1 / 0);`)
	if !sink.HadError() {
		t.Fatal("expected a runtime error")
	}
	if !strings.Contains(sink.Err().Error(), "Division by zero") {
		t.Errorf("error %q does not mention division by zero", sink.Err())
	}
}

func TestNumberStringificationDropsTrailingZero(t *testing.T) {
	out, sink := runLox(t, `println(6 / 2); println(1 / 4);`)
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}
	if out != "3\n0.25\n" {
		t.Errorf("got %q, want %q", out, "3\n0.25\n")
	}
}

func TestPrintVsPrintlnNewlineDifference(t *testing.T) {
	out, sink := runLox(t, `print("a"); print("b"); println("c");`)
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}
	if out != "abc\n" {
		t.Errorf("got %q, want %q", out, "abc\n")
	}
}

func TestArgumentsEvaluatedLeftToRight(t *testing.T) {
	out, sink := runLox(t, `
		fun f(a, b, c) { return a; }
		var log = "";
		fun side(tag, v) { log = log + tag; return v; }
		f(side("a", 1), side("b", 2), side("c", 3));
		println(log);
	`)
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}
	if out != "abc\n" {
		t.Errorf("got %q, want %q", out, "abc\n")
	}
}

func TestUndefinedVariableIsARuntimeError(t *testing.T) {
	_, sink := runLox(t, `println(nope);`)
	if !sink.HadError() {
		t.Fatal("expected a runtime error")
	}
}

func TestContinueInForLoopStillRunsUpdate(t *testing.T) {
	// A naive desugaring of for into while-with-appended-update would let continue skip the update
	// expression and loop forever; this exercises that the update still runs on every iteration.
	out, sink := runLox(t, `
		for (var i = 0; i < 5; i = i + 1) {
			if (i == 1) continue;
			println(i);
		}
	`)
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}
	if out != "0\n2\n3\n4\n" {
		t.Errorf("got %q, want %q", out, "0\n2\n3\n4\n")
	}
}

func TestResolveErrorDuringInterpretIsStaticNotRuntime(t *testing.T) {
	// Interpret folds resolution and execution into one call; a resolve-phase error (here, a top-level
	// return) must still be distinguishable from a genuine runtime failure so that the driver can report the
	// right exit code.
	_, sink := runLox(t, `return 1;`)
	if !sink.HadError() {
		t.Fatal("expected an error")
	}
	if !sink.HadStaticError() {
		t.Error("expected a top-level return to be reported as a static error")
	}
}

func TestCallingNonCallableIsARuntimeError(t *testing.T) {
	_, sink := runLox(t, `var a = 1; a();`)
	if !sink.HadError() {
		t.Fatal("expected a runtime error")
	}
	if !strings.Contains(sink.Err().Error(), "can only call") {
		t.Errorf("error %q does not mention the call restriction", sink.Err())
	}
}

func TestInterpreterPersistsStateAcrossCalls(t *testing.T) {
	sink := &loxerr.Sink{}
	i := interp.New()

	run := func(src string) string {
		return captureStdout(t, func() {
			toks := scanner.New(src, sink).Scan()
			stmts := parser.New(toks, sink).Parse()
			i.Interpret(stmts, sink)
		})
	}

	run(`var count = 0;`)
	run(`count = count + 1;`)
	out := run(`println(count);`)
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}
	if out != "1\n" {
		t.Errorf("got %q, want %q", out, "1\n")
	}
}
