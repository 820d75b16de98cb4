package scanner_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/marcuscaisey/golox/internal/loxerr"
	"github.com/marcuscaisey/golox/internal/scanner"
	"github.com/marcuscaisey/golox/internal/token"
)

func scan(t *testing.T, src string) ([]token.Token, *loxerr.Sink) {
	t.Helper()
	sink := &loxerr.Sink{}
	toks := scanner.New(src, sink).Scan()
	return toks, sink
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks, sink := scan(t, "(){},.-+;*:?/! != = == > >= < <=")
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}

	var got []token.Kind
	for _, tok := range toks {
		got = append(got, tok.Kind)
	}
	want := []token.Kind{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon, token.Asterisk,
		token.Colon, token.Question, token.Slash,
		token.Not, token.NotEqual, token.Assign, token.Equal,
		token.Greater, token.GreaterEqual, token.Less, token.LessEqual,
		token.EOF,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestScanAlwaysTerminatesWithEOF(t *testing.T) {
	toks, _ := scan(t, "@#$")
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.EOF {
		t.Fatalf("scan of invalid source did not terminate with EOF: %v", toks)
	}
}

func TestScanString(t *testing.T) {
	toks, sink := scan(t, `"hello world"`)
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}
	if len(toks) != 2 {
		t.Fatalf("got %d tokens, want 2", len(toks))
	}
	if toks[0].Kind != token.String || toks[0].Literal != "hello world" {
		t.Errorf("got %+v, want String token with literal %q", toks[0], "hello world")
	}
}

func TestScanUnterminatedStringReportsOpeningLine(t *testing.T) {
	_, sink := scan(t, "var a = 1;\n\"unterminated")
	if !sink.HadError() {
		t.Fatal("expected an error")
	}
	err := sink.Err().Error()
	if !strings.HasPrefix(err, "[line 2]") {
		t.Errorf("error %q does not report the opening line", err)
	}
}

func TestScanNumber(t *testing.T) {
	toks, sink := scan(t, "123 45.67")
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}
	if len(toks) != 3 {
		t.Fatalf("got %d tokens, want 3", len(toks))
	}
	if toks[0].Literal != float64(123) || toks[1].Literal != float64(45.67) {
		t.Errorf("got literals %v, %v", toks[0].Literal, toks[1].Literal)
	}
}

func TestScanKeywordsAndIdents(t *testing.T) {
	toks, sink := scan(t, "var x = true and false")
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []token.Kind{token.Var, token.Ident, token.Assign, token.True, token.And, token.False, token.EOF}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("token kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestScanLineComment(t *testing.T) {
	toks, sink := scan(t, "1 // this is a comment\n2")
	if sink.HadError() {
		t.Fatalf("unexpected error: %s", sink.Err())
	}
	if diff := cmp.Diff([]any{float64(1), float64(2)}, []any{toks[0].Literal, toks[1].Literal}); diff != "" {
		t.Errorf("literals mismatch (-want +got):\n%s", diff)
	}
}

func TestScanContinuesPastLexErrors(t *testing.T) {
	_, sink := scan(t, "@ # $")
	if !sink.HadError() {
		t.Fatal("expected errors")
	}
}
