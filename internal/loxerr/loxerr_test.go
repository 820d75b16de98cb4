package loxerr_test

import (
	"strings"
	"testing"

	"github.com/marcuscaisey/golox/internal/loxerr"
	"github.com/marcuscaisey/golox/internal/token"
)

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *loxerr.Error
		want string
	}{
		{
			name: "lex error has no where clause",
			err:  loxerr.NewLex(3, "unexpected character: %q", '@'),
			want: `[line 3] Error: unexpected character: '@'`,
		},
		{
			name: "parse error at EOF",
			err:  loxerr.NewAtToken(token.Token{Kind: token.EOF, Line: 5}, "expected expression"),
			want: `[line 5] Error at end: expected expression`,
		},
		{
			name: "parse error at token",
			err:  loxerr.NewAtToken(token.Token{Kind: token.Ident, Lexeme: "x", Line: 2}, "%s has not been defined", "x"),
			want: `[line 2] Error at 'x': x has not been defined`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSinkErrSortsByLine(t *testing.T) {
	sink := &loxerr.Sink{}
	sink.Add(loxerr.NewLex(3, "third"))
	sink.Add(loxerr.NewLex(1, "first"))
	sink.Add(loxerr.NewLex(2, "second"))

	err := sink.Err()
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
	lines := strings.Split(err.Error(), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[0], "first") || !strings.Contains(lines[1], "second") || !strings.Contains(lines[2], "third") {
		t.Errorf("errors not sorted by line:\n%s", err)
	}
}

func TestSinkHadStaticError(t *testing.T) {
	sink := &loxerr.Sink{}
	if sink.HadStaticError() {
		t.Fatal("expected HadStaticError to be false for an empty sink")
	}

	sink.Add(loxerr.NewRuntime(token.Token{Lexeme: "x", Line: 1}, "boom"))
	if sink.HadStaticError() {
		t.Fatal("expected HadStaticError to be false for a runtime-only sink")
	}

	sink.Add(loxerr.NewLex(1, "boom"))
	if !sink.HadStaticError() {
		t.Fatal("expected HadStaticError to be true once a static diagnostic is recorded")
	}
}

func TestSinkResetClears(t *testing.T) {
	sink := &loxerr.Sink{}
	sink.Add(loxerr.NewLex(1, "boom"))
	if !sink.HadError() {
		t.Fatal("expected HadError to be true")
	}
	sink.Reset()
	if sink.HadError() {
		t.Fatal("expected HadError to be false after Reset")
	}
	if sink.Err() != nil {
		t.Error("expected Err() to be nil after Reset")
	}
}
