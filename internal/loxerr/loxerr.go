// Package loxerr defines the diagnostic type shared by every pass of the Lox pipeline and the sink that
// collects them.
package loxerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/marcuscaisey/golox/internal/token"
)

// Error describes a single static or runtime failure, attributable to a line in the source and, where the
// failure happened at a specific token, the text of that token.
type Error struct {
	Line   int
	Where  string // "", "end", or the offending lexeme
	Msg    string
	Static bool // false for runtime errors
}

// Error implements error.
//
// The rendering matches spec's diagnostic format:
//
//	[line N] Error<where>: <msg>
func (e *Error) Error() string {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)

	var where string
	switch e.Where {
	case "":
	case "end":
		where = " at end"
	default:
		where = fmt.Sprintf(" at '%s'", e.Where)
	}

	var b strings.Builder
	bold.Fprintf(&b, "[line %d] ", e.Line)
	red.Fprint(&b, "Error")
	fmt.Fprintf(&b, "%s: %s", where, e.Msg)
	return b.String()
}

// NewLex creates an Error for a failure discovered while scanning, identified only by line.
func NewLex(line int, format string, args ...any) *Error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...), Static: true}
}

// NewAtToken creates a static Error (parse or resolve) attributed to tok.
func NewAtToken(tok token.Token, format string, args ...any) *Error {
	where := tok.Lexeme
	if tok.Kind == token.EOF {
		where = "end"
	}
	return &Error{Line: tok.Line, Where: where, Msg: fmt.Sprintf(format, args...), Static: true}
}

// NewRuntime creates a runtime Error attributed to tok.
func NewRuntime(tok token.Token, format string, args ...any) *Error {
	return &Error{Line: tok.Line, Where: tok.Lexeme, Msg: fmt.Sprintf(format, args...)}
}

// Sink collects diagnostics produced during a single run of the pipeline. It replaces the process-wide
// had_error/had_runtime_error globals of the reference implementation with an explicit value that the driver
// can create fresh for each file or REPL line.
type Sink struct {
	errs []*Error
}

// Add records a diagnostic.
func (s *Sink) Add(err *Error) {
	s.errs = append(s.errs, err)
}

// HadError reports whether any diagnostic has been recorded.
func (s *Sink) HadError() bool {
	return len(s.errs) > 0
}

// HadStaticError reports whether any recorded diagnostic came from scanning, parsing, or resolution, as
// opposed to a runtime failure. The driver uses this to distinguish its static-error exit code from its
// runtime-error one when a single Sink has accumulated errors from more than one phase.
func (s *Sink) HadStaticError() bool {
	for _, e := range s.errs {
		if e.Static {
			return true
		}
	}
	return false
}

// Err joins every recorded diagnostic, ordered by line, into a single error. It returns nil if nothing was
// recorded.
func (s *Sink) Err() error {
	if len(s.errs) == 0 {
		return nil
	}
	sorted := make([]*Error, len(s.errs))
	copy(sorted, s.errs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Line < sorted[j].Line })
	errs := make([]error, len(sorted))
	for i, e := range sorted {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Reset clears the sink so that it can be reused.
func (s *Sink) Reset() {
	s.errs = nil
}
