// Package token defines Token, which represents a lexical token of the Lox programming language.
package token

import "fmt"

//go:generate go run golang.org/x/tools/cmd/stringer -type Kind

// Kind identifies the lexical class of a token.
type Kind uint8

// The list of all token kinds.
const (
	Illegal Kind = iota
	EOF

	// Keywords
	keywordsStart
	Var
	True
	False
	Nil
	If
	Else
	And
	Or
	While
	For
	Break
	Continue
	Fun
	Return
	Class
	This
	Super
	keywordsEnd

	// Literals
	Ident
	String
	Number

	// Symbols
	Semicolon
	Comma
	Dot
	Question
	Colon
	Assign
	Plus
	Minus
	Asterisk
	Slash
	Less
	LessEqual
	Greater
	GreaterEqual
	Equal
	NotEqual
	Not
	LeftParen
	RightParen
	LeftBrace
	RightBrace
)

var kindNames = map[Kind]string{
	Illegal:       "illegal",
	EOF:           "EOF",
	keywordsStart: "keywordsStart",
	Var:           "var",
	True:          "true",
	False:         "false",
	Nil:           "nil",
	If:            "if",
	Else:          "else",
	And:           "and",
	Or:            "or",
	While:         "while",
	For:           "for",
	Break:         "break",
	Continue:      "continue",
	Fun:           "fun",
	Return:        "return",
	Class:         "class",
	This:          "this",
	Super:         "super",
	keywordsEnd:   "keywordsEnd",
	Ident:         "identifier",
	String:        "string",
	Number:        "number",
	Semicolon:     ";",
	Comma:         ",",
	Dot:           ".",
	Question:      "?",
	Colon:         ":",
	Assign:        "=",
	Plus:          "+",
	Minus:         "-",
	Asterisk:      "*",
	Slash:         "/",
	Less:          "<",
	LessEqual:     "<=",
	Greater:       ">",
	GreaterEqual:  ">=",
	Equal:         "==",
	NotEqual:      "!=",
	Not:           "!",
	LeftParen:     "(",
	RightParen:    ")",
	LeftBrace:     "{",
	RightBrace:    "}",
}

// String returns the name of the token kind, as used in keyword lookup and diagnostic messages.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Format implements fmt.Formatter. All verbs have the default behaviour, except for 'm' (message) which formats the
// kind quoted for use in a diagnostic message.
func (k Kind) Format(f fmt.State, verb rune) {
	if verb == 'm' {
		fmt.Fprintf(f, "'%s'", k.String())
		return
	}
	if verb == 's' || verb == 'v' || verb == 'q' {
		fmt.Fprintf(f, fmt.FormatString(f, verb), k.String())
		return
	}
	fmt.Fprintf(f, fmt.FormatString(f, verb), uint8(k))
}

var keywordsByIdent = func() map[string]Kind {
	m := make(map[string]Kind, keywordsEnd-keywordsStart-1)
	for k := keywordsStart + 1; k < keywordsEnd; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

// LookupIdent reports the keyword Kind associated with ident, or Ident if it isn't a keyword.
func LookupIdent(ident string) Kind {
	if kind, ok := keywordsByIdent[ident]; ok {
		return kind
	}
	return Ident
}

// Token is a lexical token of Lox source code.
//
// Literal holds the decoded literal value for Number and String tokens (a float64 or a string with
// quotes/delimiters already stripped) and is nil for every other kind.
type Token struct {
	Kind    Kind
	Lexeme  string
	Literal any
	Line    int
}

func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s(%q, %v)", t.Kind, t.Lexeme, t.Literal)
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Lexeme)
}
