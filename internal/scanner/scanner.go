// Package scanner turns Lox source text into a stream of lexical tokens.
package scanner

import (
	"strconv"

	"github.com/marcuscaisey/golox/internal/loxerr"
	"github.com/marcuscaisey/golox/internal/token"
)

const nullChar = 0

// Scanner scans Lox source code into lexical tokens.
type Scanner struct {
	src       string
	start     int // position of the first character of the lexeme being scanned
	pos       int // position of the character currently being considered
	line      int
	startLine int

	sink *loxerr.Sink
}

// New constructs a Scanner which reports lex errors to sink.
func New(src string, sink *loxerr.Sink) *Scanner {
	return &Scanner{src: src, line: 1, sink: sink}
}

// Scan scans the whole source and returns the resulting tokens, always terminated by a single EOF token. Lex
// errors are reported to the sink that the Scanner was constructed with; scanning continues past them so that
// every lexical error in the source is reported in one pass.
func (s *Scanner) Scan() []token.Token {
	var tokens []token.Token
	for {
		tok, ok := s.scanToken()
		if !ok {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens
		}
	}
}

func (s *Scanner) scanToken() (token.Token, bool) {
	s.skipWhitespaceAndComments()
	s.start = s.pos
	s.startLine = s.line

	c := s.advance()
	switch c {
	case nullChar:
		return s.newToken(token.EOF), true
	case '(':
		return s.newToken(token.LeftParen), true
	case ')':
		return s.newToken(token.RightParen), true
	case '{':
		return s.newToken(token.LeftBrace), true
	case '}':
		return s.newToken(token.RightBrace), true
	case ',':
		return s.newToken(token.Comma), true
	case '.':
		return s.newToken(token.Dot), true
	case '-':
		return s.newToken(token.Minus), true
	case '+':
		return s.newToken(token.Plus), true
	case ';':
		return s.newToken(token.Semicolon), true
	case '*':
		return s.newToken(token.Asterisk), true
	case ':':
		return s.newToken(token.Colon), true
	case '?':
		return s.newToken(token.Question), true
	case '/':
		return s.newToken(token.Slash), true
	case '!':
		if s.match('=') {
			return s.newToken(token.NotEqual), true
		}
		return s.newToken(token.Not), true
	case '=':
		if s.match('=') {
			return s.newToken(token.Equal), true
		}
		return s.newToken(token.Assign), true
	case '<':
		if s.match('=') {
			return s.newToken(token.LessEqual), true
		}
		return s.newToken(token.Less), true
	case '>':
		if s.match('=') {
			return s.newToken(token.GreaterEqual), true
		}
		return s.newToken(token.Greater), true
	case '"':
		return s.scanString()
	default:
		switch {
		case isDigit(c):
			return s.scanNumber(), true
		case isAlpha(c):
			return s.scanIdent(), true
		default:
			s.sink.Add(loxerr.NewLex(s.startLine, "unexpected character: %q", c))
			return token.Token{}, false
		}
	}
}

// skipWhitespaceAndComments advances past whitespace and // line comments, tracking line numbers.
func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() == '/' {
				for s.peek() != '\n' && s.peek() != nullChar {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) scanString() (token.Token, bool) {
	for s.peek() != '"' && s.peek() != nullChar {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.peek() == nullChar {
		s.sink.Add(loxerr.NewLex(s.startLine, "unterminated string"))
		return token.Token{}, false
	}
	s.advance() // closing "
	literal := s.src[s.start+1 : s.pos-1]
	return s.newTokenWithLiteral(token.String, literal), true
}

func (s *Scanner) scanNumber() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	value, err := strconv.ParseFloat(s.lexeme(), 64)
	if err != nil {
		panic("scanner: parsing of number literal should never fail: " + err.Error())
	}
	return s.newTokenWithLiteral(token.Number, value)
}

func (s *Scanner) scanIdent() token.Token {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	return s.newToken(token.LookupIdent(s.lexeme()))
}

func (s *Scanner) advance() byte {
	if s.eof() {
		return nullChar
	}
	c := s.src[s.pos]
	s.pos++
	return c
}

func (s *Scanner) match(want byte) bool {
	if s.peek() != want {
		return false
	}
	s.pos++
	return true
}

func (s *Scanner) peek() byte {
	if s.eof() {
		return nullChar
	}
	return s.src[s.pos]
}

func (s *Scanner) peekNext() byte {
	if s.pos+1 >= len(s.src) {
		return nullChar
	}
	return s.src[s.pos+1]
}

func (s *Scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *Scanner) lexeme() string {
	return s.src[s.start:s.pos]
}

func (s *Scanner) newToken(kind token.Kind) token.Token {
	return s.newTokenWithLiteral(kind, nil)
}

func (s *Scanner) newTokenWithLiteral(kind token.Kind, literal any) token.Token {
	return token.Token{
		Kind:    kind,
		Lexeme:  s.lexeme(),
		Literal: literal,
		Line:    s.startLine,
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
