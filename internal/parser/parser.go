// Package parser implements a recursive-descent parser that turns a token stream into an abstract syntax
// tree, recovering from syntax errors at statement boundaries so that a single pass reports every error in the
// source.
package parser

import (
	"github.com/marcuscaisey/golox/internal/ast"
	"github.com/marcuscaisey/golox/internal/loxerr"
	"github.com/marcuscaisey/golox/internal/token"
)

const maxArgs = 255

// unwind is panicked to abandon the current declaration once a syntax error has been reported, then recovered
// by safelyParseDecl so that parsing can resynchronise and continue.
type unwind struct{}

// Parser parses a token stream into a list of statements.
type Parser struct {
	tokens  []token.Token
	pos     int
	tok     token.Token // token currently being considered
	nextTok token.Token

	sink *loxerr.Sink
}

// New constructs a Parser over tokens, reporting syntax errors to sink. tokens must end with an EOF token, as
// produced by scanner.Scan.
func New(tokens []token.Token, sink *loxerr.Sink) *Parser {
	p := &Parser{tokens: tokens, sink: sink}
	p.advance()
	p.advance()
	return p
}

// Parse parses the token stream and returns the resulting statement list. Statements that failed to parse are
// omitted; check the sink for whether any errors were reported.
func (p *Parser) Parse() []ast.Stmt {
	var stmts []ast.Stmt
	for p.tok.Kind != token.EOF {
		if stmt, ok := p.safelyParseDecl(); ok {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

func (p *Parser) safelyParseDecl() (stmt ast.Stmt, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isUnwind := r.(unwind); isUnwind {
				p.synchronize()
				ok = false
				return
			}
			panic(r)
		}
	}()
	return p.parseDecl(), true
}

// synchronize advances the parser to the next statement boundary after a syntax error: past the next ';', or
// up to the next token that starts a new statement.
func (p *Parser) synchronize() {
	for p.tok.Kind != token.EOF {
		switch p.tok.Kind {
		case token.Semicolon:
			p.advance()
			return
		case token.Class, token.Fun, token.Var, token.For, token.If, token.While, token.Return:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseDecl() ast.Stmt {
	switch {
	case p.match(token.Class):
		return p.parseClassDecl()
	case p.match(token.Fun):
		return p.parseFunDecl("function")
	case p.match(token.Var):
		return p.parseVarDecl()
	default:
		return p.parseStmt()
	}
}

func (p *Parser) parseClassDecl() ast.Stmt {
	name := p.expect(token.Ident, "expected class name")
	var superclass *ast.VariableExpr
	if p.match(token.Less) {
		superclassName := p.expect(token.Ident, "expected superclass name")
		superclass = ast.NewVariableExpr(superclassName)
	}
	p.expect(token.LeftBrace, "expected '{' before class body")
	var methods []*ast.FunctionStmt
	for p.tok.Kind != token.RightBrace && p.tok.Kind != token.EOF {
		methods = append(methods, p.parseFunDecl("method"))
	}
	p.expect(token.RightBrace, "expected '}' after class body")
	return &ast.ClassStmt{Name: name, Superclass: superclass, Methods: methods}
}

func (p *Parser) parseFunDecl(kind string) *ast.FunctionStmt {
	name := p.expect(token.Ident, "expected "+kind+" name")
	p.expect(token.LeftParen, "expected '(' after "+kind+" name")
	params := p.parseParams()
	p.expect(token.RightParen, "expected ')' after parameters")
	p.expect(token.LeftBrace, "expected '{' before "+kind+" body")
	body := p.parseBlock()
	return &ast.FunctionStmt{Name: name, Params: params, Body: body}
}

func (p *Parser) parseParams() []token.Token {
	var params []token.Token
	if p.tok.Kind == token.RightParen {
		return params
	}
	for {
		if len(params) >= maxArgs {
			p.errorAtCurrent("can't have more than %d parameters", maxArgs)
		}
		params = append(params, p.expect(token.Ident, "expected parameter name"))
		if !p.match(token.Comma) {
			break
		}
	}
	return params
}

func (p *Parser) parseVarDecl() ast.Stmt {
	name := p.expect(token.Ident, "expected variable name")
	var init ast.Expr
	if p.match(token.Assign) {
		init = p.parseExpr()
	}
	p.expect(token.Semicolon, "expected ';' after variable declaration")
	return &ast.VarStmt{Name: name, Initializer: init}
}

func (p *Parser) parseStmt() ast.Stmt {
	switch {
	case p.match(token.If):
		return p.parseIfStmt()
	case p.match(token.While):
		return p.parseWhileStmt()
	case p.match(token.For):
		return p.parseForStmt()
	case p.match(token.Break):
		return p.parseBreakStmt()
	case p.match(token.Continue):
		return p.parseContinueStmt()
	case p.match(token.Return):
		return p.parseReturnStmt()
	case p.match(token.LeftBrace):
		return &ast.BlockStmt{Stmts: p.parseBlock()}
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseBlock() []ast.Stmt {
	var stmts []ast.Stmt
	for p.tok.Kind != token.RightBrace && p.tok.Kind != token.EOF {
		if stmt, ok := p.safelyParseDecl(); ok {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(token.RightBrace, "expected '}' after block")
	return stmts
}

func (p *Parser) parseIfStmt() ast.Stmt {
	p.expect(token.LeftParen, "expected '(' after 'if'")
	cond := p.parseExpr()
	p.expect(token.RightParen, "expected ')' after if condition")
	then := p.parseStmt()
	var els ast.Stmt
	if p.match(token.Else) {
		els = p.parseStmt()
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhileStmt() ast.Stmt {
	p.expect(token.LeftParen, "expected '(' after 'while'")
	cond := p.parseExpr()
	p.expect(token.RightParen, "expected ')' after while condition")
	body := p.parseStmt()
	return &ast.WhileStmt{Cond: cond, Body: body}
}

// parseForStmt parses a C-style for loop into a dedicated ForStmt, rather than desugaring it into a while
// loop: a continue inside the body must still run the update expression before the condition is re-checked,
// which a naive while-loop desugaring (appending the update to the body) can't express, since continue would
// propagate out of the body block before reaching the appended update statement.
func (p *Parser) parseForStmt() ast.Stmt {
	p.expect(token.LeftParen, "expected '(' after 'for'")

	var init ast.Stmt
	switch {
	case p.match(token.Semicolon):
	case p.tok.Kind == token.Var:
		p.advance()
		init = p.parseVarDecl()
	default:
		init = p.parseExprStmt()
	}

	var cond ast.Expr
	if p.tok.Kind != token.Semicolon {
		cond = p.parseExpr()
	}
	p.expect(token.Semicolon, "expected ';' after loop condition")

	var update ast.Expr
	if p.tok.Kind != token.RightParen {
		update = p.parseExpr()
	}
	p.expect(token.RightParen, "expected ')' after for clauses")

	body := p.parseStmt()

	return &ast.ForStmt{Init: init, Cond: cond, Update: update, Body: body}
}

func (p *Parser) parseBreakStmt() ast.Stmt {
	keyword := p.prevTok()
	p.expect(token.Semicolon, "expected ';' after 'break'")
	return &ast.BreakStmt{Keyword: keyword}
}

func (p *Parser) parseContinueStmt() ast.Stmt {
	keyword := p.prevTok()
	p.expect(token.Semicolon, "expected ';' after 'continue'")
	return &ast.ContinueStmt{Keyword: keyword}
}

func (p *Parser) parseReturnStmt() ast.Stmt {
	keyword := p.prevTok()
	var value ast.Expr
	if p.tok.Kind != token.Semicolon {
		value = p.parseExpr()
	}
	p.expect(token.Semicolon, "expected ';' after return value")
	return &ast.ReturnStmt{Keyword: keyword, Value: value}
}

func (p *Parser) parseExprStmt() ast.Stmt {
	expr := p.parseExpr()
	p.expect(token.Semicolon, "expected ';' after expression")
	return &ast.ExpressionStmt{Expr: expr}
}

// Grammar, precedence low to high:
//
//	expression -> sequence
//	sequence   -> assignment ("," assignment)*
//	assignment -> (call ".")? IDENT "=" assignment | ternary
//	ternary    -> logic_or ("?" ternary ":" ternary)?
//	logic_or   -> logic_and ("or" logic_and)*
//	logic_and  -> equality ("and" equality)*
//	equality   -> comparison (("!=" | "==") comparison)*
//	comparison -> term ((">" | ">=" | "<" | "<=") term)*
//	term       -> factor (("-" | "+") factor)*
//	factor     -> unary (("/" | "*") unary)*
//	unary      -> ("!" | "-") unary | call
//	call       -> primary ( "(" args? ")" | "." IDENT )*
//	primary    -> literal | "this" | "super" "." IDENT | IDENT | "(" expression ")" | funExpr

func (p *Parser) parseExpr() ast.Expr {
	return p.parseSequence()
}

func (p *Parser) parseSequence() ast.Expr {
	expr := p.parseAssignment()
	for p.match(token.Comma) {
		op := p.prevTok()
		right := p.parseAssignment()
		expr = ast.NewBinaryExpr(expr, op, right)
	}
	return expr
}

func (p *Parser) parseAssignment() ast.Expr {
	expr := p.parseTernary()

	if p.match(token.Assign) {
		equals := p.prevTok()
		value := p.parseAssignment()
		switch target := expr.(type) {
		case *ast.VariableExpr:
			return ast.NewAssignExpr(target.Name, value)
		case *ast.GetExpr:
			return ast.NewSetExpr(target.Object, target.Name, value)
		default:
			p.sink.Add(loxerr.NewAtToken(equals, "invalid assignment target"))
			return expr
		}
	}

	return expr
}

func (p *Parser) parseTernary() ast.Expr {
	expr := p.parseLogicOr()
	if p.match(token.Question) {
		then := p.parseTernary()
		p.expect(token.Colon, "expected ':' in ternary expression")
		els := p.parseTernary()
		expr = ast.NewTernaryExpr(expr, then, els)
	}
	return expr
}

func (p *Parser) parseLogicOr() ast.Expr {
	expr := p.parseLogicAnd()
	for p.match(token.Or) {
		op := p.prevTok()
		right := p.parseLogicAnd()
		expr = ast.NewLogicalExpr(expr, op, right)
	}
	return expr
}

func (p *Parser) parseLogicAnd() ast.Expr {
	expr := p.parseEquality()
	for p.match(token.And) {
		op := p.prevTok()
		right := p.parseEquality()
		expr = ast.NewLogicalExpr(expr, op, right)
	}
	return expr
}

func (p *Parser) parseEquality() ast.Expr {
	expr := p.parseComparison()
	for p.match(token.NotEqual, token.Equal) {
		op := p.prevTok()
		right := p.parseComparison()
		expr = ast.NewBinaryExpr(expr, op, right)
	}
	return expr
}

func (p *Parser) parseComparison() ast.Expr {
	expr := p.parseTerm()
	for p.match(token.Greater, token.GreaterEqual, token.Less, token.LessEqual) {
		op := p.prevTok()
		right := p.parseTerm()
		expr = ast.NewBinaryExpr(expr, op, right)
	}
	return expr
}

func (p *Parser) parseTerm() ast.Expr {
	expr := p.parseFactor()
	for p.match(token.Minus, token.Plus) {
		op := p.prevTok()
		right := p.parseFactor()
		expr = ast.NewBinaryExpr(expr, op, right)
	}
	return expr
}

func (p *Parser) parseFactor() ast.Expr {
	expr := p.parseUnary()
	for p.match(token.Slash, token.Asterisk) {
		op := p.prevTok()
		right := p.parseUnary()
		expr = ast.NewBinaryExpr(expr, op, right)
	}
	return expr
}

func (p *Parser) parseUnary() ast.Expr {
	if p.match(token.Not, token.Minus) {
		op := p.prevTok()
		right := p.parseUnary()
		return ast.NewUnaryExpr(op, right)
	}
	if p.match(token.Plus) {
		p.errorAt(p.prevTok(), "unary '+' expressions are not supported")
		return p.parseUnary()
	}
	return p.parseCall()
}

func (p *Parser) parseCall() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch {
		case p.match(token.LeftParen):
			expr = p.finishCall(expr)
		case p.match(token.Dot):
			name := p.expect(token.Ident, "expected property name after '.'")
			expr = ast.NewGetExpr(expr, name)
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if p.tok.Kind != token.RightParen {
		for {
			if len(args) >= maxArgs {
				p.errorAtCurrent("can't have more than %d arguments", maxArgs)
			}
			args = append(args, p.parseAssignment())
			if !p.match(token.Comma) {
				break
			}
		}
	}
	paren := p.expect(token.RightParen, "expected ')' after arguments")
	return ast.NewCallExpr(callee, paren, args)
}

func (p *Parser) parsePrimary() ast.Expr {
	switch {
	case p.match(token.False):
		return ast.NewLiteralExpr(false)
	case p.match(token.True):
		return ast.NewLiteralExpr(true)
	case p.match(token.Nil):
		return ast.NewLiteralExpr(nil)
	case p.match(token.Number):
		return ast.NewLiteralExpr(p.prevTok().Literal.(float64))
	case p.match(token.String):
		return ast.NewLiteralExpr(p.prevTok().Literal.(string))
	case p.match(token.This):
		return ast.NewThisExpr(p.prevTok())
	case p.match(token.Super):
		keyword := p.prevTok()
		p.expect(token.Dot, "expected '.' after 'super'")
		method := p.expect(token.Ident, "expected superclass method name")
		return ast.NewSuperExpr(keyword, method)
	case p.match(token.Ident):
		return ast.NewVariableExpr(p.prevTok())
	case p.match(token.LeftParen):
		expr := p.parseExpr()
		p.expect(token.RightParen, "expected ')' after expression")
		return ast.NewGroupingExpr(expr)
	case p.match(token.Fun):
		return p.parseFunExpr()
	case isBinaryOperator(p.tok.Kind):
		op := p.tok
		p.errorAt(op, "not a unary operator")
		p.advance()
		return p.parseUnary()
	default:
		p.errorAtCurrent("expected expression")
		panic(unwind{})
	}
}

func (p *Parser) parseFunExpr() ast.Expr {
	p.expect(token.LeftParen, "expected '(' after 'fun'")
	params := p.parseParams()
	p.expect(token.RightParen, "expected ')' after parameters")
	p.expect(token.LeftBrace, "expected '{' before function body")
	body := p.parseBlock()
	return ast.NewFunctionExpr(params, body)
}

func isBinaryOperator(k token.Kind) bool {
	switch k {
	case token.Asterisk, token.Slash, token.Equal, token.NotEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		return true
	default:
		return false
	}
}

// match reports whether the current token is one of kinds and advances past it if so.
func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.tok.Kind == k {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes the current token if it's of kind k, otherwise reports msg and unwinds the current
// declaration.
func (p *Parser) expect(k token.Kind, msg string) token.Token {
	if p.tok.Kind == k {
		tok := p.tok
		p.advance()
		return tok
	}
	p.errorAtCurrent(msg)
	panic(unwind{})
}

func (p *Parser) advance() {
	p.tok = p.nextTok
	if p.pos < len(p.tokens) {
		p.nextTok = p.tokens[p.pos]
		p.pos++
	}
}

func (p *Parser) prevTok() token.Token {
	// Valid immediately after a match/expect call: p.tok has already moved past the consumed token, so we
	// recover it from the token list. While p.tok is before the final EOF token it sits at p.tokens[p.pos-2], so
	// the consumed token is the one before it; once p.tok is EOF, p.pos stops advancing, so EOF sits at
	// p.tokens[p.pos-1] and the consumed token at p.tokens[p.pos-2].
	idx := p.pos - 3
	if p.tok.Kind == token.EOF {
		idx = p.pos - 2
	}
	if idx < 0 {
		return token.Token{}
	}
	return p.tokens[idx]
}

func (p *Parser) errorAtCurrent(format string, args ...any) {
	p.errorAt(p.tok, format, args...)
}

func (p *Parser) errorAt(tok token.Token, format string, args ...any) {
	p.sink.Add(loxerr.NewAtToken(tok, format, args...))
}
