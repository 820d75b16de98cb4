package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print prints stmts to stdout as an indented s-expression, in the style used by the -p flag of cmd/golox.
func Print(stmts []Stmt) {
	fmt.Println(SprintStmts(stmts))
}

// SprintStmts formats a list of statements as an indented s-expression.
func SprintStmts(stmts []Stmt) string {
	var b strings.Builder
	for i, stmt := range stmts {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sprintStmt(stmt, 0))
	}
	return b.String()
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func sprintStmt(stmt Stmt, depth int) string {
	switch s := stmt.(type) {
	case *ExpressionStmt:
		return fmt.Sprintf("%s(expr %s)", indent(depth), sprintExpr(s.Expr))
	case *VarStmt:
		if s.Initializer == nil {
			return fmt.Sprintf("%s(var %s)", indent(depth), s.Name.Lexeme)
		}
		return fmt.Sprintf("%s(var %s %s)", indent(depth), s.Name.Lexeme, sprintExpr(s.Initializer))
	case *BlockStmt:
		var b strings.Builder
		fmt.Fprintf(&b, "%s(block", indent(depth))
		for _, inner := range s.Stmts {
			b.WriteString("\n")
			b.WriteString(sprintStmt(inner, depth+1))
		}
		b.WriteString(")")
		return b.String()
	case *IfStmt:
		var b strings.Builder
		fmt.Fprintf(&b, "%s(if %s\n%s", indent(depth), sprintExpr(s.Cond), sprintStmt(s.Then, depth+1))
		if s.Else != nil {
			b.WriteString("\n")
			b.WriteString(sprintStmt(s.Else, depth+1))
		}
		b.WriteString(")")
		return b.String()
	case *WhileStmt:
		return fmt.Sprintf("%s(while %s\n%s)", indent(depth), sprintExpr(s.Cond), sprintStmt(s.Body, depth+1))
	case *ForStmt:
		var b strings.Builder
		fmt.Fprintf(&b, "%s(for", indent(depth))
		if s.Init != nil {
			b.WriteString("\n")
			b.WriteString(sprintStmt(s.Init, depth+1))
		}
		if s.Cond != nil {
			fmt.Fprintf(&b, "\n%s%s", indent(depth+1), sprintExpr(s.Cond))
		}
		if s.Update != nil {
			fmt.Fprintf(&b, "\n%s%s", indent(depth+1), sprintExpr(s.Update))
		}
		b.WriteString("\n")
		b.WriteString(sprintStmt(s.Body, depth+1))
		b.WriteString(")")
		return b.String()
	case *BreakStmt:
		return fmt.Sprintf("%s(break)", indent(depth))
	case *ContinueStmt:
		return fmt.Sprintf("%s(continue)", indent(depth))
	case *FunctionStmt:
		params := make([]string, len(s.Params))
		for i, p := range s.Params {
			params[i] = p.Lexeme
		}
		return fmt.Sprintf("%s(fun %s (%s)\n%s)", indent(depth), s.Name.Lexeme, strings.Join(params, " "), sprintBody(s.Body, depth+1))
	case *ReturnStmt:
		if s.Value == nil {
			return fmt.Sprintf("%s(return)", indent(depth))
		}
		return fmt.Sprintf("%s(return %s)", indent(depth), sprintExpr(s.Value))
	case *ClassStmt:
		var b strings.Builder
		fmt.Fprintf(&b, "%s(class %s", indent(depth), s.Name.Lexeme)
		if s.Superclass != nil {
			fmt.Fprintf(&b, " < %s", s.Superclass.Name.Lexeme)
		}
		for _, m := range s.Methods {
			b.WriteString("\n")
			b.WriteString(sprintStmt(m, depth+1))
		}
		b.WriteString(")")
		return b.String()
	default:
		panic(fmt.Sprintf("ast: unexpected statement type: %T", stmt))
	}
}

func sprintBody(body []Stmt, depth int) string {
	var b strings.Builder
	for i, stmt := range body {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sprintStmt(stmt, depth))
	}
	return b.String()
}

func sprintExpr(expr Expr) string {
	switch e := expr.(type) {
	case *LiteralExpr:
		return sprintLiteral(e.Value)
	case *VariableExpr:
		return e.Name.Lexeme
	case *AssignExpr:
		return fmt.Sprintf("(= %s %s)", e.Name.Lexeme, sprintExpr(e.Value))
	case *UnaryExpr:
		return fmt.Sprintf("(%s %s)", e.Op.Lexeme, sprintExpr(e.Right))
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", e.Op.Lexeme, sprintExpr(e.Left), sprintExpr(e.Right))
	case *LogicalExpr:
		return fmt.Sprintf("(%s %s %s)", e.Op.Lexeme, sprintExpr(e.Left), sprintExpr(e.Right))
	case *TernaryExpr:
		return fmt.Sprintf("(?: %s %s %s)", sprintExpr(e.Cond), sprintExpr(e.Then), sprintExpr(e.Else))
	case *GroupingExpr:
		return fmt.Sprintf("(group %s)", sprintExpr(e.Inner))
	case *CallExpr:
		var b strings.Builder
		fmt.Fprintf(&b, "(call %s", sprintExpr(e.Callee))
		for _, arg := range e.Args {
			fmt.Fprintf(&b, " %s", sprintExpr(arg))
		}
		b.WriteString(")")
		return b.String()
	case *GetExpr:
		return fmt.Sprintf("(get %s %s)", sprintExpr(e.Object), e.Name.Lexeme)
	case *SetExpr:
		return fmt.Sprintf("(set %s %s %s)", sprintExpr(e.Object), e.Name.Lexeme, sprintExpr(e.Value))
	case *ThisExpr:
		return "this"
	case *SuperExpr:
		return fmt.Sprintf("(super %s)", e.Method.Lexeme)
	case *FunctionExpr:
		return fmt.Sprintf("(fun (%d params))", len(e.Params))
	default:
		panic(fmt.Sprintf("ast: unexpected expression type: %T", expr))
	}
}

func sprintLiteral(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return strconv.Quote(v)
	default:
		panic(fmt.Sprintf("ast: unexpected literal value type: %T", value))
	}
}
