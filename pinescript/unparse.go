package pinescript

import (
	"fmt"
	"strings"
)

// Unparse renders a full script: annotations first, then the body.
func Unparse(script *Script) string {
	var sb strings.Builder
	for _, ann := range script.Annotations {
		sb.WriteString(ann)
		sb.WriteByte('\n')
	}
	for _, stmt := range script.Body {
		sb.WriteString(UnparseStmt(stmt))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// UnparseStmt renders a single statement, without a trailing newline.
// Block statements render their bodies on indented continuation lines.
func UnparseStmt(stmt Stmt) string {
	var sb strings.Builder
	writeStmt(&sb, stmt, 0)
	return sb.String()
}

const indentUnit = "    "

func writeStmt(sb *strings.Builder, stmt Stmt, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	sb.WriteString(indent)

	switch s := stmt.(type) {
	case *ImportStmt:
		fmt.Fprintf(sb, "import %s/%s/%d", s.Namespace, s.Name, s.Version)
		if s.Alias != "" {
			sb.WriteString(" as " + s.Alias)
		}

	case *FuncDef:
		if s.Method {
			sb.WriteString("method ")
		}
		sb.WriteString(s.Name)
		sb.WriteByte('(')
		for i, param := range s.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			if param.Type != "" {
				sb.WriteString(param.Type + " ")
			}
			sb.WriteString(param.Name)
			if param.Default != nil {
				sb.WriteString(" = " + unparseExpr(param.Default, 0))
			}
		}
		sb.WriteString(") =>")
		if s.Expr != nil {
			sb.WriteString(" " + unparseExpr(s.Expr, 0))
		} else {
			writeBody(sb, s.Body, depth+1)
		}

	case *AssignStmt:
		if s.Decl != "" {
			sb.WriteString(s.Decl + " ")
		}
		if s.Type != "" {
			sb.WriteString(s.Type + " ")
		}
		sb.WriteString(unparseExpr(s.Target, 0))
		sb.WriteString(" " + s.Op + " ")
		sb.WriteString(unparseExpr(s.Value, 0))

	case *ExprStmt:
		sb.WriteString(unparseExpr(s.X, 0))

	case *IfStmt:
		sb.WriteString("if " + unparseExpr(s.Cond, 0))
		writeBody(sb, s.Body, depth+1)
		if len(s.Else) == 1 {
			if nested, ok := s.Else[0].(*IfStmt); ok {
				sb.WriteByte('\n')
				sb.WriteString(indent + "else ")
				var tail strings.Builder
				writeStmt(&tail, nested, depth)
				sb.WriteString(strings.TrimPrefix(tail.String(), indent))
				return
			}
		}
		if s.Else != nil {
			sb.WriteByte('\n')
			sb.WriteString(indent + "else")
			writeBody(sb, s.Else, depth+1)
		}

	case *ForStmt:
		if s.In != nil {
			fmt.Fprintf(sb, "for %s in %s", s.Var, unparseExpr(s.In, 0))
		} else {
			fmt.Fprintf(sb, "for %s = %s to %s", s.Var, unparseExpr(s.From, 0), unparseExpr(s.To, 0))
			if s.Step != nil {
				sb.WriteString(" by " + unparseExpr(s.Step, 0))
			}
		}
		writeBody(sb, s.Body, depth+1)

	case *WhileStmt:
		sb.WriteString("while " + unparseExpr(s.Cond, 0))
		writeBody(sb, s.Body, depth+1)
	}
}

func writeBody(sb *strings.Builder, body []Stmt, depth int) {
	for _, stmt := range body {
		sb.WriteByte('\n')
		writeStmt(sb, stmt, depth)
	}
}

// Operator precedence levels for minimal re-parenthesization.
const (
	precTernary = iota + 1
	precOr
	precAnd
	precNot
	precComparison
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

func opPrec(op string) int {
	switch op {
	case "or":
		return precOr
	case "and":
		return precAnd
	case "==", "!=", "<", "<=", ">", ">=":
		return precComparison
	case "+", "-":
		return precAdditive
	case "*", "/", "%":
		return precMultiplicative
	}
	return precPostfix
}

func exprPrec(x Expr) int {
	switch e := x.(type) {
	case *TernaryExpr:
		return precTernary
	case *BinaryExpr:
		return opPrec(e.Op)
	case *UnaryExpr:
		if e.Op == "not" {
			return precNot
		}
		return precUnary
	}
	return precPostfix
}

// unparseExpr renders x, parenthesizing when its precedence is below the
// minimum the surrounding context requires.
func unparseExpr(x Expr, minPrec int) string {
	rendered := renderExpr(x)
	if exprPrec(x) < minPrec {
		return "(" + rendered + ")"
	}
	return rendered
}

func renderExpr(x Expr) string {
	switch e := x.(type) {
	case *Ident:
		return e.Name

	case *NumberLit:
		return e.Value

	case *StringLit:
		quote := string(e.Quote)
		if e.Quote == 0 {
			quote = `"`
		}
		return quote + e.Value + quote

	case *BoolLit:
		if e.Value {
			return "true"
		}
		return "false"

	case *ColorLit:
		return e.Value

	case *BinaryExpr:
		prec := opPrec(e.Op)
		return unparseExpr(e.Left, prec) + " " + e.Op + " " + unparseExpr(e.Right, prec+1)

	case *UnaryExpr:
		if e.Op == "not" {
			return "not " + unparseExpr(e.Operand, precNot)
		}
		return e.Op + unparseExpr(e.Operand, precUnary)

	case *TernaryExpr:
		return unparseExpr(e.Cond, precOr) + " ? " + unparseExpr(e.Then, precTernary) +
			" : " + unparseExpr(e.Else, precTernary)

	case *CallExpr:
		var sb strings.Builder
		sb.WriteString(unparseExpr(e.Func, precPostfix))
		sb.WriteByte('(')
		for i, arg := range e.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			if arg.Name != "" {
				sb.WriteString(arg.Name + "=")
			}
			sb.WriteString(unparseExpr(arg.Value, 0))
		}
		sb.WriteByte(')')
		return sb.String()

	case *AttrExpr:
		return unparseExpr(e.X, precPostfix) + "." + e.Name

	case *IndexExpr:
		return unparseExpr(e.X, precPostfix) + "[" + unparseExpr(e.Index, 0) + "]"

	case *TupleExpr:
		parts := make([]string, len(e.Elems))
		for i, elem := range e.Elems {
			parts[i] = unparseExpr(elem, 0)
		}
		return "[" + strings.Join(parts, ", ") + "]"

	case *GroupExpr:
		parts := make([]string, len(e.Elems))
		for i, elem := range e.Elems {
			parts[i] = unparseExpr(elem, 0)
		}
		return strings.Join(parts, ", ")
	}
	return ""
}
