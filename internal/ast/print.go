package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump returns a human-readable representation of the AST.
func Dump(node Node) string {
	var sb strings.Builder
	fprintNode(&sb, node, 0)
	return sb.String()
}

// DumpProgram dumps every top-level statement in order.
func DumpProgram(stmts []Stmt) string {
	var sb strings.Builder
	for _, s := range stmts {
		fprintNode(&sb, s, 0)
	}
	return sb.String()
}

func fprintNode(w io.Writer, n Node, indent int) {
	if n == nil {
		return
	}

	ind := strings.Repeat("  ", indent)

	switch n := n.(type) {
	case *ExprStmt:
		fmt.Fprintf(w, "%sExprStmt\n", ind)
		fprintNode(w, n.Expression, indent+1)

	case *PrintStmt:
		fmt.Fprintf(w, "%sPrintStmt\n", ind)
		fprintNode(w, n.Expression, indent+1)

	case *VarDeclStmt:
		fmt.Fprintf(w, "%sVarDecl name=%s\n", ind, n.Name.Lexeme)
		if n.Initializer != nil {
			fmt.Fprintf(w, "%s  Value:\n", ind)
			fprintNode(w, n.Initializer, indent+2)
		}

	case *BlockStmt:
		fmt.Fprintf(w, "%sBlockStmt\n", ind)
		for _, s := range n.Stmts {
			fprintNode(w, s, indent+1)
		}

	case *IfStmt:
		fmt.Fprintf(w, "%sIfStmt\n", ind)
		fmt.Fprintf(w, "%s  Cond:\n", ind)
		fprintNode(w, n.Cond, indent+2)
		fmt.Fprintf(w, "%s  Then:\n", ind)
		fprintNode(w, n.Then, indent+2)
		if n.Else != nil {
			fmt.Fprintf(w, "%s  Else:\n", ind)
			fprintNode(w, n.Else, indent+2)
		}

	case *WhileStmt:
		fmt.Fprintf(w, "%sWhileStmt\n", ind)
		fmt.Fprintf(w, "%s  Cond:\n", ind)
		fprintNode(w, n.Cond, indent+2)
		fmt.Fprintf(w, "%s  Body:\n", ind)
		fprintNode(w, n.Body, indent+2)

	case *BreakStmt:
		fmt.Fprintf(w, "%sBreakStmt\n", ind)

	case *ReturnStmt:
		fmt.Fprintf(w, "%sReturnStmt\n", ind)
		if n.Result != nil {
			fprintNode(w, n.Result, indent+1)
		}

	case *FunDecl:
		fmt.Fprintf(w, "%sFunDecl name=%s\n", ind, n.Name.Lexeme)
		fprintFunc(w, n.Func, indent+1)

	case *ClassDecl:
		superStr := ""
		if n.Superclass != nil {
			superStr = " super=" + n.Superclass.Name.Lexeme
		}
		fmt.Fprintf(w, "%sClassDecl name=%s%s\n", ind, n.Name.Lexeme, superStr)
		for _, m := range n.Statics {
			fmt.Fprintf(w, "%s  Static:\n", ind)
			fprintNode(w, m, indent+2)
		}
		for _, m := range n.Methods {
			fprintNode(w, m, indent+1)
		}

	case *Literal:
		fmt.Fprintf(w, "%sLiteral %s\n", ind, formatLiteral(n.Value))

	case *GroupingExpr:
		fmt.Fprintf(w, "%sGrouping\n", ind)
		fprintNode(w, n.Inner, indent+1)

	case *UnaryExpr:
		fmt.Fprintf(w, "%sUnary op=%s\n", ind, n.Op.Lexeme)
		fprintNode(w, n.X, indent+1)

	case *BinaryExpr:
		fmt.Fprintf(w, "%sBinary op=%s\n", ind, n.Op.Lexeme)
		fprintNode(w, n.Left, indent+1)
		fprintNode(w, n.Right, indent+1)

	case *LogicalExpr:
		fmt.Fprintf(w, "%sLogical op=%s\n", ind, n.Op.Lexeme)
		fprintNode(w, n.Left, indent+1)
		fprintNode(w, n.Right, indent+1)

	case *VariableExpr:
		fmt.Fprintf(w, "%sVariable %s\n", ind, n.Name.Lexeme)

	case *AssignExpr:
		fmt.Fprintf(w, "%sAssign name=%s\n", ind, n.Name.Lexeme)
		fprintNode(w, n.Value, indent+1)

	case *CallExpr:
		fmt.Fprintf(w, "%sCall\n", ind)
		fmt.Fprintf(w, "%s  Callee:\n", ind)
		fprintNode(w, n.Callee, indent+2)
		if len(n.Args) > 0 {
			fmt.Fprintf(w, "%s  Args:\n", ind)
			for _, a := range n.Args {
				fprintNode(w, a, indent+2)
			}
		}

	case *GetExpr:
		fmt.Fprintf(w, "%sGet name=%s\n", ind, n.Name.Lexeme)
		fprintNode(w, n.Object, indent+1)

	case *SetExpr:
		fmt.Fprintf(w, "%sSet name=%s\n", ind, n.Name.Lexeme)
		fprintNode(w, n.Object, indent+1)
		fmt.Fprintf(w, "%s  Value:\n", ind)
		fprintNode(w, n.Value, indent+2)

	case *ThisExpr:
		fmt.Fprintf(w, "%sThis\n", ind)

	case *SuperExpr:
		fmt.Fprintf(w, "%sSuper method=%s\n", ind, n.Method.Lexeme)

	case *FuncLiteral:
		fmt.Fprintf(w, "%sFuncLiteral\n", ind)
		fprintFunc(w, n, indent+1)

	default:
		fmt.Fprintf(w, "%s<unknown node %T>\n", ind, n)
	}
}

func fprintFunc(w io.Writer, fn *FuncLiteral, indent int) {
	ind := strings.Repeat("  ", indent)
	if len(fn.Params) > 0 {
		names := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			names[i] = p.Lexeme
		}
		fmt.Fprintf(w, "%sParams: %s\n", ind, strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "%sBody:\n", ind)
	for _, s := range fn.Body {
		fprintNode(w, s, indent+1)
	}
}

// Format renders an expression back to source text. Parsing the result
// yields a tree equal to e apart from token positions.
func Format(e Expr) string {
	var sb strings.Builder
	formatExpr(&sb, e)
	return sb.String()
}

func formatExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *Literal:
		sb.WriteString(formatLiteral(e.Value))
	case *GroupingExpr:
		sb.WriteByte('(')
		formatExpr(sb, e.Inner)
		sb.WriteByte(')')
	case *UnaryExpr:
		sb.WriteString(e.Op.Lexeme)
		formatExpr(sb, e.X)
	case *BinaryExpr:
		formatExpr(sb, e.Left)
		sb.WriteString(" " + e.Op.Lexeme + " ")
		formatExpr(sb, e.Right)
	case *LogicalExpr:
		formatExpr(sb, e.Left)
		sb.WriteString(" " + e.Op.Lexeme + " ")
		formatExpr(sb, e.Right)
	case *VariableExpr:
		sb.WriteString(e.Name.Lexeme)
	case *AssignExpr:
		sb.WriteString(e.Name.Lexeme + " = ")
		formatExpr(sb, e.Value)
	case *CallExpr:
		formatExpr(sb, e.Callee)
		sb.WriteByte('(')
		for i, a := range e.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			formatExpr(sb, a)
		}
		sb.WriteByte(')')
	case *GetExpr:
		formatExpr(sb, e.Object)
		sb.WriteString("." + e.Name.Lexeme)
	case *SetExpr:
		formatExpr(sb, e.Object)
		sb.WriteString("." + e.Name.Lexeme + " = ")
		formatExpr(sb, e.Value)
	case *ThisExpr:
		sb.WriteString("this")
	case *SuperExpr:
		sb.WriteString("super." + e.Method.Lexeme)
	case *FuncLiteral:
		sb.WriteString("fun ")
		formatFunc(sb, e)
	}
}

func formatFunc(sb *strings.Builder, fn *FuncLiteral) {
	sb.WriteByte('(')
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Lexeme)
	}
	sb.WriteString(") { ")
	for _, s := range fn.Body {
		formatStmt(sb, s)
		sb.WriteByte(' ')
	}
	sb.WriteByte('}')
}

func formatStmt(sb *strings.Builder, s Stmt) {
	switch s := s.(type) {
	case *ExprStmt:
		formatExpr(sb, s.Expression)
		sb.WriteByte(';')
	case *PrintStmt:
		sb.WriteString("print ")
		formatExpr(sb, s.Expression)
		sb.WriteByte(';')
	case *VarDeclStmt:
		sb.WriteString("var " + s.Name.Lexeme)
		if s.Initializer != nil {
			sb.WriteString(" = ")
			formatExpr(sb, s.Initializer)
		}
		sb.WriteByte(';')
	case *BlockStmt:
		sb.WriteString("{ ")
		for _, inner := range s.Stmts {
			formatStmt(sb, inner)
			sb.WriteByte(' ')
		}
		sb.WriteByte('}')
	case *IfStmt:
		sb.WriteString("if (")
		formatExpr(sb, s.Cond)
		sb.WriteString(") ")
		formatStmt(sb, s.Then)
		if s.Else != nil {
			sb.WriteString(" else ")
			formatStmt(sb, s.Else)
		}
	case *WhileStmt:
		sb.WriteString("while (")
		formatExpr(sb, s.Cond)
		sb.WriteString(") ")
		formatStmt(sb, s.Body)
	case *BreakStmt:
		sb.WriteString("break;")
	case *ReturnStmt:
		sb.WriteString("return")
		if s.Result != nil {
			sb.WriteByte(' ')
			formatExpr(sb, s.Result)
		}
		sb.WriteByte(';')
	case *FunDecl:
		sb.WriteString("fun " + s.Name.Lexeme)
		formatFunc(sb, s.Func)
	case *ClassDecl:
		sb.WriteString("class " + s.Name.Lexeme)
		if s.Superclass != nil {
			sb.WriteString(" < " + s.Superclass.Name.Lexeme)
		}
		sb.WriteString(" { ")
		for _, m := range s.Statics {
			sb.WriteString("class ")
			formatMethod(sb, m)
		}
		for _, m := range s.Methods {
			formatMethod(sb, m)
		}
		sb.WriteByte('}')
	}
}

func formatMethod(sb *strings.Builder, m *FunDecl) {
	sb.WriteString(m.Name.Lexeme)
	formatFunc(sb, m.Func)
	sb.WriteByte(' ')
}

func formatLiteral(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return `"` + v + `"`
	default:
		return fmt.Sprintf("%v", v)
	}
}
