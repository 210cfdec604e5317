// Package ast defines the syntax tree for Kaleidoscope source. Nodes are
// pure data: the code generator and Equal walk them with type switches, so
// nodes carry no behavior beyond debug rendering.
package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/kaleido-lang/kaleido/internal/compiler/token"
)

// AnonName is the name given to the synthesized zero-argument function that
// wraps a bare top-level expression. Batch parsing numbers subsequent ones
// ("__anon_expr.1", ...) so a file full of expressions keeps all of them.
const AnonName = "__anon_expr"

type Node interface {
	TokenLiteral() string
	String() string
}

// Expr is any node that produces a value when lowered.
type Expr interface {
	Node
	exprNode()
}

// --- Expressions ---

// NumberLiteral -> 1.618
type NumberLiteral struct {
	Tok   token.Token
	Value float64
}

func (n *NumberLiteral) exprNode()            {}
func (n *NumberLiteral) TokenLiteral() string { return n.Tok.Literal }
func (n *NumberLiteral) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// VariableRef -> x
type VariableRef struct {
	Tok  token.Token
	Name string
}

func (v *VariableRef) exprNode()            {}
func (v *VariableRef) TokenLiteral() string { return v.Tok.Literal }
func (v *VariableRef) String() string       { return v.Name }

// UnaryExpr -> !operand
type UnaryExpr struct {
	Tok     token.Token // the operator token
	Op      string
	Operand Expr
}

func (u *UnaryExpr) exprNode()            {}
func (u *UnaryExpr) TokenLiteral() string { return u.Tok.Literal }
func (u *UnaryExpr) String() string {
	return "(" + u.Op + u.Operand.String() + ")"
}

// BinaryExpr -> (left op right)
type BinaryExpr struct {
	Tok   token.Token // the operator token
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinaryExpr) exprNode()            {}
func (b *BinaryExpr) TokenLiteral() string { return b.Tok.Literal }
func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}

// CallExpr -> callee(arg1, arg2)
type CallExpr struct {
	Tok    token.Token // the callee identifier token
	Callee string
	Args   []Expr
}

func (c *CallExpr) exprNode()            {}
func (c *CallExpr) TokenLiteral() string { return c.Tok.Literal }
func (c *CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Callee + "(" + strings.Join(args, ", ") + ")"
}

// IfExpr -> if cond then a else b
type IfExpr struct {
	Tok  token.Token // 'if'
	Cond Expr
	Then Expr
	Else Expr
}

func (i *IfExpr) exprNode()            {}
func (i *IfExpr) TokenLiteral() string { return i.Tok.Literal }
func (i *IfExpr) String() string {
	return "if " + i.Cond.String() + " then " + i.Then.String() + " else " + i.Else.String()
}

// ForExpr -> for i = start, end, step in body. Step is nil when omitted and
// defaults to 1.0 at lowering time.
type ForExpr struct {
	Tok   token.Token // 'for'
	Var   string
	Start Expr
	End   Expr
	Step  Expr // optional
	Body  Expr
}

func (f *ForExpr) exprNode()            {}
func (f *ForExpr) TokenLiteral() string { return f.Tok.Literal }
func (f *ForExpr) String() string {
	var out bytes.Buffer
	out.WriteString("for " + f.Var + " = " + f.Start.String() + ", " + f.End.String())
	if f.Step != nil {
		out.WriteString(", " + f.Step.String())
	}
	out.WriteString(" in " + f.Body.String())
	return out.String()
}

// VarBinding is one name in a var..in group. Init is nil when omitted and
// defaults to 1.0 at lowering time.
type VarBinding struct {
	Name string
	Init Expr
}

// VarExpr -> var a = 1, b in body
type VarExpr struct {
	Tok      token.Token // 'var'
	Bindings []VarBinding
	Body     Expr
}

func (v *VarExpr) exprNode()            {}
func (v *VarExpr) TokenLiteral() string { return v.Tok.Literal }
func (v *VarExpr) String() string {
	var out bytes.Buffer
	out.WriteString("var ")
	for i, b := range v.Bindings {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(b.Name)
		if b.Init != nil {
			out.WriteString(" = " + b.Init.String())
		}
	}
	out.WriteString(" in " + v.Body.String())
	return out.String()
}

// --- Top-level items ---

// Prototype names a function and its parameters. For operator definitions
// Name is the synthesized function name ("unary!", "binary|") and Symbol
// holds the bare operator character.
type Prototype struct {
	Tok        token.Token
	Name       string
	Params     []string
	IsOperator bool
	Symbol     string
	Precedence int // binary operator definitions only
}

func (p *Prototype) TokenLiteral() string { return p.Tok.Literal }
func (p *Prototype) String() string {
	return p.Name + "(" + strings.Join(p.Params, " ") + ")"
}

// IsAnon reports whether this prototype wraps a bare top-level expression.
func (p *Prototype) IsAnon() bool {
	return strings.HasPrefix(p.Name, AnonName)
}

// Function -> def proto body
type Function struct {
	Proto *Prototype
	Body  Expr
}

func (f *Function) TokenLiteral() string { return f.Proto.TokenLiteral() }
func (f *Function) String() string {
	return "def " + f.Proto.String() + " " + f.Body.String()
}

// Extern -> extern proto
type Extern struct {
	Proto *Prototype
}

func (e *Extern) TokenLiteral() string { return e.Proto.TokenLiteral() }
func (e *Extern) String() string {
	return "extern " + e.Proto.String()
}
