// Package parser turns the token stream into syntax trees, one top-level
// unit at a time. Structural forms are parsed by recursive descent; binary
// operator chains by precedence climbing against the operator table, which
// the parser also extends when it sees an operator-definition prototype.
package parser

import (
	"fmt"
	"math"
	"strconv"

	"github.com/kaleido-lang/kaleido/internal/compiler/ast"
	"github.com/kaleido-lang/kaleido/internal/compiler/lexer"
	"github.com/kaleido-lang/kaleido/internal/compiler/ops"
	"github.com/kaleido-lang/kaleido/internal/compiler/token"
)

// Error is a parse failure: what was expected and the token actually found.
// A parse error aborts only the current top-level unit; operators and
// functions registered by earlier units stay valid.
type Error struct {
	Expected string
	Found    token.Token
}

func (e *Error) Error() string {
	found := fmt.Sprintf("%q", e.Found.Literal)
	if e.Found.Type == token.EOF {
		found = "end of input"
	}
	return fmt.Sprintf("%d:%d: expected %s, found %s", e.Found.Line, e.Found.Column, e.Expected, found)
}

type Parser struct {
	l   *lexer.Lexer
	ops *ops.Table

	curTok  token.Token
	peekTok token.Token

	anonCount int
}

// New returns a parser over l. The operator table is owned by the caller's
// session: definitions made while parsing persist into later units and later
// parsers sharing the same table.
func New(l *lexer.Lexer, table *ops.Table) *Parser {
	p := &Parser{l: l, ops: table}
	// Prime curTok and peekTok.
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

// expect consumes and returns the current token if it has type tt, otherwise
// it reports what was wanted and what was found.
func (p *Parser) expect(tt token.Type, want string) (token.Token, error) {
	if p.curTok.Type == token.Illegal {
		return token.Token{}, p.lexError()
	}
	if p.curTok.Type != tt {
		return token.Token{}, &Error{Expected: want, Found: p.curTok}
	}
	tok := p.curTok
	p.next()
	return tok, nil
}

func (p *Parser) lexError() error {
	return &lexer.Error{Literal: p.curTok.Literal, Line: p.curTok.Line, Column: p.curTok.Column}
}

// ParseUnit parses one semicolon-terminated top-level unit: a function
// definition, an extern declaration, or a bare expression wrapped as an
// anonymous zero-argument function. It returns (nil, nil) once the input is
// exhausted.
func (p *Parser) ParseUnit() (ast.Node, error) {
	for p.curTok.Type == token.Semicolon {
		p.next()
	}
	if p.curTok.Type == token.EOF {
		return nil, nil
	}

	var item ast.Node
	var err error
	switch p.curTok.Type {
	case token.Def:
		item, err = p.parseDefinition()
	case token.Extern:
		item, err = p.parseExtern()
	default:
		item, err = p.parseTopLevelExpr()
	}
	if err != nil {
		return nil, err
	}

	switch p.curTok.Type {
	case token.Semicolon:
		p.next()
	case token.EOF:
		// A final unit may omit the terminator.
	case token.Operator:
		return nil, &Error{
			Expected: fmt.Sprintf("';' (%q is not a defined binary operator)", p.curTok.Literal),
			Found:    p.curTok,
		}
	default:
		return nil, &Error{Expected: "';' after top-level unit", Found: p.curTok}
	}

	return item, nil
}

// definition ::= 'def' prototype expression
func (p *Parser) parseDefinition() (ast.Node, error) {
	p.next() // eat 'def'

	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.Function{Proto: proto, Body: body}, nil
}

// external ::= 'extern' prototype
func (p *Parser) parseExtern() (ast.Node, error) {
	p.next() // eat 'extern'

	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	return &ast.Extern{Proto: proto}, nil
}

// toplevelexpr ::= expression, wrapped as an anonymous nullary function so
// the backend has something callable to evaluate.
func (p *Parser) parseTopLevelExpr() (ast.Node, error) {
	startTok := p.curTok
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	proto := &ast.Prototype{Tok: startTok, Name: p.anonName()}
	return &ast.Function{Proto: proto, Body: body}, nil
}

// anonName numbers anonymous functions within one parse so a batch file full
// of bare expressions keeps every one of them in the module.
func (p *Parser) anonName() string {
	p.anonCount++
	if p.anonCount == 1 {
		return ast.AnonName
	}
	return ast.AnonName + "." + strconv.Itoa(p.anonCount-1)
}

// prototype
//
//	::= identifier '(' identifier* ')'
//	::= 'unary' symbol '(' identifier ')'
//	::= 'binary' symbol number '(' identifier identifier ')'
//
// Operator-definition prototypes register into the operator table right
// here, before the body is parsed, so the body and every later unit in the
// session can already use the new operator. This is the parser's one side
// effect beyond producing a tree.
func (p *Parser) parsePrototype() (*ast.Prototype, error) {
	switch p.curTok.Type {
	case token.Ident:
		nameTok := p.curTok
		p.next()
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		return &ast.Prototype{Tok: nameTok, Name: nameTok.Literal, Params: params}, nil

	case token.Unary:
		kwTok := p.curTok
		p.next()
		symTok, err := p.expect(token.Operator, "an operator symbol after 'unary'")
		if err != nil {
			return nil, err
		}
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		if len(params) != 1 {
			return nil, &Error{Expected: "exactly one parameter for a unary operator definition", Found: kwTok}
		}

		p.ops.Define(ops.Def{Symbol: symTok.Literal, Arity: ops.UnaryOp})
		return &ast.Prototype{
			Tok:        kwTok,
			Name:       "unary" + symTok.Literal,
			Params:     params,
			IsOperator: true,
			Symbol:     symTok.Literal,
		}, nil

	case token.Binary:
		kwTok := p.curTok
		p.next()
		symTok, err := p.expect(token.Operator, "an operator symbol after 'binary'")
		if err != nil {
			return nil, err
		}
		precTok, err := p.expect(token.Number, "a precedence for the binary operator")
		if err != nil {
			return nil, err
		}
		prec, err := parsePrecedence(precTok)
		if err != nil {
			return nil, err
		}
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		if len(params) != 2 {
			return nil, &Error{Expected: "exactly two parameters for a binary operator definition", Found: kwTok}
		}

		p.ops.Define(ops.Def{Symbol: symTok.Literal, Arity: ops.BinaryOp, Precedence: prec})
		return &ast.Prototype{
			Tok:        kwTok,
			Name:       "binary" + symTok.Literal,
			Params:     params,
			IsOperator: true,
			Symbol:     symTok.Literal,
			Precedence: prec,
		}, nil

	default:
		return nil, &Error{Expected: "a function name, 'unary', or 'binary'", Found: p.curTok}
	}
}

// parsePrecedence validates the precedence literal of a binary operator
// definition: an integer in [1,100].
func parsePrecedence(tok token.Token) (int, error) {
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil || v != math.Trunc(v) || v < 1 || v > 100 {
		return 0, &Error{Expected: "an integer precedence between 1 and 100", Found: tok}
	}
	return int(v), nil
}

// parseParams parses '(' identifier* ')'. Parameter names are separated by
// whitespace alone.
func (p *Parser) parseParams() ([]string, error) {
	if _, err := p.expect(token.LParen, "'(' in prototype"); err != nil {
		return nil, err
	}

	var params []string
	for p.curTok.Type == token.Ident {
		params = append(params, p.curTok.Literal)
		p.next()
	}

	if _, err := p.expect(token.RParen, "')' in prototype"); err != nil {
		return nil, err
	}
	return params, nil
}

// expression ::= unary binoprhs
func (p *Parser) parseExpression() (ast.Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return p.parseBinOpRHS(0, lhs)
}

// parseBinOpRHS folds operator/operand pairs into lhs as long as the next
// operator binds at least as tightly as minPrec. The right-hand side is
// reparsed at threshold prec+1 when the following operator binds tighter,
// which is what makes every operator left-associative.
func (p *Parser) parseBinOpRHS(minPrec int, lhs ast.Expr) (ast.Expr, error) {
	for {
		prec := p.curPrecedence()
		if prec < minPrec {
			return lhs, nil
		}

		opTok := p.curTok
		p.next()

		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		if prec < p.curPrecedence() {
			rhs, err = p.parseBinOpRHS(prec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = &ast.BinaryExpr{Tok: opTok, Op: opTok.Literal, Left: lhs, Right: rhs}
	}
}

// curPrecedence returns the binary precedence of the current token, or -1
// when it is not a known binary operator, which stops the climb.
func (p *Parser) curPrecedence() int {
	if p.curTok.Type != token.Operator {
		return -1
	}
	return p.ops.Precedence(p.curTok.Literal)
}

// unary ::= primary | symbol unary
func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.curTok.Type != token.Operator {
		return p.parsePrimary()
	}

	if _, ok := p.ops.Lookup(p.curTok.Literal, ops.UnaryOp); !ok {
		return nil, &Error{
			Expected: fmt.Sprintf("an expression (%q is not a defined unary operator)", p.curTok.Literal),
			Found:    p.curTok,
		}
	}

	opTok := p.curTok
	p.next()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &ast.UnaryExpr{Tok: opTok, Op: opTok.Literal, Operand: operand}, nil
}

// primary
//
//	::= numberexpr | identifierexpr | parenexpr
//	::= ifexpr | forexpr | varexpr
func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.curTok.Type {
	case token.Number:
		return p.parseNumber()
	case token.Ident:
		return p.parseIdentifierExpr()
	case token.LParen:
		return p.parseParenExpr()
	case token.If:
		return p.parseIfExpr()
	case token.For:
		return p.parseForExpr()
	case token.Var:
		return p.parseVarExpr()
	case token.Illegal:
		return nil, p.lexError()
	default:
		return nil, &Error{Expected: "an expression", Found: p.curTok}
	}
}

func (p *Parser) parseNumber() (ast.Expr, error) {
	tok := p.curTok
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		return nil, &Error{Expected: "a number literal", Found: tok}
	}
	p.next()
	return &ast.NumberLiteral{Tok: tok, Value: v}, nil
}

// identifierexpr ::= identifier | identifier '(' (expression (',' expression)*)? ')'
func (p *Parser) parseIdentifierExpr() (ast.Expr, error) {
	nameTok := p.curTok
	p.next()

	if p.curTok.Type != token.LParen {
		return &ast.VariableRef{Tok: nameTok, Name: nameTok.Literal}, nil
	}
	p.next() // eat '('

	var args []ast.Expr
	for p.curTok.Type != token.RParen {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.curTok.Type == token.Comma {
			p.next()
			continue
		}
		if p.curTok.Type != token.RParen {
			return nil, &Error{Expected: "',' or ')' in argument list", Found: p.curTok}
		}
	}
	p.next() // eat ')'

	return &ast.CallExpr{Tok: nameTok, Callee: nameTok.Literal, Args: args}, nil
}

// parenexpr ::= '(' expression ')'
func (p *Parser) parseParenExpr() (ast.Expr, error) {
	p.next() // eat '('
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RParen, "')' to close the group"); err != nil {
		return nil, err
	}
	return e, nil
}

// ifexpr ::= 'if' expression 'then' expression 'else' expression
func (p *Parser) parseIfExpr() (ast.Expr, error) {
	ifTok := p.curTok
	p.next()

	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Then, "'then'"); err != nil {
		return nil, err
	}
	then, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Else, "'else'"); err != nil {
		return nil, err
	}
	els, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ast.IfExpr{Tok: ifTok, Cond: cond, Then: then, Else: els}, nil
}

// forexpr ::= 'for' identifier '=' expression ',' expression (',' expression)? 'in' expression
func (p *Parser) parseForExpr() (ast.Expr, error) {
	forTok := p.curTok
	p.next()

	nameTok, err := p.expect(token.Ident, "a loop variable name")
	if err != nil {
		return nil, err
	}
	if p.curTok.Type != token.Operator || p.curTok.Literal != "=" {
		return nil, &Error{Expected: "'=' after the loop variable", Found: p.curTok}
	}
	p.next()

	start, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Comma, "',' after the loop start value"); err != nil {
		return nil, err
	}
	end, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	var step ast.Expr
	if p.curTok.Type == token.Comma {
		p.next()
		step, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.In, "'in' before the loop body"); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ast.ForExpr{Tok: forTok, Var: nameTok.Literal, Start: start, End: end, Step: step, Body: body}, nil
}

// varexpr ::= 'var' identifier ('=' expression)?
//
//	(',' identifier ('=' expression)?)* 'in' expression
func (p *Parser) parseVarExpr() (ast.Expr, error) {
	varTok := p.curTok
	p.next()

	var bindings []ast.VarBinding
	for {
		nameTok, err := p.expect(token.Ident, "a variable name after 'var'")
		if err != nil {
			return nil, err
		}

		var init ast.Expr
		if p.curTok.Type == token.Operator && p.curTok.Literal == "=" {
			p.next()
			init, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		bindings = append(bindings, ast.VarBinding{Name: nameTok.Literal, Init: init})

		if p.curTok.Type != token.Comma {
			break
		}
		p.next()
	}

	if _, err := p.expect(token.In, "'in' after the var bindings"); err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	return &ast.VarExpr{Tok: varTok, Bindings: bindings, Body: body}, nil
}
