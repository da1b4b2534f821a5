// Package parser is a recursive-descent parser for kernel and helper
// bodies, grounded on the teacher's precedence-climbing parser.Parser:
// a token cursor, a precedence table, and Errors collected rather than
// panicking on the first mistake.
package parser

import (
	"fmt"
	"strconv"

	"parlay/internal/ast"
	"parlay/internal/errors"
	"parlay/internal/lexer"
	"parlay/internal/relation"
)

var precedence = map[lexer.TokenType]int{
	lexer.TokenOr:          1,
	lexer.TokenAnd:         2,
	lexer.TokenDoubleEqual: 3,
	lexer.TokenNotEqual:    3,
	lexer.TokenLT:          3,
	lexer.TokenGT:          3,
	lexer.TokenLE:          3,
	lexer.TokenGE:          3,
	lexer.TokenPlus:        4,
	lexer.TokenMinus:       4,
	lexer.TokenStar:        5,
	lexer.TokenSlash:       5,
	lexer.TokenPercent:     5,
	lexer.TokenCaret:       6,
}

type Parser struct {
	tokens  []lexer.Token
	current int
	file    string
	Errors  []error
}

func New(tokens []lexer.Token, file string) *Parser {
	return &Parser{tokens: tokens, file: file}
}

// ParseBody parses a kernel/helper's statement block (the body handed
// to control.Recorder.NewFunction) until EOF.
func (p *Parser) ParseBody() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.isAtEnd() {
		stmts = append(stmts, p.statement())
	}
	return stmts
}

func (p *Parser) pos() errors.Pos {
	t := p.peek()
	return errors.Pos{File: p.file, Line: t.Line, Column: t.Column}
}

func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(lexer.TokenVar):
		return p.localDecl()
	case p.match(lexer.TokenIf):
		return p.ifStmt()
	case p.match(lexer.TokenFor):
		return p.forStmt()
	case p.match(lexer.TokenReturn):
		at := p.pos()
		if p.check(lexer.TokenRBrace) || p.isAtEnd() {
			return &ast.Return{At: at}
		}
		v := p.expression()
		return &ast.Return{Value: v, At: at}
	default:
		return p.exprOrAssignStmt()
	}
}

func (p *Parser) localDecl() ast.Stmt {
	at := p.pos()
	name := p.consume(lexer.TokenIdent, "expected identifier after var").Lexeme
	var init ast.Expr
	if p.match(lexer.TokenEqual) {
		init = p.expression()
	}
	return &ast.Local{Name: name, Init: init, At: at}
}

func (p *Parser) ifStmt() ast.Stmt {
	at := p.pos()
	cond := p.expression()
	then := p.block()
	var elifs []ast.ElseIf
	var elseBody []ast.Stmt
	for p.match(lexer.TokenElseif) {
		c := p.expression()
		b := p.block()
		elifs = append(elifs, ast.ElseIf{Cond: c, Body: b})
	}
	if p.match(lexer.TokenElse) {
		elseBody = p.block()
	}
	return &ast.If{Cond: cond, Then: then, ElseIfs: elifs, Else: elseBody, At: at}
}

func (p *Parser) forStmt() ast.Stmt {
	at := p.pos()
	name := p.consume(lexer.TokenIdent, "expected loop variable").Lexeme
	p.consume(lexer.TokenComma, "expected ',' between for-loop bounds")
	lower := p.expression()
	p.consume(lexer.TokenComma, "expected ',' between for-loop bounds")
	upper := p.expression()
	body := p.block()
	return &ast.NumericFor{Var: name, Lower: lower, Upper: upper, Body: body, At: at}
}

func (p *Parser) block() []ast.Stmt {
	p.consume(lexer.TokenLBrace, "expected '{'")
	var stmts []ast.Stmt
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		stmts = append(stmts, p.statement())
	}
	p.consume(lexer.TokenRBrace, "expected '}'")
	return stmts
}

var reduceOps = map[lexer.TokenType]relation.ReduceOp{
	lexer.TokenPlusEq:  relation.OpAdd,
	lexer.TokenMinusEq: relation.OpSub,
	lexer.TokenStarEq:  relation.OpMul,
	lexer.TokenSlashEq: relation.OpDiv,
	lexer.TokenMinEq:   relation.OpMin,
	lexer.TokenMaxEq:   relation.OpMax,
}

// exprOrAssignStmt handles `name = e`, `k.f = e`, `g += e` / `f.x -= e`
// and bare expression statements (e.g. `assert(c)`), disambiguated by
// parsing a primary expression first and inspecting the next token.
func (p *Parser) exprOrAssignStmt() ast.Stmt {
	at := p.pos()
	target := p.expression()
	if p.match(lexer.TokenEqual) {
		value := p.expression()
		if fa, ok := target.(*ast.FieldAccess); ok {
			return &ast.FieldWrite{Object: fa.Object, Field: fa.Field, Value: value, At: at}
		}
		if id, ok := target.(*ast.Ident); ok {
			return &ast.Assign{Name: id.Name, Value: value, At: at}
		}
		p.errorf("invalid assignment target")
		return &ast.ExprStmt{Expr: target, At: at}
	}
	for tok, op := range reduceOps {
		if p.match(tok) {
			value := p.expression()
			return &ast.Reduce{Target: target, Op: op, Value: value, At: at}
		}
	}
	return &ast.ExprStmt{Expr: target, At: at}
}

// ---- expressions ----

func (p *Parser) expression() ast.Expr { return p.binary(1) }

func (p *Parser) binary(minPrec int) ast.Expr {
	left := p.unary()
	for {
		tok := p.peek()
		prec, ok := precedence[tok.Type]
		if !ok || prec < minPrec {
			return left
		}
		op := p.advance()
		right := p.binary(prec + 1)
		left = p.combine(op, left, right)
	}
	return left
}

func (p *Parser) combine(op lexer.Token, left, right ast.Expr) ast.Expr {
	at := errors.Pos{File: p.file, Line: op.Line, Column: op.Column}
	switch op.Type {
	case lexer.TokenAnd:
		return &ast.Logical{Op: "&&", Left: left, Right: right, At: at}
	case lexer.TokenOr:
		return &ast.Logical{Op: "||", Left: left, Right: right, At: at}
	default:
		return &ast.Binary{Op: string(op.Type), Left: left, Right: right, At: at}
	}
}

func (p *Parser) unary() ast.Expr {
	if p.match(lexer.TokenMinus) {
		at := p.previousPos()
		operand := p.unary()
		return &ast.Unary{Op: "-", Operand: operand, At: at}
	}
	if p.match(lexer.TokenNot) {
		at := p.previousPos()
		operand := p.unary()
		return &ast.Logical{Op: "!", Left: operand, At: at}
	}
	return p.postfix()
}

func (p *Parser) postfix() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(lexer.TokenDot):
			name := p.consume(lexer.TokenIdent, "expected field name after '.'")
			expr = &ast.FieldAccess{Object: expr, Field: name.Lexeme, At: p.previousPos()}
		case p.check(lexer.TokenLParen):
			p.advance()
			var args []ast.Expr
			if !p.check(lexer.TokenRParen) {
				args = append(args, p.expression())
				for p.match(lexer.TokenComma) {
					args = append(args, p.expression())
				}
			}
			p.consume(lexer.TokenRParen, "expected ')' after call arguments")
			expr = &ast.Call{Callee: expr, Args: args, At: expr.Pos()}
		default:
			return expr
		}
	}
}

func (p *Parser) primary() ast.Expr {
	at := p.pos()
	switch {
	case p.match(lexer.TokenTrue):
		return &ast.Literal{Value: true, At: at}
	case p.match(lexer.TokenFalse):
		return &ast.Literal{Value: false, At: at}
	case p.match(lexer.TokenNumber):
		lex := p.previous().Lexeme
		v, err := strconv.ParseFloat(lex, 64)
		if err != nil {
			p.errorf("invalid numeric literal %q", lex)
		}
		return &ast.Literal{Value: v, At: at}
	case p.match(lexer.TokenAffine):
		return p.affineExpr(at)
	case p.match(lexer.TokenIdent):
		return &ast.Ident{Name: p.previous().Lexeme, At: at}
	case p.match(lexer.TokenLParen):
		e := p.expression()
		p.consume(lexer.TokenRParen, "expected ')'")
		return e
	case p.match(lexer.TokenLBracket):
		return p.arrayLit(at)
	}
	p.errorf("unexpected token %s", p.peek())
	p.advance()
	return &ast.Literal{Value: 0.0, At: at}
}

// affineExpr parses `Affine(relName, [[...],[...]], base)`.
func (p *Parser) affineExpr(at errors.Pos) ast.Expr {
	p.consume(lexer.TokenLParen, "expected '(' after Affine")
	relName := p.consume(lexer.TokenIdent, "expected relation name").Lexeme
	p.consume(lexer.TokenComma, "expected ',' after Affine relation")
	m := p.matrixLiteralRows()
	p.consume(lexer.TokenComma, "expected ',' after Affine matrix")
	base := p.expression()
	p.consume(lexer.TokenRParen, "expected ')' to close Affine")
	return &ast.Affine{TargetRel: relName, M: m, Base: base, At: at}
}

func (p *Parser) matrixLiteralRows() [][]float64 {
	p.consume(lexer.TokenLBracket, "expected '[' to start Affine matrix")
	var rows [][]float64
	row := p.numericRow()
	rows = append(rows, row)
	for p.match(lexer.TokenComma) {
		rows = append(rows, p.numericRow())
	}
	p.consume(lexer.TokenRBracket, "expected ']' to close Affine matrix")
	return rows
}

func (p *Parser) numericRow() []float64 {
	p.consume(lexer.TokenLBracket, "expected '[' to start matrix row")
	var vals []float64
	vals = append(vals, p.signedNumber())
	for p.match(lexer.TokenComma) {
		vals = append(vals, p.signedNumber())
	}
	p.consume(lexer.TokenRBracket, "expected ']' to close matrix row")
	return vals
}

func (p *Parser) signedNumber() float64 {
	neg := p.match(lexer.TokenMinus)
	tok := p.consume(lexer.TokenNumber, "expected number in Affine matrix")
	v, _ := strconv.ParseFloat(tok.Lexeme, 64)
	if neg {
		v = -v
	}
	return v
}

func (p *Parser) arrayLit(at errors.Pos) ast.Expr {
	var elems []ast.Expr
	if !p.check(lexer.TokenRBracket) {
		elems = append(elems, p.expression())
		for p.match(lexer.TokenComma) {
			elems = append(elems, p.expression())
		}
	}
	p.consume(lexer.TokenRBracket, "expected ']'")
	return &ast.VectorLit{Elems: elems, At: at}
}

// ---- token cursor helpers ----

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(t lexer.TokenType) bool {
	return !p.isAtEnd() && p.peek().Type == t
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) previous() lexer.Token  { return p.tokens[p.current-1] }
func (p *Parser) peek() lexer.Token      { return p.tokens[p.current] }
func (p *Parser) isAtEnd() bool          { return p.peek().Type == lexer.TokenEOF }
func (p *Parser) previousPos() errors.Pos {
	t := p.previous()
	return errors.Pos{File: p.file, Line: t.Line, Column: t.Column}
}

func (p *Parser) consume(t lexer.TokenType, msg string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorf("%s (got %s)", msg, p.peek())
	return p.peek()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.Errors = append(p.Errors, fmt.Errorf("%s: %s", p.pos(), fmt.Sprintf(format, args...)))
}
