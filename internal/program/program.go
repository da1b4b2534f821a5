// Package program is the thin textual surface SPEC_FULL.md §6 adds on
// top of the embedded Go API: a `.prl` file's declarations
// (RELATION/FIELD/GLOBAL/KERNEL) and control statements
// (LOAD_FIELD/SET_GLOBAL/FOR_EACH/IF/ELSE/END/WHILE/END) are parsed
// into the same control.Recorder and ast.Function values a host
// program would build by calling the Go API directly. Kernel bodies
// are sliced out of the token stream and handed to internal/parser
// unchanged — this package only adds the declaration layer around it.
package program

import (
	"fmt"
	"strconv"
	"strings"

	"parlay/internal/ast"
	"parlay/internal/control"
	"parlay/internal/errors"
	"parlay/internal/lexer"
	"parlay/internal/parser"
	"parlay/internal/relation"
	"parlay/internal/specializer"
	"parlay/internal/types"
)

// Program is the parsed result of one .prl file: every declaration
// recorded into Recorder, kernel bodies resolved to ast.Function, and
// the control-program statement list ready for a lower.Driver.
type Program struct {
	Recorder  *control.Recorder
	Env       *specializer.Environment
	Functions map[string]*ast.Function
	Stmts     []control.Stmt
}

type topParser struct {
	tokens  []lexer.Token
	current int
	file    string
	rec     *control.Recorder
	env     *specializer.Environment
	fns     map[string]*ast.Function
	errs    []error
}

// Parse tokenizes and parses one .prl source file.
func Parse(src, file string) (*Program, error) {
	toks := lexer.NewScanner(src, file).ScanTokens()
	tp := &topParser{
		tokens: toks,
		file:   file,
		rec:    control.NewRecorder(file),
		env:    specializer.NewEnvironment(),
		fns:    map[string]*ast.Function{},
	}
	tp.run()
	tp.errs = append(tp.errs, tp.rec.Errors...)
	if len(tp.errs) > 0 {
		return nil, combineErrors(tp.errs)
	}
	return &Program{Recorder: tp.rec, Env: tp.env, Functions: tp.fns, Stmts: tp.rec.Statements()}, nil
}

func combineErrors(errs []error) error {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return fmt.Errorf("%d error(s):\n%s", len(errs), strings.Join(parts, "\n"))
}

func (tp *topParser) run() {
	for !tp.atEnd() {
		tp.topLevelStmt()
		if len(tp.errs) > 50 {
			return
		}
	}
}

func (tp *topParser) pos() errors.Pos {
	t := tp.peek()
	return errors.Pos{File: tp.file, Line: t.Line, Column: t.Column}
}

func (tp *topParser) errorf(format string, args ...interface{}) {
	tp.errs = append(tp.errs, errors.New(errors.MalformedProgram, tp.pos(), format, args...))
}

func (tp *topParser) peek() lexer.Token { return tp.tokens[tp.current] }
func (tp *topParser) atEnd() bool       { return tp.peek().Type == lexer.TokenEOF }
func (tp *topParser) advance() lexer.Token {
	t := tp.tokens[tp.current]
	if !tp.atEnd() {
		tp.current++
	}
	return t
}
func (tp *topParser) expectWord(w string) bool {
	if strings.EqualFold(tp.peek().Lexeme, w) {
		tp.advance()
		return true
	}
	tp.errorf("expected %q, got %q", w, tp.peek().Lexeme)
	return false
}

func (tp *topParser) expectType(t lexer.TokenType, what string) lexer.Token {
	if tp.peek().Type != t {
		tp.errorf("expected %s, got %q", what, tp.peek().Lexeme)
		return tp.peek()
	}
	return tp.advance()
}

func (tp *topParser) topLevelStmt() {
	kw := strings.ToLower(tp.peek().Lexeme)
	switch kw {
	case "relation":
		tp.relationDecl()
	case "field":
		tp.fieldDecl()
	case "global":
		tp.globalDecl()
	case "kernel":
		tp.kernelDecl()
	case "load_field":
		tp.loadFieldStmt()
	case "set_global":
		tp.setGlobalStmt()
	case "for_each":
		tp.forEachStmt()
	case "if":
		tp.ifStmt()
	case "while":
		tp.whileStmt()
	default:
		tp.errorf("unexpected top-level token %q", tp.peek().Lexeme)
		tp.advance()
	}
}

// ---- declarations ----

func (tp *topParser) relationDecl() {
	tp.advance() // "relation"
	name := tp.expectType(lexer.TokenIdent, "relation name").Lexeme
	sizeTok := tp.expectType(lexer.TokenNumber, "relation size")
	size, _ := strconv.ParseUint(sizeTok.Lexeme, 10, 64)
	rel := tp.rec.NewRelation(name, size)
	tp.env.Relations[name] = rel
}

func (tp *topParser) fieldDecl() {
	tp.advance() // "field"
	relName, fieldName := tp.qualifiedName()
	typeName := tp.expectType(lexer.TokenIdent, "field type").Lexeme
	t, err := parsePrimitive(typeName)
	if err != nil {
		tp.errorf("%s", err.Error())
		return
	}
	rel, ok := tp.env.Relations[relName]
	if !ok {
		tp.errorf("unknown relation %q", relName)
		return
	}
	f, err := tp.rec.NewField(rel, fieldName, t)
	if err != nil {
		tp.errorf("%s", err.Error())
		return
	}
	tp.env.Fields[fieldName] = f
}

func (tp *topParser) globalDecl() {
	tp.advance() // "global"
	name := tp.expectType(lexer.TokenIdent, "global name").Lexeme
	typeName := tp.expectType(lexer.TokenIdent, "global type").Lexeme
	t, err := parsePrimitive(typeName)
	if err != nil {
		tp.errorf("%s", err.Error())
		return
	}
	tp.expectType(lexer.TokenEqual, "=")
	init := tp.constLiteral(t)
	g := tp.rec.NewGlobal(name, t, init)
	tp.env.Globals[name] = g
}

func (tp *topParser) constLiteral(t types.Type) interface{} {
	if tp.peek().Type == lexer.TokenTrue || tp.peek().Type == lexer.TokenFalse {
		return tp.advance().Type == lexer.TokenTrue
	}
	tok := tp.expectType(lexer.TokenNumber, "constant")
	v, _ := strconv.ParseFloat(tok.Lexeme, 64)
	return v
}

func (tp *topParser) kernelDecl() {
	kernelPos := tp.pos()
	tp.advance() // "kernel"
	name := tp.expectType(lexer.TokenIdent, "kernel name").Lexeme
	tp.expectType(lexer.TokenLParen, "(")
	paramName := tp.expectType(lexer.TokenIdent, "parameter name").Lexeme
	relName := tp.expectType(lexer.TokenIdent, "parameter relation").Lexeme
	tp.expectType(lexer.TokenRParen, ")")
	body := tp.braceBlock()

	fn := &ast.Function{
		Name:     name,
		IsKernel: true,
		Params:   []ast.Param{{Name: paramName, RelName: relName}},
		Body:     body,
		At:       kernelPos,
	}
	tp.rec.NewFunction(name, fn)
	tp.fns[name] = fn
}

// braceBlock consumes a balanced `{ ... }` token run and parses it as a
// kernel body with internal/parser, the only place this package hands
// tokens to the body parser.
func (tp *topParser) braceBlock() []ast.Stmt {
	tp.expectType(lexer.TokenLBrace, "{")
	start := tp.current
	depth := 1
	for !tp.atEnd() && depth > 0 {
		switch tp.peek().Type {
		case lexer.TokenLBrace:
			depth++
		case lexer.TokenRBrace:
			depth--
			if depth == 0 {
				break
			}
		}
		if depth == 0 {
			break
		}
		tp.advance()
	}
	end := tp.current
	tp.expectType(lexer.TokenRBrace, "}")

	sub := append([]lexer.Token(nil), tp.tokens[start:end]...)
	sub = append(sub, lexer.Token{Type: lexer.TokenEOF})
	bp := parser.New(sub, tp.file)
	stmts := bp.ParseBody()
	for _, e := range bp.Errors {
		tp.errs = append(tp.errs, e)
	}
	return stmts
}

// ---- simple control statements ----

func (tp *topParser) loadFieldStmt() {
	tp.advance() // "load_field"
	relName, fieldName := tp.qualifiedName()
	rel, ok := tp.env.Relations[relName]
	if !ok {
		tp.errorf("unknown relation %q", relName)
		return
	}
	f, ok := rel.FieldByName(fieldName)
	if !ok {
		tp.errorf("relation %q has no field %q", relName, fieldName)
		return
	}
	tp.expectType(lexer.TokenEqual, "=")
	v := tp.constLiteral(f.Type())
	tp.rec.LoadField(f, v)
}

func (tp *topParser) setGlobalStmt() {
	tp.advance() // "set_global"
	name := tp.expectType(lexer.TokenIdent, "global name").Lexeme
	g, ok := tp.env.Globals[name]
	if !ok {
		tp.errorf("unknown global %q", name)
		return
	}
	tp.expectType(lexer.TokenEqual, "=")
	e := tp.controlExpr()
	tp.rec.SetGlobal(g, e)
}

func (tp *topParser) forEachStmt() {
	tp.advance() // "for_each"
	kernelName := tp.expectType(lexer.TokenIdent, "kernel name").Lexeme
	fn, ok := tp.fns[kernelName]
	if !ok {
		tp.errorf("unknown kernel %q", kernelName)
		return
	}
	tp.expectWord("over")
	relName := tp.expectType(lexer.TokenIdent, "relation name").Lexeme
	rel, ok := tp.env.Relations[relName]
	if !ok {
		tp.errorf("unknown relation %q", relName)
		return
	}
	var subset *relation.Subset
	if strings.EqualFold(tp.peek().Lexeme, "subset") {
		tp.advance()
		subsetName := tp.expectType(lexer.TokenIdent, "subset name").Lexeme
		for _, s := range rel.Subsets() {
			if s.Name() == subsetName {
				subset = s
			}
		}
		if subset == nil {
			tp.errorf("unknown subset %q on relation %q", subsetName, relName)
		}
	}
	tp.rec.ForEach(fn, rel, subset, nil)
}

func (tp *topParser) ifStmt() {
	tp.advance() // "if"
	cond := tp.controlCond()
	tp.expectWord("then")
	tp.rec.If(cond)
	for !strings.EqualFold(tp.peek().Lexeme, "else") && !strings.EqualFold(tp.peek().Lexeme, "end") && !tp.atEnd() {
		tp.topLevelStmt()
	}
	if strings.EqualFold(tp.peek().Lexeme, "else") {
		tp.advance()
		tp.rec.Else()
		for !strings.EqualFold(tp.peek().Lexeme, "end") && !tp.atEnd() {
			tp.topLevelStmt()
		}
	}
	tp.expectWord("end")
	tp.rec.End()
}

func (tp *topParser) whileStmt() {
	tp.advance() // "while"
	cond := tp.controlCond()
	tp.rec.While(cond)
	for !strings.EqualFold(tp.peek().Lexeme, "end") && !tp.atEnd() {
		tp.topLevelStmt()
	}
	tp.expectWord("end")
	tp.rec.End()
}

// ---- control expressions/conditions (§6: AND/OR/NOT, EQ/NE/LT/LE/GT/GE, arithmetic) ----

func (tp *topParser) controlCond() control.Cond {
	left := tp.controlCondTerm()
	for tp.peek().Type == lexer.TokenAnd || tp.peek().Type == lexer.TokenOr {
		op := tp.advance()
		right := tp.controlCondTerm()
		if op.Type == lexer.TokenAnd {
			left = control.AND(left, right)
		} else {
			left = control.OR(left, right)
		}
	}
	return left
}

func (tp *topParser) controlCondTerm() control.Cond {
	if tp.peek().Type == lexer.TokenNot {
		tp.advance()
		return control.NOT(tp.controlCondTerm())
	}
	if tp.peek().Type == lexer.TokenLParen {
		tp.advance()
		c := tp.controlCond()
		tp.expectType(lexer.TokenRParen, ")")
		return c
	}
	l := tp.controlExpr()
	op := tp.advance()
	r := tp.controlExpr()
	switch op.Type {
	case lexer.TokenDoubleEqual:
		return control.EQ(l, r)
	case lexer.TokenNotEqual:
		return control.NE(l, r)
	case lexer.TokenLT:
		return control.LT(l, r)
	case lexer.TokenLE:
		return control.LE(l, r)
	case lexer.TokenGT:
		return control.GT(l, r)
	case lexer.TokenGE:
		return control.GE(l, r)
	default:
		tp.errorf("expected a comparison operator, got %q", op.Lexeme)
		return control.EQ(l, r)
	}
}

func (tp *topParser) controlExpr() control.Expr {
	left := tp.controlTerm()
	for tp.peek().Type == lexer.TokenPlus || tp.peek().Type == lexer.TokenMinus {
		op := tp.advance()
		right := tp.controlTerm()
		if op.Type == lexer.TokenPlus {
			left = control.Add(left, right)
		} else {
			left = control.Sub(left, right)
		}
	}
	return left
}

func (tp *topParser) controlTerm() control.Expr {
	left := tp.controlFactor()
	for tp.peek().Type == lexer.TokenStar || tp.peek().Type == lexer.TokenSlash || tp.peek().Type == lexer.TokenPercent {
		op := tp.advance()
		right := tp.controlFactor()
		switch op.Type {
		case lexer.TokenStar:
			left = control.Mul(left, right)
		case lexer.TokenSlash:
			left = control.Div(left, right)
		case lexer.TokenPercent:
			left = control.Mod(left, right)
		}
	}
	return left
}

func (tp *topParser) controlFactor() control.Expr {
	if tp.peek().Type == lexer.TokenMinus {
		tp.advance()
		return control.Neg1(tp.controlFactor())
	}
	if tp.peek().Type == lexer.TokenNumber {
		v, _ := strconv.ParseFloat(tp.advance().Lexeme, 64)
		return control.ConstNum(v)
	}
	if tp.peek().Type == lexer.TokenTrue || tp.peek().Type == lexer.TokenFalse {
		return control.ConstBool(tp.advance().Type == lexer.TokenTrue)
	}
	name := tp.expectType(lexer.TokenIdent, "global name or number").Lexeme
	g, ok := tp.env.Globals[name]
	if !ok {
		tp.errorf("unknown global %q", name)
		return control.ConstNum(0)
	}
	return control.GetGlobal(g)
}

// ---- small helpers ----

// qualifiedName parses the REL.FIELD token pair the scanner produces
// as three tokens (IDENT "." IDENT), since '.' is its own token type.
func (tp *topParser) qualifiedName() (rel, field string) {
	rel = tp.expectType(lexer.TokenIdent, "relation name").Lexeme
	tp.expectType(lexer.TokenDot, ".")
	field = tp.expectType(lexer.TokenIdent, "field name").Lexeme
	return rel, field
}

func parsePrimitive(name string) (types.Type, error) {
	switch name {
	case "bool":
		return types.Bool, nil
	case "i8":
		return types.I8, nil
	case "i16":
		return types.I16, nil
	case "i32":
		return types.I32, nil
	case "i64":
		return types.I64, nil
	case "u8":
		return types.U8, nil
	case "u16":
		return types.U16, nil
	case "u32":
		return types.U32, nil
	case "u64":
		return types.U64, nil
	case "f32":
		return types.F32, nil
	case "f64":
		return types.F64, nil
	default:
		return nil, fmt.Errorf("unknown type %q", name)
	}
}
