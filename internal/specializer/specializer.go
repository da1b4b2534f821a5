// Package specializer implements spec.md §4.3: it walks a raw kernel or
// helper AST and resolves every free identifier against a host
// environment into one of {Field, Function, Global, Relation, Builtin,
// constant, macro}, filling in ast.Ident.Resolved. Grounded on the
// teacher's recursive-descent walk style (internal/compiler's
// statement-at-a-time dispatch), generalized from bytecode emission to
// name resolution.
package specializer

import (
	"parlay/internal/ast"
	"parlay/internal/errors"
	"parlay/internal/relation"
)

// Builtins is the fixed set of names §4.7 lowers to runtime calls; the
// specializer resolves a bare Ident used as a Call's Callee against
// this set before falling back to the environment's Functions.
var Builtins = map[string]bool{
	"acos": true, "asin": true, "atan": true, "cbrt": true, "ceil": true,
	"cos": true, "fabs": true, "floor": true, "fmod": true, "log": true,
	"sin": true, "sqrt": true, "tan": true,
	"pow":                true,
	"fmin": true, "fmax": true, "imin": true, "imax": true,
	"rand": true, "dot": true, "assert": true,
	"id": true, "xid": true, "yid": true, "zid": true,
}

// Environment is the host-environment name table (§9 "host-environment
// capture ... modeled by a symbol map passed explicitly to the
// specializer — no reliance on ambient scope").
type Environment struct {
	Relations map[string]*relation.Relation
	Fields    map[string]*relation.Field // unqualified; consulted only for bare identifiers (k.f is resolved by the checker against k's relation)
	Globals   map[string]*relation.Global
	Functions map[string]*ast.Function
	Macros    map[string]*relation.FieldMacro
	Consts    map[string]interface{}
	// Locals is pushed/popped as the walk enters/leaves blocks and the
	// for-loop/kernel-parameter scope.
	locals []map[string]ast.ResKind
}

func NewEnvironment() *Environment {
	return &Environment{
		Relations: map[string]*relation.Relation{},
		Fields:    map[string]*relation.Field{},
		Globals:   map[string]*relation.Global{},
		Functions: map[string]*ast.Function{},
		Macros:    map[string]*relation.FieldMacro{},
		Consts:    map[string]interface{}{},
	}
}

func (e *Environment) pushScope()  { e.locals = append(e.locals, map[string]ast.ResKind{}) }
func (e *Environment) popScope()   { e.locals = e.locals[:len(e.locals)-1] }
func (e *Environment) declare(name string, kind ast.ResKind) {
	e.locals[len(e.locals)-1][name] = kind
}
func (e *Environment) lookupLocal(name string) (ast.ResKind, bool) {
	for i := len(e.locals) - 1; i >= 0; i-- {
		if k, ok := e.locals[i][name]; ok {
			return k, true
		}
	}
	return ast.ResNone, false
}

// Specializer carries the position of the unit currently being walked,
// for error reporting, plus the accumulated error list (errors do not
// abort the walk — the caller decides whether any were fatal).
type Specializer struct {
	env    *Environment
	file   string
	Errors []error
}

func New(env *Environment, file string) *Specializer {
	return &Specializer{env: env, file: file}
}

// SpecializeFunction resolves a single kernel or helper declaration.
// The parameter(s) are declared into a fresh top scope before the body
// is walked, matching the source's lexical-closure-at-declaration-time
// behavior for free names.
func (s *Specializer) SpecializeFunction(fn *ast.Function) {
	s.env.pushScope()
	defer s.env.popScope()
	for _, p := range fn.Params {
		s.env.declare(p.Name, ast.ResParam)
	}
	s.walkStmts(fn.Body)
}

func (s *Specializer) walkStmts(stmts []ast.Stmt) {
	for _, st := range stmts {
		s.walkStmt(st)
	}
}

func (s *Specializer) walkStmt(st ast.Stmt) {
	switch n := st.(type) {
	case *ast.Local:
		if n.Init != nil {
			s.walkExpr(n.Init)
		}
		s.env.declare(n.Name, ast.ResNone)
	case *ast.Assign:
		s.walkExpr(n.Value)
		if _, ok := s.env.lookupLocal(n.Name); !ok {
			s.errorf(n.At, "unbound name %q", n.Name)
		}
	case *ast.FieldWrite:
		s.walkExpr(n.Object)
		s.walkExpr(n.Value)
	case *ast.Reduce:
		s.walkExpr(n.Target)
		s.walkExpr(n.Value)
	case *ast.If:
		s.walkExpr(n.Cond)
		s.env.pushScope()
		s.walkStmts(n.Then)
		s.env.popScope()
		for _, ei := range n.ElseIfs {
			s.walkExpr(ei.Cond)
			s.env.pushScope()
			s.walkStmts(ei.Body)
			s.env.popScope()
		}
		if n.Else != nil {
			s.env.pushScope()
			s.walkStmts(n.Else)
			s.env.popScope()
		}
	case *ast.NumericFor:
		s.walkExpr(n.Lower)
		s.walkExpr(n.Upper)
		s.env.pushScope()
		s.env.declare(n.Var, ast.ResNone)
		s.walkStmts(n.Body)
		s.env.popScope()
	case *ast.Return:
		if n.Value != nil {
			s.walkExpr(n.Value)
		}
	case *ast.ExprStmt:
		s.walkExpr(n.Expr)
	default:
		s.errorf(st.Pos(), "specializer: unhandled statement %T", st)
	}
}

func (s *Specializer) walkExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal:
		// nothing to resolve
	case *ast.Ident:
		s.resolveIdent(n)
	case *ast.FieldAccess:
		s.walkExpr(n.Object)
	case *ast.Binary:
		s.walkExpr(n.Left)
		s.walkExpr(n.Right)
	case *ast.Logical:
		s.walkExpr(n.Left)
		if n.Right != nil {
			s.walkExpr(n.Right)
		}
	case *ast.Unary:
		s.walkExpr(n.Operand)
	case *ast.Call:
		s.walkCallee(n.Callee)
		for _, a := range n.Args {
			s.walkExpr(a)
		}
	case *ast.Affine:
		if _, ok := s.env.Relations[n.TargetRel]; !ok {
			s.errorf(n.At, "unbound name %q", n.TargetRel)
		}
		s.walkExpr(n.Base)
	case *ast.VectorLit:
		for _, el := range n.Elems {
			s.walkExpr(el)
		}
	case *ast.MatrixLit:
		for _, row := range n.Rows {
			for _, el := range row {
				s.walkExpr(el)
			}
		}
	default:
		s.errorf(e.Pos(), "specializer: unhandled expression %T", e)
	}
}

// walkCallee resolves the callee of a Call expression: it must name a
// Builtin or a Function (4.3: "use of a non-callable as function").
func (s *Specializer) walkCallee(callee ast.Expr) {
	id, ok := callee.(*ast.Ident)
	if !ok {
		s.walkExpr(callee)
		return
	}
	if Builtins[id.Name] {
		id.Resolved = ast.Resolution{Kind: ast.ResBuiltin, Ref: id.Name}
		return
	}
	if fn, ok := s.env.Functions[id.Name]; ok {
		id.Resolved = ast.Resolution{Kind: ast.ResFunction, Ref: fn}
		return
	}
	s.errorf(id.At, "%q is not callable", id.Name)
}

// resolveIdent implements the name-resolution order the source's
// lexical closure uses: kernel/local params, then fields, globals,
// relations, macros, named constants — unbound is a hard error.
func (s *Specializer) resolveIdent(id *ast.Ident) {
	if kind, ok := s.env.lookupLocal(id.Name); ok {
		id.Resolved = ast.Resolution{Kind: kind}
		return
	}
	if f, ok := s.env.Fields[id.Name]; ok {
		id.Resolved = ast.Resolution{Kind: ast.ResField, Ref: f}
		return
	}
	if g, ok := s.env.Globals[id.Name]; ok {
		id.Resolved = ast.Resolution{Kind: ast.ResGlobal, Ref: g}
		return
	}
	if r, ok := s.env.Relations[id.Name]; ok {
		id.Resolved = ast.Resolution{Kind: ast.ResRelation, Ref: r}
		return
	}
	if m, ok := s.env.Macros[id.Name]; ok {
		id.Resolved = ast.Resolution{Kind: ast.ResMacro, Ref: m}
		return
	}
	if v, ok := s.env.Consts[id.Name]; ok {
		id.Resolved = ast.Resolution{Kind: ast.ResConst, Ref: v}
		return
	}
	s.errorf(id.At, "unbound name %q", id.Name)
}

func (s *Specializer) errorf(at errors.Pos, format string, args ...interface{}) {
	if at.File == "" {
		at.File = s.file
	}
	s.Errors = append(s.Errors, errors.New(errors.MalformedProgram, at, format, args...))
}
