// Package phase implements the phase analyzer (spec.md §4.5): for every
// field and global a kernel touches, infer a PhaseType of {read, write,
// reduceop} and enforce the race-freedom legality rules before a kernel
// is handed to the lowerer. Grounded on the teacher's stmt_compiler.go
// walk shape (a statement-at-a-time pass accumulating into maps), swapped
// from bytecode emission to use-set accumulation.
package phase

import (
	"parlay/internal/ast"
	"parlay/internal/errors"
	"parlay/internal/relation"
)

// PhaseType records how a kernel touches one field or global (§4.5).
type PhaseType struct {
	Read     bool
	Write    bool
	ReduceOp relation.ReduceOp
	HasOp    bool
	// Centered is true only as long as every access (read, write or
	// reduce) seen so far on this target went through the kernel's own
	// parameter key; a single Affine access of any kind flips it
	// permanently to false.
	Centered bool
}

// Result is the phase analyzer's output for one kernel.
type Result struct {
	FieldUse  map[*relation.Field]*PhaseType
	GlobalUse map[*relation.Global]*PhaseType
	Inserts   []string
	Deletes   []string
	Errors    []error
}

// Analyzer walks one kernel body. paramName/paramRel are the kernel's
// single parameter and its declared relation (4.4); every
// FieldWrite/Reduce target whose Object is not syntactically that
// parameter is a stencil write (illegal, §4.5). relations resolves an
// Affine access's TargetRel to the relation whose fields it touches.
type Analyzer struct {
	file      string
	paramName string
	paramRel  string
	relations map[string]*relation.Relation
	result    *Result
}

func New(file, paramName, paramRel string, relations map[string]*relation.Relation) *Analyzer {
	return &Analyzer{
		file:      file,
		paramName: paramName,
		paramRel:  paramRel,
		relations: relations,
		result: &Result{
			FieldUse:  map[*relation.Field]*PhaseType{},
			GlobalUse: map[*relation.Global]*PhaseType{},
		},
	}
}

// Analyze runs the pass over a specialized, checked kernel body and
// returns the accumulated Result (always non-nil; check Errors).
func Analyze(file, paramName, paramRel string, relations map[string]*relation.Relation, body []ast.Stmt) *Result {
	a := New(file, paramName, paramRel, relations)
	a.walkStmts(body)
	a.checkLegality()
	return a.result
}

func (a *Analyzer) walkStmts(stmts []ast.Stmt) {
	for _, st := range stmts {
		a.walkStmt(st)
	}
}

func (a *Analyzer) walkStmt(st ast.Stmt) {
	switch n := st.(type) {
	case *ast.Local:
		if n.Init != nil {
			a.walkExprRead(n.Init)
		}
	case *ast.Assign:
		a.walkExprRead(n.Value)
	case *ast.FieldWrite:
		a.recordFieldAccess(n.Object, n.Field, n.At, true, false, "")
		a.walkExprRead(n.Value)
	case *ast.Reduce:
		switch tg := n.Target.(type) {
		case *ast.FieldAccess:
			a.recordFieldAccess(tg.Object, tg.Field, n.At, false, true, n.Op)
		case *ast.Ident:
			if g, ok := tg.Resolved.Ref.(*relation.Global); ok {
				a.recordGlobalReduce(g, n.Op, n.At)
			}
		}
		a.walkExprRead(n.Value)
	case *ast.If:
		a.walkExprRead(n.Cond)
		a.walkStmts(n.Then)
		for _, ei := range n.ElseIfs {
			a.walkExprRead(ei.Cond)
			a.walkStmts(ei.Body)
		}
		a.walkStmts(n.Else)
	case *ast.NumericFor:
		a.walkExprRead(n.Lower)
		a.walkExprRead(n.Upper)
		a.walkStmts(n.Body)
	case *ast.Return:
		if n.Value != nil {
			a.walkExprRead(n.Value)
		}
	case *ast.ExprStmt:
		a.walkExprRead(n.Expr)
	}
}

// walkExprRead marks every field/global reached as read-only; it does
// not descend into Affine bases for field identity (the field read
// happens at the FieldAccess that wraps it, if any).
func (a *Analyzer) walkExprRead(e ast.Expr) {
	switch n := e.(type) {
	case *ast.FieldAccess:
		a.recordFieldAccess(n.Object, n.Field, n.At, false, false, "")
	case *ast.Ident:
		if g, ok := n.Resolved.Ref.(*relation.Global); ok && n.Resolved.Kind == ast.ResGlobal {
			a.recordGlobalRead(g, n.At)
		}
	case *ast.Binary:
		a.walkExprRead(n.Left)
		a.walkExprRead(n.Right)
	case *ast.Logical:
		a.walkExprRead(n.Left)
		if n.Right != nil {
			a.walkExprRead(n.Right)
		}
	case *ast.Unary:
		a.walkExprRead(n.Operand)
	case *ast.Call:
		for _, arg := range n.Args {
			a.walkExprRead(arg)
		}
	case *ast.Affine:
		a.walkExprRead(n.Base)
	case *ast.VectorLit:
		for _, el := range n.Elems {
			a.walkExprRead(el)
		}
	case *ast.MatrixLit:
		for _, row := range n.Rows {
			for _, el := range row {
				a.walkExprRead(el)
			}
		}
	}
}

// recordFieldAccess requires Object to carry a *relation.Field
// resolution reachable via a FieldAccess on a resolved Ident; the
// checker has already validated k.f is well-formed, so here we only
// need the *relation.Field identity, obtained by re-walking Object's
// static shape (an Ident naming either the kernel parameter or, through
// Affine, a different key).
func (a *Analyzer) recordFieldAccess(obj ast.Expr, fieldName string, at errors.Pos, write, reduce bool, op relation.ReduceOp) {
	field := a.fieldOf(obj, fieldName)
	if field == nil {
		return
	}
	centered := a.isCentered(obj)
	pt := a.result.FieldUse[field]
	if pt == nil {
		pt = &PhaseType{Centered: true}
		a.result.FieldUse[field] = pt
	}
	if !centered {
		pt.Centered = false
	}
	switch {
	case write:
		pt.Write = true
	case reduce:
		if pt.HasOp && pt.ReduceOp != op {
			a.result.Errors = append(a.result.Errors, errors.New(errors.PhaseError, a.pos(at),
				"field %q reduced with incompatible operators %s and %s", fieldName, pt.ReduceOp, op))
		}
		pt.ReduceOp = op
		pt.HasOp = true
	default:
		pt.Read = true
	}
}

// fieldOf recovers the *relation.Field a k.f access denotes: k is
// either the kernel's own parameter (centered) or an Affine expression
// naming its own target relation (stencil).
func (a *Analyzer) fieldOf(obj ast.Expr, fieldName string) *relation.Field {
	relName, ok := a.relationNameOf(obj)
	if !ok {
		return nil
	}
	rel, ok := a.relations[relName]
	if !ok {
		return nil
	}
	f, _ := rel.FieldByName(fieldName)
	return f
}

func (a *Analyzer) relationNameOf(obj ast.Expr) (string, bool) {
	switch n := obj.(type) {
	case *ast.Ident:
		if n.Name == a.paramName {
			return a.paramRel, true
		}
		return "", false
	case *ast.Affine:
		return n.TargetRel, true
	default:
		return "", false
	}
}

// isCentered is true only for a bare reference to the kernel's own
// parameter; an Affine access is a stencil access by construction
// (§4.4: "off-center access is permitted only through ... Affine").
func (a *Analyzer) isCentered(obj ast.Expr) bool {
	id, ok := obj.(*ast.Ident)
	return ok && id.Name == a.paramName
}

func (a *Analyzer) recordGlobalRead(g *relation.Global, at errors.Pos) {
	pt := a.result.GlobalUse[g]
	if pt == nil {
		pt = &PhaseType{}
		a.result.GlobalUse[g] = pt
	}
	pt.Read = true
}

func (a *Analyzer) recordGlobalReduce(g *relation.Global, op relation.ReduceOp, at errors.Pos) {
	pt := a.result.GlobalUse[g]
	if pt == nil {
		pt = &PhaseType{}
		a.result.GlobalUse[g] = pt
	}
	if pt.HasOp && pt.ReduceOp != op {
		a.result.Errors = append(a.result.Errors, errors.New(errors.PhaseError, a.pos(at),
			"global reduced with incompatible operators %s and %s", pt.ReduceOp, op))
	}
	pt.ReduceOp = op
	pt.HasOp = true
}

// checkLegality enforces §4.5's remaining rules once every access has
// been accumulated: read∧write only when centered; write and reduceop
// mutually exclusive; a global never both read and reduced.
func (a *Analyzer) checkLegality() {
	for f, pt := range a.result.FieldUse {
		if pt.Read && pt.Write && !pt.Centered {
			a.result.Errors = append(a.result.Errors, errors.New(errors.StencilError, errors.Pos{File: a.file},
				"field %q is read and written through a non-centered access", f.Name()))
		}
		if pt.Write && pt.HasOp {
			a.result.Errors = append(a.result.Errors, errors.New(errors.PhaseError, errors.Pos{File: a.file},
				"field %q is both written and reduced", f.Name()))
		}
		if pt.Write && !pt.Centered {
			a.result.Errors = append(a.result.Errors, errors.New(errors.StencilError, errors.Pos{File: a.file},
				"field %q has a non-centered (stencil) write", f.Name()))
		}
	}
	for g, pt := range a.result.GlobalUse {
		if pt.Read && pt.HasOp {
			a.result.Errors = append(a.result.Errors, errors.New(errors.PhaseError, errors.Pos{File: a.file},
				"global %q is both read and reduced", g.Name()))
		}
	}
}

func (a *Analyzer) pos(at errors.Pos) errors.Pos {
	if at.File == "" {
		at.File = a.file
	}
	return at
}
