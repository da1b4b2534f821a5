// Package ast defines the kernel/helper AST: the raw tree the parser
// produces, annotated in place by the specializer (spec.md §4.3) and
// the semantic checker (§4.4). Per DESIGN NOTES §9 ("AST polymorphism
// ... represent each AST family as a tagged variant; the lowerer is a
// pattern match per variant, not a virtual method"), every family below
// is a marker interface with no Accept method — passes dispatch with a
// Go type switch.
package ast

import (
	"parlay/internal/errors"
	"parlay/internal/types"
)

// Expr is the tagged-variant marker for every expression node.
type Expr interface {
	isExpr()
	Pos() errors.Pos
}

// Literal is a bool or number constant.
type Literal struct {
	At    errors.Pos
	Type  types.Type // set by the semantic checker (4.4)
	Value interface{} // bool | float64
}

func (*Literal) isExpr()            {}
func (e *Literal) Pos() errors.Pos  { return e.At }

// Ident is a free identifier the specializer resolves (4.3) against
// the host environment into a Field, Function, Global, Relation,
// Builtin, constant or macro.
type Ident struct {
	At   errors.Pos
	Type types.Type
	Name string
	// Resolved is filled in by the specializer; zero value beforehand.
	Resolved Resolution
}

func (*Ident) isExpr()           {}
func (e *Ident) Pos() errors.Pos { return e.At }

// FieldAccess is k.f — a read of field f through key expression
// Object (4.4: "requires k : key(R) and f ∈ fields(R)").
type FieldAccess struct {
	At     errors.Pos
	Type   types.Type
	Object Expr
	Field  string
}

func (*FieldAccess) isExpr()           {}
func (e *FieldAccess) Pos() errors.Pos { return e.At }

// Binary is an arithmetic or comparison expression: +, -, *, /, %, ^,
// ==, !=, <, <=, >, >=.
type Binary struct {
	At          errors.Pos
	Type        types.Type
	Op          string
	Left, Right Expr
}

func (*Binary) isExpr()           {}
func (e *Binary) Pos() errors.Pos { return e.At }

// Logical is && / || / a bare Not wrapper around a single operand, per
// the Cond grammar in spec.md §3 (And/Or/Not). For "!" Right is nil.
type Logical struct {
	At          errors.Pos
	Type        types.Type
	Op          string
	Left, Right Expr
}

func (*Logical) isExpr()           {}
func (e *Logical) Pos() errors.Pos { return e.At }

// Unary is numeric negation.
type Unary struct {
	At      errors.Pos
	Type    types.Type
	Op      string
	Operand Expr
}

func (*Unary) isExpr()           {}
func (e *Unary) Pos() errors.Pos { return e.At }

// Call is a builtin or helper invocation (4.7's builtin table, or a
// user-declared helper Function).
type Call struct {
	At     errors.Pos
	Type   types.Type
	Callee Expr
	Args   []Expr
}

func (*Call) isExpr()           {}
func (e *Call) Pos() errors.Pos { return e.At }

// Affine is Affine(target_rel, M, base_key) — the only legal off-
// center access form (4.4). M is a row-major (N)x(N+1) matrix:
// identity rotation block plus a translation column.
type Affine struct {
	At        errors.Pos
	Type      types.Type
	TargetRel string
	M         [][]float64
	Base      Expr
}

func (*Affine) isExpr()           {}
func (e *Affine) Pos() errors.Pos { return e.At }

// VectorLit / MatrixLit construct a vector or matrix value from
// element expressions (stencil translation literals, kernel-local
// vector math).
type VectorLit struct {
	At    errors.Pos
	Type  types.Type
	Elems []Expr
}

func (*VectorLit) isExpr()           {}
func (e *VectorLit) Pos() errors.Pos { return e.At }

type MatrixLit struct {
	At   errors.Pos
	Type types.Type
	Rows [][]Expr
}

func (*MatrixLit) isExpr()           {}
func (e *MatrixLit) Pos() errors.Pos { return e.At }
