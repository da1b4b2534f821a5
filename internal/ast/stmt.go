package ast

import (
	"parlay/internal/errors"
	"parlay/internal/relation"
	"parlay/internal/types"
)

// Stmt is the tagged-variant marker for every kernel/helper statement.
type Stmt interface {
	isStmt()
	Pos() errors.Pos
}

// Local is `var name = expr` (or `var name` with no initializer).
type Local struct {
	At   errors.Pos
	Name string
	Init Expr // nil if uninitialized
}

func (*Local) isStmt()           {}
func (s *Local) Pos() errors.Pos { return s.At }

// Assign is a plain local-variable assignment `name = expr`.
type Assign struct {
	At    errors.Pos
	Name  string
	Value Expr
}

func (*Assign) isStmt()           {}
func (s *Assign) Pos() errors.Pos { return s.At }

// FieldWrite is `k.f = e`. The checker (4.4/4.5) requires Object to be
// syntactically the kernel's own parameter for the write to be legal
// (the "centered write" rule); that check happens in the phase
// analyzer, not here.
type FieldWrite struct {
	At     errors.Pos
	Object Expr
	Field  string
	Value  Expr
}

func (*FieldWrite) isStmt()           {}
func (s *FieldWrite) Pos() errors.Pos { return s.At }

// Reduce is a reduction-assignment: `g += e`, `f.x -= e`, `g min= e`,
// etc. Target is either a FieldAccess or a resolved-Global Ident.
type Reduce struct {
	At     errors.Pos
	Target Expr
	Op     relation.ReduceOp
	Value  Expr
}

func (*Reduce) isStmt()           {}
func (s *Reduce) Pos() errors.Pos { return s.At }

// If is if/elseif*/else over kernel statements.
type If struct {
	At      errors.Pos
	Cond    Expr
	Then    []Stmt
	ElseIfs []ElseIf
	Else    []Stmt // nil if no else
}

func (*If) isStmt()           {}
func (s *If) Pos() errors.Pos { return s.At }

type ElseIf struct {
	Cond Expr
	Body []Stmt
}

// NumericFor is `for name, lower, upper { body }` — a bounded loop
// lowered to a host-language numeric for-loop (§4.7's NumericFor
// lowering; §9's open question about the source using `lower` for
// both bounds is NOT repeated here — this rewrite uses Lower/Upper).
type NumericFor struct {
	At           errors.Pos
	Var          string
	Lower, Upper Expr
	Body         []Stmt
}

func (*NumericFor) isStmt()           {}
func (s *NumericFor) Pos() errors.Pos { return s.At }

// Return is a helper's return statement (kernels never return, 4.4).
type Return struct {
	At    errors.Pos
	Value Expr // nil for a bare return
}

func (*Return) isStmt()           {}
func (s *Return) Pos() errors.Pos { return s.At }

// ExprStmt wraps a call used for its effect (e.g. assert(c)).
type ExprStmt struct {
	At   errors.Pos
	Expr Expr
}

func (*ExprStmt) isStmt()           {}
func (s *ExprStmt) Pos() errors.Pos { return s.At }

// Function is a kernel or helper declaration (4.4): a kernel has
// exactly one key-typed parameter and no return; a helper has any
// typed parameters and an optional typed return.
type Function struct {
	Name       string
	IsKernel   bool
	Params     []Param
	ReturnType types.Type // nil for void
	Body       []Stmt
	At         errors.Pos
}

// Param is one declared parameter of a kernel or helper.
type Param struct {
	Name string
	// RelName is set when the parameter is a key(rel) for some
	// relation named RelName (kernels only ever declare one such
	// parameter); empty for a helper's scalar/vector parameters.
	RelName string
}
