// Package control implements the control-IR recorder (spec.md §4.6):
// the intermediate representation host-language statements (NEW_*,
// LOAD_FIELD, SET_GLOBAL, FOR_EACH, IF/ELSE/END, WHILE/END) are
// recorded into, plus the condition/expression builders of §6
// (AND/OR/NOT, EQ/NE/LT/LE/GT/GE, arithmetic, unary negation).
//
// Per DESIGN NOTES §9 every IR family (Decl, Stmt, Cond, Expr) is a
// tagged variant dispatched with a Go type switch, not a visitor.
package control

import (
	"parlay/internal/relation"
	"parlay/internal/types"
)

// Decl is a control-program declaration: NEW_RELATION, NEW_FIELD,
// NEW_GLOBAL, NEW_FUNCTION or NEW_SUBSET.
type Decl interface{ isDecl() }

type NewRelationDecl struct {
	Name string
	Size uint64
	Rel  *relation.Relation
}

func (*NewRelationDecl) isDecl() {}

type NewFieldDecl struct {
	Rel   *relation.Relation
	Name  string
	Type  types.Type
	Field *relation.Field
}

func (*NewFieldDecl) isDecl() {}

type NewGlobalDecl struct {
	Name   string
	Type   types.Type
	Init   interface{}
	Global *relation.Global
}

func (*NewGlobalDecl) isDecl() {}

// NewFunctionDecl's Fn is left as interface{} to avoid a control->ast
// import cycle concern callers don't need resolved here; the compiler
// package threads the real *ast.Function through.
type NewFunctionDecl struct {
	Name string
	Fn   interface{}
}

func (*NewFunctionDecl) isDecl() {}

// NewSubsetDecl records either a predicate-built subset or a union of
// rectangles (data model §3's "optionally a union of axis-aligned
// rectangles" for grid subsets).
type NewSubsetDecl struct {
	Rel       *relation.Relation
	Name      string
	Rects     []relation.Rectangle
	Predicate func(uint64) bool
	Subset    *relation.Subset
}

func (*NewSubsetDecl) isDecl() {}

// Stmt is a control-program statement.
type Stmt interface{ isStmt() }

type LoadField struct {
	Field *relation.Field
	Const interface{}
}

func (*LoadField) isStmt() {}

type SetGlobal struct {
	Global *relation.Global
	Value  Expr
}

func (*SetGlobal) isStmt() {}

// ForEach is FOR_EACH(fun, rel[, subset]) — the launch statement (§6).
// ReducedInto is the global a kernel reduces into, if any (populated by
// the compiler from the phase analyzer's result, used by the lowerer's
// NeedsReduction state, §4.7).
type ForEach struct {
	Fn          interface{} // *ast.Function
	Rel         *relation.Relation
	Subset      *relation.Subset // nil: launch over the whole relation
	ReducedInto *relation.Global
}

func (*ForEach) isStmt() {}

type If struct {
	Cond Cond
	Then []Stmt
	Else []Stmt // nil if no ELSE
}

func (*If) isStmt() {}

type While struct {
	Cond Cond
	Body []Stmt
}

func (*While) isStmt() {}

// Cond is a boolean control-IR expression (§6: AND/OR/NOT, EQ/NE/LT/LE/GT/GE).
type Cond interface{ isCond() }

type And struct{ Left, Right Cond }

func (*And) isCond() {}

type Or struct{ Left, Right Cond }

func (*Or) isCond() {}

type Not struct{ Operand Cond }

func (*Not) isCond() {}

// Compare is one of EQ/NE/LT/LE/GT/GE over two Exprs.
type Compare struct {
	Op          string
	Left, Right Expr
}

func (*Compare) isCond() {}

// Expr is a control-program scalar expression (§6: arithmetic `+ − × ÷
// %` and unary `−`, plus constants and global reads).
type Expr interface{ isExpr() }

// ExprConst mirrors the source's `ExprConst = bool | number | list`
// dynamic value (§9): a recursive tagged value, here just `interface{}`
// holding bool, float64 or []interface{}.
type ExprConst = interface{}

type Const struct{ Value ExprConst }

func (*Const) isExpr() {}

type GlobalRef struct{ Global *relation.Global }

func (*GlobalRef) isExpr() {}

type Arith struct {
	Op          string
	Left, Right Expr
}

func (*Arith) isExpr() {}

type Neg struct{ Operand Expr }

func (*Neg) isExpr() {}

// ---- builders (§6) ----

func AND(l, r Cond) Cond   { return &And{Left: l, Right: r} }
func OR(l, r Cond) Cond    { return &Or{Left: l, Right: r} }
func NOT(c Cond) Cond      { return &Not{Operand: c} }
func EQ(l, r Expr) Cond    { return &Compare{Op: "==", Left: l, Right: r} }
func NE(l, r Expr) Cond    { return &Compare{Op: "!=", Left: l, Right: r} }
func LT(l, r Expr) Cond    { return &Compare{Op: "<", Left: l, Right: r} }
func LE(l, r Expr) Cond    { return &Compare{Op: "<=", Left: l, Right: r} }
func GT(l, r Expr) Cond    { return &Compare{Op: ">", Left: l, Right: r} }
func GE(l, r Expr) Cond    { return &Compare{Op: ">=", Left: l, Right: r} }

func Add(l, r Expr) Expr { return &Arith{Op: "+", Left: l, Right: r} }
func Sub(l, r Expr) Expr { return &Arith{Op: "-", Left: l, Right: r} }
func Mul(l, r Expr) Expr { return &Arith{Op: "*", Left: l, Right: r} }
func Div(l, r Expr) Expr { return &Arith{Op: "/", Left: l, Right: r} }
func Mod(l, r Expr) Expr { return &Arith{Op: "%", Left: l, Right: r} }
func Neg1(e Expr) Expr    { return &Neg{Operand: e} }

func GetGlobal(g *relation.Global) Expr { return &GlobalRef{Global: g} }
func ConstNum(v float64) Expr           { return &Const{Value: v} }
func ConstBool(v bool) Expr             { return &Const{Value: v} }
