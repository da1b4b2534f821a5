package ast

// ResKind is the set of things a free identifier can resolve to during
// specialization (spec.md §4.3: "every free identifier has been
// resolved to one of {Field, Function, Global, Relation, Builtin,
// constant, macro}").
type ResKind int

const (
	ResNone ResKind = iota
	ResField
	ResFunction
	ResGlobal
	ResRelation
	ResBuiltin
	ResConst
	ResMacro
	ResParam // the kernel/helper's own parameter(s)
)

// Resolution is the specializer's output for one Ident node. Ref holds
// the resolved value (e.g. *relation.Field, *relation.Global, a
// *Function, a builtin name string, or a constant); it is untyped here
// because ast must not import relation (relation does not depend on
// ast, avoiding an import cycle) — callers type-assert against the
// concrete type they expect for the given Kind.
type Resolution struct {
	Kind ResKind
	Ref  interface{}
}
