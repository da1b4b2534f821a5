package compiler

import (
	"parlay/internal/relation"
	"parlay/internal/store"
)

// Germ is the flat signature struct generated per Bran (spec.md §3):
// the stable ABI between a driver and the emitted task. It never
// carries the kernel's typed AST or phase result — those live on the
// owning Bran — only the pointers and cursors a task body reads.
type Germ struct {
	NRows uint64

	// Subset-domain fields, set only when the Bran's domain is a
	// Subset rather than the whole universe.
	UseBoolmask bool
	Boolmask    func(uint64) bool
	Index       []uint64
	IndexSize   int

	// InsertWrite is the live-mask cursor for a relation that supports
	// insert/delete (nil otherwise).
	InsertWrite *store.Column

	// Fields/Globals are the task's used-field and used-global storage,
	// keyed by identity exactly as the phase analyzer recorded them.
	Fields  map[*relation.Field]*store.Column
	Globals map[*relation.Global]*store.Cell
}

// BuildGerm assembles a Germ for one Bran from its universe/domain and
// the Store backing the relations it touches.
func BuildGerm(universe *relation.Relation, domain *relation.Subset, st *store.Store, fields map[*relation.Field]struct{}, globals map[*relation.Global]struct{}) *Germ {
	g := &Germ{NRows: universe.Size(), Fields: map[*relation.Field]*store.Column{}, Globals: map[*relation.Global]*store.Cell{}}

	if domain != nil {
		if domain.UsesMask() {
			g.UseBoolmask = true
			g.Boolmask = domain.Mask()
		} else {
			g.Index = domain.Indices()
			g.IndexSize = len(g.Index)
		}
	}

	if live := universe.LiveMask(); live != nil {
		g.InsertWrite = st.Column(live)
	}

	for f := range fields {
		g.Fields[f] = st.Column(f)
	}
	for gl := range globals {
		g.Globals[gl] = st.Cell(gl)
	}
	return g
}
