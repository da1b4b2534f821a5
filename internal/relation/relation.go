// Package relation implements the entity-set side of the data model
// (spec.md §3, §4.2): relations, their typed field columns, subsets,
// relation-link macros and the grid topology built on top of them.
package relation

import (
	"fmt"
	"sync/atomic"

	"parlay/internal/types"
)

var nextID uint64

func allocID() uint64 { return atomic.AddUint64(&nextID, 1) }

// Relation has immutable identity and name; its field list, subset
// list and fragmented flag are the only mutable parts (new fields and
// subsets may be added after creation; rows and dims never change).
type Relation struct {
	id        uint64
	name      string
	size      uint64 // flat logical size, Π size_i for grids
	dims      []uint64
	fields    []*Field
	subsets   []*Subset
	liveMask  *Field // non-nil iff this relation supports insert/delete
	fragmented bool

	// boundary/interior are populated only for a grid's Cells relation
	// (see grid.go); nil on a plain unstructured relation.
	boundary *Subset
	interior *Subset
}

// NewRelation implements new_relation(size, name) (spec.md §4.2).
func NewRelation(size uint64, name string) *Relation {
	return &Relation{id: allocID(), name: name, size: size, dims: []uint64{size}}
}

func (r *Relation) ID() uint64        { return r.id }
func (r *Relation) Name() string      { return r.name }
func (r *Relation) Size() uint64      { return r.size }
func (r *Relation) Dims() []uint64    { return r.dims }
func (r *Relation) Fields() []*Field  { return r.fields }
func (r *Relation) Subsets() []*Subset { return r.subsets }
func (r *Relation) IsFragmented() bool { return r.fragmented }
func (r *Relation) SupportsInsertDelete() bool { return r.liveMask != nil }

// MarkFragmented sets the typestate flag the lowerer's insert/delete
// path updates after a launch (spec.md §5).
func (r *Relation) MarkFragmented() { r.fragmented = true }

// EnableInsertDelete installs the `_is_live_mask` field an insert- or
// delete-capable relation must carry (data model invariant, §3).
func (r *Relation) EnableInsertDelete() *Field {
	if r.liveMask != nil {
		return r.liveMask
	}
	f := r.addField("_is_live_mask", types.Bool)
	r.liveMask = f
	return f
}

func (r *Relation) LiveMask() *Field { return r.liveMask }

// Coord and KeyOf expose the row-major coordinate decomposition every
// grid relation (and, trivially, every 1-D relation) uses, so the
// lowerer's Affine translation (§4.7) can operate on any relation by
// name without depending on the Grid wrapper that built it.
func (r *Relation) Coord(key uint64) []int64    { return coordOf(key, r.dims) }
func (r *Relation) KeyOf(coord []int64) uint64  { return idOf(coord, r.dims) }

func (r *Relation) addField(name string, t types.Type) *Field {
	f := &Field{id: allocID(), rel: r, name: name, typ: t}
	r.fields = append(r.fields, f)
	return f
}

// NewField implements new_field(rel, name, type): the field's logical
// size equals the relation's logical size and it owns a contiguous
// storage region (invariant, §3) — storage layout itself is described
// lazily by a dld.Descriptor at task-boundary time, not here.
func (r *Relation) NewField(name string, t types.Type) (*Field, error) {
	for _, f := range r.fields {
		if f.name == name {
			return nil, fmt.Errorf("relation %s: field %q already exists", r.name, name)
		}
	}
	return r.addField(name, t), nil
}

// FieldByName looks up a field for the specializer's name resolution
// (4.3: "resolve free names to relations, fields, globals, builtins").
func (r *Relation) FieldByName(name string) (*Field, bool) {
	for _, f := range r.fields {
		if f.name == name {
			return f, true
		}
	}
	return nil, false
}

// Field is a relation handle + name + type; reads/writes/reductions
// are never expressed directly against it — they are only reachable
// through a kernel (data model §3).
type Field struct {
	id   uint64
	rel  *Relation
	name string
	typ  types.Type
}

func (f *Field) ID() uint64         { return f.id }
func (f *Field) Relation() *Relation { return f.rel }
func (f *Field) Name() string       { return f.name }
func (f *Field) Type() types.Type   { return f.typ }

// Global is a named, typed, process-wide cell (data model §3).
type Global struct {
	id      uint64
	name    string
	typ     types.Type
	initVal interface{}
}

// NewGlobal creates a Global with its constant initial value.
func NewGlobal(name string, t types.Type, init interface{}) *Global {
	return &Global{id: allocID(), name: name, typ: t, initVal: init}
}

func (g *Global) ID() uint64         { return g.id }
func (g *Global) Name() string       { return g.name }
func (g *Global) Type() types.Type   { return g.typ }
func (g *Global) InitValue() interface{} { return g.initVal }

// ReduceOp is one of the reduction operators a kernel may target a
// field or global with (spec.md §3, §4.5).
type ReduceOp string

const (
	OpAdd ReduceOp = "+"
	OpSub ReduceOp = "-"
	OpMul ReduceOp = "*"
	OpDiv ReduceOp = "/"
	OpMin ReduceOp = "min"
	OpMax ReduceOp = "max"
)

// Rectangle is an axis-aligned inclusive integer extent, used by grid
// subsets (data model §3's Subset invariant).
type Rectangle struct {
	Lo, Hi []int64 // inclusive per-axis bounds, len == relation dims
}

// Subset is a relation plus either a boolean mask or an explicit
// sorted index list; exactly one of the two is ever present (data
// model §3 invariant).
type Subset struct {
	id        uint64
	rel       *Relation
	name      string
	mask      func(key uint64) bool
	indices   []uint64
	rects     []Rectangle
	isMask    bool
}

func (r *Relation) addSubset(s *Subset) *Subset {
	s.id = allocID()
	s.rel = r
	r.subsets = append(r.subsets, s)
	return s
}

// NewSubsetFromMask implements new_subset_from_mask(rel, name, fn).
func (r *Relation) NewSubsetFromMask(name string, fn func(key uint64) bool) *Subset {
	return r.addSubset(&Subset{name: name, mask: fn, isMask: true})
}

// NewSubsetFromIndices implements new_subset_from_indices(rel, name,
// indices); indices must already be sorted per the data model's
// "explicit sorted index list" invariant.
func (r *Relation) NewSubsetFromIndices(name string, indices []uint64) (*Subset, error) {
	for i := 1; i < len(indices); i++ {
		if indices[i] <= indices[i-1] {
			return nil, fmt.Errorf("relation %s: subset %q indices must be strictly sorted", r.name, name)
		}
	}
	cp := append([]uint64(nil), indices...)
	return r.addSubset(&Subset{name: name, indices: cp, isMask: false}), nil
}

func (s *Subset) ID() uint64          { return s.id }
func (s *Subset) Relation() *Relation { return s.rel }
func (s *Subset) Name() string        { return s.name }
func (s *Subset) UsesMask() bool      { return s.isMask }
func (s *Subset) Indices() []uint64   { return s.indices }
func (s *Subset) Mask() func(uint64) bool { return s.mask }
func (s *Subset) Rectangles() []Rectangle { return s.rects }

// SetRectangles installs a union of axis-aligned rectangles on a grid
// subset (data model §3: "on grids, optionally a union of axis-aligned
// rectangles").
func (s *Subset) SetRectangles(rects []Rectangle) { s.rects = rects }

// FieldMacro is a compile-time rewrite on a key installed by
// new_field_macro(rel, name, λ) (spec.md §4.2). The specializer
// expands invocations of it during specialization (4.3).
type FieldMacro struct {
	Name   string
	Rel    *Relation
	Expand func(args []interface{}) (interface{}, error)
}

func (r *Relation) NewFieldMacro(name string, expand func(args []interface{}) (interface{}, error)) *FieldMacro {
	return &FieldMacro{Name: name, Rel: r, Expand: expand}
}
