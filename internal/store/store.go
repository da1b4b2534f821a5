// Package store is the runtime-side counterpart of a relation.Field:
// the contiguous column storage the data model (spec.md §3) describes
// but relation.Field itself never allocates. Kept deliberately simple —
// one flat slice per field, indexed by row key — since the lowerer's
// actual backend target is a task-based external runtime (§6); this
// package exists so the Go module can also serve as its own CPU
// reference backend for the testable properties in §8.
package store

import (
	"parlay/internal/relation"
	"parlay/internal/types"
)

// Column holds one field's values. Every scalar primitive and vector
// element is represented as float64 for simplicity; bool fields use
// Bools instead. A kernel/helper never sees a Column directly — the
// lowerer's interpreter reads/writes through it on the field's behalf.
type Column struct {
	Field *relation.Field
	Nums  []float64   // valid when the field's type is a numeric Primitive or a Vector (flattened, N per row)
	Bools []bool      // valid when the field's type is types.Bool
	N     int         // vector width, 1 for scalars
}

// NewColumn allocates zeroed storage sized to the field's relation.
func NewColumn(f *relation.Field) *Column {
	size := f.Relation().Size()
	n := 1
	isBool := false
	switch t := f.Type().(type) {
	case types.Vector:
		n = t.N
	case types.Primitive:
		isBool = t == types.Bool
	}
	c := &Column{Field: f, N: n}
	if isBool {
		c.Bools = make([]bool, size)
	} else {
		c.Nums = make([]float64, size*uint64(n))
	}
	return c
}

func (c *Column) Get(key uint64) float64    { return c.Nums[key] }
func (c *Column) Set(key uint64, v float64) { c.Nums[key] = v }
func (c *Column) GetBool(key uint64) bool   { return c.Bools[key] }
func (c *Column) SetBool(key uint64, v bool) { c.Bools[key] = v }

func (c *Column) GetVec(key uint64) []float64 {
	return c.Nums[uint64(c.N)*key : uint64(c.N)*key+uint64(c.N)]
}
func (c *Column) SetVec(key uint64, v []float64) {
	copy(c.Nums[uint64(c.N)*key:uint64(c.N)*key+uint64(c.N)], v)
}

// Cell is a Global's runtime value cell (§3: "process-wide typed cell").
type Cell struct {
	Global *relation.Global
	Num    float64
	Bool   bool
	IsBool bool
}

func NewCell(g *relation.Global) *Cell {
	c := &Cell{Global: g}
	switch v := g.InitValue().(type) {
	case bool:
		c.IsBool = true
		c.Bool = v
	case float64:
		c.Num = v
	case int:
		c.Num = float64(v)
	}
	return c
}

// Store bundles every Column and Cell a control program declared, keyed
// by the relation.Field/relation.Global pointer identity the compiler
// hands out (mirrors the Bran/Germ identity-keyed caches of §9).
type Store struct {
	Columns map[*relation.Field]*Column
	Cells   map[*relation.Global]*Cell
}

func NewStore() *Store {
	return &Store{Columns: map[*relation.Field]*Column{}, Cells: map[*relation.Global]*Cell{}}
}

func (s *Store) Column(f *relation.Field) *Column {
	if c, ok := s.Columns[f]; ok {
		return c
	}
	c := NewColumn(f)
	s.Columns[f] = c
	return c
}

func (s *Store) Cell(g *relation.Global) *Cell {
	if c, ok := s.Cells[g]; ok {
		return c
	}
	c := NewCell(g)
	s.Cells[g] = c
	return c
}
