package lower

import (
	"testing"

	"parlay/internal/ast"
	"parlay/internal/control"
	"parlay/internal/relation"
	"parlay/internal/store"
	"parlay/internal/types"
)

func newInterp(t *testing.T, rels ...*relation.Relation) *Interp {
	t.Helper()
	m := map[string]*relation.Relation{}
	for _, r := range rels {
		m[r.Name()] = r
	}
	return NewInterp("t.lang", m, store.NewStore())
}

// TestKernelLaunchedTwiceIncrementsField exercises the concrete
// scenario "a kernel that writes v.x = v.x + 1, launched twice over a
// one-row relation, leaves x == 2".
func TestKernelLaunchedTwiceIncrementsField(t *testing.T) {
	rel := relation.NewRelation(1, "particles")
	xField, err := rel.NewField("x", types.I32)
	if err != nil {
		t.Fatal(err)
	}
	in := newInterp(t, rel)
	in.Store.Column(xField) // materialize storage ahead of the kernel

	kernel := &ast.Function{
		Name:     "bump",
		IsKernel: true,
		Params:   []ast.Param{{Name: "v", RelName: "particles"}},
		Body: []ast.Stmt{
			&ast.FieldWrite{
				Object: &ast.Ident{Name: "v", Resolved: ast.Resolution{Kind: ast.ResParam}},
				Field:  "x",
				Value: &ast.Binary{
					Op:   "+",
					Left: &ast.FieldAccess{Object: &ast.Ident{Name: "v", Resolved: ast.Resolution{Kind: ast.ResParam}}, Field: "x"},
					Right: &ast.Literal{Value: float64(1)},
				},
			},
		},
	}

	for i := 0; i < 2; i++ {
		if err := in.RunKernel(kernel, rel, 0); err != nil {
			t.Fatalf("launch %d: %v", i, err)
		}
	}

	col := in.Store.Column(xField)
	if got := col.Get(0); got != 2 {
		t.Fatalf("x = %v, want 2", got)
	}
}

// TestGlobalReductionOverOneHundredRows exercises the concrete scenario
// "a kernel that reduces a global with +=, launched over 100 rows each
// contributing 1.0, leaves the global == 100.0".
func TestGlobalReductionOverOneHundredRows(t *testing.T) {
	rel := relation.NewRelation(100, "particles")
	g := relation.NewGlobal("total", types.F64, float64(0))
	in := newInterp(t, rel)
	in.Store.Cell(g) // materialize storage ahead of the kernel

	kernel := &ast.Function{
		Name:     "tally",
		IsKernel: true,
		Params:   []ast.Param{{Name: "v", RelName: "particles"}},
		Body: []ast.Stmt{
			&ast.Reduce{
				Target: &ast.Ident{Name: "total", Resolved: ast.Resolution{Kind: ast.ResGlobal, Ref: g}},
				Op:     relation.OpAdd,
				Value:  &ast.Literal{Value: float64(1)},
			},
		},
	}

	for key := uint64(0); key < rel.Size(); key++ {
		if err := in.RunKernel(kernel, rel, key); err != nil {
			t.Fatalf("launch %d: %v", key, err)
		}
	}

	if got := in.Store.Cell(g).Num; got != 100 {
		t.Fatalf("total = %v, want 100", got)
	}
}

// TestAffineNeighborOnGrid exercises the concrete scenario "Affine
// neighbor resolution on a 5x5 grid": a kernel centered on (2,2) reads
// its east neighbor's field through Affine(cells, [[1,0,1],[0,1,0]], v).
func TestAffineNeighborOnGrid(t *testing.T) {
	g, err := relation.NewGrid([]uint64{5, 5}, 1)
	if err != nil {
		t.Fatal(err)
	}
	f, err := g.Cells.NewField("h", types.F64)
	if err != nil {
		t.Fatal(err)
	}
	in := newInterp(t, g.Cells)
	col := in.Store.Column(f)

	east := g.Cells.KeyOf([]int64{3, 2})
	col.Set(east, 42)

	center := g.Cells.KeyOf([]int64{2, 2})
	affine := &ast.Affine{
		TargetRel: "cells",
		M:         [][]float64{{1, 0, 1}, {0, 1, 0}},
		Base:      &ast.Ident{Name: "v", Resolved: ast.Resolution{Kind: ast.ResParam}},
	}
	read := &ast.FieldAccess{Object: affine, Field: "h"}

	locals := map[string]Value{"v": keyVal(center, "cells")}
	v, err := in.evalExpr(read, locals)
	if err != nil {
		t.Fatal(err)
	}
	if v.Num != 42 {
		t.Fatalf("neighbor read = %v, want 42", v.Num)
	}
}

// TestWhileLoopTerminates exercises the concrete scenario "SET_GLOBAL
// increments g by 1, then WHILE(g<3) increments g by 1 each iteration;
// the control program terminates with g == 3".
func TestWhileLoopTerminates(t *testing.T) {
	g := relation.NewGlobal("g", types.F64, float64(0))
	in := newInterp(t)
	in.Store.Cell(g)

	prog := []control.Stmt{
		&control.SetGlobal{Global: g, Value: control.Add(control.GetGlobal(g), control.ConstNum(1))},
		&control.While{
			Cond: control.LT(control.GetGlobal(g), control.ConstNum(3)),
			Body: []control.Stmt{
				&control.SetGlobal{Global: g, Value: control.Add(control.GetGlobal(g), control.ConstNum(1))},
			},
		},
	}

	d := NewDriver(in, "t.lang")
	if err := d.Run(prog); err != nil {
		t.Fatal(err)
	}
	if got := in.Store.Cell(g).Num; got != 3 {
		t.Fatalf("g = %v, want 3", got)
	}
}

// TestForEachLaunchesEveryDomainKey confirms the driver's ForEach
// enumerates every key of the task's domain subset, not the whole
// universe, when a subset is given.
func TestForEachLaunchesEveryDomainKey(t *testing.T) {
	rel := relation.NewRelation(4, "particles")
	f, err := rel.NewField("hit", types.Bool)
	if err != nil {
		t.Fatal(err)
	}
	in := newInterp(t, rel)
	in.Store.Column(f)

	subset, err := rel.NewSubsetFromIndices("evens", []uint64{0, 2})
	if err != nil {
		t.Fatal(err)
	}

	kernel := &ast.Function{
		Name:     "mark",
		IsKernel: true,
		Params:   []ast.Param{{Name: "v", RelName: "particles"}},
		Body: []ast.Stmt{
			&ast.FieldWrite{
				Object: &ast.Ident{Name: "v", Resolved: ast.Resolution{Kind: ast.ResParam}},
				Field:  "hit",
				Value:  &ast.Literal{Value: true},
			},
		},
	}

	prog := []control.Stmt{
		&control.ForEach{Fn: kernel, Rel: rel, Subset: subset},
	}
	d := NewDriver(in, "t.lang")
	if err := d.Run(prog); err != nil {
		t.Fatal(err)
	}

	col := in.Store.Column(f)
	for _, key := range []uint64{0, 2} {
		if !col.GetBool(key) {
			t.Fatalf("key %d not marked", key)
		}
	}
	for _, key := range []uint64{1, 3} {
		if col.GetBool(key) {
			t.Fatalf("key %d unexpectedly marked", key)
		}
	}
}
