package dld

import (
	"testing"

	"parlay/internal/relation"
	"parlay/internal/types"
)

func TestForFieldIsCompact(t *testing.T) {
	r := relation.NewRelation(16, "particles")
	f, err := r.NewField("x", types.F64)
	if err != nil {
		t.Fatal(err)
	}
	d, err := ForField(f, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !d.Compact() {
		t.Fatalf("expected a compact descriptor, got %+v", d)
	}
	if d.PhysicalSize() != d.LogicalSize*d.Stride {
		t.Fatalf("physical size invariant violated")
	}
	if d.LogicalSize != 16 || d.Stride != 8 {
		t.Fatalf("unexpected layout: %+v", d)
	}
}

func TestForFieldVector(t *testing.T) {
	r := relation.NewRelation(4, "particles")
	vt, err := types.NewVector(types.F32, 3)
	if err != nil {
		t.Fatal(err)
	}
	f, err := r.NewField("pos", vt)
	if err != nil {
		t.Fatal(err)
	}
	d, err := ForField(f, 0)
	if err != nil {
		t.Fatal(err)
	}
	if d.Type.VectorSize != 3 || d.Stride != 12 {
		t.Fatalf("unexpected vector layout: %+v", d)
	}
}
