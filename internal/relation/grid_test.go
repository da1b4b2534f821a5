package relation

import "testing"

func TestGridBoundaryInteriorCounts(t *testing.T) {
	g, err := NewGrid([]uint64{4, 4}, 1)
	if err != nil {
		t.Fatal(err)
	}
	var boundary, interior int
	for id := uint64(0); id < g.Cells.Size(); id++ {
		if g.InBoundary(id) {
			boundary++
		} else {
			interior++
		}
	}
	if boundary != 12 {
		t.Fatalf("want |boundary|=12, got %d", boundary)
	}
	if interior != 4 {
		t.Fatalf("want |interior|=4, got %d", interior)
	}
	if g.InBoundary(5) {
		t.Fatalf("cell 5 should be interior")
	}
	if !g.InBoundary(0) {
		t.Fatalf("cell 0 should be boundary")
	}
}

func TestGridNeighborWrap(t *testing.T) {
	g, err := NewGrid([]uint64{5, 5}, 1)
	if err != nil {
		t.Fatal(err)
	}
	// cell (xid=2,yid=3)
	id := idOf([]int64{2, 3}, g.dims)
	nb, err := g.Neighbor(id, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if g.XID(nb) != 3 || g.YID(nb) != 3 {
		t.Fatalf("expected (3,3), got (%d,%d)", g.XID(nb), g.YID(nb))
	}

	id2 := idOf([]int64{4, 3}, g.dims)
	nb2, err := g.Neighbor(id2, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if g.XID(nb2) != 0 || g.YID(nb2) != 3 {
		t.Fatalf("expected wrap to (0,3), got (%d,%d)", g.XID(nb2), g.YID(nb2))
	}
}

func TestRelationFieldInvariants(t *testing.T) {
	r := NewRelation(10, "particles")
	f, err := r.NewField("x", nil)
	_ = f
	if err != nil {
		t.Fatalf("new_field should succeed: %v", err)
	}
	if _, err := r.NewField("x", nil); err == nil {
		t.Fatal("duplicate field name should fail")
	}
}
