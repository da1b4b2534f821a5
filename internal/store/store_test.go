package store

import (
	"testing"

	"parlay/internal/relation"
	"parlay/internal/types"
)

func TestColumnRoundTrip(t *testing.T) {
	r := relation.NewRelation(10, "particles")
	f, err := r.NewField("x", types.I32)
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore()
	col := s.Column(f)
	col.Set(3, 42)
	if got := s.Column(f).Get(3); got != 42 {
		t.Fatalf("want 42, got %v", got)
	}
}

func TestCellFromBoolGlobal(t *testing.T) {
	g := relation.NewGlobal("done", types.Bool, true)
	s := NewStore()
	c := s.Cell(g)
	if !c.IsBool || !c.Bool {
		t.Fatalf("expected bool cell true, got %+v", c)
	}
}
