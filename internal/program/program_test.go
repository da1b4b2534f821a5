package program

import (
	"testing"

	"parlay/internal/lower"
	"parlay/internal/relation"
	"parlay/internal/store"
)

func TestParseDeclaresRelationFieldAndGlobal(t *testing.T) {
	src := `
relation particles 4
field particles.x f64
global total f64 = 0
`
	p, err := Parse(src, "t.prl")
	if err != nil {
		t.Fatal(err)
	}
	rel, ok := p.Env.Relations["particles"]
	if !ok {
		t.Fatal("relation particles not declared")
	}
	if rel.Size() != 4 {
		t.Fatalf("size = %d, want 4", rel.Size())
	}
	if _, ok := rel.FieldByName("x"); !ok {
		t.Fatal("field x not declared on particles")
	}
	if _, ok := p.Env.Globals["total"]; !ok {
		t.Fatal("global total not declared")
	}
}

func TestParseKernelBodyDelegatesToBodyParser(t *testing.T) {
	src := `
relation particles 4
field particles.x f64
kernel bump(v particles) {
  v.x = v.x + 1
}
`
	p, err := Parse(src, "t.prl")
	if err != nil {
		t.Fatal(err)
	}
	fn, ok := p.Functions["bump"]
	if !ok {
		t.Fatal("kernel bump not recorded")
	}
	if !fn.IsKernel {
		t.Fatal("expected IsKernel true")
	}
	if len(fn.Body) != 1 {
		t.Fatalf("expected one statement in kernel body, got %d", len(fn.Body))
	}
}

// TestForEachControlProgramRunsToCompletion exercises the whole surface
// end-to-end: a kernel bumping a field, launched over a relation via
// for_each, driven by lower.Driver.
func TestForEachControlProgramRunsToCompletion(t *testing.T) {
	src := `
relation particles 3
field particles.x f64
kernel bump(v particles) {
  v.x = v.x + 1
}
for_each bump over particles
`
	p, err := Parse(src, "t.prl")
	if err != nil {
		t.Fatal(err)
	}

	rel := p.Env.Relations["particles"]
	field, ok := rel.FieldByName("x")
	if !ok {
		t.Fatal("field x not declared")
	}

	st := store.NewStore()
	col := st.Column(field)

	rels := map[string]*relation.Relation{rel.Name(): rel}
	in := lower.NewInterp("t.prl", rels, st)
	d := lower.NewDriver(in, "t.prl")
	if err := d.Run(p.Stmts); err != nil {
		t.Fatal(err)
	}

	for key := uint64(0); key < rel.Size(); key++ {
		if got := col.Get(key); got != 1 {
			t.Fatalf("row %d = %v, want 1", key, got)
		}
	}
}

func TestWhileLoopRecordsBodyAndCondition(t *testing.T) {
	src := `
global g f64 = 0
set_global g = g + 1
while g < 3
  set_global g = g + 1
end
`
	p, err := Parse(src, "t.prl")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Stmts) != 2 {
		t.Fatalf("expected 2 top-level statements (set_global, while), got %d", len(p.Stmts))
	}
}

func TestIfElseRecordsBothBranches(t *testing.T) {
	src := `
global g f64 = 0
if g < 1 then
  set_global g = g + 1
else
  set_global g = g + 2
end
`
	p, err := Parse(src, "t.prl")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Stmts) != 1 {
		t.Fatalf("expected 1 top-level statement (if), got %d", len(p.Stmts))
	}
}

func TestUnknownTopLevelTokenIsAnError(t *testing.T) {
	src := `bogus 1 2 3`
	if _, err := Parse(src, "t.prl"); err == nil {
		t.Fatal("expected an error for an unrecognized top-level statement")
	}
}
